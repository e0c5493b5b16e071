package ai

import (
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
)

// Request settings for the extraction call.
const (
	Temperature = 0.1
	MaxTokens   = 4000
)

var typeFocus = map[analysis.MeetingType]string{
	analysis.MeetingStandup:        "This is a daily standup. Focus on: work completed, work planned, and blockers.",
	analysis.MeetingSprintPlanning: "This is a sprint planning session. Focus on: sprint goals, user stories, task assignments, and estimates.",
	analysis.MeetingClient:         "This is a client meeting. Focus on: client requirements, agreed deliverables, deadlines, and follow-ups.",
	analysis.MeetingAcademic:       "This is an academic group project meeting. Focus on: research progress, task distribution, deadlines, and collaboration.",
	analysis.MeetingLeadership:     "This is a leadership meeting. Focus on: strategic decisions, resource allocation, escalations, and executive actions.",
	analysis.MeetingGeneral:        "This is a general meeting. Extract all relevant information.",
}

// FocusHint returns the meeting-type paragraph of the system prompt.
func FocusHint(t analysis.MeetingType) string {
	if h, ok := typeFocus[t]; ok {
		return h
	}
	return typeFocus[analysis.MeetingGeneral]
}

// GetSystemPrompt provides strict extraction rules and the JSON shape.
func GetSystemPrompt(t analysis.MeetingType) string {
	return `You are a careful meeting notes analyst. Extract structured information from raw meeting notes.

Rules:
1. Be conservative. Never invent information that is not in the text.
2. Never fabricate names, roles, dates, or tasks.
3. When information is ambiguous use "Unassigned" for owner and "Not specified" for deadline.
4. Extract only what is stated or clearly implied.
5. Use names exactly as they appear.
6. Write deadlines as YYYY-MM-DD when a specific date is given, otherwise "Not specified".
7. Set priority from context (urgency words, deadlines, emphasis). Default to "Medium".
8. Status is "Pending" unless the text marks the item done or completed.

Meeting type:
` + FocusHint(t) + `

Output (one JSON object only):
{
  "summary": "<2-4 sentence summary>",
  "keyPoints": ["<key point>", "..."],
  "actionItems": [
    {
      "task": "<what needs doing>",
      "owner": "<person or Unassigned>",
      "deadline": "<YYYY-MM-DD or Not specified>",
      "priority": "High | Medium | Low",
      "status": "Pending | Completed"
    }
  ]
}

Respond with JSON only. No markdown, no code fences, no commentary.`
}

// GetUserPrompt wraps the raw notes.
func GetUserPrompt(rawText string) string {
	return "Analyze the following meeting notes and extract structured information:\n\n" + rawText
}
