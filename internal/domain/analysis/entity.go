package analysis

import "context"

// Field defaults applied to action items.
const (
	DefaultOwner    = "Unassigned"
	DefaultDeadline = "Not specified"
)

// Field limits, counted in characters (code points).
const (
	MaxSummaryLen  = 5000
	MaxKeyPointLen = 1000
	MaxTaskLen     = 1000
	MaxOwnerLen    = 200
	MaxDeadlineLen = 100
)

// FallbackModel is reported as the model for heuristic analyses.
const FallbackModel = "fallback"

// Priority enum
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is one of High, Medium, Low.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Status enum
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Valid reports whether s is one of Pending, Completed.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ActionItem is a single follow-up extracted from a meeting.
type ActionItem struct {
	Task     string   `json:"task"`
	Owner    string   `json:"owner"`
	Deadline string   `json:"deadline"`
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`
}

// Result is the canonical analysis shape. Only values that passed Validate
// should leave the analysis packages.
type Result struct {
	Summary     string       `json:"summary"`
	KeyPoints   []string     `json:"keyPoints"`
	ActionItems []ActionItem `json:"actionItems"`
}

// Candidate converts r into the untyped form accepted by Sanitize and Validate.
func (r Result) Candidate() map[string]any {
	kps := make([]any, 0, len(r.KeyPoints))
	for _, kp := range r.KeyPoints {
		kps = append(kps, kp)
	}
	items := make([]any, 0, len(r.ActionItems))
	for _, it := range r.ActionItems {
		items = append(items, it.candidate())
	}
	return map[string]any{
		"summary":     r.Summary,
		"keyPoints":   kps,
		"actionItems": items,
	}
}

func (a ActionItem) candidate() map[string]any {
	m := map[string]any{"task": a.Task}
	if a.Owner != "" {
		m["owner"] = a.Owner
	}
	if a.Deadline != "" {
		m["deadline"] = a.Deadline
	}
	if a.Priority != "" {
		m["priority"] = string(a.Priority)
	}
	if a.Status != "" {
		m["status"] = string(a.Status)
	}
	return m
}

// Metadata travels alongside a Result but is not part of the validated shape.
type Metadata struct {
	Model            string `json:"model"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
}

// Outcome is what an Analyzer returns.
type Outcome struct {
	Result   Result   `json:"result"`
	Metadata Metadata `json:"metadata"`
}

// Analyzer turns raw meeting text into a validated Outcome.
type Analyzer interface {
	Analyze(ctx context.Context, rawText string, meetingType MeetingType) (Outcome, error)
}
