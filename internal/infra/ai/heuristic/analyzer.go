// Package heuristic extracts key points and action items from meeting notes
// with ordered regex rules. It is the analyzer used when no AI backend is
// configured.
package heuristic

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
)

const (
	maxKeyPoints   = 10
	minKeyPointLen = 10
	minTaskLen     = 3

	placeholderKeyPoint = "Meeting notes recorded. Configure AI API key for detailed analysis."
	degenerateKeyPoint  = "Meeting notes recorded"
	summaryFormat       = "Meeting notes contain %d line(s) of content. Type: %s. Configure an AI API key for AI-powered analysis."
)

// actionRules are tried in order; the first hit decides the task text. A rule
// without a capture group uses the whole line.
var actionRules = []*regexp.Regexp{
	// explicit markers and modal phrasing
	regexp.MustCompile(`(?i)\b(?:action[:\s]*|todo[:\s]*|task[:\s]*|needs?\s+to\s+|should\s+|must\s+|will\s+)(.+)`),
	// markdown checkbox
	regexp.MustCompile(`(?i)^[-*]\s*\[[ x]\]\s*(.+)`),
	// assignment phrasing
	regexp.MustCompile(`(?i)(?:assigned?\s+to\s+|owner[:\s]*)`),
}

var (
	bulletRe  = regexp.MustCompile(`^[-*•]\s*`)
	checkedRe = regexp.MustCompile(`(?i)^[-*]\s*\[x\]`)

	assigneeRe = regexp.MustCompile(`(?:[Aa]ssigned?\s+to|[Oo]wner)[:\s]*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	speakerRe  = regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s*[-:]`)
	handleRe   = regexp.MustCompile(`@(\w+)`)

	deadlineRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:by|before|due|deadline)[:\s]*(\d{4}-\d{2}-\d{2})`),
		regexp.MustCompile(`(?i)\b(?:by|before|due|deadline)[:\s]*((?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\w*\s+\d{1,2}(?:,?\s*\d{4})?)`),
	}

	highPriorityRe = regexp.MustCompile(`(?i)\b(?:urgent|critical|asap|immediately|blocker)`)
	lowPriorityRe  = regexp.MustCompile(`(?i)nice.?to.?have|optional|low.?priority|when.?possible`)
	completedRe    = regexp.MustCompile(`(?i)\b(?:done|completed|finished|resolved)\b`)
)

// Words that open a line as a label rather than a speaker name ("Action: ...").
var notNames = map[string]bool{
	"Action": true, "Actions": true, "Todo": true, "Task": true, "Tasks": true,
	"Note": true, "Notes": true, "Decision": true, "Decisions": true,
	"Update": true, "Updates": true, "Agenda": true, "Summary": true,
	"Blocker": true, "Blockers": true, "Owner": true, "Deadline": true, "Done": true,
}

// Analyzer implements analysis.Analyzer without any external service.
type Analyzer struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Analyzer {
	return &Analyzer{log: log.With().Str("component", "fallback_analyzer").Logger()}
}

var _ analysis.Analyzer = (*Analyzer)(nil)

// Analyze never returns an error.
func (a *Analyzer) Analyze(_ context.Context, rawText string, meetingType analysis.MeetingType) (analysis.Outcome, error) {
	res, ok := Extract(rawText, meetingType)
	if !ok {
		a.log.Error().Msg("fallback output failed validation, returning degenerate result")
	}
	return analysis.Outcome{
		Result:   res,
		Metadata: analysis.Metadata{Model: analysis.FallbackModel},
	}, nil
}

// Extract runs the rules over rawText. ok is false when the extracted result
// failed validation and the degenerate result was returned instead.
func Extract(rawText string, meetingType analysis.MeetingType) (res analysis.Result, ok bool) {
	lines := splitLines(rawText)
	summary := fmt.Sprintf(summaryFormat, len(lines), analysis.ParseMeetingType(string(meetingType)))

	out := analysis.Result{Summary: summary, KeyPoints: []string{}, ActionItems: []analysis.ActionItem{}}
	for _, line := range lines {
		if item, isAction := extractAction(line); isAction {
			out.ActionItems = append(out.ActionItems, item)
			continue
		}
		if runeLen(line) > minKeyPointLen && len(out.KeyPoints) < maxKeyPoints {
			if kp := stripBullet(line); kp != "" {
				out.KeyPoints = append(out.KeyPoints, truncate(kp, analysis.MaxKeyPointLen))
			}
		}
	}
	if len(out.KeyPoints) == 0 {
		out.KeyPoints = append(out.KeyPoints, placeholderKeyPoint)
	}

	v := analysis.Validate(analysis.Sanitize(out))
	if !v.Valid {
		return analysis.Result{
			Summary:     summary,
			KeyPoints:   []string{degenerateKeyPoint},
			ActionItems: []analysis.ActionItem{},
		}, false
	}
	return *v.Value, true
}

func extractAction(line string) (analysis.ActionItem, bool) {
	task, matched := "", false
	for _, re := range actionRules {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		matched = true
		task = line
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			task = m[1]
		}
		break
	}
	if !matched {
		return analysis.ActionItem{}, false
	}
	task = stripBullet(task)
	if runeLen(task) <= minTaskLen {
		return analysis.ActionItem{}, false
	}

	item := analysis.ActionItem{
		Task:     truncate(task, analysis.MaxTaskLen),
		Owner:    truncate(findOwner(line), analysis.MaxOwnerLen),
		Deadline: truncate(findDeadline(line), analysis.MaxDeadlineLen),
		Priority: analysis.PriorityMedium,
		Status:   analysis.StatusPending,
	}
	switch {
	case highPriorityRe.MatchString(line):
		item.Priority = analysis.PriorityHigh
	case lowPriorityRe.MatchString(line):
		item.Priority = analysis.PriorityLow
	}
	if completedRe.MatchString(line) || checkedRe.MatchString(line) {
		item.Status = analysis.StatusCompleted
	}
	return item, true
}

func findOwner(line string) string {
	if m := assigneeRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := speakerRe.FindStringSubmatch(stripBullet(line)); m != nil {
		name := strings.TrimSpace(m[1])
		if first, _, _ := strings.Cut(name, " "); !notNames[first] {
			return name
		}
	}
	if m := handleRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return analysis.DefaultOwner
}

func findDeadline(line string) string {
	for _, re := range deadlineRules {
		if m := re.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return analysis.DefaultDeadline
}

func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func stripBullet(s string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

func runeLen(s string) int { return len([]rune(s)) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
