package analyst

import (
	"errors"
	"time"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
)

// AnalysisID identifier type
type AnalysisID string

var (
	ErrNotFound = errors.New("analysis not found")
	// ErrConflict: the analysis changed between read and write.
	ErrConflict = errors.New("analysis was modified concurrently, reload and retry")
)

// EditEntry keeps the result as it was before a manual edit.
type EditEntry struct {
	EditedAt time.Time       `json:"edited_at"`
	Field    string          `json:"field"`
	Previous analysis.Result `json:"previous"`
}

// Analysis is one generated version of a meeting's analysis. Versions start
// at 1 and grow per meeting.
type Analysis struct {
	ID               AnalysisID      `json:"id"`
	TenantID         string          `json:"tenant_id"`
	MeetingID        string          `json:"meeting_id"`
	Version          int             `json:"version"`
	Result           analysis.Result `json:"result"`
	Model            string          `json:"model"`
	PromptTokens     int             `json:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens"`
	GeneratedAt      time.Time       `json:"generated_at"`
	IsEdited         bool            `json:"is_edited"`
	EditHistory      []EditEntry     `json:"edit_history"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// RecordEdit snapshots the current result before it is replaced.
func (a *Analysis) RecordEdit(field string, at time.Time) {
	a.EditHistory = append(a.EditHistory, EditEntry{EditedAt: at, Field: field, Previous: cloneResult(a.Result)})
	a.IsEdited = true
	a.UpdatedAt = at
}

func cloneResult(r analysis.Result) analysis.Result {
	out := analysis.Result{Summary: r.Summary}
	out.KeyPoints = append([]string{}, r.KeyPoints...)
	out.ActionItems = append([]analysis.ActionItem{}, r.ActionItems...)
	return out
}
