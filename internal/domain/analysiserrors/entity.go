package analysiserrors

import "time"

// AnalysisError is a persisted failed generation attempt.
type AnalysisError struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	MeetingID   string    `json:"meeting_id"`
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
