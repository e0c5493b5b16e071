package analysiserrors

import "context"

// Repository defines persistence for analysis errors
type Repository interface {
	Save(ctx context.Context, e *AnalysisError) error
	ListByMeeting(ctx context.Context, tenant, meetingID string, limit int) ([]*AnalysisError, error)
	DeleteByMeeting(ctx context.Context, tenant, meetingID string) error
}
