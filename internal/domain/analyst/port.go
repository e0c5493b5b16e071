package analyst

import (
	"context"
	"time"
)

// Repository port for persisting and querying analyses
type Repository interface {
	// Save inserts or updates by id.
	Save(ctx context.Context, a *Analysis) error
	// Update writes the editable columns only while the stored UpdatedAt still
	// equals prevUpdatedAt; otherwise it returns ErrConflict.
	Update(ctx context.Context, a *Analysis, prevUpdatedAt time.Time) error
	Latest(ctx context.Context, tenant, meetingID string) (*Analysis, error)
	ByVersion(ctx context.Context, tenant, meetingID string, version int) (*Analysis, error)
	// ListByMeeting returns every version, newest first.
	ListByMeeting(ctx context.Context, tenant, meetingID string) ([]*Analysis, error)
	// LatestByTenant returns the newest version for each meeting of the tenant.
	LatestByTenant(ctx context.Context, tenant string) ([]*Analysis, error)
	CountByMeeting(ctx context.Context, tenant, meetingID string) (int, error)
	DeleteByMeeting(ctx context.Context, tenant, meetingID string) error
}
