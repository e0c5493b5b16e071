package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysiserrors"
)

type AnalysisErrorRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   []analysiserrors.AnalysisError
}

func NewAnalysisErrorRepository() *AnalysisErrorRepository {
	return &AnalysisErrorRepository{}
}

var _ analysiserrors.Repository = (*AnalysisErrorRepository)(nil)

func (r *AnalysisErrorRepository) Save(_ context.Context, e *analysiserrors.AnalysisError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.rows = append(r.rows, *e)
	return nil
}

// ListByMeeting returns newest first.
func (r *AnalysisErrorRepository) ListByMeeting(_ context.Context, tenant, meetingID string, limit int) ([]*analysiserrors.AnalysisError, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*analysiserrors.AnalysisError{}
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.rows[i]
		if e.TenantID == tenant && e.MeetingID == meetingID {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *AnalysisErrorRepository) DeleteByMeeting(_ context.Context, tenant, meetingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, e := range r.rows {
		if e.TenantID != tenant || e.MeetingID != meetingID {
			kept = append(kept, e)
		}
	}
	r.rows = kept
	return nil
}
