package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
)

type AnalysisRepository struct {
	mu   sync.RWMutex
	rows map[analyst.AnalysisID]analyst.Analysis
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{rows: map[analyst.AnalysisID]analyst.Analysis{}}
}

var _ analyst.Repository = (*AnalysisRepository)(nil)

func copyAnalysis(a analyst.Analysis) *analyst.Analysis {
	a.Result = analysis.Result{
		Summary:     a.Result.Summary,
		KeyPoints:   append([]string{}, a.Result.KeyPoints...),
		ActionItems: append([]analysis.ActionItem{}, a.Result.ActionItems...),
	}
	a.EditHistory = append([]analyst.EditEntry{}, a.EditHistory...)
	if a.ConfirmedAt != nil {
		t := *a.ConfirmedAt
		a.ConfirmedAt = &t
	}
	return &a
}

func (r *AnalysisRepository) Save(_ context.Context, a *analyst.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[a.ID] = *copyAnalysis(*a)
	return nil
}

func (r *AnalysisRepository) Update(_ context.Context, a *analyst.Analysis, prevUpdatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[a.ID]
	if !ok || cur.TenantID != a.TenantID {
		return analyst.ErrNotFound
	}
	if !cur.UpdatedAt.Equal(prevUpdatedAt) {
		return analyst.ErrConflict
	}
	r.rows[a.ID] = *copyAnalysis(*a)
	return nil
}

// byMeeting returns versions newest first. Caller holds the lock.
func (r *AnalysisRepository) byMeeting(tenant, meetingID string) []*analyst.Analysis {
	var out []*analyst.Analysis
	for _, a := range r.rows {
		if a.TenantID == tenant && a.MeetingID == meetingID {
			out = append(out, copyAnalysis(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out
}

func (r *AnalysisRepository) Latest(_ context.Context, tenant, meetingID string) (*analyst.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.byMeeting(tenant, meetingID)
	if len(all) == 0 {
		return nil, analyst.ErrNotFound
	}
	return all[0], nil
}

func (r *AnalysisRepository) ByVersion(_ context.Context, tenant, meetingID string, version int) (*analyst.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byMeeting(tenant, meetingID) {
		if a.Version == version {
			return a, nil
		}
	}
	return nil, analyst.ErrNotFound
}

func (r *AnalysisRepository) ListByMeeting(_ context.Context, tenant, meetingID string) ([]*analyst.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byMeeting(tenant, meetingID), nil
}

func (r *AnalysisRepository) LatestByTenant(_ context.Context, tenant string) ([]*analyst.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := map[string]analyst.Analysis{}
	for _, a := range r.rows {
		if a.TenantID != tenant {
			continue
		}
		if cur, ok := latest[a.MeetingID]; !ok || a.Version > cur.Version {
			latest[a.MeetingID] = a
		}
	}
	out := make([]*analyst.Analysis, 0, len(latest))
	for _, a := range latest {
		out = append(out, copyAnalysis(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MeetingID < out[j].MeetingID })
	return out, nil
}

func (r *AnalysisRepository) CountByMeeting(_ context.Context, tenant, meetingID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byMeeting(tenant, meetingID)), nil
}

func (r *AnalysisRepository) DeleteByMeeting(_ context.Context, tenant, meetingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.rows {
		if a.TenantID == tenant && a.MeetingID == meetingID {
			delete(r.rows, id)
		}
	}
	return nil
}
