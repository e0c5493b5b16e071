// Package memory holds map-backed repositories for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

type MeetingRepository struct {
	mu   sync.RWMutex
	rows map[string]map[domain.MeetingID]domain.Meeting
}

func NewMeetingRepository() *MeetingRepository {
	return &MeetingRepository{rows: map[string]map[domain.MeetingID]domain.Meeting{}}
}

var _ domain.Repository = (*MeetingRepository)(nil)

func copyMeeting(m domain.Meeting) *domain.Meeting {
	m.Participants = append([]string{}, m.Participants...)
	m.Tags = append([]string{}, m.Tags...)
	return &m
}

func (r *MeetingRepository) Save(_ context.Context, m *domain.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[m.TenantID]
	if !ok {
		t = map[domain.MeetingID]domain.Meeting{}
		r.rows[m.TenantID] = t
	}
	t[m.ID] = *copyMeeting(*m)
	return nil
}

func (r *MeetingRepository) Get(_ context.Context, tenant string, id domain.MeetingID) (*domain.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rows[tenant][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyMeeting(m), nil
}

func (r *MeetingRepository) GetByShareToken(_ context.Context, token string) (*domain.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if token == "" {
		return nil, domain.ErrNotFound
	}
	for _, t := range r.rows {
		for _, m := range t {
			if m.IsShared && m.ShareToken == token {
				return copyMeeting(m), nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MeetingRepository) List(_ context.Context, tenant string, f domain.ListFilter) ([]*domain.Meeting, int64, error) {
	f = f.Normalize()
	search := strings.ToLower(f.Search)

	r.mu.RLock()
	var matched []*domain.Meeting
	for _, m := range r.rows[tenant] {
		if m.IsArchived != f.Archived {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Tag != "" && !containsString(m.Tags, f.Tag) {
			continue
		}
		if search != "" && !matchesSearch(m, search) {
			continue
		}
		matched = append(matched, copyMeeting(m))
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less, equal bool
		switch f.SortBy {
		case domain.SortByTitle:
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			less, equal = at < bt, at == bt
		case domain.SortByCreatedAt:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		default:
			less, equal = a.Date.Before(b.Date), a.Date.Equal(b.Date)
		}
		if equal {
			return a.ID < b.ID
		}
		if f.SortOrder == "asc" {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	start := f.Offset()
	if start >= len(matched) {
		return []*domain.Meeting{}, total, nil
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MeetingRepository) Delete(_ context.Context, tenant string, id domain.MeetingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[tenant][id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows[tenant], id)
	return nil
}

func (r *MeetingRepository) Count(_ context.Context, tenant string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rows[tenant])), nil
}

func matchesSearch(m domain.Meeting, q string) bool {
	if strings.Contains(strings.ToLower(m.Title), q) || strings.Contains(strings.ToLower(m.RawContent), q) {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(t, q) {
			return true
		}
	}
	return false
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
