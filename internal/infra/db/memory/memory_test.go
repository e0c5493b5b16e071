package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysiserrors"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
	"github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

func seedMeetings(t *testing.T, r *MeetingRepository) {
	t.Helper()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	rows := []meetings.Meeting{
		{ID: "m1", Title: "Daily sync", Type: analysis.MeetingStandup, RawContent: "api work", Tags: []string{"backend"}},
		{ID: "m2", Title: "Client kickoff", Type: analysis.MeetingClient, RawContent: "contract review", Tags: []string{"sales"}},
		{ID: "m3", Title: "Board update", Type: analysis.MeetingLeadership, RawContent: "budget", IsArchived: true},
		{ID: "m4", Title: "another sync", Type: analysis.MeetingStandup, RawContent: "frontend", Tags: []string{"frontend"}},
	}
	for i, m := range rows {
		m.TenantID = "acme"
		m.Date = base.Add(time.Duration(i) * 24 * time.Hour)
		m.CreatedAt = base.Add(-time.Duration(i) * time.Hour)
		require.NoError(t, r.Save(context.Background(), &m))
	}
}

func TestMeetingRepository_ListFilters(t *testing.T) {
	r := NewMeetingRepository()
	seedMeetings(t, r)
	ctx := context.Background()

	got, total, err := r.List(ctx, "acme", meetings.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, meetings.MeetingID("m4"), got[0].ID, "newest date first")

	got, _, _ = r.List(ctx, "acme", meetings.ListFilter{Archived: true})
	require.Len(t, got, 1)
	assert.Equal(t, meetings.MeetingID("m3"), got[0].ID)

	got, _, _ = r.List(ctx, "acme", meetings.ListFilter{Type: analysis.MeetingStandup, SortBy: "title", SortOrder: "asc"})
	require.Len(t, got, 2)
	assert.Equal(t, "another sync", got[0].Title)

	got, _, _ = r.List(ctx, "acme", meetings.ListFilter{Tag: "SALES"})
	require.Len(t, got, 1)
	assert.Equal(t, meetings.MeetingID("m2"), got[0].ID)

	got, _, _ = r.List(ctx, "acme", meetings.ListFilter{Search: "FRONT"})
	require.Len(t, got, 1)

	got, total, _ = r.List(ctx, "acme", meetings.ListFilter{Page: 2, PageSize: 2})
	assert.EqualValues(t, 3, total)
	assert.Len(t, got, 1)

	got, _, _ = r.List(ctx, "other", meetings.ListFilter{})
	assert.Empty(t, got)
}

func TestMeetingRepository_GetReturnsCopy(t *testing.T) {
	r := NewMeetingRepository()
	seedMeetings(t, r)
	ctx := context.Background()

	m, err := r.Get(ctx, "acme", "m1")
	require.NoError(t, err)
	m.Tags[0] = "mutated"

	again, _ := r.Get(ctx, "acme", "m1")
	assert.Equal(t, "backend", again.Tags[0])

	_, err = r.Get(ctx, "acme", "missing")
	assert.ErrorIs(t, err, meetings.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "acme", "missing"), meetings.ErrNotFound)
}

func TestMeetingRepository_ShareToken(t *testing.T) {
	r := NewMeetingRepository()
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, &meetings.Meeting{ID: "m1", TenantID: "acme", ShareToken: "tok", IsShared: false}))

	_, err := r.GetByShareToken(ctx, "tok")
	assert.ErrorIs(t, err, meetings.ErrNotFound)

	require.NoError(t, r.Save(ctx, &meetings.Meeting{ID: "m1", TenantID: "acme", ShareToken: "tok", IsShared: true}))
	m, err := r.GetByShareToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, meetings.MeetingID("m1"), m.ID)
}

func TestAnalysisRepository_Versions(t *testing.T) {
	r := NewAnalysisRepository()
	ctx := context.Background()
	for _, mid := range []string{"m1", "m2"} {
		for v := 1; v <= 3; v++ {
			require.NoError(t, r.Save(ctx, &analyst.Analysis{
				ID: analyst.AnalysisID(fmt.Sprintf("%s-v%d", mid, v)), TenantID: "acme", MeetingID: mid, Version: v,
			}))
		}
	}

	latest, err := r.Latest(ctx, "acme", "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, latest.Version)

	v2, err := r.ByVersion(ctx, "acme", "m1", 2)
	require.NoError(t, err)
	assert.Equal(t, analyst.AnalysisID("m1-v2"), v2.ID)

	all, _ := r.ListByMeeting(ctx, "acme", "m2")
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].Version)

	perMeeting, _ := r.LatestByTenant(ctx, "acme")
	require.Len(t, perMeeting, 2)
	assert.Equal(t, 3, perMeeting[0].Version)

	require.NoError(t, r.DeleteByMeeting(ctx, "acme", "m1"))
	n, _ := r.CountByMeeting(ctx, "acme", "m1")
	assert.Zero(t, n)
	_, err = r.Latest(ctx, "acme", "m1")
	assert.ErrorIs(t, err, analyst.ErrNotFound)
}

func TestAnalysisErrorRepository(t *testing.T) {
	r := NewAnalysisErrorRepository()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Save(ctx, &analysiserrors.AnalysisError{TenantID: "acme", MeetingID: "m1", Kind: "rate_limited", Message: fmt.Sprint(i)}))
	}
	require.NoError(t, r.Save(ctx, &analysiserrors.AnalysisError{TenantID: "acme", MeetingID: "m2"}))

	got, err := r.ListByMeeting(ctx, "acme", "m1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Message)
	assert.EqualValues(t, 3, got[0].ID)

	require.NoError(t, r.DeleteByMeeting(ctx, "acme", "m1"))
	got, _ = r.ListByMeeting(ctx, "acme", "m1", 0)
	assert.Empty(t, got)
	got, _ = r.ListByMeeting(ctx, "acme", "m2", 0)
	assert.Len(t, got, 1)
}

func TestAnalysisRepository_UpdateIsOptimistic(t *testing.T) {
	r := NewAnalysisRepository()
	ctx := context.Background()
	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &analyst.Analysis{ID: "a1", TenantID: "acme", MeetingID: "m1", Version: 1, UpdatedAt: t1}
	require.NoError(t, r.Save(ctx, a))

	edit := *a
	edit.Result.Summary = "first"
	edit.UpdatedAt = t1.Add(time.Minute)
	require.NoError(t, r.Update(ctx, &edit, t1))

	stale := *a
	stale.Result.Summary = "stale"
	stale.UpdatedAt = t1.Add(2 * time.Minute)
	assert.ErrorIs(t, r.Update(ctx, &stale, t1), analyst.ErrConflict)

	got, err := r.Latest(ctx, "acme", "m1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Result.Summary)

	missing := analyst.Analysis{ID: "nope", TenantID: "acme"}
	assert.ErrorIs(t, r.Update(ctx, &missing, t1), analyst.ErrNotFound)
	other := edit
	other.TenantID = "globex"
	assert.ErrorIs(t, r.Update(ctx, &other, edit.UpdatedAt), analyst.ErrNotFound)
}
