package meetings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/meeting-insights/internal/application"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysiserrors"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

// Analyzer is the orchestrator as seen by this package.
type Analyzer interface {
	AnalyzeMeeting(ctx context.Context, rawText, meetingType string) (analysis.Outcome, error)
}

// Service implements use-cases untuk Meeting, Analysis dan Action Item.
// Safe for concurrent use.
type Service struct {
	Meetings domain.Repository
	Analyses analyst.Repository
	Failures analysiserrors.Repository
	Analyzer Analyzer
	// Exports is optional; nil disables UploadExport.
	Exports domain.ExportStore
	Clock   application.Clock
	Log     zerolog.Logger

	// serialises version numbering and read-modify-write edits of an
	// analysis; the repositories reject edits from other processes with
	// analyst.ErrConflict.
	mu sync.Mutex
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

//
// ==== MEETINGS ====
//

// Command untuk create meeting
type CreateMeetingCommand struct {
	TenantID     string
	Title        string
	Type         string
	RawContent   string
	Date         *time.Time
	Participants []string
	Tags         []string
}

// Patch untuk update meeting; nil berarti tidak diubah.
type UpdateMeetingCommand struct {
	Title        *string
	Type         *string
	Date         *time.Time
	Participants *[]string
	Tags         *[]string
	// RawContent is rejected when set; notes are immutable.
	RawContent *string
}

// MeetingDetail is a meeting plus its newest analysis, if any.
type MeetingDetail struct {
	*domain.Meeting
	Analysis *analyst.Analysis `json:"analysis"`
}

// MeetingSummary is a list row.
type MeetingSummary struct {
	*domain.Meeting
	AnalysisVersion int `json:"analysis_version"`
	ActionItemCount int `json:"action_item_count"`
	PendingCount    int `json:"pending_count"`
}

// SharedMeeting is the public, read-only view behind a share token.
type SharedMeeting struct {
	Title        string               `json:"title"`
	Type         analysis.MeetingType `json:"type"`
	Date         time.Time            `json:"date"`
	Participants []string             `json:"participants"`
	Tags         []string             `json:"tags"`
	Analysis     *analysis.Result     `json:"analysis"`
}

func (s *Service) CreateMeeting(ctx context.Context, cmd CreateMeetingCommand) (*domain.Meeting, error) {
	verr := &domain.ValidationError{}
	title := validateTitle(verr, cmd.Title)
	mt := validateType(verr, cmd.Type)
	if strings.TrimSpace(cmd.RawContent) == "" {
		verr.Add("raw_content", "is required")
	} else if utf8.RuneCountInString(cmd.RawContent) > domain.MaxRawContentLen {
		verr.Add("raw_content", "must be at most 100000 characters")
	}
	participants := validateParticipants(verr, cmd.Participants)
	tags := validateTags(verr, cmd.Tags)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	date := now
	if cmd.Date != nil {
		date = cmd.Date.UTC()
	}
	m := &domain.Meeting{
		ID:           domain.MeetingID(uuid.New().String()),
		TenantID:     cmd.TenantID,
		Title:        title,
		Type:         mt,
		RawContent:   cmd.RawContent,
		Date:         date,
		Participants: participants,
		Tags:         tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Meetings.Save(ctx, m); err != nil {
		return nil, err
	}
	s.Log.Info().Str("tenant", m.TenantID).Str("meeting_id", string(m.ID)).Str("type", string(m.Type)).Msg("meeting created")
	return m, nil
}

// GetMeeting ambil 1 meeting by id beserta analysis terbaru
func (s *Service) GetMeeting(ctx context.Context, tenant string, id domain.MeetingID) (*MeetingDetail, error) {
	m, err := s.Meetings.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	latest, err := s.Analyses.Latest(ctx, tenant, string(id))
	if err != nil && !errors.Is(err, analyst.ErrNotFound) {
		return nil, err
	}
	return &MeetingDetail{Meeting: m, Analysis: latest}, nil
}

func (s *Service) ListMeetings(ctx context.Context, tenant string, f domain.ListFilter) (domain.PaginatedResult[MeetingSummary], error) {
	f = f.Normalize()
	rows, total, err := s.Meetings.List(ctx, tenant, f)
	if err != nil {
		return domain.PaginatedResult[MeetingSummary]{}, err
	}

	latest, err := s.latestByMeeting(ctx, tenant)
	if err != nil {
		return domain.PaginatedResult[MeetingSummary]{}, err
	}

	out := make([]MeetingSummary, 0, len(rows))
	for _, m := range rows {
		sum := MeetingSummary{Meeting: m}
		if a, ok := latest[string(m.ID)]; ok {
			sum.AnalysisVersion = a.Version
			sum.ActionItemCount = len(a.Result.ActionItems)
			for _, it := range a.Result.ActionItems {
				if it.Status == analysis.StatusPending {
					sum.PendingCount++
				}
			}
		}
		out = append(out, sum)
	}
	return domain.NewPage(out, f.Page, f.PageSize, total), nil
}

func (s *Service) UpdateMeeting(ctx context.Context, tenant string, id domain.MeetingID, cmd UpdateMeetingCommand) (*domain.Meeting, error) {
	verr := &domain.ValidationError{}
	if cmd.RawContent != nil {
		verr.Add("raw_content", "is immutable once created")
	}

	m, err := s.Meetings.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if cmd.Title != nil {
		m.Title = validateTitle(verr, *cmd.Title)
	}
	if cmd.Type != nil {
		m.Type = validateType(verr, *cmd.Type)
	}
	if cmd.Date != nil {
		m.Date = cmd.Date.UTC()
	}
	if cmd.Participants != nil {
		m.Participants = validateParticipants(verr, *cmd.Participants)
	}
	if cmd.Tags != nil {
		m.Tags = validateTags(verr, *cmd.Tags)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	m.UpdatedAt = s.now()
	if err := s.Meetings.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMeeting hapus meeting beserta semua analysis dan error log-nya
func (s *Service) DeleteMeeting(ctx context.Context, tenant string, id domain.MeetingID) error {
	if err := s.Meetings.Delete(ctx, tenant, id); err != nil {
		return err
	}
	if err := s.Analyses.DeleteByMeeting(ctx, tenant, string(id)); err != nil {
		return err
	}
	if s.Failures != nil {
		if err := s.Failures.DeleteByMeeting(ctx, tenant, string(id)); err != nil {
			return err
		}
	}
	s.Log.Info().Str("tenant", tenant).Str("meeting_id", string(id)).Msg("meeting deleted")
	return nil
}

func (s *Service) ToggleArchive(ctx context.Context, tenant string, id domain.MeetingID) (*domain.Meeting, error) {
	m, err := s.Meetings.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	m.IsArchived = !m.IsArchived
	m.UpdatedAt = s.now()
	if err := s.Meetings.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ToggleShare flips sharing. The token is minted on first share and kept
// afterwards so old links work again when sharing is re-enabled.
func (s *Service) ToggleShare(ctx context.Context, tenant string, id domain.MeetingID) (*domain.Meeting, error) {
	m, err := s.Meetings.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	m.IsShared = !m.IsShared
	if m.IsShared && m.ShareToken == "" {
		m.ShareToken = uuid.New().String()
	}
	m.UpdatedAt = s.now()
	if err := s.Meetings.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetShared(ctx context.Context, token string) (*SharedMeeting, error) {
	m, err := s.Meetings.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	view := &SharedMeeting{
		Title:        m.Title,
		Type:         m.Type,
		Date:         m.Date,
		Participants: m.Participants,
		Tags:         m.Tags,
	}
	latest, err := s.Analyses.Latest(ctx, m.TenantID, string(m.ID))
	switch {
	case err == nil:
		view.Analysis = &latest.Result
	case !errors.Is(err, analyst.ErrNotFound):
		return nil, err
	}
	return view, nil
}

func (s *Service) latestByMeeting(ctx context.Context, tenant string) (map[string]*analyst.Analysis, error) {
	all, err := s.Analyses.LatestByTenant(ctx, tenant)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*analyst.Analysis, len(all))
	for _, a := range all {
		out[a.MeetingID] = a
	}
	return out, nil
}

//
// ==== VALIDATION HELPERS ====
//

func validateTitle(verr *domain.ValidationError, title string) string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		verr.Add("title", "is required")
	case utf8.RuneCountInString(title) > domain.MaxTitleLen:
		verr.Add("title", "must be at most 200 characters")
	}
	return title
}

func validateType(verr *domain.ValidationError, t string) analysis.MeetingType {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return analysis.MeetingGeneral
	}
	mt := analysis.MeetingType(t)
	if !mt.Known() {
		verr.Add("type", "must be one of standup, sprint-planning, client-meeting, academic, leadership, general")
	}
	return mt
}

func validateParticipants(verr *domain.ValidationError, names []string) []string {
	names = domain.NormalizeParticipants(names)
	if len(names) > domain.MaxParticipants {
		verr.Add("participants", "must have at most 100 entries")
	}
	for _, n := range names {
		if utf8.RuneCountInString(n) > domain.MaxParticipantLen {
			verr.Add("participants", "each entry must be at most 100 characters")
			break
		}
	}
	return names
}

func validateTags(verr *domain.ValidationError, tags []string) []string {
	tags = domain.NormalizeTags(tags)
	if len(tags) > domain.MaxTags {
		verr.Add("tags", "must have at most 20 entries")
	}
	for _, t := range tags {
		if utf8.RuneCountInString(t) > domain.MaxTagLen {
			verr.Add("tags", "each tag must be at most 50 characters")
			break
		}
	}
	return tags
}
