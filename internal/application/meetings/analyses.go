package meetings

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysiserrors"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

// Patch untuk edit manual analysis; nil berarti tidak diubah.
type UpdateAnalysisCommand struct {
	Summary     *string
	KeyPoints   *[]string
	ActionItems *[]analysis.ActionItem
}

// GenerateAnalysis runs the analyzer over the meeting notes and stores the
// result as the next version. A failed generation is written to the failure
// log and returned unchanged.
func (s *Service) GenerateAnalysis(ctx context.Context, tenant string, id domain.MeetingID) (*analyst.Analysis, error) {
	m, err := s.Meetings.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	out, err := s.Analyzer.AnalyzeMeeting(ctx, m.RawContent, string(m.Type))
	if err != nil {
		s.recordFailure(ctx, tenant, string(id), err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.Analyses.CountByMeeting(ctx, tenant, string(id))
	if err != nil {
		return nil, err
	}
	now := s.now()
	a := &analyst.Analysis{
		ID:               analyst.AnalysisID(uuid.New().String()),
		TenantID:         tenant,
		MeetingID:        string(id),
		Version:          n + 1,
		Result:           out.Result,
		Model:            out.Metadata.Model,
		PromptTokens:     out.Metadata.PromptTokens,
		CompletionTokens: out.Metadata.CompletionTokens,
		GeneratedAt:      now,
		EditHistory:      []analyst.EditEntry{},
		UpdatedAt:        now,
	}
	if err := s.Analyses.Save(ctx, a); err != nil {
		return nil, err
	}
	s.Log.Info().
		Str("tenant", tenant).
		Str("meeting_id", string(id)).
		Int("version", a.Version).
		Str("model", a.Model).
		Msg("analysis stored")
	return a, nil
}

// recordFailure tetap disimpan walaupun ctx request sudah cancel
func (s *Service) recordFailure(ctx context.Context, tenant, meetingID string, cause error) {
	if s.Failures == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{
		"retryable": ai.Retryable(cause),
	})
	e := &analysiserrors.AnalysisError{
		TenantID:    tenant,
		MeetingID:   meetingID,
		Kind:        string(ai.KindOf(cause)),
		Message:     cause.Error(),
		DetailsJSON: string(details),
		CreatedAt:   s.now(),
	}
	if err := s.Failures.Save(context.WithoutCancel(ctx), e); err != nil {
		s.Log.Warn().Err(err).Str("meeting_id", meetingID).Msg("could not record analysis failure")
	}
}

func (s *Service) LatestAnalysis(ctx context.Context, tenant string, id domain.MeetingID) (*analyst.Analysis, error) {
	if _, err := s.Meetings.Get(ctx, tenant, id); err != nil {
		return nil, err
	}
	return s.Analyses.Latest(ctx, tenant, string(id))
}

func (s *Service) ListAnalysisVersions(ctx context.Context, tenant string, id domain.MeetingID) ([]*analyst.Analysis, error) {
	if _, err := s.Meetings.Get(ctx, tenant, id); err != nil {
		return nil, err
	}
	out, err := s.Analyses.ListByMeeting(ctx, tenant, string(id))
	if out == nil && err == nil {
		out = []*analyst.Analysis{}
	}
	return out, err
}

func (s *Service) AnalysisVersion(ctx context.Context, tenant string, id domain.MeetingID, version int) (*analyst.Analysis, error) {
	if _, err := s.Meetings.Get(ctx, tenant, id); err != nil {
		return nil, err
	}
	return s.Analyses.ByVersion(ctx, tenant, string(id), version)
}

// UpdateAnalysis applies a manual edit to the latest version. The edited
// result goes through the same schema gate as generated output.
func (s *Service) UpdateAnalysis(ctx context.Context, tenant string, id domain.MeetingID, cmd UpdateAnalysisCommand) (*analyst.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.LatestAnalysis(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	next := a.Result
	var fields []string
	if cmd.Summary != nil {
		next.Summary = strings.TrimSpace(*cmd.Summary)
		fields = append(fields, "summary")
	}
	if cmd.KeyPoints != nil {
		next.KeyPoints = *cmd.KeyPoints
		fields = append(fields, "keyPoints")
	}
	if cmd.ActionItems != nil {
		next.ActionItems = *cmd.ActionItems
		fields = append(fields, "actionItems")
	}
	if len(fields) == 0 {
		verr := &domain.ValidationError{}
		verr.Add("body", "at least one of summary, keyPoints, actionItems is required")
		return nil, verr
	}

	return s.applyEdit(ctx, a, next, strings.Join(fields, ","))
}

// applyEdit validates next and stores it over a. Caller holds s.mu.
func (s *Service) applyEdit(ctx context.Context, a *analyst.Analysis, next analysis.Result, field string) (*analyst.Analysis, error) {
	v := analysis.Validate(next)
	if !v.Valid {
		verr := &domain.ValidationError{}
		for _, e := range v.Errors {
			verr.Add(e.Field, e.Message)
		}
		return nil, verr
	}

	prev := a.UpdatedAt
	a.RecordEdit(field, s.now())
	a.Result = *v.Value
	if err := s.Analyses.Update(ctx, a, prev); err != nil {
		return nil, err
	}
	return a, nil
}

// ConfirmAnalysis marks the latest version as reviewed.
func (s *Service) ConfirmAnalysis(ctx context.Context, tenant string, id domain.MeetingID) (*analyst.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.LatestAnalysis(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	prev := a.UpdatedAt
	now := s.now()
	a.ConfirmedAt = &now
	a.UpdatedAt = now
	if err := s.Analyses.Update(ctx, a, prev); err != nil {
		return nil, err
	}
	return a, nil
}

// EditHistory of the latest version, oldest first.
func (s *Service) EditHistory(ctx context.Context, tenant string, id domain.MeetingID) ([]analyst.EditEntry, error) {
	a, err := s.LatestAnalysis(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if a.EditHistory == nil {
		return []analyst.EditEntry{}, nil
	}
	return a.EditHistory, nil
}

func (s *Service) AnalysisFailures(ctx context.Context, tenant string, id domain.MeetingID, limit int) ([]*analysiserrors.AnalysisError, error) {
	if _, err := s.Meetings.Get(ctx, tenant, id); err != nil {
		return nil, err
	}
	if s.Failures == nil {
		return []*analysiserrors.AnalysisError{}, nil
	}
	return s.Failures.ListByMeeting(ctx, tenant, string(id), limit)
}
