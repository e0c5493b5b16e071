package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
)

// Path labels for logs and metrics.
const (
	PathAI       = "ai"
	PathFallback = "fallback"
)

// Recorder receives one observation per analysis. The prometheus metrics in
// middleware implement it.
type Recorder interface {
	ObserveAnalysis(path, model, outcome string, promptTokens, completionTokens int, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(string, string, string, int, int, time.Duration) {}

// Service picks the analyzer once per request: the AI analyzer when one is
// configured, the heuristic analyzer otherwise. It never falls back mid-request.
type Service struct {
	ai       domain.Analyzer
	fallback domain.Analyzer
	rec      Recorder
	log      zerolog.Logger
}

// NewService; aiAnalyzer nil berarti AI belum dikonfigurasi.
func NewService(aiAnalyzer, fallback domain.Analyzer, rec Recorder, log zerolog.Logger) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{ai: aiAnalyzer, fallback: fallback, rec: rec, log: log.With().Str("component", "orchestrator").Logger()}
}

// AIEnabled reports which path AnalyzeMeeting will take.
func (s *Service) AIEnabled() bool { return s.ai != nil }

// AnalyzeMeeting normalises meetingType and runs the selected analyzer. Only
// the AI path can fail.
func (s *Service) AnalyzeMeeting(ctx context.Context, rawText, meetingType string) (domain.Outcome, error) {
	mt := domain.ParseMeetingType(meetingType)
	path, analyzer := PathFallback, s.fallback
	if s.ai != nil {
		path, analyzer = PathAI, s.ai
	}

	start := time.Now()
	out, err := analyzer.Analyze(ctx, rawText, mt)
	took := time.Since(start)

	if err != nil {
		kind := ai.KindOf(err)
		s.rec.ObserveAnalysis(path, "", string(kind), 0, 0, took)
		s.log.Error().Err(err).
			Str("path", path).
			Str("meeting_type", string(mt)).
			Str("kind", string(kind)).
			Bool("retryable", ai.Retryable(err)).
			Dur("took", took).
			Msg("analysis failed")
		return domain.Outcome{}, err
	}

	s.rec.ObserveAnalysis(path, out.Metadata.Model, "ok", out.Metadata.PromptTokens, out.Metadata.CompletionTokens, took)
	s.log.Info().
		Str("path", path).
		Str("meeting_type", string(mt)).
		Str("model", out.Metadata.Model).
		Int("key_points", len(out.Result.KeyPoints)).
		Int("action_items", len(out.Result.ActionItems)).
		Int("prompt_tokens", out.Metadata.PromptTokens).
		Int("completion_tokens", out.Metadata.CompletionTokens).
		Dur("took", took).
		Msg("analysis completed")
	return out, nil
}
