package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
)

// Service is the LLM-backed analysis.Analyzer.
type Service struct {
	client ai.Completer
	model  string
	log    zerolog.Logger
}

// NewService wires a completer. model is the configured model name and is
// what gets reported in metadata.
func NewService(client ai.Completer, model string, log zerolog.Logger) *Service {
	return &Service{client: client, model: model, log: log.With().Str("component", "ai_analyzer").Logger()}
}

var _ analysis.Analyzer = (*Service)(nil)

// Analyze makes exactly one completion call. Failures come back as one of the
// ai error kinds; there is no retry and no partial result.
func (s *Service) Analyze(ctx context.Context, rawText string, meetingType analysis.MeetingType) (analysis.Outcome, error) {
	resp, err := s.client.Complete(ctx, ai.CompletionRequest{
		System:      GetSystemPrompt(meetingType),
		User:        GetUserPrompt(rawText),
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		JSON:        true,
	})
	if err != nil {
		return analysis.Outcome{}, err
	}

	var parsed any
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		s.log.Error().Err(err).Int("content_len", len(resp.Content)).Msg("ai response is not json")
		return analysis.Outcome{}, fmt.Errorf("%w: %v", ai.ErrInvalidResponseFormat, err)
	}

	v := analysis.Validate(analysis.Sanitize(parsed))
	if !v.Valid {
		s.log.Error().Str("violations", v.Message()).Msg("ai output failed validation")
		return analysis.Outcome{}, fmt.Errorf("%w: %s", ai.ErrSchemaValidation, v.Message())
	}

	model := s.model
	if model == "" {
		model = resp.Model
	}
	return analysis.Outcome{
		Result: *v.Value,
		Metadata: analysis.Metadata{
			Model:            model,
			PromptTokens:     resp.PromptTokens,
			CompletionTokens: resp.CompletionTokens,
		},
	}, nil
}
