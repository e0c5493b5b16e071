// Package bootstrap builds the pieces shared by the API server and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"

	appai "github.com/bryanwahyu/meeting-insights/internal/application/ai"
	appanalysis "github.com/bryanwahyu/meeting-insights/internal/application/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/config"
	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/infra/ai/gemini"
	"github.com/bryanwahyu/meeting-insights/internal/infra/ai/heuristic"
	"github.com/bryanwahyu/meeting-insights/internal/infra/ai/openai"
)

// Completer returns the provider client for cfg, or nil when no usable key
// is configured.
func Completer(ctx context.Context, cfg config.AI) (ai.Completer, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return c, nil
	case config.ProviderOpenAI:
		if cfg.BaseURL != "" {
			oc := goopenai.DefaultConfig(cfg.APIKey)
			oc.BaseURL = cfg.BaseURL
			return openai.NewClientWithConfig(oc, cfg.Model), nil
		}
		return openai.NewClient(cfg.APIKey, cfg.Model), nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
}

// Orchestrator wires the AI analyzer (when configured) and the heuristic
// fallback. The returned label names the active backend for /health.
func Orchestrator(ctx context.Context, cfg config.AI, rec appanalysis.Recorder, log zerolog.Logger) (*appanalysis.Service, string, error) {
	client, err := Completer(ctx, cfg)
	if err != nil {
		return nil, "", err
	}

	var aiAnalyzer analysis.Analyzer
	label := analysis.FallbackModel
	if client != nil {
		aiAnalyzer = appai.NewService(client, cfg.Model, log)
		label = cfg.Provider
		if cfg.Model != "" {
			label += "/" + cfg.Model
		}
	}
	return appanalysis.NewService(aiAnalyzer, heuristic.New(log), rec, log), label, nil
}
