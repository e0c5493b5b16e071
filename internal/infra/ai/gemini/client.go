package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	genai "google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Client implements ai.Completer on the Gemini API.
type Client struct {
	cli   *genai.Client
	model string
}

// NewClient builds a Gemini client. baseURL is optional and only set in tests.
func NewClient(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{cli: cli, model: model}, nil
}

func (c *Client) Complete(ctx context.Context, in ai.CompletionRequest) (ai.Completion, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(in.Temperature),
		MaxOutputTokens: int32(in.MaxTokens),
	}
	if in.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: in.System}}}
	}
	if in.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: in.User}}}},
		cfg,
	)
	if err != nil {
		return ai.Completion{}, fmt.Errorf("gemini generate content: %w", classify(err))
	}

	out := ai.Completion{Model: c.model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var sb strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
		out.Content = sb.String()
	}
	return out, nil
}

func classify(err error) error {
	status := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Code
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ai.ErrRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ai.ErrServiceAuth, err)
	default:
		return fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, err)
	}
}
