package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	"github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

// Client implements ai.Completer on the OpenAI chat completions API.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// NewClientWithConfig is used for custom base URLs (proxies, Azure, tests).
func NewClientWithConfig(cfg openai.ClientConfig, model string) *Client {
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (c *Client) model() string {
	if c.Model == "" {
		return defaultModel
	}
	return c.Model
}

func (c *Client) Complete(ctx context.Context, in ai.CompletionRequest) (ai.Completion, error) {
	model := c.model()
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: in.System},
			{Role: openai.ChatMessageRoleUser, Content: in.User},
		},
	}
	if in.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and reject a custom temperature
	if isReasoningModel(model) {
		req.MaxCompletionTokens = in.MaxTokens
	} else {
		req.MaxTokens = in.MaxTokens
		req.Temperature = in.Temperature
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return ai.Completion{}, fmt.Errorf("openai chat completion: %w", classify(err))
	}

	out := ai.Completion{
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
	}
	return out, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// classify maps go-openai failures onto the ai error kinds.
func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return ErrorForStatus(status, err)
}

// ErrorForStatus wraps cause with the ai kind for an HTTP status. Zero means
// no response was received.
func ErrorForStatus(status int, cause error) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ai.ErrRateLimited, cause)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ai.ErrServiceAuth, cause)
	default:
		return fmt.Errorf("%w: %w", ai.ErrServiceUnavailable, cause)
	}
}
