package ai

import "context"

// CompletionRequest is a single system+user exchange.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Completion is the raw text the model produced plus usage.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Completer is the outbound port to an LLM provider. Implementations must
// translate provider failures into ErrRateLimited, ErrServiceAuth or
// ErrServiceUnavailable.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
