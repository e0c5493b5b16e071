package ai

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/logging"
)

type fakeCompleter struct {
	mu    sync.Mutex
	resp  ai.Completion
	err   error
	calls []ai.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req ai.CompletionRequest) (ai.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

func TestAnalyze_Success(t *testing.T) {
	fc := &fakeCompleter{resp: ai.Completion{
		Content: `{"summary":" Sprint kickoff. ","keyPoints":["Scope agreed"],
			"actionItems":[{"task":"Write tickets","owner":"Dana","priority":"Urgent"}],"extra":1}`,
		Model:            "gpt-4o-mini-2024-07-18",
		PromptTokens:     300,
		CompletionTokens: 80,
	}}
	svc := NewService(fc, "gpt-4o-mini", logging.Nop())

	out, err := svc.Analyze(context.Background(), "notes", analysis.MeetingSprintPlanning)
	require.NoError(t, err)

	assert.Equal(t, "Sprint kickoff.", out.Result.Summary)
	assert.Equal(t, []string{"Scope agreed"}, out.Result.KeyPoints)
	require.Len(t, out.Result.ActionItems, 1)
	assert.Equal(t, analysis.ActionItem{
		Task: "Write tickets", Owner: "Dana", Deadline: analysis.DefaultDeadline,
		Priority: analysis.PriorityMedium, Status: analysis.StatusPending,
	}, out.Result.ActionItems[0])
	assert.Equal(t, analysis.Metadata{Model: "gpt-4o-mini", PromptTokens: 300, CompletionTokens: 80}, out.Metadata)

	require.Len(t, fc.calls, 1)
	call := fc.calls[0]
	assert.True(t, call.JSON)
	assert.Equal(t, MaxTokens, call.MaxTokens)
	assert.InDelta(t, 0.1, call.Temperature, 1e-6)
	assert.Contains(t, call.System, FocusHint(analysis.MeetingSprintPlanning))
	assert.Equal(t, "Analyze the following meeting notes and extract structured information:\n\nnotes", call.User)
}

func TestAnalyze_NonJSON(t *testing.T) {
	svc := NewService(&fakeCompleter{resp: ai.Completion{Content: "Sure! Here is your summary."}}, "m", logging.Nop())

	_, err := svc.Analyze(context.Background(), "notes", analysis.MeetingGeneral)
	assert.ErrorIs(t, err, ai.ErrInvalidResponseFormat)
}

func TestAnalyze_SchemaFailure(t *testing.T) {
	tests := []string{
		`{"summary":"","keyPoints":["a"]}`,
		`{"summary":"ok","keyPoints":[]}`,
		`[1,2,3]`,
		`"just a string"`,
		`null`,
	}
	for _, content := range tests {
		svc := NewService(&fakeCompleter{resp: ai.Completion{Content: content}}, "m", logging.Nop())
		_, err := svc.Analyze(context.Background(), "notes", analysis.MeetingGeneral)
		assert.ErrorIs(t, err, ai.ErrSchemaValidation, content)
	}
}

func TestAnalyze_TransportErrorsPassThrough(t *testing.T) {
	for _, kind := range []error{ai.ErrRateLimited, ai.ErrServiceAuth, ai.ErrServiceUnavailable} {
		fc := &fakeCompleter{err: fmt.Errorf("provider: %w", kind)}
		svc := NewService(fc, "m", logging.Nop())

		_, err := svc.Analyze(context.Background(), "notes", analysis.MeetingGeneral)
		assert.ErrorIs(t, err, kind)
		assert.Len(t, fc.calls, 1, "no retry")
	}
}

func TestAnalyze_ModelFallsBackToProviderName(t *testing.T) {
	fc := &fakeCompleter{resp: ai.Completion{Content: `{"summary":"s","keyPoints":["k"]}`, Model: "provider-model"}}
	out, err := NewService(fc, "", logging.Nop()).Analyze(context.Background(), "x", analysis.MeetingGeneral)
	require.NoError(t, err)
	assert.Equal(t, "provider-model", out.Metadata.Model)
}

func TestGetSystemPrompt_FocusPerType(t *testing.T) {
	seen := map[string]bool{}
	for _, mt := range analysis.MeetingTypes {
		p := GetSystemPrompt(mt)
		assert.Contains(t, p, FocusHint(mt))
		assert.Contains(t, p, "Unassigned")
		seen[FocusHint(mt)] = true
	}
	assert.Len(t, seen, len(analysis.MeetingTypes))
	assert.Equal(t, FocusHint(analysis.MeetingGeneral), FocusHint("retro"))
}
