package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/meeting-insights/internal/application"
	appanalysis "github.com/bryanwahyu/meeting-insights/internal/application/analysis"
	appmeetings "github.com/bryanwahyu/meeting-insights/internal/application/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
	"github.com/bryanwahyu/meeting-insights/internal/infra/ai/heuristic"
	"github.com/bryanwahyu/meeting-insights/internal/infra/db/memory"
	"github.com/bryanwahyu/meeting-insights/internal/logging"
	"github.com/bryanwahyu/meeting-insights/internal/middleware"
)

const notes = `Sprint planning
Action: Submit report by 2026-03-01
URGENT: Bob must fix the blocker by Friday
- [x] Close the old epic`

type stubAnalyzer struct{ err error }

func (s stubAnalyzer) AnalyzeMeeting(context.Context, string, string) (analysis.Outcome, error) {
	return analysis.Outcome{}, s.err
}

type testServer struct {
	handler http.Handler
	svc     *appmeetings.Service
	reg     *prometheus.Registry
	apiKey  string
}

func newTestServer(t *testing.T, mutate func(*Options)) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)
	orch := appanalysis.NewService(nil, heuristic.New(logging.Nop()), metrics, logging.Nop())

	svc := &appmeetings.Service{
		Meetings: memory.NewMeetingRepository(),
		Analyses: memory.NewAnalysisRepository(),
		Failures: memory.NewAnalysisErrorRepository(),
		Analyzer: orch,
		Clock:    &application.StepClock{Start: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), Step: time.Second},
		Log:      logging.Nop(),
	}
	opts := Options{
		Meetings:   svc,
		Analyzer:   orch,
		Metrics:    metrics,
		Gatherer:   reg,
		HealthInfo: map[string]string{"analyzer": "fallback"},
		Log:        logging.Nop(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return &testServer{handler: NewRouter(opts), svc: svc, reg: reg}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) createMeeting(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/acme/meetings", map[string]any{
		"title":        "Sprint 12",
		"type":         "sprint-planning",
		"raw_content":  notes,
		"date":         "2026-02-27",
		"participants": []string{"Alice", "Bob"},
		"tags":         []string{"Q1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["id"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", decode(t, rec)["info"].(map[string]any)["analyzer"])

	s.do(t, http.MethodPost, "/v1/acme/analyze", map[string]string{"rawText": notes})

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `meetnotes_analyses_total{model="fallback",outcome="ok",path="fallback"} 1`)
}

func TestAnalyze_Fallback(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/v1/acme/analyze", map[string]string{"rawText": notes, "meetingType": "Standup"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out analysis.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, analysis.FallbackModel, out.Metadata.Model)
	assert.Len(t, out.Result.ActionItems, 3)
	assert.Contains(t, out.Result.Summary, "Type: standup")
}

func TestAnalyze_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/v1/acme/analyze", map[string]string{"rawText": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, "rawText", body["fields"].([]any)[0].(map[string]any)["field"])

	rec = s.do(t, http.MethodPost, "/v1/acme/analyze", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/acme/analyze", map[string]string{"rawText": strings.Repeat("a", 100001)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_AIErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		status     int
		kind       string
		retryAfter string
	}{
		{fmt.Errorf("openai: %w", ai.ErrRateLimited), http.StatusTooManyRequests, "rate_limited", "60"},
		{ai.ErrServiceAuth, http.StatusBadGateway, string(ai.KindServiceAuth), ""},
		{ai.ErrInvalidResponseFormat, http.StatusBadGateway, string(ai.KindInvalidResponseFormat), ""},
		{ai.ErrSchemaValidation, http.StatusBadGateway, string(ai.KindSchemaValidation), ""},
		{ai.ErrServiceUnavailable, http.StatusServiceUnavailable, string(ai.KindServiceUnavailable), ""},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s := newTestServer(t, func(o *Options) { o.Analyzer = stubAnalyzer{err: tt.err} })

			rec := s.do(t, http.MethodPost, "/v1/acme/analyze", map[string]string{"rawText": notes})
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.retryAfter, rec.Header().Get("Retry-After"))
			assert.Equal(t, tt.kind, decode(t, rec)["kind"])
		})
	}
}

func TestAnalyze_RateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 1)
	defer limiter.Stop()
	s := newTestServer(t, func(o *Options) { o.Limiter = limiter })

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/acme/analyze", map[string]string{"rawText": notes}).Code)

	rec := s.do(t, http.MethodPost, "/v1/acme/analyze", map[string]string{"rawText": notes})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// reads are not limited
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/acme/meetings", nil).Code)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.APIKeys = map[string]string{"acme": "secret"} })

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/acme/meetings", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", nil).Code)

	s.apiKey = "secret"
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/acme/meetings", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/globex/meetings", nil).Code)
}

func TestMeetingLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createMeeting(t)
	base := "/v1/acme/meetings/" + id

	rec := s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode(t, rec)
	assert.Equal(t, "Sprint 12", m["title"])
	assert.Equal(t, []any{"q1"}, m["tags"])
	assert.Nil(t, m["analysis"])

	rec = s.do(t, http.MethodPatch, base, map[string]any{"raw_content": "changed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, base, map[string]any{"title": "Sprint 12b", "date": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, base, map[string]any{"title": "Sprint 12b"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sprint 12b", decode(t, rec)["title"])

	rec = s.do(t, http.MethodGet, "/v1/acme/meetings?type=sprint-planning&tag=q1&sortBy=title&sortOrder=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.Equal(t, 1.0, page["totalItems"])

	rec = s.do(t, http.MethodGet, "/v1/acme/meetings?sortBy=size", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/acme/meetings/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/acme/meetings/0b6a3b9e-1f7e-4c1b-9d0a-3c2f1e4d5a6b", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/globex/meetings/"+id, nil).Code)

	rec = s.do(t, http.MethodPost, base+"/archive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["is_archived"])

	rec = s.do(t, http.MethodGet, "/v1/acme/meetings?archived=true", nil)
	assert.Equal(t, 1.0, decode(t, rec)["totalItems"])

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, base, nil).Code)
}

func TestAnalysisFlow(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createMeeting(t)
	base := "/v1/acme/meetings/" + id

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, base+"/analysis", nil).Code)

	rec := s.do(t, http.MethodPost, base+"/analysis", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, decode(t, rec)["version"])

	rec = s.do(t, http.MethodPost, base+"/analysis", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2.0, decode(t, rec)["version"])

	rec = s.do(t, http.MethodGet, base+"/analysis/versions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 2)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, base+"/analysis/versions/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, base+"/analysis/versions/7", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, base+"/analysis/versions/zero", nil).Code)

	rec = s.do(t, http.MethodPatch, base+"/analysis", map[string]any{
		"actionItems": []map[string]string{{"task": "t", "priority": "Urgent"}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	field := decode(t, rec)["fields"].([]any)[0].(map[string]any)["field"]
	assert.Equal(t, "actionItems[0].priority", field)

	rec = s.do(t, http.MethodPatch, base+"/analysis", map[string]any{"summary": "Reviewed"})
	require.Equal(t, http.StatusOK, rec.Code)
	a := decode(t, rec)
	assert.Equal(t, true, a["is_edited"])
	assert.Equal(t, "Reviewed", a["result"].(map[string]any)["summary"])

	rec = s.do(t, http.MethodGet, base+"/analysis/history", nil)
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = s.do(t, http.MethodPost, base+"/analysis/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode(t, rec)["confirmed_at"])

	rec = s.do(t, http.MethodGet, base+"/analysis/errors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["data"])
}

func TestGenerateAnalysis_FailureIsLogged(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createMeeting(t)
	s.svc.Analyzer = stubAnalyzer{err: fmt.Errorf("gemini: %w", ai.ErrServiceUnavailable)}
	base := "/v1/acme/meetings/" + id

	rec := s.do(t, http.MethodPost, base+"/analysis", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, true, decode(t, rec)["retryable"])

	rec = s.do(t, http.MethodGet, base+"/analysis/errors", nil)
	errs := decode(t, rec)["data"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "service_unavailable", errs[0].(map[string]any)["kind"])
}

func TestActionItemsAndDashboard(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createMeeting(t)
	base := "/v1/acme/meetings/" + id
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, base+"/analysis", nil).Code)

	rec := s.do(t, http.MethodGet, "/v1/acme/action-items?status=Pending&sortBy=deadline&sortOrder=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "2026-03-01", items[0].(map[string]any)["deadline"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/acme/action-items?priority=Urgent", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/acme/action-items?sortBy=owner", nil).Code)

	rec = s.do(t, http.MethodPatch, base+"/action-items/0", map[string]string{"status": "Completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, base+"/action-items/9", map[string]string{"status": "Completed"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPatch, base+"/action-items/-1", map[string]string{"status": "Completed"}).Code)

	rec = s.do(t, http.MethodGet, "/v1/acme/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalMeetings":1,"actionItems":{"total":3,"pending":1,"completed":2,"highPriority":1}}`, rec.Body.String())
}

func TestShareAndExport(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createMeeting(t)
	base := "/v1/acme/meetings/" + id
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, base+"/analysis", nil).Code)

	rec := s.do(t, http.MethodPost, base+"/share", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	share := decode(t, rec)
	path := share["share_path"].(string)

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	shared := decode(t, rec)
	assert.Equal(t, "Sprint 12", shared["title"])
	assert.NotContains(t, shared, "raw_content")
	assert.NotNil(t, shared["analysis"])

	s.do(t, http.MethodPost, base+"/share", nil)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, nil).Code)

	rec = s.do(t, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "meeting-"+id+".json")
	assert.Contains(t, decode(t, rec), "exportedAt")

	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodPost, base+"/export", nil).Code)
}

func TestWriteError_ConflictIs409(t *testing.T) {
	r := &Router{log: logging.Nop()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/v1/acme/meetings/x/analysis", nil)

	r.writeError(rec, req, fmt.Errorf("save: %w", analyst.ErrConflict))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], analyst.ErrConflict.Error())
}
