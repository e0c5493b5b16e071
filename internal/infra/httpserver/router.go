package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	appmeetings "github.com/bryanwahyu/meeting-insights/internal/application/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/domain/ai"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/middleware"
)

// maxBodyBytes leaves room for 100000 multi-byte characters of notes.
const maxBodyBytes = 1 << 20

// Options wires the router. Only Meetings and Analyzer are required.
type Options struct {
	Meetings *appmeetings.Service
	Analyzer appmeetings.Analyzer

	APIKeys        map[string]string
	CORSOrigins    []string
	Limiter        *middleware.RateLimiter
	Metrics        *middleware.Metrics
	Gatherer       prometheus.Gatherer
	Health         map[string]middleware.HealthChecker
	HealthInfo     map[string]string
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

type Router struct {
	meetings *appmeetings.Service
	analyzer appmeetings.Analyzer
	log      zerolog.Logger
}

func NewRouter(opts Options) http.Handler {
	r := &Router{meetings: opts.Meetings, analyzer: opts.Analyzer, log: opts.Log}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.RequestLogger(opts.Log))
	mux.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.Health, opts.HealthInfo))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(opts.Health))
	if opts.Gatherer != nil {
		mux.Handle("/metrics", middleware.MetricsHandler(opts.Gatherer))
	}

	// public, no auth
	mux.Get("/v1/shared/{token}", r.wrap(r.handleGetShared))

	// a limiter is only applied to routes that call the analyzer
	limited := func(h http.HandlerFunc) http.Handler {
		if opts.Limiter == nil {
			return h
		}
		return middleware.RateLimit(opts.Limiter)(h)
	}

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		rt.Use(middleware.RequireValidTenant)
		if opts.RequestTimeout > 0 {
			rt.Use(chimw.Timeout(opts.RequestTimeout))
		}

		rt.Method(http.MethodPost, "/analyze", limited(r.wrap(r.handleAnalyze)))

		rt.Get("/dashboard", r.wrap(r.handleDashboard))
		rt.Get("/action-items", r.wrap(r.handleListActionItems))

		rt.Get("/meetings", r.wrap(r.handleListMeetings))
		rt.Post("/meetings", r.wrap(r.handleCreateMeeting))
		rt.Route("/meetings/{id}", func(m chi.Router) {
			m.Get("/", r.wrap(r.handleGetMeeting))
			m.Patch("/", r.wrap(r.handleUpdateMeeting))
			m.Delete("/", r.wrap(r.handleDeleteMeeting))
			m.Post("/archive", r.wrap(r.handleToggleArchive))
			m.Post("/share", r.wrap(r.handleToggleShare))

			m.Method(http.MethodPost, "/analysis", limited(r.wrap(r.handleGenerateAnalysis)))
			m.Get("/analysis", r.wrap(r.handleLatestAnalysis))
			m.Patch("/analysis", r.wrap(r.handleUpdateAnalysis))
			m.Post("/analysis/confirm", r.wrap(r.handleConfirmAnalysis))
			m.Get("/analysis/history", r.wrap(r.handleEditHistory))
			m.Get("/analysis/versions", r.wrap(r.handleListVersions))
			m.Get("/analysis/versions/{version}", r.wrap(r.handleGetVersion))
			m.Get("/analysis/errors", r.wrap(r.handleAnalysisErrors))

			m.Patch("/action-items/{index}", r.wrap(r.handleUpdateActionItem))

			m.Get("/export", r.wrap(r.handleExportDownload))
			m.Post("/export", r.wrap(r.handleExportUpload))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest is a malformed request that never reached the service layer.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			r.writeError(w, req, err)
		}
	}
}

type errorBody struct {
	Error     string              `json:"error"`
	Kind      string              `json:"kind,omitempty"`
	Retryable bool                `json:"retryable,omitempty"`
	Fields    []domain.FieldError `json:"fields,omitempty"`
}

func (r *Router) writeError(w http.ResponseWriter, req *http.Request, err error) {
	var (
		verr *domain.ValidationError
		bad  *badRequest
	)
	status := http.StatusInternalServerError
	body := errorBody{Error: "internal server error"}

	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body = errorBody{Error: "validation failed", Fields: verr.Fields}
	case errors.As(err, &bad):
		status = http.StatusBadRequest
		body.Error = bad.msg
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, analyst.ErrNotFound):
		status = http.StatusNotFound
		body.Error = err.Error()
	case errors.Is(err, analyst.ErrConflict):
		status = http.StatusConflict
		body.Error = err.Error()
	case errors.Is(err, appmeetings.ErrExportUnavailable):
		status = http.StatusServiceUnavailable
		body.Error = err.Error()
	case ai.KindOf(err) != ai.KindUnknown:
		status, body = aiError(w, err)
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		body.Error = "request timed out"
	}

	if status >= 500 {
		r.log.Error().Err(err).
			Str("path", req.URL.Path).
			Str("request_id", chimw.GetReqID(req.Context())).
			Int("status", status).
			Msg("request failed")
	}
	_ = writeJSON(w, status, body)
}

// aiError maps the analyzer's failure kinds onto HTTP.
func aiError(w http.ResponseWriter, err error) (int, errorBody) {
	kind := ai.KindOf(err)
	body := errorBody{Kind: string(kind), Retryable: ai.Retryable(err)}
	switch kind {
	case ai.KindRateLimited:
		w.Header().Set("Retry-After", "60")
		body.Error = "AI service rate limit reached, please retry later"
		return http.StatusTooManyRequests, body
	case ai.KindServiceAuth:
		body.Error = "AI service rejected the configured credentials"
		return http.StatusBadGateway, body
	case ai.KindInvalidResponseFormat, ai.KindSchemaValidation:
		body.Error = "AI service returned an unusable analysis"
		return http.StatusBadGateway, body
	default:
		body.Error = "AI service unavailable"
		return http.StatusServiceUnavailable, body
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequestf("request body is required")
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return badRequestf("request body too large")
		}
		return badRequestf("invalid JSON body: %v", err)
	}
	return nil
}

func meetingID(req *http.Request) (domain.MeetingID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateMeetingID(id); err != nil {
		return "", &badRequest{msg: err.Error()}
	}
	return domain.MeetingID(id), nil
}
