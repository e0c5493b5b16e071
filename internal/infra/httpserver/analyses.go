package httpserver

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	appmeetings "github.com/bryanwahyu/meeting-insights/internal/application/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/middleware"
)

// POST /v1/{tenant}/analyze
// Body: {"rawText": "...", "meetingType": "standup"}
// Stateless: nothing is stored.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RawText     string `json:"rawText"`
		MeetingType string `json:"meetingType"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	verr := &domain.ValidationError{}
	switch n := utf8.RuneCountInString(body.RawText); {
	case n == 0 || middleware.SanitizeString(body.RawText) == "":
		verr.Add("rawText", "is required")
	case n > domain.MaxRawContentLen:
		verr.Add("rawText", "must be at most 100000 characters")
	}
	if err := verr.Err(); err != nil {
		return err
	}

	out, err := r.analyzer.AnalyzeMeeting(req.Context(), body.RawText, body.MeetingType)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

// POST /v1/{tenant}/meetings/{id}/analysis
func (r *Router) handleGenerateAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	a, err := r.meetings.GenerateAnalysis(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, a)
}

// GET /v1/{tenant}/meetings/{id}/analysis
func (r *Router) handleLatestAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	a, err := r.meetings.LatestAnalysis(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// PATCH /v1/{tenant}/meetings/{id}/analysis
func (r *Router) handleUpdateAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	var body struct {
		Summary     *string                `json:"summary"`
		KeyPoints   *[]string              `json:"keyPoints"`
		ActionItems *[]analysis.ActionItem `json:"actionItems"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	a, err := r.meetings.UpdateAnalysis(req.Context(), chi.URLParam(req, "tenant"), id, appmeetings.UpdateAnalysisCommand{
		Summary:     body.Summary,
		KeyPoints:   body.KeyPoints,
		ActionItems: body.ActionItems,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /v1/{tenant}/meetings/{id}/analysis/confirm
func (r *Router) handleConfirmAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	a, err := r.meetings.ConfirmAnalysis(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /v1/{tenant}/meetings/{id}/analysis/history
func (r *Router) handleEditHistory(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	h, err := r.meetings.EditHistory(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"data": h})
}

// GET /v1/{tenant}/meetings/{id}/analysis/versions
func (r *Router) handleListVersions(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	list, err := r.meetings.ListAnalysisVersions(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

// GET /v1/{tenant}/meetings/{id}/analysis/versions/{version}
func (r *Router) handleGetVersion(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	v, err := middleware.ValidateVersion(chi.URLParam(req, "version"))
	if err != nil {
		return &badRequest{msg: err.Error()}
	}
	a, err := r.meetings.AnalysisVersion(req.Context(), chi.URLParam(req, "tenant"), id, v)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /v1/{tenant}/meetings/{id}/analysis/errors?limit=
func (r *Router) handleAnalysisErrors(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.meetings.AnalysisFailures(req.Context(), chi.URLParam(req, "tenant"), id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"data": list})
}
