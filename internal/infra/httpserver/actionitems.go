package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appmeetings "github.com/bryanwahyu/meeting-insights/internal/application/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/middleware"
)

// GET /v1/{tenant}/action-items?status=&priority=&owner=&fromDate=&toDate=&sortBy=&sortOrder=&page=&limit=
func (r *Router) handleListActionItems(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	f := appmeetings.ActionItemFilter{
		Status:    analysis.Status(q.Get("status")),
		Priority:  analysis.Priority(q.Get("priority")),
		Owner:     q.Get("owner"),
		FromDate:  q.Get("fromDate"),
		ToDate:    q.Get("toDate"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	switch f.SortBy {
	case "", "deadline", "priority", "status", "createdAt":
	default:
		verr := &domain.ValidationError{}
		verr.Add("sortBy", "must be deadline, priority, status or createdAt")
		return verr
	}
	f.Page, f.PageSize = paging(q.Get("page"), q.Get("limit"))

	page, err := r.meetings.ListActionItems(req.Context(), chi.URLParam(req, "tenant"), f)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, page)
}

// PATCH /v1/{tenant}/meetings/{id}/action-items/{index}
func (r *Router) handleUpdateActionItem(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	index, err := middleware.ValidateIndex(chi.URLParam(req, "index"))
	if err != nil {
		return &badRequest{msg: err.Error()}
	}
	var body struct {
		Task     *string `json:"task"`
		Owner    *string `json:"owner"`
		Deadline *string `json:"deadline"`
		Priority *string `json:"priority"`
		Status   *string `json:"status"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}

	a, err := r.meetings.UpdateActionItem(req.Context(), chi.URLParam(req, "tenant"), id, index, appmeetings.UpdateActionItemCommand{
		Task:     body.Task,
		Owner:    body.Owner,
		Deadline: body.Deadline,
		Priority: body.Priority,
		Status:   body.Status,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /v1/{tenant}/dashboard
func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) error {
	st, err := r.meetings.Dashboard(req.Context(), chi.URLParam(req, "tenant"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, st)
}
