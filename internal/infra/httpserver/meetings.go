package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appmeetings "github.com/bryanwahyu/meeting-insights/internal/application/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/middleware"
)

type createMeetingBody struct {
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	RawContent   string   `json:"raw_content"`
	Date         string   `json:"date"`
	Participants []string `json:"participants"`
	Tags         []string `json:"tags"`
}

type updateMeetingBody struct {
	Title        *string   `json:"title"`
	Type         *string   `json:"type"`
	RawContent   *string   `json:"raw_content"`
	Date         *string   `json:"date"`
	Participants *[]string `json:"participants"`
	Tags         *[]string `json:"tags"`
}

func parseDate(verr *domain.ValidationError, s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := middleware.ValidateDate(s)
	if err != nil {
		verr.Add("date", err.Error())
		return nil
	}
	return &d
}

// POST /v1/{tenant}/meetings
func (r *Router) handleCreateMeeting(w http.ResponseWriter, req *http.Request) error {
	var body createMeetingBody
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	verr := &domain.ValidationError{}
	date := parseDate(verr, body.Date)
	if err := verr.Err(); err != nil {
		return err
	}

	m, err := r.meetings.CreateMeeting(req.Context(), appmeetings.CreateMeetingCommand{
		TenantID:     chi.URLParam(req, "tenant"),
		Title:        middleware.SanitizeString(body.Title),
		Type:         body.Type,
		RawContent:   body.RawContent,
		Date:         date,
		Participants: body.Participants,
		Tags:         body.Tags,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, m)
}

// GET /v1/{tenant}/meetings?page=&limit=&type=&tag=&search=&sortBy=&sortOrder=&archived=
func (r *Router) handleListMeetings(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	verr := &domain.ValidationError{}

	f := domain.ListFilter{
		Tag:       q.Get("tag"),
		Search:    middleware.SanitizeString(q.Get("search")),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if t := q.Get("type"); t != "" {
		f.Type = analysis.MeetingType(t)
		if !f.Type.Known() {
			verr.Add("type", "unknown meeting type")
		}
	}
	switch f.SortBy {
	case "", domain.SortByDate, domain.SortByCreatedAt, domain.SortByTitle:
	default:
		verr.Add("sortBy", "must be date, createdAt or title")
	}
	switch f.SortOrder {
	case "", "asc", "desc":
	default:
		verr.Add("sortOrder", "must be asc or desc")
	}
	if a := q.Get("archived"); a != "" {
		v, err := strconv.ParseBool(a)
		if err != nil {
			verr.Add("archived", "must be true or false")
		}
		f.Archived = v
	}
	f.Page, f.PageSize = paging(q.Get("page"), q.Get("limit"))
	if err := verr.Err(); err != nil {
		return err
	}

	page, err := r.meetings.ListMeetings(req.Context(), chi.URLParam(req, "tenant"), f)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, page)
}

func paging(page, limit string) (int, int) {
	p, _ := strconv.Atoi(page)
	l, _ := strconv.Atoi(limit)
	return middleware.ValidatePage(p), middleware.ValidateLimit(l)
}

// GET /v1/{tenant}/meetings/{id}
func (r *Router) handleGetMeeting(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	d, err := r.meetings.GetMeeting(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, d)
}

// PATCH /v1/{tenant}/meetings/{id}
func (r *Router) handleUpdateMeeting(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	var body updateMeetingBody
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}

	cmd := appmeetings.UpdateMeetingCommand{
		Type:         body.Type,
		RawContent:   body.RawContent,
		Participants: body.Participants,
		Tags:         body.Tags,
	}
	if body.Title != nil {
		t := middleware.SanitizeString(*body.Title)
		cmd.Title = &t
	}
	if body.Date != nil {
		verr := &domain.ValidationError{}
		cmd.Date = parseDate(verr, *body.Date)
		if *body.Date == "" {
			verr.Add("date", "cannot be empty")
		}
		if err := verr.Err(); err != nil {
			return err
		}
	}

	m, err := r.meetings.UpdateMeeting(req.Context(), chi.URLParam(req, "tenant"), id, cmd)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, m)
}

// DELETE /v1/{tenant}/meetings/{id}
func (r *Router) handleDeleteMeeting(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	if err := r.meetings.DeleteMeeting(req.Context(), chi.URLParam(req, "tenant"), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/{tenant}/meetings/{id}/archive
func (r *Router) handleToggleArchive(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	m, err := r.meetings.ToggleArchive(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, m)
}

// POST /v1/{tenant}/meetings/{id}/share
func (r *Router) handleToggleShare(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	m, err := r.meetings.ToggleShare(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	resp := map[string]any{"is_shared": m.IsShared}
	if m.IsShared {
		resp["share_token"] = m.ShareToken
		resp["share_path"] = "/v1/shared/" + m.ShareToken
	}
	return writeJSON(w, http.StatusOK, resp)
}

// GET /v1/shared/{token}
func (r *Router) handleGetShared(w http.ResponseWriter, req *http.Request) error {
	view, err := r.meetings.GetShared(req.Context(), chi.URLParam(req, "token"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, view)
}

// GET /v1/{tenant}/meetings/{id}/export
func (r *Router) handleExportDownload(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	b, err := r.meetings.ExportJSON(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="meeting-%s.json"`, id))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(b)
	return err
}

// POST /v1/{tenant}/meetings/{id}/export
func (r *Router) handleExportUpload(w http.ResponseWriter, req *http.Request) error {
	id, err := meetingID(req)
	if err != nil {
		return err
	}
	url, err := r.meetings.UploadExport(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
