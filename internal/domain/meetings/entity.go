package meetings

import (
	"strings"
	"time"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
)

// ID tipe untuk Meeting
type MeetingID string

// Field limits.
const (
	MaxTitleLen       = 200
	MaxRawContentLen  = 100000
	MaxParticipants   = 100
	MaxParticipantLen = 100
	MaxTags           = 20
	MaxTagLen         = 50
)

// Aggregate Root: Meeting. RawContent is immutable after creation.
type Meeting struct {
	ID           MeetingID            `json:"id"`
	TenantID     string               `json:"tenant_id"`
	Title        string               `json:"title"`
	Type         analysis.MeetingType `json:"type"`
	RawContent   string               `json:"raw_content"`
	Date         time.Time            `json:"date"`
	Participants []string             `json:"participants"`
	Tags         []string             `json:"tags"`
	ShareToken   string               `json:"share_token,omitempty"`
	IsShared     bool                 `json:"is_shared"`
	IsArchived   bool                 `json:"is_archived"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// NormalizeParticipants trims names and drops blanks.
func NormalizeParticipants(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Sort fields accepted by List.
const (
	SortByDate      = "date"
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
)

// ListFilter narrows a meeting listing. Zero values mean "any".
type ListFilter struct {
	Type      analysis.MeetingType
	Tag       string
	Search    string
	SortBy    string
	SortOrder string // asc | desc
	Archived  bool
	Page      int
	PageSize  int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize applies paging defaults and clamps.
func (f ListFilter) Normalize() ListFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	switch f.SortBy {
	case SortByDate, SortByCreatedAt, SortByTitle:
	default:
		f.SortBy = SortByDate
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
	f.Tag = strings.ToLower(strings.TrimSpace(f.Tag))
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Offset for SQL paging.
func (f ListFilter) Offset() int { return (f.Page - 1) * f.PageSize }
