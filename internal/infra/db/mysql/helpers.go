package mysql

import (
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// jsonOrEmpty makes sure a JSON column never receives invalid JSON.
func jsonOrEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "{}"
	}
	var js any
	if json.Unmarshal([]byte(s), &js) != nil {
		b, _ := json.Marshal(map[string]string{"raw": s})
		return string(b)
	}
	return s
}

func encodeStrings(xs []string) string {
	if xs == nil {
		xs = []string{}
	}
	b, _ := json.Marshal(xs)
	return string(b)
}

func decodeStrings(s string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLikePattern escapes special characters in LIKE patterns
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

var sortColumns = map[string]string{
	domain.SortByDate:      "meeting_date",
	domain.SortByCreatedAt: "created_at",
	domain.SortByTitle:     "title",
}

// listWhere builds the WHERE clause and ORDER BY for a normalized filter.
func listWhere(tenant string, f domain.ListFilter) (string, []any, string) {
	where := "tenant_id = ? AND is_archived = ?"
	args := []any{tenant, f.Archived}

	if f.Type != "" {
		where += " AND type = ?"
		args = append(args, string(f.Type))
	}
	if f.Tag != "" {
		where += " AND JSON_CONTAINS(tags_json, JSON_QUOTE(?))"
		args = append(args, f.Tag)
	}
	if f.Search != "" {
		like := "%" + escapeLikePattern(strings.ToLower(f.Search)) + "%"
		where += " AND (LOWER(title) LIKE ? OR LOWER(raw_content) LIKE ? OR tags_json LIKE ?)"
		args = append(args, like, like, like)
	}

	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "meeting_date"
	}
	return where, args, col + " " + dir + ", id " + dir
}
