package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

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

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// params hands out $n placeholders in order.
type params struct {
	args []any
}

func (p *params) add(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

var sortColumns = map[string]string{
	domain.SortByDate:      "meeting_date",
	domain.SortByCreatedAt: "created_at",
	domain.SortByTitle:     "title",
}

func listWhere(tenant string, f domain.ListFilter) (string, *params, string) {
	p := &params{}
	where := "tenant_id = " + p.add(tenant) + " AND is_archived = " + p.add(f.Archived)

	if f.Type != "" {
		where += " AND type = " + p.add(string(f.Type))
	}
	if f.Tag != "" {
		where += " AND " + p.add(f.Tag) + " = ANY(tags)"
	}
	if f.Search != "" {
		like := p.add("%" + escapeLikePattern(f.Search) + "%")
		where += fmt.Sprintf(" AND (title ILIKE %[1]s OR raw_content ILIKE %[1]s OR array_to_string(tags, ' ') ILIKE %[1]s)", like)
	}

	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "meeting_date"
	}
	return where, p, col + " " + dir + ", id " + dir
}
