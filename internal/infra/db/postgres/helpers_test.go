package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

func TestListWhere_NumbersPlaceholders(t *testing.T) {
	f := domain.ListFilter{
		Type:   analysis.MeetingLeadership,
		Tag:    "board",
		Search: "50%",
	}.Normalize()

	where, p, order := listWhere("acme", f)
	assert.Equal(t, "tenant_id = $1 AND is_archived = $2 AND type = $3 AND $4 = ANY(tags)"+
		" AND (title ILIKE $5 OR raw_content ILIKE $5 OR array_to_string(tags, ' ') ILIKE $5)", where)
	assert.Equal(t, []any{"acme", false, "leadership", "board", `%50\%%`}, p.args)
	assert.Equal(t, "meeting_date DESC, id DESC", order)

	assert.Equal(t, "$6", p.add(20))
}

func TestListWhere_Sort(t *testing.T) {
	_, _, order := listWhere("acme", domain.ListFilter{SortBy: domain.SortByCreatedAt, SortOrder: "asc"}.Normalize())
	assert.Equal(t, "created_at ASC, id ASC", order)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "-", stringOrDash(" "))
	assert.Equal(t, "{}", jsonOrEmpty(""))
	assert.Equal(t, `{"raw":"oops"}`, jsonOrEmpty("oops"))
	assert.Equal(t, []string{}, nonNil(nil))
}

func TestSchemaStatements(t *testing.T) {
	stmts := statements(schema)
	assert.Len(t, stmts, 5)
	for _, s := range stmts {
		assert.NotContains(t, s, ";")
	}
}

func TestPoolDefaults(t *testing.T) {
	p := Pool{}.withDefaults()
	assert.Equal(t, Pool{MaxOpenConns: 25, MaxIdleConns: 10, ConnMaxLifetime: 30 * time.Minute}, p)

	p = Pool{MaxOpenConns: 4, MaxIdleConns: 8}.withDefaults()
	assert.Equal(t, 4, p.MaxIdleConns)
}
