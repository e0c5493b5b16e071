package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

type MeetingRepository struct{ db *sql.DB }

func NewMeetingRepository(db *sql.DB) *MeetingRepository { return &MeetingRepository{db: db} }

var _ domain.Repository = (*MeetingRepository)(nil)

const meetingColumns = `id, tenant_id, title, type, raw_content, meeting_date,
       participants, tags, share_token, is_shared, is_archived,
       created_at, updated_at`

// Save insert/update Meeting record. raw_content is never updated.
func (r *MeetingRepository) Save(ctx context.Context, m *domain.Meeting) error {
	const q = `
INSERT INTO meetings
(id, tenant_id, title, type, raw_content, meeting_date,
 participants, tags, share_token, is_shared, is_archived,
 created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
 title = EXCLUDED.title,
 type = EXCLUDED.type,
 meeting_date = EXCLUDED.meeting_date,
 participants = EXCLUDED.participants,
 tags = EXCLUDED.tags,
 share_token = EXCLUDED.share_token,
 is_shared = EXCLUDED.is_shared,
 is_archived = EXCLUDED.is_archived,
 updated_at = EXCLUDED.updated_at;`

	var token sql.NullString
	if m.ShareToken != "" {
		token = sql.NullString{String: m.ShareToken, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		m.ID, stringOrDash(m.TenantID), m.Title, string(m.Type), m.RawContent, m.Date,
		pq.Array(nonNil(m.Participants)), pq.Array(nonNil(m.Tags)), token, m.IsShared, m.IsArchived,
		m.CreatedAt, m.UpdatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*domain.Meeting, error) {
	var m domain.Meeting
	var participants, tags pq.StringArray
	var token sql.NullString
	if err := row.Scan(
		&m.ID, &m.TenantID, &m.Title, &m.Type, &m.RawContent, &m.Date,
		&participants, &tags, &token, &m.IsShared, &m.IsArchived,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	m.Participants = nonNil(participants)
	m.Tags = nonNil(tags)
	m.ShareToken = token.String
	return &m, nil
}

func (r *MeetingRepository) Get(ctx context.Context, tenant string, id domain.MeetingID) (*domain.Meeting, error) {
	q := `SELECT ` + meetingColumns + ` FROM meetings WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	return scanMeeting(r.db.QueryRowContext(ctx, q, tenant, id))
}

func (r *MeetingRepository) GetByShareToken(ctx context.Context, token string) (*domain.Meeting, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + meetingColumns + ` FROM meetings WHERE share_token=$1 AND is_shared LIMIT 1;`
	return scanMeeting(r.db.QueryRowContext(ctx, q, token))
}

func (r *MeetingRepository) List(ctx context.Context, tenant string, f domain.ListFilter) ([]*domain.Meeting, int64, error) {
	f = f.Normalize()
	where, p, order := listWhere(tenant, f)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meetings WHERE "+where, p.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting meetings: %w", err)
	}

	q := fmt.Sprintf("SELECT %s FROM meetings WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		meetingColumns, where, order, p.add(f.PageSize), p.add(f.Offset()))
	rows, err := r.db.QueryContext(ctx, q, p.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying meetings: %w", err)
	}
	defer rows.Close()

	out := []*domain.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating rows: %w", err)
	}
	return out, total, nil
}

func (r *MeetingRepository) Delete(ctx context.Context, tenant string, id domain.MeetingID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE tenant_id=$1 AND id=$2;`, tenant, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MeetingRepository) Count(ctx context.Context, tenant string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meetings WHERE tenant_id=$1;`, tenant).Scan(&n)
	return n, err
}
