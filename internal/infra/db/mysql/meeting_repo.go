package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

type MeetingRepository struct {
	db *sql.DB
}

func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

var _ domain.Repository = (*MeetingRepository)(nil)

const meetingColumns = `id, tenant_id, title, type, raw_content, meeting_date,
       participants_json, tags_json, share_token, is_shared, is_archived,
       created_at, updated_at`

// Save insert/update Meeting record. raw_content is never updated.
func (r *MeetingRepository) Save(ctx context.Context, m *domain.Meeting) error {
	const q = `
INSERT INTO meetings
(id, tenant_id, title, type, raw_content, meeting_date,
 participants_json, tags_json, share_token, is_shared, is_archived,
 created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 title=VALUES(title), type=VALUES(type), meeting_date=VALUES(meeting_date),
 participants_json=VALUES(participants_json), tags_json=VALUES(tags_json),
 share_token=VALUES(share_token), is_shared=VALUES(is_shared),
 is_archived=VALUES(is_archived), updated_at=VALUES(updated_at);
`
	var token sql.NullString
	if m.ShareToken != "" {
		token = sql.NullString{String: m.ShareToken, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		m.ID, stringOrDash(m.TenantID), m.Title, string(m.Type), m.RawContent, m.Date,
		encodeStrings(m.Participants), encodeStrings(m.Tags), token, m.IsShared, m.IsArchived,
		m.CreatedAt, m.UpdatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*domain.Meeting, error) {
	var m domain.Meeting
	var participants, tags string
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
	var err error
	if m.Participants, err = decodeStrings(participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	if m.Tags, err = decodeStrings(tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	m.ShareToken = token.String
	return &m, nil
}

// Get by ID + Tenant
func (r *MeetingRepository) Get(ctx context.Context, tenant string, id domain.MeetingID) (*domain.Meeting, error) {
	q := `SELECT ` + meetingColumns + ` FROM meetings WHERE tenant_id=? AND id=? LIMIT 1;`
	return scanMeeting(r.db.QueryRowContext(ctx, q, tenant, id))
}

func (r *MeetingRepository) GetByShareToken(ctx context.Context, token string) (*domain.Meeting, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + meetingColumns + ` FROM meetings WHERE share_token=? AND is_shared=TRUE LIMIT 1;`
	return scanMeeting(r.db.QueryRowContext(ctx, q, token))
}

// List with offset + limit (classic pagination)
func (r *MeetingRepository) List(ctx context.Context, tenant string, f domain.ListFilter) ([]*domain.Meeting, int64, error) {
	f = f.Normalize()
	where, args, order := listWhere(tenant, f)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meetings WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting meetings: %w", err)
	}

	q := "SELECT " + meetingColumns + " FROM meetings WHERE " + where + " ORDER BY " + order + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, append(args, f.PageSize, f.Offset())...)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE tenant_id=? AND id=?;`, tenant, id)
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
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meetings WHERE tenant_id=?;`, tenant).Scan(&n)
	return n, err
}
