package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/meeting-insights/internal/domain/analysiserrors"
)

type AnalysisErrorRepository struct {
	db *sql.DB
}

func NewAnalysisErrorRepository(db *sql.DB) *AnalysisErrorRepository {
	return &AnalysisErrorRepository{db: db}
}

var _ domain.Repository = (*AnalysisErrorRepository)(nil)

func (r *AnalysisErrorRepository) Save(ctx context.Context, e *domain.AnalysisError) error {
	const q = `
INSERT INTO meeting_analysis_errors
  (tenant_id, meeting_id, kind, message, details_json, created_at)
VALUES (?,?,?,?,?,?)
`
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, q,
		stringOrDash(e.TenantID), stringOrDash(e.MeetingID), stringOrDash(e.Kind),
		msg, jsonOrEmpty(e.DetailsJSON), created)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

func (r *AnalysisErrorRepository) ListByMeeting(ctx context.Context, tenant, meetingID string, limit int) ([]*domain.AnalysisError, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `
SELECT id, tenant_id, meeting_id, kind, message, details_json, created_at
FROM meeting_analysis_errors
WHERE tenant_id = ? AND meeting_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, meetingID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.AnalysisError{}
	for rows.Next() {
		var e domain.AnalysisError
		if err := rows.Scan(&e.ID, &e.TenantID, &e.MeetingID, &e.Kind, &e.Message, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *AnalysisErrorRepository) DeleteByMeeting(ctx context.Context, tenant, meetingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM meeting_analysis_errors WHERE tenant_id=? AND meeting_id=?;`, tenant, meetingID)
	return err
}
