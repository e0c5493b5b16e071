package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

var _ domain.Repository = (*AnalysisRepository)(nil)

const analysisColumns = `id, tenant_id, meeting_id, version, result_json, model,
       prompt_tokens, completion_tokens, generated_at, is_edited,
       edit_history_json, confirmed_at, updated_at`

// Save inserts an analysis version or updates its editable columns.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO meeting_analyses
  (id, tenant_id, meeting_id, version, result_json, model,
   prompt_tokens, completion_tokens, generated_at, is_edited,
   edit_history_json, confirmed_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  result_json=VALUES(result_json), is_edited=VALUES(is_edited),
  edit_history_json=VALUES(edit_history_json), confirmed_at=VALUES(confirmed_at),
  updated_at=VALUES(updated_at);
`
	result, edits, confirmed, err := encodeEditable(a)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(a.TenantID), a.MeetingID, a.Version, string(result), stringOrDash(a.Model),
		a.PromptTokens, a.CompletionTokens, a.GeneratedAt, a.IsEdited,
		string(edits), confirmed, a.UpdatedAt,
	)
	return err
}

func encodeEditable(a *domain.Analysis) (result, edits string, confirmed sql.NullTime, err error) {
	rb, err := json.Marshal(a.Result)
	if err != nil {
		return "", "", confirmed, fmt.Errorf("encode result: %w", err)
	}
	history := a.EditHistory
	if history == nil {
		history = []domain.EditEntry{}
	}
	eb, err := json.Marshal(history)
	if err != nil {
		return "", "", confirmed, fmt.Errorf("encode edit history: %w", err)
	}
	if a.ConfirmedAt != nil {
		confirmed = sql.NullTime{Time: *a.ConfirmedAt, Valid: true}
	}
	return string(rb), string(eb), confirmed, nil
}

// Update is the optimistic write used for edits: prevUpdatedAt is the value
// read before the edit, so a concurrent writer makes the WHERE miss.
func (r *AnalysisRepository) Update(ctx context.Context, a *domain.Analysis, prevUpdatedAt time.Time) error {
	const q = `
UPDATE meeting_analyses
SET result_json = ?, is_edited = ?, edit_history_json = ?, confirmed_at = ?, updated_at = ?
WHERE id = ? AND tenant_id = ? AND updated_at = ?;`
	result, edits, confirmed, err := encodeEditable(a)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q,
		result, a.IsEdited, edits, confirmed, a.UpdatedAt,
		a.ID, stringOrDash(a.TenantID), prevUpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM meeting_analyses WHERE id = ? AND tenant_id = ?`, a.ID, stringOrDash(a.TenantID)).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case err != nil:
		return err
	}
	return domain.ErrConflict
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var result, edits string
	var confirmed sql.NullTime
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.MeetingID, &a.Version, &result, &a.Model,
		&a.PromptTokens, &a.CompletionTokens, &a.GeneratedAt, &a.IsEdited,
		&edits, &confirmed, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(result), &a.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	a.EditHistory = []domain.EditEntry{}
	if edits != "" {
		if err := json.Unmarshal([]byte(edits), &a.EditHistory); err != nil {
			return nil, fmt.Errorf("decode edit history: %w", err)
		}
	}
	if confirmed.Valid {
		t := confirmed.Time
		a.ConfirmedAt = &t
	}
	return &a, nil
}

func (r *AnalysisRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnalysisRepository) Latest(ctx context.Context, tenant, meetingID string) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM meeting_analyses
WHERE tenant_id=? AND meeting_id=? ORDER BY version DESC LIMIT 1;`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, meetingID))
}

func (r *AnalysisRepository) ByVersion(ctx context.Context, tenant, meetingID string, version int) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM meeting_analyses
WHERE tenant_id=? AND meeting_id=? AND version=? LIMIT 1;`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, meetingID, version))
}

// ListByMeeting returns every version, newest first.
func (r *AnalysisRepository) ListByMeeting(ctx context.Context, tenant, meetingID string) ([]*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM meeting_analyses
WHERE tenant_id=? AND meeting_id=? ORDER BY version DESC;`
	return r.query(ctx, q, tenant, meetingID)
}

// LatestByTenant ambil versi terbaru untuk setiap meeting milik tenant
func (r *AnalysisRepository) LatestByTenant(ctx context.Context, tenant string) ([]*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM meeting_analyses a
WHERE a.tenant_id=? AND a.version = (
  SELECT MAX(b.version) FROM meeting_analyses b
  WHERE b.tenant_id=a.tenant_id AND b.meeting_id=a.meeting_id)
ORDER BY a.meeting_id;`
	return r.query(ctx, q, tenant)
}

func (r *AnalysisRepository) CountByMeeting(ctx context.Context, tenant, meetingID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meeting_analyses WHERE tenant_id=? AND meeting_id=?;`, tenant, meetingID).Scan(&n)
	return n, err
}

func (r *AnalysisRepository) DeleteByMeeting(ctx context.Context, tenant, meetingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM meeting_analyses WHERE tenant_id=? AND meeting_id=?;`, tenant, meetingID)
	return err
}
