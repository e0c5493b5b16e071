package meetings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

// ErrExportUnavailable is returned by UploadExport when no store is configured.
var ErrExportUnavailable = errors.New("export storage not configured")

// ExportDocument is the JSON export of a meeting.
type ExportDocument struct {
	Meeting    *domain.Meeting   `json:"meeting"`
	Analysis   *analyst.Analysis `json:"analysis"`
	ExportedAt time.Time         `json:"exportedAt"`
}

func (s *Service) BuildExport(ctx context.Context, tenant string, id domain.MeetingID) (*ExportDocument, error) {
	d, err := s.GetMeeting(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	return &ExportDocument{Meeting: d.Meeting, Analysis: d.Analysis, ExportedAt: s.now()}, nil
}

// ExportJSON renders the export as indented JSON.
func (s *Service) ExportJSON(ctx context.Context, tenant string, id domain.MeetingID) ([]byte, error) {
	doc, err := s.BuildExport(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UploadExport writes the export to object storage and returns its URL.
func (s *Service) UploadExport(ctx context.Context, tenant string, id domain.MeetingID) (string, error) {
	if s.Exports == nil {
		return "", ErrExportUnavailable
	}
	body, err := s.ExportJSON(ctx, tenant, id)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/meetings/%s/export-%s.json", tenant, id, s.now().Format("20060102T150405Z"))
	url, err := s.Exports.Put(ctx, key, "application/json", bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	s.Log.Info().Str("tenant", tenant).Str("meeting_id", string(id)).Str("key", key).Msg("export uploaded")
	return url, nil
}
