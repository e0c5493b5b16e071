package meetings

import (
	"context"
	"io"
)

// Repository port (interface untuk persistence)
type Repository interface {
	// Save inserts or updates by (tenant, id).
	Save(ctx context.Context, m *Meeting) error
	Get(ctx context.Context, tenant string, id MeetingID) (*Meeting, error)
	GetByShareToken(ctx context.Context, token string) (*Meeting, error)
	List(ctx context.Context, tenant string, f ListFilter) ([]*Meeting, int64, error)
	Delete(ctx context.Context, tenant string, id MeetingID) error
	Count(ctx context.Context, tenant string) (int64, error)
}

// ExportStore port (interface untuk penyimpanan export)
type ExportStore interface {
	// Put uploads the object and returns a URL for it.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
