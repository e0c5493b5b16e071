package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/meeting-insights/internal/config"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analysiserrors"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
	"github.com/bryanwahyu/meeting-insights/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/meeting-insights/internal/infra/db/mysql"
	"github.com/bryanwahyu/meeting-insights/internal/infra/db/postgres"
	"github.com/bryanwahyu/meeting-insights/internal/infra/storage"
)

// Repositories is the persistence selected by database.driver. DB is nil for
// the memory driver.
type Repositories struct {
	Meetings domain.Repository
	Analyses analyst.Repository
	Failures analysiserrors.Repository
	DB       *sql.DB
}

func (r *Repositories) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// OpenRepositories connects and migrates the configured database.
func OpenRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN(), mysqlp.Pool(pool(cfg)))
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("mysql migrate: %w", err)
		}
		log.Info().Str("driver", cfg.Database.Driver).Str("host", cfg.Database.Host).Msg("database ready")
		return &Repositories{
			Meetings: mysqlp.NewMeetingRepository(db),
			Analyses: mysqlp.NewAnalysisRepository(db),
			Failures: mysqlp.NewAnalysisErrorRepository(db),
			DB:       db,
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN(), postgres.Pool(pool(cfg)))
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Info().Str("driver", cfg.Database.Driver).Str("host", cfg.Database.Host).Msg("database ready")
		return &Repositories{
			Meetings: postgres.NewMeetingRepository(db),
			Analyses: postgres.NewAnalysisRepository(db),
			Failures: postgres.NewAnalysisErrorRepository(db),
			DB:       db,
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &Repositories{
			Meetings: memory.NewMeetingRepository(),
			Analyses: memory.NewAnalysisRepository(),
			Failures: memory.NewAnalysisErrorRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

type poolSettings = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func pool(cfg *config.Config) poolSettings {
	return poolSettings{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeMin) * time.Minute,
	}
}

// ExportStore returns the MinIO store, or nil when minio is not configured.
func ExportStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	if !cfg.MinioEnabled() {
		return nil, nil
	}
	store, err := storage.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		return nil, fmt.Errorf("minio init: %w", err)
	}
	store.PresignTTL = time.Duration(cfg.Minio.PresignMinutes) * time.Minute
	return store, nil
}
