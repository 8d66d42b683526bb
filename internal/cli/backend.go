package cli

import (
	"context"
	"fmt"

	"github.com/terraincognita07/dailyglow/internal/config"
	"github.com/terraincognita07/dailyglow/internal/db"
	"github.com/terraincognita07/dailyglow/internal/services"
	"github.com/terraincognita07/dailyglow/internal/supabase"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

// Backend is an opened persistence backend. Exactly one of sqlite and pool
// is set.
type Backend struct {
	Kind  string
	Store services.Store

	sqlite *gorm.DB
	pool   interface {
		supabase.Querier
		Close()
	}
}

// OpenBackend connects to Postgres when DATABASE_URL is set and to the local
// SQLite file otherwise. SQLite migrations run on open. logger may be nil.
func OpenBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	if cfg.UseSupabase() {
		pool, err := supabase.Connect(ctx, cfg.DatabaseURL, supabase.PoolOptions{})
		if err != nil {
			return nil, fmt.Errorf("connect supabase: %w", err)
		}
		return &Backend{Kind: BackendSupabase, Store: supabase.NewStore(pool, cfg.DailyChallengeLimit), pool: pool}, nil
	}

	database, err := db.OpenSQLite(cfg.DBPath, db.WithQueryLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return &Backend{
		Kind:   BackendSQLite,
		Store:  db.NewStore(database, cfg.Location, cfg.DailyChallengeLimit),
		sqlite: database,
	}, nil
}

func (backend *Backend) Migrate(ctx context.Context) ([]string, error) {
	if backend.pool != nil {
		if err := supabase.ApplySchema(ctx, backend.pool); err != nil {
			return nil, err
		}
		return []string{"schema.sql"}, nil
	}

	applied, err := db.AppliedMigrations(ctx, backend.sqlite)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(applied))
	for _, migration := range applied {
		versions = append(versions, migration.Version)
	}
	return versions, nil
}

type SeedCounts struct {
	Achievements int64
	Badges       int64
	Challenges   int64
}

func (backend *Backend) Seed(ctx context.Context) (SeedCounts, error) {
	if backend.pool != nil {
		result, err := supabase.SeedCatalog(ctx, backend.pool, services.DefaultAchievements, services.DefaultBadges, services.DefaultChallenges)
		return SeedCounts(result), err
	}
	result, err := db.SeedCatalog(ctx, backend.sqlite, db.Catalog{
		Achievements: services.DefaultAchievements,
		Badges:       services.DefaultBadges,
		Challenges:   services.DefaultChallenges,
	})
	return SeedCounts(result), err
}

func (backend *Backend) Ping(ctx context.Context) error {
	if backend.pool != nil {
		_, err := backend.pool.Exec(ctx, "SELECT 1")
		return err
	}
	sqlDB, err := backend.sqlite.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (backend *Backend) Close() error {
	if backend.pool != nil {
		backend.pool.Close()
		return nil
	}
	return db.Close(backend.sqlite)
}
