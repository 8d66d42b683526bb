package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type SQLiteOption func(*sqliteSettings)

type sqliteSettings struct {
	logger        *zap.Logger
	busyTimeout   time.Duration
	slowThreshold time.Duration
}

// WithQueryLogger routes gorm warnings and slow queries into logger.
func WithQueryLogger(logger *zap.Logger) SQLiteOption {
	return func(settings *sqliteSettings) {
		if logger != nil {
			settings.logger = logger
		}
	}
}

func WithBusyTimeout(timeout time.Duration) SQLiteOption {
	return func(settings *sqliteSettings) {
		if timeout > 0 {
			settings.busyTimeout = timeout
		}
	}
}

// OpenSQLite opens dbPath, creating its directory, and brings the schema up
// to date before returning.
func OpenSQLite(dbPath string, options ...SQLiteOption) (*gorm.DB, error) {
	settings := sqliteSettings{
		logger:        zap.NewNop(),
		busyTimeout:   5 * time.Second,
		slowThreshold: time.Second,
	}
	for _, option := range options {
		option(&settings)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", dbPath, settings.busyTimeout.Milliseconds())
	queryLog := zap.NewStdLog(settings.logger.Named("sqlite").WithOptions(zap.AddCallerSkip(3)))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(queryLog, gormlogger.Config{
			SlowThreshold:             settings.slowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: SQLite has a single writer and complete_challenge
	// must not interleave with itself.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if _, err := newMigrator(database, nil).Up(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}
	return database, nil
}

func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
