package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type options struct {
	logger   *slog.Logger
	logLevel gormlogger.LogLevel
}

// Option configures Connect.
type Option func(*options)

// WithLogger routes gorm's logging through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithVerboseSQL logs every statement instead of only slow queries and errors.
func WithVerboseSQL(verbose bool) Option {
	return func(o *options) {
		if verbose {
			o.logLevel = gormlogger.Info
		}
	}
}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
// Driver errors are translated so unique violations surface as gorm.ErrDuplicatedKey.
func Connect(ctx context.Context, dsn string, opts ...Option) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	o := options{logLevel: gormlogger.Warn}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	cfg := &gorm.Config{TranslateError: true}
	if o.logger != nil {
		cfg.Logger = gormlogger.New(slogWriter{logger: o.logger}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  o.logLevel,
			IgnoreRecordNotFoundError: true,
		})
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectConfigured dials PostgreSQL when dsn is set and returns the DB plus a cleanup function.
// An empty dsn yields a nil DB so callers fall back to in-memory adapters.
func ConnectConfigured(ctx context.Context, dsn string, logger *slog.Logger, opts ...Option) (*gorm.DB, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		if logger != nil {
			logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		}
		return nil, func() {}, nil
	}
	db, err := Connect(ctx, dsn, append([]Option{WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, func() {}, err
	}
	if logger != nil {
		logger.Info("postgres connection established")
	}
	return db, func() { _ = sqlDB.Close() }, nil
}

type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "gorm"))
}
