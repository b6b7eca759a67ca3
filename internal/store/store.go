// Package store is the record store adapter: a thin layer over GORM that
// hands repositories a context-bound handle, joins an ambient transaction
// when one is open and classifies driver errors into apperr kinds.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dms/internal/apperr"
	"dms/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the connection settings of the store.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	// Timeout bounds every statement. Zero disables the bound.
	Timeout time.Duration
}

// Store wraps a *gorm.DB.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

type txKey struct{}

// Open connects to the configured backend.
func Open(cfg Config, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if log == nil {
		log = zap.NewNop()
	}

	gormLog := gormlogger.New(
		zap.NewStdLog(log.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if strings.ToLower(cfg.Driver) == DriverSQLite {
		// sqlite serialises writers; a single connection keeps transactions from locking each other out
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return New(db, cfg.Timeout), nil
}

// New wraps an already opened *gorm.DB.
func New(db *gorm.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// DB returns a handle bound to ctx. When ctx carries a transaction opened by
// WithinTransaction the handle joins it. The returned cancel func must be called.
func (s *Store) DB(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx), cancel
	}
	return s.db.WithContext(ctx), cancel
}

// WithinTransaction runs fn inside a single store transaction. Nested calls
// join the outer transaction. Errors returned by fn roll the transaction back
// and are returned unchanged.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		return Classify("transaction", err)
	}
	return nil
}

// Migrate creates or updates the schema of the three directory tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Profile{}, &models.Login{}, &models.Document{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperr.Store("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Store("ping", err)
	}
	return nil
}

// SQL returns the underlying connection pool.
func (s *Store) SQL() (*sql.DB, error) {
	return s.db.DB()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Classify maps a driver error onto an apperr kind. Unique violations become
// ErrConflict, foreign key violations ErrInvalidReference and anything else ErrStore.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s: %w", apperr.ErrConflict, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s: %w", apperr.ErrInvalidReference, op, err)
	}
	return apperr.Store(op, err)
}
