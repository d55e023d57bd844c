// Package store persists the journal, the rules, the risk settings and the
// webhook signals of each user in a relational database through gorm.
//
// Every method is scoped by a user id: a row belonging to another user is
// reported as ErrNotFound, exactly like a missing one.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/tradedesk/config"
	"github.com/etnz/tradedesk/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrMissingUser = errors.New("missing user id")
)

// Store is the relational store.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGorm(log, logger.GormLevel("warn")),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an open gorm connection. The schema is not migrated.
func New(db *gorm.DB) *Store { return &Store{db: db} }

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(&tradeRow{}, &journalRow{}, &riskSettingsRow{}, &ruleRow{}, &BacktestRecord{})
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping checks the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// user returns a session restricted to the rows of userID.
func (s *Store) user(ctx context.Context, userID string) (*gorm.DB, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	return s.db.WithContext(ctx).Where("user_id = ?", userID), nil
}

// notFound maps gorm's missing record error to ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// affected reports ErrNotFound when an update or delete matched no row.
func affected(tx *gorm.DB, what string) error {
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
