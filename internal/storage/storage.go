package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-status-updater/internal/content"
	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

const (
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"

	sqliteDriver   = "sqlite3"
	postgresDriver = "pgx"
)

var (
	ErrProviderUnknown = errors.New("storage: unknown sql provider")
	ErrDSNRequired     = errors.New("storage: dsn is required")
)

// Config describes the SQL connection.
type Config struct {
	Provider     string
	DSN          string
	MaxOpenConns int
	PingTimeout  time.Duration
}

// Open connects to the configured database, pings it and wraps it in bun with the
// matching dialect.
func Open(ctx context.Context, cfg Config, logger interfaces.Logger) (*bun.DB, error) {
	if logger == nil {
		logger = logging.NoOp()
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	var driver string
	switch provider {
	case ProviderSQLite:
		driver = sqliteDriver
	case ProviderPostgres:
		driver = postgresDriver
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderUnknown, cfg.Provider)
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", provider, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", provider, err)
	}

	var db *bun.DB
	if provider == ProviderPostgres {
		db = bun.NewDB(sqldb, pgdialect.New())
	} else {
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}
	logger.Info("storage.opened", "provider", provider)
	return db, nil
}

// Migrate creates the content tables and the slug index when they are missing.
func Migrate(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return content.ErrStoreNotConfigured
	}
	for _, model := range content.Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table: %w", err)
		}
	}
	_, err := db.NewCreateIndex().
		Model((*content.Item)(nil)).
		Index("content_items_slug_idx").
		Column("slug").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: create slug index: %w", err)
	}
	return nil
}
