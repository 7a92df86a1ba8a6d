// Package database opens the configured row store and applies its schema.
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"emo-pages-backend/internal/config"
	"emo-pages-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

//go:embed schema/postgres.sql
var postgresSchema string

//go:embed schema/sqlite.sql
var sqliteSchema string

// DB is an open row store plus its teardown
type DB struct {
	Store repository.Store

	driver string
	exec   func(ctx context.Context, stmt string) error
	close  func()
}

// Open connects to the store named by cfg.Driver and pings it
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case "postgres":
		return openPostgres(ctx, cfg)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		Store:  repository.NewPostgresStore(pool),
		driver: "postgres",
		exec: func(ctx context.Context, stmt string) error {
			_, err := pool.Exec(ctx, stmt)
			return err
		},
		close: pool.Close,
	}, nil
}

// OpenSQLite opens (creating if needed) a sqlite file
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &DB{
		Store:  repository.NewSQLiteStore(db),
		driver: "sqlite",
		exec: func(ctx context.Context, stmt string) error {
			_, err := db.ExecContext(ctx, stmt)
			return err
		},
		close: func() { db.Close() },
	}, nil
}

// Driver names the backing store
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if db.driver == "sqlite" {
		schema = sqliteSchema
	}

	for _, stmt := range splitStatements(schema) {
		if err := db.exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool
func (db *DB) Close() {
	db.close()
}

func splitStatements(schema string) []string {
	var stmts []string
	for _, part := range strings.Split(schema, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
