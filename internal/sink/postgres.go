package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/olistclean/internal/config"
	"github.com/JonMunkholm/olistclean/internal/core"
	"github.com/JonMunkholm/olistclean/internal/logging"
	"github.com/JonMunkholm/olistclean/internal/schema"
)

// OpenPool parses cfg.URL, applies the pool limits and connects.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

// PostgresSink loads each table into <schema>.<name> with COPY.
type PostgresSink struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgresSink creates a PostgresSink. An empty schemaName uses
// schema.DefaultSchema.
func NewPostgresSink(pool *pgxpool.Pool, schemaName string) *PostgresSink {
	if schemaName == "" {
		schemaName = schema.DefaultSchema
	}
	return &PostgresSink{pool: pool, schema: schemaName}
}

// Prepare verifies the connection and creates the schema.
func (s *PostgresSink) Prepare(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if _, err := s.pool.Exec(ctx, schema.CreateSchema(s.schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", s.schema, err)
	}
	return nil
}

// Write replaces the table contents in one transaction: create if missing,
// truncate, then COPY every row.
func (s *PostgresSink) Write(ctx context.Context, t *core.Table) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schema.CreateTable(s.schema, t.Name, t.Columns)); err != nil {
		return fmt.Errorf("create table %s: %w", t.Name, err)
	}
	if _, err := tx.Exec(ctx, schema.Truncate(s.schema, t.Name)); err != nil {
		return fmt.Errorf("truncate %s: %w", t.Name, err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{s.schema, t.Name},
		core.ColumnNames(t.Columns),
		pgx.CopyFromRows(t.Rows),
	)
	if err != nil {
		return fmt.Errorf("copy into %s: %w", t.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", t.Name, err)
	}

	logging.FromContext(ctx).Debug("table loaded",
		"table", t.Name,
		"schema", s.schema,
		"rows", copied,
	)
	return nil
}
