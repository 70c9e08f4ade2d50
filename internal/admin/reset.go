// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/olistclean/internal/core"
	"github.com/JonMunkholm/olistclean/internal/schema"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// Execer runs a statement. *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ResetDbs handles database reset operations.
type ResetDbs struct {
	DB     Execer
	Schema string
}

type dbResetFn func(ctx context.Context) error

// ResetAll drops every cleaned table in defs, dependents first.
// This is a destructive operation - use with caution.
func (r *ResetDbs) ResetAll(ctx context.Context, defs []core.TableDefinition) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	resets := make([]dbResetFn, 0, len(defs))
	for i := len(defs) - 1; i >= 0; i-- {
		resets = append(resets, r.dropTable(defs[i].Info.Output))
	}
	return r.runResets(ctx, resets)
}

func (r *ResetDbs) dropTable(table string) dbResetFn {
	return func(ctx context.Context) error {
		if _, err := r.DB.Exec(ctx, schema.DropTable(r.Schema, table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		slog.Info("table dropped", "schema", r.Schema, "table", table)
		return nil
	}
}

func (r *ResetDbs) runResets(ctx context.Context, resets []dbResetFn) error {
	for _, reset := range resets {
		if err := reset(ctx); err != nil {
			return err
		}
	}
	return nil
}
