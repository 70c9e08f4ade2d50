package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/olistclean/internal/admin"
	"github.com/JonMunkholm/olistclean/internal/core"
	"github.com/JonMunkholm/olistclean/internal/sink"
)

func newResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop every cleaned table from the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to drop tables without --yes")
			}
			return resetDatabase(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm dropping the tables")
	return cmd
}

func resetDatabase(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return errors.New("DATABASE_URL is not set")
	}

	pool, err := sink.OpenPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	r := &admin.ResetDbs{DB: pool, Schema: cfg.Database.Schema}
	return r.ResetAll(ctx, core.All())
}
