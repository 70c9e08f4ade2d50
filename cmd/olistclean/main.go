// Command olistclean cleans the raw Olist e-commerce CSV exports and
// enforces referential integrity between them.
//
//	olistclean run    [--input DIR] [--output DIR] [--report FILE]
//	olistclean serve  HTTP API for starting runs and reading reports
//	olistclean tables list the cleaning tables by phase
//	olistclean reset  drop the cleaned tables from PostgreSQL
//
// Configuration comes from the environment, optionally via a .env file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/olistclean/internal/config"
	_ "github.com/JonMunkholm/olistclean/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/olistclean/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "olistclean",
		Short:         "Clean the Olist CSV exports and enforce referential integrity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newTablesCmd(),
		newResetCmd(),
	)
	return root
}

// loadConfig reads .env when present, loads the configuration and sets up
// logging. Existing environment variables win over .env entries.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}
