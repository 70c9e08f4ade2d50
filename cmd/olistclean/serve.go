package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/olistclean/internal/core"
	"github.com/JonMunkholm/olistclean/internal/sink"
	"github.com/JonMunkholm/olistclean/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for starting runs and reading reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, closeSinks, err := sink.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	service := core.NewService(core.ServiceOptions{
		Source:            core.NewDirSource(cfg.Input.Dir, cfg.Input.MaxFileSize),
		Sink:              out,
		TranslationSource: cfg.Input.TranslationSource,
		Progress:          os.Stdout,
		RunTimeout:        cfg.Server.RunTimeout,
	})

	slog.Info("tables registered", "count", core.TableCount())

	server := web.NewServer(service, cfg.Server)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first so no new run starts while draining.
	var shutdownErr error
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		shutdownErr = err
	}

	drainRuns(shutdownCtx, service)
	return shutdownErr
}

// cancelGrace bounds the wait for a cancelled run to unwind.
const cancelGrace = 5 * time.Second

// drainRuns waits for active runs until ctx is done, then cancels them so
// none is still writing when the sinks are closed.
func drainRuns(ctx context.Context, service *core.Service) {
	status := service.LimiterStatus()
	if status.Active == 0 {
		return
	}

	slog.Info("waiting for active run to complete", "active", status.Active)
	if err := service.WaitForRuns(ctx); err == nil {
		slog.Info("active run completed")
		return
	}

	slog.Warn("run did not complete in time, cancelling", "active", service.LimiterStatus().Active)
	service.CancelRuns()

	graceCtx, cancel := context.WithTimeout(context.Background(), cancelGrace)
	defer cancel()
	if err := service.WaitForRuns(graceCtx); err != nil {
		slog.Error("run abandoned, outputs may be incomplete", "error", err)
		return
	}
	slog.Info("active run cancelled")
}
