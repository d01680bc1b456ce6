package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notesbuzz/internal/blobstore"
	"notesbuzz/internal/config"
	"notesbuzz/internal/db"
	"notesbuzz/internal/metrics"
	"notesbuzz/internal/server"
	"notesbuzz/internal/users"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return runServe(cmd.Context(), cfg, a.logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides "+config.EnvPort+")")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("running migrations")
	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { _ = conn.Close() }()

	objects, err := blobstore.NewMinioObjects(ctx, blobstore.MinioConfig{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.Bucket,
	})
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}

	userStore, err := users.NewStore(users.NewPostgresRepository(conn), cfg.BcryptCost)
	if err != nil {
		return err
	}
	files := blobstore.NewStore(objects, conn, logger.With("component", "blobstore"))

	srv := server.New(server.Config{
		Addr:           cfg.Addr(),
		Users:          userStore,
		Files:          files,
		Logger:         logger.With("component", "server"),
		Metrics:        metrics.New(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
	})

	// Start the HTTP server in a background goroutine so we can wait for
	// signals here.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting", "addr", cfg.Addr(), "version", version, "bucket", cfg.Bucket)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String(), "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("shutdown complete")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
