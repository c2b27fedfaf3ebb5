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
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filetrail"
	"github.com/sagarc03/filetrail/config"
	"github.com/sagarc03/filetrail/database"
	filetrailhttp "github.com/sagarc03/filetrail/http"
	"github.com/sagarc03/filetrail/keybackend"
	"github.com/sagarc03/filetrail/objectstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the filetrail HTTP API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP server port (env: FILETRAIL_SERVER_PORT, PORT)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	slog.Info("connected to database", "type", cfg.Database.Type, "auto_migrate", cfg.Database.AutoMigrate)

	signer, err := objectstore.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("create object store signer: %w", err)
	}
	slog.Info("object store ready", "type", cfg.Storage.Type, "bucket", cfg.Storage.Bucket)

	// A remote key set refreshes in the background until ctx is cancelled.
	keys, err := keybackend.NewKeySet(ctx, cfg.Auth.Keys)
	if err != nil {
		return fmt.Errorf("create key set: %w", err)
	}
	verifier := filetrail.NewTokenVerifier(cfg.Auth.OIDC, keys, cfg.Auth.Leeway)

	service := filetrail.NewFileService(db.GetRepo(), signer, filetrail.ServiceConfig{})

	handlerConfig := filetrailhttp.HandlerConfig{
		Verifier:     verifier,
		CORS:         cfg.CORS,
		MaxBodyBytes: cfg.Server.MaxBodySize,
	}
	handler := filetrailhttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-ctx.Done()
	return nil
}
