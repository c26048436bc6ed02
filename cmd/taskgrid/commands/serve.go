package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/taskgrid/internal/infrastructure/database"
	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
	"github.com/taskmaster/taskgrid/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand(opts *Options) *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskGrid API server",
		Long:  "Start the REST API the sheet saves to, with health, metrics and swagger routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func runServer(ctx context.Context, opts *Options, migrateFirst bool) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = appLogger.Close() }()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.WithError(err).Errorw("Failed to connect to database")
		return err
	}
	defer func() { _ = db.Close() }()

	if migrateFirst {
		if err := db.MigrateUp(cfg.Database.MigrationsPath); err != nil {
			return err
		}
		appLogger.Infow("Migrations applied", "path", cfg.Database.MigrationsPath)
	}

	engine, err := newEngine(cfg, appLogger)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, db, engine, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Infow("Starting TaskGrid API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"chain", engine.Chain().Fields(),
		"timezone", engine.Location().String(),
	)
	if cfg.App.IsDevelopment() && !cfg.JWT.Enabled {
		appLogger.Warnw("JWT auth is disabled; the API is open")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
