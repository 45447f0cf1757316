package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jimdaga/wellness-checkin/internal/config"
	"github.com/jimdaga/wellness-checkin/internal/logging"
	"github.com/jimdaga/wellness-checkin/internal/server"
	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Wellness check-in service",
	Long: `checkin serves the wellness check-in API: patients rate an area of life,
journal about it and receive an AI reflection; counselors read what their
patients shared and leave them messages.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and write missing table headers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		if cfg.StoreBackend == config.BackendMemory {
			return errors.New("the memory backend keeps nothing to migrate")
		}
		return server.Migrate(cmd.Context(), cfg, logger)
	},
}

var forceSeed bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write table headers and the development accounts",
	Long: `seed writes the table headers plus a development counselor and patient
sharing a published password. It refuses to run with ENV=production unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		if cfg.StoreBackend == config.BackendMemory {
			return errors.New("the memory backend is seeded on every start")
		}
		return server.Seed(cmd.Context(), cfg, logger, forceSeed)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding an optional .env file")
	seedCmd.Flags().BoolVar(&forceSeed, "force", false, "create the development accounts even in production")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	app, err := server.NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
