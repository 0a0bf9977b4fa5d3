package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/resumechat/internal/api/handlers"
	"github.com/cloo-solutions/resumechat/internal/jobs"
	"github.com/cloo-solutions/resumechat/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and API server",
		Long:  "Start the resumechat HTTP server serving the chat page and JSON API",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, flush, err := bootstrap(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer flush()

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	var sweeper *jobs.Worker
	if app.Sweeper != nil && cfg.SessionTTL > 0 {
		sweeper = jobs.NewWorker("session-sweeper", jobs.SessionSweepTask(app.Sweeper, log), cfg.SessionSweepInterval, log)
		go sweeper.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		ResumeHandler: handlers.NewResumeHandler(app.Service, log),
		HealthHandler: handlers.NewHealthHandler(app.Sessions, log),
		Logger:        log,
		MaxBodyBytes:  cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}
