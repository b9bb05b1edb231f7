package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docgrep/internal/api"
	"github.com/dgallion1/docgrep/internal/logging"
	"github.com/dgallion1/docgrep/internal/pipeline"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath, logLevel *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search HTTP API",
		Long: `Serve exposes asynchronous searches over HTTP. Searches are confined to
search_root and run on a bounded job queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath, *logLevel)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") && cfg.LogLevel == "warn" {
				cfg.LogLevel = "info"
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log := logging.New(cmd.OutOrStdout(), cfg.LogLevel, "json")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			orch := pipeline.NewOrchestrator(cfg, pipeline.NewSourceStats(cfg.StatsWindow), log)
			orch.Start(ctx)

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      api.NewServer(orch, log, cfg),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting docgrep", "port", cfg.Port, "search_root", cfg.SearchRoot)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					orch.Stop()
					return fmt.Errorf("server error: %w", err)
				}
			case <-ctx.Done():
				log.Info("shutting down...")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown failed", "error", err)
			}
			orch.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default from config, 8090)")
	return cmd
}
