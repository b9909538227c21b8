package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/triboferrin/triboferrin/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot process",
	Long: `Start the bot process.

Requires a Discord token (TRIBOFERRIN_DISCORD_TOKEN, --discord-token, or
the config file). Binds a local status listener on the configured
host and port and runs until interrupted.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if err := cfg.RequireToken(); err != nil {
		return err
	}

	slog.Info("configuration resolved", "config", cfg)
	if cfg.DiscordAPIURL != "" {
		slog.Info("using custom Discord API URL", "url", cfg.DiscordAPIURL)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	srv := &http.Server{
		Addr:              addr,
		Handler:           statusRouter(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("status listener started", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("status listener: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// statusRouter exposes the process's local control surface. The token
// itself is never served; only whether one is set.
func statusRouter(cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"version": version})
	})

	r.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"host":              cfg.Host,
			"port":              cfg.Port,
			"log_level":         cfg.LogLevel,
			"verbose":           cfg.Verbose,
			"discord_api_url":   cfg.DiscordAPIURL,
			"discord_token_set": cfg.DiscordToken != "",
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}
