package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dche/callsign/internal/adapters/http"
	"github.com/dche/callsign/internal/app"
	"github.com/dche/callsign/internal/auth"
	"github.com/dche/callsign/internal/config"
	"github.com/dche/callsign/internal/presence"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEVELOP") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	// Redis backs the auth gate and presence mirroring. Both are
	// external collaborators: if Redis is unreachable the relay still
	// runs, with the gate disabled and presence kept local only.
	var gate *auth.Gate
	var tracker app.Presence
	rdb, err := presence.Dial(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, auth gate and presence mirroring disabled")
	} else {
		defer rdb.Close()
		tracker = presence.NewTracker(rdb)
		gate, err = auth.Load(ctx, rdb)
		if err != nil {
			log.Warn().Err(err).Msg("jwt material not loaded, auth gate disabled")
		}
	}

	hub := app.NewHub(app.NewRegistry(), app.NewSessionStore(), tracker)

	if rdb != nil {
		presence.SubscribeForceLogout(ctx, rdb, hub.ForceLogout)
	}

	r := router.SetupRouter(cfg, hub, gate)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("callsign relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
