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

	router "github.com/rsinha/huddle/internal/adapters/http"
	"github.com/rsinha/huddle/internal/app"
	"github.com/rsinha/huddle/internal/auth"
	"github.com/rsinha/huddle/internal/config"
	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Secret == "" {
		log.Fatal().Msg("secret must be configured")
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := store.Open(connectCtx, cfg.MongoURI, cfg.MongoDB)
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}

	resolver := auth.NewTokenResolver(cfg.Secret)
	registry := core.NewRegistry()
	relay := core.NewRelay(registry)
	gate := app.NewGate(resolver, db, registry, relay)
	pending := app.NewPendingJoinRequests(cfg.JoinRequestTTL)
	coordinator := app.NewCoordinator(registry, relay, db, pending)

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Resolver:    resolver,
		Gate:        gate,
		Coordinator: coordinator,
		Registry:    registry,
		Relay:       relay,
		Rooms:       db,
		Chats:       db,
		Messages:    db,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Huddle server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	pending.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Mongo disconnect failed")
	}
	log.Info().Msg("Server exited gracefully")
}
