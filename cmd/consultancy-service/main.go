package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nurpe/aterrozero-consultancy/internal/app"
	"github.com/nurpe/aterrozero-consultancy/internal/auth"
	"github.com/nurpe/aterrozero-consultancy/internal/config"
	httphandler "github.com/nurpe/aterrozero-consultancy/internal/http"
	"github.com/nurpe/aterrozero-consultancy/internal/http/middleware"
	"github.com/nurpe/aterrozero-consultancy/internal/logger"
	"github.com/nurpe/aterrozero-consultancy/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open workspace")
	}
	defer application.Close()

	var parser *auth.Parser
	if cfg.Auth.JWTSecret != "" {
		parser = auth.NewParser(cfg.Auth.JWTSecret)
	} else {
		log.Warn().Msg("AUTH_JWT_SECRET not set, authentication disabled")
	}

	m := metrics.New()
	handler := httphandler.NewHandler(application.Service, m, log)
	router := httphandler.NewRouter(handler, middleware.Auth(parser), m, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting consultancy service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
