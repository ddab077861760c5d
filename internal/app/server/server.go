package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"traffic-image-server/internal/api"
	"traffic-image-server/internal/config"
	"traffic-image-server/internal/engine"
	"traffic-image-server/internal/geo"
	"traffic-image-server/internal/storage"

	"github.com/rs/zerolog/log"
)

func Run(cfg config.Config) {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Geolocation
	loc, err := geo.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init geolocation")
	}
	defer geo.Close(loc)
	log.Info().Bool("enabled", loc != nil).Str("provider", cfg.Geo.Provider).Msg("geolocation")

	// Rules
	src, closeSrc, err := newRuleSource(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init rule source")
	}
	eng, err := engine.Build(rootCtx, src, engine.NewRegionResolver(loc))
	closeSrc()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rule configuration")
	}
	log.Debug().Msg("rule order:\n" + eng.String())

	// HTTP
	h := api.NewImageHandler(eng)
	r := api.Router(h, cfg.Server.ImageRoute, cfg.RequestTimeout())

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("route", cfg.Server.ImageRoute).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	waitForSignal()
	log.Info().Msg("shutdown...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel()
	_ = srv.Shutdown(shCtx)
}

// newRuleSource returns the configured source and a func releasing it.
// Rules are read once at startup.
func newRuleSource(ctx context.Context, cfg config.Config) (storage.RuleSource, func(), error) {
	switch cfg.Rules.Source {
	case "file":
		return storage.NewFileSource(cfg.Rules.Path), func() {}, nil
	case "postgres":
		store, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown rules.source %q", cfg.Rules.Source)
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
