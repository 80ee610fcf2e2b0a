package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordibble/internal/config"
	"github.com/robalobadob/wordibble/internal/daily"
	"github.com/robalobadob/wordibble/internal/httpserver"
	"github.com/robalobadob/wordibble/internal/store"
	"github.com/robalobadob/wordibble/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	catalog := words.Default(cfg.WordsDir, cfg.DailySalt)
	if err := catalog.Warm(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open store")
	}
	defer backend.Close()

	repo := store.NewRepo(backend, func() string { return daily.DateKey(time.Now(), cfg.Location) })
	srv := httpserver.New(httpserver.Deps{Config: cfg, Repo: repo, Catalog: catalog})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		srv.Shutdown()
		_ = backend.Close()
		os.Exit(0)
	}()

	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Str("tz", cfg.Location.String()).Msg("starting wordibble server")
	if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func openBackend(cfg *config.Config) (store.Backend, error) {
	if cfg.StoreBackend == "memory" {
		return store.NewMemory(), nil
	}
	target := cfg.DatabaseURL
	if cfg.StoreBackend == "sqlite" {
		target = cfg.DBPath
	}
	db, err := store.OpenSQL(cfg.StoreBackend, target)
	if err != nil {
		return nil, err
	}
	return db, nil
}
