package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/phuslu/log"

	"github.com/dayoung-oh/lunchspin/internal/cli"
	"github.com/dayoung-oh/lunchspin/internal/config"
	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/gateway/geocode"
	"github.com/dayoung-oh/lunchspin/internal/gateway/overpass"
	"github.com/dayoung-oh/lunchspin/internal/service/discovery"
	"github.com/dayoung-oh/lunchspin/internal/service/roulette"
	"github.com/dayoung-oh/lunchspin/internal/session"
	"github.com/dayoung-oh/lunchspin/internal/storage"
)

var version = "dev"

const logLevelEnv = "LUNCHSPIN_LOG_LEVEL"

func main() {
	os.Exit(run())
}

func run() int {
	configureLogging()

	store, err := config.NewStore()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}

	ctx := context.Background()
	cfg, err := store.Load(ctx)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}

	db, err := storage.Open(store.DataDir(cfg))
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}()

	sess := session.New(
		discovery.NewService(overpass.NewClient(), storage.NewResultCache(db)),
		roulette.NewEngine(),
		storage.NewSessionStore(db),
		sessionDefaults(cfg)...,
	)

	deps := cli.Dependencies{
		Session:   sess,
		Geocode:   geocode.NewClient(),
		Snapshots: storage.NewSessionStore(db),
		Config:    store,
		Version:   version,
	}

	return cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
}

func sessionDefaults(cfg config.Config) []session.Option {
	opts := make([]session.Option, 0, 2)
	if cfg.Center != nil {
		opts = append(opts, session.WithDefaultCenter(*cfg.Center))
	}
	if cfg.WalkMinutes != 0 {
		opts = append(opts, session.WithDefaultRadius(domain.RadiusForWalkMinutes(cfg.WalkMinutes)))
	}
	return opts
}

func configureLogging() {
	level := log.WarnLevel
	if raw := strings.TrimSpace(os.Getenv(logLevelEnv)); raw != "" {
		level = log.ParseLevel(raw)
	}
	log.DefaultLogger = log.Logger{
		Level:  level,
		Writer: &log.ConsoleWriter{Writer: os.Stderr},
	}
}
