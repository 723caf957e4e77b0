// Package app wires the catalog, learner, tracker and engine for the binaries.
package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/config"
	"github.com/danielpatrickdp/adaptive-guess/internal/effectiveness"
	"github.com/danielpatrickdp/adaptive-guess/internal/game"
	"github.com/danielpatrickdp/adaptive-guess/internal/learning"
)

// App holds the opened components of one process.
type App struct {
	Store   *catalog.Store
	Tracker *effectiveness.Tracker
	Learner *learning.Learner
	Engine  *game.Engine
}

// Open opens cfg.DBPath and builds the engine on it. An empty catalog is
// seeded from cfg.SeedPath when that file exists.
func Open(cfg config.Config, logger zerolog.Logger) (*App, error) {
	store, err := catalog.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	a, err := build(store, cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func build(store *catalog.Store, cfg config.Config, logger zerolog.Logger) (*App, error) {
	n, err := store.Count()
	if err != nil {
		return nil, err
	}
	if n == 0 && cfg.SeedPath != "" {
		seeded, err := SeedFile(store, cfg.SeedPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn().Str("seed", cfg.SeedPath).Msg("catalog is empty and seed file is missing")
		case err != nil:
			return nil, err
		default:
			logger.Info().Str("seed", cfg.SeedPath).Int("items", seeded).Msg("catalog seeded")
		}
	}

	effStore, err := effectiveness.NewStore(store.DB())
	if err != nil {
		return nil, fmt.Errorf("open effectiveness: %w", err)
	}
	tracker, err := effectiveness.NewTracker(effStore)
	if err != nil {
		return nil, err
	}
	learner := learning.NewLearner(store, cfg.Learning)
	engine, err := game.NewEngine(game.Deps{
		Catalog:  store,
		Learner:  learner,
		Tracker:  tracker,
		RoundLog: store.DB(),
		Logger:   logger,
	}, cfg.Game)
	if err != nil {
		return nil, err
	}
	return &App{Store: store, Tracker: tracker, Learner: learner, Engine: engine}, nil
}

// SeedFile loads a YAML seed into store and returns the item count.
func SeedFile(store *catalog.Store, path string) (int, error) {
	items, err := catalog.LoadSeed(path)
	if err != nil {
		return 0, err
	}
	if err := store.Upsert(items); err != nil {
		return 0, fmt.Errorf("seed %s: %w", path, err)
	}
	return len(items), nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}
