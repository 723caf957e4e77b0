// Package game coordinates rounds: it asks the policy for questions, applies
// answers, makes guesses and feeds finished rounds to the learner.
package game

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/effectiveness"
	"github.com/danielpatrickdp/adaptive-guess/internal/learning"
	"github.com/danielpatrickdp/adaptive-guess/internal/logging"
	"github.com/danielpatrickdp/adaptive-guess/internal/selection"
	"github.com/danielpatrickdp/adaptive-guess/internal/session"
)

// Catalog is the read surface of the catalog a round needs.
type Catalog interface {
	AllItems() ([]catalog.Item, error)
	ItemByName(name string) (catalog.Item, bool, error)
}

// Deps are the collaborators of an Engine. Tracker and RoundLog are optional.
type Deps struct {
	Catalog  Catalog
	Learner  *learning.Learner
	Tracker  *effectiveness.Tracker
	RoundLog *sql.DB
	Logger   zerolog.Logger
}

// Engine is shared by every round of a process.
type Engine struct {
	catalog  Catalog
	learner  *learning.Learner
	tracker  *effectiveness.Tracker
	roundLog *sql.DB
	policy   selection.Policy
	cfg      Config
	logger   zerolog.Logger
}

// NewEngine validates deps and prepares the round log table.
func NewEngine(deps Deps, cfg Config) (*Engine, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("new engine: catalog is required")
	}
	if deps.Learner == nil {
		return nil, fmt.Errorf("new engine: learner is required")
	}
	def := DefaultConfig()
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = def.MaxQuestions
	}
	if cfg.GuessThreshold <= 0 {
		cfg.GuessThreshold = def.GuessThreshold
	}
	if cfg.GuessCandidates <= 0 {
		cfg.GuessCandidates = def.GuessCandidates
	}
	if cfg.FinalCandidates <= 0 {
		cfg.FinalCandidates = def.FinalCandidates
	}
	if deps.RoundLog != nil {
		if err := logging.EnsureSchema(deps.RoundLog); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		catalog:  deps.Catalog,
		learner:  deps.Learner,
		tracker:  deps.Tracker,
		roundLog: deps.RoundLog,
		cfg:      cfg,
		logger:   deps.Logger.With().Str("component", "game").Logger(),
	}
	if cfg.EffectivenessBoost && deps.Tracker != nil {
		e.policy.Booster = deps.Tracker
	}
	return e, nil
}

// Config returns the effective round parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Policy returns the selection policy rounds use.
func (e *Engine) Policy() selection.Policy {
	return e.policy
}

// NewRound starts a round over a fresh read of the catalog.
func (e *Engine) NewRound() (*Round, error) {
	items, err := e.catalog.AllItems()
	if err != nil {
		return nil, fmt.Errorf("new round: %w", err)
	}
	st := session.New(items, e.cfg.session())
	r := &Round{
		engine: e,
		state:  st,
		logger: e.logger.With().Str("round", st.ID).Logger(),
	}
	r.logger.Debug().Int("catalog", len(items)).Msg("round started")
	return r, nil
}

// Stats reports popularity statistics and the topN most effective questions.
func (e *Engine) Stats(topN int) (Stats, error) {
	pop, err := e.learner.Stats(topN)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	st := Stats{Popularity: pop}
	if e.tracker != nil {
		st.Effectiveness = e.tracker.Stats(topN)
	}
	return st, nil
}

// ResetLearning zeroes popularity and forgets question effectiveness.
func (e *Engine) ResetLearning() error {
	if err := e.learner.Reset(); err != nil {
		return fmt.Errorf("reset popularity: %w", err)
	}
	if e.tracker != nil {
		if err := e.tracker.Reset(); err != nil {
			return fmt.Errorf("reset effectiveness: %w", err)
		}
	}
	e.logger.Info().Msg("learning reset")
	return nil
}

// #region resolve-name
// ResolveName finds the item a player named: exact, then case-insensitive,
// then the closest name within a length-scaled edit distance.
func (e *Engine) ResolveName(name string) (catalog.Item, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.Item{}, false, nil
	}
	it, ok, err := e.catalog.ItemByName(name)
	if err != nil || ok {
		return it, ok, err
	}

	items, err := e.catalog.AllItems()
	if err != nil {
		return catalog.Item{}, false, fmt.Errorf("resolve %q: %w", name, err)
	}
	compare := strings.ToLower(name)
	best, bestDist := catalog.Item{}, -1
	for _, cand := range items {
		dist := levenshtein.ComputeDistance(compare, strings.ToLower(cand.Name))
		if dist > levenshteinLimit(len(cand.Name)) {
			continue
		}
		// items arrive in id order, so strict < keeps the lower id on ties
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	if bestDist < 0 {
		return catalog.Item{}, false, nil
	}
	e.logger.Debug().Str("input", name).Str("resolved", best.Name).Int("distance", bestDist).Msg("fuzzy name match")
	return best, true, nil
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// #endregion resolve-name
