// Package learning adjusts catalog popularity after each finished round.
package learning

import (
	"fmt"
	"sort"
	"sync"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
)

// Learner applies round outcomes to the catalog's popularity scores.
// Updates are serialized, so concurrent rounds may share one Learner.
type Learner struct {
	store Store
	cfg   Config
	mu    sync.Mutex
}

// NewLearner binds a learner to a popularity store.
func NewLearner(store Store, cfg Config) *Learner {
	return &Learner{store: store, cfg: cfg}
}

// Config returns the learner parameters.
func (l *Learner) Config() Config {
	return l.cfg
}

// #region update
// Update rewards targetID, penalizes every other candidate, then decays all
// items outside {targetID} and the candidates. The three steps commit
// together; on error no score has changed. wasCorrect is recorded by callers
// but does not change the reward sign. A target missing from the catalog
// skips the reward; the penalty and decay steps still run.
func (l *Learner) Update(targetID int, candidates []catalog.Item, wasCorrect bool) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res Result
	err := l.store.UpdatePopularity(func(w catalog.PopularityWriter) error {
		res = Result{Penalized: make(map[int]float64)}

		found, score, err := l.adjust(w, targetID, 1.0)
		if err != nil {
			return fmt.Errorf("reward %d: %w", targetID, err)
		}
		res.TargetFound, res.Target = found, score

		exclude := []int{targetID}
		seen := map[int]bool{targetID: true}
		for _, c := range candidates {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			exclude = append(exclude, c.ID)

			ok, score, err := l.adjust(w, c.ID, l.cfg.Penalty)
			if err != nil {
				return fmt.Errorf("penalize %d: %w", c.ID, err)
			}
			if ok {
				res.Penalized[c.ID] = score
			}
		}

		if err := w.DecayPopularityExcept(exclude, l.cfg.DecayRate); err != nil {
			return fmt.Errorf("decay: %w", err)
		}
		sort.Ints(exclude)
		res.Excluded = exclude
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// adjust adds LearningRate*reward to one score and clamps it.
func (l *Learner) adjust(w catalog.PopularityWriter, id int, reward float64) (bool, float64, error) {
	current, ok, err := w.Popularity(id)
	if err != nil || !ok {
		return false, 0, err
	}
	next := l.clamp(current + l.cfg.LearningRate*reward)
	if err := w.SetPopularity(id, next); err != nil {
		return false, 0, err
	}
	return true, next, nil
}

func (l *Learner) clamp(v float64) float64 {
	if v < l.cfg.MinScore {
		return l.cfg.MinScore
	}
	if v > l.cfg.MaxScore {
		return l.cfg.MaxScore
	}
	return v
}

// #endregion update

// #region stats
// Stats reports popularity min/max/avg and the topN items.
func (l *Learner) Stats(topN int) (catalog.PopularityStats, error) {
	return l.store.PopularityStats(topN)
}

// Reset zeroes every popularity score.
func (l *Learner) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.ResetPopularity()
}

// MostPopular returns the n highest-scored candidates, lower id first on ties.
func MostPopular(candidates []catalog.Item, n int) []catalog.Item {
	return catalog.ByPopularity(candidates, n)
}

// #endregion stats
