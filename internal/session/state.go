// Package session holds the narrowing state of one guessing round.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/question"
	"github.com/danielpatrickdp/adaptive-guess/internal/selection"
)

// State is the mutable narrowing state of one round. It is not safe for
// concurrent use.
type State struct {
	ID             string
	Remaining      []catalog.Item
	Filter         catalog.Filter
	Asked          question.AskedValues
	QuestionsAsked int
	History        []Turn

	cfg       Config
	exhausted bool
}

// #region lifecycle
// New starts a session over the full catalog.
func New(items []catalog.Item, cfg Config) *State {
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = DefaultConfig().MaxQuestions
	}
	if cfg.GuessThreshold <= 0 {
		cfg.GuessThreshold = DefaultConfig().GuessThreshold
	}
	s := &State{cfg: cfg}
	s.Reset(items)
	return s
}

// Reset clears filters, asked values, counter and history, and installs
// items as the remaining set under a fresh id.
func (s *State) Reset(items []catalog.Item) {
	s.ID = uuid.New().String()
	s.Remaining = append([]catalog.Item(nil), items...)
	s.Filter = catalog.Filter{}
	s.Asked = question.NewAskedValues()
	s.QuestionsAsked = 0
	s.History = nil
	s.exhausted = false
}

// Config returns the session bounds.
func (s *State) Config() Config {
	return s.cfg
}

// #endregion lifecycle

// #region phase
// Phase derives the current state from the remaining set and budget.
func (s *State) Phase() Phase {
	n := len(s.Remaining)
	switch {
	case n <= 1, s.QuestionsAsked >= s.cfg.MaxQuestions, s.exhausted:
		return PhaseConcluded
	case n <= s.cfg.GuessThreshold:
		return PhaseReadyToGuess
	default:
		return PhaseActive
	}
}

// MarkExhausted records that no distinguishing question remains.
func (s *State) MarkExhausted() {
	s.exhausted = true
}

// Exhausted reports whether MarkExhausted was called since the last reset.
func (s *State) Exhausted() bool {
	return s.exhausted
}

// BudgetLeft returns the number of questions still allowed.
func (s *State) BudgetLeft() int {
	if left := s.cfg.MaxQuestions - s.QuestionsAsked; left > 0 {
		return left
	}
	return 0
}

// #endregion phase

// #region apply
// Apply narrows the remaining set by the answer to q.
func (s *State) Apply(q question.Question, answer bool) (Turn, error) {
	if s.QuestionsAsked >= s.cfg.MaxQuestions {
		return Turn{}, ErrBudgetExhausted
	}
	if err := q.Validate(); err != nil {
		return Turn{}, err
	}

	before := len(s.Remaining)
	if q.Kind == question.KindAttribute {
		token := catalog.False
		if answer {
			token = catalog.True
		}
		s.Filter[q.Attribute] = token
		s.Remaining = keep(s.Remaining, func(it catalog.Item) bool {
			return it.Flag(q.Attribute) == token
		})
	} else {
		s.Remaining = keep(s.Remaining, func(it catalog.Item) bool {
			return q.Matches(it) == answer
		})
		s.Asked.Add(q.Category, q.Value)
	}

	t := Turn{Question: q, Answer: answer, Before: before, After: len(s.Remaining)}
	s.History = append(s.History, t)
	s.QuestionsAsked++
	return t, nil
}

// keep returns a new slice; the result never grows.
func keep(items []catalog.Item, pred func(catalog.Item) bool) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// RejectGuess removes the item with id from the remaining set. It does not
// consume budget.
func (s *State) RejectGuess(id int) bool {
	for i, it := range s.Remaining {
		if it.ID == id {
			rest := make([]catalog.Item, 0, len(s.Remaining)-1)
			rest = append(rest, s.Remaining[:i]...)
			s.Remaining = append(rest, s.Remaining[i+1:]...)
			return true
		}
	}
	return false
}

// #endregion apply

// #region guess
// TopCandidates returns up to n remaining items, most popular first, lower
// id first on ties.
func (s *State) TopCandidates(n int) []catalog.Item {
	return catalog.ByPopularity(s.Remaining, n)
}

// Guess returns the single most likely remaining item.
func (s *State) Guess() (catalog.Item, bool) {
	top := s.TopCandidates(1)
	if len(top) == 0 {
		return catalog.Item{}, false
	}
	return top[0], true
}

// Input exposes the state to the selection policy.
func (s *State) Input() selection.Input {
	return selection.Input{Remaining: s.Remaining, Filter: s.Filter, Asked: s.Asked}
}

// NextQuestion asks policy for the best question. It returns
// ErrEmptyCandidateSet when nothing remains to narrow.
func (s *State) NextQuestion(policy selection.Policy) (selection.Choice, error) {
	if len(s.Remaining) == 0 {
		return selection.Choice{}, ErrEmptyCandidateSet
	}
	c, ok := policy.Best(s.Input())
	if !ok {
		return selection.Choice{}, fmt.Errorf("no question available: %w", ErrEmptyCandidateSet)
	}
	return c, nil
}

// #endregion guess
