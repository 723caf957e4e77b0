package replay

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/effectiveness"
	"github.com/danielpatrickdp/adaptive-guess/internal/game"
	"github.com/danielpatrickdp/adaptive-guess/internal/learning"
)

// maxSteps bounds a simulated round; a real round needs far fewer prompts.
const maxSteps = 200

// #region types
// Step is one prompt of a simulated round and the oracle's reply.
type Step struct {
	Kind      game.PromptKind `json:"kind"`
	Key       string          `json:"key,omitempty"`
	Text      string          `json:"text"`
	Answer    bool            `json:"answer"`
	GuessID   int             `json:"guess_id,omitempty"`
	Remaining int             `json:"remaining"`
}

// Transcript captures one simulated round.
type Transcript struct {
	RoundID   string
	Target    catalog.Item
	Steps     []Step
	Questions int
	Guesses   []int // rejected guesses, in order
	Outcome   game.Outcome
}

// Summary provides aggregate stats over simulated rounds.
type Summary struct {
	Rounds       int
	Guessed      int
	Revealed     int
	Unknown      int
	WrongGuesses int
	AvgQuestions float64
	MaxQuestions int
}

// #endregion types

// #region simulate
// Simulate plays one round against a truthful oracle for target: questions
// are answered from the target's attributes, guesses are confirmed only when
// they name it, and a reveal names it.
func Simulate(e *game.Engine, target catalog.Item) (Transcript, error) {
	r, err := e.NewRound()
	if err != nil {
		return Transcript{}, err
	}
	tr := Transcript{RoundID: r.ID(), Target: target}

	for i := 0; i < maxSteps; i++ {
		p := r.Next()
		step := Step{Kind: p.Kind, Text: p.Text, Remaining: p.Remaining}

		switch p.Kind {
		case game.PromptQuestion:
			step.Key = p.Question.Key()
			step.Answer = p.Question.Matches(target)
			tr.Steps = append(tr.Steps, step)
			if _, err := r.Answer(step.Answer); err != nil {
				return tr, fmt.Errorf("answer %s: %w", step.Key, err)
			}

		case game.PromptGuess, game.PromptFinal:
			step.GuessID = p.Guess.ID
			step.Answer = p.Guess.ID == target.ID
			tr.Steps = append(tr.Steps, step)
			if _, err := r.Confirm(step.Answer); err != nil {
				return tr, fmt.Errorf("confirm %d: %w", p.Guess.ID, err)
			}

		case game.PromptReveal:
			tr.Steps = append(tr.Steps, step)
			if _, err := r.Reveal(target.Name); err != nil {
				return tr, fmt.Errorf("reveal %q: %w", target.Name, err)
			}

		case game.PromptDone:
			tr.Outcome, _ = r.Outcome()
			tr.Questions = r.State().QuestionsAsked
			tr.Guesses = r.WrongGuesses()
			return tr, nil
		}
	}
	r.Abandon()
	return tr, fmt.Errorf("simulate %s: no outcome after %d steps", target.Name, maxSteps)
}

// SimulateAll plays one round per item, in order.
func SimulateAll(e *game.Engine, items []catalog.Item) ([]Transcript, error) {
	out := make([]Transcript, 0, len(items))
	for _, it := range items {
		tr, err := Simulate(e, it)
		if err != nil {
			return out, err
		}
		out = append(out, tr)
	}
	return out, nil
}

// Summarize computes aggregate stats from transcripts.
func Summarize(transcripts []Transcript) Summary {
	s := Summary{Rounds: len(transcripts)}
	total := 0
	for _, t := range transcripts {
		switch t.Outcome.Result {
		case game.ResultGuessed:
			s.Guessed++
		case game.ResultRevealed:
			s.Revealed++
		case game.ResultUnknown:
			s.Unknown++
		}
		s.WrongGuesses += len(t.Guesses)
		total += t.Questions
		if t.Questions > s.MaxQuestions {
			s.MaxQuestions = t.Questions
		}
	}
	if s.Rounds > 0 {
		s.AvgQuestions = float64(total) / float64(s.Rounds)
	}
	return s
}

// #endregion simulate

// #region sandbox
// Sandbox is a throwaway engine over its own SQLite catalog.
type Sandbox struct {
	Store  *catalog.Store
	Engine *game.Engine
}

// NewSandbox creates dir/replay.db, loads items and builds an engine on it.
// Effectiveness is tracked in memory only.
func NewSandbox(dir string, items []catalog.Item, cfg game.Config, learnCfg learning.Config, logger zerolog.Logger) (*Sandbox, error) {
	store, err := catalog.NewStore(filepath.Join(dir, "replay.db"))
	if err != nil {
		return nil, err
	}
	if err := store.Upsert(items); err != nil {
		store.Close()
		return nil, fmt.Errorf("load sandbox catalog: %w", err)
	}
	tracker, err := effectiveness.NewTracker(nil)
	if err != nil {
		store.Close()
		return nil, err
	}
	e, err := game.NewEngine(game.Deps{
		Catalog:  store,
		Learner:  learning.NewLearner(store, learnCfg),
		Tracker:  tracker,
		RoundLog: store.DB(),
		Logger:   logger,
	}, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &Sandbox{Store: store, Engine: e}, nil
}

// Close releases the sandbox database.
func (s *Sandbox) Close() error {
	return s.Store.Close()
}

// #endregion sandbox
