package game

import (
	"errors"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/effectiveness"
	"github.com/danielpatrickdp/adaptive-guess/internal/learning"
	"github.com/danielpatrickdp/adaptive-guess/internal/question"
	"github.com/danielpatrickdp/adaptive-guess/internal/session"
)

// #region errors
var (
	ErrNoPendingQuestion = errors.New("no pending question")
	ErrNoPendingGuess    = errors.New("no pending guess")
	ErrNoPendingReveal   = errors.New("no pending reveal")
	ErrRoundOver         = errors.New("round is over")
)

// #endregion errors

// #region config
// Config holds the round flow parameters.
type Config struct {
	MaxQuestions       int  `yaml:"max_questions"`       // question budget (default 20)
	GuessThreshold     int  `yaml:"guess_threshold"`     // remaining size that triggers guessing (default 3)
	GuessCandidates    int  `yaml:"guess_candidates"`    // finalists for a mid-round guess (default 3)
	FinalCandidates    int  `yaml:"final_candidates"`    // finalists for the closing guess (default 10)
	EffectivenessBoost bool `yaml:"effectiveness_boost"` // fold tracker boost into question scores
}

// DefaultConfig returns the standard game parameters.
func DefaultConfig() Config {
	return Config{
		MaxQuestions:    20,
		GuessThreshold:  3,
		GuessCandidates: 3,
		FinalCandidates: 10,
	}
}

func (c Config) session() session.Config {
	return session.Config{MaxQuestions: c.MaxQuestions, GuessThreshold: c.GuessThreshold}
}

// #endregion config

// #region prompt
// PromptKind tells the caller what the round needs next.
type PromptKind string

const (
	PromptQuestion PromptKind = "question" // answer a yes/no question
	PromptGuess    PromptKind = "guess"    // confirm a mid-round guess
	PromptFinal    PromptKind = "final"    // confirm the closing guess
	PromptReveal   PromptKind = "reveal"   // name the item
	PromptDone     PromptKind = "done"
)

// Prompt is the next step of a round.
type Prompt struct {
	Kind       PromptKind
	Question   question.Question
	Text       string
	Score      float64
	Guess      catalog.Item
	Candidates []catalog.Item // finalists for guesses, leaders for questions near the end
	Remaining  int
	Asked      int
	MaxAsked   int
}

// #endregion prompt

// #region outcome
// Result names how a round ended.
type Result string

const (
	ResultGuessed   Result = "guessed"   // a guess was confirmed
	ResultRevealed  Result = "revealed"  // the player named a catalog item
	ResultUnknown   Result = "unknown"   // the named item is not in the catalog
	ResultAbandoned Result = "abandoned" // the round was dropped before it ended
)

// Outcome reports the effect of Confirm or Reveal.
type Outcome struct {
	Done     bool
	Result   Result
	Guess    catalog.Item
	Actual   catalog.Item
	Learned  bool
	Learning learning.Result
}

// #endregion outcome

// #region stats
// Stats combines learner and tracker statistics.
type Stats struct {
	Popularity    catalog.PopularityStats
	Effectiveness effectiveness.Stats
}

// #endregion stats
