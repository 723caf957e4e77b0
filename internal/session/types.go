package session

import (
	"errors"

	"github.com/danielpatrickdp/adaptive-guess/internal/question"
)

// #region errors
var (
	// ErrEmptyCandidateSet means no item is consistent with the answers given.
	ErrEmptyCandidateSet = errors.New("empty candidate set")
	// ErrBudgetExhausted means the question budget is already spent.
	ErrBudgetExhausted = errors.New("question budget exhausted")
)

// #endregion errors

// #region phase
// Phase is the coarse state of a session.
type Phase string

const (
	PhaseActive       Phase = "active"
	PhaseReadyToGuess Phase = "ready_to_guess"
	PhaseConcluded    Phase = "concluded"
)

// #endregion phase

// #region config
// Config bounds a session.
type Config struct {
	MaxQuestions   int
	GuessThreshold int
}

// DefaultConfig returns the standard twenty-question budget.
func DefaultConfig() Config {
	return Config{
		MaxQuestions:   20,
		GuessThreshold: 3,
	}
}

// #endregion config

// #region turn
// Turn records one answered question and the set sizes around it.
type Turn struct {
	Question question.Question `json:"question"`
	Answer   bool              `json:"answer"`
	Before   int               `json:"before"`
	After    int               `json:"after"`
}

// #endregion turn
