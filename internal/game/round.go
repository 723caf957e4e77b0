package game

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/learning"
	"github.com/danielpatrickdp/adaptive-guess/internal/logging"
	"github.com/danielpatrickdp/adaptive-guess/internal/metrics"
	"github.com/danielpatrickdp/adaptive-guess/internal/session"
)

// leadersShown is the remaining size at which question prompts also list the
// leading candidates.
const leadersShown = 5

// Round drives one session. It is not safe for concurrent use.
type Round struct {
	engine  *Engine
	state   *session.State
	logger  zerolog.Logger
	pending Prompt
	wrong   []int
	over    bool
	outcome Outcome
}

// ID returns the round identifier.
func (r *Round) ID() string {
	return r.state.ID
}

// State exposes the session state for inspection.
func (r *Round) State() *session.State {
	return r.state
}

// WrongGuesses lists the ids the player rejected, in order.
func (r *Round) WrongGuesses() []int {
	return append([]int(nil), r.wrong...)
}

// Outcome returns the final outcome once the round is over.
func (r *Round) Outcome() (Outcome, bool) {
	return r.outcome, r.over
}

// #region next
// Next returns what the round needs from the player. It is idempotent until
// the pending prompt is answered.
func (r *Round) Next() Prompt {
	if r.over {
		return r.prompt(PromptDone)
	}
	if r.pending.Kind != "" {
		return r.pending
	}

	cfg := r.engine.cfg
	switch r.state.Phase() {
	case session.PhaseConcluded:
		r.pending = r.finalPrompt()
	case session.PhaseReadyToGuess:
		p := r.prompt(PromptGuess)
		p.Candidates = r.state.TopCandidates(cfg.GuessCandidates)
		p.Guess = p.Candidates[0]
		p.Text = "Is it " + p.Guess.Name + "?"
		r.pending = p
	default:
		start := time.Now()
		choice, err := r.state.NextQuestion(r.engine.policy)
		metrics.ObserveSelection(time.Since(start))
		if err != nil || !choice.Distinguishing() {
			r.logger.Debug().Int("remaining", len(r.state.Remaining)).Msg("no distinguishing question left")
			r.state.MarkExhausted()
			r.pending = r.finalPrompt()
			break
		}
		p := r.prompt(PromptQuestion)
		p.Question = choice.Question
		p.Text = choice.Question.Text()
		p.Score = choice.Score
		if len(r.state.Remaining) <= leadersShown {
			p.Candidates = r.state.TopCandidates(leadersShown)
		}
		r.pending = p
	}
	return r.pending
}

func (r *Round) finalPrompt() Prompt {
	if len(r.state.Remaining) == 0 {
		p := r.prompt(PromptReveal)
		p.Text = "No item matches those answers. What were you thinking of?"
		return p
	}
	p := r.prompt(PromptFinal)
	p.Candidates = r.state.TopCandidates(r.engine.cfg.FinalCandidates)
	p.Guess = p.Candidates[0]
	p.Text = "My best guess is " + p.Guess.Name + ". Am I correct?"
	return p
}

func (r *Round) prompt(kind PromptKind) Prompt {
	return Prompt{
		Kind:      kind,
		Remaining: len(r.state.Remaining),
		Asked:     r.state.QuestionsAsked,
		MaxAsked:  r.state.Config().MaxQuestions,
	}
}

// #endregion next

// #region answer
// Answer applies a yes/no answer to the pending question.
func (r *Round) Answer(yes bool) (session.Turn, error) {
	if r.over {
		return session.Turn{}, ErrRoundOver
	}
	if r.pending.Kind != PromptQuestion {
		return session.Turn{}, ErrNoPendingQuestion
	}
	q := r.pending.Question
	turn, err := r.state.Apply(q, yes)
	if err != nil {
		return session.Turn{}, err
	}
	r.pending = Prompt{}

	metrics.ObserveRemaining(turn.After)
	if r.engine.tracker != nil {
		if err := r.engine.tracker.RecordResult(q, turn.Before, turn.After); err != nil {
			r.logger.Warn().Err(err).Str("question", q.Key()).Msg("effectiveness not recorded")
		}
	}
	r.logger.Debug().
		Str("question", q.Key()).
		Bool("answer", yes).
		Int("before", turn.Before).
		Int("after", turn.After).
		Msg("answer applied")
	return turn, nil
}

// #endregion answer

// #region confirm
// Confirm settles the pending guess. A wrong mid-round guess removes the item
// and the round continues; a wrong final guess asks for the answer.
func (r *Round) Confirm(correct bool) (Outcome, error) {
	if r.over {
		return Outcome{}, ErrRoundOver
	}
	p := r.pending
	if p.Kind != PromptGuess && p.Kind != PromptFinal {
		return Outcome{}, ErrNoPendingGuess
	}

	if correct {
		res, err := r.learn(p.Guess.ID, p.Candidates, true)
		if err != nil {
			return Outcome{}, err
		}
		out := Outcome{Done: true, Result: ResultGuessed, Guess: p.Guess, Actual: p.Guess, Learned: true, Learning: res}
		r.finish(out, p.Candidates)
		return out, nil
	}

	r.wrong = append(r.wrong, p.Guess.ID)
	metrics.WrongGuess()
	r.logger.Debug().Int("guess", p.Guess.ID).Str("kind", string(p.Kind)).Msg("guess rejected")

	if p.Kind == PromptGuess {
		r.state.RejectGuess(p.Guess.ID)
		r.pending = Prompt{}
		return Outcome{Guess: p.Guess}, nil
	}

	rev := r.prompt(PromptReveal)
	rev.Guess = p.Guess
	rev.Candidates = p.Candidates
	rev.Text = "What were you thinking of?"
	r.pending = rev
	return Outcome{Guess: p.Guess}, nil
}

// #endregion confirm

// #region reveal
// Reveal records the player's answer. The learner runs only when the name
// resolves and there were finalists to compare against.
func (r *Round) Reveal(name string) (Outcome, error) {
	if r.over {
		return Outcome{}, ErrRoundOver
	}
	p := r.pending
	if p.Kind != PromptReveal {
		return Outcome{}, ErrNoPendingReveal
	}

	actual, ok, err := r.engine.ResolveName(name)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Done: true, Guess: p.Guess}
	if !ok {
		out.Result = ResultUnknown
		r.logger.Info().Str("name", name).Msg("revealed item not in catalog")
		r.finish(out, p.Candidates)
		return out, nil
	}

	out.Result = ResultRevealed
	out.Actual = actual
	if len(p.Candidates) > 0 {
		res, err := r.learn(actual.ID, p.Candidates, false)
		if err != nil {
			return Outcome{}, err
		}
		out.Learned = true
		out.Learning = res
	}
	r.finish(out, p.Candidates)
	return out, nil
}

// Abandon ends the round without learning.
func (r *Round) Abandon() {
	if r.over {
		return
	}
	r.finish(Outcome{Done: true, Result: ResultAbandoned}, nil)
}

// #endregion reveal

// #region finish
func (r *Round) learn(targetID int, candidates []catalog.Item, wasCorrect bool) (learning.Result, error) {
	res, err := r.engine.learner.Update(targetID, candidates, wasCorrect)
	if err != nil {
		return res, err
	}
	if res.TargetFound {
		metrics.PopularityUpdated("reward", 1)
	}
	metrics.PopularityUpdated("penalty", len(res.Penalized))
	metrics.PopularityUpdated("decay", 1)
	return res, nil
}

func (r *Round) finish(out Outcome, finalists []catalog.Item) {
	r.over = true
	r.outcome = out
	r.pending = Prompt{}
	metrics.RoundFinished(string(out.Result), r.state.QuestionsAsked)

	r.logger.Info().
		Str("result", string(out.Result)).
		Int("guess", out.Guess.ID).
		Int("actual", out.Actual.ID).
		Int("questions", r.state.QuestionsAsked).
		Int("wrong_guesses", len(r.wrong)).
		Bool("learned", out.Learned).
		Msg("round finished")

	if r.engine.roundLog == nil {
		return
	}
	rec := logging.RoundRecord{WrongGuesses: r.wrong}
	for _, t := range r.state.History {
		rec.Turns = append(rec.Turns, logging.TurnRecord{Key: t.Question.Key(), Answer: t.Answer, Before: t.Before, After: t.After})
	}
	for _, it := range finalists {
		rec.Finalists = append(rec.Finalists, it.ID)
	}
	history, err := logging.EncodeRecord(rec)
	if err != nil {
		r.logger.Warn().Err(err).Msg("round history not encoded")
	}
	entry := logging.RoundEntry{
		RoundID:        r.state.ID,
		Outcome:        string(out.Result),
		GuessID:        out.Guess.ID,
		ActualID:       out.Actual.ID,
		QuestionsAsked: r.state.QuestionsAsked,
		WrongGuesses:   len(r.wrong),
		HistoryJSON:    history,
	}
	if err := logging.LogRound(r.engine.roundLog, entry); err != nil {
		r.logger.Warn().Err(err).Msg("round not logged")
	}
}

// #endregion finish
