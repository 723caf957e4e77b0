package replay

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/catalog/catalogtest"
	"github.com/danielpatrickdp/adaptive-guess/internal/game"
	"github.com/danielpatrickdp/adaptive-guess/internal/learning"
)

// newSandbox builds a sandbox in a temp dir and closes it with the test.
func newSandbox(t *testing.T, items []catalog.Item, cfg game.Config) *Sandbox {
	t.Helper()
	sb, err := NewSandbox(t.TempDir(), items, cfg, learning.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	t.Cleanup(func() { sb.Close() })
	return sb
}

func TestSimulateAll_GuessesEveryItem(t *testing.T) {
	items := catalogtest.Items()
	sb := newSandbox(t, items, game.DefaultConfig())

	transcripts, err := SimulateAll(sb.Engine, items)
	if err != nil {
		t.Fatalf("SimulateAll: %v", err)
	}
	if len(transcripts) != len(items) {
		t.Fatalf("expected %d transcripts, got %d", len(items), len(transcripts))
	}
	for _, tr := range transcripts {
		if tr.Outcome.Result != game.ResultGuessed {
			t.Errorf("%s: expected guessed, got %s", tr.Target.Name, tr.Outcome.Result)
		}
		if tr.Outcome.Actual.ID != tr.Target.ID {
			t.Errorf("%s: confirmed %d", tr.Target.Name, tr.Outcome.Actual.ID)
		}
		if tr.Questions > game.DefaultConfig().MaxQuestions {
			t.Errorf("%s: %d questions exceeds budget", tr.Target.Name, tr.Questions)
		}
	}

	s := Summarize(transcripts)
	if s.Rounds != len(items) || s.Guessed != len(items) {
		t.Errorf("summary: %+v", s)
	}
	if s.AvgQuestions <= 0 || float64(s.MaxQuestions) < s.AvgQuestions {
		t.Errorf("question stats inconsistent: avg %.2f max %d", s.AvgQuestions, s.MaxQuestions)
	}
}

func TestSimulate_StepsEndInConfirmedGuess(t *testing.T) {
	items := catalogtest.Items()
	sb := newSandbox(t, items, game.DefaultConfig())

	target := items[0]
	tr, err := Simulate(sb.Engine, target)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(tr.Steps) == 0 {
		t.Fatal("expected steps")
	}
	last := tr.Steps[len(tr.Steps)-1]
	if last.Kind != game.PromptGuess && last.Kind != game.PromptFinal {
		t.Fatalf("last step kind %s, want a guess", last.Kind)
	}
	if !last.Answer || last.GuessID != target.ID {
		t.Errorf("last step %+v, want confirmed guess of %d", last, target.ID)
	}

	questions := 0
	for _, st := range tr.Steps {
		if st.Kind == game.PromptQuestion {
			questions++
			if st.Key == "" {
				t.Error("question step without key")
			}
		}
	}
	if questions != tr.Questions {
		t.Errorf("counted %d question steps, transcript says %d", questions, tr.Questions)
	}
}

func TestSimulate_LearnsFromGuessedRounds(t *testing.T) {
	items := catalogtest.Items()
	sb := newSandbox(t, items, game.DefaultConfig())

	target := items[3]
	if _, err := Simulate(sb.Engine, target); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	pop, ok, err := sb.Store.Popularity(target.ID)
	if err != nil || !ok {
		t.Fatalf("Popularity: ok=%v err=%v", ok, err)
	}
	if pop <= 0 {
		t.Errorf("expected positive popularity after confirmed guess, got %v", pop)
	}
}

func TestSummarize_Counts(t *testing.T) {
	transcripts := []Transcript{
		{Questions: 4, Outcome: game.Outcome{Result: game.ResultGuessed}},
		{Questions: 20, Guesses: []int{4, 7}, Outcome: game.Outcome{Result: game.ResultRevealed}},
		{Questions: 6, Guesses: []int{1}, Outcome: game.Outcome{Result: game.ResultUnknown}},
	}
	s := Summarize(transcripts)
	if s.Rounds != 3 || s.Guessed != 1 || s.Revealed != 1 || s.Unknown != 1 {
		t.Errorf("counts: %+v", s)
	}
	if s.WrongGuesses != 3 {
		t.Errorf("WrongGuesses = %d, want 3", s.WrongGuesses)
	}
	if s.AvgQuestions != 10 || s.MaxQuestions != 20 {
		t.Errorf("questions: avg %v max %d", s.AvgQuestions, s.MaxQuestions)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Rounds != 0 || s.AvgQuestions != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
