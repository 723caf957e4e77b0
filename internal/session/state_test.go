package session

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/catalog/catalogtest"
	"github.com/danielpatrickdp/adaptive-guess/internal/question"
	"github.com/danielpatrickdp/adaptive-guess/internal/selection"
)

func TestNewSessionIsActive(t *testing.T) {
	s := New(catalogtest.Items(), DefaultConfig())
	if s.Phase() != PhaseActive {
		t.Fatalf("expected active, got %s", s.Phase())
	}
	if s.ID == "" {
		t.Fatal("expected session id")
	}
	if len(s.Remaining) != len(catalogtest.Items()) {
		t.Fatalf("expected full catalog, got %d", len(s.Remaining))
	}
}

func TestApplyAttributeUsesTextTokens(t *testing.T) {
	s := New(catalogtest.Items(), DefaultConfig())
	turn, err := s.Apply(question.Attribute("legendary"), true)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Filter["legendary"] != catalog.True {
		t.Errorf("expected filter legendary=%q, got %q", catalog.True, s.Filter["legendary"])
	}
	if turn.Before != 16 || turn.After != 3 {
		t.Errorf("expected 16 -> 3, got %d -> %d", turn.Before, turn.After)
	}
	for _, it := range s.Remaining {
		if it.Flag("legendary") != catalog.True {
			t.Errorf("%s is not legendary", it.Name)
		}
	}
	if s.QuestionsAsked != 1 || len(s.History) != 1 {
		t.Errorf("expected counter and history of 1, got %d and %d", s.QuestionsAsked, len(s.History))
	}
}

func TestApplyCategoricalRecordsAskedValue(t *testing.T) {
	s := New(catalogtest.Items(), DefaultConfig())
	if _, err := s.Apply(question.Categorical(question.CategoryType, "Fire"), false); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, it := range s.Remaining {
		if it.HasType("Fire") {
			t.Errorf("%s should have been excluded", it.Name)
		}
	}
	if !s.Asked.Has(question.CategoryType, "Fire") {
		t.Fatal("expected Fire recorded as asked")
	}
	for _, q := range selection.Candidates(s.Input()) {
		if q.Key() == "type:Fire" {
			t.Fatal("Fire must not be offered again")
		}
	}
}

func TestNarrowingIsMonotone(t *testing.T) {
	s := New(catalogtest.Items(), Config{MaxQuestions: 20, GuessThreshold: 1})
	policy := selection.Policy{}
	prev := len(s.Remaining)
	answer := true
	for s.Phase() != PhaseConcluded {
		c, err := s.NextQuestion(policy)
		if err != nil {
			t.Fatalf("NextQuestion: %v", err)
		}
		if !c.Distinguishing() {
			s.MarkExhausted()
			break
		}
		if _, err := s.Apply(c.Question, answer); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(s.Remaining) > prev {
			t.Fatalf("remaining grew from %d to %d", prev, len(s.Remaining))
		}
		prev = len(s.Remaining)
		answer = !answer
	}
}

func TestZeroMatchFilterEmptiesSet(t *testing.T) {
	s := New(catalogtest.Items(), DefaultConfig())
	if _, err := s.Apply(question.Categorical(question.CategoryRegion, "Galar"), true); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(s.Remaining) != 0 {
		t.Fatalf("expected empty set, got %d", len(s.Remaining))
	}
	if _, err := s.NextQuestion(selection.Policy{}); !errors.Is(err, ErrEmptyCandidateSet) {
		t.Fatalf("expected ErrEmptyCandidateSet, got %v", err)
	}
	if s.Phase() != PhaseConcluded {
		t.Fatalf("expected concluded, got %s", s.Phase())
	}
}

func TestBudgetExhaustedConcludesWithGuess(t *testing.T) {
	items := []catalog.Item{
		catalogtest.Item(1, "A", "Fire"),
		catalogtest.Item(2, "B", "Fire"),
		catalogtest.Item(3, "C", "Fire"),
	}
	items[1].Popularity = 2
	s := New(items, Config{MaxQuestions: 20, GuessThreshold: 1})
	// burn the budget on questions that keep all three until the last one
	for i := 0; i < 19; i++ {
		if _, err := s.Apply(question.Attribute("legendary"), false); err != nil {
			t.Fatalf("Apply %d: %v", i, err)
		}
	}
	if !s.RejectGuess(3) {
		t.Fatal("expected to remove item 3")
	}
	if _, err := s.Apply(question.Attribute("fossil"), false); err != nil {
		t.Fatalf("Apply 20: %v", err)
	}
	if s.QuestionsAsked != 20 || len(s.Remaining) != 2 {
		t.Fatalf("expected 20 asked with 2 remaining, got %d and %d", s.QuestionsAsked, len(s.Remaining))
	}
	if s.Phase() != PhaseConcluded {
		t.Fatalf("expected concluded, got %s", s.Phase())
	}
	g, ok := s.Guess()
	if !ok || g.ID != 2 {
		t.Fatalf("expected guess of most popular item 2, got %+v ok=%v", g, ok)
	}
	if _, err := s.Apply(question.Attribute("baby"), false); !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
}

func TestReadyToGuessAndRejectGuess(t *testing.T) {
	s := New(catalogtest.Items(), DefaultConfig())
	if _, err := s.Apply(question.Attribute("legendary"), true); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Phase() != PhaseReadyToGuess {
		t.Fatalf("expected ready_to_guess with 3 left, got %s", s.Phase())
	}
	asked := s.QuestionsAsked
	g, _ := s.Guess()
	if !s.RejectGuess(g.ID) {
		t.Fatal("expected guess to be removed")
	}
	if s.QuestionsAsked != asked {
		t.Fatal("wrong guess must not consume budget")
	}
	if len(s.Remaining) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(s.Remaining))
	}
	if s.Phase() != PhaseReadyToGuess {
		t.Fatalf("wrong guess must not conclude, got %s", s.Phase())
	}
	if s.RejectGuess(g.ID) {
		t.Fatal("rejecting twice should report false")
	}
}

func TestTopCandidatesOrdering(t *testing.T) {
	items := []catalog.Item{
		catalogtest.Item(9, "A", "Fire"),
		catalogtest.Item(3, "B", "Fire"),
		catalogtest.Item(5, "C", "Fire"),
		catalogtest.Item(1, "D", "Fire"),
	}
	items[0].Popularity = 1
	items[2].Popularity = 1
	s := New(items, DefaultConfig())
	top := s.TopCandidates(3)
	want := []int{5, 9, 1}
	for i, id := range want {
		if top[i].ID != id {
			t.Fatalf("position %d: expected %d, got %d", i, id, top[i].ID)
		}
	}
}

func TestReset(t *testing.T) {
	items := catalogtest.Items()
	s := New(items, DefaultConfig())
	id := s.ID
	s.Apply(question.Attribute("legendary"), true)
	s.Apply(question.Categorical(question.CategoryColor, "blue"), true)
	s.MarkExhausted()

	s.Reset(items)
	if s.ID == id {
		t.Error("expected a fresh id")
	}
	if len(s.Filter) != 0 || s.QuestionsAsked != 0 || len(s.History) != 0 || s.Exhausted() {
		t.Errorf("reset left state behind: %+v", s)
	}
	if s.Asked.Has(question.CategoryColor, "blue") {
		t.Error("expected asked values cleared")
	}
	if len(s.Remaining) != len(items) {
		t.Errorf("expected full catalog, got %d", len(s.Remaining))
	}
}

func TestApplyUnknownAttributeLeavesStateIntact(t *testing.T) {
	s := New(catalogtest.Items(), DefaultConfig())
	_, err := s.Apply(question.Attribute("shiny"), true)
	if !errors.Is(err, catalog.ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
	if len(s.Remaining) != 16 || s.QuestionsAsked != 0 || len(s.Filter) != 0 {
		t.Fatal("state changed after rejected question")
	}
}
