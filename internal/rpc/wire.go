package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/effectiveness"
	"github.com/danielpatrickdp/adaptive-guess/internal/game"
	"github.com/danielpatrickdp/adaptive-guess/internal/session"
)

// #region requests
// RoundRequest names a round.
type RoundRequest struct {
	RoundID string `json:"round_id"`
}

// AnswerRequest answers the pending question.
type AnswerRequest struct {
	RoundID string `json:"round_id"`
	Yes     bool   `json:"yes"`
}

// ConfirmRequest settles the pending guess.
type ConfirmRequest struct {
	RoundID string `json:"round_id"`
	Correct bool   `json:"correct"`
}

// RevealRequest names the item the player was thinking of.
type RevealRequest struct {
	RoundID string `json:"round_id"`
	Name    string `json:"name"`
}

// StatsRequest bounds the stats lists.
type StatsRequest struct {
	TopN int `json:"top_n"`
}

// #endregion requests

// #region responses
// ItemView is the wire form of a catalog item.
type ItemView struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity"`
}

// PromptView is the wire form of game.Prompt.
type PromptView struct {
	Kind       string     `json:"kind"`
	Text       string     `json:"text,omitempty"`
	Question   string     `json:"question,omitempty"`
	Score      float64    `json:"score,omitempty"`
	Guess      *ItemView  `json:"guess,omitempty"`
	Candidates []ItemView `json:"candidates,omitempty"`
	Remaining  int        `json:"remaining"`
	Asked      int        `json:"asked"`
	MaxAsked   int        `json:"max_asked"`
}

// TurnView is the wire form of session.Turn.
type TurnView struct {
	Question string `json:"question"`
	Answer   bool   `json:"answer"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
}

// OutcomeView is the wire form of game.Outcome.
type OutcomeView struct {
	Done    bool      `json:"done"`
	Result  string    `json:"result,omitempty"`
	Guess   *ItemView `json:"guess,omitempty"`
	Actual  *ItemView `json:"actual,omitempty"`
	Learned bool      `json:"learned"`
}

// StartResponse opens a round.
type StartResponse struct {
	RoundID string     `json:"round_id"`
	Prompt  PromptView `json:"prompt"`
}

// AnswerResponse reports an applied answer and the next prompt.
type AnswerResponse struct {
	Turn   TurnView   `json:"turn"`
	Prompt PromptView `json:"prompt"`
}

// OutcomeResponse reports a Confirm or Reveal and the next prompt.
type OutcomeResponse struct {
	Outcome OutcomeView `json:"outcome"`
	Prompt  PromptView  `json:"prompt"`
}

// StatsResponse carries learner and tracker statistics.
type StatsResponse struct {
	Items         int                    `json:"items"`
	MinPopularity float64                `json:"min_popularity"`
	MaxPopularity float64                `json:"max_popularity"`
	AvgPopularity float64                `json:"avg_popularity"`
	Top           []ItemView             `json:"top"`
	Tracked       int                    `json:"tracked"`
	Effective     []effectiveness.Record `json:"effective"`
}

// #endregion responses

// #region convert
func itemView(it catalog.Item) *ItemView {
	if it.ID == 0 {
		return nil
	}
	return &ItemView{ID: it.ID, Name: it.Name, Popularity: it.Popularity}
}

func itemViews(items []catalog.Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, *itemView(it))
	}
	return out
}

func promptView(p game.Prompt) PromptView {
	v := PromptView{
		Kind:      string(p.Kind),
		Text:      p.Text,
		Score:     p.Score,
		Guess:     itemView(p.Guess),
		Remaining: p.Remaining,
		Asked:     p.Asked,
		MaxAsked:  p.MaxAsked,
	}
	if !p.Question.IsZero() {
		v.Question = p.Question.Key()
	}
	if len(p.Candidates) > 0 {
		v.Candidates = itemViews(p.Candidates)
	}
	return v
}

func turnView(t session.Turn) TurnView {
	return TurnView{Question: t.Question.Key(), Answer: t.Answer, Before: t.Before, After: t.After}
}

func outcomeView(o game.Outcome) OutcomeView {
	return OutcomeView{
		Done:    o.Done,
		Result:  string(o.Result),
		Guess:   itemView(o.Guess),
		Actual:  itemView(o.Actual),
		Learned: o.Learned,
	}
}

func statsView(s game.Stats) StatsResponse {
	return StatsResponse{
		Items:         s.Popularity.Total,
		MinPopularity: s.Popularity.Min,
		MaxPopularity: s.Popularity.Max,
		AvgPopularity: s.Popularity.Avg,
		Top:           itemViews(s.Popularity.Top),
		Tracked:       s.Effectiveness.Tracked,
		Effective:     s.Effectiveness.Top,
	}
}

// #endregion convert

// #region struct-codec
// encode turns a wire type into a Struct body.
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return out, nil
}

// decode fills a wire type from a Struct body.
func decode(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// #endregion struct-codec
