package rpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-guess/internal/game"
	"github.com/danielpatrickdp/adaptive-guess/internal/session"
)

// defaultTopN bounds Stats lists when the request leaves top_n unset.
const defaultTopN = 5

// #region server
// Server serves rounds of one engine. Finished rounds are dropped from the
// registry once their outcome has been returned; rounds a client walks away
// from are dropped by Abandon or EvictIdle.
type Server struct {
	engine *game.Engine
	logger zerolog.Logger
	now    func() time.Time

	mu     sync.Mutex
	rounds map[string]*liveRound
}

type liveRound struct {
	mu       sync.Mutex
	round    *game.Round
	lastSeen time.Time
	closed   bool
}

// NewServer creates a Server over engine.
func NewServer(engine *game.Engine, logger zerolog.Logger) *Server {
	return &Server{
		engine: engine,
		logger: logger.With().Str("component", "rpc").Logger(),
		now:    time.Now,
		rounds: make(map[string]*liveRound),
	}
}

// Register adds the guess service and a health service to gs.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&ServiceDesc, s)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
}

// Active returns the number of rounds in progress.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rounds)
}

// EvictIdle abandons every round untouched for longer than maxIdle and
// returns how many were dropped. Rounds with a call in flight are skipped.
func (s *Server) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, lr := range s.rounds {
		if !lr.mu.TryLock() {
			continue
		}
		if lr.lastSeen.Before(cutoff) {
			lr.round.Abandon()
			lr.closed = true
			delete(s.rounds, id)
			evicted++
		}
		lr.mu.Unlock()
	}
	if evicted > 0 {
		s.logger.Info().Int("evicted", evicted).Dur("max_idle", maxIdle).Msg("idle rounds abandoned")
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (s *Server) RunEviction(ctx context.Context, maxIdle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(maxIdle)
		}
	}
}

// #endregion server

// #region handlers
// Start opens a round and returns its first prompt.
func (s *Server) Start(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	r, err := s.engine.NewRound()
	if err != nil {
		return nil, statusFor(err)
	}
	s.mu.Lock()
	s.rounds[r.ID()] = &liveRound{round: r, lastSeen: s.now()}
	s.mu.Unlock()
	s.logger.Debug().Str("round", r.ID()).Msg("round opened")
	return encode(StartResponse{RoundID: r.ID(), Prompt: promptView(r.Next())})
}

// Next returns the pending prompt of a round.
func (s *Server) Next(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RoundRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	var p game.Prompt
	err := s.withRound(req.RoundID, func(r *game.Round) error {
		p = r.Next()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return encode(promptView(p))
}

// Answer answers the pending question.
func (s *Server) Answer(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req AnswerRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	var resp AnswerResponse
	err := s.withRound(req.RoundID, func(r *game.Round) error {
		turn, err := r.Answer(req.Yes)
		if err != nil {
			return err
		}
		resp = AnswerResponse{Turn: turnView(turn), Prompt: promptView(r.Next())}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return encode(resp)
}

// Confirm settles the pending guess.
func (s *Server) Confirm(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ConfirmRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return s.settle(req.RoundID, func(r *game.Round) (game.Outcome, error) {
		return r.Confirm(req.Correct)
	})
}

// Reveal names the item after a missed final guess.
func (s *Server) Reveal(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RevealRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return s.settle(req.RoundID, func(r *game.Round) (game.Outcome, error) {
		return r.Reveal(req.Name)
	})
}

// Abandon ends a round without learning and drops it from the registry.
func (s *Server) Abandon(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RoundRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return s.settle(req.RoundID, func(r *game.Round) (game.Outcome, error) {
		r.Abandon()
		out, _ := r.Outcome()
		return out, nil
	})
}

// Stats reports popularity and effectiveness statistics.
func (s *Server) Stats(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req StatsRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.TopN <= 0 {
		req.TopN = defaultTopN
	}
	st, err := s.engine.Stats(req.TopN)
	if err != nil {
		return nil, statusFor(err)
	}
	return encode(statsView(st))
}

// #endregion handlers

// #region helpers
func (s *Server) settle(id string, fn func(*game.Round) (game.Outcome, error)) (*structpb.Struct, error) {
	var resp OutcomeResponse
	err := s.withRound(id, func(r *game.Round) error {
		out, err := fn(r)
		if err != nil {
			return err
		}
		resp = OutcomeResponse{Outcome: outcomeView(out), Prompt: promptView(r.Next())}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.Outcome.Done {
		s.mu.Lock()
		if lr, ok := s.rounds[id]; ok {
			lr.mu.Lock()
			lr.closed = true
			lr.mu.Unlock()
			delete(s.rounds, id)
		}
		s.mu.Unlock()
		s.logger.Debug().Str("round", id).Str("result", resp.Outcome.Result).Msg("round closed")
	}
	return encode(resp)
}

func (s *Server) withRound(id string, fn func(*game.Round) error) error {
	if id == "" {
		return status.Error(codes.InvalidArgument, "round_id is required")
	}
	s.mu.Lock()
	lr, ok := s.rounds[id]
	s.mu.Unlock()
	if !ok {
		return status.Errorf(codes.NotFound, "round %s not found", id)
	}
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.closed {
		return status.Errorf(codes.NotFound, "round %s not found", id)
	}
	lr.lastSeen = s.now()
	if err := fn(lr.round); err != nil {
		return statusFor(err)
	}
	return nil
}

func statusFor(err error) error {
	switch {
	case errors.Is(err, game.ErrNoPendingQuestion),
		errors.Is(err, game.ErrNoPendingGuess),
		errors.Is(err, game.ErrNoPendingReveal),
		errors.Is(err, game.ErrRoundOver),
		errors.Is(err, session.ErrBudgetExhausted):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrEmptyCandidateSet):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion helpers
