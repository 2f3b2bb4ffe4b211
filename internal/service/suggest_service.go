package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/mealsplit/internal/metrics"
	"github.com/mmynk/mealsplit/internal/suggest"
	"github.com/mmynk/mealsplit/pkg/api"
)

// Suggester produces item name completions.
type Suggester interface {
	Guess(ctx context.Context, partial string) (string, error)
	Suggest(ctx context.Context, partial string) ([]string, error)
}

// SuggestService implements the Connect SuggestService. Suggestions are
// best-effort: failures are reported as unavailable, never as RPC errors.
type SuggestService struct {
	suggester Suggester
	latest    *suggest.Latest
	metrics   *metrics.Metrics
}

var _ api.SuggestServiceHandler = (*SuggestService)(nil)

// NewSuggestService creates a SuggestService.
func NewSuggestService(suggester Suggester, m *metrics.Metrics) *SuggestService {
	return &SuggestService{
		suggester: suggester,
		latest:    suggest.NewLatest(),
		metrics:   m,
	}
}

// GuessItem returns the single most likely completion.
func (s *SuggestService) GuessItem(ctx context.Context, req *connect.Request[api.SuggestRequest]) (*connect.Response[api.GuessResponse], error) {
	ctx, ticket := s.latest.Begin(ctx, fieldKey(suggest.KindGuess, req.Msg))
	defer ticket.Done()

	guess, err := s.suggester.Guess(ctx, req.Msg.Partial)
	if !ticket.Current() {
		s.metrics.Suggestion(suggest.KindGuess, "stale")
		return connect.NewResponse(&api.GuessResponse{Stale: true}), nil
	}
	if err != nil {
		s.record(suggest.KindGuess, req.Msg.Partial, err)
		return connect.NewResponse(&api.GuessResponse{}), nil
	}
	s.metrics.Suggestion(suggest.KindGuess, "ok")
	return connect.NewResponse(&api.GuessResponse{Guess: guess, Available: true}), nil
}

// SuggestItems returns a short list of completions.
func (s *SuggestService) SuggestItems(ctx context.Context, req *connect.Request[api.SuggestRequest]) (*connect.Response[api.SuggestResponse], error) {
	ctx, ticket := s.latest.Begin(ctx, fieldKey(suggest.KindSuggest, req.Msg))
	defer ticket.Done()

	suggestions, err := s.suggester.Suggest(ctx, req.Msg.Partial)
	if !ticket.Current() {
		s.metrics.Suggestion(suggest.KindSuggest, "stale")
		return connect.NewResponse(&api.SuggestResponse{Suggestions: []string{}, Stale: true}), nil
	}
	if err != nil {
		s.record(suggest.KindSuggest, req.Msg.Partial, err)
		return connect.NewResponse(&api.SuggestResponse{Suggestions: []string{}}), nil
	}
	s.metrics.Suggestion(suggest.KindSuggest, "ok")
	return connect.NewResponse(&api.SuggestResponse{Suggestions: suggestions, Available: true}), nil
}

func (s *SuggestService) record(kind, partial string, err error) {
	outcome := outcomeOf(err)
	s.metrics.Suggestion(kind, outcome)
	slog.Warn("Suggestion failed",
		"kind", kind,
		"partial", partial,
		"outcome", outcome,
		"error", err,
	)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, suggest.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, suggest.ErrMalformed):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// fieldKey scopes last-request-wins to one field of one client. A guess and
// a suggestion for the same field do not cancel each other.
func fieldKey(kind string, req *api.SuggestRequest) string {
	if req.ClientID == "" || req.FieldID == "" {
		return ""
	}
	return strings.Join([]string{kind, req.ClientID, req.FieldID}, "\x00")
}
