package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/mealsplit/internal/storage"
)

const (
	KindGuess   = "guess"
	KindSuggest = "suggest"

	// MinSuggestions and MaxSuggestions bound a valid suggestion list.
	MinSuggestions = 5
	MaxSuggestions = 7
)

// CacheObserver is told about every cache lookup.
type CacheObserver interface {
	CacheLookup(kind string, hit bool)
}

// Config configures a Suggester.
type Config struct {
	// DefaultGuess is returned for empty input when the backend cannot answer.
	DefaultGuess string
	// Timeout bounds a single backend call. Zero means no extra bound.
	Timeout time.Duration
	// CacheTTL is how long cached responses are kept.
	CacheTTL time.Duration
}

// Suggester implements the single-guess and multi-suggest helpers.
type Suggester struct {
	backend  Backend
	prompts  *Prompts
	cache    storage.SuggestionCache
	observer CacheObserver
	cfg      Config
}

// Option configures a Suggester.
type Option func(*Suggester)

// WithCache enables response caching.
func WithCache(cache storage.SuggestionCache) Option {
	return func(s *Suggester) {
		s.cache = cache
	}
}

// WithCacheObserver reports cache hits and misses to o.
func WithCacheObserver(o CacheObserver) Option {
	return func(s *Suggester) {
		s.observer = o
	}
}

// New creates a Suggester.
func New(backend Backend, prompts *Prompts, cfg Config, opts ...Option) *Suggester {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	s := &Suggester{backend: backend, prompts: prompts, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Guess returns the single most likely item name for partial.
func (s *Suggester) Guess(ctx context.Context, partial string) (string, error) {
	guess, err := s.guess(ctx, partial)
	if err != nil && normalize(partial) == "" && s.cfg.DefaultGuess != "" && ctx.Err() == nil {
		slog.Debug("Falling back to default guess", "error", err)
		return s.cfg.DefaultGuess, nil
	}
	return guess, err
}

func (s *Suggester) guess(ctx context.Context, partial string) (string, error) {
	key := cacheKey(KindGuess, partial)
	if entries, ok := s.lookup(ctx, KindGuess, key); ok && len(entries) == 1 {
		return entries[0], nil
	}

	raw, err := s.generate(ctx, &s.prompts.Guess, partial, guessSchema)
	if err != nil {
		return "", err
	}

	var out struct {
		Guess string `json:"guess"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	guess := strings.TrimSpace(out.Guess)
	if guess == "" {
		return "", fmt.Errorf("%w: empty guess", ErrMalformed)
	}

	s.store(ctx, key, []string{guess})
	return guess, nil
}

// Suggest returns between MinSuggestions and MaxSuggestions item names
// relevant to partial, best first.
func (s *Suggester) Suggest(ctx context.Context, partial string) ([]string, error) {
	key := cacheKey(KindSuggest, partial)
	if entries, ok := s.lookup(ctx, KindSuggest, key); ok && len(entries) >= MinSuggestions {
		return entries, nil
	}

	raw, err := s.generate(ctx, &s.prompts.Suggest, partial, suggestSchema)
	if err != nil {
		return nil, err
	}

	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	suggestions := cleanSuggestions(out.Suggestions)
	if len(suggestions) < MinSuggestions {
		return nil, fmt.Errorf("%w: got %d suggestions, want at least %d", ErrMalformed, len(suggestions), MinSuggestions)
	}

	s.store(ctx, key, suggestions)
	return suggestions, nil
}

func (s *Suggester) generate(ctx context.Context, prompt *Prompt, partial string, schema map[string]any) (string, error) {
	text, err := prompt.Render(partial)
	if err != nil {
		return "", err
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return s.backend.Generate(ctx, Request{Prompt: text, Schema: schema})
}

func (s *Suggester) lookup(ctx context.Context, kind, key string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	entries, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Suggestion cache lookup failed", "key", key, "error", err)
		ok = false
	}
	if s.observer != nil {
		s.observer.CacheLookup(kind, ok)
	}
	return entries, ok
}

func (s *Suggester) store(ctx context.Context, key string, entries []string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, entries, s.cfg.CacheTTL); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("Suggestion cache store failed", "key", key, "error", err)
	}
}

// cleanSuggestions trims entries, drops blanks and case-insensitive
// duplicates, and keeps at most MaxSuggestions.
func cleanSuggestions(in []string) []string {
	out := make([]string, 0, MaxSuggestions)
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

func normalize(partial string) string {
	return strings.ToLower(strings.Join(strings.Fields(partial), " "))
}

func cacheKey(kind, partial string) string {
	return kind + ":" + normalize(partial)
}
