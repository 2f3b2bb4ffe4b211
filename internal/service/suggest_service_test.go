package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/mealsplit/internal/metrics"
	"github.com/mmynk/mealsplit/internal/suggest"
	"github.com/mmynk/mealsplit/pkg/api"
)

type fakeSuggester struct {
	guess       string
	suggestions []string
	err         error
	// block, when set, makes calls for "slow" wait until release is closed
	// or their context ends.
	block   bool
	started chan struct{}
	release chan struct{}
}

func (f *fakeSuggester) wait(ctx context.Context, partial string) error {
	if !f.block || partial != "slow" {
		return nil
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSuggester) Guess(ctx context.Context, partial string) (string, error) {
	if err := f.wait(ctx, partial); err != nil {
		return "", err
	}
	return f.guess, f.err
}

func (f *fakeSuggester) Suggest(ctx context.Context, partial string) ([]string, error) {
	if err := f.wait(ctx, partial); err != nil {
		return nil, err
	}
	return f.suggestions, f.err
}

func setupSuggestServer(t *testing.T, s Suggester) api.SuggestServiceClient {
	t.Helper()

	path, handler := api.NewSuggestServiceHandler(NewSuggestService(s, metrics.New()))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return api.NewSuggestServiceClient(http.DefaultClient, server.URL)
}

func TestGuessItem(t *testing.T) {
	tests := []struct {
		name          string
		suggester     *fakeSuggester
		wantGuess     string
		wantAvailable bool
	}{
		{
			name:          "returns guess",
			suggester:     &fakeSuggester{guess: "Chicken Wings"},
			wantGuess:     "Chicken Wings",
			wantAvailable: true,
		},
		{
			name:      "unavailable backend",
			suggester: &fakeSuggester{err: fmt.Errorf("%w: boom", suggest.ErrUnavailable)},
		},
		{
			name:      "malformed backend output",
			suggester: &fakeSuggester{err: fmt.Errorf("%w: not json", suggest.ErrMalformed)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupSuggestServer(t, tt.suggester)

			resp, err := client.GuessItem(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "chick"}))
			if err != nil {
				t.Fatalf("GuessItem should not fail: %v", err)
			}
			if resp.Msg.Guess != tt.wantGuess {
				t.Errorf("guess: expected %q, got %q", tt.wantGuess, resp.Msg.Guess)
			}
			if resp.Msg.Available != tt.wantAvailable {
				t.Errorf("available: expected %v, got %v", tt.wantAvailable, resp.Msg.Available)
			}
		})
	}
}

func TestSuggestItems(t *testing.T) {
	want := []string{"Budweiser", "Heineken", "Corona", "Guinness", "IPA"}
	client := setupSuggestServer(t, &fakeSuggester{suggestions: want})

	resp, err := client.SuggestItems(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "beer"}))
	if err != nil {
		t.Fatalf("SuggestItems failed: %v", err)
	}
	if !resp.Msg.Available {
		t.Error("expected suggestions to be available")
	}
	if len(resp.Msg.Suggestions) != len(want) {
		t.Fatalf("expected %d suggestions, got %v", len(want), resp.Msg.Suggestions)
	}
	for i := range want {
		if resp.Msg.Suggestions[i] != want[i] {
			t.Errorf("suggestion %d: expected %q, got %q", i, want[i], resp.Msg.Suggestions[i])
		}
	}
}

func TestSuggestItems_Unavailable(t *testing.T) {
	client := setupSuggestServer(t, &fakeSuggester{err: suggest.ErrUnavailable})

	resp, err := client.SuggestItems(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "beer"}))
	if err != nil {
		t.Fatalf("SuggestItems should not fail: %v", err)
	}
	if resp.Msg.Available {
		t.Error("expected suggestions to be unavailable")
	}
	if len(resp.Msg.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", resp.Msg.Suggestions)
	}
}

func TestSuggestItems_LastRequestWins(t *testing.T) {
	svc := NewSuggestService(&fakeSuggester{
		suggestions: []string{"a", "b", "c", "d", "e"},
		block:       true,
	}, metrics.New())

	done := make(chan *api.SuggestResponse, 1)
	started := make(chan struct{})
	go func() {
		close(started)
		resp, err := svc.SuggestItems(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "slow", ClientID: "tab-1", FieldID: "item-name"}))
		if err != nil {
			t.Errorf("first SuggestItems failed: %v", err)
			done <- nil
			return
		}
		done <- resp.Msg
	}()
	<-started

	// Keep issuing the newer request until it has superseded the slow one.
	for {
		resp, err := svc.SuggestItems(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "fast", ClientID: "tab-1", FieldID: "item-name"}))
		if err != nil {
			t.Fatalf("second SuggestItems failed: %v", err)
		}
		// The slow request may begin after this one and supersede it.
		if !resp.Msg.Stale && !resp.Msg.Available {
			t.Fatal("newer request should be answered")
		}
		select {
		case first := <-done:
			if first == nil {
				return
			}
			if !first.Stale {
				t.Errorf("superseded request should be stale, got %+v", first)
			}
			if len(first.Suggestions) != 0 {
				t.Errorf("stale response should carry no suggestions, got %v", first.Suggestions)
			}
			return
		default:
		}
	}
}

func TestSuggestItems_ClientsDoNotSupersedeEachOther(t *testing.T) {
	fake := &fakeSuggester{
		suggestions: []string{"a", "b", "c", "d", "e"},
		block:       true,
		started:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	svc := NewSuggestService(fake, metrics.New())

	done := make(chan *api.SuggestResponse, 1)
	go func() {
		resp, err := svc.SuggestItems(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "slow", ClientID: "tab-a", FieldID: "item-name"}))
		if err != nil {
			t.Errorf("client A SuggestItems failed: %v", err)
			done <- nil
			return
		}
		done <- resp.Msg
	}()
	<-fake.started

	resp, err := svc.SuggestItems(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "fast", ClientID: "tab-b", FieldID: "item-name"}))
	if err != nil {
		t.Fatalf("client B SuggestItems failed: %v", err)
	}
	if resp.Msg.Stale || !resp.Msg.Available {
		t.Errorf("client B: expected an answer, got %+v", resp.Msg)
	}

	close(fake.release)
	first := <-done
	if first == nil {
		return
	}
	if first.Stale || !first.Available {
		t.Errorf("client A must not be superseded by client B, got %+v", first)
	}
}

func TestFieldKey(t *testing.T) {
	tests := []struct {
		name string
		req  api.SuggestRequest
		want string
	}{
		{name: "untracked without client", req: api.SuggestRequest{FieldID: "item-name"}, want: ""},
		{name: "untracked without field", req: api.SuggestRequest{ClientID: "tab-a"}, want: ""},
		{name: "scoped to client and field", req: api.SuggestRequest{ClientID: "tab-a", FieldID: "item-name"}, want: "suggest\x00tab-a\x00item-name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldKey(suggest.KindSuggest, &tt.req); got != tt.want {
				t.Errorf("fieldKey = %q, want %q", got, tt.want)
			}
		})
	}

	a := fieldKey(suggest.KindSuggest, &api.SuggestRequest{ClientID: "tab-a", FieldID: "item-name"})
	b := fieldKey(suggest.KindSuggest, &api.SuggestRequest{ClientID: "tab-b", FieldID: "item-name"})
	if a == b {
		t.Errorf("different clients share key %q", a)
	}
}

func TestGuessItem_UnconfiguredBackendFallsBack(t *testing.T) {
	prompts, err := suggest.LoadPrompts("")
	if err != nil {
		t.Fatalf("LoadPrompts failed: %v", err)
	}
	s := suggest.New(suggest.Unavailable{}, prompts, suggest.Config{DefaultGuess: "French Fries"})
	client := setupSuggestServer(t, s)

	resp, err := client.GuessItem(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: ""}))
	if err != nil {
		t.Fatalf("GuessItem failed: %v", err)
	}
	if resp.Msg.Guess != "French Fries" || !resp.Msg.Available {
		t.Errorf("expected default guess, got %+v", resp.Msg)
	}

	resp, err = client.GuessItem(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "chick"}))
	if err != nil {
		t.Fatalf("GuessItem failed: %v", err)
	}
	if resp.Msg.Available {
		t.Errorf("expected unavailable for non-empty input, got %+v", resp.Msg)
	}
}
