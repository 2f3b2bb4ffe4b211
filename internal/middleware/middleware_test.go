package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/mealsplit/pkg/api"
)

type recorded struct {
	procedure string
	code      string
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recorded
}

func (f *fakeRecorder) RPC(procedure, code string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, recorded{procedure: procedure, code: code})
}

type stubSuggest struct {
	err error
}

func (s stubSuggest) GuessItem(context.Context, *connect.Request[api.SuggestRequest]) (*connect.Response[api.GuessResponse], error) {
	if s.err != nil {
		return nil, s.err
	}
	return connect.NewResponse(&api.GuessResponse{Guess: "Nachos", Available: true}), nil
}

func (s stubSuggest) SuggestItems(context.Context, *connect.Request[api.SuggestRequest]) (*connect.Response[api.SuggestResponse], error) {
	return connect.NewResponse(&api.SuggestResponse{}), nil
}

func TestInterceptors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "success", wantCode: "ok"},
		{name: "connect error", err: connect.NewError(connect.CodeInvalidArgument, errors.New("bad")), wantCode: "invalid_argument"},
		{name: "plain error", err: errors.New("boom"), wantCode: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			path, handler := api.NewSuggestServiceHandler(stubSuggest{err: tt.err},
				connect.WithInterceptors(LoggingInterceptor(), MetricsInterceptor(rec)))
			mux := http.NewServeMux()
			mux.Handle(path, handler)
			server := httptest.NewServer(mux)
			defer server.Close()

			client := api.NewSuggestServiceClient(http.DefaultClient, server.URL)
			_, err := client.GuessItem(context.Background(), connect.NewRequest(&api.SuggestRequest{Partial: "na"}))
			if (err != nil) != (tt.err != nil) {
				t.Fatalf("unexpected error state: %v", err)
			}

			if len(rec.seen) != 1 {
				t.Fatalf("expected 1 observation, got %d", len(rec.seen))
			}
			if rec.seen[0].procedure != api.SuggestServiceGuessItemProcedure {
				t.Errorf("procedure: expected %s, got %s", api.SuggestServiceGuessItemProcedure, rec.seen[0].procedure)
			}
			if rec.seen[0].code != tt.wantCode {
				t.Errorf("code: expected %s, got %s", tt.wantCode, rec.seen[0].code)
			}
		})
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingInterceptor_Summaries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "success logs request and response summaries",
			want: []string{"level=INFO", `msg="RPC ok"`, "partial_len=2", "tracked=true", "available=true"},
		},
		{
			name: "client error logs at warn",
			err:  connect.NewError(connect.CodeInvalidArgument, errors.New("bad bill")),
			want: []string{"level=WARN", "code=invalid_argument", `error="bad bill"`, "partial_len=2"},
		},
		{
			name: "server fault logs at error",
			err:  connect.NewError(connect.CodeInternal, errors.New("boom")),
			want: []string{"level=ERROR", "code=internal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			path, handler := api.NewSuggestServiceHandler(stubSuggest{err: tt.err},
				connect.WithInterceptors(LoggingInterceptor()))
			mux := http.NewServeMux()
			mux.Handle(path, handler)
			server := httptest.NewServer(mux)
			defer server.Close()

			client := api.NewSuggestServiceClient(http.DefaultClient, server.URL)
			_, _ = client.GuessItem(context.Background(), connect.NewRequest(&api.SuggestRequest{
				Partial: "na", ClientID: "tab-a", FieldID: "item-name",
			}))

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("log output missing %q:\n%s", want, out)
				}
			}
		})
	}
}
