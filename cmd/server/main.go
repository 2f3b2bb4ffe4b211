package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/mealsplit/internal/config"
	"github.com/mmynk/mealsplit/internal/export"
	"github.com/mmynk/mealsplit/internal/metrics"
	"github.com/mmynk/mealsplit/internal/middleware"
	"github.com/mmynk/mealsplit/internal/service"
	"github.com/mmynk/mealsplit/internal/storage"
	"github.com/mmynk/mealsplit/internal/storage/redis"
	"github.com/mmynk/mealsplit/internal/storage/sqlite"
	"github.com/mmynk/mealsplit/internal/suggest"
	"github.com/mmynk/mealsplit/pkg/api"
	"github.com/mmynk/mealsplit/pkg/logging"
)

const purgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	m := metrics.New()

	cache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	suggester, err := newSuggester(cfg, cache, m)
	if err != nil {
		return err
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)

	mux := http.NewServeMux()

	// Register Connect services
	splitSvc := service.NewSplitService(exporter, m)
	splitPath, splitHandler := api.NewSplitServiceHandler(splitSvc, interceptors)
	mux.Handle(splitPath, splitHandler)

	suggestPath, suggestHandler := api.NewSuggestServiceHandler(service.NewSuggestService(suggester, m), interceptors)
	mux.Handle(suggestPath, suggestHandler)

	mux.Handle("/export/png", splitSvc.DownloadHandler())
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})

	// Serve static files
	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		return fmt.Errorf("failed to resolve static path: %w", err)
	}
	slog.Info("Serving static files", "path", staticDir)
	mux.Handle("/", staticHandler(staticDir))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openCache opens the configured suggestion cache. It returns nil when
// caching is disabled.
func openCache(ctx context.Context, cfg *config.Config) (storage.SuggestionCache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		cache, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("Suggestion cache initialized", "backend", "redis")
		return cache, nil
	case config.CacheSQLite:
		cache, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		go purgeLoop(ctx, cache)
		slog.Info("Suggestion cache initialized", "backend", "sqlite", "database", cfg.DBPath)
		return cache, nil
	default:
		slog.Info("Suggestion cache disabled")
		return nil, nil
	}
}

// purgeLoop periodically deletes expired sqlite entries until ctx ends.
func purgeLoop(ctx context.Context, cache *sqlite.Cache) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cache.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("Failed to purge suggestion cache", "error", err)
				continue
			}
			slog.Debug("Purged suggestion cache", "removed", n)
		}
	}
}

func newSuggester(cfg *config.Config, cache storage.SuggestionCache, m *metrics.Metrics) (*suggest.Suggester, error) {
	prompts, err := suggest.LoadPrompts(cfg.Suggest.PromptsPath)
	if err != nil {
		return nil, err
	}

	var backend suggest.Backend = suggest.Unavailable{}
	if cfg.Gemini.Enabled() {
		gemini, err := suggest.NewGeminiBackend(suggest.GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: cfg.Suggest.Timeout,
		})
		if err != nil {
			return nil, err
		}
		backend = suggest.NewBreakerBackend("gemini", gemini, suggest.DefaultBreakerConfig())
		slog.Info("Suggestions enabled", "model", cfg.Gemini.Model)
	} else {
		slog.Warn("GEMINI_API_KEY not set, suggestions disabled")
	}

	opts := []suggest.Option{suggest.WithCacheObserver(m)}
	if cache != nil {
		opts = append(opts, suggest.WithCache(cache))
	}
	return suggest.New(backend, prompts, suggest.Config{
		DefaultGuess: cfg.Suggest.DefaultGuess,
		Timeout:      cfg.Suggest.Timeout,
		CacheTTL:     cfg.CacheTTL,
	}, opts...), nil
}

func newExporter(ctx context.Context, cfg *config.Config) (*export.Exporter, error) {
	opts := export.Options{
		Currency:   cfg.Export.Currency,
		PixelRatio: cfg.Export.PixelRatio,
	}
	if !cfg.Export.UploadEnabled() {
		return export.NewExporter(opts, nil), nil
	}

	uploader, err := export.NewS3Uploader(ctx, export.S3Config{
		Endpoint:      cfg.Export.S3Endpoint,
		Region:        cfg.Export.S3Region,
		AccessKey:     cfg.Export.S3AccessKey,
		SecretKey:     cfg.Export.S3SecretKey,
		Bucket:        cfg.Export.S3Bucket,
		PublicBaseURL: cfg.Export.S3PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload bucket: %w", err)
	}
	slog.Info("Image uploads enabled", "bucket", cfg.Export.S3Bucket)
	return export.NewExporter(opts, uploader), nil
}

// staticHandler serves the frontend, falling back to index.html for
// unknown paths.
func staticHandler(staticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check if this is an API request (Connect RPC)
		if strings.HasPrefix(r.URL.Path, "/mealsplit.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
