// Package api provides the Roman numeral REST API server.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/FocuswithJustin/romanconv/internal/cache"
	"github.com/FocuswithJustin/romanconv/internal/logging"
)

// Server serves conversions over HTTP.
type Server struct {
	cfg     Config
	memo    *cache.Memo[string, conversion]
	started time.Time
}

// New creates a Server for cfg.
func New(cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		started: time.Now(),
	}
	if cfg.CacheTTL > 0 {
		s.memo = cache.New[string, conversion](cfg.CacheTTL, cfg.CacheSize)
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()
	handler = securityHeaders(handler)
	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	return logging.CombinedMiddleware(handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /table", s.handleTable)
	mux.HandleFunc("GET /encode/{number}", s.handleEncode)
	mux.HandleFunc("GET /decode/{numeral}", s.handleDecode)
	mux.HandleFunc("GET /validate/{numeral}", s.handleValidate)
	mux.HandleFunc("GET /roman_number/{number}", s.handleRomanNumber)
	mux.HandleFunc("POST /batch", s.handleBatch)

	return mux
}

// Start runs the server until ctx is cancelled, then shuts it down.
func Start(ctx context.Context, cfg Config) error {
	s := New(cfg)

	httpServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        s.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
		ErrorLog:       slog.NewLogLogger(logging.GetLogger().Handler(), slog.LevelError),
	}

	logging.ServerStartup("roman_api", "http", cfg.Port,
		"cache_ttl", cfg.CacheTTL.String(),
		"cache_size", cfg.CacheSize)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logging.Error("server_failed", "port", cfg.Port, "error", err.Error())
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("server_shutdown_failed", "error", err.Error())
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logging.Info("server_stopped")
	return nil
}
