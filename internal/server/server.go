// Package server exposes the streamer's HTTP surface: the subscriber
// WebSocket endpoint, broker pass-through APIs, and the health check.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/stockstream/internal/broker"
	"github.com/rickgao/stockstream/internal/hub"
)

// AssetSource serves broker lookups for the pass-through endpoints.
type AssetSource interface {
	GetAsset(ctx context.Context, symbol string) (broker.Asset, error)
	GetIntradayBars(ctx context.Context, symbol string, start, end time.Time) ([]broker.Bar, error)
}

// FeedStatus reports whether the upstream feed is connected.
type FeedStatus interface {
	IsConnected() bool
}

// SymbolCounter reports how many symbols currently hold state.
type SymbolCounter interface {
	TrackedSymbols() int
}

// Config configures the HTTP server.
type Config struct {
	Addr string // Listen address
}

// Server is the HTTP/WebSocket front of the streamer.
type Server struct {
	cfg      Config
	registry *hub.Registry
	feed     FeedStatus
	symbols  SymbolCounter
	assets   AssetSource
	logger   *slog.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates the server. Handlers are wired immediately; nothing
// listens until Start.
func New(cfg Config, registry *hub.Registry, feed FeedStatus, symbols SymbolCounter, assets AssetSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		feed:     feed,
		symbols:  symbols,
		assets:   assets,
		logger:   logger,
		upgrader: websocket.Upgrader{
			// Subscribers connect from browsers on arbitrary origins;
			// authentication is out of scope for this service.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/asset/{symbol}", s.handleAsset)
	mux.HandleFunc("GET /api/historical/{symbol}", s.handleHistorical)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: withCORS(mux),
	}

	return s
}

// Handler returns the root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// withCORS allows any origin on the API routes; the original consumers
// are browser dashboards served from elsewhere.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
