package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/stockstream/internal/broker"
	"github.com/rickgao/stockstream/internal/hub"
)

// sessionOpen is the regular equities session open in exchange-local time.
const (
	sessionOpenHour   = 9
	sessionOpenMinute = 30
	exchangeTimezone  = "America/New_York"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleHealth reports already-computed flags; it performs no I/O.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"proxy_connected":   s.feed.IsConnected(),
		"connected_clients": s.registry.Count(),
		"tracked_symbols":   s.symbols.TrackedSymbols(),
		"timestamp":         time.Now().Format(time.RFC3339),
	})
}

// handleAsset passes an asset-metadata lookup through to the broker.
// Broker trouble degrades to an error-status placeholder; this endpoint
// never fails hard for the dashboard.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	asset, err := s.assets.GetAsset(ctx, symbol)
	if err != nil {
		s.logger.Error("asset lookup failed", "symbol", symbol, "error", err)
		writeJSON(w, http.StatusOK, broker.Asset{
			Symbol: symbol,
			Name:   "Unknown error",
			Status: "error",
		})
		return
	}

	writeJSON(w, http.StatusOK, asset)
}

// historicalPoint is one intraday sample on the wire.
type historicalPoint struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    int64   `json:"volume"`
}

// handleHistorical serves today's 1-minute bars from session open
// (09:30 exchange time) to now.
func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	eastern, err := time.LoadLocation(exchangeTimezone)
	if err != nil {
		s.writeHistoricalError(w, err)
		return
	}

	now := time.Now().In(eastern)
	open := time.Date(now.Year(), now.Month(), now.Day(),
		sessionOpenHour, sessionOpenMinute, 0, 0, eastern)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	bars, err := s.assets.GetIntradayBars(ctx, symbol, open, now)
	if err != nil {
		s.logger.Error("historical lookup failed", "symbol", symbol, "error", err)
		s.writeHistoricalError(w, err)
		return
	}

	points := make([]historicalPoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, historicalPoint{
			Timestamp: b.Timestamp.In(eastern).Format(time.RFC3339),
			Price:     b.Close,
			Volume:    b.Volume,
		})
	}

	s.logger.Info("served historical data", "symbol", symbol, "points", len(points))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    points,
	})
}

func (s *Server) writeHistoricalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// handleWS upgrades a subscriber connection and registers it with the
// hub. The read loop exists only to detect disconnect; subscriber
// payloads are discarded.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sub := hub.NewSubscriber(ws, hub.DefaultWriteTimeout)
	s.registry.Add(sub)

	sub.ReadUntilClosed()
	s.registry.Remove(sub)
}
