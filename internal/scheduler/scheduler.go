// Package scheduler drives the periodic snapshot broadcast cycle.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/stockstream/internal/model"
)

// Snapshotter produces the current per-symbol statistics.
type Snapshotter interface {
	Snapshot(now time.Time) []model.SymbolStats
}

// Broadcaster delivers a payload to all subscribers, best-effort.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// FeedStatus reports whether the upstream feed is connected.
type FeedStatus interface {
	IsConnected() bool
}

// Config holds scheduler configuration.
type Config struct {
	UpdateInterval time.Duration // Minimum gap between broadcasts (default: 15s)
	CheckInterval  time.Duration // Cadence-check granularity (default: 1s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UpdateInterval: 15 * time.Second,
		CheckInterval:  time.Second,
	}
}

// Scheduler ticks at check granularity and fires a broadcast cycle once
// the update interval has elapsed since the last successful one.
type Scheduler struct {
	cfg    Config
	source Snapshotter
	sink   Broadcaster
	feed   FeedStatus
	logger *slog.Logger

	lastBroadcast time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler.
func New(cfg Config, source Snapshotter, sink Broadcaster, feed FeedStatus, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:    cfg,
		source: source,
		sink:   sink,
		feed:   feed,
		logger: logger,
	}
}

// Start begins the broadcast loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.lastBroadcast = time.Now()

	s.wg.Add(1)
	go s.run()

	s.logger.Info("snapshot scheduler started",
		"update_interval", s.cfg.UpdateInterval,
		"check_interval", s.cfg.CheckInterval,
	)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("snapshot scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main loop. The last-broadcast time only advances on a
// completed cycle, so a failed cycle retries at the next tick instead
// of waiting out a full interval.
func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			if now.Sub(s.lastBroadcast) < s.cfg.UpdateInterval {
				continue
			}

			if err := s.cycle(now); err != nil {
				s.logger.Error("broadcast cycle failed", "error", err)
				continue
			}
			s.lastBroadcast = now
		}
	}
}

// cycle takes one snapshot, wraps it in the wire envelope, and hands it
// to the broadcaster. Per-subscriber failures are absorbed downstream.
func (s *Scheduler) cycle(now time.Time) error {
	envelope := model.Envelope{
		Type:           "market_data",
		Data:           s.source.Snapshot(now),
		Timestamp:      now.Format(time.RFC3339),
		ProxyConnected: s.feed.IsConnected(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	s.sink.Broadcast(payload)
	return nil
}
