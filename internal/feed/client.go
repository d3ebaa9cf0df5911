// Package feed implements the upstream trade-feed client.
//
// The client:
//   - Holds one persistent WebSocket connection to the feed proxy
//   - Subscribes to all symbols on connect
//   - Decodes trade messages and folds them into the aggregator
//   - Reconnects forever with capped exponential backoff
//
// No error on this path is fatal; the upstream relationship is designed
// to self-heal until the process shuts down.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/stockstream/internal/model"
)

// TradeRecorder receives decoded trades from the feed.
type TradeRecorder interface {
	RecordTrade(t model.Trade)
}

// Client maintains the connection to the upstream trade feed.
type Client struct {
	cfg      Config
	recorder TradeRecorder
	logger   *slog.Logger

	// State
	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	attempts  int // Consecutive failed connections; reset on subscribe

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a feed client. Trades are delivered to recorder.
func NewClient(cfg Config, recorder TradeRecorder, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:      cfg,
		recorder: recorder,
		logger:   logger,
	}
}

// Start begins the connect/read/reconnect loop in the background.
func (c *Client) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run()

	c.logger.Info("feed client started", "url", c.cfg.URL)
	return nil
}

// Stop cancels the loop and closes any open connection.
func (c *Client) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("feed client stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsConnected reports whether the feed is currently subscribed.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// run loops DISCONNECTED -> CONNECTING -> SUBSCRIBED forever. Each pass
// of connectAndRead covers one connection's lifetime; any exit puts the
// client back into backoff.
func (c *Client) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		err := c.connectAndRead()

		c.setConnected(nil, false)

		select {
		case <-c.ctx.Done():
			return
		default:
		}

		wait := c.nextBackoff()
		c.logger.Warn("feed connection lost, reconnecting",
			"error", err,
			"attempt", c.attemptCount(),
			"wait", wait,
		)

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// connectAndRead dials, subscribes, and reads until close or error.
func (c *Client) connectAndRead() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(c.ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}

	sub, _ := json.Marshal(subscribeRequest{
		Action: "subscribe",
		Trades: []string{"*"},
	})
	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		conn.Close()
		return err
	}

	c.setConnected(conn, true)
	c.resetBackoff()
	c.logger.Info("subscribed to feed", "url", c.cfg.URL)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return err
		}
		c.handleMessage(data, time.Now())
	}
}

// handleMessage decodes one raw feed message. Malformed JSON is logged
// and dropped; messages that are not trade-shaped are ignored silently.
func (c *Client) handleMessage(data []byte, now time.Time) {
	var msg tradeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Well-formed JSON of a different shape (arrays, nested
			// control messages). Not an error on this stream.
			return
		}
		c.logger.Error("decoding feed message", "error", err)
		return
	}

	if msg.Type != tradeMarker {
		return
	}

	var volume int64
	if msg.Size != nil {
		volume = *msg.Size
	}

	c.recorder.RecordTrade(model.Trade{
		Symbol:     msg.Symbol,
		Price:      float64(msg.Price),
		Volume:     volume,
		ObservedAt: now,
	})
}

func (c *Client) setConnected(conn *websocket.Conn, connected bool) {
	c.mu.Lock()
	c.conn = conn
	c.connected = connected
	c.mu.Unlock()
}

// nextBackoff increments the attempt counter and returns min(2^a, cap).
func (c *Client) nextBackoff() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts++
	if c.attempts >= 31 || time.Duration(1<<c.attempts)*time.Second > c.cfg.MaxReconnectWait {
		return c.cfg.MaxReconnectWait
	}
	return time.Duration(1<<c.attempts) * time.Second
}

func (c *Client) resetBackoff() {
	c.mu.Lock()
	c.attempts = 0
	c.mu.Unlock()
}

func (c *Client) attemptCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attempts
}
