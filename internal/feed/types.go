package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// tradeMarker is the type discriminator for trade messages on the feed.
const tradeMarker = "t"

// subscribeRequest is sent once per connection to request all symbols.
type subscribeRequest struct {
	Action string   `json:"action"`
	Trades []string `json:"trades"`
}

// tradeMessage is an incoming feed message. Only messages with T == "t"
// are trades; everything else on the stream is ignored.
type tradeMessage struct {
	Type   string     `json:"T"`
	Symbol string     `json:"S"`
	Price  priceValue `json:"p"`
	Size   *int64     `json:"s"` // Absent on some trades; treated as 0
}

// priceValue accepts both JSON numbers and numeric strings, which the
// upstream feed has been observed to mix.
type priceValue float64

func (p *priceValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse price %q: %w", s, err)
	}
	*p = priceValue(f)
	return nil
}

// Config configures the upstream feed client.
type Config struct {
	URL              string        // Upstream WebSocket URL
	MaxReconnectWait time.Duration // Backoff cap between reconnection attempts
	HandshakeTimeout time.Duration // WebSocket dial timeout
	WriteTimeout     time.Duration // Deadline for the subscribe write
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxReconnectWait: 60 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}
