package model

import "time"

// Trade is a single execution observed on the upstream feed. Trades are
// ephemeral: they are folded into aggregator state and never stored.
type Trade struct {
	Symbol     string    // Ticker symbol (e.g., "AAPL")
	Price      float64   // Execution price
	Volume     int64     // Shares traded (0 when the feed omits size)
	ObservedAt time.Time // Local receive time
}

// SymbolStats is the derived per-symbol view pushed to subscribers.
// Field names match the downstream wire protocol.
type SymbolStats struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`  // Most recent price in the window
	PercentChange float64 `json:"percent_change"` // vs. oldest retained price, 2 decimals
	TradeCount    int64   `json:"trade_count"`
	Volume        int64   `json:"volume"` // Total shares over the window
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	VWAP          float64 `json:"vwap"`    // 0 when total volume is 0
	StdDev        float64 `json:"std_dev"` // Sample stddev, 0 with fewer than 2 prices
}

// Envelope is the periodic market-data push to downstream subscribers.
type Envelope struct {
	Type           string        `json:"type"` // Always "market_data"
	Data           []SymbolStats `json:"data"`
	Timestamp      string        `json:"timestamp"` // ISO 8601
	ProxyConnected bool          `json:"proxy_connected"`
}
