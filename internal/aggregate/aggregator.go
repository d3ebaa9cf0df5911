// Package aggregate maintains per-symbol rolling trade statistics.
//
// The Aggregator:
//   - Owns all per-symbol state; nothing else mutates it
//   - Serializes ingestion against snapshot reads with a single mutex
//   - Discards a symbol's entire history once it goes stale (no
//     per-trade trimming inside a fresh symbol)
package aggregate

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/rickgao/stockstream/internal/model"
	"github.com/rickgao/stockstream/internal/symbol"
)

// symbolState is the rolling history for one tracked symbol.
// prices and volumes are index-aligned, in arrival order.
type symbolState struct {
	prices        []float64
	volumes       []int64
	tradeCount    int64
	lastUpdatedAt time.Time
}

// Aggregator folds trades into per-symbol state and derives statistics.
type Aggregator struct {
	retention time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	symbols map[string]*symbolState
}

// New creates an Aggregator with the given retention window.
func New(retention time.Duration, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		retention: retention,
		logger:    logger,
		symbols:   make(map[string]*symbolState),
	}
}

// RecordTrade folds one trade into the aggregator. Invalid symbols are
// dropped silently; that is expected filtering, not an error. Every
// accepted trade also sweeps stale symbols out of the whole map.
func (a *Aggregator) RecordTrade(t model.Trade) {
	if !symbol.IsValid(t.Symbol) {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.symbols[t.Symbol]
	if !ok {
		st = &symbolState{}
		a.symbols[t.Symbol] = st
	}

	st.prices = append(st.prices, t.Price)
	st.volumes = append(st.volumes, t.Volume)
	st.tradeCount++
	st.lastUpdatedAt = t.ObservedAt

	a.sweepLocked(t.ObservedAt)
}

// Snapshot derives statistics for every tracked symbol with at least one
// price. Symbols past the retention window are evicted first, so an idle
// upstream cannot keep stale state visible. A symbol whose statistics
// cannot be computed is skipped; it never affects the others.
func (a *Aggregator) Snapshot(now time.Time) []model.SymbolStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sweepLocked(now)

	stats := make([]model.SymbolStats, 0, len(a.symbols))
	for ticker, st := range a.symbols {
		if len(st.prices) == 0 {
			continue
		}

		opening := st.prices[0]
		if opening == 0 {
			a.logger.Error("skipping symbol with degenerate opening price", "symbol", ticker)
			continue
		}

		current := st.prices[len(st.prices)-1]
		percentChange := (current - opening) / opening * 100

		stats = append(stats, model.SymbolStats{
			Symbol:        ticker,
			CurrentPrice:  current,
			PercentChange: round2(percentChange),
			TradeCount:    st.tradeCount,
			Volume:        totalVolume(st.volumes),
			High:          maxPrice(st.prices),
			Low:           minPrice(st.prices),
			VWAP:          vwap(st.prices, st.volumes),
			StdDev:        sampleStdDev(st.prices),
		})
	}

	return stats
}

// TrackedSymbols returns the number of symbols currently holding state.
func (a *Aggregator) TrackedSymbols() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.symbols)
}

// sweepLocked deletes every symbol whose last trade fell behind the
// retention window. All-or-nothing per symbol. Caller holds a.mu.
func (a *Aggregator) sweepLocked(now time.Time) {
	cutoff := now.Add(-a.retention)
	for ticker, st := range a.symbols {
		if st.lastUpdatedAt.Before(cutoff) {
			delete(a.symbols, ticker)
		}
	}
}

func totalVolume(volumes []int64) int64 {
	var total int64
	for _, v := range volumes {
		total += v
	}
	return total
}

func maxPrice(prices []float64) float64 {
	high := prices[0]
	for _, p := range prices[1:] {
		if p > high {
			high = p
		}
	}
	return high
}

func minPrice(prices []float64) float64 {
	low := prices[0]
	for _, p := range prices[1:] {
		if p < low {
			low = p
		}
	}
	return low
}

// vwap is volume-weighted average price. Returns 0 when no volume was
// reported, which happens when the feed omits trade sizes.
func vwap(prices []float64, volumes []int64) float64 {
	var weighted float64
	var total int64
	for i, p := range prices {
		weighted += p * float64(volumes[i])
		total += volumes[i]
	}
	if total == 0 {
		return 0
	}
	return weighted / float64(total)
}

// sampleStdDev uses Bessel's correction (n-1 denominator).
// Returns 0 with fewer than 2 observations.
func sampleStdDev(prices []float64) float64 {
	n := len(prices)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, p := range prices {
		d := p - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff / float64(n-1))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
