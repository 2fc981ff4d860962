package tradelog

import (
	"sync"

	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
)

// Log is an in-memory, append-only trade log partitioned by pair. Trades of a
// pair are appended in sequence order, which History relies on.
type Log struct {
	mu     sync.RWMutex
	byPair map[string][]tradev1.Trade
}

var _ tradev1.Log = (*Log)(nil)

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{byPair: make(map[string][]tradev1.Trade)}
}

// Append records trade under its pair.
func (l *Log) Append(trade tradev1.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.byPair[trade.CurrencyPair] = append(l.byPair[trade.CurrencyPair], trade)
}

// History returns up to limit trades of pair, highest sequence first. A
// non-positive limit returns every trade.
func (l *Log) History(pair string, limit int) []tradev1.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	trades := l.byPair[pair]
	n := len(trades)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]tradev1.Trade, 0, n)
	for i := len(trades) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, trades[i])
	}
	return out
}
