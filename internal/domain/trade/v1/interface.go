package tradev1

import "context"

// Log is the append-only trade log.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=tradev1_mock
type Log interface {
	Append(trade Trade)
	// History returns up to limit trades of pair, highest sequence first.
	History(pair string, limit int) []Trade
}

// Repository archives executed trades outside the process.
type Repository interface {
	InsertTrades(ctx context.Context, trades []Trade) error
	ListByPair(ctx context.Context, pair string, limit int) ([]Trade, error)
}
