package tradev1

import (
	"time"

	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

// Trade is an immutable execution record.
type Trade struct {
	ID           string           `json:"id"`
	Price        decimal.Decimal  `json:"price"`
	Quantity     decimal.Decimal  `json:"quantity"`
	CurrencyPair string           `json:"currencyPair"`
	TradedAt     time.Time        `json:"tradedAt"`
	TakerSide    orderbookv1.Side `json:"takerSide"`
	SequenceID   uint64           `json:"sequenceId"`
	QuoteVolume  decimal.Decimal  `json:"quoteVolume"`
	MakerOrderID string           `json:"makerOrderId"`
	TakerOrderID string           `json:"takerOrderId"`
}
