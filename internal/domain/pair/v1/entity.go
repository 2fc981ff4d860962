package pairv1

import (
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrUnknownPair matches any error raised for a symbol the registry does not list.
var ErrUnknownPair = errors.NewErrorDetails("unknown currency pair", string(errors.UnknownPairError), "pair")

// CurrencyPair is a tradable market, e.g. BTCUSDC with base BTC and quote USDC.
type CurrencyPair struct {
	Symbol        string `json:"symbol"`
	BaseCurrency  string `json:"baseCurrency"`
	QuoteCurrency string `json:"quoteCurrency"`
	ShortName     string `json:"shortName"`
	BaseDecimals  int32  `json:"baseDecimalPlaces"`
}

// Truncate rounds a base quantity down to the pair's display precision.
// Only presentation code calls it; stored amounts keep full precision.
func (p CurrencyPair) Truncate(quantity decimal.Decimal) decimal.Decimal {
	return quantity.RoundDown(p.BaseDecimals)
}
