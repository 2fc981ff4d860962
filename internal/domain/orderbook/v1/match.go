package orderbookv1

import "github.com/shopspring/decimal"

// Match is one execution between a resting maker and an incoming taker.
type Match struct {
	Maker    *Order
	Taker    *Order
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Buyer returns the buying side of the match.
func (m Match) Buyer() *Order {
	if m.Taker.IsBid() {
		return m.Taker
	}
	return m.Maker
}

// Seller returns the selling side of the match.
func (m Match) Seller() *Order {
	if m.Taker.IsBid() {
		return m.Maker
	}
	return m.Taker
}

// Notional returns quantity × price in quote currency.
func (m Match) Notional() decimal.Decimal {
	return m.Quantity.Mul(m.Price)
}

// MatchOutcome tells why a matching walk stopped.
type MatchOutcome int

const (
	// OutcomeExhausted means the taker filled or no opposite price crosses any more.
	OutcomeExhausted MatchOutcome = iota
	// OutcomeSelfTrade means the best crossing order belongs to the taker's own user.
	OutcomeSelfTrade
)
