package orderbookv1

import (
	"time"

	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	// SideBuy buys base with quote.
	SideBuy Side = "BUY"
	// SideSell sells base for quote.
	SideSell Side = "SELL"
)

// Valid reports whether s is BUY or SELL.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the side an order of side s trades against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Status is the lifecycle state of an order.
type Status string

const (
	StatusOpen            Status = "OPEN"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCancelled       Status = "CANCELLED"
	StatusFailed          Status = "FAILED"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusFailed
}

// OrderTypeLimit is the only order type the venue accepts.
const OrderTypeLimit = "limit"

// Failure reasons recorded on FAILED orders.
const (
	ReasonInsufficientBalance = "insufficient balance"
	ReasonSelfTrade           = "self trade rejected"
)

// Order is a limit order. The same pointer is shared by the book and the
// status index, so it is only mutated under its pair's lock.
type Order struct {
	ID           string
	UserID       string
	Pair         string
	Side         Side
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	Filled       decimal.Decimal
	Status       Status
	FailedReason string
	// Reserved is the part of the order's reservation not yet consumed by fills or released.
	Reserved decimal.Decimal
	// Sequence is the arrival number used to break price ties.
	Sequence  uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	limit *Limit
}

// NewOrder returns an OPEN order created at now.
func NewOrder(id, userID, pair string, side Side, price, quantity decimal.Decimal, now time.Time) *Order {
	return &Order{
		ID:        id,
		UserID:    userID,
		Pair:      pair,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Filled:    decimal.Zero,
		Reserved:  decimal.Zero,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.Filled)
}

// IsBid checks if the order is a buy order.
func (o *Order) IsBid() bool {
	return o.Side == SideBuy
}

// IsResting reports whether the order currently sits in a book.
func (o *Order) IsResting() bool {
	return o.limit != nil
}

// ReservationLeg returns the wallet leg the order blocks funds on.
func (o *Order) ReservationLeg() walletv1.Leg {
	if o.IsBid() {
		return walletv1.LegQuote
	}
	return walletv1.LegBase
}

// ReservationFor returns the reservation needed to cover quantity at the limit price.
func (o *Order) ReservationFor(quantity decimal.Decimal) decimal.Decimal {
	if o.IsBid() {
		return quantity.Mul(o.Price)
	}
	return quantity
}

// Fill records quantity executed at now and recomputes the status.
func (o *Order) Fill(quantity decimal.Decimal, now time.Time) {
	o.Filled = o.Filled.Add(quantity)
	o.UpdatedAt = now
	o.updateStatus()
}

func (o *Order) updateStatus() {
	switch {
	case o.Remaining().IsZero():
		o.Status = StatusFilled
	case o.Filled.IsPositive():
		o.Status = StatusPartiallyFilled
	default:
		o.Status = StatusOpen
	}
}

// Cancel marks the order CANCELLED.
func (o *Order) Cancel(now time.Time) {
	o.Status = StatusCancelled
	o.UpdatedAt = now
}

// Fail marks the order FAILED with reason. Fills already applied stand.
func (o *Order) Fail(reason string, now time.Time) {
	o.Status = StatusFailed
	o.FailedReason = reason
	o.UpdatedAt = now
}
