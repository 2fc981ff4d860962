package walletv1

import (
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrUnknownUser matches any error raised for a user without a wallet.
var ErrUnknownUser = errors.NewErrorDetails("unknown user", string(errors.UnknownUserError), "user")

// ErrInvariantViolation marks a ledger mutation that would corrupt balances.
var ErrInvariantViolation = errors.NewErrorDetails("ledger invariant violated", string(errors.InvariantViolationError), "wallet")

// Leg says which side of a pair a balance belongs to.
type Leg string

const (
	// LegBase holds currencies traded as the base of a pair.
	LegBase Leg = "base"
	// LegQuote holds currencies traded as the quote of a pair.
	LegQuote Leg = "quote"
)

// Valid reports whether l is a known leg.
func (l Leg) Valid() bool {
	return l == LegBase || l == LegQuote
}

// Wallet holds a user's balances. Available is what the user owns; Blocked is
// the part of it earmarked for open orders.
type Wallet struct {
	UserID         string                     `json:"userId"`
	AvailableBase  map[string]decimal.Decimal `json:"availableBase"`
	AvailableQuote map[string]decimal.Decimal `json:"availableQuote"`
	BlockedBase    map[string]decimal.Decimal `json:"blockedBase"`
	BlockedQuote   map[string]decimal.Decimal `json:"blockedQuote"`
}

// NewWallet returns an empty wallet for userID.
func NewWallet(userID string) *Wallet {
	return &Wallet{
		UserID:         userID,
		AvailableBase:  make(map[string]decimal.Decimal),
		AvailableQuote: make(map[string]decimal.Decimal),
		BlockedBase:    make(map[string]decimal.Decimal),
		BlockedQuote:   make(map[string]decimal.Decimal),
	}
}

func (w *Wallet) maps(leg Leg) (available, blocked map[string]decimal.Decimal) {
	if leg == LegBase {
		return w.AvailableBase, w.BlockedBase
	}
	return w.AvailableQuote, w.BlockedQuote
}

// Available returns the owned amount of currency on leg.
func (w *Wallet) Available(leg Leg, currency string) decimal.Decimal {
	available, _ := w.maps(leg)
	return available[currency]
}

// Blocked returns the reserved amount of currency on leg.
func (w *Wallet) Blocked(leg Leg, currency string) decimal.Decimal {
	_, blocked := w.maps(leg)
	return blocked[currency]
}

// Free returns what can still be committed to new orders.
func (w *Wallet) Free(leg Leg, currency string) decimal.Decimal {
	return w.Available(leg, currency).Sub(w.Blocked(leg, currency))
}

// Apply adds both deltas to currency on leg. It leaves the wallet untouched and
// returns ErrInvariantViolation if either balance would turn negative or the
// reservation would exceed the holding.
func (w *Wallet) Apply(leg Leg, currency string, availableDelta, blockedDelta decimal.Decimal) error {
	available, blocked := w.maps(leg)

	nextAvailable := available[currency].Add(availableDelta)
	nextBlocked := blocked[currency].Add(blockedDelta)

	switch {
	case nextAvailable.IsNegative():
		return errors.NewErrorDetailsWithObject("available balance would go negative",
			string(errors.InvariantViolationError), string(leg), currency)
	case nextBlocked.IsNegative():
		return errors.NewErrorDetailsWithObject("blocked balance would go negative",
			string(errors.InvariantViolationError), string(leg), currency)
	case nextBlocked.GreaterThan(nextAvailable):
		return errors.NewErrorDetailsWithObject("blocked balance would exceed available balance",
			string(errors.InvariantViolationError), string(leg), currency)
	}

	available[currency] = nextAvailable
	blocked[currency] = nextBlocked
	return nil
}

// Clone returns a deep copy of the wallet.
func (w *Wallet) Clone() *Wallet {
	c := NewWallet(w.UserID)
	for k, v := range w.AvailableBase {
		c.AvailableBase[k] = v
	}
	for k, v := range w.AvailableQuote {
		c.AvailableQuote[k] = v
	}
	for k, v := range w.BlockedBase {
		c.BlockedBase[k] = v
	}
	for k, v := range w.BlockedQuote {
		c.BlockedQuote[k] = v
	}
	return c
}

// Entry is one balance movement of a ledger posting.
type Entry struct {
	Leg       Leg
	Currency  string
	Available decimal.Decimal
	Blocked   decimal.Decimal
}
