package walletv1

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store keeps wallets by user id. Get hands out a copy; callers persist their
// changes with Save.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=walletv1_mock
type Store interface {
	Get(ctx context.Context, userID string) (*Wallet, error)
	Save(ctx context.Context, wallet *Wallet) error
	Create(ctx context.Context, userID string) (*Wallet, error)
	Deposit(ctx context.Context, userID string, leg Leg, currency string, amount decimal.Decimal) error
}

// Ledger is the only writer of wallet balances during trading. Every method is
// atomic with respect to the wallet it touches.
type Ledger interface {
	// TryReserve blocks amount if the free balance covers it and reports whether it did.
	TryReserve(ctx context.Context, userID string, leg Leg, currency string, amount decimal.Decimal) (bool, error)
	Reserve(ctx context.Context, userID string, leg Leg, currency string, amount decimal.Decimal) error
	Release(ctx context.Context, userID string, leg Leg, currency string, amount decimal.Decimal) error
	Settle(ctx context.Context, userID string, leg Leg, currency string, availableDelta, blockedDelta decimal.Decimal) error
	// Post applies all entries to one wallet, or none of them.
	Post(ctx context.Context, userID string, entries ...Entry) error
	// CreditPool moves amount (possibly negative) into the venue's fee pool.
	CreditPool(currency string, amount decimal.Decimal)
	Pool() map[string]decimal.Decimal
}
