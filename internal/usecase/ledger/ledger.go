package ledger

import (
	"context"
	"sync"

	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/shopspring/decimal"
)

// Ledger moves funds between the available and blocked balances of wallets.
// All postings go through one mutex, so a user trading several pairs never
// sees interleaved reservation checks.
type Ledger struct {
	mu      sync.Mutex
	wallets walletv1.Store
	logger  logger.Interface
	pool    map[string]decimal.Decimal
}

var _ walletv1.Ledger = (*Ledger)(nil)

// NewLedger creates a Ledger writing through wallets.
func NewLedger(wallets walletv1.Store, log logger.Interface) *Ledger {
	return &Ledger{
		wallets: wallets,
		logger:  log,
		pool:    make(map[string]decimal.Decimal),
	}
}

// TryReserve blocks amount when the free balance covers it.
func (l *Ledger) TryReserve(ctx context.Context, userID string, leg walletv1.Leg, currency string, amount decimal.Decimal) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.wallets.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if w.Free(leg, currency).LessThan(amount) {
		return false, nil
	}
	if err := l.apply(ctx, w, walletv1.Entry{Leg: leg, Currency: currency, Blocked: amount}); err != nil {
		return false, err
	}
	return true, nil
}

// Reserve blocks amount without checking affordability.
func (l *Ledger) Reserve(ctx context.Context, userID string, leg walletv1.Leg, currency string, amount decimal.Decimal) error {
	return l.Post(ctx, userID, walletv1.Entry{Leg: leg, Currency: currency, Blocked: amount})
}

// Release unblocks amount. Releasing more than is blocked is an invariant violation.
func (l *Ledger) Release(ctx context.Context, userID string, leg walletv1.Leg, currency string, amount decimal.Decimal) error {
	return l.Post(ctx, userID, walletv1.Entry{Leg: leg, Currency: currency, Blocked: amount.Neg()})
}

// Settle applies both deltas to one balance.
func (l *Ledger) Settle(ctx context.Context, userID string, leg walletv1.Leg, currency string, availableDelta, blockedDelta decimal.Decimal) error {
	return l.Post(ctx, userID, walletv1.Entry{Leg: leg, Currency: currency, Available: availableDelta, Blocked: blockedDelta})
}

// Post applies entries to the wallet of userID, all or nothing.
func (l *Ledger) Post(ctx context.Context, userID string, entries ...walletv1.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.wallets.Get(ctx, userID)
	if err != nil {
		return err
	}
	return l.apply(ctx, w, entries...)
}

// apply mutates w, which is a private copy, and saves it only if every entry succeeded.
func (l *Ledger) apply(ctx context.Context, w *walletv1.Wallet, entries ...walletv1.Entry) error {
	for _, e := range entries {
		if err := w.Apply(e.Leg, e.Currency, e.Available, e.Blocked); err != nil {
			l.logger.ErrorContext(ctx, errors.TracerFromError(err),
				logger.NewField("user", w.UserID),
				logger.NewField("leg", e.Leg),
				logger.NewField("currency", e.Currency),
				logger.NewField("availableDelta", e.Available.String()),
				logger.NewField("blockedDelta", e.Blocked.String()),
			)
			return err
		}
	}
	return l.wallets.Save(ctx, w)
}

// CreditPool adds amount to the venue's fee pool. Negative amounts pay out rebates.
func (l *Ledger) CreditPool(currency string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pool[currency] = l.pool[currency].Add(amount)
}

// Pool returns a copy of the venue's net fee balances.
func (l *Ledger) Pool() map[string]decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]decimal.Decimal, len(l.pool))
	for k, v := range l.pool {
		out[k] = v
	}
	return out
}
