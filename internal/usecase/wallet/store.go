package wallet

import (
	"context"
	"fmt"
	"sync"

	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/shopspring/decimal"
)

// Store is an in-memory wallet store. It hands out and keeps copies, so a
// wallet only changes through Save or Deposit.
type Store struct {
	mu      sync.RWMutex
	wallets map[string]*walletv1.Wallet
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{wallets: make(map[string]*walletv1.Wallet)}
}

func unknownUser(userID string) error {
	return errors.NewErrorDetails(fmt.Sprintf("User %s not found", userID), string(errors.UnknownUserError), "user")
}

// Get returns a copy of the wallet of userID.
func (s *Store) Get(_ context.Context, userID string) (*walletv1.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[userID]
	if !ok {
		return nil, unknownUser(userID)
	}
	return w.Clone(), nil
}

// Save replaces the stored wallet of an existing user.
func (s *Store) Save(_ context.Context, wallet *walletv1.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wallets[wallet.UserID]; !ok {
		return unknownUser(wallet.UserID)
	}
	s.wallets[wallet.UserID] = wallet.Clone()
	return nil
}

// Create registers an empty wallet for userID, or returns the existing one.
func (s *Store) Create(_ context.Context, userID string) (*walletv1.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.wallets[userID]; ok {
		return w.Clone(), nil
	}
	w := walletv1.NewWallet(userID)
	s.wallets[userID] = w
	return w.Clone(), nil
}

// Deposit tops up the available balance of currency on leg. It is the external
// funding path and is not part of trading.
func (s *Store) Deposit(_ context.Context, userID string, leg walletv1.Leg, currency string, amount decimal.Decimal) error {
	if !leg.Valid() || currency == "" || amount.IsNegative() {
		return errors.NewErrorDetails("invalid deposit", string(errors.GeneralBadRequestError), "deposit")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		return unknownUser(userID)
	}
	return w.Apply(leg, currency, amount, decimal.Zero)
}
