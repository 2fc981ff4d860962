package wallet

import (
	"context"
	"errors"
	"testing"

	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateDepositGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Get(ctx, "alice")
	assert.True(t, errors.Is(err, walletv1.ErrUnknownUser))

	_, err = s.Create(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, s.Deposit(ctx, "alice", walletv1.LegQuote, "USDC", decimal.NewFromInt(1000)))

	w, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, w.Available(walletv1.LegQuote, "USDC").Equal(decimal.NewFromInt(1000)))
	assert.True(t, w.Available(walletv1.LegBase, "USDC").IsZero())

	// mutating the copy does not leak into the store until saved
	w.AvailableQuote["USDC"] = decimal.Zero
	again, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, again.Available(walletv1.LegQuote, "USDC").Equal(decimal.NewFromInt(1000)))

	require.NoError(t, s.Save(ctx, w))
	again, err = s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, again.Available(walletv1.LegQuote, "USDC").IsZero())
}

func TestStore_DepositRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Create(ctx, "alice")
	require.NoError(t, err)

	assert.Error(t, s.Deposit(ctx, "alice", "spot", "USDC", decimal.NewFromInt(1)))
	assert.Error(t, s.Deposit(ctx, "alice", walletv1.LegQuote, "USDC", decimal.NewFromInt(-1)))
	assert.True(t, errors.Is(s.Deposit(ctx, "bob", walletv1.LegQuote, "USDC", decimal.NewFromInt(1)), walletv1.ErrUnknownUser))
	assert.True(t, errors.Is(s.Save(ctx, walletv1.NewWallet("bob")), walletv1.ErrUnknownUser))
}
