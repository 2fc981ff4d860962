package orderbook

import (
	"errors"
	"testing"
	"time"

	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Helper function to create test order with specific ID
func createTestOrder(id, userID string, side orderbookv1.Side, price, qty string) *orderbookv1.Order {
	return orderbookv1.NewOrder(id, userID, "BTCUSDC", side,
		decimal.RequireFromString(price), decimal.RequireFromString(qty), now)
}

func noopSettle(orderbookv1.Match) error { return nil }

func TestNewOrderbook(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")

	assert.Equal(t, "BTCUSDC", ob.Pair)
	assert.Equal(t, 0, ob.Len())
	_, ok := ob.Best(orderbookv1.SideBuy)
	assert.False(t, ok)
	assert.Empty(t, ob.Levels(orderbookv1.SideSell))
}

func TestOrderbook_LevelsAreBestFirst(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")

	for i, price := range []string{"101", "99", "100", "99.0"} {
		require.NoError(t, ob.Add(createTestOrder("ask"+price+string(rune('a'+i)), "seller", orderbookv1.SideSell, price, "1")))
		require.NoError(t, ob.Add(createTestOrder("bid"+price+string(rune('a'+i)), "buyer", orderbookv1.SideBuy, price, "1")))
	}

	asks := ob.Levels(orderbookv1.SideSell)
	require.Len(t, asks, 3, "99 and 99.0 share a level")
	assert.True(t, asks[0].Price.Equal(decimal.NewFromInt(99)))
	assert.Equal(t, 2, asks[0].OrderCount())
	assert.True(t, asks[2].Price.Equal(decimal.NewFromInt(101)))

	bids := ob.Levels(orderbookv1.SideBuy)
	require.Len(t, bids, 3)
	assert.True(t, bids[0].Price.Equal(decimal.NewFromInt(101)))
	assert.True(t, bids[2].Price.Equal(decimal.NewFromInt(99)))

	best, ok := ob.Best(orderbookv1.SideSell)
	require.True(t, ok)
	assert.True(t, best.Price.Equal(decimal.NewFromInt(99)))
}

func TestOrderbook_AddRejectsDuplicatesAndFilledOrders(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")

	o := createTestOrder("o1", "u", orderbookv1.SideSell, "100", "1")
	require.NoError(t, ob.Add(o))
	assert.Error(t, ob.Add(o))

	filled := createTestOrder("o2", "u", orderbookv1.SideSell, "105", "1")
	filled.Fill(decimal.NewFromInt(1), now)
	assert.ErrorIs(t, ob.Add(filled), orderbookv1.ErrOrderNotResting)
	assert.Len(t, ob.Levels(orderbookv1.SideSell), 1, "rejected order leaves no empty level behind")
}

func TestOrderbook_Remove(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")

	o1 := createTestOrder("o1", "u", orderbookv1.SideBuy, "100", "1")
	o2 := createTestOrder("o2", "u", orderbookv1.SideBuy, "100", "2")
	require.NoError(t, ob.Add(o1))
	require.NoError(t, ob.Add(o2))

	require.NoError(t, ob.Remove(o1))
	_, ok := ob.Get("o1")
	assert.False(t, ok)
	assert.Len(t, ob.Levels(orderbookv1.SideBuy), 1)

	require.NoError(t, ob.Remove(o2))
	assert.Empty(t, ob.Levels(orderbookv1.SideBuy))
	assert.Error(t, ob.Remove(o2))
}

func TestOrderbook_Match_PriceTimePriority(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")

	first := createTestOrder("first", "s1", orderbookv1.SideSell, "100", "1")
	second := createTestOrder("second", "s2", orderbookv1.SideSell, "100", "1")
	cheaper := createTestOrder("cheaper", "s3", orderbookv1.SideSell, "99", "1")
	require.NoError(t, ob.Add(first))
	require.NoError(t, ob.Add(second))
	require.NoError(t, ob.Add(cheaper))

	taker := createTestOrder("taker", "buyer", orderbookv1.SideBuy, "100", "2")
	matches, outcome, err := ob.Match(taker, now, noopSettle)

	require.NoError(t, err)
	assert.Equal(t, orderbookv1.OutcomeExhausted, outcome)
	require.Len(t, matches, 2)
	assert.Equal(t, cheaper, matches[0].Maker, "better price first")
	assert.True(t, matches[0].Price.Equal(decimal.NewFromInt(99)), "resting price wins")
	assert.Equal(t, first, matches[1].Maker, "earlier arrival first within a price")

	assert.Equal(t, orderbookv1.StatusFilled, taker.Status)
	assert.Equal(t, orderbookv1.StatusOpen, second.Status)
	_, ok := ob.Get("first")
	assert.False(t, ok)
	_, ok = ob.Get("second")
	assert.True(t, ok)
}

func TestOrderbook_Match_PartialFill(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")

	maker := createTestOrder("maker", "seller", orderbookv1.SideSell, "2000", "0.4")
	require.NoError(t, ob.Add(maker))

	taker := createTestOrder("taker", "buyer", orderbookv1.SideBuy, "2000", "1.0")
	matches, _, err := ob.Match(taker, now, noopSettle)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Quantity.Equal(decimal.RequireFromString("0.4")))
	assert.Equal(t, orderbookv1.StatusFilled, maker.Status)
	assert.Equal(t, orderbookv1.StatusPartiallyFilled, taker.Status)
	assert.True(t, taker.Remaining().Equal(decimal.RequireFromString("0.6")))
	assert.Equal(t, 0, ob.Len())
	assert.False(t, taker.IsResting(), "Match never rests the taker")
}

func TestOrderbook_Match_StopsWhenPriceDoesNotCross(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")
	require.NoError(t, ob.Add(createTestOrder("bid", "buyer", orderbookv1.SideBuy, "99", "1")))

	taker := createTestOrder("ask", "seller", orderbookv1.SideSell, "100", "1")
	matches, outcome, err := ob.Match(taker, now, noopSettle)

	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, orderbookv1.OutcomeExhausted, outcome)
	assert.Equal(t, orderbookv1.StatusOpen, taker.Status)
}

func TestOrderbook_Match_SelfTradeStopsWithoutTouchingMaker(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")

	other := createTestOrder("other", "bob", orderbookv1.SideSell, "99", "0.5")
	own := createTestOrder("own", "alice", orderbookv1.SideSell, "100", "1")
	behind := createTestOrder("behind", "carol", orderbookv1.SideSell, "100", "1")
	require.NoError(t, ob.Add(other))
	require.NoError(t, ob.Add(own))
	require.NoError(t, ob.Add(behind))

	taker := createTestOrder("taker", "alice", orderbookv1.SideBuy, "100", "2")
	matches, outcome, err := ob.Match(taker, now, noopSettle)

	require.NoError(t, err)
	assert.Equal(t, orderbookv1.OutcomeSelfTrade, outcome)
	require.Len(t, matches, 1, "the fill before the self trade stands")
	assert.Equal(t, other, matches[0].Maker)
	assert.True(t, own.Filled.IsZero())
	assert.True(t, behind.Filled.IsZero(), "no liquidity behind the own order is consumed")
	assert.Equal(t, 2, ob.Len())
}

func TestOrderbook_Match_SettleErrorAborts(t *testing.T) {
	ob := NewOrderbook("BTCUSDC")
	maker := createTestOrder("maker", "seller", orderbookv1.SideSell, "100", "1")
	require.NoError(t, ob.Add(maker))

	boom := errors.New("boom")
	taker := createTestOrder("taker", "buyer", orderbookv1.SideBuy, "100", "1")
	matches, _, err := ob.Match(taker, now, func(orderbookv1.Match) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, matches)
	assert.True(t, maker.Filled.IsZero())
	assert.True(t, taker.Filled.IsZero())
	assert.Equal(t, 1, ob.Len())
}
