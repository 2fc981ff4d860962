package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	pairv1 "github.com/lucaCambi77/valr/internal/domain/pair/v1"
	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	"github.com/lucaCambi77/valr/internal/usecase/ledger"
	"github.com/lucaCambi77/valr/internal/usecase/tradelog"
	"github.com/lucaCambi77/valr/internal/usecase/wallet"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/lucaCambi77/valr/pkg/sequence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	btcusdc = pairv1.CurrencyPair{Symbol: "BTCUSDC", BaseCurrency: "BTC", QuoteCurrency: "USDC", ShortName: "BTC/USDC", BaseDecimals: 8}
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store  *wallet.Store
	ledger *ledger.Ledger
	trades *tradelog.Log
	engine *Engine
}

func setup(t *testing.T) *fixture {
	ctx := context.Background()
	store := wallet.NewStore()
	for _, u := range []string{"seller", "buyer"} {
		_, err := store.Create(ctx, u)
		require.NoError(t, err)
	}
	require.NoError(t, store.Deposit(ctx, "seller", walletv1.LegBase, "BTC", d("1")))
	require.NoError(t, store.Deposit(ctx, "buyer", walletv1.LegQuote, "USDC", d("1000")))

	l := ledger.NewLedger(store, logger.NewNop())
	trades := tradelog.NewLog()
	ids := 0
	engine := NewEngine(l, trades, logger.NewNop(), d("0.001"), d("0.0005"),
		WithSequencer(sequence.New(0)),
		WithIDGenerator(func() string {
			ids++
			return "trade-" + string(rune('0'+ids))
		}),
	)
	return &fixture{store: store, ledger: l, trades: trades, engine: engine}
}

func reserved(t *testing.T, f *fixture, o *orderbookv1.Order) {
	amount := o.ReservationFor(o.Quantity)
	currency := btcusdc.BaseCurrency
	if o.IsBid() {
		currency = btcusdc.QuoteCurrency
	}
	ok, err := f.ledger.TryReserve(context.Background(), o.UserID, o.ReservationLeg(), currency, amount)
	require.NoError(t, err)
	require.True(t, ok)
	o.Reserved = amount
}

func balance(t *testing.T, f *fixture, user string, leg walletv1.Leg, currency string) (available, blocked decimal.Decimal) {
	w, err := f.store.Get(context.Background(), user)
	require.NoError(t, err)
	return w.Available(leg, currency), w.Blocked(leg, currency)
}

func TestEngine_Compute(t *testing.T) {
	e := NewEngine(nil, nil, logger.NewNop(), d("0.001"), d("0.0005"))

	testCases := []struct {
		name     string
		maker    orderbookv1.Side
		assertFn func(t *testing.T, b Breakdown)
	}{
		{
			name:  "taker buys",
			maker: orderbookv1.SideSell,
			assertFn: func(t *testing.T, b Breakdown) {
				assert.True(t, b.FeeBase.Equal(d("0.0005")))
				assert.True(t, b.RebateBase.Equal(d("0.00025")))
				assert.True(t, b.FeeQuote.IsZero())
				assert.True(t, b.RebateQuote.IsZero())
			},
		},
		{
			name:  "taker sells",
			maker: orderbookv1.SideBuy,
			assertFn: func(t *testing.T, b Breakdown) {
				assert.True(t, b.FeeQuote.Equal(d("1")))
				assert.True(t, b.RebateQuote.Equal(d("0.5")))
				assert.True(t, b.FeeBase.IsZero())
				assert.True(t, b.RebateBase.IsZero())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			maker := orderbookv1.NewOrder("m", "maker", "BTCUSDC", tc.maker, d("2000"), d("0.5"), now)
			taker := orderbookv1.NewOrder("t", "taker", "BTCUSDC", tc.maker.Opposite(), d("2000"), d("0.5"), now)
			b := e.Compute(orderbookv1.Match{Maker: maker, Taker: taker, Quantity: d("0.5"), Price: d("2000")})
			assert.True(t, b.Notional.Equal(d("1000")))
			tc.assertFn(t, b)
		})
	}
}

func TestEngine_Settle_TakerBuys(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	maker := orderbookv1.NewOrder("m", "seller", "BTCUSDC", orderbookv1.SideSell, d("2000"), d("0.5"), now)
	taker := orderbookv1.NewOrder("t", "buyer", "BTCUSDC", orderbookv1.SideBuy, d("2000"), d("0.5"), now)
	reserved(t, f, maker)
	reserved(t, f, taker)

	trade, err := f.engine.Settle(ctx, btcusdc, orderbookv1.Match{Maker: maker, Taker: taker, Quantity: d("0.5"), Price: d("2000")}, now)
	require.NoError(t, err)

	assert.Equal(t, "trade-1", trade.ID)
	assert.Equal(t, uint64(1), trade.SequenceID)
	assert.Equal(t, "0.5", trade.Quantity.String())
	assert.Equal(t, "2000", trade.Price.String())
	assert.True(t, trade.QuoteVolume.Equal(d("1000")))
	assert.Equal(t, orderbookv1.SideBuy, trade.TakerSide)
	assert.Equal(t, "m", trade.MakerOrderID)
	assert.Equal(t, "t", trade.TakerOrderID)
	assert.Len(t, f.trades.History("BTCUSDC", 10), 1)

	avail, blocked := balance(t, f, "buyer", walletv1.LegBase, "BTC")
	assert.True(t, avail.Equal(d("0.4995")), avail.String())
	assert.True(t, blocked.IsZero())
	avail, blocked = balance(t, f, "buyer", walletv1.LegQuote, "USDC")
	assert.True(t, avail.IsZero(), avail.String())
	assert.True(t, blocked.IsZero())

	avail, blocked = balance(t, f, "seller", walletv1.LegBase, "BTC")
	assert.True(t, avail.Equal(d("0.50025")), avail.String())
	assert.True(t, blocked.IsZero())
	avail, _ = balance(t, f, "seller", walletv1.LegQuote, "USDC")
	assert.True(t, avail.Equal(d("1000")), avail.String())

	pool := f.ledger.Pool()
	assert.True(t, pool["BTC"].Equal(d("0.00025")), pool["BTC"].String())
	assert.True(t, pool["USDC"].IsZero())

	assert.True(t, maker.Reserved.IsZero())
	assert.True(t, taker.Reserved.IsZero())
	assert.True(t, maker.Filled.IsZero(), "settlement does not fill orders")
}

func TestEngine_Settle_TakerSellsWithPriceImprovement(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	maker := orderbookv1.NewOrder("m", "buyer", "BTCUSDC", orderbookv1.SideBuy, d("100"), d("1"), now)
	taker := orderbookv1.NewOrder("t", "seller", "BTCUSDC", orderbookv1.SideSell, d("90"), d("1"), now)
	reserved(t, f, maker)
	reserved(t, f, taker)

	trade, err := f.engine.Settle(ctx, btcusdc, orderbookv1.Match{Maker: maker, Taker: taker, Quantity: d("1"), Price: d("100")}, now)
	require.NoError(t, err)
	assert.Equal(t, orderbookv1.SideSell, trade.TakerSide)

	avail, blocked := balance(t, f, "buyer", walletv1.LegQuote, "USDC")
	assert.True(t, avail.Equal(d("900.05")), avail.String())
	assert.True(t, blocked.IsZero())
	avail, _ = balance(t, f, "buyer", walletv1.LegBase, "BTC")
	assert.True(t, avail.Equal(d("1")))

	avail, blocked = balance(t, f, "seller", walletv1.LegQuote, "USDC")
	assert.True(t, avail.Equal(d("99.9")), avail.String())
	assert.True(t, blocked.IsZero())
	avail, blocked = balance(t, f, "seller", walletv1.LegBase, "BTC")
	assert.True(t, avail.IsZero())
	assert.True(t, blocked.IsZero())

	pool := f.ledger.Pool()
	assert.True(t, pool["USDC"].Equal(d("0.05")), pool["USDC"].String())

	total := d("900.05").Add(d("99.9")).Add(pool["USDC"])
	assert.True(t, total.Equal(d("1000")), "quote is conserved")
}

func TestEngine_Settle_FailedBuyerRevertsSeller(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	maker := orderbookv1.NewOrder("m", "seller", "BTCUSDC", orderbookv1.SideSell, d("2000"), d("0.5"), now)
	taker := orderbookv1.NewOrder("t", "buyer", "BTCUSDC", orderbookv1.SideBuy, d("2000"), d("0.5"), now)
	reserved(t, f, maker)
	// the buyer never reserved, so releasing its blocked quote breaks the ledger

	_, err := f.engine.Settle(ctx, btcusdc, orderbookv1.Match{Maker: maker, Taker: taker, Quantity: d("0.5"), Price: d("2000")}, now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, walletv1.ErrInvariantViolation))

	avail, blocked := balance(t, f, "seller", walletv1.LegBase, "BTC")
	assert.True(t, avail.Equal(d("1")), avail.String())
	assert.True(t, blocked.Equal(d("0.5")), blocked.String())
	avail, _ = balance(t, f, "seller", walletv1.LegQuote, "USDC")
	assert.True(t, avail.IsZero())

	assert.Empty(t, f.trades.History("BTCUSDC", 10))
	assert.Empty(t, f.ledger.Pool())
	assert.True(t, maker.Reserved.Equal(d("0.5")))
}
