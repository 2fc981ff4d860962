package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	pairv1 "github.com/lucaCambi77/valr/internal/domain/pair/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/lucaCambi77/valr/pkg/sequence"
	"github.com/shopspring/decimal"
)

// Engine turns matches into balance movements and trade records. Takers pay
// takerFeeRate on the asset they receive; makers earn makerRewardRate on the
// asset they deliver. The venue pool takes fees and pays rebates.
type Engine struct {
	ledger          walletv1.Ledger
	trades          tradev1.Log
	logger          logger.Interface
	takerFeeRate    decimal.Decimal
	makerRewardRate decimal.Decimal
	sequence        *sequence.Sequencer
	newID           func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithSequencer sets the counter trade sequence ids are drawn from.
func WithSequencer(seq *sequence.Sequencer) Option {
	return func(e *Engine) {
		e.sequence = seq
	}
}

// WithIDGenerator sets the trade id generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// NewEngine creates a settlement engine with its own trade sequence starting at 1.
func NewEngine(
	ledger walletv1.Ledger,
	trades tradev1.Log,
	log logger.Interface,
	takerFeeRate, makerRewardRate decimal.Decimal,
	opts ...Option,
) *Engine {
	e := &Engine{
		ledger:          ledger,
		trades:          trades,
		logger:          log,
		takerFeeRate:    takerFeeRate,
		makerRewardRate: makerRewardRate,
		sequence:        sequence.New(0),
		newID:           func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Breakdown is the economic result of one fill.
type Breakdown struct {
	Notional    decimal.Decimal
	FeeBase     decimal.Decimal
	FeeQuote    decimal.Decimal
	RebateBase  decimal.Decimal
	RebateQuote decimal.Decimal
}

// Compute returns fees and rebates owed on m. Nothing is rounded.
func (e *Engine) Compute(m orderbookv1.Match) Breakdown {
	b := Breakdown{
		Notional:    m.Notional(),
		FeeBase:     decimal.Zero,
		FeeQuote:    decimal.Zero,
		RebateBase:  decimal.Zero,
		RebateQuote: decimal.Zero,
	}

	if m.Maker.IsBid() {
		b.RebateQuote = b.Notional.Mul(e.makerRewardRate)
	} else {
		b.RebateBase = m.Quantity.Mul(e.makerRewardRate)
	}

	if m.Taker.IsBid() {
		b.FeeBase = m.Quantity.Mul(e.takerFeeRate)
	} else {
		b.FeeQuote = b.Notional.Mul(e.takerFeeRate)
	}
	return b
}

// Settle moves funds for m between buyer, seller and the venue pool, consumes
// the filled part of both reservations and appends the trade. It does not fill
// the orders; the book does that once Settle returns without error.
func (e *Engine) Settle(ctx context.Context, pair pairv1.CurrencyPair, m orderbookv1.Match, now time.Time) (tradev1.Trade, error) {
	buyer, seller := m.Buyer(), m.Seller()
	b := e.Compute(m)

	// The base a seller delivers shrinks by the rebate it earns as maker;
	// FeeQuote is zero unless the seller is the taker, and symmetrically for the buyer.
	sellerEntries := []walletv1.Entry{
		{
			Leg:       walletv1.LegBase,
			Currency:  pair.BaseCurrency,
			Available: m.Quantity.Sub(b.RebateBase).Neg(),
			Blocked:   m.Quantity.Neg(),
		},
		{
			Leg:       walletv1.LegQuote,
			Currency:  pair.QuoteCurrency,
			Available: b.Notional.Sub(b.FeeQuote),
			Blocked:   decimal.Zero,
		},
	}
	buyerEntries := []walletv1.Entry{
		{
			Leg:       walletv1.LegQuote,
			Currency:  pair.QuoteCurrency,
			Available: b.Notional.Sub(b.RebateQuote).Neg(),
			Blocked:   b.Notional.Neg(),
		},
		{
			Leg:       walletv1.LegBase,
			Currency:  pair.BaseCurrency,
			Available: m.Quantity.Sub(b.FeeBase),
			Blocked:   decimal.Zero,
		},
	}

	if err := e.ledger.Post(ctx, seller.UserID, sellerEntries...); err != nil {
		return tradev1.Trade{}, errors.NewTracerf("settling seller %s of order %s", seller.UserID, seller.ID).Wrap(err)
	}
	if err := e.ledger.Post(ctx, buyer.UserID, buyerEntries...); err != nil {
		if rerr := e.ledger.Post(ctx, seller.UserID, reverse(sellerEntries)...); rerr != nil {
			e.logger.ErrorContext(ctx, errors.NewTracer("reverting seller posting").Wrap(rerr),
				logger.NewField("seller", seller.UserID),
				logger.NewField("order", seller.ID),
			)
		}
		return tradev1.Trade{}, errors.NewTracerf("settling buyer %s of order %s", buyer.UserID, buyer.ID).Wrap(err)
	}

	e.ledger.CreditPool(pair.BaseCurrency, b.FeeBase.Sub(b.RebateBase))
	e.ledger.CreditPool(pair.QuoteCurrency, b.FeeQuote.Sub(b.RebateQuote))

	buyer.Reserved = buyer.Reserved.Sub(b.Notional)
	seller.Reserved = seller.Reserved.Sub(m.Quantity)

	trade := tradev1.Trade{
		ID:           e.newID(),
		Price:        m.Price,
		Quantity:     m.Quantity,
		CurrencyPair: pair.Symbol,
		TradedAt:     now,
		TakerSide:    m.Taker.Side,
		SequenceID:   e.sequence.Next(),
		QuoteVolume:  b.Notional,
		MakerOrderID: m.Maker.ID,
		TakerOrderID: m.Taker.ID,
	}
	e.trades.Append(trade)

	e.logger.DebugContext(ctx, "trade settled",
		logger.NewField("pair", pair.Symbol),
		logger.NewField("sequence", trade.SequenceID),
		logger.NewField("price", trade.Price.String()),
		logger.NewField("quantity", trade.Quantity.String()),
		logger.NewField("maker", m.Maker.ID),
		logger.NewField("taker", m.Taker.ID),
	)
	return trade, nil
}

func reverse(entries []walletv1.Entry) []walletv1.Entry {
	out := make([]walletv1.Entry, len(entries))
	for i, e := range entries {
		out[i] = walletv1.Entry{
			Leg:       e.Leg,
			Currency:  e.Currency,
			Available: e.Available.Neg(),
			Blocked:   e.Blocked.Neg(),
		}
	}
	return out
}
