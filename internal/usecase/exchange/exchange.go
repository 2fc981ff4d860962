package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	exchangev1 "github.com/lucaCambi77/valr/internal/domain/exchange/v1"
	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	pairv1 "github.com/lucaCambi77/valr/internal/domain/pair/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	"github.com/lucaCambi77/valr/internal/usecase/orderbook"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/lucaCambi77/valr/pkg/sequence"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Settler books one match and returns the resulting trade.
type Settler interface {
	Settle(ctx context.Context, pair pairv1.CurrencyPair, match orderbookv1.Match, now time.Time) (tradev1.Trade, error)
}

// market is the state of one pair. mu serializes every placement, cancellation
// and read of the pair's orders.
type market struct {
	mu         sync.Mutex
	pair       pairv1.CurrencyPair
	book       *orderbook.Orderbook
	lastChange time.Time
}

// Exchange is the matching engine with its query side. Pairs are independent:
// operations on different pairs run concurrently, while wallet updates are
// serialized by the ledger.
type Exchange struct {
	pairs    pairv1.Registry
	wallets  walletv1.Store
	ledger   walletv1.Ledger
	trades   tradev1.Log
	settler  Settler
	logger   logger.Interface
	clock    func() time.Time
	revision *sequence.Sequencer
	arrival  *sequence.Sequencer
	newID    func() string

	mu      sync.Mutex
	markets map[string]*market
	orders  map[string]*orderbookv1.Order
}

var _ exchangev1.Usecase = (*Exchange)(nil)

// NewExchange creates an exchange with empty books.
func NewExchange(
	pairs pairv1.Registry,
	wallets walletv1.Store,
	ledger walletv1.Ledger,
	trades tradev1.Log,
	settler Settler,
	log logger.Interface,
	opts ...Option,
) *Exchange {
	e := &Exchange{
		pairs:    pairs,
		wallets:  wallets,
		ledger:   ledger,
		trades:   trades,
		settler:  settler,
		logger:   log,
		clock:    time.Now,
		revision: sequence.New(0),
		arrival:  sequence.New(0),
		newID:    func() string { return ulid.Make().String() },
		markets:  make(map[string]*market),
		orders:   make(map[string]*orderbookv1.Order),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exchange) market(pair pairv1.CurrencyPair) *market {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[pair.Symbol]
	if !ok {
		m = &market{pair: pair, book: orderbook.NewOrderbook(pair.Symbol)}
		e.markets[pair.Symbol] = m
	}
	return m
}

func (e *Exchange) register(order *orderbookv1.Order) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.orders[order.ID]; exists {
		return errors.NewErrorDetails(fmt.Sprintf("Order %s already exists", order.ID),
			string(errors.DuplicateOrderError), "id")
	}
	e.orders[order.ID] = order
	return nil
}

func (e *Exchange) lookup(id string) (*orderbookv1.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders[id]
	return o, ok
}

func validate(req exchangev1.PlaceOrderRequest) error {
	be := errors.NewBaseError()
	if !req.Side.Valid() {
		be.AddErrorDetails(errors.NewErrorDetails("side must be BUY or SELL", string(errors.InvalidOrderError), "side"))
	}
	if !req.Price.IsPositive() {
		be.AddErrorDetails(errors.NewErrorDetails("price must be positive", string(errors.InvalidOrderError), "price"))
	}
	if !req.Quantity.IsPositive() {
		be.AddErrorDetails(errors.NewErrorDetails("quantity must be positive", string(errors.InvalidOrderError), "quantity"))
	}
	if req.UserID == "" {
		be.AddErrorDetails(errors.NewErrorDetails("user is required", string(errors.InvalidOrderError), "user"))
	}
	if be.HasDetails() {
		return be
	}
	return nil
}

func reservationCurrency(pair pairv1.CurrencyPair, order *orderbookv1.Order) string {
	if order.IsBid() {
		return pair.QuoteCurrency
	}
	return pair.BaseCurrency
}

// PlaceOrder reserves funds for the order, matches it against the opposite side
// and rests whatever is left. Insufficient funds and self trades are reported
// through the order status, not as errors.
func (e *Exchange) PlaceOrder(ctx context.Context, req exchangev1.PlaceOrderRequest) (exchangev1.PlaceOrderResult, error) {
	if err := validate(req); err != nil {
		return exchangev1.PlaceOrderResult{}, err
	}
	pair, err := e.pairs.Resolve(req.Pair)
	if err != nil {
		return exchangev1.PlaceOrderResult{}, err
	}
	if _, err := e.wallets.Get(ctx, req.UserID); err != nil {
		return exchangev1.PlaceOrderResult{}, err
	}

	id := req.ID
	if id == "" {
		id = e.newID()
	}

	m := e.market(pair)
	m.mu.Lock()
	defer m.mu.Unlock()

	now := e.clock()
	order := orderbookv1.NewOrder(id, req.UserID, pair.Symbol, req.Side, req.Price, req.Quantity, now)
	if err := e.register(order); err != nil {
		return exchangev1.PlaceOrderResult{}, err
	}
	order.Sequence = e.arrival.Next()

	trades, err := e.place(ctx, m, order, now)
	m.lastChange = now
	e.revision.Next()
	if err != nil {
		e.logger.ErrorContext(ctx, errors.NewTracerf("placing order %s", order.ID).Wrap(err),
			logger.NewField("pair", pair.Symbol),
			logger.NewField("user", order.UserID),
		)
		return exchangev1.PlaceOrderResult{}, err
	}

	e.logger.DebugContext(ctx, "order placed",
		logger.NewField("order", order.ID),
		logger.NewField("pair", pair.Symbol),
		logger.NewField("side", order.Side),
		logger.NewField("status", order.Status),
		logger.NewField("trades", len(trades)),
	)
	return exchangev1.PlaceOrderResult{OrderID: order.ID, Status: order.Status, Trades: trades}, nil
}

// place runs under m.mu.
func (e *Exchange) place(ctx context.Context, m *market, order *orderbookv1.Order, now time.Time) ([]tradev1.Trade, error) {
	leg, currency := order.ReservationLeg(), reservationCurrency(m.pair, order)
	required := order.ReservationFor(order.Quantity)

	ok, err := e.ledger.TryReserve(ctx, order.UserID, leg, currency, required)
	if err != nil {
		return nil, err
	}
	if !ok {
		order.Fail(orderbookv1.ReasonInsufficientBalance, now)
		e.logger.WarnContext(ctx, "order rejected",
			logger.NewField("order", order.ID),
			logger.NewField("reason", order.FailedReason),
			logger.NewField("required", required.String()),
			logger.NewField("currency", currency),
		)
		return nil, nil
	}
	order.Reserved = required

	var trades []tradev1.Trade
	_, outcome, err := m.book.Match(order, now, func(match orderbookv1.Match) error {
		trade, err := e.settler.Settle(ctx, m.pair, match, now)
		if err != nil {
			return err
		}
		trades = append(trades, trade)
		return nil
	})
	if err != nil {
		return trades, err
	}

	switch {
	case outcome == orderbookv1.OutcomeSelfTrade:
		order.Fail(orderbookv1.ReasonSelfTrade, now)
		e.logger.WarnContext(ctx, "order rejected",
			logger.NewField("order", order.ID),
			logger.NewField("reason", order.FailedReason),
			logger.NewField("filled", order.Filled.String()),
		)
		return trades, e.release(ctx, m.pair, order, order.Reserved)

	case order.Remaining().IsPositive():
		// A buyer filled below its limit holds more than the rest needs.
		if excess := order.Reserved.Sub(order.ReservationFor(order.Remaining())); excess.IsPositive() {
			if err := e.release(ctx, m.pair, order, excess); err != nil {
				return trades, err
			}
		}
		return trades, m.book.Add(order)

	default:
		return trades, e.release(ctx, m.pair, order, order.Reserved)
	}
}

func (e *Exchange) release(ctx context.Context, pair pairv1.CurrencyPair, order *orderbookv1.Order, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	if err := e.ledger.Release(ctx, order.UserID, order.ReservationLeg(), reservationCurrency(pair, order), amount); err != nil {
		return err
	}
	order.Reserved = order.Reserved.Sub(amount)
	return nil
}

// CancelOrder removes a resting order and releases what is left of its reservation.
func (e *Exchange) CancelOrder(ctx context.Context, req exchangev1.CancelOrderRequest) error {
	pair, err := e.pairs.Resolve(req.Pair)
	if err != nil {
		return err
	}

	m := e.market(pair)
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.book.Get(req.OrderID)
	if !ok {
		return errors.NewErrorDetails(
			fmt.Sprintf("Order %s does not exists or it has already been fulfilled", req.OrderID),
			string(errors.OrderNotFoundError), "orderId")
	}

	now := e.clock()
	if err := m.book.Remove(order); err != nil {
		return err
	}
	if err := e.release(ctx, pair, order, order.Reserved); err != nil {
		e.logger.ErrorContext(ctx, errors.NewTracerf("cancelling order %s", order.ID).Wrap(err),
			logger.NewField("pair", pair.Symbol),
			logger.NewField("user", order.UserID),
		)
		return err
	}
	order.Cancel(now)
	m.lastChange = now
	e.revision.Next()

	e.logger.DebugContext(ctx, "order cancelled",
		logger.NewField("order", order.ID),
		logger.NewField("pair", pair.Symbol),
		logger.NewField("remaining", order.Remaining().String()),
	)
	return nil
}

// OrderBook aggregates the resting orders of pair per price level.
func (e *Exchange) OrderBook(_ context.Context, symbol string) (exchangev1.OrderBookView, error) {
	pair, err := e.pairs.Resolve(symbol)
	if err != nil {
		return exchangev1.OrderBookView{}, err
	}

	m := e.market(pair)
	m.mu.Lock()
	defer m.mu.Unlock()

	return exchangev1.OrderBookView{
		Asks:           summarize(pair, orderbookv1.SideSell, m.book.Levels(orderbookv1.SideSell)),
		Bids:           summarize(pair, orderbookv1.SideBuy, m.book.Levels(orderbookv1.SideBuy)),
		LastChange:     m.lastChange,
		SequenceNumber: e.revision.Current(),
	}, nil
}

func summarize(pair pairv1.CurrencyPair, side orderbookv1.Side, levels []*orderbookv1.Limit) []exchangev1.OrderSummary {
	out := make([]exchangev1.OrderSummary, 0, len(levels))
	for _, l := range levels {
		out = append(out, exchangev1.OrderSummary{
			Side:         side,
			Quantity:     pair.Truncate(l.TotalVolume()).String(),
			Price:        l.Price.String(),
			CurrencyPair: pair.ShortName,
			OrderCount:   l.OrderCount(),
		})
	}
	return out
}

// TradeHistory returns the latest trades of pair, newest first.
func (e *Exchange) TradeHistory(_ context.Context, symbol string, limit int) ([]tradev1.Trade, error) {
	pair, err := e.pairs.Resolve(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = exchangev1.DefaultTradeHistoryLimit
	}
	return e.trades.History(pair.Symbol, limit), nil
}

// OrderStatus projects the order with orderID, which must belong to pair.
func (e *Exchange) OrderStatus(_ context.Context, symbol, orderID string) (exchangev1.OrderStatusView, error) {
	pair, err := e.pairs.Resolve(symbol)
	if err != nil {
		return exchangev1.OrderStatusView{}, err
	}

	order, ok := e.lookup(orderID)
	if !ok || order.Pair != pair.Symbol {
		return exchangev1.OrderStatusView{}, errors.NewErrorDetails(
			fmt.Sprintf("Order %s not found for pair %s", orderID, pair.Symbol),
			string(errors.OrderNotFoundError), "orderId")
	}

	m := e.market(pair)
	m.mu.Lock()
	defer m.mu.Unlock()

	return exchangev1.OrderStatusView{
		OrderID:           order.ID,
		OrderStatusType:   order.Status,
		CurrencyPair:      pair.Symbol,
		OriginalPrice:     order.Price.String(),
		RemainingQuantity: order.Remaining().String(),
		OriginalQuantity:  order.Quantity.String(),
		OrderSide:         order.Side,
		OrderType:         orderbookv1.OrderTypeLimit,
		FailedReason:      order.FailedReason,
		OrderUpdatedAt:    order.UpdatedAt,
		OrderCreatedAt:    order.CreatedAt,
	}, nil
}
