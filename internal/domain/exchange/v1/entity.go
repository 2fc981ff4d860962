package exchangev1

import (
	"time"

	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultTradeHistoryLimit is used when a history query asks for no positive limit.
const DefaultTradeHistoryLimit = 100

var (
	// ErrOrderNotFound is returned when cancelling or querying an order that is not there.
	ErrOrderNotFound = errors.NewErrorDetails("order not found", string(errors.OrderNotFoundError), "orderId")
	// ErrDuplicateOrder is returned when a caller supplied id is already taken.
	ErrDuplicateOrder = errors.NewErrorDetails("duplicate order id", string(errors.DuplicateOrderError), "id")
	// ErrInvalidOrder is returned for malformed placement requests.
	ErrInvalidOrder = errors.NewErrorDetails("invalid order", string(errors.InvalidOrderError), "order")
)

// PlaceOrderRequest asks the venue to place a limit order. ID is optional.
type PlaceOrderRequest struct {
	ID       string           `json:"id,omitempty"`
	Pair     string           `json:"pair"`
	Side     orderbookv1.Side `json:"side"`
	Price    decimal.Decimal  `json:"price"`
	Quantity decimal.Decimal  `json:"quantity"`
	UserID   string           `json:"user"`
}

// CancelOrderRequest asks the venue to cancel a resting order.
type CancelOrderRequest struct {
	OrderID string `json:"orderId"`
	Pair    string `json:"pair"`
}

// PlaceOrderResult carries the id of the placed order and the trades it caused.
// A FAILED order still yields a result; its status tells why.
type PlaceOrderResult struct {
	OrderID string
	Status  orderbookv1.Status
	Trades  []tradev1.Trade
}

// OrderSummary aggregates the resting orders of one price level.
type OrderSummary struct {
	Side         orderbookv1.Side `json:"side"`
	Quantity     string           `json:"quantity"`
	Price        string           `json:"price"`
	CurrencyPair string           `json:"currencyPair"`
	OrderCount   int              `json:"orderCount"`
}

// OrderBookView is the aggregated depth of a pair, best price first on each side.
type OrderBookView struct {
	Asks           []OrderSummary `json:"asks"`
	Bids           []OrderSummary `json:"bids"`
	LastChange     time.Time      `json:"lastChange"`
	SequenceNumber uint64         `json:"sequenceNumber"`
}

// OrderStatusView projects an order for status queries.
type OrderStatusView struct {
	OrderID           string             `json:"orderId"`
	OrderStatusType   orderbookv1.Status `json:"orderStatusType"`
	CurrencyPair      string             `json:"currencyPair"`
	OriginalPrice     string             `json:"originalPrice"`
	RemainingQuantity string             `json:"remainingQuantity"`
	OriginalQuantity  string             `json:"originalQuantity"`
	OrderSide         orderbookv1.Side   `json:"orderSide"`
	OrderType         string             `json:"orderType"`
	FailedReason      string             `json:"failedReason,omitempty"`
	OrderUpdatedAt    time.Time          `json:"orderUpdatedAt"`
	OrderCreatedAt    time.Time          `json:"orderCreatedAt"`
}
