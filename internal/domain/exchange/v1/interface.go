package exchangev1

import (
	"context"

	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
)

// Usecase is the exchange core: matching, settlement and queries.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=exchangev1_mock
type Usecase interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResult, error)
	CancelOrder(ctx context.Context, req CancelOrderRequest) error
	OrderBook(ctx context.Context, pair string) (OrderBookView, error)
	TradeHistory(ctx context.Context, pair string, limit int) ([]tradev1.Trade, error)
	OrderStatus(ctx context.Context, pair, orderID string) (OrderStatusView, error)
}
