package matchpublisherv1

import (
	"context"

	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
)

// MatchPublisher fans executed trades out of the core.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=matchpublisherv1_mock
type MatchPublisher interface {
	PublishTrades(ctx context.Context, trades []tradev1.Trade) error
}
