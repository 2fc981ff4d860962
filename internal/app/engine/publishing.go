package engine

import (
	"context"
	"sync"

	exchangev1 "github.com/lucaCambi77/valr/internal/domain/exchange/v1"
	matchpublisherv1 "github.com/lucaCambi77/valr/internal/domain/match-publisher/v1"
	snapshotv1 "github.com/lucaCambi77/valr/internal/domain/snapshot/v1"
	"github.com/lucaCambi77/valr/pkg/logger"
)

// Publishing wraps an exchange so every state change leaves the process:
// trades go to the publisher and the pair's book view to the snapshot store.
// Publication failures are logged and never undo the change.
type Publishing struct {
	exchangev1.Usecase

	publisher matchpublisherv1.MatchPublisher
	snapshots snapshotv1.Store
	logger    logger.Interface

	// mu orders snapshot writes so a stale view never overwrites a newer one.
	mu sync.Mutex
}

var _ exchangev1.Usecase = (*Publishing)(nil)

// NewPublishing wraps inner. publisher and snapshots may be nil.
func NewPublishing(
	inner exchangev1.Usecase,
	publisher matchpublisherv1.MatchPublisher,
	snapshots snapshotv1.Store,
	log logger.Interface,
) *Publishing {
	return &Publishing{
		Usecase:   inner,
		publisher: publisher,
		snapshots: snapshots,
		logger:    log,
	}
}

// PlaceOrder places the order, then publishes its trades and the new book view.
func (p *Publishing) PlaceOrder(ctx context.Context, req exchangev1.PlaceOrderRequest) (exchangev1.PlaceOrderResult, error) {
	res, err := p.Usecase.PlaceOrder(ctx, req)
	if err != nil {
		return res, err
	}

	if len(res.Trades) > 0 && p.publisher != nil {
		if err := p.publisher.PublishTrades(ctx, res.Trades); err != nil {
			p.logger.ErrorContext(ctx, err,
				logger.Field{Key: "action", Value: "publish_trades"},
				logger.Field{Key: "order", Value: res.OrderID},
			)
		}
	}
	p.Snapshot(ctx, req.Pair)
	return res, nil
}

// CancelOrder cancels the order, then publishes the new book view.
func (p *Publishing) CancelOrder(ctx context.Context, req exchangev1.CancelOrderRequest) error {
	if err := p.Usecase.CancelOrder(ctx, req); err != nil {
		return err
	}
	p.Snapshot(ctx, req.Pair)
	return nil
}

// Snapshot stores the current book view of pair.
func (p *Publishing) Snapshot(ctx context.Context, pair string) {
	if p.snapshots == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	view, err := p.Usecase.OrderBook(ctx, pair)
	if err != nil {
		p.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "read_book"}, logger.Field{Key: "pair", Value: pair})
		return
	}
	if err := p.snapshots.Store(ctx, &snapshotv1.Snapshot{Pair: pair, Book: view}); err != nil {
		p.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "store_snapshot"}, logger.Field{Key: "pair", Value: pair})
	}
}
