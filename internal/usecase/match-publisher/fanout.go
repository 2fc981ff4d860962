package matchpublisher

import (
	"context"

	matchpublisherv1 "github.com/lucaCambi77/valr/internal/domain/match-publisher/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
)

// Fanout hands trades to every publisher. A failing publisher does not stop
// the others; the first error is returned once all have run.
type Fanout struct {
	publishers map[string]matchpublisherv1.MatchPublisher
	order      []string
	logger     logger.Interface
}

var _ matchpublisherv1.MatchPublisher = (*Fanout)(nil)

// NewFanout creates an empty Fanout.
func NewFanout(log logger.Interface) *Fanout {
	return &Fanout{
		publishers: make(map[string]matchpublisherv1.MatchPublisher),
		logger:     log,
	}
}

// Add registers p under name. Publishers run in registration order.
func (f *Fanout) Add(name string, p matchpublisherv1.MatchPublisher) {
	if _, ok := f.publishers[name]; !ok {
		f.order = append(f.order, name)
	}
	f.publishers[name] = p
}

// Len returns the number of registered publishers.
func (f *Fanout) Len() int {
	return len(f.order)
}

// PublishTrades publishes trades to every registered publisher.
func (f *Fanout) PublishTrades(ctx context.Context, trades []tradev1.Trade) error {
	var first error
	for _, name := range f.order {
		if err := f.publishers[name].PublishTrades(ctx, trades); err != nil {
			f.logger.ErrorContext(ctx, errors.NewTracerf("publisher %s", name).Wrap(err),
				logger.NewField("publisher", name),
				logger.NewField("trades", len(trades)),
			)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
