package matchpublisher

import (
	"context"

	matchpublisherv1 "github.com/lucaCambi77/valr/internal/domain/match-publisher/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
)

// Archive stores published trades in a repository.
type Archive struct {
	repository tradev1.Repository
}

var _ matchpublisherv1.MatchPublisher = (*Archive)(nil)

// NewArchive creates an Archive writing to repository.
func NewArchive(repository tradev1.Repository) *Archive {
	return &Archive{repository: repository}
}

// PublishTrades inserts trades into the repository.
func (a *Archive) PublishTrades(ctx context.Context, trades []tradev1.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	return a.repository.InsertTrades(ctx, trades)
}
