package bootstrap

import (
	"context"

	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	"github.com/lucaCambi77/valr/internal/infrastructure/postgresql/trade"
)

// Repository holds the persistent sinks.
type Repository struct {
	TradeRepository tradev1.Repository
}

func (b *Bootstrap) registerRepository(_ context.Context) error {
	if b.Infrastructure.Postgres != nil {
		b.Repository.TradeRepository = trade.NewRepository(b.Infrastructure.Postgres, b.Logger)
	}
	return nil
}
