package bootstrap

import (
	"context"

	"github.com/lucaCambi77/valr/internal/app/engine"
	"github.com/lucaCambi77/valr/pkg/config"
	"github.com/lucaCambi77/valr/pkg/httplib/healthcheck"
	"github.com/lucaCambi77/valr/pkg/logger"
)

// Bootstrap holds every wired component of the exchange process.
type Bootstrap struct {
	Config         *config.Config
	Logger         logger.Interface
	Infrastructure Infrastructure
	Repository     Repository
	Usecase        Usecase
	Engine         *engine.Engine

	closers []func()
}

// BootstrapConfig is the config for the bootstrap.
type BootstrapConfig struct {
	Config *config.Config
	Logger logger.Interface
}

// Init connects the enabled integrations, seeds pairs and wallets and wires
// the exchange. On error everything opened so far is closed.
func (b *Bootstrap) Init(ctx context.Context, cfg BootstrapConfig) error {
	b.Config = cfg.Config
	b.Logger = cfg.Logger

	steps := []func(context.Context) error{
		b.registerInfrastructure,
		b.registerRepository,
		b.registerUsecase,
		b.seed,
		b.registerEngine,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			b.Close()
			return err
		}
	}
	return nil
}

// HealthCheck reports the reachability of every enabled integration.
func (b *Bootstrap) HealthCheck() healthcheck.HealthCheck {
	checkers := make(map[string]healthcheck.Checker)
	if b.Infrastructure.Redis != nil {
		checkers["redis"] = b.Infrastructure.Redis.Ping
	}
	if b.Infrastructure.Postgres != nil {
		checkers["postgres"] = b.Infrastructure.Postgres.Ping
	}
	return healthcheck.HealthCheck{Checkers: checkers}
}

// Close releases resources in reverse order of acquisition.
func (b *Bootstrap) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func (b *Bootstrap) onClose(fn func()) {
	b.closers = append(b.closers, fn)
}
