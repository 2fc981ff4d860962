package bootstrap

import (
	"context"

	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/lucaCambi77/valr/pkg/postgresql"
	"github.com/lucaCambi77/valr/pkg/redis"
)

// Infrastructure holds the external clients. A nil client means the
// integration is disabled.
type Infrastructure struct {
	Redis    redis.Client
	Postgres postgresql.PostgreSQLClient
}

func (b *Bootstrap) registerInfrastructure(ctx context.Context) error {
	if b.Config.Redis.Enabled {
		client := redis.NewClient(b.Logger, &b.Config.Redis.Config)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		b.Infrastructure.Redis = client
		b.onClose(func() {
			if err := client.Disconnect(context.Background()); err != nil {
				b.Logger.Error(err, logger.Field{Key: "action", Value: "disconnect_redis"})
			}
		})
	}

	if b.Config.Postgres.Enabled {
		client, err := postgresql.NewClient(ctx, b.Config.Postgres.Config)
		if err != nil {
			return err
		}
		b.Infrastructure.Postgres = client
		b.onClose(client.Close)
	}

	return nil
}
