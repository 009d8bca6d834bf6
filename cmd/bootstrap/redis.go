package bootstrap

import (
	"context"

	"chairtime/internal/infra/realtime"
	"chairtime/internal/pkg/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedis,
	),
)

func NewRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	client, cleanup, err := realtime.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return client, nil
}
