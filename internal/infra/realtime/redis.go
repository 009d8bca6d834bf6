package realtime

import (
	"context"
	"encoding/json"

	"chairtime/internal/pkg/config"
	"chairtime/internal/pkg/errs"
	"chairtime/internal/usecase/notify"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisPublisher fans events out over per-user pub/sub channels; the
// websocket gateway subscribes to "user:<id>".
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, nil, errs.Wrap(err, "failed to connect to redis")
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

func NewRedisPublisher(client *redis.Client) notify.Publisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID uuid.UUID, event string, payload any) error {
	envelope, err := json.Marshal(map[string]any{
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode push envelope")
	}

	if err := p.client.Publish(ctx, channelFor(userID), envelope).Err(); err != nil {
		return errs.Wrap(err, "failed to publish push event")
	}
	return nil
}

func channelFor(userID uuid.UUID) string {
	return "user:" + userID.String()
}
