package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "intelwatch:cache:"

// Redis shares cache entries between processes. Expiry is enforced by the
// server, so this backend ignores the injected clock.
type Redis struct {
	client *redis.Client
}

func NewRedis(opts *redis.Options) *Redis {
	return &Redis{client: redis.NewClient(opts)}
}

// Ping checks the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]alert.Alert, bool, error) {
	data, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	var value []alert.Alert
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []alert.Alert, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	if err := r.client.Set(ctx, redisPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
