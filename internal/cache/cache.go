// Package cache stores per-source alert lists so a source is not refetched
// more often than its freshness interval.
package cache

import (
	"context"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
)

// DefaultTTL is how long a source's alerts stay fresh.
const DefaultTTL = 30 * time.Minute

// Cache is a key to alert-list store with per-entry expiry. A Get that
// follows a Set for the same key within ttl returns the stored value.
type Cache interface {
	Get(ctx context.Context, key string) ([]alert.Alert, bool, error)
	Set(ctx context.Context, key string, value []alert.Alert, ttl time.Duration) error
	Close() error
}

// Key composes the cache key for one source and timeframe.
func Key(sourceName string, tf alert.Timeframe) string {
	return sourceName + "|" + string(tf)
}
