package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openretail/pos-backend/internal/application/settings"
)

const settingsKey = "pos:settings"

var _ settings.Cache = (*SettingsCache)(nil)

// SettingsCache shares the settings snapshot between instances through Redis.
type SettingsCache struct {
	rdb *redis.Client
}

// NewSettingsCache builds the cache over an existing client.
func NewSettingsCache(rdb *redis.Client) *SettingsCache {
	return &SettingsCache{rdb: rdb}
}

// Get loads the cached snapshot. Missing key is (nil, false, nil).
func (c *SettingsCache) Get(ctx context.Context) (settings.Settings, bool, error) {
	raw, err := c.rdb.Get(ctx, settingsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached settings: %w", err)
	}
	var s settings.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt entry behaves like a miss and is replaced on reload.
		return nil, false, nil
	}
	return s, true, nil
}

// Set stores the snapshot with the given TTL.
func (c *SettingsCache) Set(ctx context.Context, s settings.Settings, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := c.rdb.Set(ctx, settingsKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache settings: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *SettingsCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, settingsKey).Err(); err != nil {
		return fmt.Errorf("invalidate cached settings: %w", err)
	}
	return nil
}

// Noop is the cache used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context) (settings.Settings, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, settings.Settings, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context) error                            { return nil }
