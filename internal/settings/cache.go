package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/redis"
)

const cacheKeyName = "business_settings"

// CachedProvider serves business settings from Redis for a short TTL and
// falls back to the wrapped provider on a miss or any cache failure.
type CachedProvider struct {
	next  Provider
	cache redis.Cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewCachedProvider wraps next with a Redis read-through cache.
func NewCachedProvider(next Provider, cache redis.Cache, ttl time.Duration, logg *logger.Logger) (*CachedProvider, error) {
	if next == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl, logg: logg}, nil
}

func (p *CachedProvider) GetBusinessSettings(ctx context.Context) (BusinessSettings, error) {
	key := p.cache.CacheKey(cacheKeyName)

	raw, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached BusinessSettings
		if decodeErr := json.Unmarshal([]byte(raw), &cached); decodeErr == nil {
			return cached, nil
		}
		p.logg.Warn(ctx, "settings.cache_decode_failed")
	case !redis.IsMiss(err):
		p.logg.Warn(ctx, fmt.Sprintf("settings.cache_read_failed: %v", err))
	}

	settings, err := p.next.GetBusinessSettings(ctx)
	if err != nil {
		return BusinessSettings{}, err
	}

	encoded, err := json.Marshal(settings)
	if err == nil {
		err = p.cache.Set(ctx, key, string(encoded), p.ttl)
	}
	if err != nil {
		p.logg.Warn(ctx, fmt.Sprintf("settings.cache_write_failed: %v", err))
	}
	return settings, nil
}

// Invalidate drops the cached settings so the next read hits the database.
func (p *CachedProvider) Invalidate(ctx context.Context) error {
	return p.cache.Del(ctx, p.cache.CacheKey(cacheKeyName))
}
