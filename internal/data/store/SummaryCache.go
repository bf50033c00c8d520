package store

import (
	"context"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/data/redisStore"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"github.com/patrickmn/go-cache"
)

func summaryKey(url string) string {
	return "summary:" + url
}

type RedisSummaryCache struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisSummaryCache returns nil when Redis is offline.
func GetRedisSummaryCache(ctx context.Context) *RedisSummaryCache {
	s := redisStore.GetRedisStore(ctx, config.RedisSummaryStore)
	if s == nil {
		return nil
	}
	return NewRedisSummaryCache(s)
}

func NewRedisSummaryCache(s *redisStore.Store) *RedisSummaryCache {
	return &RedisSummaryCache{
		store:  s,
		logger: logger_i.NewLogger("SummaryCache"),
	}
}

func (c *RedisSummaryCache) GetSummary(ctx context.Context, url string) (string, bool) {
	val, err := c.store.Get(ctx, summaryKey(url))
	if err != nil {
		if !c.store.IsNil(err) {
			c.logger.WithTrace(ctx).Error("Error reading summary", "url", url, "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *RedisSummaryCache) SaveSummary(ctx context.Context, url string, summary string) error {
	return c.store.Set(ctx, summaryKey(url), summary, config.RedisSummaryTTL)
}

type InMemorySummaryCache struct {
	cache *cache.Cache
}

func InitInMemorySummaryCache() *InMemorySummaryCache {
	return &InMemorySummaryCache{
		cache: cache.New(config.RedisSummaryTTL, config.SessionCleanupInterval),
	}
}

func (c *InMemorySummaryCache) GetSummary(ctx context.Context, url string) (string, bool) {
	v, ok := c.cache.Get(summaryKey(url))
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *InMemorySummaryCache) SaveSummary(ctx context.Context, url string, summary string) error {
	c.cache.SetDefault(summaryKey(url), summary)
	return nil
}
