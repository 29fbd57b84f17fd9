// Package cache keeps recently fetched market data in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"finai/internal/domain"
	"finai/internal/logger"
)

const (
	quoteKeyPrefix   = "quote:"
	historyKeyPrefix = "history:"
)

// RedisCache implements domain.QuoteCache on redis
type RedisCache struct {
	client     *redis.Client
	quoteTTL   time.Duration
	historyTTL time.Duration
	logger     *logger.Logger
}

// NewRedisCache creates a new RedisCache
func NewRedisCache(client *redis.Client, quoteTTL, historyTTL time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{
		client:     client,
		quoteTTL:   quoteTTL,
		historyTTL: historyTTL,
		logger:     log,
	}
}

// GetQuote returns a cached quote for symbol
func (c *RedisCache) GetQuote(ctx context.Context, symbol string) (*domain.Quote, bool) {
	var quote domain.Quote
	if !c.get(ctx, quoteKeyPrefix+normalize(symbol), &quote) {
		return nil, false
	}
	return &quote, true
}

// SetQuote caches quote for the quote TTL
func (c *RedisCache) SetQuote(ctx context.Context, quote *domain.Quote) {
	c.set(ctx, quoteKeyPrefix+normalize(quote.Symbol), quote, c.quoteTTL)
}

// GetHistory returns a cached price history for symbol
func (c *RedisCache) GetHistory(ctx context.Context, symbol string) (*domain.PriceHistory, bool) {
	var history domain.PriceHistory
	if !c.get(ctx, historyKeyPrefix+normalize(symbol), &history) {
		return nil, false
	}
	return &history, true
}

// SetHistory caches history for the history TTL
func (c *RedisCache) SetHistory(ctx context.Context, history *domain.PriceHistory) {
	c.set(ctx, historyKeyPrefix+normalize(history.Symbol), history, c.historyTTL)
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) bool {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

func (c *RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NoopCache is used when no redis is configured
type NoopCache struct{}

func (NoopCache) GetQuote(context.Context, string) (*domain.Quote, bool)          { return nil, false }
func (NoopCache) SetQuote(context.Context, *domain.Quote)                         {}
func (NoopCache) GetHistory(context.Context, string) (*domain.PriceHistory, bool) { return nil, false }
func (NoopCache) SetHistory(context.Context, *domain.PriceHistory)                {}

var (
	_ domain.QuoteCache = (*RedisCache)(nil)
	_ domain.QuoteCache = NoopCache{}
)
