package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/envutil"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

// SummaryCache holds the dashboard summary for a short window so repeated
// dashboard polls don't re-run the aggregate query. Optional: nil when
// REDIS_ADDR is unset.
type SummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewSummaryCache returns nil (cache disabled) when REDIS_ADDR is unset or
// the server is unreachable at startup.
func NewSummaryCache(ctx context.Context, baseLog *logger.Logger) *SummaryCache {
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil
	}
	log := baseLog.With("component", "SummaryCache")

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, summary cache disabled", "addr", addr, "error", err)
		_ = rdb.Close()
		return nil
	}

	ttl := time.Duration(envutil.Int("SUMMARY_CACHE_TTL_SECONDS", 30)) * time.Second
	log.Info("Summary cache enabled", "addr", addr, "ttl", ttl.String())
	return &SummaryCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *SummaryCache) Get(ctx context.Context, key string) (*domain.DeliverableSummary, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Summary cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var summary domain.DeliverableSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func (c *SummaryCache) Set(ctx context.Context, key string, summary *domain.DeliverableSummary) {
	if c == nil || summary == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Summary cache set failed", "key", key, "error", err)
	}
}

// Invalidate drops every summary key. Called after writes that change the
// aggregate counts.
func (c *SummaryCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, "summary:*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.rdb.Del(ctx, iter.Val()).Err()
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("Summary cache invalidate failed", "error", err)
	}
}

func (c *SummaryCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
