// Package cache stores generated study summaries in Redis so repeated
// queries do not spend another model call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "study-search:summary:"

// SummaryCache is a Redis-backed cache keyed by normalized query and model.
type SummaryCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewSummaryCache creates a cache whose entries expire after ttl.
func NewSummaryCache(client redis.UniversalClient, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Key returns the cache key for a query. Queries that differ only in case or
// surrounding/internal whitespace share a key.
func Key(model, query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	sum := sha256.Sum256([]byte(model + "\x00" + normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached summary and whether it was found.
func (c *SummaryCache) Get(ctx context.Context, model, query string) (string, bool, error) {
	val, err := c.client.Get(ctx, Key(model, query)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cached summary: %w", err)
	}
	return val, true, nil
}

// Set stores a summary.
func (c *SummaryCache) Set(ctx context.Context, model, query, summary string) error {
	if err := c.client.Set(ctx, Key(model, query), summary, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached summary: %w", err)
	}
	return nil
}
