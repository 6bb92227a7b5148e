// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// nav.go caches the sidebar data (category counts, top tags, popular
// posts) as JSON in Valkey. Entries expire after a short TTL and are
// dropped whenever a post or comment changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	navKeyPrefix = "nav:"

	// DefaultNavTTL bounds how stale sidebar data can get.
	DefaultNavTTL = 2 * time.Minute

	KeyCategories = navKeyPrefix + "categories"
	KeyTopTags    = navKeyPrefix + "tags"
)

// PopularKey is the cache key for the n most commented posts.
func PopularKey(n int) string {
	return fmt.Sprintf("%spopular:%d", navKeyPrefix, n)
}

// NavCache stores navigation data in Valkey. A nil *NavCache is valid and
// caches nothing.
type NavCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNavCache creates a navigation cache backed by the given Valkey client.
func NewNavCache(client *redis.Client, ttl time.Duration) *NavCache {
	if ttl == 0 {
		ttl = DefaultNavTTL
	}
	return &NavCache{client: client, ttl: ttl}
}

// Remember returns the cached value for key, or calls load and caches its
// result. Cache errors are logged and treated as misses; load errors are
// returned and nothing is cached.
func Remember[T any](ctx context.Context, nc *NavCache, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if nc.get(ctx, key, &v) {
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	nc.set(ctx, key, v)
	return v, nil
}

func (nc *NavCache) get(ctx context.Context, key string, dst any) bool {
	if nc == nil || nc.client == nil {
		return false
	}
	raw, err := nc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		slog.Warn("nav cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("nav cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("nav cache hit", "key", key)
	return true
}

func (nc *NavCache) set(ctx context.Context, key string, v any) {
	if nc == nil || nc.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("nav cache encode error", "key", key, "error", err)
		return
	}
	if err := nc.client.Set(ctx, key, raw, nc.ttl).Err(); err != nil {
		slog.Warn("nav cache set error", "key", key, "error", err)
	}
}

// Invalidate drops every navigation entry.
func (nc *NavCache) Invalidate(ctx context.Context) {
	if nc == nil || nc.client == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := nc.client.Scan(ctx, cursor, navKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("nav cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := nc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("nav cache delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	slog.Debug("nav cache invalidated", "deleted", deleted)
}
