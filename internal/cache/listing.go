// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"lilyblog/internal/models"
)

const (
	// listingKeyPrefix is the Valkey key prefix for cached listing pages.
	listingKeyPrefix = "posts:"

	// listingGenKey holds the listing generation. It sits outside the
	// page prefix so InvalidateAll's scan never deletes it.
	listingGenKey = "posts-gen"

	// DefaultListingTTL is how long a listing page stays cached.
	DefaultListingTTL = time.Minute
)

// ListingCache keeps serialized public listing pages in Valkey. A nil
// *ListingCache is valid and caches nothing, so callers never need to
// check whether Valkey is configured. Errors are logged and treated as
// misses.
//
// Pages are stored under the generation current when their query started.
// InvalidateAll bumps the generation, so a page computed before an
// invalidation and stored after it is never served.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a listing cache backed by the given Valkey client.
// Returns nil when client is nil.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

func pageKey(gen int64, key string) string {
	return listingKeyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

// Generation returns the current listing generation. ok is false when the
// cache is off or unreachable; the caller then skips Get and Set.
func (lc *ListingCache) Generation(ctx context.Context) (gen int64, ok bool) {
	if lc == nil {
		return 0, false
	}
	gen, err := lc.client.Get(ctx, listingGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		slog.Warn("listing cache generation error", "error", err)
		return 0, false
	}
	return gen, true
}

// Get returns the page cached for key in generation gen.
func (lc *ListingCache) Get(ctx context.Context, gen int64, key string) (*models.PostPage, bool) {
	if lc == nil {
		return nil, false
	}

	val, err := lc.client.Get(ctx, pageKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("listing cache get error", "key", key, "error", err)
		return nil, false
	}

	var page models.PostPage
	if err := json.Unmarshal(val, &page); err != nil {
		slog.Warn("listing cache decode error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("listing cache hit", "key", key)
	return &page, true
}

// Set stores page under key in generation gen with the configured TTL.
func (lc *ListingCache) Set(ctx context.Context, gen int64, key string, page *models.PostPage) {
	if lc == nil || page == nil {
		return
	}

	val, err := json.Marshal(page)
	if err != nil {
		slog.Warn("listing cache encode error", "key", key, "error", err)
		return
	}
	if err := lc.client.Set(ctx, pageKey(gen, key), val, lc.ttl).Err(); err != nil {
		slog.Warn("listing cache set error", "key", key, "error", err)
	}
}

// InvalidateAll starts a new generation and drops every cached listing
// page. Any post mutation can move posts between pages, so nothing finer
// is attempted.
func (lc *ListingCache) InvalidateAll(ctx context.Context) {
	if lc == nil {
		return
	}

	if err := lc.client.Incr(ctx, listingGenKey).Err(); err != nil {
		slog.Warn("listing cache generation bump error", "error", err)
	}

	var cursor uint64
	var deleted int
	for {
		keys, next, err := lc.client.Scan(ctx, cursor, listingKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("listing cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("listing cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("listing cache cleared", "deleted", deleted)
	}
}
