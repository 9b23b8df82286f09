// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// window holds one client's request timestamps inside the sliding window.
type window struct {
	mu   sync.Mutex
	hits []time.Time
}

// RateLimiter limits requests per client IP. With a Valkey client the
// counters are shared by every instance behind the load balancer (fixed
// window per key); without one, or while Valkey is failing, each process
// keeps its own sliding window.
type RateLimiter struct {
	name   string
	limit  int
	period time.Duration
	shared *redis.Client

	mu      sync.RWMutex
	clients map[string]*window
	stopCh  chan struct{}
}

// NewRateLimiter creates a limiter that allows limit requests per period.
// name namespaces the shared counters, so the login and comment limiters
// never share budgets. client may be nil. A background goroutine prunes the
// local windows until Stop is called.
func NewRateLimiter(name string, client *redis.Client, limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		name:    name,
		limit:   limit,
		period:  period,
		shared:  client,
		clients: make(map[string]*window),
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// allow reports whether key may make another request, and records it.
func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	if rl.shared != nil {
		ok, err := rl.allowShared(ctx, key)
		if err == nil {
			return ok
		}
		slog.Warn("shared rate limit unavailable, using local window", "limiter", rl.name, "error", err)
	}
	return rl.allowLocal(key)
}

// allowShared counts the request in Valkey. The first hit of a window sets
// the expiry; later hits leave it alone.
func (rl *RateLimiter) allowShared(ctx context.Context, key string) (bool, error) {
	k := rateLimitPrefix + rl.name + ":" + key

	pipe := rl.shared.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, rl.period)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", rl.name, err)
	}
	return incr.Val() <= int64(rl.limit), nil
}

// allowLocal applies the in-process sliding window.
func (rl *RateLimiter) allowLocal(key string) bool {
	rl.mu.RLock()
	w, ok := rl.clients[key]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		if w, ok = rl.clients[key]; !ok {
			w = &window{}
			rl.clients[key] = w
		}
		rl.mu.Unlock()
	}

	now := time.Now()
	cutoff := now.Add(-rl.period)

	w.mu.Lock()
	defer w.mu.Unlock()

	live := w.hits[:0]
	for _, ts := range w.hits {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	w.hits = live

	if len(w.hits) >= rl.limit {
		return false
	}
	w.hits = append(w.hits, now)
	return true
}

// cleanup drops local windows with no hit inside the period.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.period)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, w := range rl.clients {
		w.mu.Lock()
		idle := len(w.hits) == 0 || !w.hits[len(w.hits)-1].After(cutoff)
		w.mu.Unlock()

		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rejects over-budget clients with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(r.Context(), ip) {
			slog.Warn("rate limited",
				"limiter", rl.name,
				"ip", ip,
				"path", r.URL.Path,
				"request_id", RequestIDFromCtx(r.Context()),
			)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rl.period.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
