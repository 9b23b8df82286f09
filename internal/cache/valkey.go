// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides Valkey (Redis-compatible) client initialization
// and the public post listing cache.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyOptions describes how to reach Valkey.
type ValkeyOptions struct {
	Host     string
	Port     string
	Password string
	DB       int

	// Attempts is how many pings are tried before giving up. Values below
	// one mean a single attempt.
	Attempts int
}

// ConnectValkey creates a Valkey client and pings it, retrying with a
// doubling pause so the server can start alongside a cache that is still
// booting.
func ConnectValkey(ctx context.Context, opts ValkeyOptions) (*redis.Client, error) {
	addr := net.JoinHostPort(opts.Host, opts.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	attempts := max(opts.Attempts, 1)
	pause := 250 * time.Millisecond

	var err error
	for i := range attempts {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			slog.Info("valkey connected", "addr", addr, "db", opts.DB)
			return client, nil
		}
		if i == attempts-1 {
			break
		}

		slog.Warn("valkey ping failed, retrying", "addr", addr, "attempt", i+1, "error", err)
		select {
		case <-time.After(pause):
			pause *= 2
		case <-ctx.Done():
			client.Close()
			return nil, fmt.Errorf("valkey ping: %w", ctx.Err())
		}
	}

	client.Close()
	return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
}
