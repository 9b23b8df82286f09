// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides cookie-based admin sessions. Session payloads
// live in Valkey with automatic TTL expiry; without a Valkey client they
// are kept in process memory, which suits development and tests.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "lily_session"

	// DefaultTTL is how long a session lives before automatic expiry.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Data is the session payload: the authenticated admin's identity.
type Data struct {
	AdminID   int32     `json:"admin_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// backend persists raw session payloads by id.
type backend interface {
	set(ctx context.Context, id string, payload []byte, ttl time.Duration) error
	get(ctx context.Context, id string) ([]byte, error) // nil, nil when missing
	del(ctx context.Context, id string) error
}

// Store manages session lifecycle.
type Store struct {
	backend backend
	ttl     time.Duration
	secure  bool
}

// NewStore creates a session store. A nil client keeps sessions in memory.
// secure sets the Secure flag on the cookie and should be true behind TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	var b backend = &memoryBackend{items: make(map[string]memoryItem)}
	if client != nil {
		b = valkeyBackend{client: client}
	}
	return &Store{backend: b, ttl: DefaultTTL, secure: secure}
}

// Create generates a new session, stores it, and sets the session cookie
// on the response. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.backend.set(ctx, id, payload, s.ttl); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})

	return id, nil
}

// Get retrieves session data using the session ID from the request
// cookie. Returns nil if no valid session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil // No cookie = no session (not an error)
	}

	payload, err := s.backend.get(ctx, cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if payload == nil {
		return nil, nil
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &data, nil
}

// Destroy removes the session and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil // No cookie, nothing to destroy
	}

	if err := s.backend.del(ctx, cookie.Value); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		MaxAge:   -1,
	})

	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type valkeyBackend struct {
	client *redis.Client
}

func (v valkeyBackend) set(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	return v.client.Set(ctx, keyPrefix+id, payload, ttl).Err()
}

func (v valkeyBackend) get(ctx context.Context, id string) ([]byte, error) {
	payload, err := v.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return payload, err
}

func (v valkeyBackend) del(ctx context.Context, id string) error {
	return v.client.Del(ctx, keyPrefix+id).Err()
}

type memoryItem struct {
	payload []byte
	expires time.Time
}

type memoryBackend struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

func (m *memoryBackend) set(_ context.Context, id string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for k, it := range m.items {
		if now.After(it.expires) {
			delete(m.items, k)
		}
	}
	m.items[id] = memoryItem{payload: payload, expires: now.Add(ttl)}
	return nil
}

func (m *memoryBackend) get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if time.Now().After(it.expires) {
		delete(m.items, id)
		return nil, nil
	}
	return it.payload, nil
}

func (m *memoryBackend) del(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}
