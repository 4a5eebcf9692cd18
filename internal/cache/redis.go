// Package cache keeps fetched source payloads in Redis between loads.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "comparador:payload:"

// New creates a Redis client and checks it answers.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// Payloads stores raw response bodies keyed by source URL. A nil *Payloads
// is a valid, always-missing cache.
type Payloads struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPayloads(client *redis.Client, ttl time.Duration) *Payloads {
	return &Payloads{client: client, ttl: ttl}
}

// Key is the Redis key for a source URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached body for url. ok is false on a miss.
func (p *Payloads) Get(ctx context.Context, url string) (body []byte, ok bool, err error) {
	if p == nil || p.client == nil {
		return nil, false, nil
	}
	b, err := p.client.Get(ctx, Key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Payloads) Set(ctx context.Context, url string, body []byte) error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Set(ctx, Key(url), body, p.ttl).Err()
}

// Invalidate drops every cached payload, used before a forced reload.
func (p *Payloads) Invalidate(ctx context.Context) (int, error) {
	if p == nil || p.client == nil {
		return 0, nil
	}
	var n int
	iter := p.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := p.client.Del(ctx, iter.Val()).Err(); err != nil {
			return n, err
		}
		n++
	}
	return n, iter.Err()
}
