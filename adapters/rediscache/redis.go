// Package rediscache shares the session cache between server instances.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/proplanet/ecoledger/core"
)

const (
	defaultPrefix  = "ecoledger:session:"
	defaultTTL     = 5 * time.Minute
	requestTimeout = 2 * time.Second
)

var _ core.CacheWithStats = (*Cache)(nil)

// Cache implements core.Cache on a Redis server. Entries expire through
// Redis TTLs, so MaxSize from core.CacheConfig does not apply.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits    int64
	misses  int64
	sets    int64
	deletes int64
}

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

func New(opts Options) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewWithClient(client, opts.TTL, opts.Prefix)
}

func NewWithClient(client *redis.Client, ttl time.Duration, prefix string) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Ping checks connectivity; used at startup.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// record mirrors core.Session including the token hash, which core.Session
// keeps out of its own JSON.
type record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"tokenHash"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Cache) Get(tokenHash string) (*core.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+tokenHash).Bytes()
	if errors.Is(err, redis.Nil) {
		atomic.AddInt64(&c.misses, 1)
		return nil, core.ErrCacheNotFound
	}
	if err != nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}

	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, fmt.Errorf("failed to decode cached session: %w", err)
	}

	atomic.AddInt64(&c.hits, 1)
	return &core.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		IPAddress: r.IPAddress,
		UserAgent: r.UserAgent,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// Set stores session for the cache TTL, or until the session expires if
// that comes first.
func (c *Cache) Set(tokenHash string, session *core.Session) error {
	ttl := c.ttl
	if left := time.Until(session.ExpiresAt); left < ttl {
		ttl = left
	}
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(record{
		ID:        session.ID,
		UserID:    session.UserID,
		TokenHash: session.TokenHash,
		IPAddress: session.IPAddress,
		UserAgent: session.UserAgent,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+tokenHash, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}
	atomic.AddInt64(&c.sets, 1)
	return nil
}

func (c *Cache) Delete(tokenHash string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	n, err := c.client.Del(ctx, c.prefix+tokenHash).Result()
	if err != nil {
		return fmt.Errorf("failed to delete cached session: %w", err)
	}
	atomic.AddInt64(&c.deletes, n)
	return nil
}

// Clear removes every key under the cache prefix.
func (c *Cache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*requestTimeout)
	defer cancel()

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Sets:    atomic.LoadInt64(&c.sets),
		Deletes: atomic.LoadInt64(&c.deletes),
		TTL:     c.ttl,
	}
}
