package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"lovehome/internal/adapters/observability"
)

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// NewWithClient wires an existing client (tests point this at miniredis).
func NewWithClient(c *redis.Client) *Cache { return &Cache{c: c} }

func (r *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return nil, false, nil
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		return nil, false, err
	}
	observability.ObserveCache("redis", "hit")
	return v, true, nil
}

func (r *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, val, ttl).Err()
}

func (r *Cache) GetField(ctx context.Context, key, field string) ([]byte, bool, error) {
	v, err := r.c.HGet(ctx, key, field).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return nil, false, nil
	}
	if err != nil {
		observability.ObserveCache("redis", "error")
		return nil, false, err
	}
	observability.ObserveCache("redis", "hit")
	return v, true, nil
}

// SetField stores one field of a shared record and refreshes the record
// TTL in the same transaction, so the value can never outlive its expiry
// nor land without one.
func (r *Cache) SetField(ctx context.Context, key, field string, val []byte, ttl time.Duration) error {
	observability.ObserveCache("redis", "set")
	pipe := r.c.TxPipeline()
	pipe.HSet(ctx, key, field, val)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}
