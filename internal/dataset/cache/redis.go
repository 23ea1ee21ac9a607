package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"afi/internal/dataset/models"
)

// DefaultRedisKey holds the serialized record set.
const DefaultRedisKey = "afi:records:v1"

// generationSuffix names the invalidation counter next to the record key.
const generationSuffix = ":gen"

// RedisCache shares the record set across server instances.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithKey overrides DefaultRedisKey.
func WithKey(key string) RedisOption {
	return func(c *RedisCache) {
		if key != "" {
			c.key = key
		}
	}
}

// NewRedisCache constructs a Redis-backed cache. A non-positive ttl means
// DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, opts ...RedisOption) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &RedisCache{client: client, key: DefaultRedisKey, ttl: ttl}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns the cached record set. A missing or expired key is a miss,
// not an error.
func (c *RedisCache) Get(ctx context.Context) ([]models.Record, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	var records []models.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, fmt.Errorf("decode cached records: %w", err)
	}
	return records, true, nil
}

var errStaleGeneration = errors.New("record cache invalidated since read")

func (c *RedisCache) generationKey() string {
	return c.key + generationSuffix
}

// Generation reads the invalidation counter. An absent counter is 0.
func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	return readGeneration(ctx, c.client, c.generationKey())
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, key string) (int64, error) {
	gen, err := cmd.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return gen, nil
}

// Set stores records read at generation gen with SET ... EX. The counter is
// WATCHed, so an Invalidate racing the write aborts it; Set then reports
// false.
func (c *RedisCache) Set(ctx context.Context, gen int64, records []models.Record) (bool, error) {
	if records == nil {
		records = []models.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return false, fmt.Errorf("encode records: %w", err)
	}

	genKey := c.generationKey()
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return true, nil
}

// Invalidate deletes the record set and advances the generation in one
// MULTI block.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key)
		pipe.Incr(ctx, c.generationKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", c.key, err)
	}
	return nil
}
