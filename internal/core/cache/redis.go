package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var lookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "library_cache_lookups_total", Help: "Read-through cache lookups by outcome"},
	[]string{"result"},
)

func init() { prometheus.MustRegister(lookups) }

// Cache is a read-through byte cache in front of redis. A nil *Cache is
// valid: every lookup goes straight to the loader.
type Cache struct {
	rdb   *redis.Client
	group singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{rdb: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// GetOrLoad returns the cached bytes for key or runs load and stores its
// result for ttl. A failing redis degrades to calling load.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return load(ctx)
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		lookups.WithLabelValues("hit").Inc()
		return b, nil
	case errors.Is(err, redis.Nil):
		lookups.WithLabelValues("miss").Inc()
	default:
		lookups.WithLabelValues("error").Inc()
	}

	// concurrent misses for one key share a single load
	v, err, _ := c.group.Do(key, func() (any, error) {
		gen, genErr := c.generation(ctx, key)
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			c.storeIfCurrent(ctx, key, b, ttl, gen)
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// genTTL only has to outlive a single load.
const genTTL = time.Hour

func genKey(key string) string { return key + ":gen" }

func (c *Cache) generation(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Get(ctx, genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// storeIfCurrent writes b unless key was invalidated after gen was read,
// so a load that raced a write never caches the older row.
func (c *Cache) storeIfCurrent(ctx context.Context, key string, b []byte, ttl time.Duration, gen int64) {
	g := genKey(key)
	_ = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, g).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			lookups.WithLabelValues("stale").Inc()
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, ttl)
			return nil
		})
		return err
	}, g)
}

// Invalidate drops keys and bumps their generation. Errors are ignored: a
// stale entry still expires after its ttl.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	_, _ = c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		for _, k := range keys {
			p.Incr(ctx, genKey(k))
			p.Expire(ctx, genKey(k), genTTL)
		}
		return nil
	})
}
