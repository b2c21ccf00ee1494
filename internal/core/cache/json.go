package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

func BookKey(id string) string { return "book:" + id }

// errAbsent keeps a nil load result out of redis.
var errAbsent = errors.New("cache: absent")

// GetOrLoadJSON is GetOrLoad for JSON values. A loader returning (nil, nil)
// is passed through and never cached, so a record created later is seen
// at once.
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration,
	load func(ctx context.Context) (*T, error)) (*T, error) {
	if c == nil {
		return load(ctx)
	}
	raw, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		switch {
		case err != nil:
			return nil, err
		case v == nil:
			return nil, errAbsent
		}
		return json.Marshal(v)
	})
	if errors.Is(err, errAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return &out, nil
}
