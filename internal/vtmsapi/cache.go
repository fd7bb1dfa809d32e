package vtmsapi

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

// Cache tags. A mutation bumps the version of its tag so later reads miss.
const (
	TagDesignation = "Designation"
	TagPermission  = "Permission"
)

const cacheKeyPrefix = "vtms_api"

// Cache stores upstream list responses in Redis under versioned tag keys.
// A nil *Cache disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Version returns the current version of tag, initialising it when missing.
func (c *Cache) Version(ctx context.Context, tag string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := versionKey(tag)
	if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
		return 0, err
	}
	return c.client.Get(ctx, key).Int64()
}

// BuildKey composes the cache key for tag scoped to the token owner.
func (c *Cache) BuildKey(ctx context.Context, tag, token string, parts ...string) (string, error) {
	ver, err := c.Version(ctx, tag)
	if err != nil {
		return "", err
	}
	segments := append([]string{cacheKeyPrefix, tag, fingerprint(token)}, parts...)
	return fmt.Sprintf("%s:v%d", strings.Join(segments, ":"), ver), nil
}

// FetchJSON loads a cached value into dest or populates it using loader.
// Concurrent misses for one key share a single loader call. Redis failures
// fall back to the loader; loader errors are never cached.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("vtmsapi: cache loader required")
	}
	if c == nil || c.client == nil {
		return loadInto(ctx, dest, loader)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(payload, dest); jsonErr == nil {
			return nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("vtmsapi cache read", slog.String("key", key), slog.Any("error", err))
	}

	ch := c.group.DoChan(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("vtmsapi cache write", slog.String("key", key), slog.Any("error", err))
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Invalidate bumps the version of every tag.
func (c *Cache) Invalidate(ctx context.Context, tags ...string) error {
	if c == nil || c.client == nil {
		return nil
	}
	for _, tag := range tags {
		if err := c.client.Incr(ctx, versionKey(tag)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func loadInto(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func versionKey(tag string) string {
	return cacheKeyPrefix + ":version:" + tag
}

func fingerprint(token string) string {
	if token == "" {
		return "anonymous"
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
