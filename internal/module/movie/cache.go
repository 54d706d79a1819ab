package movie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okwareddevnest/movie-discovery-app/internal/config"
)

const keyPrefix = "movies:"

// Cache stores JSON-encodable values with a TTL.
type Cache interface {
	// Get decodes the value at key into dest. A miss is (false, nil).
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// redisTimeout caps dial and I/O for each Redis call, so a cache outage
// adds a bounded delay to catalog requests.
const redisTimeout = 500 * time.Millisecond

// NewRedisClient creates a client for the configured Redis instance. It does
// not connect until first use and redials on later calls after an outage.
func NewRedisClient(cfg *config.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisTimeout,
		ReadTimeout:  redisTimeout,
		WriteTimeout: redisTimeout,
		MaxRetries:   -1,
	})
}

// RedisCache is a Cache backed by Redis string values.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// CachedCatalog is a read-through cache in front of another Catalog. Cache
// failures are logged and the upstream is used directly. Errors are never
// cached.
type CachedCatalog struct {
	next     Catalog
	cache    Cache
	ttl      time.Duration
	language string
}

// NewCachedCatalog wraps next. language is part of every key so a config
// change does not serve stale translations.
func NewCachedCatalog(next Catalog, cache Cache, ttl time.Duration, language string) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, ttl: ttl, language: language}
}

func (c *CachedCatalog) Trending(ctx context.Context, page int) (*MoviePage, error) {
	return cached(ctx, c, c.key("trending", page), func() (*MoviePage, error) {
		return c.next.Trending(ctx, page)
	})
}

func (c *CachedCatalog) Search(ctx context.Context, query string, page int) (*MoviePage, error) {
	q := url.QueryEscape(strings.ToLower(query))
	return cached(ctx, c, c.key("search", page, q), func() (*MoviePage, error) {
		return c.next.Search(ctx, query, page)
	})
}

func (c *CachedCatalog) Details(ctx context.Context, id int) (*MovieDetails, error) {
	return cached(ctx, c, c.key("details", id), func() (*MovieDetails, error) {
		return c.next.Details(ctx, id)
	})
}

func (c *CachedCatalog) Credits(ctx context.Context, id int) (*Credits, error) {
	return cached(ctx, c, c.key("credits", id), func() (*Credits, error) {
		return c.next.Credits(ctx, id)
	})
}

func (c *CachedCatalog) Videos(ctx context.Context, id int) ([]Video, error) {
	v, err := cached(ctx, c, c.key("videos", id), func() (*[]Video, error) {
		videos, err := c.next.Videos(ctx, id)
		if err != nil {
			return nil, err
		}
		return &videos, nil
	})
	if err != nil {
		return nil, err
	}
	return *v, nil
}

func (c *CachedCatalog) Similar(ctx context.Context, id, page int) (*MoviePage, error) {
	return cached(ctx, c, c.key("similar", id, page), func() (*MoviePage, error) {
		return c.next.Similar(ctx, id, page)
	})
}

func (c *CachedCatalog) key(kind string, parts ...any) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(c.language)
	for _, p := range parts {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}

func cached[T any](ctx context.Context, c *CachedCatalog, key string, load func() (*T, error)) (*T, error) {
	var hit T
	ok, err := c.cache.Get(ctx, key, &hit)
	if err != nil {
		slog.WarnContext(ctx, "catalog cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if ok {
		return &hit, nil
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, v, c.ttl); err != nil {
		slog.WarnContext(ctx, "catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return v, nil
}
