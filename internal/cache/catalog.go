package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"storefront-proxy/internal/vtex"
)

// Upstream is the catalog being cached.
type Upstream interface {
	Brands(ctx context.Context) ([]vtex.Brand, error)
	CategoryTree(ctx context.Context, depth int) ([]vtex.CategoryTree, error)
	Pagetype(ctx context.Context, slug string) (*vtex.PortalPagetype, error)
}

// Catalog serves catalog lookups from a Store, falling back to Upstream.
// Concurrent misses for the same key share one upstream call. Store failures
// are logged and treated as misses; upstream errors are never cached.
type Catalog struct {
	upstream Upstream
	store    Store
	prefix   string
	ttl      time.Duration
	logger   *slog.Logger
	sfg      singleflight.Group
}

// NewCatalog creates a caching Catalog. prefix namespaces keys, typically
// by store account.
func NewCatalog(upstream Upstream, store Store, prefix string, ttl time.Duration, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		upstream: upstream,
		store:    store,
		prefix:   "catalog:" + prefix + ":",
		ttl:      ttl,
		logger:   logger,
	}
}

// Brands returns the brand list.
func (c *Catalog) Brands(ctx context.Context) ([]vtex.Brand, error) {
	return cached(ctx, c, "brands", func(ctx context.Context) ([]vtex.Brand, error) {
		return c.upstream.Brands(ctx)
	})
}

// CategoryTree returns the category tree down to depth levels.
func (c *Catalog) CategoryTree(ctx context.Context, depth int) ([]vtex.CategoryTree, error) {
	return cached(ctx, c, "tree:"+strconv.Itoa(depth), func(ctx context.Context) ([]vtex.CategoryTree, error) {
		return c.upstream.CategoryTree(ctx, depth)
	})
}

// Pagetype resolves a storefront path to its page type.
func (c *Catalog) Pagetype(ctx context.Context, slug string) (*vtex.PortalPagetype, error) {
	return cached(ctx, c, "pagetype:"+slug, func(ctx context.Context) (*vtex.PortalPagetype, error) {
		return c.upstream.Pagetype(ctx, slug)
	})
}

func cached[T any](ctx context.Context, c *Catalog, name string, fetch func(context.Context) (T, error)) (T, error) {
	key := c.prefix + name

	v, err, _ := c.sfg.Do(key, func() (any, error) {
		// Shared by every caller collapsed onto key.
		ctx := context.WithoutCancel(ctx)
		var value T
		data, err := c.store.Get(ctx, key)
		if err == nil {
			if err := json.Unmarshal(data, &value); err == nil {
				return value, nil
			}
			c.logger.Warn("discarding corrupt cache entry", "key", key)
		} else if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}

		value, err = fetch(ctx)
		if err != nil {
			return value, err
		}

		if data, err := json.Marshal(value); err == nil {
			if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
				c.logger.Warn("cache set failed", "key", key, "error", err)
			}
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
