// Package catalogcache keeps joined listings in a key-value store, keyed by the
// fingerprint of the source files.
package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain/catalog"
)

// store is the consumer interface for the catalog cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// source is the uncached catalog: the file loader.
type source interface {
	Load(ctx context.Context) ([]catalog.Listing, error)
	Fingerprint(ctx context.Context) (string, error)
}

// CachedCatalog is a read-through cache over the file loader.
// Invalidation is by key: the key embeds the source fingerprint, so a rewritten
// source file produces a new key and the next Load reads from disk. The TTL only
// evicts keys of superseded fingerprints.
type CachedCatalog struct {
	inner      source
	store      store
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	inner source,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedCatalog {
	return &CachedCatalog{
		inner:      inner,
		store:      s,
		keyPrefix:  keyPrefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Load returns cached listings for the current fingerprint or loads them from disk.
// Store failures degrade to a direct load; they never fail the request.
func (c *CachedCatalog) Load(ctx context.Context) ([]catalog.Listing, error) {
	fp, err := c.inner.Fingerprint(ctx)
	if err != nil {
		return nil, fmt.Errorf("fingerprint catalog: %w", err)
	}
	key := c.cacheKey(fp)

	if listings, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return listings, nil
	}
	c.incCache("miss")

	listings, err := c.inner.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// Only cache when the files did not change while we were reading them.
	if after, err := c.inner.Fingerprint(ctx); err == nil && after == fp {
		c.putToCache(ctx, key, listings)
	}
	return listings, nil
}

func (c *CachedCatalog) cacheKey(fingerprint string) string {
	return c.keyPrefix + "catalog:" + fingerprint
}

func (c *CachedCatalog) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedCatalog) getFromCache(ctx context.Context, key string) ([]catalog.Listing, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.incCache("error")
			c.logger.Warn("Failed to get cached catalog", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var listings []catalog.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to decode cached catalog", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to drop corrupt catalog entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if listings == nil {
		listings = []catalog.Listing{}
	}
	return listings, true
}

func (c *CachedCatalog) putToCache(ctx context.Context, key string, listings []catalog.Listing) {
	data, err := json.Marshal(listings)
	if err != nil {
		c.logger.Warn("Failed to encode catalog", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to cache catalog", zap.String("key", key), zap.Error(err))
	}
}
