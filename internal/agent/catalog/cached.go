package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

const (
	searchKeyPrefix  = "catalog:%s:search:%s"
	productKeyPrefix = "catalog:%s:product:%s"
)

// CacheClient is the subset of *redis.Client the cache needs.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Cached memoises search results and product lookups in Redis. The cache is
// best effort: Redis failures are logged and the wrapped catalog answers.
type Cached struct {
	next Catalog
	rdb  CacheClient
	ttl  time.Duration
}

func NewCached(next Catalog, rdb CacheClient, ttl time.Duration) *Cached {
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

func (c *Cached) Name() string { return c.next.Name() }
func (c *Cached) Ready() bool  { return c.next.Ready() }

func (c *Cached) Search(ctx context.Context, params SearchParams) ([]string, error) {
	key := fmt.Sprintf(searchKeyPrefix, c.next.Name(), searchKey(params))

	var ids []string
	if c.get(ctx, key, &ids) && ids != nil {
		return ids, nil
	}

	ids, err := c.next.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, ids)
	return ids, nil
}

func (c *Cached) Lookup(ctx context.Context, id string) (*model.Product, error) {
	key := fmt.Sprintf(productKeyPrefix, c.next.Name(), id)

	var p model.Product
	if c.get(ctx, key, &p) {
		return &p, nil
	}

	found, err := c.next.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, found)
	return found, nil
}

func (c *Cached) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logx.Warn().Str("component", "catalog_cache").Str("key", key).Err(errx.WrapRedis(err)).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logx.Warn().Str("component", "catalog_cache").Str("key", key).Err(err).Msg("discarding corrupt cache entry")
		return false
	}
	return true
}

func (c *Cached) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logx.Warn().Str("component", "catalog_cache").Str("key", key).Err(errx.WrapRedis(err)).Msg("cache write failed")
	}
}

// searchKey hashes the normalised parameters so equivalent queries share an entry.
func searchKey(p SearchParams) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(p.Query)),
		strings.ToLower(strings.TrimSpace(p.Text)),
		floatKey(p.PriceMin),
		floatKey(p.PriceMax),
		p.currency(),
		strings.ToLower(p.Gender),
		intKey(p.Age),
		strings.ToLower(p.Preferences),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:16])
}

func floatKey(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *f)
}

func intKey(i *int) string {
	if i == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *i)
}
