package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shoppingmate-ai/server/internal/agent/model"
)

type fakeRedis struct {
	data    map[string]string
	failGet bool
	failSet bool
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: map[string]string{}} }

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.failSet {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

type countingCatalog struct {
	Catalog
	searches int
	lookups  int
}

func (c *countingCatalog) Search(ctx context.Context, p SearchParams) ([]string, error) {
	c.searches++
	return c.Catalog.Search(ctx, p)
}

func (c *countingCatalog) Lookup(ctx context.Context, id string) (*model.Product, error) {
	c.lookups++
	return c.Catalog.Lookup(ctx, id)
}

func TestCachedSearchHit(t *testing.T) {
	inner := &countingCatalog{Catalog: NewMemory(nil)}
	c := NewCached(inner, newFakeRedis(), time.Minute)
	ctx := context.Background()

	first, err := c.Search(ctx, SearchParams{Query: "mug"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Search(ctx, SearchParams{Query: "  MUG "})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(first, []string{"6E92ZMYYFZ"}) {
		t.Fatalf("first=%v second=%v", first, second)
	}
	if inner.searches != 1 {
		t.Fatalf("inner searched %d times, want 1", inner.searches)
	}
}

func TestCachedEmptyResultIsCached(t *testing.T) {
	inner := &countingCatalog{Catalog: NewMemory(nil)}
	c := NewCached(inner, newFakeRedis(), time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ids, err := c.Search(ctx, SearchParams{Query: "laptop"})
		if err != nil {
			t.Fatal(err)
		}
		if ids == nil || len(ids) != 0 {
			t.Fatalf("ids = %#v, want empty non-nil", ids)
		}
	}
	if inner.searches != 1 {
		t.Fatalf("inner searched %d times, want 1", inner.searches)
	}
}

func TestCachedDistinguishesPriceBounds(t *testing.T) {
	inner := &countingCatalog{Catalog: NewMemory(nil)}
	c := NewCached(inner, newFakeRedis(), time.Minute)
	ctx := context.Background()

	under, _ := c.Search(ctx, SearchParams{Query: "watch", PriceMax: ptr(100.0)})
	over, _ := c.Search(ctx, SearchParams{Query: "watch", PriceMin: ptr(100.0)})
	if len(under) != 0 || len(over) != 1 {
		t.Fatalf("under=%v over=%v", under, over)
	}
}

func TestCachedBypassesRedisFailures(t *testing.T) {
	rdb := newFakeRedis()
	rdb.failGet, rdb.failSet = true, true
	inner := &countingCatalog{Catalog: NewMemory(nil)}
	c := NewCached(inner, rdb, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ids, err := c.Search(ctx, SearchParams{Query: "mug"})
		if err != nil {
			t.Fatalf("redis failure leaked: %v", err)
		}
		if len(ids) != 1 {
			t.Fatalf("ids = %v", ids)
		}
	}
	if inner.searches != 2 {
		t.Fatalf("inner searched %d times, want 2", inner.searches)
	}
}

func TestCachedLookup(t *testing.T) {
	inner := &countingCatalog{Catalog: NewMemory(nil)}
	c := NewCached(inner, newFakeRedis(), time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := c.Lookup(ctx, "6E92ZMYYFZ")
		if err != nil {
			t.Fatal(err)
		}
		if p.Name != "Mug" || p.Price.Float() < 8.98 {
			t.Fatalf("unexpected product %+v", p)
		}
	}
	if inner.lookups != 1 {
		t.Fatalf("inner looked up %d times, want 1", inner.lookups)
	}
	if _, err := c.Lookup(ctx, "NOPE"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCachedPropagatesCatalogErrors(t *testing.T) {
	c := NewCached(NewUnavailable("vector", errors.New("boom")), newFakeRedis(), time.Minute)
	if _, err := c.Search(context.Background(), SearchParams{Query: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if c.Ready() {
		t.Fatal("cache must report the wrapped backend's readiness")
	}
}
