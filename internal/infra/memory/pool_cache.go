package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// PoolLoader fetches a raw question pool from a backing source (e.g., the trivia API).
type PoolLoader interface {
	LoadPool(ctx context.Context, difficulty domain.Difficulty, amount int) ([]domain.RawQuestion, error)
}

// PoolCache keeps raw question pools with a TTL so repeated quiz starts do not refetch them.
// Failed loads are never cached.
type PoolCache struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedPool
}

type cachedPool struct {
	pool      []domain.RawQuestion
	expiresAt time.Time
}

func NewPoolCache(loader PoolLoader, ttl time.Duration) *PoolCache {
	return &PoolCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPool),
	}
}

func (c *PoolCache) LoadPool(ctx context.Context, difficulty domain.Difficulty, amount int) ([]domain.RawQuestion, error) {
	key := poolKey(difficulty, amount)
	if pool, ok := c.lookup(key); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if pool, ok := c.lookup(key); ok {
			return pool, nil
		}

		pool, err := c.loader.LoadPool(ctx, difficulty, amount)
		if err != nil {
			return nil, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			c.cache[key] = cachedPool{pool: pool, expiresAt: c.clock().Add(ttl)}
			c.mu.Unlock()
		}
		return clonePool(pool), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.RawQuestion), nil
}

func (c *PoolCache) lookup(key string) ([]domain.RawQuestion, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		return clonePool(entry.pool), true
	}
	return nil, false
}

// StaticPoolLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticPoolLoader struct {
	pools map[domain.Difficulty][]domain.RawQuestion
}

func NewStaticPoolLoader(pools map[domain.Difficulty][]domain.RawQuestion) *StaticPoolLoader {
	return &StaticPoolLoader{pools: pools}
}

func (l *StaticPoolLoader) LoadPool(_ context.Context, difficulty domain.Difficulty, _ int) ([]domain.RawQuestion, error) {
	if pool, ok := l.pools[difficulty]; ok && len(pool) > 0 {
		return clonePool(pool), nil
	}
	return nil, domain.ErrMalformedResponse
}

func (c *PoolCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func poolKey(difficulty domain.Difficulty, amount int) string {
	return string(difficulty) + ":" + strconv.Itoa(amount)
}

func clonePool(pool []domain.RawQuestion) []domain.RawQuestion {
	return append([]domain.RawQuestion(nil), pool...)
}
