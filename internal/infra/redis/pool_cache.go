package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// PoolLoader fetches a raw question pool from a backing source (e.g., the trivia API).
type PoolLoader interface {
	LoadPool(ctx context.Context, difficulty domain.Difficulty, amount int) ([]domain.RawQuestion, error)
}

// PoolCache caches raw question pools in Redis and falls back to a loader on cache miss.
// Pools are stored as JSON: SET trivia:pool:{difficulty}:{amount} [...] EX ttl
// RawQuestion.Encoded has no JSON form, so the envelope carries it.
type PoolCache struct {
	client *redis.Client
	loader PoolLoader
	ttl    time.Duration
	log    logrus.FieldLogger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

type cachedPool struct {
	Encoded bool                 `json:"encoded"`
	Records []domain.RawQuestion `json:"records"`
}

func NewPoolCache(client *redis.Client, loader PoolLoader, ttl time.Duration, log logrus.FieldLogger) *PoolCache {
	return &PoolCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *PoolCache) LoadPool(ctx context.Context, difficulty domain.Difficulty, amount int) ([]domain.RawQuestion, error) {
	key := c.key(difficulty, amount)
	if pool, ok := c.read(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := c.read(ctx, key); ok {
			return pool, nil
		}

		pool, err := c.loader.LoadPool(ctx, difficulty, amount)
		if err != nil {
			return nil, err
		}
		c.write(ctx, key, pool)
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.RawQuestion(nil), result.([]domain.RawQuestion)...), nil
}

func (c *PoolCache) read(ctx context.Context, key string) ([]domain.RawQuestion, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).WithField("key", key).Warn("read cached pool")
		}
		return nil, false
	}
	var cached cachedPool
	if err := json.Unmarshal(data, &cached); err != nil || len(cached.Records) == 0 {
		return nil, false
	}
	for i := range cached.Records {
		cached.Records[i].Encoded = cached.Encoded
	}
	return cached.Records, true
}

// write is best effort: a cache failure must not fail the quiz start.
func (c *PoolCache) write(ctx context.Context, key string, pool []domain.RawQuestion) {
	ttl := c.ttlWithJitter()
	if ttl <= 0 || len(pool) == 0 {
		return
	}
	data, err := json.Marshal(cachedPool{Encoded: pool[0].Encoded, Records: pool})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("write cached pool")
	}
}

func (c *PoolCache) key(difficulty domain.Difficulty, amount int) string {
	return "trivia:pool:" + string(difficulty) + ":" + strconv.Itoa(amount)
}

func (c *PoolCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
