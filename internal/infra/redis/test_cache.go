package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// TestLoader fetches test definitions from the primary store.
type TestLoader interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
}

// TestCache caches whole test definitions in Redis and falls back to a loader
// on cache miss. Tests are stored as JSON: SET test:{testID} {json} EX ttl
type TestCache struct {
	client *redis.Client
	loader TestLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewTestCache(client *redis.Client, loader TestLoader, ttl time.Duration) *TestCache {
	return &TestCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *TestCache) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	if test, ok := c.lookup(ctx, testID); ok {
		return test, nil
	}

	result, err, _ := c.sf.Do(testID, func() (interface{}, error) {
		// Re-check cache in case another instance filled it.
		if test, ok := c.lookup(ctx, testID); ok {
			return test, nil
		}

		test, err := c.loader.GetTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}

		data, err := json.Marshal(test)
		if err != nil {
			return domain.Test{}, err
		}
		if err := c.client.Set(ctx, c.key(testID), data, c.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache test %s: %v", testID, err)
		}
		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

// lookup treats any Redis failure as a miss so the loader stays authoritative.
func (c *TestCache) lookup(ctx context.Context, testID string) (domain.Test, bool) {
	data, err := c.client.Get(ctx, c.key(testID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached test %s: %v", testID, err)
		}
		return domain.Test{}, false
	}
	var test domain.Test
	if err := json.Unmarshal(data, &test); err != nil {
		return domain.Test{}, false
	}
	return test, true
}

func (c *TestCache) key(testID string) string {
	return "test:" + testID
}

func (c *TestCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
