package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
	"golang.org/x/sync/singleflight"
)

// TestLoader fetches test definitions from a backing store (e.g., Postgres).
type TestLoader interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
}

// TestCache caches tests with TTL to avoid repeated DB hits. Tests are
// immutable once created, so a cached copy never goes stale in content.
type TestCache struct {
	loader TestLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedTest
}

type cachedTest struct {
	test      domain.Test
	expiresAt time.Time
}

func NewTestCache(loader TestLoader, ttl time.Duration) *TestCache {
	return &TestCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedTest),
	}
}

func (c *TestCache) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	if test, ok := c.lookup(testID); ok {
		return test, nil
	}

	result, err, _ := c.sf.Do(testID, func() (interface{}, error) {
		if test, ok := c.lookup(testID); ok {
			return test, nil
		}

		test, err := c.loader.GetTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}

		c.mu.Lock()
		c.cache[testID] = cachedTest{
			test:      test,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

func (c *TestCache) lookup(testID string) (domain.Test, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[testID]; ok && entry.expiresAt.After(now) {
		return entry.test, true
	}
	return domain.Test{}, false
}

func (c *TestCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
