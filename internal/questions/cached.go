package questions

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedLoader caches the question pool with TTL to avoid hitting the backing
// store on every quiz start.
type CachedLoader struct {
	loader Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	pool      []domain.Question
	expiresAt time.Time
}

func NewCachedLoader(loader Loader, ttl time.Duration) *CachedLoader {
	return &CachedLoader{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if c.pool != nil && c.expiresAt.After(now) {
		pool := c.pool
		c.mu.RUnlock()
		return pool, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.pool != nil && c.expiresAt.After(now) {
			pool := c.pool
			c.mu.RUnlock()
			return pool, nil
		}
		c.mu.RUnlock()

		pool, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.pool = pool
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CachedLoader) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
