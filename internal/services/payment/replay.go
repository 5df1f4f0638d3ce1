package payment

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sidequest_portal/internal/services/dto"
)

// ReplayCache запоминает успешный результат оформления по ключу
// (сессия + checkout_id). Повторная отправка той же формы получает первый
// результат, одновременные отправки выполняются один раз.
// Неудачи не кэшируются: с тем же checkout_id можно попробовать снова.
type ReplayCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]replayEntry
}

type replayEntry struct {
	result  dto.CheckoutResult
	expires time.Time
}

func NewReplayCache(ttl time.Duration) *ReplayCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReplayCache{ttl: ttl, now: time.Now, entries: make(map[string]replayEntry)}
}

// Do выполняет fn не более одного раза на ключ. second = true, если результат
// взят из кэша или из параллельного вызова.
func (c *ReplayCache) Do(key string, fn func() (*dto.CheckoutResult, error)) (*dto.CheckoutResult, bool, error) {
	if key == "" {
		res, err := fn()
		return res, false, err
	}
	if res, ok := c.lookup(key); ok {
		return res, true, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		if res, ok := c.lookup(key); ok {
			return res, nil
		}
		res, err := fn()
		if err != nil {
			return nil, err
		}
		c.store(key, *res)
		return res, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := *v.(*dto.CheckoutResult)
	if shared {
		res.Replayed = true
	}
	return &res, shared, nil
}

func (c *ReplayCache) lookup(key string) (*dto.CheckoutResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	res := e.result
	res.Replayed = true
	return &res, true
}

func (c *ReplayCache) store(key string, res dto.CheckoutResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = replayEntry{result: res, expires: now.Add(c.ttl)}
}

func (c *ReplayCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
