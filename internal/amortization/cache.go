package amortization

import (
	"sync"

	"spv-projection/internal/model"
)

type cacheKey struct {
	loanAmount float64
	rate       float64
	termYears  int
}

// Cache memoizes schedules by (loan, rate, term). It is safe for concurrent
// use and meant to live for one range run; nothing is ever evicted.
type Cache struct {
	mu    sync.RWMutex
	store map[cacheKey][]model.AmortYear

	hits   int
	misses int
}

func NewCache() *Cache {
	return &Cache{store: make(map[cacheKey][]model.AmortYear)}
}

// Table returns the cached schedule, computing it on first use. A nil cache
// always computes. Callers must not modify the returned slice.
func (c *Cache) Table(loanAmount, rate float64, termYears int) ([]model.AmortYear, error) {
	if c == nil {
		return Table(loanAmount, rate, termYears)
	}
	key := cacheKey{loanAmount: loanAmount, rate: rate, termYears: termYears}

	c.mu.RLock()
	sched, ok := c.store[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return sched, nil
	}

	sched, err := Table(loanAmount, rate, termYears)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.store[key]; ok {
		c.hits++
		return existing, nil
	}
	c.misses++
	c.store[key] = sched
	return sched, nil
}

// Len returns the number of distinct schedules held.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
