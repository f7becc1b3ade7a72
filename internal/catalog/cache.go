package catalog

import (
	"sync"
	"time"
)

// Cache holds the most recently built catalog for a bounded duration. A
// survey id change invalidates the entry regardless of age.
type Cache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	surveyID string
	catalog  *Catalog
	storedAt time.Time
}

func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now}
}

func (c *Cache) Get(surveyID string) (*Catalog, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog == nil || c.surveyID != surveyID {
		return nil, false
	}
	if c.now().Sub(c.storedAt) >= c.ttl {
		return nil, false
	}
	return c.catalog, true
}

func (c *Cache) Put(surveyID string, cat *Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surveyID = surveyID
	c.catalog = cat
	c.storedAt = c.now()
}
