// internal/app/system/authcache/authcache.go
package authcache

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cache memoizes the acceptance check behind CanRead/CanWrite, keyed by
// (tripID, memberID). Entries expire after a TTL, and the one transition
// that flips a cached false to true (PENDING becoming ACCEPTED) invalidates
// its key explicitly at the moment it happens. Removal paths invalidate
// too, so a kicked member never keeps a stale true for the TTL window.
type Cache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[key]entry
}

type key struct {
	tripID   uuid.UUID
	memberID uuid.UUID
}

type entry struct {
	accepted bool
	expires  time.Time
}

// New creates a cache whose entries live for ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, m: make(map[key]entry)}
}

// Get returns the cached acceptance answer and whether one is present.
func (c *Cache) Get(tripID, memberID uuid.UUID) (accepted, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key{tripID, memberID}]
	if !ok || time.Now().After(e.expires) {
		delete(c.m, key{tripID, memberID})
		return false, false
	}
	return e.accepted, true
}

// Put stores the acceptance answer for the pair.
func (c *Cache) Put(tripID, memberID uuid.UUID, accepted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key{tripID, memberID}] = entry{accepted: accepted, expires: time.Now().Add(c.ttl)}
}

// Invalidate drops the cached answer for the pair.
func (c *Cache) Invalidate(tripID, memberID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key{tripID, memberID})
}

// Len reports the number of cached entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
