package services

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultDedupCacheSize = 2048
	DefaultDedupTTL       = 10 * time.Minute
)

// EventDeduper remembers recently seen platform event ids so a redelivered
// event is dropped instead of producing a second artifact.
type EventDeduper struct {
	mu    sync.Mutex
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
	now   func() time.Time
}

func NewEventDeduper(size int, ttl time.Duration) (*EventDeduper, error) {
	if size <= 0 {
		size = DefaultDedupCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	cache, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, fmt.Errorf("event deduper init: %w", err)
	}
	return &EventDeduper{cache: cache, ttl: ttl, now: time.Now}, nil
}

// Seen reports whether eventID was recorded within the TTL and records it
// otherwise. Empty ids are never considered duplicates.
func (d *EventDeduper) Seen(eventID string) bool {
	if d == nil || eventID == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if ts, ok := d.cache.Get(eventID); ok {
		if now.Sub(ts) <= d.ttl {
			return true
		}
		d.cache.Remove(eventID)
	}
	d.cache.Add(eventID, now)
	return false
}
