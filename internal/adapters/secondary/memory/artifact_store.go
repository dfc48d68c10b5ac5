package memory

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"markdown-viewer-service/internal/core/domain"
	output "markdown-viewer-service/internal/core/ports/output"
)

// DefaultSweepInterval matches the hourly cleanup of the local backend.
const DefaultSweepInterval = time.Hour

// ArtifactStore keeps artifacts in process memory. Expiry is enforced lazily
// on Get and eagerly by Sweep.
type ArtifactStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Artifact
	ttl   time.Duration
	now   func() time.Time
}

var _ output.ArtifactStore = (*ArtifactStore)(nil)

// NewArtifactStore creates an empty store with the given TTL.
func NewArtifactStore(ttl time.Duration) *ArtifactStore {
	return &ArtifactStore{
		items: make(map[string]*domain.Artifact),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *ArtifactStore) WithClock(now func() time.Time) *ArtifactStore {
	s.now = now
	return s
}

func (s *ArtifactStore) Put(ctx context.Context, artifact *domain.Artifact) (string, error) {
	id, err := domain.NewArtifactID()
	if err != nil {
		return "", err
	}

	stored := artifact.Clone()
	stored.ID = id
	stored.CreatedAt = s.now()

	s.mu.Lock()
	s.items[id] = stored
	s.mu.Unlock()

	return id, nil
}

func (s *ArtifactStore) Get(ctx context.Context, id string) (*domain.Artifact, error) {
	s.mu.RLock()
	item, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}

	if item.ExpiredAt(s.now(), s.ttl) {
		s.mu.Lock()
		// Re-check under the write lock; the sweeper may have won.
		if cur, ok := s.items[id]; ok && cur == item {
			delete(s.items, id)
		}
		s.mu.Unlock()
		return nil, domain.ErrArtifactNotFound
	}

	return item.Clone(), nil
}

// Count returns the number of records that have not expired.
func (s *ArtifactStore) Count(ctx context.Context) (int, error) {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	live := 0
	for _, item := range s.items {
		if !item.ExpiredAt(now, s.ttl) {
			live++
		}
	}
	return live, nil
}

// Sweep removes every expired record and returns how many were dropped.
func (s *ArtifactStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, item := range s.items {
		if item.ExpiredAt(now, s.ttl) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps on every tick of interval until ctx is done.
func (s *ArtifactStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.Sweep()
			count, _ := s.Count(ctx)
			log.WithFields(log.Fields{
				"removed": removed,
				"items":   count,
			}).Info("artifact sweep completed")
		}
	}
}
