package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markdown-viewer-service/internal/core/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestArtifact() *domain.Artifact {
	tenant := "T123"
	return &domain.Artifact{
		HTML:           "<h1>Hi</h1>",
		Title:          "Hi",
		FileName:       "hi.md",
		FileType:       domain.FileTypeDocument,
		UploadedBy:     "U1",
		ConversationID: "C1",
		TenantID:       &tenant,
	}
}

func TestArtifactStore_PutGet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	store := NewArtifactStore(time.Hour).WithClock(clock.Now)
	ctx := context.Background()

	id, err := store.Put(ctx, newTestArtifact())
	require.NoError(t, err)
	assert.True(t, domain.ValidArtifactID(id))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)

	want := newTestArtifact()
	want.ID = id
	want.CreatedAt = clock.Now()
	assert.Equal(t, want, got)
}

func TestArtifactStore_RecordsShareNoPointers(t *testing.T) {
	store := NewArtifactStore(time.Hour)
	ctx := context.Background()

	input := newTestArtifact()
	id, err := store.Put(ctx, input)
	require.NoError(t, err)

	*input.TenantID = "T-caller"

	first, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, first.TenantID)
	assert.Equal(t, "T123", *first.TenantID)

	*first.TenantID = "T-reader"

	second, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "T123", *second.TenantID)
}

func TestArtifactStore_GetUnknown(t *testing.T) {
	store := NewArtifactStore(time.Hour)

	_, err := store.Get(context.Background(), "0000000000000000")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestArtifactStore_ExpiredLooksLikeMissing(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewArtifactStore(time.Hour).WithClock(clock.Now)
	ctx := context.Background()

	id, err := store.Put(ctx, newTestArtifact())
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = store.Get(ctx, id)
	require.NoError(t, err, "artifact is still live exactly at the TTL boundary")

	clock.Advance(time.Millisecond)
	_, expiredErr := store.Get(ctx, id)
	_, missingErr := store.Get(ctx, "ffffffffffffffff")
	assert.ErrorIs(t, expiredErr, domain.ErrArtifactNotFound)
	assert.Equal(t, missingErr, expiredErr)

	assert.Empty(t, store.items, "lazy expiry removes the record")
}

func TestArtifactStore_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewArtifactStore(24 * time.Hour).WithClock(clock.Now)
	ctx := context.Background()

	oldID, err := store.Put(ctx, newTestArtifact())
	require.NoError(t, err)

	clock.Advance(30 * 24 * time.Hour)
	freshID, err := store.Put(ctx, newTestArtifact())
	require.NoError(t, err)

	assert.Equal(t, 1, store.Sweep())

	assert.Len(t, store.items, 1)
	assert.Contains(t, store.items, freshID)
	assert.NotContains(t, store.items, oldID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestArtifactStore_CountSkipsExpired(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewArtifactStore(time.Minute).WithClock(clock.Now)
	ctx := context.Background()

	_, err := store.Put(ctx, newTestArtifact())
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	_, err = store.Put(ctx, newTestArtifact())
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestArtifactStore_ConcurrentPutsAreUnique(t *testing.T) {
	store := NewArtifactStore(time.Hour)
	ctx := context.Background()

	const workers, perWorker = 16, 500
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := store.Put(ctx, newTestArtifact())
				if err != nil {
					t.Error(err)
					return
				}
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestArtifactStore_RunSweeperStopsOnCancel(t *testing.T) {
	store := NewArtifactStore(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
