package status

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codariq/sentidoc/internal/models"
)

func TestMemoryTrackerRoundTrip(t *testing.T) {
	tr := NewMemoryTracker()
	ctx := context.Background()

	st := &models.TaskStatus{
		TaskID:     "t1",
		State:      models.StatePending,
		Filename:   "notes.txt",
		OwnerID:    "42",
		EnqueuedAt: time.Now(),
	}
	require.NoError(t, tr.Set(ctx, st))

	got, err := tr.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, got.State)
	assert.Equal(t, "notes.txt", got.Filename)
}

func TestMemoryTrackerNotFound(t *testing.T) {
	tr := NewMemoryTracker()

	_, err := tr.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTrackerOverwrite(t *testing.T) {
	tr := NewMemoryTracker()
	ctx := context.Background()

	require.NoError(t, tr.Set(ctx, &models.TaskStatus{TaskID: "t1", State: models.StatePending}))
	require.NoError(t, tr.Set(ctx, &models.TaskStatus{TaskID: "t1", State: models.StateFailed, Error: "boom"}))

	got, err := tr.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StateFailed, got.State)
	assert.Equal(t, "boom", got.Error)
}

func TestMemoryTrackerReturnsCopies(t *testing.T) {
	tr := NewMemoryTracker()
	ctx := context.Background()

	require.NoError(t, tr.Set(ctx, &models.TaskStatus{TaskID: "t1", State: models.StatePending}))

	got, err := tr.Get(ctx, "t1")
	require.NoError(t, err)
	got.State = models.StateCompleted

	again, err := tr.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, again.State)
}

func TestMemoryTrackerConcurrentAccess(t *testing.T) {
	tr := NewMemoryTracker()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = tr.Set(ctx, &models.TaskStatus{TaskID: "shared", State: models.StateRunning})
		}()
		go func() {
			defer wg.Done()
			_, _ = tr.Get(ctx, "shared")
		}()
	}
	wg.Wait()
}
