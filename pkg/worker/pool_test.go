package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codariq/sentidoc/pkg/logger"
	"github.com/codariq/sentidoc/pkg/queue"
)

func TestPoolProcessesAllTasksExactlyOnce(t *testing.T) {
	q := queue.New()
	ctx := context.Background()

	const tasks = 100
	for i := 0; i < tasks; i++ {
		require.NoError(t, q.Enqueue(ctx, &queue.Task{ID: fmt.Sprintf("task-%d", i)}))
	}

	var mu sync.Mutex
	seen := make(map[string]int)

	pool := NewPool(Config{Size: 4, DrainOnStop: true}, q, func(_ context.Context, task *queue.Task) error {
		mu.Lock()
		seen[task.ID]++
		mu.Unlock()
		return nil
	}, logger.NewTestLogger())

	pool.Start(ctx)
	pool.Stop()

	assert.Len(t, seen, tasks)
	for id, n := range seen {
		assert.Equal(t, 1, n, "task %s handled %d times", id, n)
	}
}

func TestWorkerSurvivesHandlerError(t *testing.T) {
	q := queue.New()
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &queue.Task{ID: "bad"}))
	require.NoError(t, q.Enqueue(ctx, &queue.Task{ID: "good"}))

	processed := make(chan string, 2)
	log := logger.NewTestLogger()

	pool := NewPool(Config{Size: 1, DrainOnStop: true}, q, func(_ context.Context, task *queue.Task) error {
		processed <- task.ID
		if task.ID == "bad" {
			return errors.New("boom")
		}
		return nil
	}, log)

	pool.Start(ctx)
	pool.Stop()

	assert.Equal(t, "bad", <-processed)
	assert.Equal(t, "good", <-processed, "worker should continue past a failed task")

	var loggedFailure bool
	for _, e := range log.Entries() {
		if e.Level == "ERROR" && e.Message == "Task failed" {
			loggedFailure = true
		}
	}
	assert.True(t, loggedFailure, "failed task should be logged")
}

func TestWorkerSurvivesHandlerPanic(t *testing.T) {
	q := queue.New()
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &queue.Task{ID: "panics"}))
	require.NoError(t, q.Enqueue(ctx, &queue.Task{ID: "after"}))

	var mu sync.Mutex
	var order []string

	pool := NewPool(Config{Size: 1, DrainOnStop: true}, q, func(_ context.Context, task *queue.Task) error {
		mu.Lock()
		order = append(order, task.ID)
		mu.Unlock()
		if task.ID == "panics" {
			panic("kaboom")
		}
		return nil
	}, logger.NewTestLogger())

	pool.Start(ctx)
	pool.Stop()

	assert.Equal(t, []string{"panics", "after"}, order)
}

func TestStopDiscardsWhenNotDraining(t *testing.T) {
	q := queue.New()
	ctx := context.Background()

	block := make(chan struct{})
	var handled int32
	var mu sync.Mutex

	pool := NewPool(Config{Size: 1, DrainOnStop: false}, q, func(_ context.Context, _ *queue.Task) error {
		mu.Lock()
		handled++
		mu.Unlock()
		<-block
		return nil
	}, logger.NewTestLogger())

	require.NoError(t, q.Enqueue(ctx, &queue.Task{ID: "running"}))
	pool.Start(ctx)

	// Wait until the worker picked up the first task, then queue more.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, q.Enqueue(ctx, &queue.Task{ID: "queued-1"}))
	require.NoError(t, q.Enqueue(ctx, &queue.Task{ID: "queued-2"}))

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()
	close(block)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), handled, "queued tasks should be discarded without draining")
}

func TestPoolDefaultSize(t *testing.T) {
	pool := NewPool(Config{}, queue.New(), func(context.Context, *queue.Task) error { return nil }, logger.NewTestLogger())
	assert.Equal(t, 3, pool.cfg.Size)
}
