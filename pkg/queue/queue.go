// pkg/queue/queue.go
package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrClosed is returned once the queue is closed and drained.
	ErrClosed = errors.New("queue: closed")
	// ErrFull is returned by Enqueue when a bounded queue is full and the
	// full-policy is Reject.
	ErrFull = errors.New("queue: full")
)

// Task is one file's worth of ingestion work. It is immutable once enqueued
// and consumed exactly once by exactly one worker.
type Task struct {
	ID         string    `json:"id"`
	StoredPath string    `json:"storedPath"`
	Filename   string    `json:"filename"`
	OwnerID    string    `json:"ownerId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// FullPolicy selects the backpressure behavior of a bounded queue.
type FullPolicy int

const (
	// Block makes Enqueue wait until capacity frees up.
	Block FullPolicy = iota
	// Reject makes Enqueue fail immediately with ErrFull.
	Reject
)

// FIFO is a multi-producer/multi-consumer first-in-first-out queue of tasks.
// It is the sole synchronization point between the upload boundary and the
// worker pool. By default it is unbounded and Enqueue never blocks; a
// positive capacity enables backpressure per the configured FullPolicy.
type FIFO struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	items    []*Task
	capacity int
	policy   FullPolicy
	closed   bool
}

// Option configures a FIFO.
type Option func(*FIFO)

// WithCapacity bounds the queue at n tasks. n <= 0 means unbounded.
func WithCapacity(n int) Option {
	return func(q *FIFO) {
		q.capacity = n
	}
}

// WithFullPolicy sets the behavior of Enqueue on a full bounded queue.
func WithFullPolicy(p FullPolicy) Option {
	return func(q *FIFO) {
		q.policy = p
	}
}

// New creates a FIFO queue.
func New(opts ...Option) *FIFO {
	q := &FIFO{}
	for _, opt := range opts {
		opt(q)
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a task. With an unbounded queue it never blocks and fails
// only if the queue is closed. With a bounded queue it applies the
// configured FullPolicy; a Block wait is interruptible through ctx.
func (q *FIFO) Enqueue(ctx context.Context, t *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.capacity > 0 && len(q.items) >= q.capacity {
		if q.policy == Reject {
			return ErrFull
		}
		if err := q.wait(ctx, q.notFull); err != nil {
			return err
		}
	}
	if q.closed {
		return ErrClosed
	}

	q.items = append(q.items, t)
	q.notEmpty.Signal()
	return nil
}

// Dequeue removes and returns the oldest task, blocking while the queue is
// empty. It returns ErrClosed once the queue is closed and no tasks remain,
// or ctx.Err() if the context ends first. Each task is delivered to exactly
// one caller.
func (q *FIFO) Dequeue(ctx context.Context) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		if err := q.wait(ctx, q.notEmpty); err != nil {
			return nil, err
		}
	}
	if len(q.items) == 0 {
		return nil, ErrClosed
	}

	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	q.notFull.Signal()
	return t, nil
}

// Close stops the queue. Queued tasks remain dequeueable (drain) unless
// discard is set, in which case they are dropped.
func (q *FIFO) Close(discard bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	if discard {
		q.items = nil
	}
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Len reports the number of queued tasks.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// wait blocks on c with q.mu held, waking early when ctx ends. The extra
// goroutine only exists while a cancellable context is actually waiting.
func (q *FIFO) wait(ctx context.Context, c *sync.Cond) error {
	if ctx == nil || ctx.Done() == nil {
		c.Wait()
		return nil
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			c.Broadcast()
			q.mu.Unlock()
		case <-stop:
		}
	}()
	c.Wait()
	close(stop)
	if err := ctx.Err(); err != nil {
		// This waiter may have consumed a genuine signal; pass it on so a
		// live waiter is not left asleep while the condition holds.
		c.Signal()
		return err
	}
	return nil
}
