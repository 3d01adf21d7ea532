package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/codariq/sentidoc/pkg/logger"
	"github.com/codariq/sentidoc/pkg/queue"
)

// Handler processes one dequeued task. A non-nil error marks the task failed;
// the task is discarded either way.
type Handler func(ctx context.Context, task *queue.Task) error

// Config holds pool settings.
type Config struct {
	// Size is the number of long-lived workers. Defaults to 3.
	Size int
	// DrainOnStop makes Stop let workers finish queued tasks before
	// returning; otherwise queued tasks are discarded.
	DrainOnStop bool
}

// Pool runs a fixed set of workers against one queue. Workers share nothing
// but the queue and the handler's own resources; each loops forever on
// dequeue -> handle and never terminates because a single task failed.
type Pool struct {
	cfg     Config
	queue   *queue.FIFO
	handler Handler
	logger  logger.Logger

	wg      sync.WaitGroup
	started sync.Once
	stopped sync.Once
}

// NewPool creates a pool bound to q. The pool does not own q's producers;
// it only consumes.
func NewPool(cfg Config, q *queue.FIFO, h Handler, log logger.Logger) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = 3
	}
	return &Pool{
		cfg:     cfg,
		queue:   q,
		handler: h,
		logger:  log,
	}
}

// Start launches the workers. It is safe to call once; subsequent calls are
// no-ops.
func (p *Pool) Start(ctx context.Context) {
	p.started.Do(func() {
		for i := 0; i < p.cfg.Size; i++ {
			p.wg.Add(1)
			go p.run(ctx, i)
		}
		p.logger.Info("Worker pool started",
			logger.Int("workers", p.cfg.Size),
		)
	})
}

// Stop closes the queue per the drain policy and waits for all workers to
// return.
func (p *Pool) Stop() {
	p.stopped.Do(func() {
		p.queue.Close(!p.cfg.DrainOnStop)
		p.wg.Wait()
		p.logger.Info("Worker pool stopped")
	})
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.logger.With(logger.Int("worker", id))

	for {
		task, err := p.queue.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, queue.ErrClosed) && !errors.Is(err, context.Canceled) {
				log.Error("Dequeue failed", logger.Error(err))
			}
			return
		}

		if err := p.handle(ctx, task); err != nil {
			// Terminal for this task only: log, discard, keep looping.
			log.Error("Task failed",
				logger.String("taskId", task.ID),
				logger.String("filename", task.Filename),
				logger.Error(err),
			)
		}
	}
}

// handle runs the handler with panic containment so a misbehaving task can
// never take the worker down.
func (p *Pool) handle(ctx context.Context, task *queue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing task: %v", r)
		}
	}()
	return p.handler(ctx, task)
}
