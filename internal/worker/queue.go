// Package worker runs background network tasks one at a time on a single
// dedicated goroutine.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("worker queue closed")

type task struct {
	name string
	fn   func(ctx context.Context)
}

// Queue executes submitted tasks sequentially in submission order.
type Queue struct {
	tasks  chan task
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
	once   sync.Once
}

// New starts a queue whose worker accepts up to buffer pending tasks before
// Submit blocks.
func New(logger *slog.Logger, buffer int) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		tasks:  make(chan task, buffer),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger,
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.ctx.Done():
			return
		case t := <-q.tasks:
			q.execute(t)
		}
	}
}

func (q *Queue) execute(t task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked", slog.String("task", t.name), slog.Any("panic", r))
		}
	}()
	q.logger.Debug("task started", slog.String("task", t.name))
	t.fn(q.ctx)
	q.logger.Debug("task finished", slog.String("task", t.name))
}

// Submit enqueues fn. The context passed to fn is cancelled by Close.
func (q *Queue) Submit(name string, fn func(ctx context.Context)) error {
	if q.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case q.tasks <- task{name: name, fn: fn}:
		return nil
	case <-q.ctx.Done():
		return ErrClosed
	}
}

// Close stops accepting tasks and cancels the context of the running task.
// It does not wait for the running task; pending tasks are dropped.
func (q *Queue) Close() {
	q.once.Do(q.cancel)
}

// Done is closed once the worker goroutine has exited.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}
