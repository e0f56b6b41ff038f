// Package renderthread marshals work onto the goroutine that owns the
// graphics device.
//
// A Queue is a bounded channel of tasks drained once per frame by the render
// loop. Invoke is a blocking rendezvous: the task is queued and the caller
// waits on a one-shot completion channel. There is no timeout; if the render
// loop stops draining, Invoke blocks until the queue is closed. Use
// InvokeContext to bound the wait.
//
// This is the only place in the module where goroutines synchronize.
package renderthread

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// DefaultSize is the queue capacity used when New is given a non-positive size.
const DefaultSize = 256

var (
	ErrQueueFull = errors.New("renderthread: queue full")
	ErrClosed    = errors.New("renderthread: queue closed")
	ErrPanic     = errors.New("renderthread: task panicked")
)

type task struct {
	fn   func()
	done chan error // nil for fire-and-forget tasks
}

// Queue is a bounded render-thread task queue.
type Queue struct {
	tasks   chan task
	quit    chan struct{}
	drained chan struct{}
	once    sync.Once

	owner atomic.Int64 // goroutine id of the render thread, 0 if unbound

	log *zap.Logger
}

// New creates a queue holding at most size pending tasks.
func New(size int) *Queue {
	if size <= 0 {
		size = DefaultSize
	}
	return &Queue{
		tasks:   make(chan task, size),
		quit:    make(chan struct{}),
		drained: make(chan struct{}),
		log:     logger.Named("renderthread"),
	}
}

// Bind marks the calling goroutine as the render thread. The caller should
// also hold runtime.LockOSThread when a GL context is current.
func (q *Queue) Bind() {
	id := goroutineID()
	q.owner.Store(id)
	q.log.Debug("render thread bound", zap.Int64("goroutine", id))
}

// IsRenderThread reports whether the caller is the bound render thread.
func (q *Queue) IsRenderThread() bool {
	owner := q.owner.Load()
	return owner != 0 && owner == goroutineID()
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Enqueue schedules fn without waiting for it. It never blocks.
func (q *Queue) Enqueue(fn func()) error {
	select {
	case <-q.quit:
		return ErrClosed
	default:
	}

	select {
	case q.tasks <- task{fn: fn}:
		return nil
	default:
		return fmt.Errorf("%w: %d pending", ErrQueueFull, cap(q.tasks))
	}
}

// Invoke runs fn on the render thread and returns when it has finished.
// Called on the render thread it runs fn inline. A panic in fn is recovered
// and returned as ErrPanic.
func (q *Queue) Invoke(fn func()) error {
	return q.InvokeContext(context.Background(), fn)
}

// InvokeContext is Invoke with a cancellable wait. If ctx ends after the task
// was queued, the task still runs later; only the wait is abandoned.
func (q *Queue) InvokeContext(ctx context.Context, fn func()) error {
	if q.IsRenderThread() {
		return run(fn)
	}

	select {
	case <-q.quit:
		return ErrClosed
	default:
	}

	t := task{fn: fn, done: make(chan error, 1)}
	select {
	case q.tasks <- t:
	case <-q.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-q.drained:
		// Close ran everything queued before it finished
		select {
		case err := <-t.done:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs every task queued at the time of the call and returns how many
// ran. Tasks queued while draining wait for the next call. Render thread only.
func (q *Queue) Drain() int {
	n := len(q.tasks)
	for i := 0; i < n; i++ {
		select {
		case t := <-q.tasks:
			q.execute(t)
		default:
			return i
		}
	}
	return n
}

// Close stops accepting tasks, runs the ones already queued and releases
// every waiter. Call it from the render thread. Safe to call more than once.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.quit)
		defer close(q.drained)

		ran := 0
		for {
			select {
			case t := <-q.tasks:
				q.execute(t)
				ran++
			default:
				q.log.Debug("render queue closed", zap.Int("drained", ran))
				return
			}
		}
	})
}

func (q *Queue) execute(t task) {
	err := run(t.fn)
	if err != nil {
		q.log.Error("render task failed", zap.Error(err))
	}
	if t.done != nil {
		t.done <- err
	}
}

func run(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	fn()
	return nil
}

// goroutineID parses the current goroutine's id from its stack header
// ("goroutine 17 [running]:").
func goroutineID() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
