package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
)

// ErrGPUQueueClosed is returned when work is submitted after Close.
var ErrGPUQueueClosed = errors.New("renderer: gpu queue closed")

// GPUQueue runs every submitted task on one goroutine locked to its OS thread,
// in submission order. Windowing and GPU APIs that require a single thread are
// only called through it. Tasks must not submit to the queue they run on.
type GPUQueue struct {
	mu     *sync.RWMutex
	tasks  chan func()
	done   chan struct{}
	closed bool
}

// NewGPUQueue starts the queue goroutine.
//
// Parameters:
//   - depth: number of tasks that may wait before Post blocks
//
// Returns:
//   - *GPUQueue: the running queue
func NewGPUQueue(depth int) *GPUQueue {
	q := &GPUQueue{
		mu:    &sync.RWMutex{},
		tasks: make(chan func(), max(depth, 1)),
		done:  make(chan struct{}),
	}
	started := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(q.done)
		close(started)
		for task := range q.tasks {
			run(task)
		}
	}()
	<-started
	return q
}

func run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("gpu task panicked", "err", r)
		}
	}()
	task()
}

// Do runs fn on the queue goroutine and waits for it. A panic in fn is
// returned as an error.
//
// Parameters:
//   - fn: the task
//
// Returns:
//   - error: fn's error, a recovered panic, or ErrGPUQueueClosed
func (q *GPUQueue) Do(fn func() error) error {
	errc := make(chan error, 1)
	ok := q.submit(func() {
		defer func() {
			if r := recover(); r != nil {
				errc <- fmt.Errorf("renderer: gpu task panicked: %v", r)
			}
		}()
		errc <- fn()
	})
	if !ok {
		return ErrGPUQueueClosed
	}
	return <-errc
}

// Post enqueues fn without waiting for it.
//
// Returns:
//   - bool: false if the queue is closed
func (q *GPUQueue) Post(fn func()) bool {
	return q.submit(fn)
}

func (q *GPUQueue) submit(task func()) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	q.tasks <- task
	return true
}

// Close stops accepting work, runs every queued task and waits for the
// goroutine to exit. Calling Close more than once is safe.
func (q *GPUQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()
	<-q.done
}
