package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrRingClosed is returned by Acquire once the Ring has been closed.
var ErrRingClosed = errors.New("frame: ring closed")

// Ring hands out frame slots to the pipeline producer. At most Size frames are in
// flight; Acquire blocks until the oldest in-flight frame is released. A slot is
// never reassigned while its frame is still owned.
type Ring struct {
	mu     *sync.Mutex
	sem    *semaphore.Weighted
	size   int
	owner  [MaxFrames]uint64
	cursor int
	next   uint64
	closed bool

	done     context.Context
	shutdown context.CancelFunc
}

// NewRing creates a Ring with size slots.
//
// Parameters:
//   - size: number of frames allowed in flight, in [1, MaxFrames]
//
// Returns:
//   - *Ring: the new ring
func NewRing(size int) *Ring {
	if size < 1 || size > MaxFrames {
		panic(fmt.Sprintf("frame: ring size %d out of range [1,%d]", size, MaxFrames))
	}
	done, shutdown := context.WithCancel(context.Background())
	return &Ring{
		mu:       &sync.Mutex{},
		sem:      semaphore.NewWeighted(int64(size)),
		size:     size,
		next:     1,
		done:     done,
		shutdown: shutdown,
	}
}

// Size returns the number of slots in the ring.
func (r *Ring) Size() int {
	return r.size
}

// Acquire claims a free slot for the next frame, blocking while every slot is in flight.
// A Close while Acquire waits wakes it.
//
// Parameters:
//   - ctx: cancels the wait
//
// Returns:
//   - Frame: the claimed slot and its frame number
//   - error: ctx.Err() if the wait was cancelled, ErrRingClosed after Close
func (r *Ring) Acquire(ctx context.Context) (Frame, error) {
	if r.isClosed() {
		return Frame{}, ErrRingClosed
	}
	wait, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.done, cancel)
	defer stop()

	if err := r.sem.Acquire(wait, 1); err != nil {
		if r.isClosed() {
			return Frame{}, ErrRingClosed
		}
		return Frame{}, err
	}
	return r.claim()
}

// TryAcquire claims a slot without blocking.
//
// Returns:
//   - Frame: the claimed frame when ok is true
//   - bool: false if every slot is in flight or the ring is closed
func (r *Ring) TryAcquire() (Frame, bool) {
	if r.isClosed() || !r.sem.TryAcquire(1) {
		return Frame{}, false
	}
	f, err := r.claim()
	return f, err == nil
}

func (r *Ring) claim() (Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.sem.Release(1)
		return Frame{}, ErrRingClosed
	}
	for i := 0; i < r.size; i++ {
		s := (r.cursor + i) % r.size
		if r.owner[s] != 0 {
			continue
		}
		f := Frame{Slot: Slot(s), Number: r.next}
		r.owner[s] = f.Number
		r.next++
		r.cursor = (s + 1) % r.size
		return f, nil
	}
	// The semaphore admits at most size holders, so a free slot always exists.
	panic("frame: semaphore admitted more frames than slots")
}

// Release returns the frame's slot to the ring, waking one blocked Acquire.
// Releasing a frame that does not own its slot panics.
//
// Parameters:
//   - f: a frame previously returned by Acquire or TryAcquire
func (r *Ring) Release(f Frame) {
	Check(f.Slot)
	r.mu.Lock()
	if int(f.Slot) >= r.size || r.owner[f.Slot] != f.Number || f.Number == 0 {
		r.mu.Unlock()
		panic(fmt.Sprintf("frame: release of %v which does not own its slot", f))
	}
	r.owner[f.Slot] = 0
	r.mu.Unlock()
	r.sem.Release(1)
}

// InFlight returns the number of frames currently holding a slot.
func (r *Ring) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i := 0; i < r.size; i++ {
		if r.owner[i] != 0 {
			n++
		}
	}
	return n
}

// Drain blocks until every in-flight frame has been released. Acquires issued while
// Drain waits are queued behind it.
//
// Parameters:
//   - ctx: cancels the wait
//
// Returns:
//   - error: ctx.Err() if cancelled before the ring drained
func (r *Ring) Drain(ctx context.Context) error {
	if err := r.sem.Acquire(ctx, int64(r.size)); err != nil {
		return err
	}
	r.sem.Release(int64(r.size))
	return nil
}

// Close makes every pending and later Acquire fail with ErrRingClosed. In-flight
// frames may still be released. Close is idempotent.
func (r *Ring) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.shutdown()
}

func (r *Ring) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
