package frame

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPanicsOutOfRange(t *testing.T) {
	assert.NotPanics(t, func() { Check(0) })
	assert.NotPanics(t, func() { Check(MaxFrames - 1) })
	assert.PanicsWithValue(t, "frame: slot 3 out of range [0,3)", func() { Check(MaxFrames) })
	assert.Panics(t, func() { Check(-1) })
}

func TestContextSelectFrame(t *testing.T) {
	c := AllocateContext()
	assert.Panics(t, func() { c.Frame() })

	c.SelectFrame(2)
	assert.Equal(t, Slot(2), c.Frame())
	assert.Panics(t, func() { c.SelectFrame(MaxFrames) })
	assert.Equal(t, Slot(2), c.Frame(), "failed select must not rebind")
}

func TestContextScratchInitialized(t *testing.T) {
	c := AllocateContext()
	assert.Equal(t, mgl32.Ident4(), c.Mat[0])
	assert.Equal(t, mgl32.QuatIdent(), c.Quat[1])
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, c.Transform.Scale)
}

func TestContextNearestHit(t *testing.T) {
	c := AllocateContext()
	_, ok := c.NearestHit()
	assert.False(t, ok)

	c.AddHit(Hit{DistanceSq: 9, Triangle: 0})
	c.AddHit(Hit{DistanceSq: 1, Triangle: 1})
	c.AddHit(Hit{DistanceSq: 4, Triangle: 2})
	h, ok := c.NearestHit()
	require.True(t, ok)
	assert.Equal(t, 1, h.Triangle)

	c.ResetHits()
	assert.Empty(t, c.Hits())
}

func TestRingAssignsDistinctSlots(t *testing.T) {
	r := NewRing(MaxFrames)
	seen := map[Slot]bool{}
	for i := 0; i < MaxFrames; i++ {
		f, err := r.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), f.Number)
		assert.False(t, seen[f.Slot], "slot %d handed out twice", f.Slot)
		seen[f.Slot] = true
	}
	assert.Equal(t, MaxFrames, r.InFlight())
	_, ok := r.TryAcquire()
	assert.False(t, ok)
}

func TestRingBlocksWhenAllSlotsInFlight(t *testing.T) {
	r := NewRing(2)
	f0, err := r.Acquire(context.Background())
	require.NoError(t, err)
	_, err = r.Acquire(context.Background())
	require.NoError(t, err)

	got := make(chan Frame)
	go func() {
		f, err := r.Acquire(context.Background())
		if err == nil {
			got <- f
		}
	}()

	select {
	case f := <-got:
		t.Fatalf("third acquire returned %v while two frames were in flight", f)
	case <-time.After(50 * time.Millisecond):
	}

	r.Release(f0)
	select {
	case f := <-got:
		assert.Equal(t, f0.Slot, f.Slot, "freed slot is reused")
		assert.Equal(t, uint64(3), f.Number)
	case <-time.After(2 * time.Second):
		t.Fatal("acquire still blocked after a slot was released")
	}
}

func TestRingAcquireHonoursContext(t *testing.T) {
	r := NewRing(1)
	_, err := r.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRingReleaseRejectsForeignFrame(t *testing.T) {
	r := NewRing(2)
	f, err := r.Acquire(context.Background())
	require.NoError(t, err)
	assert.Panics(t, func() { r.Release(Frame{Slot: f.Slot, Number: f.Number + 7}) })
	assert.Panics(t, func() { r.Release(Frame{Slot: 1, Number: 0}) })
	assert.NotPanics(t, func() { r.Release(f) })
	assert.Panics(t, func() { r.Release(f) }, "double release")
}

func TestRingDrainWaitsForInFlight(t *testing.T) {
	r := NewRing(2)
	f, err := r.Acquire(context.Background())
	require.NoError(t, err)

	drained := make(chan error, 1)
	go func() { drained <- r.Drain(context.Background()) }()

	select {
	case <-drained:
		t.Fatal("drain returned with a frame in flight")
	case <-time.After(50 * time.Millisecond):
	}

	r.Release(f)
	select {
	case err := <-drained:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("drain did not return")
	}
	assert.Equal(t, 0, r.InFlight())
}

func TestRingClose(t *testing.T) {
	r := NewRing(1)
	f, err := r.Acquire(context.Background())
	require.NoError(t, err)
	r.Close()

	_, err = r.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrRingClosed)
	r.Release(f)
	_, ok := r.TryAcquire()
	assert.False(t, ok)
}

func TestRingCloseWakesBlockedAcquire(t *testing.T) {
	r := NewRing(1)
	f, err := r.Acquire(context.Background())
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := r.Acquire(context.Background())
		errc <- err
	}()

	select {
	case err := <-errc:
		t.Fatalf("Acquire returned %v while the only slot was in flight", err)
	case <-time.After(20 * time.Millisecond):
	}

	r.Close()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrRingClosed)
	case <-time.After(time.Second):
		t.Fatal("Close did not wake the blocked Acquire")
	}

	r.Release(f)
	assert.Zero(t, r.InFlight())
	r.Close()
}

func TestNewRingRejectsBadSize(t *testing.T) {
	assert.Panics(t, func() { NewRing(0) })
	assert.Panics(t, func() { NewRing(MaxFrames + 1) })
}
