package renderer

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUQueueRunsTasksInOrder(t *testing.T) {
	q := NewGPUQueue(4)
	defer q.Close()

	var running atomic.Int32
	var got []int
	for i := 0; i < 50; i++ {
		require.True(t, q.Post(func() {
			assert.Equal(t, int32(1), running.Add(1), "tasks must not overlap")
			got = append(got, i)
			running.Add(-1)
		}))
	}
	require.NoError(t, q.Do(func() error { return nil }))

	want := make([]int, 50)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestGPUQueueDoReturnsErrorsAndPanics(t *testing.T) {
	q := NewGPUQueue(1)
	defer q.Close()

	boom := errors.New("boom")
	assert.ErrorIs(t, q.Do(func() error { return boom }), boom)
	assert.ErrorContains(t, q.Do(func() error { panic("device lost") }), "device lost")

	q.Post(func() { panic("posted") })
	assert.NoError(t, q.Do(func() error { return nil }), "queue survives a panicking task")
}

func TestGPUQueueClose(t *testing.T) {
	q := NewGPUQueue(8)
	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Post(func() { ran.Add(1) })
		}()
	}
	wg.Wait()
	q.Close()
	q.Close()

	assert.Equal(t, int32(8), ran.Load(), "queued tasks run before Close returns")
	assert.ErrorIs(t, q.Do(func() error { return nil }), ErrGPUQueueClosed)
	assert.False(t, q.Post(func() {}))
}
