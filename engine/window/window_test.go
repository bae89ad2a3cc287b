package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/services"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	w := newEngineWindow(WithTitle("grid"), WithSize(800, 0), WithSizeLimits(100, 100, 1000, 900))
	assert.Equal(t, "grid", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.Equal(t, []int{100, 100, 1000, 900}, []int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight})
}

func TestUnopenedWindow(t *testing.T) {
	w := newEngineWindow()
	var d services.Display = w
	assert.False(t, d.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	assert.NoError(t, w.Shutdown())
	assert.Equal(t, "window", d.Name())

	calls := 0
	w.SetUpdateCallback(func() { calls++ })
	w.ProcessMessages(nil)
	assert.Zero(t, calls, "a closed window processes nothing")
}
