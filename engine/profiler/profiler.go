package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
)

// Profiler tracks frame rate, per-frame pipeline counters and memory statistics.
// It logs a summary through common.Logger once per interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	totals   renderer.Stats
	inFlight int
	now      func() time.Time
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one rendered frame. When the update interval has elapsed it logs
// FPS, the average visible, culled and drawn counts, stage times, the number of
// frames in flight, heap usage, allocation rate and GC pauses.
//
// Parameters:
//   - stats: the counters of the frame just rendered
//   - inFlight: frames currently owned by a pipeline stage
//
// Returns:
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick(stats renderer.Stats, inFlight int) bool {
	p.frameCount++
	p.totals.Add(stats)
	p.totals.UpdateTime += stats.UpdateTime
	p.totals.CullTime += stats.CullTime
	p.totals.RenderTime += stats.RenderTime
	p.inFlight = max(p.inFlight, inFlight)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	seconds := max(elapsed.Seconds(), 1e-9)
	n := float64(p.frameCount)
	runtime.ReadMemStats(&p.memStats)

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"fps", n/seconds,
		"inFlight", p.inFlight,
		"visible", float64(p.totals.Queued)/n,
		"culled", float64(p.totals.Culled)/n,
		"drawn", float64(p.totals.Drawn)/n,
		"update", p.totals.UpdateTime/time.Duration(p.frameCount),
		"cull", p.totals.CullTime/time.Duration(p.frameCount),
		"render", p.totals.RenderTime/time.Duration(p.frameCount),
		"heapMB", float64(p.memStats.Alloc)/1024/1024,
		"allocMBps", float64(allocDelta)/1024/1024/seconds,
		"gc", gcCount,
		"gcLastUs", lastPauseUs,
		"gcMaxUs", maxPauseUs,
		"sysMB", float64(p.memStats.Sys)/1024/1024,
	)

	p.frameCount = 0
	p.totals = renderer.Stats{}
	p.inFlight = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// ProfilerBuilderOption is a function that configures a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often Tick logs. Zero logs on every tick.
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = max(d, 0)
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}
