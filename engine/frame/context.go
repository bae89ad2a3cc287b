package frame

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Scratch pool sizes.
const (
	ScratchVectors  = 8
	ScratchMatrices = 4
	ScratchQuats    = 2
)

// Hit is one ray intersection record.
type Hit struct {
	Point      mgl32.Vec3
	Distance   float32
	DistanceSq float32
	Triangle   int
}

// Context is one worker's bundle of preallocated scratch state. Hot traversal
// code takes a *Context instead of allocating temporaries.
//
// A Context belongs to exactly one goroutine for its whole life and must never be
// shared. SelectFrame binds it to the slot whose per-frame arrays it works on.
type Context struct {
	slot     Slot
	selected bool

	Vec       [ScratchVectors]mgl32.Vec3
	Mat       [ScratchMatrices]mgl32.Mat4
	Quat      [ScratchQuats]mgl32.Quat
	Triangle  [3]mgl32.Vec3
	Transform common.Transform

	hits []Hit
}

// AllocateContext returns a fresh Context with its scratch pools allocated.
//
// Returns:
//   - *Context: a context not yet bound to any slot
func AllocateContext() *Context {
	c := &Context{
		hits:      make([]Hit, 0, 16),
		Transform: common.IdentityTransform(),
	}
	for i := range c.Mat {
		c.Mat[i] = mgl32.Ident4()
	}
	for i := range c.Quat {
		c.Quat[i] = mgl32.QuatIdent()
	}
	return c
}

// SelectFrame binds the Context to slot id. Out-of-range ids panic unless built with the release tag.
//
// Parameters:
//   - id: slot in [0, MaxFrames)
func (c *Context) SelectFrame(id Slot) {
	Check(id)
	c.slot = id
	c.selected = true
}

// Frame returns the slot selected with SelectFrame. It panics if none was selected.
func (c *Context) Frame() Slot {
	if assertionsEnabled && !c.selected {
		panic("frame: context used before SelectFrame")
	}
	return c.slot
}

// Hits returns the intersection records collected since the last ResetHits.
// The slice is owned by the Context and is overwritten by the next query.
func (c *Context) Hits() []Hit {
	return c.hits
}

// ResetHits empties the intersection buffer, keeping its capacity.
func (c *Context) ResetHits() {
	c.hits = c.hits[:0]
}

// AddHit appends an intersection record.
func (c *Context) AddHit(h Hit) {
	c.hits = append(c.hits, h)
}

// NearestHit returns the recorded hit with the smallest squared distance.
//
// Returns:
//   - Hit: the nearest record
//   - bool: false if no hit was recorded
func (c *Context) NearestHit() (Hit, bool) {
	if len(c.hits) == 0 {
		return Hit{}, false
	}
	best := 0
	for i := 1; i < len(c.hits); i++ {
		if c.hits[i].DistanceSq < c.hits[best].DistanceSq {
			best = i
		}
	}
	return c.hits[best], true
}
