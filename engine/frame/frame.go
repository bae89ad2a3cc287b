// Package frame provides the per-frame slot ring that lets update, cull and render
// stages of different frames run concurrently without sharing mutable state.
//
// Every entity with frame-isolated state keeps a [MaxFrames]T array indexed by Slot.
// A stage only writes the slot of the frame it is processing; the Ring guarantees
// that a slot is never handed to a new frame while an older frame still owns it.
package frame

import "fmt"

// MaxFrames bounds how many frames may be in flight at once.
const MaxFrames = 3

// Slot indexes the per-frame arrays. Valid values are [0, MaxFrames).
type Slot int

// Valid reports whether s is a usable slot index.
func (s Slot) Valid() bool {
	return s >= 0 && s < MaxFrames
}

// Frame pairs a slot with the frame number that currently owns it.
// Numbers start at 1 and increase monotonically per Ring; 0 means "no frame".
type Frame struct {
	Slot   Slot
	Number uint64
}

func (f Frame) String() string {
	return fmt.Sprintf("frame %d (slot %d)", f.Number, f.Slot)
}

// Check panics when s is outside [0, MaxFrames). The check compiles away in
// builds tagged `release`.
func Check(s Slot) {
	if assertionsEnabled && !s.Valid() {
		panic(fmt.Sprintf("frame: slot %d out of range [0,%d)", s, MaxFrames))
	}
}
