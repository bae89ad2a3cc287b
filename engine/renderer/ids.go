// Package renderer implements the cull and render stages of the frame pipeline:
// render queues, passes and paths, the per-thread CullContext, the parallel
// Culler, and the RenderContext that drives a DrawBackend.
package renderer

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
)

// MaxIDs is the number of distinct queue or pass ids that fit in a scene.Mask.
const MaxIDs = 64

// QueueID identifies a render queue bucket.
type QueueID uint8

// Standard queues. User queues start at NextUserQueueID.
const (
	QueueOpaque QueueID = iota
	QueueTransparent
	QueueLight
	QueueOrtho
	QueueShadow
	NextUserQueueID
)

// PassID identifies a render pass.
type PassID uint8

// Standard passes. User passes start at NextUserPassID.
const (
	PassShadow PassID = iota
	PassOpaque
	PassLight
	PassTransparent
	PassOrtho
	PassPost
	NextUserPassID
)

var (
	queueCounter atomic.Uint32
	passCounter  atomic.Uint32
)

// GenQueueID returns a process-unique user queue id. It panics once every id
// that fits in a mask has been handed out.
//
// Returns:
//   - QueueID: a new id >= NextUserQueueID
func GenQueueID() QueueID {
	id := uint32(NextUserQueueID) + queueCounter.Add(1) - 1
	if id >= MaxIDs {
		panic(fmt.Sprintf("renderer: queue id %d exceeds the %d-id limit", id, MaxIDs))
	}
	return QueueID(id)
}

// GenPassID returns a process-unique user pass id. It panics once every id
// that fits in a mask has been handed out.
//
// Returns:
//   - PassID: a new id >= NextUserPassID
func GenPassID() PassID {
	id := uint32(NextUserPassID) + passCounter.Add(1) - 1
	if id >= MaxIDs {
		panic(fmt.Sprintf("renderer: pass id %d exceeds the %d-id limit", id, MaxIDs))
	}
	return PassID(id)
}

// Bit returns the mask selecting this queue.
func (id QueueID) Bit() scene.Mask { return 1 << id }

// Bit returns the mask selecting this pass.
func (id PassID) Bit() scene.Mask { return 1 << id }

func (id QueueID) String() string {
	switch id {
	case QueueOpaque:
		return "opaque"
	case QueueTransparent:
		return "transparent"
	case QueueLight:
		return "light"
	case QueueOrtho:
		return "ortho"
	case QueueShadow:
		return "shadow"
	default:
		return "queue" + strconv.Itoa(int(id))
	}
}

func (id PassID) String() string {
	switch id {
	case PassShadow:
		return "shadow"
	case PassOpaque:
		return "opaque"
	case PassLight:
		return "light"
	case PassTransparent:
		return "transparent"
	case PassOrtho:
		return "ortho"
	case PassPost:
		return "post"
	default:
		return "pass" + strconv.Itoa(int(id))
	}
}

// QueueMask builds a mask from queue ids.
func QueueMask(ids ...QueueID) scene.Mask {
	var m scene.Mask
	for _, id := range ids {
		m |= id.Bit()
	}
	return m
}

// PassMask builds a mask from pass ids.
func PassMask(ids ...PassID) scene.Mask {
	var m scene.Mask
	for _, id := range ids {
		m |= id.Bit()
	}
	return m
}
