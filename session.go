package dnd

import (
	"context"
	"slices"

	"github.com/grindlemire/go-dnd/internal/geom"
)

// phase is the coordinator's position in the drag lifecycle.
type phase uint8

const (
	phaseIdle phase = iota
	phasePending
	phaseDragging
	phaseDropping
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phasePending:
		return "pending"
	case phaseDragging:
		return "dragging"
	case phaseDropping:
		return "dropping"
	default:
		return "unknown"
	}
}

// session is the coordinator's live drag state. It is created on
// activation and discarded on drop, cancel or abort.
type session struct {
	id       string
	activeID string
	sensor   SensorKind

	initial Point
	coords  Point
	// delta is the movement after modifiers.
	delta Point

	// active is the active node's rect at activation, tracking ancestor
	// scroll. shift is how far its layout slot has moved since.
	active     ScrollRect
	activeNode Node
	shift      Point
	ancestors  []Scrollable

	rects      map[string]ScrollRect
	collisions []Collision
	over       string

	cancelConfirm context.CancelFunc
}

// draggedRect is where the dragged item is drawn, in client coordinates.
func (s *session) draggedRect() Rect {
	return s.active.Measured().Offset(s.delta)
}

// transform is the translate that keeps the active node under the pointer:
// the drag delta plus the scroll its ancestors absorbed, minus any layout
// shift of the node itself.
func (s *session) transform() Transform {
	return geom.Translate(s.delta.Add(s.active.ScrollDelta()).Sub(s.shift))
}

// Session is a read-only snapshot of the open drag.
type Session struct {
	ID         string
	ActiveID   string
	Sensor     SensorKind
	Initial    Point
	Delta      Point
	Over       string
	Collisions []Collision
	Transform  Transform
	Rect       Rect
}

func (s *session) snapshot() Session {
	return Session{
		ID:         s.id,
		ActiveID:   s.activeID,
		Sensor:     s.sensor,
		Initial:    s.initial,
		Delta:      s.delta,
		Over:       s.over,
		Collisions: slices.Clone(s.collisions),
		Transform:  s.transform(),
		Rect:       s.draggedRect(),
	}
}

// Drop is what a ConfirmDrop hook is asked to approve.
type Drop struct {
	SessionID string
	ActiveID  string
	Over      string
	Delta     Point
	Placement Placement
	Moved     bool
}

// ConfirmDropFunc approves or vetoes a drop before it is persisted. It runs
// on its own goroutine and must honour ctx.
type ConfirmDropFunc func(ctx context.Context, drop Drop) (bool, error)
