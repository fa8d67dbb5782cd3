package dnd

import "sync"

// Events is a simple event bus for lifecycle notifications.
// It is generic over the event type T.
type Events[T any] struct {
	mu        sync.RWMutex
	nextID    int
	listeners []eventListener[T]
}

type eventListener[T any] struct {
	id int
	fn func(T)
}

// NewEvents creates a new event bus.
func NewEvents[T any]() *Events[T] {
	return &Events[T]{}
}

// Emit sends an event to all listeners in subscription order.
func (e *Events[T]) Emit(event T) {
	e.mu.RLock()
	listeners := e.listeners
	e.mu.RUnlock()

	for _, l := range listeners {
		l.fn(event)
	}
}

// Subscribe adds a listener for events and returns a func that removes it.
func (e *Events[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	// Copy on write so Emit can iterate without holding the lock.
	next := make([]eventListener[T], len(e.listeners), len(e.listeners)+1)
	copy(next, e.listeners)
	e.listeners = append(next, eventListener[T]{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		next := make([]eventListener[T], 0, len(e.listeners))
		for _, l := range e.listeners {
			if l.id != id {
				next = append(next, l)
			}
		}
		e.listeners = next
	}
}

// DragEvent is the base interface for the lifecycle events a Coordinator
// emits. Use a type switch to handle specific event types.
type DragEvent interface {
	isDragEvent()
}

// DragStartEvent is emitted once a sensor activates and the session opens.
type DragStartEvent struct {
	SessionID string
	ActiveID  string
	Sensor    SensorKind
	Initial   Point
}

// DragMoveEvent is emitted for every move while dragging.
type DragMoveEvent struct {
	SessionID string
	ActiveID  string
	Delta     Point
	// Over is the current drop target id, empty when over nothing.
	Over      string
	Transform Transform
}

// DragOverEvent is emitted exactly once per change of drop target.
type DragOverEvent struct {
	SessionID string
	ActiveID  string
	// Previous and Over are empty when the pointer was or is over nothing.
	Previous string
	Over     string
}

// DragEndEvent is emitted when a drop is confirmed.
type DragEndEvent struct {
	SessionID string
	ActiveID  string
	Over      string
	Delta     Point
	// Placement is the resolved destination; Moved is false when the drop
	// left the item where it was.
	Placement Placement
	Moved     bool
}

// DragCancelEvent is emitted when a session is cancelled, including drops
// vetoed by the confirm hook.
type DragCancelEvent struct {
	SessionID string
	ActiveID  string
	Reason    CancelReason
}

// DragAbortEvent is emitted when a pending activation is rejected before
// any session opened.
type DragAbortEvent struct {
	ActiveID string
	Err      error
}

func (DragStartEvent) isDragEvent()  {}
func (DragMoveEvent) isDragEvent()   {}
func (DragOverEvent) isDragEvent()   {}
func (DragEndEvent) isDragEvent()    {}
func (DragCancelEvent) isDragEvent() {}
func (DragAbortEvent) isDragEvent()  {}

// CancelReason explains why a session was cancelled.
type CancelReason uint8

const (
	// CancelUser is an explicit cancel such as Escape or Coordinator.Cancel.
	CancelUser CancelReason = iota
	// CancelWindow is a resize, visibility change or blur.
	CancelWindow
	// CancelVetoed is a drop rejected by the confirm hook.
	CancelVetoed
	// CancelMeasurement is a session whose active node could not be measured.
	CancelMeasurement
	// CancelFault is a session torn down after a host callback panicked.
	CancelFault
	// CancelMultiTouch is a touch session interrupted by a second touch point.
	CancelMultiTouch
)

// String returns a human-readable representation of the reason.
func (r CancelReason) String() string {
	switch r {
	case CancelUser:
		return "user"
	case CancelWindow:
		return "window"
	case CancelVetoed:
		return "vetoed"
	case CancelMeasurement:
		return "measurement"
	case CancelFault:
		return "fault"
	case CancelMultiTouch:
		return "multi-touch"
	default:
		return "unknown"
	}
}
