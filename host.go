package dnd

import (
	"fmt"

	"github.com/grindlemire/go-dnd/internal/geom"
)

// Node is the host's handle to a measurable visual element.
type Node interface {
	// BoundingRect returns the node's rect in client coordinates, including
	// any transform currently applied. Returns ErrMeasurementUnavailable if
	// the node is disconnected.
	BoundingRect() (Rect, error)
	// ComputedTransform returns the node's computed transform ("none" or a
	// matrix/matrix3d value) and transform origin ("x y" in px).
	ComputedTransform() (transform, origin string)
	// ScrollAncestors returns the node's scrollable ancestors, closest first.
	ScrollAncestors() []Scrollable
}

// Scrollable is a host container that can scroll.
type Scrollable interface {
	// Rect returns the container's visible rect in client coordinates.
	Rect() Rect
	// ScrollOffset returns the current scroll position.
	ScrollOffset() Point
	// MaxScroll returns the largest valid scroll position on each axis.
	MaxScroll() Point
	// ScrollBy scrolls by delta; the host clamps to [0, MaxScroll].
	ScrollBy(delta Point)
}

// Suppressor lets sensors disable host behaviours that interfere with a
// drag, such as text selection and context menus.
type Suppressor interface {
	SuppressSelection(on bool)
	SuppressContextMenu(on bool)
}

// MeasureOptions controls MeasureRect.
type MeasureOptions struct {
	// IgnoreTransform inverts the node's computed transform so the rect
	// reflects its pre-transform layout slot.
	IgnoreTransform bool
}

// MeasureRect measures node. With IgnoreTransform set, the node's
// translate and scale are inverted so an animating or dragged node reports
// its true layout slot.
func MeasureRect(node Node, opts MeasureOptions) (Rect, error) {
	if node == nil {
		return Rect{}, ErrMeasurementUnavailable
	}
	r, err := node.BoundingRect()
	if err != nil {
		return Rect{}, fmt.Errorf("measure node: %w", err)
	}
	if !opts.IgnoreTransform {
		return r, nil
	}
	transform, origin := node.ComputedTransform()
	t, ok := geom.ParseTransform(transform)
	if !ok {
		return r, nil
	}
	return geom.InverseTransform(r, t, geom.ParseOrigin(origin)), nil
}

// scrollOffsetsOf returns a func summing the current offsets of ancestors.
func scrollOffsetsOf(ancestors []Scrollable) geom.OffsetFunc {
	if len(ancestors) == 0 {
		return nil
	}
	return func() Point {
		var sum Point
		for _, a := range ancestors {
			sum = sum.Add(a.ScrollOffset())
		}
		return sum
	}
}

// measureScrollRect measures node and wraps the result so it tracks
// ancestor scrolling until the next measurement.
func measureScrollRect(node Node, opts MeasureOptions) (ScrollRect, error) {
	r, err := MeasureRect(node, opts)
	if err != nil {
		return ScrollRect{}, err
	}
	return geom.NewScrollRect(r, scrollOffsetsOf(node.ScrollAncestors())), nil
}

// Draggable describes an item the host lets users pick up.
type Draggable struct {
	// ID is the board item id.
	ID string
	// Node is the item's visual element.
	Node Node
	// Disabled draggables never activate.
	Disabled bool
}

// DroppableKind distinguishes container targets from item targets.
type DroppableKind uint8

const (
	// DroppableContainer is a column or list; dropping appends.
	DroppableContainer DroppableKind = iota
	// DroppableItem is an item inside a container; dropping inserts next to it.
	DroppableItem
)

// Droppable describes a drop target.
type Droppable struct {
	ID   string
	Kind DroppableKind
	// ContainerID is the owning container for item targets and the
	// droppable's own id for containers.
	ContainerID string
	Node        Node
	// Accepts reports whether the active item may be dropped here. Nil
	// accepts everything.
	Accepts  func(active Item) bool
	Disabled bool
}

func (d Droppable) accepts(active Item) bool {
	if d.Disabled {
		return false
	}
	return d.Accepts == nil || d.Accepts(active)
}

func (d Droppable) containerID() string {
	if d.Kind == DroppableContainer && d.ContainerID == "" {
		return d.ID
	}
	return d.ContainerID
}
