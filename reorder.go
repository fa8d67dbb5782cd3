package dnd

import (
	"fmt"
	"slices"
)

// Placement is the resolved destination of a drop.
type Placement struct {
	ContainerID string
	// Index is the item's position among its new siblings.
	Index    int
	OrderKey float64
}

// DropTarget identifies what the item was released over.
type DropTarget struct {
	ID          string
	Kind        DroppableKind
	ContainerID string
}

func (t DropTarget) container() string {
	if t.Kind == DroppableContainer && t.ContainerID == "" {
		return t.ID
	}
	return t.ContainerID
}

// ResolveDrop works out where activeID lands when dropped on target.
//
// Dropping on a container appends. Dropping on an item of the same
// container takes that item's index, shifting the items in between.
// Dropping on an item of another container inserts before it, or after it
// when after is set (the dragged centre is below the target's centre).
// Moved is false when the item would stay where it is.
func ResolveDrop(b *Board, activeID string, target DropTarget, after bool) (Placement, bool, error) {
	active, ok := b.Item(activeID)
	if !ok {
		return Placement{}, false, fmt.Errorf("resolve drop: %w: %q", ErrUnknownItem, activeID)
	}
	current := Placement{
		ContainerID: active.ContainerID,
		Index:       b.Index(activeID),
		OrderKey:    active.OrderKey,
	}
	if target.ID == activeID {
		return current, false, nil
	}

	containerID := target.container()
	if !b.HasContainer(containerID) {
		return Placement{}, false, fmt.Errorf("resolve drop: %w: %q", ErrUnknownContainer, containerID)
	}
	siblings := b.Keys(containerID, activeID)

	var index int
	switch target.Kind {
	case DroppableContainer:
		index = len(siblings)
	default:
		items := b.Items(containerID)
		overIdx := slices.IndexFunc(items, func(i Item) bool { return i.ID == target.ID })
		if overIdx < 0 {
			return Placement{}, false, fmt.Errorf("resolve drop: %w: %q", ErrUnknownItem, target.ID)
		}
		// In the same list the item takes the target's slot; across lists
		// it lands before or after the target.
		index = overIdx
		if active.ContainerID != containerID && after {
			index++
		}
	}

	if containerID == active.ContainerID && index == current.Index {
		return current, false, nil
	}
	return Placement{
		ContainerID: containerID,
		Index:       index,
		OrderKey:    OrderKeyAt(siblings, index),
	}, true, nil
}
