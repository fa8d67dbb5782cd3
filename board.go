package dnd

import (
	"cmp"
	"fmt"
	"slices"
)

// Item is one card on the board.
type Item struct {
	ID          string
	ContainerID string
	OrderKey    float64
	Payload     any
}

// Position is where an item sits: its container and order key.
type Position struct {
	ContainerID string
	OrderKey    float64
}

// Position returns the item's container and key.
func (i Item) Position() Position {
	return Position{ContainerID: i.ContainerID, OrderKey: i.OrderKey}
}

// Board is the in-memory item state the host renders. It is owned by the
// event loop; it is not safe for concurrent use.
type Board struct {
	containers []string
	items      map[string]Item
}

// NewBoard creates a board with the given containers in display order.
func NewBoard(containers ...string) *Board {
	b := &Board{items: make(map[string]Item)}
	for _, id := range containers {
		b.AddContainer(id)
	}
	return b
}

// AddContainer appends a container. Adding an existing id is a no-op.
func (b *Board) AddContainer(id string) {
	if b.HasContainer(id) {
		return
	}
	b.containers = append(b.containers, id)
}

// HasContainer reports whether id is a known container.
func (b *Board) HasContainer(id string) bool {
	return slices.Contains(b.containers, id)
}

// Containers returns the container ids in display order.
func (b *Board) Containers() []string {
	return slices.Clone(b.containers)
}

// Put inserts or replaces an item.
func (b *Board) Put(item Item) error {
	if !b.HasContainer(item.ContainerID) {
		return fmt.Errorf("put %q: %w: %q", item.ID, ErrUnknownContainer, item.ContainerID)
	}
	b.items[item.ID] = item
	return nil
}

// Item returns the item with the given id.
func (b *Board) Item(id string) (Item, bool) {
	item, ok := b.items[id]
	return item, ok
}

// Remove deletes an item and returns what was removed.
func (b *Board) Remove(id string) (Item, bool) {
	item, ok := b.items[id]
	if ok {
		delete(b.items, id)
	}
	return item, ok
}

// Len returns the number of items on the board.
func (b *Board) Len() int {
	return len(b.items)
}

// IDs returns every item id, sorted.
func (b *Board) IDs() []string {
	ids := make([]string, 0, len(b.items))
	for id := range b.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Items returns the items of a container ordered by key. Equal keys fall
// back to id order so rendering is deterministic.
func (b *Board) Items(containerID string) []Item {
	var out []Item
	for _, item := range b.items {
		if item.ContainerID == containerID {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, compareItems)
	return out
}

// Keys returns the ordered keys of a container, excluding the given ids.
func (b *Board) Keys(containerID string, exclude ...string) []float64 {
	var keys []float64
	for _, item := range b.Items(containerID) {
		if slices.Contains(exclude, item.ID) {
			continue
		}
		keys = append(keys, item.OrderKey)
	}
	return keys
}

// Index returns the position of id within its container's ordered items.
func (b *Board) Index(id string) int {
	item, ok := b.items[id]
	if !ok {
		return -1
	}
	return slices.IndexFunc(b.Items(item.ContainerID), func(i Item) bool { return i.ID == id })
}

// Snapshot returns every item keyed by id.
func (b *Board) Snapshot() map[string]Item {
	out := make(map[string]Item, len(b.items))
	for id, item := range b.items {
		out[id] = item
	}
	return out
}

func compareItems(a, b Item) int {
	if c := cmp.Compare(a.OrderKey, b.OrderKey); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
