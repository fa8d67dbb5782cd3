package dnd

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBoard_Items(t *testing.T) {
	b := NewBoard("todo", "done", "todo")
	if diff := cmp.Diff([]string{"todo", "done"}, b.Containers()); diff != "" {
		t.Errorf("Containers() mismatch (-want +got):\n%s", diff)
	}

	for _, item := range []Item{
		{ID: "y", ContainerID: "todo", OrderKey: 2},
		{ID: "x", ContainerID: "todo", OrderKey: 2},
		{ID: "w", ContainerID: "todo", OrderKey: -1},
		{ID: "z", ContainerID: "done", OrderKey: 1},
	} {
		mustNil(t, b.Put(item))
	}

	if diff := cmp.Diff([]string{"w", "x", "y"}, itemIDs(b.Items("todo"))); diff != "" {
		t.Errorf("Items(todo) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{-1, 2}, b.Keys("todo", "x")); diff != "" {
		t.Errorf("Keys(todo, x) mismatch (-want +got):\n%s", diff)
	}
	if got := b.Index("y"); got != 2 {
		t.Errorf("Index(y) = %d, want 2", got)
	}
	if got := b.Index("missing"); got != -1 {
		t.Errorf("Index(missing) = %d, want -1", got)
	}
	if diff := cmp.Diff([]string{"w", "x", "y", "z"}, b.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestBoard_PutUnknownContainer(t *testing.T) {
	b := NewBoard("todo")
	err := b.Put(Item{ID: "a", ContainerID: "archive"})
	if !errors.Is(err, ErrUnknownContainer) {
		t.Errorf("Put() error = %v, want ErrUnknownContainer", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestBoard_RemoveAndSnapshot(t *testing.T) {
	b := newTestBoard()
	snap := b.Snapshot()

	item, ok := b.Remove("b")
	if !ok || item.OrderKey != 2 {
		t.Errorf("Remove(b) = %+v, %v", item, ok)
	}
	if _, ok := b.Remove("b"); ok {
		t.Error("second Remove(b) reported success")
	}
	if _, ok := snap["b"]; !ok {
		t.Error("snapshot changed after Remove")
	}
	if b.Len() != 4 {
		t.Errorf("Len() = %d, want 4", b.Len())
	}
}
