package dnd

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// OpKind is the type of a durable operation.
type OpKind uint8

const (
	OpMove OpKind = iota
	OpDelete
	OpRestore
)

// String returns a human-readable representation of the kind.
func (k OpKind) String() string {
	switch k {
	case OpMove:
		return "move"
	case OpDelete:
		return "delete"
	case OpRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// Op is one durable write. Move ops carry the destination in Item's
// ContainerID and OrderKey; restore ops carry the whole item.
type Op struct {
	Kind OpKind
	Item Item
}

// Apply issues the op against p.
func (op Op) Apply(ctx context.Context, p Persister) error {
	switch op.Kind {
	case OpMove:
		return p.MoveItem(ctx, op.Item.ID, op.Item.ContainerID, op.Item.OrderKey)
	case OpDelete:
		return p.DeleteItem(ctx, op.Item.ID)
	case OpRestore:
		return p.RestoreItem(ctx, op.Item)
	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

// Persister is the host's durable item API.
type Persister interface {
	MoveItem(ctx context.Context, id, containerID string, key float64) error
	DeleteItem(ctx context.Context, id string) error
	RestoreItem(ctx context.Context, item Item) error
}

// BatchPersister is implemented by persisters that can apply several ops
// atomically. Bulk commands use it when available.
type BatchPersister interface {
	Persister
	ApplyBatch(ctx context.Context, ops []Op) error
}

// BulkError reports the items whose durable call failed during a fan-out.
// Items not listed were persisted.
type BulkError struct {
	Failed map[string]error
}

func (e *BulkError) Error() string {
	ids := e.IDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf("%d of bulk failed: %s", len(ids), strings.Join(parts, "; "))
}

// Unwrap returns the individual failures.
func (e *BulkError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.IDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

// IDs returns the failed item ids, sorted.
func (e *BulkError) IDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
