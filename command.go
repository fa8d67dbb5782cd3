package dnd

import (
	"fmt"
	"slices"
)

// Command is a reversible board mutation.
type Command interface {
	// Apply performs the change on b.
	Apply(b *Board) error
	// Invert rolls back a previous Apply.
	Invert(b *Board)
	// Inverse returns a command that undoes this one as a new change.
	Inverse() Command
	// Ops returns the durable writes that persist the change.
	Ops() []Op
	// Describe returns a short human description for undo entries.
	Describe() string
}

// MoveCommand moves one item between positions.
type MoveCommand struct {
	ID   string
	From Position
	To   Position
}

func (c MoveCommand) Apply(b *Board) error {
	item, ok := b.Item(c.ID)
	if !ok {
		return fmt.Errorf("move: %w: %q", ErrUnknownItem, c.ID)
	}
	item.ContainerID = c.To.ContainerID
	item.OrderKey = c.To.OrderKey
	return b.Put(item)
}

// Invert restores From unless the item has moved again since, in which
// case the later write wins.
func (c MoveCommand) Invert(b *Board) {
	item, ok := b.Item(c.ID)
	if !ok || item.Position() != c.To {
		return
	}
	item.ContainerID = c.From.ContainerID
	item.OrderKey = c.From.OrderKey
	_ = b.Put(item)
}

func (c MoveCommand) Inverse() Command {
	return MoveCommand{ID: c.ID, From: c.To, To: c.From}
}

func (c MoveCommand) Ops() []Op {
	return []Op{{Kind: OpMove, Item: Item{ID: c.ID, ContainerID: c.To.ContainerID, OrderKey: c.To.OrderKey}}}
}

func (c MoveCommand) Describe() string {
	return fmt.Sprintf("move %s to %s", c.ID, c.To.ContainerID)
}

// DeleteCommand removes an item. Item holds the full state so the delete
// can be undone.
type DeleteCommand struct {
	Item Item
}

func (c DeleteCommand) Apply(b *Board) error {
	if _, ok := b.Remove(c.Item.ID); !ok {
		return fmt.Errorf("delete: %w: %q", ErrUnknownItem, c.Item.ID)
	}
	return nil
}

func (c DeleteCommand) Invert(b *Board) {
	if _, ok := b.Item(c.Item.ID); ok {
		return
	}
	_ = b.Put(c.Item)
}

func (c DeleteCommand) Inverse() Command {
	return RestoreCommand(c)
}

func (c DeleteCommand) Ops() []Op {
	return []Op{{Kind: OpDelete, Item: c.Item}}
}

func (c DeleteCommand) Describe() string {
	return fmt.Sprintf("delete %s", c.Item.ID)
}

// RestoreCommand puts a deleted item back exactly as it was.
type RestoreCommand struct {
	Item Item
}

func (c RestoreCommand) Apply(b *Board) error {
	if _, ok := b.Item(c.Item.ID); ok {
		return fmt.Errorf("restore %q: item exists", c.Item.ID)
	}
	return b.Put(c.Item)
}

func (c RestoreCommand) Invert(b *Board) {
	b.Remove(c.Item.ID)
}

func (c RestoreCommand) Inverse() Command {
	return DeleteCommand(c)
}

func (c RestoreCommand) Ops() []Op {
	return []Op{{Kind: OpRestore, Item: c.Item}}
}

func (c RestoreCommand) Describe() string {
	return fmt.Sprintf("restore %s", c.Item.ID)
}

// Batch groups single-item commands that are applied, persisted and undone
// together. Bulk operations and renumbering are batches.
type Batch struct {
	Kind     UndoKind
	Label    string
	Commands []Command
	// Atomic batches are rolled back whole when any item fails to persist.
	// Otherwise only the failed items are inverted.
	Atomic bool
}

// Apply applies every command, rolling back the applied prefix if one
// fails.
func (c *Batch) Apply(b *Board) error {
	for i, cmd := range c.Commands {
		if err := cmd.Apply(b); err != nil {
			for j := i - 1; j >= 0; j-- {
				c.Commands[j].Invert(b)
			}
			return err
		}
	}
	return nil
}

func (c *Batch) Invert(b *Board) {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		c.Commands[i].Invert(b)
	}
}

func (c *Batch) Inverse() Command {
	inv := &Batch{Kind: c.Kind, Label: "undo " + c.Label, Atomic: c.Atomic}
	for i := len(c.Commands) - 1; i >= 0; i-- {
		inv.Commands = append(inv.Commands, c.Commands[i].Inverse())
	}
	return inv
}

func (c *Batch) Ops() []Op {
	var ops []Op
	for _, cmd := range c.Commands {
		ops = append(ops, cmd.Ops()...)
	}
	return ops
}

func (c *Batch) Describe() string {
	return c.Label
}

// Split partitions the batch by whether a command touches one of ids.
func (c *Batch) Split(ids []string) (matched, rest *Batch) {
	matched = &Batch{Kind: c.Kind, Label: c.Label}
	rest = &Batch{Kind: c.Kind, Label: c.Label}
	for _, cmd := range c.Commands {
		if touches(cmd, ids) {
			matched.Commands = append(matched.Commands, cmd)
		} else {
			rest.Commands = append(rest.Commands, cmd)
		}
	}
	return matched, rest
}

func touches(cmd Command, ids []string) bool {
	for _, op := range cmd.Ops() {
		if slices.Contains(ids, op.Item.ID) {
			return true
		}
	}
	return false
}

// opIDs returns the distinct item ids ops write to.
func opIDs(ops []Op) []string {
	var ids []string
	for _, op := range ops {
		if !slices.Contains(ids, op.Item.ID) {
			ids = append(ids, op.Item.ID)
		}
	}
	return ids
}
