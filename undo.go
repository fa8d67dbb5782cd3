package dnd

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultUndoTTL is how long an undo entry stays available.
	DefaultUndoTTL = 10 * time.Second
	// DefaultUndoCleanup is how often expired entries are dropped.
	DefaultUndoCleanup = 5 * time.Second
)

// UndoKind classifies an undo entry.
type UndoKind string

const (
	UndoMove       UndoKind = "move"
	UndoDelete     UndoKind = "delete"
	UndoBulkMove   UndoKind = "bulk_move"
	UndoBulkDelete UndoKind = "bulk_delete"
	UndoRenumber   UndoKind = "renumber"
)

// UndoEntry is one undoable change.
type UndoEntry struct {
	ID          string
	Kind        UndoKind
	Description string
	Command     Command
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// UndoStack holds recent undoable changes until they expire.
type UndoStack struct {
	ttl     time.Duration
	now     func() time.Time
	entries []UndoEntry
}

// NewUndoStack creates a stack whose entries live for ttl.
func NewUndoStack(ttl time.Duration, now func() time.Time) *UndoStack {
	if ttl <= 0 {
		ttl = DefaultUndoTTL
	}
	if now == nil {
		now = time.Now
	}
	return &UndoStack{ttl: ttl, now: now}
}

// Push records cmd and returns its entry.
func (s *UndoStack) Push(cmd Command) UndoEntry {
	now := s.now()
	entry := UndoEntry{
		ID:          uuid.NewString(),
		Kind:        undoKindOf(cmd),
		Description: cmd.Describe(),
		Command:     cmd,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	s.entries = append(s.entries, entry)
	return entry
}

// Get returns a live entry.
func (s *UndoStack) Get(id string) (UndoEntry, bool) {
	idx := s.index(id)
	if idx < 0 {
		return UndoEntry{}, false
	}
	return s.entries[idx], true
}

// Take removes and returns a live entry.
func (s *UndoStack) Take(id string) (UndoEntry, bool) {
	idx := s.index(id)
	if idx < 0 {
		return UndoEntry{}, false
	}
	entry := s.entries[idx]
	s.entries = slices.Delete(s.entries, idx, idx+1)
	return entry, true
}

// Last returns the newest live entry.
func (s *UndoStack) Last() (UndoEntry, bool) {
	now := s.now()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if now.Before(s.entries[i].ExpiresAt) {
			return s.entries[i], true
		}
	}
	return UndoEntry{}, false
}

// Replace swaps the command of an entry, used when part of a bulk change
// was rolled back. An empty batch removes the entry.
func (s *UndoStack) Replace(id string, cmd Command) {
	idx := slices.IndexFunc(s.entries, func(e UndoEntry) bool { return e.ID == id })
	if idx < 0 {
		return
	}
	if b, ok := cmd.(*Batch); ok && len(b.Commands) == 0 {
		s.entries = slices.Delete(s.entries, idx, idx+1)
		return
	}
	s.entries[idx].Command = cmd
}

// Remove drops an entry regardless of expiry.
func (s *UndoStack) Remove(id string) {
	s.entries = slices.DeleteFunc(s.entries, func(e UndoEntry) bool { return e.ID == id })
}

// RemoveTouching drops every entry other than keep whose command writes
// one of ids, and returns how many were removed.
func (s *UndoStack) RemoveTouching(ids []string, keep string) int {
	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e UndoEntry) bool {
		return e.ID != keep && touches(e.Command, ids)
	})
	return before - len(s.entries)
}

// Cleanup drops expired entries and returns how many were removed.
func (s *UndoStack) Cleanup() int {
	now := s.now()
	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e UndoEntry) bool {
		return !now.Before(e.ExpiresAt)
	})
	return before - len(s.entries)
}

// Len returns the number of entries, including expired ones not yet
// cleaned up.
func (s *UndoStack) Len() int {
	return len(s.entries)
}

func (s *UndoStack) index(id string) int {
	now := s.now()
	return slices.IndexFunc(s.entries, func(e UndoEntry) bool {
		return e.ID == id && now.Before(e.ExpiresAt)
	})
}

func undoKindOf(cmd Command) UndoKind {
	switch c := cmd.(type) {
	case MoveCommand:
		return UndoMove
	case DeleteCommand:
		return UndoDelete
	case *Batch:
		return c.Kind
	default:
		return ""
	}
}
