package dnd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MutationError is emitted when a durable call fails and its local change
// has been rolled back.
type MutationError struct {
	// UndoID is the undo entry of the failed change, empty for undo and
	// maintenance writes.
	UndoID      string
	Description string
	ItemIDs     []string
	// Err wraps ErrMutationFailed and the persister's error.
	Err error
}

func (e MutationError) Error() string {
	return e.Err.Error()
}

func (e MutationError) Unwrap() error {
	return e.Err
}

// Mutator applies board changes optimistically and persists them in the
// background. Local state changes immediately; durable calls run on
// goroutines, serialized per item, and report back through the Scheduler.
// All methods must be called on the event loop.
type Mutator struct {
	board     *Board
	persister Persister
	sched     Scheduler
	log       *zap.Logger
	undo      *UndoStack
	errs      *Events[MutationError]

	undoTTL      time.Duration
	cleanupEvery time.Duration
	epsilon      float64
	limit        int

	ctx     context.Context
	cancel  context.CancelFunc
	cleanup Timer
	tails   map[string]chan struct{}
	wg      sync.WaitGroup
}

// MutatorOption configures a Mutator.
type MutatorOption func(*Mutator)

// WithUndoTTL sets how long undo entries stay available.
func WithUndoTTL(ttl time.Duration) MutatorOption {
	return func(m *Mutator) {
		m.undoTTL = ttl
	}
}

// WithUndoCleanup sets how often expired undo entries are dropped.
func WithUndoCleanup(every time.Duration) MutatorOption {
	return func(m *Mutator) {
		m.cleanupEvery = every
	}
}

// WithRenumberEpsilon sets the key gap below which a container is
// renumbered after a move.
func WithRenumberEpsilon(epsilon float64) MutatorOption {
	return func(m *Mutator) {
		m.epsilon = epsilon
	}
}

// WithFanOutLimit caps concurrent durable calls when a bulk change cannot
// be applied as one batch.
func WithFanOutLimit(n int) MutatorOption {
	return func(m *Mutator) {
		m.limit = n
	}
}

// WithMutatorLogger sets the logger for persistence failures.
func WithMutatorLogger(log *zap.Logger) MutatorOption {
	return func(m *Mutator) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMutator creates a mutator over board that persists through p.
func NewMutator(board *Board, p Persister, sched Scheduler, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		board:        board,
		persister:    p,
		sched:        sched,
		log:          zap.NewNop(),
		errs:         NewEvents[MutationError](),
		undoTTL:      DefaultUndoTTL,
		cleanupEvery: DefaultUndoCleanup,
		epsilon:      DefaultRenumberEpsilon,
		limit:        8,
		ctx:          context.Background(),
		tails:        make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.undo = NewUndoStack(m.undoTTL, sched.Now)
	return m
}

// Board returns the board the mutator changes.
func (m *Mutator) Board() *Board {
	return m.board
}

// UndoStack returns the undo stack.
func (m *Mutator) UndoStack() *UndoStack {
	return m.undo
}

// Errors returns the bus failed mutations are reported on.
func (m *Mutator) Errors() *Events[MutationError] {
	return m.errs
}

// Start begins periodic undo cleanup. Durable calls use ctx until Stop.
func (m *Mutator) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.cleanup = m.sched.Every(m.cleanupEvery, func() {
		if n := m.undo.Cleanup(); n > 0 {
			m.log.Debug("expired undo entries", zap.Int("count", n))
		}
	})
}

// Stop halts cleanup and cancels in-flight durable calls.
func (m *Mutator) Stop() {
	if m.cleanup != nil {
		m.cleanup.Stop()
		m.cleanup = nil
	}
	if m.cancel != nil {
		m.cancel()
	}
}

// Wait blocks until every durable call issued so far has returned. Their
// results are delivered through the Scheduler.
func (m *Mutator) Wait() {
	m.wg.Wait()
}

// Pending returns the number of items with a durable call in flight.
func (m *Mutator) Pending() int {
	return len(m.tails)
}

// Execute applies cmd locally, records it for undo and persists it.
func (m *Mutator) Execute(cmd Command) (UndoEntry, error) {
	if err := cmd.Apply(m.board); err != nil {
		return UndoEntry{}, err
	}
	entry := m.undo.Push(cmd)
	m.persist(cmd, entry.ID)
	return entry, nil
}

// Move moves an item to a position. If the new key leaves adjacent keys
// closer than the renumber epsilon, the target container is renumbered in
// the same atomic batch, so the move and the renumber persist, roll back and
// undo together.
func (m *Mutator) Move(id string, to Position) (UndoEntry, error) {
	item, ok := m.board.Item(id)
	if !ok {
		return UndoEntry{}, fmt.Errorf("move: %w: %q", ErrUnknownItem, id)
	}
	if !m.board.HasContainer(to.ContainerID) {
		return UndoEntry{}, fmt.Errorf("move: %w: %q", ErrUnknownContainer, to.ContainerID)
	}
	move := MoveCommand{ID: id, From: item.Position(), To: to}
	batch := m.renumberedMove(item, to)
	if batch == nil {
		return m.Execute(move)
	}
	entry, err := m.Execute(batch)
	if err != nil {
		return UndoEntry{}, err
	}
	m.invalidate(opIDs(batch.Ops()), entry.ID)
	return entry, nil
}

// renumberedMove returns the move of item to as a batch that also rewrites
// the target container to 1..n, or nil when the new key keeps every gap at
// or above epsilon.
func (m *Mutator) renumberedMove(item Item, to Position) *Batch {
	moved := item
	moved.ContainerID = to.ContainerID
	moved.OrderKey = to.OrderKey
	items := []Item{moved}
	for _, sib := range m.board.Items(to.ContainerID) {
		if sib.ID != item.ID {
			items = append(items, sib)
		}
	}
	slices.SortFunc(items, compareItems)

	keys := make([]float64, len(items))
	for i, it := range items {
		keys[i] = it.OrderKey
	}
	if !NeedsRenumber(keys, m.epsilon) {
		return nil
	}

	final := RenumberedKeys(len(items))
	batch := &Batch{Kind: UndoMove, Label: MoveCommand{ID: item.ID, To: to}.Describe(), Atomic: true}
	for i, it := range items {
		from := it.Position()
		if it.ID == item.ID {
			from = item.Position()
		} else if it.OrderKey == final[i] {
			continue
		}
		batch.Commands = append(batch.Commands, MoveCommand{
			ID:   it.ID,
			From: from,
			To:   Position{ContainerID: to.ContainerID, OrderKey: final[i]},
		})
	}
	return batch
}

// Place moves an item to a resolved drop placement.
func (m *Mutator) Place(id string, p Placement) (UndoEntry, error) {
	return m.Move(id, Position{ContainerID: p.ContainerID, OrderKey: p.OrderKey})
}

// Delete removes an item.
func (m *Mutator) Delete(id string) (UndoEntry, error) {
	item, ok := m.board.Item(id)
	if !ok {
		return UndoEntry{}, fmt.Errorf("delete: %w: %q", ErrUnknownItem, id)
	}
	return m.Execute(DeleteCommand{Item: item})
}

// BulkMove appends items to a container in the given order.
func (m *Mutator) BulkMove(ids []string, containerID string) (UndoEntry, error) {
	if !m.board.HasContainer(containerID) {
		return UndoEntry{}, fmt.Errorf("bulk move: %w: %q", ErrUnknownContainer, containerID)
	}
	keys := m.board.Keys(containerID, ids...)
	batch := &Batch{Kind: UndoBulkMove, Label: fmt.Sprintf("move %d items to %s", len(ids), containerID)}
	for _, id := range ids {
		item, ok := m.board.Item(id)
		if !ok {
			return UndoEntry{}, fmt.Errorf("bulk move: %w: %q", ErrUnknownItem, id)
		}
		key := OrderKeyAt(keys, len(keys))
		keys = append(keys, key)
		batch.Commands = append(batch.Commands, MoveCommand{
			ID:   id,
			From: item.Position(),
			To:   Position{ContainerID: containerID, OrderKey: key},
		})
	}
	return m.Execute(batch)
}

// BulkDelete removes several items as one undoable change.
func (m *Mutator) BulkDelete(ids []string) (UndoEntry, error) {
	batch := &Batch{Kind: UndoBulkDelete, Label: fmt.Sprintf("delete %d items", len(ids))}
	for _, id := range ids {
		item, ok := m.board.Item(id)
		if !ok {
			return UndoEntry{}, fmt.Errorf("bulk delete: %w: %q", ErrUnknownItem, id)
		}
		batch.Commands = append(batch.Commands, DeleteCommand{Item: item})
	}
	return m.Execute(batch)
}

// Renumber rewrites a container's keys to 1..n, keeping order. It is a
// maintenance write and is not added to the undo stack. Undo entries that
// touch the renumbered items are dropped, since their stored keys no longer
// fit between the new ones. Returns the number of items whose key changed.
func (m *Mutator) Renumber(containerID string) (int, error) {
	if !m.board.HasContainer(containerID) {
		return 0, fmt.Errorf("renumber: %w: %q", ErrUnknownContainer, containerID)
	}
	items := m.board.Items(containerID)
	keys := RenumberedKeys(len(items))
	batch := &Batch{Kind: UndoRenumber, Label: "renumber " + containerID, Atomic: true}
	for i, item := range items {
		if item.OrderKey == keys[i] {
			continue
		}
		batch.Commands = append(batch.Commands, MoveCommand{
			ID:   item.ID,
			From: item.Position(),
			To:   Position{ContainerID: containerID, OrderKey: keys[i]},
		})
	}
	if len(batch.Commands) == 0 {
		return 0, nil
	}
	if err := batch.Apply(m.board); err != nil {
		return 0, err
	}
	m.invalidate(opIDs(batch.Ops()), "")
	m.persist(batch, "")
	return len(batch.Commands), nil
}

// invalidate drops undo entries, other than keep, that touch ids.
func (m *Mutator) invalidate(ids []string, keep string) {
	if n := m.undo.RemoveTouching(ids, keep); n > 0 {
		m.log.Debug("dropped stale undo entries", zap.Int("count", n), zap.Strings("items", ids))
	}
}

// Undo reverts a live undo entry and persists the inverse.
func (m *Mutator) Undo(id string) error {
	entry, ok := m.undo.Take(id)
	if !ok {
		return fmt.Errorf("undo %q: %w", id, ErrUnknownUndo)
	}
	inv := entry.Command.Inverse()
	if err := inv.Apply(m.board); err != nil {
		return fmt.Errorf("undo %s: %w", entry.Description, err)
	}
	m.persist(inv, "")
	return nil
}

// UndoLast reverts the newest live undo entry.
func (m *Mutator) UndoLast() error {
	entry, ok := m.undo.Last()
	if !ok {
		return fmt.Errorf("undo last: %w", ErrUnknownUndo)
	}
	return m.Undo(entry.ID)
}

// persist issues the durable calls for cmd. Multi-item commands go through
// ApplyBatch when the persister supports it; otherwise each op is its own
// call and only the failed items are rolled back.
func (m *Mutator) persist(cmd Command, undoID string) {
	ops := cmd.Ops()
	if len(ops) == 0 {
		return
	}
	ids := opIDs(ops)
	desc := cmd.Describe()

	var call func(ctx context.Context) error
	bp, atomic := m.persister.(BatchPersister)
	switch {
	case len(ops) == 1:
		call = func(ctx context.Context) error { return ops[0].Apply(ctx, m.persister) }
	case atomic:
		call = func(ctx context.Context) error { return bp.ApplyBatch(ctx, ops) }
	default:
		call = func(ctx context.Context) error { return m.fanOut(ctx, ops) }
	}

	m.dispatch(ids, call, func(err error) {
		if err == nil {
			return
		}
		var bulk *BulkError
		batch, isBatch := cmd.(*Batch)
		hasBulk := isBatch && errors.As(err, &bulk)
		if hasBulk && !batch.Atomic {
			failed, kept := batch.Split(bulk.IDs())
			failed.Invert(m.board)
			if undoID != "" {
				m.undo.Replace(undoID, kept)
			}
			m.fail(undoID, desc, bulk.IDs(), err)
			return
		}
		cmd.Invert(m.board)
		if undoID != "" {
			m.undo.Remove(undoID)
		}
		if hasBulk {
			m.revertLanded(batch, bulk.IDs())
		}
		m.fail(undoID, desc, ids, err)
	})
}

// revertLanded writes back the From positions of the items of an atomic
// batch that persisted before another item failed. Items that have moved
// again since keep their later write.
func (m *Mutator) revertLanded(batch *Batch, failed []string) {
	_, landed := batch.Split(failed)
	back := &Batch{Kind: batch.Kind, Label: "revert " + batch.Label}
	for _, cmd := range landed.Commands {
		mv, ok := cmd.(MoveCommand)
		if !ok {
			continue
		}
		if item, ok := m.board.Item(mv.ID); ok && item.Position() == mv.From {
			back.Commands = append(back.Commands, mv.Inverse())
		}
	}
	m.persist(back, "")
}

func (m *Mutator) fanOut(ctx context.Context, ops []Op) error {
	var (
		mu     sync.Mutex
		failed = make(map[string]error)
		g      errgroup.Group
	)
	g.SetLimit(m.limit)
	for _, op := range ops {
		g.Go(func() error {
			if err := op.Apply(ctx, m.persister); err != nil {
				mu.Lock()
				failed[op.Item.ID] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if len(failed) > 0 {
		return &BulkError{Failed: failed}
	}
	return nil
}

// dispatch runs call on a goroutine once every earlier call touching the
// same items has returned, then posts done to the loop.
func (m *Mutator) dispatch(ids []string, call func(context.Context) error, done func(error)) {
	var waits []chan struct{}
	for _, id := range ids {
		if tail, ok := m.tails[id]; ok {
			waits = append(waits, tail)
		}
	}
	finished := make(chan struct{})
	for _, id := range ids {
		m.tails[id] = finished
	}

	ctx := m.ctx
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for _, w := range waits {
			<-w
		}
		err := safeCall(ctx, call)
		close(finished)
		m.sched.Post(func() {
			for _, id := range ids {
				if m.tails[id] == finished {
					delete(m.tails, id)
				}
			}
			done(err)
		})
	}()
}

func (m *Mutator) fail(undoID, desc string, ids []string, cause error) {
	m.log.Warn("mutation failed",
		zap.String("op", desc),
		zap.Strings("items", ids),
		zap.Error(cause),
	)
	m.errs.Emit(MutationError{
		UndoID:      undoID,
		Description: desc,
		ItemIDs:     ids,
		Err:         fmt.Errorf("%w: %s: %w", ErrMutationFailed, desc, cause),
	})
}

func safeCall(ctx context.Context, call func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("persister panic: %v", r)
		}
	}()
	return call(ctx)
}
