package dnd

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grindlemire/go-dnd/internal/debug"
)

// Coordinator owns at most one drag session. It routes host input to the
// configured sensors, measures draggables and droppables, runs collision
// detection, drives auto-scroll and sortable previews, and on drop resolves
// the new placement and hands it to the Mutator.
//
// A Coordinator is not safe for concurrent use. Every method, and every
// callback the Scheduler runs, must execute on the host's event loop.
type Coordinator struct {
	sched          Scheduler
	log            *zap.Logger
	sensors        []Sensor
	detect         CollisionDetector
	autoScroll     AutoScrollOptions
	measuring      MeasuringOptions
	modifiers      []DeltaModifier
	confirm        ConfirmDropFunc
	confirmTimeout time.Duration
	suppressor     Suppressor
	mutator        *Mutator
	events         *Events[DragEvent]

	draggables map[string]Draggable
	droppables map[string]Droppable
	dropOrder  []string
	sortables  []*SortableContext

	listeners listenerSet
	cleanup   cleanupStack
	phase     phase
	pendingID string
	machine   sensorMachine
	session   *session
	scroller  *autoScroller
	remeasure Timer
}

// NewCoordinator creates a Coordinator with the given options.
func NewCoordinator(opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		log:            zap.NewNop(),
		sensors:        []Sensor{NewPointerSensor(), NewKeyboardSensor()},
		detect:         ClosestCorners,
		autoScroll:     DefaultAutoScrollOptions(),
		measuring:      DefaultMeasuringOptions(),
		confirmTimeout: DefaultConfirmTimeout,
		events:         NewEvents[DragEvent](),
		draggables:     make(map[string]Draggable),
		droppables:     make(map[string]Droppable),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.sched == nil {
		c.sched = NewLoopScheduler(0)
	}
	return c, nil
}

// Scheduler returns the scheduler the coordinator posts work to.
func (c *Coordinator) Scheduler() Scheduler {
	return c.sched
}

// Events returns the lifecycle event bus.
func (c *Coordinator) Events() *Events[DragEvent] {
	return c.events
}

// Dragging reports whether a session is open, including one waiting for
// its drop to be confirmed.
func (c *Coordinator) Dragging() bool {
	return c.session != nil
}

// Session returns a snapshot of the open session.
func (c *Coordinator) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return c.session.snapshot(), true
}

// Transform returns the transform the host should render id with: the
// proxy transform for the active item and the sortable preview for the
// rest.
func (c *Coordinator) Transform(id string) Transform {
	if s := c.session; s != nil && c.phase == phaseDragging && s.activeID == id {
		return s.transform()
	}
	for _, sc := range c.sortables {
		if t := sc.Transform(id); !t.IsIdentity() {
			return t
		}
	}
	return IdentityTransform()
}

// RegisterDraggable makes d available to sensors and Start.
func (c *Coordinator) RegisterDraggable(d Draggable) error {
	if d.ID == "" {
		return fmt.Errorf("draggable id cannot be empty")
	}
	c.draggables[d.ID] = d
	return nil
}

// UnregisterDraggable removes a draggable. Removing the active item cancels
// the session since its node can no longer be measured.
func (c *Coordinator) UnregisterDraggable(id string) {
	delete(c.draggables, id)
	if s := c.session; s != nil && s.activeID == id && c.phase == phaseDragging {
		c.cancel(CancelMeasurement)
	}
}

// RegisterDroppable adds or replaces a drop target. Targets registered
// mid-drag are measured immediately.
func (c *Coordinator) RegisterDroppable(d Droppable) error {
	if d.ID == "" {
		return fmt.Errorf("droppable id cannot be empty")
	}
	if _, ok := c.droppables[d.ID]; !ok {
		c.dropOrder = append(c.dropOrder, d.ID)
	}
	c.droppables[d.ID] = d
	if s := c.session; s != nil && c.phase == phaseDragging {
		c.measureDroppable(s, d)
		c.refresh()
	}
	return nil
}

// UnregisterDroppable removes a drop target.
func (c *Coordinator) UnregisterDroppable(id string) {
	if _, ok := c.droppables[id]; !ok {
		return
	}
	delete(c.droppables, id)
	c.dropOrder = slices.DeleteFunc(c.dropOrder, func(d string) bool { return d == id })
	if s := c.session; s != nil && c.phase == phaseDragging {
		delete(s.rects, id)
		c.refresh()
	}
}

// RegisterSortable adds a sortable list whose previews follow the drag.
func (c *Coordinator) RegisterSortable(sc *SortableContext) {
	c.sortables = append(c.sortables, sc)
	if s := c.session; s != nil && c.phase == phaseDragging {
		sc.begin(s.activeID, s.active.Measured(), c.sortableRect)
		sc.setOver(s.over)
	}
}

// UnregisterSortable removes the sortable list for a container.
func (c *Coordinator) UnregisterSortable(id string) {
	c.sortables = slices.DeleteFunc(c.sortables, func(sc *SortableContext) bool { return sc.ID() == id })
}

// HandleEvent feeds a host input event to the coordinator. While idle the
// event may activate a sensor; while a session runs it is delivered to the
// running sensor's listeners. An activator event that arrives while a
// session is open returns ErrConcurrentSession.
func (c *Coordinator) HandleEvent(ev Event) error {
	if c.phase == phaseIdle {
		for _, s := range c.sensors {
			if id, ok := s.activates(ev); ok {
				return c.begin(s, id, ev)
			}
		}
		return nil
	}
	if c.listeners.dispatch(ev) {
		return nil
	}
	for _, s := range c.sensors {
		if _, ok := s.activates(ev); ok {
			return ErrConcurrentSession
		}
	}
	return nil
}

// Start opens a session for activeID programmatically, bypassing sensors.
// initial is the reference point later Move coordinates are relative to.
func (c *Coordinator) Start(activeID string, initial Point) error {
	if c.phase != phaseIdle {
		return ErrConcurrentSession
	}
	if _, ok := c.draggables[activeID]; !ok {
		return fmt.Errorf("start drag: %w: %q", ErrUnknownItem, activeID)
	}
	c.phase = phasePending
	c.pendingID = activeID
	return c.activate(activeID, Sensor{Kind: SensorNone, AutoScroll: true}, initial)
}

// Move moves the active item to coords.
func (c *Coordinator) Move(coords Point) error {
	if c.phase != phaseDragging {
		return ErrNoSession
	}
	c.moveTo(coords)
	return nil
}

// End drops the active item over the current target.
func (c *Coordinator) End() error {
	if c.phase != phaseDragging {
		return ErrNoSession
	}
	c.drop()
	return nil
}

// Cancel abandons the session. The board is left untouched.
func (c *Coordinator) Cancel() error {
	switch c.phase {
	case phaseIdle:
		return ErrNoSession
	case phasePending:
		c.abort(c.pendingID, ErrActivationRejected)
	default:
		c.cancel(CancelUser)
	}
	return nil
}

// InvalidateLayout tells the coordinator that droppable positions may have
// changed. Re-measurement is debounced.
func (c *Coordinator) InvalidateLayout() {
	if c.phase == phaseDragging {
		c.scheduleRemeasure()
	}
}

// Close cancels any open session.
func (c *Coordinator) Close() {
	if c.phase != phaseIdle {
		_ = c.Cancel()
	}
}

func (c *Coordinator) begin(s Sensor, activeID string, ev Event) error {
	d, ok := c.draggables[activeID]
	if !ok {
		return fmt.Errorf("begin drag: %w: %q", ErrUnknownItem, activeID)
	}
	if d.Disabled {
		return fmt.Errorf("begin drag %q: %w", activeID, ErrActivationRejected)
	}
	c.phase = phasePending
	c.pendingID = activeID
	c.machine = newMachine(c, s, activeID, ev)
	c.log.Debug("drag pending", zap.String("item", activeID), zap.Stringer("sensor", s.Kind))
	c.machine.attach()
	return nil
}

// activate opens the session once a sensor's constraint is met.
func (c *Coordinator) activate(activeID string, sensor Sensor, initial Point) error {
	if c.phase != phasePending {
		return ErrConcurrentSession
	}
	d, ok := c.draggables[activeID]
	if !ok {
		err := fmt.Errorf("activate: %w: %q", ErrUnknownItem, activeID)
		c.abort(activeID, err)
		return err
	}

	var (
		rect      ScrollRect
		ancestors []Scrollable
		err       error
	)
	opts := MeasureOptions{IgnoreTransform: c.measuring.IgnoreTransform}
	if !c.callHost("measure active", func() {
		rect, err = measureScrollRect(d.Node, opts)
		if err == nil {
			ancestors = d.Node.ScrollAncestors()
		}
	}) {
		err = ErrMeasurementUnavailable
	}
	if err != nil {
		err = fmt.Errorf("activate %q: %w", activeID, err)
		c.abort(activeID, err)
		return err
	}

	if sensor.Kind == SensorKeyboard {
		initial = rect.Measured().TopLeft()
	}
	s := &session{
		id:         uuid.NewString(),
		activeID:   activeID,
		sensor:     sensor.Kind,
		initial:    initial,
		coords:     initial,
		active:     rect,
		activeNode: d.Node,
		ancestors:  ancestors,
		rects:      make(map[string]ScrollRect),
	}
	c.session = s
	c.phase = phaseDragging
	c.pendingID = ""

	c.cleanup.push(c.stopRemeasure)
	c.measureDroppables(s)
	for _, sc := range c.sortables {
		sc.begin(activeID, rect.Measured(), c.sortableRect)
	}
	c.cleanup.push(func() {
		for _, sc := range c.sortables {
			sc.reset()
		}
	})
	if c.autoScroll.Enabled && sensor.AutoScroll {
		scroller := &autoScroller{c: c, opts: c.autoScroll}
		scroller.setAncestors(ancestors)
		c.scroller = scroller
		c.cleanup.push(func() {
			scroller.stop()
			c.scroller = nil
		})
	}

	c.log.Info("drag start",
		zap.String("session", s.id),
		zap.String("item", activeID),
		zap.Stringer("sensor", sensor.Kind),
	)
	c.emit(DragStartEvent{SessionID: s.id, ActiveID: activeID, Sensor: sensor.Kind, Initial: initial})
	if c.session == s {
		c.refresh()
	}
	return nil
}

func (c *Coordinator) moveTo(coords Point) {
	s := c.session
	if s == nil || c.phase != phaseDragging {
		return
	}
	prev := s.delta
	s.coords = coords
	s.delta = applyModifiers(c.modifiers, coords.Sub(s.initial))
	if c.scroller != nil {
		c.scroller.intent.track(s.delta.Sub(prev))
	}

	prevOver, changed := c.detectCollisions(s)
	c.emit(DragMoveEvent{
		SessionID: s.id,
		ActiveID:  s.activeID,
		Delta:     s.delta,
		Over:      s.over,
		Transform: s.transform(),
	})
	if c.session != s {
		return
	}
	if changed {
		c.overChanged(s, prevOver)
	}
	if c.scroller != nil {
		c.scroller.update()
	}
}

// refresh re-runs collision detection without a move, for example after a
// scroll moved the droppables under a stationary item.
func (c *Coordinator) refresh() {
	s := c.session
	if s == nil || c.phase != phaseDragging {
		return
	}
	if prev, changed := c.detectCollisions(s); changed {
		c.overChanged(s, prev)
	}
	if c.session == s && c.scroller != nil {
		c.scroller.update()
	}
}

// detectCollisions updates the session's collisions and over target and
// reports the previous target when it changed.
func (c *Coordinator) detectCollisions(s *session) (string, bool) {
	active := c.activeItem(s.activeID)
	var collisions []Collision
	ok := c.callHost("collision", func() {
		candidates := make([]CollisionCandidate, 0, len(c.dropOrder))
		for _, id := range c.dropOrder {
			r, measured := s.rects[id]
			if !measured || !c.droppables[id].accepts(active) {
				continue
			}
			candidates = append(candidates, CollisionCandidate{ID: id, Rect: r.Rect()})
		}
		args := CollisionArgs{Dragged: s.draggedRect(), Candidates: candidates}
		if s.sensor != SensorKeyboard {
			p := s.coords
			args.Pointer = &p
		}
		collisions = c.detect(args)
	})
	if !ok {
		return s.over, false
	}

	s.collisions = collisions
	prev := s.over
	s.over = ""
	if len(collisions) > 0 {
		s.over = collisions[0].ID
	}
	return prev, prev != s.over
}

func (c *Coordinator) overChanged(s *session, prev string) {
	c.log.Debug("drag over", zap.String("item", s.activeID), zap.String("from", prev), zap.String("to", s.over))
	c.emit(DragOverEvent{SessionID: s.id, ActiveID: s.activeID, Previous: prev, Over: s.over})
	if c.session != s {
		return
	}
	for _, sc := range c.sortables {
		sc.setOver(s.over)
	}
	c.scheduleRemeasure()
	if c.scroller != nil {
		c.scroller.setAncestors(c.scrollAncestors(s))
	}
}

// scrollAncestors is the union of the active node's and the over node's
// scroll ancestors, active first.
func (c *Coordinator) scrollAncestors(s *session) []Scrollable {
	out := slices.Clone(s.ancestors)
	d, ok := c.droppables[s.over]
	if !ok || d.Node == nil {
		return out
	}
	var extra []Scrollable
	c.callHost("scroll ancestors", func() { extra = d.Node.ScrollAncestors() })
	for _, a := range extra {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func (c *Coordinator) activeItem(id string) Item {
	if c.mutator != nil {
		if item, ok := c.mutator.Board().Item(id); ok {
			return item
		}
	}
	return Item{ID: id}
}

func (c *Coordinator) sortableRect(id string) (Rect, bool) {
	s := c.session
	if s != nil {
		if r, ok := s.rects[id]; ok {
			return r.Rect(), true
		}
	}
	d, ok := c.draggables[id]
	if !ok {
		return Rect{}, false
	}
	var (
		r   Rect
		err error
	)
	if !c.callHost("measure sortable", func() {
		r, err = MeasureRect(d.Node, MeasureOptions{IgnoreTransform: c.measuring.IgnoreTransform})
	}) || err != nil {
		return Rect{}, false
	}
	return r, true
}

func (c *Coordinator) measureDroppables(s *session) {
	for _, id := range c.dropOrder {
		c.measureDroppable(s, c.droppables[id])
	}
}

// measureDroppable refreshes one droppable's rect. A failed measurement
// keeps the last known rect.
func (c *Coordinator) measureDroppable(s *session, d Droppable) {
	var (
		r   ScrollRect
		err error
	)
	opts := MeasureOptions{IgnoreTransform: c.measuring.IgnoreTransform}
	if !c.callHost("measure droppable", func() { r, err = measureScrollRect(d.Node, opts) }) {
		return
	}
	if err != nil {
		if _, had := s.rects[d.ID]; had {
			c.log.Debug("measurement fallback", zap.String("droppable", d.ID), zap.Error(err))
		}
		return
	}
	s.rects[d.ID] = r
}

func (c *Coordinator) scheduleRemeasure() {
	c.stopRemeasure()
	c.remeasure = c.sched.AfterFunc(c.measuring.Debounce, c.remeasureNow)
}

func (c *Coordinator) stopRemeasure() {
	if c.remeasure != nil {
		c.remeasure.Stop()
		c.remeasure = nil
	}
}

func (c *Coordinator) remeasureNow() {
	c.remeasure = nil
	s := c.session
	if s == nil || c.phase != phaseDragging {
		return
	}
	c.measureDroppables(s)
	if c.measuring.IgnoreTransform {
		var (
			r   Rect
			err error
		)
		opts := MeasureOptions{IgnoreTransform: true}
		if c.callHost("measure active", func() { r, err = MeasureRect(s.activeNode, opts) }) {
			if err == nil {
				s.shift = RectDelta(r, s.active.Rect())
			} else {
				c.log.Debug("active measurement fallback", zap.String("item", s.activeID), zap.Error(err))
			}
		}
	}
	c.refresh()
}

// drop ends the sensor and resolves the drop, asking the confirm hook
// first when one is configured.
func (c *Coordinator) drop() {
	s := c.session
	if s == nil || c.phase != phaseDragging {
		return
	}
	c.teardown(StateEnded)
	c.phase = phaseDropping
	drop := c.resolveDrop(s)

	if c.confirm == nil {
		c.finishDrop(s, drop, true, nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.confirmTimeout)
	s.cancelConfirm = cancel
	confirm := c.confirm
	go func() {
		ok, err := safeConfirm(ctx, confirm, drop)
		c.sched.Post(func() {
			cancel()
			c.finishDrop(s, drop, ok, err)
		})
	}()
}

func (c *Coordinator) resolveDrop(s *session) Drop {
	drop := Drop{SessionID: s.id, ActiveID: s.activeID, Over: s.over, Delta: s.delta}
	if c.mutator == nil || s.over == "" {
		return drop
	}
	d, ok := c.droppables[s.over]
	if !ok {
		return drop
	}
	after := false
	if r, ok := s.rects[s.over]; ok {
		after = s.draggedRect().Center().Y > r.Rect().Center().Y
	}
	target := DropTarget{ID: d.ID, Kind: d.Kind, ContainerID: d.containerID()}
	p, moved, err := ResolveDrop(c.mutator.Board(), s.activeID, target, after)
	if err != nil {
		c.log.Warn("resolve drop", zap.String("item", s.activeID), zap.String("over", s.over), zap.Error(err))
		return drop
	}
	drop.Placement = p
	drop.Moved = moved
	return drop
}

func (c *Coordinator) finishDrop(s *session, drop Drop, ok bool, err error) {
	if c.session != s || c.phase != phaseDropping {
		// Cancelled while the confirm hook ran.
		return
	}
	c.session = nil
	c.phase = phaseIdle

	if err != nil || !ok {
		c.log.Info("drop vetoed", zap.String("session", s.id), zap.String("item", s.activeID), zap.Error(err))
		c.emit(DragCancelEvent{SessionID: s.id, ActiveID: s.activeID, Reason: CancelVetoed})
		return
	}
	if drop.Moved {
		if _, err := c.mutator.Place(s.activeID, drop.Placement); err != nil {
			c.log.Warn("apply drop", zap.String("item", s.activeID), zap.Error(err))
			drop.Moved = false
		}
	}
	c.log.Info("drag end",
		zap.String("session", s.id),
		zap.String("item", s.activeID),
		zap.String("over", drop.Over),
		zap.Bool("moved", drop.Moved),
	)
	c.emit(DragEndEvent{
		SessionID: s.id,
		ActiveID:  s.activeID,
		Over:      drop.Over,
		Delta:     drop.Delta,
		Placement: drop.Placement,
		Moved:     drop.Moved,
	})
}

// cancel tears down an activated session without touching the board.
func (c *Coordinator) cancel(reason CancelReason) {
	s := c.session
	switch c.phase {
	case phaseDragging:
		c.teardown(StateCancelled)
	case phaseDropping:
		if s.cancelConfirm != nil {
			s.cancelConfirm()
		}
	default:
		return
	}
	c.session = nil
	c.phase = phaseIdle
	c.log.Info("drag cancelled", zap.String("session", s.id), zap.String("item", s.activeID), zap.Stringer("reason", reason))
	c.emit(DragCancelEvent{SessionID: s.id, ActiveID: s.activeID, Reason: reason})
}

// abort rejects a pending activation. No session was opened.
func (c *Coordinator) abort(activeID string, err error) {
	if c.phase != phasePending {
		return
	}
	c.teardown(StateCancelled)
	c.phase = phaseIdle
	c.pendingID = ""
	c.log.Debug("activation aborted", zap.String("item", activeID), zap.Error(err))
	c.emit(DragAbortEvent{ActiveID: activeID, Err: err})
}

// teardown detaches listeners and stops timers in reverse order of
// registration.
func (c *Coordinator) teardown(state SensorState) {
	c.cleanup.run()
	if c.machine != nil {
		c.machine.finish(state)
		c.machine = nil
	}
}

func (c *Coordinator) emit(ev DragEvent) {
	c.callHost("event handler", func() { c.events.Emit(ev) })
}

// callHost runs a host callback. A panic is logged and turns the open
// session into a CancelFault on the next loop turn.
func (c *Coordinator) callHost(name string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			c.log.Error("host callback panicked", zap.String("callback", name), zap.Any("panic", r))
			debug.Log("%s panicked: %v", name, r)
			if s := c.session; s != nil {
				c.sched.Post(func() {
					if c.session == s {
						c.cancel(CancelFault)
					}
				})
			}
		}
	}()
	fn()
	return true
}

func safeConfirm(ctx context.Context, fn ConfirmDropFunc, drop Drop) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("confirm drop panic: %v", r)
		}
	}()
	return fn(ctx, drop)
}
