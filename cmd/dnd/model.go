package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	dnd "github.com/grindlemire/go-dnd"
	"github.com/grindlemire/go-dnd/internal/config"
	"github.com/grindlemire/go-dnd/internal/debug"
	"github.com/grindlemire/go-dnd/internal/store"
)

// loopMsg carries a scheduler callback into the bubbletea update loop so
// the engine only ever runs on one goroutine.
type loopMsg func()

// waitForLoop waits for the next scheduler callback.
func waitForLoop(q <-chan func()) tea.Cmd {
	return func() tea.Msg {
		return loopMsg(<-q)
	}
}

// model is the board's bubbletea model. It owns the engine and feeds it
// terminal input translated to pointer and key events.
type model struct {
	cancel context.CancelFunc
	log    *zap.Logger

	titles  map[string]string
	board   *dnd.Board
	sched   *dnd.LoopScheduler
	mut     *dnd.Mutator
	coord   *dnd.Coordinator
	layout  layout
	scrolls []*columnScroll

	sortables  map[string]*dnd.SortableContext
	registered map[string]bool

	focus  string
	marked map[string]bool
	status string
	failed bool

	unsubscribe []func()
}

func newModel(ctx context.Context, cfg config.Config, st *store.Store) (*model, error) {
	cols, err := st.Columns(ctx)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errors.New("board has no columns, run dnd seed first")
	}
	board, err := st.LoadBoard(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	m := &model{
		cancel:     cancel,
		log:        debug.Logger(),
		titles:     make(map[string]string, len(cols)),
		board:      board,
		sched:      dnd.NewLoopScheduler(0),
		sortables:  make(map[string]*dnd.SortableContext, len(cols)),
		registered: make(map[string]bool),
		marked:     make(map[string]bool),
	}

	m.mut = dnd.NewMutator(board, st, m.sched,
		append(cfg.MutatorOptions(), dnd.WithMutatorLogger(m.log))...)
	m.mut.Start(ctx)

	opts := append(cfg.Options(),
		dnd.WithScheduler(m.sched),
		dnd.WithMutator(m.mut),
		dnd.WithLogger(m.log),
	)
	m.coord, err = dnd.NewCoordinator(opts...)
	if err != nil {
		m.close()
		return nil, err
	}

	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
		m.titles[c.ID] = c.Title
		m.scrolls = append(m.scrolls, &columnScroll{host: m, index: i})
		if err := m.coord.RegisterDroppable(dnd.Droppable{
			ID:          c.ID,
			Kind:        dnd.DroppableContainer,
			ContainerID: c.ID,
			Node:        columnNode{host: m, index: i},
		}); err != nil {
			m.close()
			return nil, err
		}
		sc := dnd.NewSortableContext(c.ID, nil, dnd.VerticalListSorting)
		m.sortables[c.ID] = sc
		m.coord.RegisterSortable(sc)
	}
	m.layout = newLayout(80, 24, ids)

	m.unsubscribe = append(m.unsubscribe,
		m.coord.Events().Subscribe(m.onDrag),
		m.mut.Errors().Subscribe(m.onMutationError),
	)
	m.sync()
	return m, nil
}

func (m *model) Init() tea.Cmd {
	return waitForLoop(m.sched.Queue())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case loopMsg:
		msg()
		cmd = waitForLoop(m.sched.Queue())
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	m.sync()
	return m, cmd
}

func (m *model) resize(width, height int) {
	m.layout = newLayout(width, height, m.layout.columns)
	for _, s := range m.scrolls {
		s.clamp()
	}
	m.coord.InvalidateLayout()
	m.report(m.coord.HandleEvent(dnd.WindowEvent{Action: dnd.WindowResize}))
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	ev := dnd.PointerEvent{
		Type:   dnd.PointerMouse,
		Point:  cellPoint(msg.X, msg.Y),
		Button: dnd.MouseNone,
		Mod:    mouseMod(msg),
	}
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			ev.Action = dnd.PointerDown
			ev.Button = dnd.MouseLeft
			ev.Target = m.cardAt(msg.X, msg.Y)
			if ev.Target != "" {
				m.focus = ev.Target
			}
		case tea.MouseButtonWheelUp:
			m.scrollColumn(m.layout.columnAt(msg.X), -cardRows*cellH)
			return
		case tea.MouseButtonWheelDown:
			m.scrollColumn(m.layout.columnAt(msg.X), cardRows*cellH)
			return
		default:
			return
		}
	case tea.MouseActionMotion:
		ev.Action = dnd.PointerMove
	case tea.MouseActionRelease:
		ev.Action = dnd.PointerUp
		ev.Button = dnd.MouseLeft
	default:
		return
	}
	m.report(m.coord.HandleEvent(ev))
}

func mouseMod(msg tea.MouseMsg) dnd.Modifier {
	var mod dnd.Modifier
	if msg.Ctrl {
		mod |= dnd.ModCtrl
	}
	if msg.Alt {
		mod |= dnd.ModAlt
	}
	if msg.Shift {
		mod |= dnd.ModShift
	}
	return mod
}

func (m *model) scrollColumn(i int, dy float64) {
	if i < 0 {
		return
	}
	m.scrolls[i].ScrollBy(dnd.Point{Y: dy})
	m.coord.InvalidateLayout()
}

// cardAt returns the card drawn at cell (x, y), ignoring drag previews.
func (m *model) cardAt(x, y int) string {
	i := m.layout.columnAt(x)
	row := y - headerRows
	if i < 0 || row < 0 || row >= m.layout.bodyRows() {
		return ""
	}
	idx := int((float64(row)*cellH + m.scrolls[i].y) / (cardRows * cellH))
	items := m.board.Items(m.layout.columns[i])
	if idx >= len(items) {
		return ""
	}
	return items[idx].ID
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.coord.Dragging() {
		if ev, ok := keyEvent(msg); ok {
			ev.Target = m.focus
			m.report(m.coord.HandleEvent(ev))
		}
		return nil
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "up", "k":
		m.moveFocus(0, -1)
	case "down", "j":
		m.moveFocus(0, 1)
	case "left", "h":
		m.moveFocus(-1, 0)
	case "right", "l":
		m.moveFocus(1, 0)
	case "u":
		m.undo()
	case "x":
		m.deleteFocused()
	case "m":
		m.toggleMark()
	case "D":
		m.bulkDelete()
	case "r":
		m.renumberFocused()
	case "esc":
		clear(m.marked)
		m.setStatus("selection cleared")
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.bulkMove(int(msg.Runes[0] - '1'))
	default:
		if ev, ok := keyEvent(msg); ok && m.focus != "" {
			ev.Target = m.focus
			m.report(m.coord.HandleEvent(ev))
		}
	}
	return nil
}

// keyEvent translates a bubbletea key into the engine's key event.
func keyEvent(msg tea.KeyMsg) (dnd.KeyEvent, bool) {
	var ev dnd.KeyEvent
	switch msg.Type {
	case tea.KeyEsc:
		ev.Key = dnd.KeyEscape
	case tea.KeyEnter:
		ev.Key = dnd.KeyEnter
	case tea.KeyTab:
		ev.Key = dnd.KeyTab
	case tea.KeySpace:
		ev.Key = dnd.KeySpace
	case tea.KeyUp:
		ev.Key = dnd.KeyUp
	case tea.KeyDown:
		ev.Key = dnd.KeyDown
	case tea.KeyLeft:
		ev.Key = dnd.KeyLeft
	case tea.KeyRight:
		ev.Key = dnd.KeyRight
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return ev, false
		}
		ev.Key = dnd.KeyRune
		ev.Rune = msg.Runes[0]
	default:
		return ev, false
	}
	if msg.Alt {
		ev.Mod |= dnd.ModAlt
	}
	return ev, true
}

func (m *model) quit() tea.Cmd {
	m.close()
	return tea.Quit
}

// close stops the engine. Durable writes already issued finish before it
// returns so the caller can close the store.
func (m *model) close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
	m.unsubscribe = nil
	if m.coord != nil {
		m.coord.Close()
	}
	// Closing the scheduler first keeps finished writes from blocking on
	// a queue nobody drains.
	m.sched.Close()
	m.mut.Wait()
	m.mut.Stop()
	m.cancel()
}

// columnIndex returns the display index of container id, or -1.
func (m *model) columnIndex(id string) int {
	return slices.Index(m.layout.columns, id)
}

// moveFocus moves the focused card by dx columns or dy cards.
func (m *model) moveFocus(dx, dy int) {
	item, ok := m.board.Item(m.focus)
	if !ok {
		m.focusFirst()
		return
	}
	ci := m.columnIndex(item.ContainerID)
	idx := m.board.Index(item.ID)
	if dx != 0 {
		for next := ci + dx; next >= 0 && next < len(m.layout.columns); next += dx {
			items := m.board.Items(m.layout.columns[next])
			if len(items) > 0 {
				m.focus = items[min(idx, len(items)-1)].ID
				break
			}
		}
	}
	if dy != 0 {
		items := m.board.Items(item.ContainerID)
		if next := idx + dy; next >= 0 && next < len(items) {
			m.focus = items[next].ID
		}
	}
	m.scrollIntoView(m.focus)
}

func (m *model) focusFirst() {
	m.focus = ""
	for _, col := range m.layout.columns {
		if items := m.board.Items(col); len(items) > 0 {
			m.focus = items[0].ID
			return
		}
	}
}

// scrollIntoView adjusts the card's column so the whole card is visible.
func (m *model) scrollIntoView(id string) {
	item, ok := m.board.Item(id)
	if !ok {
		return
	}
	i := m.columnIndex(item.ContainerID)
	s := m.scrolls[i]
	top := float64(m.board.Index(id)*cardRows) * cellH
	bottom := top + cardRows*cellH
	view := float64(m.layout.bodyRows()) * cellH
	switch {
	case top < s.y:
		s.ScrollBy(dnd.Point{Y: top - s.y})
	case bottom > s.y+view:
		s.ScrollBy(dnd.Point{Y: bottom - view - s.y})
	}
}

func (m *model) undo() {
	entry, ok := m.mut.UndoStack().Last()
	if err := m.mut.UndoLast(); err != nil {
		m.report(err)
		return
	}
	if ok {
		m.setStatus("undid " + entry.Description)
	}
}

func (m *model) deleteFocused() {
	if m.focus == "" {
		return
	}
	title := m.title(m.focus)
	if _, err := m.mut.Delete(m.focus); err != nil {
		m.report(err)
		return
	}
	delete(m.marked, m.focus)
	m.setStatus(fmt.Sprintf("deleted %q, u to undo", title))
}

func (m *model) toggleMark() {
	if m.focus == "" {
		return
	}
	if m.marked[m.focus] {
		delete(m.marked, m.focus)
	} else {
		m.marked[m.focus] = true
	}
	m.setStatus(fmt.Sprintf("%d selected", len(m.marked)))
}

// selection returns the marked cards, or the focused card when none are
// marked, in board order.
func (m *model) selection() []string {
	var ids []string
	for _, id := range m.board.IDs() {
		if m.marked[id] {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 && m.focus != "" {
		ids = []string{m.focus}
	}
	return ids
}

func (m *model) bulkDelete() {
	ids := m.selection()
	if len(ids) == 0 {
		return
	}
	if _, err := m.mut.BulkDelete(ids); err != nil {
		m.report(err)
		return
	}
	clear(m.marked)
	m.setStatus(fmt.Sprintf("deleted %d cards, u to undo", len(ids)))
}

func (m *model) bulkMove(col int) {
	ids := m.selection()
	if len(ids) == 0 || col >= len(m.layout.columns) {
		return
	}
	target := m.layout.columns[col]
	if _, err := m.mut.BulkMove(ids, target); err != nil {
		m.report(err)
		return
	}
	clear(m.marked)
	m.setStatus(fmt.Sprintf("moved %d cards to %s, u to undo", len(ids), m.titles[target]))
}

func (m *model) renumberFocused() {
	item, ok := m.board.Item(m.focus)
	if !ok {
		return
	}
	n, err := m.mut.Renumber(item.ContainerID)
	if err != nil {
		m.report(err)
		return
	}
	m.setStatus(fmt.Sprintf("renumbered %d cards in %s", n, m.titles[item.ContainerID]))
}

// sync mirrors the board into the coordinator's registrations. Lists are
// only replaced while no session is open so previews stay stable.
func (m *model) sync() {
	if m.coord.Dragging() {
		return
	}
	live := make(map[string]bool, m.board.Len())
	for i, col := range m.layout.columns {
		items := m.board.Items(col)
		ids := make([]string, len(items))
		for idx, item := range items {
			ids[idx] = item.ID
			live[item.ID] = true
			node := cardNode{host: m, id: item.ID}
			_ = m.coord.RegisterDraggable(dnd.Draggable{ID: item.ID, Node: node})
			_ = m.coord.RegisterDroppable(dnd.Droppable{
				ID:          item.ID,
				Kind:        dnd.DroppableItem,
				ContainerID: col,
				Node:        node,
			})
		}
		m.sortables[col].SetItems(ids)
		m.scrolls[i].clamp()
	}
	for id := range m.registered {
		if !live[id] {
			m.coord.UnregisterDraggable(id)
			m.coord.UnregisterDroppable(id)
			delete(m.marked, id)
		}
	}
	m.registered = live
	if !live[m.focus] {
		m.focusFirst()
	}
}

func (m *model) onDrag(ev dnd.DragEvent) {
	switch ev := ev.(type) {
	case dnd.DragStartEvent:
		m.focus = ev.ActiveID
		m.setStatus(fmt.Sprintf("dragging %q", m.title(ev.ActiveID)))
	case dnd.DragOverEvent:
		if ev.Over == "" {
			m.setStatus(fmt.Sprintf("dragging %q", m.title(ev.ActiveID)))
			return
		}
		m.setStatus(fmt.Sprintf("dragging %q over %s", m.title(ev.ActiveID), m.targetName(ev.Over)))
	case dnd.DragEndEvent:
		if !ev.Moved {
			m.setStatus(fmt.Sprintf("dropped %q in place", m.title(ev.ActiveID)))
			return
		}
		m.setStatus(fmt.Sprintf("moved %q to %s, u to undo", m.title(ev.ActiveID), m.titles[ev.Placement.ContainerID]))
		m.scrollIntoView(ev.ActiveID)
	case dnd.DragCancelEvent:
		m.setStatus(fmt.Sprintf("drag cancelled (%s)", ev.Reason))
	case dnd.DragAbortEvent:
		m.log.Debug("drag aborted", zap.String("item", ev.ActiveID), zap.Error(ev.Err))
	}
}

func (m *model) onMutationError(e dnd.MutationError) {
	m.status = fmt.Sprintf("save failed and was rolled back: %v", e)
	m.failed = true
}

func (m *model) report(err error) {
	if err == nil {
		return
	}
	m.log.Debug("board action failed", zap.Error(err))
	m.status = err.Error()
	m.failed = true
}

func (m *model) setStatus(s string) {
	m.status = s
	m.failed = false
}

// title returns a card's display text.
func (m *model) title(id string) string {
	item, ok := m.board.Item(id)
	if !ok {
		return id
	}
	if s, ok := item.Payload.(string); ok && s != "" {
		return s
	}
	return id
}

func (m *model) targetName(id string) string {
	if t, ok := m.titles[id]; ok {
		return t
	}
	return fmt.Sprintf("%q", m.title(id))
}
