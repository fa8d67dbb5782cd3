package main

import (
	"math"

	dnd "github.com/grindlemire/go-dnd"
)

// The engine works in pixel-like units. Each terminal cell maps to a
// cellW x cellH box so sensor thresholds and keyboard steps keep their
// usual scale.
const (
	cellW = 8.0
	cellH = 16.0

	headerRows = 2
	statusRows = 2
	cardRows   = 3
	colGap     = 2
	minColW    = 16
)

// layout maps board positions to cell and engine coordinates.
type layout struct {
	width, height int
	columns       []string
	colWidth      int
}

func newLayout(width, height int, columns []string) layout {
	l := layout{width: width, height: height, columns: columns}
	if n := len(columns); n > 0 {
		l.colWidth = max(minColW, (width-colGap*(n-1))/n)
	}
	return l
}

// bodyRows is the number of card rows visible in a column.
func (l layout) bodyRows() int {
	return max(0, l.height-headerRows-statusRows)
}

// columnX is the first cell column of column i.
func (l layout) columnX(i int) int {
	return i * (l.colWidth + colGap)
}

// columnAt returns the column index under cell x, or -1.
func (l layout) columnAt(x int) int {
	for i := range l.columns {
		if x0 := l.columnX(i); x >= x0 && x < x0+l.colWidth {
			return i
		}
	}
	return -1
}

// bodyRect is the visible card area of column i in engine units.
func (l layout) bodyRect(i int) dnd.Rect {
	return cellRect(l.columnX(i), headerRows, l.colWidth, l.bodyRows())
}

// slotRect is the layout slot of the card at idx in column i, scrolled by
// scroll engine units.
func (l layout) slotRect(i, idx int, scroll float64) dnd.Rect {
	r := cellRect(l.columnX(i), headerRows+idx*cardRows, l.colWidth, cardRows)
	r.Top -= scroll
	return r
}

func cellRect(x, y, w, h int) dnd.Rect {
	return dnd.NewRect(float64(x)*cellW, float64(y)*cellH, float64(w)*cellW, float64(h)*cellH)
}

// cellPoint is the engine point at the centre of cell (x, y).
func cellPoint(x, y int) dnd.Point {
	return dnd.Point{X: (float64(x) + 0.5) * cellW, Y: (float64(y) + 0.5) * cellH}
}

// toRows converts an engine distance on the Y axis to whole rows.
func toRows(y float64) int {
	return int(math.Round(y / cellH))
}

// columnScroll is a column's vertical scroll position in engine units.
type columnScroll struct {
	host  *model
	index int
	y     float64
}

func (s *columnScroll) Rect() dnd.Rect {
	return s.host.layout.bodyRect(s.index)
}

func (s *columnScroll) ScrollOffset() dnd.Point {
	return dnd.Point{Y: s.y}
}

func (s *columnScroll) MaxScroll() dnd.Point {
	col := s.host.layout.columns[s.index]
	content := len(s.host.board.Items(col)) * cardRows
	return dnd.Point{Y: math.Max(0, float64(content-s.host.layout.bodyRows())*cellH)}
}

func (s *columnScroll) ScrollBy(delta dnd.Point) {
	s.y = math.Min(math.Max(0, s.y+delta.Y), s.MaxScroll().Y)
}

// clamp pulls the offset back in range after cards were removed.
func (s *columnScroll) clamp() {
	s.ScrollBy(dnd.Point{})
}

// cardNode is a card's measurable handle. It reports the card's layout
// slot; the sortable preview is applied only when drawing.
type cardNode struct {
	host *model
	id   string
}

func (n cardNode) BoundingRect() (dnd.Rect, error) {
	item, ok := n.host.board.Item(n.id)
	if !ok {
		return dnd.Rect{}, dnd.ErrMeasurementUnavailable
	}
	i := n.host.columnIndex(item.ContainerID)
	if i < 0 {
		return dnd.Rect{}, dnd.ErrMeasurementUnavailable
	}
	return n.host.layout.slotRect(i, n.host.board.Index(n.id), n.host.scrolls[i].y), nil
}

func (n cardNode) ComputedTransform() (string, string) {
	return "none", "0 0"
}

func (n cardNode) ScrollAncestors() []dnd.Scrollable {
	item, ok := n.host.board.Item(n.id)
	if !ok {
		return nil
	}
	if i := n.host.columnIndex(item.ContainerID); i >= 0 {
		return []dnd.Scrollable{n.host.scrolls[i]}
	}
	return nil
}

// columnNode is a column's drop area.
type columnNode struct {
	host  *model
	index int
}

func (n columnNode) BoundingRect() (dnd.Rect, error) {
	if n.index >= len(n.host.layout.columns) {
		return dnd.Rect{}, dnd.ErrMeasurementUnavailable
	}
	return n.host.layout.bodyRect(n.index), nil
}

func (n columnNode) ComputedTransform() (string, string) {
	return "none", "0 0"
}

func (n columnNode) ScrollAncestors() []dnd.Scrollable {
	return []dnd.Scrollable{n.host.scrolls[n.index]}
}
