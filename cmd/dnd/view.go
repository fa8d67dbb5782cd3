package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	dnd "github.com/grindlemire/go-dnd"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	overStyle   = headerStyle.Reverse(true)
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	focusStyle       = cardStyle.BorderForeground(lipgloss.Color("12"))
	markedStyle      = cardStyle.BorderForeground(lipgloss.Color("11")).Foreground(lipgloss.Color("11"))
	activeStyle      = cardStyle.Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("13")).Bold(true)
	placeholderStyle = cardStyle.Border(lipgloss.HiddenBorder()).Faint(true)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const help = "drag with mouse or space · arrows move · m mark · 1-9 move marked · x/D delete · u undo · r renumber · q quit"

func (m *model) View() string {
	l := m.layout
	if l.colWidth == 0 || l.bodyRows() == 0 {
		return ""
	}
	sess, dragging := m.coord.Session()

	blocks := make([]string, 0, 2*len(l.columns))
	for i, col := range l.columns {
		if i > 0 {
			blocks = append(blocks, strings.Repeat(" ", colGap))
		}
		blocks = append(blocks, m.renderColumn(i, col, sess, dragging))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, blocks...)

	status := statusStyle.Render(m.status)
	if m.failed {
		status = errorStyle.Render(m.status)
	}
	if pending := m.mut.Pending(); pending > 0 {
		status += helpStyle.Render(fmt.Sprintf("  (saving %d)", pending))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		board,
		truncate(status, l.width),
		helpStyle.Render(truncate(help, l.width)),
	)
}

func (m *model) renderColumn(i int, col string, sess dnd.Session, dragging bool) string {
	l := m.layout
	items := m.board.Items(col)

	title := fmt.Sprintf("%s (%d)", m.titles[col], len(items))
	header := headerStyle
	if dragging && m.overColumn(sess.Over) == col {
		header = overStyle
	}
	lines := []string{
		header.Render(pad(truncate(title, l.colWidth), l.colWidth)),
		ruleStyle.Render(strings.Repeat("─", l.colWidth)),
	}

	body := make([]string, l.bodyRows())
	blank := strings.Repeat(" ", l.colWidth)
	for r := range body {
		body[r] = blank
	}
	scroll := toRows(m.scrolls[i].y)
	for idx, item := range items {
		row := idx*cardRows - scroll
		style := m.cardStyle(item.ID)
		if dragging && item.ID == sess.ActiveID {
			style = placeholderStyle
		} else {
			row += toRows(m.coord.Transform(item.ID).Y)
		}
		m.drawCard(body, row, style, m.title(item.ID))
	}

	// The dragged card is drawn last in whichever column it hovers.
	if dragging {
		center := sess.Rect.Center()
		if l.columnAt(int(math.Floor(center.X/cellW))) == i {
			row := int(math.Floor(sess.Rect.Top/cellH)) - headerRows
			m.drawCard(body, row, activeStyle, m.title(sess.ActiveID))
		}
	}
	return strings.Join(append(lines, body...), "\n")
}

func (m *model) cardStyle(id string) lipgloss.Style {
	switch {
	case m.marked[id]:
		return markedStyle
	case id == m.focus:
		return focusStyle
	default:
		return cardStyle
	}
}

// drawCard renders a card into body starting at row, clipping rows that
// fall outside the column.
func (m *model) drawCard(body []string, row int, style lipgloss.Style, title string) {
	w := m.layout.colWidth
	inner := w - style.GetHorizontalFrameSize()
	text := lipgloss.NewStyle().Inline(true).MaxWidth(max(0, inner)).Render(title)
	card := style.Width(w - style.GetHorizontalBorderSize()).Render(text)
	for j, line := range strings.Split(card, "\n") {
		if r := row + j; r >= 0 && r < len(body) {
			body[r] = line
		}
	}
}

// overColumn returns the column a drop target belongs to.
func (m *model) overColumn(over string) string {
	if over == "" {
		return ""
	}
	if _, ok := m.titles[over]; ok {
		return over
	}
	if item, ok := m.board.Item(over); ok {
		return item.ContainerID
	}
	return ""
}

func truncate(s string, w int) string {
	return lipgloss.NewStyle().Inline(true).MaxWidth(w).Render(s)
}

func pad(s string, w int) string {
	return lipgloss.PlaceHorizontal(w, lipgloss.Left, s)
}
