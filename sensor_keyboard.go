package dnd

import "math"

// keyboardMachine moves the active item by a fixed step per arrow key.
// Coordinates are the top-left corner of the dragged rect.
type keyboardMachine struct {
	c        *Coordinator
	sensor   Sensor
	activeID string
	st       SensorState
	current  Point
}

func (m *keyboardMachine) state() SensorState { return m.st }

func (m *keyboardMachine) finish(s SensorState) {
	m.st = s
}

func (m *keyboardMachine) attach() {
	c := m.c
	c.cleanup.push(c.listeners.attach(kindKeyDown, m.onKey))
	for _, kind := range []eventKind{kindResize, kindVisibilityChange, kindBlur} {
		c.cleanup.push(c.listeners.attach(kind, m.onWindow))
	}

	m.st = StateActivated
	if err := c.activate(m.activeID, m.sensor, Point{}); err != nil || c.session == nil {
		return
	}
	m.current = c.session.initial
}

func (m *keyboardMachine) onWindow(Event) {
	m.c.cancel(CancelWindow)
}

func (m *keyboardMachine) onKey(ev Event) {
	ke := ev.(KeyEvent)
	switch {
	case containsKey(m.sensor.Codes.Cancel, ke.Key):
		m.c.cancel(CancelUser)
	case containsKey(m.sensor.Codes.End, ke.Key):
		m.c.drop()
	case ke.Key.isArrow():
		m.step(ke.Key)
	}
}

func (m *keyboardMachine) stepSize() float64 {
	if m.sensor.Step > 0 {
		return m.sensor.Step
	}
	return DefaultKeyboardStep
}

// step moves one step in the key's direction. When the stepped rect would
// leave a scroll ancestor on that side, the ancestor scrolls first and only
// the part of the step scrolling could not absorb moves the item.
func (m *keyboardMachine) step(key Key) {
	s := m.c.session
	if s == nil {
		return
	}
	size := m.stepSize()
	var dir Point
	switch key {
	case KeyUp:
		dir.Y = -size
	case KeyDown:
		dir.Y = size
	case KeyLeft:
		dir.X = -size
	case KeyRight:
		dir.X = size
	}

	next := m.current.Add(dir)
	moved := s.draggedRect().Offset(dir)
	for _, sc := range s.ancestors {
		box := sc.Rect()
		offset := sc.ScrollOffset()
		limit := sc.MaxScroll()

		var want, have, room float64
		switch key {
		case KeyDown:
			if moved.Bottom() <= box.Bottom() {
				continue
			}
			want, have, room = dir.Y, offset.Y, limit.Y
		case KeyUp:
			if moved.Top >= box.Top {
				continue
			}
			want, have, room = dir.Y, offset.Y, limit.Y
		case KeyRight:
			if moved.Right() <= box.Right() {
				continue
			}
			want, have, room = dir.X, offset.X, limit.X
		case KeyLeft:
			if moved.Left >= box.Left {
				continue
			}
			want, have, room = dir.X, offset.X, limit.X
		}

		scrolled := math.Min(math.Max(have+want, 0), room) - have
		if scrolled == 0 {
			continue
		}
		var by Point
		if dir.Y != 0 {
			by.Y = scrolled
		} else {
			by.X = scrolled
		}
		m.c.callHost("scroll", func() { sc.ScrollBy(by) })

		if scrolled == want {
			// The container absorbed the whole step; the item stays put
			// and only the targets under it changed.
			m.c.refresh()
			return
		}
		next = next.Sub(by)
		break
	}

	m.current = next
	m.c.moveTo(next)
}
