package dnd

// pointerMachine runs the pointer, mouse and touch sensors. The three share
// one lifecycle and differ only in which events activate them.
type pointerMachine struct {
	c         *Coordinator
	sensor    Sensor
	activeID  string
	pointerID int
	pointer   PointerType
	initial   Point
	st        SensorState
	delay     Timer
}

func (m *pointerMachine) state() SensorState { return m.st }

func (m *pointerMachine) finish(s SensorState) {
	m.st = s
}

// attach registers the move, end and cancel handlers plus the window
// handlers that cancel a running drag. Every registration pushes its
// teardown so the coordinator can undo them in reverse order.
func (m *pointerMachine) attach() {
	c := m.c
	c.cleanup.push(c.listeners.attach(kindPointerMove, m.onMove))
	c.cleanup.push(c.listeners.attach(kindPointerUp, m.onUp))
	c.cleanup.push(c.listeners.attach(kindPointerCancel, m.onPointerCancel))
	if m.pointer == PointerTouch {
		c.cleanup.push(c.listeners.attach(kindPointerDown, m.onPointerDown))
	}
	c.cleanup.push(c.listeners.attach(kindKeyDown, m.onKey))
	for _, kind := range []eventKind{kindResize, kindVisibilityChange, kindBlur} {
		c.cleanup.push(c.listeners.attach(kind, m.onWindow))
	}
	// Swallowed for the session so the host does not act on them.
	c.cleanup.push(c.listeners.attach(kindContextMenu, func(Event) {}))
	c.cleanup.push(c.listeners.attach(kindSelectionChange, func(Event) {}))

	if sup := c.suppressor; sup != nil {
		c.callHost("suppress", func() {
			sup.SuppressSelection(true)
			sup.SuppressContextMenu(true)
		})
		c.cleanup.push(func() {
			c.callHost("unsuppress", func() {
				sup.SuppressContextMenu(false)
				sup.SuppressSelection(false)
			})
		})
	}

	switch constraint := m.sensor.Constraint.(type) {
	case nil:
		m.activate()
	case DelayConstraint:
		m.delay = c.sched.AfterFunc(constraint.Delay, m.activate)
		c.cleanup.push(func() { m.delay.Stop() })
	}
}

func (m *pointerMachine) activate() {
	if m.st != StatePending {
		return
	}
	m.st = StateActivated
	if m.delay != nil {
		m.delay.Stop()
	}
	m.c.activate(m.activeID, m.sensor, m.initial)
}

func (m *pointerMachine) owns(ev Event) (PointerEvent, bool) {
	pe, ok := ev.(PointerEvent)
	if !ok {
		return pe, false
	}
	if pe.Type != m.pointer || pe.ID != m.pointerID {
		return pe, false
	}
	return pe, true
}

func (m *pointerMachine) onMove(ev Event) {
	pe, ok := m.owns(ev)
	if !ok {
		return
	}
	if m.st == StateActivated {
		m.c.moveTo(pe.Point)
		return
	}

	delta := pe.Point.Sub(m.initial)
	switch constraint := m.sensor.Constraint.(type) {
	case DistanceConstraint:
		if !constraint.Tolerance.IsZero() && constraint.Tolerance.Exceeded(delta) {
			m.c.abort(m.activeID, ErrActivationRejected)
			return
		}
		if constraint.Distance.Exceeded(delta) {
			m.activate()
		}
	case DelayConstraint:
		if constraint.Tolerance.Exceeded(delta) {
			m.c.abort(m.activeID, ErrActivationRejected)
		}
	}
}

func (m *pointerMachine) onUp(ev Event) {
	if _, ok := m.owns(ev); !ok {
		return
	}
	if m.st != StateActivated {
		// A release before activation is a click, not a drag.
		m.c.abort(m.activeID, ErrActivationRejected)
		return
	}
	m.c.drop()
}

func (m *pointerMachine) onPointerCancel(ev Event) {
	if _, ok := m.owns(ev); !ok {
		return
	}
	m.cancelOrAbort(CancelUser)
}

// onPointerDown rejects a second touch point while a touch drag is pending
// or running.
func (m *pointerMachine) onPointerDown(ev Event) {
	pe := ev.(PointerEvent)
	if pe.Type != PointerTouch || pe.ID == m.pointerID {
		return
	}
	m.cancelOrAbort(CancelMultiTouch)
}

func (m *pointerMachine) onKey(ev Event) {
	if ev.(KeyEvent).Key == KeyEscape {
		m.cancelOrAbort(CancelUser)
	}
}

func (m *pointerMachine) onWindow(Event) {
	m.cancelOrAbort(CancelWindow)
}

func (m *pointerMachine) cancelOrAbort(reason CancelReason) {
	if m.st != StateActivated {
		m.c.abort(m.activeID, ErrActivationRejected)
		return
	}
	m.c.cancel(reason)
}
