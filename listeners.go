package dnd

// listener is one attached handler for an event kind.
type listener struct {
	kind eventKind
	fn   func(Event)
}

// listenerSet routes input events to the handlers of the running sensor.
// Handlers are attached when a sensor activates and detached in reverse
// attach order when it ends or cancels.
type listenerSet struct {
	entries []listener
}

// attach registers fn for kind and returns the matching detach func.
func (l *listenerSet) attach(kind eventKind, fn func(Event)) func() {
	l.entries = append(l.entries, listener{kind: kind, fn: fn})
	idx := len(l.entries) - 1
	return func() {
		if idx < len(l.entries) {
			l.entries = l.entries[:idx]
		}
	}
}

// dispatch delivers ev to every handler attached for its kind.
// Returns true if at least one handler received it.
func (l *listenerSet) dispatch(ev Event) bool {
	kind, ok := kindOf(ev)
	if !ok {
		return false
	}
	// Handlers may detach the set while it is being walked.
	entries := append([]listener(nil), l.entries...)
	handled := false
	for _, entry := range entries {
		if entry.kind == kind {
			entry.fn(ev)
			handled = true
		}
	}
	return handled
}

// len reports how many handlers are attached.
func (l *listenerSet) len() int {
	return len(l.entries)
}

// cleanupStack runs registered funcs in reverse registration order.
type cleanupStack struct {
	fns []func()
}

func (c *cleanupStack) push(fn func()) {
	c.fns = append(c.fns, fn)
}

// run pops and invokes every func, last registered first.
func (c *cleanupStack) run() {
	for len(c.fns) > 0 {
		last := len(c.fns) - 1
		fn := c.fns[last]
		c.fns = c.fns[:last]
		fn()
	}
}

func (c *cleanupStack) len() int {
	return len(c.fns)
}
