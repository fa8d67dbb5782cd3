package dnd

// Event is the base interface for all input events a host feeds into the
// Coordinator. Use a type switch to handle specific event types.
type Event interface {
	// isEvent is a marker method to prevent external implementations.
	isEvent()
}

// PointerType identifies the physical device behind a pointer event.
type PointerType uint8

const (
	// PointerMouse is a mouse or trackpad.
	PointerMouse PointerType = iota
	// PointerTouch is a finger on a touch surface.
	PointerTouch
	// PointerPen is a stylus.
	PointerPen
)

// PointerAction represents the phase of a pointer interaction.
type PointerAction uint8

const (
	// PointerDown indicates a button press or touch start.
	PointerDown PointerAction = iota
	// PointerMove indicates motion.
	PointerMove
	// PointerUp indicates a button release or touch end.
	PointerUp
	// PointerCancel indicates the platform aborted the pointer stream.
	PointerCancel
)

// MouseButton represents which mouse button was involved in an event.
type MouseButton uint8

const (
	// MouseLeft is the left (primary) mouse button.
	MouseLeft MouseButton = iota
	// MouseMiddle is the middle mouse button.
	MouseMiddle
	// MouseRight is the right (secondary) mouse button.
	MouseRight
	// MouseNone indicates no button (used for motion events).
	MouseNone
)

// PointerEvent represents a pointer, mouse or touch input event.
type PointerEvent struct {
	// Type is the device that produced the event.
	Type PointerType
	// Action is the interaction phase.
	Action PointerAction
	// ID distinguishes simultaneous touch points.
	ID int
	// Button is the mouse button involved, MouseNone for motion.
	Button MouseButton
	// Point is the position in client coordinates.
	Point Point
	// Target is the draggable id under the pointer on PointerDown, if any.
	Target string
	// Mod contains modifier flags (Ctrl, Alt, Shift).
	Mod Modifier
}

func (PointerEvent) isEvent() {}

// KeyEvent represents a keyboard input event.
type KeyEvent struct {
	// Key is the key pressed.
	Key Key
	// Rune is the character for KeyRune events. Zero for special keys.
	Rune rune
	// Mod contains modifier flags (Ctrl, Alt, Shift).
	Mod Modifier
	// Target is the focused draggable id, if any.
	Target string
}

func (KeyEvent) isEvent() {}

// WindowAction identifies a window-level event.
type WindowAction uint8

const (
	// WindowResize is emitted when the viewport changes size.
	WindowResize WindowAction = iota
	// WindowVisibilityChange is emitted when the document is hidden or shown.
	WindowVisibilityChange
	// WindowBlur is emitted when the window loses focus.
	WindowBlur
	// WindowContextMenu is emitted when a context menu is requested.
	WindowContextMenu
	// WindowSelectionChange is emitted when the text selection changes.
	WindowSelectionChange
)

// WindowEvent represents a window-level event.
type WindowEvent struct {
	Action WindowAction
}

func (WindowEvent) isEvent() {}

// eventKind is the routing key listeners attach to.
type eventKind uint8

const (
	kindPointerDown eventKind = iota
	kindPointerMove
	kindPointerUp
	kindPointerCancel
	kindKeyDown
	kindResize
	kindVisibilityChange
	kindBlur
	kindContextMenu
	kindSelectionChange
)

func kindOf(ev Event) (eventKind, bool) {
	switch e := ev.(type) {
	case PointerEvent:
		switch e.Action {
		case PointerDown:
			return kindPointerDown, true
		case PointerMove:
			return kindPointerMove, true
		case PointerUp:
			return kindPointerUp, true
		case PointerCancel:
			return kindPointerCancel, true
		}
	case KeyEvent:
		return kindKeyDown, true
	case WindowEvent:
		switch e.Action {
		case WindowResize:
			return kindResize, true
		case WindowVisibilityChange:
			return kindVisibilityChange, true
		case WindowBlur:
			return kindBlur, true
		case WindowContextMenu:
			return kindContextMenu, true
		case WindowSelectionChange:
			return kindSelectionChange, true
		}
	}
	return 0, false
}
