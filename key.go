package dnd

import "strings"

// Key represents a keyboard key relevant to keyboard dragging.
type Key uint16

const (
	// KeyNone represents no key (zero value).
	KeyNone Key = iota

	// KeyRune represents a printable character. Check KeyEvent.Rune for the character.
	KeyRune

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeySpace

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// String returns a human-readable representation of the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "None"
	case KeyRune:
		return "Rune"
	case KeyEscape:
		return "Escape"
	case KeyEnter:
		return "Enter"
	case KeyTab:
		return "Tab"
	case KeySpace:
		return "Space"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// isArrow reports whether k is one of the four arrow keys.
func (k Key) isArrow() bool {
	return k == KeyUp || k == KeyDown || k == KeyLeft || k == KeyRight
}

// Modifier represents keyboard modifier flags.
type Modifier uint8

const (
	// ModNone represents no modifiers.
	ModNone Modifier = 0
	// ModCtrl represents the Ctrl modifier.
	ModCtrl Modifier = 1 << iota
	// ModAlt represents the Alt modifier.
	ModAlt
	// ModShift represents the Shift modifier.
	ModShift
)

// Has checks if the modifier set includes the given modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// String returns a human-readable representation of the modifiers.
func (m Modifier) String() string {
	if m == ModNone {
		return "None"
	}

	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	return strings.Join(parts, "+")
}

// KeyboardCodes maps keys to keyboard sensor transitions.
type KeyboardCodes struct {
	Start  []Key
	Cancel []Key
	End    []Key
}

// DefaultKeyboardCodes returns Space/Enter to start, Escape to cancel and
// Space/Enter/Tab to drop.
func DefaultKeyboardCodes() KeyboardCodes {
	return KeyboardCodes{
		Start:  []Key{KeySpace, KeyEnter},
		Cancel: []Key{KeyEscape},
		End:    []Key{KeySpace, KeyEnter, KeyTab},
	}
}

func containsKey(keys []Key, k Key) bool {
	for _, candidate := range keys {
		if candidate == k {
			return true
		}
	}
	return false
}
