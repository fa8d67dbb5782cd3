package dnd

import (
	"time"
)

// SensorKind tags which input family a Sensor listens to.
type SensorKind uint8

const (
	// SensorNone marks sessions started programmatically through
	// Coordinator.Start.
	SensorNone SensorKind = iota
	// SensorPointer accepts mouse, touch and pen pointer events.
	SensorPointer
	// SensorMouse accepts primary-button mouse events only.
	SensorMouse
	// SensorTouch accepts touch events only and rejects multi-touch.
	SensorTouch
	// SensorKeyboard drives the drag with arrow keys.
	SensorKeyboard
)

// String returns a human-readable representation of the kind.
func (k SensorKind) String() string {
	switch k {
	case SensorNone:
		return "none"
	case SensorPointer:
		return "pointer"
	case SensorMouse:
		return "mouse"
	case SensorTouch:
		return "touch"
	case SensorKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// SensorState is the lifecycle position of a running sensor.
type SensorState uint8

const (
	StateIdle SensorState = iota
	StatePending
	StateActivated
	StateEnded
	StateCancelled
)

// String returns a human-readable representation of the state.
func (s SensorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateActivated:
		return "activated"
	case StateEnded:
		return "ended"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Threshold is a movement limit. A non-zero Radius is checked against the
// Euclidean length of a delta; otherwise X and Y are checked per axis and a
// zero axis is ignored.
type Threshold struct {
	Radius float64
	X, Y   float64
}

// Px returns a radial threshold of r pixels.
func Px(r float64) Threshold {
	return Threshold{Radius: r}
}

// IsZero reports whether the threshold never triggers.
func (t Threshold) IsZero() bool {
	return t.Radius <= 0 && t.X <= 0 && t.Y <= 0
}

// Exceeded reports whether delta moved past the threshold.
func (t Threshold) Exceeded(delta Point) bool {
	if t.Radius > 0 {
		return delta.Length() > t.Radius
	}
	return delta.ExceedsDistance(Point{X: t.X, Y: t.Y})
}

// ActivationConstraint decides when pending input becomes a drag.
type ActivationConstraint interface {
	isConstraint()
}

// DistanceConstraint activates once the pointer moves further than
// Distance. Exceeding Tolerance first aborts the activation.
type DistanceConstraint struct {
	Distance  Threshold
	Tolerance Threshold
}

// DelayConstraint activates after Delay provided the pointer stays within
// Tolerance; moving further aborts the activation.
type DelayConstraint struct {
	Delay     time.Duration
	Tolerance Threshold
}

func (DistanceConstraint) isConstraint() {}
func (DelayConstraint) isConstraint()    {}

// DefaultActivationDistance is the distance constraint the board uses for
// pointer input so clicks on cards still open them.
const DefaultActivationDistance = 8

// DefaultKeyboardStep is how far one arrow key press moves the active item.
const DefaultKeyboardStep = 25

// Sensor is a tagged input variant. All kinds share the same lifecycle
// (attach, move, end, cancel); Kind selects which events activate it.
type Sensor struct {
	Kind SensorKind
	// Constraint gates activation; nil activates immediately.
	Constraint ActivationConstraint
	// AutoScroll enables the auto-scroll controller for sessions this
	// sensor starts.
	AutoScroll bool
	// Codes and Step configure the keyboard sensor.
	Codes KeyboardCodes
	Step  float64
}

// SensorOption configures a Sensor.
type SensorOption func(*Sensor)

// WithDistance sets a distance activation constraint.
func WithDistance(distance, tolerance Threshold) SensorOption {
	return func(s *Sensor) {
		s.Constraint = DistanceConstraint{Distance: distance, Tolerance: tolerance}
	}
}

// WithDelay sets a delay activation constraint.
func WithDelay(delay time.Duration, tolerance Threshold) SensorOption {
	return func(s *Sensor) {
		s.Constraint = DelayConstraint{Delay: delay, Tolerance: tolerance}
	}
}

// WithoutConstraint activates on the first press.
func WithoutConstraint() SensorOption {
	return func(s *Sensor) {
		s.Constraint = nil
	}
}

// WithSensorAutoScroll enables or disables auto-scroll for the sensor.
func WithSensorAutoScroll(enabled bool) SensorOption {
	return func(s *Sensor) {
		s.AutoScroll = enabled
	}
}

// WithKeyboardStep sets the distance one arrow key press moves.
func WithKeyboardStep(step float64) SensorOption {
	return func(s *Sensor) {
		s.Step = step
	}
}

// WithKeyboardCodes overrides the start, cancel and end keys.
func WithKeyboardCodes(codes KeyboardCodes) SensorOption {
	return func(s *Sensor) {
		s.Codes = codes
	}
}

func newSensor(kind SensorKind, opts []SensorOption) Sensor {
	s := Sensor{
		Kind:       kind,
		Constraint: DistanceConstraint{Distance: Px(DefaultActivationDistance)},
		AutoScroll: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewPointerSensor returns a sensor for mouse, touch and pen input with an
// 8px distance constraint by default.
func NewPointerSensor(opts ...SensorOption) Sensor {
	return newSensor(SensorPointer, opts)
}

// NewMouseSensor returns a primary-button mouse sensor.
func NewMouseSensor(opts ...SensorOption) Sensor {
	return newSensor(SensorMouse, opts)
}

// NewTouchSensor returns a touch sensor. Touch defaults to a 250ms delay
// with 5px tolerance so scrolling gestures are not mistaken for drags.
func NewTouchSensor(opts ...SensorOption) Sensor {
	defaults := []SensorOption{WithDelay(250*time.Millisecond, Px(5))}
	return newSensor(SensorTouch, append(defaults, opts...))
}

// NewKeyboardSensor returns a keyboard sensor. Keyboard sessions activate
// immediately and do not auto-scroll; the sensor scrolls ancestors itself.
func NewKeyboardSensor(opts ...SensorOption) Sensor {
	s := Sensor{
		Kind:  SensorKeyboard,
		Codes: DefaultKeyboardCodes(),
		Step:  DefaultKeyboardStep,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// activates reports whether ev is this sensor's activator event.
func (s Sensor) activates(ev Event) (string, bool) {
	switch e := ev.(type) {
	case PointerEvent:
		if e.Action != PointerDown || e.Target == "" {
			return "", false
		}
		switch s.Kind {
		case SensorPointer:
			if e.Type == PointerMouse && e.Button != MouseLeft {
				return "", false
			}
			return e.Target, true
		case SensorMouse:
			return e.Target, e.Type == PointerMouse && e.Button == MouseLeft
		case SensorTouch:
			return e.Target, e.Type == PointerTouch
		}
	case KeyEvent:
		if s.Kind == SensorKeyboard && e.Target != "" && containsKey(s.Codes.Start, e.Key) {
			return e.Target, true
		}
	}
	return "", false
}

// sensorMachine is the shared capability every running sensor implements.
type sensorMachine interface {
	// attach registers listeners and timers on the coordinator.
	attach()
	// state reports the lifecycle position.
	state() SensorState
	// finish records the terminal state once the coordinator tears down.
	finish(SensorState)
}

func newMachine(c *Coordinator, s Sensor, activeID string, ev Event) sensorMachine {
	if s.Kind == SensorKeyboard {
		return &keyboardMachine{c: c, sensor: s, activeID: activeID, st: StatePending}
	}
	pe := ev.(PointerEvent)
	return &pointerMachine{
		c:         c,
		sensor:    s,
		activeID:  activeID,
		pointerID: pe.ID,
		pointer:   pe.Type,
		initial:   pe.Point,
		st:        StatePending,
	}
}
