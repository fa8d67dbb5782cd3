package dnd

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring a Coordinator.
type Option func(*Coordinator) error

// MeasuringOptions controls how droppables are measured during a drag.
type MeasuringOptions struct {
	// IgnoreTransform measures nodes without their current transform.
	IgnoreTransform bool
	// Debounce delays re-measurement after InvalidateLayout or a change of
	// over target.
	Debounce time.Duration
}

// DefaultMeasuringOptions measures transform-agnostic rects with a 100ms
// debounce.
func DefaultMeasuringOptions() MeasuringOptions {
	return MeasuringOptions{IgnoreTransform: true, Debounce: 100 * time.Millisecond}
}

// DefaultConfirmTimeout bounds how long a ConfirmDrop hook may run.
const DefaultConfirmTimeout = 5 * time.Second

// WithScheduler sets the scheduler that runs timers and async results on
// the host's loop. Default is a LoopScheduler the host drains through
// Coordinator.Scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Coordinator) error {
		if s == nil {
			return fmt.Errorf("scheduler cannot be nil")
		}
		c.sched = s
		return nil
	}
}

// WithSensors sets the sensors that may start a drag. Default is a pointer
// sensor and a keyboard sensor.
func WithSensors(sensors ...Sensor) Option {
	return func(c *Coordinator) error {
		c.sensors = append([]Sensor(nil), sensors...)
		return nil
	}
}

// WithCollisionDetection sets the collision detector. Default is
// ClosestCorners, which suits stacked columns.
func WithCollisionDetection(d CollisionDetector) Option {
	return func(c *Coordinator) error {
		if d == nil {
			return fmt.Errorf("collision detector cannot be nil")
		}
		c.detect = d
		return nil
	}
}

// WithAutoScroll configures edge auto-scrolling.
func WithAutoScroll(opts AutoScrollOptions) Option {
	return func(c *Coordinator) error {
		if opts.Enabled && opts.Interval <= 0 {
			return fmt.Errorf("auto-scroll interval must be positive")
		}
		c.autoScroll = opts
		return nil
	}
}

// WithoutAutoScroll disables auto-scrolling for every sensor.
func WithoutAutoScroll() Option {
	return func(c *Coordinator) error {
		c.autoScroll.Enabled = false
		return nil
	}
}

// WithMeasuring configures droppable measurement.
func WithMeasuring(opts MeasuringOptions) Option {
	return func(c *Coordinator) error {
		if opts.Debounce < 0 {
			return fmt.Errorf("measuring debounce cannot be negative")
		}
		c.measuring = opts
		return nil
	}
}

// WithModifiers sets the delta modifiers, applied in order.
func WithModifiers(mods ...DeltaModifier) Option {
	return func(c *Coordinator) error {
		c.modifiers = append([]DeltaModifier(nil), mods...)
		return nil
	}
}

// WithConfirmDrop installs a hook that may veto drops. A timeout of 0 uses
// DefaultConfirmTimeout.
func WithConfirmDrop(fn ConfirmDropFunc, timeout time.Duration) Option {
	return func(c *Coordinator) error {
		if timeout < 0 {
			return fmt.Errorf("confirm timeout cannot be negative")
		}
		if timeout == 0 {
			timeout = DefaultConfirmTimeout
		}
		c.confirm = fn
		c.confirmTimeout = timeout
		return nil
	}
}

// WithSuppressor sets the host hook that disables text selection and
// context menus while a pointer drag runs.
func WithSuppressor(s Suppressor) Option {
	return func(c *Coordinator) error {
		c.suppressor = s
		return nil
	}
}

// WithMutator lets the coordinator resolve drops against the mutator's
// board and execute the resulting move.
func WithMutator(m *Mutator) Option {
	return func(c *Coordinator) error {
		c.mutator = m
		return nil
	}
}

// WithLogger sets the structured logger. Default discards.
func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) error {
		if log == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.log = log
		return nil
	}
}
