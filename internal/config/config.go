// Package config loads settings for the dnd command and converts them into
// coordinator and mutator options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	dnd "github.com/grindlemire/go-dnd"
)

// EnvPrefix is the prefix for environment overrides, e.g. DND_KEYBOARD_STEP.
const EnvPrefix = "DND"

// Config holds every tunable of the drag engine and the reference host.
type Config struct {
	Sensor     SensorConfig     `mapstructure:"sensor"`
	Keyboard   KeyboardConfig   `mapstructure:"keyboard"`
	AutoScroll AutoScrollConfig `mapstructure:"autoscroll"`
	Measuring  MeasuringConfig  `mapstructure:"measuring"`
	Drop       DropConfig       `mapstructure:"drop"`
	Undo       UndoConfig       `mapstructure:"undo"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        LogConfig        `mapstructure:"log"`
}

// SensorConfig holds pointer and touch activation constraints.
type SensorConfig struct {
	Distance       float64       `mapstructure:"distance"`
	Tolerance      float64       `mapstructure:"tolerance"`
	TouchDelay     time.Duration `mapstructure:"touch_delay"`
	TouchTolerance float64       `mapstructure:"touch_tolerance"`
}

// KeyboardConfig holds keyboard sensor settings.
type KeyboardConfig struct {
	Step float64 `mapstructure:"step"`
}

// AutoScrollConfig holds edge scrolling settings.
type AutoScrollConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Activator is "rect" or "pointer".
	Activator    string        `mapstructure:"activator"`
	Reversed     bool          `mapstructure:"reversed"`
	Threshold    float64       `mapstructure:"threshold"`
	Acceleration float64       `mapstructure:"acceleration"`
	Interval     time.Duration `mapstructure:"interval"`
}

// MeasuringConfig holds droppable measurement settings.
type MeasuringConfig struct {
	IgnoreTransform bool          `mapstructure:"ignore_transform"`
	Debounce        time.Duration `mapstructure:"debounce"`
}

// DropConfig holds drop resolution settings.
type DropConfig struct {
	// Collision is one of closest_corners, closest_center, rect_intersection
	// or pointer_within.
	Collision      string        `mapstructure:"collision"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
}

// UndoConfig holds undo stack and persistence settings.
type UndoConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	Cleanup time.Duration `mapstructure:"cleanup"`
	Epsilon float64       `mapstructure:"epsilon"`
	FanOut  int           `mapstructure:"fan_out"`
}

// StoreConfig holds the sqlite store location.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds debug log settings. An empty path disables logging.
type LogConfig struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sensor.distance", dnd.DefaultActivationDistance)
	v.SetDefault("sensor.tolerance", 0)
	v.SetDefault("sensor.touch_delay", 250*time.Millisecond)
	v.SetDefault("sensor.touch_tolerance", 5)

	v.SetDefault("keyboard.step", dnd.DefaultKeyboardStep)

	auto := dnd.DefaultAutoScrollOptions()
	v.SetDefault("autoscroll.enabled", auto.Enabled)
	v.SetDefault("autoscroll.activator", "rect")
	v.SetDefault("autoscroll.reversed", false)
	v.SetDefault("autoscroll.threshold", auto.Threshold.Y)
	v.SetDefault("autoscroll.acceleration", auto.Acceleration)
	v.SetDefault("autoscroll.interval", auto.Interval)

	measuring := dnd.DefaultMeasuringOptions()
	v.SetDefault("measuring.ignore_transform", measuring.IgnoreTransform)
	v.SetDefault("measuring.debounce", measuring.Debounce)

	v.SetDefault("drop.collision", "closest_corners")
	v.SetDefault("drop.confirm_timeout", dnd.DefaultConfirmTimeout)

	v.SetDefault("undo.ttl", dnd.DefaultUndoTTL)
	v.SetDefault("undo.cleanup", dnd.DefaultUndoCleanup)
	v.SetDefault("undo.epsilon", dnd.DefaultRenumberEpsilon)
	v.SetDefault("undo.fan_out", 8)

	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("log.path", "")
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "dnd.db"
	}
	return filepath.Join(dir, "dnd", "board.db")
}

// Default returns the configuration with no file or environment applied.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var c Config
	// Defaults always decode.
	_ = v.Unmarshal(&c)
	return c
}

// Load reads configuration from path (TOML) when given, otherwise from
// config.toml in the user config directory if present. Environment
// variables prefixed with DND_ override both.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "dnd"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	switch {
	case c.Sensor.Distance < 0:
		return fmt.Errorf("sensor.distance must not be negative")
	case c.Sensor.TouchDelay < 0:
		return fmt.Errorf("sensor.touch_delay must not be negative")
	case c.Keyboard.Step <= 0:
		return fmt.Errorf("keyboard.step must be positive")
	case c.AutoScroll.Threshold <= 0 || c.AutoScroll.Threshold > 0.5:
		return fmt.Errorf("autoscroll.threshold must be in (0, 0.5]")
	case c.AutoScroll.Enabled && c.AutoScroll.Interval <= 0:
		return fmt.Errorf("autoscroll.interval must be positive")
	case c.AutoScroll.Activator != "rect" && c.AutoScroll.Activator != "pointer":
		return fmt.Errorf("autoscroll.activator must be rect or pointer, got %q", c.AutoScroll.Activator)
	case c.Measuring.Debounce < 0:
		return fmt.Errorf("measuring.debounce must not be negative")
	case c.Undo.TTL <= 0:
		return fmt.Errorf("undo.ttl must be positive")
	case c.Undo.FanOut < 1:
		return fmt.Errorf("undo.fan_out must be at least 1")
	}
	if _, ok := collisionDetectors[c.Drop.Collision]; !ok {
		return fmt.Errorf("drop.collision: unknown detector %q", c.Drop.Collision)
	}
	return nil
}

var collisionDetectors = map[string]dnd.CollisionDetector{
	"closest_corners":   dnd.ClosestCorners,
	"closest_center":    dnd.ClosestCenter,
	"rect_intersection": dnd.RectIntersection,
	"pointer_within":    dnd.PointerWithin,
}

// Sensors returns the pointer, touch and keyboard sensors described by c.
func (c Config) Sensors() []dnd.Sensor {
	return []dnd.Sensor{
		dnd.NewPointerSensor(dnd.WithDistance(dnd.Px(c.Sensor.Distance), dnd.Px(c.Sensor.Tolerance))),
		dnd.NewTouchSensor(dnd.WithDelay(c.Sensor.TouchDelay, dnd.Px(c.Sensor.TouchTolerance))),
		dnd.NewKeyboardSensor(dnd.WithKeyboardStep(c.Keyboard.Step)),
	}
}

// AutoScrollOptions returns the auto-scroll settings as library options.
func (c Config) AutoScrollOptions() dnd.AutoScrollOptions {
	opts := dnd.DefaultAutoScrollOptions()
	opts.Enabled = c.AutoScroll.Enabled
	if c.AutoScroll.Activator == "pointer" {
		opts.Activator = dnd.ActivateOnPointer
	}
	if c.AutoScroll.Reversed {
		opts.Order = dnd.ReversedTreeOrder
	}
	opts.Threshold = dnd.Point{X: c.AutoScroll.Threshold, Y: c.AutoScroll.Threshold}
	opts.Acceleration = c.AutoScroll.Acceleration
	opts.Interval = c.AutoScroll.Interval
	return opts
}

// Options converts c into coordinator options. Callers add their own
// scheduler, mutator and logger.
func (c Config) Options() []dnd.Option {
	return []dnd.Option{
		dnd.WithSensors(c.Sensors()...),
		dnd.WithCollisionDetection(collisionDetectors[c.Drop.Collision]),
		dnd.WithAutoScroll(c.AutoScrollOptions()),
		dnd.WithMeasuring(dnd.MeasuringOptions{
			IgnoreTransform: c.Measuring.IgnoreTransform,
			Debounce:        c.Measuring.Debounce,
		}),
	}
}

// MutatorOptions converts the undo settings into mutator options.
func (c Config) MutatorOptions() []dnd.MutatorOption {
	return []dnd.MutatorOption{
		dnd.WithUndoTTL(c.Undo.TTL),
		dnd.WithUndoCleanup(c.Undo.Cleanup),
		dnd.WithRenumberEpsilon(c.Undo.Epsilon),
		dnd.WithFanOutLimit(c.Undo.FanOut),
	}
}
