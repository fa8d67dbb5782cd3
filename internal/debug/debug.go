package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvVar names the environment variable that enables debug logging.
const EnvVar = "DND_DEBUG"

var (
	logger  atomic.Pointer[zap.Logger]
	sink    atomic.Pointer[lumberjack.Logger]
	envOnce sync.Once
)

// Init initializes debug logging to the specified file path.
// If path is empty, uses "dnd-debug.log" in the current directory.
func Init(path string) error {
	if path == "" {
		path = "dnd-debug.log"
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(out), zap.DebugLevel)
	logger.Store(zap.New(core).Named("dnd"))
	if prev := sink.Swap(out); prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Logger returns the debug logger, or a no-op logger when debug logging is
// disabled. The first call honours DND_DEBUG.
func Logger() *zap.Logger {
	envOnce.Do(func() {
		if path := os.Getenv(EnvVar); path != "" && logger.Load() == nil {
			_ = Init(path)
		}
	})
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Enabled reports whether debug logging is active.
func Enabled() bool {
	return Logger().Core().Enabled(zap.DebugLevel)
}

// Log writes a formatted message to the debug log.
func Log(format string, args ...any) {
	l := Logger()
	if !l.Core().Enabled(zap.DebugLevel) {
		return
	}
	l.Debug(fmt.Sprintf(format, args...))
}

// Logf is an alias for Log.
func Logf(format string, args ...any) {
	Log(format, args...)
}

// Close flushes and detaches the debug logger and closes its file.
func Close() error {
	l := logger.Swap(nil)
	if l == nil {
		return nil
	}
	err := l.Sync()
	if out := sink.Swap(nil); out != nil {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
