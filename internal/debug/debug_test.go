package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLog_NoopWhenDisabled(t *testing.T) {
	_ = Close()
	if Enabled() {
		t.Skip("DND_DEBUG set in environment")
	}
	Log("dropped %d", 1)
}

func TestInit_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	Log("session %s started", "abc")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "session abc started") {
		t.Errorf("log file = %q, want message", string(data))
	}
}
