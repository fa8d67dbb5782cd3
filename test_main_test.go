package dnd

import (
	"testing"

	"go.uber.org/goleak"
)

// Persistence, confirm hooks and LoopScheduler tickers all run goroutines;
// every test must leave none behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
