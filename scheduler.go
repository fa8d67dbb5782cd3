package dnd

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grindlemire/go-dnd/internal/debug"
)

// Timer is a scheduled one-shot or recurring callback.
type Timer interface {
	// Stop prevents any further invocation. Returns false if the timer had
	// already fired (one-shot) or was already stopped.
	Stop() bool
}

// Scheduler runs timer callbacks and asynchronous completions on the host's
// event loop. Every callback passed to a Scheduler must be invoked on the
// same goroutine the host uses to call into the Coordinator.
type Scheduler interface {
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Timer
	// Every runs fn every d until the returned Timer is stopped.
	Every(d time.Duration, fn func()) Timer
	// Post queues fn to run on the loop as soon as possible. Safe to call
	// from any goroutine.
	Post(fn func())
	// Now returns the scheduler's current time.
	Now() time.Time
}

// LoopScheduler is a Scheduler backed by real timers. Callbacks are queued
// on a channel that the host drains on its event loop, either by reading
// Queue directly or by calling Run.
type LoopScheduler struct {
	queue  chan func()
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewLoopScheduler creates a scheduler with the given queue capacity.
// A size below 1 uses 256.
func NewLoopScheduler(size int) *LoopScheduler {
	if size < 1 {
		size = 256
	}
	return &LoopScheduler{
		queue:  make(chan func(), size),
		stopCh: make(chan struct{}),
	}
}

// Queue returns the channel of callbacks to run on the loop.
func (s *LoopScheduler) Queue() <-chan func() {
	return s.queue
}

// Run drains the queue on the calling goroutine until ctx is done or the
// scheduler is closed.
func (s *LoopScheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case fn := <-s.queue:
			fn()
		}
	}
}

// Post queues fn for the loop. Dropped if the scheduler is closed.
func (s *LoopScheduler) Post(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.stopCh:
	}
}

// Now returns the wall clock time.
func (s *LoopScheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on the loop once after d.
func (s *LoopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		if t.stopped.Load() {
			return
		}
		s.Post(func() {
			// Stop may have raced with the post.
			if t.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

// Every runs fn on the loop every d until stopped or the scheduler closes.
func (s *LoopScheduler) Every(d time.Duration, fn func()) Timer {
	t := &tickerTimer{done: make(chan struct{})}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		debug.Log("LoopScheduler: ticker started interval=%s", d)
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-t.done:
				return
			case <-ticker.C:
				select {
				case s.queue <- func() {
					if !t.stopped.Load() {
						fn()
					}
				}:
				case <-t.done:
					return
				case <-s.stopCh:
					return
				}
			}
		}
	}()
	return t
}

// Close stops every ticker goroutine and rejects further posts.
func (s *LoopScheduler) Close() {
	s.once.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	t.timer.Stop()
	return true
}

type tickerTimer struct {
	done    chan struct{}
	stopped atomic.Bool
}

func (t *tickerTimer) Stop() bool {
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	close(t.done)
	return true
}
