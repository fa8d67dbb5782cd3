package dnd

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a deterministic Scheduler for tests and replay.
// Time only moves when Advance is called; posted callbacks run on RunPending
// or as part of Advance.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
	posted []func()
}

// NewManualScheduler creates a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

type manualTimer struct {
	s       *ManualScheduler
	seq     int
	due     time.Time
	period  time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || (t.fired && t.period == 0) {
		return false
	}
	t.stopped = true
	return true
}

// Now returns the manual clock.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc registers a one-shot timer.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return s.add(d, 0, fn)
}

// Every registers a recurring timer.
func (s *ManualScheduler) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return s.add(d, d, fn)
}

func (s *ManualScheduler) add(d, period time.Duration, fn func()) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, seq: s.seq, due: s.now.Add(d), period: period, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Post queues fn. Safe from any goroutine.
func (s *ManualScheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
}

// RunPending runs posted callbacks, including ones posted while running,
// and returns how many ran.
func (s *ManualScheduler) RunPending() int {
	n := 0
	for {
		s.mu.Lock()
		if len(s.posted) == 0 {
			s.mu.Unlock()
			return n
		}
		fn := s.posted[0]
		s.posted = s.posted[1:]
		s.mu.Unlock()
		fn()
		n++
	}
}

// Advance moves the clock forward by d, firing due timers in due order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.RunPending()
		t := s.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
	s.RunPending()
}

// ActiveTimers returns how many timers are still scheduled.
func (s *ManualScheduler) ActiveTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// nextDue pops the earliest timer due at or before target and advances the
// clock to its due time.
func (s *ManualScheduler) nextDue(target time.Time) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].due.Equal(s.timers[j].due) {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].due.Before(s.timers[j].due)
	})
	if len(s.timers) == 0 || s.timers[0].due.After(target) {
		return nil
	}

	t := s.timers[0]
	s.now = t.due
	if t.period > 0 {
		t.due = t.due.Add(t.period)
	} else {
		t.fired = true
	}
	return t
}
