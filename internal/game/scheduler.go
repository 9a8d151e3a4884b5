package game

import (
	"sort"
	"time"
)

// Scheduler runs one-shot callbacks on the frame loop.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type pendingFunc struct {
	due time.Time
	seq int
	f   func()
}

// FrameScheduler is a Scheduler driven by the frame loop clock. Callbacks run
// inside Advance on the caller's goroutine and cannot be cancelled.
type FrameScheduler struct {
	now     time.Time
	seq     int
	pending []pendingFunc
}

// NewFrameScheduler creates a scheduler whose clock starts at now.
func NewFrameScheduler(now time.Time) *FrameScheduler {
	return &FrameScheduler{now: now}
}

// AfterFunc schedules f to run on the first Advance at or after now+d.
func (s *FrameScheduler) AfterFunc(d time.Duration, f func()) {
	s.seq++
	s.pending = append(s.pending, pendingFunc{due: s.now.Add(d), seq: s.seq, f: f})
}

// Advance moves the clock to now and runs every callback that is due, oldest first.
// Callbacks scheduled from inside a callback wait for a later Advance.
func (s *FrameScheduler) Advance(now time.Time) {
	if now.After(s.now) {
		s.now = now
	}

	var due []pendingFunc
	kept := s.pending[:0]
	for _, p := range s.pending {
		if !p.due.After(s.now) {
			due = append(due, p)
			continue
		}
		kept = append(kept, p)
	}
	s.pending = kept

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	for _, p := range due {
		p.f()
	}
}

// Pending returns the number of callbacks waiting to run.
func (s *FrameScheduler) Pending() int {
	return len(s.pending)
}
