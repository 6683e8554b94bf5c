// ABOUTME: Frame scheduler coalescing bursts of update requests into one pass per frame
// ABOUTME: Provides timer-driven and host-driven frame sources

package engine

import (
	"slices"
	"sync"
	"time"
)

// DefaultFrameInterval approximates one 60Hz rendering frame
const DefaultFrameInterval = 16 * time.Millisecond

// FrameSource schedules fire to run on the next rendering frame.
// The returned cancel func prevents fire from running if it has not run yet.
type FrameSource interface {
	RequestFrame(fire func()) (cancel func())
}

// FrameSourceFunc adapts a function to the FrameSource interface
type FrameSourceFunc func(fire func()) (cancel func())

// RequestFrame calls f.
func (f FrameSourceFunc) RequestFrame(fire func()) func() { return f(fire) }

// TimerFrames fires frames from a timer goroutine, for hosts without their own frame loop.
type TimerFrames struct {
	Interval time.Duration
}

// RequestFrame schedules fire after one frame interval
func (t TimerFrames) RequestFrame(fire func()) func() {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	timer := time.AfterFunc(interval, fire)

	return func() { timer.Stop() }
}

// ManualFrames queues frame callbacks until the host calls Tick.
// Hosts with a render loop (the TUI) tick it once per frame on their own goroutine.
type ManualFrames struct {
	mu     sync.Mutex
	queue  map[uint64]func()
	order  []uint64
	nextID uint64
}

// NewManualFrames creates an empty host-driven frame source
func NewManualFrames() *ManualFrames {
	return &ManualFrames{queue: make(map[uint64]func())}
}

// RequestFrame queues fire for the next Tick
func (f *ManualFrames) RequestFrame(fire func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.queue[id] = fire
	f.order = append(f.order, id)

	return func() {
		f.mu.Lock()
		delete(f.queue, id)
		f.order = slices.DeleteFunc(f.order, func(o uint64) bool { return o == id })
		f.mu.Unlock()
	}
}

// Pending returns the number of queued callbacks
func (f *ManualFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.queue)
}

// Tick runs every callback queued before the call and returns how many ran.
// Callbacks queued while ticking wait for the next Tick.
func (f *ManualFrames) Tick() int {
	f.mu.Lock()
	order := f.order
	f.order = nil

	fires := make([]func(), 0, len(order))
	for _, id := range order {
		if fire, ok := f.queue[id]; ok {
			fires = append(fires, fire)
			delete(f.queue, id)
		}
	}
	f.mu.Unlock()

	for _, fire := range fires {
		fire()
	}

	return len(fires)
}

// FrameScheduler guarantees at most one recomputation in flight per engine.
type FrameScheduler struct {
	mu      sync.Mutex
	source  FrameSource
	pending bool
	cancel  func()
	gen     uint64 // Bumped on Close to invalidate a frame that is already firing
	closed  bool
}

// NewFrameScheduler creates a scheduler on top of source (TimerFrames when nil)
func NewFrameScheduler(source FrameSource) *FrameScheduler {
	if source == nil {
		source = TimerFrames{}
	}

	return &FrameScheduler{source: source}
}

// RequestUpdate schedules cb for the next frame. While a frame is already pending the call
// is a no-op and returns false: the pending callback reads current state when it runs.
func (s *FrameScheduler) RequestUpdate(cb func()) bool {
	s.mu.Lock()
	if s.closed || s.pending {
		s.mu.Unlock()
		return false
	}

	s.pending = true
	gen := s.gen
	s.mu.Unlock()

	// RequestFrame may fire synchronously, so it runs outside the lock
	cancel := s.source.RequestFrame(func() { s.run(gen, cb) })

	s.mu.Lock()
	if s.pending && s.gen == gen {
		s.cancel = cancel
	}
	s.mu.Unlock()

	return true
}

// run executes cb unless the scheduler was closed since the request
func (s *FrameScheduler) run(gen uint64, cb func()) {
	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// Cleared even if cb panics
	defer func() {
		s.mu.Lock()
		if s.gen == gen {
			s.pending = false
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	cb()
}

// Pending reports whether a frame is scheduled but has not finished running
func (s *FrameScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending
}

// Close cancels any pending frame. No callback runs after Close returns, except one
// that had already started.
func (s *FrameScheduler) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.closed = true
	s.pending = false
	s.cancel = nil
	s.gen++
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
