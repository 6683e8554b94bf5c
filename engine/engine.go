// ABOUTME: Synchronization orchestrator owning the active-section state
// ABOUTME: Drives the resolver from scroll/resize notifications and handles direct navigation

// Package engine keeps a discrete "active section" in sync with continuous scroll geometry.
//
// Scroll and resize notifications are coalesced by a FrameScheduler into at most one
// measure-and-resolve pass per frame. Direct navigation (clicks, keys) sets the active index
// immediately and asks the host to scroll the target into view. Nothing in this package
// returns a runtime error: unmeasurable geometry keeps the last known state.
package engine

import (
	"errors"
	"slices"
	"sync"
)

// Construction errors
var (
	ErrNoSections = errors.New("engine: at least one section is required")
	ErrNilProbe   = errors.New("engine: geometry probe is required")
)

// Section is the identity and order of one tracked content unit.
type Section struct {
	Index int
	ID    string
}

// State is the activation state owned by the engine
type State struct {
	ActiveIndex int
	Mode        Mode
}

// Cause records what triggered a state change
type Cause int

// Change causes
const (
	CauseScroll Cause = iota
	CauseResize
	CauseNavigate
	CauseKeyboard
)

// String returns a short name for logs
func (c Cause) String() string {
	switch c {
	case CauseScroll:
		return "scroll"
	case CauseResize:
		return "resize"
	case CauseNavigate:
		return "navigate"
	case CauseKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers when the active index or the indicator moves
type Change struct {
	Previous     int
	Current      int
	Cause        Cause
	Indicator    IndicatorGeometry
	HasIndicator bool
}

// Key is a keyboard navigation direction
type Key int

// Navigation keys
const (
	KeyForward Key = iota
	KeyBackward
)

type listener struct {
	id uint64
	fn func(Change)
}

// Engine is the synchronization orchestrator. It is safe for use from multiple goroutines,
// but the Probe and SelectorProbe it was built with must not call back into it.
type Engine struct {
	mu        sync.Mutex
	sections  []Section
	opts      Options
	resolver  Resolver
	deps      Dependencies
	scheduler *FrameScheduler
	debugf    func(string, ...interface{})

	state        State
	indicator    IndicatorGeometry
	hasIndicator bool
	resized      bool // Indicator must be re-measured on the next frame
	holding      bool // Navigation scroll in progress; resolver output is ignored
	navTarget    int
	closed       bool

	listeners    []listener
	nextListener uint64
}

// New creates an engine over sections, which are copied and re-indexed by position.
func New(sections []Section, opts Options, deps Dependencies) (*Engine, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	if deps.Probe == nil {
		return nil, ErrNilProbe
	}

	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}

	secs := slices.Clone(sections)
	for i := range secs {
		secs[i].Index = i
	}

	debugf := deps.Debugf
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	e := &Engine{
		sections:  secs,
		opts:      opts,
		resolver:  Resolver{Mode: opts.Mode, Thresholds: opts.Thresholds},
		deps:      deps,
		scheduler: NewFrameScheduler(deps.Frames),
		debugf:    debugf,
		state: State{
			ActiveIndex: clampIndex(opts.InitialIndex, len(secs)),
			Mode:        opts.Mode,
		},
	}

	e.refreshIndicator()

	e.debugf("[ENGINE] Created: %d sections, mode=%s, policy=%s, initial=%d",
		len(secs), opts.Mode, opts.BoundaryPolicy, e.state.ActiveIndex)

	return e, nil
}

// NotifyScroll tells the engine the container or document scrolled
func (e *Engine) NotifyScroll() {
	e.scheduler.RequestUpdate(e.frame)
}

// NotifyResize tells the engine the viewport changed size. The indicator is re-measured on
// the next frame even when the active index stays the same.
func (e *Engine) NotifyResize() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.resized = true
	e.mu.Unlock()

	e.scheduler.RequestUpdate(e.frame)
}

// frame is the coalesced measure-and-resolve pass
func (e *Engine) frame() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	resized := e.resized
	e.resized = false
	prev := e.state.ActiveIndex

	candidate := prev

	if snap, ok := e.deps.Probe.Measure(); ok {
		candidate = e.resolver.Resolve(snap, len(e.sections), prev)
	} else {
		e.debugf("[ENGINE] Geometry unmeasurable, keeping section %d", prev)
	}

	if e.holding {
		if candidate == e.navTarget {
			e.holding = false
		} else {
			candidate = prev
		}
	}

	changed := candidate != prev
	if changed {
		e.state.ActiveIndex = candidate
	}

	moved := false
	if changed || resized {
		moved = e.refreshIndicator()
	}

	if !changed && !moved {
		e.mu.Unlock()
		return
	}

	cause := CauseScroll
	if resized && !changed {
		cause = CauseResize
	}

	ch := e.changeLocked(prev, cause)
	fns := e.listenersLocked()
	e.mu.Unlock()

	if changed {
		e.debugf("[ENGINE] Active section %d -> %d (%s)", prev, candidate, cause)
	}

	emit(fns, ch)
}

// Navigate makes section i active immediately and requests it be scrolled into view.
// i is clamped or wrapped according to the boundary policy. Returns the new active index.
func (e *Engine) Navigate(i int) int {
	return e.navigate(func(_, n int) int {
		return e.opts.BoundaryPolicy.apply(i, n)
	}, CauseNavigate, true)
}

// Step moves the active index by delta under the boundary policy. It scrolls the target
// into view only when KeyboardScrollLinked is set.
func (e *Engine) Step(delta int) int {
	return e.navigate(func(current, n int) int {
		return e.opts.BoundaryPolicy.apply(current+delta, n)
	}, CauseKeyboard, e.opts.KeyboardScrollLinked)
}

// HandleKey maps forward/backward keys onto Step
func (e *Engine) HandleKey(k Key) int {
	if k == KeyBackward {
		return e.Step(-1)
	}

	return e.Step(1)
}

func (e *Engine) navigate(target func(current, n int) int, cause Cause, scroll bool) int {
	e.mu.Lock()
	if e.closed {
		idx := e.state.ActiveIndex
		e.mu.Unlock()

		return idx
	}

	prev := e.state.ActiveIndex
	next := target(prev, len(e.sections))
	e.state.ActiveIndex = next
	moved := e.refreshIndicator()

	scrollTo := e.deps.ScrollIntoView
	if !scroll {
		scrollTo = nil
	}

	if scrollTo != nil && e.opts.HoldDuringNavigate {
		e.holding = true
		e.navTarget = next
	}

	req := ScrollRequest{Index: next, ID: e.sections[next].ID, Smooth: true}

	var (
		ch  Change
		fns []func(Change)
	)

	notify := next != prev || moved
	if notify {
		ch = e.changeLocked(prev, cause)
		fns = e.listenersLocked()
	}
	e.mu.Unlock()

	if next != prev {
		e.debugf("[ENGINE] Active section %d -> %d (%s)", prev, next, cause)
	}

	if notify {
		emit(fns, ch)
	}

	if scrollTo != nil {
		scrollTo(req)
	}

	return next
}

// EndNavigation releases the navigation hold. Hosts call it when their scroll-into-view
// animation finishes or is abandoned. The active index set by navigation stays until the
// next scroll or resize notification resolves against the new geometry.
func (e *Engine) EndNavigation() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.holding = false
}

// Subscribe registers fn for every change and returns an unsubscribe function.
// fn is never called with the engine lock held.
func (e *Engine) Subscribe(fn func(Change)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, listener{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.listeners = slices.DeleteFunc(e.listeners, func(l listener) bool {
			return l.id == id
		})
	}
}

// Close tears the engine down: pending frames are cancelled and subscribers dropped.
// Notifications after Close are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.listeners = nil
	e.holding = false
	e.mu.Unlock()

	e.scheduler.Close()
	e.debugf("[ENGINE] Closed")
}

// ActiveIndex returns the current active index
func (e *Engine) ActiveIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.ActiveIndex
}

// State returns a copy of the activation state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// ActiveSection returns the identity of the active section
func (e *Engine) ActiveSection() Section {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sections[e.state.ActiveIndex]
}

// Indicator returns the indicator geometry; ok is false until the selector row was measurable
func (e *Engine) Indicator() (IndicatorGeometry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.indicator, e.hasIndicator
}

// Sections returns a copy of the tracked sections
func (e *Engine) Sections() []Section {
	return slices.Clone(e.sections)
}

// Len returns the number of sections
func (e *Engine) Len() int {
	return len(e.sections)
}

// Holding reports whether resolver output is being held for a navigation scroll
func (e *Engine) Holding() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.holding
}

// refreshIndicator re-measures the active selector. Returns true if the geometry changed.
// An unmeasurable selector keeps the previous geometry.
func (e *Engine) refreshIndicator() bool {
	if e.deps.Selectors == nil {
		return false
	}

	row, sel, ok := e.deps.Selectors.MeasureSelector(e.state.ActiveIndex)
	if !ok || !measured(row.X, row.Y, sel.X, sel.Y, sel.Width, sel.Height) {
		return false
	}

	next := ComputeIndicator(e.opts.Axis, row, sel)
	if e.hasIndicator && next == e.indicator {
		return false
	}

	e.indicator = next
	e.hasIndicator = true

	return true
}

func (e *Engine) changeLocked(prev int, cause Cause) Change {
	return Change{
		Previous:     prev,
		Current:      e.state.ActiveIndex,
		Cause:        cause,
		Indicator:    e.indicator,
		HasIndicator: e.hasIndicator,
	}
}

func (e *Engine) listenersLocked() []func(Change) {
	fns := make([]func(Change), len(e.listeners))
	for i, l := range e.listeners {
		fns[i] = l.fn
	}

	return fns
}

func emit(fns []func(Change), ch Change) {
	for _, fn := range fns {
		fn(ch)
	}
}
