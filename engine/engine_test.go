// ABOUTME: Tests for the synchronization orchestrator
// ABOUTME: Drives the engine with synthetic geometry and host-driven frames

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProbe serves a settable snapshot and counts reads
type fakeProbe struct {
	snap  GeometrySnapshot
	ok    bool
	reads int
}

func (p *fakeProbe) Measure() (GeometrySnapshot, bool) {
	p.reads++
	return p.snap, p.ok
}

// scrollTo sets container-relative geometry for a 3-section reading pane
func (p *fakeProbe) scrollTo(offset float64) {
	p.snap = containerSnapshot(0, offset, 600, 1200, 0, 400, 800)
	p.ok = true
}

// fakeSelectors lays tabs out left to right with a fixed width
type fakeSelectors struct {
	width float64
	ok    bool
}

func (s *fakeSelectors) MeasureSelector(index int) (Rect, Rect, bool) {
	row := Rect{X: 10, Y: 0, Width: s.width * 3, Height: 1}
	sel := Rect{X: 10 + float64(index)*s.width, Y: 0, Width: s.width, Height: 1}

	return row, sel, s.ok
}

type harness struct {
	engine    *Engine
	probe     *fakeProbe
	selectors *fakeSelectors
	frames    *ManualFrames
	scrolls   []ScrollRequest
	changes   []Change
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	h := &harness{
		probe:     &fakeProbe{},
		selectors: &fakeSelectors{width: 12, ok: true},
		frames:    NewManualFrames(),
	}
	h.probe.scrollTo(0)

	sections := []Section{{ID: "intro"}, {ID: "cutting"}, {ID: "welding"}}

	e, err := New(sections, opts, Dependencies{
		Probe:          h.probe,
		Selectors:      h.selectors,
		Frames:         h.frames,
		ScrollIntoView: func(r ScrollRequest) { h.scrolls = append(h.scrolls, r) },
	})
	require.NoError(t, err)
	t.Cleanup(e.Close)

	e.Subscribe(func(c Change) { h.changes = append(h.changes, c) })
	h.engine = e

	return h
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, DefaultOptions(), Dependencies{Probe: &fakeProbe{}})
	require.ErrorIs(t, err, ErrNoSections)

	_, err = New([]Section{{ID: "a"}}, DefaultOptions(), Dependencies{})
	require.ErrorIs(t, err, ErrNilProbe)
}

func TestNew_InitialState(t *testing.T) {
	opts := DefaultOptions()
	opts.InitialIndex = 7
	h := newHarness(t, opts)

	assert.Equal(t, State{ActiveIndex: 2, Mode: ContainerRelative}, h.engine.State(), "initial index is clamped")
	assert.Equal(t, "welding", h.engine.ActiveSection().ID)

	ind, ok := h.engine.Indicator()
	require.True(t, ok, "indicator measured at init")
	assert.Equal(t, IndicatorGeometry{Offset: 24, Size: 12}, ind)

	for i, s := range h.engine.Sections() {
		assert.Equal(t, i, s.Index)
	}
}

func TestEngine_ScrollNotificationsCoalesce(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.probe.scrollTo(400)
	for range 40 {
		h.engine.NotifyScroll()
	}

	assert.Equal(t, 0, h.probe.reads, "nothing is measured before the frame")
	assert.Equal(t, 1, h.frames.Pending())

	h.frames.Tick()

	assert.Equal(t, 1, h.probe.reads, "one geometry read per frame")
	assert.Equal(t, 1, h.engine.ActiveIndex())
	require.Len(t, h.changes, 1)
	assert.Equal(t, Change{Previous: 0, Current: 1, Cause: CauseScroll, Indicator: IndicatorGeometry{Offset: 12, Size: 12}, HasIndicator: true}, h.changes[0])
}

func TestEngine_FrameReadsLatestGeometry(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.probe.scrollTo(400)
	h.engine.NotifyScroll()
	h.probe.scrollTo(600) // Geometry changes again before the frame runs
	h.engine.NotifyScroll()

	h.frames.Tick()
	assert.Equal(t, 2, h.engine.ActiveIndex())
}

func TestEngine_NoChangeNoEvent(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.probe.scrollTo(100)
	h.engine.NotifyScroll()
	h.frames.Tick()

	assert.Equal(t, 0, h.engine.ActiveIndex())
	assert.Empty(t, h.changes)
}

func TestEngine_UnmeasurableKeepsState(t *testing.T) {
	h := newHarness(t, DefaultOptions())
	h.engine.Navigate(1)
	h.changes = nil

	h.probe.ok = false
	h.engine.NotifyScroll()
	h.frames.Tick()

	assert.Equal(t, 1, h.engine.ActiveIndex())
	assert.Empty(t, h.changes)
}

func TestEngine_ResizeRecomputesIndicator(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.selectors.width = 20
	h.engine.NotifyResize()
	h.frames.Tick()

	assert.Equal(t, 0, h.engine.ActiveIndex())
	ind, ok := h.engine.Indicator()
	require.True(t, ok)
	assert.Equal(t, IndicatorGeometry{Offset: 0, Size: 20}, ind)

	require.Len(t, h.changes, 1)
	assert.Equal(t, CauseResize, h.changes[0].Cause)
	assert.Equal(t, 0, h.changes[0].Current)
}

func TestEngine_ResizeCoalescedWithScroll(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.engine.NotifyScroll()
	h.selectors.width = 30
	h.engine.NotifyResize()
	h.frames.Tick()

	ind, _ := h.engine.Indicator()
	assert.Equal(t, 30.0, ind.Size, "resize folded into the pending frame still refreshes the indicator")
	assert.Equal(t, 1, h.probe.reads)
}

func TestEngine_IndicatorFrozenWhenUnmeasurable(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.selectors.ok = false
	h.engine.Navigate(2)

	assert.Equal(t, 2, h.engine.ActiveIndex())
	ind, ok := h.engine.Indicator()
	assert.True(t, ok)
	assert.Equal(t, IndicatorGeometry{Offset: 0, Size: 12}, ind, "previous geometry kept")
}

func TestEngine_NavigateIsImmediate(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	got := h.engine.Navigate(2)

	assert.Equal(t, 2, got)
	assert.Equal(t, 2, h.engine.ActiveIndex())
	assert.Equal(t, 0, h.probe.reads, "navigate does not wait for a resolver pass")
	assert.Equal(t, []ScrollRequest{{Index: 2, ID: "welding", Smooth: true}}, h.scrolls)

	ind, _ := h.engine.Indicator()
	assert.Equal(t, IndicatorGeometry{Offset: 24, Size: 12}, ind)

	require.Len(t, h.changes, 1)
	assert.Equal(t, CauseNavigate, h.changes[0].Cause)
}

func TestEngine_NavigateBoundaryPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy BoundaryPolicy
		target int
		want   int
	}{
		{"clamp below", Clamp, -5, 0},
		{"clamp above", Clamp, 99, 2},
		{"clamp in range", Clamp, 1, 1},
		{"wrap below", Wrap, -1, 2},
		{"wrap above", Wrap, 3, 0},
		{"wrap far above", Wrap, 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.BoundaryPolicy = tt.policy
			h := newHarness(t, opts)

			assert.Equal(t, tt.want, h.engine.Navigate(tt.target))
			assert.Equal(t, tt.want, h.engine.ActiveIndex())
		})
	}
}

func TestEngine_KeyboardClampSaturates(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	assert.Equal(t, 0, h.engine.HandleKey(KeyBackward))
	assert.Equal(t, 1, h.engine.HandleKey(KeyForward))
	assert.Equal(t, 2, h.engine.HandleKey(KeyForward))
	assert.Equal(t, 2, h.engine.HandleKey(KeyForward))
}

func TestEngine_KeyboardWrapCycles(t *testing.T) {
	opts := DefaultOptions()
	opts.BoundaryPolicy = Wrap
	h := newHarness(t, opts)

	assert.Equal(t, 2, h.engine.HandleKey(KeyBackward))
	assert.Equal(t, 0, h.engine.HandleKey(KeyForward))
}

func TestEngine_KeyboardScrollLinkage(t *testing.T) {
	t.Run("scroll linked", func(t *testing.T) {
		h := newHarness(t, DefaultOptions())
		h.engine.Step(1)
		assert.Equal(t, []ScrollRequest{{Index: 1, ID: "cutting", Smooth: true}}, h.scrolls)
	})

	t.Run("index linked", func(t *testing.T) {
		opts := DefaultOptions()
		opts.KeyboardScrollLinked = false
		h := newHarness(t, opts)

		h.engine.Step(1)
		assert.Equal(t, 1, h.engine.ActiveIndex())
		assert.Empty(t, h.scrolls)

		// Clicks still scroll
		h.engine.Navigate(2)
		assert.Len(t, h.scrolls, 1)
	})
}

func TestEngine_HoldDuringNavigate(t *testing.T) {
	opts := DefaultOptions()
	opts.HoldDuringNavigate = true
	h := newHarness(t, opts)

	h.engine.Navigate(2)
	require.True(t, h.engine.Holding())

	// Animation passes the middle section on its way down
	h.probe.scrollTo(400)
	h.engine.NotifyScroll()
	h.frames.Tick()
	assert.Equal(t, 2, h.engine.ActiveIndex(), "intermediate positions do not fight the navigation")

	// Arriving at the target releases the hold
	h.probe.scrollTo(600)
	h.engine.NotifyScroll()
	h.frames.Tick()
	assert.False(t, h.engine.Holding())

	// User scrolls back up
	h.probe.scrollTo(0)
	h.engine.NotifyScroll()
	h.frames.Tick()
	assert.Equal(t, 0, h.engine.ActiveIndex())
}

func TestEngine_EndNavigationKeepsNavigatedIndex(t *testing.T) {
	opts := DefaultOptions()
	opts.HoldDuringNavigate = true
	h := newHarness(t, opts)

	h.engine.Navigate(1)
	// Host could not scroll that far (content too short); geometry still says section 0
	h.engine.EndNavigation()
	assert.False(t, h.engine.Holding())

	assert.Equal(t, 0, h.frames.Tick(), "releasing the hold schedules no frame")
	assert.Equal(t, 1, h.engine.ActiveIndex(), "navigation is not undone without a scroll")
	assert.Equal(t, 0, h.probe.reads)

	// The next real scroll hands control back to the resolver
	h.engine.NotifyScroll()
	h.frames.Tick()
	assert.Equal(t, 0, h.engine.ActiveIndex())
}

func TestEngine_EndNavigationAfterFinalScroll(t *testing.T) {
	opts := DefaultOptions()
	opts.HoldDuringNavigate = true
	h := newHarness(t, opts)

	h.engine.Navigate(1)

	// The animation's last step lands short of section 1 and the host gives up
	h.probe.scrollTo(200)
	h.engine.NotifyScroll()
	h.engine.EndNavigation()

	h.frames.Tick()
	assert.Equal(t, 0, h.engine.ActiveIndex(), "the queued scroll frame resolves without the hold")
}

func TestEngine_CloseStopsEverything(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	h.probe.scrollTo(400)
	h.engine.NotifyScroll()
	h.engine.Close()

	assert.Equal(t, 0, h.frames.Tick(), "pending frame cancelled")
	assert.Equal(t, 0, h.probe.reads)

	h.engine.NotifyScroll()
	h.engine.NotifyResize()
	assert.Equal(t, 0, h.frames.Pending())

	assert.Equal(t, 0, h.engine.Navigate(2), "navigation ignored after teardown")
	assert.Empty(t, h.changes)
	assert.Empty(t, h.scrolls)

	h.engine.Close() // Idempotent
}

func TestEngine_Unsubscribe(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	calls := 0
	unsubscribe := h.engine.Subscribe(func(Change) { calls++ })

	h.engine.Navigate(1)
	unsubscribe()
	h.engine.Navigate(2)

	assert.Equal(t, 1, calls)
	assert.Len(t, h.changes, 2, "other subscribers unaffected")
}

func TestEngine_ListenerMayCallBack(t *testing.T) {
	h := newHarness(t, DefaultOptions())

	seen := -1
	h.engine.Subscribe(func(c Change) {
		seen = h.engine.ActiveIndex() // Would deadlock if called under the lock
	})

	h.engine.Navigate(1)
	assert.Equal(t, 1, seen)
}

func TestParseBoundaryPolicy(t *testing.T) {
	p, err := ParseBoundaryPolicy("Wrap")
	require.NoError(t, err)
	assert.Equal(t, Wrap, p)
	assert.Equal(t, "wrap", p.String())

	p, err = ParseBoundaryPolicy("")
	require.NoError(t, err)
	assert.Equal(t, Clamp, p)

	_, err = ParseBoundaryPolicy("bounce")
	require.Error(t, err)
}
