// ABOUTME: Geometry measurements consumed by the activation resolver
// ABOUTME: Defines snapshots, rectangles, and the injected probe interfaces

package engine

import "math"

// Rect is a bounding rectangle relative to the viewport.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Top returns the top edge.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// GeometrySnapshot is a one-shot set of measurements for a single resolution pass.
// Fields that could not be measured hold NaN (see Unmeasured).
type GeometrySnapshot struct {
	ContainerTop    float64
	ContainerBottom float64
	ScrollOffset    float64 // Current scroll offset of the container
	ScrollExtent    float64 // contentSize - containerVisibleSize
	ViewportHeight  float64
	SectionTops     []float64 // Viewport-relative top of each section, in index order
}

// Probe reads the current geometry on demand.
// Returning false means the container is not mounted; the engine keeps its previous state.
type Probe interface {
	Measure() (GeometrySnapshot, bool)
}

// ProbeFunc adapts a function to the Probe interface
type ProbeFunc func() (GeometrySnapshot, bool)

// Measure calls f.
func (f ProbeFunc) Measure() (GeometrySnapshot, bool) { return f() }

// SelectorProbe measures the selector row (tab strip, dot rail) used to place the indicator.
// ok is false when the row or the selector at index is not measurable.
type SelectorProbe interface {
	MeasureSelector(index int) (row Rect, selector Rect, ok bool)
}

// Unmeasured returns the sentinel stored in snapshot fields that could not be read.
func Unmeasured() float64 { return math.NaN() }

// measured reports whether v holds a usable measurement
func measured(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
