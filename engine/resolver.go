// ABOUTME: Activation resolver mapping geometry snapshots to an active section index
// ABOUTME: Implements container-relative threshold scanning and page-relative progress mapping

package engine

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects the resolution algorithm. It is fixed for the lifetime of an engine.
type Mode int

const (
	// ContainerRelative is used when sections scroll inside their own clipped container.
	ContainerRelative Mode = iota
	// PageRelative is used when sections advance with normal document scroll.
	PageRelative
)

// String returns the config spelling of the mode
func (m Mode) String() string {
	switch m {
	case ContainerRelative:
		return "container"
	case PageRelative:
		return "page"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "container" or "page" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "container", "container-relative", "":
		return ContainerRelative, nil
	case "page", "page-relative":
		return PageRelative, nil
	default:
		return ContainerRelative, fmt.Errorf("unknown mode %q (want container or page)", s)
	}
}

// Default thresholds
const (
	DefaultActivationThreshold = 8.0
	DefaultBottomSnapTolerance = 6.0
	DefaultPageStartRatio      = 0.15
	DefaultPageEndRatio        = 0.45
)

// Thresholds holds the tunable constants of both algorithms.
type Thresholds struct {
	Activation float64 // Container mode: a section is reached once its top is within this distance of the container top
	BottomSnap float64 // Container mode: distance from the scroll end that snaps to the last section
	PageStart  float64 // Page mode: viewport fraction subtracted from the container top
	PageEnd    float64 // Page mode: viewport fraction subtracted from the container bottom
}

// DefaultThresholds returns the standard thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Activation: DefaultActivationThreshold,
		BottomSnap: DefaultBottomSnapTolerance,
		PageStart:  DefaultPageStartRatio,
		PageEnd:    DefaultPageEndRatio,
	}
}

// Resolver computes the active index from a geometry snapshot. It is stateless.
type Resolver struct {
	Mode       Mode
	Thresholds Thresholds
}

// NewResolver creates a resolver with default thresholds
func NewResolver(mode Mode) Resolver {
	return Resolver{Mode: mode, Thresholds: DefaultThresholds()}
}

// Resolve returns the active index in [0, n-1] for snapshot g.
// previous is returned (clamped) whenever the geometry needed by the mode is unmeasurable.
func (r Resolver) Resolve(g GeometrySnapshot, n, previous int) int {
	if n <= 0 {
		return 0
	}

	previous = clampIndex(previous, n)

	var idx int

	switch r.Mode {
	case PageRelative:
		idx = r.resolvePage(g, n, previous)
	default:
		idx = r.resolveContainer(g, n, previous)
	}

	return clampIndex(idx, n)
}

// resolveContainer snaps to the last section at the scroll end, otherwise returns the
// last section in index order whose top has crossed the activation threshold.
func (r Resolver) resolveContainer(g GeometrySnapshot, n, previous int) int {
	if !measured(g.ContainerTop, g.ScrollOffset, g.ScrollExtent) {
		return previous
	}

	if g.ScrollExtent <= 0 || math.Abs(g.ScrollOffset-g.ScrollExtent) <= r.Thresholds.BottomSnap {
		return n - 1
	}

	active := previous
	found := false

	for i := 0; i < n; i++ {
		if i >= len(g.SectionTops) || !measured(g.SectionTops[i]) {
			// A section we cannot see might be the one that crossed; keep what we have
			return previous
		}

		if g.SectionTops[i]-g.ContainerTop > r.Thresholds.Activation {
			break
		}

		active = i
		found = true
	}

	if !found {
		return previous
	}

	return active
}

// resolvePage maps the container's progress through the viewport band onto [0, n-1].
func (r Resolver) resolvePage(g GeometrySnapshot, n, previous int) int {
	if !measured(g.ContainerTop, g.ContainerBottom, g.ViewportHeight) {
		return previous
	}

	start := g.ContainerTop - g.ViewportHeight*r.Thresholds.PageStart
	end := g.ContainerBottom - g.ViewportHeight*r.Thresholds.PageEnd
	total := end - start

	progress := 0.0
	if total > 0 {
		topOffset := -g.ContainerTop + g.ViewportHeight*r.Thresholds.PageStart
		progress = clampFloat(topOffset/total, 0, 1)
	}

	idx := int(math.Floor(progress * float64(n)))
	if idx > n-1 {
		idx = n - 1
	}

	return idx
}

// clampIndex clamps i to [0, n-1]
func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}

	if i > n-1 {
		return n - 1
	}

	return i
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
