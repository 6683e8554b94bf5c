// ABOUTME: Engine construction options and injected dependencies
// ABOUTME: Boundary policy, keyboard linkage, and host callbacks

package engine

import (
	"fmt"
	"strings"
)

// BoundaryPolicy decides what happens to navigation requests outside [0, N-1].
type BoundaryPolicy int

const (
	// Clamp saturates at the first and last section.
	Clamp BoundaryPolicy = iota
	// Wrap cycles past either end.
	Wrap
)

// String returns the config spelling of the policy
func (p BoundaryPolicy) String() string {
	if p == Wrap {
		return "wrap"
	}

	return "clamp"
}

// ParseBoundaryPolicy parses "clamp" or "wrap" (case-insensitive).
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clamp", "":
		return Clamp, nil
	case "wrap":
		return Wrap, nil
	default:
		return Clamp, fmt.Errorf("unknown boundary policy %q (want clamp or wrap)", s)
	}
}

// apply maps i into [0, n-1] according to the policy
func (p BoundaryPolicy) apply(i, n int) int {
	if n <= 0 {
		return 0
	}

	if p == Wrap {
		return ((i % n) + n) % n
	}

	return clampIndex(i, n)
}

// Options configures an engine instance
type Options struct {
	Mode           Mode
	InitialIndex   int
	BoundaryPolicy BoundaryPolicy
	Thresholds     Thresholds
	Axis           Axis

	// KeyboardScrollLinked makes Step request scroll-into-view like Navigate does.
	// When false, keyboard steps only move the index (tab-strip behaviour).
	KeyboardScrollLinked bool

	// HoldDuringNavigate ignores resolver transitions after Navigate until the resolver
	// agrees with the navigation target or EndNavigation is called.
	HoldDuringNavigate bool
}

// DefaultOptions returns container-relative, clamped, scroll-linked options
func DefaultOptions() Options {
	return Options{
		Mode:                 ContainerRelative,
		BoundaryPolicy:       Clamp,
		Thresholds:           DefaultThresholds(),
		KeyboardScrollLinked: true,
	}
}

// ScrollRequest asks the host to bring a section into view
type ScrollRequest struct {
	Index  int
	ID     string
	Smooth bool
}

// Dependencies holds everything the engine needs from its host.
// Only Probe is required. Without Selectors there is no indicator, without Frames a
// TimerFrames source is used, and ScrollIntoView is executed by the host.
type Dependencies struct {
	Probe          Probe
	Selectors      SelectorProbe
	Frames         FrameSource
	ScrollIntoView func(ScrollRequest)
	Debugf         func(string, ...interface{})
}
