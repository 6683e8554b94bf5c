// ABOUTME: Viewport manager for section-to-top scrolling
// ABOUTME: Computes navigation scroll targets and the scroll phase shown in the status bar

package tui

// ViewportManager maps a target line onto a viewport offset.
// Navigation puts a section's first line at the top of the viewport unless the
// document ends first, in which case the viewport shows the last page.
type ViewportManager struct {
	height     int // Viewport height in lines
	target     int // Line to bring to the top
	totalLines int // Total number of document lines
}

// NewViewportManager creates a new viewport manager
func NewViewportManager(height, target, totalLines int) *ViewportManager {
	return &ViewportManager{
		height:     height,
		target:     target,
		totalLines: totalLines,
	}
}

// SetHeight updates the viewport height
func (vm *ViewportManager) SetHeight(height int) {
	vm.height = height
}

// SetTarget updates the target line
func (vm *ViewportManager) SetTarget(line int) {
	vm.target = line
}

// SetTotalLines updates the document length
func (vm *ViewportManager) SetTotalLines(total int) {
	vm.totalLines = total
}

// maxOffset is the offset that shows the last page
func (vm *ViewportManager) maxOffset() int {
	return max(0, vm.totalLines-vm.height)
}

// CalculateOffset returns the viewport Y offset that brings the target line to the top
func (vm *ViewportManager) CalculateOffset() int {
	if vm.totalLines == 0 || vm.height < 1 {
		return 0
	}

	return min(max(vm.target, 0), vm.maxOffset())
}

// ScrollPhase is where a viewport offset sits in the document
type ScrollPhase int

// Scroll phases: pinned to the top, somewhere in between, or showing the last page
const (
	TopPhase ScrollPhase = iota
	MiddlePhase
	BottomPhase
)

// String returns the status bar label
func (p ScrollPhase) String() string {
	switch p {
	case TopPhase:
		return "top"
	case BottomPhase:
		return "bottom"
	default:
		return "middle"
	}
}

// GetPhase returns the phase of the offset CalculateOffset would produce
func (vm *ViewportManager) GetPhase() ScrollPhase {
	offset := vm.CalculateOffset()
	if offset == 0 {
		return TopPhase
	}

	if offset >= vm.maxOffset() {
		return BottomPhase
	}

	return MiddlePhase
}

// Percent returns how far through the document the offset is, 0-100
func (vm *ViewportManager) Percent() int {
	maxOff := vm.maxOffset()
	if maxOff == 0 {
		return 100
	}

	return vm.CalculateOffset() * 100 / maxOff
}
