// ABOUTME: Geometry probe over the terminal layout
// ABOUTME: Reports document and tab strip positions to the engine in row units

package tui

import (
	"scrollspy/engine"
)

// rowHeight converts terminal rows to the units engine thresholds are expressed in
const rowHeight = 16.0

// TabSpan is the horizontal extent of one tab in cells
type TabSpan struct {
	X     int
	Width int
}

// Pane is the live terminal layout. It is only touched from the Bubble Tea goroutine.
type Pane struct {
	Doc     Document
	Top     int // Screen row of the first visible document line
	Height  int // Visible document rows
	Screen  int // Full terminal height
	YOffset int

	TabRow int
	Tabs   []TabSpan
}

// MaxOffset returns the largest scroll offset
func (p *Pane) MaxOffset() int {
	return max(0, p.Doc.Len()-p.Height)
}

// DocumentProbe measures a Pane. In container mode the viewport is the scroll container;
// in page mode the whole document is treated as a block scrolling through the screen.
type DocumentProbe struct {
	Pane *Pane
	Mode engine.Mode
}

// Measure implements engine.Probe
func (p DocumentProbe) Measure() (engine.GeometrySnapshot, bool) {
	pane := p.Pane
	if pane == nil || pane.Height < 1 || pane.Doc.Len() == 0 {
		return engine.GeometrySnapshot{}, false
	}

	screen := max(pane.Screen, pane.Height)

	if p.Mode == engine.PageRelative {
		top := float64(pane.Top-pane.YOffset) * rowHeight

		return engine.GeometrySnapshot{
			ContainerTop:    top,
			ContainerBottom: top + float64(pane.Doc.Len())*rowHeight,
			ScrollOffset:    float64(pane.YOffset) * rowHeight,
			ScrollExtent:    float64(pane.MaxOffset()) * rowHeight,
			ViewportHeight:  float64(screen) * rowHeight,
		}, true
	}

	tops := make([]float64, len(pane.Doc.Starts))
	for i, start := range pane.Doc.Starts {
		tops[i] = float64(pane.Top+start-pane.YOffset) * rowHeight
	}

	return engine.GeometrySnapshot{
		ContainerTop:    float64(pane.Top) * rowHeight,
		ContainerBottom: float64(pane.Top+pane.Height) * rowHeight,
		ScrollOffset:    float64(pane.YOffset) * rowHeight,
		ScrollExtent:    float64(pane.MaxOffset()) * rowHeight,
		ViewportHeight:  float64(screen) * rowHeight,
		SectionTops:     tops,
	}, true
}

// MeasureSelector implements engine.SelectorProbe for the tab strip, in cells
func (p DocumentProbe) MeasureSelector(index int) (engine.Rect, engine.Rect, bool) {
	pane := p.Pane
	if pane == nil || index < 0 || index >= len(pane.Tabs) {
		return engine.Rect{}, engine.Rect{}, false
	}

	last := pane.Tabs[len(pane.Tabs)-1]
	row := engine.Rect{Y: float64(pane.TabRow), Width: float64(last.X + last.Width), Height: 1}

	tab := pane.Tabs[index]
	sel := engine.Rect{X: float64(tab.X), Y: float64(pane.TabRow), Width: float64(tab.Width), Height: 1}

	return row, sel, true
}

// tabAt returns the tab under cell x, or -1
func (p *Pane) tabAt(x int) int {
	for i, t := range p.Tabs {
		if x >= t.X && x < t.X+t.Width {
			return i
		}
	}

	return -1
}
