// ABOUTME: Indicator geometry for the visual marker that tracks the active selector
// ABOUTME: Derives offset and size from the selector rectangle relative to its row

package engine

// Axis is the direction the selector row runs in.
type Axis int

const (
	// Horizontal rows place the indicator along X (tab strip underline).
	Horizontal Axis = iota
	// Vertical rows place the indicator along Y (dot rail).
	Vertical
)

// IndicatorGeometry positions the marker under the active selector
type IndicatorGeometry struct {
	Offset float64 // Distance from the start of the row
	Size   float64 // Extent along the row axis
}

// ComputeIndicator returns the indicator geometry for selector inside row
func ComputeIndicator(axis Axis, row, selector Rect) IndicatorGeometry {
	if axis == Vertical {
		return IndicatorGeometry{
			Offset: selector.Y - row.Y,
			Size:   selector.Height,
		}
	}

	return IndicatorGeometry{
		Offset: selector.X - row.X,
		Size:   selector.Width,
	}
}
