// ABOUTME: Tests for ViewportManager scroll targets
// ABOUTME: Verifies section-to-top offsets and phase reporting

package tui

import "testing"

func TestViewportManager_TargetOffsets(t *testing.T) {
	// Viewport with 10 lines, 50 total lines, max offset 40
	vm := NewViewportManager(10, 0, 50)

	tests := []struct {
		name       string
		target     int
		wantOffset int
		wantPhase  ScrollPhase
	}{
		{"first line", 0, 0, TopPhase},
		{"negative target", -3, 0, TopPhase},
		{"middle of document", 25, 25, MiddlePhase},
		{"just before max", 39, 39, MiddlePhase},
		{"exactly max", 40, 40, BottomPhase},
		{"past max (short last section)", 47, 40, BottomPhase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm.SetTarget(tt.target)

			offset := vm.CalculateOffset()
			if offset != tt.wantOffset {
				t.Errorf("CalculateOffset() = %d, want %d", offset, tt.wantOffset)
			}

			phase := vm.GetPhase()
			if phase != tt.wantPhase {
				t.Errorf("GetPhase() = %v, want %v", phase, tt.wantPhase)
			}
		})
	}
}

func TestViewportManager_ShortDocument(t *testing.T) {
	// Document shorter than the viewport never scrolls
	vm := NewViewportManager(10, 0, 5)

	for _, target := range []int{0, 2, 4, 9} {
		vm.SetTarget(target)

		if offset := vm.CalculateOffset(); offset != 0 {
			t.Errorf("target %d: CalculateOffset() = %d, want 0", target, offset)
		}
	}

	if vm.GetPhase() != TopPhase {
		t.Errorf("GetPhase() = %v, want top", vm.GetPhase())
	}

	if vm.Percent() != 100 {
		t.Errorf("Percent() = %d, want 100", vm.Percent())
	}
}

func TestViewportManager_EdgeCases(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		vm := NewViewportManager(10, 3, 0)

		if offset := vm.CalculateOffset(); offset != 0 {
			t.Errorf("Empty document should return offset 0, got %d", offset)
		}
	})

	t.Run("zero height viewport", func(t *testing.T) {
		vm := NewViewportManager(0, 5, 50)

		if offset := vm.CalculateOffset(); offset != 0 {
			t.Errorf("Zero height viewport should return offset 0, got %d", offset)
		}
	})
}

func TestViewportManager_HeightUpdate(t *testing.T) {
	vm := NewViewportManager(10, 45, 50)

	if offset := vm.CalculateOffset(); offset != 40 {
		t.Errorf("Initial offset = %d, want 40", offset)
	}

	// Taller viewport lowers the max offset
	vm.SetHeight(20)

	if offset := vm.CalculateOffset(); offset != 30 {
		t.Errorf("After height change, offset = %d, want 30", offset)
	}

	vm.SetTotalLines(100)

	if offset := vm.CalculateOffset(); offset != 45 {
		t.Errorf("After length change, offset = %d, want 45", offset)
	}
}

func TestViewportManager_Percent(t *testing.T) {
	vm := NewViewportManager(10, 0, 50)

	tests := []struct {
		target int
		want   int
	}{
		{0, 0},
		{20, 50},
		{40, 100},
		{90, 100},
	}

	for _, tt := range tests {
		vm.SetTarget(tt.target)

		if got := vm.Percent(); got != tt.want {
			t.Errorf("target %d: Percent() = %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestViewportManager_MonotonicOffsets(t *testing.T) {
	vm := NewViewportManager(10, 0, 50)

	prev := -1
	for target := range 60 {
		vm.SetTarget(target)

		offset := vm.CalculateOffset()
		if offset < prev {
			t.Errorf("Offset decreased from %d to %d at target %d", prev, offset, target)
		}
		prev = offset
	}
}
