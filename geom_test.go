package battlemat

import (
	"math"
	"testing"
)

func TestPointInRect(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 50, 50, true},
		{"top-left corner", 0, 0, true},
		{"bottom-right corner", 100, 100, true},
		{"on left edge", 0, 50, true},
		{"outside left", -1, 50, false},
		{"outside below", 50, 101, false},
		{"far outside", -500, 900, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInRect(tt.x, tt.y, 0, 0, 100, 100); got != tt.want {
				t.Errorf("PointInRect(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCircleIntersectsRect(t *testing.T) {
	tests := []struct {
		name      string
		cx, cy, r float64
		want      bool
	}{
		{"overlapping corner", -5, -5, 10, true},
		{"center inside", 50, 50, 1, true},
		{"touching edge", -10, 50, 10, true},
		{"beyond corner diagonal", -15, -15, 10, false},
		{"far away", -500, -500, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CircleIntersectsRect(tt.cx, tt.cy, tt.r, 0, 0, 100, 100); got != tt.want {
				t.Errorf("CircleIntersectsRect(%v, %v, %v) = %v, want %v", tt.cx, tt.cy, tt.r, got, tt.want)
			}
		})
	}
}

func TestLineSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name                           string
		x1, y1, x2, y2, x3, y3, x4, y4 float64
		want                           bool
	}{
		{"crossing", 0, 0, 100, 100, 0, 100, 100, 0, true},
		{"touching at endpoint", 0, 0, 50, 50, 50, 50, 100, 0, true},
		{"disjoint", 0, 0, 10, 0, 0, 50, 10, 50, false},
		{"parallel", 0, 0, 100, 0, 0, 10, 100, 10, false},
		// Collinear overlap reports no intersection: the zero-denominator
		// branch treats it like parallel, which is what wall hit-testing
		// wants.
		{"collinear overlapping", 0, 0, 100, 0, 50, 0, 150, 0, false},
		{"would cross if extended", 0, 0, 10, 10, 0, 100, 100, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineSegmentsIntersect(tt.x1, tt.y1, tt.x2, tt.y2, tt.x3, tt.y3, tt.x4, tt.y4)
			if got != tt.want {
				t.Errorf("LineSegmentsIntersect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLineIntersectsRect(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		want           bool
	}{
		{"fully inside", 10, 10, 90, 90, true},
		{"one endpoint inside", 50, 50, 500, 500, true},
		{"crossing through", -50, 50, 150, 50, true},
		{"clipping a corner", -10, 50, 50, -10, true},
		{"entirely outside", 200, 200, 300, 300, false},
		{"passing beside", -10, -10, -10, 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineIntersectsRect(tt.x1, tt.y1, tt.x2, tt.y2, 0, 0, 100, 100)
			if got != tt.want {
				t.Errorf("LineIntersectsRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLineIntersectsCircle(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		cx, cy, r      float64
		want           bool
	}{
		{"center on segment, zero radius", 0, 0, 100, 0, 50, 0, 0, true},
		{"too far from segment", 0, 0, 100, 0, 50, 100, 10, false},
		{"grazing", 0, 0, 100, 0, 50, 10, 10, true},
		{"near an endpoint", 0, 0, 100, 0, 110, 0, 15, true},
		{"zero-length segment inside", 50, 50, 50, 50, 50, 50, 5, true},
		{"zero-length segment outside", 50, 50, 50, 50, 100, 50, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineIntersectsCircle(tt.x1, tt.y1, tt.x2, tt.y2, tt.cx, tt.cy, tt.r)
			if got != tt.want {
				t.Errorf("LineIntersectsCircle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointSegmentDistance(t *testing.T) {
	tests := []struct {
		name                   string
		px, py, x1, y1, x2, y2 float64
		want                   float64
	}{
		{"perpendicular foot", 50, 10, 0, 0, 100, 0, 10},
		{"beyond start clamps", -10, 0, 0, 0, 100, 0, 10},
		{"beyond end clamps", 110, 10, 0, 0, 100, 0, math.Sqrt(200)},
		{"on segment", 25, 0, 0, 0, 100, 0, 0},
		{"degenerate segment", 3, 4, 0, 0, 0, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointSegmentDistance(tt.px, tt.py, tt.x1, tt.y1, tt.x2, tt.y2)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PointSegmentDistance = %v, want %v", got, tt.want)
			}
		})
	}
}
