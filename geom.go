package battlemat

import "math"

// Stateless geometry predicates shared by hit-testing, the spline engine,
// and the wall renderer.

// PointInRect reports whether (px, py) lies inside the rectangle.
// Points on the boundary are inside.
func PointInRect(px, py, rx, ry, rw, rh float64) bool {
	return px >= rx && px <= rx+rw && py >= ry && py <= ry+rh
}

// CircleIntersectsRect reports whether a circle overlaps an axis-aligned
// rectangle. The circle center is clamped into the rectangle to find the
// closest point, then the squared distance is compared against radius².
func CircleIntersectsRect(cx, cy, radius, rx, ry, rw, rh float64) bool {
	closestX := clamp(cx, rx, rx+rw)
	closestY := clamp(cy, ry, ry+rh)
	dx := cx - closestX
	dy := cy - closestY
	return dx*dx+dy*dy <= radius*radius
}

// LineSegmentsIntersect reports whether segments (x1,y1)-(x2,y2) and
// (x3,y3)-(x4,y4) cross, using the parametric cross-product test.
// A zero denominator (parallel or collinear segments) reports no
// intersection; collinear overlap detection is deliberately out of scope
// for the hit-testing this serves.
func LineSegmentsIntersect(x1, y1, x2, y2, x3, y3, x4, y4 float64) bool {
	denom := (x2-x1)*(y4-y3) - (y2-y1)*(x4-x3)
	if denom == 0 {
		return false
	}
	ua := ((x4-x3)*(y1-y3) - (y4-y3)*(x1-x3)) / denom
	ub := ((x2-x1)*(y1-y3) - (y2-y1)*(x1-x3)) / denom
	return ua >= 0 && ua <= 1 && ub >= 0 && ub <= 1
}

// LineIntersectsRect reports whether the segment (x1,y1)-(x2,y2) touches
// the rectangle: true when either endpoint is inside or the segment
// crosses any of the four edges.
func LineIntersectsRect(x1, y1, x2, y2, rx, ry, rw, rh float64) bool {
	if PointInRect(x1, y1, rx, ry, rw, rh) || PointInRect(x2, y2, rx, ry, rw, rh) {
		return true
	}
	right := rx + rw
	bottom := ry + rh
	return LineSegmentsIntersect(x1, y1, x2, y2, rx, ry, right, ry) ||
		LineSegmentsIntersect(x1, y1, x2, y2, right, ry, right, bottom) ||
		LineSegmentsIntersect(x1, y1, x2, y2, right, bottom, rx, bottom) ||
		LineSegmentsIntersect(x1, y1, x2, y2, rx, bottom, rx, ry)
}

// LineIntersectsCircle reports whether the segment (x1,y1)-(x2,y2) passes
// within radius of (cx, cy). Zero-length segments degrade to a point
// distance test.
func LineIntersectsCircle(x1, y1, x2, y2, cx, cy, radius float64) bool {
	return PointSegmentDistance(cx, cy, x1, y1, x2, y2) <= radius
}

// PointSegmentDistance returns the minimum distance from (px, py) to the
// segment (x1,y1)-(x2,y2). A zero-length segment yields the distance to
// its single point.
func PointSegmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / lenSq
	t = clamp(t, 0, 1)
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}

// projectOntoSegment returns the closest point on the segment to (px, py)
// and the clamped projection parameter t in [0, 1].
func projectOntoSegment(px, py, x1, y1, x2, y2 float64) (Point, float64) {
	dx := x2 - x1
	dy := y2 - y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Point{X: x1, Y: y1}, 0
	}
	t := clamp(((px-x1)*dx+(py-y1)*dy)/lenSq, 0, 1)
	return Point{X: x1 + t*dx, Y: y1 + t*dy}, t
}
