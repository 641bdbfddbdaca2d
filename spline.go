package battlemat

import (
	"fmt"
	"math"
)

// Spline engine: converts an ordered control-point list into a smooth
// Catmull-Rom curve and answers proximity and projection queries against
// the sampled polyline. Curved walls and animation paths both build on
// these functions.

// SplineProjection is the result of ClosestPointOnSpline: the closest
// point on the sampled polyline, the clamped projection parameter within
// the containing segment, and that segment's index.
type SplineProjection struct {
	Point        Point
	T            float64
	SegmentIndex int
}

// splineParams normalizes tension to [0, 1] and applies the default
// segment count for non-positive inputs.
func splineParams(tension float64, numSegments int) (float64, int) {
	if numSegments <= 0 {
		numSegments = DefaultSegments
	}
	return clamp01(tension), numSegments
}

// CatmullRomSpline samples a smooth open curve through the given control
// points. Tension 0 gives the loosest curve, 1 is near-linear. A
// non-positive numSegments falls back to DefaultSegments.
//
// Degenerate inputs are handled explicitly: 0 or 1 points are returned
// unchanged, 2 points produce a straight linear interpolation (the
// duplicated-endpoint parameterization would degenerate), and 3 points get
// two virtual endpoints by point reflection feeding the standard cubic
// Catmull-Rom matrix. With 4+ points each segment is approximated by a
// cubic Bézier whose control points come from neighbor tangents scaled by
// (1-tension)/6, clamping neighbor indices at the boundaries.
//
// The returned samples always end exactly on the final input point.
func CatmullRomSpline(points []Point, tension float64, numSegments int) []Point {
	tension, numSegments = splineParams(tension, numSegments)

	n := len(points)
	if n <= 1 {
		out := make([]Point, n)
		copy(out, points)
		return out
	}

	var out []Point
	switch n {
	case 2:
		out = make([]Point, 0, numSegments+1)
		a, b := points[0], points[1]
		for i := 0; i <= numSegments; i++ {
			t := float64(i) / float64(numSegments)
			out = append(out, Point{
				X: a.X + (b.X-a.X)*t,
				Y: a.Y + (b.Y-a.Y)*t,
			})
		}
	case 3:
		virtualStart := Point{X: 2*points[0].X - points[1].X, Y: 2*points[0].Y - points[1].Y}
		virtualEnd := Point{X: 2*points[2].X - points[1].X, Y: 2*points[2].Y - points[1].Y}

		out = make([]Point, 0, 2*numSegments+1)
		out = append(out, points[0])
		out = appendCatmullRomSegment(out, virtualStart, points[0], points[1], points[2], numSegments)
		out = appendCatmullRomSegment(out, points[0], points[1], points[2], virtualEnd, numSegments)
	default:
		out = make([]Point, 0, (n-1)*numSegments+1)
		out = append(out, points[0])
		for i := 0; i < n-1; i++ {
			p0 := points[maxInt(i-1, 0)]
			p1 := points[i]
			p2 := points[i+1]
			p3 := points[minInt(i+2, n-1)]
			out = appendBezierSegment(out, p1, p2, p0, p3, tension, numSegments)
		}
	}

	// Guarantee the curve lands exactly on the last input point.
	last := out[len(out)-1]
	end := points[n-1]
	if math.Abs(last.X-end.X) > 0.01 || math.Abs(last.Y-end.Y) > 0.01 {
		out = append(out, end)
	} else {
		out[len(out)-1] = end
	}
	return out
}

// CatmullRomSplineClosedLoop samples a closed curve through the control
// points, wrapping neighbor indices modulo len(points). It needs at least
// 3 points; fewer yield the input polygon closed by appending the first
// point. The last sample always equals the first input point.
func CatmullRomSplineClosedLoop(points []Point, tension float64, numSegments int) []Point {
	tension, numSegments = splineParams(tension, numSegments)

	n := len(points)
	if n == 0 {
		return nil
	}
	if n < 3 {
		out := make([]Point, 0, n+1)
		out = append(out, points...)
		out = append(out, points[0])
		return out
	}

	out := make([]Point, 0, n*numSegments+1)
	out = append(out, points[0])
	for i := 0; i < n; i++ {
		p0 := points[(i-1+n)%n]
		p1 := points[i]
		p2 := points[(i+1)%n]
		p3 := points[(i+2)%n]
		out = appendBezierSegment(out, p1, p2, p0, p3, tension, numSegments)
	}
	out[len(out)-1] = points[0]
	return out
}

// appendBezierSegment samples the cubic Bézier approximating the
// Catmull-Rom segment p1..p2 with neighbors p0 and p3. The first sample
// (t = 0, equal to p1) is skipped; callers seed the output with the
// segment start.
func appendBezierSegment(out []Point, p1, p2, p0, p3 Point, tension float64, numSegments int) []Point {
	s := (1 - tension) / 6
	c1 := Point{X: p1.X + (p2.X-p0.X)*s, Y: p1.Y + (p2.Y-p0.Y)*s}
	c2 := Point{X: p2.X - (p3.X-p1.X)*s, Y: p2.Y - (p3.Y-p1.Y)*s}

	for j := 1; j <= numSegments; j++ {
		t := float64(j) / float64(numSegments)
		u := 1 - t
		b0 := u * u * u
		b1 := 3 * u * u * t
		b2 := 3 * u * t * t
		b3 := t * t * t
		out = append(out, Point{
			X: b0*p1.X + b1*c1.X + b2*c2.X + b3*p2.X,
			Y: b0*p1.Y + b1*c1.Y + b2*c2.Y + b3*p2.Y,
		})
	}
	return out
}

// appendCatmullRomSegment samples the segment p1..p2 with the standard
// cubic Catmull-Rom matrix over neighbors p0 and p3, skipping t = 0.
func appendCatmullRomSegment(out []Point, p0, p1, p2, p3 Point, numSegments int) []Point {
	for j := 1; j <= numSegments; j++ {
		t := float64(j) / float64(numSegments)
		t2 := t * t
		t3 := t2 * t
		out = append(out, Point{
			X: 0.5 * (2*p1.X + (p2.X-p0.X)*t +
				(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
				(3*p1.X-p0.X-3*p2.X+p3.X)*t3),
			Y: 0.5 * (2*p1.Y + (p2.Y-p0.Y)*t +
				(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
				(3*p1.Y-p0.Y-3*p2.Y+p3.Y)*t3),
		})
	}
	return out
}

// DistanceToSpline returns the minimum distance from (px, py) to the
// polyline of samples. A positive threshold enables an early exit: the
// first segment distance at or below it is returned immediately, which
// keeps interactive hover tests cheap on long curves. Empty samples
// return +Inf; a single sample returns the point distance.
func DistanceToSpline(px, py float64, samples []Point, threshold float64) float64 {
	switch len(samples) {
	case 0:
		return math.Inf(1)
	case 1:
		return math.Hypot(px-samples[0].X, py-samples[0].Y)
	}

	min := math.Inf(1)
	for i := 0; i < len(samples)-1; i++ {
		d := PointSegmentDistance(px, py, samples[i].X, samples[i].Y, samples[i+1].X, samples[i+1].Y)
		if threshold > 0 && d <= threshold {
			return d
		}
		if d < min {
			min = d
		}
	}
	return min
}

// ClosestPointOnSpline scans every polyline segment and returns the
// closest point, its clamped projection parameter, and the segment index.
// Panics on an empty sample slice; callers must not invoke it without
// samples.
func ClosestPointOnSpline(px, py float64, samples []Point) SplineProjection {
	if len(samples) == 0 {
		panic(fmt.Sprintf("battlemat: ClosestPointOnSpline called with no samples (query %.2f, %.2f)", px, py))
	}
	if len(samples) == 1 {
		return SplineProjection{Point: samples[0]}
	}

	best := SplineProjection{}
	bestDist := math.Inf(1)
	for i := 0; i < len(samples)-1; i++ {
		p, t := projectOntoSegment(px, py, samples[i].X, samples[i].Y, samples[i+1].X, samples[i+1].Y)
		d := math.Hypot(px-p.X, py-p.Y)
		if d < bestDist {
			bestDist = d
			best = SplineProjection{Point: p, T: t, SegmentIndex: i}
		}
	}
	return best
}

// WallSplinePoints returns a wall's control polygon in canonical order:
// start, stored control points in insertion order, end. Every spline
// operation on walls depends on this ordering.
func WallSplinePoints(w Wall) []Point {
	out := make([]Point, 0, len(w.ControlPoints)+2)
	out = append(out, Point{X: w.X1, Y: w.Y1})
	out = append(out, w.ControlPoints...)
	out = append(out, Point{X: w.X2, Y: w.Y2})
	return out
}

// InsertControlPoint returns a copy of points with p inserted at
// segmentIndex, clamped into [0, len(points)]. The input slice is never
// mutated.
func InsertControlPoint(points []Point, p Point, segmentIndex int) []Point {
	idx := segmentIndex
	if idx < 0 {
		idx = 0
	}
	if idx > len(points) {
		idx = len(points)
	}
	out := make([]Point, 0, len(points)+1)
	out = append(out, points[:idx]...)
	out = append(out, p)
	out = append(out, points[idx:]...)
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
