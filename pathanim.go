package battlemat

import (
	"math"
	"sort"
	"time"
)

// Path animation: constant-speed motion along a closed spline, driven by
// elapsed wall-clock time so that position is a pure function of the start
// timestamp. Paths are loopable by design, so the arc-length table is
// always built over the closed-loop spline.

// SplineSample is one entry of a precomputed arc-length table: a curve
// point plus the cumulative Euclidean distance from the first sample.
// Distance is monotonically non-decreasing.
type SplineSample struct {
	X, Y     float64
	Distance float64
}

// AnimatedPosition is a snapshot of an animated object: its position, the
// tangent angle of the containing segment, and progress through the path
// in [0, 1].
type AnimatedPosition struct {
	Point    Point
	Angle    float64
	Progress float64
}

// AnimationState tracks one animated object on one path. States are
// created by StartAnimation and removed by StopAnimation or ClearAll.
type AnimationState struct {
	PathID      string
	ObjectID    string
	ObjectType  string
	StartTime   time.Time
	Samples     []SplineSample
	TotalLength float64
	Speed       float64 // world units per second
	Loop        bool
}

// PrecomputeSplinePath builds the arc-length table for a node list over
// the closed-loop spline. The result is cacheable by the caller; every
// lookup function here takes it by value.
func PrecomputeSplinePath(nodes []PathNode, tension float64, numSegments int) []SplineSample {
	pts := make([]Point, len(nodes))
	for i, n := range nodes {
		pts[i] = Point{X: n.X, Y: n.Y}
	}
	curve := CatmullRomSplineClosedLoop(pts, tension, numSegments)

	samples := make([]SplineSample, len(curve))
	var total float64
	for i, p := range curve {
		if i > 0 {
			total += math.Hypot(p.X-curve[i-1].X, p.Y-curve[i-1].Y)
		}
		samples[i] = SplineSample{X: p.X, Y: p.Y, Distance: total}
	}
	return samples
}

// InterpolatePrecomputedPath maps a distance along the path to a position
// by binary search over the cumulative distances and linear interpolation
// between the bracketing samples. Distances outside the table are clamped.
func InterpolatePrecomputedPath(samples []SplineSample, distance float64) Point {
	if len(samples) == 0 {
		return Point{}
	}
	last := samples[len(samples)-1]
	if distance <= 0 || last.Distance == 0 {
		return Point{X: samples[0].X, Y: samples[0].Y}
	}
	if distance >= last.Distance {
		return Point{X: last.X, Y: last.Y}
	}

	// First sample with cumulative distance >= target.
	i := sort.Search(len(samples), func(i int) bool {
		return samples[i].Distance >= distance
	})
	if i == 0 {
		return Point{X: samples[0].X, Y: samples[0].Y}
	}

	a, b := samples[i-1], samples[i]
	span := b.Distance - a.Distance
	if span == 0 {
		return Point{X: a.X, Y: a.Y}
	}
	t := (distance - a.Distance) / span
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// DirectionAtDistance returns the tangent angle (atan2 of the segment
// delta) at the given distance along the path. Degenerate tables return 0.
func DirectionAtDistance(samples []SplineSample, distance float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	last := samples[len(samples)-1]
	if distance >= last.Distance {
		distance = last.Distance
	}
	if distance < 0 {
		distance = 0
	}

	i := sort.Search(len(samples), func(i int) bool {
		return samples[i].Distance >= distance
	})
	if i == 0 {
		i = 1
	}
	a, b := samples[i-1], samples[i]
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// PositionAtTime computes the position and progress of an object that has
// been following the path for the given elapsed time at speed world units
// per second. With loop the distance wraps modulo the total length,
// otherwise it clamps at the end. A zero-length path pins the object to
// the first node.
func PositionAtTime(nodes []PathNode, elapsed time.Duration, speed float64, loop bool, tension float64) (Point, float64) {
	samples := PrecomputeSplinePath(nodes, tension, DefaultSegments)
	return positionOnSamples(samples, elapsed, speed, loop)
}

// positionOnSamples is the shared time→distance→position mapping used by
// PositionAtTime and the animation registry.
func positionOnSamples(samples []SplineSample, elapsed time.Duration, speed float64, loop bool) (Point, float64) {
	if len(samples) == 0 {
		return Point{}, 0
	}
	total := samples[len(samples)-1].Distance
	if total == 0 || speed <= 0 {
		return Point{X: samples[0].X, Y: samples[0].Y}, 0
	}

	distance := elapsed.Seconds() * speed
	if loop {
		distance = math.Mod(distance, total)
		if distance < 0 {
			distance += total
		}
	} else if distance > total {
		distance = total
	}
	return InterpolatePrecomputedPath(samples, distance), distance / total
}

// PathAnimationManager is a registry of animation states keyed by path ID,
// one animated object per path. It is single-threaded: the render loop
// queries it once per frame from the update thread.
type PathAnimationManager struct {
	anims map[string]*AnimationState
}

// NewPathAnimationManager creates an empty registry.
func NewPathAnimationManager() *PathAnimationManager {
	return &PathAnimationManager{anims: make(map[string]*AnimationState)}
}

// StartAnimation precomputes the path's arc-length table once and
// registers an animation state starting at now. Restarting an existing
// path ID replaces its state.
func (m *PathAnimationManager) StartAnimation(pathID, objectID, objectType string, nodes []PathNode, speed float64, loop bool, tension float64, now time.Time) *AnimationState {
	st := &AnimationState{
		PathID:     pathID,
		ObjectID:   objectID,
		ObjectType: objectType,
		StartTime:  now,
		Samples:    PrecomputeSplinePath(nodes, tension, DefaultSegments),
		Speed:      speed,
		Loop:       loop,
	}
	if len(st.Samples) > 0 {
		st.TotalLength = st.Samples[len(st.Samples)-1].Distance
	}
	m.anims[pathID] = st
	return st
}

// StopAnimation removes the animation for pathID, if any.
func (m *PathAnimationManager) StopAnimation(pathID string) {
	delete(m.anims, pathID)
}

// ClearAll removes every registered animation.
func (m *PathAnimationManager) ClearAll() {
	for id := range m.anims {
		delete(m.anims, id)
	}
}

// Len returns the number of registered animations.
func (m *PathAnimationManager) Len() int {
	return len(m.anims)
}

// ObjectPosition recomputes the animated position for pathID at the given
// time from the state's start timestamp. No velocity is cached; the result
// is stateless given StartTime. The second return is false when the path
// is not registered.
func (m *PathAnimationManager) ObjectPosition(pathID string, now time.Time) (AnimatedPosition, bool) {
	st, ok := m.anims[pathID]
	if !ok {
		return AnimatedPosition{}, false
	}
	return st.positionAt(now), true
}

// AllAnimatedPositions snapshots every registered path's position at the
// given time, keyed by path ID.
func (m *PathAnimationManager) AllAnimatedPositions(now time.Time) map[string]AnimatedPosition {
	out := make(map[string]AnimatedPosition, len(m.anims))
	for id, st := range m.anims {
		out[id] = st.positionAt(now)
	}
	return out
}

// ObjectPositions snapshots every animated object's position at the
// given time, keyed by object ID. The render loop uses this to override
// token positions.
func (m *PathAnimationManager) ObjectPositions(now time.Time) map[string]AnimatedPosition {
	out := make(map[string]AnimatedPosition, len(m.anims))
	for _, st := range m.anims {
		out[st.ObjectID] = st.positionAt(now)
	}
	return out
}

func (st *AnimationState) positionAt(now time.Time) AnimatedPosition {
	elapsed := now.Sub(st.StartTime)
	p, progress := positionOnSamples(st.Samples, elapsed, st.Speed, st.Loop)
	var angle float64
	if st.TotalLength > 0 {
		angle = DirectionAtDistance(st.Samples, progress*st.TotalLength)
	}
	return AnimatedPosition{Point: p, Angle: angle, Progress: progress}
}
