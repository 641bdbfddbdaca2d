package battlemat

import (
	"math"
	"testing"
	"time"
)

func squarePathNodes() []PathNode {
	return []PathNode{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 100, Y: 100},
		{X: 0, Y: 100},
	}
}

func TestPrecomputeSplinePath(t *testing.T) {
	samples := PrecomputeSplinePath(squarePathNodes(), DefaultTension, DefaultSegments)
	if len(samples) == 0 {
		t.Fatal("no samples")
	}
	if samples[0].Distance != 0 {
		t.Errorf("first distance = %v, want 0", samples[0].Distance)
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Distance < samples[i-1].Distance {
			t.Fatalf("distance decreases at %d: %v -> %v", i, samples[i-1].Distance, samples[i].Distance)
		}
	}
	// The closed loop returns to the first node.
	last := samples[len(samples)-1]
	if last.X != 0 || last.Y != 0 {
		t.Errorf("loop ends at (%v, %v), want (0, 0)", last.X, last.Y)
	}
	// A rounded square through these corners is at least as long as the
	// straight diagonal crossing and at most the circumscribing square walk.
	total := last.Distance
	if total < 300 || total > 600 {
		t.Errorf("total length %v outside plausible range", total)
	}
}

func TestInterpolatePrecomputedPath(t *testing.T) {
	// Hand-built table: an L along the axes.
	samples := []SplineSample{
		{X: 0, Y: 0, Distance: 0},
		{X: 10, Y: 0, Distance: 10},
		{X: 10, Y: 10, Distance: 20},
	}

	tests := []struct {
		name     string
		distance float64
		want     Point
	}{
		{"start", 0, Point{0, 0}},
		{"mid first segment", 5, Point{5, 0}},
		{"exact sample", 10, Point{10, 0}},
		{"mid second segment", 15, Point{10, 5}},
		{"end", 20, Point{10, 10}},
		{"past end clamps", 35, Point{10, 10}},
		{"negative clamps", -5, Point{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpolatePrecomputedPath(samples, tt.distance)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("at %v got %v, want %v", tt.distance, got, tt.want)
			}
		})
	}

	t.Run("empty table", func(t *testing.T) {
		if got := InterpolatePrecomputedPath(nil, 5); got != (Point{}) {
			t.Errorf("got %v, want zero point", got)
		}
	})
}

func TestDirectionAtDistance(t *testing.T) {
	samples := []SplineSample{
		{X: 0, Y: 0, Distance: 0},
		{X: 10, Y: 0, Distance: 10},
		{X: 10, Y: 10, Distance: 20},
	}

	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"first segment points right", 5, 0},
		{"second segment points down", 15, math.Pi / 2},
		{"clamped past end", 99, math.Pi / 2},
		{"clamped negative", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectionAtDistance(samples, tt.distance)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("at %v got %v, want %v", tt.distance, got, tt.want)
			}
		})
	}

	if got := DirectionAtDistance(nil, 5); got != 0 {
		t.Errorf("empty table direction = %v, want 0", got)
	}
}

func TestPositionAtTimeLoopPeriod(t *testing.T) {
	nodes := squarePathNodes()
	const speed = 100.0

	samples := PrecomputeSplinePath(nodes, DefaultTension, DefaultSegments)
	total := samples[len(samples)-1].Distance
	period := time.Duration(total / speed * float64(time.Second))

	// Looping: any whole number of periods lands back at the first node.
	for _, k := range []int{0, 1, 3} {
		p, _ := PositionAtTime(nodes, time.Duration(k)*period, speed, true, DefaultTension)
		if math.Hypot(p.X, p.Y) > 0.5 {
			t.Errorf("after %d periods at %v, want near (0, 0)", k, p)
		}
	}

	// Halfway through the loop the object is near the opposite corner.
	p, progress := PositionAtTime(nodes, period/2, speed, true, DefaultTension)
	if math.Hypot(p.X-100, p.Y-100) > 30 {
		t.Errorf("halfway position %v, want near (100, 100)", p)
	}
	if progress < 0.45 || progress > 0.55 {
		t.Errorf("halfway progress = %v", progress)
	}
}

func TestPositionAtTimeNonLooping(t *testing.T) {
	nodes := squarePathNodes()
	const speed = 50.0

	// Far past the end of a non-looping path the object stays at the final
	// sample, which for the closed-loop table is the first node again.
	p, progress := PositionAtTime(nodes, time.Hour, speed, false, DefaultTension)
	if math.Hypot(p.X, p.Y) > 1e-6 {
		t.Errorf("clamped position %v, want (0, 0)", p)
	}
	if progress != 1 {
		t.Errorf("clamped progress = %v, want 1", progress)
	}
}

func TestPositionAtTimeDegenerate(t *testing.T) {
	t.Run("zero-length path", func(t *testing.T) {
		nodes := []PathNode{{X: 40, Y: 40}, {X: 40, Y: 40}}
		p, progress := PositionAtTime(nodes, 5*time.Second, 100, true, DefaultTension)
		if p != (Point{X: 40, Y: 40}) || progress != 0 {
			t.Errorf("got %v progress %v, want pinned to first node", p, progress)
		}
	})

	t.Run("zero speed", func(t *testing.T) {
		p, progress := PositionAtTime(squarePathNodes(), 5*time.Second, 0, true, DefaultTension)
		if p != (Point{X: 0, Y: 0}) || progress != 0 {
			t.Errorf("got %v progress %v, want first node", p, progress)
		}
	})

	t.Run("no nodes", func(t *testing.T) {
		p, progress := PositionAtTime(nil, time.Second, 100, true, DefaultTension)
		if p != (Point{}) || progress != 0 {
			t.Errorf("got %v progress %v, want zeros", p, progress)
		}
	})
}

func TestPathAnimationManager(t *testing.T) {
	m := NewPathAnimationManager()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	st := m.StartAnimation("path-1", "tok-1", "token", squarePathNodes(), 100, true, DefaultTension, start)
	if st.TotalLength <= 0 {
		t.Fatalf("total length = %v", st.TotalLength)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}

	t.Run("position is a pure function of elapsed time", func(t *testing.T) {
		now := start.Add(1700 * time.Millisecond)
		a, ok := m.ObjectPosition("path-1", now)
		if !ok {
			t.Fatal("path not found")
		}
		b, _ := m.ObjectPosition("path-1", now)
		if a != b {
			t.Errorf("same query, different answers: %+v vs %+v", a, b)
		}
		if a.Progress < 0 || a.Progress > 1 {
			t.Errorf("progress = %v", a.Progress)
		}
	})

	t.Run("start of path", func(t *testing.T) {
		a, _ := m.ObjectPosition("path-1", start)
		if math.Hypot(a.Point.X, a.Point.Y) > 1e-9 || a.Progress != 0 {
			t.Errorf("at start got %+v, want the first node", a)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		if _, ok := m.ObjectPosition("nope", start); ok {
			t.Error("expected ok=false for an unregistered path")
		}
	})

	t.Run("restart replaces state", func(t *testing.T) {
		later := start.Add(time.Minute)
		m.StartAnimation("path-1", "tok-2", "token", squarePathNodes(), 100, true, DefaultTension, later)
		if m.Len() != 1 {
			t.Fatalf("Len = %d, want 1", m.Len())
		}
		a, _ := m.ObjectPosition("path-1", later)
		if a.Progress != 0 {
			t.Errorf("restarted path progress = %v, want 0", a.Progress)
		}
	})

	t.Run("snapshot all", func(t *testing.T) {
		m.StartAnimation("path-2", "tok-3", "token", squarePathNodes(), 50, false, DefaultTension, start)
		all := m.AllAnimatedPositions(start.Add(time.Second))
		if len(all) != 2 {
			t.Fatalf("snapshot has %d entries, want 2", len(all))
		}
		if _, ok := all["path-2"]; !ok {
			t.Error("path-2 missing from snapshot")
		}
	})

	t.Run("stop and clear", func(t *testing.T) {
		m.StopAnimation("path-2")
		if m.Len() != 1 {
			t.Errorf("Len after stop = %d, want 1", m.Len())
		}
		m.ClearAll()
		if m.Len() != 0 {
			t.Errorf("Len after clear = %d, want 0", m.Len())
		}
	})
}
