package battlemat

import (
	"image"
	"testing"
	"time"

	"github.com/tanema/gween/ease"
)

func clearDirty(c *Canvas) {
	for i := range c.dirty {
		c.dirty[i] = false
	}
}

func dirtyLayers(c *Canvas) []LayerID {
	var out []LayerID
	for id := LayerID(0); id < layerCount; id++ {
		if c.dirty[id] {
			out = append(out, id)
		}
	}
	return out
}

func TestInvalidationTargeting(t *testing.T) {
	tests := []struct {
		name  string
		apply func(c *Canvas)
		want  []LayerID
	}{
		{
			"token change",
			func(c *Canvas) { c.SetTokens([]Token{{ID: "t1", X: 1, Y: 1, Visible: true}}) },
			[]LayerID{LayerTokens, LayerLighting},
		},
		{
			"wall change",
			func(c *Canvas) { c.SetWalls([]Wall{{ID: "w1", X2: 100}}) },
			[]LayerID{LayerWalls},
		},
		{
			"light change",
			func(c *Canvas) { c.SetLights([]AmbientLight{{ID: "l1", Dim: 40}}) },
			[]LayerID{LayerLighting},
		},
		{
			"grid change",
			func(c *Canvas) { c.SetScene(Scene{GridSize: 75}) },
			[]LayerID{LayerGrid},
		},
		{
			"darkness change",
			func(c *Canvas) { c.SetScene(Scene{GridSize: 50, Darkness: 0.5}) },
			[]LayerID{LayerLighting},
		},
		{
			"single layer invalidate",
			func(c *Canvas) { c.Invalidate(LayerControls) },
			[]LayerID{LayerControls},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas()
			clearDirty(c)
			tt.apply(c)

			got := dirtyLayers(c)
			if len(got) != len(tt.want) {
				t.Fatalf("dirty layers = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("dirty layers = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDragInvalidatesOnlyTokens(t *testing.T) {
	c := newTestCanvas()
	c.PointerDown(105, 105, MouseButtonLeft)
	clearDirty(c)

	c.PointerMove(150, 150)

	got := dirtyLayers(c)
	if len(got) != 1 || got[0] != LayerTokens {
		t.Errorf("dirty layers during drag = %v, want [tokens]", got)
	}
}

func TestPanInvalidatesEverything(t *testing.T) {
	c := newTestCanvas()
	c.PointerDown(600, 500, MouseButtonLeft)
	clearDirty(c)

	c.PointerMove(610, 510)

	if got := dirtyLayers(c); len(got) != int(layerCount) {
		t.Errorf("dirty layers during pan = %v, want all %d", got, layerCount)
	}
}

func TestStepViewportTweenInvalidates(t *testing.T) {
	c := newTestCanvas()
	c.Viewport().ScrollTo(1000, 500, 1, ease.Linear)
	clearDirty(c)

	c.step(1.0/60, time.Now())

	if got := dirtyLayers(c); len(got) != int(layerCount) {
		t.Errorf("dirty layers during scroll tween = %v, want all %d", got, layerCount)
	}
}

func TestStepAnimatedLightInvalidatesLighting(t *testing.T) {
	c := newTestCanvas()
	c.SetLights([]AmbientLight{{ID: "l1", Dim: 40, AnimationType: LightAnimationTorch}})
	clearDirty(c)

	c.step(1.0/60, time.Now())

	got := dirtyLayers(c)
	if len(got) != 1 || got[0] != LayerLighting {
		t.Errorf("dirty layers = %v, want [lighting]", got)
	}
}

func TestStepPathAnimationOverridesTokenPosition(t *testing.T) {
	c := newTestCanvas()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	m := NewPathAnimationManager()
	m.StartAnimation("p1", "t1", "token", squarePathNodes(), 100, true, DefaultTension, start)
	c.SetPathAnimations(m)

	c.step(1.0/60, start)

	tok := c.tokenByID("t1")
	x, y, _ := c.tokenRenderPosition(tok)
	if x != 0 || y != 0 {
		t.Errorf("render position = (%v, %v), want the path start (0, 0)", x, y)
	}
	// The model position is untouched; only rendering follows the path.
	if tok.X != 100 || tok.Y != 100 {
		t.Errorf("model position = (%v, %v), want (100, 100)", tok.X, tok.Y)
	}

	if !c.Animating() {
		t.Error("Animating() = false with a running path animation")
	}

	// Stopping the animation restores model positions on the next step.
	m.StopAnimation("p1")
	clearDirty(c)
	c.step(1.0/60, start)
	x, y, _ = c.tokenRenderPosition(tok)
	if x != 100 || y != 100 {
		t.Errorf("render position after stop = (%v, %v), want (100, 100)", x, y)
	}
	if got := dirtyLayers(c); len(got) != 1 || got[0] != LayerTokens {
		t.Errorf("dirty layers after stop = %v, want [tokens]", got)
	}
}

func TestBackgroundLoadLifecycle(t *testing.T) {
	c := newTestCanvas()
	c.images.fetch = func(url string) (image.Image, error) { return testImage(), nil }

	c.SetScene(Scene{GridSize: 50, BackgroundImage: "map.png"})
	if c.BackgroundState() != LoadPending {
		t.Fatalf("state = %v right after SetScene, want LoadPending", c.BackgroundState())
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.BackgroundState() == LoadPending && time.Now().Before(deadline) {
		c.step(1.0/60, time.Now())
		time.Sleep(time.Millisecond)
	}
	if c.BackgroundState() != LoadReady {
		t.Fatalf("state = %v, want LoadReady", c.BackgroundState())
	}

	// Clearing the background resets the loader.
	c.SetScene(Scene{GridSize: 50})
	if c.BackgroundState() != LoadIdle {
		t.Errorf("state = %v after clearing, want LoadIdle", c.BackgroundState())
	}
}

func TestBackgroundStaleLoadDiscarded(t *testing.T) {
	c := newTestCanvas()
	release := make(chan struct{})
	c.images.fetch = func(url string) (image.Image, error) {
		if url == "slow.png" {
			<-release
		}
		return testImage(), nil
	}

	c.SetScene(Scene{GridSize: 50, BackgroundImage: "slow.png"})
	// Switch scenes while the first load is still in flight.
	c.SetScene(Scene{GridSize: 50, BackgroundImage: "fast.png"})

	deadline := time.Now().Add(2 * time.Second)
	for c.BackgroundState() == LoadPending && time.Now().Before(deadline) {
		c.step(1.0/60, time.Now())
		time.Sleep(time.Millisecond)
	}
	if c.BackgroundState() != LoadReady {
		t.Fatalf("state = %v, want LoadReady for the fresh URL", c.BackgroundState())
	}

	// Let the stale load finish; it lands in the cache but must not touch
	// the background loader state or URL.
	close(release)
	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.step(1.0/60, time.Now())
		if _, state := c.images.Image("slow.png"); state == LoadReady {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if c.bg.url != "fast.png" {
		t.Errorf("background url = %q, want fast.png", c.bg.url)
	}
	if c.BackgroundState() != LoadReady {
		t.Errorf("state = %v after stale completion, want LoadReady", c.BackgroundState())
	}
}

func TestResize(t *testing.T) {
	c := newTestCanvas()
	clearDirty(c)

	c.Resize(1024, 768)
	v := c.Viewport()
	if v.Width != 1024 || v.Height != 768 {
		t.Errorf("viewport size = %dx%d, want 1024x768", v.Width, v.Height)
	}
	if got := dirtyLayers(c); len(got) != int(layerCount) {
		t.Errorf("dirty layers after resize = %v, want all", got)
	}

	// Same size is a no-op.
	clearDirty(c)
	c.Resize(1024, 768)
	if got := dirtyLayers(c); len(got) != 0 {
		t.Errorf("dirty layers after no-op resize = %v, want none", got)
	}
}

func TestSetWallsDropsDanglingSelection(t *testing.T) {
	c := newTestCanvas()
	c.SetWalls([]Wall{{ID: "w1", X2: 200}})
	c.PointerDown(100, 0, MouseButtonLeft)
	c.PointerUp(100, 0)
	if c.SelectedWall() != "w1" {
		t.Fatalf("SelectedWall = %q, want w1", c.SelectedWall())
	}

	c.SetWalls(nil)
	if c.SelectedWall() != "" {
		t.Errorf("SelectedWall = %q after the wall vanished, want empty", c.SelectedWall())
	}
}
