package battlemat

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Per-scene background loading. The canvas requests the scene's background
// URL through the shared image cache; an in-flight load only commits if
// its URL still matches the currently requested one, so rapid scene
// switches can never paint a stale map.

type backgroundState struct {
	url   string
	state LoadState
}

// setBackgroundURL points the loader at a new URL and kicks off a load
// unless the cache already holds it.
func (c *Canvas) setBackgroundURL(url string) {
	c.bg.url = url
	c.Invalidate(LayerBackground)

	if url == "" {
		c.bg.state = LoadIdle
		return
	}
	if _, state := c.images.Image(url); state == LoadReady {
		c.bg.state = LoadReady
		return
	}
	c.bg.state = c.images.Request(url)
}

// onBackgroundLoad runs when a load for the currently requested URL
// settles. Stale completions never reach here; drainImageLoads compares
// the result URL against bg.url first.
func (c *Canvas) onBackgroundLoad(url string, ok bool) {
	if ok {
		c.bg.state = LoadReady
	} else {
		c.bg.state = LoadFailed
	}
	c.Invalidate(LayerBackground)
}

// BackgroundState exposes the loader state for hosts and tests.
func (c *Canvas) BackgroundState() LoadState {
	return c.bg.state
}

var backgroundFill = color.NRGBA{R: 24, G: 24, B: 28, A: 255}

// drawBackground renders the scene image through the viewport transform,
// or a centered placeholder message while loading or after a failure.
func (c *Canvas) drawBackground(layer *ebiten.Image) {
	layer.Clear()
	layer.Fill(backgroundFill)

	switch c.bg.state {
	case LoadIdle:
		return
	case LoadPending:
		c.drawCenteredMessage(layer, "Loading map...")
		return
	case LoadFailed:
		c.drawCenteredMessage(layer, "Failed to load map image")
		return
	}

	img, state := c.images.Image(c.bg.url)
	if state != LoadReady {
		return
	}

	w := c.scene.BackgroundWidth
	h := c.scene.BackgroundHeight
	b := img.Bounds()
	if w <= 0 {
		w = float64(b.Dx())
	}
	if h <= 0 {
		h = float64(b.Dy())
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Scale(c.viewport.Scale, c.viewport.Scale)
	sx, sy := c.viewport.WorldToScreen(0, 0)
	op.GeoM.Translate(sx, sy)
	op.Filter = ebiten.FilterLinear
	layer.DrawImage(img, op)
}

// drawCenteredMessage prints a one-line status message roughly centered
// on the layer. Debug-print glyphs are 6x16 pixels.
func (c *Canvas) drawCenteredMessage(layer *ebiten.Image, msg string) {
	x := c.viewport.Width/2 - len(msg)*6/2
	y := c.viewport.Height/2 - 8
	ebitenutil.DebugPrintAt(layer, msg, x, y)
}
