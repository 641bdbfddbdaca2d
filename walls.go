package battlemat

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	wallColor    = color.NRGBA{R: 255, G: 96, B: 64, A: 255}
	doorColor    = color.NRGBA{R: 80, G: 160, B: 255, A: 255}
	haloColor    = color.NRGBA{R: 255, G: 255, B: 255, A: 80}
	handleColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 220}
	previewColor = color.NRGBA{R: 255, G: 200, B: 80, A: 200}
)

// wallHitThreshold is the selection distance in screen pixels; divided by
// the viewport scale before comparing against world-space distances.
const wallHitThreshold = 10.0

// wallCurve returns the sampled polyline for a wall: a spline through the
// canonical control ordering for curved walls, or the two endpoints for
// straight ones.
func wallCurve(w Wall, tension float64, numSegments int) []Point {
	pts := WallSplinePoints(w)
	if len(w.ControlPoints) == 0 {
		return pts
	}
	return CatmullRomSpline(pts, tension, numSegments)
}

// wallAt returns the topmost wall within the hit threshold of the world
// point, or nil. The threshold shrinks as the view zooms in so hits stay
// a constant 10 screen pixels.
func (c *Canvas) wallAt(wx, wy float64) *Wall {
	threshold := wallHitThreshold / c.viewport.Scale
	for i := len(c.walls) - 1; i >= 0; i-- {
		samples := wallCurve(c.walls[i], DefaultTension, DefaultSegments)
		if DistanceToSpline(wx, wy, samples, threshold) <= threshold {
			return &c.walls[i]
		}
	}
	return nil
}

// drawWalls renders every wall; doors and solid walls differ by color.
// Hover and selection chrome live on the controls layer so hover churn
// never redraws this one.
func (c *Canvas) drawWalls(layer *ebiten.Image) {
	layer.Clear()
	for i := range c.walls {
		w := &c.walls[i]
		col := wallColor
		if w.WallType == WallDoor {
			col = doorColor
		}
		c.strokePolyline(layer, wallCurve(*w, DefaultTension, DefaultSegments), 3, col)
	}
}

// drawControls renders transient interaction chrome: the halo and
// endpoint handles of the hovered/selected wall, the live dashed preview
// of an in-progress wall, and the debug overlay.
func (c *Canvas) drawControls(layer *ebiten.Image) {
	layer.Clear()

	for _, id := range []string{c.hoveredWallID, c.selectedWallID} {
		if id == "" {
			continue
		}
		if w := c.wallByID(id); w != nil {
			samples := wallCurve(*w, DefaultTension, DefaultSegments)
			c.strokePolyline(layer, samples, 8, haloColor)
			c.drawWallHandles(layer, *w)
		}
	}

	if c.interact.mode == modeDrawingWall {
		c.strokeDashedLine(layer,
			c.interact.wallStart.X, c.interact.wallStart.Y,
			c.interact.wallPreview.X, c.interact.wallPreview.Y)
	}

	if c.debug {
		c.drawDebugOverlay(layer)
	}
}

// drawWallHandles draws grab handles at a wall's endpoints and control
// points.
func (c *Canvas) drawWallHandles(layer *ebiten.Image, w Wall) {
	for _, p := range WallSplinePoints(w) {
		sx, sy := c.viewport.WorldToScreen(p.X, p.Y)
		vector.DrawFilledCircle(layer, float32(sx), float32(sy), 4, handleColor, true)
		vector.StrokeCircle(layer, float32(sx), float32(sy), 4, 1, color.NRGBA{A: 200}, true)
	}
}

// strokePolyline strokes world-space samples through the viewport.
func (c *Canvas) strokePolyline(layer *ebiten.Image, samples []Point, width float32, col color.Color) {
	for i := 0; i < len(samples)-1; i++ {
		ax, ay := c.viewport.WorldToScreen(samples[i].X, samples[i].Y)
		bx, by := c.viewport.WorldToScreen(samples[i+1].X, samples[i+1].Y)
		vector.StrokeLine(layer, float32(ax), float32(ay), float32(bx), float32(by), width, col, true)
	}
}

// strokeDashedLine draws the in-progress wall preview as a dashed
// world-space segment (8 px dashes with 6 px gaps, in screen space).
func (c *Canvas) strokeDashedLine(layer *ebiten.Image, x1, y1, x2, y2 float64) {
	ax, ay := c.viewport.WorldToScreen(x1, y1)
	bx, by := c.viewport.WorldToScreen(x2, y2)

	const dash, gap = 8.0, 6.0
	dx := bx - ax
	dy := by - ay
	length := math.Hypot(dx, dy)
	if length == 0 {
		vector.DrawFilledCircle(layer, float32(ax), float32(ay), 2, previewColor, true)
		return
	}
	ux := dx / length
	uy := dy / length

	for pos := 0.0; pos < length; pos += dash + gap {
		end := math.Min(pos+dash, length)
		vector.StrokeLine(layer,
			float32(ax+ux*pos), float32(ay+uy*pos),
			float32(ax+ux*end), float32(ay+uy*end),
			2, previewColor, true)
	}
}
