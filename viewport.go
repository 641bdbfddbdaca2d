package battlemat

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for the viewport origin.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Viewport is the shared world→screen transform every layer renders
// through: screen = (world - origin) * scale. Scale stays within
// [MinScale, MaxScale].
type Viewport struct {
	OriginX, OriginY float64
	Scale            float64

	// Screen size in pixels, set by Canvas.Resize.
	Width, Height int

	scrollTween *scrollAnim
	zoomTween   *gween.Tween
	zoomDone    bool
}

// NewViewport creates a viewport at the world origin with scale 1.
func NewViewport(width, height int) *Viewport {
	return &Viewport{Scale: 1, Width: width, Height: height}
}

// WorldToScreen converts world coordinates to screen pixels.
func (v *Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return (wx - v.OriginX) * v.Scale, (wy - v.OriginY) * v.Scale
}

// ScreenToWorld converts screen pixels to world coordinates; the inverse
// transform used for hit-testing. Out-of-range input is not rejected, it
// simply maps to off-screen world positions.
func (v *Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return sx/v.Scale + v.OriginX, sy/v.Scale + v.OriginY
}

// VisibleBounds returns the world-space rectangle currently on screen.
func (v *Viewport) VisibleBounds() Rect {
	return Rect{
		X:      v.OriginX,
		Y:      v.OriginY,
		Width:  float64(v.Width) / v.Scale,
		Height: float64(v.Height) / v.Scale,
	}
}

// PanBy translates the origin by a screen-space delta (divided by scale),
// so content follows the pointer 1:1 during a drag-pan.
func (v *Viewport) PanBy(screenDX, screenDY float64) {
	v.OriginX -= screenDX / v.Scale
	v.OriginY -= screenDY / v.Scale
}

// ZoomAt multiplies the scale by factor, clamped to [MinScale, MaxScale],
// anchored so the world point under the screen position (sx, sy) stays
// under it.
func (v *Viewport) ZoomAt(factor, sx, sy float64) {
	newScale := clamp(v.Scale*factor, MinScale, MaxScale)
	if newScale == v.Scale {
		return
	}
	wx, wy := v.ScreenToWorld(sx, sy)
	v.Scale = newScale
	v.OriginX = wx - sx/v.Scale
	v.OriginY = wy - sy/v.Scale
}

// ScrollTo animates the origin so the world point (wx, wy) ends up
// centered, over duration seconds.
func (v *Viewport) ScrollTo(wx, wy float64, duration float32, easeFn ease.TweenFunc) {
	targetX := wx - float64(v.Width)/(2*v.Scale)
	targetY := wy - float64(v.Height)/(2*v.Scale)
	v.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(v.OriginX), float32(targetX), duration, easeFn),
		tweenY: gween.New(float32(v.OriginY), float32(targetY), duration, easeFn),
	}
}

// ZoomTo animates the scale toward the clamped target over duration
// seconds, keeping the screen center anchored.
func (v *Viewport) ZoomTo(scale float64, duration float32, easeFn ease.TweenFunc) {
	target := clamp(scale, MinScale, MaxScale)
	v.zoomTween = gween.New(float32(v.Scale), float32(target), duration, easeFn)
	v.zoomDone = false
}

// Animating reports whether a scroll or zoom tween is in flight.
func (v *Viewport) Animating() bool {
	return v.scrollTween != nil || (v.zoomTween != nil && !v.zoomDone)
}

// update advances active tweens by dt seconds and reports whether the
// transform changed. Called from Canvas.Update.
func (v *Viewport) update(dt float32) bool {
	changed := false

	if v.scrollTween != nil {
		st := v.scrollTween
		if !st.doneX {
			val, done := st.tweenX.Update(dt)
			v.OriginX = float64(val)
			st.doneX = done
		}
		if !st.doneY {
			val, done := st.tweenY.Update(dt)
			v.OriginY = float64(val)
			st.doneY = done
		}
		if st.doneX && st.doneY {
			v.scrollTween = nil
		}
		changed = true
	}

	if v.zoomTween != nil && !v.zoomDone {
		cx := float64(v.Width) / 2
		cy := float64(v.Height) / 2
		wx, wy := v.ScreenToWorld(cx, cy)

		val, done := v.zoomTween.Update(dt)
		v.Scale = clamp(float64(val), MinScale, MaxScale)
		v.zoomDone = done

		// Keep the screen center anchored while the scale animates.
		v.OriginX = wx - cx/v.Scale
		v.OriginY = wy - cy/v.Scale
		changed = true
	}

	return changed
}
