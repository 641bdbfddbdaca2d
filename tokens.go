package battlemat

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var selectionColor = color.NRGBA{R: 255, G: 180, B: 0, A: 255}

// drawTokens renders every visible token: cached art circularly clipped to
// mask non-square images, or a colored disc plus name while the image is
// missing, loading, or failed. The selection ring draws outside the clip.
func (c *Canvas) drawTokens(layer *ebiten.Image) {
	layer.Clear()

	for i := range c.tokens {
		t := &c.tokens[i]
		if !t.Visible && !c.GMView {
			continue
		}

		wx, wy, rot := c.tokenRenderPosition(t)
		sx, sy := c.viewport.WorldToScreen(wx, wy)
		radius := t.Width / 2 * c.viewport.Scale
		if radius <= 0 {
			radius = c.gridSize() / 2 * c.viewport.Scale
		}

		alpha := 1.0
		if !t.Visible {
			alpha = 0.5 // GM preview of hidden tokens
		}

		drawn := false
		if t.ImageURL != "" {
			img, state := c.images.Image(t.ImageURL)
			if state == LoadIdle {
				c.images.Request(t.ImageURL)
			} else if state == LoadReady {
				c.drawClippedToken(layer, img, sx, sy, radius, rot, alpha)
				drawn = true
			}
		}
		if !drawn {
			c.drawFallbackToken(layer, t, sx, sy, radius, alpha)
		}

		if t.ID != "" && t.ID == c.selectedTokenID {
			vector.StrokeCircle(layer, float32(sx), float32(sy), float32(radius+3), 2, selectionColor, true)
		}
	}
}

// drawClippedToken composites token art through a circular mask: the image
// is scaled into a scratch buffer, the buffer is clipped to a disc with
// destination-in blending, and the result is rotated into place.
func (c *Canvas) drawClippedToken(layer *ebiten.Image, img *ebiten.Image, sx, sy, radius, rotation, alpha float64) {
	size := int(math.Ceil(radius * 2))
	if size < 1 {
		size = 1
	}
	scratch := c.tokenScratchFor(size)
	scratch.Clear()

	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	// Cover the scratch square, cropping the longer image axis.
	scale := float64(size) / math.Min(float64(b.Dx()), float64(b.Dy()))
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(
		-(float64(b.Dx())*scale-float64(size))/2,
		-(float64(b.Dy())*scale-float64(size))/2,
	)
	op.Filter = ebiten.FilterLinear
	scratch.DrawImage(img, op)

	maskOp := &ebiten.DrawImageOptions{}
	maskOp.Blend = ebiten.BlendDestinationIn
	scratch.DrawImage(c.discMask(size), maskOp)

	out := &ebiten.DrawImageOptions{}
	out.GeoM.Translate(-float64(size)/2, -float64(size)/2)
	if rotation != 0 {
		out.GeoM.Rotate(rotation)
	}
	out.GeoM.Translate(sx, sy)
	out.ColorScale.ScaleAlpha(float32(alpha))
	out.Filter = ebiten.FilterLinear
	layer.DrawImage(scratch.SubImage(image.Rect(0, 0, size, size)).(*ebiten.Image), out)
}

// drawFallbackToken renders a colored disc with the token's name while no
// art is available.
func (c *Canvas) drawFallbackToken(layer *ebiten.Image, t *Token, sx, sy, radius, alpha float64) {
	col := rgba(t.Color[0], t.Color[1], t.Color[2], alpha)
	if t.Color == ([3]float64{}) {
		col = rgba(0.35, 0.45, 0.8, alpha)
	}
	vector.DrawFilledCircle(layer, float32(sx), float32(sy), float32(radius), col, true)
	vector.StrokeCircle(layer, float32(sx), float32(sy), float32(radius), 1.5, color.NRGBA{0, 0, 0, uint8(alpha * 160)}, true)
	if t.Name != "" {
		ebitenutil.DebugPrintAt(layer, t.Name, int(sx)-len(t.Name)*3, int(sy+radius)+2)
	}
}

// tokenScratchFor returns a scratch buffer at least size pixels square,
// growing the cached one as needed.
func (c *Canvas) tokenScratchFor(size int) *ebiten.Image {
	if c.tokenScratch == nil || c.tokenScratch.Bounds().Dx() < size {
		if c.tokenScratch != nil {
			c.tokenScratch.Deallocate()
		}
		c.tokenScratch = ebiten.NewImage(nextPowerOfTwo(size), nextPowerOfTwo(size))
	}
	return c.tokenScratch
}

// discMask returns a cached opaque disc of the given pixel diameter with a
// one-pixel antialiased rim, used as a destination-in clip mask.
func (c *Canvas) discMask(size int) *ebiten.Image {
	if c.discMasks == nil {
		c.discMasks = make(map[int]*ebiten.Image)
	}
	if img, ok := c.discMasks[size]; ok {
		return img
	}

	img := ebiten.NewImage(size, size)
	pix := make([]byte, size*size*4)
	radius := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - radius
			dy := float64(y) + 0.5 - radius
			dist := math.Sqrt(dx*dx + dy*dy)

			var alpha float64
			switch {
			case dist <= radius-1:
				alpha = 1
			case dist >= radius:
				alpha = 0
			default:
				alpha = radius - dist
			}

			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a // premultiplied white
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	img.WritePixels(pix)
	c.discMasks[size] = img
	return img
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
