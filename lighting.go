package battlemat

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Lighting: each light renders a radial gradient texture, opaque out to
// its bright radius and fading to transparent at its dim radius. Cone
// lights bake the arc sector into the texture and rotate at draw time.
// With no ambient darkness the lights lighten-blend directly onto the
// layer; with darkness they are first composited onto an offscreen buffer
// that then punches holes in a full-viewport darkness rectangle.

// lightSource normalizes ambient and token lights for the render pass.
type lightSource struct {
	x, y          float64
	bright, dim   float64
	angle         float64 // degrees; < 360 = cone
	rotation      float64 // radians
	color         [3]float64
	alpha         float64
	animType      LightAnimation
	animSpeed     float64
	animIntensity float64
}

// lightImageKey quantizes gradient parameters so tiny radius differences
// share one texture.
type lightImageKey struct {
	bright, dim, angle int
}

// collectLights gathers ambient lights plus light-emitting tokens.
func (c *Canvas) collectLights() []lightSource {
	out := make([]lightSource, 0, len(c.lights))
	for i := range c.lights {
		l := &c.lights[i]
		if l.Dim <= 0 && l.Bright <= 0 {
			continue
		}
		alpha := l.Alpha
		if alpha <= 0 {
			alpha = 0.5
		}
		out = append(out, lightSource{
			x: l.X, y: l.Y,
			bright: l.Bright, dim: l.Dim,
			angle: l.Angle, rotation: l.Rotation,
			color: l.Color, alpha: alpha,
			animType:      l.AnimationType,
			animSpeed:     l.AnimationSpeed,
			animIntensity: l.AnimationIntensity,
		})
	}
	for i := range c.tokens {
		t := &c.tokens[i]
		if t.LightDim <= 0 && t.LightBright <= 0 {
			continue
		}
		x, y, _ := c.tokenRenderPosition(t)
		out = append(out, lightSource{
			x: x, y: y,
			bright: t.LightBright, dim: t.LightDim,
			angle: t.LightAngle, rotation: t.Rotation,
			color: t.LightColor, alpha: 0.5,
			animType:      t.LightAnimationType,
			animSpeed:     t.LightAnimationSpeed,
			animIntensity: t.LightAnimationIntensity,
		})
	}
	return out
}

// hasAnimatedLight reports whether any light or token light animates; the
// render loop re-invokes lighting only while this holds.
func (c *Canvas) hasAnimatedLight() bool {
	for i := range c.lights {
		if c.lights[i].AnimationType != LightAnimationNone {
			return true
		}
	}
	for i := range c.tokens {
		t := &c.tokens[i]
		if (t.LightDim > 0 || t.LightBright > 0) && t.LightAnimationType != LightAnimationNone {
			return true
		}
	}
	return false
}

// lightingActive reports whether the lighting layer contributes anything.
func (c *Canvas) lightingActive() bool {
	if c.darkness() > 0 {
		return true
	}
	return len(c.lights) > 0 || c.anyTokenLight()
}

func (c *Canvas) anyTokenLight() bool {
	for i := range c.tokens {
		if c.tokens[i].LightDim > 0 || c.tokens[i].LightBright > 0 {
			return true
		}
	}
	return false
}

func (c *Canvas) darkness() float64 {
	if c.scene.GlobalLight {
		return 0
	}
	return clamp01(c.scene.Darkness)
}

// flickerScale returns the radius modulation factor for an animated light
// at time t seconds: torch combines three sine frequencies, pulse uses a
// single sine. Both stay within ±30% × intensity of 1.
func flickerScale(anim LightAnimation, t, speed, intensity float64) float64 {
	if anim == LightAnimationNone || intensity <= 0 {
		return 1
	}
	if speed <= 0 {
		speed = 1
	}
	var s float64
	switch anim {
	case LightAnimationTorch:
		s = 0.55*math.Sin(t*speed*5.13) +
			0.30*math.Sin(t*speed*11.7) +
			0.15*math.Sin(t*speed*23.1)
	case LightAnimationPulse:
		s = math.Sin(t * speed * 2)
	}
	return 1 + 0.3*clamp01(intensity)*s
}

// drawLighting renders all lights and the ambient darkness overlay.
func (c *Canvas) drawLighting(layer *ebiten.Image) {
	layer.Clear()

	sources := c.collectLights()
	darkness := c.darkness()
	if darkness == 0 && len(sources) == 0 {
		return
	}

	if darkness == 0 {
		// No ambient darkness: additive glow straight onto the layer.
		for i := range sources {
			c.drawLightSource(layer, &sources[i], ebiten.BlendLighter, true)
		}
		return
	}

	// Darkness: composite lights onto an offscreen buffer, fill the layer
	// with darkness, then punch the buffer out of it.
	buf := c.ensureLightBuf()
	buf.Clear()
	for i := range sources {
		c.drawLightSource(buf, &sources[i], ebiten.BlendSourceOver, false)
	}

	layer.Fill(color.NRGBA{A: uint8(darkness * 255)})

	punch := &ebiten.DrawImageOptions{}
	punch.Blend = ebiten.BlendDestinationOut
	layer.DrawImage(buf, punch)

	// Color tint pass over the lit areas.
	for i := range sources {
		if sources[i].color != ([3]float64{}) {
			c.drawLightSource(layer, &sources[i], ebiten.BlendLighter, true)
		}
	}
}

// drawLightSource draws one light's gradient texture through the viewport
// transform, applying flicker modulation and, for tinted passes, the
// light's color.
func (c *Canvas) drawLightSource(dst *ebiten.Image, l *lightSource, blend ebiten.Blend, tinted bool) {
	dim := math.Max(l.dim, l.bright)
	if dim <= 0 {
		return
	}
	img := c.lightImage(math.Min(l.bright, dim), dim, l.angle)
	b := img.Bounds()

	flicker := flickerScale(l.animType, c.clock, l.animSpeed, l.animIntensity)
	screenRadius := dim * c.viewport.Scale * flicker

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Scale(screenRadius*2/float64(b.Dx()), screenRadius*2/float64(b.Dy()))
	if l.angle < 360 && l.angle > 0 && l.rotation != 0 {
		op.GeoM.Rotate(l.rotation)
	}
	sx, sy := c.viewport.WorldToScreen(l.x, l.y)
	op.GeoM.Translate(sx, sy)
	op.Blend = blend
	op.Filter = ebiten.FilterLinear

	if tinted {
		r, g, bl := l.color[0], l.color[1], l.color[2]
		if l.color == ([3]float64{}) {
			r, g, bl = 1, 1, 1
		}
		a := float32(clamp01(l.alpha) * 0.3)
		op.ColorScale.Scale(float32(r)*a, float32(g)*a, float32(bl)*a, a)
	}
	dst.DrawImage(img, op)
}

// lightKeyFor quantizes radii (ceil) and cone angle (round, with anything
// outside (0, 360) treated as omnidirectional).
func lightKeyFor(bright, dim, angle float64) lightImageKey {
	key := lightImageKey{
		bright: int(math.Ceil(bright)),
		dim:    int(math.Ceil(dim)),
		angle:  int(math.Round(angle)),
	}
	if key.angle <= 0 || key.angle >= 360 {
		key.angle = 360
	}
	return key
}

// lightImage returns a cached gradient texture for the quantized
// bright/dim radii and cone angle.
func (c *Canvas) lightImage(bright, dim, angle float64) *ebiten.Image {
	key := lightKeyFor(bright, dim, angle)
	if c.lightImages == nil {
		c.lightImages = make(map[lightImageKey]*ebiten.Image)
	}
	if img, ok := c.lightImages[key]; ok {
		return img
	}
	img := generateLightTexture(float64(key.bright), float64(key.dim), float64(key.angle))
	c.lightImages[key] = img
	return img
}

// generateLightTexture builds a radial gradient disc: fully opaque inside
// the bright radius, smoothstep falloff out to the dim radius. Angles
// below 360 zero out pixels outside the arc sector centered on +X.
func generateLightTexture(bright, dim, angle float64) *ebiten.Image {
	size := int(math.Ceil(dim * 2))
	if size < 2 {
		size = 2
	}
	halfAngle := angle * math.Pi / 360 // (angle/2) in radians

	img := ebiten.NewImage(size, size)
	pix := make([]byte, size*size*4)
	cx := float64(size) / 2
	cy := float64(size) / 2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			dist := math.Sqrt(dx*dx + dy*dy)

			var alpha float64
			switch {
			case dist <= bright:
				alpha = 1
			case dist >= dim:
				alpha = 0
			default:
				t := (dim - dist) / (dim - bright)
				alpha = t * t * (3 - 2*t)
			}

			if alpha > 0 && angle < 360 {
				if math.Abs(math.Atan2(dy, dx)) > halfAngle {
					alpha = 0
				}
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
	return img
}

// ensureLightBuf returns the offscreen compositing buffer, allocating it
// to match the layer size.
func (c *Canvas) ensureLightBuf() *ebiten.Image {
	w, h := c.viewport.Width, c.viewport.Height
	if c.lightBuf != nil {
		b := c.lightBuf.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return c.lightBuf
		}
		c.lightBuf.Deallocate()
	}
	c.lightBuf = ebiten.NewImage(w, h)
	return c.lightBuf
}
