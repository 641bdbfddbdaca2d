package battlemat

import "image/color"

// Point is a position in world coordinates. The coordinate system has its
// origin at the top-left, with Y increasing downward.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Viewport scale limits. Wheel zoom and ZoomTo clamp into this range.
const (
	MinScale = 0.25
	MaxScale = 4.0
)

// Spline defaults, used when a caller passes a non-positive segment count
// or an out-of-range tension.
const (
	DefaultTension  = 0.5
	DefaultSegments = 20
)

// LayerID identifies one of the canvas's drawing surfaces. Layers are
// composited in ascending order.
type LayerID uint8

const (
	LayerBackground LayerID = iota // scene background image or placeholder
	LayerGrid                      // square or hex grid lines
	LayerTokens                    // token art, fallback discs, selection rings
	LayerLighting                  // ambient + token lights, darkness overlay
	LayerWalls                     // walls and doors (GM view only)
	LayerControls                  // transient chrome: previews, handles, debug overlay
	layerCount
)

// Tool selects which interactions the pointer performs.
type Tool uint8

const (
	ToolSelect Tool = iota // pan, select, drag tokens
	ToolWall               // two-click wall placement
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Key identifies the keyboard keys the canvas reacts to.
type Key uint8

const (
	KeyEscape Key = iota // cancel an in-progress wall
	KeyDelete            // remove the selected wall
)

// rgba converts a non-premultiplied color with components in [0, 1] to a
// color.NRGBA, clamping each component.
func rgba(r, g, b, a float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(r) * 255),
		G: uint8(clamp01(g) * 255),
		B: uint8(clamp01(b) * 255),
		A: uint8(clamp01(a) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
