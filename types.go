package battlemat

// The types in this file mirror the domain model owned by the host
// application. The canvas reads them and never mutates them, with one
// exception: a token's position is echoed locally during a drag and
// committed back through Callbacks.OnTokenMove on pointer release.

// GridType selects the grid geometry.
type GridType uint8

const (
	GridSquare GridType = iota
	GridHex             // pointy-top hexes
)

// Scene holds the per-scene settings the canvas renders from.
type Scene struct {
	GridSize         float64
	GridType         GridType
	GridColor        [3]float64 // RGB in [0, 1]
	GridAlpha        float64
	BackgroundImage  string // URL or file path; empty for none
	BackgroundWidth  float64
	BackgroundHeight float64
	Darkness         float64 // 0 = fully lit, 1 = pitch black
	GlobalLight      bool
	TokenVision      bool
}

// Token is a game piece on the map. X and Y are the token's center in
// world units; Width and Height are its diameter extents in world units.
type Token struct {
	ID            string
	Name          string
	X, Y          float64
	Width, Height float64
	Visible       bool
	ImageURL      string
	Rotation      float64 // radians
	Color         [3]float64

	// Light emission. Zero radii mean the token emits no light.
	LightBright             float64
	LightDim                float64
	LightColor              [3]float64
	LightAngle              float64 // degrees; 360 or 0 = omnidirectional
	LightAnimationType      LightAnimation
	LightAnimationSpeed     float64
	LightAnimationIntensity float64

	Vision      bool
	VisionRange float64
}

// WallType distinguishes rendering and (in the host) movement blocking.
type WallType uint8

const (
	WallSolid WallType = iota
	WallDoor
)

// Wall is a straight or curved barrier segment. When ControlPoints is
// non-empty the wall is rendered as a Catmull-Rom spline through
// start, control points in order, end (see WallSplinePoints).
type Wall struct {
	ID            string
	X1, Y1        float64
	X2, Y2        float64
	WallType      WallType
	ControlPoints []Point
}

// LightAnimation selects a light's animation style.
type LightAnimation uint8

const (
	LightAnimationNone LightAnimation = iota
	LightAnimationTorch
	LightAnimationPulse
)

// AmbientLight is a standalone light source placed on the scene.
type AmbientLight struct {
	ID                 string
	X, Y               float64
	Bright, Dim        float64 // radii in world units
	Angle              float64 // degrees; < 360 makes a cone
	Rotation           float64 // cone facing, radians
	Color              [3]float64
	Alpha              float64
	AnimationType      LightAnimation
	AnimationSpeed     float64
	AnimationIntensity float64 // [0, 1]
}

// PathNode is one waypoint of an animation path.
type PathNode struct {
	X, Y float64
}

// Callbacks are fired by the interaction state machine on commit only.
// Nil callbacks are skipped.
type Callbacks struct {
	// OnTokenMove is the sole authoritative position commit, fired once
	// per completed drag.
	OnTokenMove func(tokenID string, x, y float64)
	// OnTokenSelect fires with the selected token's ID, or "" when the
	// selection is cleared.
	OnTokenSelect func(tokenID string)
	// OnTokenDoubleClick fires instead of a drag when the same token is
	// pressed twice within the double-click window.
	OnTokenDoubleClick func(tokenID string)
	// OnWallAdd fires when the second wall-tool click commits a wall.
	OnWallAdd func(x1, y1, x2, y2 float64)
	// OnWallRemove fires when the selected wall is deleted.
	OnWallRemove func(wallID string)
}
