package battlemat

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// defaultGridSize is used when the scene leaves GridSize unset.
const defaultGridSize = 100.0

// SnapToGrid rounds a world coordinate to the nearest multiple of the
// grid cell size. A non-positive size snaps to nothing.
func SnapToGrid(x, y, gridSize float64) (float64, float64) {
	if gridSize <= 0 {
		return x, y
	}
	return math.Round(x/gridSize) * gridSize, math.Round(y/gridSize) * gridSize
}

// gridSize returns the scene's cell size with the default applied.
func (c *Canvas) gridSize() float64 {
	if c.scene.GridSize > 0 {
		return c.scene.GridSize
	}
	return defaultGridSize
}

// snap applies grid snapping with the scene's cell size.
func (c *Canvas) snap(x, y float64) (float64, float64) {
	return SnapToGrid(x, y, c.gridSize())
}

// drawGrid renders the square or hex grid over the visible world bounds.
func (c *Canvas) drawGrid(layer *ebiten.Image) {
	layer.Clear()

	alpha := c.scene.GridAlpha
	if alpha <= 0 {
		return
	}
	col := rgba(c.scene.GridColor[0], c.scene.GridColor[1], c.scene.GridColor[2], alpha)
	size := c.gridSize()
	bounds := c.viewport.VisibleBounds()

	if c.scene.GridType == GridHex {
		c.drawHexGrid(layer, size, bounds, col)
		return
	}

	// Square: axis-aligned lines at cell multiples.
	startX := math.Floor(bounds.X/size) * size
	endX := bounds.X + bounds.Width
	for x := startX; x <= endX; x += size {
		sx, _ := c.viewport.WorldToScreen(x, 0)
		vector.StrokeLine(layer, float32(sx), 0, float32(sx), float32(c.viewport.Height), 1, col, true)
	}
	startY := math.Floor(bounds.Y/size) * size
	endY := bounds.Y + bounds.Height
	for y := startY; y <= endY; y += size {
		_, sy := c.viewport.WorldToScreen(0, y)
		vector.StrokeLine(layer, 0, float32(sy), float32(c.viewport.Width), float32(sy), 1, col, true)
	}
}

// Pointy-top hex metrics: a cell of size s is s tall, s*2/sqrt(3) wide,
// rows advance by 0.75*s, and odd rows shift right by half a hex width.
func hexMetrics(size float64) (hexWidth, rowSpacing float64) {
	return size * 2 / math.Sqrt(3), 0.75 * size
}

func (c *Canvas) drawHexGrid(layer *ebiten.Image, size float64, bounds Rect, col color.Color) {
	hexWidth, rowSpacing := hexMetrics(size)

	rowStart := int(math.Floor(bounds.Y/rowSpacing)) - 1
	rowEnd := int(math.Ceil((bounds.Y+bounds.Height)/rowSpacing)) + 1
	colStart := int(math.Floor(bounds.X/hexWidth)) - 1
	colEnd := int(math.Ceil((bounds.X+bounds.Width)/hexWidth)) + 1

	hw := hexWidth / 2
	hh := size / 2

	for row := rowStart; row <= rowEnd; row++ {
		cy := float64(row) * rowSpacing
		var offset float64
		if row&1 != 0 {
			offset = hw
		}
		for colIdx := colStart; colIdx <= colEnd; colIdx++ {
			cx := float64(colIdx)*hexWidth + offset
			c.strokeHex(layer, cx, cy, hw, hh, col)
		}
	}
}

// strokeHex outlines one pointy-top hexagon centered at (cx, cy) in world
// coordinates.
func (c *Canvas) strokeHex(layer *ebiten.Image, cx, cy, hw, hh float64, col color.Color) {
	verts := [6]Point{
		{cx, cy - hh},
		{cx + hw, cy - hh/2},
		{cx + hw, cy + hh/2},
		{cx, cy + hh},
		{cx - hw, cy + hh/2},
		{cx - hw, cy - hh/2},
	}
	for i := 0; i < 6; i++ {
		a := verts[i]
		b := verts[(i+1)%6]
		ax, ay := c.viewport.WorldToScreen(a.X, a.Y)
		bx, by := c.viewport.WorldToScreen(b.X, b.Y)
		vector.StrokeLine(layer, float32(ax), float32(ay), float32(bx), float32(by), 1, col, true)
	}
}
