package battlemat

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Canvas owns the layered drawing surfaces, the shared viewport transform,
// and the pointer/keyboard interaction state machine. Each layer is
// redrawn independently on targeted invalidation (a token move dirties
// only the tokens layer) or all together on a viewport change.
//
// Everything runs on the update thread; the only goroutines are image
// loads, whose results Canvas drains in Update.
type Canvas struct {
	// GMView composites the walls layer; player views never see walls.
	GMView bool
	// Callbacks fire on interaction commits. See Callbacks.
	Callbacks Callbacks
	// TextInputFocused, when set and returning true, suppresses keyboard
	// shortcuts so typing in a host text field never deletes a wall.
	TextInputFocused func() bool

	viewport *Viewport
	scene    Scene
	tokens   []Token
	walls    []Wall
	lights   []AmbientLight

	layers       [layerCount]*ebiten.Image
	dirty        [layerCount]bool
	redrawCounts [layerCount]int

	images *ImageCache
	bg     backgroundState

	selectedTokenID string
	selectedWallID  string
	hoveredWallID   string

	interact interactionState

	lightImages   map[lightImageKey]*ebiten.Image
	lightBuf      *ebiten.Image // offscreen buffer for darkness compositing
	tokenScratch  *ebiten.Image
	discMasks     map[int]*ebiten.Image
	clock         float64 // seconds since creation; drives light flicker
	anims         *PathAnimationManager
	animPositions map[string]AnimatedPosition // keyed by object ID

	debug    bool
	disposed bool
	now      func() time.Time
}

// NewCanvas creates a canvas rendering into a width x height pixel area.
// Layer images are allocated lazily on first Draw, so a canvas used only
// for hit-testing never touches the GPU.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{
		viewport: NewViewport(width, height),
		images:   NewImageCache(defaultCacheSize),
		now:      time.Now,
	}
	c.interact.init()
	c.InvalidateAll()
	return c
}

// Viewport returns the canvas's transform. Mutating it directly requires a
// matching InvalidateAll; prefer the interaction methods or ScrollTo.
func (c *Canvas) Viewport() *Viewport {
	return c.viewport
}

// Images returns the canvas's texture cache.
func (c *Canvas) Images() *ImageCache {
	return c.images
}

// SetScene replaces the scene settings. A changed background image resets
// the per-scene loader; grid or darkness changes invalidate their layers.
func (c *Canvas) SetScene(sc Scene) {
	prev := c.scene
	c.scene = sc
	if sc.BackgroundImage != c.bg.url {
		c.setBackgroundURL(sc.BackgroundImage)
	}
	if sc.GridSize != prev.GridSize || sc.GridType != prev.GridType ||
		sc.GridColor != prev.GridColor || sc.GridAlpha != prev.GridAlpha {
		c.Invalidate(LayerGrid)
	}
	if sc.Darkness != prev.Darkness || sc.GlobalLight != prev.GlobalLight {
		c.Invalidate(LayerLighting)
	}
}

// SetTokens replaces the token list. The canvas keeps its own copy so the
// drag-time local echo never leaks into the host's model.
func (c *Canvas) SetTokens(tokens []Token) {
	c.tokens = append(c.tokens[:0], tokens...)
	c.Invalidate(LayerTokens)
	c.Invalidate(LayerLighting)
}

// SetWalls replaces the wall list.
func (c *Canvas) SetWalls(walls []Wall) {
	c.walls = append(c.walls[:0], walls...)
	if c.selectedWallID != "" && c.wallByID(c.selectedWallID) == nil {
		c.selectedWallID = ""
		c.Invalidate(LayerControls)
	}
	c.Invalidate(LayerWalls)
}

// SetLights replaces the ambient light list.
func (c *Canvas) SetLights(lights []AmbientLight) {
	c.lights = append(c.lights[:0], lights...)
	c.Invalidate(LayerLighting)
}

// SetPathAnimations attaches a path animation registry. While it holds
// animations, animated object positions override token positions and the
// tokens layer redraws every frame.
func (c *Canvas) SetPathAnimations(m *PathAnimationManager) {
	c.anims = m
}

// SelectedToken returns the selected token's ID, or "".
func (c *Canvas) SelectedToken() string { return c.selectedTokenID }

// SelectedWall returns the selected wall's ID, or "".
func (c *Canvas) SelectedWall() string { return c.selectedWallID }

// Invalidate marks one layer for redraw on the next Draw.
func (c *Canvas) Invalidate(layer LayerID) {
	if layer < layerCount {
		c.dirty[layer] = true
	}
}

// InvalidateAll marks every layer for redraw, e.g. after a viewport change.
func (c *Canvas) InvalidateAll() {
	for i := range c.dirty {
		c.dirty[i] = true
	}
}

// Resize changes the canvas pixel size. Layer images are reallocated on
// the next Draw.
func (c *Canvas) Resize(width, height int) {
	if width == c.viewport.Width && height == c.viewport.Height {
		return
	}
	c.viewport.Width = width
	c.viewport.Height = height
	c.dropLayerImages()
	c.InvalidateAll()
}

// Animating reports whether anything needs a redraw every frame: an
// animated light, a running path animation, or a viewport tween. Hosts
// can skip scheduling draws entirely when this is false and nothing is
// invalidated.
func (c *Canvas) Animating() bool {
	if c.viewport.Animating() {
		return true
	}
	if c.anims != nil && c.anims.Len() > 0 {
		return true
	}
	return c.hasAnimatedLight()
}

// Update advances one tick: drains image loads, advances viewport tweens
// and the lighting clock, refreshes animated positions, and processes
// polled input. Call once per ebiten Update.
func (c *Canvas) Update() {
	dt := 1.0 / float64(ebiten.TPS())
	c.step(dt, c.now())
	c.processInput()
}

// step is Update without input polling; tests drive it directly with a
// controlled clock.
func (c *Canvas) step(dt float64, now time.Time) {
	c.drainImageLoads()

	if c.viewport.update(float32(dt)) {
		c.InvalidateAll()
	}

	c.clock += dt
	if c.hasAnimatedLight() {
		c.Invalidate(LayerLighting)
	}

	if c.anims != nil && c.anims.Len() > 0 {
		c.animPositions = c.anims.ObjectPositions(now)
		c.Invalidate(LayerTokens)
	} else if c.animPositions != nil {
		c.animPositions = nil
		c.Invalidate(LayerTokens)
	}
}

// drainImageLoads commits finished loads and invalidates the layers that
// show them. The background commit is guarded by a URL freshness check in
// onBackgroundLoad.
func (c *Canvas) drainImageLoads() {
	c.images.Drain(func(url string, ok bool) {
		if url == c.bg.url {
			c.onBackgroundLoad(url, ok)
		}
		c.Invalidate(LayerTokens)
	})
}

// Draw redraws dirty layers and composites them in order. The walls layer
// is composited only for GM views; lighting only when it has any effect.
func (c *Canvas) Draw(screen *ebiten.Image) {
	if c.disposed {
		return
	}
	c.ensureLayerImages()
	redrawsBefore := c.totalRedraws()

	if c.dirty[LayerBackground] {
		c.drawBackground(c.layers[LayerBackground])
		c.markRedrawn(LayerBackground)
	}
	if c.dirty[LayerGrid] {
		c.drawGrid(c.layers[LayerGrid])
		c.markRedrawn(LayerGrid)
	}
	if c.dirty[LayerTokens] {
		c.drawTokens(c.layers[LayerTokens])
		c.markRedrawn(LayerTokens)
	}
	if c.dirty[LayerLighting] {
		c.drawLighting(c.layers[LayerLighting])
		c.markRedrawn(LayerLighting)
	}
	if c.dirty[LayerWalls] {
		c.drawWalls(c.layers[LayerWalls])
		c.markRedrawn(LayerWalls)
	}
	if c.dirty[LayerControls] {
		c.drawControls(c.layers[LayerControls])
		c.markRedrawn(LayerControls)
	}
	if c.totalRedraws() != redrawsBefore {
		c.debugLog()
	}

	for id := LayerID(0); id < layerCount; id++ {
		if id == LayerWalls && !c.GMView {
			continue
		}
		if id == LayerLighting && !c.lightingActive() {
			continue
		}
		screen.DrawImage(c.layers[id], nil)
	}
}

func (c *Canvas) markRedrawn(layer LayerID) {
	c.dirty[layer] = false
	c.redrawCounts[layer]++
}

func (c *Canvas) ensureLayerImages() {
	if c.layers[0] != nil {
		return
	}
	w, h := c.viewport.Width, c.viewport.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	for i := range c.layers {
		c.layers[i] = ebiten.NewImage(w, h)
	}
}

func (c *Canvas) dropLayerImages() {
	for i, img := range c.layers {
		if img != nil {
			img.Deallocate()
			c.layers[i] = nil
		}
	}
	if c.lightBuf != nil {
		c.lightBuf.Deallocate()
		c.lightBuf = nil
	}
}

// Dispose releases every GPU resource the canvas owns. The canvas must
// not be used afterwards.
func (c *Canvas) Dispose() {
	c.dropLayerImages()
	for _, img := range c.lightImages {
		img.Deallocate()
	}
	c.lightImages = nil
	for _, img := range c.discMasks {
		img.Deallocate()
	}
	c.discMasks = nil
	if c.tokenScratch != nil {
		c.tokenScratch.Deallocate()
		c.tokenScratch = nil
	}
	c.disposed = true
}

// tokenByID returns a pointer into the canvas's token copy, or nil.
func (c *Canvas) tokenByID(id string) *Token {
	for i := range c.tokens {
		if c.tokens[i].ID == id {
			return &c.tokens[i]
		}
	}
	return nil
}

func (c *Canvas) wallByID(id string) *Wall {
	for i := range c.walls {
		if c.walls[i].ID == id {
			return &c.walls[i]
		}
	}
	return nil
}

// tokenRenderPosition returns where a token draws this frame: its animated
// path position when one is active, otherwise its model position (which
// carries the drag-time local echo).
func (c *Canvas) tokenRenderPosition(t *Token) (float64, float64, float64) {
	if ap, ok := c.animPositions[t.ID]; ok {
		return ap.Point.X, ap.Point.Y, ap.Angle
	}
	return t.X, t.Y, t.Rotation
}
