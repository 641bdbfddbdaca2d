package battlemat

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Interaction state machine. Exactly one mode is active at a time; the
// reachable set depends on the active tool. All pointer methods take
// screen coordinates and convert through the shared viewport, so
// hit-testing always agrees with rendering.

type interactionMode uint8

const (
	modeIdle interactionMode = iota
	modePanning
	modeDraggingToken
	modeDrawingWall
)

// doubleClickWindow is the maximum delay between two presses on the same
// token for the second to count as a double-click.
const doubleClickWindow = 300 * time.Millisecond

type interactionState struct {
	mode interactionMode
	tool Tool

	// Panning
	lastScreenX, lastScreenY float64

	// Token drag: offset keeps the grab point fixed under the pointer;
	// origin restores the token when the pointer leaves without commit.
	dragTokenID          string
	dragOffX, dragOffY   float64
	dragOrigX, dragOrigY float64

	// Double-click disambiguation
	lastClickTokenID string
	lastClickTime    time.Time

	// Wall drawing (two-click: start is set, preview follows the pointer)
	wallStart   Point
	wallPreview Point

	// Synthetic input for tests and scripted hosts
	injectQueue []syntheticPointerEvent

	// ebiten polling state
	prevCursorX, prevCursorY int
	cursorInside             bool
}

func (st *interactionState) init() {
	st.mode = modeIdle
	st.tool = ToolSelect
}

// Mode reporting, mainly for hosts that change the cursor per mode.

// Panning reports whether a pan drag is active.
func (c *Canvas) Panning() bool { return c.interact.mode == modePanning }

// DraggingToken reports whether a token drag is active.
func (c *Canvas) DraggingToken() bool { return c.interact.mode == modeDraggingToken }

// DrawingWall reports whether a wall placement is in progress.
func (c *Canvas) DrawingWall() bool { return c.interact.mode == modeDrawingWall }

// Tool returns the active tool.
func (c *Canvas) Tool() Tool { return c.interact.tool }

// SetTool switches tools, cancelling any in-progress interaction.
func (c *Canvas) SetTool(t Tool) {
	if c.interact.tool == t {
		return
	}
	c.cancelWallDraw()
	c.interact.tool = t
	c.interact.mode = modeIdle
}

// tokenAt returns the topmost token whose disc contains the world point.
// Hidden tokens are only grabbable in GM view.
func (c *Canvas) tokenAt(wx, wy float64) *Token {
	for i := len(c.tokens) - 1; i >= 0; i-- {
		t := &c.tokens[i]
		if !t.Visible && !c.GMView {
			continue
		}
		radius := t.Width / 2
		if radius <= 0 {
			radius = c.gridSize() / 2
		}
		dx := wx - t.X
		dy := wy - t.Y
		if dx*dx+dy*dy <= radius*radius {
			return t
		}
	}
	return nil
}

// PointerDown feeds a press at screen coordinates into the state machine.
func (c *Canvas) PointerDown(sx, sy float64, button MouseButton) {
	st := &c.interact
	wx, wy := c.viewport.ScreenToWorld(sx, sy)

	if button == MouseButtonRight {
		// Right-click cancels an in-progress wall instead of opening a
		// context menu; otherwise it is ignored.
		if st.mode == modeDrawingWall {
			c.cancelWallDraw()
		}
		return
	}
	if button != MouseButtonLeft {
		return
	}

	if st.tool == ToolWall {
		x, y := c.snap(wx, wy)
		if st.mode != modeDrawingWall {
			st.wallStart = Point{X: x, Y: y}
			st.wallPreview = st.wallStart
			st.mode = modeDrawingWall
		} else {
			if c.Callbacks.OnWallAdd != nil {
				c.Callbacks.OnWallAdd(st.wallStart.X, st.wallStart.Y, x, y)
			}
			st.mode = modeIdle
		}
		c.Invalidate(LayerControls)
		return
	}

	// Select tool. Wall selection wins over tokens and never starts a drag.
	if w := c.wallAt(wx, wy); w != nil {
		if c.selectedWallID != w.ID {
			c.selectedWallID = w.ID
			c.Invalidate(LayerControls)
		}
		return
	}

	if t := c.tokenAt(wx, wy); t != nil {
		now := c.now()
		if st.lastClickTokenID == t.ID && now.Sub(st.lastClickTime) <= doubleClickWindow {
			st.lastClickTokenID = ""
			if c.Callbacks.OnTokenDoubleClick != nil {
				c.Callbacks.OnTokenDoubleClick(t.ID)
			}
			return
		}
		st.lastClickTokenID = t.ID
		st.lastClickTime = now

		if c.selectedTokenID != t.ID {
			c.selectedTokenID = t.ID
			if c.Callbacks.OnTokenSelect != nil {
				c.Callbacks.OnTokenSelect(t.ID)
			}
		}
		st.mode = modeDraggingToken
		st.dragTokenID = t.ID
		st.dragOffX = t.X - wx
		st.dragOffY = t.Y - wy
		st.dragOrigX = t.X
		st.dragOrigY = t.Y
		c.Invalidate(LayerTokens)
		return
	}

	// Empty space: clear selection and pan.
	c.clearSelection()
	st.mode = modePanning
	st.lastScreenX = sx
	st.lastScreenY = sy
}

// PointerMove feeds pointer motion into the state machine.
func (c *Canvas) PointerMove(sx, sy float64) {
	st := &c.interact
	wx, wy := c.viewport.ScreenToWorld(sx, sy)

	switch st.mode {
	case modeDraggingToken:
		// Local echo only; the commit happens on PointerUp.
		if t := c.tokenByID(st.dragTokenID); t != nil {
			t.X = wx + st.dragOffX
			t.Y = wy + st.dragOffY
			c.Invalidate(LayerTokens)
		}
	case modePanning:
		c.viewport.PanBy(sx-st.lastScreenX, sy-st.lastScreenY)
		st.lastScreenX = sx
		st.lastScreenY = sy
		c.InvalidateAll()
	case modeDrawingWall:
		x, y := c.snap(wx, wy)
		st.wallPreview = Point{X: x, Y: y}
		c.Invalidate(LayerControls)
	default:
		if st.tool == ToolSelect {
			c.updateWallHover(wx, wy)
		}
	}
}

// PointerUp feeds a release into the state machine. A completed token
// drag fires OnTokenMove exactly once; an in-progress wall survives the
// release so the second click can commit it.
func (c *Canvas) PointerUp(sx, sy float64) {
	st := &c.interact

	switch st.mode {
	case modeDraggingToken:
		if t := c.tokenByID(st.dragTokenID); t != nil && c.Callbacks.OnTokenMove != nil {
			c.Callbacks.OnTokenMove(t.ID, t.X, t.Y)
		}
		st.mode = modeIdle
		st.dragTokenID = ""
	case modeDrawingWall:
		// Two-click placement: stay in DrawingWall between clicks.
	default:
		st.mode = modeIdle
	}
}

// PointerLeave is a pointer-up without commit: a token drag reverts its
// local echo and OnTokenMove never fires; a pan just stops. An
// in-progress wall keeps its preview for when the pointer returns.
func (c *Canvas) PointerLeave() {
	st := &c.interact

	switch st.mode {
	case modeDraggingToken:
		if t := c.tokenByID(st.dragTokenID); t != nil {
			t.X = st.dragOrigX
			t.Y = st.dragOrigY
			c.Invalidate(LayerTokens)
		}
		st.mode = modeIdle
		st.dragTokenID = ""
	case modePanning:
		st.mode = modeIdle
	}
	if c.hoveredWallID != "" {
		c.hoveredWallID = ""
		c.Invalidate(LayerControls)
	}
}

// Wheel zooms by 1.1 per upward tick and 0.9 per downward tick, clamped
// to the scale limits and anchored on the cursor.
func (c *Canvas) Wheel(sx, sy, dy float64) {
	if dy == 0 {
		return
	}
	factor := 0.9
	if dy > 0 {
		factor = 1.1
	}
	before := c.viewport.Scale
	c.viewport.ZoomAt(factor, sx, sy)
	if c.viewport.Scale != before {
		c.InvalidateAll()
	}
}

// KeyDown handles Escape (cancel wall draw) and Delete (remove selected
// wall). Both are suppressed while the host reports text input focus.
func (c *Canvas) KeyDown(key Key) {
	if c.TextInputFocused != nil && c.TextInputFocused() {
		return
	}
	switch key {
	case KeyEscape:
		c.cancelWallDraw()
	case KeyDelete:
		if c.selectedWallID != "" {
			if c.Callbacks.OnWallRemove != nil {
				c.Callbacks.OnWallRemove(c.selectedWallID)
			}
			c.selectedWallID = ""
			c.Invalidate(LayerControls)
		}
	}
}

func (c *Canvas) cancelWallDraw() {
	if c.interact.mode == modeDrawingWall {
		c.interact.mode = modeIdle
		c.Invalidate(LayerControls)
	}
}

func (c *Canvas) clearSelection() {
	if c.selectedTokenID != "" {
		c.selectedTokenID = ""
		if c.Callbacks.OnTokenSelect != nil {
			c.Callbacks.OnTokenSelect("")
		}
		c.Invalidate(LayerTokens)
	}
	if c.selectedWallID != "" {
		c.selectedWallID = ""
		c.Invalidate(LayerControls)
	}
}

func (c *Canvas) updateWallHover(wx, wy float64) {
	id := ""
	if w := c.wallAt(wx, wy); w != nil {
		id = w.ID
	}
	if id != c.hoveredWallID {
		c.hoveredWallID = id
		c.Invalidate(LayerControls)
	}
}

// --- ebiten polling ---

// processInput polls ebiten for mouse, wheel, and keyboard input once per
// tick. Injected synthetic events take precedence, one per tick, so
// scripted sequences see the same per-frame cadence as real input.
func (c *Canvas) processInput() {
	if c.processInjected() {
		return
	}

	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)

	inside := mx >= 0 && my >= 0 && mx < c.viewport.Width && my < c.viewport.Height
	if c.interact.cursorInside && !inside {
		c.PointerLeave()
	}
	c.interact.cursorInside = inside

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		c.PointerDown(sx, sy, MouseButtonLeft)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		c.PointerDown(sx, sy, MouseButtonRight)
	}
	if mx != c.interact.prevCursorX || my != c.interact.prevCursorY {
		c.PointerMove(sx, sy)
		c.interact.prevCursorX = mx
		c.interact.prevCursorY = my
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		c.PointerUp(sx, sy)
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		c.Wheel(sx, sy, wy)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		c.KeyDown(KeyEscape)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		c.KeyDown(KeyDelete)
	}
}

// --- Synthetic input injection ---

type syntheticKind uint8

const (
	injectPress syntheticKind = iota
	injectMove
	injectRelease
	injectLeave
)

// syntheticPointerEvent is a single injected pointer event in screen
// coordinates, consumed by the next Update's processInput call.
type syntheticPointerEvent struct {
	kind   syntheticKind
	x, y   float64
	button MouseButton
}

// InjectPress queues a left-button press at screen coordinates.
func (c *Canvas) InjectPress(x, y float64) {
	c.interact.injectQueue = append(c.interact.injectQueue,
		syntheticPointerEvent{kind: injectPress, x: x, y: y, button: MouseButtonLeft})
}

// InjectMove queues a pointer move. Use between InjectPress and
// InjectRelease to simulate a drag.
func (c *Canvas) InjectMove(x, y float64) {
	c.interact.injectQueue = append(c.interact.injectQueue,
		syntheticPointerEvent{kind: injectMove, x: x, y: y})
}

// InjectRelease queues a pointer release.
func (c *Canvas) InjectRelease(x, y float64) {
	c.interact.injectQueue = append(c.interact.injectQueue,
		syntheticPointerEvent{kind: injectRelease, x: x, y: y})
}

// InjectLeave queues a pointer-leave, e.g. to script the cancel-without-
// commit path.
func (c *Canvas) InjectLeave() {
	c.interact.injectQueue = append(c.interact.injectQueue,
		syntheticPointerEvent{kind: injectLeave})
}

// InjectClick queues a press followed by a release at the same position.
func (c *Canvas) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues press, interpolated moves, and release over the given
// number of frames (minimum 3). The last move lands exactly on the drop
// point before the release.
func (c *Canvas) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 3 {
		frames = 3
	}
	c.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectRelease(toX, toY)
}

// processInjected pops one synthetic event. Returns true if one was
// consumed, in which case real input is skipped this tick.
func (c *Canvas) processInjected() bool {
	q := c.interact.injectQueue
	if len(q) == 0 {
		return false
	}
	evt := q[0]
	copy(q, q[1:])
	c.interact.injectQueue = q[:len(q)-1]

	switch evt.kind {
	case injectPress:
		c.PointerDown(evt.x, evt.y, evt.button)
	case injectMove:
		c.PointerMove(evt.x, evt.y)
	case injectRelease:
		c.PointerUp(evt.x, evt.y)
	case injectLeave:
		c.PointerLeave()
	}
	return true
}
