package battlemat

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var layerNames = [layerCount]string{
	"background", "grid", "tokens", "lighting", "walls", "controls",
}

// SetDebugMode enables the controls-layer debug overlay (FPS plus
// per-layer redraw counters) and a stats line on stderr.
func (c *Canvas) SetDebugMode(enabled bool) {
	c.debug = enabled
	c.Invalidate(LayerControls)
}

// drawDebugOverlay prints FPS/TPS and how many times each layer has been
// redrawn, which makes broken invalidation targeting visible at a glance.
func (c *Canvas) drawDebugOverlay(layer *ebiten.Image) {
	msg := fmt.Sprintf("FPS: %.1f TPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	for id := LayerID(0); id < layerCount; id++ {
		msg += fmt.Sprintf("%s: %d\n", layerNames[id], c.redrawCounts[id])
	}
	ebitenutil.DebugPrintAt(layer, msg, 4, 4)
}

func (c *Canvas) totalRedraws() int {
	n := 0
	for _, v := range c.redrawCounts {
		n += v
	}
	return n
}

// debugLog prints a one-line redraw summary to stderr.
func (c *Canvas) debugLog() {
	if !c.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[battlemat] redraws bg:%d grid:%d tokens:%d lighting:%d walls:%d controls:%d\n",
		c.redrawCounts[LayerBackground], c.redrawCounts[LayerGrid],
		c.redrawCounts[LayerTokens], c.redrawCounts[LayerLighting],
		c.redrawCounts[LayerWalls], c.redrawCounts[LayerControls])
}
