// Package battlemat is the scene canvas for a virtual tabletop, built on
// [Ebitengine].
//
// It renders a game map as independent layers (background, grid, tokens,
// lighting, walls, controls) sharing one viewport transform, animates
// tokens along Catmull-Rom paths at constant speed, and turns pointer and
// keyboard input into pan, zoom, token-drag, and wall-drawing
// interactions.
//
// # Quick start
//
// Embed a [Canvas] in an ebiten.Game and forward the loop:
//
//	canvas := battlemat.NewCanvas(1280, 720)
//	canvas.SetScene(scene)
//	canvas.SetTokens(tokens)
//	canvas.Callbacks.OnTokenMove = func(id string, x, y float64) {
//		// persist the move
//	}
//
//	type Game struct{ canvas *battlemat.Canvas }
//
//	func (g *Game) Update() error              { g.canvas.Update(); return nil }
//	func (g *Game) Draw(screen *ebiten.Image)  { g.canvas.Draw(screen) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// The canvas never writes to the host's domain model. Token drags echo
// locally while the pointer is down and commit exactly once through
// [Callbacks.OnTokenMove] on release; every other callback follows the
// same commit-only contract.
//
// # Layers and invalidation
//
// Each layer redraws only when invalidated: a token move dirties just the
// tokens layer, a viewport change dirties everything. Hosts that drive
// their own scheduling can use [Canvas.Animating] to skip frames when
// nothing moves.
//
// # Concurrency
//
// Everything runs on the update thread. The only goroutines are image
// loads; their results are committed by [Canvas.Update], and a stale
// background load (URL changed while in flight) is discarded rather than
// painted.
//
// [Ebitengine]: https://ebitengine.org
package battlemat
