package arcade

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	debugCellColor     = color.RGBA{R: 40, G: 90, B: 40, A: 160}
	debugTouchingColor = color.RGBA{R: 230, G: 60, B: 60, A: 255}
	debugImmovableFill = color.RGBA{R: 60, G: 60, B: 90, A: 90}
)

// DrawDebug draws the quadtree cells of the last top-level query (debug mode
// only), every existing node's hitbox in its Color, the touching sides in red
// and a stats line. It is an overlay for tuning collisions, not a renderer.
func (w *World) DrawDebug(screen *ebiten.Image) {
	if w.ClearColor != (Color{}) {
		screen.Fill(w.ClearColor.toRGBA())
	}
	for _, c := range w.debugCells {
		vector.StrokeRect(screen, float32(c.X), float32(c.Y), float32(c.Width), float32(c.Height), 1, debugCellColor, false)
	}
	drawHitboxes(screen, w.root)

	s := w.stats
	ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %.0f  %s: %d/%d pairs, %d cells",
		ebiten.ActualTPS(), s.Kind, s.Accepted, s.Candidates, s.Cells))
}

func drawHitboxes(screen *ebiten.Image, n *Node) {
	if n == nil || !n.Exists {
		return
	}
	if n.Type == NodeTypeContainer {
		for _, m := range n.members {
			drawHitboxes(screen, m)
		}
		return
	}
	x, y := float32(n.X), float32(n.Y)
	w, h := float32(n.Width), float32(n.Height)
	if n.Immovable {
		vector.FillRect(screen, x, y, w, h, debugImmovableFill, false)
	}
	vector.StrokeRect(screen, x, y, w, h, 1, n.Color.toRGBA(), false)

	if n.Touching.Has(DirLeft) {
		vector.StrokeLine(screen, x, y, x, y+h, 2, debugTouchingColor, false)
	}
	if n.Touching.Has(DirRight) {
		vector.StrokeLine(screen, x+w, y, x+w, y+h, 2, debugTouchingColor, false)
	}
	if n.Touching.Has(DirUp) {
		vector.StrokeLine(screen, x, y, x+w, y, 2, debugTouchingColor, false)
	}
	if n.Touching.Has(DirDown) {
		vector.StrokeLine(screen, x, y+h, x+w, y+h, 2, debugTouchingColor, false)
	}
}

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// TPS is the fixed update rate. Zero keeps ebiten's default of 60.
	TPS int
	// Debug enables World debug mode for the session.
	Debug bool
}

// Run opens a window and drives w with a fixed time step of 1/TPS seconds:
// Update moves every node and calls the update func, Draw renders DrawDebug.
// It blocks until the window closes or the update func returns an error.
func Run(w *World, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		b := w.Bounds()
		cfg.Width, cfg.Height = int(b.Width), int(b.Height)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if cfg.Debug {
		w.SetDebugMode(true)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(&gameShell{world: w, width: cfg.Width, height: cfg.Height})
}

// gameShell adapts a World to ebiten.Game.
type gameShell struct {
	world         *World
	width, height int
}

func (g *gameShell) Update() error {
	return g.world.Update(1.0 / float64(ebiten.TPS()))
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	g.world.DrawDebug(screen)
}

func (g *gameShell) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
