package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/arcade"
	"github.com/phanxgames/arcade/scenario"
)

var (
	styleMovable   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleImmovable = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleTouching  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// terminalView draws the world scaled to the terminal, one cell per block
// of world units.
type terminalView struct {
	screen tcell.Screen
	paused bool
}

func runTUI(sim *simulation, watcher *scenario.Watcher, dt float64) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	v := &terminalView{screen: screen}

	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
				if ev.Key() == tcell.KeyRune {
					switch ev.Rune() {
					case ' ':
						v.paused = !v.paused
					case 's':
						if v.paused {
							if err := sim.step(dt); err != nil {
								return err
							}
						}
					case 'r':
						sim.reload("manual")
					}
				}
			case *tcell.EventResize:
				screen.Sync()
			}
			v.draw(sim)

		case <-ticker.C:
			if watcher != nil {
				drainWatcher(sim, watcher)
			}
			if !v.paused {
				if err := sim.step(dt); err != nil {
					return err
				}
			}
			v.draw(sim)
		}
	}
}

func (v *terminalView) draw(sim *simulation) {
	v.screen.Clear()
	cols, rows := v.screen.Size()
	if cols < 1 || rows < 2 {
		v.screen.Show()
		return
	}
	bounds := sim.world.Bounds()
	sx := bounds.Width / float64(cols)
	sy := bounds.Height / float64(rows-1)

	visit(sim.world.Root(), func(n *arcade.Node) {
		if !n.Exists {
			return
		}
		style, ch := styleMovable, '█'
		if n.Immovable {
			style, ch = styleImmovable, '▓'
		}
		if n.Touching != arcade.DirNone {
			style = styleTouching
		}
		x0 := int((n.X - bounds.X) / sx)
		y0 := int((n.Y - bounds.Y) / sy)
		x1 := max(int((n.X+n.Width-bounds.X)/sx), x0+1)
		y1 := max(int((n.Y+n.Height-bounds.Y)/sy), y0+1)
		for y := max(y0, 0); y < min(y1, rows-1); y++ {
			for x := max(x0, 0); x < min(x1, cols); x++ {
				v.screen.SetContent(x, y, ch, nil, style)
			}
		}
	})

	st := sim.world.Stats()
	state := "running"
	if v.paused {
		state = "paused"
	}
	status := fmt.Sprintf(" %s  tick %d  %s  pairs %d/%d  cells %d  [space] pause [s] step [r] reload [q] quit",
		sim.inst.Scenario.Name, sim.tick, state, st.Accepted, st.Candidates, st.Cells)
	for x := 0; x < cols; x++ {
		ch := ' '
		if x < len(status) {
			ch = rune(status[x])
		}
		v.screen.SetContent(x, rows-1, ch, nil, styleStatus)
	}
	v.screen.Show()
}
