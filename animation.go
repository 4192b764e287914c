package arcade

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 2 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenSize,
// TweenVelocity) and call Update(dt) each tick. If the target node is
// disposed, the group stops immediately.
//
// There is no global animation manager; users call Update themselves,
// usually from the World's update func before Collide.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. If the target node has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenPosition animates node.X and node.Y. Last is left alone, so the node's
// swept hull covers the tweened step and a tweened platform still pushes
// whatever it runs into. Mark the node Immovable to make it a carrier.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Y), float32(toY), duration, fn)
	g.fields[0] = &node.X
	g.fields[1] = &node.Y
	return g
}

// TweenSize animates node.Width and node.Height.
func TweenSize(node *Node, toW, toH float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.Width), float32(toW), duration, fn)
	g.tweens[1] = gween.New(float32(node.Height), float32(toH), duration, fn)
	g.fields[0] = &node.Width
	g.fields[1] = &node.Height
	return g
}

// TweenVelocity animates node.Velocity, e.g. to ramp a conveyor up to speed.
// Collisions that change the velocity mid-tween are overwritten on the next
// Update.
func TweenVelocity(node *Node, toVX, toVY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.Velocity.X), float32(toVX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Velocity.Y), float32(toVY), duration, fn)
	g.fields[0] = &node.Velocity.X
	g.fields[1] = &node.Velocity.Y
	return g
}
