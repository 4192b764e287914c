package arcade

// ComputeVelocity applies acceleration or drag to velocity over dt and clamps
// the result to [-max, max]. Acceleration takes precedence over drag; drag
// never pushes a velocity past zero. A zero max disables the clamp.
func ComputeVelocity(velocity, acceleration, drag, max, dt float64) float64 {
	if acceleration != 0 {
		velocity += acceleration * dt
	} else if drag != 0 {
		dragDelta := drag * dt
		switch {
		case velocity-dragDelta > 0:
			velocity -= dragDelta
		case velocity+dragDelta < 0:
			velocity += dragDelta
		default:
			velocity = 0
		}
	}
	if velocity != 0 && max != 0 {
		if velocity > max {
			velocity = max
		} else if velocity < -max {
			velocity = -max
		}
	}
	return velocity
}

// Update advances the node by dt seconds.
//
// A container first flushes its staged changes, then updates every member
// that exists and is active. An entity records Last, integrates its motion
// when Moves is set, and rolls Touching over into WasTouching so the next
// collision pass starts from a clean mask.
func (n *Node) Update(dt float64) {
	if globalDebug {
		debugCheckDisposed(n, "Update")
	}
	if n.Type == NodeTypeContainer {
		n.Flush()
		for _, m := range n.members {
			if m != nil && m.Exists && m.Active {
				m.Update(dt)
			}
		}
		return
	}

	n.Last = Vec2{X: n.X, Y: n.Y}
	if n.Moves {
		n.updateMotion(dt)
	}
	n.WasTouching = n.Touching
	n.Touching = DirNone
}

// updateMotion integrates velocity with a half-step before and after the
// position update, which keeps accelerated motion frame-rate independent.
func (n *Node) updateMotion(dt float64) {
	half := 0.5 * (ComputeVelocity(n.Velocity.X, n.Acceleration.X, n.Drag.X, n.MaxVelocity.X, dt) - n.Velocity.X)
	n.Velocity.X += half
	dx := n.Velocity.X * dt
	n.Velocity.X += half
	n.X += dx

	half = 0.5 * (ComputeVelocity(n.Velocity.Y, n.Acceleration.Y, n.Drag.Y, n.MaxVelocity.Y, dt) - n.Velocity.Y)
	n.Velocity.Y += half
	dy := n.Velocity.Y * dt
	n.Velocity.Y += half
	n.Y += dy
}
