package arcade

import "math"

// DefaultSeparateBias is the extra overlap, on top of both bodies' movement
// this tick, that separation still resolves. Anything deeper is treated as
// having started inside the other body and is left alone.
const DefaultSeparateBias = 4.0

// Separate resolves an overlap between a and b on both axes, X first. Both
// axes are always evaluated. Returns true if either axis was corrected.
//
// Separate panics with ErrTilemapCollision if either node is a tilemap and at
// least one of them is movable.
func Separate(a, b *Node) bool {
	return separate(a, b, DefaultSeparateBias)
}

// SeparateX resolves the horizontal overlap between a and b.
func SeparateX(a, b *Node) bool {
	return separateX(a, b, DefaultSeparateBias)
}

// SeparateY resolves the vertical overlap between a and b. A body that lands
// on a moving carrier is dragged along with the carrier's horizontal motion
// when its CollisionXDrag is set.
func SeparateY(a, b *Node) bool {
	return separateY(a, b, DefaultSeparateBias)
}

// UpdateTouchingFlags sets the Touching bits of a and b as Separate would,
// without moving them or changing their velocity. Any depth of overlap
// counts.
func UpdateTouchingFlags(a, b *Node) bool {
	x := UpdateTouchingFlagsX(a, b)
	y := UpdateTouchingFlagsY(a, b)
	return x || y
}

// UpdateTouchingFlagsX is the horizontal half of UpdateTouchingFlags.
func UpdateTouchingFlagsX(a, b *Node) bool {
	checkTilemap(a, b)
	return computeOverlapX(a, b, false, 0) != 0
}

// UpdateTouchingFlagsY is the vertical half of UpdateTouchingFlags.
func UpdateTouchingFlagsY(a, b *Node) bool {
	checkTilemap(a, b)
	return computeOverlapY(a, b, false, 0) != 0
}

func separate(a, b *Node, bias float64) bool {
	x := separateX(a, b, bias)
	y := separateY(a, b, bias)
	return x || y
}

func checkTilemap(a, b *Node) {
	if a.Type == NodeTypeTilemap || b.Type == NodeTypeTilemap {
		panic(ErrTilemapCollision)
	}
}

func separateX(a, b *Node, bias float64) bool {
	if a.Immovable && b.Immovable {
		return false
	}
	checkTilemap(a, b)

	overlap := computeOverlapX(a, b, true, bias)
	if overlap == 0 {
		return false
	}

	v1 := a.Velocity.X
	v2 := b.Velocity.X
	switch {
	case !a.Immovable && !b.Immovable:
		overlap *= 0.5
		a.X -= overlap
		b.X += overlap
		a.Velocity.X, b.Velocity.X = exchange(v1, v2, a.Mass, b.Mass, a.Elasticity, b.Elasticity)
	case !a.Immovable:
		a.X -= overlap
		a.Velocity.X = v2 - v1*a.Elasticity
	case !b.Immovable:
		b.X += overlap
		b.Velocity.X = v1 - v2*b.Elasticity
	}
	return true
}

func separateY(a, b *Node, bias float64) bool {
	if a.Immovable && b.Immovable {
		return false
	}
	checkTilemap(a, b)

	overlap := computeOverlapY(a, b, true, bias)
	if overlap == 0 {
		return false
	}

	d1 := a.Y - a.Last.Y
	d2 := b.Y - b.Last.Y
	v1 := a.Velocity.Y
	v2 := b.Velocity.Y
	switch {
	case !a.Immovable && !b.Immovable:
		overlap *= 0.5
		a.Y -= overlap
		b.Y += overlap
		a.Velocity.Y, b.Velocity.Y = exchange(v1, v2, a.Mass, b.Mass, a.Elasticity, b.Elasticity)
	case !a.Immovable:
		a.Y -= overlap
		a.Velocity.Y = v2 - v1*a.Elasticity
		// Ride along with the carrier when standing on it.
		if a.CollisionXDrag && b.Active && b.Moves && d1 > d2 {
			a.X += b.X - b.Last.X
		}
	case !b.Immovable:
		b.Y += overlap
		b.Velocity.Y = v1 - v2*b.Elasticity
		if b.CollisionXDrag && a.Active && a.Moves && d1 < d2 {
			b.X += a.X - a.Last.X
		}
	}
	return true
}

// exchange returns the post-impact velocities of two movable bodies. Each body
// takes the momentum-equivalent speed of the other, then keeps only the
// elastic share of its deviation from the pair's average.
func exchange(v1, v2, m1, m2, e1, e2 float64) (float64, float64) {
	nv1 := math.Sqrt(v2*v2*m2/m1) * sign(v2)
	nv2 := math.Sqrt(v1*v1*m1/m2) * sign(v1)
	avg := (nv1 + nv2) * 0.5
	nv1 -= avg
	nv2 -= avg
	return avg + nv1*e1, avg + nv2*e2
}

// sign returns 1 for positive v and -1 otherwise. Callers multiply it by a
// magnitude that is zero whenever v is zero.
func sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	return -1
}

// computeOverlapX returns the signed horizontal penetration of a into b and
// sets the Touching bits when the overlap is accepted. The body that moved
// further right this tick is treated as the leading one. With checkMax set,
// overlaps deeper than both movements plus bias are rejected.
func computeOverlapX(a, b *Node, checkMax bool, bias float64) float64 {
	d1 := a.X - a.Last.X
	d2 := b.X - b.Last.X
	if d1 == d2 {
		return 0
	}

	h1 := Rect{X: a.X - max(d1, 0), Y: a.Last.Y, Width: a.Width + abs(d1), Height: a.Height}
	h2 := Rect{X: b.X - max(d2, 0), Y: b.Last.Y, Width: b.Width + abs(d2), Height: b.Height}
	if !h1.Overlaps(h2) {
		return 0
	}

	maxOverlap := 0.0
	if checkMax {
		maxOverlap = abs(d1) + abs(d2) + bias
	}

	var overlap float64
	if d1 > d2 {
		overlap = a.X + a.Width - b.X
		if (checkMax && overlap > maxOverlap) || !a.AllowCollisions.Has(DirRight) || !b.AllowCollisions.Has(DirLeft) {
			return 0
		}
		a.Touching |= DirRight
		b.Touching |= DirLeft
	} else {
		overlap = -(b.X + b.Width - a.X)
		if (checkMax && -overlap > maxOverlap) || !a.AllowCollisions.Has(DirLeft) || !b.AllowCollisions.Has(DirRight) {
			return 0
		}
		a.Touching |= DirLeft
		b.Touching |= DirRight
	}
	return overlap
}

// computeOverlapY is computeOverlapX for the vertical axis. Down is the
// leading direction.
func computeOverlapY(a, b *Node, checkMax bool, bias float64) float64 {
	d1 := a.Y - a.Last.Y
	d2 := b.Y - b.Last.Y
	if d1 == d2 {
		return 0
	}

	h1 := Rect{X: a.X, Y: a.Y - max(d1, 0), Width: a.Width, Height: a.Height + abs(d1)}
	h2 := Rect{X: b.X, Y: b.Y - max(d2, 0), Width: b.Width, Height: b.Height + abs(d2)}
	if !h1.Overlaps(h2) {
		return 0
	}

	maxOverlap := 0.0
	if checkMax {
		maxOverlap = abs(d1) + abs(d2) + bias
	}

	var overlap float64
	if d1 > d2 {
		overlap = a.Y + a.Height - b.Y
		if (checkMax && overlap > maxOverlap) || !a.AllowCollisions.Has(DirDown) || !b.AllowCollisions.Has(DirUp) {
			return 0
		}
		a.Touching |= DirDown
		b.Touching |= DirUp
	} else {
		overlap = -(b.Y + b.Height - a.Y)
		if (checkMax && -overlap > maxOverlap) || !a.AllowCollisions.Has(DirUp) || !b.AllowCollisions.Has(DirDown) {
			return 0
		}
		a.Touching |= DirUp
		b.Touching |= DirDown
	}
	return overlap
}
