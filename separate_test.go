package arcade

import (
	"errors"
	"math/rand"
	"testing"
)

// mover returns a 16x16 entity that moved from (lastX, lastY) to (x, y) this
// tick.
func mover(name string, lastX, lastY, x, y float64) *Node {
	n := NewEntity(name, x, y, 16, 16)
	n.Last = Vec2{lastX, lastY}
	return n
}

func TestSeparate_WallScenario(t *testing.T) {
	a := mover("a", 0, 0, 10, 0)
	a.Velocity.X = 10
	a.Elasticity = 1
	b := mover("b", 20, 0, 20, 0)
	b.Immovable = true
	b.Elasticity = 1

	if !Separate(a, b) {
		t.Fatal("Separate = false, want true")
	}
	if a.X != 4 {
		t.Errorf("a.X = %v, want 4", a.X)
	}
	if a.Velocity.X != -10 {
		t.Errorf("a.Velocity.X = %v, want -10", a.Velocity.X)
	}
	if !a.IsTouching(DirRight) {
		t.Errorf("a.Touching = %v, want right", a.Touching)
	}
	if !b.IsTouching(DirLeft) {
		t.Errorf("b.Touching = %v, want left", b.Touching)
	}
	if b.X != 20 || b.Velocity.X != 0 {
		t.Errorf("immovable b changed: X=%v v=%v", b.X, b.Velocity.X)
	}
}

func TestSeparate_WallBounceScalesByElasticity(t *testing.T) {
	for _, e := range []float64{0, 0.25, 0.5, 1} {
		a := mover("a", 0, 0, 10, 0)
		a.Velocity.X = 10
		a.Elasticity = e
		wall := mover("wall", 20, 0, 20, 0)
		wall.Immovable = true

		SeparateX(a, wall)
		if want := -10 * e; a.Velocity.X != want {
			t.Errorf("e=%v: v' = %v, want %v", e, a.Velocity.X, want)
		}
	}
}

func TestSeparate_WallOnLeft(t *testing.T) {
	wall := mover("wall", 0, 0, 0, 0)
	wall.Immovable = true
	a := mover("a", 30, 0, 12, 0)
	a.Velocity.X = -18
	a.Elasticity = 0.5

	if !SeparateX(a, wall) {
		t.Fatal("SeparateX = false, want true")
	}
	if a.X != 16 {
		t.Errorf("a.X = %v, want 16", a.X)
	}
	if a.Velocity.X != 9 {
		t.Errorf("a.Velocity.X = %v, want 9", a.Velocity.X)
	}
	if !a.IsTouching(DirLeft) || !wall.IsTouching(DirRight) {
		t.Errorf("touching = %v/%v, want left/right", a.Touching, wall.Touching)
	}
}

func TestSeparate_ElasticExchange(t *testing.T) {
	a := mover("a", 0, 0, 10, 0)
	a.Velocity.X = 10
	a.Elasticity = 1
	b := mover("b", 26, 0, 16, 0)
	b.Velocity.X = -10
	b.Elasticity = 1

	if !Separate(a, b) {
		t.Fatal("Separate = false, want true")
	}
	if a.Velocity.X != -10 || b.Velocity.X != 10 {
		t.Errorf("velocities = (%v, %v), want (-10, 10)", a.Velocity.X, b.Velocity.X)
	}
	// 10 units of overlap split evenly.
	if a.X != 5 || b.X != 21 {
		t.Errorf("positions = (%v, %v), want (5, 21)", a.X, b.X)
	}
}

func TestSeparate_InelasticPairMovesTogether(t *testing.T) {
	a := mover("a", 0, 0, 10, 0)
	a.Velocity.X = 10
	b := mover("b", 26, 0, 16, 0)
	b.Velocity.X = -10

	Separate(a, b)
	if a.Velocity.X != 0 || b.Velocity.X != 0 {
		t.Errorf("velocities = (%v, %v), want (0, 0)", a.Velocity.X, b.Velocity.X)
	}
}

// pairSide is the input state of one side of a separation, so the same pair can
// be built twice and resolved in both argument orders.
type pairSide struct {
	x, y, lastX, lastY, w, h float64
	vx, vy, mass, elastic    float64
	immovable                bool
}

func (s pairSide) node(name string) *Node {
	n := NewEntity(name, s.x, s.y, s.w, s.h)
	n.Last = Vec2{s.lastX, s.lastY}
	n.Velocity = Vec2{s.vx, s.vy}
	n.Mass = s.mass
	n.Elasticity = s.elastic
	n.Immovable = s.immovable
	return n
}

func randomSide(r *rand.Rand) pairSide {
	b := pairSide{
		x:       r.Float64() * 24,
		y:       r.Float64() * 24,
		w:       4 + r.Float64()*16,
		h:       4 + r.Float64()*16,
		vx:      r.Float64()*40 - 20,
		vy:      r.Float64()*40 - 20,
		mass:    0.5 + r.Float64()*3,
		elastic: r.Float64(),
	}
	b.lastX = b.x - (r.Float64()*10 - 5)
	b.lastY = b.y - (r.Float64()*10 - 5)
	b.immovable = r.Intn(4) == 0
	return b
}

func TestSeparate_OrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	resolved := 0
	for i := 0; i < 20000; i++ {
		sa, sb := randomSide(r), randomSide(r)

		a1, b1 := sa.node("a"), sb.node("b")
		r1 := Separate(a1, b1)
		a2, b2 := sa.node("a"), sb.node("b")
		r2 := Separate(b2, a2)

		if r1 {
			resolved++
		}
		if r1 != r2 {
			t.Fatalf("case %d: results differ: %v vs %v\na=%+v\nb=%+v", i, r1, r2, sa, sb)
		}
		if a1.X != a2.X || a1.Y != a2.Y || b1.X != b2.X || b1.Y != b2.Y {
			t.Fatalf("case %d: positions differ: a (%v,%v)/(%v,%v) b (%v,%v)/(%v,%v)\na=%+v\nb=%+v",
				i, a1.X, a1.Y, a2.X, a2.Y, b1.X, b1.Y, b2.X, b2.Y, sa, sb)
		}
		if a1.Velocity != a2.Velocity || b1.Velocity != b2.Velocity {
			t.Fatalf("case %d: velocities differ: a %v/%v b %v/%v", i, a1.Velocity, a2.Velocity, b1.Velocity, b2.Velocity)
		}
		if a1.Touching != a2.Touching || b1.Touching != b2.Touching {
			t.Fatalf("case %d: touching differs: a %v/%v b %v/%v", i, a1.Touching, a2.Touching, b1.Touching, b2.Touching)
		}
	}
	if resolved == 0 {
		t.Fatal("no pair was separated; the sweep exercised nothing")
	}
}

func TestSeparate_OrderIndependentAfterEdgeContact(t *testing.T) {
	// The X correction leaves the boxes edge to edge, so the vertical hull
	// test depends on the X correction rounding the same way in both orders.
	sa := pairSide{x: 8.947, y: 14.079, lastX: 6.456, lastY: 14.002, w: 16, h: 16, mass: 1, elastic: 0.5}
	sb := pairSide{x: 0.856, y: 24.574, lastX: -2.756, lastY: 26.855, w: 16, h: 16, mass: 1, elastic: 0.5}

	a1, b1 := sa.node("a"), sb.node("b")
	Separate(a1, b1)
	a2, b2 := sa.node("a"), sb.node("b")
	Separate(b2, a2)

	if a1.X != a2.X || a1.Y != a2.Y || b1.X != b2.X || b1.Y != b2.Y {
		t.Errorf("positions differ: a (%v,%v)/(%v,%v) b (%v,%v)/(%v,%v)",
			a1.X, a1.Y, a2.X, a2.Y, b1.X, b1.Y, b2.X, b2.Y)
	}
	if a1.Touching != a2.Touching || b1.Touching != b2.Touching {
		t.Errorf("touching differs: a %v/%v b %v/%v", a1.Touching, a2.Touching, b1.Touching, b2.Touching)
	}
}

func TestSeparate_EqualDeltasDoNotResolve(t *testing.T) {
	// Both bodies moved by the same amount: no relative motion, so the
	// overlap is left alone even though the boxes intersect.
	a := mover("a", 0, 0, 10, 0)
	b := mover("b", 5, 0, 15, 0)

	if Separate(a, b) {
		t.Error("Separate = true, want false for equal deltas")
	}
	if a.X != 10 || b.X != 15 {
		t.Errorf("positions changed to (%v, %v)", a.X, b.X)
	}
	if a.Touching != DirNone || b.Touching != DirNone {
		t.Errorf("touching = %v/%v, want none", a.Touching, b.Touching)
	}
}

func TestSeparate_ZeroVelocitySign(t *testing.T) {
	a := mover("a", 0, 0, 10, 0)
	a.Velocity.X = 10
	a.Elasticity = 1
	b := mover("b", 20, 0, 20, 0)
	b.Elasticity = 1

	if !SeparateX(a, b) {
		t.Fatal("SeparateX = false, want true")
	}
	// The stationary body contributes a zero magnitude whatever its sign.
	if a.Velocity.X != 0 {
		t.Errorf("a.Velocity.X = %v, want 0", a.Velocity.X)
	}
	if b.Velocity.X != 10 {
		t.Errorf("b.Velocity.X = %v, want 10", b.Velocity.X)
	}
	if a.X != 7 || b.X != 23 {
		t.Errorf("positions = (%v, %v), want (7, 23)", a.X, b.X)
	}
}

func TestSeparate_MassWeighted(t *testing.T) {
	a := mover("a", 0, 0, 10, 0)
	a.Velocity.X = 10
	a.Mass = 4
	a.Elasticity = 1
	b := mover("b", 20, 0, 20, 0)
	b.Mass = 1
	b.Elasticity = 1

	SeparateX(a, b)
	// nv1 = 0, nv2 = sqrt(100*4/1) = 20, average 10.
	if a.Velocity.X != 0 || b.Velocity.X != 20 {
		t.Errorf("velocities = (%v, %v), want (0, 20)", a.Velocity.X, b.Velocity.X)
	}
}

func TestSeparate_BothImmovable(t *testing.T) {
	a := mover("a", 0, 0, 10, 0)
	a.Immovable = true
	b := mover("b", 20, 0, 20, 0)
	b.Immovable = true
	if Separate(a, b) {
		t.Error("Separate = true for two immovable bodies")
	}
	if a.X != 10 || a.Touching != DirNone {
		t.Error("immovable pair should be untouched")
	}
}

func TestSeparate_DeepOverlapRejected(t *testing.T) {
	a := mover("a", 0, 0, 10, 0)
	b := mover("b", 5, 0, 5, 0)
	b.Immovable = true

	// Overlap 21 exceeds 10 + 0 + bias 4.
	if Separate(a, b) {
		t.Error("Separate = true, want false beyond the bias cap")
	}
	if a.X != 10 {
		t.Errorf("a.X = %v, want 10", a.X)
	}
	if !UpdateTouchingFlags(a, b) {
		t.Error("UpdateTouchingFlags = false, want true without the cap")
	}
	if !a.IsTouching(DirRight) || !b.IsTouching(DirLeft) {
		t.Errorf("touching = %v/%v, want right/left", a.Touching, b.Touching)
	}
	if a.X != 10 || a.Velocity.X != 0 {
		t.Error("UpdateTouchingFlags must not move bodies")
	}
}

func TestSeparate_WorldBias(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorld(cfg)
	w.SetSeparateBias(20)

	a := mover("a", 0, 0, 10, 0)
	b := mover("b", 5, 0, 5, 0)
	b.Immovable = true
	if !w.Separate(a, b) {
		t.Fatal("World.Separate with bias 20 = false, want true")
	}
	if a.X != -11 {
		t.Errorf("a.X = %v, want -11", a.X)
	}
}

func TestSeparate_DownOnlyNeverCorrectedSideways(t *testing.T) {
	wall := mover("wall", 20, 0, 20, 0)
	wall.Immovable = true

	// Moving right into the wall.
	a := mover("a", 0, 0, 10, 0)
	a.AllowCollisions = DirDown
	if Separate(a, wall) {
		t.Error("Down-only body corrected on the X axis")
	}
	if a.X != 10 || a.Touching != DirNone {
		t.Errorf("a = (%v, %v) touching %v, want untouched", a.X, a.Y, a.Touching)
	}

	// Moving up into a ceiling.
	ceiling := mover("ceiling", 0, 0, 0, 0)
	ceiling.Immovable = true
	b := mover("b", 0, 26, 0, 12)
	b.AllowCollisions = DirDown
	if Separate(b, ceiling) {
		t.Error("Down-only body corrected upward")
	}
	if b.Y != 12 || b.Touching != DirNone {
		t.Errorf("b.Y = %v touching %v, want untouched", b.Y, b.Touching)
	}

	// Falling onto a floor is allowed.
	floor := mover("floor", 0, 20, 0, 20)
	floor.Immovable = true
	c := mover("c", 0, 0, 0, 10)
	c.AllowCollisions = DirDown
	if !Separate(c, floor) {
		t.Fatal("Down-only body not resolved against the floor")
	}
	if c.Y != 4 || !c.IsTouching(DirDown) || !floor.IsTouching(DirUp) {
		t.Errorf("c.Y = %v touching %v/%v, want 4 down/up", c.Y, c.Touching, floor.Touching)
	}
}

func TestSeparate_OneWayPlatform(t *testing.T) {
	ledge := mover("ledge", 0, 20, 0, 20)
	ledge.Immovable = true
	ledge.AllowCollisions = DirUp

	// Jumping up through the ledge from below.
	a := mover("a", 0, 40, 0, 30)
	if Separate(a, ledge) {
		t.Error("one-way ledge blocked a body from below")
	}
	// Landing on it from above.
	b := mover("b", 0, 0, 0, 8)
	if !Separate(b, ledge) {
		t.Error("one-way ledge did not catch a body from above")
	}
	if b.Y != 4 {
		t.Errorf("b.Y = %v, want 4", b.Y)
	}
}

func TestSeparateY_DragAlong(t *testing.T) {
	carrier := NewEntity("carrier", 104, 50, 64, 12)
	carrier.Last = Vec2{100, 50}
	carrier.Immovable = true

	rider := NewEntity("rider", 110, 36, 16, 16)
	rider.Last = Vec2{110, 30}
	rider.Velocity.Y = 360

	if !SeparateY(rider, carrier) {
		t.Fatal("SeparateY = false, want true")
	}
	if rider.Y != 34 {
		t.Errorf("rider.Y = %v, want 34", rider.Y)
	}
	if rider.X != 114 {
		t.Errorf("rider.X = %v, want 114 (dragged by the carrier)", rider.X)
	}
	if rider.Velocity.Y != 0 {
		t.Errorf("rider.Velocity.Y = %v, want 0", rider.Velocity.Y)
	}
	if !rider.IsTouching(DirFloor) || !carrier.IsTouching(DirCeiling) {
		t.Errorf("touching = %v/%v, want down/up", rider.Touching, carrier.Touching)
	}
}

func TestSeparateY_DragAlongReversedOperands(t *testing.T) {
	carrier := NewEntity("carrier", 104, 50, 64, 12)
	carrier.Last = Vec2{100, 50}
	carrier.Immovable = true
	rider := NewEntity("rider", 110, 36, 16, 16)
	rider.Last = Vec2{110, 30}

	SeparateY(carrier, rider)
	if rider.X != 114 || rider.Y != 34 {
		t.Errorf("rider = (%v, %v), want (114, 34)", rider.X, rider.Y)
	}
}

func TestSeparateY_NoDragWhenDisabled(t *testing.T) {
	carrier := NewEntity("carrier", 104, 50, 64, 12)
	carrier.Last = Vec2{100, 50}
	carrier.Immovable = true
	rider := NewEntity("rider", 110, 36, 16, 16)
	rider.Last = Vec2{110, 30}
	rider.CollisionXDrag = false

	SeparateY(rider, carrier)
	if rider.X != 110 {
		t.Errorf("rider.X = %v, want 110", rider.X)
	}
}

func TestSeparate_TilemapPanics(t *testing.T) {
	tm := NewTilemap("level", 0, 0, 64, 64)
	a := mover("a", 0, 0, 10, 0)

	for name, fn := range map[string]func(){
		"Separate":            func() { Separate(a, tm) },
		"SeparateY":           func() { SeparateY(tm, a) },
		"UpdateTouchingFlags": func() { UpdateTouchingFlags(a, tm) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrTilemapCollision) {
					t.Errorf("panic = %v, want ErrTilemapCollision", r)
				}
			}()
			fn()
		})
	}
}

func TestSeparate_TilemapVsImmovableIsNoop(t *testing.T) {
	tm := NewTilemap("level", 0, 0, 64, 64)
	wall := mover("wall", 0, 0, 0, 0)
	wall.Immovable = true
	if Separate(tm, wall) {
		t.Error("Separate = true for tilemap vs immovable")
	}
}

func TestUpdateTouchingFlags_NoHullOverlap(t *testing.T) {
	a := mover("a", 0, 0, 10, 0)
	b := mover("b", 100, 0, 100, 0)
	if UpdateTouchingFlags(a, b) {
		t.Error("UpdateTouchingFlags = true for distant bodies")
	}
}
