package arcade

import "testing"

func TestComputeVelocity(t *testing.T) {
	tests := []struct {
		name                    string
		v, accel, drag, max, dt float64
		want                    float64
	}{
		{"acceleration", 0, 10, 0, 0, 1, 10},
		{"acceleration beats drag", 5, 10, 100, 0, 0.5, 10},
		{"drag slows positive", 10, 0, 4, 0, 1, 6},
		{"drag slows negative", -10, 0, 4, 0, 1, -6},
		{"drag stops at zero", 3, 0, 4, 0, 1, 0},
		{"drag stops negative at zero", -3, 0, 4, 0, 1, 0},
		{"clamped to max", 50, 100, 0, 60, 1, 60},
		{"clamped to -max", -50, -100, 0, 60, 1, -60},
		{"zero max disables clamp", 50, 100, 0, 0, 1, 150},
		{"untouched", 7, 0, 0, 0, 1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeVelocity(tt.v, tt.accel, tt.drag, tt.max, tt.dt); got != tt.want {
				t.Errorf("ComputeVelocity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdate_ConstantVelocity(t *testing.T) {
	n := NewEntity("n", 10, 20, 8, 8)
	n.Velocity = Vec2{30, -60}
	n.Update(0.5)
	if n.Last != (Vec2{10, 20}) {
		t.Errorf("Last = %v, want (10, 20)", n.Last)
	}
	if n.X != 25 || n.Y != -10 {
		t.Errorf("position = (%v, %v), want (25, -10)", n.X, n.Y)
	}
}

func TestUpdate_HalfStepIntegration(t *testing.T) {
	n := NewEntity("n", 0, 0, 8, 8)
	n.Acceleration.Y = 10
	n.Update(1)
	// Half of the velocity change applies before the move.
	if n.Y != 5 {
		t.Errorf("Y = %v, want 5", n.Y)
	}
	if n.Velocity.Y != 10 {
		t.Errorf("Velocity.Y = %v, want 10", n.Velocity.Y)
	}
}

func TestUpdate_ImmobileStillRecordsLast(t *testing.T) {
	n := NewEntity("n", 0, 0, 8, 8)
	n.Moves = false
	n.Velocity.X = 100
	n.X = 5
	n.Update(1)
	if n.X != 5 || n.Last.X != 5 {
		t.Errorf("X=%v Last.X=%v, want 5 and 5", n.X, n.Last.X)
	}
}

func TestUpdate_TouchingRollover(t *testing.T) {
	n := NewEntity("n", 0, 0, 8, 8)
	n.Touching = DirLeft | DirDown
	n.Update(0)
	if n.Touching != DirNone {
		t.Errorf("Touching = %v, want none", n.Touching)
	}
	if n.WasTouching != DirLeft|DirDown {
		t.Errorf("WasTouching = %v, want left|down", n.WasTouching)
	}

	n.Touching = DirDown
	if !n.JustTouching(DirDown) {
		t.Error("JustTouching(down) = false, want true")
	}
	if n.JustTouching(DirLeft) {
		t.Error("JustTouching(left) = true, want false")
	}
}

func TestUpdate_ContainerSkipsInactive(t *testing.T) {
	g := NewContainer("g")
	active := NewEntity("active", 0, 0, 8, 8)
	inactive := NewEntity("inactive", 0, 0, 8, 8)
	dead := NewEntity("dead", 0, 0, 8, 8)
	for _, n := range []*Node{active, inactive, dead} {
		n.Velocity.X = 10
		g.AddChild(n)
	}
	inactive.Active = false
	dead.Kill()

	g.Update(1)
	if active.X != 10 {
		t.Errorf("active.X = %v, want 10", active.X)
	}
	if inactive.X != 0 || dead.X != 0 {
		t.Errorf("skipped members moved: inactive=%v dead=%v", inactive.X, dead.X)
	}
}

func TestUpdate_MaxVelocityClamp(t *testing.T) {
	n := NewEntity("n", 0, 0, 8, 8)
	n.MaxVelocity.X = 20
	n.Acceleration.X = 100
	n.Update(1)
	if n.Velocity.X != 20 {
		t.Errorf("Velocity.X = %v, want 20", n.Velocity.X)
	}
	if n.X != 10 {
		t.Errorf("X = %v, want 10", n.X)
	}
}
