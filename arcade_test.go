package arcade

import (
	"image/color"
	"testing"
)

func TestRectOverlaps(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"inside", Rect{2, 2, 2, 2}, true},
		{"partial", Rect{5, 5, 10, 10}, true},
		{"edge contact", Rect{10, 0, 5, 5}, false},
		{"corner contact", Rect{10, 10, 5, 5}, false},
		{"disjoint", Rect{20, 20, 5, 5}, false},
		{"covering", Rect{-5, -5, 30, 30}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(r); got != tt.want {
				t.Errorf("reverse Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 1, Y: 2, Width: 3, Height: 4}
	if r.Right() != 4 || r.Bottom() != 6 {
		t.Errorf("Right/Bottom = %v/%v, want 4/6", r.Right(), r.Bottom())
	}
	if !r.Contains(4, 6) || r.Contains(0, 2) {
		t.Error("Contains should include edges only")
	}
	u := r.Union(Rect{X: -1, Y: 5, Width: 2, Height: 10})
	if u != (Rect{X: -1, Y: 2, Width: 5, Height: 13}) {
		t.Errorf("Union = %v", u)
	}
}

func TestDirectionString(t *testing.T) {
	tests := map[Direction]string{
		DirNone:            "none",
		DirAny:             "any",
		DirLeft:            "left",
		DirLeft | DirUp:    "left|up",
		DirWall:            "left|right",
		DirFloor | DirLeft: "left|down",
	}
	for d, want := range tests {
		if got := d.String(); got != want {
			t.Errorf("Direction(%#x).String() = %q, want %q", uint16(d), got, want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"", DirNone},
		{"none", DirNone},
		{"any", DirAny},
		{"floor", DirDown},
		{"ceiling", DirUp},
		{"Wall", DirWall},
		{"floor | wall", DirDown | DirWall},
		{"up|down", DirUp | DirDown},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if err != nil {
			t.Errorf("ParseDirection(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseDirection("left|sideways"); err == nil {
		t.Error("expected an error for an unknown name")
	}
}

func TestDirectionRoundTrip(t *testing.T) {
	for d := DirNone; d <= DirAny; d++ {
		if d&^DirAny != 0 {
			continue
		}
		got, err := ParseDirection(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v", d.String(), got, err, d)
		}
	}
}

func TestNodeTypeString(t *testing.T) {
	tests := map[NodeType]string{
		NodeTypeEntity:    "entity",
		NodeTypeContainer: "container",
		NodeTypeTilemap:   "tilemap",
		NodeType(42):      "NodeType(42)",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestProcessAll(t *testing.T) {
	calls := 0
	yes := func(_, _ *Node) bool { calls++; return true }
	no := func(_, _ *Node) bool { calls++; return false }

	if !ProcessAll()(nil, nil) {
		t.Error("empty ProcessAll should accept")
	}
	if !ProcessAll(yes, nil, yes)(nil, nil) || calls != 2 {
		t.Errorf("ProcessAll(yes, nil, yes): calls = %d, want 2", calls)
	}
	calls = 0
	if ProcessAll(yes, no, yes)(nil, nil) {
		t.Error("ProcessAll should reject when any fn rejects")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want evaluation to stop at the rejection", calls)
	}
}

func TestColorToRGBA(t *testing.T) {
	tests := []struct {
		in   Color
		want color.RGBA
	}{
		{ColorWhite, color.RGBA{255, 255, 255, 255}},
		{Color{1, 0, 0, 0.5}, color.RGBA{127, 0, 0, 127}},
		{Color{2, -1, 0, 1}, color.RGBA{255, 0, 0, 255}},
	}
	for _, tt := range tests {
		if got := tt.in.toRGBA(); got != tt.want {
			t.Errorf("%v.toRGBA() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
