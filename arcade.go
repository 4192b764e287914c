package arcade

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Only the debug overlay consumes it.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default debug tint.
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA for ebiten.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, velocities and sizes.
type Vec2 struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X      float64 `toml:"x" yaml:"x"`
	Y      float64 `toml:"y" yaml:"y"`
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Right returns X + Width.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns Y + Height.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Overlaps reports whether r and other share interior area. Rectangles that
// only touch along an edge do not overlap; this is the test every collision
// path uses.
func (r Rect) Overlaps(other Rect) bool {
	return r.X+r.Width > other.X &&
		r.X < other.X+other.Width &&
		r.Y+r.Height > other.Y &&
		r.Y < other.Y+other.Height
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(r.Right(), other.Right()) - x,
		Height: max(r.Bottom(), other.Bottom()) - y,
	}
}

// Direction is a bitmask of cardinal directions used for allowed collision
// sides and touching flags.
type Direction uint16

const (
	DirNone  Direction = 0x0000
	DirLeft  Direction = 0x0001
	DirRight Direction = 0x0010
	DirUp    Direction = 0x0100
	DirDown  Direction = 0x1000

	DirCeiling = DirUp
	DirFloor   = DirDown
	DirWall    = DirLeft | DirRight
	DirAny     = DirLeft | DirRight | DirUp | DirDown
)

// Has reports whether any bit of d2 is set in d.
func (d Direction) Has(d2 Direction) bool {
	return d&d2 != DirNone
}

var directionNames = []struct {
	dir  Direction
	name string
}{
	{DirLeft, "left"},
	{DirRight, "right"},
	{DirUp, "up"},
	{DirDown, "down"},
}

// String returns a "|"-joined list of set directions, "none" or "any".
func (d Direction) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirAny:
		return "any"
	}
	var parts []string
	for _, dn := range directionNames {
		if d&dn.dir != 0 {
			parts = append(parts, dn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseDirection parses a direction name. Accepted names are left, right, up,
// down, ceiling, floor, wall, any and none, optionally joined with "|".
func ParseDirection(s string) (Direction, error) {
	var d Direction
	for _, part := range strings.Split(s, "|") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "left":
			d |= DirLeft
		case "right":
			d |= DirRight
		case "up", "ceiling":
			d |= DirUp
		case "down", "floor":
			d |= DirDown
		case "wall":
			d |= DirWall
		case "any":
			d |= DirAny
		case "none", "":
		default:
			return DirNone, fmt.Errorf("arcade: unknown direction %q", part)
		}
	}
	return d, nil
}

// NodeType is the closed discriminator of a Node.
type NodeType uint8

const (
	NodeTypeEntity    NodeType = iota // collidable leaf
	NodeTypeContainer                 // ordered group of nodes, no box of its own
	NodeTypeTilemap                   // reserved leaf kind; cannot be separated
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeEntity:
		return "entity"
	case NodeTypeContainer:
		return "container"
	case NodeTypeTilemap:
		return "tilemap"
	default:
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
}

// ErrTilemapCollision is the panic value raised when a tilemap node reaches
// the separation or touching-flag code. Tilemaps can be broad-phased but have
// no resolution path.
var ErrTilemapCollision = errors.New("arcade: tilemap collision resolution is not implemented")

// NotifyFunc is called for every accepted overlapping pair.
type NotifyFunc func(a, b *Node)

// ProcessFunc decides whether an overlapping pair is accepted. Collide uses
// the separation algorithm as its ProcessFunc.
type ProcessFunc func(a, b *Node) bool

// ProcessAll returns a ProcessFunc that accepts a pair only when every non-nil
// fn accepts it. Evaluation stops at the first rejection.
func ProcessAll(fns ...ProcessFunc) ProcessFunc {
	return func(a, b *Node) bool {
		for _, fn := range fns {
			if fn != nil && !fn(a, b) {
				return false
			}
		}
		return true
	}
}
