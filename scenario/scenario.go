// Package scenario loads collision scenarios from YAML and builds them into
// an arcade.World. A scenario lists bodies, nested groups of bodies, tweens
// that drive moving platforms, and the collide/overlap rules to run each
// tick. Rules may carry an inline Lua predicate.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/arcade"
)

// Scenario is the decoded form of a scenario file.
type Scenario struct {
	Name   string              `yaml:"name"`
	World  *arcade.WorldConfig `yaml:"world"`
	Bodies []BodySpec          `yaml:"bodies"`
	Groups []GroupSpec         `yaml:"groups"`
	Tweens []TweenSpec         `yaml:"tweens"`
	Rules  []RuleSpec          `yaml:"rules"`
}

// BodySpec describes one entity. Pointer fields fall back to the node
// defaults when omitted.
type BodySpec struct {
	Name         string        `yaml:"name"`
	X            float64       `yaml:"x"`
	Y            float64       `yaml:"y"`
	Width        float64       `yaml:"width"`
	Height       float64       `yaml:"height"`
	Velocity     arcade.Vec2   `yaml:"velocity"`
	Acceleration arcade.Vec2   `yaml:"acceleration"`
	Drag         arcade.Vec2   `yaml:"drag"`
	MaxVelocity  *arcade.Vec2  `yaml:"max_velocity"`
	Mass         *float64      `yaml:"mass"`
	Elasticity   float64       `yaml:"elasticity"`
	Immovable    bool          `yaml:"immovable"`
	Moves        *bool         `yaml:"moves"`
	XDrag        *bool         `yaml:"x_drag"`
	Allow        string        `yaml:"allow"` // e.g. "any", "up", "left|right"
	Health       *float64      `yaml:"health"`
	EntityID     uint32        `yaml:"entity_id"`
	Color        *arcade.Color `yaml:"color"`
}

// GroupSpec describes a container. Groups nest.
type GroupSpec struct {
	Name    string      `yaml:"name"`
	MaxSize int         `yaml:"max_size"`
	Bodies  []BodySpec  `yaml:"bodies"`
	Groups  []GroupSpec `yaml:"groups"`
}

// TweenSpec moves or resizes a body over time.
type TweenSpec struct {
	Target   string      `yaml:"target"`
	Property string      `yaml:"property"` // position (default), size or velocity
	To       arcade.Vec2 `yaml:"to"`
	Duration float32     `yaml:"duration"` // seconds
	Ease     string      `yaml:"ease"`
	Yoyo     bool        `yaml:"yoyo"` // run back and forth forever
}

// RuleKind selects the query a rule runs.
type RuleKind string

const (
	RuleCollide RuleKind = "collide"
	RuleOverlap RuleKind = "overlap"
)

// RuleSpec runs one query per tick between A and B. An empty A means the
// whole world; an empty B tests A against itself.
type RuleSpec struct {
	Name       string   `yaml:"name"`
	Kind       RuleKind `yaml:"kind"`
	A          string   `yaml:"a"`
	B          string   `yaml:"b"`
	Script     string   `yaml:"script"`      // inline Lua defining process(a, b)
	ScriptFile string   `yaml:"script_file"` // path to a Lua file, relative to the working directory
	Kill       string   `yaml:"kill"`        // a, b or both: kill accepted nodes
	Damage     float64  `yaml:"damage"`      // Hurt the b node of every accepted pair
}

// Parse decodes a scenario and checks that it is self-consistent.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: unmarshal: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate reports duplicate or missing names, unknown rule kinds, bad
// directions and references to bodies that do not exist.
func (sc *Scenario) Validate() error {
	var errs []error
	names := make(map[string]bool)

	var visitBody func(b BodySpec)
	visitBody = func(b BodySpec) {
		switch {
		case b.Name == "":
			errs = append(errs, errors.New("scenario: body without a name"))
		case names[b.Name]:
			errs = append(errs, fmt.Errorf("scenario: duplicate name %q", b.Name))
		}
		names[b.Name] = true
		if b.Width < 0 || b.Height < 0 {
			errs = append(errs, fmt.Errorf("scenario: body %q has a negative size", b.Name))
		}
		if b.Mass != nil && *b.Mass <= 0 {
			errs = append(errs, fmt.Errorf("scenario: body %q mass must be > 0", b.Name))
		}
		if b.Allow != "" {
			if _, err := arcade.ParseDirection(b.Allow); err != nil {
				errs = append(errs, fmt.Errorf("scenario: body %q: %w", b.Name, err))
			}
		}
	}
	var visitGroup func(g GroupSpec)
	visitGroup = func(g GroupSpec) {
		switch {
		case g.Name == "":
			errs = append(errs, errors.New("scenario: group without a name"))
		case names[g.Name]:
			errs = append(errs, fmt.Errorf("scenario: duplicate name %q", g.Name))
		}
		names[g.Name] = true
		for _, b := range g.Bodies {
			visitBody(b)
		}
		for _, sub := range g.Groups {
			visitGroup(sub)
		}
	}
	for _, b := range sc.Bodies {
		visitBody(b)
	}
	for _, g := range sc.Groups {
		visitGroup(g)
	}

	for _, tw := range sc.Tweens {
		if !names[tw.Target] {
			errs = append(errs, fmt.Errorf("scenario: tween target %q not found", tw.Target))
		}
		switch tw.Property {
		case "", "position", "size", "velocity":
		default:
			errs = append(errs, fmt.Errorf("scenario: tween %q: unknown property %q", tw.Target, tw.Property))
		}
		if tw.Duration <= 0 {
			errs = append(errs, fmt.Errorf("scenario: tween %q: duration must be > 0", tw.Target))
		}
		if _, ok := easings[tw.Ease]; !ok {
			errs = append(errs, fmt.Errorf("scenario: tween %q: unknown ease %q", tw.Target, tw.Ease))
		}
	}

	for i, r := range sc.Rules {
		label := r.label(i)
		switch r.Kind {
		case RuleCollide, RuleOverlap:
		default:
			errs = append(errs, fmt.Errorf("scenario: rule %s: unknown kind %q", label, r.Kind))
		}
		if r.A != "" && !names[r.A] {
			errs = append(errs, fmt.Errorf("scenario: rule %s: %q not found", label, r.A))
		}
		if r.B != "" && !names[r.B] {
			errs = append(errs, fmt.Errorf("scenario: rule %s: %q not found", label, r.B))
		}
		if r.Script != "" && r.ScriptFile != "" {
			errs = append(errs, fmt.Errorf("scenario: rule %s: script and script_file are exclusive", label))
		}
		switch r.Kill {
		case "", "a", "b", "both":
		default:
			errs = append(errs, fmt.Errorf("scenario: rule %s: kill must be a, b or both", label))
		}
	}
	return errors.Join(errs...)
}

func (r RuleSpec) label(i int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", i)
}
