package scenario

import (
	"fmt"

	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/phanxgames/arcade"
	"github.com/phanxgames/arcade/script"
)

var easings = map[string]ease.TweenFunc{
	"":             ease.Linear,
	"linear":       ease.Linear,
	"in_out_quad":  ease.InOutQuad,
	"in_out_sine":  ease.InOutSine,
	"in_out_cubic": ease.InOutCubic,
	"out_cubic":    ease.OutCubic,
	"out_bounce":   ease.OutBounce,
	"out_elastic":  ease.OutElastic,
}

// Instance is a scenario built into a World. It installs itself as the
// World's update func: every World.Update advances the tweens and then runs
// the rules in file order.
type Instance struct {
	Scenario *Scenario

	world  *arcade.World
	log    *zap.Logger
	nodes  map[string]*arcade.Node
	tweens []*tween
	rules  []*rule
}

type tween struct {
	spec  TweenSpec
	node  *arcade.Node
	from  arcade.Vec2
	to    arcade.Vec2
	fn    ease.TweenFunc
	group *arcade.TweenGroup
}

type rule struct {
	name    string
	kind    RuleKind
	a, b    *arcade.Node
	kill    string
	damage  float64
	filter  *script.Filter
	process arcade.ProcessFunc
	notify  arcade.NotifyFunc
	hits    int
}

// Build adds the scenario's nodes to w's root and wires its tweens and rules
// into w's update func. A nil log discards output.
func Build(w *arcade.World, sc *Scenario, log *zap.Logger) (*Instance, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if wc := sc.World; wc != nil {
		if wc.Bounds.Width > 0 && wc.Bounds.Height > 0 {
			w.SetBounds(wc.Bounds)
		}
		if wc.Divisions > 0 {
			w.SetDivisions(wc.Divisions)
		}
		if wc.SeparateBias > 0 {
			w.SetSeparateBias(wc.SeparateBias)
		}
	}

	inst := &Instance{
		Scenario: sc,
		world:    w,
		log:      log.With(zap.String("scenario", sc.Name)),
		nodes:    make(map[string]*arcade.Node),
	}
	root := w.Root()
	for _, b := range sc.Bodies {
		root.AddChild(inst.buildBody(b))
	}
	for _, g := range sc.Groups {
		root.AddChild(inst.buildGroup(g))
	}

	for _, ts := range sc.Tweens {
		node := inst.nodes[ts.Target]
		tw := &tween{spec: ts, node: node, from: tweenValue(node, ts.Property), to: ts.To, fn: easings[ts.Ease]}
		tw.group = newTweenGroup(node, ts.Property, tw.to, ts.Duration, tw.fn)
		inst.tweens = append(inst.tweens, tw)
	}

	for i, rs := range sc.Rules {
		r, err := inst.buildRule(i, rs)
		if err != nil {
			inst.Close()
			return nil, err
		}
		inst.rules = append(inst.rules, r)
	}

	w.SetUpdateFunc(inst.tick)
	inst.log.Info("scenario built",
		zap.Int("nodes", len(inst.nodes)),
		zap.Int("tweens", len(inst.tweens)),
		zap.Int("rules", len(inst.rules)))
	return inst, nil
}

func (inst *Instance) buildBody(b BodySpec) *arcade.Node {
	n := arcade.NewEntity(b.Name, b.X, b.Y, b.Width, b.Height)
	n.Velocity = b.Velocity
	n.Acceleration = b.Acceleration
	n.Drag = b.Drag
	if b.MaxVelocity != nil {
		n.MaxVelocity = *b.MaxVelocity
	}
	if b.Mass != nil {
		n.Mass = *b.Mass
	}
	n.Elasticity = b.Elasticity
	n.Immovable = b.Immovable
	if b.Moves != nil {
		n.Moves = *b.Moves
	}
	if b.XDrag != nil {
		n.CollisionXDrag = *b.XDrag
	}
	if b.Allow != "" {
		// Validated in Validate.
		n.AllowCollisions, _ = arcade.ParseDirection(b.Allow)
	}
	if b.Health != nil {
		n.Health = *b.Health
	}
	if b.Color != nil {
		n.Color = *b.Color
	}
	n.EntityID = b.EntityID
	inst.nodes[b.Name] = n
	return n
}

func (inst *Instance) buildGroup(g GroupSpec) *arcade.Node {
	c := arcade.NewContainer(g.Name)
	c.MaxSize = g.MaxSize
	for _, b := range g.Bodies {
		c.AddChild(inst.buildBody(b))
	}
	for _, sub := range g.Groups {
		c.AddChild(inst.buildGroup(sub))
	}
	inst.nodes[g.Name] = c
	return c
}

func (inst *Instance) buildRule(i int, rs RuleSpec) (*rule, error) {
	r := &rule{
		name:   rs.label(i),
		kind:   rs.Kind,
		a:      inst.nodes[rs.A],
		b:      inst.nodes[rs.B],
		kill:   rs.Kill,
		damage: rs.Damage,
	}

	var err error
	switch {
	case rs.Script != "":
		r.filter, err = script.NewFilter(r.name, rs.Script, inst.log)
	case rs.ScriptFile != "":
		r.filter, err = script.LoadFilter(rs.ScriptFile, inst.log)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario: rule %s: %w", r.name, err)
	}

	var filter arcade.ProcessFunc
	if r.filter != nil {
		filter = r.filter.Process
	}
	r.process = filter
	r.notify = func(a, b *arcade.Node) {
		r.hits++
		switch r.kill {
		case "a":
			a.Kill()
		case "b":
			b.Kill()
		case "both":
			a.Kill()
			b.Kill()
		}
		if r.damage > 0 {
			b.Hurt(r.damage)
		}
		if r.filter != nil {
			r.filter.Notify(a, b)
		}
	}
	return r, nil
}

// tick is the World update func.
func (inst *Instance) tick(dt float64) error {
	for _, tw := range inst.tweens {
		tw.group.Update(float32(dt))
		if tw.group.Done && tw.spec.Yoyo {
			tw.from, tw.to = tw.to, tw.from
			tw.group = newTweenGroup(tw.node, tw.spec.Property, tw.to, tw.spec.Duration, tw.fn)
		}
	}
	for _, r := range inst.rules {
		if r.kind == RuleCollide {
			inst.world.CollideFunc(r.a, r.b, r.notify, r.process)
		} else {
			inst.world.Overlap(r.a, r.b, r.notify, r.process)
		}
	}
	return nil
}

// Step advances the world by dt seconds.
func (inst *Instance) Step(dt float64) error {
	return inst.world.Update(dt)
}

// World returns the world the scenario was built into.
func (inst *Instance) World() *arcade.World {
	return inst.world
}

// Node returns the body or group with the given name, or nil.
func (inst *Instance) Node(name string) *arcade.Node {
	return inst.nodes[name]
}

// Hits returns how many pairs the named rule has accepted so far.
func (inst *Instance) Hits(name string) int {
	for _, r := range inst.rules {
		if r.name == name {
			return r.hits
		}
	}
	return 0
}

// Close releases Lua filters and detaches the instance from the World.
// The nodes stay in the tree.
func (inst *Instance) Close() {
	for _, r := range inst.rules {
		if r.filter != nil {
			r.filter.Close()
		}
	}
	inst.rules = nil
	inst.world.SetUpdateFunc(nil)
}

func tweenValue(n *arcade.Node, property string) arcade.Vec2 {
	switch property {
	case "size":
		return arcade.Vec2{X: n.Width, Y: n.Height}
	case "velocity":
		return n.Velocity
	default:
		return arcade.Vec2{X: n.X, Y: n.Y}
	}
}

func newTweenGroup(n *arcade.Node, property string, to arcade.Vec2, duration float32, fn ease.TweenFunc) *arcade.TweenGroup {
	switch property {
	case "size":
		return arcade.TweenSize(n, to.X, to.Y, duration, fn)
	case "velocity":
		return arcade.TweenVelocity(n, to.X, to.Y, duration, fn)
	default:
		return arcade.TweenPosition(n, to.X, to.Y, duration, fn)
	}
}
