package arcade

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EntityStore is the interface for optional ECS integration.
// When set on a World, every accepted pair is forwarded as a CollisionEvent.
type EntityStore interface {
	EmitEvent(event CollisionEvent)
}

// EventKind identifies which query produced a CollisionEvent.
type EventKind uint8

const (
	EventOverlap EventKind = iota // pair accepted by Overlap
	EventCollide                  // pair separated by Collide
)

func (k EventKind) String() string {
	switch k {
	case EventOverlap:
		return "overlap"
	case EventCollide:
		return "collide"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// CollisionEvent carries one accepted pair for the ECS bridge.
type CollisionEvent struct {
	Kind      EventKind
	A, B      uint32 // EntityID of each node
	NameA     string
	NameB     string
	TouchingA Direction
	TouchingB Direction
}

// QueryStats describes the most recent top-level query.
type QueryStats struct {
	Kind       EventKind
	Candidates int           // hull tests performed
	Accepted   int           // pairs passed to notify
	Cells      int           // quadtree cells visited
	Duration   time.Duration // only measured in debug mode
}

// World owns the node tree, the broad-phase pools and the collision settings.
// A World is driven from a single goroutine.
type World struct {
	root *Node

	bounds    Rect
	divisions int
	bias      float64

	arena   quadArena
	queries []*queryState
	depth   int

	store      EntityStore
	debug      bool
	log        *zap.Logger
	stats      QueryStats
	debugCells []Rect
	updateFunc func(dt float64) error

	// ClearColor fills the screen before DrawDebug. Zero leaves it untouched.
	ClearColor Color

	separateFn ProcessFunc
}

// NewWorld creates a world with a pre-created root container. Invalid values
// in cfg fall back to their defaults.
func NewWorld(cfg Config) *World {
	def := DefaultConfig()
	w := &World{
		root:      NewContainer("root"),
		bounds:    cfg.World.Bounds,
		divisions: cfg.World.Divisions,
		bias:      cfg.World.SeparateBias,
		log:       zap.NewNop(),
	}
	if w.bounds.Width <= 0 || w.bounds.Height <= 0 {
		w.bounds = def.World.Bounds
	}
	if w.divisions < 1 {
		w.divisions = def.World.Divisions
	}
	if w.bias < 0 {
		w.bias = def.World.SeparateBias
	}
	w.separateFn = func(a, b *Node) bool {
		return separate(a, b, w.bias)
	}
	if cfg.Debug {
		w.SetDebugMode(true)
	}
	return w
}

// Root returns the world's root container.
func (w *World) Root() *Node {
	return w.root
}

// Bounds returns the area covered by the broad-phase.
func (w *World) Bounds() Rect {
	return w.bounds
}

// SetBounds changes the area covered by the broad-phase. Objects entirely
// outside the bounds are never reported.
func (w *World) SetBounds(r Rect) {
	if r.Width <= 0 || r.Height <= 0 {
		w.log.Warn("ignoring empty world bounds",
			zap.Float64("width", r.Width), zap.Float64("height", r.Height))
		return
	}
	w.bounds = r
}

// Divisions returns how many times the world can be halved per axis (roughly).
func (w *World) Divisions() int {
	return w.divisions
}

// SetDivisions sets the subdivision depth. Values below 1 are ignored.
func (w *World) SetDivisions(n int) {
	if n < 1 {
		w.log.Warn("ignoring quadtree divisions below 1", zap.Int("divisions", n))
		return
	}
	w.divisions = n
}

// SeparateBias returns the bias Collide and World.Separate use.
func (w *World) SeparateBias() float64 {
	return w.bias
}

// SetSeparateBias sets the bias Collide and World.Separate use.
func (w *World) SetSeparateBias(bias float64) {
	w.bias = max(bias, 0)
}

// SetLogger installs the logger used by the world and by node operations.
// A nil logger silences both.
func (w *World) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	w.log = log
	pkgLog = log
}

// Logger returns the world's logger.
func (w *World) Logger() *zap.Logger {
	return w.log
}

// SetEntityStore sets the optional ECS bridge.
func (w *World) SetEntityStore(store EntityStore) {
	w.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, per-query
// stats are timed and logged at debug level, and DrawDebug shows the cells of
// the last query.
func (w *World) SetDebugMode(enabled bool) {
	w.debug = enabled
	globalDebug = enabled
	if !enabled {
		w.debugCells = nil
	}
}

// globalDebug mirrors the most recently set World debug flag so that node
// operations (which lack a World pointer) can check it cheaply. Only valid
// with a single World; multiple Worlds with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// pkgLog is the logger node operations and the broad-phase report through.
// It follows the last World.SetLogger call, like globalDebug.
var pkgLog = zap.NewNop()

// SetUpdateFunc registers fn to run at the end of every Update, after all
// nodes have moved. This is where a game calls Collide and Overlap.
func (w *World) SetUpdateFunc(fn func(dt float64) error) {
	w.updateFunc = fn
}

// Update flushes staged container changes, advances every node by dt seconds
// and then runs the update func.
func (w *World) Update(dt float64) error {
	w.root.Update(dt)
	if w.updateFunc != nil {
		return w.updateFunc(dt)
	}
	return nil
}

// Separate resolves a and b with the world's bias. It is the ProcessFunc
// Collide uses.
func (w *World) Separate(a, b *Node) bool {
	return separate(a, b, w.bias)
}

// Overlap reports every pair of nodes, one from a and one from b, whose swept
// hulls overlap and which process accepts (a nil process accepts all). notify
// runs for each accepted pair. A nil a means the root container; b == nil or
// b == a tests a against itself. Returns true if any pair was accepted.
//
// notify and process may call Overlap or Collide again and may stage
// container changes with Add and Remove.
func (w *World) Overlap(a, b *Node, notify NotifyFunc, process ProcessFunc) bool {
	return w.query(EventOverlap, a, b, notify, process)
}

// Collide is Overlap with the separation algorithm as the processing step:
// every overlapping pair is pushed apart and notify runs for the ones that
// were actually separated.
func (w *World) Collide(a, b *Node, notify NotifyFunc) bool {
	return w.query(EventCollide, a, b, notify, w.separateFn)
}

// CollideFunc is Collide with an extra filter that runs before separation.
// Pairs rejected by process are neither separated nor reported. A nil process
// behaves like Collide.
func (w *World) CollideFunc(a, b *Node, notify NotifyFunc, process ProcessFunc) bool {
	if process == nil {
		return w.Collide(a, b, notify)
	}
	return w.query(EventCollide, a, b, notify, ProcessAll(process, w.separateFn))
}

func (w *World) query(kind EventKind, a, b *Node, notify NotifyFunc, process ProcessFunc) bool {
	if a == nil {
		a = w.root
	}
	if b == a {
		b = nil
	}
	if w.depth == 0 {
		flushTree(a)
		flushTree(b)
	}

	q := w.pushQuery(kind, notify, process)
	defer w.popQuery()

	var start time.Time
	if w.debug {
		start = time.Now()
	}

	t := w.arena.acquireTree(w.bounds, nil, q)
	t.load(a, b)
	result := t.execute()

	if w.debug {
		t.logTree(w.log)
	}
	w.arena.releaseTree(t)

	if q == w.queries[0] {
		w.stats = QueryStats{
			Kind:       kind,
			Candidates: q.candidates,
			Accepted:   q.accepted,
			Cells:      q.cells,
		}
		if w.debug {
			w.stats.Duration = time.Since(start)
			w.debugLog(w.stats)
		}
	}
	return result
}

// pushQuery hands out the query state for the next nesting depth.
func (w *World) pushQuery(kind EventKind, notify NotifyFunc, process ProcessFunc) *queryState {
	if w.depth == len(w.queries) {
		w.queries = append(w.queries, &queryState{})
	}
	q := w.queries[w.depth]
	w.depth++

	*q = queryState{
		world:     w,
		kind:      kind,
		divisions: w.divisions,
		notify:    notify,
		process:   process,
	}
	if w.debug && w.depth == 1 {
		w.debugCells = w.debugCells[:0]
		q.cellBuf = &w.debugCells
	}
	return q
}

func (w *World) popQuery() {
	w.depth--
	q := w.queries[w.depth]
	q.object = nil
	q.notify = nil
	q.process = nil
	q.cellBuf = nil
}

// Stats returns the counters of the most recent top-level query.
func (w *World) Stats() QueryStats {
	return w.stats
}

// PoolStats reports the broad-phase pool sizes.
func (w *World) PoolStats() PoolStats {
	return w.arena.stats()
}

// ClearPools drops every cached quadtree and bucket record. It must not be
// called from inside a query callback.
func (w *World) ClearPools() {
	if w.depth > 0 {
		panic("arcade: ClearPools called during a query")
	}
	w.arena.clear()
}
