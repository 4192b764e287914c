package arcade

import (
	"math"

	"go.uber.org/zap"
)

const (
	listA = 0
	listB = 1
)

// queryState carries everything one Overlap call shares across the cells of
// its tree: the object being inserted, the active bucket, the callbacks and
// the counters. Each nesting depth of World queries owns one.
type queryState struct {
	world     *World
	kind      EventKind
	divisions int
	min       float64

	object                               *Node
	objLeft, objTop, objRight, objBottom float64
	list                                 int
	useBothLists                         bool

	notify  NotifyFunc
	process ProcessFunc

	candidates int
	accepted   int
	cells      int
	cellBuf    *[]Rect
}

// accept records an accepted pair and fans it out to the notify callback and
// the entity store.
func (q *queryState) accept(a, b *Node) {
	q.accepted++
	if q.notify != nil {
		q.notify(a, b)
	}
	if q.world != nil && q.world.store != nil {
		q.world.store.EmitEvent(CollisionEvent{
			Kind:      q.kind,
			A:         a.EntityID,
			B:         b.EntityID,
			NameA:     a.Name,
			NameB:     b.Name,
			TouchingA: a.Touching,
			TouchingB: b.Touching,
		})
	}
}

// quadTree is one cell of the broad-phase partition. Cells live only for the
// duration of a single query and come from a quadArena.
type quadTree struct {
	Rect

	exists       bool
	canSubdivide bool

	headA, tailA *listNode
	headB, tailB *listNode

	nw, ne, se, sw *quadTree

	leftEdge, rightEdge, topEdge, bottomEdge float64
	halfWidth, halfHeight                    float64
	midpointX, midpointY                     float64

	arena *quadArena
	q     *queryState
	next  *quadTree // free-list link
}

// reset prepares t to cover r. A child copies its parent's buckets so that
// objects that stopped at a coarser cell are still compared against objects
// that descend into this one.
func (t *quadTree) reset(a *quadArena, r Rect, parent *quadTree, q *queryState) {
	t.exists = true
	t.Rect = r
	t.arena = a
	t.q = q

	t.headA = a.acquireList()
	t.tailA = t.headA
	t.headB = a.acquireList()
	t.tailB = t.headB

	if parent != nil {
		for it := parent.headA; it != nil; it = it.next {
			if it.object != nil {
				t.push(&t.tailA, it.object)
			}
		}
		for it := parent.headB; it != nil; it = it.next {
			if it.object != nil {
				t.push(&t.tailB, it.object)
			}
		}
	} else {
		q.min = math.Floor((r.Width + r.Height) / float64(2*q.divisions))
	}
	t.canSubdivide = r.Width > q.min || r.Height > q.min

	t.nw, t.ne, t.se, t.sw = nil, nil, nil, nil
	t.leftEdge = r.X
	t.rightEdge = r.X + r.Width
	t.halfWidth = r.Width / 2
	t.midpointX = t.leftEdge + t.halfWidth
	t.topEdge = r.Y
	t.bottomEdge = r.Y + r.Height
	t.halfHeight = r.Height / 2
	t.midpointY = t.topEdge + t.halfHeight
}

// push appends obj at *tail, growing the bucket when the tail is occupied.
func (t *quadTree) push(tail **listNode, obj *Node) {
	if (*tail).object != nil {
		l := t.arena.acquireList()
		(*tail).next = l
		*tail = l
	}
	(*tail).object = obj
}

// load inserts both operand sets. A nil b selects a single-set query.
func (t *quadTree) load(a, b *Node) {
	t.add(a, listA)
	if b != nil {
		t.add(b, listB)
		t.q.useBothLists = true
	} else {
		t.q.useBothLists = false
	}
}

// add flattens containers and inserts every existing, colliding leaf into
// the given bucket.
func (t *quadTree) add(n *Node, list int) {
	if n == nil {
		pkgLog.Warn("ignoring nil node passed to the broad-phase")
		return
	}
	t.q.list = list
	if n.Type == NodeTypeContainer {
		for _, m := range n.members {
			if m != nil && m.Exists {
				t.add(m, list)
			}
		}
		return
	}
	if !n.Exists || n.AllowCollisions == DirNone {
		return
	}
	q := t.q
	q.object = n
	q.objLeft = n.X
	q.objTop = n.Y
	q.objRight = n.X + n.Width
	q.objBottom = n.Y + n.Height
	t.addObject()
}

func (t *quadTree) child(slot **quadTree, x, y float64) *quadTree {
	if *slot == nil {
		*slot = t.arena.acquireTree(Rect{X: x, Y: y, Width: t.halfWidth, Height: t.halfHeight}, t, t.q)
	}
	return *slot
}

// addObject descends with q.object until it is stored in every cell it
// belongs to.
func (t *quadTree) addObject() {
	q := t.q
	// The cell cannot split further, or the object covers the whole cell.
	if !t.canSubdivide ||
		(t.leftEdge >= q.objLeft && t.rightEdge <= q.objRight &&
			t.topEdge >= q.objTop && t.bottomEdge <= q.objBottom) {
		t.addToList()
		return
	}

	// Fully inside a single quadrant.
	if q.objLeft > t.leftEdge && q.objRight < t.midpointX {
		if q.objTop > t.topEdge && q.objBottom < t.midpointY {
			t.child(&t.nw, t.leftEdge, t.topEdge).addObject()
			return
		}
		if q.objTop > t.midpointY && q.objBottom < t.bottomEdge {
			t.child(&t.sw, t.leftEdge, t.midpointY).addObject()
			return
		}
	}
	if q.objLeft > t.midpointX && q.objRight < t.rightEdge {
		if q.objTop > t.topEdge && q.objBottom < t.midpointY {
			t.child(&t.ne, t.midpointX, t.topEdge).addObject()
			return
		}
		if q.objTop > t.midpointY && q.objBottom < t.bottomEdge {
			t.child(&t.se, t.midpointX, t.midpointY).addObject()
			return
		}
	}

	// Straddles a boundary: insert into every quadrant it overlaps.
	if q.objRight > t.leftEdge && q.objLeft < t.midpointX && q.objBottom > t.topEdge && q.objTop < t.midpointY {
		t.child(&t.nw, t.leftEdge, t.topEdge).addObject()
	}
	if q.objRight > t.midpointX && q.objLeft < t.rightEdge && q.objBottom > t.topEdge && q.objTop < t.midpointY {
		t.child(&t.ne, t.midpointX, t.topEdge).addObject()
	}
	if q.objRight > t.midpointX && q.objLeft < t.rightEdge && q.objBottom > t.midpointY && q.objTop < t.bottomEdge {
		t.child(&t.se, t.midpointX, t.midpointY).addObject()
	}
	if q.objRight > t.leftEdge && q.objLeft < t.midpointX && q.objBottom > t.midpointY && q.objTop < t.bottomEdge {
		t.child(&t.sw, t.leftEdge, t.midpointY).addObject()
	}
}

// addToList stores q.object in this cell's active bucket and in every child
// that already exists.
func (t *quadTree) addToList() {
	if t.q.list == listA {
		t.push(&t.tailA, t.q.object)
	} else {
		t.push(&t.tailB, t.q.object)
	}
	if !t.canSubdivide {
		return
	}
	if t.nw != nil {
		t.nw.addToList()
	}
	if t.ne != nil {
		t.ne.addToList()
	}
	if t.se != nil {
		t.se.addToList()
	}
	if t.sw != nil {
		t.sw.addToList()
	}
}

// execute compares this cell's buckets, then recurses NW, NE, SE, SW.
// Returns true if any pair in the subtree was accepted.
func (t *quadTree) execute() bool {
	q := t.q
	q.cells++
	if q.cellBuf != nil {
		*q.cellBuf = append(*q.cellBuf, t.Rect)
	}

	processed := false
	if t.headA.object != nil {
		for it := t.headA; it != nil; it = it.next {
			obj := it.object
			var check *listNode
			if q.useBothLists {
				check = t.headB
			} else {
				check = it.next
			}
			if obj != nil && obj.Exists && obj.AllowCollisions != DirNone &&
				check != nil && check.object != nil && t.overlapNode(obj, check) {
				processed = true
			}
		}
	}

	if t.nw != nil && t.nw.execute() {
		processed = true
	}
	if t.ne != nil && t.ne.execute() {
		processed = true
	}
	if t.se != nil && t.se.execute() {
		processed = true
	}
	if t.sw != nil && t.sw.execute() {
		processed = true
	}
	return processed
}

// overlapNode tests obj's swept hull against every entry from it onward.
func (t *quadTree) overlapNode(obj *Node, it *listNode) bool {
	q := t.q
	hull := obj.Hull()
	processed := false
	for ; it != nil; it = it.next {
		check := it.object
		if check == nil || check == obj || !check.Exists || check.AllowCollisions == DirNone {
			continue
		}
		q.candidates++
		if !hull.Overlaps(check.Hull()) {
			continue
		}
		if q.process == nil || q.process(obj, check) {
			processed = true
			q.accept(obj, check)
		}
	}
	return processed
}

// debugDepth returns the depth of the deepest cell below t (t itself is 1).
func (t *quadTree) debugDepth() int {
	d := 0
	for _, c := range [4]*quadTree{t.nw, t.ne, t.se, t.sw} {
		if c != nil {
			d = max(d, c.debugDepth())
		}
	}
	return d + 1
}

// logTree dumps the cell layout at debug level.
func (t *quadTree) logTree(log *zap.Logger) {
	log.Debug("quadtree built",
		zap.Int("cells", t.q.cells),
		zap.Int("depth", t.debugDepth()),
		zap.Float64("min_cell", t.q.min))
}
