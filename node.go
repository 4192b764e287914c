package arcade

import (
	"fmt"

	"go.uber.org/zap"
)

// nodeIDCounter is a plain counter; a World is driven from one goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the single record type for collidable entities, containers and
// tilemaps. A flat struct keyed by Type avoids interface dispatch in the
// broad-phase and lets containers nest arbitrarily.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy (containers only)
	Parent        *Node
	members       []*Node
	pendingAdd    []*Node
	pendingRemove []*Node

	// Box. The collision box is [X, X+Width) x [Y, Y+Height) and is never rotated.
	X, Y          float64
	Width, Height float64
	// Last is the position at the start of the current tick.
	Last Vec2

	// Motion
	Velocity     Vec2
	Acceleration Vec2
	Drag         Vec2
	MaxVelocity  Vec2

	// Collision response
	Mass            float64
	Elasticity      float64
	AllowCollisions Direction
	Touching        Direction
	WasTouching     Direction
	Immovable       bool
	Moves           bool
	// CollisionXDrag makes the node ride along with the horizontal movement of
	// an immovable carrier it lands on.
	CollisionXDrag bool

	// Lifecycle
	Exists bool
	Alive  bool
	Active bool
	Health float64

	// MaxSize caps a container used with Recycle. Zero means unbounded.
	MaxSize int
	marker  int

	// Metadata
	UserData any
	EntityID uint32
	Color    Color // debug overlay tint

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Exists = true
	n.Alive = true
	n.Active = true
	n.Moves = true
	n.CollisionXDrag = true
	n.Mass = 1
	n.Health = 1
	n.AllowCollisions = DirAny
	n.MaxVelocity = Vec2{X: 10000, Y: 10000}
	n.Color = ColorWhite
}

// NewEntity creates a collidable leaf at (x, y) with the given size.
func NewEntity(name string, x, y, width, height float64) *Node {
	n := &Node{Name: name, Type: NodeTypeEntity, X: x, Y: y, Width: width, Height: height}
	nodeDefaults(n)
	n.Last = Vec2{X: x, Y: y}
	return n
}

// NewContainer creates an empty container.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewTilemap creates a tilemap placeholder. It takes part in Overlap like an
// entity but Separate and UpdateTouchingFlags panic with ErrTilemapCollision.
func NewTilemap(name string, x, y, width, height float64) *Node {
	n := &Node{Name: name, Type: NodeTypeTilemap, X: x, Y: y, Width: width, Height: height}
	nodeDefaults(n)
	n.Immovable = true
	n.Last = Vec2{X: x, Y: y}
	return n
}

// IsContainer reports whether the node groups other nodes.
func (n *Node) IsContainer() bool {
	return n.Type == NodeTypeContainer
}

// --- Box helpers ---

// AABB returns the current collision box.
func (n *Node) AABB() Rect {
	return Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// Hull returns the swept hull: the smallest rectangle covering the box at
// Last and at the current position.
func (n *Node) Hull() Rect {
	dx := n.X - n.Last.X
	dy := n.Y - n.Last.Y
	return Rect{
		X:      min(n.X, n.Last.X),
		Y:      min(n.Y, n.Last.Y),
		Width:  n.Width + abs(dx),
		Height: n.Height + abs(dy),
	}
}

// MidPoint returns the center of the collision box.
func (n *Node) MidPoint() Vec2 {
	return Vec2{X: n.X + n.Width*0.5, Y: n.Y + n.Height*0.5}
}

// SetPosition moves the node without touching Last.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
}

// SetSize changes the collision box size.
func (n *Node) SetSize(width, height float64) {
	n.Width = width
	n.Height = height
}

// Reset teleports the node: position and Last are both set to (x, y), velocity
// is zeroed and the node is revived.
func (n *Node) Reset(x, y float64) {
	n.X = x
	n.Y = y
	n.Last = Vec2{X: x, Y: y}
	n.Velocity = Vec2{}
	n.Revive()
}

// IsTouching reports whether the node touched anything on the given sides
// during the last collision pass.
func (n *Node) IsTouching(d Direction) bool {
	return n.Touching.Has(d)
}

// JustTouching reports whether the node is touching on d this tick and was
// also touching on d the tick before.
func (n *Node) JustTouching(d Direction) bool {
	return n.IsTouching(d) && n.WasTouching.Has(d)
}

// Solid reports whether the node collides from any side.
func (n *Node) Solid() bool {
	return n.AllowCollisions.Has(DirAny)
}

// SetSolid toggles AllowCollisions between DirAny and DirNone.
func (n *Node) SetSolid(solid bool) {
	if solid {
		n.AllowCollisions = DirAny
	} else {
		n.AllowCollisions = DirNone
	}
}

// --- Lifecycle ---

// Kill marks the node (and every member of a container) as dead and
// non-existent. Dead nodes are skipped by Update and by the broad-phase.
func (n *Node) Kill() {
	for _, m := range n.members {
		m.Kill()
	}
	for _, m := range n.pendingAdd {
		m.Kill()
	}
	n.Alive = false
	n.Exists = false
}

// Revive undoes Kill.
func (n *Node) Revive() {
	for _, m := range n.members {
		m.Revive()
	}
	for _, m := range n.pendingAdd {
		m.Revive()
	}
	n.Alive = true
	n.Exists = true
}

// Hurt subtracts damage from Health and kills the node at zero.
func (n *Node) Hurt(damage float64) {
	n.Health -= damage
	if n.Health <= 0 {
		n.Kill()
	}
}

// --- Container manipulation ---

func (n *Node) mustContainer(op string) {
	if n.Type != NodeTypeContainer {
		panic(fmt.Sprintf("arcade: %s on non-container node %q", op, n.Name))
	}
}

// Add stages child for insertion. The child becomes a member on the next
// Flush, which World runs outside of any active query, so Add is safe to call
// from collision callbacks. A nil child is logged and ignored.
func (n *Node) Add(child *Node) *Node {
	n.mustContainer("Add")
	if child == nil {
		pkgLog.Warn("cannot add a nil node to a container", zap.String("container", n.Name))
		return nil
	}
	if globalDebug {
		debugCheckDisposed(n, "Add (container)")
		debugCheckDisposed(child, "Add (child)")
	}
	if indexOf(n.pendingAdd, child) >= 0 {
		return child
	}
	if i := indexOf(n.pendingRemove, child); i >= 0 {
		n.pendingRemove = removeAt(n.pendingRemove, i)
		return child
	}
	if child.Parent == n {
		return child
	}
	n.pendingAdd = append(n.pendingAdd, child)
	return child
}

// Remove stages child for removal on the next Flush. A child still waiting to
// be added is simply dropped from the pending list.
func (n *Node) Remove(child *Node) *Node {
	n.mustContainer("Remove")
	if child == nil {
		pkgLog.Warn("cannot remove a nil node from a container", zap.String("container", n.Name))
		return nil
	}
	if i := indexOf(n.pendingAdd, child); i >= 0 {
		n.pendingAdd = removeAt(n.pendingAdd, i)
		return child
	}
	if child.Parent != n || indexOf(n.pendingRemove, child) >= 0 {
		return child
	}
	n.pendingRemove = append(n.pendingRemove, child)
	return child
}

// Flush applies staged additions, then staged removals. Staged children that
// were disposed in the meantime are dropped. It does not recurse into member
// containers.
func (n *Node) Flush() {
	if len(n.pendingAdd) > 0 {
		for i, child := range n.pendingAdd {
			n.pendingAdd[i] = nil
			if child.disposed {
				continue
			}
			n.attach(child)
		}
		n.pendingAdd = n.pendingAdd[:0]
	}
	if len(n.pendingRemove) > 0 {
		for i, child := range n.pendingRemove {
			n.pendingRemove[i] = nil
			if child.Parent == n {
				n.removeMemberByPtr(child)
				child.Parent = nil
			}
		}
		n.pendingRemove = n.pendingRemove[:0]
	}
}

// HasPending reports whether staged changes are waiting for Flush.
func (n *Node) HasPending() bool {
	return len(n.pendingAdd) > 0 || len(n.pendingRemove) > 0
}

// flushTree flushes n and every container below it.
func flushTree(n *Node) {
	if n == nil || n.Type != NodeTypeContainer {
		return
	}
	n.Flush()
	for _, m := range n.members {
		flushTree(m)
	}
}

// AddChild appends child immediately, bypassing staging. If child already has
// a parent, it is removed from that parent first. Panics if child is an
// ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.mustContainer("AddChild")
	if child == nil {
		pkgLog.Warn("cannot add a nil node to a container", zap.String("container", n.Name))
		return
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	n.attach(child)
}

func (n *Node) attach(child *Node) {
	if isAncestor(child, n) {
		panic("arcade: adding child would create a cycle")
	}
	if child.Parent == n {
		return
	}
	if child.Parent != nil {
		child.Parent.removeMemberByPtr(child)
	}
	child.Parent = n
	n.members = append(n.members, child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child immediately.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child == nil {
		pkgLog.Warn("cannot remove a nil node from a container", zap.String("container", n.Name))
		return
	}
	if child.Parent != n {
		panic("arcade: child's parent is not this node")
	}
	n.removeMemberByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent immediately.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Clear detaches every member and drops staged changes. Members are NOT
// disposed.
func (n *Node) Clear() {
	for i, m := range n.members {
		m.Parent = nil
		n.members[i] = nil
	}
	n.members = n.members[:0]
	clear(n.pendingAdd)
	n.pendingAdd = n.pendingAdd[:0]
	clear(n.pendingRemove)
	n.pendingRemove = n.pendingRemove[:0]
	n.marker = 0
}

// Members returns the current member list. Staged additions are not included.
// The returned slice MUST NOT be mutated by the caller.
func (n *Node) Members() []*Node {
	return n.members
}

// Len returns the number of current members.
func (n *Node) Len() int {
	return len(n.members)
}

// MemberAt returns the member at the given index.
func (n *Node) MemberAt(index int) *Node {
	if index < 0 || index >= len(n.members) {
		panic("arcade: member index out of range")
	}
	return n.members[index]
}

// --- Member queries ---

// FirstAvailable returns the first member that does not exist, or nil.
func (n *Node) FirstAvailable() *Node {
	for _, m := range n.members {
		if m != nil && !m.Exists {
			return m
		}
	}
	return nil
}

// FirstExisting returns the first member that exists, or nil.
func (n *Node) FirstExisting() *Node {
	for _, m := range n.members {
		if m != nil && m.Exists {
			return m
		}
	}
	return nil
}

// FirstAlive returns the first member that exists and is alive, or nil.
func (n *Node) FirstAlive() *Node {
	for _, m := range n.members {
		if m != nil && m.Exists && m.Alive {
			return m
		}
	}
	return nil
}

// FirstDead returns the first member that is not alive, or nil.
func (n *Node) FirstDead() *Node {
	for _, m := range n.members {
		if m != nil && !m.Alive {
			return m
		}
	}
	return nil
}

// CountLiving returns the number of members that exist and are alive.
func (n *Node) CountLiving() int {
	count := 0
	for _, m := range n.members {
		if m != nil && m.Exists && m.Alive {
			count++
		}
	}
	return count
}

// CountDead returns the number of members that are not alive.
func (n *Node) CountDead() int {
	count := 0
	for _, m := range n.members {
		if m != nil && !m.Alive {
			count++
		}
	}
	return count
}

// Recycle returns a reusable member. With MaxSize > 0 the container fills up
// to MaxSize via factory and then hands out existing members in rotation.
// Without MaxSize it revives the first non-existent member, or creates a new
// one via factory. Newly created members are staged with Add. Returns nil if
// nothing can be reused and factory is nil.
func (n *Node) Recycle(factory func() *Node) *Node {
	n.mustContainer("Recycle")
	if n.MaxSize > 0 {
		if len(n.members)+len(n.pendingAdd) < n.MaxSize {
			return n.recycleCreate(factory)
		}
		if len(n.members) == 0 {
			return nil
		}
		if n.marker >= len(n.members) {
			n.marker = 0
		}
		m := n.members[n.marker]
		n.marker++
		if n.marker >= n.MaxSize {
			n.marker = 0
		}
		m.Revive()
		return m
	}
	if m := n.FirstAvailable(); m != nil {
		m.Revive()
		return m
	}
	return n.recycleCreate(factory)
}

func (n *Node) recycleCreate(factory func() *Node) *Node {
	if factory == nil {
		return nil
	}
	return n.Add(factory())
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all members, including staged additions.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, m := range n.members {
		m.Parent = nil
		m.dispose()
	}
	for _, m := range n.pendingAdd {
		if m.Parent == nil {
			m.dispose()
		}
	}
	n.members = nil
	n.pendingAdd = nil
	n.pendingRemove = nil
	n.Parent = nil
	n.UserData = nil
	n.Exists = false
	n.Alive = false
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeMemberByPtr removes child from n.members without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeMemberByPtr(child *Node) {
	if i := indexOf(n.members, child); i >= 0 {
		n.members = removeAt(n.members, i)
		if n.marker > i {
			n.marker--
		}
	}
}

func indexOf(list []*Node, target *Node) int {
	for i, m := range list {
		if m == target {
			return i
		}
	}
	return -1
}

func removeAt(list []*Node, i int) []*Node {
	copy(list[i:], list[i+1:])
	list[len(list)-1] = nil
	return list[:len(list)-1]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
