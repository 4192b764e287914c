package arcade

// --- Broad-phase pools ---

// listNode is a pooled singly linked cell referencing one node. A bucket
// always owns at least its head cell; a head with a nil object is an empty
// bucket.
type listNode struct {
	object *Node
	next   *listNode
	exists bool
}

// quadArena owns the free-lists for quadtree cells and bucket cells. One arena
// belongs to one World and is only touched from the update goroutine, so no
// locking is needed. After warmup a query allocates nothing; on exhaustion the
// arena simply allocates a fresh record.
type quadArena struct {
	freeTrees *quadTree
	freeLists *listNode

	cachedTrees    int
	cachedLists    int
	allocatedTrees int
	allocatedLists int
}

// PoolStats reports the state of a World's broad-phase pools.
type PoolStats struct {
	CachedTrees    int // quadtree cells waiting on the free-list
	CachedLists    int // bucket cells waiting on the free-list
	AllocatedTrees int // quadtree cells ever allocated
	AllocatedLists int // bucket cells ever allocated
}

func (a *quadArena) stats() PoolStats {
	return PoolStats{
		CachedTrees:    a.cachedTrees,
		CachedLists:    a.cachedLists,
		AllocatedTrees: a.allocatedTrees,
		AllocatedLists: a.allocatedLists,
	}
}

// acquireList pops a bucket cell off the free-list or allocates one.
func (a *quadArena) acquireList() *listNode {
	if l := a.freeLists; l != nil {
		a.freeLists = l.next
		a.cachedLists--
		l.exists = true
		l.next = nil
		return l
	}
	a.allocatedLists++
	return &listNode{exists: true}
}

// releaseList returns l and every cell chained after it. References are
// cleared before a cell re-enters the free-list so the pool never keeps a
// node alive.
func (a *quadArena) releaseList(l *listNode) {
	for l != nil && l.exists {
		next := l.next
		l.object = nil
		l.exists = false
		l.next = a.freeLists
		a.freeLists = l
		a.cachedLists++
		l = next
	}
}

// acquireTree pops a quadtree cell off the free-list (or allocates one) and
// resets it to cover r. A nil parent starts a new query rooted at r.
func (a *quadArena) acquireTree(r Rect, parent *quadTree, q *queryState) *quadTree {
	var t *quadTree
	if a.freeTrees != nil {
		t = a.freeTrees
		a.freeTrees = t.next
		t.next = nil
		a.cachedTrees--
	} else {
		t = &quadTree{}
		a.allocatedTrees++
	}
	t.reset(a, r, parent, q)
	return t
}

// releaseTree returns t, its buckets and its whole subtree to the pools.
func (a *quadArena) releaseTree(t *quadTree) {
	a.releaseList(t.headA)
	a.releaseList(t.headB)
	for _, child := range [4]*quadTree{t.nw, t.ne, t.se, t.sw} {
		if child != nil {
			a.releaseTree(child)
		}
	}
	*t = quadTree{next: a.freeTrees}
	a.freeTrees = t
	a.cachedTrees++
}

// clear drops every cached record. Chains are unlinked so the collector can
// reclaim them independently.
func (a *quadArena) clear() {
	for t := a.freeTrees; t != nil; {
		next := t.next
		t.next = nil
		t = next
	}
	for l := a.freeLists; l != nil; {
		next := l.next
		l.next = nil
		l = next
	}
	a.freeTrees = nil
	a.freeLists = nil
	a.cachedTrees = 0
	a.cachedLists = 0
}
