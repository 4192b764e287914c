package arcade

import (
	"fmt"

	"go.uber.org/zap"
)

// debugLog writes the stats of one top-level query at debug level.
func (w *World) debugLog(stats QueryStats) {
	if !w.debug {
		return
	}
	pool := w.arena.stats()
	w.log.Debug("query",
		zap.Stringer("kind", stats.Kind),
		zap.Int("candidates", stats.Candidates),
		zap.Int("accepted", stats.Accepted),
		zap.Int("cells", stats.Cells),
		zap.Duration("took", stats.Duration),
		zap.Int("cached_trees", pool.CachedTrees),
		zap.Int("cached_lists", pool.CachedLists),
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode; in release mode callers
// skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("arcade debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if container nesting exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		pkgLog.Warn("tree depth exceeds threshold",
			zap.String("node", n.Name),
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth))
	}
}

// debugCheckChildCount warns if a container has more than 1000 members.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.members) > debugMaxChildCount {
		pkgLog.Warn("container has too many members",
			zap.String("node", n.Name),
			zap.Int("members", len(n.members)),
			zap.Int("threshold", debugMaxChildCount))
	}
}
