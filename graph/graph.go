// Package graph merges the HIR of every declared terminal into a single
// shared automaton: an arena of Branch, Seq, and Leaf nodes addressed by
// NodeId, built by threading each terminal's HIR through push and
// reconciling overlaps through a priority-ordered merge algebra. Forward
// references (from a still-empty node slot) are parked on a pending queue
// and resolved as soon as the slot they wait on is filled.
package graph

import "github.com/nihei9/lexergen/lexerr"

// pendingEntry is a merge that can't complete yet because `waiting` is
// still an unfilled reserved slot. Once waiting is filled, either
// mergeKnown(has, waiting, into) resumes a normal two-sided merge, or,
// when alias is set, into is filled as a plain copy of waiting's node
// (used to close Loop's self-referential definition).
type pendingEntry struct {
	waiting NodeId
	has     NodeId
	into    NodeId
	alias   bool
}

// Graph is the build-time workspace for automaton construction. It is not
// safe for concurrent use; a single goroutine pushes every terminal,
// fold the roots with MakeRoot, and Shakes before handing off to codegen.
type Graph struct {
	nodes     []Node
	terminals []Terminal
	merges    map[[2]NodeId]NodeId
	pending   []pendingEntry
	roots     []NodeId
	rootId    NodeId
}

// New returns an empty Graph with index 0 of the arena reserved and
// unused, matching NilNode.
func New() *Graph {
	return &Graph{
		nodes:  []Node{nil},
		merges: map[[2]NodeId]NodeId{},
	}
}

// Terminals returns the terminals pushed so far, in push order. The slice
// is owned by the graph; callers must not mutate it.
func (g *Graph) Terminals() []Terminal {
	return g.terminals
}

// Nodes returns the node arena. Before Shake, some slots may be nil
// (reserved but unfilled) or unreachable from Root.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Root returns the canonical entry point, valid after MakeRoot.
func (g *Graph) Root() NodeId {
	return g.rootId
}

func (g *Graph) reserve() NodeId {
	g.nodes = append(g.nodes, nil)
	return NodeId(len(g.nodes) - 1)
}

func (g *Graph) fill(id NodeId, n Node) error {
	if id == NilNode {
		return lexerr.ErrEmptyRoot
	}
	if g.nodes[id] != nil {
		return lexerr.ErrOverwriteNonReserved
	}
	g.nodes[id] = n
	return g.drainWaitingOn(id)
}

func (g *Graph) memoize(a, b, into NodeId) {
	g.merges[[2]NodeId{a, b}] = into
}

func (g *Graph) memoLookup(a, b NodeId) (NodeId, bool) {
	if into, ok := g.merges[[2]NodeId{a, b}]; ok {
		return into, true
	}
	if into, ok := g.merges[[2]NodeId{b, a}]; ok {
		return into, true
	}
	return NilNode, false
}

// drainWaitingOn resolves every pending merge that was blocked on id,
// now that id has just been filled. Entries are processed most-recently
// queued first, matching the "drain in reverse order" rule.
func (g *Graph) drainWaitingOn(id NodeId) error {
	for {
		idx := -1
		for i := len(g.pending) - 1; i >= 0; i-- {
			if g.pending[i].waiting == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil
		}
		p := g.pending[idx]
		g.pending = append(g.pending[:idx], g.pending[idx+1:]...)
		if err := g.resolvePending(p); err != nil {
			return err
		}
	}
}

func (g *Graph) resolvePending(p pendingEntry) error {
	if p.alias {
		return g.fill(p.into, copyNode(g.nodes[p.waiting]))
	}
	return g.mergeKnown(p.has, p.waiting, p.into)
}

// drainPending is the residual mergeAllPendings pass: after every
// terminal has been pushed, sweep the whole queue once more so that
// cross-terminal forward references close out before Shake runs.
func (g *Graph) drainPending() error {
	changed := true
	for changed {
		changed = false
		for i := len(g.pending) - 1; i >= 0; i-- {
			p := g.pending[i]
			if g.nodes[p.waiting] != nil {
				g.pending = append(g.pending[:i], g.pending[i+1:]...)
				if err := g.resolvePending(p); err != nil {
					return err
				}
				changed = true
			}
		}
	}
	return nil
}
