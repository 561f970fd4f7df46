package graph

import "github.com/nihei9/lexergen/lexerr"

// Shake walks the arena from Root, discards every node not reachable
// from it, and compacts the survivors into a dense, stably-ordered arena
// (first-visit order) starting again at index 1 — NilNode stays reserved.
// A reachable slot that was never filled is reported as
// lexerr.ErrShakingError. It must run after MakeRoot and before codegen.
func (g *Graph) Shake() error {
	order := make([]NodeId, 0, len(g.nodes))
	visited := make(map[NodeId]bool, len(g.nodes))

	var walk func(id NodeId) error
	walk = func(id NodeId) error {
		if id == NilNode || visited[id] {
			return nil
		}
		visited[id] = true
		n := g.nodes[id]
		if n == nil {
			return lexerr.ErrShakingError
		}
		order = append(order, id)
		switch v := n.(type) {
		case *Branch:
			for _, e := range v.Entries {
				if err := walk(e.Target); err != nil {
					return err
				}
			}
			if err := walk(v.Miss); err != nil {
				return err
			}
		case *Seq:
			if err := walk(v.Then); err != nil {
				return err
			}
			if err := walk(v.Miss); err != nil {
				return err
			}
		case *Leaf:
			// no outgoing edges
		}
		return nil
	}

	if err := walk(g.rootId); err != nil {
		return err
	}

	remap := make(map[NodeId]NodeId, len(order))
	for newId, oldId := range order {
		remap[oldId] = NodeId(newId + 1)
	}

	compacted := make([]Node, len(order)+1)
	for oldId, newId := range remap {
		compacted[newId] = remapNode(g.nodes[oldId], remap)
	}

	g.nodes = compacted
	g.rootId = remap[g.rootId]
	return nil
}

func remapNode(n Node, remap map[NodeId]NodeId) Node {
	lookup := func(id NodeId) NodeId {
		if id == NilNode {
			return NilNode
		}
		return remap[id]
	}
	switch v := n.(type) {
	case *Branch:
		entries := make([]BranchEntry, len(v.Entries))
		for i, e := range v.Entries {
			entries[i] = BranchEntry{Range: e.Range, Target: lookup(e.Target)}
		}
		return &Branch{Entries: entries, Miss: lookup(v.Miss)}
	case *Seq:
		return &Seq{Run: v.Run, Then: lookup(v.Then), MissKind: v.MissKind, Miss: lookup(v.Miss)}
	case *Leaf:
		return &Leaf{EndsId: v.EndsId}
	}
	return nil
}
