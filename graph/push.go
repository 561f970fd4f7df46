package graph

import (
	"github.com/nihei9/lexergen/hir"
	"github.com/nihei9/lexergen/lexerr"
)

// pushHir threads h through the graph so that matching h and then
// reaching accept is equivalent to being at the returned node.
func (g *Graph) pushHir(h hir.HIR, accept NodeId) (NodeId, error) {
	switch v := h.(type) {
	case hir.Empty:
		return accept, nil

	case *hir.Literal:
		id := g.reserve()
		run := append([]rune{}, v.Run...)
		if err := g.fill(id, &Seq{Run: run, Then: accept, MissKind: SeqMissNone, Miss: NilNode}); err != nil {
			return NilNode, err
		}
		return id, nil

	case *hir.Class:
		entries := make([]BranchEntry, len(v.Ranges))
		for i, r := range v.Ranges {
			entries[i] = BranchEntry{Range: r, Target: accept}
		}
		id := g.reserve()
		if err := g.fill(id, &Branch{Entries: entries, Miss: NilNode}); err != nil {
			return NilNode, err
		}
		return id, nil

	case *hir.Concat:
		return g.pushConcat(v.Children, accept)

	case *hir.Alternation:
		return g.pushAlternation(v.Children, accept)

	case *hir.Maybe:
		body, err := g.pushHir(v.Inner, accept)
		if err != nil {
			return NilNode, err
		}
		return g.Merge(accept, body)

	case *hir.Loop:
		// The loop body either matches once more and tail-calls back to
		// loopId, or the loop has already run its course and accept is
		// reached directly. loopId is therefore defined in terms of
		// itself; mergeInto closes that knot without a fresh slot.
		loopId := g.reserve()
		body, err := g.pushHir(v.Inner, loopId)
		if err != nil {
			return NilNode, err
		}
		if err := g.mergeInto(accept, body, loopId); err != nil {
			return NilNode, err
		}
		return loopId, nil
	}
	return NilNode, lexerr.ErrNotSupportedRegexNode
}

func (g *Graph) pushConcat(children []hir.HIR, accept NodeId) (NodeId, error) {
	acc := accept
	for i := len(children) - 1; i >= 0; i-- {
		next, err := g.pushHir(children[i], acc)
		if err != nil {
			return NilNode, err
		}
		acc = next
	}
	return acc, nil
}

func (g *Graph) pushAlternation(children []hir.HIR, accept NodeId) (NodeId, error) {
	merged := NilNode
	for _, c := range children {
		branch, err := g.pushHir(c, accept)
		if err != nil {
			return NilNode, err
		}
		m, err := g.Merge(merged, branch)
		if err != nil {
			return NilNode, err
		}
		merged = m
	}
	return merged, nil
}

// PushTerminal adds one terminal's pattern to the graph, merging it with
// everything pushed so far through priority-ordered reconciliation. It
// fails with lexerr.ErrDuplicatedInputs if an identical (pattern, name)
// pair was already pushed.
func (g *Graph) PushTerminal(t Terminal) error {
	for _, existing := range g.terminals {
		if existing.Name == t.Name && hir.Equal(existing.HIR, t.HIR) {
			return lexerr.ErrDuplicatedInputs
		}
	}

	endsId := len(g.terminals)
	g.terminals = append(g.terminals, t)

	leafId := g.reserve()
	if err := g.fill(leafId, &Leaf{EndsId: endsId}); err != nil {
		return err
	}

	root, err := g.pushHir(t.HIR, leafId)
	if err != nil {
		return err
	}
	g.roots = append(g.roots, root)
	return nil
}

// MakeRoot folds every pushed terminal's root into the single entry
// point returned by Root, then drains whatever forward references are
// still outstanding so the arena is closed before Shake runs.
func (g *Graph) MakeRoot() error {
	if len(g.roots) == 0 {
		return lexerr.ErrEmptyRoot
	}
	root := g.roots[0]
	for _, r := range g.roots[1:] {
		m, err := g.Merge(root, r)
		if err != nil {
			return err
		}
		root = m
	}
	if err := g.drainPending(); err != nil {
		return err
	}
	g.rootId = root
	return nil
}
