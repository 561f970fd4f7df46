package graph

import (
	"sort"

	"github.com/nihei9/lexergen/hir"
	"github.com/nihei9/lexergen/lexerr"
)

// Merge reconciles two nodes that both match some shared prefix of input
// into one. If either side is a reserved slot not yet filled, the merge
// is parked on the pending queue and resumed once that slot is filled.
// Merging with NilNode is the identity: NilNode never denotes a real
// node, only the absence of one.
func (g *Graph) Merge(a, b NodeId) (NodeId, error) {
	if a == NilNode {
		return b, nil
	}
	if b == NilNode {
		return a, nil
	}
	if a == b {
		return a, nil
	}
	if into, ok := g.memoLookup(a, b); ok {
		return into, nil
	}
	into := g.reserve()
	if err := g.mergeInto(a, b, into); err != nil {
		return NilNode, err
	}
	return into, nil
}

// mergeInto performs the same reconciliation as Merge but writes the
// result into a caller-supplied slot instead of allocating a fresh one.
// It exists so Loop can define its own entry node in terms of itself:
// the node being filled is also one of the two operands being merged.
func (g *Graph) mergeInto(a, b, into NodeId) error {
	if a == NilNode && b == NilNode {
		return lexerr.ErrEmptyMerging
	}
	if a == NilNode {
		return g.aliasInto(b, into)
	}
	if b == NilNode {
		return g.aliasInto(a, into)
	}
	if a == b {
		return g.aliasInto(a, into)
	}

	g.memoize(a, b, into)
	aKnown := g.nodes[a] != nil
	bKnown := g.nodes[b] != nil
	if aKnown && bKnown {
		return g.mergeKnown(a, b, into)
	}
	if !aKnown {
		g.pending = append(g.pending, pendingEntry{waiting: a, has: b, into: into})
	} else {
		g.pending = append(g.pending, pendingEntry{waiting: b, has: a, into: into})
	}
	return nil
}

// aliasInto makes into a standalone copy of src's node, once src is
// known. It never aliases NodeIds directly: src keeps its own identity
// so other references to it remain valid.
func (g *Graph) aliasInto(src, into NodeId) error {
	if g.nodes[src] != nil {
		return g.fill(into, copyNode(g.nodes[src]))
	}
	g.pending = append(g.pending, pendingEntry{waiting: src, into: into, alias: true})
	return nil
}

func copyNode(n Node) Node {
	switch v := n.(type) {
	case *Leaf:
		return &Leaf{EndsId: v.EndsId}
	case *Seq:
		return &Seq{Run: append([]rune{}, v.Run...), Then: v.Then, MissKind: v.MissKind, Miss: v.Miss}
	case *Branch:
		return &Branch{Entries: cloneEntries(v.Entries), Miss: v.Miss}
	}
	return nil
}

// mergeKnown dispatches on the concrete shape of two already-filled
// nodes and fills into with their reconciliation.
func (g *Graph) mergeKnown(a, b, into NodeId) error {
	na, nb := g.nodes[a], g.nodes[b]

	if la, ok := na.(*Leaf); ok {
		return g.mergeLeafWith(la, a, nb, into)
	}
	if lb, ok := nb.(*Leaf); ok {
		return g.mergeLeafWith(lb, b, na, into)
	}

	sa, aIsSeq := na.(*Seq)
	sb, bIsSeq := nb.(*Seq)
	ba, aIsBranch := na.(*Branch)
	bb, bIsBranch := nb.(*Branch)

	switch {
	case aIsSeq && bIsSeq:
		return g.mergeSeqSeq(sa, sb, into)
	case aIsSeq && bIsBranch:
		return g.mergeSeqBranch(sa, bb, into)
	case aIsBranch && bIsSeq:
		return g.mergeSeqBranch(sb, ba, into)
	case aIsBranch && bIsBranch:
		return g.mergeBranchBranch(ba, bb, into)
	}
	return lexerr.ErrShakingError
}

func (g *Graph) mergeLeafWith(leaf *Leaf, leafId NodeId, other Node, into NodeId) error {
	switch o := other.(type) {
	case *Leaf:
		return g.mergeLeafLeaf(leaf, o, into)
	case *Branch:
		miss, err := g.Merge(o.Miss, leafId)
		if err != nil {
			return err
		}
		return g.fill(into, &Branch{Entries: cloneEntries(o.Entries), Miss: miss})
	case *Seq:
		miss, err := g.Merge(o.Miss, leafId)
		if err != nil {
			return err
		}
		kind := o.MissKind
		if kind == SeqMissNone {
			kind = SeqMissFirst
		}
		return g.fill(into, &Seq{Run: o.Run, Then: o.Then, MissKind: kind, Miss: miss})
	}
	return lexerr.ErrShakingError
}

// mergeLeafLeaf resolves two terminals that both accept on exactly the
// same input by priority; equal priority is an unresolvable ambiguity.
func (g *Graph) mergeLeafLeaf(a, b *Leaf, into NodeId) error {
	pa := g.terminals[a.EndsId].Priority
	pb := g.terminals[b.EndsId].Priority
	if pa == pb {
		return lexerr.ErrIdenticalPriority
	}
	if pa > pb {
		return g.fill(into, &Leaf{EndsId: a.EndsId})
	}
	return g.fill(into, &Leaf{EndsId: b.EndsId})
}

// seqSuffixId returns the node reached after consuming s.Run[:i] of s,
// reserving a trimmed copy of s when the suffix is non-empty and
// returning s.Then directly once the whole run has been consumed.
func (g *Graph) seqSuffixId(s *Seq, i int) (NodeId, error) {
	if i >= len(s.Run) {
		return s.Then, nil
	}
	id := g.reserve()
	if err := g.fill(id, &Seq{Run: s.Run[i:], Then: s.Then, MissKind: s.MissKind, Miss: s.Miss}); err != nil {
		return NilNode, err
	}
	return id, nil
}

// combineSeqMiss folds two Seqs' miss behaviour into one, reporting ok=false
// when the two policies are genuinely incompatible (one First, one Anytime,
// neither None) — a First-kind miss only fires at byte index 0, so grafting
// it onto an Anytime contributor (or vice versa) would misroute mid-run
// mismatches to a target never built to be entered there. A side that lacks
// a miss (None) is always compatible with the other's policy; two sides
// that agree combine by merging their fallback targets.
func (g *Graph) combineSeqMiss(a, b *Seq) (kind SeqMissKind, miss NodeId, ok bool, err error) {
	switch {
	case a.MissKind == SeqMissNone && b.MissKind == SeqMissNone:
		return SeqMissNone, NilNode, true, nil
	case a.MissKind == SeqMissNone:
		kind = b.MissKind
	case b.MissKind == SeqMissNone:
		kind = a.MissKind
	case a.MissKind == b.MissKind:
		kind = a.MissKind
	default:
		return SeqMissNone, NilNode, false, nil
	}
	miss, err = g.Merge(a.Miss, b.Miss)
	if err != nil {
		return SeqMissNone, NilNode, false, err
	}
	return kind, miss, true, nil
}

// mergeSeqSeqViaBranch is the fall-through path for two Seqs whose miss
// policies combineSeqMiss rejects: project both to one-byte Branch form and
// merge those instead, per §4.3's "otherwise fall through" rule.
func (g *Graph) mergeSeqSeqViaBranch(a, b *Seq, into NodeId) error {
	pa, err := g.projectToBranch(a)
	if err != nil {
		return err
	}
	pb, err := g.projectToBranch(b)
	if err != nil {
		return err
	}
	return g.mergeBranchBranch(pa, pb, into)
}

func commonPrefixLen(a, b []rune) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// mergeSeqSeq reconciles two literal runs sharing a common prefix. Equal
// runs merge their tails directly; one run strictly prefixing the other
// continues down the longer run's remainder; a true divergence produces
// a one-byte Branch at the differing position, wrapped in the shared
// prefix if one exists.
func (g *Graph) mergeSeqSeq(a, b *Seq, into NodeId) error {
	cp := commonPrefixLen(a.Run, b.Run)

	if cp == len(a.Run) && cp == len(b.Run) {
		kind, miss, ok, err := g.combineSeqMiss(a, b)
		if err != nil {
			return err
		}
		if !ok {
			return g.mergeSeqSeqViaBranch(a, b, into)
		}
		then, err := g.Merge(a.Then, b.Then)
		if err != nil {
			return err
		}
		return g.fill(into, &Seq{Run: a.Run, Then: then, MissKind: kind, Miss: miss})
	}
	if cp == len(a.Run) {
		bSuffix, err := g.seqSuffixId(b, cp)
		if err != nil {
			return err
		}
		then, err := g.Merge(a.Then, bSuffix)
		if err != nil {
			return err
		}
		return g.fill(into, &Seq{Run: a.Run, Then: then, MissKind: a.MissKind, Miss: a.Miss})
	}
	if cp == len(b.Run) {
		aSuffix, err := g.seqSuffixId(a, cp)
		if err != nil {
			return err
		}
		then, err := g.Merge(aSuffix, b.Then)
		if err != nil {
			return err
		}
		return g.fill(into, &Seq{Run: b.Run, Then: then, MissKind: b.MissKind, Miss: b.Miss})
	}

	kind, miss, ok, err := g.combineSeqMiss(a, b)
	if err != nil {
		return err
	}
	if !ok {
		return g.mergeSeqSeqViaBranch(a, b, into)
	}

	aSuffix, err := g.seqSuffixId(a, cp+1)
	if err != nil {
		return err
	}
	bSuffix, err := g.seqSuffixId(b, cp+1)
	if err != nil {
		return err
	}
	entries, err := g.splitOverlaps(
		[]BranchEntry{{Range: hir.Range{Lo: a.Run[cp], Hi: a.Run[cp]}, Target: aSuffix}},
		[]BranchEntry{{Range: hir.Range{Lo: b.Run[cp], Hi: b.Run[cp]}, Target: bSuffix}},
	)
	if err != nil {
		return err
	}
	branchMiss := NilNode
	if kind != SeqMissNone {
		branchMiss = miss
	}
	if cp == 0 {
		return g.fill(into, &Branch{Entries: entries, Miss: branchMiss})
	}
	branchId := g.reserve()
	if err := g.fill(branchId, &Branch{Entries: entries, Miss: branchMiss}); err != nil {
		return err
	}
	return g.fill(into, &Seq{Run: a.Run[:cp], Then: branchId, MissKind: kind, Miss: miss})
}

// projectToBranch re-expresses a Seq as the one-byte Branch that
// dispatches on its first rune, so it can be merged against a Branch
// with the same algorithm used for Branch-vs-Branch.
func (g *Graph) projectToBranch(s *Seq) (*Branch, error) {
	if len(s.Run) == 0 {
		return nil, lexerr.ErrMergingRangeError
	}
	tail, err := g.seqSuffixId(s, 1)
	if err != nil {
		return nil, err
	}
	miss := NilNode
	if s.MissKind != SeqMissNone {
		miss = s.Miss
	}
	return &Branch{
		Entries: []BranchEntry{{Range: hir.Range{Lo: s.Run[0], Hi: s.Run[0]}, Target: tail}},
		Miss:    miss,
	}, nil
}

func (g *Graph) mergeSeqBranch(s *Seq, br *Branch, into NodeId) error {
	proj, err := g.projectToBranch(s)
	if err != nil {
		return err
	}
	return g.mergeBranchBranch(proj, br, into)
}

func (g *Graph) mergeBranchBranch(a, b *Branch, into NodeId) error {
	entries, err := g.splitOverlaps(a.Entries, b.Entries)
	if err != nil {
		return err
	}
	miss, err := g.Merge(a.Miss, b.Miss)
	if err != nil {
		return err
	}
	return g.fill(into, &Branch{Entries: entries, Miss: miss})
}

// splitOverlaps implements the branch-table range-splitting merge as a
// boundary sweep: collect every range's start and one-past-end as
// breakpoints, then fold the targets of every entry covering each
// elementary interval through Merge, coalescing adjacent intervals whose
// folded targets end up identical. The result is pairwise disjoint by
// construction regardless of the two inputs' original ordering.
func (g *Graph) splitOverlaps(a, b []BranchEntry) ([]BranchEntry, error) {
	all := make([]BranchEntry, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)

	boundSet := map[rune]bool{}
	for _, e := range all {
		if e.Range.Lo > e.Range.Hi {
			return nil, lexerr.ErrMergingRangeError
		}
		boundSet[e.Range.Lo] = true
		if e.Range.Hi < hir.MaxScalar {
			boundSet[e.Range.Hi+1] = true
		}
	}
	bounds := make([]rune, 0, len(boundSet))
	for r := range boundSet {
		bounds = append(bounds, r)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	var result []BranchEntry
	for i, lo := range bounds {
		hi := hir.MaxScalar
		if i+1 < len(bounds) {
			hi = bounds[i+1] - 1
		}

		target := NilNode
		has := false
		for _, e := range all {
			if e.Range.Lo <= lo && hi <= e.Range.Hi {
				if !has {
					target = e.Target
					has = true
					continue
				}
				m, err := g.Merge(target, e.Target)
				if err != nil {
					return nil, err
				}
				target = m
			}
		}
		if !has {
			continue
		}
		if n := len(result); n > 0 && result[n-1].Target == target && result[n-1].Range.Hi+1 == lo {
			result[n-1].Range.Hi = hi
		} else {
			result = append(result, BranchEntry{Range: hir.Range{Lo: lo, Hi: hi}, Target: target})
		}
	}
	return result, nil
}

func cloneEntries(es []BranchEntry) []BranchEntry {
	out := make([]BranchEntry, len(es))
	copy(out, es)
	return out
}
