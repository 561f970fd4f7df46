package graph

import (
	"sort"
	"testing"

	"github.com/nihei9/lexergen/hir"
	"github.com/nihei9/lexergen/lexerr"
)

// clampToAlphabet folds an arbitrary int32 into a small corner of the
// scalar-value alphabet, small enough that fuzzed ranges actually
// overlap each other with some regularity instead of almost always
// landing disjoint by construction.
func clampToAlphabet(n int32) rune {
	if n < 0 {
		n = -n
	}
	return rune(n % 256)
}

func orderedRange(a, b int32) hir.Range {
	lo, hi := clampToAlphabet(a), clampToAlphabet(b)
	if lo > hi {
		lo, hi = hi, lo
	}
	return hir.Range{Lo: lo, Hi: hi}
}

// simulate walks the automaton directly, independent of codegen, as a
// ground truth for what a terminal's pattern should match.
func simulate(g *Graph, id NodeId, input []rune) (endsId, length int, ok bool) {
	pos := 0
	for {
		switch v := g.Nodes()[id].(type) {
		case *Leaf:
			return v.EndsId, pos, true
		case *Seq:
			matched := true
			for _, want := range v.Run {
				if pos >= len(input) || input[pos] != want {
					matched = false
					break
				}
				pos++
			}
			if matched {
				id = v.Then
				continue
			}
			if v.Miss == NilNode {
				return 0, 0, false
			}
			id = v.Miss
		case *Branch:
			if pos < len(input) {
				moved := false
				for _, e := range v.Entries {
					if input[pos] >= e.Range.Lo && input[pos] <= e.Range.Hi {
						pos++
						id = e.Target
						moved = true
						break
					}
				}
				if moved {
					continue
				}
			}
			if v.Miss == NilNode {
				return 0, 0, false
			}
			id = v.Miss
		default:
			return 0, 0, false
		}
	}
}

func literal(s string) hir.HIR {
	return &hir.Literal{Run: []rune(s)}
}

func buildGraph(t *testing.T, terms ...Terminal) *Graph {
	t.Helper()
	g := New()
	for _, term := range terms {
		if err := g.PushTerminal(term); err != nil {
			t.Fatalf("PushTerminal(%v) failed: %v", term.Name, err)
		}
	}
	if err := g.MakeRoot(); err != nil {
		t.Fatalf("MakeRoot failed: %v", err)
	}
	if err := g.Shake(); err != nil {
		t.Fatalf("Shake failed: %v", err)
	}
	return g
}

func TestDisjointLiterals(t *testing.T) {
	g := buildGraph(t,
		Terminal{Name: "cat", HIR: literal("cat"), Priority: 1},
		Terminal{Name: "dog", HIR: literal("dog"), Priority: 1},
	)

	endsId, length, ok := simulate(g, g.Root(), []rune("cat"))
	if !ok || length != 3 || g.Terminals()[endsId].Name != "cat" {
		t.Fatalf("simulate(cat) = %v, %v, %v", endsId, length, ok)
	}
	endsId, length, ok = simulate(g, g.Root(), []rune("dog"))
	if !ok || length != 3 || g.Terminals()[endsId].Name != "dog" {
		t.Fatalf("simulate(dog) = %v, %v, %v", endsId, length, ok)
	}
}

func TestSharedPrefixBranches(t *testing.T) {
	g := buildGraph(t,
		Terminal{Name: "ab", HIR: literal("ab"), Priority: 1},
		Terminal{Name: "ac", HIR: literal("ac"), Priority: 1},
	)

	endsId, length, ok := simulate(g, g.Root(), []rune("ab"))
	if !ok || length != 2 || g.Terminals()[endsId].Name != "ab" {
		t.Fatalf("simulate(ab) = %v, %v, %v", endsId, length, ok)
	}
	endsId, length, ok = simulate(g, g.Root(), []rune("ac"))
	if !ok || length != 2 || g.Terminals()[endsId].Name != "ac" {
		t.Fatalf("simulate(ac) = %v, %v, %v", endsId, length, ok)
	}
}

func TestPriorityBreaksAmbiguity(t *testing.T) {
	ident := &hir.Concat{Children: []hir.HIR{
		&hir.Class{Ranges: []hir.Range{{Lo: 'a', Hi: 'z'}}},
		&hir.Loop{Inner: &hir.Class{Ranges: []hir.Range{{Lo: 'a', Hi: 'z'}}}},
	}}
	g := buildGraph(t,
		Terminal{Name: "ident", HIR: ident, Priority: 1},
		Terminal{Name: "keyword_if", HIR: literal("if"), Priority: 10},
	)

	endsId, length, ok := simulate(g, g.Root(), []rune("if"))
	if !ok || length != 2 || g.Terminals()[endsId].Name != "keyword_if" {
		t.Fatalf("simulate(if) = %v, %v, %v, want keyword_if", endsId, length, ok)
	}
	endsId, length, ok = simulate(g, g.Root(), []rune("ifx"))
	if !ok || length != 3 || g.Terminals()[endsId].Name != "ident" {
		t.Fatalf("simulate(ifx) = %v, %v, %v, want ident", endsId, length, ok)
	}
}

func TestIdenticalPriorityIsAmbiguous(t *testing.T) {
	g := New()
	if err := g.PushTerminal(Terminal{Name: "a", HIR: literal("x"), Priority: 1}); err != nil {
		t.Fatalf("PushTerminal(a) failed: %v", err)
	}
	if err := g.PushTerminal(Terminal{Name: "b", HIR: literal("x"), Priority: 1}); err != nil {
		t.Fatalf("PushTerminal(b) failed: %v", err)
	}
	err := g.MakeRoot()
	if err != lexerr.ErrIdenticalPriority {
		t.Fatalf("MakeRoot() = %v, want ErrIdenticalPriority", err)
	}
}

func TestDuplicatedInputIsRejected(t *testing.T) {
	g := New()
	if err := g.PushTerminal(Terminal{Name: "a", HIR: literal("x"), Priority: 1}); err != nil {
		t.Fatalf("PushTerminal(a) failed: %v", err)
	}
	err := g.PushTerminal(Terminal{Name: "a", HIR: literal("x"), Priority: 2})
	if err != lexerr.ErrDuplicatedInputs {
		t.Fatalf("PushTerminal() = %v, want ErrDuplicatedInputs", err)
	}
}

func TestSameNameDifferentPatternIsAllowed(t *testing.T) {
	g := New()
	if err := g.PushTerminal(Terminal{Name: "a", HIR: literal("x"), Priority: 1}); err != nil {
		t.Fatalf("PushTerminal(a, x) failed: %v", err)
	}
	if err := g.PushTerminal(Terminal{Name: "a", HIR: literal("y"), Priority: 2}); err != nil {
		t.Fatalf("PushTerminal(a, y) failed: %v", err)
	}
}

// TestIncompatibleSeqMissKindsFallThroughToBranch builds two Seqs by hand
// whose miss policies genuinely conflict (one First, one Anytime) and
// checks that merging them falls through to the Branch-projection path
// per spec §4.3, rather than combining the two policies into one Seq.
func TestIncompatibleSeqMissKindsFallThroughToBranch(t *testing.T) {
	g := New()
	g.terminals = []Terminal{{Name: "a", Priority: 1}, {Name: "b", Priority: 2}}

	leafA := g.reserve()
	if err := g.fill(leafA, &Leaf{EndsId: 0}); err != nil {
		t.Fatalf("fill(leafA) failed: %v", err)
	}
	leafB := g.reserve()
	if err := g.fill(leafB, &Leaf{EndsId: 1}); err != nil {
		t.Fatalf("fill(leafB) failed: %v", err)
	}

	seqFirst := g.reserve()
	if err := g.fill(seqFirst, &Seq{Run: []rune("xy"), Then: leafA, MissKind: SeqMissFirst, Miss: leafA}); err != nil {
		t.Fatalf("fill(seqFirst) failed: %v", err)
	}
	seqAnytime := g.reserve()
	if err := g.fill(seqAnytime, &Seq{Run: []rune("xy"), Then: leafB, MissKind: SeqMissAnytime, Miss: leafB}); err != nil {
		t.Fatalf("fill(seqAnytime) failed: %v", err)
	}

	merged, err := g.Merge(seqFirst, seqAnytime)
	if err != nil {
		t.Fatalf("Merge() failed: %v", err)
	}
	if _, ok := g.Nodes()[merged].(*Branch); !ok {
		t.Fatalf("Merge() of incompatible Seq miss kinds = %T, want *Branch (fall-through per spec §4.3)", g.Nodes()[merged])
	}
}

func TestLoopMatchesZeroOrMore(t *testing.T) {
	g := buildGraph(t,
		Terminal{Name: "as", HIR: &hir.Loop{Inner: literal("a")}, Priority: 1},
	)

	if _, length, ok := simulate(g, g.Root(), []rune("")); !ok || length != 0 {
		t.Fatalf("simulate('') = %v, %v, want 0, true", length, ok)
	}
	if _, length, ok := simulate(g, g.Root(), []rune("aaa")); !ok || length != 3 {
		t.Fatalf("simulate('aaa') = %v, %v, want 3, true", length, ok)
	}
}

func TestMaybeMatchesZeroOrOne(t *testing.T) {
	g := buildGraph(t,
		Terminal{Name: "a?", HIR: &hir.Maybe{Inner: literal("a")}, Priority: 1},
	)

	if _, length, ok := simulate(g, g.Root(), []rune("")); !ok || length != 0 {
		t.Fatalf("simulate('') = %v, %v, want 0, true", length, ok)
	}
	if _, length, ok := simulate(g, g.Root(), []rune("a")); !ok || length != 1 {
		t.Fatalf("simulate('a') = %v, %v, want 1, true", length, ok)
	}
}

func TestShakeCompactsArenaDensely(t *testing.T) {
	g := buildGraph(t,
		Terminal{Name: "cat", HIR: literal("cat"), Priority: 1},
		Terminal{Name: "dog", HIR: literal("dog"), Priority: 1},
	)

	nodes := g.Nodes()
	if nodes[0] != nil {
		t.Fatalf("index 0 must stay reserved and nil")
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i] == nil {
			t.Fatalf("node %v is nil after Shake, arena should be dense", i)
		}
	}
	if int(g.Root()) <= 0 || int(g.Root()) >= len(nodes) {
		t.Fatalf("Root() = %v out of arena bounds [1, %v)", g.Root(), len(nodes))
	}
}

// FuzzBranchEntriesStayDisjoint pushes two overlapping character classes
// and checks that every Branch node reachable in the resulting graph
// keeps its entries pairwise disjoint over their key ranges, regardless
// of how the fuzzed ranges happen to overlap going in.
func FuzzBranchEntriesStayDisjoint(f *testing.F) {
	f.Add(int32(0), int32(10), int32(5), int32(20))
	f.Add(int32(0), int32(255), int32(0), int32(255))
	f.Fuzz(func(t *testing.T, lo1, hi1, lo2, hi2 int32) {
		r1 := orderedRange(lo1, hi1)
		r2 := orderedRange(lo2, hi2)

		g := New()
		if err := g.PushTerminal(Terminal{Name: "a", HIR: &hir.Class{Ranges: []hir.Range{r1}}, Priority: 1}); err != nil {
			t.Skip()
		}
		if err := g.PushTerminal(Terminal{Name: "b", HIR: &hir.Class{Ranges: []hir.Range{r2}}, Priority: 2}); err != nil {
			t.Skip()
		}
		if err := g.MakeRoot(); err != nil {
			t.Skip()
		}

		for _, n := range g.Nodes() {
			br, ok := n.(*Branch)
			if !ok {
				continue
			}
			entries := append([]BranchEntry{}, br.Entries...)
			sort.Slice(entries, func(i, j int) bool { return entries[i].Range.Lo < entries[j].Range.Lo })
			for i := 1; i < len(entries); i++ {
				if entries[i-1].Range.Hi >= entries[i].Range.Lo {
					t.Fatalf("Branch entries not disjoint: %v vs %v (ranges in: %v, %v)", entries[i-1], entries[i], r1, r2)
				}
			}
		}
	})
}

// FuzzShakeProducesDenseBoundedArena pushes two fuzzed literal terminals
// through the whole pipeline and checks the post-Shake invariant: every
// arena slot from 1 to len(nodes) is filled, and every NodeId any node
// refers to lies in [0, len(nodes)).
func FuzzShakeProducesDenseBoundedArena(f *testing.F) {
	f.Add("cat", "dog")
	f.Add("a", "ab")
	f.Fuzz(func(t *testing.T, a, b string) {
		aRun, bRun := []rune(a), []rune(b)
		if len(aRun) == 0 || len(bRun) == 0 {
			t.Skip()
		}

		g := New()
		if err := g.PushTerminal(Terminal{Name: "a", HIR: &hir.Literal{Run: aRun}, Priority: 1}); err != nil {
			t.Skip()
		}
		if err := g.PushTerminal(Terminal{Name: "b", HIR: &hir.Literal{Run: bRun}, Priority: 2}); err != nil {
			t.Skip()
		}
		if err := g.MakeRoot(); err != nil {
			t.Skip()
		}
		if err := g.Shake(); err != nil {
			t.Fatalf("Shake() failed: %v", err)
		}

		nodes := g.Nodes()
		if nodes[0] != nil {
			t.Fatalf("index 0 must stay reserved and nil")
		}
		for i := 1; i < len(nodes); i++ {
			if nodes[i] == nil {
				t.Fatalf("node %v is nil after Shake, arena should be dense", i)
			}
		}
		inBounds := func(id NodeId) bool { return int(id) >= 0 && int(id) < len(nodes) }
		if !inBounds(g.Root()) || g.Root() == NilNode {
			t.Fatalf("Root() = %v out of arena bounds [1, %v)", g.Root(), len(nodes))
		}
		for i, n := range nodes {
			if i == 0 {
				continue
			}
			switch v := n.(type) {
			case *Branch:
				if !inBounds(v.Miss) {
					t.Fatalf("Branch.Miss = %v out of bounds", v.Miss)
				}
				for _, e := range v.Entries {
					if !inBounds(e.Target) {
						t.Fatalf("Branch entry target %v out of bounds", e.Target)
					}
				}
			case *Seq:
				if !inBounds(v.Then) || !inBounds(v.Miss) {
					t.Fatalf("Seq.Then/Miss = %v/%v out of bounds", v.Then, v.Miss)
				}
			}
		}
	})
}
