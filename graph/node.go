package graph

import "github.com/nihei9/lexergen/hir"

// NodeId addresses a slot in a Graph's node arena. NilNode (the zero
// value) is reserved and never denotes a real node — it doubles as the
// "no miss" / "no reserved slot" sentinel threaded through push and merge.
type NodeId int

const NilNode NodeId = 0

// Node is a graph vertex. It is a closed sum type — Branch, Seq, and Leaf
// are the only variants — distinguished by a type switch, not dispatch.
type Node interface {
	isNode()
}

var (
	_ Node = &Branch{}
	_ Node = &Seq{}
	_ Node = &Leaf{}
)

// BranchEntry maps one disjoint byte range to its target node.
type BranchEntry struct {
	Range  hir.Range
	Target NodeId
}

// Branch dispatches on the scalar value at the cursor: each Entries member
// covers a disjoint range of the alphabet. A value not covered by any entry
// takes Miss, if set (NilNode otherwise, meaning NotMatch).
type Branch struct {
	Entries []BranchEntry
	Miss    NodeId
}

func (*Branch) isNode() {}

// SeqMissKind distinguishes how a Seq reacts to a mismatch partway
// through its run.
type SeqMissKind int

const (
	// SeqMissNone means a mismatch anywhere in the run is NotMatch.
	SeqMissNone SeqMissKind = iota
	// SeqMissFirst fires only when the very first byte of the run
	// mismatches — bytes consumed after that point are assumed to commit.
	SeqMissFirst
	// SeqMissAnytime fires on a mismatch at any position within the run.
	SeqMissAnytime
)

// Seq consumes a fixed run of scalar values, in order, before tail-calling
// Then. Miss is consulted according to MissKind on a mismatch; MissKind is
// SeqMissNone when Miss is NilNode.
type Seq struct {
	Run      []rune
	Then     NodeId
	MissKind SeqMissKind
	Miss     NodeId
}

func (*Seq) isNode() {}

// Leaf is an accepting vertex carrying the index of the terminal it
// completes.
type Leaf struct {
	EndsId int
}

func (*Leaf) isNode() {}
