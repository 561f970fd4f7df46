package graph

import "github.com/nihei9/lexergen/hir"

// TerminalKind distinguishes what a completed match produces.
type TerminalKind int

const (
	// Standalone records a plain token variant with no payload transform.
	Standalone TerminalKind = iota
	// Skip drops the matched span and restarts lexing from it.
	Skip
	// FillCallback transforms the matched slice into the variant payload
	// via Callback, an opaque symbolic reference codegen emits verbatim.
	FillCallback
	// CreateCallback calls Callback with the cursor to produce either a
	// variant or a skip sentinel.
	CreateCallback
)

// Terminal is a single declared token definition: its name, what kind of
// result it produces, the pattern it was lowered from, and the priority
// used to break accept ambiguity against other terminals.
type Terminal struct {
	Name     string
	Kind     TerminalKind
	Callback string
	HIR      hir.HIR
	Priority int
}
