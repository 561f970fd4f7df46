// Package lexerr defines the error taxonomy of the lexer generator: the
// per-pattern lowering errors raised while parsing and lowering a regex
// (§4.1), the graph-level design conflicts an author must resolve
// (§4.2/§4.7), the internal invariants that should never escape a correct
// implementation, and the runtime errors surfaced by generated code (§6).
package lexerr

import (
	"fmt"
	"strings"
)

var (
	// Lowering errors (§4.1). One of these is raised when a pattern string
	// cannot be parsed or lowered to HIR.
	ErrInvalidRepetitionRange       = fmt.Errorf("invalid repetition range")
	ErrGreedyMatchingMore           = fmt.Errorf("greedy repetition (*, +) is not supported; use a reluctant or possessive quantifier")
	ErrNotSupportedRepetitionKind   = fmt.Errorf("unsupported repetition kind")
	ErrNotSupportedQualification    = fmt.Errorf("unsupported quantifier")
	ErrNotSupportedAtomKind         = fmt.Errorf("unsupported atom")
	ErrNotSupportedRegexNode        = fmt.Errorf("unsupported regular expression node")
	ErrNotSupportedCharacterClass   = fmt.Errorf("unsupported character class member")
	ErrIncorrectCharRange           = fmt.Errorf("a character range must be lo <= hi")
	ErrNotSupportedCharacterRangeKind = fmt.Errorf("unsupported character range kind")
	ErrInvalidEscapeCharacter       = fmt.Errorf("invalid escape character")
	ErrQuoteInCharacterClass        = fmt.Errorf("a quoted literal cannot appear inside a character class")
	ErrWiderUnicodeThanSupported    = fmt.Errorf("code point is wider than the supported Unicode range U+0000..U+10FFFF")
	ErrUnmatchablePattern           = fmt.Errorf("a negated character class excludes its entire alphabet and can never match")

	// Supplemented lowering errors (SPEC_FULL.md E.4).
	ErrFragmentUndefined        = fmt.Errorf("pattern references an undefined fragment")
	ErrFragmentCycle            = fmt.Errorf("fragment definitions contain a cycle")
	ErrCharPropertyUnsupported  = fmt.Errorf("character property escapes (\\p{...}) are not supported")
	ErrInvalidCodePoint         = fmt.Errorf("a code point escape must be 4 or 6 hex digits")

	// Graph-level design conflicts (§4.2, §4.7). An author must resolve
	// these; they abort generation for the whole pattern set.
	ErrDuplicatedInputs  = fmt.Errorf("two terminals have identical (pattern, kind name)")
	ErrIdenticalPriority = fmt.Errorf("two distinct terminals that can accept at the same position have identical priority")

	// Internal invariants (§4.7). These should never escape a correct
	// implementation; if one is returned, it indicates a bug in the
	// generator, not a problem with the input token set.
	ErrEmptyMerging      = fmt.Errorf("internal error: attempted to merge two empty graph slots")
	ErrMergingLeaves     = fmt.Errorf("internal error: merge_known reached two Leaf nodes")
	ErrOverwriteNonReserved = fmt.Errorf("internal error: attempted to fill an already-filled, non-reserved node slot")
	ErrEmptyRoot         = fmt.Errorf("internal error: graph root was never assigned")
	ErrShakingError      = fmt.Errorf("internal error: shake encountered a dangling node reference")
	ErrMergingRangeError = fmt.Errorf("internal error: branch-table range merge produced an overlapping key")

	// Runtime errors (§6/§7), surfaced to the caller of generated code.
	ErrSourceBoundExceeded = fmt.Errorf("bump would advance the cursor past the end of the input")
	ErrEmptyToken          = fmt.Errorf("the accepted lexeme is empty: no input was consumed before the accepting state")
	ErrDuplicatedToken     = fmt.Errorf("set_token() called twice for the same step without an intervening skip")
	ErrNotMatch            = fmt.Errorf("no terminal matches the input at the current position")
)

// SpecError wraps a lowering or validation error with enough context to
// point back at the offending pattern: which terminal it came from, and
// where in the pattern string the problem was detected.
type SpecError struct {
	Cause   error
	Kind    string
	Pattern string
	Offset  int
	Detail  string
}

func (e *SpecError) Error() string {
	var b strings.Builder
	if e.Kind != "" {
		fmt.Fprintf(&b, "%v: ", e.Kind)
	}
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%v)", e.Detail)
	}

	if e.Pattern != "" {
		fmt.Fprintf(&b, "\n    %v", e.Pattern)
		if e.Offset >= 0 && e.Offset <= len(e.Pattern) {
			fmt.Fprintf(&b, "\n    %v^", strings.Repeat(" ", e.Offset))
		}
	}

	return b.String()
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}
