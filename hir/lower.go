package hir

import (
	"fmt"

	"github.com/nihei9/lexergen/lexerr"
	"github.com/nihei9/lexergen/regexfrontend"
)

// Lower normalises a parsed pattern into HIR. Fragment references in t
// must already be resolved (regexfrontend.FragmentTable.Resolve) — an
// unresolved reference is a caller error, not a pattern error, and panics.
func Lower(t regexfrontend.AST) (HIR, error) {
	if name, ok := t.FragmentRef(); ok {
		panic(fmt.Errorf("hir.Lower: unresolved fragment reference %q", name))
	}

	if left, right, ok := t.Concatenation(); ok {
		lh, err := Lower(left)
		if err != nil {
			return nil, err
		}
		rh, err := Lower(right)
		if err != nil {
			return nil, err
		}
		return NewConcat(lh, rh), nil
	}

	if left, right, ok := t.Alternatives(); ok {
		lh, err := Lower(left)
		if err != nil {
			return nil, err
		}
		rh, err := Lower(right)
		if err != nil {
			return nil, err
		}
		return NewAlternation(lh, rh), nil
	}

	if inner, kind, min, max, hasMax := t.Quantifier(); kind != "" {
		return lowerQuantifier(inner, min, max, hasMax)
	}

	if members, negated, ok := t.Class(); ok {
		return lowerClass(members, negated)
	}

	if lo, hi, ok := t.Range(); ok {
		if lo == hi {
			return &Literal{Run: []rune{lo}}, nil
		}
		return &Class{Ranges: NormalizeRanges([]Range{{Lo: lo, Hi: hi}})}, nil
	}

	return nil, lexerr.ErrNotSupportedRegexNode
}

// lowerClass assumes members already satisfy From <= To and is non-empty —
// both are enforced by the parser before a classNode can exist.
func lowerClass(members []regexfrontend.CPRange, negated bool) (HIR, error) {
	ranges := make([]Range, 0, len(members))
	for _, m := range members {
		ranges = append(ranges, Range{Lo: m.From, Hi: m.To})
	}
	ranges = NormalizeRanges(ranges)
	if negated {
		ranges = ComplementRanges(ranges)
		if len(ranges) == 0 {
			return nil, lexerr.ErrUnmatchablePattern
		}
	}
	return &Class{Ranges: ranges}, nil
}

// lowerQuantifier implements the unrolling rules: n literal copies of
// inner, followed either by a trailing Loop (open-ended repetition) or by
// (max-min) Maybe-wrapped copies (bounded repetition). `*`, `+`, `?`, and
// every `{n,m}` shape are all instances of this one rule.
func lowerQuantifier(inner regexfrontend.AST, min, max int, hasMax bool) (HIR, error) {
	if min < 0 || (hasMax && max < min) {
		return nil, lexerr.ErrInvalidRepetitionRange
	}

	innerHIR, err := Lower(inner)
	if err != nil {
		return nil, err
	}

	parts := make([]HIR, 0, min+1)
	for i := 0; i < min; i++ {
		parts = append(parts, innerHIR)
	}

	if !hasMax {
		parts = append(parts, &Loop{Inner: innerHIR})
		return NewConcat(parts...), nil
	}

	for i := 0; i < max-min; i++ {
		parts = append(parts, &Maybe{Inner: innerHIR})
	}
	return NewConcat(parts...), nil
}
