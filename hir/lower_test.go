package hir

import (
	"bytes"
	"testing"

	"github.com/nihei9/lexergen/lexerr"
	"github.com/nihei9/lexergen/regexfrontend"
)

func parse(t *testing.T, pattern string) regexfrontend.AST {
	t.Helper()
	p := regexfrontend.NewParser(bytes.NewReader([]byte(pattern)))
	ast, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", pattern, err)
	}
	return ast
}

func TestLower(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    HIR
	}{
		{
			name:    "literal run",
			pattern: "abc",
			want:    &Literal{Run: []rune("abc")},
		},
		{
			name:    "alternation of literals",
			pattern: "a|b",
			want: &Alternation{Children: []HIR{
				&Literal{Run: []rune{'a'}},
				&Literal{Run: []rune{'b'}},
			}},
		},
		{
			name:    "star unrolls to a trailing loop",
			pattern: "a*+",
			want:    &Loop{Inner: &Literal{Run: []rune{'a'}}},
		},
		{
			name:    "plus unrolls to one copy then a loop",
			pattern: "a++",
			want: &Concat{Children: []HIR{
				&Literal{Run: []rune{'a'}},
				&Loop{Inner: &Literal{Run: []rune{'a'}}},
			}},
		},
		{
			name:    "question mark unrolls to maybe",
			pattern: "a?+",
			want:    &Maybe{Inner: &Literal{Run: []rune{'a'}}},
		},
		{
			name:    "bounded repeat unrolls to copies and maybes",
			pattern: "a{1,3}+",
			want: &Concat{Children: []HIR{
				&Literal{Run: []rune{'a'}},
				&Maybe{Inner: &Literal{Run: []rune{'a'}}},
				&Maybe{Inner: &Literal{Run: []rune{'a'}}},
			}},
		},
		{
			name:    "dot lowers to a full-alphabet class",
			pattern: ".",
			want:    &Class{Ranges: []Range{{Lo: 0, Hi: MaxScalar}}},
		},
		{
			name:    "negated class complements",
			pattern: "[^a-c]",
			want:    &Class{Ranges: ComplementRanges([]Range{{Lo: 'a', Hi: 'c'}})},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast := parse(t, tt.pattern)
			got, err := Lower(ast)
			if err != nil {
				t.Fatalf("Lower(%q) returned error: %v", tt.pattern, err)
			}
			if !Equal(got, tt.want) {
				t.Fatalf("Lower(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestLowerRejectsNegatedClassCoveringWholeAlphabet(t *testing.T) {
	ast := parse(t, `[^\u{0000}-\u{10FFFF}]`)
	if _, err := Lower(ast); err != lexerr.ErrUnmatchablePattern {
		t.Fatalf("Lower() = %v, want ErrUnmatchablePattern", err)
	}
}
