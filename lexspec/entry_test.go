package lexspec

import "testing"

func TestValidateRejectsEmptySpec(t *testing.T) {
	s := &Spec{}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for an empty spec")
	}
}

func TestValidateRejectsMissingPattern(t *testing.T) {
	s := &Spec{Entries: []*Entry{{Name: "a"}}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for an entry with no pattern")
	}
}

func TestValidateRejectsBothCallbacks(t *testing.T) {
	s := &Spec{Entries: []*Entry{
		{Name: "num", Pattern: "[0-9]+?", FillCallback: "parseNum", CreateCallback: "makeNum"},
	}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for an entry with both callbacks set")
	}
}

func TestValidateRejectsSkipWithCallback(t *testing.T) {
	s := &Spec{Entries: []*Entry{
		{Name: "ws", Pattern: " +?", Skip: true, FillCallback: "parseWS"},
	}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for a Skip entry with a callback")
	}
}

func TestValidateRejectsFragmentWithCallback(t *testing.T) {
	s := &Spec{Entries: []*Entry{
		{Name: "digit", Pattern: "[0-9]", Fragment: true, FillCallback: "f"},
		{Name: "num", Pattern: `\f{digit}+?`},
	}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for a fragment with a callback")
	}
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	s := &Spec{Entries: []*Entry{
		{Name: "a", Pattern: "a"},
		{Name: "a", Pattern: "b"},
	}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for duplicate entry names")
	}
}

func TestValidateAllowsFragmentAndPatternSharingAName(t *testing.T) {
	s := &Spec{Entries: []*Entry{
		{Name: "digit", Pattern: "[0-9]", Fragment: true},
		{Name: "digit", Pattern: `\f{digit}+?`},
	}}
	if err := s.Validate(); err != nil {
		t.Fatalf("fragments and patterns have separate namespaces, got: %v", err)
	}
}

func TestValidateRejectsDuplicateFragmentNames(t *testing.T) {
	s := &Spec{Entries: []*Entry{
		{Name: "digit", Pattern: "[0-9]", Fragment: true},
		{Name: "digit", Pattern: "[0-9]", Fragment: true},
	}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for duplicate fragment names")
	}
}

func TestValidateRejectsSpellingInconsistency(t *testing.T) {
	s := &Spec{Entries: []*Entry{
		{Name: "left_paren", Pattern: "("},
		{Name: "LeftParen", Pattern: "("},
	}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for colliding spellings")
	}
}

func TestValidateAcceptsWellFormedSpec(t *testing.T) {
	s := &Spec{Entries: []*Entry{
		{Name: "ws", Pattern: " +?", Skip: true},
		{Name: "number", Pattern: "[0-9]+?"},
		{Name: "ident", Pattern: "[a-z]+?"},
	}}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFindSpellingInconsistencies(t *testing.T) {
	dups := FindSpellingInconsistencies([]string{"left_paren", "LeftParen", "number", "ident"})
	if len(dups) != 1 {
		t.Fatalf("len(dups) = %v, want 1", len(dups))
	}
	if len(dups[0]) != 2 {
		t.Fatalf("len(dups[0]) = %v, want 2", len(dups[0]))
	}
}

func TestSnakeCaseToUpperCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"left_paren", "LeftParen"},
		{"LeftParen", "LeftParen"},
		{"ident", "Ident"},
		{"a__b", "AB"},
	}
	for _, tt := range tests {
		if got := SnakeCaseToUpperCamelCase(tt.in); got != tt.want {
			t.Fatalf("SnakeCaseToUpperCamelCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
