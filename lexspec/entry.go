// Package lexspec is the front door of the generator: it collects the
// entries a caller declares, validates them as a set, and orchestrates
// parsing, fragment resolution, HIR lowering, and graph construction
// into one Compile call. Code generation from the resulting graph is a
// separate codegen.Generate call.
package lexspec

import (
	"fmt"
	"strings"
)

// Entry is one declared token kind: a name, the pattern it matches, a
// priority used to break ties against other entries, and what a match
// produces. Fragment entries are never themselves emitted as tokens;
// they exist only to be referenced from other patterns via \f{name}.
type Entry struct {
	Name     string `json:"name"`
	Pattern  string `json:"pattern"`
	Priority int    `json:"priority"`
	Fragment bool   `json:"fragment,omitempty"`

	// Skip marks a kind whose matches are discarded rather than
	// surfaced as tokens (whitespace, comments).
	Skip bool `json:"skip,omitempty"`

	// FillCallback, if set, names a caller-supplied function (emitted
	// verbatim, resolved at the call site's package) that fills in the
	// matched kind's payload from the raw lexeme.
	FillCallback string `json:"fillCallback,omitempty"`

	// CreateCallback, if set, names a caller-supplied function that
	// decides the outcome for the match, including vetoing it into a
	// skip. It is mutually exclusive with FillCallback.
	CreateCallback string `json:"createCallback,omitempty"`
}

func (e *Entry) callbackKind() (hasFill, hasCreate bool) {
	return e.FillCallback != "", e.CreateCallback != ""
}

// Spec is the complete set of entries to compile into one lexer.
type Spec struct {
	Package string   `json:"package"`
	Entries []*Entry `json:"entries"`
}

// Validate checks the entry set as a whole: names must be unique among
// non-fragments (fragments have their own separate namespace), a
// callback entry may not set both FillCallback and CreateCallback, and
// no two names may differ only in how they spell the same identifier.
func (s *Spec) Validate() error {
	if len(s.Entries) == 0 {
		return fmt.Errorf("a lexical specification must have at least one entry")
	}

	names := map[string]struct{}{}
	fragNames := map[string]struct{}{}
	var kindIds []string
	for _, e := range s.Entries {
		if e.Pattern == "" {
			return fmt.Errorf("entry %q has no pattern", e.Name)
		}
		hasFill, hasCreate := e.callbackKind()
		if hasFill && hasCreate {
			return fmt.Errorf("entry %q sets both FillCallback and CreateCallback", e.Name)
		}
		if e.Fragment {
			if hasFill || hasCreate || e.Skip {
				return fmt.Errorf("fragment %q cannot set Skip or a callback", e.Name)
			}
			if _, dup := fragNames[e.Name]; dup {
				return fmt.Errorf("fragment %q is a duplicate", e.Name)
			}
			fragNames[e.Name] = struct{}{}
			continue
		}
		if e.Skip && (hasFill || hasCreate) {
			return fmt.Errorf("entry %q sets Skip and a callback", e.Name)
		}
		if _, dup := names[e.Name]; dup {
			return fmt.Errorf("entry %q is a duplicate", e.Name)
		}
		names[e.Name] = struct{}{}
		kindIds = append(kindIds, e.Name)
	}

	if dups := FindSpellingInconsistencies(kindIds); len(dups) > 0 {
		var b strings.Builder
		for i, dup := range dups {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "these identifiers are treated as the same: %v", strings.Join(dup, ", "))
		}
		return fmt.Errorf("%s", b.String())
	}

	return nil
}
