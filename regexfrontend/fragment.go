package regexfrontend

import "github.com/nihei9/lexergen/lexerr"

// FragmentTable resolves `\f{name}` references against a set of named
// fragment definitions. Fragments may reference other fragments, so
// resolution proceeds as a fixpoint: a fragment becomes complete once every
// fragment it refers to is complete, and applyFragments then substitutes
// completed definitions into both the remaining fragments and the pattern
// trees that use them.
type FragmentTable struct {
	definitions map[string]AST
}

func NewFragmentTable(definitions map[string]AST) *FragmentTable {
	return &FragmentTable{definitions: definitions}
}

// Resolve completes every fragment definition in the table, then applies
// the completed definitions to each of patterns in place. It must be called
// exactly once, before any of patterns (or the fragments themselves) are
// lowered to HIR.
func (t *FragmentTable) Resolve(patterns []AST) error {
	if err := t.checkUndefined(patterns); err != nil {
		return err
	}

	complete := map[string]AST{}
	incomplete := map[string]AST{}
	for name, tree := range t.definitions {
		refs := map[string][]*fragmentRefNode{}
		collectFragmentRefs(tree, refs)
		if len(refs) == 0 {
			complete[name] = tree
		} else {
			incomplete[name] = tree
		}
	}

	for len(incomplete) > 0 {
		progressed := false
		for name, tree := range incomplete {
			if applyFragments(tree, complete) {
				complete[name] = tree
				delete(incomplete, name)
				progressed = true
			}
		}
		if !progressed {
			return lexerr.ErrFragmentCycle
		}
	}

	for _, p := range patterns {
		applyFragments(p, complete)
	}

	return nil
}

// checkUndefined reports ErrFragmentUndefined if any fragment reference,
// in a fragment definition or a pattern, names a fragment absent from the
// table.
func (t *FragmentTable) checkUndefined(patterns []AST) error {
	trees := make([]AST, 0, len(t.definitions)+len(patterns))
	for _, tree := range t.definitions {
		trees = append(trees, tree)
	}
	trees = append(trees, patterns...)

	for _, tree := range trees {
		refs := map[string][]*fragmentRefNode{}
		collectFragmentRefs(tree, refs)
		for name := range refs {
			if _, ok := t.definitions[name]; !ok {
				return lexerr.ErrFragmentUndefined
			}
		}
	}
	return nil
}

// applyFragments substitutes every reference in t to a fragment in
// complete, and reports whether t is now fully resolved.
func applyFragments(t AST, complete map[string]AST) bool {
	refs := map[string][]*fragmentRefNode{}
	collectFragmentRefs(t, refs)
	for name, nodes := range refs {
		def, ok := complete[name]
		if !ok {
			continue
		}
		for _, n := range nodes {
			n.resolved = def.clone()
		}
	}

	remaining := map[string][]*fragmentRefNode{}
	collectFragmentRefs(t, remaining)
	return len(remaining) == 0
}
