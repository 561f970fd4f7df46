package hir

// Equal reports whether a and b denote the same normalised pattern. It is
// a plain structural comparison, used only to detect that two terminals
// were built from an identical pattern.
func Equal(a, b HIR) bool {
	switch av := a.(type) {
	case Empty:
		_, ok := b.(Empty)
		return ok
	case *Literal:
		bv, ok := b.(*Literal)
		return ok && runesEqual(av.Run, bv.Run)
	case *Class:
		bv, ok := b.(*Class)
		if !ok || len(av.Ranges) != len(bv.Ranges) {
			return false
		}
		for i := range av.Ranges {
			if av.Ranges[i] != bv.Ranges[i] {
				return false
			}
		}
		return true
	case *Concat:
		bv, ok := b.(*Concat)
		return ok && equalChildren(av.Children, bv.Children)
	case *Alternation:
		bv, ok := b.(*Alternation)
		return ok && equalChildren(av.Children, bv.Children)
	case *Loop:
		bv, ok := b.(*Loop)
		return ok && Equal(av.Inner, bv.Inner)
	case *Maybe:
		bv, ok := b.(*Maybe)
		return ok && Equal(av.Inner, bv.Inner)
	default:
		return false
	}
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalChildren(a, b []HIR) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
