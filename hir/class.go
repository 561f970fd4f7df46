package hir

import "sort"

// NormalizeRanges sorts ranges by Lo and coalesces overlapping or adjacent
// ranges into a disjoint, ascending list. It does not mutate its input.
func NormalizeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lo != sorted[j].Lo {
			return sorted[i].Lo < sorted[j].Lo
		}
		return sorted[i].Hi < sorted[j].Hi
	})

	coalesced := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &coalesced[len(coalesced)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		coalesced = append(coalesced, r)
	}
	return coalesced
}

// ComplementRanges returns the disjoint, ascending ranges covering
// [0, MaxScalar] that are not covered by ranges. ranges need not be
// pre-normalized.
func ComplementRanges(ranges []Range) []Range {
	norm := NormalizeRanges(ranges)
	if len(norm) == 0 {
		return []Range{{Lo: 0, Hi: MaxScalar}}
	}

	var comp []Range
	next := rune(0)
	for _, r := range norm {
		if r.Lo > next {
			comp = append(comp, Range{Lo: next, Hi: r.Lo - 1})
		}
		if r.Hi+1 > next {
			next = r.Hi + 1
		}
	}
	if next <= MaxScalar {
		comp = append(comp, Range{Lo: next, Hi: MaxScalar})
	}
	return comp
}
