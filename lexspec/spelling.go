package lexspec

import (
	"sort"
	"strings"
)

// FindSpellingInconsistencies groups identifiers that are spelled the
// same once normalised to UpperCamelCase — `left_paren` and `LeftParen`
// collide — and returns every group with more than one member.
func FindSpellingInconsistencies(ids []string) [][]string {
	m := map[string][]string{}
	for _, id := range removeDuplicates(ids) {
		c := SnakeCaseToUpperCamelCase(id)
		m[c] = append(m[c], id)
	}

	var dups [][]string
	for _, group := range m {
		if len(group) == 1 {
			continue
		}
		dups = append(dups, group)
	}
	for _, dup := range dups {
		sort.Strings(dup)
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i][0] < dups[j][0] })
	return dups
}

func removeDuplicates(s []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SnakeCaseToUpperCamelCase normalises an identifier for spelling
// comparison only; it is not used to rename anything.
func SnakeCaseToUpperCamelCase(snake string) string {
	elems := strings.Split(snake, "_")
	for i, e := range elems {
		if len(e) == 0 {
			continue
		}
		elems[i] = strings.ToUpper(string(e[0])) + e[1:]
	}
	return strings.Join(elems, "")
}
