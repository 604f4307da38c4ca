package annotation

import "strings"

// Distance computes the Levenshtein edit distance between a and b with unit
// cost for single-character inserts, deletes, and substitutions. It is
// case-sensitive; callers that want case-insensitive distance lowercase the
// inputs first.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row dynamic programming table.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // delete
				curr[j-1]+1,    // insert
				prev[j-1]+cost, // substitute
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Same reports whether a and b are equal under case-insensitive comparison.
func Same(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Contains reports whether the lowercased form of either string is a
// substring of the other. An empty operand always matches: every string
// contains the empty string. Callers for which that policy is wrong must
// special-case empty input before calling.
func Contains(a, b string) bool {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
