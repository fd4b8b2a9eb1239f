package cmd

import "strings"

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// closest returns the candidate nearest to input within 3 edits, comparing
// with leading dashes stripped. The candidate is returned as given.
func closest(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimLeft(input, "-"))
	if input == "" {
		return ""
	}
	best, bestDist := "", 4
	for _, c := range candidates {
		if d := editDistance(input, strings.ToLower(strings.TrimLeft(c, "-"))); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
