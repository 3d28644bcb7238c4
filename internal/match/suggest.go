package match

import "strings"

// suggestionThreshold is the minimum case-insensitive similarity for a
// candidate to be offered as a "did you mean" suggestion.
const suggestionThreshold = 0.5

// Closest returns the candidate most similar to name, or "" when no
// candidate clears the suggestion threshold. Comparison is case-insensitive
// so that a manifest typo like "city" still points at "City".
func Closest(name string, candidates []string) string {
	best := ""
	bestScore := suggestionThreshold

	lower := strings.ToLower(name)

	for _, c := range candidates {
		score := LevenshteinNormalized(lower, strings.ToLower(c))
		if score > bestScore {
			best = c
			bestScore = score
		}
	}

	return best
}
