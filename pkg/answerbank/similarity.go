package answerbank

import "github.com/agnivade/levenshtein"

// Similarity returns an edit-distance ratio in [0,1] between two normalized
// question strings; 1 means identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
