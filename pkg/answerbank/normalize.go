package answerbank

import (
	"regexp"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes question text for use as a bank key: lowercase,
// punctuation stripped, whitespace collapsed. It is idempotent, so the same
// semantic question always produces the same key regardless of exact wording.
func Normalize(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	q = nonWordRe.ReplaceAllString(q, " ")
	q = whitespaceRe.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
