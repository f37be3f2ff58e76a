// Package tokenizer estimates token counts for backends that do not
// report usage.
package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// Estimate approximates the token count of text. English prose averages
// about four characters or three quarters of a word per token; the larger
// of the two estimates is used.
func Estimate(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	byWords := len(strings.Fields(text)) * 4 / 3
	byChars := utf8.RuneCountInString(text) / 4
	return max(byWords, byChars, 1)
}

// EstimateAll sums Estimate over parts.
func EstimateAll(parts ...string) int {
	total := 0
	for _, p := range parts {
		total += Estimate(p)
	}
	return total
}
