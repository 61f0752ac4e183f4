// Package text provides small utilities for text processing shared across
// the LLM adapters and prompt builders.
package text

import "strings"

// CountRunes counts the number of Unicode characters (runes) in the given
// text. Prompt budgets are expressed in characters, and counting runes
// instead of bytes keeps the budget correct for non-ASCII venue and artist
// names.
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate cuts text to at most limit runes, appending the suffix when a
// cut was made. The suffix counts against the limit.
func Truncate(text string, limit int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	keep := limit - len([]rune(suffix))
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + suffix
}

// NormalizeSpace collapses runs of whitespace into single spaces and trims
// the ends. Used when flattening scraped page text into prompt input.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
