package utils

import (
	"strings"
)

// SuggestionFilter drops repeats from a word stream. It is not safe for
// concurrent use; build one per request.
type SuggestionFilter struct {
	seenWords map[string]bool
}

// NewSuggestionFilter creates a filter that already excludes the given words
func NewSuggestionFilter(exclude ...string) *SuggestionFilter {
	seen := make(map[string]bool, len(exclude)+8)
	for _, w := range exclude {
		seen[strings.ToLower(w)] = true
	}
	return &SuggestionFilter{seenWords: seen}
}

// ShouldInclude reports whether word is new, marking it as seen.
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}

// Dedupe returns words with repeats removed, keeping first occurrences.
func Dedupe(words []string) []string {
	f := NewSuggestionFilter()
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" && f.ShouldInclude(w) {
			out = append(out, w)
		}
	}
	return out
}
