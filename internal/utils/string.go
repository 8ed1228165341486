package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchLeadingCase upper-cases the first rune of updated when original
// starts with an upper-case letter and updated does not.
func MatchLeadingCase(original, updated string) string {
	if original == "" || updated == "" {
		return updated
	}
	o, _ := utf8.DecodeRuneInString(original)
	u, size := utf8.DecodeRuneInString(updated)
	if unicode.IsUpper(o) && unicode.IsLower(u) {
		return string(unicode.ToUpper(u)) + updated[size:]
	}
	return updated
}

// HasTerminalPunct reports whether s ends in '.', '!' or '?' once trimmed.
func HasTerminalPunct(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// EnsureTerminalPunct appends a period to text when original ended with
// terminal punctuation and text lost it.
func EnsureTerminalPunct(text, original string) string {
	if text == "" || !HasTerminalPunct(original) || HasTerminalPunct(text) {
		return text
	}
	return text + "."
}

// IsUpperInitial reports whether s starts with an upper-case letter.
func IsUpperInitial(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
