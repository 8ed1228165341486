package utils

import (
	"strings"
	"unicode"
)

// MaxInputRunes bounds what the CLI and server accept as one request text.
const MaxInputRunes = 2000

// ContainsLetters checks if a string has at least one letter
func ContainsLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsRepetitive checks if a string is one character repeated, like "aaa"
func IsRepetitive(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) <= 2 {
		return false
	}
	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return false
		}
	}
	return true
}

// IsValidInput checks if a line of user text is worth sending through
// the engine. Numbers-only, letterless, repetitive, and oversized
// inputs are rejected.
func IsValidInput(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if IsOnlyNumbers(s) || !ContainsLetters(s) {
		return false
	}
	if IsRepetitive(s) {
		return false
	}
	return len([]rune(s)) <= MaxInputRunes
}

// IsCandidateToken reports whether w is lowercase ASCII letters with
// optional inner hyphens, starting with a letter.
func IsCandidateToken(w string) bool {
	if w == "" {
		return false
	}
	for i := 0; i < len(w); i++ {
		c := w[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c == '-' && i > 0:
		default:
			return false
		}
	}
	return true
}
