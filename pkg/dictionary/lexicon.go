// Package dictionary provides the lexical resources behind the suggestion
// engine: a WordNet-style synset database, a phonetic index for rhymes and
// homophones, and a word-to-emotion lexicon.
//
// Default data is embedded in the binary. Every resource can be swapped for
// an on-disk file through the [lexicon] config section, and every consumer
// can run against the Unavailable lexicon when nothing loads.
package dictionary

import (
	"embed"
	"errors"
	"regexp"
	"strings"
)

//go:embed data/*.toml
var embedded embed.FS

// ErrNoData is returned when a data file parses but holds no usable entries.
var ErrNoData = errors.New("dictionary: no data")

// Lexicon is the lexical database capability.
type Lexicon interface {
	Available() bool
	Synonyms(word string, limit int) []string
	Antonyms(word string, limit int) []string
	DerivationalForms(word string, limit int) []string
	POSTags(word string) POSSet
	PrimaryPOS(word string) (POS, bool)
	IsValidWord(word string) bool
	Frequency(word string) int
	Synsets(word string, limit int) []Synset
	Hypernyms(s Synset, limit int) []Synset
	AreSynonyms(a, b string) bool
}

var wordRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\-]*$`)

// stoplist holds function words that never make useful candidates.
var stoplist = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "to": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "for": {}, "by": {}, "with": {}, "from": {},
}

// IsValidWord applies the lexical shape check shared by every lexicon:
// letters and inner hyphens, at least three characters, not a stoplisted
// function word.
func IsValidWord(word string) bool {
	if len(word) < 3 {
		return false
	}
	if _, stop := stoplist[strings.ToLower(word)]; stop {
		return false
	}
	return wordRE.MatchString(word)
}

// Unavailable is the lexicon used when no synset data could be loaded.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }
func (Unavailable) Synonyms(string, int) []string { return nil }
func (Unavailable) Antonyms(string, int) []string { return nil }
func (Unavailable) DerivationalForms(string, int) []string { return nil }
func (Unavailable) POSTags(string) POSSet { return 0 }
func (Unavailable) PrimaryPOS(string) (POS, bool) { return 0, false }
func (Unavailable) IsValidWord(word string) bool { return IsValidWord(word) }
func (Unavailable) Frequency(string) int { return 0 }
func (Unavailable) Synsets(string, int) []Synset { return nil }
func (Unavailable) Hypernyms(Synset, int) []Synset { return nil }
func (Unavailable) AreSynonyms(string, string) bool { return false }
