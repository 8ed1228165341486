// Package tagger splits text into tokens and annotates them with a
// universal part-of-speech tag, a lemma, a stopword flag and a minimal
// subject/root dependency role.
//
// Two backends exist. HeuristicTagger uses closed word classes, the
// lexicon and suffix rules; ProseTagger defers open-class words to the
// prose averaged-perceptron model. Callers treat a nil Tagger as
// unavailable and fall back to the regex helpers in this package.
package tagger

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bastiangx/wordcraft/pkg/dictionary"
)

// BlankToken is the canonical placeholder for a missing word.
const BlankToken = "[BLANK]"

// Universal POS labels.
const (
	Noun  = "NOUN"
	PropN = "PROPN"
	Verb  = "VERB"
	Aux   = "AUX"
	Adj   = "ADJ"
	Adv   = "ADV"
	Adp   = "ADP"
	Det   = "DET"
	Pron  = "PRON"
	CConj = "CCONJ"
	SConj = "SCONJ"
	Part  = "PART"
	Num   = "NUM"
	Intj  = "INTJ"
	Punct = "PUNCT"
	Sym   = "SYM"
	Other = "X"
)

// Dependency roles assigned by the taggers.
const (
	DepRoot     = "ROOT"
	DepSubj     = "nsubj"
	DepSubjPass = "nsubjpass"
)

// Token is one annotated token.
type Token struct {
	Text  string
	Lower string
	Lemma string
	POS   string
	Tag   string // Penn Treebank tag
	Dep   string
	Stop  bool
	Alpha bool
	Index int
	Space bool // followed by whitespace
}

// IsBlank reports whether the token is the blank placeholder.
func (t Token) IsBlank() bool { return t.Text == BlankToken }

// Tagger annotates text.
type Tagger interface {
	Name() string
	Tag(text string) []Token
}

// Lemmatizer maps an inflected form to its base form for a word class.
// *dictionary.WordNet satisfies it.
type Lemmatizer interface {
	Lemmatize(word string, pos dictionary.POS) string
}

var (
	tokenRE = regexp.MustCompile(`\[BLANK\]|[A-Za-z]+(?:'[A-Za-z]+)*(?:-[A-Za-z]+)*|\d+(?:[.,]\d+)*|[^\s\w]|_+`)
	wordRE  = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-']+`)
)

type span struct {
	text  string
	space bool
}

func tokenize(text string) []span {
	locs := tokenRE.FindAllStringIndex(text, -1)
	out := make([]span, 0, len(locs))
	for _, loc := range locs {
		space := loc[1] < len(text) && unicode.IsSpace(rune(text[loc[1]]))
		out = append(out, span{text: text[loc[0]:loc[1]], space: space})
	}
	return out
}

// Words returns the lowercase word tokens of text, skipping the blank
// placeholder.
func Words(text string) []string {
	text = strings.ReplaceAll(text, BlankToken, " ")
	found := wordRE.FindAllString(text, -1)
	for i, w := range found {
		found[i] = strings.ToLower(w)
	}
	return found
}

// IsContentPOS reports whether pos is one of the four open classes.
func IsContentPOS(pos string) bool {
	switch pos {
	case Noun, Verb, Adj, Adv:
		return true
	}
	return false
}

// ContentTerms returns up to limit unique content lemmas of text. With a
// tagger it keeps non-stopword alphabetic nouns, verbs, adjectives and
// adverbs; without one it keeps the non-stopword regex words.
func ContentTerms(tg Tagger, text string, limit int) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(w string) bool {
		if w == "" {
			return false
		}
		if _, dup := seen[w]; dup {
			return false
		}
		seen[w] = struct{}{}
		out = append(out, w)
		return limit > 0 && len(out) >= limit
	}

	if tg == nil {
		for _, w := range Words(text) {
			if IsStopword(w) {
				continue
			}
			if add(w) {
				break
			}
		}
		return out
	}
	for _, tok := range tg.Tag(text) {
		if tok.IsBlank() || tok.Stop || !tok.Alpha || !IsContentPOS(tok.POS) {
			continue
		}
		if add(strings.ToLower(strings.TrimSpace(tok.Lemma))) {
			break
		}
	}
	return out
}

// Lemmas returns the lemma of every non-stopword alphabetic token, in
// order. Without a tagger it returns the non-stopword regex words.
func Lemmas(tg Tagger, text string) []string {
	if tg == nil {
		var out []string
		for _, w := range Words(text) {
			if !IsStopword(w) {
				out = append(out, w)
			}
		}
		return out
	}
	var out []string
	for _, tok := range tg.Tag(text) {
		if tok.Stop || !tok.Alpha || tok.IsBlank() {
			continue
		}
		if l := strings.ToLower(tok.Lemma); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ToDictionaryPOS maps a universal tag onto the lexicon's word classes.
func ToDictionaryPOS(pos string) (dictionary.POS, bool) {
	switch pos {
	case Noun, PropN:
		return dictionary.Noun, true
	case Verb, Aux:
		return dictionary.Verb, true
	case Adj:
		return dictionary.Adj, true
	case Adv:
		return dictionary.Adv, true
	}
	return 0, false
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
