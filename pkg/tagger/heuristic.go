package tagger

import (
	"strings"
	"unicode"

	"github.com/bastiangx/wordcraft/pkg/dictionary"
)

type closedEntry struct {
	pos   string
	tag   string
	lemma string
}

// closed holds the function words whose class does not depend on context.
var closed = map[string]closedEntry{}

func addClosed(pos, tag string, words ...string) {
	for _, w := range words {
		closed[w] = closedEntry{pos: pos, tag: tag, lemma: w}
	}
}

func addForms(pos, lemma string, forms map[string]string) {
	for w, tag := range forms {
		closed[w] = closedEntry{pos: pos, tag: tag, lemma: lemma}
	}
}

func init() {
	addClosed(Det, "DT", "a", "an", "the", "this", "that", "these", "those",
		"every", "each", "some", "any", "no", "another", "either", "neither", "all", "both")
	addClosed(Pron, "PRP$", "my", "your", "his", "her", "our", "their", "its")
	addClosed(Pron, "PRP", "i", "you", "he", "she", "it", "we", "they", "me", "him",
		"us", "them", "myself", "yourself", "himself", "herself", "itself", "ourselves",
		"themselves", "someone", "something", "everyone", "everything", "anyone",
		"anything", "nobody", "nothing", "one")
	addClosed(Pron, "WP", "who", "whom", "what", "whoever")
	addClosed(Adp, "IN", "in", "on", "at", "into", "onto", "with", "by", "for", "from",
		"of", "over", "under", "about", "after", "before", "between", "through",
		"during", "without", "within", "across", "along", "around", "behind",
		"beyond", "near", "toward", "towards", "upon", "against", "among", "since",
		"until", "like", "beneath", "above", "below", "inside", "outside", "off")
	addClosed(Part, "TO", "to")
	addClosed(Part, "RB", "not", "n't")
	addClosed(CConj, "CC", "and", "or", "but", "nor", "yet")
	addClosed(SConj, "IN", "because", "although", "though", "while", "if", "unless",
		"whereas", "whether", "than", "as", "once")
	addClosed(Adv, "WRB", "when", "where", "why", "how", "whenever", "wherever")
	addClosed(Adv, "RB", "very", "really", "just", "quite", "too", "also", "never",
		"always", "often", "still", "already", "soon", "now", "then", "here", "there",
		"again", "almost", "even", "only", "rather", "so", "basically", "actually",
		"literally", "perhaps", "maybe", "ever", "away", "together", "yesterday",
		"today", "tomorrow", "well")
	addClosed(Aux, "MD", "can", "could", "will", "would", "shall", "should", "may",
		"might", "must")
	addClosed(Intj, "UH", "oh", "wow", "hey", "alas", "yes")
	addForms(Aux, "be", map[string]string{
		"be": "VB", "am": "VBP", "is": "VBZ", "are": "VBP", "was": "VBD",
		"were": "VBD", "been": "VBN", "being": "VBG",
	})
	addForms(Aux, "have", map[string]string{
		"have": "VBP", "has": "VBZ", "had": "VBD", "having": "VBG",
	})
	addForms(Aux, "do", map[string]string{
		"do": "VBP", "does": "VBZ", "did": "VBD",
	})
}

// Copulars are the linking-verb lemmas that take an adjective complement.
var Copulars = toSet(`be seem feel become remain appear look sound smell taste grow get`)

// IsCopular reports whether lemma is a linking verb.
func IsCopular(lemma string) bool { return Copulars.has(strings.ToLower(lemma)) }

var subjectPronouns = toSet(`i you he she it we they someone everyone nobody one who`)

// HeuristicTagger tags with closed word classes, lexicon lookups, suffix
// rules and a few contextual corrections.
type HeuristicTagger struct {
	lex dictionary.Lexicon
	lem Lemmatizer
}

// NewHeuristicTagger returns a tagger backed by lex. lem may be nil, in
// which case lemmas are the lowercase forms.
func NewHeuristicTagger(lex dictionary.Lexicon, lem Lemmatizer) *HeuristicTagger {
	if lex == nil {
		lex = dictionary.Unavailable{}
	}
	return &HeuristicTagger{lex: lex, lem: lem}
}

func (h *HeuristicTagger) Name() string { return "heuristic" }

func (h *HeuristicTagger) Tag(text string) []Token {
	toks := h.baseline(tokenize(text))
	h.correct(toks)
	h.annotate(toks)
	return toks
}

// baseline assigns each token its context-free class. Open-class tokens
// keep an empty Tag until annotate runs.
func (h *HeuristicTagger) baseline(spans []span) []Token {
	toks := make([]Token, len(spans))
	for i, s := range spans {
		lower := strings.ToLower(s.text)
		t := Token{
			Text:  s.text,
			Lower: lower,
			Index: i,
			Space: s.space,
			Alpha: isAlpha(s.text),
		}
		switch {
		case s.text == BlankToken:
			t.POS, t.Tag = Other, "XX"
		case isPunct(s.text):
			t.POS, t.Tag = Punct, punctTag(s.text)
		case unicode.IsDigit(rune(s.text[0])):
			t.POS, t.Tag = Num, "CD"
		default:
			if e, ok := closed[lower]; ok {
				t.POS, t.Tag, t.Lemma = e.pos, e.tag, e.lemma
			} else {
				t.POS = h.openClass(lower, i > 0 && isCapitalized(s.text))
			}
		}
		toks[i] = t
	}
	return toks
}

func (h *HeuristicTagger) openClass(lower string, midCap bool) string {
	if p, ok := h.lex.PrimaryPOS(lower); ok {
		return fromDictionary(p)
	}
	if midCap {
		return PropN
	}
	return suffixClass(lower)
}

func fromDictionary(p dictionary.POS) string {
	switch p {
	case dictionary.Verb:
		return Verb
	case dictionary.Adj:
		return Adj
	case dictionary.Adv:
		return Adv
	}
	return Noun
}

func suffixClass(w string) string {
	switch {
	case strings.HasSuffix(w, "ly") && len(w) > 4:
		return Adv
	case strings.HasSuffix(w, "ing") && len(w) > 5,
		strings.HasSuffix(w, "ed") && len(w) > 4:
		return Verb
	case hasAnySuffix(w, "ness", "tion", "sion", "ment", "ity", "ship", "ism", "hood", "ance", "ence"):
		return Noun
	case hasAnySuffix(w, "ful", "less", "ous", "ive", "able", "ible", "ish", "ic", "al", "ent", "ant"):
		return Adj
	}
	return Noun
}

// correct resolves ambiguous open-class words from their neighbours.
func (h *HeuristicTagger) correct(toks []Token) {
	for i := range toks {
		t := &toks[i]
		if t.Tag != "" || !t.Alpha {
			continue
		}
		tags := h.lex.POSTags(t.Lower)
		prev, next := neighbour(toks, i-1), neighbour(toks, i+1)

		switch {
		case prev != nil && prev.Lower == "to" && (tags.Has(dictionary.Verb) || tags.Empty() && t.POS == Verb):
			t.POS = Verb
		case prev != nil && prev.POS == Aux && prev.Tag == "MD" && tags.Has(dictionary.Verb):
			t.POS = Verb
		case prev != nil && prev.POS == Pron && prev.Tag != "PRP$" && tags.Has(dictionary.Verb):
			t.POS = Verb
		case prev != nil && (prev.POS == Verb || prev.POS == Aux) && Copulars.has(h.verbLemma(prev)) && tags.Has(dictionary.Adj):
			t.POS = Adj
		case prev != nil && (prev.POS == Det || prev.Tag == "PRP$" || prev.POS == Adj):
			if tags.Has(dictionary.Adj) && next != nil && (next.POS == Noun || h.lex.POSTags(next.Lower).Has(dictionary.Noun)) {
				t.POS = Adj
			} else if tags.Has(dictionary.Noun) || tags.Empty() && t.POS != Adj {
				t.POS = Noun
			}
		case strings.HasSuffix(t.Lower, "ly") && tags.Has(dictionary.Adv):
			t.POS = Adv
		}
	}

	// "to" before a non-verb is a preposition.
	for i := range toks {
		if toks[i].Lower != "to" {
			continue
		}
		if next := neighbour(toks, i+1); next == nil || next.POS != Verb {
			toks[i].POS, toks[i].Tag = Adp, "IN"
		}
	}
}

// annotate fills lemmas, fine tags, stop flags and dependency roles.
func (h *HeuristicTagger) annotate(toks []Token) {
	for i := range toks {
		t := &toks[i]
		if t.Lemma == "" {
			t.Lemma = h.lemma(t.Lower, t.POS)
		}
		if t.Tag == "" {
			t.Tag = fineTag(t.Lower, t.Lemma, t.POS)
		}
		t.Stop = IsStopword(t.Lower)
	}
	markDependencies(toks)
}

func (h *HeuristicTagger) verbLemma(t *Token) string {
	if t.Lemma != "" {
		return t.Lemma
	}
	return h.lemma(t.Lower, Verb)
}

func (h *HeuristicTagger) lemma(lower, pos string) string {
	if h.lem == nil || lower == "" {
		return lower
	}
	dp, ok := ToDictionaryPOS(pos)
	if !ok || pos == PropN {
		return lower
	}
	return h.lem.Lemmatize(lower, dp)
}

func fineTag(lower, lemma, pos string) string {
	switch pos {
	case Noun:
		if lemma != lower && strings.HasSuffix(lower, "s") {
			return "NNS"
		}
		return "NN"
	case PropN:
		return "NNP"
	case Verb:
		switch {
		case strings.HasSuffix(lower, "ing"):
			return "VBG"
		case lemma != lower && strings.HasSuffix(lower, "s") && lemma+"s" == lower:
			return "VBZ"
		case lemma != lower:
			return "VBD"
		}
		return "VB"
	case Adj:
		return "JJ"
	case Adv:
		return "RB"
	}
	return "XX"
}

// markDependencies labels the first verb or auxiliary ROOT and the nearest
// preceding pronoun or noun its subject. A participle after a form of "be"
// makes the subject passive.
func markDependencies(toks []Token) {
	root := -1
	for i, t := range toks {
		if t.POS == Verb || t.POS == Aux {
			root = i
			break
		}
	}
	if root < 0 {
		return
	}
	toks[root].Dep = DepRoot
	passive := false
	if toks[root].Lemma == "be" {
		if next := neighbour(toks, root+1); next != nil && next.POS == Verb && strings.HasSuffix(next.Lower, "ed") {
			passive = true
		}
	}
	for i := root - 1; i >= 0; i-- {
		t := &toks[i]
		isSubj := t.POS == Noun || t.POS == PropN || t.POS == Pron && t.Tag != "PRP$" && subjectPronouns.has(t.Lower)
		if !isSubj {
			continue
		}
		if passive {
			t.Dep = DepSubjPass
		} else {
			t.Dep = DepSubj
		}
		return
	}
}

func neighbour(toks []Token, i int) *Token {
	if i < 0 || i >= len(toks) {
		return nil
	}
	return &toks[i]
}

func isPunct(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return s != ""
}

func punctTag(s string) string {
	switch s {
	case ".", "!", "?":
		return "."
	case ",":
		return ","
	case ":", ";":
		return ":"
	}
	return "SYM"
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func hasAnySuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) && len(w) > len(s)+2 {
			return true
		}
	}
	return false
}

type wordSet map[string]struct{}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}
