package suggest

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/tagger"
)

// Intents a request can resolve to.
const (
	IntentSentence  = "sentence"
	IntentBlank     = "blank"
	IntentSelection = "selection"
)

// BlankToken is the canonical placeholder every blank marker becomes.
const BlankToken = tagger.BlankToken

var blankRE = regexp.MustCompile(`(?i)(_{2,}|\.{3,}|\(\s*blank\s*\)|\[\s*blank\s*\]|<\s*blank\s*>|\{\s*blank\s*\})`)

const (
	selectionTermLimit = 4
	blankTermLimit     = 5
	sentenceTermLimit  = 6
	selectionFallback  = 3
)

var (
	noTaggerDeterminers = wordSet("the a an this that these those my your his her its our their some any every each no")
	noTaggerCopulars    = wordSet("be am is are was were been being seem seems seemed feel feels felt " +
		"become becomes became remain remains remained appear appears appeared look looks looked " +
		"sound sounds sounded smell smells smelled taste tastes tasted grow grows grew get gets got")
	noTaggerPrepositions = wordSet("about above across after against along among around at before behind below " +
		"beneath beside between beyond by during for from in inside into near of off on onto out outside " +
		"over past since through toward towards under until upon with within without")
)

func wordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// IntentDecision is what the preprocessor learned about a request. It is
// built once per request and never modified.
type IntentDecision struct {
	Intent        string
	CleanedText   string
	BlankPresent  bool
	SelectionText string
	FocusTerms    []string
	ExpectedPOS   dictionary.POSSet
	StrictPOS     bool
	FocusWindow   string
	SlotHint      string
}

// Clean NFKC-normalizes text, rewrites the first blank marker to
// BlankToken, drops any later ones, collapses whitespace and lowercases
// everything but the placeholder.
func Clean(text string) (string, bool) {
	text = norm.NFKC.String(text)
	text = blankRE.ReplaceAllString(text, " "+BlankToken+" ")

	blank := false
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if strings.EqualFold(f, BlankToken) {
			if blank {
				continue
			}
			blank = true
			out = append(out, BlankToken)
			continue
		}
		out = append(out, strings.ToLower(f))
	}
	return strings.Join(out, " "), blank
}

// Preprocess classifies a request and extracts its focus terms. tg may be
// nil; lex may be dictionary.Unavailable.
func Preprocess(text string, sel *Selection, tg tagger.Tagger, lex dictionary.Lexicon) IntentDecision {
	if lex == nil {
		lex = dictionary.Unavailable{}
	}
	cleaned, blank := Clean(text)
	d := IntentDecision{
		Intent:       IntentSentence,
		CleanedText:  cleaned,
		BlankPresent: blank,
		FocusWindow:  cleaned,
	}

	selText := ""
	if sel != nil {
		selText = strings.TrimSpace(norm.NFKC.String(sel.Text))
	}

	switch {
	case selText != "":
		d.Intent = IntentSelection
		d.SelectionText = selText
		d.FocusWindow = selText
		d.FocusTerms = tagger.ContentTerms(tg, selText, selectionTermLimit)
		words := selectionWords(tg, selText)
		if len(d.FocusTerms) == 0 {
			d.FocusTerms = head(words, selectionFallback)
		}
		d.ExpectedPOS = selectionPOS(tg, lex, selText, words)
		d.StrictPOS = d.ExpectedPOS.Len() == 1

	case blank:
		d.Intent = IntentBlank
		var terms []string
		if focus := focusWord(cleaned); focus != "" {
			terms = append(terms, focus)
		}
		for _, t := range tagger.ContentTerms(tg, cleaned, blankTermLimit) {
			if len(terms) == 0 || t != terms[0] {
				terms = append(terms, t)
			}
		}
		d.FocusTerms = terms
		d.ExpectedPOS, d.SlotHint = InferSlot(tg, cleaned)
		d.StrictPOS = d.ExpectedPOS.Len() == 1

	default:
		d.FocusTerms = tagger.ContentTerms(tg, cleaned, sentenceTermLimit)
		if len(d.FocusTerms) == 0 {
			d.FocusTerms = head(tagger.Lemmas(tg, cleaned), sentenceTermLimit)
		}
	}
	return d
}

func selectionWords(tg tagger.Tagger, text string) []string {
	if words := tagger.Lemmas(tg, text); len(words) > 0 {
		return words
	}
	return tagger.Words(text)
}

// selectionPOS reads the lexicon tags of the selection's last word and
// falls back to the tagger's class for it.
func selectionPOS(tg tagger.Tagger, lex dictionary.Lexicon, text string, words []string) dictionary.POSSet {
	if len(words) == 0 {
		return 0
	}
	if set := lex.POSTags(words[len(words)-1]); !set.Empty() {
		return set
	}
	if tg == nil {
		return 0
	}
	toks := tg.Tag(text)
	for i := len(toks) - 1; i >= 0; i-- {
		if !toks[i].Alpha {
			continue
		}
		if p, ok := tagger.ToDictionaryPOS(toks[i].POS); ok && toks[i].POS != tagger.PropN {
			return dictionary.NewPOSSet(p)
		}
		break
	}
	return 0
}

// focusWord is the word right before the blank, stripped of punctuation.
func focusWord(cleaned string) string {
	fields := strings.Fields(cleaned)
	for i, f := range fields {
		if f == BlankToken {
			if i == 0 {
				return ""
			}
			return strings.Trim(fields[i-1], ".,!?;:")
		}
	}
	return ""
}

// InferSlot guesses the word classes that fit the blank in text, plus a
// short description of the slot. The preceding token decides first.
func InferSlot(tg tagger.Tagger, text string) (dictionary.POSSet, string) {
	if tg == nil {
		return inferSlotWords(text)
	}
	toks := tg.Tag(text)
	bi := -1
	for i := range toks {
		if toks[i].IsBlank() {
			bi = i
			break
		}
	}
	if bi < 0 {
		return 0, ""
	}

	if bi > 0 {
		prev := toks[bi-1]
		switch {
		case prev.Lower == "to":
			return dictionary.NewPOSSet(dictionary.Verb), "Fits infinitive slot after 'to'."
		case tagger.IsCopular(prev.Lemma):
			return dictionary.NewPOSSet(dictionary.Adj), "Fits descriptive slot after '" + prev.Text + "'."
		case prev.POS == tagger.Det || prev.POS == tagger.Pron:
			return expected(dictionary.Noun, dictionary.Adj)
		case prev.POS == tagger.Verb || prev.POS == tagger.Aux:
			return dictionary.NewPOSSet(dictionary.Adv), "Fits manner slot after '" + prev.Text + "'."
		case prev.POS == tagger.Adj || prev.POS == tagger.Adp:
			return expected(dictionary.Noun)
		}
	}
	if bi+1 < len(toks) {
		switch toks[bi+1].POS {
		case tagger.Noun, tagger.PropN:
			return expected(dictionary.Adj)
		case tagger.Verb, tagger.Aux:
			return expected(dictionary.Adv)
		case tagger.Adp:
			return expected(dictionary.Noun)
		}
	}
	return 0, ""
}

func inferSlotWords(text string) (dictionary.POSSet, string) {
	fields := strings.Fields(text)
	bi := -1
	for i, f := range fields {
		if f == BlankToken {
			bi = i
			break
		}
	}
	if bi < 0 {
		return 0, ""
	}
	if bi > 0 {
		raw := strings.Trim(fields[bi-1], `.,!?;:"'`)
		prev := strings.ToLower(raw)
		_, copular := noTaggerCopulars[prev]
		_, det := noTaggerDeterminers[prev]
		switch {
		case prev == "to":
			return dictionary.NewPOSSet(dictionary.Verb), "Fits infinitive slot after 'to'."
		case copular:
			return dictionary.NewPOSSet(dictionary.Adj), "Fits descriptive slot after '" + raw + "'."
		case det:
			return expected(dictionary.Noun, dictionary.Adj)
		case len(prev) > 3 && (strings.HasSuffix(prev, "ed") || strings.HasSuffix(prev, "ing")):
			return dictionary.NewPOSSet(dictionary.Adv), "Fits manner slot after '" + raw + "'."
		}
	}
	if bi+1 < len(fields) {
		next := strings.ToLower(strings.Trim(fields[bi+1], `.,!?;:"'`))
		if _, ok := noTaggerPrepositions[next]; ok {
			return expected(dictionary.Noun)
		}
	}
	return 0, ""
}

func expected(ps ...dictionary.POS) (dictionary.POSSet, string) {
	set := dictionary.NewPOSSet(ps...)
	return set, "Fits expected " + strings.Join(posNames(set), ", ") + " slot."
}

// posNames returns the universal tag names in set, sorted.
func posNames(set dictionary.POSSet) []string {
	var names []string
	for _, p := range set.Slice() {
		names = append(names, p.String())
	}
	sort.Strings(names)
	return names
}

func head(words []string, n int) []string {
	if len(words) > n {
		return words[:n]
	}
	return words
}
