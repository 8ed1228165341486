package suggest

import (
	"hash/fnv"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/tagger"
	"github.com/bastiangx/wordcraft/pkg/tone"
)

// Rewrite limits.
const (
	DefaultDriftBudget = 0.52
	DefaultMaxVariants = 3
	driftTermLimit     = 10
	minCompleteTokens  = 4
)

var (
	spaceBeforePunctRE = regexp.MustCompile(`\s+([.,!?;:])`)
	fillerRE           = regexp.MustCompile(`(?i)\b(very|really|just|quite|basically|actually|literally)\b`)
	fillers            = wordSet("very really just quite basically actually literally")
)

var idioms = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`(?i)\bin order to\b`), "to"},
	{regexp.MustCompile(`(?i)\bdue to the fact that\b`), "because"},
	{regexp.MustCompile(`(?i)\bat this point in time\b`), "now"},
	{regexp.MustCompile(`(?i)\bin the event that\b`), "if"},
	{regexp.MustCompile(`(?i)\ba lot of\b`), "many"},
}

// Rewriter produces meaning-preserving rewrites of complete sentences.
type Rewriter struct {
	Lexicon     dictionary.Lexicon
	Tagger      tagger.Tagger
	DriftBudget float64
	MaxVariants int
}

// RewriteInput is one rewrite request. Allow is the orchestrator's gate.
type RewriteInput struct {
	Sentence    string
	Mode        string
	Profile     *tone.Profile
	Suggestions []ScoredCandidate
	Blank       bool
	Allow       bool
}

func (rw *Rewriter) lexicon() dictionary.Lexicon {
	if rw.Lexicon == nil {
		return dictionary.Unavailable{}
	}
	return rw.Lexicon
}

func (rw *Rewriter) budget() float64 {
	if rw.DriftBudget <= 0 {
		return DefaultDriftBudget
	}
	return rw.DriftBudget
}

// IsComplete reports whether sentence has at least four tokens and either
// ends a sentence or carries a verb with a subject.
func (rw *Rewriter) IsComplete(sentence string) bool {
	if len(strings.Fields(sentence)) < minCompleteTokens {
		return false
	}
	if utils.HasTerminalPunct(sentence) {
		return true
	}
	if rw.Tagger == nil {
		return false
	}
	var verb, subj bool
	for _, t := range rw.Tagger.Tag(sentence) {
		if t.POS == tagger.Verb || t.POS == tagger.Aux {
			verb = true
		}
		if t.Dep == tagger.DepSubj || t.Dep == tagger.DepSubjPass {
			subj = true
		}
	}
	return verb && subj
}

// Rewrite returns the variants for in, base rewrite first. It returns nil
// when the gate is closed, a blank is present or the sentence is
// incomplete.
func (rw *Rewriter) Rewrite(in RewriteInput) []string {
	sentence := strings.TrimSpace(in.Sentence)
	if sentence == "" || !in.Allow || in.Blank || !rw.IsComplete(sentence) {
		return nil
	}
	first := rw.rewriteOne(sentence, in.Mode, in.Profile, in.Suggestions)
	if first == "" {
		return nil
	}

	limit := rw.MaxVariants
	if limit <= 0 {
		limit = DefaultMaxVariants
	}
	variants := []string{first}
	seen := map[string]struct{}{first: {}}
	accept := func(v string) {
		if len(variants) >= limit || v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		if rw.Drift(first, v) > rw.budget() {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	for _, s := range in.Suggestions {
		if len(variants) >= limit {
			break
		}
		accept(rw.Substitute(first, s))
	}
	if in.Mode == ModeRewrite && in.Profile != nil && len(in.Profile.Phrases) > 0 {
		accept(AppendPhrase(first, TonePhrase(sentence, in.Profile.Phrases)))
	}
	return variants
}

func (rw *Rewriter) rewriteOne(sentence, mode string, profile *tone.Profile, suggestions []ScoredCandidate) string {
	base := applyIdioms(NormalizeSpacing(sentence))
	out := base
	switch mode {
	case ModeEdit:
		out = rw.RemoveFillers(base)
	case ModeRewrite:
		out = rw.RemoveFillers(base)
		if profile != nil {
			out = rw.InjectAdverb(out, profile.Adverb)
		}
		if len(suggestions) > 0 {
			out = rw.Substitute(out, suggestions[0])
		}
	}
	if !utils.ContainsLetters(out) || rw.Drift(base, out) > rw.budget() {
		out = base
	}
	out = utils.EnsureTerminalPunct(out, sentence)
	return utils.MatchLeadingCase(sentence, out)
}

// NormalizeSpacing removes spaces before punctuation and collapses runs of
// whitespace.
func NormalizeSpacing(text string) string {
	text = spaceBeforePunctRE.ReplaceAllString(text, "$1")
	return strings.Join(strings.Fields(text), " ")
}

func applyIdioms(text string) string {
	for _, id := range idioms {
		text = id.re.ReplaceAllString(text, id.with)
	}
	return text
}

// RemoveFillers drops intensifiers. With a tagger only adverb and particle
// uses are removed.
func (rw *Rewriter) RemoveFillers(text string) string {
	if rw.Tagger == nil {
		return NormalizeSpacing(fillerRE.ReplaceAllString(text, ""))
	}
	toks := rw.Tagger.Tag(text)
	kept := toks[:0]
	for _, t := range toks {
		if _, filler := fillers[t.Lower]; filler && (t.POS == tagger.Adv || t.POS == tagger.Part) {
			continue
		}
		kept = append(kept, t)
	}
	return join(kept)
}

// InjectAdverb places adverb before the first verb or auxiliary that is
// not the opening token.
func (rw *Rewriter) InjectAdverb(text, adverb string) string {
	if rw.Tagger == nil || adverb == "" {
		return text
	}
	toks := rw.Tagger.Tag(text)
	for i, t := range toks {
		if i == 0 || (t.POS != tagger.Verb && t.POS != tagger.Aux) {
			continue
		}
		out := make([]tagger.Token, 0, len(toks)+1)
		out = append(out, toks[:i]...)
		out = append(out, tagger.Token{Text: adverb, Space: true})
		out = append(out, toks[i:]...)
		return join(out)
	}
	return text
}

// Substitute swaps the first token that is a lexicon synonym of the
// suggestion and shares its class. Only adjectives and adverbs are
// substituted; the token's leading case is kept.
func (rw *Rewriter) Substitute(text string, s ScoredCandidate) string {
	if rw.Tagger == nil || (s.POS != tagger.Adj && s.POS != tagger.Adv) {
		return text
	}
	word := strings.ToLower(s.Word)
	toks := rw.Tagger.Tag(text)
	for i, t := range toks {
		if t.POS != s.POS || !t.Alpha {
			continue
		}
		if t.Lower == word {
			return text
		}
		lemma := strings.ToLower(t.Lemma)
		if lemma == "" {
			lemma = t.Lower
		}
		if !rw.lexicon().AreSynonyms(lemma, word) {
			continue
		}
		repl := word
		if utils.IsUpperInitial(t.Text) {
			repl = cases.Title(language.English).String(word)
		}
		toks[i].Text = repl
		return join(toks)
	}
	return text
}

// Drift is the share of the original's content terms missing from the
// rewrite. Either side having no terms counts as no drift.
func (rw *Rewriter) Drift(original, rewritten string) float64 {
	before := tagger.ContentTerms(rw.Tagger, original, driftTermLimit)
	after := tagger.ContentTerms(rw.Tagger, rewritten, driftTermLimit)
	if len(before) == 0 || len(after) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(after))
	for _, t := range after {
		have[t] = struct{}{}
	}
	shared := 0
	for _, t := range before {
		if _, ok := have[t]; ok {
			shared++
		}
	}
	return 1 - float64(shared)/float64(len(before))
}

// TonePhrase picks a phrase deterministically from the sentence hash.
func TonePhrase(sentence string, phrases []string) string {
	if len(phrases) == 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(sentence))
	return phrases[h.Sum32()%uint32(len(phrases))]
}

// AppendPhrase attaches phrase as a trailing clause, before the terminal
// punctuation when there is one.
func AppendPhrase(text, phrase string) string {
	phrase = strings.TrimSpace(strings.TrimLeft(phrase, ", "))
	if phrase == "" {
		return text
	}
	if utils.HasTerminalPunct(text) {
		text = strings.TrimSpace(text)
		return text[:len(text)-1] + ", " + phrase + text[len(text)-1:]
	}
	return text + ", " + phrase
}

// join rebuilds text from tokens and their trailing-space flags.
func join(toks []tagger.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
		if t.Space {
			b.WriteByte(' ')
		}
	}
	return NormalizeSpacing(b.String())
}
