package suggest

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/conceptnet"
	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/tone"
)

// Provenance records which generators proposed a candidate.
type Provenance uint16

const (
	SourceContext Provenance = 1 << iota
	SourceWordNet
	SourceDerivational
	SourceConceptNet
	SourcePattern
	SourceSlot
	SourceSelection
	SourceNeutral
	SourceFallback
	SourceSeed
)

var sourceNames = []struct {
	src  Provenance
	name string
}{
	{SourceContext, "context"},
	{SourceWordNet, "wordnet"},
	{SourceDerivational, "derivational"},
	{SourceConceptNet, "conceptnet"},
	{SourcePattern, "pattern"},
	{SourceSlot, "slot"},
	{SourceSelection, "selection"},
	{SourceNeutral, "neutral"},
	{SourceFallback, "fallback"},
	{SourceSeed, "seed"},
}

func (p Provenance) Has(src Provenance) bool { return p&src != 0 }

// Names lists the set tags in declaration order.
func (p Provenance) Names() []string {
	var out []string
	for _, s := range sourceNames {
		if p.Has(s.src) {
			out = append(out, s.name)
		}
	}
	return out
}

// Primary is the first tag, or "unknown" for an empty set.
func (p Provenance) Primary() string {
	if names := p.Names(); len(names) > 0 {
		return names[0]
	}
	return "unknown"
}

func (p Provenance) String() string { return strings.Join(p.Names(), ",") }

// Generator limits.
const (
	DefaultPoolCap       = 320
	expansionTerms       = 6
	synonymsPerTerm      = 8
	derivedPerSynonym    = 4
	derivedPerTerm       = 8
	networkTerms         = 3
	relatedPerTerm       = 10
	adverbContextWords   = 24
	adjectiveContextWord = 20
	selectionSeeds       = 3
)

// DraftVerbs seed every blank and fill verb slots.
var DraftVerbs = []string{
	"consider", "explore", "remember", "reflect", "discover",
	"imagine", "reveal", "become", "feel", "linger",
}

// IrregularAdverbs are adverbs that do not take -ly.
var IrregularAdverbs = map[string]struct{}{
	"well": {}, "fast": {}, "hard": {}, "late": {}, "early": {}, "straight": {}, "right": {}, "near": {},
}

// Pool is the provenance-tagged candidate set for one request.
type Pool struct {
	lex     dictionary.Lexicon
	sources map[string]Provenance
	emotion map[string]float64
}

// NewPool returns an empty pool validating words against lex.
func NewPool(lex dictionary.Lexicon) *Pool {
	if lex == nil {
		lex = dictionary.Unavailable{}
	}
	return &Pool{lex: lex, sources: make(map[string]Provenance)}
}

// Add inserts word with src. It reports false when the word fails the
// validity filter.
func (p *Pool) Add(word string, src Provenance) bool {
	w := strings.ToLower(strings.TrimSpace(word))
	if !p.valid(w) {
		return false
	}
	p.sources[w] |= src
	return true
}

func (p *Pool) addAll(words []string, src Provenance) {
	for _, w := range words {
		p.Add(w, src)
	}
}

func (p *Pool) valid(w string) bool {
	if len(w) < 3 || strings.EqualFold(w, BlankToken) || strings.ContainsAny(w, " \t\n") {
		return false
	}
	return utils.IsCandidateToken(w) && p.lex.IsValidWord(w)
}

func (p *Pool) Len() int { return len(p.sources) }

// Words returns the keys in ascending order.
func (p *Pool) Words() []string {
	out := make([]string, 0, len(p.sources))
	for w := range p.sources {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func (p *Pool) Sources(word string) Provenance { return p.sources[word] }

// Emotion is the emotion overlap score computed by Aggregate.
func (p *Pool) Emotion(word string) float64 { return p.emotion[word] }

// Cap keeps the first n keys in ascending order.
func (p *Pool) Cap(n int) {
	if n <= 0 || len(p.sources) <= n {
		return
	}
	for _, w := range p.Words()[n:] {
		delete(p.sources, w)
	}
}

// Aggregator builds candidate pools from the lexical resources.
type Aggregator struct {
	Lexicon  dictionary.Lexicon
	Network  conceptnet.Network
	Emotions *dictionary.Emotions
	Cap      int
}

// AggregateInput carries the per-request state the generators read.
type AggregateInput struct {
	Decision IntentDecision
	Mode     string
	Profile  *tone.Profile
	Neutral  *tone.Profile
}

// Aggregate runs the generators in order and returns the capped pool.
func (a *Aggregator) Aggregate(ctx context.Context, in AggregateInput) *Pool {
	pool := NewPool(a.Lexicon)
	lex := pool.lex
	d := in.Decision

	var contextWords []string
	if in.Profile != nil {
		contextWords = in.Profile.Words
	}
	pool.addAll(contextWords, SourceContext)

	writing := in.Mode == ModeWrite || in.Mode == ModeRewrite
	for _, term := range head(d.FocusTerms, expansionTerms) {
		for _, syn := range lex.Synonyms(term, synonymsPerTerm) {
			pool.Add(syn, SourceWordNet)
			pool.addAll(lex.DerivationalForms(syn, derivedPerSynonym), SourceDerivational)
		}
		if writing {
			pool.addAll(lex.DerivationalForms(term, derivedPerTerm), SourceDerivational)
		}
	}

	if writing && a.Network != nil {
		for _, related := range a.related(ctx, head(d.FocusTerms, networkTerms)) {
			pool.addAll(related, SourceConceptNet)
		}
	}

	if d.Intent == IntentBlank {
		pool.addAll(DraftVerbs, SourcePattern)
		switch {
		case d.ExpectedPOS.Only(dictionary.Adv):
			for _, w := range head(contextWords, adverbContextWords) {
				pool.Add(AdverbForm(w), SourceSlot)
			}
		case d.ExpectedPOS.Only(dictionary.Verb):
			pool.addAll(DraftVerbs, SourceSlot)
		case d.ExpectedPOS.Only(dictionary.Adj):
			pool.addAll(head(contextWords, adjectiveContextWord), SourceSlot)
		}
	}

	if d.Intent == IntentSelection {
		pool.addAll(head(d.FocusTerms, selectionSeeds), SourceSelection)
	}

	if in.Mode == ModeEdit && in.Neutral != nil {
		pool.addAll(in.Neutral.Words, SourceNeutral)
	}

	if pool.Len() == 0 {
		pool.addAll(contextWords, SourceFallback)
	}

	limit := a.Cap
	if limit <= 0 {
		limit = DefaultPoolCap
	}
	pool.Cap(limit)

	pool.emotion = make(map[string]float64, pool.Len())
	var target []string
	if in.Profile != nil {
		target = in.Profile.Emotions
	}
	for w := range pool.sources {
		pool.emotion[w] = a.Emotions.Score(w, target)
	}
	return pool
}

// related fans the network lookups out and returns them in term order.
// Each lookup fails open, so the group never returns an error.
func (a *Aggregator) related(ctx context.Context, terms []string) [][]string {
	results := make([][]string, len(terms))
	g, gctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		i, term := i, term
		g.Go(func() error {
			results[i] = a.Network.RelatedTerms(gctx, term, relatedPerTerm)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// AdverbForm derives the manner adverb of an adjective.
func AdverbForm(word string) string {
	if _, ok := IrregularAdverbs[word]; ok {
		return word
	}
	if strings.HasSuffix(word, "y") && len(word) > 3 {
		return word[:len(word)-1] + "ily"
	}
	return word + "ly"
}
