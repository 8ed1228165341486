package suggest

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/embed"
	"github.com/bastiangx/wordcraft/pkg/tagger"
	"github.com/bastiangx/wordcraft/pkg/tone"
)

// Scoring thresholds.
const (
	MaxScore        = 0.99
	vocabularyFloor = 0.62
	strictFit       = 0.95
	weakFit         = 0.2
	strongSemantic  = 0.62
	goodSemantic    = 0.54
	rareFrequency   = 0.06
	frequencyCap    = 20.0
)

var sourceBonus = []struct {
	src   Provenance
	bonus float64
}{
	{SourceWordNet, 0.05},
	{SourceConceptNet, 0.03},
	{SourceContext, 0.03},
	{SourceDerivational, 0.02},
}

// Ranker scores pool candidates.
type Ranker struct {
	Lexicon dictionary.Lexicon
	Tagger  tagger.Tagger
	Cache   *embed.Cache
}

// RankInput is the per-request state the ranker reads. Slot is set when a
// blank is present outside a selection.
type RankInput struct {
	Decision IntentDecision
	Pool     *Pool
	Profile  *tone.Profile
	Weights  config.Weights
	TopK     int
	Slot     bool
}

type features struct {
	semantic, context, emotion, grammar, frequency float64
}

// Rank returns the top candidates sorted by descending score. Equal scores
// keep ascending word order.
func (r *Ranker) Rank(ctx context.Context, in RankInput) []ScoredCandidate {
	if in.Pool == nil || in.Pool.Len() == 0 {
		return nil
	}
	lex := r.Lexicon
	if lex == nil {
		lex = dictionary.Unavailable{}
	}
	words := in.Pool.Words()
	texts := make([]string, 0, len(words)+1)
	texts = append(texts, sentenceText(in.Decision.CleanedText))
	texts = append(texts, words...)
	vecs := make([][]float32, len(texts))
	if r.Cache != nil {
		vecs = r.Cache.Vectors(ctx, texts)
	}
	var centroid []float32
	if in.Profile != nil {
		centroid = in.Profile.Centroid
	}

	d := in.Decision
	w := in.Weights
	out := make([]ScoredCandidate, 0, len(words))
	for i, word := range words {
		tags := lex.POSTags(word)
		f := features{grammar: GrammaticalFit(word, tags, d.ExpectedPOS)}
		if d.StrictPOS && !d.ExpectedPOS.Empty() && f.grammar < strictFit {
			continue
		}
		vec := vecs[i+1]
		f.semantic = embed.Scale(embed.Cosine(vecs[0], vec))
		f.context = embed.Scale(embed.Cosine(centroid, vec))
		if in.Profile.Has(word) {
			f.context = math.Max(f.context, vocabularyFloor)
		}
		f.emotion = in.Pool.Emotion(word)
		f.frequency = math.Min(float64(lex.Frequency(word)), frequencyCap) / frequencyCap

		src := in.Pool.Sources(word)
		total := w.Semantic*f.semantic + w.Context*f.context + w.Emotion*f.emotion +
			w.Grammar*f.grammar + w.Frequency*f.frequency
		for _, b := range sourceBonus {
			if src.Has(b.src) {
				total += b.bonus
			}
		}

		out = append(out, ScoredCandidate{
			Word:    word,
			Score:   utils.Round4(utils.Clamp(total, 0, MaxScore)),
			POS:     r.displayPOS(word, tags, d.ExpectedPOS),
			Note:    note(f, d, in.Profile, in.Slot),
			Sources: src,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if in.TopK > 0 && len(out) > in.TopK {
		out = out[:in.TopK]
	}
	return out
}

// sentenceText is the cleaned text without the blank placeholder.
func sentenceText(cleaned string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(cleaned, BlankToken, " ")), " ")
}

// GrammaticalFit scores how well a word with lexicon tags fills a slot
// expecting the given classes.
func GrammaticalFit(word string, tags, expected dictionary.POSSet) float64 {
	if expected.Empty() {
		return 1
	}
	if tags.Empty() {
		return 0.4
	}
	if !tags.Intersect(expected).Empty() {
		switch {
		case expected.Only(dictionary.Adv):
			if _, irregular := IrregularAdverbs[word]; irregular || strings.HasSuffix(word, "ly") {
				return 1
			}
			return 0.45
		case expected.Only(dictionary.Verb):
			if tags.Has(dictionary.Verb) || hasSuffix(word, "e", "ed", "ing") {
				return 1
			}
			return 0.55
		}
		return 1
	}
	modifiers := dictionary.NewPOSSet(dictionary.Adj, dictionary.Adv)
	if !expected.Intersect(modifiers).Empty() && !tags.Intersect(modifiers).Empty() {
		return 0.45
	}
	return 0
}

func (r *Ranker) displayPOS(word string, tags, expected dictionary.POSSet) string {
	if names := posNames(tags.Intersect(expected)); len(names) > 0 {
		return names[0]
	}
	if r.Lexicon != nil {
		if p, ok := r.Lexicon.PrimaryPOS(word); ok {
			return p.String()
		}
	}
	if names := posNames(tags); len(names) > 0 {
		return names[0]
	}
	if r.Tagger != nil {
		if toks := r.Tagger.Tag(word); len(toks) > 0 {
			if p, ok := tagger.ToDictionaryPOS(toks[0].POS); ok {
				return p.String()
			}
		}
	}
	return tagger.Other
}

func note(f features, d IntentDecision, profile *tone.Profile, slot bool) string {
	var parts []string
	switch {
	case slot && !d.ExpectedPOS.Empty() && f.grammar >= strictFit:
		hint := d.SlotHint
		if hint == "" {
			hint = "Fits the grammatical slot."
		}
		parts = append(parts, hint)
	case f.grammar < weakFit:
		parts = append(parts, "Weak grammatical fit.")
	}
	if profile != nil {
		if f.context >= vocabularyFloor {
			parts = append(parts, "Matches "+profile.Key+" tone.")
		} else {
			parts = append(parts, "Aligned with "+profile.Description+".")
		}
	}
	switch {
	case f.semantic >= strongSemantic:
		parts = append(parts, "Strong semantic fit.")
	case f.semantic >= goodSemantic:
		parts = append(parts, "Good semantic match.")
	default:
		parts = append(parts, "Lexical alternative for this context.")
	}
	if f.frequency < rareFrequency {
		parts = append(parts, "Rare word.")
	}
	return strings.Join(parts, " ")
}

func hasSuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}
