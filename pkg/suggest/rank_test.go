package suggest

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/tone"
)

func TestGrammaticalFit(t *testing.T) {
	var (
		none    dictionary.POSSet
		adv     = dictionary.NewPOSSet(dictionary.Adv)
		adj     = dictionary.NewPOSSet(dictionary.Adj)
		verb    = dictionary.NewPOSSet(dictionary.Verb)
		noun    = dictionary.NewPOSSet(dictionary.Noun)
		nounAdj = dictionary.NewPOSSet(dictionary.Noun, dictionary.Adj)
	)
	testCases := []struct {
		name     string
		word     string
		tags     dictionary.POSSet
		expected dictionary.POSSet
		want     float64
	}{
		{"no known tags", "anything", none, adv, 0.4},
		{"no slot", "grimly", adv, none, 1},
		{"ly adverb", "grimly", adv, adv, 1},
		{"irregular adverb", "fast", adv, adv, 1},
		{"plain adverb", "soon", adv, adv, 0.45},
		{"verb", "walk", verb, verb, 1},
		{"noun or adjective", "quiet", adj, nounAdj, 1},
		{"modifier swap", "quietly", adv, adj, 0.45},
		{"mismatch", "walk", verb, noun, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GrammaticalFit(tc.word, tc.tags, tc.expected); got != tc.want {
				t.Errorf("GrammaticalFit(%q) = %v, want %v", tc.word, got, tc.want)
			}
		})
	}
}

// flatPool builds a pool whose words share every feature, so only the
// provenance bonus separates them.
func flatPool(words map[string]Provenance) *Pool {
	p := NewPool(dictionary.Unavailable{})
	for w, src := range words {
		p.Add(w, src)
	}
	return p
}

func TestRankTieBreakAscending(t *testing.T) {
	r := &Ranker{Lexicon: dictionary.Unavailable{}}
	pool := flatPool(map[string]Provenance{
		"zephyr": SourceContext,
		"amber":  SourceContext,
		"meadow": SourceContext,
		"quartz": SourceContext | SourceWordNet,
	})
	got := r.Rank(context.Background(), RankInput{
		Decision: IntentDecision{CleanedText: "a quiet field"},
		Pool:     pool,
		Weights:  config.DefaultWeights().Default,
		TopK:     10,
	})
	var words []string
	for _, c := range got {
		words = append(words, c.Word)
	}
	if diff := cmp.Diff([]string{"quartz", "amber", "meadow", "zephyr"}, words); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	// .42*.5 + .24*.5 + .18*1 + context bonus
	if got[1].Score != 0.54 || got[0].Score != 0.59 {
		t.Errorf("scores = %v, %v", got[0].Score, got[1].Score)
	}
	if got[0].POS != "X" {
		t.Errorf("unknown word POS = %q, want X", got[0].POS)
	}
}

func TestRankClampsAndTruncates(t *testing.T) {
	r := &Ranker{Lexicon: dictionary.Unavailable{}}
	pool := flatPool(map[string]Provenance{"amber": SourceContext, "meadow": SourceContext, "zephyr": SourceWordNet})
	got := r.Rank(context.Background(), RankInput{
		Pool:    pool,
		Weights: config.Weights{Semantic: 1, Context: 1, Emotion: 1, Grammar: 1, Frequency: 1},
		TopK:    2,
	})
	if len(got) != 2 {
		t.Fatalf("TopK not applied: %d", len(got))
	}
	for _, c := range got {
		if c.Score != MaxScore {
			t.Errorf("%s score = %v, want clamp at %v", c.Word, c.Score, MaxScore)
		}
	}
}

func TestRankStrictSlot(t *testing.T) {
	res := offline()
	r := &Ranker{Lexicon: res.Lexicon, Tagger: res.Tagger, Cache: res.Cache}
	pool := NewPool(res.Lexicon)
	for _, w := range []string{"grimly", "walk", "soon", "grim"} {
		pool.Add(w, SourceSlot)
	}
	d := IntentDecision{
		Intent:       IntentBlank,
		CleanedText:  "he walked [BLANK] into the room.",
		BlankPresent: true,
		ExpectedPOS:  dictionary.NewPOSSet(dictionary.Adv),
		StrictPOS:    true,
		SlotHint:     "Fits manner slot after 'walked'.",
	}
	got := r.Rank(context.Background(), RankInput{
		Decision: d,
		Pool:     pool,
		Weights:  config.DefaultWeights().Blank,
		TopK:     5,
		Slot:     true,
	})
	if len(got) != 1 || got[0].Word != "grimly" {
		t.Fatalf("strict ADV slot kept %+v", got)
	}
	if got[0].POS != "ADV" {
		t.Errorf("POS = %q", got[0].POS)
	}
	if !strings.HasPrefix(got[0].Note, "Fits manner slot after 'walked'.") {
		t.Errorf("note = %q", got[0].Note)
	}
}

func TestNote(t *testing.T) {
	horror := &tone.Profile{Key: "horror", Description: "dark, suspenseful, fearful imagery"}
	slot := IntentDecision{ExpectedPOS: dictionary.NewPOSSet(dictionary.Adv), SlotHint: "Fits manner slot after 'walked'."}
	testCases := []struct {
		name string
		f    features
		d    IntentDecision
		p    *tone.Profile
		slot bool
		want string
	}{
		{
			"slot fit and tone",
			features{grammar: 1, semantic: 0.7, context: 0.7, frequency: 0.5},
			slot, horror, true,
			"Fits manner slot after 'walked'. Matches horror tone. Strong semantic fit.",
		},
		{
			"slot without hint",
			features{grammar: 1, semantic: 0.55, context: 0.7, frequency: 0.5},
			IntentDecision{ExpectedPOS: slot.ExpectedPOS}, horror, true,
			"Fits the grammatical slot. Matches horror tone. Good semantic match.",
		},
		{
			"weak and rare",
			features{grammar: 0, semantic: 0.5, context: 0.5},
			slot, horror, false,
			"Weak grammatical fit. Aligned with dark, suspenseful, fearful imagery. Lexical alternative for this context. Rare word.",
		},
		{
			"no blank",
			features{grammar: 1, semantic: 0.62, context: 0.62, frequency: 1},
			slot, horror, false,
			"Matches horror tone. Strong semantic fit.",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := note(tc.f, tc.d, tc.p, tc.slot); got != tc.want {
				t.Errorf("note = %q\nwant   %q", got, tc.want)
			}
		})
	}
}

func TestModeWeights(t *testing.T) {
	wc := config.DefaultWeights()
	testCases := []struct {
		mode, intent string
		want         config.Weights
	}{
		{ModeEdit, IntentBlank, wc.Edit},
		{ModeRewrite, IntentSentence, wc.Rewrite},
		{ModeWrite, IntentBlank, wc.Blank},
		{ModeWrite, IntentSelection, wc.Write},
	}
	for _, tc := range testCases {
		if got := ModeWeights(wc, tc.mode, tc.intent); got != tc.want {
			t.Errorf("ModeWeights(%s, %s) = %+v, want %+v", tc.mode, tc.intent, got, tc.want)
		}
	}
	wc.Write = config.Weights{}
	if got := ModeWeights(wc, ModeWrite, IntentSentence); got != wc.Default {
		t.Errorf("zero tuple must fall back to default, got %+v", got)
	}
}
