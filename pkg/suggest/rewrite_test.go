package suggest

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bastiangx/wordcraft/pkg/tone"
)

func newRewriter() *Rewriter {
	res := offline()
	return &Rewriter{Lexicon: res.Lexicon, Tagger: res.Tagger}
}

func TestIsComplete(t *testing.T) {
	rw := newRewriter()
	testCases := []struct {
		text string
		want bool
	}{
		{"She felt happy about the result.", true},
		{"she walked into the room", true},
		{"She felt happy", false},
		{"into the dark room", false},
	}
	for _, tc := range testCases {
		if got := rw.IsComplete(tc.text); got != tc.want {
			t.Errorf("IsComplete(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
	bare := &Rewriter{}
	if bare.IsComplete("she walked into the room") {
		t.Error("without a tagger only terminal punctuation completes a sentence")
	}
	if !bare.IsComplete("She walked into the room.") {
		t.Error("terminal punctuation completes a sentence")
	}
}

func TestRewriteModes(t *testing.T) {
	rw := newRewriter()
	testCases := []struct {
		name string
		in   RewriteInput
		want []string
	}{
		{
			"write keeps the sentence",
			RewriteInput{Sentence: "She walked into the room .", Mode: ModeWrite, Allow: true},
			[]string{"She walked into the room."},
		},
		{
			"idioms",
			RewriteInput{Sentence: "We left early In order to catch the train.", Mode: ModeWrite, Allow: true},
			[]string{"We left early to catch the train."},
		},
		{
			"edit drops fillers",
			RewriteInput{Sentence: "This is really a very good plan.", Mode: ModeEdit, Allow: true},
			[]string{"This is a good plan."},
		},
		{
			"blank",
			RewriteInput{Sentence: "He walked ____ into the room.", Mode: ModeWrite, Allow: true, Blank: true},
			nil,
		},
		{
			"gate closed",
			RewriteInput{Sentence: "She walked into the room.", Mode: ModeRewrite},
			nil,
		},
		{
			"incomplete",
			RewriteInput{Sentence: "into the room", Mode: ModeWrite, Allow: true},
			nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, rw.Rewrite(tc.in)); diff != "" {
				t.Errorf("Rewrite (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRewriteToneVariants(t *testing.T) {
	rw := newRewriter()
	horror := &tone.Profile{
		Key:     "horror",
		Adverb:  "grimly",
		Phrases: []string{"as the shadows drew closer", "under a cold, watchful silence", "while something waited in the dark"},
	}
	sentence := "She walked into the room."
	got := rw.Rewrite(RewriteInput{Sentence: sentence, Mode: ModeRewrite, Profile: horror, Allow: true})
	if len(got) != 2 {
		t.Fatalf("variants = %q, want base plus tone phrase", got)
	}
	if got[0] != "She grimly walked into the room." {
		t.Errorf("base rewrite = %q", got[0])
	}
	want := "She grimly walked into the room, " + TonePhrase(sentence, horror.Phrases) + "."
	if got[1] != want {
		t.Errorf("tone variant = %q, want %q", got[1], want)
	}
	for _, v := range got {
		if d := rw.Drift(got[0], v); d > DefaultDriftBudget {
			t.Errorf("variant %q drifts %v", v, d)
		}
	}
}

func TestRewriteSubstitutionVariants(t *testing.T) {
	rw := newRewriter()
	sugs := []ScoredCandidate{
		{Word: "glad", POS: "ADJ"},
		{Word: "outcome", POS: "NOUN"},
		{Word: "joyful", POS: "ADJ"},
		{Word: "content", POS: "ADJ"},
	}
	got := rw.Rewrite(RewriteInput{Sentence: "She felt happy about the result.", Mode: ModeWrite, Suggestions: sugs, Allow: true})
	want := []string{
		"She felt happy about the result.",
		"She felt glad about the result.",
		"She felt joyful about the result.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("variants (-want +got):\n%s", diff)
	}
}

func TestSubstitute(t *testing.T) {
	rw := newRewriter()
	testCases := []struct {
		name string
		text string
		s    ScoredCandidate
		want string
	}{
		{"synonym", "She felt happy about the result.", ScoredCandidate{Word: "glad", POS: "ADJ"}, "She felt glad about the result."},
		{"keeps case", "Happy days are here.", ScoredCandidate{Word: "glad", POS: "ADJ"}, "Glad days are here."},
		{"already present", "She felt glad about the result.", ScoredCandidate{Word: "glad", POS: "ADJ"}, "She felt glad about the result."},
		{"nouns are not substituted", "She felt happy about the result.", ScoredCandidate{Word: "outcome", POS: "NOUN"}, "She felt happy about the result."},
		{"not a synonym", "She felt happy about the result.", ScoredCandidate{Word: "gloomy", POS: "ADJ"}, "She felt happy about the result."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rw.Substitute(tc.text, tc.s); got != tc.want {
				t.Errorf("Substitute = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRemoveFillersWithoutTagger(t *testing.T) {
	rw := &Rewriter{}
	got := rw.Rewrite(RewriteInput{Sentence: "It was really very cold outside.", Mode: ModeEdit, Allow: true})
	if diff := cmp.Diff([]string{"It was cold outside."}, got); diff != "" {
		t.Errorf("Rewrite (-want +got):\n%s", diff)
	}
}

func TestRewriteKeepsBaseWhenEmptied(t *testing.T) {
	for name, rw := range map[string]*Rewriter{"tagger": newRewriter(), "regexp": {}} {
		t.Run(name, func(t *testing.T) {
			got := rw.Rewrite(RewriteInput{Sentence: "Very very very very.", Mode: ModeEdit, Allow: true})
			if diff := cmp.Diff([]string{"Very very very very."}, got); diff != "" {
				t.Errorf("Rewrite (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDrift(t *testing.T) {
	rw := newRewriter()
	d := rw.Drift("She felt happy about the result.", "She felt glad about the result.")
	if math.Abs(d-1.0/3) > 1e-9 {
		t.Errorf("Drift = %v, want 1/3", d)
	}
	if d := rw.Drift("She felt happy.", "She felt happy, as the rain kept falling."); d != 0 {
		t.Errorf("appending terms must not drift, got %v", d)
	}
	if d := rw.Drift("the of", "anything"); d != 0 {
		t.Errorf("no terms means no drift, got %v", d)
	}
}

func TestAppendPhrase(t *testing.T) {
	testCases := []struct {
		text, phrase, want string
	}{
		{"It ended.", "as the rain kept falling", "It ended, as the rain kept falling."},
		{"Did it end?", "in plain terms", "Did it end, in plain terms?"},
		{"It ended", "as expected", "It ended, as expected"},
		{"It ended.", ", without any fuss", "It ended, without any fuss."},
		{"It ended.", "  ", "It ended."},
	}
	for _, tc := range testCases {
		if got := AppendPhrase(tc.text, tc.phrase); got != tc.want {
			t.Errorf("AppendPhrase(%q, %q) = %q, want %q", tc.text, tc.phrase, got, tc.want)
		}
	}
}

func TestTonePhraseDeterministic(t *testing.T) {
	phrases := []string{"one", "two", "three"}
	first := TonePhrase("The house was silent.", phrases)
	for i := 0; i < 5; i++ {
		if got := TonePhrase("The house was silent.", phrases); got != first {
			t.Fatalf("TonePhrase not deterministic: %q vs %q", got, first)
		}
	}
	if TonePhrase("x", nil) != "" || TonePhrase("x", []string{"only"}) != "only" {
		t.Error("edge cases")
	}
}

func TestNormalizeSpacing(t *testing.T) {
	if got := NormalizeSpacing("  Hello ,  world  ! "); got != "Hello, world!" {
		t.Errorf("NormalizeSpacing = %q", got)
	}
	if got := strings.Count(applyIdioms("A lot of people, due to the fact that it rained"), "many"); got != 1 {
		t.Errorf("idiom replacement count = %d", got)
	}
}
