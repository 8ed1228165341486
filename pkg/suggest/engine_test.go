package suggest

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/rerank"
	"github.com/bastiangx/wordcraft/pkg/tone"
)

func newEngine(t *testing.T, mutate func(*config.Config, *Resources)) *Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	res := *offline()
	if mutate != nil {
		mutate(cfg, &res)
	}
	e := NewEngine(cfg, &res)
	if err := e.Init(context.Background()); err != nil && mutate == nil {
		t.Fatalf("Init: %v", err)
	}
	return e
}

func checkCandidates(t *testing.T, got []ScoredCandidate, topK int) {
	t.Helper()
	if len(got) > topK {
		t.Errorf("%d suggestions, want at most %d", len(got), topK)
	}
	seen := make(map[string]bool)
	for i, c := range got {
		if c.Score < 0 || c.Score > MaxScore {
			t.Errorf("%s score %v out of range", c.Word, c.Score)
		}
		if i > 0 && got[i-1].Score < c.Score {
			t.Errorf("scores not descending at %d: %v < %v", i, got[i-1].Score, c.Score)
		}
		if c.POS == "" || c.Note == "" || c.Sources == 0 {
			t.Errorf("incomplete candidate %+v", c)
		}
		if seen[c.Word] {
			t.Errorf("duplicate word %q", c.Word)
		}
		seen[c.Word] = true
	}
}

func TestSuggestBlankFill(t *testing.T) {
	e := newEngine(t, nil)
	resp := e.Suggest(context.Background(), Request{Text: "He walked ____ into the room.", Context: "horror"})
	if len(resp.Suggestions) == 0 {
		t.Fatal("no suggestions")
	}
	checkCandidates(t, resp.Suggestions, 5)
	top := resp.Suggestions[:min(3, len(resp.Suggestions))]
	var adverb bool
	for _, c := range top {
		adverb = adverb || c.POS == "ADV"
	}
	if !adverb {
		t.Errorf("no adverb in the top three: %+v", top)
	}
	if !resp.DetectedBlank {
		t.Error("DetectedBlank = false")
	}
	if resp.Rewrite != "" || len(resp.Rewrites) != 0 {
		t.Errorf("blank input must not be rewritten, got %q %q", resp.Rewrite, resp.Rewrites)
	}
	want := "Blank-fill suggestions are grammar-filtered for the missing slot and aligned to a horror tone."
	if resp.Explanation != want {
		t.Errorf("Explanation = %q", resp.Explanation)
	}
}

func TestSuggestSelection(t *testing.T) {
	e := newEngine(t, nil)
	resp := e.Suggest(context.Background(), Request{
		Text:      "She felt happy about the result.",
		Context:   "melancholic",
		Selection: &Selection{Text: "happy", Start: 9, End: 14},
	})
	if len(resp.Suggestions) == 0 {
		t.Fatal("no suggestions")
	}
	checkCandidates(t, resp.Suggestions, 5)
	if resp.Suggestions[0].POS != "ADJ" {
		t.Errorf("top suggestion %+v, want an adjective", resp.Suggestions[0])
	}
	for _, c := range resp.Suggestions {
		if !e.Resources().Lexicon.POSTags(c.Word).Has(dictionary.Adj) {
			t.Errorf("%s is not an adjective", c.Word)
		}
	}
	if !strings.HasPrefix(resp.Explanation, "Selection-focused") {
		t.Errorf("Explanation = %q", resp.Explanation)
	}
}

func TestSuggestDefaultMode(t *testing.T) {
	e := newEngine(t, func(cfg *config.Config, _ *Resources) {
		cfg.Engine.DefaultMode = "transform"
	})
	sentence := "She walked into the room."
	if resp := e.Suggest(context.Background(), Request{Text: sentence, Context: "horror"}); resp.Rewrite != "" {
		t.Errorf("configured rewrite mode must gate on the trigger, got %q", resp.Rewrite)
	}
	if resp := e.Suggest(context.Background(), Request{Text: sentence, Context: "horror", Trigger: TriggerButton}); resp.Rewrite == "" {
		t.Error("configured rewrite mode with a trigger gave no rewrite")
	}
	if resp := e.Suggest(context.Background(), Request{Text: sentence, Mode: ModeWrite, Context: "horror"}); resp.Rewrite == "" {
		t.Error("an explicit mode must win over the configured default")
	}
}

func TestSuggestRewriteGate(t *testing.T) {
	e := newEngine(t, nil)
	sentence := "She walked into the room."
	testCases := []struct {
		name    string
		req     Request
		rewrite bool
	}{
		{"write", Request{Text: sentence, Mode: ModeWrite}, true},
		{"edit", Request{Text: sentence, Mode: ModeEdit}, true},
		{"rewrite without trigger", Request{Text: sentence, Mode: ModeRewrite, Context: "horror"}, false},
		{"rewrite from button", Request{Text: sentence, Mode: "transform", Context: "horror", Trigger: TriggerButton}, true},
		{"incomplete", Request{Text: "into the room", Mode: ModeWrite}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := e.Suggest(context.Background(), tc.req)
			if got := resp.Rewrite != ""; got != tc.rewrite {
				t.Fatalf("rewrite = %q, want present %v", resp.Rewrite, tc.rewrite)
			}
			if tc.rewrite && resp.Rewrites[0] != resp.Rewrite {
				t.Errorf("Rewrites[0] = %q, Rewrite = %q", resp.Rewrites[0], resp.Rewrite)
			}
			if len(resp.Rewrites) > DefaultMaxVariants {
				t.Errorf("%d variants", len(resp.Rewrites))
			}
		})
	}

	resp := e.Suggest(context.Background(), Request{Text: sentence, Mode: ModeRewrite, Context: "horror", Trigger: TriggerButton})
	if !strings.Contains(resp.Rewrite, "grimly") {
		t.Errorf("horror rewrite %q lacks the tone adverb", resp.Rewrite)
	}
}

func TestSuggestFallbacks(t *testing.T) {
	e := newEngine(t, nil)
	for _, text := range []string{"", "   "} {
		resp := e.Suggest(context.Background(), Request{Text: text})
		if len(resp.Suggestions) != 0 || resp.Explanation != FallbackExplanation {
			t.Errorf("Suggest(%q) = %+v, want fallback", text, resp)
		}
	}

	unknown := e.Suggest(context.Background(), Request{Text: "The night was quiet.", Mode: "poetry", Context: "steampunk"})
	neutral := e.Suggest(context.Background(), Request{Text: "The night was quiet.", Mode: ModeWrite, Context: tone.Neutral})
	if diff := cmp.Diff(neutral, unknown); diff != "" {
		t.Errorf("unknown mode and context must act as write/neutral (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(neutral.Explanation, "neutral tone.") {
		t.Errorf("Explanation = %q", neutral.Explanation)
	}
}

func TestSuggestInitFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "contexts.toml")
	e := newEngine(t, func(_ *config.Config, res *Resources) { res.ContextsPath = missing })

	if err := e.Init(context.Background()); err == nil {
		t.Fatal("Init succeeded without contexts")
	}
	// a file appearing later does not revive a failed engine
	if err := os.WriteFile(missing, []byte("[x]\ndescription = \"d\"\nwords = [\"a\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.Init(context.Background()); err == nil {
		t.Error("Init error must be sticky")
	}
	resp := e.Suggest(context.Background(), Request{Text: "She walked into the room."})
	if resp.Explanation != FallbackExplanation || len(resp.Suggestions) != 0 {
		t.Errorf("Suggest after failed init = %+v", resp)
	}
	if e.Contexts(context.Background()) != nil {
		t.Error("Contexts after failed init")
	}
}

func TestContexts(t *testing.T) {
	e := newEngine(t, nil)
	keys := e.Contexts(context.Background())
	for _, k := range []string{"horror", "melancholic", tone.Neutral} {
		if !containsString(keys, k) {
			t.Errorf("Contexts() = %v, missing %s", keys, k)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// preferWord is a four-grade artifact that puts word in the top grade and
// leaves every other candidate uniform.
func preferWord(word string) rerank.File {
	return rerank.File{
		Version: 1,
		Labels:  []float64{0, 1, 2, 3},
		Vectorizer: rerank.VectorizerSpec{
			Vocabulary: map[string]int{word: 0},
			IDF:        []float64{1},
			NgramMax:   1,
		},
		Model: rerank.ModelSpec{
			Coef:      [][]float64{{0}, {0}, {0}, {8}},
			Intercept: []float64{0, 0, 0, 0},
		},
	}
}

func TestSuggestRerankBlend(t *testing.T) {
	req := Request{Text: "The night was quiet and cold.", Context: "melancholic"}

	wide := newEngine(t, func(cfg *config.Config, _ *Resources) { cfg.Engine.TopK = 10 })
	if err := wide.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	ranked := wide.Suggest(context.Background(), req).Suggestions
	if len(ranked) < 6 {
		t.Skipf("pool too small for a blend check: %d", len(ranked))
	}

	// pick a low-ranked word that no other feature text mentions
	input, _ := Clean(req.Text)
	rreq := rerank.Request{Task: "suggest", Mode: ModeWrite, Context: "melancholic", Input: input}
	var target string
	for i := len(ranked) - 1; i >= 5 && target == ""; i-- {
		w := ranked[i].Word
		if strings.Contains(w, "-") {
			continue
		}
		word := regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		clash := false
		for j, c := range ranked {
			text := rerank.FeatureText(rreq, rerank.Candidate{Text: c.Word, POS: c.POS, Source: c.Sources.Primary(), Reason: c.Note})
			if j != i && word.MatchString(strings.ToLower(text)) {
				clash = true
			}
		}
		if !clash {
			target = w
		}
	}
	if target == "" {
		t.Skip("no isolated low-ranked word")
	}

	data, err := rerank.Encode(preferWord(target))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "reranker.msgpack")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	blended := newEngine(t, func(cfg *config.Config, res *Resources) {
		cfg.Rerank.SuggestEnabled = true
		res.Blender = rerank.NewBlender(rerank.NewStore(path), false)
	})
	if err := blended.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := blended.Suggest(context.Background(), req).Suggestions
	if len(got) != 5 {
		t.Fatalf("%d suggestions after blend", len(got))
	}
	if got[0].Word != target {
		t.Fatalf("top = %s, want learned favourite %s", got[0].Word, target)
	}
	if got[0].LearnedScore == nil || *got[0].LearnedScore < 0.9 {
		t.Errorf("LearnedScore = %v", got[0].LearnedScore)
	}
	for _, c := range got[1:] {
		if c.LearnedScore == nil {
			t.Errorf("%s has no learned score", c.Word)
		}
	}
	checkCandidates(t, got, 5)

	// disabled in config: the artifact is ignored
	plain := newEngine(t, func(_ *config.Config, res *Resources) {
		res.Blender = rerank.NewBlender(rerank.NewStore(path), false)
	})
	_ = plain.Init(context.Background())
	for _, c := range plain.Suggest(context.Background(), req).Suggestions {
		if c.LearnedScore != nil {
			t.Errorf("%s blended while suggest reranking is off", c.Word)
		}
	}
}
