package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bastiangx/wordcraft/internal/logger"
	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/suggest"
	"github.com/bastiangx/wordcraft/pkg/wordtools"
)

type fakeEngine struct {
	reqs []suggest.Request
}

func (f *fakeEngine) Suggest(_ context.Context, req suggest.Request) suggest.Response {
	f.reqs = append(f.reqs, req)
	return suggest.Response{
		Suggestions: []suggest.ScoredCandidate{{Word: "grimly", Score: 0.8, POS: "ADV", Note: "Adverb fills the blank."}},
		Rewrite:     "She grimly walked into the room.",
		Rewrites:    []string{"She grimly walked into the room."},
		Explanation: "Blank-fill suggestions.",
	}
}

func (f *fakeEngine) Contexts(context.Context) []string {
	return []string{"horror", "neutral"}
}

var tools = sync.OnceValue(func() *wordtools.Tools {
	logger.Quiet()
	res := suggest.OfflineResources()
	return wordtools.New(res, suggest.NewEngine(nil, res), config.DefaultConfig().Rerank)
})

func run(t *testing.T, engine Suggester, wt *wordtools.Tools, script string) string {
	t.Helper()
	var out bytes.Buffer
	h := NewInputHandler(engine, wt, Options{ShowNotes: true, In: strings.NewReader(script), Out: &out})
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return out.String()
}

func TestInputSuggest(t *testing.T) {
	engine := &fakeEngine{}
	out := run(t, engine, nil, strings.Join([]string{
		":ctx horror",
		":mode edit",
		"She walked ____ into the room.",
		":sel happy She felt happy about it.",
		":ctx steampunk",
		"12345",
		":quit",
		"never read",
	}, "\n"))

	want := []suggest.Request{
		{Text: "She walked ____ into the room.", Context: "horror", Mode: "edit"},
		{
			Text:      "She felt happy about it.",
			Context:   "horror",
			Mode:      "edit",
			Selection: &suggest.Selection{Text: "happy", Start: 9, End: 14},
		},
	}
	if diff := cmp.Diff(want, engine.reqs); diff != "" {
		t.Errorf("requests (-want +got):\n%s", diff)
	}
	for _, s := range []string{"context set to horror", "mode set to edit", "grimly", "rewrite: ", "Adverb fills the blank."} {
		if !strings.Contains(out, s) {
			t.Errorf("output is missing %q:\n%s", s, out)
		}
	}
}

func TestInputModeAndNotes(t *testing.T) {
	engine := &fakeEngine{}
	out := run(t, engine, nil, ":mode transform\n:notes\nThe night was quiet.\n:ctx\n")
	if len(engine.reqs) != 1 || engine.reqs[0].Mode != suggest.ModeRewrite || engine.reqs[0].Context != "neutral" {
		t.Errorf("requests = %+v", engine.reqs)
	}
	if strings.Contains(out, "Adverb fills the blank.") {
		t.Error("notes were toggled off")
	}
	if !strings.Contains(out, "available: horror, neutral") {
		t.Errorf(":ctx must list contexts:\n%s", out)
	}
}

func TestInputWordCommands(t *testing.T) {
	out := run(t, &fakeEngine{}, tools(), strings.Join([]string{
		":syn happy",
		":rhyme night",
		":con bright syn light",
		":one a person who is obsessed with themselves",
	}, "\n"))
	for _, s := range []string{"glad", "WordNet synonym.", "Phonetic rhyme match.", "light", "[rhyme+meaning]", "narcissist", wordtools.NoteOneWordHit} {
		if !strings.Contains(out, s) {
			t.Errorf("output is missing %q", s)
		}
	}
}

func TestInputWithoutTools(t *testing.T) {
	engine := &fakeEngine{}
	out := run(t, engine, nil, ":syn happy\n:bogus\n")
	if len(engine.reqs) != 0 {
		t.Errorf("commands reached the engine: %+v", engine.reqs)
	}
	if strings.Contains(out, "WordNet") {
		t.Errorf("unexpected word results:\n%s", out)
	}
}
