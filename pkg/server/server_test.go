package server

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/goleak"

	"github.com/bastiangx/wordcraft/internal/logger"
	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/suggest"
	"github.com/bastiangx/wordcraft/pkg/wordtools"
)

type fixture struct {
	engine *suggest.Engine
	tools  *wordtools.Tools
}

var shared = sync.OnceValue(func() fixture {
	logger.Quiet()
	res := suggest.OfflineResources()
	engine := suggest.NewEngine(nil, res)
	return fixture{engine: engine, tools: wordtools.New(res, engine, config.DefaultConfig().Rerank)}
})

var testCaps = map[string]string{"encoder": "hash", "tagger": "heuristic", "network": "off"}

// serve runs a server over the encoded requests and returns the raw
// responses after the ready message.
func serve(t *testing.T, cfg config.ServerConfig, reqs ...any) []msgpack.RawMessage {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		if err := enc.Encode(r); err != nil {
			t.Fatal(err)
		}
	}
	var out bytes.Buffer
	f := shared()
	srv := NewServer(f.engine, f.tools, Options{Config: cfg, Capabilities: testCaps, Version: "test", In: &in, Out: &out})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dec := msgpack.NewDecoder(&out)
	var ready ReadyMessage
	if err := dec.Decode(&ready); err != nil || ready.Status != "ready" {
		t.Fatalf("ready = %+v, %v", ready, err)
	}
	var got []msgpack.RawMessage
	for {
		raw, err := dec.DecodeRaw()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, raw)
	}
	if len(got) != len(reqs) {
		t.Fatalf("%d responses for %d requests", len(got), len(reqs))
	}
	return got
}

func decode[T any](t *testing.T, raw msgpack.RawMessage) T {
	t.Helper()
	var v T
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %T: %v", v, err)
	}
	return v
}

func defaultServerConfig() config.ServerConfig {
	return config.DefaultConfig().Server
}

func TestServeSuggest(t *testing.T) {
	out := serve(t, defaultServerConfig(), Request{
		ID:      "r1",
		Op:      OpSuggest,
		Text:    "She walked ____ into the room.",
		Context: "horror",
	}, Request{
		ID:      "r2",
		Op:      OpSuggest,
		Text:    "She felt happy about the result.",
		Context: "melancholic",
		Sel:     &SelectionSpan{Text: "happy", Start: 9, End: 14},
	})

	blank := decode[SuggestResponse](t, out[0])
	if blank.ID != "r1" || !blank.Blank {
		t.Errorf("blank response = %+v", blank)
	}
	if len(blank.Suggestions) == 0 {
		t.Fatal("no suggestions")
	}
	for i, s := range blank.Suggestions {
		if int(s.Rank) != i+1 {
			t.Errorf("rank[%d] = %d", i, s.Rank)
		}
		if s.Word == "" || s.POS == "" || s.Note == "" {
			t.Errorf("incomplete suggestion %+v", s)
		}
	}
	if len(blank.Rewrites) != 0 || blank.Rewrite != "" {
		t.Errorf("blank fill must not rewrite: %+v", blank.Rewrites)
	}
	if blank.Explanation == "" || blank.TimeTaken < 0 {
		t.Errorf("explanation %q time %d", blank.Explanation, blank.TimeTaken)
	}

	sel := decode[SuggestResponse](t, out[1])
	if sel.ID != "r2" || sel.Blank || len(sel.Suggestions) == 0 {
		t.Fatalf("selection response = %+v", sel)
	}
	if sel.Suggestions[0].POS != "ADJ" {
		t.Errorf("top selection POS = %s", sel.Suggestions[0].POS)
	}
}

func TestServeWordTools(t *testing.T) {
	out := serve(t, defaultServerConfig(),
		Request{ID: "lex", Op: OpLexical, Word: "night", Task: wordtools.TaskRhymes, Limit: 3},
		Request{ID: "one", Op: OpOneWord, Query: "a person who is obsessed with themselves"},
		Request{ID: "con", Op: OpConstraints, Rhyme: "bright", Relation: "syn", Meaning: "light"},
		Request{ID: "empty", Op: OpConstraints},
	)

	lex := decode[WordResponse](t, out[0])
	if lex.ID != "lex" || lex.Count == 0 || lex.Count > 3 || lex.Count != len(lex.Suggestions) {
		t.Errorf("lexical = %+v", lex)
	}

	one := decode[WordResponse](t, out[1])
	if one.Note != wordtools.NoteOneWordHit || len(one.Suggestions) == 0 {
		t.Fatalf("oneword = %+v", one)
	}
	if one.Suggestions[0].Meaning == "" {
		t.Errorf("top one-word entry has no meaning: %+v", one.Suggestions[0])
	}

	con := decode[WordResponse](t, out[2])
	if len(con.Suggestions) == 0 {
		t.Fatal("no constraint matches")
	}
	top := con.Suggestions[0]
	if top.Word != "light" || !top.Rhyme || !top.Relation {
		t.Errorf("constraints top = %+v", top)
	}

	empty := decode[WordResponse](t, out[3])
	if empty.Note != wordtools.NoteNoMatches || empty.Count != 0 {
		t.Errorf("empty constraints = %+v", empty)
	}
}

func TestServeErrors(t *testing.T) {
	testCases := []struct {
		name   string
		req    any
		id     string
		errSub string
	}{
		{"unknown op", Request{ID: "a", Op: "complete"}, "a", "unknown op"},
		{"missing op", Request{ID: "b"}, "b", "missing op"},
		{"unknown task", Request{ID: "c", Op: OpLexical, Word: "happy", Task: "hypernyms"}, "c", "unknown task"},
		{"missing word", Request{ID: "d", Op: OpLexical, Task: wordtools.TaskSynonyms}, "d", "missing 'word'"},
		{"bad field type", map[string]any{"id": "e", "op": OpLexical, "limit": "ten"}, "e", "invalid request"},
	}
	reqs := make([]any, len(testCases))
	for i, tc := range testCases {
		reqs[i] = tc.req
	}
	out := serve(t, defaultServerConfig(), reqs...)
	for i, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := decode[ErrorResponse](t, out[i])
			if got.ID != tc.id {
				t.Errorf("id = %q, want %q", got.ID, tc.id)
			}
			if !strings.Contains(got.Error, tc.errSub) {
				t.Errorf("error = %q, want it to mention %q", got.Error, tc.errSub)
			}
		})
	}
}

func TestServeGeneratesIDs(t *testing.T) {
	out := serve(t, defaultServerConfig(),
		Request{Op: OpHealth},
		42,
	)
	health := decode[HealthResponse](t, out[0])
	if _, err := uuid.Parse(health.ID); err != nil {
		t.Errorf("health id %q is not a UUID: %v", health.ID, err)
	}
	bad := decode[ErrorResponse](t, out[1])
	if _, err := uuid.Parse(bad.ID); err != nil || bad.Error == "" {
		t.Errorf("malformed request answer = %+v", bad)
	}
}

func TestServeHealth(t *testing.T) {
	out := serve(t, defaultServerConfig(),
		Request{ID: "1", Op: OpSuggest, Text: "The night was quiet."},
		Request{ID: "2", Op: "nope"},
		Request{ID: "3", Op: OpHealth},
	)
	got := decode[HealthResponse](t, out[2])
	if got.Status != "ok" || got.Requests != 3 || got.Version != "test" {
		t.Errorf("health = %+v", got)
	}
	if diff := cmp.Diff(testCaps, got.Capabilities); diff != "" {
		t.Errorf("capabilities (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(shared().engine.Contexts(context.Background()), got.Contexts); diff != "" {
		t.Errorf("contexts (-want +got):\n%s", diff)
	}
}

func TestServeLimitCeiling(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.MaxLimit = 2
	out := serve(t, cfg, Request{ID: "x", Op: OpLexical, Word: "happy", Task: wordtools.TaskSynonyms, Limit: 50})
	if got := decode[WordResponse](t, out[0]); got.Count == 0 || got.Count > 2 {
		t.Errorf("count = %d, want 1..2", got.Count)
	}
}

func TestServeWithoutTools(t *testing.T) {
	var in, out bytes.Buffer
	if err := msgpack.NewEncoder(&in).Encode(Request{ID: "z", Op: OpOneWord, Query: "a quiet place"}); err != nil {
		t.Fatal(err)
	}
	srv := NewServer(shared().engine, nil, Options{In: &in, Out: &out})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	dec := msgpack.NewDecoder(&out)
	var ready ReadyMessage
	var got ErrorResponse
	if err := dec.Decode(&ready); err != nil {
		t.Fatal(err)
	}
	if err := dec.Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "z" || !strings.Contains(got.Error, "not available") {
		t.Errorf("got %+v", got)
	}
}

func TestServePipeNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	f := shared()
	srv := NewServer(f.engine, f.tools, Options{In: inR, Out: outW})

	done := make(chan error, 1)
	go func() {
		done <- srv.Start(context.Background())
		outW.Close()
	}()

	dec := msgpack.NewDecoder(outR)
	var ready ReadyMessage
	if err := dec.Decode(&ready); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"p1", "p2"} {
		if err := msgpack.NewEncoder(inW).Encode(Request{ID: id, Op: OpLexical, Word: "happy", Task: wordtools.TaskAntonyms}); err != nil {
			t.Fatal(err)
		}
		var got WordResponse
		if err := dec.Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.ID != id {
			t.Errorf("id = %q, want %q", got.ID, id)
		}
	}
	inW.Close()
	if err := <-done; err != nil {
		t.Errorf("Start = %v", err)
	}
	if _, err := io.ReadAll(outR); err != nil {
		t.Fatal(err)
	}
	if srv.Requests() != 2 {
		t.Errorf("requests = %d", srv.Requests())
	}
}

func TestServeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	srv := NewServer(shared().engine, nil, Options{In: strings.NewReader(""), Out: &out})
	if err := srv.Start(ctx); err != context.Canceled {
		t.Errorf("Start = %v, want context.Canceled", err)
	}
}
