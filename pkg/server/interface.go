/*
Package server implements msgpack IPC for the wordcraft suggestion engine.

Clients write a stream of msgpack maps to stdin and read one response map
per request from stdout. Every request carries an "id" and an "op"; a
missing id is replaced with a generated UUID so responses can always be
matched. Requests are handled one at a time, each under the configured
timeout, and every response reports the time taken in microseconds.

# IPC

Sentence suggestions:

	{"id": "r1", "op": "suggest", "text": "She walked ____ into the room.", "context": "horror", "mode": "write"}

	{"id": "r1", "s": [{"w": "slowly", "r": 1, "sc": 0.81, "pos": "ADV", "note": "..."}],
	 "rw": "", "rws": [], "ex": "...", "blank": true, "t": 2140}

A selection is sent as "sel": {"text": "happy", "start": 12, "end": 17}.
A rewrite is only produced when the sentence is complete or "trigger" is
"button".

Word tools:

	{"id": "r2", "op": "lexical", "word": "night", "task": "rhymes", "limit": 5}
	{"id": "r3", "op": "oneword", "query": "a person who is obsessed with themselves"}
	{"id": "r4", "op": "constraints", "rhyme": "bright", "relation": "synonym", "meaning": "light"}

These answer with {"id", "s", "note", "c", "t"}. Entries may carry "m"
(meaning gloss), "rh" (rhymes) and "rel" (relation match).

Capabilities and counters:

	{"id": "r5", "op": "health"}

Failures answer with {"id": "r2", "error": "..."} and the server keeps
serving.
*/
package server

// Operation names.
const (
	OpSuggest     = "suggest"
	OpLexical     = "lexical"
	OpOneWord     = "oneword"
	OpConstraints = "constraints"
	OpHealth      = "health"
)

// Request is the envelope for every op. Fields that do not apply to an op
// are ignored.
type Request struct {
	ID string `msgpack:"id"`
	Op string `msgpack:"op"`

	// suggest
	Text    string         `msgpack:"text,omitempty"`
	Context string         `msgpack:"context,omitempty"`
	Mode    string         `msgpack:"mode,omitempty"`
	Trigger string         `msgpack:"trigger,omitempty"`
	Sel     *SelectionSpan `msgpack:"sel,omitempty"`

	// lexical
	Word string `msgpack:"word,omitempty"`
	Task string `msgpack:"task,omitempty"`

	// oneword
	Query string `msgpack:"query,omitempty"`

	// constraints
	Rhyme    string `msgpack:"rhyme,omitempty"`
	Relation string `msgpack:"relation,omitempty"`
	Meaning  string `msgpack:"meaning,omitempty"`

	Limit int `msgpack:"limit,omitempty"`
}

// SelectionSpan is a highlighted span of Request.Text.
type SelectionSpan struct {
	Text  string `msgpack:"text"`
	Start int    `msgpack:"start"`
	End   int    `msgpack:"end"`
}

// Suggestion is one ranked word on the wire. Rank starts at 1.
type Suggestion struct {
	Word     string   `msgpack:"w"`
	Rank     uint16   `msgpack:"r"`
	Score    float64  `msgpack:"sc"`
	POS      string   `msgpack:"pos"`
	Note     string   `msgpack:"note"`
	Learned  *float64 `msgpack:"ml,omitempty"`
	Meaning  string   `msgpack:"m,omitempty"`
	Rhyme    bool     `msgpack:"rh,omitempty"`
	Relation bool     `msgpack:"rel,omitempty"`
}

// SuggestResponse answers a suggest op.
type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Rewrite     string       `msgpack:"rw"`
	Rewrites    []string     `msgpack:"rws"`
	Explanation string       `msgpack:"ex"`
	Blank       bool         `msgpack:"blank"`
	TimeTaken   int64        `msgpack:"t"`
}

// WordResponse answers the lexical, oneword and constraints ops.
type WordResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Note        string       `msgpack:"note,omitempty"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// HealthResponse reports detected capabilities and the request counter.
type HealthResponse struct {
	ID           string            `msgpack:"id"`
	Status       string            `msgpack:"status"`
	Version      string            `msgpack:"version,omitempty"`
	Capabilities map[string]string `msgpack:"caps"`
	Contexts     []string          `msgpack:"contexts"`
	Requests     int64             `msgpack:"requests"`
	TimeTaken    int64             `msgpack:"t"`
}

// ReadyMessage is written once before the first request is read.
type ReadyMessage struct {
	Status string `msgpack:"status"`
}

// ErrorResponse is returned for any failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"error"`
}
