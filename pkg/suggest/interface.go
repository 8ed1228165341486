// Package suggest is the core: it turns a sentence, a blank or a selection
// into ranked word suggestions, rewrite variants and a short rationale.
package suggest

import (
	"context"
	"strings"
)

// ISuggester defines the interface for suggestion engines
type ISuggester interface {
	// Suggest runs the full pipeline for one request. It never fails:
	// resource problems degrade into the fallback response.
	Suggest(ctx context.Context, req Request) Response

	// Init loads the shared resources. Later calls return the first result.
	Init(ctx context.Context) error

	// Contexts lists the available tone keys in sorted order.
	Contexts(ctx context.Context) []string
}

// Mode names accepted in a request.
const (
	ModeWrite     = "write"
	ModeEdit      = "edit"
	ModeRewrite   = "rewrite"
	modeTransform = "transform"
)

// Trigger sent by an explicit rewrite action.
const TriggerButton = "button"

// FallbackExplanation is returned whenever there is nothing to suggest.
const FallbackExplanation = "Unable to generate suggestions at the moment."

// Selection is a highlighted span of the request text.
type Selection struct {
	Text  string
	Start int
	End   int
}

// Request is one suggestion call.
type Request struct {
	Text      string
	Context   string
	Mode      string
	Selection *Selection
	Trigger   string
}

// ScoredCandidate is one ranked suggestion.
type ScoredCandidate struct {
	Word         string
	Score        float64
	POS          string
	Note         string
	Sources      Provenance
	LearnedScore *float64
}

// Response is the result of Suggest. Rewrites[0] equals Rewrite when any
// rewrite was produced.
type Response struct {
	Suggestions   []ScoredCandidate
	Rewrite       string
	Rewrites      []string
	Explanation   string
	DetectedBlank bool
}

// NormalizeMode maps transform to rewrite and anything unknown to write.
func NormalizeMode(mode string) string {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case ModeWrite, ModeEdit, ModeRewrite:
		return m
	case modeTransform:
		return ModeRewrite
	}
	return ModeWrite
}

func fallbackResponse(blank bool) Response {
	return Response{Explanation: FallbackExplanation, DetectedBlank: blank}
}
