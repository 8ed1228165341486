package suggest

import "testing"

func TestExplain(t *testing.T) {
	words := []string{"grimly"}
	testCases := []struct {
		name string
		in   ExplainInput
		want string
	}{
		{"nothing ranked", ExplainInput{Tone: "horror", Mode: ModeWrite}, FallbackExplanation},
		{"selection", ExplainInput{Words: words, Tone: "melancholic", Mode: ModeEdit, Selection: true, Blank: true},
			"Selection-focused suggestions ranked by semantic fit and melancholic tone."},
		{"blank", ExplainInput{Words: words, Tone: "horror", Mode: ModeRewrite, Intent: IntentBlank, Blank: true},
			"Blank-fill suggestions are grammar-filtered for the missing slot and aligned to a horror tone."},
		{"edit", ExplainInput{Words: words, Tone: "neutral", Mode: ModeEdit, Intent: IntentSentence},
			"Polish mode prioritizes grammar safety and clarity with controlled tone."},
		{"rewrite", ExplainInput{Words: words, Tone: "romantic", Mode: ModeRewrite, Intent: IntentSentence},
			"Transform mode keeps sentence meaning while shifting style toward romantic tone."},
		{"draft", ExplainInput{Words: words, Tone: "neutral", Mode: ModeWrite, Intent: IntentSentence},
			"Draft suggestions ranked by grammar fit, semantic match, and neutral tone."},
		{"other", ExplainInput{Words: words, Tone: "neutral", Mode: ModeWrite, Intent: IntentBlank},
			"Suggestions matched to your sentence intent in a neutral tone."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Explain(tc.in); got != tc.want {
				t.Errorf("Explain = %q\nwant      %q", got, tc.want)
			}
		})
	}
}
