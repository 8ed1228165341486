package suggest

// ExplainInput selects the rationale template.
type ExplainInput struct {
	Words     []string
	Tone      string
	Mode      string
	Intent    string
	Blank     bool
	Selection bool
}

// Explain renders the one-sentence rationale for a response.
func Explain(in ExplainInput) string {
	if len(in.Words) == 0 {
		return FallbackExplanation
	}
	switch {
	case in.Selection:
		return "Selection-focused suggestions ranked by semantic fit and " + in.Tone + " tone."
	case in.Blank:
		return "Blank-fill suggestions are grammar-filtered for the missing slot and aligned to a " + in.Tone + " tone."
	case in.Mode == ModeEdit:
		return "Polish mode prioritizes grammar safety and clarity with controlled tone."
	case in.Mode == ModeRewrite:
		return "Transform mode keeps sentence meaning while shifting style toward " + in.Tone + " tone."
	case in.Intent == IntentSentence:
		return "Draft suggestions ranked by grammar fit, semantic match, and " + in.Tone + " tone."
	}
	return "Suggestions matched to your sentence intent in a " + in.Tone + " tone."
}
