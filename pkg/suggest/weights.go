package suggest

import "github.com/bastiangx/wordcraft/pkg/config"

// ModeWeights picks the weight tuple for a mode and intent. A tuple that
// sums to zero falls back to the default one.
func ModeWeights(wc config.WeightsConfig, mode, intent string) config.Weights {
	var w config.Weights
	switch {
	case mode == ModeEdit:
		w = wc.Edit
	case mode == ModeRewrite:
		w = wc.Rewrite
	case intent == IntentBlank:
		w = wc.Blank
	default:
		w = wc.Write
	}
	if w.Sum() <= 0 {
		w = wc.Default
	}
	if w.Sum() <= 0 {
		w = config.DefaultWeights().Default
	}
	return w
}
