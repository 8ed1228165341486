package rerank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcraft/internal/logger"
	"github.com/bastiangx/wordcraft/internal/utils"
)

// Blend factors used by the callers.
const (
	BlendSuggest = 0.85
	BlendLexical = 0.80
	BlendOneWord = 0.74
)

// defaultMaxLabel stands in when the label set has no positive maximum.
const defaultMaxLabel = 3.0

// Request describes the call a candidate list belongs to.
type Request struct {
	Task    string
	Mode    string
	Context string
	Input   string
}

// Candidate is one entry of a ranked list. Index is its position in the
// list passed to Rerank.
type Candidate struct {
	Index   int
	Text    string
	POS     string
	Source  string
	Reason  string
	Score   float64
	Learned *float64
}

// Blender mixes artifact scores into candidate scores.
type Blender struct {
	store    *Store
	disabled bool
	log      *log.Logger
}

// NewBlender returns a blender over store. A disabled blender, or one
// without a store, always passes candidates through.
func NewBlender(store *Store, disabled bool) *Blender {
	return &Blender{store: store, disabled: disabled, log: logger.New("rerank")}
}

// Enabled reports whether the blender is switched on and an artifact is
// currently loadable.
func (b *Blender) Enabled() bool {
	return b != nil && !b.disabled && b.store.Available()
}

// State describes the blender for health reports.
func (b *Blender) State() string {
	switch {
	case b == nil || b.store == nil:
		return "absent"
	case b.disabled:
		return "disabled"
	case b.store.Available():
		return "ready"
	}
	return "no-artifact"
}

// FeatureText renders the text the vectorizer sees for one candidate.
func FeatureText(req Request, c Candidate) string {
	return fmt.Sprintf("task=%s mode=%s context=%s input=%s candidate=%s pos=%s source=%s reason=%s",
		req.Task, req.Mode, req.Context, req.Input, c.Text, c.POS, c.Source, c.Reason)
}

// Rerank blends learned scores into cands with factor blend and returns at
// most max entries (all when max <= 0). The input slice is not modified.
func (b *Blender) Rerank(req Request, cands []Candidate, blend float64, max int) []Candidate {
	cands = append([]Candidate(nil), cands...)
	for i := range cands {
		cands[i].Index = i
	}
	if len(cands) == 0 || b == nil || b.disabled {
		return passThrough(cands, max)
	}
	art := b.store.Load()
	if art == nil {
		return passThrough(cands, max)
	}

	active := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if strings.TrimSpace(c.Text) != "" {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return passThrough(cands, max)
	}

	maxLabel := math.Inf(-1)
	for _, l := range art.Labels() {
		maxLabel = math.Max(maxLabel, l)
	}
	if maxLabel <= 0 {
		maxLabel = defaultMaxLabel
	}
	blend = utils.Clamp(blend, 0, 1)

	out := make([]Candidate, len(active))
	for i, c := range active {
		probs, err := art.PredictProba(art.Transform(FeatureText(req, c)))
		if err != nil {
			b.log.Debugf("predict failed, passing through: %v", err)
			return passThrough(cands, max)
		}
		var expected float64
		for j, p := range probs {
			if j < len(art.Labels()) {
				expected += p * art.Labels()[j]
			}
		}
		if !isFinite(expected) {
			b.log.Debugf("non-finite prediction for %q, passing through", c.Text)
			return passThrough(cands, max)
		}
		learned := utils.Round4(utils.Clamp(expected/maxLabel, 0, 1))
		c.Learned = &learned
		c.Score = utils.Round4(blend*learned + (1-blend)*c.Score)
		out[i] = c
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func passThrough(cands []Candidate, max int) []Candidate {
	if max > 0 && len(cands) > max {
		return cands[:max]
	}
	return cands
}
