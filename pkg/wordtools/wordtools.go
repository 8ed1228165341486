// Package wordtools implements the word-level lookups that sit beside the
// suggestion pipeline: lexical relations, one-word substitution for a
// description and rhyme plus meaning constraints.
package wordtools

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcraft/internal/logger"
	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/conceptnet"
	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/embed"
	"github.com/bastiangx/wordcraft/pkg/rerank"
	"github.com/bastiangx/wordcraft/pkg/suggest"
	"github.com/bastiangx/wordcraft/pkg/tone"
)

// Result limits.
const (
	DefaultLimit = 10
	MaxScore     = 0.99
	frequencyCap = 20.0
	strongFit    = 0.62
)

// ErrUnknownTask is returned for a lexical task outside the four supported.
var ErrUnknownTask = errors.New("wordtools: unknown task")

// ProfileSource provides the loaded tone profiles. *suggest.Engine
// satisfies it.
type ProfileSource interface {
	Profiles(ctx context.Context) (*tone.Profiles, error)
}

// Candidate is one ranked word. Meaning is set by the one-word flow, Rhyme
// and RelationMatch by the constraint flow.
type Candidate struct {
	Word          string
	Score         float64
	POS           string
	Reason        string
	Meaning       string
	Rhyme         bool
	RelationMatch bool
	LearnedScore  *float64
}

// Result is a ranked list plus an optional note for the caller.
type Result struct {
	Candidates []Candidate
	Note       string
}

// Tools runs the word-level flows over shared resources. It is safe for
// concurrent use.
type Tools struct {
	lex      dictionary.Lexicon
	phon     *dictionary.Phonetics
	network  conceptnet.Network
	cache    *embed.Cache
	blender  *rerank.Blender
	profiles ProfileSource
	rc       config.RerankConfig
	log      *log.Logger
}

// New builds the tools over res. profiles may be nil, in which case tone
// alignment is skipped.
func New(res *suggest.Resources, profiles ProfileSource, rc config.RerankConfig) *Tools {
	if res == nil {
		res = suggest.OfflineResources()
	}
	t := &Tools{
		lex:      res.Lexicon,
		phon:     res.Phonetics,
		network:  res.Network,
		cache:    res.Cache,
		blender:  res.Blender,
		profiles: profiles,
		rc:       rc,
		log:      logger.New("tools"),
	}
	if t.lex == nil {
		t.lex = dictionary.Unavailable{}
	}
	if t.network == nil {
		t.network = conceptnet.Noop{}
	}
	return t
}

// capLimit maps a requested limit onto [1, 10].
func capLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return max(1, min(DefaultLimit, limit))
}

func clean(word string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(word, "_", " ")))
}

// profile resolves an explicit context key. Unknown keys and load failures
// yield nil so that tone alignment scores zero.
func (t *Tools) profile(ctx context.Context, key string) *tone.Profile {
	key = strings.TrimSpace(key)
	if key == "" || t.profiles == nil {
		return nil
	}
	ps, err := t.profiles.Profiles(ctx)
	if err != nil {
		t.log.Debugf("No profiles for %q: %v", key, err)
		return nil
	}
	p, ok := ps.Get(key)
	if !ok {
		return nil
	}
	return p
}

// vectors embeds texts through the shared cache, all nil without one.
func (t *Tools) vectors(ctx context.Context, texts []string) [][]float32 {
	if t.cache == nil {
		return make([][]float32, len(texts))
	}
	return t.cache.Vectors(ctx, texts)
}

func (t *Tools) frequency(word string) float64 {
	return math.Min(float64(t.lex.Frequency(word)), frequencyCap) / frequencyCap
}

func (t *Tools) primaryPOS(word string) string {
	if p, ok := t.lex.PrimaryPOS(word); ok {
		return p.String()
	}
	return "X"
}

// contextFit is the scaled cosine to the profile centroid, zero without a
// profile.
func contextFit(p *tone.Profile, vec []float32) float64 {
	if p == nil {
		return 0
	}
	return embed.Scale(embed.Cosine(p.Centroid, vec))
}

// toneHit returns the profile key when ctxFit counts as tone-aligned.
func toneHit(p *tone.Profile, ctxFit float64) string {
	if p == nil || ctxFit < strongFit {
		return ""
	}
	return p.Key
}

// rerankCandidates blends learned scores into ranked and truncates to limit.
func (t *Tools) rerankCandidates(req rerank.Request, ranked []Candidate, source func(int) string, blend float64, limit int) []Candidate {
	cands := make([]rerank.Candidate, len(ranked))
	for i, c := range ranked {
		cands[i] = rerank.Candidate{Text: c.Word, POS: c.POS, Source: source(i), Reason: c.Reason, Score: c.Score}
	}
	out := make([]Candidate, 0, min(limit, len(ranked)))
	for _, c := range t.blender.Rerank(req, cands, blend, limit) {
		rc := ranked[c.Index]
		rc.Score = utils.Round4(utils.Clamp(c.Score, 0, MaxScore))
		rc.LearnedScore = c.Learned
		out = append(out, rc)
	}
	return out
}
