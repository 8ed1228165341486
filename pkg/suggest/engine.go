package suggest

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcraft/internal/logger"
	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/rerank"
	"github.com/bastiangx/wordcraft/pkg/tone"
)

// Engine sequences the pipeline: preprocess, aggregate, rank, blend,
// rewrite and explain. It is safe for concurrent use.
type Engine struct {
	cfg *config.Config
	res *Resources

	aggregator *Aggregator
	ranker     *Ranker
	rewriter   *Rewriter

	once     sync.Once
	profiles *tone.Profiles
	initErr  error

	log *log.Logger
}

var _ ISuggester = (*Engine)(nil)

// NewEngine builds an engine over detected resources. Profiles load on
// the first request or on Init.
func NewEngine(cfg *config.Config, res *Resources) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if res == nil {
		res = OfflineResources()
	}
	return &Engine{
		cfg: cfg,
		res: res,
		aggregator: &Aggregator{
			Lexicon:  res.Lexicon,
			Network:  res.Network,
			Emotions: res.Emotions,
			Cap:      cfg.Engine.PoolCap,
		},
		ranker: &Ranker{Lexicon: res.Lexicon, Tagger: res.Tagger, Cache: res.Cache},
		rewriter: &Rewriter{
			Lexicon:     res.Lexicon,
			Tagger:      res.Tagger,
			DriftBudget: cfg.Engine.DriftBudget,
			MaxVariants: cfg.Engine.MaxVariants,
		},
		log: logger.New("engine"),
	}
}

// Resources returns the capabilities the engine runs on.
func (e *Engine) Resources() *Resources { return e.res }

// Init loads the context profiles and embeds their centroids. It runs
// once; a failure is returned to every later caller.
func (e *Engine) Init(ctx context.Context) error {
	e.once.Do(func() {
		profiles, err := tone.Load(e.res.ContextsPath)
		if err != nil {
			e.initErr = err
			e.log.Errorf("Failed to load contexts: %v", err)
			return
		}
		if e.res.Cache != nil {
			profiles.EmbedCentroids(context.WithoutCancel(ctx), e.res.Cache)
		}
		e.profiles = profiles
		e.log.Debugf("Engine ready with %d contexts", len(profiles.Keys()))
	})
	return e.initErr
}

// Profiles returns the loaded tones, initializing on first use.
func (e *Engine) Profiles(ctx context.Context) (*tone.Profiles, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	return e.profiles, nil
}

// Contexts lists the tone keys, empty when initialization failed.
func (e *Engine) Contexts(ctx context.Context) []string {
	ps, err := e.Profiles(ctx)
	if err != nil {
		return nil
	}
	return ps.Keys()
}

// Suggest runs the pipeline for req.
func (e *Engine) Suggest(ctx context.Context, req Request) Response {
	profiles, err := e.Profiles(ctx)
	if err != nil {
		return fallbackResponse(false)
	}
	mode := req.Mode
	if strings.TrimSpace(mode) == "" {
		mode = e.cfg.Engine.DefaultMode
	}
	mode = NormalizeMode(mode)
	key := req.Context
	if key == "" {
		key = e.cfg.Engine.DefaultContext
	}
	profile := profiles.Resolve(key)
	neutral, _ := profiles.Get(tone.Neutral)

	d := Preprocess(req.Text, req.Selection, e.res.Tagger, e.res.Lexicon)
	if d.CleanedText == "" {
		return fallbackResponse(d.BlankPresent)
	}
	pool := e.aggregator.Aggregate(ctx, AggregateInput{Decision: d, Mode: mode, Profile: profile, Neutral: neutral})
	if pool.Len() == 0 {
		return fallbackResponse(d.BlankPresent)
	}

	topK := e.cfg.Engine.TopK
	if topK <= 0 {
		topK = config.DefaultConfig().Engine.TopK
	}
	blend := e.cfg.Rerank.SuggestEnabled && e.res.Blender.Enabled()
	in := RankInput{
		Decision: d,
		Pool:     pool,
		Profile:  profile,
		Weights:  ModeWeights(e.cfg.Weights, mode, d.Intent),
		TopK:     topK,
		Slot:     d.BlankPresent && d.Intent != IntentSelection,
	}
	if blend {
		in.TopK = 2 * topK
	}
	ranked := e.ranker.Rank(ctx, in)
	if blend {
		ranked = e.blend(ranked, mode, profile.Key, d.CleanedText, topK)
	}

	// Rewrite itself rejects blanks and incomplete sentences.
	allow := mode == ModeWrite || mode == ModeEdit || (mode == ModeRewrite && req.Trigger == TriggerButton)
	variants := e.rewriter.Rewrite(RewriteInput{
		Sentence:    req.Text,
		Mode:        mode,
		Profile:     profile,
		Suggestions: ranked,
		Blank:       d.BlankPresent,
		Allow:       allow,
	})

	words := make([]string, len(ranked))
	for i, c := range ranked {
		words[i] = c.Word
	}
	resp := Response{
		Suggestions: ranked,
		Rewrites:    variants,
		Explanation: Explain(ExplainInput{
			Words:     words,
			Tone:      profile.Label,
			Mode:      mode,
			Intent:    d.Intent,
			Blank:     in.Slot,
			Selection: d.Intent == IntentSelection,
		}),
		DetectedBlank: d.BlankPresent,
	}
	if len(variants) > 0 {
		resp.Rewrite = variants[0]
	}
	return resp
}

// blend mixes the learned score into ranked and keeps the top topK.
func (e *Engine) blend(ranked []ScoredCandidate, mode, key, input string, topK int) []ScoredCandidate {
	cands := make([]rerank.Candidate, len(ranked))
	for i, c := range ranked {
		cands[i] = rerank.Candidate{
			Text:   c.Word,
			POS:    c.POS,
			Source: c.Sources.Primary(),
			Reason: c.Note,
			Score:  c.Score,
		}
	}
	req := rerank.Request{Task: "suggest", Mode: mode, Context: key, Input: input}
	out := make([]ScoredCandidate, 0, topK)
	for _, c := range e.res.Blender.Rerank(req, cands, e.cfg.Rerank.BlendSuggest, topK) {
		sc := ranked[c.Index]
		sc.Score = utils.Round4(utils.Clamp(c.Score, 0, MaxScore))
		sc.LearnedScore = c.Learned
		out = append(out, sc)
	}
	return out
}
