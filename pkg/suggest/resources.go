package suggest

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/conceptnet"
	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/embed"
	"github.com/bastiangx/wordcraft/pkg/rerank"
	"github.com/bastiangx/wordcraft/pkg/tagger"
)

// Tagger backends.
const (
	TaggerProse     = "prose"
	TaggerHeuristic = "heuristic"
	TaggerNone      = "none"
)

// Resources are the capabilities detected at startup. Every field holds a
// usable value: a real implementation or its unavailable form. Tagger is
// nil when tagging is off.
type Resources struct {
	Lexicon      dictionary.Lexicon
	Phonetics    *dictionary.Phonetics
	Emotions     *dictionary.Emotions
	Tagger       tagger.Tagger
	Network      conceptnet.Network
	Cache        *embed.Cache
	Blender      *rerank.Blender
	ContextsPath string

	closers []func() error
}

// OfflineResources loads the embedded data with the heuristic tagger and
// hash embeddings, and no network or reranker.
func OfflineResources() *Resources {
	res := &Resources{
		Lexicon: dictionary.Unavailable{},
		Network: conceptnet.Noop{},
		Cache:   embed.NewCache(embed.HashEncoder{}, nil),
	}
	var lem tagger.Lemmatizer
	if wn, err := dictionary.LoadWordNet(""); err == nil {
		res.Lexicon, lem = wn, wn
	}
	res.Phonetics, _ = dictionary.LoadPhonetics("")
	res.Emotions, _ = dictionary.LoadEmotions("")
	res.Tagger = tagger.NewHeuristicTagger(res.Lexicon, lem)
	return res
}

// DetectResources probes every capability once and falls back to the
// unavailable form of anything that fails.
func DetectResources(ctx context.Context, cfg *config.Config) *Resources {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	res := &Resources{
		Lexicon: dictionary.Unavailable{},
		Network: conceptnet.Noop{},
	}

	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("Could not resolve paths: %v", err)
	}
	dataDir := ""
	if pr != nil {
		dataDir = pr.GetDataDir(cfg.Lexicon.DataDir)
	}
	pick := func(explicit, name string) string {
		if explicit != "" {
			return explicit
		}
		return utils.DataFile(dataDir, name)
	}

	var lem tagger.Lemmatizer
	if wn, err := dictionary.LoadWordNet(pick(cfg.Lexicon.WordNetPath, "wordnet.toml")); err != nil {
		log.Warnf("Lexical database unavailable: %v", err)
	} else {
		res.Lexicon, lem = wn, wn
	}
	if ph, err := dictionary.LoadPhonetics(pick(cfg.Lexicon.PhoneticsPath, "phonetics.toml")); err != nil {
		log.Warnf("Phonetic index unavailable: %v", err)
	} else {
		res.Phonetics = ph
	}
	if em, err := dictionary.LoadEmotions(pick(cfg.Lexicon.EmotionsPath, "emotions.toml")); err != nil {
		log.Warnf("Emotion lexicon unavailable: %v", err)
	} else {
		res.Emotions = em
	}
	res.ContextsPath = pick(cfg.Lexicon.ContextsPath, "contexts.toml")

	switch cfg.Tagger.Backend {
	case TaggerNone:
		log.Debugf("POS tagging disabled")
	case TaggerHeuristic:
		res.Tagger = tagger.NewHeuristicTagger(res.Lexicon, lem)
	default:
		res.Tagger = tagger.NewProseTagger(res.Lexicon, lem)
	}

	res.Cache = embed.NewCache(detectEncoder(ctx, cfg.Embed), res.openVectorStore(pr, cfg.Embed.CacheDB))

	if cfg.Network.Enabled {
		client := conceptnet.NewClient(conceptnet.Options{
			BaseURL:    cfg.Network.BaseURL,
			Timeout:    time.Duration(cfg.Network.TimeoutMS) * time.Millisecond,
			RatePerSec: cfg.Network.RatePerSec,
			Burst:      cfg.Network.Burst,
			Limit:      cfg.Network.Limit,
		})
		res.Network = client
		res.closers = append(res.closers, func() error { client.Close(); return nil })
	}

	artifact := cfg.Rerank.Artifact
	if pr != nil && artifact != "" && !filepath.IsAbs(artifact) {
		artifact = pr.ResolveRelativePath(artifact)
	}
	res.Blender = rerank.NewBlender(rerank.NewStore(artifact), cfg.Rerank.Disabled)
	return res
}

func detectEncoder(ctx context.Context, ec config.EmbedConfig) embed.Encoder {
	if ec.Provider != "ollama" {
		return embed.HashEncoder{}
	}
	ollama := embed.NewOllamaEncoder(ec.Endpoint, ec.Model, time.Duration(ec.TimeoutMS)*time.Millisecond)
	if !ollama.Available(ctx) {
		log.Warnf("Ollama model %s not reachable at %s, using hash embeddings", ec.Model, ec.Endpoint)
		return embed.HashEncoder{}
	}
	return ollama
}

func (r *Resources) openVectorStore(pr *utils.PathResolver, path string) *embed.SQLiteStore {
	if path == "" {
		return nil
	}
	if pr != nil {
		path = pr.ResolveRelativePath(path)
	}
	store, err := embed.OpenSQLiteStore(path)
	if err != nil {
		log.Warnf("Vector cache disabled: %v", err)
		return nil
	}
	r.closers = append(r.closers, store.Close)
	return store
}

// Capabilities summarizes the detected resources for health reports.
func (r *Resources) Capabilities() map[string]string {
	caps := map[string]string{
		"lexicon":   "unavailable",
		"phonetics": "unavailable",
		"emotions":  "unavailable",
		"tagger":    TaggerNone,
		"encoder":   "none",
		"network":   "off",
		"reranker":  r.Blender.State(),
	}
	if r.Lexicon != nil && r.Lexicon.Available() {
		caps["lexicon"] = "available"
	}
	if r.Phonetics != nil {
		caps["phonetics"] = "available"
	}
	if r.Emotions != nil {
		caps["emotions"] = "available"
	}
	if r.Tagger != nil {
		caps["tagger"] = r.Tagger.Name()
	}
	if r.Cache != nil {
		caps["encoder"] = r.Cache.Encoder().Name()
	}
	if _, noop := r.Network.(conceptnet.Noop); r.Network != nil && !noop {
		caps["network"] = "on"
	}
	return caps
}

// Close releases the vector store and network client.
func (r *Resources) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
