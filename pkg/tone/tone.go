// Package tone loads the writing contexts ("tones") a request can target:
// their vocabularies, display labels, emotion sets, rewrite adverbs and
// phrase lists, plus an embedding centroid per vocabulary.
package tone

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	wcembed "github.com/bastiangx/wordcraft/pkg/embed"
)

//go:embed data/contexts.toml
var defaultData embed.FS

// Neutral is the fallback context key.
const Neutral = "neutral"

// ErrNoContexts is returned when a contexts file yields no usable profile.
var ErrNoContexts = errors.New("tone: no valid contexts")

// Profile describes one tone.
type Profile struct {
	Key         string
	Label       string
	Description string
	Adverb      string
	Words       []string // sorted, unique, lowercase
	Emotions    []string
	Phrases     []string
	Centroid    []float32

	members map[string]struct{}
}

// Has reports whether word is in the tone vocabulary.
func (p *Profile) Has(word string) bool {
	if p == nil {
		return false
	}
	_, ok := p.members[strings.ToLower(word)]
	return ok
}

type profileRecord struct {
	Label       string   `toml:"label"`
	Description string   `toml:"description"`
	Adverb      string   `toml:"adverb"`
	Emotions    []string `toml:"emotions"`
	Words       []string `toml:"words"`
	Phrases     []string `toml:"phrases"`
}

// Profiles is the set of loaded tones. It must not be modified once
// requests are being served.
type Profiles struct {
	byKey map[string]*Profile
	keys  []string
}

// Load reads a contexts file. An empty path loads the embedded contexts.
// Tables without a description or without words are skipped.
func Load(path string) (*Profiles, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = defaultData.ReadFile("data/contexts.toml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read contexts: %w", err)
	}

	var raw map[string]profileRecord
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse contexts: %w", err)
	}

	ps := &Profiles{byKey: make(map[string]*Profile, len(raw))}
	for name, rec := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		desc := strings.TrimSpace(rec.Description)
		words := cleanWords(rec.Words)
		if key == "" || desc == "" || len(words) == 0 {
			log.Debugf("Skipping context %q: missing description or words", name)
			continue
		}
		label := strings.TrimSpace(rec.Label)
		if label == "" {
			label = key
		}
		p := &Profile{
			Key:         key,
			Label:       label,
			Description: desc,
			Adverb:      strings.ToLower(strings.TrimSpace(rec.Adverb)),
			Words:       words,
			Emotions:    cleanWords(rec.Emotions),
			Phrases:     rec.Phrases,
			members:     make(map[string]struct{}, len(words)),
		}
		for _, w := range words {
			p.members[w] = struct{}{}
		}
		ps.byKey[key] = p
		ps.keys = append(ps.keys, key)
	}
	if len(ps.keys) == 0 {
		return nil, ErrNoContexts
	}
	sort.Strings(ps.keys)
	log.Debugf("Loaded %d contexts", len(ps.keys))
	return ps, nil
}

func cleanWords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Keys returns the context keys in sorted order.
func (ps *Profiles) Keys() []string {
	return append([]string(nil), ps.keys...)
}

// Get returns the profile for key.
func (ps *Profiles) Get(key string) (*Profile, bool) {
	p, ok := ps.byKey[strings.ToLower(strings.TrimSpace(key))]
	return p, ok
}

// Resolve picks the requested context, else neutral, else the first key.
func (ps *Profiles) Resolve(key string) *Profile {
	if p, ok := ps.Get(key); ok {
		return p
	}
	if p, ok := ps.byKey[Neutral]; ok {
		return p
	}
	return ps.byKey[ps.keys[0]]
}

// EmbedCentroids encodes every vocabulary word once and stores each
// profile's normalized mean vector. Call it before serving requests.
func (ps *Profiles) EmbedCentroids(ctx context.Context, cache *wcembed.Cache) {
	seen := make(map[string]struct{})
	var all []string
	for _, k := range ps.keys {
		for _, w := range ps.byKey[k].Words {
			if _, dup := seen[w]; !dup {
				seen[w] = struct{}{}
				all = append(all, w)
			}
		}
	}
	sort.Strings(all)
	vecs := cache.Vectors(ctx, all)
	byWord := make(map[string][]float32, len(all))
	for i, w := range all {
		byWord[w] = vecs[i]
	}
	for _, k := range ps.keys {
		p := ps.byKey[k]
		members := make([][]float32, 0, len(p.Words))
		for _, w := range p.Words {
			if v := byWord[w]; v != nil {
				members = append(members, v)
			}
		}
		p.Centroid = wcembed.Centroid(members)
		if p.Centroid == nil {
			log.Warnf("No embeddings for context %q, tone scores fall back to neutral", k)
		}
	}
}
