package wordtools

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/dictionary"
	"github.com/bastiangx/wordcraft/pkg/embed"
	"github.com/bastiangx/wordcraft/pkg/rerank"
)

// One-word notes.
const (
	NoteEmptyQuery = "Please provide a phrase or description."
	NoteOneWordHit = "Top one-word substitutions ranked by grammar-safe meaning match."
	NoteOneWordNil = "No one-word substitutions found for that description."
)

const (
	seedTokens       = 8
	synsetsPerTerm   = 14
	hypernymsPerSet  = 4
	networkSeeds     = 5
	relatedPerSeed   = 12
	meaningMaxChars  = 84
	contextWordFloor = 0.7
	glossStemFloor   = 0.64
	goodOneWordFit   = 0.54
	selfFocusBonus   = 0.14
	selfFocusPenalty = -0.24
	nonPersonPenalty = -0.12
)

// Candidate sources, also used as the rerank source label.
const (
	srcWordNet    = "wordnet"
	srcHypernym   = "hypernym"
	srcConceptNet = "conceptnet"
	srcSeed       = "seed"
)

var (
	queryTokenRE     = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-']+`)
	personPatterns   = []string{"a person who", "someone who", "one who", "an individual who"}
	abstractPatterns = []string{"quality of", "state of being", "act of"}
	selfPrefixes     = []string{"ego", "obsess", "vain", "narciss", "conceit"}
	selfWordPrefixes = []string{"ego", "narciss", "vain", "conceit"}
	selfTerms        = toSet("self ego egot vain conceit narciss obsess selfish")
	abstractLexnames = toSet("noun.attribute noun.state noun.feeling noun.cognition")
	reflexives       = toSet("myself yourself himself herself itself ourselves yourselves themselves")
)

var selfSeeds = []struct {
	word, gloss, lexname string
	pos                  dictionary.POS
}{
	{"narcissist", "a self-obsessed person", "noun.person", dictionary.Noun},
	{"egotist", "a self-centered and conceited person", "noun.person", dictionary.Noun},
	{"egocentric", "focused excessively on oneself", "noun.person", dictionary.Noun},
	{"vain", "excessively proud or self-admiring", "adj.all", dictionary.Adj},
}

// OneWordRequest describes a phrase to condense into one word.
type OneWordRequest struct {
	Query   string
	Context string
	Limit   int
}

type wordMeta struct {
	glosses  []string
	sources  map[string]struct{}
	pos      dictionary.POSSet
	lexnames map[string]struct{}
}

type hints struct {
	person, abstract, self bool
}

// QueryTokens splits a description into lowercase tokens. Reflexive
// pronouns and other words ending in "self" become "self".
func QueryTokens(text string) []string {
	var out []string
	for _, tok := range queryTokenRE.FindAllString(text, -1) {
		tok = strings.Trim(strings.ToLower(tok), "-'")
		if _, ok := reflexives[tok]; ok || (strings.HasSuffix(tok, "self") && len(tok) > 4) {
			tok = "self"
		}
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func queryHints(query string, tokens []string) hints {
	h := hints{
		person:   containsAny(query, personPatterns),
		abstract: containsAny(query, abstractPatterns),
	}
	for _, tok := range tokens {
		if tok == "self" || hasAnyPrefix(tok, selfPrefixes) {
			h.self = true
			break
		}
	}
	return h
}

// OneWord finds single words that stand for a description, such as
// "narcissist" for "a person who is obsessed with themselves".
func (t *Tools) OneWord(ctx context.Context, req OneWordRequest) Result {
	query := strings.ToLower(strings.TrimSpace(req.Query))
	tokens := QueryTokens(query)
	if query == "" || len(tokens) == 0 {
		return Result{Note: NoteEmptyQuery}
	}
	tokenSet := toSet(strings.Join(tokens, " "))
	h := queryHints(query, tokens)
	p := t.profile(ctx, req.Context)
	var ctxStems map[string]struct{}
	if p != nil {
		ctxStems = toSet(strings.Join(QueryTokens(strings.Join(p.Words, " ")), " "))
	}

	seeds := utils.Dedupe(append([]string{strings.ReplaceAll(query, " ", "_")}, head(tokens, seedTokens)...))
	pool := make(map[string]*wordMeta)
	add := func(raw, gloss, src string, pos dictionary.POS, lexname string) {
		w := clean(raw)
		if w == "" || strings.Contains(w, " ") || !t.lex.IsValidWord(w) {
			return
		}
		m, ok := pool[w]
		if !ok {
			m = &wordMeta{sources: map[string]struct{}{}, lexnames: map[string]struct{}{}}
			pool[w] = m
		}
		if gloss = strings.TrimSpace(gloss); gloss != "" {
			m.glosses = append(m.glosses, gloss)
		}
		m.sources[src] = struct{}{}
		if pos != 0 {
			m.pos = m.pos.Add(pos)
		}
		if lexname != "" {
			m.lexnames[lexname] = struct{}{}
		}
	}

	for _, term := range seeds {
		for _, s := range t.lex.Synsets(term, synsetsPerTerm) {
			for _, l := range s.Lemmas {
				add(l.Name, s.Gloss, srcWordNet, s.POS, s.Lexname)
			}
			for _, hyper := range t.lex.Hypernyms(s, hypernymsPerSet) {
				for _, l := range hyper.Lemmas {
					add(l.Name, hyper.Gloss, srcHypernym, hyper.POS, hyper.Lexname)
				}
			}
		}
	}
	if h.self {
		for _, s := range selfSeeds {
			add(s.word, s.gloss, srcSeed, s.pos, s.lexname)
		}
	}
	for _, related := range t.relatedAll(ctx, head(seeds, networkSeeds)) {
		for _, w := range related {
			add(w, "", srcConceptNet, 0, "")
		}
	}

	type scored struct {
		Candidate
		meta *wordMeta
	}
	words := make([]string, 0, len(pool))
	for w := range pool {
		if _, isQuery := tokenSet[w]; !isQuery {
			words = append(words, w)
		}
	}
	sort.Strings(words)

	texts := []string{query}
	glossOf := make(map[string]string, len(words))
	overlapOf := make(map[string]float64, len(words))
	for _, w := range words {
		gloss, overlap := bestGloss(pool[w].glosses, tokenSet)
		glossOf[w], overlapOf[w] = gloss, overlap
		texts = append(texts, w)
		if gloss != "" {
			texts = append(texts, gloss)
		}
	}
	vecs := t.vectors(ctx, texts)
	byText := make(map[string][]float32, len(texts))
	for i, text := range texts {
		byText[text] = vecs[i]
	}
	queryVec := vecs[0]

	var results []scored
	for _, w := range words {
		m := pool[w]
		gloss := glossOf[w]
		meaning := shorten(gloss, meaningMaxChars)
		meaningTerms := toSet(strings.Join(QueryTokens(meaning), " "))
		selfHit := intersects(meaningTerms, selfTerms) || hasAnyPrefix(w, selfWordPrefixes)
		if h.self && !selfHit {
			continue
		}

		vec := byText[w]
		semantic := embed.Scale(embed.Cosine(queryVec, vec))
		if gloss != "" {
			semantic = math.Max(semantic, embed.Scale(embed.Cosine(queryVec, byText[gloss])))
		}
		ctxFit := contextFit(p, vec)
		if p.Has(w) {
			ctxFit = math.Max(ctxFit, contextWordFloor)
		}
		if meaning != "" && intersects(meaningTerms, ctxStems) {
			ctxFit = math.Max(ctxFit, glossStemFloor)
		}

		var selfFocus float64
		if h.self {
			selfFocus = selfFocusBonus
			if !intersects(meaningTerms, selfTerms) && !hasAnyPrefix(w, selfWordPrefixes[:3]) {
				selfFocus = selfFocusPenalty
			}
			if _, person := m.lexnames["noun.person"]; h.person && !person {
				selfFocus += nonPersonPenalty
			}
		}

		score := 0.42*semantic + 0.22*overlapOf[w] + 0.16*posScore(m, h) + 0.10*ctxFit +
			0.06*sourceScore(m.sources) + 0.04*t.frequency(w) + selfFocus
		results = append(results, scored{
			Candidate: Candidate{
				Word:    w,
				Score:   utils.Round4(utils.Clamp(score, 0, MaxScore)),
				POS:     displayPOS(m.pos),
				Reason:  oneWordReason(meaning, h, toneHit(p, ctxFit), semantic),
				Meaning: meaning,
			},
			meta: m,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Word < results[j].Word
	})
	ranked := make([]Candidate, len(results))
	sources := make([]string, len(results))
	for i, r := range results {
		ranked[i] = r.Candidate
		sources[i] = primarySource(r.meta.sources)
	}

	ctxKey := "neutral"
	if p != nil {
		ctxKey = p.Key
	}
	top := t.rerankCandidates(rerank.Request{Task: "oneword", Context: ctxKey, Input: query},
		ranked, func(i int) string { return sources[i] }, t.rc.BlendOneWord, capLimit(req.Limit))
	if len(top) == 0 {
		return Result{Note: NoteOneWordNil}
	}
	return Result{Candidates: top, Note: NoteOneWordHit}
}

// relatedAll queries the network for every term concurrently. Lookups fail
// open, so the group never returns an error.
func (t *Tools) relatedAll(ctx context.Context, terms []string) [][]string {
	out := make([][]string, len(terms))
	g, gctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		i, term := i, term
		g.Go(func() error {
			out[i] = t.network.RelatedTerms(gctx, term, relatedPerSeed)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func bestGloss(glosses []string, query map[string]struct{}) (string, float64) {
	var best string
	var bestOverlap float64
	for _, g := range glosses {
		shared := 0
		for tok := range toSet(strings.Join(QueryTokens(g), " ")) {
			if _, ok := query[tok]; ok {
				shared++
			}
		}
		overlap := float64(shared) / float64(max(1, len(query)))
		if overlap > bestOverlap {
			best, bestOverlap = g, overlap
		}
	}
	return best, bestOverlap
}

func posScore(m *wordMeta, h hints) float64 {
	noun := m.pos.Has(dictionary.Noun)
	switch {
	case h.person:
		var s float64
		if noun {
			s += 0.5
		}
		if _, ok := m.lexnames["noun.person"]; ok {
			s += 0.5
		}
		return s
	case h.abstract:
		var s float64
		if noun {
			s += 0.45
		}
		for ln := range m.lexnames {
			if _, ok := abstractLexnames[ln]; ok {
				s += 0.55
				break
			}
		}
		return s
	case noun:
		return 0.5
	case m.pos.Has(dictionary.Adj):
		return 0.45
	}
	return 0.2
}

var sourceWeights = []struct {
	src    string
	weight float64
}{
	{srcWordNet, 0.6},
	{srcHypernym, 0.3},
	{srcConceptNet, 0.2},
	{srcSeed, 0.35},
}

func sourceScore(sources map[string]struct{}) float64 {
	var s float64
	for _, sw := range sourceWeights {
		if _, ok := sources[sw.src]; ok {
			s += sw.weight
		}
	}
	return math.Min(s, 1)
}

func primarySource(sources map[string]struct{}) string {
	for _, sw := range sourceWeights {
		if _, ok := sources[sw.src]; ok {
			return sw.src
		}
	}
	return "unknown"
}

func displayPOS(set dictionary.POSSet) string {
	if p, ok := set.First(); ok {
		return p.String()
	}
	return "X"
}

func oneWordReason(meaning string, h hints, toneKey string, semantic float64) string {
	var parts []string
	switch {
	case meaning != "":
		parts = append(parts, "Matches '"+meaning+"'.")
	case h.person:
		parts = append(parts, "Fits a person-focused noun description.")
	case h.abstract:
		parts = append(parts, "Fits an abstract-quality description.")
	default:
		parts = append(parts, "Strong one-word substitution candidate.")
	}
	switch {
	case semantic >= strongFit:
		parts = append(parts, "Strong semantic fit.")
	case semantic >= goodOneWordFit:
		parts = append(parts, "Good semantic fit.")
	}
	if toneKey != "" {
		parts = append(parts, "Boosted for "+toneKey+" tone.")
	}
	return strings.Join(parts, " ")
}

// shorten collapses whitespace and cuts text to limit runes with an
// ellipsis.
func shorten(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return strings.TrimRight(string(r[:limit-1]), " ") + "…"
}

func toSet(words string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		out[w] = struct{}{}
	}
	return out
}

func intersects(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
