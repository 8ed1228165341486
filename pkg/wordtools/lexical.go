package wordtools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/embed"
	"github.com/bastiangx/wordcraft/pkg/rerank"
	"github.com/bastiangx/wordcraft/pkg/tone"
)

// Lexical tasks.
const (
	TaskSynonyms = "synonyms"
	TaskAntonyms = "antonyms"
	TaskHomonyms = "homonyms"
	TaskRhymes   = "rhymes"
)

const (
	lexicalVocabularyFloor = 0.66
	goodLexicalFit         = 0.54
)

var lexicalReasons = map[string]string{
	TaskSynonyms: "WordNet synonym.",
	TaskAntonyms: "WordNet antonym.",
	TaskRhymes:   "Phonetic rhyme match.",
	TaskHomonyms: "Pronunciation match.",
}

// LexicalRequest asks for one relation of Word.
type LexicalRequest struct {
	Word    string
	Task    string
	Context string
	Limit   int
}

// Lexical ranks the synonyms, antonyms, homophones or rhymes of a word.
// An empty word yields an empty result.
func (t *Tools) Lexical(ctx context.Context, req LexicalRequest) (Result, error) {
	task := strings.ToLower(strings.TrimSpace(req.Task))
	if _, ok := lexicalReasons[task]; !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTask, req.Task)
	}
	word := clean(req.Word)
	if word == "" {
		return Result{}, nil
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var raw []string
	switch task {
	case TaskSynonyms:
		raw = t.lex.Synonyms(word, limit*2)
	case TaskAntonyms:
		raw = t.lex.Antonyms(word, limit*2)
	case TaskHomonyms:
		raw = t.phon.Homophones(word, limit*2)
	case TaskRhymes:
		raw = t.phon.Rhymes(word, limit*2)
	}
	words := make([]string, 0, len(raw))
	filter := utils.NewSuggestionFilter(word)
	for _, w := range raw {
		w = clean(w)
		if t.lex.IsValidWord(w) && filter.ShouldInclude(w) {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return Result{}, nil
	}

	p := t.profile(ctx, req.Context)
	vecs := t.vectors(ctx, append([]string{word}, words...))
	phonetic := 0.0
	if task == TaskRhymes || task == TaskHomonyms {
		phonetic = 1
	}

	ranked := make([]Candidate, 0, len(words))
	for i, w := range words {
		vec := vecs[i+1]
		semantic := embed.Scale(embed.Cosine(vecs[0], vec))
		ctxFit := contextFit(p, vec)
		if p.Has(w) {
			ctxFit = math.Max(ctxFit, lexicalVocabularyFloor)
		}
		score := 0.58*semantic + 0.18*ctxFit + 0.16*t.frequency(w) + 0.08*phonetic
		ranked = append(ranked, Candidate{
			Word:   w,
			Score:  utils.Round4(utils.Clamp(score, 0, MaxScore)),
			POS:    t.primaryPOS(w),
			Reason: lexicalReason(task, p, semantic, ctxFit),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	source := func(int) string { return srcWordNet }
	if phonetic > 0 {
		source = func(int) string { return "phonetic" }
	}
	ctxKey := ""
	if p != nil {
		ctxKey = p.Key
	}
	rr := rerank.Request{Task: "lexical", Mode: task, Context: ctxKey, Input: word}
	return Result{Candidates: t.rerankCandidates(rr, ranked, source, t.rc.BlendLexical, limit)}, nil
}

func lexicalReason(task string, p *tone.Profile, semantic, ctxFit float64) string {
	parts := []string{lexicalReasons[task]}
	switch {
	case semantic >= strongFit:
		parts = append(parts, "Strong semantic fit.")
	case semantic >= goodLexicalFit:
		parts = append(parts, "Good semantic match.")
	}
	if key := toneHit(p, ctxFit); key != "" {
		parts = append(parts, "Aligned with "+key+" tone.")
	}
	return strings.Join(parts, " ")
}
