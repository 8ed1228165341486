package wordtools

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/embed"
)

// Relations between the meaning word and a candidate.
const (
	RelationSynonym = "synonym"
	RelationAntonym = "antonym"
)

// Constraint notes.
const (
	NoteBestEffort = "No strict rhyme+meaning overlap. Showing best-effort ranked matches."
	NoteNoRhymes   = "No rhyme candidates found. Showing strongest meaning matches."
	NoteNoMatches  = "No matches found for the provided constraints."
)

const (
	constraintPoolCap  = 260
	meaningSynonyms    = 30
	meaningDerived     = 20
	constraintVocabFit = 0.68
	nearMeaning        = 0.58
	bothMatchBonus     = 0.08
)

// ConstraintRequest asks for words that rhyme with Rhyme and relate to
// Meaning by Relation.
type ConstraintRequest struct {
	Rhyme    string
	Relation string
	Meaning  string
	Context  string
	Limit    int
}

// NormalizeRelation maps syn/synonyms to synonym and everything else to
// antonym.
func NormalizeRelation(rel string) string {
	switch strings.ToLower(strings.TrimSpace(rel)) {
	case "syn", "synonym", "synonyms", "":
		return RelationSynonym
	}
	return RelationAntonym
}

// Constraints ranks words satisfying a rhyme and a meaning relation,
// falling back to best-effort matches when no word satisfies both.
func (t *Tools) Constraints(ctx context.Context, req ConstraintRequest) Result {
	rhymeBase := clean(req.Rhyme)
	meaningBase := clean(req.Meaning)
	relation := NormalizeRelation(req.Relation)

	rhymes := t.rhymeSet(rhymeBase)
	meanings := t.meaningSet(meaningBase, relation)
	isRhyme := toSet(strings.Join(rhymes, " "))
	isMeaning := toSet(strings.Join(meanings, " "))

	var pool []string
	var note string
	for _, w := range rhymes {
		if _, ok := isMeaning[w]; ok {
			pool = append(pool, w)
		}
	}
	bestEffort := len(pool) == 0
	if bestEffort {
		if len(rhymes) > 0 {
			pool = utils.Dedupe(append(append([]string(nil), rhymes...), meanings...))
			note = NoteBestEffort
		} else {
			pool = meanings
			note = NoteNoRhymes
		}
	}
	if len(pool) > constraintPoolCap {
		pool = pool[:constraintPoolCap]
	}
	if len(pool) == 0 {
		return Result{Note: NoteNoMatches}
	}

	p := t.profile(ctx, req.Context)
	vecs := t.vectors(ctx, append([]string{meaningBase}, pool...))
	out := make([]Candidate, 0, len(pool))
	for i, w := range pool {
		_, rhymeMatch := isRhyme[w]
		_, relMatch := isMeaning[w]
		var rhymeScore, semantic float64
		if rhymeBase != "" {
			rhymeScore = t.phon.RhymeQuality(w, rhymeBase)
		}
		if meaningBase != "" {
			semantic = embed.Scale(embed.Cosine(vecs[0], vecs[i+1]))
		}
		relScore := semantic
		if relMatch {
			relScore = 1
		}
		ctxFit := contextFit(p, vecs[i+1])
		if p.Has(w) {
			ctxFit = math.Max(ctxFit, constraintVocabFit)
		}
		score := 0.40*rhymeScore + 0.32*relScore + 0.16*semantic + 0.07*ctxFit + 0.05*t.frequency(w)
		if rhymeMatch && relMatch {
			score += bothMatchBonus
		}
		out = append(out, Candidate{
			Word:          w,
			Score:         utils.Round4(math.Min(score, MaxScore)),
			POS:           t.primaryPOS(w),
			Rhyme:         rhymeMatch,
			RelationMatch: relMatch,
			Reason: constraintReason(rhymeBase, meaningBase, relation, rhymeMatch, relMatch, bestEffort,
				semantic, p != nil && (p.Has(w) || ctxFit >= strongFit)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Score != b.Score:
			return a.Score > b.Score
		case a.RelationMatch != b.RelationMatch:
			return a.RelationMatch
		case a.Rhyme != b.Rhyme:
			return a.Rhyme
		}
		return a.Word < b.Word
	})
	if limit := capLimit(req.Limit); len(out) > limit {
		out = out[:limit]
	}
	return Result{Candidates: out, Note: note}
}

func (t *Tools) rhymeSet(word string) []string {
	if word == "" {
		return nil
	}
	var out []string
	f := utils.NewSuggestionFilter()
	for _, r := range t.phon.Rhymes(word, 0) {
		r = clean(r)
		if !strings.Contains(r, " ") && t.lex.IsValidWord(r) && f.ShouldInclude(r) {
			out = append(out, r)
		}
	}
	return out
}

// meaningSet returns the related words of word, sorted.
func (t *Tools) meaningSet(word, relation string) []string {
	if word == "" {
		return nil
	}
	var raw []string
	if relation == RelationSynonym {
		raw = append(raw, word)
		raw = append(raw, t.lex.Synonyms(word, meaningSynonyms)...)
		raw = append(raw, t.lex.DerivationalForms(word, meaningDerived)...)
	} else {
		raw = t.lex.Antonyms(word, 0)
	}
	var out []string
	for _, w := range utils.Dedupe(raw) {
		w = clean(w)
		if !strings.Contains(w, " ") && t.lex.IsValidWord(w) {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

func constraintReason(rhyme, meaning, relation string, rhymeMatch, relMatch, bestEffort bool, semantic float64, toneHit bool) string {
	var parts []string
	switch {
	case rhymeMatch:
		parts = append(parts, "Rhymes with '"+rhyme+"'.")
	case bestEffort:
		parts = append(parts, "Closest rhyme candidate for '"+rhyme+"'.")
	}
	label := "Synonym"
	if relation == RelationAntonym {
		label = "Antonym"
	}
	switch {
	case relMatch:
		parts = append(parts, label+" of '"+meaning+"'.")
	case semantic >= nearMeaning:
		parts = append(parts, "Near "+strings.ToLower(label)+" meaning to '"+meaning+"'.")
	}
	if toneHit {
		parts = append(parts, "Tone-aligned with selected context.")
	}
	if len(parts) == 0 {
		return "Best available match for the provided constraints."
	}
	return strings.Join(parts, " ")
}
