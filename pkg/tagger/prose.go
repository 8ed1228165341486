package tagger

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jdkato/prose/v2"

	"github.com/bastiangx/wordcraft/pkg/dictionary"
)

// alignWindow bounds how far ahead a model token may sit from the token it
// is matched against. The model splits the blank placeholder into three.
const alignWindow = 4

// ProseTagger tags open-class words with the prose perceptron model.
// Function words, the blank placeholder and anything the model's own
// tokenizer splits differently keep their heuristic annotation.
type ProseTagger struct {
	base *HeuristicTagger
}

// NewProseTagger returns a model-backed tagger with a heuristic fallback
// built from lex and lem.
func NewProseTagger(lex dictionary.Lexicon, lem Lemmatizer) *ProseTagger {
	return &ProseTagger{base: NewHeuristicTagger(lex, lem)}
}

func (p *ProseTagger) Name() string { return "prose" }

func (p *ProseTagger) Tag(text string) []Token {
	toks := p.base.baseline(tokenize(text))
	if len(toks) == 0 {
		return toks
	}

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		log.Debugf("prose tagging failed, using heuristics: %v", err)
		p.base.correct(toks)
		p.base.annotate(toks)
		return toks
	}

	model := doc.Tokens()
	j := 0
	for i := range toks {
		t := &toks[i]
		for k := j; k < len(model) && k < j+alignWindow; k++ {
			if !strings.EqualFold(model[k].Text, t.Text) {
				continue
			}
			j = k + 1
			if t.Tag == "" && t.Alpha {
				if pos := universal(model[k].Tag); IsContentPOS(pos) || pos == PropN {
					t.POS, t.Tag = pos, model[k].Tag
				}
			}
			break
		}
	}

	// Tokens the model answered carry a fine tag, so the contextual pass
	// only revisits the rest.
	p.base.correct(toks)
	p.base.annotate(toks)
	return toks
}

// universal maps a Penn Treebank tag onto the universal tag set.
func universal(penn string) string {
	switch {
	case penn == "NNP" || penn == "NNPS":
		return PropN
	case strings.HasPrefix(penn, "NN"):
		return Noun
	case strings.HasPrefix(penn, "VB"):
		return Verb
	case strings.HasPrefix(penn, "JJ"):
		return Adj
	case strings.HasPrefix(penn, "RB"), penn == "WRB":
		return Adv
	case penn == "MD":
		return Aux
	case penn == "IN":
		return Adp
	case penn == "DT", penn == "PDT", penn == "WDT":
		return Det
	case strings.HasPrefix(penn, "PRP"), strings.HasPrefix(penn, "WP"), penn == "EX":
		return Pron
	case penn == "CC":
		return CConj
	case penn == "CD":
		return Num
	case penn == "TO", penn == "RP", penn == "POS":
		return Part
	case penn == "UH":
		return Intj
	case penn == "SYM", penn == "$", penn == "#":
		return Sym
	case penn == "FW", penn == "LS":
		return Other
	}
	return Punct
}
