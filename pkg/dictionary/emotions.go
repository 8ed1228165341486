package dictionary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

type emotionsFile struct {
	Words map[string][]string `toml:"words"`
}

// Emotions maps words to the basic emotions they evoke.
type Emotions struct {
	words map[string][]string
}

// LoadEmotions reads an emotion lexicon. An empty path loads the embedded data.
func LoadEmotions(path string) (*Emotions, error) {
	data, err := readData(path, "data/emotions.toml")
	if err != nil {
		return nil, fmt.Errorf("read emotion data: %w", err)
	}
	var file emotionsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse emotion data: %w", err)
	}
	if len(file.Words) == 0 {
		return nil, ErrNoData
	}
	e := &Emotions{words: make(map[string][]string, len(file.Words))}
	for w, emos := range file.Words {
		set := make([]string, 0, len(emos))
		for _, emo := range emos {
			set = append(set, strings.ToLower(strings.TrimSpace(emo)))
		}
		sort.Strings(set)
		e.words[strings.ToLower(w)] = set
	}
	log.Debugf("Loaded emotion lexicon with %d words", len(e.words))
	return e, nil
}

// For returns the sorted emotions of word. A nil lexicon knows nothing.
func (e *Emotions) For(word string) []string {
	if e == nil {
		return nil
	}
	return e.words[strings.ToLower(strings.TrimSpace(word))]
}

// Score is |emotions(word) ∩ target| / |target|, 0 for an empty target.
func (e *Emotions) Score(word string, target []string) float64 {
	if len(target) == 0 {
		return 0
	}
	have := e.For(word)
	if len(have) == 0 {
		return 0
	}
	hits := 0
	for _, t := range target {
		for _, h := range have {
			if h == t {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(target))
}
