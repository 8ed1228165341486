package dictionary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

type phoneticsFile struct {
	Words map[string]string `toml:"words"`
}

// Phonetics indexes ARPAbet pronunciations. Words are stored in a trie keyed
// by their reversed phoneme string, so every word ending in a given phoneme
// tail sits in one subtree.
type Phonetics struct {
	phones map[string][]string
	trie   *patricia.Trie
}

// LoadPhonetics reads a pronunciation file. An empty path loads the embedded data.
func LoadPhonetics(path string) (*Phonetics, error) {
	data, err := readData(path, "data/phonetics.toml")
	if err != nil {
		return nil, fmt.Errorf("read phonetics data: %w", err)
	}
	var file phoneticsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse phonetics data: %w", err)
	}
	if len(file.Words) == 0 {
		return nil, ErrNoData
	}
	p := &Phonetics{
		phones: make(map[string][]string, len(file.Words)),
		trie:   patricia.NewTrie(),
	}
	words := make([]string, 0, len(file.Words))
	for w := range file.Words {
		words = append(words, w)
	}
	sort.Strings(words)
	for _, w := range words {
		phones := strings.Fields(strings.ToUpper(file.Words[w]))
		if len(phones) == 0 {
			continue
		}
		w = strings.ToLower(w)
		p.phones[w] = phones
		key := reversedKey(phones)
		list, _ := p.trie.Get(key).([]string)
		p.trie.Set(key, append(list, w))
	}
	log.Debugf("Loaded %d pronunciations", len(p.phones))
	return p, nil
}

// reversedKey joins phones last-to-first, each followed by a space, so a
// prefix never splits a phoneme.
func reversedKey(phones []string) patricia.Prefix {
	var b strings.Builder
	for i := len(phones) - 1; i >= 0; i-- {
		b.WriteString(phones[i])
		b.WriteByte(' ')
	}
	return patricia.Prefix(b.String())
}

// Pronunciation returns the phonemes for word.
func (p *Phonetics) Pronunciation(word string) ([]string, bool) {
	if p == nil {
		return nil, false
	}
	phones, ok := p.phones[strings.ToLower(strings.TrimSpace(word))]
	return phones, ok
}

// RhymingPart returns the phones from the last stressed vowel to the end.
func RhymingPart(phones []string) []string {
	for i := len(phones) - 1; i >= 0; i-- {
		if strings.ContainsAny(phones[i], "12") {
			return phones[i:]
		}
	}
	return phones
}

// Rhymes lists words sharing word's rhyming part, excluding word itself.
func (p *Phonetics) Rhymes(word string, limit int) []string {
	phones, ok := p.Pronunciation(word)
	if !ok {
		return nil
	}
	word = strings.ToLower(strings.TrimSpace(word))
	var out []string
	err := p.trie.VisitSubtree(reversedKey(RhymingPart(phones)), func(_ patricia.Prefix, item patricia.Item) error {
		for _, w := range item.([]string) {
			if w != word {
				out = append(out, w)
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting rhyme subtree: %v", err)
	}
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Homophones lists words with exactly word's pronunciation.
func (p *Phonetics) Homophones(word string, limit int) []string {
	phones, ok := p.Pronunciation(word)
	if !ok {
		return nil
	}
	word = strings.ToLower(strings.TrimSpace(word))
	list, _ := p.trie.Get(reversedKey(phones)).([]string)
	var out []string
	for _, w := range list {
		if w != word {
			out = append(out, w)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// RhymeQuality is 1 when the final phonemes of a and b match once stress
// marks are stripped, else 0. Words without pronunciations fall back to
// rhyme-set membership.
func (p *Phonetics) RhymeQuality(a, b string) float64 {
	pa, okA := p.Pronunciation(a)
	pb, okB := p.Pronunciation(b)
	if !okA || !okB {
		for _, r := range p.Rhymes(b, 0) {
			if r == strings.ToLower(a) {
				return 1
			}
		}
		return 0
	}
	if stripStress(pa[len(pa)-1]) == stripStress(pb[len(pb)-1]) {
		return 1
	}
	return 0
}

func stripStress(phone string) string {
	return strings.TrimRight(phone, "012")
}

// Len returns the number of indexed words.
func (p *Phonetics) Len() int {
	if p == nil {
		return 0
	}
	return len(p.phones)
}
