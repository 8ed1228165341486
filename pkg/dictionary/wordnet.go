package dictionary

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Lemma is one word form inside a synset.
type Lemma struct {
	Name     string   `toml:"name"`
	Count    int      `toml:"count"`
	Antonyms []string `toml:"antonyms"`
	Derived  []string `toml:"derived"`
}

// Synset groups lemmas sharing one sense.
type Synset struct {
	ID        string
	POS       POS
	Satellite bool
	Lexname   string
	Gloss     string
	Hypernyms []string
	Lemmas    []Lemma
}

// Names returns the lemma names with underscores turned into spaces.
func (s Synset) Names() []string {
	out := make([]string, 0, len(s.Lemmas))
	for _, l := range s.Lemmas {
		out = append(out, cleanLemma(l.Name))
	}
	return out
}

type synsetRecord struct {
	ID        string   `toml:"id"`
	POS       string   `toml:"pos"`
	Lex       string   `toml:"lex"`
	Gloss     string   `toml:"gloss"`
	Hypernyms []string `toml:"hypernyms"`
	Lemmas    []Lemma  `toml:"lemmas"`
}

type wordnetFile struct {
	Exceptions map[string]string `toml:"exceptions"`
	Synsets    []synsetRecord    `toml:"synset"`
}

// indexEntry lists synset offsets for one lemma, per POS.
type indexEntry map[POS][]int

// WordNet is an in-memory synset database. It is immutable after load and
// safe for concurrent readers.
type WordNet struct {
	synsets    []Synset
	byID       map[string]int
	index      *patricia.Trie
	exceptions map[string]string
}

// posOrder is the order synsets are returned in for a bare word.
var posOrder = []POS{Noun, Verb, Adj, Adv}

var substitutions = map[POS][][2]string{
	Noun: {{"s", ""}, {"ses", "s"}, {"xes", "x"}, {"zes", "z"}, {"ches", "ch"}, {"shes", "sh"}, {"men", "man"}, {"ies", "y"}},
	Verb: {{"s", ""}, {"ies", "y"}, {"es", "e"}, {"es", ""}, {"ed", "e"}, {"ed", ""}, {"ing", "e"}, {"ing", ""}},
	Adj:  {{"er", ""}, {"est", ""}, {"er", "e"}, {"est", "e"}},
	Adv:  {},
}

// LoadWordNet reads a synset file. An empty path loads the embedded data.
func LoadWordNet(path string) (*WordNet, error) {
	data, err := readData(path, "data/wordnet.toml")
	if err != nil {
		return nil, fmt.Errorf("read wordnet data: %w", err)
	}
	var file wordnetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse wordnet data: %w", err)
	}
	wn := newWordNet(file)
	if len(wn.synsets) == 0 {
		return nil, ErrNoData
	}
	log.Debugf("Loaded %d synsets (%d exceptions)", len(wn.synsets), len(wn.exceptions))
	return wn, nil
}

func newWordNet(file wordnetFile) *WordNet {
	wn := &WordNet{
		byID:       make(map[string]int, len(file.Synsets)),
		index:      patricia.NewTrie(),
		exceptions: make(map[string]string, len(file.Exceptions)),
	}
	for k, v := range file.Exceptions {
		wn.exceptions[strings.ToLower(k)] = strings.ToLower(v)
	}
	for _, rec := range file.Synsets {
		pos, ok := ParsePOS(rec.POS)
		if !ok || len(rec.Lemmas) == 0 {
			log.Debugf("Skipping synset %q: bad pos or no lemmas", rec.ID)
			continue
		}
		offset := len(wn.synsets)
		wn.synsets = append(wn.synsets, Synset{
			ID:        rec.ID,
			POS:       pos,
			Satellite: strings.EqualFold(rec.POS, "s"),
			Lexname:   rec.Lex,
			Gloss:     rec.Gloss,
			Hypernyms: rec.Hypernyms,
			Lemmas:    rec.Lemmas,
		})
		wn.byID[rec.ID] = offset
		for _, l := range rec.Lemmas {
			wn.addIndex(strings.ToLower(l.Name), pos, offset)
		}
	}
	return wn
}

func (wn *WordNet) addIndex(name string, pos POS, offset int) {
	key := patricia.Prefix(name)
	entry, _ := wn.index.Get(key).(indexEntry)
	if entry == nil {
		entry = make(indexEntry)
		wn.index.Insert(key, entry)
	}
	if offsets := entry[pos]; len(offsets) > 0 && offsets[len(offsets)-1] == offset {
		return
	}
	entry[pos] = append(entry[pos], offset)
}

func (wn *WordNet) lookup(form string, pos POS) []int {
	entry, _ := wn.index.Get(patricia.Prefix(form)).(indexEntry)
	if entry == nil {
		return nil
	}
	return entry[pos]
}

// morphy returns the base forms of word that exist in the index for pos.
// An exception entry wins over the suffix rules.
func (wn *WordNet) morphy(word string, pos POS) []string {
	var forms []string
	if base, ok := wn.exceptions[word]; ok {
		forms = []string{word, base}
	} else {
		forms = []string{word}
		for _, sub := range substitutions[pos] {
			if strings.HasSuffix(word, sub[0]) && len(word) > len(sub[0]) {
				forms = append(forms, strings.TrimSuffix(word, sub[0])+sub[1])
			}
		}
	}
	seen := make(map[string]struct{}, len(forms))
	out := forms[:0]
	for _, f := range forms {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		if len(wn.lookup(f, pos)) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// Lemmatize returns the first base form of word for pos, or word itself.
func (wn *WordNet) Lemmatize(word string, pos POS) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if forms := wn.morphy(word, pos); len(forms) > 0 {
		return forms[len(forms)-1]
	}
	return word
}

// Synsets returns the senses of word in noun, verb, adjective, adverb
// order, resolving inflected forms first. limit <= 0 means no limit.
func (wn *WordNet) Synsets(word string, limit int) []Synset {
	word = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(word)), " ", "_")
	if word == "" {
		return nil
	}
	var out []Synset
	seen := make(map[int]struct{})
	for _, pos := range posOrder {
		for _, form := range wn.morphy(word, pos) {
			for _, off := range wn.lookup(form, pos) {
				if _, dup := seen[off]; dup {
					continue
				}
				seen[off] = struct{}{}
				out = append(out, wn.synsets[off])
				if limit > 0 && len(out) >= limit {
					return out
				}
			}
		}
	}
	return out
}

func (wn *WordNet) Available() bool { return true }

// Synonyms collects single-word lemma names sharing a synset with word.
func (wn *WordNet) Synonyms(word string, limit int) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	c := newCollector(limit, word)
	for _, s := range wn.Synsets(word, 0) {
		for _, l := range s.Lemmas {
			if c.add(cleanLemma(l.Name)) {
				return c.out
			}
		}
	}
	return c.out
}

// Antonyms collects the antonyms of every lemma in word's synsets.
func (wn *WordNet) Antonyms(word string, limit int) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	c := newCollector(limit, word)
	for _, s := range wn.Synsets(word, 0) {
		for _, l := range s.Lemmas {
			for _, a := range l.Antonyms {
				if c.add(cleanLemma(a)) {
					return c.out
				}
			}
		}
	}
	return c.out
}

// DerivationalForms returns morphologically related words, e.g. grim -> grimly.
func (wn *WordNet) DerivationalForms(word string, limit int) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	c := newCollector(limit, word)
	for _, s := range wn.Synsets(word, 0) {
		for _, l := range s.Lemmas {
			for _, d := range l.Derived {
				d = cleanLemma(d)
				if !IsValidWord(d) {
					continue
				}
				if c.add(d) {
					return c.out
				}
			}
		}
	}
	return c.out
}

func (wn *WordNet) POSTags(word string) POSSet {
	var set POSSet
	for _, s := range wn.Synsets(word, 0) {
		set = set.Add(s.POS)
	}
	return set
}

// PrimaryPOS is the class of the first sense.
func (wn *WordNet) PrimaryPOS(word string) (POS, bool) {
	ss := wn.Synsets(word, 1)
	if len(ss) == 0 {
		return 0, false
	}
	return ss[0].POS, true
}

func (wn *WordNet) IsValidWord(word string) bool { return IsValidWord(word) }

// Frequency sums the tagged-corpus counts of lemmas spelled exactly as word.
func (wn *WordNet) Frequency(word string) int {
	word = strings.ToLower(strings.TrimSpace(word))
	total := 0
	for _, s := range wn.Synsets(word, 0) {
		for _, l := range s.Lemmas {
			if cleanLemma(l.Name) == word && l.Count > 0 {
				total += l.Count
			}
		}
	}
	return total
}

func (wn *WordNet) Hypernyms(s Synset, limit int) []Synset {
	var out []Synset
	for _, id := range s.Hypernyms {
		off, ok := wn.byID[id]
		if !ok {
			continue
		}
		out = append(out, wn.synsets[off])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// AreSynonyms reports whether a and b share a synset.
func (wn *WordNet) AreSynonyms(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" || a == b {
		return false
	}
	for _, s := range wn.Synsets(a, 0) {
		for _, l := range s.Lemmas {
			if cleanLemma(l.Name) == b {
				return true
			}
		}
	}
	return false
}

// Len returns the number of loaded synsets.
func (wn *WordNet) Len() int { return len(wn.synsets) }

// collector accumulates unique single words up to a limit.
type collector struct {
	limit int
	skip  string
	seen  map[string]struct{}
	out   []string
}

func newCollector(limit int, skip string) *collector {
	return &collector{limit: limit, skip: skip, seen: make(map[string]struct{})}
}

// add appends w and reports whether the limit has been reached.
func (c *collector) add(w string) bool {
	if w == "" || w == c.skip || strings.Contains(w, " ") {
		return false
	}
	if _, dup := c.seen[w]; dup {
		return false
	}
	c.seen[w] = struct{}{}
	c.out = append(c.out, w)
	return c.limit > 0 && len(c.out) >= c.limit
}

func cleanLemma(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, "_", " ")))
}

// readData returns the file at path, or the embedded fallback when path is empty.
func readData(path, fallback string) ([]byte, error) {
	if path == "" {
		return embedded.ReadFile(fallback)
	}
	return os.ReadFile(path)
}
