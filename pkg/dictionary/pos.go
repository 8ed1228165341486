package dictionary

import "strings"

// POS is one of the four open word classes the lexicon knows about.
type POS uint8

const (
	Noun POS = 1 << iota
	Verb
	Adj
	Adv
)

// String returns the universal tag name (NOUN, VERB, ADJ, ADV).
func (p POS) String() string {
	switch p {
	case Noun:
		return "NOUN"
	case Verb:
		return "VERB"
	case Adj:
		return "ADJ"
	case Adv:
		return "ADV"
	}
	return "X"
}

// ParsePOS maps a universal tag name or a WordNet pos letter to a POS.
func ParsePOS(s string) (POS, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NOUN", "N":
		return Noun, true
	case "VERB", "V":
		return Verb, true
	case "ADJ", "A", "S":
		return Adj, true
	case "ADV", "R":
		return Adv, true
	}
	return 0, false
}

// POSSet is a bitset of POS values. The zero value is the empty set.
type POSSet uint8

// NewPOSSet builds a set from the given classes.
func NewPOSSet(ps ...POS) POSSet {
	var s POSSet
	for _, p := range ps {
		s |= POSSet(p)
	}
	return s
}

func (s POSSet) Has(p POS) bool { return s&POSSet(p) != 0 }

func (s POSSet) Add(p POS) POSSet { return s | POSSet(p) }

func (s POSSet) Empty() bool { return s == 0 }

func (s POSSet) Intersect(o POSSet) POSSet { return s & o }

// Len returns the number of classes in the set.
func (s POSSet) Len() int {
	n := 0
	for _, p := range sortedPOS {
		if s.Has(p) {
			n++
		}
	}
	return n
}

// Only reports whether the set is exactly {p}.
func (s POSSet) Only(p POS) bool { return s == POSSet(p) }

// sortedPOS lists the classes in ascending order of their tag names.
var sortedPOS = []POS{Adj, Adv, Noun, Verb}

// Slice returns the members in ascending tag-name order.
func (s POSSet) Slice() []POS {
	out := make([]POS, 0, 4)
	for _, p := range sortedPOS {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// First returns the first member in tag-name order.
func (s POSSet) First() (POS, bool) {
	for _, p := range sortedPOS {
		if s.Has(p) {
			return p, true
		}
	}
	return 0, false
}

func (s POSSet) String() string {
	parts := make([]string, 0, 4)
	for _, p := range s.Slice() {
		parts = append(parts, p.String())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
