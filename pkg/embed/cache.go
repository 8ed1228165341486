package embed

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Cache memoizes an Encoder in memory and, when a store is attached, on
// disk. Concurrent misses for the same text may both encode; LoadOrStore
// keeps whichever lands first.
type Cache struct {
	enc   Encoder
	store *SQLiteStore
	mem   sync.Map // text -> []float32
}

// NewCache wraps enc. store may be nil.
func NewCache(enc Encoder, store *SQLiteStore) *Cache {
	return &Cache{enc: enc, store: store}
}

// Encoder returns the wrapped encoder.
func (c *Cache) Encoder() Encoder { return c.enc }

// Vector returns the embedding of text, nil when encoding failed.
func (c *Cache) Vector(ctx context.Context, text string) []float32 {
	return c.Vectors(ctx, []string{text})[0]
}

// Vectors returns one embedding per text. Misses are encoded in a single
// batch; entries that fail stay nil.
func (c *Cache) Vectors(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missText []string
	for i, t := range texts {
		if v, ok := c.mem.Load(t); ok {
			out[i] = v.([]float32)
			continue
		}
		if v := c.fromStore(t); v != nil {
			actual, _ := c.mem.LoadOrStore(t, v)
			out[i] = actual.([]float32)
			continue
		}
		missIdx = append(missIdx, i)
		missText = append(missText, t)
	}
	if len(missText) == 0 {
		return out
	}

	vecs, err := c.enc.Encode(ctx, missText)
	if err != nil {
		log.Debugf("embed %d texts with %s: %v", len(missText), c.enc.Name(), err)
		return out
	}
	for j, i := range missIdx {
		actual, loaded := c.mem.LoadOrStore(missText[j], vecs[j])
		out[i] = actual.([]float32)
		if !loaded {
			c.toStore(missText[j], vecs[j])
		}
	}
	return out
}

func (c *Cache) fromStore(text string) []float32 {
	if c.store == nil {
		return nil
	}
	v, ok, err := c.store.Get(c.enc.Name(), text, c.enc.Dimensions())
	if err != nil {
		log.Debugf("vector cache read: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	return v
}

func (c *Cache) toStore(text string, vec []float32) {
	if c.store == nil || len(vec) == 0 {
		return
	}
	if err := c.store.Put(c.enc.Name(), text, vec); err != nil {
		log.Debugf("vector cache write: %v", err)
	}
}
