// Package embed provides text embedding generation and similarity computation.
package embed

import (
	"context"
	"math"
)

// Encoder turns texts into dense vectors.
// When Encode returns a nil error the result has one vector per input text,
// in input order.
type Encoder interface {
	// Name identifies the model, used as the persistent cache key.
	Name() string
	// Dimensions is the vector width, 0 when unknown until the first call.
	Dimensions() int
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Cosine computes similarity between two embeddings.
// Returns 0 if vectors have different lengths or either is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Scale maps a cosine in [-1, 1] onto [0, 1].
func Scale(cos float64) float64 {
	return (cos + 1) / 2
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
	return v
}

// Centroid returns the normalized mean of vecs, skipping any whose width
// differs from the first. Nil when vecs is empty.
func Centroid(vecs [][]float32) []float32 {
	var out []float32
	n := 0
	for _, v := range vecs {
		if len(v) == 0 {
			continue
		}
		if out == nil {
			out = make([]float32, len(v))
		}
		if len(v) != len(out) {
			continue
		}
		for i, x := range v {
			out[i] += x
		}
		n++
	}
	if n == 0 {
		return nil
	}
	for i := range out {
		out[i] /= float32(n)
	}
	return Normalize(out)
}
