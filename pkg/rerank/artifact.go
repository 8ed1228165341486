// Package rerank blends a learned relevance score into ranked candidate
// lists. The model is a TF-IDF vectorizer plus a logistic-regression head,
// trained offline and shipped as a MessagePack artifact. A missing or
// malformed artifact turns every blend into a pass-through.
package rerank

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrMalformedArtifact is wrapped by every validation failure.
var ErrMalformedArtifact = errors.New("rerank: malformed artifact")

// MaxNgram is the largest n-gram order an artifact may declare.
const MaxNgram = 8

// Vector is a sparse feature vector keyed by vocabulary index.
type Vector map[int]float64

// Artifact is a loaded reranker model.
type Artifact interface {
	Transform(text string) Vector
	PredictProba(v Vector) ([]float64, error)
	Labels() []float64
}

// File is the on-disk layout of an artifact.
type File struct {
	Version    int            `msgpack:"version"`
	Labels     []float64      `msgpack:"labels"`
	Vectorizer VectorizerSpec `msgpack:"vectorizer"`
	Model      ModelSpec      `msgpack:"model"`
}

// VectorizerSpec holds a fitted TF-IDF vectorizer.
type VectorizerSpec struct {
	Vocabulary  map[string]int `msgpack:"vocabulary"`
	IDF         []float64      `msgpack:"idf"`
	NgramMax    int            `msgpack:"ngram_max"`
	SublinearTF bool           `msgpack:"sublinear_tf"`
}

// ModelSpec holds a fitted logistic regression, one coefficient row per
// class. A binary model may carry a single row.
type ModelSpec struct {
	Coef      [][]float64 `msgpack:"coef"`
	Intercept []float64   `msgpack:"intercept"`
}

var featureTokenRE = regexp.MustCompile(`\b\w\w+\b`)

// Validate checks the shapes and values of f.
func (f *File) Validate() error {
	if len(f.Labels) == 0 {
		return fmt.Errorf("%w: no labels", ErrMalformedArtifact)
	}
	width := len(f.Vectorizer.IDF)
	if width == 0 {
		return fmt.Errorf("%w: empty idf", ErrMalformedArtifact)
	}
	if f.Vectorizer.NgramMax > MaxNgram {
		return fmt.Errorf("%w: ngram_max %d exceeds %d", ErrMalformedArtifact, f.Vectorizer.NgramMax, MaxNgram)
	}
	rows := len(f.Model.Coef)
	binary := rows == 1 && len(f.Labels) == 2
	if rows != len(f.Labels) && !binary {
		return fmt.Errorf("%w: %d coefficient rows for %d labels", ErrMalformedArtifact, rows, len(f.Labels))
	}
	for i, row := range f.Model.Coef {
		if len(row) != width {
			return fmt.Errorf("%w: coefficient row %d has width %d, want %d", ErrMalformedArtifact, i, len(row), width)
		}
	}
	if len(f.Model.Intercept) != rows {
		return fmt.Errorf("%w: %d intercepts for %d rows", ErrMalformedArtifact, len(f.Model.Intercept), rows)
	}
	for term, idx := range f.Vectorizer.Vocabulary {
		if idx < 0 || idx >= width {
			return fmt.Errorf("%w: vocabulary index %d for %q out of range", ErrMalformedArtifact, idx, term)
		}
	}
	if err := checkFinite("labels", f.Labels); err != nil {
		return err
	}
	if err := checkFinite("idf", f.Vectorizer.IDF); err != nil {
		return err
	}
	for i, row := range f.Model.Coef {
		if err := checkFinite(fmt.Sprintf("coef row %d", i), row); err != nil {
			return err
		}
	}
	return checkFinite("intercept", f.Model.Intercept)
}

func checkFinite(field string, xs []float64) error {
	for i, x := range xs {
		if !isFinite(x) {
			return fmt.Errorf("%w: %s[%d] is %v", ErrMalformedArtifact, field, i, x)
		}
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Model is a validated artifact.
type Model struct {
	file File
}

// Decode parses and validates a MessagePack artifact.
func Decode(data []byte) (*Model, error) {
	var f File
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.Vectorizer.NgramMax < 1 {
		f.Vectorizer.NgramMax = 1
	}
	return &Model{file: f}, nil
}

// Encode serializes f after validating it.
func Encode(f File) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return msgpack.Marshal(&f)
}

func (m *Model) Labels() []float64 { return m.file.Labels }

// Transform computes the L2-normalized TF-IDF vector of text.
func (m *Model) Transform(text string) Vector {
	vz := &m.file.Vectorizer
	tokens := featureTokenRE.FindAllString(strings.ToLower(text), -1)

	counts := make(map[int]float64)
	for n := 1; n <= min(vz.NgramMax, len(tokens)); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+n], " ")
			if idx, ok := vz.Vocabulary[gram]; ok {
				counts[idx]++
			}
		}
	}

	vec := make(Vector, len(counts))
	var norm float64
	for idx, tf := range counts {
		if vz.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		x := tf * vz.IDF[idx]
		vec[idx] = x
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// PredictProba returns one probability per label.
func (m *Model) PredictProba(v Vector) ([]float64, error) {
	coef, icpt := m.file.Model.Coef, m.file.Model.Intercept
	width := len(m.file.Vectorizer.IDF)
	z := make([]float64, len(coef))
	for c, row := range coef {
		z[c] = icpt[c]
		for idx, x := range v {
			if idx < 0 || idx >= width {
				return nil, fmt.Errorf("feature index %d out of range", idx)
			}
			z[c] += row[idx] * x
		}
	}

	if len(coef) == 1 {
		p := 1 / (1 + math.Exp(-z[0]))
		return []float64{1 - p, p}, nil
	}

	maxZ := math.Inf(-1)
	for _, s := range z {
		maxZ = math.Max(maxZ, s)
	}
	var sum float64
	probs := make([]float64, len(z))
	for i, s := range z {
		probs[i] = math.Exp(s - maxZ)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}
