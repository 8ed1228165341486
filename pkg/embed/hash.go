package embed

import (
	"context"
	"crypto/md5"
	"math/big"
	"regexp"
	"strings"
)

// HashDimensions is the width of HashEncoder vectors.
const HashDimensions = 192

var hashTokenRE = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-']+`)

var (
	bigDim  = big.NewInt(HashDimensions)
	bigFive = big.NewInt(5)
)

// HashEncoder is a deterministic bag-of-tokens encoder used when no model
// server is reachable. Each token hashes to one signed, weighted slot.
type HashEncoder struct{}

func (HashEncoder) Name() string { return "hash-192" }

func (HashEncoder) Dimensions() int { return HashDimensions }

func (h HashEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.Vector(t)
	}
	return out, nil
}

// Vector encodes a single text. Texts without tokens give the zero vector.
func (HashEncoder) Vector(text string) []float32 {
	vec := make([]float32, HashDimensions)
	tokens := hashTokenRE.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec
	}
	var v, idx, shifted, rem big.Int
	for _, tok := range tokens {
		sum := md5.Sum([]byte(tok))
		v.SetBytes(sum[:])
		idx.Mod(&v, bigDim)
		sign := float32(-1)
		if v.Bit(1) == 1 {
			sign = 1
		}
		shifted.Rsh(&v, 8)
		rem.Mod(&shifted, bigFive)
		weight := 1 + float32(rem.Int64())*0.1
		vec[idx.Int64()] += sign * weight
	}
	return Normalize(vec)
}
