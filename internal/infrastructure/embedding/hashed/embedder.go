// Package hashed implements a deterministic, model-free embedder using the
// hashing trick over character trigrams. Identical text always yields an
// identical vector, across calls and across process restarts.
package hashed

import (
	"context"
	"math"
	"strings"
)

// Dimension is the fixed embedding dimension, kept modest for storage and
// compute.
const Dimension = 384

type Embedder struct {
	dim int
}

func New() *Embedder {
	return &Embedder{dim: Dimension}
}

func NewWithDimension(dim int) *Embedder {
	if dim <= 0 {
		dim = Dimension
	}
	return &Embedder{dim: dim}
}

func (e *Embedder) Dimension() int { return e.dim }

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

func (e *Embedder) embed(text string) []float32 {
	vec := make([]float32, e.dim)

	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if normalized == "" {
		return vec
	}

	for _, token := range splitAlphaNum(normalized) {
		for i := 0; i < len(token); i++ {
			end := i + 3
			if end > len(token) {
				end = len(token)
			}
			// Offset-within-token as seed keeps positional context.
			h := hashTrigram(token[i:end], uint32(i))
			vec[h%uint32(e.dim)]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// hashTrigram mixes the input through two independent multiplicative passes
// and folds the low 21 bits of both halves together. The two-seed scheme
// keeps collisions of short n-grams rare without any table state.
func hashTrigram(s string, seed uint32) uint32 {
	h1 := uint32(0xdeadbeef) ^ seed
	h2 := uint32(0x41c6ce57) ^ seed
	for i := 0; i < len(s); i++ {
		ch := uint32(s[i])
		h1 = (h1 ^ ch) * 2654435761
		h2 = (h2 ^ ch) * 1597334677
	}
	h1 = ((h1 ^ (h1 >> 16)) * 2246822507) ^ ((h2 ^ (h2 >> 13)) * 3266489909)
	h2 = ((h2 ^ (h2 >> 16)) * 2246822507) ^ ((h1 ^ (h1 >> 13)) * 3266489909)
	return (h2 & 0x1fffff) ^ (h1 & 0x1fffff)
}

func splitAlphaNum(s string) []string {
	tokens := make([]string, 0, 16)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
