// Package embed defines the pluggable text-embedding provider used by
// text search.
package embed

import "context"

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the width of the vectors Embed produces.
	Dimensions() int
}

// HashEmbedder is a deterministic, dependency-free fallback provider. The
// vectors carry no semantic meaning; it exists for tests and local wiring.
type HashEmbedder struct {
	Dim int
}

// Embed folds the text's bytes into a vector of the configured width.
func (h HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	dim := h.Dim
	if dim <= 0 {
		dim = 768
	}
	vec := make([]float32, dim)
	for i, ch := range []byte(text) {
		vec[i%dim] += float32(ch) / 255.0
	}
	return vec, nil
}

// Dimensions returns the configured vector width.
func (h HashEmbedder) Dimensions() int {
	if h.Dim <= 0 {
		return 768
	}
	return h.Dim
}
