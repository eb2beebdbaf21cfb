//go:build fastembed

package embed

import (
	"context"
	"fmt"
	"runtime"

	fastembed "github.com/anush008/fastembed-go"
)

// FastEmbedOptions configures the local ONNX embedding model.
type FastEmbedOptions struct {
	Model     fastembed.EmbeddingModel // zero value picks the library default
	CacheDir  string
	MaxLength int // token limit, 0 = library default
	BatchSize int
}

// FastEmbedder runs a local fastembed model.
type FastEmbedder struct {
	m   *fastembed.FlagEmbedding
	dim int
	bs  int
}

// NewFastEmbedder loads the model. Call Close when done to release the ONNX
// runtime.
func NewFastEmbedder(opt *FastEmbedOptions) (*FastEmbedder, error) {
	var init *fastembed.InitOptions
	if opt != nil {
		init = &fastembed.InitOptions{
			Model:     opt.Model,
			CacheDir:  opt.CacheDir,
			MaxLength: opt.MaxLength,
		}
	}
	m, err := fastembed.NewFlagEmbedding(init)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding model: %w", err)
	}
	bs := 64
	if opt != nil && opt.BatchSize > 0 {
		bs = opt.BatchSize
	}
	if max := 4 * runtime.GOMAXPROCS(0); bs > max {
		bs = max
	}
	return &FastEmbedder{m: m, dim: 384, bs: bs}, nil
}

// Embed embeds a single query string.
func (e *FastEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec, err := e.m.QueryEmbed(text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if e.dim == 0 {
		e.dim = len(vec)
	}
	return vec, nil
}

// Dimensions returns the model's vector width.
func (e *FastEmbedder) Dimensions() int { return e.dim }

// Close releases the underlying model.
func (e *FastEmbedder) Close() error {
	if e.m != nil {
		e.m.Destroy()
	}
	return nil
}
