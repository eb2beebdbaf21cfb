//go:build !fastembed

package embed

import (
	"context"
	"fmt"
)

// FastEmbedOptions configures the local ONNX embedding model.
type FastEmbedOptions struct {
	CacheDir  string
	MaxLength int
	BatchSize int
}

// FastEmbedder runs a local fastembed model. This build does not include the
// model runtime; rebuild with -tags fastembed to enable it.
type FastEmbedder struct{}

// NewFastEmbedder always fails in this build.
func NewFastEmbedder(*FastEmbedOptions) (*FastEmbedder, error) {
	return nil, fmt.Errorf("fastembed support not included; rebuild with -tags fastembed")
}

func (*FastEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("fastembed support not included")
}

func (*FastEmbedder) Dimensions() int { return 0 }

func (*FastEmbedder) Close() error { return nil }
