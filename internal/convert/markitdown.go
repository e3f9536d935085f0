// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/docbatch/internal/container"
	"github.com/pdiddy/docbatch/pkg/types"
)

// DefaultMarkitdownImage is the image used when none is configured.
const DefaultMarkitdownImage = "markitdown:latest"

// MarkitdownConverter converts documents by piping them through a markitdown
// container. The container runtime is injected at construction time.
type MarkitdownConverter struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdownConverter returns a converter that runs image (or
// DefaultMarkitdownImage when empty) on rt. It fails if the image is not
// present locally.
func NewMarkitdownConverter(ctx context.Context, rt container.Runtime, image string) (*MarkitdownConverter, error) {
	if image == "" {
		image = DefaultMarkitdownImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt, image: image}, nil
}

// Convert streams the file at path into the container and wraps the
// resulting Markdown.
func (m *MarkitdownConverter) Convert(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, f, &out); err != nil {
		return nil, fmt.Errorf("converting %s with markitdown: %w", path, err)
	}

	if len(bytes.TrimSpace(out.Bytes())) == 0 {
		return nil, fmt.Errorf("markitdown output for %s: %w", path, ErrNoText)
	}

	return &Result{
		Source:   path,
		Backend:  types.BackendMarkitdown,
		Document: &MarkdownDocument{Name: Stem(path), Markdown: out.String()},
	}, nil
}
