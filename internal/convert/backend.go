// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/docbatch/internal/container"
	"github.com/pdiddy/docbatch/pkg/types"
)

// DefaultTimeout bounds one docling-serve request when none is configured.
const DefaultTimeout = 5 * time.Minute

// New builds the Converter selected by cfg.Backend. An empty backend selects
// markitdown.
func New(ctx context.Context, cfg types.ConverterConfig) (Converter, error) {
	switch cfg.Backend {
	case "", types.BackendMarkitdown:
		rt, err := container.Detect(ctx)
		if err != nil {
			return nil, err
		}
		return NewMarkitdownConverter(ctx, rt, cfg.Image)
	case types.BackendPdftext:
		return NewPDFTextConverter(), nil
	case types.BackendDoclingServe:
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		return NewDoclingConverter(&http.Client{Timeout: timeout}, cfg.ServerURL, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown converter backend %q (valid: %s, %s, %s)",
			cfg.Backend, types.BackendMarkitdown, types.BackendPdftext, types.BackendDoclingServe)
	}
}
