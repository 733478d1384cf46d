package render

import (
	"context"

	"github.com/goliatone/go-predict/pkg/present"
)

// Renderer converts a prediction summary into a byte representation (terminal
// text, HTML, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, summary present.Summary, options Options) ([]byte, error)
}

// Options describe per-render data renderers can use without coupling to the
// presentation pipeline.
type Options struct {
	// Theme carries resolved theme tokens. When nil, renderers fall back to
	// their built-in defaults.
	Theme *ThemeConfig

	// Raw optionally carries the raw response body so renderers can echo it
	// alongside the summary card.
	Raw []byte
}
