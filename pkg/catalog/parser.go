package catalog

import "context"

// Parser normalises raw /schema documents into a Catalog that downstream
// packages consume. Entries with unknown or missing model tags are skipped,
// never fatal; only a wholesale decode failure is an error.
type Parser interface {
	Catalog(ctx context.Context, doc Document) (Catalog, error)
}

// ParserOptions exposes toggles for catalog parsing behaviour.
type ParserOptions struct {
	// AllowEmptyCatalog gates documents that decode cleanly but declare no
	// recognizable model. Defaults to false: an empty model list usually means
	// the wrong endpoint was fetched.
	AllowEmptyCatalog bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithEmptyCatalog toggles acceptance of documents without any recognized
// model entry.
func WithEmptyCatalog(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowEmptyCatalog = enabled
	}
}

// NewParserOptions applies ParserOption functions and returns the resulting
// configuration.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}
