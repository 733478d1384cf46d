// Package session ties the catalog, form, presets, payload builder, and
// client together into one stateful editing surface. The CLI and interactive
// prompt loop both drive a Session rather than wiring the pieces themselves.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/client"
	"github.com/goliatone/go-predict/pkg/fields"
	"github.com/goliatone/go-predict/pkg/form"
	"github.com/goliatone/go-predict/pkg/payload"
	"github.com/goliatone/go-predict/pkg/present"
	"github.com/goliatone/go-predict/pkg/presets"
)

// ErrNoModel is returned by operations that need a selected model before any
// model has been chosen.
var ErrNoModel = errors.New("session: no model selected")

// Option customizes a Session during construction.
type Option func(*Session)

// WithLogger overrides the logger used for session events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithBuilder swaps the payload builder implementation.
func WithBuilder(b *payload.Builder) Option {
	return func(s *Session) {
		if b != nil {
			s.builder = b
		}
	}
}

// Session holds the mutable state of one prediction workflow: the fetched
// catalog, the selected model's form, and per-catalog preset and label data.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	client  *client.Client
	builder *payload.Builder
	log     *slog.Logger

	catalog   catalog.Catalog
	library   presets.Library
	presenter *present.Presenter
	form      *form.Form
}

// New constructs a Session around a prediction client. Call Start before
// anything else; the zero session has no catalog.
func New(c *client.Client, options ...Option) *Session {
	s := &Session{
		client:  c,
		builder: payload.NewBuilder(),
		log:     slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start fetches the catalog and selects the first advertised model. Errors
// wrap catalog.ErrUnavailable when the service cannot be reached or its
// schema document cannot be parsed.
func (s *Session) Start(ctx context.Context) error {
	cat, err := s.client.FetchCatalog(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.install(cat)
	kinds := s.catalog.Kinds()
	if len(kinds) == 0 {
		return nil
	}
	return s.selectLocked(kinds[0])
}

// Refresh refetches the catalog and swaps it in atomically. Field edits
// survive when the field is still declared for the selected model; the
// previous catalog stays active if the refetch fails.
func (s *Session) Refresh(ctx context.Context) error {
	cat, err := s.client.FetchCatalog(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.form
	s.install(cat)

	if previous == nil {
		kinds := s.catalog.Kinds()
		if len(kinds) == 0 {
			return nil
		}
		return s.selectLocked(kinds[0])
	}

	kind := previous.Kind()
	if !s.catalog.Has(kind) {
		s.log.Debug("session: selected model dropped from catalog", "model", kind.String())
		kinds := s.catalog.Kinds()
		if len(kinds) == 0 {
			s.form = nil
			return nil
		}
		return s.selectLocked(kinds[0])
	}

	if err := s.selectLocked(kind); err != nil {
		return err
	}
	for _, d := range previous.Descriptors() {
		raw := previous.Value(d.Name)
		if raw == "" {
			continue
		}
		if _, ok := s.form.Descriptor(d.Name); !ok {
			continue
		}
		if err := s.form.SetValue(d.Name, raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) install(cat catalog.Catalog) {
	s.catalog = cat
	s.library = presets.NewLibrary(cat)
	s.presenter = present.New(cat.ClusterLabels())
	s.form = nil
}

// Kinds lists the models the current catalog advertises, in canonical order.
func (s *Session) Kinds() []catalog.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Kinds()
}

// Catalog returns the currently installed catalog snapshot.
func (s *Session) Catalog() catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// SelectModel builds a fresh form for the given model, discarding any edits
// made to the previous selection.
func (s *Session) SelectModel(kind catalog.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(kind)
}

func (s *Session) selectLocked(kind catalog.Kind) error {
	f, err := form.New(kind, s.catalog)
	if err != nil {
		return fmt.Errorf("session: select model: %w", err)
	}
	s.form = f
	return nil
}

// Kind reports the selected model, or "" when none is selected.
func (s *Session) Kind() catalog.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return ""
	}
	return s.form.Kind()
}

// Descriptors returns the selected model's field descriptors in payload order.
func (s *Session) Descriptors() ([]fields.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil, ErrNoModel
	}
	return s.form.Descriptors(), nil
}

// Value reads the raw value currently held for a field.
func (s *Session) Value(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return "", ErrNoModel
	}
	return s.form.Value(name), nil
}

// SetField records a raw value for one of the selected model's fields.
func (s *Session) SetField(name, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return ErrNoModel
	}
	return s.form.SetValue(name, raw)
}

// Reset clears every field of the selected model's form.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return ErrNoModel
	}
	s.form.Reset()
	return nil
}

// Presets lists the presets available for the selected model, the
// catalog-derived example first.
func (s *Session) Presets() ([]presets.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil, ErrNoModel
	}
	return s.library.For(s.form.Kind()), nil
}

// ApplyPreset fills the form with the named preset's values.
func (s *Session) ApplyPreset(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return ErrNoModel
	}
	for _, p := range s.library.For(s.form.Kind()) {
		if p.Name == name {
			presets.Apply(p, s.form)
			return nil
		}
	}
	return fmt.Errorf("session: unknown preset %q for model %s", name, s.form.Kind())
}

// Submit builds the payload from the current form state (merged with an
// optional raw JSON override), posts it, and presents the response. The
// returned report lists any override keys that were dropped. Validation
// failures surface as *payload.ValidationError before any request is made.
func (s *Session) Submit(ctx context.Context, rawOverride []byte) (present.Summary, payload.Report, error) {
	s.mu.Lock()
	if s.form == nil {
		s.mu.Unlock()
		return nil, payload.Report{}, ErrNoModel
	}
	p, report, err := s.builder.Build(s.form, payload.Options{RawOverride: rawOverride})
	presenter := s.presenter
	s.mu.Unlock()

	if err != nil {
		return nil, report, err
	}

	result, err := s.client.Predict(ctx, p)
	if err != nil {
		return nil, report, err
	}
	return presenter.Present(result), report, nil
}

// SubmitBatch validates and posts multiple feature rows for the selected
// model in one request, presenting each response element.
func (s *Session) SubmitBatch(ctx context.Context, rows []map[string]any) ([]present.Summary, payload.Report, error) {
	s.mu.Lock()
	if s.form == nil {
		s.mu.Unlock()
		return nil, payload.Report{}, ErrNoModel
	}
	kind := s.form.Kind()
	cat := s.catalog
	presenter := s.presenter
	s.mu.Unlock()

	p, report, err := s.builder.BuildBatch(kind, cat, rows)
	if err != nil {
		return nil, report, err
	}

	results, err := s.client.PredictBatch(ctx, p)
	if err != nil {
		return nil, report, err
	}
	return presenter.PresentBatch(kind, results), report, nil
}

// Health probes the service's health endpoint.
func (s *Session) Health(ctx context.Context) (client.Health, error) {
	return s.client.Health(ctx)
}
