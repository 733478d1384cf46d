package predict

import (
	"context"
	"fmt"

	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/client"
	"github.com/goliatone/go-predict/pkg/payload"
	"github.com/goliatone/go-predict/pkg/present"
	"github.com/goliatone/go-predict/pkg/render"
	"github.com/goliatone/go-predict/pkg/renderers/htmlcard"
	"github.com/goliatone/go-predict/pkg/renderers/text"
	"github.com/goliatone/go-predict/pkg/session"
)

// Kind identifies one of the service's model families; alias exported via the
// root package for convenience.
type Kind = catalog.Kind

// Summary is the typed interpretation of a prediction response.
type Summary = present.Summary

// Report lists payload keys dropped during building.
type Report = payload.Report

// NewClient exposes the prediction client constructor from the top-level
// module.
func NewClient(base string, options ...client.Option) *client.Client {
	return client.New(base, options...)
}

// NewSession wires a session around a client; callers still invoke Start.
func NewSession(c *client.Client, options ...session.Option) *session.Session {
	return session.New(c, options...)
}

// NewRegistry returns a renderer registry preloaded with the built-in
// terminal and HTML card renderers.
func NewRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()
	registry.MustRegister(text.New())

	html, err := htmlcard.New()
	if err != nil {
		return nil, err
	}
	registry.MustRegister(html)
	return registry, nil
}

// PredictOnce is the simplest entry point: fetch the catalog, apply the
// model's first preset, and submit a single prediction. An optional raw JSON
// override is merged over the preset values before validation.
func PredictOnce(ctx context.Context, c *client.Client, kind Kind, rawOverride []byte) (Summary, Report, error) {
	sess := session.New(c)
	if err := sess.Start(ctx); err != nil {
		return nil, Report{}, err
	}
	if err := sess.SelectModel(kind); err != nil {
		return nil, Report{}, err
	}

	available, err := sess.Presets()
	if err != nil {
		return nil, Report{}, err
	}
	if len(available) == 0 {
		return nil, Report{}, fmt.Errorf("predict: no presets for model %s", kind)
	}
	if err := sess.ApplyPreset(available[0].Name); err != nil {
		return nil, Report{}, err
	}
	return sess.Submit(ctx, rawOverride)
}
