// Package htmlcard renders prediction summaries as standalone HTML cards.
package htmlcard

import (
	"context"
	"fmt"
	"html"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-predict/pkg/present"
	"github.com/goliatone/go-predict/pkg/render"
)

const summaryTemplate = "summary.html.tpl"

// Option configures the HTML card renderer before construction.
type Option func(*config)

type config struct {
	templateFS fs.FS
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// Renderer produces a self-contained HTML document for a summary, with theme
// tokens exposed as CSS custom properties.
type Renderer struct {
	template *pongo2.Template
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer, parsing the card template eagerly so template
// errors surface at startup rather than on first render.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	set := pongo2.NewSet("predict", pongo2.NewFSLoader(cfg.templateFS))
	tpl, err := set.FromFile(summaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("htmlcard: parse template: %w", err)
	}

	return &Renderer{template: tpl}, nil
}

func (r *Renderer) Name() string { return "html" }

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render executes the card template for a single summary. A nil summary
// renders the empty-state card.
func (r *Renderer) Render(ctx context.Context, summary present.Summary, opts render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("htmlcard: %w", err)
	}

	out, err := r.template.Execute(buildContext(summary, opts.Theme))
	if err != nil {
		return nil, fmt.Errorf("htmlcard: execute template: %w", err)
	}
	return []byte(out), nil
}

func buildContext(summary present.Summary, theme *render.ThemeConfig) pongo2.Context {
	ctx := pongo2.Context{
		"title":    "Prediction",
		"kind":     "",
		"css_vars": cssVarBlock(theme),
	}

	switch s := summary.(type) {
	case nil:
	case present.ClusterSummary:
		ctx["title"] = s.Kind().DisplayName()
		ctx["kind"] = string(s.Kind())
		// Cluster labels originate in the remote schema document; strip any
		// markup before the template escapes the remainder.
		ctx["label"] = stripMarkup(s.Label)
		ctx["cluster"] = s.Cluster
	case present.RegressionSummary:
		ctx["title"] = s.Kind().DisplayName()
		ctx["kind"] = string(s.Kind())
		ctx["formatted"] = s.Formatted
	case present.ChurnSummary:
		ctx["title"] = s.Kind().DisplayName()
		ctx["kind"] = string(s.Kind())
		ctx["classifier"] = true
		ctx["churn"] = s.Churn
		ctx["churn_label"] = s.Label
		ctx["has_probability"] = s.HasProbability
		if s.HasProbability {
			ctx["probability_pct"] = fmt.Sprintf("%.1f", s.Probability*100)
		}
	}
	return ctx
}

var (
	stripPolicyOnce sync.Once
	stripPolicyVal  *bluemonday.Policy
)

func stripPolicy() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicyVal = bluemonday.StrictPolicy()
	})
	return stripPolicyVal
}

// stripMarkup removes tags and returns plain text; the template applies its
// own entity escaping on output.
func stripMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy().Sanitize(s)))
}

// cssVarBlock flattens resolved theme tokens into a deterministic CSS custom
// property declaration list for the document's :root rule.
func cssVarBlock(theme *render.ThemeConfig) string {
	if theme == nil || len(theme.CSSVars) == 0 {
		return ""
	}
	names := make([]string, 0, len(theme.CSSVars))
	for name := range theme.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(theme.CSSVars[name])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}
