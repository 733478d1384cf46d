package htmlcard_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/present"
	"github.com/goliatone/go-predict/pkg/render"
	"github.com/goliatone/go-predict/pkg/renderers/htmlcard"
)

func newRenderer(t *testing.T) *htmlcard.Renderer {
	t.Helper()
	r, err := htmlcard.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func renderToString(t *testing.T, summary present.Summary, opts render.Options) string {
	t.Helper()
	out, err := newRenderer(t).Render(context.Background(), summary, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRendererIdentity(t *testing.T) {
	r := newRenderer(t)
	if r.Name() != "html" {
		t.Fatalf("name: %q", r.Name())
	}
	if !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("content type: %q", r.ContentType())
	}
}

func TestRenderChurnCard(t *testing.T) {
	out := renderToString(t, present.ChurnSummary{
		Model:          catalog.KindDTree,
		Churn:          false,
		Label:          "Stay",
		Probability:    0.25,
		HasProbability: true,
	}, render.Options{})

	if !strings.Contains(out, "Churn (Decision Tree)") {
		t.Fatalf("missing title:\n%s", out)
	}
	if !strings.Contains(out, `class="badge ok"`) {
		t.Fatalf("stay should use the ok badge:\n%s", out)
	}
	if !strings.Contains(out, "25.0%") {
		t.Fatalf("missing probability:\n%s", out)
	}
}

func TestRenderChurnCardWithoutProbability(t *testing.T) {
	out := renderToString(t, present.ChurnSummary{
		Model: catalog.KindSVM,
		Churn: true,
		Label: "Churn",
	}, render.Options{})

	if !strings.Contains(out, `class="badge bad"`) {
		t.Fatalf("churn should use the bad badge:\n%s", out)
	}
	if !strings.Contains(out, "Probability not available for this model.") {
		t.Fatalf("missing unavailable notice:\n%s", out)
	}
}

func TestRenderClusterCardStripsMarkup(t *testing.T) {
	out := renderToString(t, present.ClusterSummary{
		Cluster: 1,
		Label:   `<script>alert(1)</script>Mid Spenders`,
	}, render.Options{})

	if strings.Contains(out, "<script>") {
		t.Fatalf("markup leaked into the card:\n%s", out)
	}
	if !strings.Contains(out, "Mid Spenders") {
		t.Fatalf("missing label:\n%s", out)
	}
	if !strings.Contains(out, "#1") {
		t.Fatalf("missing cluster id:\n%s", out)
	}
}

func TestRenderRegressionCard(t *testing.T) {
	out := renderToString(t, present.RegressionSummary{Value: 45000, Formatted: "$45,000"}, render.Options{})
	if !strings.Contains(out, "$45,000") {
		t.Fatalf("missing formatted value:\n%s", out)
	}
}

func TestRenderEmitsThemeCSSVars(t *testing.T) {
	theme, err := render.ResolveTheme("classic", "dark")
	if err != nil {
		t.Fatalf("resolve theme: %v", err)
	}
	out := renderToString(t, present.RegressionSummary{Formatted: "$1"}, render.Options{Theme: theme})

	if !strings.Contains(out, "--accent: #60a5fa;") {
		t.Fatalf("missing accent css var:\n%s", out)
	}
	if !strings.Contains(out, "--surface: #111827;") {
		t.Fatalf("missing surface css var:\n%s", out)
	}
}

func TestRenderNilSummary(t *testing.T) {
	out := renderToString(t, nil, render.Options{})
	if !strings.Contains(out, "Nothing to show.") {
		t.Fatalf("missing empty state:\n%s", out)
	}
}
