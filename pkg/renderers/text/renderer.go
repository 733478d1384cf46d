// Package text renders prediction summaries as terminal cards.
package text

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-predict/pkg/present"
	"github.com/goliatone/go-predict/pkg/render"
)

const barWidth = 24

// Renderer draws a bordered result card styled with lipgloss.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the terminal card renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string { return "text" }

func (r *Renderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render produces the card for a single summary. A nil summary yields a
// placeholder card rather than an error so callers can pipe results through
// without special-casing unknown model responses.
func (r *Renderer) Render(ctx context.Context, summary present.Summary, opts render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("text renderer: %w", err)
	}

	p := newPalette(opts.Theme)

	var body string
	switch s := summary.(type) {
	case nil:
		body = p.muted.Render("Nothing to show.")
	case present.ClusterSummary:
		body = r.cluster(p, s)
	case present.RegressionSummary:
		body = r.regression(p, s)
	case present.ChurnSummary:
		body = r.churn(p, s)
	default:
		return nil, fmt.Errorf("text renderer: unsupported summary kind %q", summary.Kind())
	}

	card := p.card.Render(p.title.Render(titleFor(summary)) + "\n\n" + body)
	return []byte(card + "\n"), nil
}

func (r *Renderer) cluster(p palette, s present.ClusterSummary) string {
	return joinRows(
		row("Segment", p.info.Render(s.Label)),
		row("Cluster ID", fmt.Sprintf("#%d", s.Cluster)),
	)
}

func (r *Renderer) regression(p palette, s present.RegressionSummary) string {
	return row("Predicted Sales", p.ok.Render(s.Formatted))
}

func (r *Renderer) churn(p palette, s present.ChurnSummary) string {
	badge := p.ok.Render(s.Label)
	if s.Churn {
		badge = p.bad.Render(s.Label)
	}
	rows := []string{row("Prediction", badge)}

	if s.HasProbability {
		pct := s.Probability * 100
		rows = append(rows,
			row("Churn probability", fmt.Sprintf("%.1f%%", pct)),
			probabilityBar(p, s.Probability),
		)
	} else {
		rows = append(rows, p.muted.Render("Probability not available for this model."))
	}
	return joinRows(rows...)
}

func probabilityBar(p palette, v float64) string {
	filled := int(math.Round(v * barWidth))
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return p.accent.Render(bar)
}

func titleFor(summary present.Summary) string {
	if summary == nil {
		return "Prediction"
	}
	return summary.Kind().DisplayName()
}

func row(label, value string) string {
	return fmt.Sprintf("%-18s %s", label, value)
}

func joinRows(rows ...string) string {
	return strings.Join(rows, "\n")
}

type palette struct {
	card   lipgloss.Style
	title  lipgloss.Style
	accent lipgloss.Style
	ok     lipgloss.Style
	bad    lipgloss.Style
	info   lipgloss.Style
	muted  lipgloss.Style
}

func newPalette(theme *render.ThemeConfig) palette {
	accent := lipgloss.Color(theme.Token("accent", "63"))
	ok := lipgloss.Color(theme.Token("ok", "2"))
	bad := lipgloss.Color(theme.Token("bad", "9"))
	info := lipgloss.Color(theme.Token("info", "6"))
	muted := lipgloss.Color(theme.Token("muted", "244"))

	return palette{
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			PaddingLeft(1).
			PaddingRight(1),
		title:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		accent: lipgloss.NewStyle().Foreground(accent),
		ok:     lipgloss.NewStyle().Bold(true).Foreground(ok),
		bad:    lipgloss.NewStyle().Bold(true).Foreground(bad),
		info:   lipgloss.NewStyle().Bold(true).Foreground(info),
		muted:  lipgloss.NewStyle().Foreground(muted),
	}
}
