// Package present maps tagged prediction responses to presentation-neutral
// summaries. Presentation is a pure function of the response plus the cluster
// label map; renderers decide how a summary looks.
package present

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-predict/pkg/catalog"
)

// Result is the opaque decoded body of a prediction response. The client
// performs no interpretation; only the presenter reads the model_type tag.
type Result map[string]any

// ModelType extracts the response's model_type tag, or "" when absent.
func (r Result) ModelType() string {
	tag, _ := r["model_type"].(string)
	return tag
}

// Summary is the closed set of presentation-neutral outcomes, discriminated
// by the model kind that produced them.
type Summary interface {
	Kind() catalog.Kind
	summary()
}

// ClusterSummary describes a kmeans assignment.
type ClusterSummary struct {
	Cluster int
	Label   string
}

func (ClusterSummary) Kind() catalog.Kind { return catalog.KindKMeans }
func (ClusterSummary) summary()           {}

// RegressionSummary describes a predicted sales value.
type RegressionSummary struct {
	Value float64
	// Formatted is the currency rendering with zero fractional digits.
	Formatted string
}

func (RegressionSummary) Kind() catalog.Kind { return catalog.KindLinReg }
func (RegressionSummary) summary()           {}

// ChurnSummary describes a binary churn classification with an optional
// probability.
type ChurnSummary struct {
	Model catalog.Kind
	Churn bool
	// Label is "Churn" or "Stay".
	Label string
	// Probability is clamped to [0,1]; only meaningful when HasProbability.
	Probability    float64
	HasProbability bool
}

func (s ChurnSummary) Kind() catalog.Kind { return s.Model }
func (ChurnSummary) summary()             {}

// Presenter resolves summaries using the active catalog's cluster labels.
type Presenter struct {
	labels map[string]string
}

// New constructs a Presenter. A nil label map falls back to the built-in
// cluster labels.
func New(labels map[string]string) *Presenter {
	if len(labels) == 0 {
		labels = catalog.DefaultClusterLabels()
	}
	clone := make(map[string]string, len(labels))
	for id, label := range labels {
		clone[id] = label
	}
	return &Presenter{labels: clone}
}

// Present maps one response to a summary. An unknown or missing model_type
// yields nil: nothing to show, not an error.
func (p *Presenter) Present(r Result) Summary {
	kind, err := catalog.ParseKind(r.ModelType())
	if err != nil {
		return nil
	}
	return p.presentAs(kind, r)
}

// PresentBatch maps a batch response's result elements, which omit the
// per-element model_type tag, using the batch-level kind.
func (p *Presenter) PresentBatch(kind catalog.Kind, results []Result) []Summary {
	out := make([]Summary, 0, len(results))
	for _, r := range results {
		out = append(out, p.presentAs(kind, r))
	}
	return out
}

func (p *Presenter) presentAs(kind catalog.Kind, r Result) Summary {
	switch kind {
	case catalog.KindKMeans:
		id := intField(r, "prediction_cluster")
		return ClusterSummary{Cluster: id, Label: p.clusterLabel(id)}
	case catalog.KindLinReg:
		value := floatField(r, "predicted_sales_value")
		return RegressionSummary{Value: value, Formatted: FormatCurrency(value)}
	case catalog.KindLogReg, catalog.KindDTree, catalog.KindSVM:
		s := ChurnSummary{Model: kind, Churn: intField(r, "prediction") == 1}
		if s.Churn {
			s.Label = "Churn"
		} else {
			s.Label = "Stay"
		}
		if prob, ok := numericValue(r["probability_of_churn"]); ok {
			s.Probability = clamp01(prob)
			s.HasProbability = true
		}
		return s
	default:
		return nil
	}
}

func (p *Presenter) clusterLabel(id int) string {
	if label, ok := p.labels[strconv.Itoa(id)]; ok {
		return label
	}
	return "Cluster " + strconv.Itoa(id)
}

// FormatCurrency renders a value as USD with zero fractional digits, grouping
// thousands manually since there is no locale machinery to lean on.
func FormatCurrency(value float64) string {
	rounded := int64(math.Round(value))
	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	digits := strconv.FormatInt(rounded, 10)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// numericValue extracts a float from the loosely typed decode, tolerating the
// integer representations some JSON decoders produce.
func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func intField(r Result, key string) int {
	if v, ok := numericValue(r[key]); ok {
		return int(v)
	}
	return 0
}

// floatField extracts a numeric field, defaulting to 0 when absent or not a
// number.
func floatField(r Result, key string) float64 {
	v, _ := numericValue(r[key])
	return v
}
