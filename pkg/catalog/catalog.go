package catalog

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a wholesale catalog fetch or parse failure. Callers
// degrade to an empty model list and retry manually; individual missing models
// never produce this error.
var ErrUnavailable = errors.New("catalog: unavailable")

// Kind enumerates the supported prediction model tags. The set is closed:
// every switch over Kind handles all five values plus an explicit default so
// unknown tags degrade instead of panicking.
type Kind string

const (
	KindLogReg Kind = "logreg"
	KindDTree  Kind = "dtree"
	KindSVM    Kind = "svm"
	KindKMeans Kind = "kmeans"
	KindLinReg Kind = "linreg"
)

// Kinds returns all model kinds in catalog display order.
func Kinds() []Kind {
	return []Kind{KindLogReg, KindDTree, KindSVM, KindKMeans, KindLinReg}
}

// ParseKind validates a raw model_type tag.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(raw)
	if !kind.Valid() {
		return "", fmt.Errorf("catalog: unknown model kind %q", raw)
	}
	return kind, nil
}

// Valid reports whether the kind is one of the five supported tags.
func (k Kind) Valid() bool {
	switch k {
	case KindLogReg, KindDTree, KindSVM, KindKMeans, KindLinReg:
		return true
	default:
		return false
	}
}

// String returns the canonical wire tag.
func (k Kind) String() string {
	return string(k)
}

// DisplayName returns a human-readable label for model pickers.
func (k Kind) DisplayName() string {
	switch k {
	case KindLogReg:
		return "Churn (Logistic Regression)"
	case KindDTree:
		return "Churn (Decision Tree)"
	case KindSVM:
		return "Churn (SVM)"
	case KindKMeans:
		return "Clustering (KMeans)"
	case KindLinReg:
		return "Sales (Linear Regression)"
	default:
		return string(k)
	}
}

// Model is one normalized catalog entry: the model kind, the ordered required
// field list, and the example payload the service advertises for it.
type Model struct {
	// Key is the raw catalog key, e.g. "logreg_churn".
	Key string

	Kind Kind

	// RequiredFields preserves the catalog's declared order. Downstream form
	// descriptors, presets, and payloads rely on stable iteration.
	RequiredFields []string

	// Example holds the example payload's feature map.
	Example map[string]any

	// ClusterLabels maps cluster id strings to display labels. Only kmeans
	// entries carry it, and even those may omit it.
	ClusterLabels map[string]string

	Notes string
}

// Catalog is the parsed, immutable /schema document. Absence of a kind means
// that model is unavailable; it is never an error.
type Catalog struct {
	models map[Kind]Model
}

// New constructs a Catalog from normalized models. Later entries with a
// duplicate kind are dropped.
func New(models []Model) Catalog {
	byKind := make(map[Kind]Model, len(models))
	for _, m := range models {
		if !m.Kind.Valid() {
			continue
		}
		if _, exists := byKind[m.Kind]; exists {
			continue
		}
		byKind[m.Kind] = m
	}
	return Catalog{models: byKind}
}

// Model looks up the entry for a kind.
func (c Catalog) Model(kind Kind) (Model, bool) {
	m, ok := c.models[kind]
	return m, ok
}

// Has reports whether the catalog declares the kind.
func (c Catalog) Has(kind Kind) bool {
	_, ok := c.models[kind]
	return ok
}

// Kinds returns the available kinds in canonical display order. Kinds the
// server did not declare are simply absent.
func (c Catalog) Kinds() []Kind {
	var out []Kind
	for _, kind := range Kinds() {
		if c.Has(kind) {
			out = append(out, kind)
		}
	}
	return out
}

// Len reports how many models the catalog declares.
func (c Catalog) Len() int {
	return len(c.models)
}

// ClusterLabels returns the kmeans cluster label map, falling back to the
// built-in segmentation labels when the catalog does not supply one.
func (c Catalog) ClusterLabels() map[string]string {
	if m, ok := c.models[KindKMeans]; ok && len(m.ClusterLabels) > 0 {
		out := make(map[string]string, len(m.ClusterLabels))
		for id, label := range m.ClusterLabels {
			out[id] = label
		}
		return out
	}
	return DefaultClusterLabels()
}

// DefaultClusterLabels is the fixed fallback mapping used when the service
// does not label its kmeans clusters.
func DefaultClusterLabels() map[string]string {
	return map[string]string{
		"0": "Low Spenders",
		"1": "Mid Spenders",
		"2": "High Spenders",
	}
}
