// Package fields carries the static classification of feature names: which
// fields are numeric, which are categorical with a fixed enumeration, and
// which fall through to free text. The tables are fixed on purpose; the
// domain's numeric semantics (currency, counts, ages, durations) are known a
// priori and not schema-supplied.
package fields

// Kind classifies how a field is edited and coerced.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindFreeText    Kind = "text"
)

var numericFields = []string{"price", "quantity", "total_value", "age", "tenure_months"}

var categoricalOptions = map[string][]string{
	"gender":       {"Female", "Male", "Other"},
	"region":       {"North", "South", "East", "West"},
	"segment":      {"Corporate", "Small Business", "Home Office"},
	"category":     {"Electronics", "Furniture", "Office Supplies"},
	"product_name": {"Projector", "Desk", "Chair", "Printer", "Monitor", "Mouse", "Keyboard"},
	"sentiment":    {"Positive", "Neutral", "Negative"},
}

// Numeric returns the fixed set of numeric field names in canonical order.
func Numeric() []string {
	return append([]string(nil), numericFields...)
}

// IsNumeric reports whether the field name is in the fixed numeric set.
func IsNumeric(name string) bool {
	for _, n := range numericFields {
		if n == name {
			return true
		}
	}
	return false
}

// KindOf classifies a field name. Names outside both tables are free text;
// Describe additionally flags those so callers can surface the permissive
// default instead of silently extending the tables.
func KindOf(name string) Kind {
	if IsNumeric(name) {
		return KindNumeric
	}
	if _, ok := categoricalOptions[name]; ok {
		return KindCategorical
	}
	return KindFreeText
}

// OptionsOf returns the fixed enumeration for a categorical field, or nil for
// any other name. The returned slice is a copy; order is stable.
func OptionsOf(name string) []string {
	options, ok := categoricalOptions[name]
	if !ok {
		return nil
	}
	return append([]string(nil), options...)
}

// Descriptor is one typed form field derived from the static tables merged
// with the catalog's declared field list.
type Descriptor struct {
	Name    string
	Kind    Kind
	Options []string

	// Unlisted marks fields the static tables do not know. They edit as free
	// text, which is a permissive default worth surfacing to the caller.
	Unlisted bool
}

// Describe builds a Descriptor for a field name.
func Describe(name string) Descriptor {
	kind := KindOf(name)
	d := Descriptor{
		Name:    name,
		Kind:    kind,
		Options: OptionsOf(name),
	}
	if kind == KindFreeText {
		d.Unlisted = true
	}
	return d
}
