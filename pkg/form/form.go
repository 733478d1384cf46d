// Package form derives ordered, typed field descriptors for a selected model
// kind and holds the session's current raw field values.
package form

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/fields"
)

// Build derives the descriptor list for a model kind from the catalog's
// declared required-field list. Descriptor order matches the catalog's
// declared order; payloads and presets rely on stable iteration.
func Build(kind catalog.Kind, cat catalog.Catalog) ([]fields.Descriptor, error) {
	model, ok := cat.Model(kind)
	if !ok {
		return nil, fmt.Errorf("form: model %q not in catalog", kind)
	}

	descriptors := make([]fields.Descriptor, 0, len(model.RequiredFields))
	for _, name := range model.RequiredFields {
		descriptors = append(descriptors, fields.Describe(name))
	}
	return descriptors, nil
}

// Form is the active session's input state: the selected model kind, its
// ordered descriptors, and the raw value of each field. Raw values are kept
// as strings; FeatureMap applies numeric coercion on the way out.
type Form struct {
	kind        catalog.Kind
	descriptors []fields.Descriptor
	values      map[string]string
}

// New builds a Form for the model kind with every field unset.
func New(kind catalog.Kind, cat catalog.Catalog) (*Form, error) {
	descriptors, err := Build(kind, cat)
	if err != nil {
		return nil, err
	}
	return &Form{
		kind:        kind,
		descriptors: descriptors,
		values:      make(map[string]string, len(descriptors)),
	}, nil
}

// Kind returns the selected model kind.
func (f *Form) Kind() catalog.Kind {
	return f.kind
}

// Descriptors returns the ordered field descriptors.
func (f *Form) Descriptors() []fields.Descriptor {
	return append([]fields.Descriptor(nil), f.descriptors...)
}

// Descriptor looks up a single field descriptor by name.
func (f *Form) Descriptor(name string) (fields.Descriptor, bool) {
	for _, d := range f.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return fields.Descriptor{}, false
}

// SetValue overwrites a single field's raw value. Setting a field the form
// does not declare is an error.
func (f *Form) SetValue(name, raw string) error {
	if _, ok := f.Descriptor(name); !ok {
		return fmt.Errorf("form: field %q not declared for model %q", name, f.kind)
	}
	f.values[name] = raw
	return nil
}

// Value returns the current raw value for a field; unset fields yield "".
func (f *Form) Value(name string) string {
	return f.values[name]
}

// Reset clears every field value.
func (f *Form) Reset() {
	f.values = make(map[string]string, len(f.descriptors))
}

// FeatureMap converts the current values into a feature map. Numeric fields
// coerce non-empty input to float64; input that does not parse stays as the
// empty-string sentinel so validation reports it as unset. Categorical and
// free-text fields pass through unchanged.
func (f *Form) FeatureMap() map[string]any {
	out := make(map[string]any, len(f.descriptors))
	for _, d := range f.descriptors {
		raw := f.values[d.Name]
		if d.Kind != fields.KindNumeric {
			out[d.Name] = raw
			continue
		}
		if raw == "" {
			out[d.Name] = ""
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			out[d.Name] = ""
			continue
		}
		out[d.Name] = n
	}
	return out
}
