// Package presets maintains named example inputs per model kind: one preset
// derived from the catalog's example payload plus embedded hand-authored
// alternates. The library is recomputed whenever the catalog changes, since
// example payloads may change between refreshes.
package presets

import (
	_ "embed"
	"fmt"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/fields"
	"github.com/goliatone/go-predict/pkg/form"
)

//go:embed alternates.yaml
var alternatesYAML []byte

// Preset is a named, immutable example input set for one model kind.
type Preset struct {
	Name string
	Data map[string]any
}

type alternateEntry struct {
	ExampleName string `yaml:"example_name"`
	Alternates  []struct {
		Name string         `yaml:"name"`
		Data map[string]any `yaml:"data"`
	} `yaml:"alternates"`
}

var (
	alternatesOnce sync.Once
	alternatesDoc  map[string]alternateEntry
	alternatesErr  error
)

func loadAlternates() (map[string]alternateEntry, error) {
	alternatesOnce.Do(func() {
		doc := make(map[string]alternateEntry)
		if err := yaml.Unmarshal(alternatesYAML, &doc); err != nil {
			alternatesErr = fmt.Errorf("presets: decode alternates: %w", err)
			return
		}
		alternatesDoc = doc
	})
	return alternatesDoc, alternatesErr
}

// Library holds the preset lists for every model kind the catalog declares.
type Library struct {
	presets map[catalog.Kind][]Preset
}

// NewLibrary derives a Library from the catalog. For each declared kind the
// catalog's example payload (when present) becomes the first preset, followed
// by the embedded alternates.
func NewLibrary(cat catalog.Catalog) Library {
	doc, err := loadAlternates()
	if err != nil {
		// The embedded document is part of the build; a decode failure is a
		// programming error, not a runtime condition.
		panic(err)
	}

	presets := make(map[catalog.Kind][]Preset)
	for _, kind := range cat.Kinds() {
		model, ok := cat.Model(kind)
		if !ok {
			continue
		}
		entry := doc[string(kind)]

		var list []Preset
		if len(model.Example) > 0 {
			name := entry.ExampleName
			if name == "" {
				name = "Catalog Example"
			}
			list = append(list, Preset{Name: name, Data: cloneData(model.Example)})
		}
		for _, alt := range entry.Alternates {
			list = append(list, Preset{Name: alt.Name, Data: cloneData(alt.Data)})
		}
		presets[kind] = list
	}
	return Library{presets: presets}
}

// For returns the ordered preset list for a kind. It never fails; unknown
// kinds yield an empty list.
func (l Library) For(kind catalog.Kind) []Preset {
	return append([]Preset(nil), l.presets[kind]...)
}

// Apply pre-fills a form from a preset. Fields the preset does not define are
// cleared; categorical values outside the field's allowed set snap to the
// first allowed option so a categorical field never holds an invalid value.
func Apply(p Preset, f *form.Form) {
	for _, d := range f.Descriptors() {
		value, defined := p.Data[d.Name]

		if d.Kind == fields.KindCategorical {
			raw := ""
			if defined {
				raw = formatValue(value)
			}
			if !contains(d.Options, raw) {
				if len(d.Options) > 0 {
					raw = d.Options[0]
				} else {
					raw = ""
				}
			}
			_ = f.SetValue(d.Name, raw)
			continue
		}

		if !defined || value == nil {
			_ = f.SetValue(d.Name, "")
			continue
		}
		_ = f.SetValue(d.Name, formatValue(value))
	}
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
