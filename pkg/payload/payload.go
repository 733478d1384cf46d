// Package payload assembles sanitized request bodies for the prediction
// endpoint. Only fields the active model declares survive; unknown keys are
// collected and reported rather than rejected, and the protected target field
// is stripped unconditionally.
package payload

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/fields"
	"github.com/goliatone/go-predict/pkg/form"
)

// ProtectedField is the prediction target. It never leaves the client, even
// when raw input smuggles it in.
const ProtectedField = "churn"

// Payload is the sanitized request body for POST /predict.
type Payload struct {
	ModelType catalog.Kind   `json:"model_type"`
	Features  map[string]any `json:"features"`
}

// BatchPayload is the request body for POST /batch_predict.
type BatchPayload struct {
	ModelType catalog.Kind     `json:"model_type"`
	Rows      []map[string]any `json:"rows"`
}

// Report carries non-blocking findings from a build. Ignored lists keys that
// were dropped because the active model does not declare them; submission
// proceeds without them.
type Report struct {
	Ignored []string
}

// HasIgnored reports whether any unknown keys were dropped.
func (r Report) HasIgnored() bool {
	return len(r.Ignored) > 0
}

// ValidationError names the required numeric fields that are missing or
// empty. It is local and pre-submission; a payload failing validation never
// reaches the network.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "payload: missing required numeric fields: " + strings.Join(e.Missing, ", ")
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// freeTextPolicy strips any markup from free-text values before they leave
// the client.
func freeTextPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// Builder converts form state, optionally merged with a raw JSON override,
// into a Payload.
type Builder struct{}

// NewBuilder constructs a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Options carries per-build inputs.
type Options struct {
	// RawOverride is an optional user-edited JSON object shallow-merged over
	// the form-derived feature map, override winning.
	RawOverride []byte
}

// Build produces the payload for the form's model kind. In merged mode the
// raw override is decoded and shallow-merged first; afterwards only declared
// fields survive, the protected field is deleted, free-text strings are
// sanitized, and every required numeric field must hold a number.
func (b *Builder) Build(f *form.Form, opts Options) (Payload, Report, error) {
	merged := f.FeatureMap()

	if raw := strings.TrimSpace(string(opts.RawOverride)); raw != "" {
		var override map[string]any
		if err := json.Unmarshal([]byte(raw), &override); err != nil {
			return Payload{}, Report{}, fmt.Errorf("payload: decode override: %w", err)
		}
		for key, value := range override {
			merged[key] = value
		}
	}

	features, ignored, missing := buildFeatures(f.Descriptors(), merged)
	report := Report{Ignored: ignored}
	if len(missing) > 0 {
		return Payload{}, report, &ValidationError{Missing: missing}
	}

	return Payload{ModelType: f.Kind(), Features: features}, report, nil
}

// BuildBatch validates each raw feature row against the model kind's declared
// field set and assembles a batch payload. The first invalid row aborts the
// build, naming its index.
func (b *Builder) BuildBatch(kind catalog.Kind, cat catalog.Catalog, rows []map[string]any) (BatchPayload, Report, error) {
	if len(rows) == 0 {
		return BatchPayload{}, Report{}, fmt.Errorf("payload: batch requires at least one row")
	}
	descriptors, err := form.Build(kind, cat)
	if err != nil {
		return BatchPayload{}, Report{}, err
	}

	out := make([]map[string]any, 0, len(rows))
	ignoredSet := make(map[string]struct{})
	for i, row := range rows {
		features, ignored, missing := buildFeatures(descriptors, row)
		if len(missing) > 0 {
			return BatchPayload{}, Report{}, fmt.Errorf("payload: row %d: %w", i, &ValidationError{Missing: missing})
		}
		for _, key := range ignored {
			ignoredSet[key] = struct{}{}
		}
		out = append(out, features)
	}

	report := Report{Ignored: sortedKeys(ignoredSet)}
	return BatchPayload{ModelType: kind, Rows: out}, report, nil
}

// buildFeatures filters a merged feature map down to the declared field set,
// applying type coercion and sanitization per descriptor. It returns the
// surviving features, the ignored unknown keys (sorted), and the required
// numeric fields that ended up missing (declared order).
func buildFeatures(descriptors []fields.Descriptor, merged map[string]any) (map[string]any, []string, []string) {
	byName := make(map[string]fields.Descriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	features := make(map[string]any, len(descriptors))
	ignoredSet := make(map[string]struct{})
	for key, value := range merged {
		if key == ProtectedField {
			continue
		}
		d, declared := byName[key]
		if !declared {
			ignoredSet[key] = struct{}{}
			continue
		}
		features[key] = coerceValue(d, value)
	}

	var missing []string
	for _, d := range descriptors {
		if d.Kind != fields.KindNumeric {
			continue
		}
		if _, ok := features[d.Name].(float64); !ok {
			missing = append(missing, d.Name)
		}
	}

	return features, sortedKeys(ignoredSet), missing
}

// coerceValue normalizes one feature value for the wire: numeric descriptors
// end up float64 or the empty-string "unset" sentinel, everything else ends
// up a string. Free-text strings are stripped of markup.
func coerceValue(d fields.Descriptor, value any) any {
	if d.Kind == fields.KindNumeric {
		switch v := value.(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case json.Number:
			if n, err := v.Float64(); err == nil {
				return n
			}
			return ""
		case string:
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				return ""
			}
			if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return n
			}
			return ""
		default:
			return ""
		}
	}

	raw, ok := value.(string)
	if !ok {
		raw = fmt.Sprint(value)
	}
	if d.Kind == fields.KindFreeText {
		raw = sanitizeText(raw)
	}
	return raw
}

func sanitizeText(raw string) string {
	cleaned := strings.TrimSpace(freeTextPolicy().Sanitize(raw))
	// bluemonday escapes entities; undo that so plain text survives intact.
	return html.UnescapeString(cleaned)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
