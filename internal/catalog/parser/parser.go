package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgcatalog "github.com/goliatone/go-predict/pkg/catalog"
)

// Parser implements pkgcatalog.Parser for the prediction service's /schema
// document.
type Parser struct {
	options pkgcatalog.ParserOptions
}

// Ensure the implementation satisfies the public interface.
var _ pkgcatalog.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgcatalog.ParserOptions) pkgcatalog.Parser {
	return &Parser{options: options}
}

// schemaDocument mirrors the wire shape of GET /schema.
type schemaDocument struct {
	Models map[string]modelEntry `json:"models"`
}

type modelEntry struct {
	ModelType             string            `json:"model_type"`
	RequiredFields        []string          `json:"required_fields"`
	RequiredNumericFields []string          `json:"required_numeric_fields"`
	Notes                 string            `json:"notes"`
	ExamplePayload        *examplePayload   `json:"example_payload"`
	ExamplePayloadDict    *examplePayload   `json:"example_payload_dict"`
	ClusterLabels         map[string]string `json:"cluster_labels"`
}

type examplePayload struct {
	Features map[string]any `json:"features"`
}

// Catalog decodes a /schema document into a normalized Catalog. Entries with
// an unknown or missing model_type, or without any declared field, are
// skipped. Only a wholesale decode failure, or an empty result when
// AllowEmptyCatalog is off, produces an error.
func (p *Parser) Catalog(ctx context.Context, doc pkgcatalog.Document) (pkgcatalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return pkgcatalog.Catalog{}, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return pkgcatalog.Catalog{}, errors.New("catalog parser: document payload is empty")
	}

	var decoded schemaDocument
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return pkgcatalog.Catalog{}, fmt.Errorf("catalog parser: decode document: %w", err)
	}

	var models []pkgcatalog.Model
	for key, entry := range decoded.Models {
		model, ok := normalizeEntry(key, entry)
		if !ok {
			continue
		}
		models = append(models, model)
	}

	catalog := pkgcatalog.New(models)
	if catalog.Len() == 0 && !p.options.AllowEmptyCatalog {
		return pkgcatalog.Catalog{}, errors.New("catalog parser: no recognizable models in document")
	}

	return catalog, nil
}

func normalizeEntry(key string, entry modelEntry) (pkgcatalog.Model, bool) {
	kind, err := pkgcatalog.ParseKind(entry.ModelType)
	if err != nil {
		return pkgcatalog.Model{}, false
	}

	// kmeans declares its numeric-only field list under a dedicated key.
	required := entry.RequiredFields
	if kind == pkgcatalog.KindKMeans {
		required = entry.RequiredNumericFields
	}
	if len(required) == 0 {
		return pkgcatalog.Model{}, false
	}

	example := entry.ExamplePayload
	if example == nil {
		example = entry.ExamplePayloadDict
	}
	var features map[string]any
	if example != nil && len(example.Features) > 0 {
		features = make(map[string]any, len(example.Features))
		for name, value := range example.Features {
			features[name] = value
		}
	}

	model := pkgcatalog.Model{
		Key:            key,
		Kind:           kind,
		RequiredFields: append([]string(nil), required...),
		Example:        features,
		Notes:          entry.Notes,
	}
	if kind == pkgcatalog.KindKMeans && len(entry.ClusterLabels) > 0 {
		labels := make(map[string]string, len(entry.ClusterLabels))
		for id, label := range entry.ClusterLabels {
			labels[id] = label
		}
		model.ClusterLabels = labels
	}

	return model, true
}
