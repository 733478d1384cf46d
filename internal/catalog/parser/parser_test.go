package parser_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-predict/internal/catalog/parser"
	pkgcatalog "github.com/goliatone/go-predict/pkg/catalog"
)

const schemaDoc = `{
  "models": {
    "logreg_churn": {
      "model_type": "logreg",
      "required_fields": ["age", "tenure_months", "gender", "region"],
      "notes": "Predicts churn from account demographics.",
      "example_payload": {
        "features": {"age": 34, "tenure_months": 12, "gender": "Female", "region": "West"}
      }
    },
    "kmeans_clusters": {
      "model_type": "kmeans",
      "required_numeric_fields": ["price", "quantity", "total_value"],
      "cluster_labels": {"0": "Low Spenders", "1": "Mid Spenders", "2": "VIP"},
      "example_payload_dict": {
        "features": {"price": 100, "quantity": 2, "total_value": 200}
      }
    },
    "experimental_forest": {
      "model_type": "random_forest",
      "required_fields": ["age"]
    },
    "broken_entry": {
      "model_type": "svm"
    }
  }
}`

func mustDocument(t *testing.T, payload string) pkgcatalog.Document {
	t.Helper()
	doc, err := pkgcatalog.NewDocument(pkgcatalog.SourceFromURL("http://service.test/schema"), []byte(payload))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestParserCatalog(t *testing.T) {
	p := parser.New(pkgcatalog.NewParserOptions())

	cat, err := p.Catalog(context.Background(), mustDocument(t, schemaDoc))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}

	// Unknown kinds and entries without fields are skipped silently.
	if cat.Len() != 2 {
		t.Fatalf("expected 2 models, got %d (%v)", cat.Len(), cat.Kinds())
	}

	logreg, ok := cat.Model(pkgcatalog.KindLogReg)
	if !ok {
		t.Fatal("expected logreg model")
	}
	if logreg.Key != "logreg_churn" {
		t.Fatalf("logreg key: %q", logreg.Key)
	}
	wantFields := []string{"age", "tenure_months", "gender", "region"}
	if diff := cmp.Diff(wantFields, logreg.RequiredFields); diff != "" {
		t.Fatalf("logreg fields mismatch (-want +got):\n%s", diff)
	}
	if logreg.Example["region"] != "West" {
		t.Fatalf("logreg example: %#v", logreg.Example)
	}

	kmeans, ok := cat.Model(pkgcatalog.KindKMeans)
	if !ok {
		t.Fatal("expected kmeans model")
	}
	if diff := cmp.Diff([]string{"price", "quantity", "total_value"}, kmeans.RequiredFields); diff != "" {
		t.Fatalf("kmeans fields mismatch (-want +got):\n%s", diff)
	}
	if kmeans.ClusterLabels["2"] != "VIP" {
		t.Fatalf("kmeans labels: %#v", kmeans.ClusterLabels)
	}
}

func TestParserRejectsEmptyCatalog(t *testing.T) {
	p := parser.New(pkgcatalog.NewParserOptions())

	_, err := p.Catalog(context.Background(), mustDocument(t, `{"models": {}}`))
	if err == nil {
		t.Fatal("expected error for empty catalog")
	}

	lenient := parser.New(pkgcatalog.NewParserOptions(pkgcatalog.WithEmptyCatalog(true)))
	cat, err := lenient.Catalog(context.Background(), mustDocument(t, `{"models": {}}`))
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if cat.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d models", cat.Len())
	}
}

func TestParserRejectsMalformedDocument(t *testing.T) {
	p := parser.New(pkgcatalog.NewParserOptions())
	if _, err := p.Catalog(context.Background(), mustDocument(t, `{"models": [`)); err == nil {
		t.Fatal("expected decode error")
	}
}
