package fields_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-predict/pkg/fields"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		want fields.Kind
	}{
		{name: "price", want: fields.KindNumeric},
		{name: "tenure_months", want: fields.KindNumeric},
		{name: "gender", want: fields.KindCategorical},
		{name: "product_name", want: fields.KindCategorical},
		{name: "customer_feedback", want: fields.KindFreeText},
	}
	for _, tc := range cases {
		if got := fields.KindOf(tc.name); got != tc.want {
			t.Fatalf("KindOf(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestOptionsOfReturnsCopies(t *testing.T) {
	first := fields.OptionsOf("region")
	want := []string{"North", "South", "East", "West"}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("region options mismatch (-want +got):\n%s", diff)
	}

	first[0] = "Mars"
	if diff := cmp.Diff(want, fields.OptionsOf("region")); diff != "" {
		t.Fatalf("options table mutated through returned slice:\n%s", diff)
	}

	if got := fields.OptionsOf("age"); got != nil {
		t.Fatalf("numeric field should have no options, got %v", got)
	}
}

func TestDescribe(t *testing.T) {
	numeric := fields.Describe("total_value")
	if numeric.Kind != fields.KindNumeric || numeric.Unlisted {
		t.Fatalf("total_value descriptor: %#v", numeric)
	}

	categorical := fields.Describe("sentiment")
	if categorical.Kind != fields.KindCategorical {
		t.Fatalf("sentiment descriptor: %#v", categorical)
	}
	if len(categorical.Options) != 3 {
		t.Fatalf("sentiment options: %v", categorical.Options)
	}

	unknown := fields.Describe("loyalty_tier")
	if unknown.Kind != fields.KindFreeText || !unknown.Unlisted {
		t.Fatalf("unknown fields edit as unlisted free text: %#v", unknown)
	}
}
