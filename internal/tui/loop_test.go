package tui_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-predict/internal/tui"
	"github.com/goliatone/go-predict/pkg/client"
	"github.com/goliatone/go-predict/pkg/renderers/text"
	"github.com/goliatone/go-predict/pkg/session"
)

const base = "http://service.test"

func TestMain(m *testing.M) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	os.Exit(m.Run())
}

const schemaBody = `{
  "models": {
    "logreg_churn": {
      "model_type": "logreg",
      "required_fields": ["age", "tenure_months", "gender", "region"],
      "example_payload": {"features": {"age": 34, "tenure_months": 12, "gender": "Female", "region": "West"}}
    },
    "kmeans_clusters": {
      "model_type": "kmeans",
      "required_numeric_fields": ["price", "quantity", "total_value"],
      "cluster_labels": {"0": "Low Spenders", "1": "Mid Spenders", "2": "High Spenders"},
      "notes": "Groups customers into spending segments."
    }
  }
}`

// fakeDriver replays scripted answers. Select answers match by option label;
// an exhausted script aborts, which the loop treats as quitting the menu.
type fakeDriver struct {
	t       *testing.T
	selects []string
	inputs  []string
	infos   []string
}

func (d *fakeDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", tui.ErrAborted
	}
	answer := d.inputs[0]
	d.inputs = d.inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			d.t.Fatalf("scripted input %q rejected: %v", answer, err)
		}
	}
	return answer, nil
}

func (d *fakeDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	return cfg.Default, nil
}

func (d *fakeDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, tui.ErrAborted
	}
	answer := d.selects[0]
	d.selects = d.selects[1:]
	for i, option := range cfg.Options {
		if option == answer {
			return i, nil
		}
	}
	d.t.Fatalf("scripted answer %q not offered in %v", answer, cfg.Options)
	return 0, nil
}

func (d *fakeDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func (d *fakeDriver) output() string {
	return strings.Join(d.infos, "\n")
}

func newLoop(t *testing.T, driver *fakeDriver) *tui.Loop {
	t.Helper()
	sess := session.New(client.New(base))
	return tui.NewLoop(driver, sess, text.New(), nil)
}

func TestLoopPresetSubmit(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(200, schemaBody))
	httpmock.RegisterResponder("POST", base+"/predict",
		httpmock.NewStringResponder(200, `{"model_type": "logreg", "prediction": 0, "probability_of_churn": 0.12}`))

	driver := &fakeDriver{t: t, selects: []string{
		"Apply preset",
		"Corporate Electronics",
		"Submit prediction",
		"Quit",
	}}

	require.NoError(t, newLoop(t, driver).Run(context.Background()))

	out := driver.output()
	assert.Contains(t, out, "Selected model: Churn (Logistic Regression)")
	assert.Contains(t, out, "Stay")
	assert.Contains(t, out, "12.0%")
}

func TestLoopSelectModelShowsNotes(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(200, schemaBody))

	driver := &fakeDriver{t: t, selects: []string{
		"Select model",
		"Clustering (KMeans)",
		"Quit",
	}}

	require.NoError(t, newLoop(t, driver).Run(context.Background()))
	assert.Contains(t, driver.output(), "Groups customers into spending segments.")
}

func TestLoopEditFieldsAndSubmitCluster(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(200, schemaBody))
	httpmock.RegisterResponder("POST", base+"/predict",
		httpmock.NewStringResponder(200, `{"model_type": "kmeans", "prediction_cluster": 2}`))

	driver := &fakeDriver{
		t: t,
		selects: []string{
			"Select model",
			"Clustering (KMeans)",
			"Edit fields",
			"Submit prediction",
			"Quit",
		},
		inputs: []string{"70000", "3", "210000"},
	}

	require.NoError(t, newLoop(t, driver).Run(context.Background()))
	assert.Contains(t, driver.output(), "High Spenders")
}

func TestLoopSubmitWithMissingFields(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(200, schemaBody))

	driver := &fakeDriver{t: t, selects: []string{
		"Select model",
		"Clustering (KMeans)",
		"Submit prediction",
		"Quit",
	}}

	require.NoError(t, newLoop(t, driver).Run(context.Background()))

	out := driver.output()
	assert.Contains(t, out, "Cannot submit")
	assert.Contains(t, out, "price")
	// The invalid payload never reached the service.
	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["POST "+base+"/predict"])
}

func TestLoopAbortedMenuExitsCleanly(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(200, schemaBody))

	driver := &fakeDriver{t: t}
	require.NoError(t, newLoop(t, driver).Run(context.Background()))
}

func TestLoopStartFailure(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(500, `{"error": "down"}`))

	driver := &fakeDriver{t: t}
	assert.Error(t, newLoop(t, driver).Run(context.Background()))
}
