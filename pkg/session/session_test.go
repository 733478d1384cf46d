package session_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/client"
	"github.com/goliatone/go-predict/pkg/payload"
	"github.com/goliatone/go-predict/pkg/present"
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
      "cluster_labels": {"0": "Low Spenders", "1": "Mid Spenders", "2": "VIP"}
    }
  }
}`

func registerSchema(body string) {
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(200, body))
}

func startedSession(t *testing.T) *session.Session {
	t.Helper()
	httpmock.Reset()
	registerSchema(schemaBody)

	sess := session.New(client.New(base))
	require.NoError(t, sess.Start(context.Background()))
	return sess
}

func TestStartSelectsFirstModel(t *testing.T) {
	sess := startedSession(t)

	assert.Equal(t, catalog.KindLogReg, sess.Kind())
	assert.Equal(t, []catalog.Kind{catalog.KindLogReg, catalog.KindKMeans}, sess.Kinds())
}

func TestStartUnavailableService(t *testing.T) {
	httpmock.Reset()
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(503, `{"error": "down"}`))

	sess := session.New(client.New(base))
	err := sess.Start(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestOperationsRequireModel(t *testing.T) {
	sess := session.New(client.New(base))

	_, err := sess.Descriptors()
	assert.ErrorIs(t, err, session.ErrNoModel)
	assert.ErrorIs(t, sess.SetField("age", "1"), session.ErrNoModel)
	_, _, err = sess.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, session.ErrNoModel)
}

func TestSelectModelAndEdit(t *testing.T) {
	sess := startedSession(t)
	require.NoError(t, sess.SelectModel(catalog.KindKMeans))

	descriptors, err := sess.Descriptors()
	require.NoError(t, err)
	var names []string
	for _, d := range descriptors {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"price", "quantity", "total_value"}, names)

	require.NoError(t, sess.SetField("price", "100"))
	got, err := sess.Value("price")
	require.NoError(t, err)
	assert.Equal(t, "100", got)

	assert.Error(t, sess.SetField("age", "34"), "age is not declared for kmeans")
}

func TestApplyPresetThenSubmit(t *testing.T) {
	sess := startedSession(t)

	available, err := sess.Presets()
	require.NoError(t, err)
	require.NotEmpty(t, available)
	// The catalog example leads the list.
	assert.Equal(t, "Corporate Electronics", available[0].Name)

	require.NoError(t, sess.ApplyPreset(available[0].Name))
	assert.Error(t, sess.ApplyPreset("No Such Preset"))

	httpmock.RegisterResponder("POST", base+"/predict",
		httpmock.NewStringResponder(200, `{"model_type": "logreg", "prediction": 0, "probability_of_churn": 0.12}`))

	summary, report, err := sess.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, report.HasIgnored())

	churn, ok := summary.(present.ChurnSummary)
	require.True(t, ok)
	assert.Equal(t, "Stay", churn.Label)
	assert.Equal(t, 0.12, churn.Probability)
}

func TestSubmitValidationFailsBeforeRequest(t *testing.T) {
	sess := startedSession(t)
	require.NoError(t, sess.SelectModel(catalog.KindKMeans))
	require.NoError(t, sess.SetField("price", "100"))

	_, _, err := sess.Submit(context.Background(), nil)
	var validation *payload.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, []string{"quantity", "total_value"}, validation.Missing)
	// Only the schema fetch hit the wire; the invalid payload never did.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSubmitUsesCatalogClusterLabels(t *testing.T) {
	sess := startedSession(t)
	require.NoError(t, sess.SelectModel(catalog.KindKMeans))
	for name, raw := range map[string]string{"price": "70000", "quantity": "3", "total_value": "210000"} {
		require.NoError(t, sess.SetField(name, raw))
	}

	httpmock.RegisterResponder("POST", base+"/predict",
		httpmock.NewStringResponder(200, `{"model_type": "kmeans", "prediction_cluster": 2}`))

	summary, _, err := sess.Submit(context.Background(), nil)
	require.NoError(t, err)
	cluster, ok := summary.(present.ClusterSummary)
	require.True(t, ok)
	assert.Equal(t, "VIP", cluster.Label)
}

func TestSubmitBatch(t *testing.T) {
	sess := startedSession(t)
	require.NoError(t, sess.SelectModel(catalog.KindKMeans))

	httpmock.RegisterResponder("POST", base+"/batch_predict",
		httpmock.NewStringResponder(200, `{
			"model_type": "kmeans",
			"results": [{"prediction_cluster": 0}, {"prediction_cluster": 2}]
		}`))

	summaries, report, err := sess.SubmitBatch(context.Background(), []map[string]any{
		{"price": 100, "quantity": 1, "total_value": 100},
		{"price": 70000, "quantity": 3, "total_value": 210000, "mystery": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mystery"}, report.Ignored)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Low Spenders", summaries[0].(present.ClusterSummary).Label)
	assert.Equal(t, "VIP", summaries[1].(present.ClusterSummary).Label)
}

func TestRefreshPreservesSurvivingEdits(t *testing.T) {
	sess := startedSession(t)
	require.NoError(t, sess.SetField("age", "52"))
	require.NoError(t, sess.SetField("region", "West"))

	// The refreshed catalog drops the region field for logreg.
	httpmock.Reset()
	registerSchema(`{
	  "models": {
	    "logreg_churn": {
	      "model_type": "logreg",
	      "required_fields": ["age", "tenure_months", "gender"]
	    }
	  }
	}`)

	require.NoError(t, sess.Refresh(context.Background()))
	assert.Equal(t, catalog.KindLogReg, sess.Kind())

	got, err := sess.Value("age")
	require.NoError(t, err)
	assert.Equal(t, "52", got, "surviving field keeps its edit")

	descriptors, err := sess.Descriptors()
	require.NoError(t, err)
	for _, d := range descriptors {
		assert.NotEqual(t, "region", d.Name, "dropped field is gone")
	}
}

func TestRefreshFailureKeepsCatalog(t *testing.T) {
	sess := startedSession(t)
	require.NoError(t, sess.SetField("age", "52"))

	httpmock.Reset()
	httpmock.RegisterResponder("GET", base+"/schema",
		httpmock.NewStringResponder(500, `{"error": "down"}`))

	err := sess.Refresh(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)

	// Previous state stays usable.
	got, verr := sess.Value("age")
	require.NoError(t, verr)
	assert.Equal(t, "52", got)
}

func TestRefreshSelectedModelDropped(t *testing.T) {
	sess := startedSession(t)
	require.NoError(t, sess.SelectModel(catalog.KindKMeans))

	httpmock.Reset()
	registerSchema(`{
	  "models": {
	    "logreg_churn": {
	      "model_type": "logreg",
	      "required_fields": ["age", "tenure_months"]
	    }
	  }
	}`)

	require.NoError(t, sess.Refresh(context.Background()))
	assert.Equal(t, catalog.KindLogReg, sess.Kind())
}
