package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/errors"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/fixture"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/projector"
	"github.com/AbhishekGiri04/SATYA-DRISHTI/internal/stats"
)

// fixtureOptions serves scenario over httptest and returns snapshot options
// pointing at it.
func fixtureOptions(t *testing.T, scenario fixture.Scenario, asJSON bool) snapshotOptions {
	t.Helper()
	ts := httptest.NewServer(fixture.NewServer(scenario, 0).Router(""))
	t.Cleanup(ts.Close)

	client, err := stats.NewClient(ts.URL, stats.DefaultStatsPath, stats.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	return snapshotOptions{
		Endpoint:  client.URL(),
		Fetch:     client.Fetch,
		Projector: projector.DefaultOptions(),
		JSON:      asJSON,
	}
}

type snapshotEnvelope struct {
	Success bool           `json:"success"`
	Data    snapshotReport `json:"data"`
	Error   *JSONError     `json:"error"`
}

func TestRunSnapshot_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), &buf, fixtureOptions(t, fixture.ScenarioDemo, true)))

	var env snapshotEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.True(t, env.Success)

	data := env.Data
	assert.Contains(t, data.Endpoint, stats.DefaultStatsPath)
	assert.NotNil(t, data.CapturedAt)
	assert.False(t, data.ZeroActivity)
	assert.False(t, data.Partial)
	assert.Empty(t, data.Issues)

	require.NotNil(t, data.Headline)
	assert.Equal(t, int64(124604), data.Headline.TotalAnalyzed)
	assert.Equal(t, int64(2848), data.Headline.HighRisk.Count)
	require.NotNil(t, data.Headline.HighRisk.Percent)
	assert.InDelta(t, 2.29, *data.Headline.HighRisk.Percent, 0.001)

	require.NotNil(t, data.Categories)
	assert.Equal(t, "share", data.Categories.Scale)
	require.Len(t, data.Categories.Rows, 4)
	assert.Equal(t, "hate_speech", data.Categories.Rows[0].Key)
	assert.Equal(t, "hate speech", data.Categories.Rows[0].Label)

	require.NotNil(t, data.Languages)
	assert.Equal(t, "HI", data.Languages.Rows[0].Label)

	require.NotNil(t, data.Regions)
	assert.Equal(t, "max", data.Regions.Scale)
	assert.Equal(t, "Delhi", data.Regions.Rows[1].Label)
	assert.Equal(t, "HIGH", data.Regions.Rows[1].Tier)
	assert.Equal(t, 100.0, data.Regions.Rows[0].BarPercent, "busiest region fills the bar")
}

func TestRunSnapshot_JSONInconsistent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), &buf, fixtureOptions(t, fixture.ScenarioInconsistent, true)))

	var env snapshotEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	require.NotNil(t, env.Data.Headline)
	assert.True(t, env.Data.Headline.HighRisk.Invalid)
	assert.Nil(t, env.Data.Headline.HighRisk.Percent)
	require.NotEmpty(t, env.Data.Issues)
	assert.Equal(t, errors.ErrInconsistent, env.Data.Issues[0].Code)
}

func TestRunSnapshot_JSONEmptyScenario(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), &buf, fixtureOptions(t, fixture.ScenarioEmpty, true)))

	var env snapshotEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.True(t, env.Data.ZeroActivity)
	require.NotNil(t, env.Data.Categories)
	assert.Empty(t, env.Data.Categories.Rows)
	assert.Nil(t, env.Data.Regions, "regions were not reported")
}

func TestRunSnapshot_JSONFetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := stats.NewClient(url, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = runSnapshot(context.Background(), &buf, snapshotOptions{
		Endpoint: client.URL(),
		Fetch:    client.Fetch,
		JSON:     true,
	})
	assert.ErrorIs(t, err, errReported)

	var env snapshotEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeEndpointUnreachable, env.Error.Code)
}

func TestRunSnapshot_TextFetchError(t *testing.T) {
	var buf bytes.Buffer
	err := runSnapshot(context.Background(), &buf, fixtureOptions(t, fixture.ScenarioMalformed, false))

	assert.True(t, errors.IsCode(err, errors.ErrMalformed))
	assert.Empty(t, buf.String())
}

func TestRunSnapshot_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), &buf, fixtureOptions(t, fixture.ScenarioDemo, false)))

	out := buf.String()
	for _, want := range []string{
		"drishti snapshot",
		"Overview",
		"124,604",
		"2.3%",
		"Threat categories",
		"hate speech",
		"Languages",
		"HI",
		"Regions",
		"Delhi",
		"HIGH",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "captured N/A")
	assert.NotContains(t, out, "Issues")
}

func TestRunSnapshot_TextEmptyScenario(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), &buf, fixtureOptions(t, fixture.ScenarioEmpty, false)))

	out := buf.String()
	assert.Contains(t, out, "zero activity")
	assert.Contains(t, out, snapshotNoActivity)
	assert.Contains(t, out, snapshotNoData)
	assert.NotContains(t, out, "NaN")
}

func TestRunSnapshot_TextInconsistent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSnapshot(context.Background(), &buf, fixtureOptions(t, fixture.ScenarioInconsistent, false)))

	out := buf.String()
	assert.Contains(t, out, snapshotInvalid)
	assert.Contains(t, out, "Issues")
	assert.Contains(t, out, "exceeds total analyzed")
}

func TestRenderSnapshotText_MissingTimestamp(t *testing.T) {
	snap := &stats.Snapshot{Counters: stats.Counters{Present: true, TotalAnalyzed: 10, HighRiskCount: 1}}
	out := renderSnapshotText("http://api.test/stats", snap, projector.Project(snap, projector.DefaultOptions()))

	assert.Contains(t, out, "captured N/A")
	assert.Contains(t, out, "10.0%")
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.29, round2(2.2856))
	assert.Equal(t, 0.0, round2(0))
	assert.Equal(t, 100.0, round2(99.999))
}
