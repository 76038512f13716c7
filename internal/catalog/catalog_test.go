package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policydash/internal/model"
)

func TestDefault(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), cat.ObservationStart)
	assert.Len(t, cat.Datasets, 2)
	assert.Len(t, cat.Terms, 4)
	assert.Len(t, cat.Charts, 5)
	assert.Equal(t, ChartRef{Dataset: model.DatasetInflation, Indicator: "CPI"}, cat.Summary)

	inflation, err := cat.Dataset(model.DatasetInflation)
	require.NoError(t, err)
	assert.False(t, inflation.ForwardFill)
	assert.Equal(t, "inflation_data.csv", inflation.File)

	policy, err := cat.Dataset(model.DatasetPolicy)
	require.NoError(t, err)
	assert.True(t, policy.ForwardFill)

	term, err := cat.Term("trump-2017")
	require.NoError(t, err)
	assert.Equal(t, "Trump (2017 - 2020)", term.Label)
	assert.False(t, term.Open)
}

func TestDefaultMappingIsBijective(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	for _, ds := range cat.Datasets {
		byName := map[string]string{}
		byID := map[string]string{}
		for _, ind := range ds.Indicators {
			byName[ind.Name] = ind.SeriesID
			byID[ind.SeriesID] = ind.Name
		}
		assert.Len(t, byName, len(ds.Indicators), "dataset %s", ds.ID)
		assert.Len(t, byID, len(ds.Indicators), "dataset %s", ds.ID)
		for name, id := range byName {
			assert.Equal(t, name, byID[id])
		}
	}

	id, ok := cat.SeriesID(model.DatasetPolicy, "Fed Funds Rate")
	assert.True(t, ok)
	assert.Equal(t, "FEDFUNDS", id)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name: "duplicate series id",
			doc: `
observation_start: "2000-01-01"
datasets:
  - id: policy
    file: p.csv
    indicators:
      - {name: "10-Year Treasury Yield", series_id: GS10}
      - {name: "10-Year Treasury Constant Maturity Rate", series_id: GS10}
`,
			wantErr: ErrDuplicateIndicator,
		},
		{
			name: "duplicate display name",
			doc: `
observation_start: "2000-01-01"
datasets:
  - id: policy
    file: p.csv
    indicators:
      - {name: "3-Month Treasury Yield", series_id: GS3}
      - {name: "3-Month Treasury Yield", series_id: TB3MS}
`,
			wantErr: ErrDuplicateIndicator,
		},
		{
			name: "chart references unknown dataset",
			doc: `
observation_start: "2000-01-01"
datasets:
  - id: inflation
    file: i.csv
    indicators:
      - {name: CPI, series_id: CPIAUCSL}
card:
  summary: {dataset: inflation, indicator: CPI}
  charts:
    - {dataset: trade, indicator: Exports}
`,
			wantErr: ErrUnknownDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseOpenEndedTerm(t *testing.T) {
	doc := `
observation_start: "2000-01-01"
datasets:
  - id: inflation
    file: i.csv
    indicators:
      - {name: CPI, series_id: CPIAUCSL}
terms:
  - {id: current, label: "Current", start: "2025-01-01", end: present}
card:
  summary: {dataset: inflation, indicator: CPI}
`
	cat, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, cat.Terms, 1)
	assert.True(t, cat.Terms[0].Open)
	assert.True(t, cat.Terms[0].End.IsZero())

	_, err = cat.Term("missing")
	assert.ErrorIs(t, err, ErrUnknownTerm)
}
