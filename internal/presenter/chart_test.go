package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineChart(t *testing.T) {
	chart := LineChart(values(1.5, 2.5), "Fed Funds Rate During Biden (2021 - 2024)", "Fed Funds Rate")

	assert.Equal(t, "line", chart.ChartType)
	assert.Equal(t, "Year", chart.XAxis)
	assert.Equal(t, "Fed Funds Rate", chart.YAxis)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, []ChartPoint{
		{X: "2020-01-01", Y: 1.5},
		{X: "2020-02-01", Y: 2.5},
	}, chart.Series[0].Points)
}

func TestLineChartEmptySeries(t *testing.T) {
	chart := LineChart(values(), "CPI", "CPI")
	require.Len(t, chart.Series, 1)
	assert.Empty(t, chart.Series[0].Points)
	assert.NotNil(t, chart.Series[0].Points)
}

func TestMultiLineChartShowsLegend(t *testing.T) {
	a := values(1, 2)
	b := values(3, 4)
	b.Name = "PPI"

	chart := MultiLineChart("Inflation Trends", "Index Value", a, b)
	assert.True(t, chart.ShowLegend)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, "CPI", chart.Series[0].Name)
	assert.Equal(t, "PPI", chart.Series[1].Name)
	assert.NotEqual(t, chart.Series[0].Color, chart.Series[1].Color)
}

func TestMovingAverage(t *testing.T) {
	ma := MovingAverage(values(1, 2, 3, 4, 5, 6), 3)

	require.Equal(t, 4, ma.Len())
	got := make([]float64, 0, ma.Len())
	for _, obs := range ma.Observations {
		got = append(got, obs.Value)
	}
	assert.Equal(t, []float64{2, 3, 4, 5}, got)

	first, _ := ma.First()
	assert.Equal(t, "2020-03-01", first.Date.Format("2006-01-02"))

	assert.Zero(t, MovingAverage(values(1, 2), 3).Len())
	assert.Zero(t, MovingAverage(values(1, 2), 0).Len())
}
