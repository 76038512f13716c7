package presenter

import (
	"policydash/internal/model"
)

const (
	chartTypeLine = "line"
	xAxisLabel    = "Year"
)

var defaultColors = []string{
	"#1F4E79", "#BA0C2F", "#2E8B57", "#F59E0B", "#8B5CF6",
}

type ChartPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

type ChartSeries struct {
	Name   string       `json:"name"`
	Color  string       `json:"color,omitempty"`
	Dash   string       `json:"dash,omitempty"`
	Points []ChartPoint `json:"points"`
}

// ChartConfig is a declarative chart description; the browser draws it.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis"`
	YAxis      string        `json:"yAxis"`
	Source     string        `json:"source,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	Series     []ChartSeries `json:"series"`
}

// LineChart plots one series against its dates.
func LineChart(s model.Series, title, yLabel string) ChartConfig {
	return ChartConfig{
		ChartType: chartTypeLine,
		Title:     title,
		XAxis:     xAxisLabel,
		YAxis:     yLabel,
		Series:    []ChartSeries{toChartSeries(s, title, 0)},
	}
}

// MultiLineChart overlays several series on shared axes.
func MultiLineChart(title, yLabel string, series ...model.Series) ChartConfig {
	config := ChartConfig{
		ChartType:  chartTypeLine,
		Title:      title,
		XAxis:      xAxisLabel,
		YAxis:      yLabel,
		ShowLegend: len(series) > 1,
		Series:     make([]ChartSeries, 0, len(series)),
	}
	for i, s := range series {
		config.Series = append(config.Series, toChartSeries(s, s.Name, i))
	}
	return config
}

func toChartSeries(s model.Series, name string, index int) ChartSeries {
	points := make([]ChartPoint, 0, s.Len())
	for _, obs := range s.Observations {
		points = append(points, ChartPoint{
			X: obs.Date.Format(model.DateLayout),
			Y: obs.Value,
		})
	}
	return ChartSeries{
		Name:   name,
		Color:  defaultColors[index%len(defaultColors)],
		Points: points,
	}
}

// MovingAverage is the trailing mean over window consecutive observations.
// The first window-1 observations have no average and are omitted.
func MovingAverage(s model.Series, window int) model.Series {
	out := model.Series{Name: s.Name}
	if window <= 0 || s.Len() < window {
		return out
	}
	out.Observations = make([]model.Observation, 0, s.Len()-window+1)
	sum := 0.0
	for i, obs := range s.Observations {
		sum += obs.Value
		if i >= window {
			sum -= s.Observations[i-window].Value
		}
		if i >= window-1 {
			out.Observations = append(out.Observations, model.Observation{
				Date:  obs.Date,
				Value: sum / float64(window),
			})
		}
	}
	return out
}
