package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policydash/internal/catalog"
	"policydash/internal/dataset"
	"policydash/internal/model"
	"policydash/internal/table"
)

func monthlySeries(name string, from, to int, value func(i int) float64) model.Series {
	s := model.Series{Name: name}
	i := 0
	for y := from; y <= to; y++ {
		for m := time.January; m <= time.December; m++ {
			s.Observations = append(s.Observations, model.Observation{
				Date:  time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
				Value: value(i),
			})
			i++
		}
	}
	return s
}

func newTestPresenter(t *testing.T) *Presenter {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	linear := func(i int) float64 { return 200 + float64(i) }
	flat := func(int) float64 { return 5 }

	inflation, err := table.Join(
		monthlySeries("CPI", 2008, 2024, linear),
		monthlySeries("Core CPI", 2008, 2024, linear),
		monthlySeries("PPI", 2008, 2024, linear),
	)
	require.NoError(t, err)
	policy, err := table.Join(
		monthlySeries("Unemployment Rate", 2008, 2024, flat),
		monthlySeries("Fed Funds Rate", 2008, 2024, flat),
		monthlySeries("30-Year Mortgage Rate", 2008, 2024, flat),
		monthlySeries("Government Surplus/Deficit", 2008, 2024, flat),
	)
	require.NoError(t, err)

	repo := dataset.NewRepository(map[model.DatasetID]*table.Table{
		model.DatasetInflation: inflation,
		model.DatasetPolicy:    policy,
	})
	return New(cat, repo)
}

func TestBuildTermView(t *testing.T) {
	p := newTestPresenter(t)

	view, err := p.BuildTermView("trump-2017")
	require.NoError(t, err)

	assert.Equal(t, "Trump (2017 - 2020)", view.Label)
	assert.Equal(t, CardCollapsed, view.State)
	assert.Equal(t, summaryLabel, view.Summary.Label)
	// CPI rises one point a month from 308 (2017-01) to 367 (2021-12)
	assert.Equal(t, "+19.16%", view.Summary.Change)

	require.Len(t, view.Charts, 5)
	titles := make([]string, 0, len(view.Charts))
	for _, c := range view.Charts {
		titles = append(titles, c.Title)
		require.Len(t, c.Series, 1)
		for _, pt := range c.Series[0].Points {
			assert.GreaterOrEqual(t, pt.X, view.Start)
			assert.LessOrEqual(t, pt.X, view.End)
		}
	}
	assert.Equal(t, []string{
		"PPI During Trump (2017 - 2020)",
		"Unemployment Rate During Trump (2017 - 2020)",
		"Fed Funds Rate During Trump (2017 - 2020)",
		"30-Year Mortgage Rate During Trump (2017 - 2020)",
		"Government Surplus/Deficit During Trump (2017 - 2020)",
	}, titles)
	assert.Equal(t, "FRED PPIACO", view.Charts[0].Source)
	assert.Equal(t, "FRED FYFSD", view.Charts[4].Source)
}

func TestBuildTermViewReflectsCardState(t *testing.T) {
	p := newTestPresenter(t)

	state, err := p.Apply("obama-2009", EventReveal)
	require.NoError(t, err)
	assert.Equal(t, CardExpanded, state)

	view, err := p.BuildTermView("obama-2009")
	require.NoError(t, err)
	assert.Equal(t, CardExpanded, view.State)

	_, err = p.Apply("unknown", EventReveal)
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestBuildTermViewErrors(t *testing.T) {
	p := newTestPresenter(t)

	_, err := p.BuildTermView("washington-1789")
	assert.ErrorIs(t, err, catalog.ErrUnknownTerm)

	cat, err := catalog.Default()
	require.NoError(t, err)
	empty := New(cat, dataset.NewRepository(nil))
	_, err = empty.BuildTermView("biden-2021")
	assert.ErrorIs(t, err, dataset.ErrDatasetNotFound)
}

func TestBuildTermViews(t *testing.T) {
	p := newTestPresenter(t)

	views, err := p.BuildTermViews()
	require.NoError(t, err)
	require.Len(t, views, 4)
	assert.Equal(t, "obama-2009", views[0].ID)
	assert.Equal(t, "biden-2021", views[3].ID)
}

func TestBuildOverview(t *testing.T) {
	p := newTestPresenter(t)

	overview, err := p.BuildOverview()
	require.NoError(t, err)

	require.Len(t, overview.InflationTrends.Series, 3)
	require.Len(t, overview.CPIAverages.Series, 3)
	months := 17 * 12
	assert.Len(t, overview.CPIAverages.Series[0].Points, months)
	assert.Len(t, overview.CPIAverages.Series[1].Points, months-5)
	assert.Len(t, overview.CPIAverages.Series[2].Points, months-11)
	assert.Equal(t, "dash", overview.CPIAverages.Series[1].Dash)
}
