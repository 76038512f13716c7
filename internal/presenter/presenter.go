// Package presenter turns cached indicator tables into per-term views: a CPI
// percent-change summary, a fixed set of line charts and a toggle card.
package presenter

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"policydash/internal/catalog"
	"policydash/internal/dataset"
	"policydash/internal/metrics"
	"policydash/internal/model"
)

const summaryLabel = "CPI Percent Change Over This Term:"

var log = logrus.WithField("component", "presenter")

type Summary struct {
	Label  string `json:"label"`
	Change string `json:"change"`
}

// TermView is computed on every request and never stored.
type TermView struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	Start   string        `json:"start"`
	End     string        `json:"end"`
	State   CardState     `json:"state"`
	Summary Summary       `json:"summary"`
	Charts  []ChartConfig `json:"charts"`
}

type Overview struct {
	InflationTrends ChartConfig `json:"inflationTrends"`
	CPIAverages     ChartConfig `json:"cpiMovingAverages"`
}

type Presenter struct {
	cat   *catalog.Catalog
	repo  *dataset.Repository
	cards *CardStore
}

// New creates a presenter with one collapsed card per catalog term.
func New(cat *catalog.Catalog, repo *dataset.Repository) *Presenter {
	ids := make([]string, 0, len(cat.Terms))
	for _, term := range cat.Terms {
		ids = append(ids, term.ID)
	}
	return &Presenter{
		cat:   cat,
		repo:  repo,
		cards: NewCardStore(ids...),
	}
}

func (p *Presenter) Cards() *CardStore {
	return p.cards
}

func (p *Presenter) Terms() []model.Term {
	terms := make([]model.Term, len(p.cat.Terms))
	copy(terms, p.cat.Terms)
	return terms
}

// BuildTermView slices every card indicator to the term's range.
func (p *Presenter) BuildTermView(termID string) (TermView, error) {
	term, err := p.cat.Term(termID)
	if err != nil {
		return TermView{}, err
	}
	state, err := p.cards.State(term.ID)
	if err != nil {
		return TermView{}, err
	}

	summary, err := p.repo.SliceTerm(p.cat.Summary.Dataset, p.cat.Summary.Indicator, term)
	if err != nil {
		return TermView{}, fmt.Errorf("presenter: term %s summary: %w", term.ID, err)
	}

	view := TermView{
		ID:    term.ID,
		Label: term.Label,
		Start: term.Start.Format(model.DateLayout),
		End:   catalog.OpenEnd,
		State: state,
		Summary: Summary{
			Label:  summaryLabel,
			Change: FormatPercentChange(summary),
		},
		Charts: make([]ChartConfig, 0, len(p.cat.Charts)),
	}
	if !term.Open {
		view.End = term.End.Format(model.DateLayout)
	}

	for _, ref := range p.cat.Charts {
		series, err := p.repo.SliceTerm(ref.Dataset, ref.Indicator, term)
		if err != nil {
			return TermView{}, fmt.Errorf("presenter: term %s chart %s: %w", term.ID, ref.Indicator, err)
		}
		title := fmt.Sprintf("%s During %s", ref.Indicator, term.Label)
		chart := LineChart(series, title, ref.Indicator)
		if id, ok := p.cat.SeriesID(ref.Dataset, ref.Indicator); ok {
			chart.Source = "FRED " + id
		}
		view.Charts = append(view.Charts, chart)
	}

	metrics.RecordTermView(term.ID)
	log.WithFields(logrus.Fields{
		"term":   term.ID,
		"charts": len(view.Charts),
	}).Debug("term view built")
	return view, nil
}

// BuildTermViews returns a view for every term in catalog order.
func (p *Presenter) BuildTermViews() ([]TermView, error) {
	views := make([]TermView, 0, len(p.cat.Terms))
	for _, term := range p.cat.Terms {
		view, err := p.BuildTermView(term.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Apply runs a card event and reports the resulting state.
func (p *Presenter) Apply(termID string, event CardEvent) (CardState, error) {
	state, err := p.cards.Apply(termID, event)
	if err != nil {
		return "", err
	}
	metrics.RecordCardEvent(string(event.Known()), string(state))
	return state, nil
}

// BuildOverview draws the full-history inflation charts.
func (p *Presenter) BuildOverview() (Overview, error) {
	names := []string{"CPI", "Core CPI", "PPI"}
	trends := make([]model.Series, 0, len(names))
	for _, name := range names {
		s, err := p.repo.Column(model.DatasetInflation, name)
		if err != nil {
			return Overview{}, fmt.Errorf("presenter: overview %s: %w", name, err)
		}
		trends = append(trends, s)
	}

	cpi := trends[0]
	sixMonth := MovingAverage(cpi, 6)
	sixMonth.Name = "6-Month MA"
	twelveMonth := MovingAverage(cpi, 12)
	twelveMonth.Name = "12-Month MA"

	averages := MultiLineChart("CPI with Moving Averages", "Index Value", cpi, sixMonth, twelveMonth)
	if len(averages.Series) == 3 {
		averages.Series[1].Dash = "dash"
		averages.Series[2].Dash = "dot"
	}

	return Overview{
		InflationTrends: MultiLineChart("Inflation Trends", "Index Value", trends...),
		CPIAverages:     averages,
	}, nil
}
