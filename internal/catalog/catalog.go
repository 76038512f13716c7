// Package catalog holds the fixed series mappings, presidential terms and
// card layout. The data is embedded and parsed once at startup; callers get
// copies and never mutate shared state.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"policydash/internal/model"
)

// OpenEnd marks a term that runs through the latest available row.
const OpenEnd = "present"

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	ErrDuplicateIndicator = errors.New("catalog: duplicate indicator")
	ErrUnknownDataset     = errors.New("catalog: unknown dataset")
	ErrUnknownTerm        = errors.New("catalog: unknown term")
)

// ChartRef names one indicator column in one dataset.
type ChartRef struct {
	Dataset   model.DatasetID
	Indicator string
}

type Catalog struct {
	ObservationStart time.Time
	Datasets         []model.Dataset
	Terms            []model.Term
	Summary          ChartRef
	Charts           []ChartRef
}

type fileIndicator struct {
	Name     string `yaml:"name"`
	SeriesID string `yaml:"series_id"`
}

type fileDataset struct {
	ID          string          `yaml:"id"`
	File        string          `yaml:"file"`
	ForwardFill bool            `yaml:"forward_fill"`
	Indicators  []fileIndicator `yaml:"indicators"`
}

type fileTerm struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type fileChartRef struct {
	Dataset   string `yaml:"dataset"`
	Indicator string `yaml:"indicator"`
}

type fileCatalog struct {
	ObservationStart string        `yaml:"observation_start"`
	Datasets         []fileDataset `yaml:"datasets"`
	Terms            []fileTerm    `yaml:"terms"`
	Card             struct {
		Summary fileChartRef   `yaml:"summary"`
		Charts  []fileChartRef `yaml:"charts"`
	} `yaml:"card"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	var raw fileCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	start, err := time.Parse(model.DateLayout, strings.TrimSpace(raw.ObservationStart))
	if err != nil {
		return nil, fmt.Errorf("catalog: observation_start: %w", err)
	}

	cat := &Catalog{ObservationStart: start}
	for _, ds := range raw.Datasets {
		dataset := model.Dataset{
			ID:          model.DatasetID(strings.TrimSpace(ds.ID)),
			File:        strings.TrimSpace(ds.File),
			ForwardFill: ds.ForwardFill,
		}
		if dataset.ID == "" || dataset.File == "" {
			return nil, errors.New("catalog: dataset id and file are required")
		}
		for _, ind := range ds.Indicators {
			dataset.Indicators = append(dataset.Indicators, model.Indicator{
				Name:     strings.TrimSpace(ind.Name),
				SeriesID: strings.TrimSpace(ind.SeriesID),
			})
		}
		if err := validateIndicators(dataset); err != nil {
			return nil, err
		}
		cat.Datasets = append(cat.Datasets, dataset)
	}

	for _, ft := range raw.Terms {
		term, err := parseTerm(ft)
		if err != nil {
			return nil, err
		}
		cat.Terms = append(cat.Terms, term)
	}

	cat.Summary, err = cat.resolveRef(raw.Card.Summary)
	if err != nil {
		return nil, err
	}
	for _, ref := range raw.Card.Charts {
		resolved, err := cat.resolveRef(ref)
		if err != nil {
			return nil, err
		}
		cat.Charts = append(cat.Charts, resolved)
	}
	return cat, nil
}

// validateIndicators enforces a one-to-one mapping between display names and
// series identifiers within a dataset.
func validateIndicators(dataset model.Dataset) error {
	names := make(map[string]struct{}, len(dataset.Indicators))
	ids := make(map[string]struct{}, len(dataset.Indicators))
	for _, ind := range dataset.Indicators {
		if ind.Name == "" || ind.SeriesID == "" {
			return fmt.Errorf("catalog: dataset %s: indicator name and series_id are required", dataset.ID)
		}
		if _, ok := names[ind.Name]; ok {
			return fmt.Errorf("%w: dataset %s name %q", ErrDuplicateIndicator, dataset.ID, ind.Name)
		}
		if _, ok := ids[ind.SeriesID]; ok {
			return fmt.Errorf("%w: dataset %s series %q", ErrDuplicateIndicator, dataset.ID, ind.SeriesID)
		}
		names[ind.Name] = struct{}{}
		ids[ind.SeriesID] = struct{}{}
	}
	return nil
}

func parseTerm(ft fileTerm) (model.Term, error) {
	term := model.Term{
		ID:    strings.TrimSpace(ft.ID),
		Label: strings.TrimSpace(ft.Label),
	}
	if term.ID == "" || term.Label == "" {
		return model.Term{}, errors.New("catalog: term id and label are required")
	}
	start, err := time.Parse(model.DateLayout, strings.TrimSpace(ft.Start))
	if err != nil {
		return model.Term{}, fmt.Errorf("catalog: term %s start: %w", term.ID, err)
	}
	term.Start = start

	end := strings.TrimSpace(ft.End)
	if strings.EqualFold(end, OpenEnd) {
		term.Open = true
		return term, nil
	}
	term.End, err = time.Parse(model.DateLayout, end)
	if err != nil {
		return model.Term{}, fmt.Errorf("catalog: term %s end: %w", term.ID, err)
	}
	if term.End.Before(term.Start) {
		return model.Term{}, fmt.Errorf("catalog: term %s ends before it starts", term.ID)
	}
	return term, nil
}

func (c *Catalog) resolveRef(ref fileChartRef) (ChartRef, error) {
	id := model.DatasetID(strings.TrimSpace(ref.Dataset))
	if _, err := c.Dataset(id); err != nil {
		return ChartRef{}, err
	}
	return ChartRef{Dataset: id, Indicator: strings.TrimSpace(ref.Indicator)}, nil
}

func (c *Catalog) Dataset(id model.DatasetID) (model.Dataset, error) {
	for _, ds := range c.Datasets {
		if ds.ID == id {
			return ds, nil
		}
	}
	return model.Dataset{}, fmt.Errorf("%w: %s", ErrUnknownDataset, id)
}

func (c *Catalog) Term(id string) (model.Term, error) {
	for _, term := range c.Terms {
		if term.ID == id {
			return term, nil
		}
	}
	return model.Term{}, fmt.Errorf("%w: %s", ErrUnknownTerm, id)
}

// SeriesID returns the FRED identifier behind a display name.
func (c *Catalog) SeriesID(dataset model.DatasetID, name string) (string, bool) {
	ds, err := c.Dataset(dataset)
	if err != nil {
		return "", false
	}
	for _, ind := range ds.Indicators {
		if ind.Name == name {
			return ind.SeriesID, true
		}
	}
	return "", false
}
