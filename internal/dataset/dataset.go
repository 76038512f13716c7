// Package dataset provides the read-only data-access object the dashboard is
// built on. Tables are loaded once at startup and never written back.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"policydash/internal/model"
	"policydash/internal/store"
	"policydash/internal/table"
)

var ErrDatasetNotFound = errors.New("dataset: not found")

var log = logrus.WithField("component", "dataset")

type Repository struct {
	tables map[model.DatasetID]*table.Table
}

func NewRepository(tables map[model.DatasetID]*table.Table) *Repository {
	copied := make(map[model.DatasetID]*table.Table, len(tables))
	for id, t := range tables {
		copied[id] = t
	}
	return &Repository{tables: copied}
}

// Load reads every dataset from st. A dataset that has never been collected
// is an error: the dashboard has nothing to show without it.
func Load(ctx context.Context, st store.Store, datasets []model.Dataset) (*Repository, error) {
	tables := make(map[model.DatasetID]*table.Table, len(datasets))
	for _, ds := range datasets {
		t, err := st.LoadTable(ctx, ds)
		if err != nil {
			return nil, fmt.Errorf("dataset: load %s: %w", ds.ID, err)
		}
		missing := MissingIndicators(t, ds)
		entry := log.WithFields(logrus.Fields{
			"dataset": ds.ID,
			"rows":    t.Len(),
			"columns": len(t.Columns()),
		})
		if len(missing) > 0 {
			entry.WithField("missing", missing).Warn("dataset loaded without some indicators")
		} else {
			entry.Info("dataset loaded")
		}
		tables[ds.ID] = t
	}
	return &Repository{tables: tables}, nil
}

// MissingIndicators lists the dataset's indicators that have no column in t,
// e.g. a cache written before the catalog gained a series.
func MissingIndicators(t *table.Table, ds model.Dataset) []string {
	var missing []string
	for _, ind := range ds.Indicators {
		if !t.HasColumn(ind.Name) {
			missing = append(missing, ind.Name)
		}
	}
	return missing
}

func (r *Repository) Table(id model.DatasetID) (*table.Table, error) {
	t, ok := r.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return t, nil
}

// Slice returns one indicator restricted to [start, end], or through the last
// row when open is set. An unknown indicator fails with table.ErrColumnNotFound.
func (r *Repository) Slice(id model.DatasetID, indicator string, start, end time.Time, open bool) (model.Series, error) {
	t, err := r.Table(id)
	if err != nil {
		return model.Series{}, err
	}
	return t.Slice(indicator, start, end, open)
}

func (r *Repository) SliceTerm(id model.DatasetID, indicator string, term model.Term) (model.Series, error) {
	return r.Slice(id, indicator, term.Start, term.End, term.Open)
}

func (r *Repository) Column(id model.DatasetID, indicator string) (model.Series, error) {
	t, err := r.Table(id)
	if err != nil {
		return model.Series{}, err
	}
	return t.Column(indicator)
}
