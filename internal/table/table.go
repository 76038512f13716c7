// Package table implements the date-indexed indicator table shared by the
// collector, the cache stores and the presenter.
package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"policydash/internal/model"
)

var (
	ErrColumnNotFound  = errors.New("table: column not found")
	ErrDuplicateColumn = errors.New("table: duplicate column")
)

// Table holds one row per date in ascending order. Missing cells are NaN.
type Table struct {
	dates   []time.Time
	names   []string
	columns map[string][]float64
}

func New(names []string) (*Table, error) {
	t := &Table{
		names:   make([]string, 0, len(names)),
		columns: make(map[string][]float64, len(names)),
	}
	for _, name := range names {
		if _, ok := t.columns[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
		}
		t.names = append(t.names, name)
		t.columns[name] = nil
	}
	return t, nil
}

// Join outer-joins the series on their dates. Column order follows the
// argument order and each series name becomes a column name.
func Join(series ...model.Series) (*Table, error) {
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
	}
	t, err := New(names)
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]struct{})
	for _, s := range series {
		for _, obs := range s.Observations {
			seen[normalize(obs.Date)] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}
	t.dates = dates
	for _, s := range series {
		column := nanColumn(len(dates))
		for _, obs := range s.Observations {
			column[index[normalize(obs.Date)]] = obs.Value
		}
		t.columns[s.Name] = column
	}
	return t, nil
}

// AppendRow adds a row. Rows must be appended in ascending date order and
// values must be given in column order.
func (t *Table) AppendRow(date time.Time, values []float64) error {
	if len(values) != len(t.names) {
		return fmt.Errorf("table: row has %d values, want %d", len(values), len(t.names))
	}
	date = normalize(date)
	if n := len(t.dates); n > 0 && !t.dates[n-1].Before(date) {
		return fmt.Errorf("table: row %s is not after %s", date.Format(model.DateLayout), t.dates[n-1].Format(model.DateLayout))
	}
	t.dates = append(t.dates, date)
	for i, name := range t.names {
		t.columns[name] = append(t.columns[name], values[i])
	}
	return nil
}

// ForwardFill replaces each missing cell with the last observed value above
// it. Leading gaps stay missing.
func (t *Table) ForwardFill() {
	for _, name := range t.names {
		column := t.columns[name]
		last := math.NaN()
		for i, v := range column {
			if math.IsNaN(v) {
				column[i] = last
				continue
			}
			last = v
		}
	}
}

func (t *Table) Len() int {
	return len(t.dates)
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Value returns the cell at row for the named column. ok is false when the
// cell is missing.
func (t *Table) Value(row int, name string) (float64, bool) {
	column, found := t.columns[name]
	if !found || row < 0 || row >= len(column) {
		return 0, false
	}
	v := column[row]
	return v, !math.IsNaN(v)
}

func (t *Table) Column(name string) (model.Series, error) {
	return t.slice(name, 0, len(t.dates))
}

// Slice returns the named column restricted to [start, end]. When open is set
// the range runs through the last row and end is ignored. Missing cells are
// dropped from the result.
func (t *Table) Slice(name string, start, end time.Time, open bool) (model.Series, error) {
	start = normalize(start)
	from := sort.Search(len(t.dates), func(i int) bool { return !t.dates[i].Before(start) })
	to := len(t.dates)
	if !open {
		end = normalize(end)
		to = sort.Search(len(t.dates), func(i int) bool { return t.dates[i].After(end) })
	}
	if to < from {
		to = from
	}
	return t.slice(name, from, to)
}

func (t *Table) slice(name string, from, to int) (model.Series, error) {
	column, ok := t.columns[name]
	if !ok {
		return model.Series{}, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	series := model.Series{Name: name, Observations: make([]model.Observation, 0, to-from)}
	for i := from; i < to; i++ {
		if math.IsNaN(column[i]) {
			continue
		}
		series.Observations = append(series.Observations, model.Observation{Date: t.dates[i], Value: column[i]})
	}
	return series, nil
}

func normalize(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func nanColumn(n int) []float64 {
	column := make([]float64, n)
	for i := range column {
		column[i] = math.NaN()
	}
	return column
}
