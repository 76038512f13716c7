package model

import "time"

// DateLayout is the ISO date format used by the cache files and the FRED API.
const DateLayout = "2006-01-02"

type DatasetID string

const (
	DatasetInflation DatasetID = "inflation"
	DatasetPolicy    DatasetID = "policy"
)

type Indicator struct {
	Name     string
	SeriesID string
}

type Dataset struct {
	ID          DatasetID
	File        string
	ForwardFill bool
	Indicators  []Indicator
}

// Term is a fixed date range. When Open is set, End is ignored and the range
// runs through the last available row.
type Term struct {
	ID    string
	Label string
	Start time.Time
	End   time.Time
	Open  bool
}

type Observation struct {
	Date  time.Time
	Value float64
}

// Series is a date-ordered list of observations for one indicator.
type Series struct {
	Name         string
	Observations []Observation
}

func (s Series) Len() int {
	return len(s.Observations)
}

func (s Series) First() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	return s.Observations[0], true
}

func (s Series) Last() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

type Run struct {
	ID         string
	Dataset    DatasetID
	StartedAt  time.Time
	FinishedAt time.Time
	Rows       int
	Status     RunStatus
	Error      string
}
