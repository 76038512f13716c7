package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"policydash/internal/model"
)

const dateHeader = "date"

// WriteCSV writes the table with a header row of column names. The first
// column is the ISO date; missing cells are written empty.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	header := append([]string{dateHeader}, t.names...)
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for row, date := range t.dates {
		record[0] = date.Format(model.DateLayout)
		for i, name := range t.names {
			v := t.columns[name][row]
			if math.IsNaN(v) {
				record[i+1] = ""
				continue
			}
			record[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a table written by WriteCSV. Whatever the first header
// cell says, the first column is read as the date index.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("table: empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("table: read header: %w", err)
	}
	if len(header) < 1 {
		return nil, errors.New("table: csv header has no date column")
	}

	names := make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		names = append(names, strings.TrimSpace(h))
	}
	t, err := New(names)
	if err != nil {
		return nil, err
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("table: line %d: %w", line, err)
		}
		date, err := parseDate(record[0])
		if err != nil {
			return nil, fmt.Errorf("table: line %d: %w", line, err)
		}
		values := make([]float64, len(names))
		for i := range names {
			values[i] = math.NaN()
			if i+1 >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[i+1])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("table: line %d column %q: %w", line, names[i], err)
			}
			values[i] = v
		}
		if err := t.AppendRow(date, values); err != nil {
			return nil, fmt.Errorf("table: line %d: %w", line, err)
		}
	}
	return t, nil
}

// parseDate accepts plain ISO dates and the timestamp form pandas writes
// for a datetime index.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{model.DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if d, err := time.Parse(layout, value); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
