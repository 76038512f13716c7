package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"policydash/internal/model"
	"policydash/internal/store"
	"policydash/internal/table"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveTable replaces everything stored for the dataset with the table.
func (s *Store) SaveTable(ctx context.Context, dataset model.Dataset, t *table.Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		`DELETE FROM indicator_observations WHERE dataset = ?`,
		`DELETE FROM indicator_columns WHERE dataset = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, string(dataset.ID)); err != nil {
			return err
		}
	}

	columns := t.Columns()
	for position, name := range columns {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO indicator_columns (dataset, position, indicator) VALUES (?, ?, ?)`,
			string(dataset.ID), position, name,
		); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO indicator_observations (dataset, indicator, date, value, ingested_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for row, date := range t.Dates() {
		for _, name := range columns {
			value, ok := t.Value(row, name)
			if !ok {
				continue
			}
			if _, err = stmt.ExecContext(ctx, string(dataset.ID), name, date.Format(model.DateLayout), value, now); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (s *Store) LoadTable(ctx context.Context, dataset model.Dataset) (*table.Table, error) {
	columns, err := s.columns(ctx, dataset.ID)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, dataset.ID)
	}
	position := make(map[string]int, len(columns))
	for i, name := range columns {
		position[name] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, indicator, value
		FROM indicator_observations
		WHERE dataset = ?
		ORDER BY date
	`, string(dataset.ID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t, err := table.New(columns)
	if err != nil {
		return nil, err
	}

	var (
		current string
		values  []float64
	)
	flush := func() error {
		if current == "" {
			return nil
		}
		date, err := time.Parse(model.DateLayout, current)
		if err != nil {
			return err
		}
		return t.AppendRow(date, values)
	}

	for rows.Next() {
		var (
			date      string
			indicator string
			value     float64
		)
		if err := rows.Scan(&date, &indicator, &value); err != nil {
			return nil, err
		}
		if date != current {
			if err := flush(); err != nil {
				return nil, err
			}
			current = date
			values = make([]float64, len(columns))
			for i := range values {
				values[i] = math.NaN()
			}
		}
		if i, ok := position[indicator]; ok {
			values[i] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) RecordRun(ctx context.Context, run model.Run) error {
	var finishedAt any
	if !run.FinishedAt.IsZero() {
		finishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collector_runs (id, dataset, started_at, finished_at, rows, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			rows = excluded.rows,
			status = excluded.status,
			error = excluded.error
	`,
		run.ID,
		string(run.Dataset),
		run.StartedAt.UTC().Format(time.RFC3339),
		finishedAt,
		run.Rows,
		string(run.Status),
		run.Error,
	)
	return err
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dataset, started_at, finished_at, rows, status, error
		FROM collector_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]model.Run, 0)
	for rows.Next() {
		var (
			run        model.Run
			dataset    string
			startedAt  string
			finishedAt sql.NullString
			status     string
		)
		if err := rows.Scan(&run.ID, &dataset, &startedAt, &finishedAt, &run.Rows, &status, &run.Error); err != nil {
			return nil, err
		}
		run.Dataset = model.DatasetID(dataset)
		run.Status = model.RunStatus(status)
		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if finishedAt.Valid {
			run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) columns(ctx context.Context, dataset model.DatasetID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT indicator FROM indicator_columns WHERE dataset = ? ORDER BY position
	`, string(dataset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS indicator_columns (
			dataset TEXT NOT NULL,
			position INTEGER NOT NULL,
			indicator TEXT NOT NULL,
			PRIMARY KEY (dataset, indicator)
		);`,
		`CREATE TABLE IF NOT EXISTS indicator_observations (
			dataset TEXT NOT NULL,
			indicator TEXT NOT NULL,
			date TEXT NOT NULL,
			value REAL NOT NULL,
			ingested_at TEXT NOT NULL,
			PRIMARY KEY (dataset, indicator, date)
		);`,
		`CREATE TABLE IF NOT EXISTS collector_runs (
			id TEXT PRIMARY KEY,
			dataset TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			rows INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
