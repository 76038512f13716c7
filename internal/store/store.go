package store

import (
	"context"
	"errors"

	"policydash/internal/model"
	"policydash/internal/table"
)

// ErrNotFound is returned by LoadTable when nothing has been cached for a
// dataset yet.
var ErrNotFound = errors.New("store: dataset not cached")

type Store interface {
	SaveTable(ctx context.Context, dataset model.Dataset, t *table.Table) error
	LoadTable(ctx context.Context, dataset model.Dataset) (*table.Table, error)
	Close() error
}

// RunRecorder is implemented by stores that keep a history of collector runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run model.Run) error
}

type NopStore struct{}

func (s *NopStore) SaveTable(ctx context.Context, dataset model.Dataset, t *table.Table) error {
	_ = ctx
	_ = dataset
	_ = t
	return nil
}

func (s *NopStore) LoadTable(ctx context.Context, dataset model.Dataset) (*table.Table, error) {
	_ = ctx
	_ = dataset
	return nil, ErrNotFound
}

func (s *NopStore) RecordRun(ctx context.Context, run model.Run) error {
	_ = ctx
	_ = run
	return nil
}

func (s *NopStore) Close() error {
	return nil
}
