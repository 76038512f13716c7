// Package csvfile stores indicator tables as flat CSV cache files, one per
// dataset, inside a data directory.
package csvfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"policydash/internal/model"
	"policydash/internal/store"
	"policydash/internal/table"
)

var log = logrus.WithField("component", "csvfile")

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("csvfile: data directory is required")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Path(dataset model.Dataset) string {
	return filepath.Join(s.dir, dataset.File)
}

// SaveTable replaces the cache file wholesale. The table is written to a
// temporary file first so readers never see a partial file; concurrent
// writers race and the last rename wins.
func (s *Store) SaveTable(ctx context.Context, dataset model.Dataset, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("csvfile: create data dir: %w", err)
	}

	path := s.Path(dataset)
	tmp, err := os.CreateTemp(s.dir, "."+dataset.File+".*.tmp")
	if err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := table.WriteCSV(tmp, t); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csvfile: write %s: %w", dataset.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}

	if info, err := os.Stat(path); err == nil {
		log.WithFields(logrus.Fields{
			"dataset": dataset.ID,
			"path":    path,
			"rows":    t.Len(),
			"size":    humanize.Bytes(uint64(info.Size())),
		}).Info("cache file written")
	}
	return nil
}

func (s *Store) LoadTable(ctx context.Context, dataset model.Dataset) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(dataset)
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (%s)", store.ErrNotFound, dataset.ID, path)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t, err := table.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("csvfile: %s: %w", path, err)
	}
	return t, nil
}

func (s *Store) Close() error {
	return nil
}
