// Package collector fetches every indicator of a dataset, joins them into one
// table and overwrites the dataset's cache.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"policydash/internal/metrics"
	"policydash/internal/model"
	"policydash/internal/providers"
	"policydash/internal/store"
	"policydash/internal/table"
)

var log = logrus.WithField("component", "collector")

type Collector struct {
	provider providers.Provider
	cache    store.Store
	mirror   store.Store
	start    time.Time
}

// New wires a collector. mirror may be nil; cache is required.
func New(provider providers.Provider, cache, mirror store.Store, start time.Time) *Collector {
	if mirror == nil {
		mirror = &store.NopStore{}
	}
	return &Collector{
		provider: provider,
		cache:    cache,
		mirror:   mirror,
		start:    start,
	}
}

// Run fetches the dataset and writes it to the cache and the mirror. Fetches
// are sequential; the first failure aborts the run before anything is written.
// The cache is authoritative: once it is written the run succeeds, and a
// mirror failure is only logged and kept in the run record.
func (c *Collector) Run(ctx context.Context, dataset model.Dataset) (*table.Table, error) {
	run := model.Run{
		ID:        uuid.NewString(),
		Dataset:   dataset.ID,
		StartedAt: time.Now().UTC(),
		Status:    model.RunFailed,
	}
	logger := log.WithFields(logrus.Fields{
		"dataset":  dataset.ID,
		"run":      run.ID,
		"provider": c.provider.Name(),
	})
	logger.WithField("indicators", len(dataset.Indicators)).Info("collector run started")

	t, err := c.fetch(ctx, dataset)
	if err == nil {
		err = c.cache.SaveTable(ctx, dataset, t)
	}

	run.FinishedAt = time.Now().UTC()
	if err != nil {
		run.Error = err.Error()
		c.recordRun(ctx, run)
		logger.WithError(err).Error("collector run failed")
		return nil, err
	}

	run.Status = model.RunSucceeded
	run.Rows = t.Len()
	if err := c.mirror.SaveTable(ctx, dataset, t); err != nil {
		run.Error = fmt.Sprintf("mirror: %v", err)
		logger.WithError(err).Warn("mirror write failed, cache is up to date")
	}
	c.recordRun(ctx, run)
	logger.WithFields(logrus.Fields{
		"rows":     run.Rows,
		"duration": run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
	}).Info("collector run complete")
	return t, nil
}

// RunAll runs each dataset in order and stops at the first failure.
func (c *Collector) RunAll(ctx context.Context, datasets []model.Dataset) error {
	for _, dataset := range datasets {
		if _, err := c.Run(ctx, dataset); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) fetch(ctx context.Context, dataset model.Dataset) (*table.Table, error) {
	all := make([]model.Series, 0, len(dataset.Indicators))
	for _, indicator := range dataset.Indicators {
		began := time.Now()
		series, err := c.provider.FetchSeries(ctx, indicator.SeriesID, c.start)
		elapsed := time.Since(began).Seconds()
		if err != nil {
			metrics.RecordFetch(string(dataset.ID), "error", elapsed)
			return nil, fmt.Errorf("collector: fetch %q (%s): %w", indicator.Name, indicator.SeriesID, err)
		}
		metrics.RecordFetch(string(dataset.ID), "ok", elapsed)
		log.WithFields(logrus.Fields{
			"dataset":      dataset.ID,
			"indicator":    indicator.Name,
			"series":       indicator.SeriesID,
			"observations": series.Len(),
		}).Debug("series fetched")

		series.Name = indicator.Name
		all = append(all, series)
	}

	t, err := table.Join(all...)
	if err != nil {
		return nil, fmt.Errorf("collector: %s: %w", dataset.ID, err)
	}
	if dataset.ForwardFill {
		t.ForwardFill()
	}
	return t, nil
}

func (c *Collector) recordRun(ctx context.Context, run model.Run) {
	recorder, ok := c.mirror.(store.RunRecorder)
	if !ok {
		return
	}
	if err := recorder.RecordRun(ctx, run); err != nil {
		log.WithError(err).WithField("run", run.ID).Warn("failed to record collector run")
	}
}
