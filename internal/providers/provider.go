package providers

import (
	"context"
	"time"

	"policydash/internal/model"
)

// Provider fetches one remote time series from start onwards.
type Provider interface {
	Name() string
	FetchSeries(ctx context.Context, seriesID string, start time.Time) (model.Series, error)
}
