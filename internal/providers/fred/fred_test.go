package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewWithConfig(Config{
		BaseURL:         srv.URL,
		APIKey:          "test-key",
		RateLimitPerSec: 1000,
		RateLimitBurst:  10,
		Timeout:         5 * time.Second,
	})
	require.NoError(t, err)
	return p
}

func TestNewWithConfigRequiresAPIKey(t *testing.T) {
	_, err := NewWithConfig(Config{APIKey: "  "})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestFetchSeries(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fred/series/observations", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "CPIAUCSL", q.Get("series_id"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "json", q.Get("file_type"))
		assert.Equal(t, "2000-01-01", q.Get("observation_start"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[
			{"date":"2000-01-01","value":"169.3"},
			{"date":"2000-02-01","value":"."},
			{"date":"2000-03-01","value":"171.0"}
		]}`))
	})

	series, err := p.FetchSeries(context.Background(), "CPIAUCSL", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "CPIAUCSL", series.Name)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 169.3, series.Observations[0].Value)
	assert.Equal(t, time.March, series.Observations[1].Date.Month())
}

func TestFetchSeriesUnknownSeries(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":400,"error_message":"Bad Request.  The series does not exist."}`))
	})

	_, err := p.FetchSeries(context.Background(), "INFLATIONRATE", time.Time{})
	assert.ErrorIs(t, err, ErrNoSeries)
}

func TestFetchSeriesServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := p.FetchSeries(context.Background(), "UNRATE", time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNRATE")
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseObservationsRejectsBadValues(t *testing.T) {
	_, err := parseObservations("GDP", []observation{{Date: "2000-01-01", Value: "n/a"}})
	assert.Error(t, err)
}

func TestNewWithConfigTimeout(t *testing.T) {
	p, err := NewWithConfig(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Zero(t, p.client.GetClient().Timeout)

	p, err = NewWithConfig(Config{APIKey: "test-key", Timeout: 10 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, p.client.GetClient().Timeout)
}
