// Package metrics provides Prometheus metrics for the collector and the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts remote series fetches.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policydash",
			Name:      "series_fetch_total",
			Help:      "Total number of remote series fetches",
		},
		[]string{"dataset", "status"},
	)

	// FetchDuration measures remote series fetch duration.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "policydash",
			Name:      "series_fetch_duration_seconds",
			Help:      "Duration of remote series fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"dataset"},
	)

	// CardEventsTotal counts card interactions by event and resulting state.
	CardEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policydash",
			Name:      "card_events_total",
			Help:      "Total number of card interactions",
		},
		[]string{"event", "state"},
	)

	// TermViewsTotal counts term view computations.
	TermViewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policydash",
			Name:      "term_views_total",
			Help:      "Total number of term views computed",
		},
		[]string{"term"},
	)
)

// RecordFetch records a remote series fetch.
func RecordFetch(dataset, status string, duration float64) {
	FetchTotal.WithLabelValues(dataset, status).Inc()
	FetchDuration.WithLabelValues(dataset).Observe(duration)
}

func RecordCardEvent(event, state string) {
	CardEventsTotal.WithLabelValues(event, state).Inc()
}

func RecordTermView(term string) {
	TermViewsTotal.WithLabelValues(term).Inc()
}
