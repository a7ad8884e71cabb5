package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests              *prometheus.CounterVec
	CounterSessionsRecorded      prometheus.Counter
	CounterSessionSeconds        prometheus.Counter
	CounterTimersDiscarded       prometheus.Counter
	CounterNotes                 prometheus.Counter
	CounterFavoriteToggles       *prometheus.CounterVec
	CounterFavoriteRollbacks     prometheus.Counter
	CounterQueryCache            *prometheus.CounterVec
	CounterHandleRequestPanic    prometheus.Counter
	CounterRateLimitedRequests   prometheus.Counter
	CounterUnauthorizedRequests  prometheus.Counter
	CounterAggregationStoreFalls prometheus.Counter

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge
	GaugeOpenTimers prometheus.Gauge

	// histograms
	HistAggregationDuration  *prometheus.HistogramVec
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("practice", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("practice", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterSessionsRecorded := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_recorded",
		Help:      "The total number of persisted practice sessions",
	})
	counterSessionSeconds := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "session_active_seconds",
		Help:      "Sum of active seconds of persisted practice sessions",
	})
	counterTimersDiscarded := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "timers_discarded",
		Help:      "Timers torn down without a finish, progress lost",
	})
	counterNotes := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notes",
		Help:      "The total number of added notes",
	})
	counterFavoriteToggles := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "favorite_toggles",
		Help:      "Favorite toggles by outcome",
	}, []string{"outcome"})
	counterFavoriteRollbacks := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "favorite_rollbacks",
		Help:      "Optimistic favorite updates rolled back after a store failure",
	})
	counterQueryCache := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "query_cache",
		Help:      "Exercise list cache lookups by result",
	}, []string{"result"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterUnauthorizedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "unauthorized_requests",
		Help:      "Requests rejected without a resolved user",
	})
	counterAggregationStoreFalls := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "aggregation_client_fallbacks",
		Help:      "Aggregations reduced client side because the store has no aggregate queries",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeOpenTimers := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "open_timers",
		Help:      "Practice timers currently open",
	})

	histAggregationDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "aggregation_duration_seconds",
		Help:      "Duration of a single aggregation call in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"op"})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:              counterRequests,
		CounterSessionsRecorded:      counterSessionsRecorded,
		CounterSessionSeconds:        counterSessionSeconds,
		CounterTimersDiscarded:       counterTimersDiscarded,
		CounterNotes:                 counterNotes,
		CounterFavoriteToggles:       counterFavoriteToggles,
		CounterFavoriteRollbacks:     counterFavoriteRollbacks,
		CounterQueryCache:            counterQueryCache,
		CounterHandleRequestPanic:    counterHandleRequestPanic,
		CounterRateLimitedRequests:   counterRateLimitedRequests,
		CounterUnauthorizedRequests:  counterUnauthorizedRequests,
		CounterAggregationStoreFalls: counterAggregationStoreFalls,
		GaugeRequests:                gaugeRequests,
		GaugeLifeSignal:              gaugeLifeSignal,
		GaugeOpenTimers:              gaugeOpenTimers,
		HistAggregationDuration:      histAggregationDuration,
		HistogramRequestDuration:     histogramRequestDuration,
	}
}
