package observability

import (
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the aggregation engine.
type Metrics struct {
    // Cache outcomes per request: hit, miss, expired, stale.
    CacheEventsTotal *prometheus.CounterVec

    // Per-source fetch outcomes and latency.
    SourceFetchesTotal  *prometheus.CounterVec
    SourceFetchDuration *prometheus.HistogramVec

    // Whole-refresh latency by terminal status.
    RefreshDuration *prometheus.HistogramVec

    // Store failures by operation (get, put).
    StoreErrorsTotal *prometheus.CounterVec
}

var durationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30}

var (
    globalMetrics *Metrics
    metricsOnce   sync.Once
)

// GetMetrics returns the process-wide metrics, registering them on the
// default registry on first use.
func GetMetrics() *Metrics {
    metricsOnce.Do(func() {
        globalMetrics = NewMetrics(prometheus.DefaultRegisterer)
    })
    return globalMetrics
}

// NewMetrics creates and registers all instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
    if reg == nil {
        reg = prometheus.DefaultRegisterer
    }
    factory := promauto.With(reg)

    return &Metrics{
        CacheEventsTotal: factory.NewCounterVec(
            prometheus.CounterOpts{
                Namespace: "tickerhub",
                Subsystem: "cache",
                Name:      "events_total",
                Help:      "Cache lookup outcomes per aggregation request",
            },
            []string{"result"},
        ),
        SourceFetchesTotal: factory.NewCounterVec(
            prometheus.CounterOpts{
                Namespace: "tickerhub",
                Subsystem: "source",
                Name:      "fetches_total",
                Help:      "Source fetch attempts by outcome",
            },
            []string{"source", "status"},
        ),
        SourceFetchDuration: factory.NewHistogramVec(
            prometheus.HistogramOpts{
                Namespace: "tickerhub",
                Subsystem: "source",
                Name:      "fetch_duration_seconds",
                Help:      "Source fetch latency",
                Buckets:   durationBuckets,
            },
            []string{"source"},
        ),
        RefreshDuration: factory.NewHistogramVec(
            prometheus.HistogramOpts{
                Namespace: "tickerhub",
                Subsystem: "refresh",
                Name:      "duration_seconds",
                Help:      "End-to-end refresh latency by terminal status",
                Buckets:   durationBuckets,
            },
            []string{"status"},
        ),
        StoreErrorsTotal: factory.NewCounterVec(
            prometheus.CounterOpts{
                Namespace: "tickerhub",
                Subsystem: "store",
                Name:      "errors_total",
                Help:      "Persistence failures by operation",
            },
            []string{"op"},
        ),
    }
}

// ObserveFetch records one source fetch attempt.
func (m *Metrics) ObserveFetch(source string, took time.Duration, err error) {
    status := "ok"
    if err != nil {
        status = "error"
    }
    m.SourceFetchesTotal.WithLabelValues(source, status).Inc()
    m.SourceFetchDuration.WithLabelValues(source).Observe(took.Seconds())
}
