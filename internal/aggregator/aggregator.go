package aggregator

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "strings"
    "time"

    "github.com/google/uuid"
    "golang.org/x/sync/singleflight"

    "tickerhub/internal/merge"
    "tickerhub/internal/observability"
    "tickerhub/internal/record"
    "tickerhub/internal/source"
    "tickerhub/internal/store"
)

// Provenance values reported with every served record.
const (
    ProvenanceCache    = "cache"
    ProvenanceScraping = "scraping"
    ProvenanceStale    = "stale"
)

// DefaultFetchTimeout bounds each source fetch.
const DefaultFetchTimeout = 15 * time.Second

// Result is a served record plus where it came from.
type Result struct {
    Record *record.TickerRecord
    Source string
}

// AggregateError is the hard-failure case: every source failed and no
// prior record exists to fall back on.
type AggregateError struct {
    Ticker string
    Causes []error
}

func (e *AggregateError) Error() string {
    msgs := make([]string, 0, len(e.Causes))
    for _, c := range e.Causes {
        msgs = append(msgs, c.Error())
    }
    return fmt.Sprintf("all sources failed for %s: %s", e.Ticker, strings.Join(msgs, "; "))
}

func (e *AggregateError) Unwrap() []error { return e.Causes }

// Config tunes the aggregator.
type Config struct {
    FetchTimeout time.Duration
    Logger       *slog.Logger
}

// Aggregator is the entry point of the engine. Given a ticker it serves
// the cached record while fresh, otherwise fans out to all sources,
// merges the fragments that succeeded and persists the result.
// Refreshes are deduplicated per ticker: concurrent callers share one
// in-flight refresh instead of triggering a fetch storm.
type Aggregator struct {
    store   store.Store
    sources []source.Source
    merger  *merge.Merger

    timeout time.Duration
    log     *slog.Logger
    metrics *observability.Metrics
    group   singleflight.Group
    now     func() time.Time
}

func New(st store.Store, sources []source.Source, merger *merge.Merger, cfg Config) *Aggregator {
    if cfg.FetchTimeout <= 0 {
        cfg.FetchTimeout = DefaultFetchTimeout
    }
    if cfg.Logger == nil {
        cfg.Logger = slog.Default()
    }
    return &Aggregator{
        store:   st,
        sources: sources,
        merger:  merger,
        timeout: cfg.FetchTimeout,
        log:     cfg.Logger,
        metrics: observability.GetMetrics(),
        now:     time.Now,
    }
}

// GetOrRefresh returns the record for ticker, from cache when fresh,
// otherwise refreshed from the sources. An expired record is served
// as-is (provenance "stale") when every source fails.
func (a *Aggregator) GetOrRefresh(ctx context.Context, ticker string) (*Result, error) {
    t, err := record.NormalizeTicker(ticker)
    if err != nil {
        return nil, err
    }
    prior := a.load(ctx, t)
    if prior != nil && prior.Fresh(a.now()) {
        a.metrics.CacheEventsTotal.WithLabelValues("hit").Inc()
        return &Result{Record: prior, Source: ProvenanceCache}, nil
    }
    if prior == nil {
        a.metrics.CacheEventsTotal.WithLabelValues("miss").Inc()
    } else {
        a.metrics.CacheEventsTotal.WithLabelValues("expired").Inc()
    }
    return a.refreshShared(t, prior)
}

// ForceRefresh bypasses the freshness check but still joins any
// in-flight refresh for the same ticker.
func (a *Aggregator) ForceRefresh(ctx context.Context, ticker string) (*Result, error) {
    t, err := record.NormalizeTicker(ticker)
    if err != nil {
        return nil, err
    }
    return a.refreshShared(t, a.load(ctx, t))
}

func (a *Aggregator) refreshShared(ticker string, prior *record.TickerRecord) (*Result, error) {
    v, err, _ := a.group.Do(ticker, func() (any, error) {
        return a.refresh(ticker, prior)
    })
    if err != nil {
        return nil, err
    }
    return v.(*Result), nil
}

// load reads the prior record; read failures count as a cache miss so a
// broken store never blocks a refresh.
func (a *Aggregator) load(ctx context.Context, ticker string) *record.TickerRecord {
    rec, err := a.store.Get(ctx, ticker)
    if err != nil {
        if !errors.Is(err, store.ErrNotFound) {
            a.metrics.StoreErrorsTotal.WithLabelValues("get").Inc()
            a.log.Warn("cache read failed, treating as miss", "ticker", ticker, "error", err)
        }
        return nil
    }
    return rec
}

type fetchResult struct {
    name    string
    partial *source.Partial
    err     error
}

// refresh runs detached from any caller context so that an abandoned
// request still warms the cache for the next one.
func (a *Aggregator) refresh(ticker string, prior *record.TickerRecord) (*Result, error) {
    start := time.Now()
    log := a.log.With("ticker", ticker, "run_id", uuid.NewString())
    ctx := context.Background()

    ch := make(chan fetchResult, len(a.sources))
    for _, s := range a.sources {
        s := s
        go func() {
            fctx, cancel := context.WithTimeout(ctx, a.timeout)
            defer cancel()
            t0 := time.Now()
            p, err := s.Fetch(fctx, ticker)
            a.metrics.ObserveFetch(s.Name(), time.Since(t0), err)
            if err != nil {
                ch <- fetchResult{name: s.Name(), err: &source.FetchError{Source: s.Name(), Err: err}}
                return
            }
            ch <- fetchResult{name: s.Name(), partial: p}
        }()
    }

    var parts []*source.Partial
    var failures []error
    for range a.sources {
        r := <-ch
        if r.err != nil {
            log.Warn("source fetch failed", "source", r.name, "error", r.err)
            failures = append(failures, r.err)
            continue
        }
        parts = append(parts, r.partial)
    }

    if len(parts) == 0 {
        if prior != nil {
            a.metrics.CacheEventsTotal.WithLabelValues("stale").Inc()
            a.metrics.RefreshDuration.WithLabelValues("stale").Observe(time.Since(start).Seconds())
            log.Warn("all sources failed, serving stale record", "failures", len(failures))
            return &Result{Record: prior, Source: ProvenanceStale}, nil
        }
        a.metrics.RefreshDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
        return nil, &AggregateError{Ticker: ticker, Causes: failures}
    }

    rec := a.merger.Merge(prior, ticker, parts, a.now())
    if err := a.store.Put(ctx, rec); err != nil {
        // serve the merged record anyway; the failure is visible in
        // logs and metrics
        a.metrics.StoreErrorsTotal.WithLabelValues("put").Inc()
        log.Error("persist failed, serving unpersisted record", "error", err)
    }
    a.metrics.RefreshDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
    log.Info("refresh complete",
        "sources_ok", len(parts),
        "sources_failed", len(failures),
        "took", time.Since(start))
    return &Result{Record: rec, Source: ProvenanceScraping}, nil
}
