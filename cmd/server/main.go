package main

import (
    "context"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "tickerhub/internal/aggregator"
    "tickerhub/internal/config"
    "tickerhub/internal/httpx"
    "tickerhub/internal/merge"
    "tickerhub/internal/observability"
    "tickerhub/internal/scheduler"
    "tickerhub/internal/source"
    "tickerhub/internal/source/brapi"
    "tickerhub/internal/source/breaker"
    "tickerhub/internal/source/fundamentus"
    "tickerhub/internal/source/ratelimit"
    "tickerhub/internal/source/statusinvest"
    "tickerhub/internal/store"
    "tickerhub/internal/store/boltstore"
    "tickerhub/internal/store/memory"
)

func main() {
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil {
        slog.Error("config", "error", err)
        os.Exit(1)
    }
    log := observability.NewLogger(cfg.Server.LogFormat, cfg.Server.LogLevel)

    st, err := openStore(cfg.Cache)
    if err != nil {
        log.Error("open store", "error", err)
        os.Exit(1)
    }
    defer st.Close()

    fetchTimeout := time.Duration(cfg.Sources.TimeoutMS) * time.Millisecond
    sources := buildSources(cfg.Sources, fetchTimeout, log)
    if len(sources) == 0 {
        log.Warn("no sources enabled; only cached records can be served")
    }

    merger := &merge.Merger{
        Priority: cfg.Sources.Priority,
        CacheTTL: time.Duration(cfg.Cache.LifetimeDays) * 24 * time.Hour,
    }
    agg := aggregator.New(st, sources, merger, aggregator.Config{
        FetchTimeout: fetchTimeout,
        Logger:       log,
    })

    if cfg.Refresh.Enabled && len(cfg.Refresh.Tickers) > 0 {
        sched := scheduler.New(agg, cfg.Refresh.Tickers, log)
        if err := sched.Register(cfg.Refresh.CronSpec); err != nil {
            log.Error("scheduler", "error", err)
            os.Exit(1)
        }
        sched.Start()
        defer sched.Stop()
    }

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           newRouter(agg, log),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      time.Duration(cfg.Server.RequestTimeoutSec+5) * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Info("server listening", "port", cfg.Server.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Error("server", "error", err)
            os.Exit(1)
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.Cache) (store.Store, error) {
    if cfg.Backend == "bolt" {
        return boltstore.Open(cfg.BoltPath)
    }
    return memory.New(), nil
}

// buildSources assembles the enabled adapters, each behind its rate
// limiter and circuit breaker.
func buildSources(cfg config.Sources, timeout time.Duration, log *slog.Logger) []source.Source {
    browser := httpx.NewBrowser(timeout)
    api := httpx.New(timeout)

    var out []source.Source
    if cfg.StatusInvest.Enabled {
        s := statusinvest.New(statusinvest.Config{BaseURL: cfg.StatusInvest.Endpoint}, browser)
        out = append(out, wrap(s, cfg.StatusInvest, log))
    }
    if cfg.Fundamentus.Enabled {
        s := fundamentus.New(fundamentus.Config{BaseURL: cfg.Fundamentus.Endpoint}, browser)
        out = append(out, wrap(s, cfg.Fundamentus, log))
    }
    if cfg.Brapi.Enabled {
        client, err := brapi.NewClient(cfg.Brapi.Token,
            brapi.WithBaseURL(cfg.Brapi.Endpoint),
            brapi.WithHTTPClient(api.HTTP),
        )
        if err != nil {
            log.Warn("brapi client error, skipping source", "error", err)
        } else {
            limits := config.ScrapeSource{
                MaxRequestsPerMinute:  cfg.Brapi.MaxRequestsPerMinute,
                MinRequestIntervalSec: cfg.Brapi.MinRequestIntervalSec,
                Burst:                 cfg.Brapi.Burst,
            }
            out = append(out, wrap(brapi.NewAdapter("brapi", client), limits, log))
        }
    }
    return out
}

func wrap(s source.Source, limits config.ScrapeSource, log *slog.Logger) source.Source {
    // Prefer token bucket with burst if RPM is set, otherwise use min-interval
    if limits.MaxRequestsPerMinute > 0 {
        rate := float64(limits.MaxRequestsPerMinute) / 60.0
        burst := limits.Burst
        if burst <= 0 { burst = 1 }
        s = &ratelimit.TokenBucketSource{S: s, TB: ratelimit.NewTokenBucket(rate, burst)}
    } else if limits.MinRequestIntervalSec > 0 {
        interval := time.Duration(limits.MinRequestIntervalSec) * time.Second
        s = &ratelimit.MinInterval{S: s, Interval: interval}
    }
    return breaker.Wrap(s, breaker.DefaultConfig, log)
}
