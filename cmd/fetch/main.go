package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "os"
    "time"

    "tickerhub/internal/aggregator"
    "tickerhub/internal/config"
    "tickerhub/internal/httpx"
    "tickerhub/internal/merge"
    "tickerhub/internal/observability"
    "tickerhub/internal/source"
    "tickerhub/internal/source/brapi"
    "tickerhub/internal/source/fundamentus"
    "tickerhub/internal/source/statusinvest"
    "tickerhub/internal/store"
    "tickerhub/internal/store/boltstore"
    "tickerhub/internal/store/memory"
)

// fetch is a one-shot aggregation for a single ticker, printed as JSON.
// Useful for poking at providers without running the server.
func main() {
    var ticker string
    var configPath string
    var force bool

    flag.StringVar(&ticker, "ticker", os.Getenv("TICKER"), "ticker symbol, e.g. PETR4")
    flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
    flag.BoolVar(&force, "force", false, "refresh even if the cached record is fresh")
    flag.Parse()

    if ticker == "" {
        fmt.Fprintln(os.Stderr, "usage: fetch -ticker PETR4 [-config config.json] [-force]")
        os.Exit(2)
    }

    cfg, err := config.Load(configPath)
    if err != nil {
        fmt.Fprintf(os.Stderr, "config: %v\n", err)
        os.Exit(1)
    }
    log := observability.NewLogger(cfg.Server.LogFormat, "warn")

    var st store.Store
    if cfg.Cache.Backend == "bolt" {
        st, err = boltstore.Open(cfg.Cache.BoltPath)
        if err != nil {
            fmt.Fprintf(os.Stderr, "store: %v\n", err)
            os.Exit(1)
        }
    } else {
        st = memory.New()
    }
    defer st.Close()

    timeout := time.Duration(cfg.Sources.TimeoutMS) * time.Millisecond
    browser := httpx.NewBrowser(timeout)
    api := httpx.New(timeout)

    var sources []source.Source
    if cfg.Sources.StatusInvest.Enabled {
        sources = append(sources, statusinvest.New(statusinvest.Config{BaseURL: cfg.Sources.StatusInvest.Endpoint}, browser))
    }
    if cfg.Sources.Fundamentus.Enabled {
        sources = append(sources, fundamentus.New(fundamentus.Config{BaseURL: cfg.Sources.Fundamentus.Endpoint}, browser))
    }
    if cfg.Sources.Brapi.Enabled {
        client, err := brapi.NewClient(cfg.Sources.Brapi.Token,
            brapi.WithBaseURL(cfg.Sources.Brapi.Endpoint),
            brapi.WithHTTPClient(api.HTTP),
        )
        if err == nil {
            sources = append(sources, brapi.NewAdapter("brapi", client))
        }
    }

    merger := &merge.Merger{
        Priority: cfg.Sources.Priority,
        CacheTTL: time.Duration(cfg.Cache.LifetimeDays) * 24 * time.Hour,
    }
    agg := aggregator.New(st, sources, merger, aggregator.Config{FetchTimeout: timeout, Logger: log})

    ctx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
    defer cancel()

    var res *aggregator.Result
    if force {
        res, err = agg.ForceRefresh(ctx, ticker)
    } else {
        res, err = agg.GetOrRefresh(ctx, ticker)
    }
    if err != nil {
        fmt.Fprintf(os.Stderr, "aggregate: %v\n", err)
        os.Exit(1)
    }

    enc := json.NewEncoder(os.Stdout)
    enc.SetIndent("", "  ")
    enc.SetEscapeHTML(false)
    _ = enc.Encode(map[string]any{"source": res.Source, "data": res.Record})
}
