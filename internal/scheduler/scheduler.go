package scheduler

import (
    "context"
    "fmt"
    "log/slog"
    "time"

    "github.com/robfig/cron/v3"

    "tickerhub/internal/aggregator"
)

// Scheduler re-warms tracked tickers on a cron spec so the cache serves
// hits even when no request has touched a ticker since it expired.
type Scheduler struct {
    cron    *cron.Cron
    agg     *aggregator.Aggregator
    tickers []string
    log     *slog.Logger
}

func New(agg *aggregator.Aggregator, tickers []string, log *slog.Logger) *Scheduler {
    return &Scheduler{
        cron:    cron.New(cron.WithSeconds()),
        agg:     agg,
        tickers: tickers,
        log:     log,
    }
}

// Register adds the refresh job. The spec uses the 6-field form with
// seconds, e.g. "0 30 11 * * 1-5".
func (s *Scheduler) Register(spec string) error {
    if _, err := s.cron.AddFunc(spec, s.refreshAll); err != nil {
        return fmt.Errorf("register refresh job: %w", err)
    }
    return nil
}

func (s *Scheduler) Start() {
    s.cron.Start()
    s.log.Info("scheduler started", "tickers", len(s.tickers))
}

func (s *Scheduler) Stop() {
    s.cron.Stop()
    s.log.Info("scheduler stopped")
}

// RunNow triggers a refresh pass immediately (manual warm-up on boot).
func (s *Scheduler) RunNow() { s.refreshAll() }

func (s *Scheduler) refreshAll() {
    for _, t := range s.tickers {
        ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
        res, err := s.agg.GetOrRefresh(ctx, t)
        cancel()
        if err != nil {
            s.log.Error("scheduled refresh failed", "ticker", t, "error", err)
            continue
        }
        s.log.Info("scheduled refresh done", "ticker", t, "source", res.Source)
    }
}
