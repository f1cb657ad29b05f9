package breaker

import (
    "context"
    "log/slog"
    "time"

    "github.com/sony/gobreaker/v2"

    "tickerhub/internal/source"
)

// Config holds circuit breaker tuning for one source.
type Config struct {
    MaxRequests uint32        // max requests allowed in half-open state
    Interval    time.Duration // cyclic period of the closed state to clear counts
    Timeout     time.Duration // period of the open state before transitioning to half-open
}

// DefaultConfig trips a source after sustained failures (upstream
// blocking shows up as a burst of 403s or timeouts) and probes it again
// after a minute.
var DefaultConfig = Config{
    MaxRequests: 2,
    Interval:    2 * time.Minute,
    Timeout:     time.Minute,
}

// Source wraps another source behind a circuit breaker so a provider
// that is down or blocking us fails fast instead of eating the full
// per-fetch timeout on every aggregation.
type Source struct {
    s  source.Source
    cb *gobreaker.CircuitBreaker[*source.Partial]
}

func Wrap(s source.Source, cfg Config, log *slog.Logger) *Source {
    settings := gobreaker.Settings{
        Name:        s.Name(),
        MaxRequests: cfg.MaxRequests,
        Interval:    cfg.Interval,
        Timeout:     cfg.Timeout,
        ReadyToTrip: func(counts gobreaker.Counts) bool {
            failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
            return counts.Requests >= 5 && failureRatio >= 0.5
        },
        OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
            log.Warn("circuit breaker state change",
                "source", name,
                "from", from.String(),
                "to", to.String())
        },
    }
    return &Source{s: s, cb: gobreaker.NewCircuitBreaker[*source.Partial](settings)}
}

func (b *Source) Name() string { return b.s.Name() }

func (b *Source) Fetch(ctx context.Context, ticker string) (*source.Partial, error) {
    return b.cb.Execute(func() (*source.Partial, error) {
        return b.s.Fetch(ctx, ticker)
    })
}
