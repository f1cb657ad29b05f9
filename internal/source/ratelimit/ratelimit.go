package ratelimit

import (
    "context"
    "sync"
    "time"

    "tickerhub/internal/source"
)

// MinInterval wraps a source and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last call,
// or return early if the context is canceled. Scrape targets tolerate very
// little traffic before blocking, so the gate applies per source, not per ticker.
type MinInterval struct {
    S        source.Source
    Interval time.Duration

    mu   sync.Mutex
    last time.Time
}

func (m *MinInterval) Name() string { return m.S.Name() }

func (m *MinInterval) Fetch(ctx context.Context, ticker string) (*source.Partial, error) {
    if m.Interval > 0 {
        // simple gate: ensure at least Interval since last
        m.mu.Lock()
        wait := time.Until(m.last.Add(m.Interval))
        m.mu.Unlock()
        if wait > 0 {
            t := time.NewTimer(wait)
            defer t.Stop()
            select {
            case <-ctx.Done():
                return nil, ctx.Err()
            case <-t.C:
            }
        }
    }
    p, err := m.S.Fetch(ctx, ticker)
    if m.Interval > 0 {
        m.mu.Lock()
        m.last = time.Now()
        m.mu.Unlock()
    }
    return p, err
}
