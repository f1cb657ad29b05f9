package memory

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"

    "tickerhub/internal/record"
    "tickerhub/internal/store"
)

// Store keeps records in memory as serialized JSON documents, keyed by
// ticker. Storing bytes rather than pointers keeps callers isolated from
// each other's mutations, matching the on-disk backends.
type Store struct {
    mu    sync.RWMutex
    items map[string][]byte
}

func New() *Store {
    return &Store{items: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, ticker string) (*record.TickerRecord, error) {
    s.mu.RLock()
    b, ok := s.items[ticker]
    s.mu.RUnlock()
    if !ok {
        return nil, store.ErrNotFound
    }
    var rec record.TickerRecord
    if err := json.Unmarshal(b, &rec); err != nil {
        return nil, fmt.Errorf("decode record %s: %w", ticker, err)
    }
    return &rec, nil
}

func (s *Store) Put(_ context.Context, rec *record.TickerRecord) error {
    b, err := json.Marshal(rec)
    if err != nil {
        return fmt.Errorf("encode record %s: %w", rec.Ticker, err)
    }
    s.mu.Lock()
    s.items[rec.Ticker] = b
    s.mu.Unlock()
    return nil
}

func (s *Store) Close() error { return nil }
