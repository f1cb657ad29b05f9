package store

import (
    "context"
    "errors"

    "tickerhub/internal/record"
)

// ErrNotFound signals absence of a record; it is not a failure.
var ErrNotFound = errors.New("record not found")

// Store persists one record per ticker. Put is an upsert that fully
// replaces any existing record (the merger has already folded createdAt
// and histories forward). Freshness policy is the orchestrator's job,
// not the store's, so backends stay swappable.
type Store interface {
    Get(ctx context.Context, ticker string) (*record.TickerRecord, error)
    Put(ctx context.Context, rec *record.TickerRecord) error
    Close() error
}
