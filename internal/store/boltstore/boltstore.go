package boltstore

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    bolt "go.etcd.io/bbolt"

    "tickerhub/internal/record"
    "tickerhub/internal/store"
)

var bucketRecords = []byte("records")

// Store persists records in a bbolt database, one JSON document per
// ticker. bbolt serializes writes, which gives the per-ticker
// read-modify-write atomicity the engine relies on.
type Store struct {
    db *bolt.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
    db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
    if err != nil {
        return nil, fmt.Errorf("open bolt db: %w", err)
    }
    err = db.Update(func(tx *bolt.Tx) error {
        _, err := tx.CreateBucketIfNotExists(bucketRecords)
        return err
    })
    if err != nil {
        db.Close()
        return nil, fmt.Errorf("create bucket: %w", err)
    }
    return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, ticker string) (*record.TickerRecord, error) {
    var rec *record.TickerRecord
    err := s.db.View(func(tx *bolt.Tx) error {
        b := tx.Bucket(bucketRecords).Get([]byte(ticker))
        if b == nil {
            return store.ErrNotFound
        }
        rec = &record.TickerRecord{}
        if err := json.Unmarshal(b, rec); err != nil {
            return fmt.Errorf("decode record %s: %w", ticker, err)
        }
        return nil
    })
    if err != nil {
        return nil, err
    }
    return rec, nil
}

func (s *Store) Put(_ context.Context, rec *record.TickerRecord) error {
    b, err := json.Marshal(rec)
    if err != nil {
        return fmt.Errorf("encode record %s: %w", rec.Ticker, err)
    }
    return s.db.Update(func(tx *bolt.Tx) error {
        return tx.Bucket(bucketRecords).Put([]byte(rec.Ticker), b)
    })
}

func (s *Store) Close() error { return s.db.Close() }
