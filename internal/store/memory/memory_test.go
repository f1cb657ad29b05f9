package memory

import (
    "errors"
    "testing"

    "tickerhub/internal/record"
    "tickerhub/internal/store"
)

func TestGet_NotFound(t *testing.T) {
    s := New()
    if _, err := s.Get(t.Context(), "PETR4"); !errors.Is(err, store.ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestPutGet_RoundTrip(t *testing.T) {
    s := New()
    rec := record.New("PETR4")
    rec.Company.Name = "Petrobras"
    rec.Price.Atual = record.Float(38.5)
    rec.PriceHistory = []record.Point{{Date: "2024-02-29", Value: 38.2}}

    if err := s.Put(t.Context(), rec); err != nil {
        t.Fatalf("put: %v", err)
    }
    got, err := s.Get(t.Context(), "PETR4")
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if got.Company.Name != "Petrobras" {
        t.Fatalf("name: %q", got.Company.Name)
    }
    if got.Price.Atual == nil || *got.Price.Atual != 38.5 {
        t.Fatalf("atual: %+v", got.Price.Atual)
    }
    if len(got.PriceHistory) != 1 || got.PriceHistory[0].Date != "2024-02-29" {
        t.Fatalf("history: %+v", got.PriceHistory)
    }
}

func TestGet_CallerIsolation(t *testing.T) {
    s := New()
    rec := record.New("PETR4")
    rec.Company.Name = "Petrobras"
    if err := s.Put(t.Context(), rec); err != nil {
        t.Fatalf("put: %v", err)
    }

    first, err := s.Get(t.Context(), "PETR4")
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    first.Company.Name = "mutated"

    second, err := s.Get(t.Context(), "PETR4")
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if second.Company.Name != "Petrobras" {
        t.Fatalf("stored record leaked a caller mutation: %q", second.Company.Name)
    }
}

func TestPut_Overwrites(t *testing.T) {
    s := New()
    rec := record.New("PETR4")
    rec.Company.Name = "old"
    if err := s.Put(t.Context(), rec); err != nil {
        t.Fatalf("put: %v", err)
    }
    rec.Company.Name = "new"
    if err := s.Put(t.Context(), rec); err != nil {
        t.Fatalf("put: %v", err)
    }
    got, err := s.Get(t.Context(), "PETR4")
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if got.Company.Name != "new" {
        t.Fatalf("expected overwrite, got %q", got.Company.Name)
    }
}
