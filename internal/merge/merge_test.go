package merge

import (
    "encoding/json"
    "testing"
    "time"

    "tickerhub/internal/record"
    "tickerhub/internal/source"
)

var testPriority = []string{"statusinvest", "fundamentus", "brapi"}

func newMerger() *Merger {
    return &Merger{Priority: testPriority, CacheTTL: 5 * 24 * time.Hour}
}

func frag(src string) *source.Partial { return source.NewPartial(src) }

func TestMerge_Timestamps(t *testing.T) {
    now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
    m := newMerger()

    rec := m.Merge(nil, "PETR4", []*source.Partial{frag("brapi")}, now)
    if !rec.CreatedAt.Equal(now) || !rec.UpdatedAt.Equal(now) {
        t.Fatalf("createdAt/updatedAt not set to now: %+v", rec)
    }
    if !rec.ValidUntil.Equal(now.Add(5 * 24 * time.Hour)) {
        t.Fatalf("validUntil not updatedAt+5d: %v", rec.ValidUntil)
    }

    later := now.Add(6 * 24 * time.Hour)
    rec2 := m.Merge(rec, "PETR4", []*source.Partial{frag("brapi")}, later)
    if !rec2.CreatedAt.Equal(now) {
        t.Fatalf("createdAt must be carried forward, got %v", rec2.CreatedAt)
    }
    if !rec2.UpdatedAt.Equal(later) {
        t.Fatalf("updatedAt must advance, got %v", rec2.UpdatedAt)
    }
}

func TestMerge_PriorityWinsOverArrivalOrder(t *testing.T) {
    now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
    m := newMerger()

    a := frag("statusinvest")
    a.Price[record.PriceAtual] = 38.5
    b := frag("brapi")
    b.Price[record.PriceAtual] = 38.9

    // statusinvest is listed first in priority, so it wins regardless of
    // the order fragments arrive in.
    for _, frags := range [][]*source.Partial{{a, b}, {b, a}} {
        rec := m.Merge(nil, "PETR4", frags, now)
        if rec.Price.Atual == nil || *rec.Price.Atual != 38.5 {
            t.Fatalf("expected statusinvest price 38.5, got %+v", rec.Price.Atual)
        }
    }
}

func TestMerge_Deterministic_ByteIdentical(t *testing.T) {
    now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
    m := newMerger()

    a := frag("statusinvest")
    a.Price[record.PriceAtual] = 38.5
    a.Indicators[record.IndPVP] = 1.1
    a.Company[record.MetaSector] = "Petróleo"
    b := frag("fundamentus")
    b.Indicators[record.IndPL] = 5.2
    b.Indicators[record.IndPVP] = 1.2
    c := frag("brapi")
    c.Indicators[record.IndDY] = 0.11
    c.PricePoints = []record.Point{{Date: "2024-02-29", Value: 38.2}}

    orders := [][]*source.Partial{
        {a, b, c}, {c, b, a}, {b, c, a}, {c, a, b},
    }
    var first []byte
    for i, frags := range orders {
        rec := m.Merge(nil, "PETR4", frags, now)
        got, err := json.Marshal(rec)
        if err != nil {
            t.Fatalf("marshal: %v", err)
        }
        if i == 0 {
            first = got
            continue
        }
        if string(got) != string(first) {
            t.Fatalf("merge not deterministic:\n%s\nvs\n%s", first, got)
        }
    }
}

func TestMerge_FallsBackToExistingThenDefaults(t *testing.T) {
    now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
    m := newMerger()

    prior := record.New("PETR4")
    prior.Company.Name = "Petrobras"
    prior.Indicators[record.IndROE] = record.Float(0.18)
    prior.CreatedAt = now.Add(-10 * 24 * time.Hour)

    f := frag("brapi")
    f.Price[record.PriceAtual] = 39.0

    rec := m.Merge(prior, "PETR4", []*source.Partial{f}, now)
    if rec.Company.Name != "Petrobras" {
        t.Fatalf("company name should fall back to prior, got %q", rec.Company.Name)
    }
    if rec.Indicators[record.IndROE] == nil || *rec.Indicators[record.IndROE] != 0.18 {
        t.Fatalf("roe should fall back to prior, got %+v", rec.Indicators[record.IndROE])
    }
    // never provided by anything: type default
    if rec.Indicators[record.IndCagrLucros] != nil {
        t.Fatalf("unprovided indicator should stay null")
    }
    if rec.Company.Founded != "" {
        t.Fatalf("unprovided string field should stay empty")
    }
}

func TestMerge_HistoriesFoldedNotOverwritten(t *testing.T) {
    now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
    m := newMerger()

    prior := record.New("PETR4")
    prior.PriceHistory = []record.Point{{Date: "2024-02-27", Value: 37.9}}
    prior.DividendHistory = []record.Point{{Date: "2023-12-15", Value: 1.2}}
    prior.CreatedAt = now.Add(-24 * time.Hour)

    f := frag("brapi")
    f.PricePoints = []record.Point{
        {Date: "2024-02-27", Value: 38.0}, // same date: overwrite
        {Date: "2024-02-29", Value: 38.2},
    }
    f.Dividends = []record.Point{{Date: "2024-02-01", Value: 0.9}}

    rec := m.Merge(prior, "PETR4", []*source.Partial{f}, now)
    if len(rec.PriceHistory) != 2 {
        t.Fatalf("want 2 price points, got %+v", rec.PriceHistory)
    }
    if rec.PriceHistory[0].Value != 38.0 {
        t.Fatalf("same-date point should be overwritten, got %+v", rec.PriceHistory[0])
    }
    if len(rec.DividendHistory) != 2 {
        t.Fatalf("want 2 dividends, got %+v", rec.DividendHistory)
    }
}

func TestMerge_UnknownIndicatorKeysDropped(t *testing.T) {
    now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
    m := newMerger()

    f := frag("brapi")
    f.Indicators["mystery"] = 42

    rec := m.Merge(nil, "PETR4", []*source.Partial{f}, now)
    if _, ok := rec.Indicators["mystery"]; ok {
        t.Fatalf("non-canonical key must not enter the record")
    }
    if len(rec.Indicators) != len(record.IndicatorKeys) {
        t.Fatalf("indicator key set changed: %d keys", len(rec.Indicators))
    }
}

func TestMerge_SourcesRecorded(t *testing.T) {
    now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
    m := newMerger()

    rec := m.Merge(nil, "PETR4", []*source.Partial{frag("brapi"), frag("statusinvest")}, now)
    if len(rec.Sources) != 2 {
        t.Fatalf("want 2 sources, got %+v", rec.Sources)
    }
    // applied lowest priority first, so the last entry is the winner
    if rec.Sources[len(rec.Sources)-1] != "statusinvest" {
        t.Fatalf("unexpected source order: %+v", rec.Sources)
    }
}
