package merge

import (
    "sort"
    "time"

    "tickerhub/internal/history"
    "tickerhub/internal/record"
    "tickerhub/internal/source"
)

// Merger combines source fragments into one canonical record.
//
// Field precedence is positional in Priority: the first listed source
// wins any field it provides, regardless of fetch completion order, so
// the merged result is deterministic under concurrent fetching.
// Fragments from sources missing from Priority rank below all listed
// ones and are ordered by name among themselves.
type Merger struct {
    Priority []string
    CacheTTL time.Duration
}

var (
    indicatorKeys    = keySet(record.IndicatorKeys)
    balanceSheetKeys = keySet(record.BalanceSheetKeys)
)

func keySet(keys []string) map[string]struct{} {
    s := make(map[string]struct{}, len(keys))
    for _, k := range keys {
        s[k] = struct{}{}
    }
    return s
}

// Merge builds the record for ticker from fragments, falling back to the
// prior record for fields no fragment provides. CreatedAt is carried
// from the prior record; UpdatedAt is always now and ValidUntil is
// now + CacheTTL. Histories are folded with the history appender rather
// than overwritten. Merge must not be called with zero fragments; the
// orchestrator handles that case by serving stale data.
func (m *Merger) Merge(existing *record.TickerRecord, ticker string, fragments []*source.Partial, now time.Time) *record.TickerRecord {
    rec := record.New(ticker)

    if existing != nil {
        rec.Company = existing.Company
        rec.Price = existing.Price
        for k, v := range existing.Indicators {
            if _, ok := indicatorKeys[k]; ok {
                rec.Indicators[k] = v
            }
        }
        for k, v := range existing.BalanceSheet {
            if _, ok := balanceSheetKeys[k]; ok {
                rec.BalanceSheet[k] = v
            }
        }
        rec.DividendHistory = existing.DividendHistory
        rec.PriceHistory = existing.PriceHistory
        rec.CreatedAt = existing.CreatedAt
    }
    if rec.CreatedAt.IsZero() {
        rec.CreatedAt = now
    }
    rec.UpdatedAt = now
    rec.ValidUntil = now.Add(m.CacheTTL)

    ordered := m.order(fragments)
    for _, f := range ordered {
        applyFragment(rec, f)
        rec.Sources = append(rec.Sources, f.Source)
    }
    for _, f := range ordered {
        rec.DividendHistory = history.Merge(rec.DividendHistory, f.Dividends)
        rec.PriceHistory = history.Merge(rec.PriceHistory, f.PricePoints)
    }
    return rec
}

// order sorts fragments so that lower-priority ones come first; applying
// them in sequence then lets the highest-priority source win each field.
func (m *Merger) order(fragments []*source.Partial) []*source.Partial {
    rank := func(name string) int {
        for i, p := range m.Priority {
            if p == name {
                return i
            }
        }
        return len(m.Priority)
    }
    out := make([]*source.Partial, len(fragments))
    copy(out, fragments)
    sort.SliceStable(out, func(i, j int) bool {
        ri, rj := rank(out[i].Source), rank(out[j].Source)
        if ri != rj {
            return ri > rj
        }
        return out[i].Source > out[j].Source
    })
    return out
}

func applyFragment(rec *record.TickerRecord, f *source.Partial) {
    for k, v := range f.Company {
        if v == "" {
            continue
        }
        switch k {
        case record.MetaName:
            rec.Company.Name = v
        case record.MetaSector:
            rec.Company.Sector = v
        case record.MetaSubsector:
            rec.Company.Subsector = v
        case record.MetaFounded:
            rec.Company.Founded = v
        case record.MetaDescription:
            rec.Company.Description = v
        }
    }
    if f.Currency != "" {
        rec.Price.Currency = f.Currency
    }
    for k, v := range f.Price {
        switch k {
        case record.PriceAtual:
            rec.Price.Atual = record.Float(v)
        case record.PriceDayChange:
            rec.Price.DayChange = record.Float(v)
        case record.PriceDayChangePct:
            rec.Price.DayChangePct = record.Float(v)
        case record.PriceHigh52w:
            rec.Price.High52w = record.Float(v)
        case record.PriceLow52w:
            rec.Price.Low52w = record.Float(v)
        }
    }
    for k, v := range f.Indicators {
        if _, ok := indicatorKeys[k]; ok {
            rec.Indicators[k] = record.Float(v)
        }
    }
    for k, v := range f.BalanceSheet {
        if _, ok := balanceSheetKeys[k]; ok {
            rec.BalanceSheet[k] = record.Float(v)
        }
    }
}
