package source

import (
    "context"
    "fmt"

    "tickerhub/internal/record"
)

// Partial is one provider's view of a ticker. Absent map keys mean "not
// provided", which the merger distinguishes from an explicit zero.
type Partial struct {
    Source       string
    Currency     string
    Company      map[string]string
    Price        map[string]float64
    Indicators   map[string]float64
    BalanceSheet map[string]float64
    Dividends    []record.Point
    PricePoints  []record.Point
}

// NewPartial returns an empty fragment attributed to src.
func NewPartial(src string) *Partial {
    return &Partial{
        Source:       src,
        Company:      map[string]string{},
        Price:        map[string]float64{},
        Indicators:   map[string]float64{},
        BalanceSheet: map[string]float64{},
    }
}

// Empty reports whether the fragment carries no data at all.
func (p *Partial) Empty() bool {
    return len(p.Company) == 0 && len(p.Price) == 0 &&
        len(p.Indicators) == 0 && len(p.BalanceSheet) == 0 &&
        len(p.Dividends) == 0 && len(p.PricePoints) == 0
}

// Source fetches one provider's fragment for a ticker. Implementations
// return an error only for total failure (network, timeout, nothing
// parseable); a field the provider cannot supply is simply absent.
type Source interface {
    Name() string
    Fetch(ctx context.Context, ticker string) (*Partial, error)
}

// FetchError records a single source failure. Fetch errors are isolated:
// the orchestrator collects them and never lets one abort aggregation.
type FetchError struct {
    Source string
    Err    error
}

func (e *FetchError) Error() string {
    return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
