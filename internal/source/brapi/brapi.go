package brapi

import (
	"context"
	"time"

	"tickerhub/internal/record"
	"tickerhub/internal/source"
)

// Adapter turns brapi quotes into partial fragments. brapi is the one
// structured-API source; it contributes the price snapshot plus the
// history series the scrape sources cannot provide.
type Adapter struct {
	name   string
	client *Client
}

func NewAdapter(name string, client *Client) *Adapter {
	if name == "" {
		name = "brapi"
	}
	return &Adapter{name: name, client: client}
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Fetch(ctx context.Context, ticker string) (*source.Partial, error) {
	q, err := a.client.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	p := source.NewPartial(a.name)
	p.Currency = q.Currency
	if q.LongName != "" {
		p.Company[record.MetaName] = q.LongName
	}
	setPrice := func(k string, v *float64) {
		if v != nil {
			p.Price[k] = *v
		}
	}
	setPrice(record.PriceAtual, q.RegularMarketPrice)
	setPrice(record.PriceDayChange, q.RegularMarketChange)
	setPrice(record.PriceHigh52w, q.FiftyTwoWeekHigh)
	setPrice(record.PriceLow52w, q.FiftyTwoWeekLow)
	if q.RegularMarketChangePercent != nil {
		p.Price[record.PriceDayChangePct] = *q.RegularMarketChangePercent / 100
	}
	if q.PriceEarnings != nil {
		p.Indicators[record.IndPL] = *q.PriceEarnings
	}

	for _, bar := range q.HistoricalDataPrice {
		if bar.Close == nil || bar.Date <= 0 {
			continue
		}
		p.PricePoints = append(p.PricePoints, record.Point{
			Date:  time.Unix(bar.Date, 0).UTC().Format(record.DateLayout),
			Value: *bar.Close,
		})
	}
	if q.DividendsData != nil {
		for _, d := range q.DividendsData.CashDividends {
			if d.Rate == nil || len(d.PaymentDate) < len(record.DateLayout) {
				continue
			}
			p.Dividends = append(p.Dividends, record.Point{
				Date:  d.PaymentDate[:len(record.DateLayout)],
				Value: *d.Rate,
			})
		}
	}
	return p, nil
}
