package brapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// baseURL is the default base URL for the brapi.dev API.
const baseURL = "https://brapi.dev"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=brapi_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the brapi.dev quote API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// ClientOption is a configuration option for the brapi client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a new brapi client. The token is optional; brapi
// serves a limited free tier without one.
func NewClient(token string, options ...ClientOption) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if token != "" {
		client.query.Add("token", token)
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// QuoteResponse is the envelope returned by /api/quote/{ticker}.
type QuoteResponse struct {
	Results []QuoteResult `json:"results"`
	Error   bool          `json:"error"`
	Message string        `json:"message"`
}

// QuoteResult is one ticker's quote with optional history blocks.
type QuoteResult struct {
	Symbol                     string           `json:"symbol"`
	Currency                   string           `json:"currency"`
	LongName                   string           `json:"longName"`
	RegularMarketPrice         *float64         `json:"regularMarketPrice"`
	RegularMarketChange        *float64         `json:"regularMarketChange"`
	RegularMarketChangePercent *float64         `json:"regularMarketChangePercent"`
	FiftyTwoWeekHigh           *float64         `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64         `json:"fiftyTwoWeekLow"`
	PriceEarnings              *float64         `json:"priceEarnings"`
	HistoricalDataPrice        []HistoricalBar  `json:"historicalDataPrice"`
	DividendsData              *DividendsData   `json:"dividendsData"`
}

// HistoricalBar is one daily bar; Date is a unix timestamp in seconds.
type HistoricalBar struct {
	Date  int64    `json:"date"`
	Close *float64 `json:"close"`
}

// DividendsData wraps the cash dividend list.
type DividendsData struct {
	CashDividends []CashDividend `json:"cashDividends"`
}

// CashDividend is one dividend event.
type CashDividend struct {
	PaymentDate string   `json:"paymentDate"`
	Rate        *float64 `json:"rate"`
}

// GetQuote fetches the quote for one ticker including recent daily
// history and dividend events.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*QuoteResult, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/quote/%s", c.baseURL, url.PathEscape(ticker)))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("range", "3mo")
	q.Set("interval", "1d")
	q.Set("dividends", "true")
	for key, values := range c.query {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return nil, fmt.Errorf("GET %s -> %d: %s", u.Path, resp.StatusCode, string(b))
	}

	var body QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Error {
		return nil, fmt.Errorf("api error: %s", body.Message)
	}
	if len(body.Results) == 0 {
		return nil, fmt.Errorf("no results for %s", ticker)
	}
	return &body.Results[0], nil
}
