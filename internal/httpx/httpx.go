package httpx

import (
    "context"
    "math/rand/v2"
    "net"
    "net/http"
    "time"
)

// Browser user agents rotated across requests. Scrape targets block
// obvious bot agents; rotation is a transport concern kept out of the
// aggregation core.
var userAgents = []string{
    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
    "Mozilla/5.0 (X11; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0",
    "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Client is a small wrapper around http.Client with sane defaults.
// When RotateAgents is set, each request without an explicit User-Agent
// gets a random browser agent; otherwise UserAgent is used.
type Client struct {
    HTTP         *http.Client
    UserAgent    string
    RotateAgents bool
    Headers      map[string]string
}

func New(timeout time.Duration) *Client {
    transport := &http.Transport{
        Proxy: http.ProxyFromEnvironment,
        DialContext: (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
        MaxIdleConns:          200,
        MaxIdleConnsPerHost:   100,
        MaxConnsPerHost:       100,
        ForceAttemptHTTP2:     true,
        IdleConnTimeout:       90 * time.Second,
        TLSHandshakeTimeout:   3 * time.Second,
        ExpectContinueTimeout: 1 * time.Second,
        ResponseHeaderTimeout: 5 * time.Second,
    }
    return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: "tickerhub/1.0"}
}

// NewBrowser returns a client that presents itself as a regular browser,
// for providers that only serve HTML pages.
func NewBrowser(timeout time.Duration) *Client {
    c := New(timeout)
    c.RotateAgents = true
    c.Headers = map[string]string{
        "Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
        "Accept-Language": "pt-BR,pt;q=0.9",
        "Referer":         "https://www.google.com/",
    }
    return c
}

func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
    if req.Header.Get("User-Agent") == "" {
        if c.RotateAgents {
            req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
        } else if c.UserAgent != "" {
            req.Header.Set("User-Agent", c.UserAgent)
        }
    }
    for k, v := range c.Headers {
        if req.Header.Get(k) == "" {
            req.Header.Set(k, v)
        }
    }
    return c.HTTP.Do(req)
}
