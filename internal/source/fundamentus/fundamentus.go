package fundamentus

import (
    "context"
    "fmt"
    "io"
    "net/http"
    "regexp"
    "strings"

    "tickerhub/internal/httpx"
    "tickerhub/internal/record"
    "tickerhub/internal/source"
    "tickerhub/internal/source/parse"
)

const maxBody = 2 << 20

type Config struct {
    Name    string
    BaseURL string
}

// Source scrapes fundamentus.com.br detail pages, which lay out every
// figure as label/data table cell pairs.
type Source struct {
    cfg    Config
    client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Source {
    if cfg.Name == "" { cfg.Name = "fundamentus" }
    if cfg.BaseURL == "" { cfg.BaseURL = "https://www.fundamentus.com.br" }
    return &Source{cfg: cfg, client: hc}
}

func (s *Source) Name() string { return s.cfg.Name }

func (s *Source) Fetch(ctx context.Context, ticker string) (*source.Partial, error) {
    url := fmt.Sprintf("%s/detalhes.php?papel=%s", s.cfg.BaseURL, ticker)
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil { return nil, err }
    resp, err := s.client.Do(ctx, req)
    if err != nil { return nil, err }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return nil, fmt.Errorf("GET %s -> %d", url, resp.StatusCode)
    }
    body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
    if err != nil { return nil, fmt.Errorf("read body: %w", err) }

    p := Parse(s.cfg.Name, string(body))
    if p.Empty() {
        return nil, fmt.Errorf("no parseable data at %s", url)
    }
    return p, nil
}

var cellRe = regexp.MustCompile(`(?s)<td class="label[^"]*">\s*<span class="txt">([^<]*)</span>\s*</td>\s*<td class="data[^"]*">\s*<span class="txt">([^<]*)</span>`)

// Parse extracts a fragment from page HTML. Exported for tests.
func Parse(name, html string) *source.Partial {
    p := source.NewPartial(name)
    p.Currency = "BRL"

    for _, m := range cellRe.FindAllStringSubmatch(html, -1) {
        label := strings.TrimSpace(m[1])
        data := strings.TrimSpace(m[2])
        if data == "" { continue }
        applyCell(p, label, data)
    }
    return p
}

func applyCell(p *source.Partial, label, data string) {
    switch label {
    case "Empresa":
        p.Company[record.MetaName] = data
        return
    case "Setor":
        p.Company[record.MetaSector] = data
        return
    case "Subsetor":
        p.Company[record.MetaSubsector] = data
        return
    }

    switch label {
    case "Cotação":
        if v, err := parse.Number(data); err == nil { p.Price[record.PriceAtual] = v }
    case "Min 52 sem":
        if v, err := parse.Number(data); err == nil { p.Price[record.PriceLow52w] = v }
    case "Max 52 sem":
        if v, err := parse.Number(data); err == nil { p.Price[record.PriceHigh52w] = v }
    case "Dia":
        // daily variation, e.g. "-0,66%"
        if v, err := parse.Percent(data); err == nil { p.Price[record.PriceDayChangePct] = v }
    case "P/L":
        if v, err := parse.Number(data); err == nil { p.Indicators[record.IndPL] = v }
    case "P/VP":
        if v, err := parse.Number(data); err == nil { p.Indicators[record.IndPVP] = v }
    case "Div. Yield":
        if v, err := parse.Percent(data); err == nil { p.Indicators[record.IndDY] = v }
    case "ROE":
        if v, err := parse.Percent(data); err == nil { p.Indicators[record.IndROE] = v }
    case "ROIC":
        if v, err := parse.Percent(data); err == nil { p.Indicators[record.IndROIC] = v }
    case "Marg. Bruta":
        if v, err := parse.Percent(data); err == nil { p.Indicators[record.IndMargemBruta] = v }
    case "Marg. Líquida":
        if v, err := parse.Percent(data); err == nil { p.Indicators[record.IndMargemLiquida] = v }
    case "Liquidez Corr":
        if v, err := parse.Number(data); err == nil { p.Indicators[record.IndLiquidezCorrente] = v }
    case "Dív.Líq/EBITDA":
        if v, err := parse.Number(data); err == nil { p.Indicators[record.IndDivLiquidaEbitda] = v }
    case "Cres. Lucro 5a":
        if v, err := parse.Percent(data); err == nil { p.Indicators[record.IndCagrLucros] = v }
    case "Cres. Rec 5a":
        if v, err := parse.Percent(data); err == nil { p.Indicators[record.IndCagrReceitas] = v }
    case "Ativo":
        if v, err := parse.Abbreviated(data); err == nil { p.BalanceSheet[record.BSAtivoTotal] = v }
    case "Patrim. Líq":
        if v, err := parse.Abbreviated(data); err == nil { p.BalanceSheet[record.BSPatrimonioLiquido] = v }
    case "Dív. Bruta":
        if v, err := parse.Abbreviated(data); err == nil { p.BalanceSheet[record.BSDividaBruta] = v }
    case "Dív. Líquida":
        if v, err := parse.Abbreviated(data); err == nil { p.BalanceSheet[record.BSDividaLiquida] = v }
    case "Disponibilidades":
        if v, err := parse.Abbreviated(data); err == nil { p.BalanceSheet[record.BSDisponibilidades] = v }
    }
}
