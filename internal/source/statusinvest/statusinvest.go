package statusinvest

import (
    "context"
    "encoding/json"
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

const maxBody = 4 << 20

type Config struct {
    Name    string
    BaseURL string
}

// Source scrapes statusinvest.com.br stock pages. The rich path reads
// the JSON blob the page embeds for its own charts; when that blob is
// missing or malformed the adapter degrades to the visible quote values
// instead of failing the fetch.
type Source struct {
    cfg    Config
    client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Source {
    if cfg.Name == "" { cfg.Name = "statusinvest" }
    if cfg.BaseURL == "" { cfg.BaseURL = "https://statusinvest.com.br" }
    return &Source{cfg: cfg, client: hc}
}

func (s *Source) Name() string { return s.cfg.Name }

func (s *Source) Fetch(ctx context.Context, ticker string) (*source.Partial, error) {
    url := fmt.Sprintf("%s/acoes/%s", s.cfg.BaseURL, strings.ToLower(ticker))
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

var (
    blobRe  = regexp.MustCompile(`(?s)<script[^>]+id="company-data"[^>]*>(.*?)</script>`)
    valueRe = regexp.MustCompile(`(?s)title="(Valor atual|Mínima 52 semanas|Máxima 52 semanas|Dividend Yield)[^"]*".*?<strong class="value">([^<]+)</strong>`)
)

// companyBlob mirrors the page's embedded JSON. Percentages arrive as
// percent values and are normalized to fractions here.
type companyBlob struct {
    CompanyName      string   `json:"companyName"`
    Sector           string   `json:"sector"`
    Subsector        string   `json:"subsector"`
    Founded          string   `json:"founded"`
    Description      string   `json:"description"`
    Price            *float64 `json:"price"`
    PriceVariation   *float64 `json:"priceVariation"`
    PriceVariationPc *float64 `json:"priceVariationPercent"`
    Low52w           *float64 `json:"low52w"`
    High52w          *float64 `json:"high52w"`
    PL               *float64 `json:"pl"`
    PVP              *float64 `json:"pvp"`
    DY               *float64 `json:"dy"`
    ROE              *float64 `json:"roe"`
    ROIC             *float64 `json:"roic"`
    MargemBruta      *float64 `json:"margemBruta"`
    MargemLiquida    *float64 `json:"margemLiquida"`
    LiquidezCorrente *float64 `json:"liquidezCorrente"`
    DivLiquidaEbitda *float64 `json:"divLiquidaEbitda"`
    CagrLucros       *float64 `json:"cagrLucros5a"`
    CagrReceitas     *float64 `json:"cagrReceitas5a"`
    AtivoTotal       *float64 `json:"ativoTotal"`
    PatrimonioLiq    *float64 `json:"patrimonioLiquido"`
    DividaBruta      *float64 `json:"dividaBruta"`
    DividaLiquida    *float64 `json:"dividaLiquida"`
    Disponibilidades *float64 `json:"disponibilidades"`
}

// Parse extracts a fragment from page HTML. Exported for tests.
func Parse(name, html string) *source.Partial {
    p := source.NewPartial(name)
    p.Currency = "BRL"

    for _, m := range valueRe.FindAllStringSubmatch(html, -1) {
        v, err := parse.Number(m[2])
        if err != nil { continue }
        switch m[1] {
        case "Valor atual":
            p.Price[record.PriceAtual] = v
        case "Mínima 52 semanas":
            p.Price[record.PriceLow52w] = v
        case "Máxima 52 semanas":
            p.Price[record.PriceHigh52w] = v
        case "Dividend Yield":
            // shown as a percentage on the page
            if strings.Contains(m[2], "%") {
                p.Indicators[record.IndDY] = v
            } else {
                p.Indicators[record.IndDY] = v / 100
            }
        }
    }

    if m := blobRe.FindStringSubmatch(html); m != nil {
        var blob companyBlob
        if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &blob); err == nil {
            applyBlob(p, &blob)
        }
        // malformed blob: keep whatever the visible values gave us
    }
    return p
}

func applyBlob(p *source.Partial, b *companyBlob) {
    setMeta := func(k, v string) {
        if v != "" { p.Company[k] = v }
    }
    setMeta(record.MetaName, b.CompanyName)
    setMeta(record.MetaSector, b.Sector)
    setMeta(record.MetaSubsector, b.Subsector)
    setMeta(record.MetaFounded, b.Founded)
    setMeta(record.MetaDescription, b.Description)

    setPrice := func(k string, v *float64) {
        if v != nil { p.Price[k] = *v }
    }
    setPrice(record.PriceAtual, b.Price)
    setPrice(record.PriceDayChange, b.PriceVariation)
    setPrice(record.PriceLow52w, b.Low52w)
    setPrice(record.PriceHigh52w, b.High52w)
    if b.PriceVariationPc != nil {
        p.Price[record.PriceDayChangePct] = *b.PriceVariationPc / 100
    }

    setInd := func(k string, v *float64) {
        if v != nil { p.Indicators[k] = *v }
    }
    setPct := func(k string, v *float64) {
        if v != nil { p.Indicators[k] = *v / 100 }
    }
    setInd(record.IndPL, b.PL)
    setInd(record.IndPVP, b.PVP)
    setInd(record.IndLiquidezCorrente, b.LiquidezCorrente)
    setInd(record.IndDivLiquidaEbitda, b.DivLiquidaEbitda)
    setPct(record.IndDY, b.DY)
    setPct(record.IndROE, b.ROE)
    setPct(record.IndROIC, b.ROIC)
    setPct(record.IndMargemBruta, b.MargemBruta)
    setPct(record.IndMargemLiquida, b.MargemLiquida)
    setPct(record.IndCagrLucros, b.CagrLucros)
    setPct(record.IndCagrReceitas, b.CagrReceitas)

    setBS := func(k string, v *float64) {
        if v != nil { p.BalanceSheet[k] = *v }
    }
    setBS(record.BSAtivoTotal, b.AtivoTotal)
    setBS(record.BSPatrimonioLiquido, b.PatrimonioLiq)
    setBS(record.BSDividaBruta, b.DividaBruta)
    setBS(record.BSDividaLiquida, b.DividaLiquida)
    setBS(record.BSDisponibilidades, b.Disponibilidades)
}
