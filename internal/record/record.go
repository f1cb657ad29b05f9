package record

import (
    "errors"
    "regexp"
    "strings"
    "time"
)

// DateLayout is the calendar-date format used by all history series.
// Lexicographic order on this layout equals chronological order.
const DateLayout = "2006-01-02"

// ErrInvalidTicker is returned for an empty or malformed ticker symbol.
var ErrInvalidTicker = errors.New("invalid ticker symbol")

var tickerRe = regexp.MustCompile(`^[A-Z0-9]{4,10}$`)

// NormalizeTicker uppercases and validates a ticker symbol (e.g. PETR4, VALE3).
func NormalizeTicker(s string) (string, error) {
    t := strings.ToUpper(strings.TrimSpace(s))
    if !tickerRe.MatchString(t) {
        return "", ErrInvalidTicker
    }
    return t, nil
}

// Company meta field names. String fields default to "" rather than null.
const (
    MetaName        = "name"
    MetaSector      = "sector"
    MetaSubsector   = "subsector"
    MetaFounded     = "founded"
    MetaDescription = "description"
)

// Price snapshot field names used by partial fragments.
const (
    PriceAtual        = "atual"
    PriceDayChange    = "dayChange"
    PriceDayChangePct = "dayChangePct"
    PriceHigh52w      = "high52w"
    PriceLow52w       = "low52w"
)

// Canonical indicator keys. Percentage-like values (dy, roe, margins,
// growth) are stored as fractions: 0.11 means 11%.
const (
    IndPL               = "pl"
    IndPVP              = "pvp"
    IndDY               = "dy"
    IndROE              = "roe"
    IndROIC             = "roic"
    IndMargemBruta      = "margemBruta"
    IndMargemLiquida    = "margemLiquida"
    IndLiquidezCorrente = "liquidezCorrente"
    IndDivLiquidaEbitda = "divLiquidaEbitda"
    IndCagrLucros       = "cagrLucros"
    IndCagrReceitas     = "cagrReceitas"
)

// Canonical balance-sheet keys, values in BRL.
const (
    BSAtivoTotal        = "ativoTotal"
    BSPatrimonioLiquido = "patrimonioLiquido"
    BSDividaBruta       = "dividaBruta"
    BSDividaLiquida     = "dividaLiquida"
    BSDisponibilidades  = "disponibilidades"
)

// IndicatorKeys is the full canonical key set; serialized records always
// carry every key, with null for values no source provided.
var IndicatorKeys = []string{
    IndPL, IndPVP, IndDY, IndROE, IndROIC,
    IndMargemBruta, IndMargemLiquida, IndLiquidezCorrente,
    IndDivLiquidaEbitda, IndCagrLucros, IndCagrReceitas,
}

// BalanceSheetKeys is the full canonical balance-sheet key set.
var BalanceSheetKeys = []string{
    BSAtivoTotal, BSPatrimonioLiquido, BSDividaBruta,
    BSDividaLiquida, BSDisponibilidades,
}

// CompanyMeta holds descriptive company fields.
type CompanyMeta struct {
    Name        string `json:"name"`
    Sector      string `json:"sector"`
    Subsector   string `json:"subsector"`
    Founded     string `json:"founded"`
    Description string `json:"description"`
}

// PriceSnapshot holds the current-price view of a ticker.
type PriceSnapshot struct {
    Atual        *float64 `json:"atual"`
    Currency     string   `json:"currency"`
    DayChange    *float64 `json:"dayChange"`
    DayChangePct *float64 `json:"dayChangePct"`
    High52w      *float64 `json:"high52w"`
    Low52w       *float64 `json:"low52w"`
}

// Point is one dated observation in a history series.
type Point struct {
    Date  string  `json:"date"`
    Value float64 `json:"value"`
}

// TickerRecord is the canonical cached entity for one ticker.
// Timestamps serialize as RFC 3339 UTC.
type TickerRecord struct {
    Ticker          string              `json:"ticker"`
    Company         CompanyMeta         `json:"companyMeta"`
    Price           PriceSnapshot       `json:"priceSnapshot"`
    Indicators      map[string]*float64 `json:"indicators"`
    BalanceSheet    map[string]*float64 `json:"balanceSheet"`
    DividendHistory []Point             `json:"dividendHistory"`
    PriceHistory    []Point             `json:"priceHistory"`
    Sources         []string            `json:"sources"`
    CreatedAt       time.Time           `json:"createdAt"`
    UpdatedAt       time.Time           `json:"updatedAt"`
    ValidUntil      time.Time           `json:"validUntil"`
}

// New returns an empty record for ticker with the full canonical key
// shape: every indicator and balance-sheet key present, valued null.
func New(ticker string) *TickerRecord {
    r := &TickerRecord{
        Ticker:       ticker,
        Indicators:   make(map[string]*float64, len(IndicatorKeys)),
        BalanceSheet: make(map[string]*float64, len(BalanceSheetKeys)),
    }
    for _, k := range IndicatorKeys {
        r.Indicators[k] = nil
    }
    for _, k := range BalanceSheetKeys {
        r.BalanceSheet[k] = nil
    }
    return r
}

// Fresh reports whether the record is still within its cache lifetime.
func (r *TickerRecord) Fresh(now time.Time) bool {
    return now.Before(r.ValidUntil)
}

// Float returns a pointer to v; convenience for optional numeric fields.
func Float(v float64) *float64 { return &v }
