package fundamentus

import (
    "math"
    "testing"

    "tickerhub/internal/record"
)

const detailPage = `
<html><body><table>
<tr>
  <td class="label w35"><span class="txt">Empresa</span></td>
  <td class="data w35"><span class="txt">PETROBRAS PN</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">Setor</span></td>
  <td class="data"><span class="txt">Petróleo, Gás e Biocombustíveis</span></td>
  <td class="label"><span class="txt">Subsetor</span></td>
  <td class="data"><span class="txt">Exploração e Refino</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">Cotação</span></td>
  <td class="data destaque w3"><span class="txt">38,50</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">Min 52 sem</span></td>
  <td class="data"><span class="txt">30,12</span></td>
  <td class="label"><span class="txt">Max 52 sem</span></td>
  <td class="data"><span class="txt">42,90</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">Dia</span></td>
  <td class="data"><span class="txt">-0,66%</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">P/L</span></td>
  <td class="data"><span class="txt">5,20</span></td>
  <td class="label"><span class="txt">P/VP</span></td>
  <td class="data"><span class="txt">1,10</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">Div. Yield</span></td>
  <td class="data"><span class="txt">11,54%</span></td>
  <td class="label"><span class="txt">ROIC</span></td>
  <td class="data"><span class="txt">15,30%</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">Liquidez Corr</span></td>
  <td class="data"><span class="txt">0,90</span></td>
  <td class="label"><span class="txt">Dív.Líq/EBITDA</span></td>
  <td class="data"><span class="txt">0,75</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">Ativo</span></td>
  <td class="data"><span class="txt">1,05 B</span></td>
  <td class="label"><span class="txt">Dív. Líquida</span></td>
  <td class="data"><span class="txt">270,4 M</span></td>
</tr>
<tr>
  <td class="label"><span class="txt">ROE</span></td>
  <td class="data"><span class="txt"></span></td>
</tr>
</table></body></html>`

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9*math.Max(1, math.Abs(b)) }

func TestParse_DetailPage(t *testing.T) {
    p := Parse("fundamentus", detailPage)

    if p.Currency != "BRL" {
        t.Fatalf("currency: %q", p.Currency)
    }
    if got := p.Company[record.MetaName]; got != "PETROBRAS PN" {
        t.Fatalf("name: %q", got)
    }
    if got := p.Company[record.MetaSector]; got != "Petróleo, Gás e Biocombustíveis" {
        t.Fatalf("sector: %q", got)
    }
    if got := p.Company[record.MetaSubsector]; got != "Exploração e Refino" {
        t.Fatalf("subsector: %q", got)
    }
    if got := p.Price[record.PriceAtual]; got != 38.5 {
        t.Fatalf("atual: %v", got)
    }
    if got := p.Price[record.PriceLow52w]; got != 30.12 {
        t.Fatalf("low52w: %v", got)
    }
    if got := p.Price[record.PriceHigh52w]; got != 42.9 {
        t.Fatalf("high52w: %v", got)
    }
    if got := p.Price[record.PriceDayChangePct]; !almost(got, -0.0066) {
        t.Fatalf("dayChangePct: %v", got)
    }
    if got := p.Indicators[record.IndPL]; got != 5.2 {
        t.Fatalf("pl: %v", got)
    }
    if got := p.Indicators[record.IndPVP]; got != 1.1 {
        t.Fatalf("pvp: %v", got)
    }
    if got := p.Indicators[record.IndDY]; !almost(got, 0.1154) {
        t.Fatalf("dy: %v", got)
    }
    if got := p.Indicators[record.IndROIC]; !almost(got, 0.153) {
        t.Fatalf("roic: %v", got)
    }
    if got := p.Indicators[record.IndDivLiquidaEbitda]; got != 0.75 {
        t.Fatalf("divLiquidaEbitda: %v", got)
    }
    if got := p.BalanceSheet[record.BSAtivoTotal]; !almost(got, 1.05e9) {
        t.Fatalf("ativoTotal: %v", got)
    }
    if got := p.BalanceSheet[record.BSDividaLiquida]; !almost(got, 270.4e6) {
        t.Fatalf("dividaLiquida: %v", got)
    }
    // empty data cell contributes nothing
    if _, ok := p.Indicators[record.IndROE]; ok {
        t.Fatal("roe with empty cell should be absent")
    }
}

func TestParse_NoTable(t *testing.T) {
    p := Parse("fundamentus", "<html><body>Nenhum papel encontrado</body></html>")
    if !p.Empty() {
        t.Fatalf("expected empty fragment, got %+v", p)
    }
}
