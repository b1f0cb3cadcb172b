package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"spv-projection/internal/analysis"
	"spv-projection/internal/model"
)

// Summary is everything a report renders for one plan.
type Summary struct {
	Name     string               `json:"name"`
	Settings model.Settings       `json:"settings"`
	Range    *model.ScenarioRange `json:"range"`
	KPIs     analysis.KPIs        `json:"kpis"`
	MinKPIs  *analysis.KPIs       `json:"min_kpis,omitempty"`
	MaxKPIs  *analysis.KPIs       `json:"max_kpis,omitempty"`
}

// Build computes the KPIs of every run present in rng.
func Build(name string, s model.Settings, rng *model.ScenarioRange) Summary {
	sum := Summary{Name: name, Settings: s, Range: rng}
	if rng == nil {
		return sum
	}
	sum.KPIs = analysis.Compute(s, rng.Base)
	if rng.Min != nil {
		k := analysis.Compute(s, rng.Min)
		sum.MinKPIs = &k
	}
	if rng.Max != nil {
		k := analysis.Compute(s, rng.Max)
		sum.MaxKPIs = &k
	}
	return sum
}

// EUR formats an amount with the euro currency rules of go-money.
func EUR(v float64) string {
	cents := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return money.New(cents, money.EUR).Display()
}

func pct(v float64) string { return decimal.NewFromFloat(v).StringFixed(1) + "%" }

// Markdown renders the summary as GitHub-flavoured markdown.
func Markdown(sum Summary) string {
	var b strings.Builder
	title := sum.Name
	if title == "" {
		title = "Projection"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if sum.Range == nil || sum.Range.Base == nil {
		b.WriteString("_No result._\n")
		return b.String()
	}
	base := sum.Range.Base
	fmt.Fprintf(&b, "%d purchases, retirement in year %d, horizon year %d.\n\n",
		len(base.Purchases), sum.Settings.RetirementYear, base.Years)

	if w := base.Warnings; w.IsUnderfunded || w.HighLTV {
		b.WriteString("## Warnings\n\n")
		if w.IsUnderfunded {
			fmt.Fprintf(&b, "- Cash reserve goes negative (first in year %d, low of %s).\n",
				sum.KPIs.FirstUnderfundedYear, EUR(sum.KPIs.MinCashReserve))
		}
		if w.HighLTV {
			fmt.Fprintf(&b, "- LTV exceeds %s (peak %s).\n", pct(model.HighLTVThreshold), pct(sum.KPIs.MaxLTV))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Key metrics\n\n")
	b.WriteString("| Metric | Base | Min | Max |\n|---|---:|---:|---:|\n")
	row := func(label string, get func(analysis.KPIs) string) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", label, get(sum.KPIs), opt(sum.MinKPIs, get), opt(sum.MaxKPIs, get))
	}
	row("Portfolio value", func(k analysis.KPIs) string { return EUR(k.ValueAtHorizon) })
	row("Equity", func(k analysis.KPIs) string { return EUR(k.EquityAtHorizon) })
	row("Equity at retirement", func(k analysis.KPIs) string { return EUR(k.EquityAtRetirement) })
	row("LTV", func(k analysis.KPIs) string { return pct(k.LTVAtHorizon) })
	row("Net dividend", func(k analysis.KPIs) string { return EUR(k.DividendAtHorizon) })
	row("Cumulative dividends", func(k analysis.KPIs) string { return EUR(k.CumulativeDividends) })
	row("Property taxes (IMI + AIMI)", func(k analysis.KPIs) string { return EUR(k.CumulativePropertyTax) })
	row("Depreciation shield", func(k analysis.KPIs) string { return EUR(k.DepreciationShield) })
	row("Gross yield", func(k analysis.KPIs) string { return pct(k.AverageGrossYield) })
	row("Equity multiple", func(k analysis.KPIs) string { return decimal.NewFromFloat(k.EquityMultiple).StringFixed(2) + "x" })
	row("Cash on cash", func(k analysis.KPIs) string { return pct(k.CashOnCash) })
	row("Min cash reserve", func(k analysis.KPIs) string { return EUR(k.MinCashReserve) })

	b.WriteString("\n## By year\n\n")
	b.WriteString("| Year | Value | Debt | Equity | LTV | Net dividend | Reserve |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|---:|\n")
	for y := 0; y <= base.Years; y++ {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n", y,
			EUR(base.Value[y]), EUR(base.Debt[y]), EUR(base.Equity[y]),
			pct(base.LTV[y]), EUR(base.Dividends[y]), EUR(base.CashReserve[y]))
	}
	return b.String()
}

func opt(k *analysis.KPIs, get func(analysis.KPIs) string) string {
	if k == nil {
		return "-"
	}
	return get(*k)
}

// HTML converts markdown to an HTML fragment.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders markdown for an ANSI terminal of the given width.
func Terminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// JSON encodes the summary, indented.
func JSON(sum Summary) ([]byte, error) {
	return json.MarshalIndent(sum, "", "  ")
}
