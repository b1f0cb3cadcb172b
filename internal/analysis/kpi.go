package analysis

import (
	"math"
	"sort"

	"spv-projection/internal/model"
)

// KPIs is a plan-level summary you can use for ranking and reports.
// Amounts are EUR, rates are percentages.
type KPIs struct {
	Years          int `json:"years"`
	RetirementYear int `json:"retirement_year"`

	ValueAtHorizon     float64 `json:"value_at_horizon"`
	EquityAtHorizon    float64 `json:"equity_at_horizon"`
	LTVAtHorizon       float64 `json:"ltv_at_horizon"`
	DividendAtHorizon  float64 `json:"dividend_at_horizon"`
	EquityAtRetirement float64 `json:"equity_at_retirement"`
	DividendAtRetire   float64 `json:"dividend_at_retirement"`

	CumulativePropertyTax float64 `json:"cumulative_property_tax"`
	CumulativeDividends   float64 `json:"cumulative_dividends"`
	DepreciationShield    float64 `json:"depreciation_shield"`
	AverageGrossYield     float64 `json:"average_gross_yield"`

	TotalInvested  float64 `json:"total_invested"`
	EquityMultiple float64 `json:"equity_multiple"`
	CashOnCash     float64 `json:"cash_on_cash"`

	// Distribution of net dividends over the post-retirement years.
	DividendP10 float64 `json:"dividend_p10"`
	DividendP50 float64 `json:"dividend_p50"`

	MinCashReserve       float64 `json:"min_cash_reserve"`
	MaxLTV               float64 `json:"max_ltv"`
	FirstUnderfundedYear int     `json:"first_underfunded_year"` // -1 when never underfunded
}

// Compute derives KPIs from one run. s must be the settings r was produced
// from (the depreciation shield uses its corporate tax rate).
func Compute(s model.Settings, r *model.Result) KPIs {
	k := KPIs{RetirementYear: s.RetirementYear, FirstUnderfundedYear: -1}
	if r == nil || len(r.Value) == 0 {
		return k
	}
	k.Years = r.Years
	h := r.Years
	ret := s.RetirementYear
	if ret > h {
		ret = h
	}

	k.ValueAtHorizon = r.Value[h]
	k.EquityAtHorizon = r.Equity[h]
	k.LTVAtHorizon = r.LTV[h]
	k.DividendAtHorizon = r.Dividends[h]
	k.EquityAtRetirement = r.Equity[ret]
	k.DividendAtRetire = r.Dividends[ret]

	var depreciation float64
	for y := 0; y <= h; y++ {
		k.CumulativePropertyTax += r.IMI[y] + r.AIMI[y]
		k.CumulativeDividends += r.Dividends[y]
		depreciation += r.BuildingDepreciation[y]
	}
	k.DepreciationShield = depreciation * s.CorpTaxRate / 100
	if r.Value[h] > 0 {
		k.AverageGrossYield = r.Rent[h] / r.Value[h] * 100
	}

	injections := s.InjectionYears
	if injections > s.RetirementYear {
		injections = s.RetirementYear
	}
	k.TotalInvested = s.SeedEquity + s.AnnualInjection*float64(max(injections, 0))
	if k.TotalInvested > 0 {
		k.EquityMultiple = k.EquityAtHorizon / k.TotalInvested
		k.CashOnCash = k.DividendAtHorizon / k.TotalInvested * 100
	}

	var late []float64
	for y := ret + 1; y <= h; y++ {
		late = append(late, r.Dividends[y])
	}
	sort.Float64s(late)
	k.DividendP10 = percentileSorted(late, 0.10)
	k.DividendP50 = percentileSorted(late, 0.50)

	k.MinCashReserve = math.Inf(1)
	k.MaxLTV = math.Inf(-1)
	for y := 0; y <= h; y++ {
		if r.CashReserve[y] < k.MinCashReserve {
			k.MinCashReserve = r.CashReserve[y]
		}
		if r.LTV[y] > k.MaxLTV {
			k.MaxLTV = r.LTV[y]
		}
		if r.CashReserve[y] < 0 && k.FirstUnderfundedYear < 0 {
			k.FirstUnderfundedYear = y
		}
	}
	return k
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
