package model

import (
	"fmt"
	"sort"
)

// Range is a ranged input: a nominal value with optional pessimistic/optimistic
// bounds. Values are whole percents (3 = 3%).
type Range struct {
	Value float64  `json:"value" yaml:"value"`
	Min   *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max   *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Fixed returns a Range without sensitivity bounds.
func Fixed(v float64) Range { return Range{Value: v} }

// Bounded returns a Range with both bounds set.
func Bounded(v, lo, hi float64) Range { return Range{Value: v, Min: &lo, Max: &hi} }

// HasBounds reports whether both Min and Max are defined.
func (r Range) HasBounds() bool { return r.Min != nil && r.Max != nil }

// PropertyOverride replaces global defaults for one purchase. It is keyed by the
// nominal purchase year in Settings.PropertyOverrides.
type PropertyOverride struct {
	Price        *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	LTV          *float64 `json:"ltv,omitempty" yaml:"ltv,omitempty"`             // %
	LoanRate     *float64 `json:"loan_rate,omitempty" yaml:"loan_rate,omitempty"` // %
	TermYears    *int     `json:"term_years,omitempty" yaml:"term_years,omitempty"`
	PurchaseYear *int     `json:"purchase_year,omitempty" yaml:"purchase_year,omitempty"`
}

// Settings is the fully resolved configuration of one projection run.
// Units:
// - amounts: EUR
// - every percentage field (ranges, LTV, tax rates, payout, withholding): whole percent
// - years: offsets from year 0
type Settings struct {
	SeedEquity      float64 `json:"seed_equity"`
	AnnualInjection float64 `json:"annual_injection"`
	InjectionYears  int     `json:"injection_years"`

	UnitPrice   float64 `json:"unit_price"`
	PriceGrowth Range   `json:"price_growth"`
	GrossYield  Range   `json:"gross_yield"`
	RentGrowth  Range   `json:"rent_growth"`
	OpexFactor  Range   `json:"opex_factor"`

	LTV       float64 `json:"ltv"`
	LoanRate  Range   `json:"loan_rate"`
	TermYears int     `json:"term_years"`

	CorpTaxRate float64 `json:"corp_tax_rate"`
	DividendWHT float64 `json:"dividend_wht"`

	PayoutRatio      float64         `json:"payout_ratio"`
	PayoutSchedule   map[int]float64 `json:"payout_schedule,omitempty"`
	StartPayoutsYear int             `json:"start_payouts_year"`

	ExtraPrepaySchedule map[int]float64 `json:"extra_prepay_schedule,omitempty"`

	PurchaseYears     []int                    `json:"purchase_years"`
	PropertyOverrides map[int]PropertyOverride `json:"property_overrides,omitempty"`

	RetirementYear int `json:"retirement_year"`
	ForecastPeriod int `json:"forecast_period"`

	// BufferMonths is the liquidity buffer in months of debt service.
	// Zero falls back to DefaultBufferMonths.
	BufferMonths float64 `json:"buffer_months"`

	Scenarios Effects `json:"scenarios,omitempty"`
}

const DefaultBufferMonths = 6

// TotalYears is the last simulated year index.
func (s *Settings) TotalYears() int { return s.RetirementYear + s.ForecastPeriod }

// EffectiveBufferMonths applies the default when BufferMonths is unset.
func (s *Settings) EffectiveBufferMonths() float64 {
	if s.BufferMonths <= 0 {
		return DefaultBufferMonths
	}
	return s.BufferMonths
}

// HasRanges reports whether any ranged input has both bounds, which is what
// triggers the pessimistic/optimistic runs.
func (s *Settings) HasRanges() bool {
	for _, r := range s.ranges() {
		if r.HasBounds() {
			return true
		}
	}
	return false
}

func (s *Settings) ranges() []*Range {
	return []*Range{&s.PriceGrowth, &s.GrossYield, &s.RentGrowth, &s.OpexFactor, &s.LoanRate}
}

// Variant returns a copy where every ranged input is replaced by its Min
// (pessimistic=true) or Max bound, where that bound is defined. Scenario
// overlays and all other fields are kept.
func (s Settings) Variant(pessimistic bool) Settings {
	out := s.Clone()
	for _, r := range out.ranges() {
		bound := r.Max
		if pessimistic {
			bound = r.Min
		}
		if bound != nil {
			r.Value = *bound
		}
	}
	return out
}

// Clone returns a deep copy so variants never share maps or slices.
func (s Settings) Clone() Settings {
	out := s
	out.PurchaseYears = append([]int(nil), s.PurchaseYears...)
	out.PayoutSchedule = cloneYearMap(s.PayoutSchedule)
	out.ExtraPrepaySchedule = cloneYearMap(s.ExtraPrepaySchedule)
	if s.PropertyOverrides != nil {
		out.PropertyOverrides = make(map[int]PropertyOverride, len(s.PropertyOverrides))
		for k, v := range s.PropertyOverrides {
			out.PropertyOverrides[k] = v
		}
	}
	out.Scenarios = append(Effects(nil), s.Scenarios...)
	return out
}

func cloneYearMap(m map[int]float64) map[int]float64 {
	if m == nil {
		return nil
	}
	out := make(map[int]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NominalPurchaseYears returns the configured purchase years, deduplicated and
// sorted.
func (s *Settings) NominalPurchaseYears() []int {
	seen := make(map[int]bool, len(s.PurchaseYears))
	out := make([]int, 0, len(s.PurchaseYears))
	for _, y := range s.PurchaseYears {
		if seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Validate checks the inputs that would make the projection meaningless or
// break the amortization formula. Infeasible-but-valid inputs (negative
// reserves, high LTV) are not errors.
func (s *Settings) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if s.SeedEquity < 0 {
		add("seed_equity", "must be >= 0")
	}
	if s.AnnualInjection < 0 {
		add("annual_injection", "must be >= 0")
	}
	if s.InjectionYears < 0 {
		add("injection_years", "must be >= 0")
	}
	if s.UnitPrice <= 0 {
		add("unit_price", "must be > 0")
	}
	if s.LTV < 0 || s.LTV > 100 {
		add("ltv", "must be in [0, 100]")
	}
	if s.TermYears < 1 {
		add("term_years", "must be >= 1")
	}
	if s.LoanRate.Value < 0 {
		add("loan_rate", "must be >= 0")
	}
	if s.GrossYield.Value < 0 {
		add("gross_yield", "must be >= 0")
	}
	for _, nr := range []struct {
		name string
		r    Range
	}{
		{"price_growth", s.PriceGrowth},
		{"gross_yield", s.GrossYield},
		{"rent_growth", s.RentGrowth},
		{"opex_factor", s.OpexFactor},
		{"loan_rate", s.LoanRate},
	} {
		if nr.r.HasBounds() && *nr.r.Min > *nr.r.Max {
			add(nr.name, "min %.4g is above max %.4g", *nr.r.Min, *nr.r.Max)
		}
	}
	if s.LoanRate.Min != nil && *s.LoanRate.Min < 0 {
		add("loan_rate", "min must be >= 0")
	}
	if s.CorpTaxRate < 0 || s.CorpTaxRate > 100 {
		add("corp_tax_rate", "must be in [0, 100]")
	}
	if s.DividendWHT < 0 || s.DividendWHT > 100 {
		add("dividend_wht", "must be in [0, 100]")
	}
	if s.PayoutRatio < 0 || s.PayoutRatio > 100 {
		add("payout_ratio", "must be in [0, 100]")
	}
	for _, y := range sortedYears(s.PayoutSchedule) {
		if r := s.PayoutSchedule[y]; r < 0 || r > 100 {
			add(fmt.Sprintf("payout_schedule[%d]", y), "must be in [0, 100]")
		}
	}
	for _, y := range sortedYears(s.ExtraPrepaySchedule) {
		if s.ExtraPrepaySchedule[y] < 0 {
			add(fmt.Sprintf("extra_prepay_schedule[%d]", y), "must be >= 0")
		}
	}
	if s.RetirementYear < 0 {
		add("retirement_year", "must be >= 0")
	}
	if s.ForecastPeriod < 0 {
		add("forecast_period", "must be >= 0")
	}
	if s.BufferMonths < 0 {
		add("buffer_months", "must be >= 0")
	}
	for _, y := range s.PurchaseYears {
		if y < 0 {
			add("purchase_years", "year %d must be >= 0", y)
		}
	}
	for _, y := range sortedYears(s.PropertyOverrides) {
		o := s.PropertyOverrides[y]
		field := fmt.Sprintf("property_overrides[%d]", y)
		if o.Price != nil && *o.Price <= 0 {
			add(field+".price", "must be > 0")
		}
		if o.LTV != nil && (*o.LTV < 0 || *o.LTV > 100) {
			add(field+".ltv", "must be in [0, 100]")
		}
		if o.LoanRate != nil && *o.LoanRate < 0 {
			add(field+".loan_rate", "must be >= 0")
		}
		if o.TermYears != nil && *o.TermYears < 1 {
			add(field+".term_years", "must be >= 1")
		}
		if o.PurchaseYear != nil && *o.PurchaseYear < 0 {
			add(field+".purchase_year", "must be >= 0")
		}
	}
	for i, e := range s.Scenarios {
		if err := validateEffect(e); err != "" {
			add(fmt.Sprintf("scenarios[%d] (%s)", i, e.Kind()), "%s", err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func sortedYears[V any](m map[int]V) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
