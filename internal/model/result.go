package model

// Warnings are advisory feasibility flags. A run with warnings still produced a
// complete series.
type Warnings struct {
	IsUnderfunded bool `json:"is_underfunded"`
	HighLTV       bool `json:"high_ltv"`
}

// HighLTVThreshold is the stress cap above which Warnings.HighLTV is raised.
const HighLTVThreshold = 80.0

// Result holds year-indexed series for years 0..Years inclusive. Amounts are
// EUR, LTV is a percentage.
type Result struct {
	Years int `json:"years"`

	Debt                 []float64 `json:"debt"`
	Value                []float64 `json:"value"`
	Rent                 []float64 `json:"rent"`
	Cashflow             []float64 `json:"cashflow"`
	Equity               []float64 `json:"equity"`
	Dividends            []float64 `json:"dividends"`
	LTV                  []float64 `json:"ltv"`
	CashReserve          []float64 `json:"cash_reserve"`
	BuildingDepreciation []float64 `json:"building_depreciation"`
	IMI                  []float64 `json:"imi"`
	AIMI                 []float64 `json:"aimi"`

	Warnings Warnings `json:"warnings"`

	Purchases []Purchase  `json:"purchases,omitempty"`
	Ledger    []LedgerRow `json:"ledger,omitempty"`
}

// NewResult allocates every series for years 0..years.
func NewResult(years int) *Result {
	n := years + 1
	return &Result{
		Years:                years,
		Debt:                 make([]float64, n),
		Value:                make([]float64, n),
		Rent:                 make([]float64, n),
		Cashflow:             make([]float64, n),
		Equity:               make([]float64, n),
		Dividends:            make([]float64, n),
		LTV:                  make([]float64, n),
		CashReserve:          make([]float64, n),
		BuildingDepreciation: make([]float64, n),
		IMI:                  make([]float64, n),
		AIMI:                 make([]float64, n),
		Ledger:               make([]LedgerRow, 0, n),
	}
}

// ScenarioRange bundles the nominal run with its pessimistic and optimistic
// brackets. Min and Max are nil when no input has bounds or the bracket run
// failed.
type ScenarioRange struct {
	Base *Result `json:"base"`
	Min  *Result `json:"min,omitempty"`
	Max  *Result `json:"max,omitempty"`
}
