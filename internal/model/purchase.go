package model

// AmortYear is one loan-year of scheduled repayment.
type AmortYear struct {
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
}

// Purchase is one acquisition with its loan. It is built once per run and never
// mutated afterwards.
type Purchase struct {
	// NominalYear is the configured purchase year; Year is where the purchase
	// actually happens after overrides.
	NominalYear int     `json:"nominal_year"`
	Year        int     `json:"year"`
	Price       float64 `json:"price"`
	LTV         float64 `json:"ltv"` // %
	LoanAmount  float64 `json:"loan_amount"`
	LoanRate    float64 `json:"loan_rate"` // %
	TermYears   int     `json:"term_years"`

	Schedule []AmortYear `json:"-"`

	// opening[a] is the scheduled balance at the start of loan-age a.
	opening []float64
}

// NewPurchase attaches a precomputed schedule and derives the opening balances.
func NewPurchase(nominalYear, year int, price, ltv, loanRate float64, termYears int, schedule []AmortYear) Purchase {
	p := Purchase{
		NominalYear: nominalYear,
		Year:        year,
		Price:       price,
		LTV:         ltv,
		LoanAmount:  price * ltv / 100,
		LoanRate:    loanRate,
		TermYears:   termYears,
		Schedule:    schedule,
		opening:     make([]float64, len(schedule)),
	}
	bal := p.LoanAmount
	for i, row := range schedule {
		p.opening[i] = bal
		bal -= row.Principal
		if bal < 0 {
			bal = 0
		}
	}
	return p
}

// Owned reports whether the property is held in year y.
func (p *Purchase) Owned(y int) bool { return y >= p.Year }

// LoanAge returns the loan-age in year y and whether the loan is still being
// repaid.
func (p *Purchase) LoanAge(y int) (int, bool) {
	age := y - p.Year
	if age < 0 || age >= p.TermYears || age >= len(p.Schedule) {
		return age, false
	}
	return age, true
}

// OpeningBalance is the loan amount minus scheduled principal through age-1.
func (p *Purchase) OpeningBalance(age int) float64 {
	if age <= 0 {
		return p.LoanAmount
	}
	if age >= len(p.opening) {
		return 0
	}
	return p.opening[age]
}
