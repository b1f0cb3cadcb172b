package amortization

import (
	"errors"
	"math"

	"spv-projection/internal/model"
)

// Table returns the fixed-payment schedule of a loan aggregated per loan-year.
// rate is the annual rate as a decimal (0.04 = 4%); interest accrues monthly.
func Table(loanAmount, rate float64, termYears int) ([]model.AmortYear, error) {
	if loanAmount < 0 {
		return nil, errors.New("loan amount must be >= 0")
	}
	if rate < 0 {
		return nil, errors.New("rate must be >= 0")
	}
	if termYears < 1 {
		return nil, errors.New("term must be >= 1 year")
	}

	r := rate / 12
	n := termYears * 12
	payment := MonthlyPayment(loanAmount, rate, termYears)

	out := make([]model.AmortYear, termYears)
	balance := loanAmount
	for m := 0; m < n; m++ {
		interest := balance * r
		principal := payment - interest
		if m == n-1 {
			// payment - interest cancels at high rates; the last month
			// retires whatever balance is left.
			principal = balance
		}
		balance -= principal
		if balance < 0 {
			balance = 0
		}
		y := m / 12
		out[y].Principal += principal
		out[y].Interest += interest
	}
	return out, nil
}

// MonthlyPayment is M = P·r(1+r)^n / ((1+r)^n − 1) with r = rate/12 and
// n = 12·termYears. A zero rate repays in equal instalments.
func MonthlyPayment(loanAmount, rate float64, termYears int) float64 {
	n := float64(termYears * 12)
	if n <= 0 {
		return 0
	}
	r := rate / 12
	if r == 0 {
		return loanAmount / n
	}
	f := math.Pow(1+r, n)
	return loanAmount * r * f / (f - 1)
}
