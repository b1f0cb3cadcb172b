package projection

import (
	"fmt"
	"math"

	"spv-projection/internal/amortization"
	"spv-projection/internal/model"
)

// AcquisitionCostRate is the share of the price paid in fees and transfer
// taxes on top of the equity part of a purchase.
const AcquisitionCostRate = 0.07

// Schedule is the outcome of resolving purchase years and overrides.
type Schedule struct {
	Purchases []model.Purchase
	// Dropped lists nominal years whose actual purchase year falls after the
	// retirement year; no purchases happen after retirement.
	Dropped []int
}

// SchedulePurchases builds one Purchase per distinct configured year, with
// overrides winning over global defaults and the amortization schedule
// computed once per purchase.
func SchedulePurchases(s *model.Settings, cache *amortization.Cache) (Schedule, error) {
	var out Schedule
	growth := s.PriceGrowth.Value / 100

	for _, nominal := range s.NominalPurchaseYears() {
		o := s.PropertyOverrides[nominal]

		year := nominal
		if o.PurchaseYear != nil {
			year = *o.PurchaseYear
		}
		if year > s.RetirementYear {
			out.Dropped = append(out.Dropped, nominal)
			continue
		}

		price := s.UnitPrice * math.Pow(1+growth, float64(year))
		if o.Price != nil {
			price = *o.Price
		}
		ltv := s.LTV
		if o.LTV != nil {
			ltv = *o.LTV
		}
		rate := s.LoanRate.Value
		if o.LoanRate != nil {
			rate = *o.LoanRate
		}
		term := s.TermYears
		if o.TermYears != nil {
			term = *o.TermYears
		}

		sched, err := cache.Table(price*ltv/100, rate/100, term)
		if err != nil {
			return Schedule{}, fmt.Errorf("purchase %d amortization: %w", nominal, err)
		}
		out.Purchases = append(out.Purchases, model.NewPurchase(nominal, year, price, ltv, rate, term, sched))
	}
	return out, nil
}

// AcquisitionOutlay is the cash leaving the reserve when p is bought.
func AcquisitionOutlay(p model.Purchase) float64 {
	return p.Price*(1-p.LTV/100) + AcquisitionCostRate*p.Price
}
