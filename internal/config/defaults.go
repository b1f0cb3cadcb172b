package config

import "spv-projection/internal/model"

// Default returns the reference plan: a 20-year accumulation phase buying three
// units, followed by a 10-year forecast.
func Default() model.Settings {
	return model.Settings{
		SeedEquity:      320_000,
		AnnualInjection: 100_000,
		InjectionYears:  5,

		UnitPrice:   600_000,
		PriceGrowth: model.Bounded(3, 2, 4),
		GrossYield:  model.Bounded(5, 4, 6),
		RentGrowth:  model.Bounded(2, 1, 3),
		OpexFactor:  model.Bounded(12, 10, 15),

		LTV:       65,
		LoanRate:  model.Bounded(4, 3.5, 4.5),
		TermYears: 30,

		CorpTaxRate: 20,
		DividendWHT: 28,

		PayoutRatio:      80,
		PayoutSchedule:   map[int]float64{},
		StartPayoutsYear: 0,

		ExtraPrepaySchedule: map[int]float64{
			11: 20_000,
			12: 20_000,
			13: 20_000,
			14: 20_000,
			15: 20_000,
		},

		PurchaseYears:     []int{0, 2, 4},
		PropertyOverrides: map[int]model.PropertyOverride{},

		RetirementYear: 20,
		ForecastPeriod: 10,
		BufferMonths:   model.DefaultBufferMonths,
	}
}
