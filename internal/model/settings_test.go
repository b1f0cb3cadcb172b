package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSettings() Settings {
	return Settings{
		SeedEquity:     100_000,
		UnitPrice:      300_000,
		PriceGrowth:    Bounded(3, 2, 4),
		GrossYield:     Fixed(5),
		RentGrowth:     Range{Value: 2, Min: Float(1)},
		OpexFactor:     Fixed(12),
		LTV:            60,
		LoanRate:       Bounded(4, 3.5, 4.5),
		TermYears:      25,
		PurchaseYears:  []int{4, 0, 4, 2},
		PayoutSchedule: map[int]float64{3: 50},
		RetirementYear: 10,
		ForecastPeriod: 5,
	}
}

func TestSettings_Variant(t *testing.T) {
	s := baseSettings()
	s.Scenarios = Effects{RateSpike{Window: Window{StartYear: 1, Duration: 1}, BumpBps: 100}}

	lo := s.Variant(true)
	hi := s.Variant(false)

	assert.Equal(t, 2.0, lo.PriceGrowth.Value)
	assert.Equal(t, 4.0, hi.PriceGrowth.Value)
	assert.Equal(t, 3.5, lo.LoanRate.Value)
	assert.Equal(t, 4.5, hi.LoanRate.Value)
	// a single bound still substitutes on its own side
	assert.Equal(t, 1.0, lo.RentGrowth.Value)
	assert.Equal(t, 2.0, hi.RentGrowth.Value)
	assert.Equal(t, 5.0, lo.GrossYield.Value)

	assert.Equal(t, s.Scenarios, lo.Scenarios)
	assert.Equal(t, 3.0, s.PriceGrowth.Value, "variant must not touch the original")
}

func TestSettings_CloneIsDeep(t *testing.T) {
	s := baseSettings()
	c := s.Clone()
	c.PurchaseYears[0] = 99
	c.PayoutSchedule[3] = 10
	assert.Equal(t, 4, s.PurchaseYears[0])
	assert.Equal(t, 50.0, s.PayoutSchedule[3])
}

func TestSettings_HasRanges(t *testing.T) {
	s := baseSettings()
	assert.True(t, s.HasRanges())

	s.PriceGrowth = Fixed(3)
	s.LoanRate = Fixed(4)
	assert.False(t, s.HasRanges(), "one-sided bounds do not trigger bracketing")
}

func TestSettings_NominalPurchaseYears(t *testing.T) {
	s := baseSettings()
	assert.Equal(t, []int{0, 2, 4}, s.NominalPurchaseYears())
	assert.Equal(t, 15, s.TotalYears())
	assert.Equal(t, float64(DefaultBufferMonths), s.EffectiveBufferMonths())
}

func TestSettings_Validate(t *testing.T) {
	require.NoError(t, (&Settings{UnitPrice: 1, TermYears: 1}).Validate())

	s := baseSettings()
	s.LTV = 120
	s.CorpTaxRate = -1
	s.ExtraPrepaySchedule = map[int]float64{3: -5}
	s.PropertyOverrides = map[int]PropertyOverride{2: {TermYears: new(int)}}
	s.Scenarios = Effects{PropertyCrash{Window: Window{StartYear: 1, Duration: 1}, Drop: 150}}

	err := s.Validate()
	require.Error(t, err)
	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)

	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{
		"ltv",
		"corp_tax_rate",
		"extra_prepay_schedule[3]",
		"property_overrides[2].term_years",
		"scenarios[0] (property_crash)",
	}, fields)
	assert.Contains(t, err.Error(), "invalid settings: ")
}

func TestSettings_ValidateOrderIsStable(t *testing.T) {
	s := baseSettings()
	s.PriceGrowth = Bounded(3, 5, 1)
	s.GrossYield = Bounded(5, 6, 4)
	s.RentGrowth = Bounded(2, 3, 1)
	s.OpexFactor = Bounded(12, 15, 10)
	s.LoanRate = Bounded(4, 5, 3)
	s.PayoutSchedule = map[int]float64{9: 120, 1: -1, 5: 101, 3: 200}
	s.ExtraPrepaySchedule = map[int]float64{8: -1, 2: -1, 6: -1}
	s.PropertyOverrides = map[int]PropertyOverride{7: {Price: Float(-1)}, 0: {Price: Float(0)}, 4: {Price: Float(-2)}}

	want := []string{
		"price_growth",
		"gross_yield",
		"rent_growth",
		"opex_factor",
		"loan_rate",
		"payout_schedule[1]",
		"payout_schedule[3]",
		"payout_schedule[5]",
		"payout_schedule[9]",
		"extra_prepay_schedule[2]",
		"extra_prepay_schedule[6]",
		"extra_prepay_schedule[8]",
		"property_overrides[0].price",
		"property_overrides[4].price",
		"property_overrides[7].price",
	}
	for i := 0; i < 20; i++ {
		verrs, ok := s.Validate().(ValidationErrors)
		require.True(t, ok)
		fields := make([]string, len(verrs))
		for j, e := range verrs {
			fields[j] = e.Field
		}
		require.Equal(t, want, fields)
	}
}
