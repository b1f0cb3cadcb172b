package projection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spv-projection/internal/config"
	"spv-projection/internal/model"
)

// singlePurchase is one 600k unit bought in year 0 with no growth and a
// one-year horizon.
func singlePurchase() model.Settings {
	return model.Settings{
		SeedEquity:     320_000,
		UnitPrice:      600_000,
		PurchaseYears:  []int{0},
		LTV:            65,
		LoanRate:       model.Fixed(4),
		TermYears:      30,
		PriceGrowth:    model.Fixed(0),
		GrossYield:     model.Fixed(5),
		OpexFactor:     model.Fixed(12),
		CorpTaxRate:    20,
		RetirementYear: 0,
		ForecastPeriod: 0,
	}
}

func TestRun_SinglePurchase(t *testing.T) {
	res, err := New().Run(singlePurchase())
	require.NoError(t, err)
	require.Equal(t, 0, res.Years)
	require.Len(t, res.Debt, 1)

	row := res.Ledger[0]
	assert.InDelta(t, 252_000, row.PurchaseOutlay, 1e-6)
	assert.InDelta(t, 68_000, 320_000-row.PurchaseOutlay, 1e-6)
	assert.InDelta(t, 6_868.04, row.Principal, 0.01)
	assert.InDelta(t, 15_474.99, row.Interest, 0.01)

	assert.InDelta(t, 390_000-row.Principal, res.Debt[0], 1e-6)
	assert.InDelta(t, 600_000, res.Value[0], 1e-6)
	assert.InDelta(t, 30_000, res.Rent[0], 1e-6)

	// opex = 12% of rent + IMI on 80% of value
	imi := 0.003 * 0.8 * 600_000
	aimi := 0.004 * 0.8 * 600_000
	dep := 0.02 * 0.8 * 600_000
	assert.InDelta(t, imi, res.IMI[0], 1e-9)
	assert.InDelta(t, aimi, res.AIMI[0], 1e-9)
	assert.InDelta(t, dep, res.BuildingDepreciation[0], 1e-9)
	assert.InDelta(t, 30_000*0.12+imi, row.Opex, 1e-9)

	// the plan runs at a tax loss, so no corporate tax
	assert.Less(t, row.ProfitBeforeTax, 0.0)
	assert.Zero(t, row.CorpTax)
	wantCF := 30_000 - row.Opex - row.Interest - row.Principal - aimi
	assert.InDelta(t, wantCF, res.Cashflow[0], 1e-9)
	assert.InDelta(t, 68_000+wantCF, res.CashReserve[0], 1e-6)

	assert.InDelta(t, res.Value[0]-res.Debt[0], res.Equity[0], 1e-9)
	assert.False(t, res.Warnings.IsUnderfunded)
	assert.False(t, res.Warnings.HighLTV)
}

func TestRun_RateSpikeRepricesInterestOnly(t *testing.T) {
	base, err := New().Run(singlePurchase())
	require.NoError(t, err)

	s := singlePurchase()
	s.Scenarios = model.Effects{model.RateSpike{Window: model.Window{StartYear: 0, Duration: 1}, BumpBps: 300}}
	shocked, err := New().Run(s)
	require.NoError(t, err)

	b, c := base.Ledger[0], shocked.Ledger[0]
	assert.InDelta(t, 7.0, c.LoanRate, 1e-9)
	assert.InDelta(t, 390_000*0.07, c.Interest, 1e-6)
	assert.Greater(t, c.Interest, b.Interest)
	assert.Equal(t, b.Principal, c.Principal)
	assert.Equal(t, base.Debt[0], shocked.Debt[0])
	assert.Less(t, shocked.Cashflow[0], base.Cashflow[0])
}

func TestRun_DefaultsInvariants(t *testing.T) {
	s := config.Default()
	res, err := New().Run(s)
	require.NoError(t, err)
	require.Equal(t, 30, res.Years)

	minReserve, maxLTV := res.CashReserve[0], res.LTV[0]
	for y := 0; y <= res.Years; y++ {
		assert.InDelta(t, res.Value[y]-res.Debt[y], res.Equity[y], 1e-6, "equity year %d", y)
		if res.Value[y] > 0 {
			assert.InDelta(t, 100*res.Debt[y]/res.Value[y], res.LTV[y], 1e-9, "ltv year %d", y)
		} else {
			assert.Zero(t, res.LTV[y])
		}

		row := res.Ledger[y]
		wht := row.DividendWHT / 100
		// cash available to the waterfall is the reserve after capital
		// events and prepayment plus this year's cashflow
		if res.Dividends[y] > 0 {
			available := res.CashReserve[y] + row.GrossDividend
			assert.LessOrEqual(t, res.Dividends[y], available*(1-wht)+1e-6, "dividend year %d", y)
			if y > s.InjectionYears {
				// no capital events after the injection window
				assert.LessOrEqual(t, res.Dividends[y], (res.CashReserve[y-1]+res.Cashflow[y])*(1-wht)+1e-6)
			}
			assert.GreaterOrEqual(t, res.CashReserve[y], row.RequiredBuffer-1e-6, "buffer year %d", y)
		}

		if res.CashReserve[y] < minReserve {
			minReserve = res.CashReserve[y]
		}
		if res.LTV[y] > maxLTV {
			maxLTV = res.LTV[y]
		}
	}
	assert.Equal(t, minReserve < 0, res.Warnings.IsUnderfunded)
	assert.Equal(t, maxLTV > 80, res.Warnings.HighLTV)

	// three purchases, injections in years 1..5 only
	assert.Len(t, res.Purchases, 3)
	assert.Equal(t, 100_000.0, res.Ledger[5].Injection)
	assert.Zero(t, res.Ledger[6].Injection)
}

func TestRun_Prepayment(t *testing.T) {
	s := singlePurchase()
	s.RetirementYear = 3
	s.ExtraPrepaySchedule = map[int]float64{1: 10_000, 2: 1_000_000}
	res, err := New().Run(s)
	require.NoError(t, err)

	assert.Equal(t, 10_000.0, res.Ledger[1].Prepayment)
	assert.Zero(t, res.Ledger[2].Prepayment, "unaffordable prepayment is skipped")

	noPrepay := singlePurchase()
	noPrepay.RetirementYear = 3
	ref, err := New().Run(noPrepay)
	require.NoError(t, err)
	assert.InDelta(t, ref.Debt[1]-10_000, res.Debt[1], 1e-6)
	assert.InDelta(t, ref.Cashflow[1]-10_000, res.Cashflow[1], 1e-6)
}

func TestRun_DividendWaterfall(t *testing.T) {
	s := singlePurchase()
	s.LTV = 0
	s.SeedEquity = 700_000
	s.PayoutRatio = 100
	s.DividendWHT = 28
	s.RetirementYear = 2
	s.PayoutSchedule = map[int]float64{2: 50}
	s.StartPayoutsYear = 1

	res, err := New().Run(s)
	require.NoError(t, err)

	// no payouts before start year
	assert.Zero(t, res.Dividends[0])
	// full payout: no debt, so the buffer is only IMI
	row := res.Ledger[1]
	assert.InDelta(t, res.Cashflow[1], row.GrossDividend, 1e-6)
	assert.InDelta(t, res.Cashflow[1]*0.72, res.Dividends[1], 1e-6)
	// per-year override
	assert.InDelta(t, res.Cashflow[2]*0.5, res.Ledger[2].GrossDividend, 1e-6)
	assert.Equal(t, 50.0, res.Ledger[2].PayoutRatio)
}

func TestRun_BufferCapsDividend(t *testing.T) {
	s := singlePurchase()
	s.SeedEquity = 252_000 // reserve is zero after the purchase
	s.LoanRate = model.Fixed(0)
	s.TermYears = 100
	s.PayoutRatio = 100

	res, err := New().Run(s)
	require.NoError(t, err)

	row := res.Ledger[0]
	require.Greater(t, res.Cashflow[0], 0.0)
	assert.InDelta(t, res.Cashflow[0]-row.RequiredBuffer, row.GrossDividend, 1e-6)
	assert.InDelta(t, row.RequiredBuffer, res.CashReserve[0], 1e-6)
}

func TestRun_Overrides(t *testing.T) {
	price, year, rate, term := 500_000.0, 2, 3.0, 20
	s := singlePurchase()
	s.RetirementYear = 5
	s.PriceGrowth = model.Fixed(3)
	s.PurchaseYears = []int{0, 1, 1, 9}
	s.PropertyOverrides = map[int]model.PropertyOverride{
		1: {Price: &price, PurchaseYear: &year, LoanRate: &rate, TermYears: &term},
	}
	res, err := New().Run(s)
	require.NoError(t, err)

	require.Len(t, res.Purchases, 2, "duplicates collapse and post-retirement years are dropped")
	p := res.Purchases[1]
	assert.Equal(t, 1, p.NominalYear)
	assert.Equal(t, 2, p.Year)
	assert.Equal(t, 500_000.0, p.Price)
	assert.Equal(t, 3.0, p.LoanRate)
	assert.Len(t, p.Schedule, 20)
	assert.Equal(t, 1, res.Ledger[2].Acquisitions)
}

func TestRun_CrashAndShock(t *testing.T) {
	s := singlePurchase()
	s.RetirementYear = 5
	s.PriceGrowth = model.Fixed(3)
	s.RentGrowth = model.Fixed(2)
	s.Scenarios = model.Effects{
		model.PropertyCrash{Window: model.Window{StartYear: 2, Duration: 2}, Drop: 20},
		model.RentShock{Window: model.Window{StartYear: 2, Duration: 1}, Drop: model.Float(10), OccupancyDrop: model.Float(10)},
	}
	res, err := New().Run(s)
	require.NoError(t, err)

	v1 := 600_000 * 1.03
	assert.InDelta(t, v1, res.Value[1], 1e-6)
	assert.InDelta(t, v1*0.8, res.Value[2], 1e-6)
	assert.InDelta(t, v1*0.8, res.Value[3], 1e-6)
	assert.InDelta(t, v1*0.8*1.03, res.Value[4], 1e-6)

	r1 := 30_000 * 1.02
	assert.InDelta(t, r1*0.9*0.9, res.Rent[2], 1e-6)
	assert.InDelta(t, r1*0.9*0.9*1.02, res.Rent[3], 1e-6)
}

func TestRun_InvalidSettings(t *testing.T) {
	s := singlePurchase()
	s.TermYears = 0
	s.Scenarios = model.Effects{model.RateSpike{Window: model.Window{StartYear: 0, Duration: 0}}}

	res, err := New().Run(s)
	assert.Nil(t, res)
	var verrs model.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

func TestRun_Underfunded(t *testing.T) {
	s := singlePurchase()
	s.SeedEquity = 100_000
	s.LTV = 90
	s.PriceGrowth = model.Fixed(-5)
	s.RetirementYear = 3

	res, err := New().Run(s)
	require.NoError(t, err)
	assert.True(t, res.Warnings.HighLTV)
	assert.Len(t, res.Value, 4, "infeasible runs still return every year")
}
