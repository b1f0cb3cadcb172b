package projection

import (
	"math"

	"go.uber.org/zap"

	"spv-projection/internal/amortization"
	"spv-projection/internal/model"
	"spv-projection/internal/scenario"
)

// Tax and valuation constants of the model.
const (
	TaxableValueShare = 0.8   // VPT as a share of market value
	IMIRate           = 0.003 // recurring property tax on VPT
	AIMIRate          = 0.004 // wealth tax on VPT
	BuildingShare     = 0.8   // share of value that depreciates
	DepreciationRate  = 0.02
)

type Engine struct {
	log   *zap.Logger
	cache *amortization.Cache
}

type Option func(*Engine)

// WithLogger sets the logger; nil means no logging.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithCache shares an amortization cache between runs.
func WithCache(c *amortization.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

func New(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	if e.cache == nil {
		e.cache = amortization.NewCache()
	}
	return e
}

// holding tracks one owned property's compounded value and rent.
type holding struct {
	p     *model.Purchase
	value float64
	rent  float64
}

// Run projects s over years 0..s.TotalYears(). Invalid settings return a
// model.ValidationErrors and no result. Infeasible plans still return a full
// result with Warnings set.
func (e *Engine) Run(s model.Settings) (*model.Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	sched, err := SchedulePurchases(&s, e.cache)
	if err != nil {
		return nil, err
	}
	if len(sched.Dropped) > 0 {
		e.log.Warn("purchases after retirement year ignored",
			zap.Ints("nominal_years", sched.Dropped),
			zap.Int("retirement_year", s.RetirementYear))
	}
	purchases := sched.Purchases

	var (
		total        = s.TotalYears()
		res          = model.NewResult(total)
		resolver     = scenario.NewResolver(s.Scenarios)
		priceGrowth  = s.PriceGrowth.Value / 100
		grossYield   = s.GrossYield.Value / 100
		rentGrowth   = s.RentGrowth.Value / 100
		opexRatio    = s.OpexFactor.Value / 100
		corpTax      = s.CorpTaxRate / 100
		wht          = s.DividendWHT / 100
		globalRate   = s.LoanRate.Value / 100
		bufferMonths = s.EffectiveBufferMonths()
		reserve      = s.SeedEquity
		holdings     []*holding
	)
	res.Purchases = purchases

	for y := 0; y <= total; y++ {
		row := model.LedgerRow{Year: y}

		// 1. capital events
		if y > 0 && y <= s.InjectionYears && y <= s.RetirementYear {
			reserve += s.AnnualInjection
			row.Injection = s.AnnualInjection
		}
		debt := 0.0
		if y <= s.RetirementYear {
			for i := range purchases {
				p := &purchases[i]
				if p.Year != y {
					continue
				}
				outlay := AcquisitionOutlay(*p)
				reserve -= outlay
				debt += p.LoanAmount
				row.Acquisitions++
				row.PurchaseOutlay += outlay
				row.NewDebt += p.LoanAmount
				holdings = append(holdings, &holding{p: p, value: p.Price, rent: p.Price * grossYield})
			}
		}

		// 2. debt rollforward
		if y > 0 {
			debt += res.Debt[y-1]
		}
		var interest, principal, monthlyDebtService float64
		for i := range purchases {
			p := &purchases[i]
			age, active := p.LoanAge(y)
			if !active {
				continue
			}
			sch := p.Schedule[age]
			contractual := p.LoanRate / 100
			yearInterest := sch.Interest
			if eff := resolver.LoanRate(y, contractual); eff != contractual {
				yearInterest = p.OpeningBalance(age) * eff
			}
			principal += sch.Principal
			interest += yearInterest
			monthlyDebtService += (sch.Principal + sch.Interest) / 12
		}
		debt -= principal

		// 3 and 6. valuation and rent, compounded year by year
		var value, rent float64
		for _, h := range holdings {
			if y > h.p.Year {
				h.value *= 1 + resolver.PriceGrowth(y, priceGrowth)
				h.rent *= 1 + resolver.RentGrowth(y, rentGrowth)
				h.rent *= resolver.OccupancyFactor(y)
			}
			value += h.value
			rent += h.rent
		}

		// 4 and 5. property taxes and depreciation
		vpt := TaxableValueShare * value
		imi := IMIRate * vpt
		aimi := AIMIRate * vpt * resolver.WealthTaxMultiplier(y)
		depreciation := DepreciationRate * BuildingShare * value

		// 7. operating result
		effOpex := resolver.OpexRatio(y, opexRatio)
		effTax := resolver.CorpTaxRate(y, corpTax)
		opex := rent*effOpex + imi
		pbt := rent - opex - interest - depreciation - aimi
		tax := math.Max(0, pbt) * effTax

		// 8. cashflow
		cashflow := rent - opex - interest - principal - tax - aimi

		// 9. extra prepayment, checked against the reserve before this
		// year's cashflow
		if y <= s.RetirementYear {
			if amt := s.ExtraPrepaySchedule[y]; amt > 0 && reserve >= amt {
				amt = math.Min(amt, math.Max(debt, 0))
				debt -= amt
				cashflow -= amt
				reserve -= amt
				row.Prepayment = amt
			}
		}

		// 10. dividend waterfall
		buffer := monthlyDebtService*bufferMonths + imi
		payout := s.PayoutRatio
		if v, ok := s.PayoutSchedule[y]; ok {
			payout = v
		}
		gross := 0.0
		if y >= s.StartPayoutsYear {
			gross = math.Max(cashflow, 0) * payout / 100
		}
		effWHT := resolver.DividendWHT(y, wht)
		paid := 0.0
		if available := reserve + cashflow; gross > 0 && available >= gross {
			if available-gross >= buffer {
				paid = gross
			} else {
				paid = math.Min(gross, math.Max(0, available-buffer))
			}
		}
		reserve += cashflow - paid

		// 11. finalize
		if debt < 0 {
			debt = 0
		}
		res.Debt[y] = debt
		res.Value[y] = value
		res.Rent[y] = rent
		res.Cashflow[y] = cashflow
		res.Equity[y] = value - debt
		res.Dividends[y] = paid * (1 - effWHT)
		if value > 0 {
			res.LTV[y] = 100 * debt / value
		}
		res.CashReserve[y] = reserve
		res.BuildingDepreciation[y] = depreciation
		res.IMI[y] = imi
		res.AIMI[y] = aimi

		row.Interest = interest
		row.Principal = principal
		row.Rent = rent
		row.Opex = opex
		row.IMI = imi
		row.AIMI = aimi
		row.Depreciation = depreciation
		row.ProfitBeforeTax = pbt
		row.CorpTax = tax
		row.Cashflow = cashflow
		row.RequiredBuffer = buffer
		row.PayoutRatio = payout
		row.GrossDividend = paid
		row.NetDividend = res.Dividends[y]
		row.LoanRate = 100 * resolver.LoanRate(y, globalRate)
		row.OpexRatio = 100 * effOpex
		row.CorpTaxRate = 100 * effTax
		row.DividendWHT = 100 * effWHT
		row.Debt = debt
		row.Value = value
		row.CashReserve = reserve
		res.Ledger = append(res.Ledger, row)
	}

	res.Warnings = warningsFor(res)
	if res.Warnings.IsUnderfunded || res.Warnings.HighLTV {
		e.log.Warn("projection infeasible",
			zap.Bool("underfunded", res.Warnings.IsUnderfunded),
			zap.Bool("high_ltv", res.Warnings.HighLTV),
			zap.Float64("min_cash_reserve", minOf(res.CashReserve)),
			zap.Float64("max_ltv", maxOf(res.LTV)))
	}
	e.log.Debug("projection complete",
		zap.Int("years", total),
		zap.Int("purchases", len(purchases)),
		zap.Int("overlays", len(s.Scenarios)))
	return res, nil
}

func warningsFor(r *model.Result) model.Warnings {
	return model.Warnings{
		IsUnderfunded: minOf(r.CashReserve) < 0,
		HighLTV:       maxOf(r.LTV) > model.HighLTVThreshold,
	}
}

func minOf(xs []float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = math.Max(m, x)
	}
	return m
}
