package scenario

import "spv-projection/internal/model"

// Resolver answers "what is the effective value of X in year y" for an ordered
// overlay list. Rates in and out are decimals (0.04 = 4%). The zero value has
// no overlays and returns every base value unchanged.
//
// When several overlays of one kind cover the same year the first in list
// order wins; overlays are never summed.
type Resolver struct {
	effects model.Effects
}

func NewResolver(effects model.Effects) Resolver {
	return Resolver{effects: effects}
}

// Effects returns the overlay list the resolver was built with.
func (r Resolver) Effects() model.Effects { return r.effects }

// first returns the first overlay of type T covering year that ok accepts.
func first[T model.Effect](effects model.Effects, year int, ok func(T) bool) (T, bool) {
	for _, e := range effects {
		t, isT := e.(T)
		if !isT || !t.Span().Contains(year) {
			continue
		}
		if ok != nil && !ok(t) {
			continue
		}
		return t, true
	}
	var zero T
	return zero, false
}

// PriceGrowth: a crash drops prices once in its start year and holds them flat
// for the rest of its window; otherwise stagflation freezes growth.
func (r Resolver) PriceGrowth(year int, base float64) float64 {
	if c, ok := first[model.PropertyCrash](r.effects, year, nil); ok {
		if year == c.StartYear {
			return -c.Drop / 100
		}
		return 0
	}
	if _, ok := first[model.Stagflation](r.effects, year, nil); ok {
		return 0
	}
	return base
}

// RentGrowth mirrors PriceGrowth with rent shocks; stagflation caps growth at
// its configured rate.
func (r Resolver) RentGrowth(year int, base float64) float64 {
	hasDrop := func(s model.RentShock) bool { return s.Drop != nil }
	if s, ok := first(r.effects, year, hasDrop); ok {
		if year == s.StartYear {
			return -*s.Drop / 100
		}
		return 0
	}
	if s, ok := first[model.Stagflation](r.effects, year, nil); ok {
		g := model.DefaultStagflationRentGrowth
		if s.RentGrowth != nil {
			g = *s.RentGrowth
		}
		return g / 100
	}
	return base
}

// OccupancyFactor scales rent during a rent shock's vacancy window.
func (r Resolver) OccupancyFactor(year int) float64 {
	hasVacancy := func(s model.RentShock) bool { return s.OccupancyDrop != nil }
	if s, ok := first(r.effects, year, hasVacancy); ok {
		return 1 - *s.OccupancyDrop/100
	}
	return 1
}

func (r Resolver) LoanRate(year int, base float64) float64 {
	if s, ok := first[model.RateSpike](r.effects, year, nil); ok {
		return base + s.BumpBps/10_000
	}
	return base
}

func (r Resolver) OpexRatio(year int, base float64) float64 {
	if s, ok := first[model.OpexInflation](r.effects, year, nil); ok {
		return base + s.BumpPctPts/100
	}
	return base
}

// CorpTaxRate replaces, not adds to, the base rate.
func (r Resolver) CorpTaxRate(year int, base float64) float64 {
	hasRate := func(h model.TaxHike) bool { return h.NewRate != nil }
	if h, ok := first(r.effects, year, hasRate); ok {
		return *h.NewRate / 100
	}
	return base
}

func (r Resolver) WealthTaxMultiplier(year int) float64 {
	hasMult := func(h model.TaxHike) bool { return h.AIMIMultiplier != nil }
	if h, ok := first(r.effects, year, hasMult); ok {
		return *h.AIMIMultiplier
	}
	return 1
}

func (r Resolver) DividendWHT(year int, base float64) float64 {
	if h, ok := first[model.DividendTaxHike](r.effects, year, nil); ok {
		return h.NewRate / 100
	}
	return base
}

// Active lists the overlays covering year, in list order.
func (r Resolver) Active(year int) model.Effects {
	var out model.Effects
	for _, e := range r.effects {
		if e.Span().Contains(year) {
			out = append(out, e)
		}
	}
	return out
}
