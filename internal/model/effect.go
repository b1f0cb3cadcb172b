package model

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// EffectKind names one kind of economic shock overlay.
// Keep these values stable; they appear in config files and API payloads.
type EffectKind string

const (
	KindRateSpike       EffectKind = "rate_spike"
	KindPropertyCrash   EffectKind = "property_crash"
	KindRentShock       EffectKind = "rent_shock"
	KindOpexInflation   EffectKind = "opex_inflation"
	KindTaxHike         EffectKind = "tax_hike"
	KindDividendTaxHike EffectKind = "dividend_tax"
	KindStagflation     EffectKind = "stagflation"
)

// Window is the inclusive year span [StartYear, StartYear+Duration-1].
type Window struct {
	StartYear int `json:"start_year" yaml:"start_year"`
	Duration  int `json:"duration" yaml:"duration"`
}

func (w Window) Span() Window { return w }

// EndYear is the last year inside the window.
func (w Window) EndYear() int { return w.StartYear + w.Duration - 1 }

func (w Window) Contains(year int) bool {
	return year >= w.StartYear && year <= w.EndYear()
}

// Effect is a time-windowed modification of one economic input. The set of
// implementations is closed: RateSpike, PropertyCrash, RentShock,
// OpexInflation, TaxHike, DividendTaxHike, Stagflation.
type Effect interface {
	Kind() EffectKind
	Span() Window
	isEffect()
}

// RateSpike adds BumpBps basis points to loan rates inside the window.
type RateSpike struct {
	Window
	BumpBps float64
}

// PropertyCrash drops prices by Drop percent in StartYear, then holds them flat
// for the rest of the window.
type PropertyCrash struct {
	Window
	Drop float64
}

// RentShock drops rents by Drop percent in StartYear (flat afterwards) and
// scales rent by (1 - OccupancyDrop/100) every year of the window. Either
// field may be nil; an explicit 0 still claims the year for this shock.
type RentShock struct {
	Window
	Drop          *float64
	OccupancyDrop *float64
}

// OpexInflation adds BumpPctPts percentage points to the opex ratio.
type OpexInflation struct {
	Window
	BumpPctPts float64
}

// TaxHike replaces the corporate tax rate with NewRate percent and multiplies
// the wealth tax by AIMIMultiplier. Either may be absent.
type TaxHike struct {
	Window
	NewRate        *float64
	AIMIMultiplier *float64
}

// DividendTaxHike replaces the dividend withholding rate with NewRate percent.
type DividendTaxHike struct {
	Window
	NewRate float64
}

// Stagflation freezes price growth and caps rent growth at RentGrowth percent
// (DefaultStagflationRentGrowth when nil).
type Stagflation struct {
	Window
	RentGrowth *float64
}

const DefaultStagflationRentGrowth = 0.5

func (RateSpike) Kind() EffectKind       { return KindRateSpike }
func (PropertyCrash) Kind() EffectKind   { return KindPropertyCrash }
func (RentShock) Kind() EffectKind       { return KindRentShock }
func (OpexInflation) Kind() EffectKind   { return KindOpexInflation }
func (TaxHike) Kind() EffectKind         { return KindTaxHike }
func (DividendTaxHike) Kind() EffectKind { return KindDividendTaxHike }
func (Stagflation) Kind() EffectKind     { return KindStagflation }

func (RateSpike) isEffect()       {}
func (PropertyCrash) isEffect()   {}
func (RentShock) isEffect()       {}
func (OpexInflation) isEffect()   {}
func (TaxHike) isEffect()         {}
func (DividendTaxHike) isEffect() {}
func (Stagflation) isEffect()     {}

// Effects is an ordered overlay list. Order matters: when two overlays of the
// same kind cover a year, the earlier one wins.
type Effects []Effect

// EffectSpec is the flat wire shape of an Effect, shared by config files and
// the HTTP API.
type EffectSpec struct {
	Kind           EffectKind `json:"kind" yaml:"kind"`
	StartYear      int        `json:"start_year" yaml:"start_year"`
	Duration       int        `json:"duration" yaml:"duration"`
	BumpBps        *float64   `json:"bump_bps,omitempty" yaml:"bump_bps,omitempty"`
	Drop           *float64   `json:"drop,omitempty" yaml:"drop,omitempty"`
	OccupancyDrop  *float64   `json:"occupancy_drop,omitempty" yaml:"occupancy_drop,omitempty"`
	BumpPctPts     *float64   `json:"bump_pct_pts,omitempty" yaml:"bump_pct_pts,omitempty"`
	NewRate        *float64   `json:"new_rate,omitempty" yaml:"new_rate,omitempty"`
	AIMIMultiplier *float64   `json:"aimi_multiplier,omitempty" yaml:"aimi_multiplier,omitempty"`
	RentGrowth     *float64   `json:"rent_growth,omitempty" yaml:"rent_growth,omitempty"`
}

// ToEffect converts the wire shape into its typed variant.
func (s EffectSpec) ToEffect() (Effect, error) {
	w := Window{StartYear: s.StartYear, Duration: s.Duration}
	required := func(name string, v *float64) (float64, error) {
		if v == nil {
			return 0, fmt.Errorf("%s overlay requires %s", s.Kind, name)
		}
		return *v, nil
	}
	switch s.Kind {
	case KindRateSpike:
		bps, err := required("bump_bps", s.BumpBps)
		if err != nil {
			return nil, err
		}
		return RateSpike{Window: w, BumpBps: bps}, nil
	case KindPropertyCrash:
		drop, err := required("drop", s.Drop)
		if err != nil {
			return nil, err
		}
		return PropertyCrash{Window: w, Drop: drop}, nil
	case KindRentShock:
		if s.Drop == nil && s.OccupancyDrop == nil {
			return nil, fmt.Errorf("%s overlay requires drop or occupancy_drop", s.Kind)
		}
		return RentShock{Window: w, Drop: s.Drop, OccupancyDrop: s.OccupancyDrop}, nil
	case KindOpexInflation:
		pts, err := required("bump_pct_pts", s.BumpPctPts)
		if err != nil {
			return nil, err
		}
		return OpexInflation{Window: w, BumpPctPts: pts}, nil
	case KindTaxHike:
		if s.NewRate == nil && s.AIMIMultiplier == nil {
			return nil, fmt.Errorf("%s overlay requires new_rate or aimi_multiplier", s.Kind)
		}
		return TaxHike{Window: w, NewRate: s.NewRate, AIMIMultiplier: s.AIMIMultiplier}, nil
	case KindDividendTaxHike:
		rate, err := required("new_rate", s.NewRate)
		if err != nil {
			return nil, err
		}
		return DividendTaxHike{Window: w, NewRate: rate}, nil
	case KindStagflation:
		return Stagflation{Window: w, RentGrowth: s.RentGrowth}, nil
	default:
		return nil, fmt.Errorf("unknown overlay kind %q", s.Kind)
	}
}

// SpecOf converts a typed Effect back to its wire shape.
func SpecOf(e Effect) EffectSpec {
	w := e.Span()
	spec := EffectSpec{Kind: e.Kind(), StartYear: w.StartYear, Duration: w.Duration}
	switch x := e.(type) {
	case RateSpike:
		spec.BumpBps = Float(x.BumpBps)
	case PropertyCrash:
		spec.Drop = Float(x.Drop)
	case RentShock:
		spec.Drop = x.Drop
		spec.OccupancyDrop = x.OccupancyDrop
	case OpexInflation:
		spec.BumpPctPts = Float(x.BumpPctPts)
	case TaxHike:
		spec.NewRate = x.NewRate
		spec.AIMIMultiplier = x.AIMIMultiplier
	case DividendTaxHike:
		spec.NewRate = Float(x.NewRate)
	case Stagflation:
		spec.RentGrowth = x.RentGrowth
	}
	return spec
}

func (es Effects) MarshalJSON() ([]byte, error) {
	specs := make([]EffectSpec, len(es))
	for i, e := range es {
		specs[i] = SpecOf(e)
	}
	return json.Marshal(specs)
}

func (es *Effects) UnmarshalJSON(b []byte) error {
	var specs []EffectSpec
	if err := json.Unmarshal(b, &specs); err != nil {
		return err
	}
	out, err := EffectsFromSpecs(specs)
	if err != nil {
		return err
	}
	*es = out
	return nil
}

// EffectsFromSpecs converts a list of wire specs, keeping their order.
func EffectsFromSpecs(specs []EffectSpec) (Effects, error) {
	out := make(Effects, 0, len(specs))
	for i, s := range specs {
		e, err := s.ToEffect()
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func validateEffect(e Effect) string {
	w := e.Span()
	if w.StartYear < 0 {
		return "start_year must be >= 0"
	}
	if w.Duration < 1 {
		return "duration must be >= 1"
	}
	pct := func(name string, v float64) string {
		if v < 0 || v > 100 {
			return name + " must be in [0, 100]"
		}
		return ""
	}
	switch x := e.(type) {
	case PropertyCrash:
		return pct("drop", x.Drop)
	case RentShock:
		if x.Drop != nil {
			if msg := pct("drop", *x.Drop); msg != "" {
				return msg
			}
		}
		if x.OccupancyDrop != nil {
			return pct("occupancy_drop", *x.OccupancyDrop)
		}
	case TaxHike:
		if x.NewRate != nil {
			if msg := pct("new_rate", *x.NewRate); msg != "" {
				return msg
			}
		}
		if x.AIMIMultiplier != nil && *x.AIMIMultiplier < 0 {
			return "aimi_multiplier must be >= 0"
		}
	case DividendTaxHike:
		return pct("new_rate", x.NewRate)
	}
	return ""
}

// Float returns a pointer to v, for the optional fields of overlays.
func Float(v float64) *float64 { return &v }
