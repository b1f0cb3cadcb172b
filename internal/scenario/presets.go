package scenario

import (
	"fmt"
	"sort"

	"spv-projection/internal/model"
)

const (
	DefaultStartYear = 1
	DefaultDuration  = 3
)

// Preset is a named stress test that expands into one or more overlays.
type Preset struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Explanation     string   `json:"explanation"`
	KeyMetric       string   `json:"key_metric"`
	DefaultStart    int      `json:"default_start_year"`
	DefaultDuration int      `json:"default_duration"`
	Params          []string `json:"params,omitempty"`

	build func(w model.Window, p Params) model.Effects
}

// Params are optional numeric knobs a preset accepts, keyed by the names in
// Preset.Params.
type Params map[string]float64

func (p Params) get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

var catalog = []Preset{
	{
		ID:          "rate-spike",
		Name:        "Rate Spike",
		Description: "+300 bps instant jump in loan rates",
		Explanation: "Mirrors Fed & EBA bank stress tests that assume a sharp tightening cycle.",
		KeyMetric:   "DSCR < 1.25 or cash-reserve < 0",
		Params:      []string{"bump_bps"},
		build: func(w model.Window, p Params) model.Effects {
			return model.Effects{model.RateSpike{Window: w, BumpBps: p.get("bump_bps", 300)}}
		},
	},
	{
		ID:          "property-crash",
		Name:        "Property Price Crash",
		Description: "-25% shock, flat growth for several years",
		Explanation: "EBA \"severely adverse\" scenario drops euro residential properties by about 26%.",
		KeyMetric:   "LTV > 80% / equity < 0",
		Params:      []string{"drop"},
		build: func(w model.Window, p Params) model.Effects {
			return model.Effects{model.PropertyCrash{Window: w, Drop: p.get("drop", 25)}}
		},
	},
	{
		ID:          "rent-shock",
		Name:        "Rent-Roll Shock",
		Description: "-10% lease-level rent, increased vacancy",
		Explanation: "Simulates a pandemic or remote-work impact on rental income.",
		KeyMetric:   "NOI shrinks > interest cover",
		Params:      []string{"drop", "occupancy_drop"},
		build: func(w model.Window, p Params) model.Effects {
			return model.Effects{model.RentShock{
				Window:        w,
				Drop:          model.Float(p.get("drop", 10)),
				OccupancyDrop: model.Float(p.get("occupancy_drop", 10)),
			}}
		},
	},
	{
		ID:              "opex-inflation",
		Name:            "Opex Inflation",
		Description:     "+5 pp permanent increase in operating expenses",
		Explanation:     "Insurance & repair costs outpace CPI.",
		KeyMetric:       "Net margin %, dividend cut",
		DefaultDuration: 99,
		Params:          []string{"bump_pct_pts"},
		build: func(w model.Window, p Params) model.Effects {
			return model.Effects{model.OpexInflation{Window: w, BumpPctPts: p.get("bump_pct_pts", 5)}}
		},
	},
	{
		ID:          "tax-hike",
		Name:        "Tax Hike Double-Whammy",
		Description: "Corp tax 20→28%; AIMI doubled",
		Explanation: "Government plugs deficit with landlord levies.",
		KeyMetric:   "Post-tax CF < target; dividends 0",
		Params:      []string{"new_rate", "aimi_multiplier"},
		build: func(w model.Window, p Params) model.Effects {
			rate := p.get("new_rate", 28)
			mult := p.get("aimi_multiplier", 2)
			return model.Effects{model.TaxHike{Window: w, NewRate: &rate, AIMIMultiplier: &mult}}
		},
	},
	{
		ID:          "dividend-tax",
		Name:        "Dividend Clamp-Down",
		Description: "WHT 28→35%",
		Explanation: "Reflects post-election tax reform.",
		KeyMetric:   "Shareholder net income < \"livable\"",
		Params:      []string{"new_rate"},
		build: func(w model.Window, p Params) model.Effects {
			return model.Effects{model.DividendTaxHike{Window: w, NewRate: p.get("new_rate", 35)}}
		},
	},
	{
		ID:          "stagflation",
		Name:        "Slow Burn Stagflation",
		Description: "Price 0%, rent +0.5% for several years",
		Explanation: "1970s-style stagnation: equity returns evaporate.",
		KeyMetric:   "IRR over 35yr < hurdle (6%)",
		Params:      []string{"rent_growth"},
		build: func(w model.Window, p Params) model.Effects {
			g := p.get("rent_growth", model.DefaultStagflationRentGrowth)
			return model.Effects{model.Stagflation{Window: w, RentGrowth: &g}}
		},
	},
	{
		ID:          "super-adverse",
		Name:        "Multi-shock \"Super Adverse\"",
		Description: "Combines rate spike, property crash, and rent shock",
		Explanation: "Your catch-all capital-plan killer.",
		KeyMetric:   "LTV > 90%, negative equity, reserve < 0",
		Params:      []string{"bump_bps"},
		build: func(w model.Window, p Params) model.Effects {
			return model.Effects{
				model.PropertyCrash{Window: w, Drop: 25},
				model.RentShock{Window: w, Drop: model.Float(10), OccupancyDrop: model.Float(10)},
				model.RateSpike{Window: w, BumpBps: p.get("bump_bps", 300)},
			}
		},
	},
}

func init() {
	for i := range catalog {
		if catalog[i].DefaultStart == 0 {
			catalog[i].DefaultStart = DefaultStartYear
		}
		if catalog[i].DefaultDuration == 0 {
			catalog[i].DefaultDuration = DefaultDuration
		}
	}
}

// Presets returns the catalog sorted by id.
func Presets() []Preset {
	out := append([]Preset(nil), catalog...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func Lookup(id string) (Preset, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Expand builds the preset's overlays. A nil start or duration uses the
// preset's defaults; unknown params are rejected.
func (p Preset) Expand(start, duration *int, params Params) (model.Effects, error) {
	w := model.Window{StartYear: p.DefaultStart, Duration: p.DefaultDuration}
	if start != nil {
		w.StartYear = *start
	}
	if duration != nil {
		w.Duration = *duration
	}
	if w.StartYear < 0 {
		return nil, fmt.Errorf("stress test %s: start year must be >= 0", p.ID)
	}
	if w.Duration < 1 {
		return nil, fmt.Errorf("stress test %s: duration must be >= 1", p.ID)
	}
	for name := range params {
		if !p.accepts(name) {
			return nil, fmt.Errorf("stress test %s: unknown param %q", p.ID, name)
		}
	}
	return p.build(w, params), nil
}

func (p Preset) accepts(name string) bool {
	for _, n := range p.Params {
		if n == name {
			return true
		}
	}
	return false
}

// Apply is a stress test selected by id, as it appears in config files and
// API requests.
type Apply struct {
	ID        string `json:"id" yaml:"id"`
	StartYear *int   `json:"start_year,omitempty" yaml:"start_year,omitempty"`
	Duration  *int   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Params    Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// ExpandAll expands each stress test in order and concatenates the overlays.
func ExpandAll(tests []Apply) (model.Effects, error) {
	var out model.Effects
	for _, t := range tests {
		p, ok := Lookup(t.ID)
		if !ok {
			return nil, fmt.Errorf("unknown stress test %q", t.ID)
		}
		effects, err := p.Expand(t.StartYear, t.Duration, t.Params)
		if err != nil {
			return nil, err
		}
		out = append(out, effects...)
	}
	return out, nil
}
