package analysis

import (
	"sort"

	"spv-projection/internal/model"
)

// Variation is one named plan with its settings and result.
type Variation struct {
	Name     string
	Settings model.Settings
	Result   *model.Result
}

type RankedVariation struct {
	Rank     int            `json:"rank"`
	Name     string         `json:"name"`
	KPIs     KPIs           `json:"kpis"`
	Warnings model.Warnings `json:"warnings"`
}

// RankVariations computes KPIs per variation and sorts descending by equity at
// the horizon. Ties go to the higher cumulative dividends, then by name.
func RankVariations(vs []Variation) []RankedVariation {
	out := make([]RankedVariation, 0, len(vs))
	for _, v := range vs {
		if v.Result == nil {
			continue
		}
		out = append(out, RankedVariation{
			Name:     v.Name,
			KPIs:     Compute(v.Settings, v.Result),
			Warnings: v.Result.Warnings,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].KPIs, out[j].KPIs
		if a.EquityAtHorizon != b.EquityAtHorizon {
			return a.EquityAtHorizon > b.EquityAtHorizon
		}
		if a.CumulativeDividends != b.CumulativeDividends {
			return a.CumulativeDividends > b.CumulativeDividends
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
