package projection

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"spv-projection/internal/amortization"
	"spv-projection/internal/model"
)

// RangeRunner brackets a projection with pessimistic and optimistic runs.
type RangeRunner struct {
	log *zap.Logger
}

func NewRangeRunner(log *zap.Logger) *RangeRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &RangeRunner{log: log}
}

type variant struct {
	name     string
	settings model.Settings
	result   *model.Result
	err      error
}

// Run projects the base settings and, when any ranged input has both bounds,
// the min and max variants. The three runs share one amortization cache and
// run concurrently. A failing min or max run is dropped from the bundle; a
// failing base run is returned as the error.
func (r *RangeRunner) Run(s model.Settings) (*model.ScenarioRange, error) {
	cache := amortization.NewCache()
	engine := New(WithLogger(r.log), WithCache(cache))

	variants := []*variant{{name: "base", settings: s.Clone()}}
	if s.HasRanges() {
		variants = append(variants,
			&variant{name: "min", settings: s.Variant(true)},
			&variant{name: "max", settings: s.Variant(false)},
		)
	}

	var wg sync.WaitGroup
	for _, v := range variants {
		wg.Add(1)
		go func(v *variant) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					v.result, v.err = nil, fmt.Errorf("%s run panicked: %v", v.name, p)
				}
			}()
			v.result, v.err = engine.Run(v.settings)
		}(v)
	}
	wg.Wait()

	base := variants[0]
	if base.err != nil {
		return nil, base.err
	}
	out := &model.ScenarioRange{Base: base.result}
	for _, v := range variants[1:] {
		if v.err != nil {
			r.log.Warn("range variant dropped", zap.String("variant", v.name), zap.Error(v.err))
			continue
		}
		if v.name == "min" {
			out.Min = v.result
		} else {
			out.Max = v.result
		}
	}

	hits, misses := cache.Stats()
	r.log.Debug("range run complete",
		zap.Int("variants", len(variants)),
		zap.Int("amortization_hits", hits),
		zap.Int("amortization_misses", misses))
	return out, nil
}
