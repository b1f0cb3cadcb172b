package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v3"

	"spv-projection/internal/model"
	"spv-projection/internal/scenario"
)

// File is the on-disk configuration shape (YAML, JSON or HJSON). Every
// settings field is optional; missing fields fall back to Default().
type File struct {
	// Optional: load a base plan from another file (e.g. examples/plans/*.yaml).
	// Fields set here override the base file's.
	BaseFile string `yaml:"base_file,omitempty" json:"base_file,omitempty"`

	Name        string             `yaml:"name,omitempty" json:"name,omitempty"`
	Settings    SettingsConfig     `yaml:"settings" json:"settings"`
	Scenarios   []model.EffectSpec `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	StressTests []scenario.Apply   `yaml:"stress_tests,omitempty" json:"stress_tests,omitempty"`
}

// SettingsConfig mirrors model.Settings with every field optional. Percentages
// carry explicit units through Ratio and RangeValue.
type SettingsConfig struct {
	SeedEquity      *float64 `yaml:"seed_equity,omitempty" json:"seed_equity,omitempty"`
	AnnualInjection *float64 `yaml:"annual_injection,omitempty" json:"annual_injection,omitempty"`
	InjectionYears  *int     `yaml:"injection_years,omitempty" json:"injection_years,omitempty"`

	UnitPrice   *float64    `yaml:"unit_price,omitempty" json:"unit_price,omitempty"`
	PriceGrowth *RangeValue `yaml:"price_growth,omitempty" json:"price_growth,omitempty"`
	GrossYield  *RangeValue `yaml:"gross_yield,omitempty" json:"gross_yield,omitempty"`
	RentGrowth  *RangeValue `yaml:"rent_growth,omitempty" json:"rent_growth,omitempty"`
	OpexFactor  *RangeValue `yaml:"opex_factor,omitempty" json:"opex_factor,omitempty"`

	LTV       *Ratio      `yaml:"ltv,omitempty" json:"ltv,omitempty"`
	LoanRate  *RangeValue `yaml:"loan_rate,omitempty" json:"loan_rate,omitempty"`
	TermYears *int        `yaml:"term_years,omitempty" json:"term_years,omitempty"`

	CorpTaxRate *Ratio `yaml:"corp_tax_rate,omitempty" json:"corp_tax_rate,omitempty"`
	DividendWHT *Ratio `yaml:"dividend_wht,omitempty" json:"dividend_wht,omitempty"`

	PayoutRatio      *Ratio        `yaml:"payout_ratio,omitempty" json:"payout_ratio,omitempty"`
	PayoutSchedule   map[int]Ratio `yaml:"payout_schedule,omitempty" json:"payout_schedule,omitempty"`
	StartPayoutsYear *int          `yaml:"start_payouts_year,omitempty" json:"start_payouts_year,omitempty"`

	ExtraPrepaySchedule map[int]float64 `yaml:"extra_prepay_schedule,omitempty" json:"extra_prepay_schedule,omitempty"`

	PurchaseYears     []int                          `yaml:"purchase_years,omitempty" json:"purchase_years,omitempty"`
	PropertyOverrides map[int]model.PropertyOverride `yaml:"property_overrides,omitempty" json:"property_overrides,omitempty"`

	RetirementYear *int     `yaml:"retirement_year,omitempty" json:"retirement_year,omitempty"`
	ForecastPeriod *int     `yaml:"forecast_period,omitempty" json:"forecast_period,omitempty"`
	BufferMonths   *float64 `yaml:"buffer_months,omitempty" json:"buffer_months,omitempty"`
}

type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatHJSON Format = "hjson"
)

// FormatFromPath picks the decoder from the file extension; unknown
// extensions are read as YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hjson":
		return FormatHJSON
	default:
		return FormatYAML
	}
}

// Load reads path, applies defaults and validates the resulting settings.
func Load(path string) (model.Settings, error) {
	f, err := LoadUnchecked(path)
	if err != nil {
		return model.Settings{}, err
	}
	return f.Build()
}

// Build is Resolve followed by Validate.
func (f *File) Build() (model.Settings, error) {
	s, err := f.Resolve()
	if err != nil {
		return model.Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*File, error) {
	return loadFile(path, 0)
}

const maxBaseDepth = 8

func loadFile(path string, depth int) (*File, error) {
	if depth > maxBaseDepth {
		return nil, fmt.Errorf("%s: base_file chain deeper than %d", path, maxBaseDepth)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(raw, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.BaseFile == "" {
		return f, nil
	}

	basePath := f.BaseFile
	if !filepath.IsAbs(basePath) {
		// Prefer interpreting relative paths as relative to the config file directory,
		// but fall back to the provided path (relative to cwd) if that doesn't exist.
		cand := filepath.Join(filepath.Dir(path), basePath)
		if _, err := os.Stat(cand); err == nil {
			basePath = cand
		}
	}
	base, err := loadFile(basePath, depth+1)
	if err != nil {
		return nil, err
	}
	merged := MergeFiles(*base, *f)
	merged.BaseFile = ""
	return &merged, nil
}

// Decode parses one config document without resolving base_file.
func Decode(raw []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
	case FormatHJSON:
		// HJSON is normalised to JSON so the JSON unit decoders apply.
		var tree any
		if err := hjson.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("hjson: %w", err)
		}
		b, err := json.Marshal(tree)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
	return &f, nil
}

// Resolve applies the file over Default() and expands scenarios and stress
// tests into overlays. Explicit scenarios come first, so they win over stress
// tests covering the same year.
func (f *File) Resolve() (model.Settings, error) {
	if f == nil {
		return model.Settings{}, errors.New("config is nil")
	}
	s := Apply(Default(), f.Settings)

	effects, err := model.EffectsFromSpecs(f.Scenarios)
	if err != nil {
		return model.Settings{}, err
	}
	stress, err := scenario.ExpandAll(f.StressTests)
	if err != nil {
		return model.Settings{}, err
	}
	s.Scenarios = append(effects, stress...)
	return s, nil
}

// Apply overlays the set fields of c onto base. Maps and slices replace the
// base value wholesale.
func Apply(base model.Settings, c SettingsConfig) model.Settings {
	out := base.Clone()
	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setI := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setR := func(dst *model.Range, v *RangeValue) {
		if v != nil {
			*dst = model.Range(*v)
		}
	}
	setP := func(dst *float64, v *Ratio) {
		if v != nil {
			*dst = v.Percent
		}
	}

	setF(&out.SeedEquity, c.SeedEquity)
	setF(&out.AnnualInjection, c.AnnualInjection)
	setI(&out.InjectionYears, c.InjectionYears)
	setF(&out.UnitPrice, c.UnitPrice)
	setR(&out.PriceGrowth, c.PriceGrowth)
	setR(&out.GrossYield, c.GrossYield)
	setR(&out.RentGrowth, c.RentGrowth)
	setR(&out.OpexFactor, c.OpexFactor)
	setP(&out.LTV, c.LTV)
	setR(&out.LoanRate, c.LoanRate)
	setI(&out.TermYears, c.TermYears)
	setP(&out.CorpTaxRate, c.CorpTaxRate)
	setP(&out.DividendWHT, c.DividendWHT)
	setP(&out.PayoutRatio, c.PayoutRatio)
	setI(&out.StartPayoutsYear, c.StartPayoutsYear)
	setI(&out.RetirementYear, c.RetirementYear)
	setI(&out.ForecastPeriod, c.ForecastPeriod)
	setF(&out.BufferMonths, c.BufferMonths)

	if c.PayoutSchedule != nil {
		out.PayoutSchedule = make(map[int]float64, len(c.PayoutSchedule))
		for y, r := range c.PayoutSchedule {
			out.PayoutSchedule[y] = r.Percent
		}
	}
	if c.ExtraPrepaySchedule != nil {
		out.ExtraPrepaySchedule = make(map[int]float64, len(c.ExtraPrepaySchedule))
		for y, amt := range c.ExtraPrepaySchedule {
			out.ExtraPrepaySchedule[y] = amt
		}
	}
	if c.PurchaseYears != nil {
		out.PurchaseYears = append([]int(nil), c.PurchaseYears...)
	}
	if c.PropertyOverrides != nil {
		out.PropertyOverrides = make(map[int]model.PropertyOverride, len(c.PropertyOverrides))
		for y, o := range c.PropertyOverrides {
			out.PropertyOverrides[y] = o
		}
	}
	return out
}

// MergeFiles overlays override onto base. Settings merge field by field;
// the override's scenarios and stress tests are listed before the base's.
func MergeFiles(base, override File) File {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	out.Settings = MergeSettings(base.Settings, override.Settings)
	out.Scenarios = append(append([]model.EffectSpec(nil), override.Scenarios...), base.Scenarios...)
	out.StressTests = append(append([]scenario.Apply(nil), override.StressTests...), base.StressTests...)
	return out
}

// MergeSettings overlays set fields from override onto base.
// This is used when loading a base file and then applying overrides from a
// derived file or an API request.
func MergeSettings(base, override SettingsConfig) SettingsConfig {
	out := base
	pick := func(dst **float64, v *float64) {
		if v != nil {
			*dst = v
		}
	}
	pickI := func(dst **int, v *int) {
		if v != nil {
			*dst = v
		}
	}
	pickR := func(dst **RangeValue, v *RangeValue) {
		if v != nil {
			*dst = v
		}
	}
	pickP := func(dst **Ratio, v *Ratio) {
		if v != nil {
			*dst = v
		}
	}

	pick(&out.SeedEquity, override.SeedEquity)
	pick(&out.AnnualInjection, override.AnnualInjection)
	pickI(&out.InjectionYears, override.InjectionYears)
	pick(&out.UnitPrice, override.UnitPrice)
	pickR(&out.PriceGrowth, override.PriceGrowth)
	pickR(&out.GrossYield, override.GrossYield)
	pickR(&out.RentGrowth, override.RentGrowth)
	pickR(&out.OpexFactor, override.OpexFactor)
	pickP(&out.LTV, override.LTV)
	pickR(&out.LoanRate, override.LoanRate)
	pickI(&out.TermYears, override.TermYears)
	pickP(&out.CorpTaxRate, override.CorpTaxRate)
	pickP(&out.DividendWHT, override.DividendWHT)
	pickP(&out.PayoutRatio, override.PayoutRatio)
	pickI(&out.StartPayoutsYear, override.StartPayoutsYear)
	pickI(&out.RetirementYear, override.RetirementYear)
	pickI(&out.ForecastPeriod, override.ForecastPeriod)
	pick(&out.BufferMonths, override.BufferMonths)

	if override.PayoutSchedule != nil {
		out.PayoutSchedule = override.PayoutSchedule
	}
	if override.ExtraPrepaySchedule != nil {
		out.ExtraPrepaySchedule = override.ExtraPrepaySchedule
	}
	if override.PurchaseYears != nil {
		out.PurchaseYears = override.PurchaseYears
	}
	if override.PropertyOverrides != nil {
		out.PropertyOverrides = override.PropertyOverrides
	}
	return out
}

// FromSettings converts resolved settings back into a self-contained file.
func FromSettings(name string, s model.Settings) File {
	pr := func(v float64) *Ratio { r := Percent(v); return &r }
	rv := func(r model.Range) *RangeValue { v := RangeValue(r); return &v }
	f64 := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }

	c := SettingsConfig{
		SeedEquity:          f64(s.SeedEquity),
		AnnualInjection:     f64(s.AnnualInjection),
		InjectionYears:      i(s.InjectionYears),
		UnitPrice:           f64(s.UnitPrice),
		PriceGrowth:         rv(s.PriceGrowth),
		GrossYield:          rv(s.GrossYield),
		RentGrowth:          rv(s.RentGrowth),
		OpexFactor:          rv(s.OpexFactor),
		LTV:                 pr(s.LTV),
		LoanRate:            rv(s.LoanRate),
		TermYears:           i(s.TermYears),
		CorpTaxRate:         pr(s.CorpTaxRate),
		DividendWHT:         pr(s.DividendWHT),
		PayoutRatio:         pr(s.PayoutRatio),
		StartPayoutsYear:    i(s.StartPayoutsYear),
		ExtraPrepaySchedule: s.ExtraPrepaySchedule,
		PurchaseYears:       s.PurchaseYears,
		PropertyOverrides:   s.PropertyOverrides,
		RetirementYear:      i(s.RetirementYear),
		ForecastPeriod:      i(s.ForecastPeriod),
		BufferMonths:        f64(s.BufferMonths),
	}
	if len(s.PayoutSchedule) > 0 {
		c.PayoutSchedule = make(map[int]Ratio, len(s.PayoutSchedule))
		for y, v := range s.PayoutSchedule {
			c.PayoutSchedule[y] = Percent(v)
		}
	}
	f := File{Name: name, Settings: c}
	for _, e := range s.Scenarios {
		f.Scenarios = append(f.Scenarios, model.SpecOf(e))
	}
	return f
}

// WriteYAML writes f to path.
func WriteYAML(path string, f File) error {
	raw, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
