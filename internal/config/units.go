package config

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"spv-projection/internal/model"
)

// Ratio is a percentage with an explicit unit. A bare number is always a whole
// percent (28 = 28%); {fraction: 0.28} and {percent: 28} spell the unit out.
// Magnitude is never used to guess the unit, so 1 means 1%.
type Ratio struct {
	Percent float64
}

func Percent(v float64) Ratio  { return Ratio{Percent: v} }
func Fraction(v float64) Ratio { return Ratio{Percent: v * 100} }

type ratioObject struct {
	Percent  *float64 `yaml:"percent" json:"percent"`
	Fraction *float64 `yaml:"fraction" json:"fraction"`
}

func (o ratioObject) ratio() (Ratio, error) {
	switch {
	case o.Percent != nil && o.Fraction != nil:
		return Ratio{}, errors.New("ratio: set either percent or fraction, not both")
	case o.Percent != nil:
		return Percent(*o.Percent), nil
	case o.Fraction != nil:
		return Fraction(*o.Fraction), nil
	default:
		return Ratio{}, errors.New("ratio: expected a number or {percent|fraction: number}")
	}
}

func (r *Ratio) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("ratio: %w", err)
		}
		*r = Percent(v)
		return nil
	}
	var o ratioObject
	if err := node.Decode(&o); err != nil {
		return fmt.Errorf("ratio: %w", err)
	}
	out, err := o.ratio()
	if err != nil {
		return err
	}
	*r = out
	return nil
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var o ratioObject
		if err := json.Unmarshal(b, &o); err != nil {
			return fmt.Errorf("ratio: %w", err)
		}
		out, err := o.ratio()
		if err != nil {
			return err
		}
		*r = out
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("ratio: %w", err)
	}
	*r = Percent(v)
	return nil
}

func (r Ratio) MarshalJSON() ([]byte, error) { return json.Marshal(r.Percent) }
func (r Ratio) MarshalYAML() (any, error)    { return r.Percent, nil }

// RangeValue is a ranged input in a config file: either a bare percent or
// {value, min, max}.
type RangeValue model.Range

type rangeObject struct {
	Value *float64 `yaml:"value" json:"value"`
	Min   *float64 `yaml:"min" json:"min"`
	Max   *float64 `yaml:"max" json:"max"`
}

func (o rangeObject) toRange() (RangeValue, error) {
	if o.Value == nil {
		return RangeValue{}, errors.New("range: value is required")
	}
	return RangeValue{Value: *o.Value, Min: o.Min, Max: o.Max}, nil
}

func (r *RangeValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("range: %w", err)
		}
		*r = RangeValue{Value: v}
		return nil
	}
	var o rangeObject
	if err := node.Decode(&o); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	out, err := o.toRange()
	if err != nil {
		return err
	}
	*r = out
	return nil
}

func (r *RangeValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var o rangeObject
		if err := json.Unmarshal(b, &o); err != nil {
			return fmt.Errorf("range: %w", err)
		}
		out, err := o.toRange()
		if err != nil {
			return err
		}
		*r = out
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	*r = RangeValue{Value: v}
	return nil
}

func (r RangeValue) MarshalJSON() ([]byte, error) { return json.Marshal(model.Range(r)) }
func (r RangeValue) MarshalYAML() (any, error)    { return model.Range(r), nil }
