package config

import (
	"fmt"
	"math"
	"strings"
)

const (
	OptimizerFieldPrice       = "price"
	OptimizerFieldAnnualMiles = "annualMiles"

	defaultTolerancePrice = 1
	defaultToleranceMiles = 10
	defaultMaxIterations  = 50
	defaultMaxPrice       = 1000000
	defaultMaxAnnualMiles = 100000
)

// OptimizerConfig defines a budget search over a single scenario field: the
// largest value in [Min, Max] whose total cost of ownership stays within
// Budget.
type OptimizerConfig struct {
	Field         string   `yaml:"field,omitempty" json:"field,omitempty" mapstructure:"field"`
	Budget        float64  `yaml:"budget" json:"budget" mapstructure:"budget"`
	Min           *float64 `yaml:"min,omitempty" json:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" json:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldPrice
	}
	switch strings.ToLower(trimmed) {
	case "price":
		return OptimizerFieldPrice
	case "annualmiles", "annual_miles", "annual-miles", "miles":
		return OptimizerFieldAnnualMiles
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)

	switch o.Field {
	case OptimizerFieldAnnualMiles:
		if o.Tolerance <= 0 {
			o.Tolerance = defaultToleranceMiles
		}
		if o.Max == nil {
			upper := float64(defaultMaxAnnualMiles)
			o.Max = &upper
		}
	default:
		if o.Tolerance <= 0 {
			o.Tolerance = defaultTolerancePrice
		}
		if o.Max == nil {
			upper := float64(defaultMaxPrice)
			o.Max = &upper
		}
	}
	if o.Min == nil {
		lower := 0.0
		o.Min = &lower
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	switch o.Field {
	case OptimizerFieldPrice, OptimizerFieldAnnualMiles:
		// supported fields
	default:
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}

	if math.IsNaN(o.Budget) || math.IsInf(o.Budget, 0) || o.Budget <= 0 {
		return fmt.Errorf("optimizer budget %.2f must be positive", o.Budget)
	}
	if *o.Min < 0 {
		return fmt.Errorf("optimizer minimum %.2f must not be negative", *o.Min)
	}
	if *o.Min >= *o.Max {
		return fmt.Errorf("optimizer minimum %.2f must be less than maximum %.2f", *o.Min, *o.Max)
	}

	return nil
}
