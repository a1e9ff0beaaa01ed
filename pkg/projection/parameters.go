package projection

import (
	"strings"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/finance"
	"github.com/iwvelando/vehicle-tco/pkg/mathutil"
)

// Parameters is the input to a single projection. Callers build a fresh value
// for every calculation; Project never mutates it.
type Parameters struct {
	Price            float64 `json:"price" yaml:"price"`
	HorizonYears     int     `json:"horizonYears" yaml:"horizonYears"`
	AnnualMiles      float64 `json:"annualMiles" yaml:"annualMiles"`
	FuelEfficiency   float64 `json:"fuelEfficiency" yaml:"fuelEfficiency"` // distance per gallon
	FuelUnitPrice    float64 `json:"fuelUnitPrice" yaml:"fuelUnitPrice"`   // currency per priced fuel unit
	BaseInsurance    float64 `json:"baseInsurance" yaml:"baseInsurance"`
	BaseMaintenance  float64 `json:"baseMaintenance" yaml:"baseMaintenance"`
	InflationRatePct float64 `json:"inflationRatePct" yaml:"inflationRatePct"`

	// DepreciationCurve holds the fraction of current value lost in each
	// year; index 0 is year 1.
	DepreciationCurve []float64 `json:"depreciationCurve,omitempty" yaml:"depreciationCurve,omitempty"`

	FuelUnits         string  `json:"fuelUnits,omitempty" yaml:"fuelUnits,omitempty"`                 // uk, us
	DepreciationModel string  `json:"depreciationModel,omitempty" yaml:"depreciationModel,omitempty"` // curve, geometric
	GeometricRate     float64 `json:"geometricRate,omitempty" yaml:"geometricRate,omitempty"`
	MaintenancePolicy string  `json:"maintenancePolicy,omitempty" yaml:"maintenancePolicy,omitempty"` // age, uniform
}

// Normalize returns a copy of the parameters that the engine can project
// without failing:
//   - a zero horizon means the maximum; others are clamped to [1,5]
//   - NaN and infinite values become 0; negative amounts become 0
//   - inflation is clamped to [-100, 1000] percent
//   - a non-positive fuel efficiency defaults to 1
//   - the depreciation curve is resized to the horizon, missing years are 0
//     and every rate is clamped to [0,1]
//   - unknown unit systems, models, and policies fall back to uk, curve, age
//
// The geometric model is materialized into the curve, so a normalized value
// always carries one explicit rate per year.
func (p Parameters) Normalize() Parameters {
	n := p

	if p.HorizonYears == 0 {
		n.HorizonYears = constants.MaxHorizonYears
	} else {
		n.HorizonYears = mathutil.ClampInt(p.HorizonYears, constants.MinHorizonYears, constants.MaxHorizonYears)
	}

	n.Price = mathutil.NonNegative(p.Price)
	n.AnnualMiles = mathutil.NonNegative(p.AnnualMiles)
	n.FuelUnitPrice = mathutil.NonNegative(p.FuelUnitPrice)
	n.BaseInsurance = mathutil.NonNegative(p.BaseInsurance)
	n.BaseMaintenance = mathutil.NonNegative(p.BaseMaintenance)
	n.InflationRatePct = mathutil.Clamp(mathutil.Finite(p.InflationRatePct), constants.MinInflationRatePct, constants.MaxInflationRatePct)

	n.FuelEfficiency = mathutil.Finite(p.FuelEfficiency)
	if n.FuelEfficiency <= 0 {
		n.FuelEfficiency = constants.DefaultFuelEfficiency
	}

	n.FuelUnits = strings.ToLower(strings.TrimSpace(p.FuelUnits))
	if _, ok := finance.VolumePerUnit(n.FuelUnits); !ok {
		n.FuelUnits = constants.FuelUnitsUK
	}

	n.MaintenancePolicy = strings.ToLower(strings.TrimSpace(p.MaintenancePolicy))
	if n.MaintenancePolicy != constants.MaintenanceUniform {
		n.MaintenancePolicy = constants.MaintenanceAge
	}

	model := ModelFor(p.DepreciationModel, p.DepreciationCurve, p.GeometricRate)
	n.DepreciationModel = model.Name()
	n.GeometricRate = 0
	if geometric, ok := model.(GeometricModel); ok {
		n.GeometricRate = geometric.Rate
	}
	n.DepreciationCurve = model.Curve(n.HorizonYears)

	return n
}

func clampRate(rate float64) float64 {
	return mathutil.Clamp(rate, 0, 1)
}
