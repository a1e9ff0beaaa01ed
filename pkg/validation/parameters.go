package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/finance"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
)

// ValidateParameters reports every input that projection.Parameters.Normalize
// will change. The projection still runs; the warnings tell the caller which
// values were substituted.
func ValidateParameters(p projection.Parameters) []string {
	var warnings []string

	if p.HorizonYears != 0 && (p.HorizonYears < constants.MinHorizonYears || p.HorizonYears > constants.MaxHorizonYears) {
		warnings = append(warnings, fmt.Sprintf("horizon of %d years is outside %d-%d and will be clamped",
			p.HorizonYears, constants.MinHorizonYears, constants.MaxHorizonYears))
	}

	if math.IsNaN(p.FuelEfficiency) || math.IsInf(p.FuelEfficiency, 0) || p.FuelEfficiency <= 0 {
		warnings = append(warnings, fmt.Sprintf("fuel efficiency %v is not positive; using %v",
			p.FuelEfficiency, constants.DefaultFuelEfficiency))
	}

	amounts := []struct {
		name  string
		value float64
	}{
		{"price", p.Price},
		{"annual miles", p.AnnualMiles},
		{"fuel price", p.FuelUnitPrice},
		{"insurance", p.BaseInsurance},
		{"maintenance", p.BaseMaintenance},
	}
	for _, amount := range amounts {
		switch {
		case math.IsNaN(amount.value) || math.IsInf(amount.value, 0):
			warnings = append(warnings, fmt.Sprintf("%s is not a number; using 0", amount.name))
		case amount.value < 0:
			warnings = append(warnings, fmt.Sprintf("%s %.2f is negative; using 0", amount.name, amount.value))
		}
	}

	switch {
	case math.IsNaN(p.InflationRatePct) || math.IsInf(p.InflationRatePct, 0):
		warnings = append(warnings, "inflation is not a number; using 0")
	case p.InflationRatePct < constants.MinInflationRatePct:
		warnings = append(warnings, fmt.Sprintf("inflation %v%% is below %v%%; using %v%%",
			p.InflationRatePct, constants.MinInflationRatePct, constants.MinInflationRatePct))
	case p.InflationRatePct > constants.MaxInflationRatePct:
		warnings = append(warnings, fmt.Sprintf("inflation %v%% is above %v%%; using %v%%",
			p.InflationRatePct, constants.MaxInflationRatePct, constants.MaxInflationRatePct))
	}

	for i, rate := range p.DepreciationCurve {
		if math.IsNaN(rate) || rate < 0 || rate > 1 {
			warnings = append(warnings, fmt.Sprintf("depreciation rate %v for year %d is outside 0-1 and will be clamped", rate, i+1))
		}
	}

	if p.FuelUnits != "" {
		if _, ok := finance.VolumePerUnit(p.FuelUnits); !ok {
			warnings = append(warnings, fmt.Sprintf("fuel units %q are unknown; using %s", p.FuelUnits, constants.FuelUnitsUK))
		}
	}

	model := strings.ToLower(strings.TrimSpace(p.DepreciationModel))
	if model != "" && model != constants.DepreciationCurve && model != constants.DepreciationGeometric {
		warnings = append(warnings, fmt.Sprintf("depreciation model %q is unknown; using %s", p.DepreciationModel, constants.DepreciationCurve))
	}

	policy := strings.ToLower(strings.TrimSpace(p.MaintenancePolicy))
	if policy != "" && policy != constants.MaintenanceAge && policy != constants.MaintenanceUniform {
		warnings = append(warnings, fmt.Sprintf("maintenance policy %q is unknown; using %s", p.MaintenancePolicy, constants.MaintenanceAge))
	}

	return warnings
}
