package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/presets"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
)

// ScenarioParameters builds the projection parameters for a scenario. Values
// are layered common first, then the vehicle preset, then the scenario's own
// fields, so a scenario field always wins. It also returns the display name
// of the vehicle, which is empty when no preset is referenced.
func (conf *Configuration) ScenarioParameters(scenario Scenario, catalog *presets.Catalog) (projection.Parameters, string, error) {
	var params projection.Parameters
	curveSet := false

	if err := conf.Common.apply(&params, &curveSet, catalog); err != nil {
		return projection.Parameters{}, "", fmt.Errorf("common: %w", err)
	}

	vehicleName := ""
	if scenario.Vehicle != nil {
		vehicle, err := resolveVehicle(*scenario.Vehicle, catalog)
		if err != nil {
			return projection.Parameters{}, "", err
		}
		params = vehicle.Apply(params)
		curveSet = curveSet || len(vehicle.Depreciation) > 0
		vehicleName = vehicle.Name()
	}

	if err := scenario.Values.apply(&params, &curveSet, catalog); err != nil {
		return projection.Parameters{}, "", err
	}

	if !curveSet && !strings.EqualFold(strings.TrimSpace(params.DepreciationModel), constants.DepreciationGeometric) {
		params.DepreciationCurve = append([]float64(nil), constants.DefaultDepreciationCurve...)
	}

	return params, vehicleName, nil
}

func resolveVehicle(ref VehicleRef, catalog *presets.Catalog) (presets.Vehicle, error) {
	if catalog == nil {
		return presets.Vehicle{}, fmt.Errorf("vehicle %q: no preset catalog", ref.String())
	}
	if ref.Name != "" {
		return catalog.LookupName(ref.Name)
	}
	if ref.Brand == "" {
		return catalog.LookupName(ref.Model)
	}
	return catalog.Lookup(ref.Brand, ref.Model)
}

func (v Values) apply(params *projection.Parameters, curveSet *bool, catalog *presets.Catalog) error {
	if v.Years != nil {
		params.HorizonYears = *v.Years
	}
	if v.Price != nil {
		params.Price = *v.Price
	}
	if v.AnnualMiles != nil {
		params.AnnualMiles = *v.AnnualMiles
	}
	if v.FuelEfficiency != nil {
		params.FuelEfficiency = *v.FuelEfficiency
	}
	if v.FuelPrice != nil {
		params.FuelUnitPrice = *v.FuelPrice
	} else if v.FuelPreset != "" {
		if catalog == nil {
			return fmt.Errorf("fuel preset %q: no preset catalog", v.FuelPreset)
		}
		price, err := catalog.FuelPrice(v.FuelPreset)
		if err != nil {
			return err
		}
		params.FuelUnitPrice = price
	}
	if v.FuelUnits != "" {
		params.FuelUnits = v.FuelUnits
	}
	if v.Insurance != nil {
		params.BaseInsurance = *v.Insurance
	}
	if v.Maintenance != nil {
		params.BaseMaintenance = *v.Maintenance
	}
	if v.Inflation != nil {
		params.InflationRatePct = *v.Inflation
	}
	if v.MaintenancePolicy != "" {
		params.MaintenancePolicy = v.MaintenancePolicy
	}
	if d := v.Depreciation; d != nil {
		if d.Model != "" {
			params.DepreciationModel = d.Model
		}
		if d.Curve != nil {
			params.DepreciationCurve = append([]float64(nil), d.Curve...)
			*curveSet = true
		}
		if d.Rate != 0 {
			params.GeometricRate = d.Rate
		}
	}
	return nil
}
