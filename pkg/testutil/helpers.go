// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/vehicle-tco/internal/forecast"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindScenario(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// CorollaParameters returns the worked example used across tests: a £22,000
// car doing 10,000 miles a year at 50 mpg over five years.
func CorollaParameters() projection.Parameters {
	return projection.Parameters{
		Price:             22000,
		HorizonYears:      5,
		AnnualMiles:       10000,
		FuelEfficiency:    50,
		FuelUnitPrice:     1.5,
		BaseInsurance:     900,
		BaseMaintenance:   450,
		InflationRatePct:  2,
		DepreciationCurve: []float64{0.20, 0.12, 0.10, 0.08, 0.07},
	}
}
