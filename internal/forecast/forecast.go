// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"

	"github.com/iwvelando/vehicle-tco/internal/config"
	"github.com/iwvelando/vehicle-tco/pkg/optimization"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
	"github.com/iwvelando/vehicle-tco/pkg/validation"
	"go.uber.org/zap"
)

// Forecast holds all information related to a specific forecast.
type Forecast struct {
	Name       string                `json:"name"`
	Vehicle    string                `json:"vehicle,omitempty"`
	Projection projection.Projection `json:"projection"`
	Warnings   []string              `json:"warnings,omitempty"`
	Metrics    Metrics               `json:"metrics"`
}

// Metrics holds results derived from a forecast after it was projected.
type Metrics struct {
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// GetForecast processes the Forecasts for all Scenarios.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := conf.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}

	var results []Forecast
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		params, vehicle, err := conf.ScenarioParameters(scenario, catalog)
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		warnings := validation.ValidateParameters(params)
		for _, warning := range warnings {
			logger.Warn(warning,
				zap.String("op", "forecast.GetForecast"),
				zap.String("scenario", scenario.Name),
			)
		}

		result := Forecast{
			Name:       scenario.Name,
			Vehicle:    vehicle,
			Projection: projection.Project(params),
			Warnings:   warnings,
		}
		logger.Debug("projected scenario",
			zap.String("op", "forecast.GetForecast"),
			zap.String("scenario", scenario.Name),
			zap.Int("years", len(result.Projection.Years)),
			zap.Float64("tco", result.Projection.Totals.TotalCostOfOwnership),
		)
		results = append(results, result)
	}

	return results, nil
}
