package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/vehicle-tco/internal/forecast"
	"github.com/iwvelando/vehicle-tco/pkg/optimization"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
)

// Report is the machine-readable form of a set of forecasts.
type Report struct {
	Currency  string           `json:"currency"`
	Scenarios []ScenarioReport `json:"scenarios"`
}

// ScenarioReport is one scenario's projection with its derived figures.
type ScenarioReport struct {
	Name           string                   `json:"name"`
	Vehicle        string                   `json:"vehicle,omitempty"`
	Projection     projection.Projection    `json:"projection"`
	KPIs           KPIs                     `json:"kpis"`
	ResidualSeries []projection.SeriesPoint `json:"residualSeries"`
	Optimizations  []optimization.Summary   `json:"optimizations,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
}

// NewReport builds a Report from forecast results.
func NewReport(results []forecast.Forecast, symbol string) Report {
	report := Report{Currency: symbol, Scenarios: make([]ScenarioReport, 0, len(results))}
	for _, result := range results {
		report.Scenarios = append(report.Scenarios, ScenarioReport{
			Name:           result.Name,
			Vehicle:        result.Vehicle,
			Projection:     result.Projection,
			KPIs:           KPIsFor(result.Projection),
			ResidualSeries: result.Projection.ResidualSeries(),
			Optimizations:  result.Metrics.Optimizations,
			Warnings:       result.Warnings,
		})
	}
	return report
}

// JSONFormat writes the forecasts as an indented JSON Report.
func JSONFormat(w io.Writer, results []forecast.Forecast, symbol string) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(NewReport(results, symbol)); err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	return nil
}
