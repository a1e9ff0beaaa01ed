package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/vehicle-tco/internal/forecast"
	"github.com/iwvelando/vehicle-tco/pkg/mathutil"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
)

var csvHeader = []string{
	"scenario", "vehicle", "year", "start value", "depreciation", "end value",
	"fuel", "insurance", "maintenance", "total", "cost per mile",
}

// CsvFormat writes one row per scenario year followed by a totals row per
// scenario. An unavailable cost per mile is an empty cell.
func CsvFormat(w io.Writer, results []forecast.Forecast) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, result := range results {
		for _, year := range result.Projection.Years {
			record := []string{
				result.Name,
				result.Vehicle,
				strconv.Itoa(year.Year),
				amount(year.StartValue),
				amount(year.DepreciationAmount),
				amount(year.EndValue),
				amount(year.FuelCost),
				amount(year.InsuranceCost),
				amount(year.MaintenanceCost),
				amount(year.TotalCost),
				perMile(year.CostPerMile),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write csv row for scenario %s: %w", result.Name, err)
			}
		}

		totals := result.Projection.Totals
		record := []string{
			result.Name,
			result.Vehicle,
			"total",
			amount(result.Projection.Parameters.Price),
			amount(totals.Depreciation),
			amount(totals.FinalResidualValue),
			amount(totals.Fuel),
			amount(totals.Insurance),
			amount(totals.Maintenance),
			amount(totals.TotalCostOfOwnership),
			perMile(totals.AverageCostPerMile),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv totals for scenario %s: %w", result.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CsvString returns the CsvFormat output as a string.
func CsvString(results []forecast.Forecast) (string, error) {
	var b strings.Builder
	if err := CsvFormat(&b, results); err != nil {
		return "", err
	}
	return b.String(), nil
}

func amount(v float64) string {
	return strconv.FormatFloat(mathutil.Round(v), 'f', 2, 64)
}

func perMile(m projection.PerMile) string {
	if !m.Available {
		return ""
	}
	return amount(m.Value)
}
