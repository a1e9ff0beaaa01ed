// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iwvelando/vehicle-tco/internal/forecast"
	"github.com/iwvelando/vehicle-tco/pkg/format"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
)

// KPIs are the headline figures shown under each scenario's table.
type KPIs struct {
	TotalCostOfOwnership float64            `json:"totalCostOfOwnership"`
	AverageCostPerMile   projection.PerMile `json:"averageCostPerMile"`
	FinalResidualValue   float64            `json:"finalResidualValue"`
	DepreciationShare    float64            `json:"depreciationShare"` // fraction of the purchase price lost
}

// KPIsFor derives the headline figures from a projection's totals.
func KPIsFor(p projection.Projection) KPIs {
	kpis := KPIs{
		TotalCostOfOwnership: p.Totals.TotalCostOfOwnership,
		AverageCostPerMile:   p.Totals.AverageCostPerMile,
		FinalResidualValue:   p.Totals.FinalResidualValue,
	}
	if p.Parameters.Price > 0 {
		kpis.DepreciationShare = p.Totals.Depreciation / p.Parameters.Price
	}
	return kpis
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []forecast.Forecast, symbol string) error {
	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		if result.Vehicle != "" {
			fmt.Fprintf(w, "Vehicle: %s\n", result.Vehicle)
		}

		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Year\tStart Value\tDepreciation\tEnd Value\tFuel\tInsurance\tMaintenance\tTotal\tPer Mile\t")
		fmt.Fprintln(tw, "____\t___________\t____________\t_________\t____\t_________\t___________\t_____\t________\t")
		for _, year := range result.Projection.Years {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				year.Year,
				format.Currency(symbol, year.StartValue),
				format.Currency(symbol, year.DepreciationAmount),
				format.Currency(symbol, year.EndValue),
				format.Currency(symbol, year.FuelCost),
				format.Currency(symbol, year.InsuranceCost),
				format.Currency(symbol, year.MaintenanceCost),
				format.Currency(symbol, year.TotalCost),
				format.PerMile(year.CostPerMile),
			)
		}
		totals := result.Projection.Totals
		fmt.Fprintf(tw, "Total\t\t%s\t\t%s\t%s\t%s\t%s\t%s\t\n",
			format.Currency(symbol, totals.Depreciation),
			format.Currency(symbol, totals.Fuel),
			format.Currency(symbol, totals.Insurance),
			format.Currency(symbol, totals.Maintenance),
			format.Currency(symbol, totals.TotalCostOfOwnership),
			format.PerMile(totals.AverageCostPerMile),
		)
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write table for scenario %s: %w", result.Name, err)
		}

		kpis := KPIsFor(result.Projection)
		fmt.Fprintf(w, "Total cost of ownership: %s\n", format.Currency(symbol, kpis.TotalCostOfOwnership))
		fmt.Fprintf(w, "Average cost per mile: %s\n", format.PerMile(kpis.AverageCostPerMile))
		fmt.Fprintf(w, "Residual value: %s (%s of price lost)\n",
			format.Currency(symbol, kpis.FinalResidualValue), format.Percent(kpis.DepreciationShare))

		for _, summary := range result.Metrics.Optimizations {
			fmt.Fprintf(w, "Optimizer: %s %s -> %s (total %s, headroom %s, %d iterations)\n",
				summary.Field,
				summary.OriginalDisplay,
				summary.ValueDisplay,
				format.Currency(symbol, summary.TotalCost),
				format.CurrencyCents(symbol, summary.Headroom),
				summary.Iterations,
			)
			if len(summary.Notes) > 0 {
				fmt.Fprintf(w, "  Notes: %s\n", strings.Join(summary.Notes, "; "))
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "Warning: %s\n", warning)
		}
	}
	return nil
}
