package output

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/iwvelando/vehicle-tco/internal/forecast"
	"github.com/iwvelando/vehicle-tco/pkg/format"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown returns the forecasts as a markdown document with one table per
// scenario and a residual-value table.
func Markdown(results []forecast.Forecast, symbol string) string {
	var b strings.Builder
	b.WriteString("# Vehicle total cost of ownership\n\n")

	for _, result := range results {
		fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(result.Name))
		if result.Vehicle != "" {
			fmt.Fprintf(&b, "Vehicle: %s\n\n", escapeMarkdown(result.Vehicle))
		}

		b.WriteString("| Year | Start Value | Depreciation | End Value | Fuel | Insurance | Maintenance | Total | Per Mile |\n")
		b.WriteString("|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, year := range result.Projection.Years {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
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
		fmt.Fprintf(&b, "| **Total** | | %s | | %s | %s | %s | %s | %s |\n\n",
			format.Currency(symbol, totals.Depreciation),
			format.Currency(symbol, totals.Fuel),
			format.Currency(symbol, totals.Insurance),
			format.Currency(symbol, totals.Maintenance),
			format.Currency(symbol, totals.TotalCostOfOwnership),
			format.PerMile(totals.AverageCostPerMile),
		)

		kpis := KPIsFor(result.Projection)
		fmt.Fprintf(&b, "- Total cost of ownership: **%s**\n", format.Currency(symbol, kpis.TotalCostOfOwnership))
		fmt.Fprintf(&b, "- Average cost per mile: **%s**\n", format.PerMile(kpis.AverageCostPerMile))
		fmt.Fprintf(&b, "- Residual value: **%s** (%s of price lost)\n\n",
			format.Currency(symbol, kpis.FinalResidualValue), format.Percent(kpis.DepreciationShare))

		b.WriteString("| Residual value | |\n|---|---:|\n")
		for _, point := range result.Projection.ResidualSeries() {
			fmt.Fprintf(&b, "| %s | %s |\n", point.Label, format.Currency(symbol, point.Value))
		}
		b.WriteString("\n")

		for _, summary := range result.Metrics.Optimizations {
			fmt.Fprintf(&b, "> Optimizer: %s %s → %s, headroom %s\n\n",
				summary.Field, summary.OriginalDisplay, summary.ValueDisplay,
				format.Currency(symbol, summary.Headroom))
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(&b, "> Warning: %s\n\n", escapeMarkdown(warning))
		}
	}

	return b.String()
}

// HTMLFormat renders Markdown to a standalone HTML page.
func HTMLFormat(w io.Writer, results []forecast.Forecast, symbol string) error {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(results, symbol)), &body); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString("Vehicle total cost of ownership"), body.String())
	if err != nil {
		return fmt.Errorf("failed to write html report: %w", err)
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, `|`, `\|`, `*`, `\*`, `_`, `\_`, `<`, `&lt;`, `>`, `&gt;`, "`", "\\`", `#`, `\#`, `[`, `\[`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
