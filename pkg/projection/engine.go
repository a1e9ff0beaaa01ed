// Package projection computes the year-by-year total cost of owning a
// vehicle: depreciation, fuel, insurance, and maintenance over a horizon of
// one to five years, plus aggregate totals and the residual-value series.
//
// Project is a pure function of its input and is safe for concurrent use.
package projection

import (
	"fmt"

	"github.com/iwvelando/vehicle-tco/pkg/finance"
)

// YearResult holds the figures for one year of ownership.
type YearResult struct {
	Year               int     `json:"year"`
	StartValue         float64 `json:"startValue"`
	DepreciationAmount float64 `json:"depreciationAmount"`
	EndValue           float64 `json:"endValue"`
	FuelCost           float64 `json:"fuelCost"`
	InsuranceCost      float64 `json:"insuranceCost"`
	MaintenanceCost    float64 `json:"maintenanceCost"`
	TotalCost          float64 `json:"totalCost"`
	CostPerMile        PerMile `json:"costPerMile"`
}

// Aggregate summarizes a sequence of YearResults.
type Aggregate struct {
	Depreciation         float64 `json:"depreciation"`
	Fuel                 float64 `json:"fuel"`
	Insurance            float64 `json:"insurance"`
	Maintenance          float64 `json:"maintenance"`
	TotalCostOfOwnership float64 `json:"totalCostOfOwnership"`
	AverageCostPerMile   PerMile `json:"averageCostPerMile"`
	FinalResidualValue   float64 `json:"finalResidualValue"`
}

// Projection is the result of projecting one parameter set.
type Projection struct {
	Parameters Parameters   `json:"parameters"` // normalized
	Years      []YearResult `json:"years"`
	Totals     Aggregate    `json:"totals"`
}

// SeriesPoint is one point of the residual-value chart.
type SeriesPoint struct {
	Year  int     `json:"year"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Project normalizes params and computes one YearResult per year of the
// horizon. Each year starts from the previous year's end value.
func Project(params Parameters) Projection {
	p := params.Normalize()

	volume, _ := finance.VolumePerUnit(p.FuelUnits)
	nominalFuel := finance.AnnualFuelCost(p.AnnualMiles, p.FuelEfficiency, volume, p.FuelUnitPrice)

	years := make([]YearResult, 0, p.HorizonYears)
	startValue := p.Price
	for idx := 0; idx < p.HorizonYears; idx++ {
		depreciation := startValue * p.DepreciationCurve[idx]
		endValue := startValue - depreciation

		fuel := finance.Escalate(nominalFuel, p.InflationRatePct, idx)
		insurance := finance.Escalate(p.BaseInsurance, p.InflationRatePct, idx)
		maintenance := finance.MaintenanceCost(p.BaseMaintenance, p.InflationRatePct, idx, p.MaintenancePolicy)
		total := depreciation + fuel + insurance + maintenance

		years = append(years, YearResult{
			Year:               idx + 1,
			StartValue:         startValue,
			DepreciationAmount: depreciation,
			EndValue:           endValue,
			FuelCost:           fuel,
			InsuranceCost:      insurance,
			MaintenanceCost:    maintenance,
			TotalCost:          total,
			CostPerMile:        PerMileOf(total, p.AnnualMiles),
		})
		startValue = endValue
	}

	return Projection{
		Parameters: p,
		Years:      years,
		Totals:     Summarize(years, p.AnnualMiles, p.Price),
	}
}

// Summarize recomputes the aggregate from a year sequence. The average cost
// per mile spreads the total over annualMiles for every year in the sequence.
// With no years the residual value is the purchase price.
func Summarize(years []YearResult, annualMiles, price float64) Aggregate {
	var agg Aggregate
	for _, year := range years {
		agg.Depreciation += year.DepreciationAmount
		agg.Fuel += year.FuelCost
		agg.Insurance += year.InsuranceCost
		agg.Maintenance += year.MaintenanceCost
		agg.TotalCostOfOwnership += year.TotalCost
	}
	agg.AverageCostPerMile = PerMileOf(agg.TotalCostOfOwnership, annualMiles*float64(len(years)))
	agg.FinalResidualValue = price
	if len(years) > 0 {
		agg.FinalResidualValue = years[len(years)-1].EndValue
	}
	return agg
}

// ResidualSeries returns the end-of-year vehicle value for each year,
// labelled for charting. Every call builds a new slice.
func (p Projection) ResidualSeries() []SeriesPoint {
	series := make([]SeriesPoint, len(p.Years))
	for i, year := range p.Years {
		series[i] = SeriesPoint{
			Year:  year.Year,
			Label: fmt.Sprintf("Year %d", year.Year),
			Value: year.EndValue,
		}
	}
	return series
}
