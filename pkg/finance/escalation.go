// Package finance provides the cost escalation and fuel arithmetic used by
// ownership projections.
package finance

import (
	"math"
	"strings"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
)

const percentDivisor = 100.0

func percentToDecimal(percent float64) float64 {
	return percent / percentDivisor
}

// Escalate compounds base by ratePct percent per year for yearIdx years,
// i.e. base * (1 + ratePct/100)^yearIdx. Year index 0 returns base unchanged.
func Escalate(base, ratePct float64, yearIdx int) float64 {
	if yearIdx <= 0 {
		return base
	}
	return base * math.Pow(1+percentToDecimal(ratePct), float64(yearIdx))
}

// AgeFactor is the maintenance growth multiplier for a vehicle that is
// yearIdx years old.
func AgeFactor(yearIdx int) float64 {
	if yearIdx <= 0 {
		return 1
	}
	return math.Pow(constants.MaintenanceAgeGrowth, float64(yearIdx))
}

// VolumePerUnit returns how many priced fuel-volume units make up one gallon
// of the given unit system. UK efficiency is miles per imperial gallon with
// fuel priced per litre; US efficiency is miles per US gallon with fuel
// priced per gallon.
func VolumePerUnit(units string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(units)) {
	case constants.FuelUnitsUK:
		return constants.LitresPerUKGallon, true
	case constants.FuelUnitsUS:
		return 1, true
	}
	return 0, false
}

// AnnualFuelCost is the un-escalated fuel spend for a year of driving:
// miles / efficiency gallons, converted to priced units, times the unit price.
func AnnualFuelCost(miles, efficiency, volumePerUnit, unitPrice float64) float64 {
	if efficiency <= 0 {
		efficiency = constants.DefaultFuelEfficiency
	}
	return (miles / efficiency) * volumePerUnit * unitPrice
}

// MaintenanceCost returns the maintenance spend for year index yearIdx.
//
// The "age" policy grows the base by the age factor only; the inflation
// escalator is applied with exponent zero. The "uniform" policy additionally
// escalates by inflation like fuel and insurance.
func MaintenanceCost(base, inflationPct float64, yearIdx int, policy string) float64 {
	aged := base * AgeFactor(yearIdx)
	if policy == constants.MaintenanceUniform {
		return Escalate(aged, inflationPct, yearIdx)
	}
	return Escalate(aged, inflationPct, 0)
}
