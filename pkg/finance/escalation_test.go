package finance

import (
	"math"
	"testing"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
)

func TestEscalate(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		rate     float64
		yearIdx  int
		expected float64
	}{
		{"Year one is not escalated", 900, 2, 0, 900},
		{"Single year", 900, 2, 1, 918},
		{"Compounds", 900, 2, 2, 936.36},
		{"Zero rate", 900, 0, 4, 900},
		{"Negative rate deflates", 1000, -10, 1, 900},
		{"Negative index treated as zero", 500, 5, -1, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Escalate(tt.base, tt.rate, tt.yearIdx)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Escalate(%v, %v, %d) = %v, expected %v", tt.base, tt.rate, tt.yearIdx, got, tt.expected)
			}
		})
	}
}

func TestAgeFactor(t *testing.T) {
	expected := []float64{1, 1.12, 1.2544, 1.404928}
	for idx, want := range expected {
		if got := AgeFactor(idx); math.Abs(got-want) > 1e-9 {
			t.Errorf("AgeFactor(%d) = %v, expected %v", idx, got, want)
		}
	}
}

func TestVolumePerUnit(t *testing.T) {
	tests := []struct {
		units    string
		expected float64
		ok       bool
	}{
		{"uk", constants.LitresPerUKGallon, true},
		{" UK ", constants.LitresPerUKGallon, true},
		{"us", 1, true},
		{"metric", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.units, func(t *testing.T) {
			got, ok := VolumePerUnit(tt.units)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("VolumePerUnit(%q) = (%v, %v), expected (%v, %v)", tt.units, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestAnnualFuelCost(t *testing.T) {
	// 10,000 miles at 50 mpg (UK) with fuel at 1.50 per litre.
	got := AnnualFuelCost(10000, 50, constants.LitresPerUKGallon, 1.50)
	if math.Abs(got-1363.827) > 1e-9 {
		t.Errorf("AnnualFuelCost() = %v, expected 1363.827", got)
	}

	// A non-positive efficiency must not divide by zero.
	got = AnnualFuelCost(100, 0, 1, 2)
	if math.IsInf(got, 0) || math.IsNaN(got) || got != 200 {
		t.Errorf("AnnualFuelCost() with zero efficiency = %v, expected 200", got)
	}
}

func TestMaintenanceCost(t *testing.T) {
	tests := []struct {
		name     string
		yearIdx  int
		policy   string
		expected float64
	}{
		{"Age policy year one", 0, constants.MaintenanceAge, 450},
		{"Age policy ignores inflation", 1, constants.MaintenanceAge, 504},
		{"Age policy year three", 2, constants.MaintenanceAge, 564.48},
		{"Uniform policy year one", 0, constants.MaintenanceUniform, 450},
		{"Uniform policy escalates", 1, constants.MaintenanceUniform, 514.08},
		{"Unknown policy behaves like age", 1, "", 504},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaintenanceCost(450, 2, tt.yearIdx, tt.policy)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("MaintenanceCost(450, 2, %d, %q) = %v, expected %v", tt.yearIdx, tt.policy, got, tt.expected)
			}
		})
	}
}
