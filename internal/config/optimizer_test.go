package config

import "testing"

func TestCanonicalOptimizerField(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty defaults to price", input: "", expected: OptimizerFieldPrice},
		{name: "price casing", input: "Price", expected: OptimizerFieldPrice},
		{name: "annual miles", input: "ANNUALMILES", expected: OptimizerFieldAnnualMiles},
		{name: "annual miles variations", input: "annual_miles", expected: OptimizerFieldAnnualMiles},
		{name: "miles shorthand", input: "miles", expected: OptimizerFieldAnnualMiles},
		{name: "unknown lowered", input: "Custom", expected: "custom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := CanonicalOptimizerField(tc.input)
			if actual != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, actual)
			}
		})
	}
}

func TestOptimizerConfigNormalizeDefaults(t *testing.T) {
	testCases := []struct {
		name      string
		field     string
		tolerance float64
		max       float64
	}{
		{name: "price default", field: "", tolerance: defaultTolerancePrice, max: defaultMaxPrice},
		{name: "annual miles", field: "annual-miles", tolerance: defaultToleranceMiles, max: defaultMaxAnnualMiles},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &OptimizerConfig{Field: tc.field, Budget: 10000}
			cfg.Normalize()

			if cfg.Tolerance != tc.tolerance {
				t.Fatalf("expected tolerance %.2f, got %.2f", tc.tolerance, cfg.Tolerance)
			}
			if cfg.Min == nil || *cfg.Min != 0 {
				t.Fatalf("expected minimum 0, got %v", cfg.Min)
			}
			if cfg.Max == nil || *cfg.Max != tc.max {
				t.Fatalf("expected maximum %.0f, got %v", tc.max, cfg.Max)
			}
			if cfg.MaxIterations != defaultMaxIterations {
				t.Fatalf("expected %d iterations, got %d", defaultMaxIterations, cfg.MaxIterations)
			}
		})
	}
}

func TestOptimizerConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     *OptimizerConfig
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "valid price", cfg: &OptimizerConfig{Field: "price", Budget: 30000}},
		{name: "valid miles with bounds", cfg: &OptimizerConfig{Field: "annualMiles", Budget: 30000, Min: floatPtr(1000), Max: floatPtr(20000)}},
		{name: "unsupported field", cfg: &OptimizerConfig{Field: "insurance", Budget: 30000}, wantErr: true},
		{name: "zero budget", cfg: &OptimizerConfig{Field: "price"}, wantErr: true},
		{name: "negative minimum", cfg: &OptimizerConfig{Budget: 1, Min: floatPtr(-1)}, wantErr: true},
		{name: "inverted bounds", cfg: &OptimizerConfig{Budget: 1, Min: floatPtr(10), Max: floatPtr(5)}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("Validate() expected error but got none")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func floatPtr(value float64) *float64 {
	return &value
}
