// Package constants provides shared constants for the vehicle-tco application.
package constants

// Projection horizon bounds.
const (
	// MinHorizonYears is the shortest ownership horizon that can be projected.
	MinHorizonYears = 1

	// MaxHorizonYears is the longest ownership horizon that can be projected.
	MaxHorizonYears = 5
)

// Cost model constants
const (
	// LitresPerUKGallon converts UK gallons to litres.
	LitresPerUKGallon = 4.54609

	// MaintenanceAgeGrowth is the yearly growth of maintenance cost with vehicle age (12%).
	MaintenanceAgeGrowth = 1.12

	// DefaultGeometricRate is the flat yearly decay used by the geometric depreciation model.
	DefaultGeometricRate = 0.15

	// MinInflationRatePct floors the yearly inflation rate; below -100% costs would change sign.
	MinInflationRatePct = -100.0

	// MaxInflationRatePct caps the yearly inflation rate so escalated costs stay finite.
	MaxInflationRatePct = 1000.0

	// DefaultFuelEfficiency replaces a non-positive fuel efficiency.
	DefaultFuelEfficiency = 1.0

	// DecimalPrecision is the number of decimal places kept for currency rounding
	DecimalPrecision = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// DefaultDepreciationCurve is the per-year curve used when neither the scenario
// nor a vehicle preset supplies one.
var DefaultDepreciationCurve = []float64{0.20, 0.12, 0.10, 0.08, 0.07}

// Unit system, depreciation model, and maintenance policy identifiers.
const (
	FuelUnitsUK = "uk"
	FuelUnitsUS = "us"

	DepreciationCurve     = "curve"
	DepreciationGeometric = "geometric"

	MaintenanceAge     = "age"
	MaintenanceUniform = "uniform"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatHTML is the HTML report output format
	OutputFormatHTML = "html"

	// DefaultCurrencySymbol prefixes formatted amounts.
	DefaultCurrencySymbol = "£"

	// UnavailablePlaceholder is rendered where a per-mile figure cannot be computed.
	UnavailablePlaceholder = "—"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRateLimit is the number of requests a client may make per DefaultRateWindow.
	DefaultRateLimit = 60

	// DefaultRateWindow is the token bucket refill window, in seconds.
	DefaultRateWindow = 60

	// DefaultCacheTTL is how long a cached projection stays valid, in seconds.
	DefaultCacheTTL = 600

	// DefaultCacheMaxEntries bounds how many projections the memory cache holds.
	DefaultCacheMaxEntries = 10000
)
