// Package config defines the data structures related to configuration and
// includes functions for loading the config and turning scenarios into
// projection parameters.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/presets"
	"github.com/iwvelando/vehicle-tco/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for vehicle-tco.
type Configuration struct {
	Logging   LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty" json:"output,omitempty"`
	Presets   PresetsConfig `yaml:"presets,omitempty" json:"presets,omitempty"`
	Common    Common        `yaml:"common,omitempty" json:"common,omitempty"`
	Scenarios []Scenario    `yaml:"scenarios" json:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty" json:"format,omitempty"`     // pretty, csv, json, html
	Currency string `yaml:"currency,omitempty" json:"currency,omitempty"` // display symbol only
}

// PresetsConfig points at an optional hjson vehicle catalog that replaces
// the built-in one.
type PresetsConfig struct {
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Common holds the values shared by all scenarios.
type Common struct {
	Values `yaml:",inline" mapstructure:",squash"`
}

// Scenario holds one vehicle and its projection inputs.
type Scenario struct {
	Name      string           `yaml:"name" json:"name"`
	Active    bool             `yaml:"active" json:"active"`
	Vehicle   *VehicleRef      `yaml:"vehicle,omitempty" json:"vehicle,omitempty"`
	Optimizer *OptimizerConfig `yaml:"optimizer,omitempty" json:"optimizer,omitempty"`
	Values    `yaml:",inline" mapstructure:",squash"`
}

// VehicleRef names a vehicle preset, either by brand and model or by a flat
// name such as "Toyota Corolla".
type VehicleRef struct {
	Brand string `yaml:"brand,omitempty" json:"brand,omitempty"`
	Model string `yaml:"model,omitempty" json:"model,omitempty"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
}

// String is the display name of the reference.
func (v VehicleRef) String() string {
	if v.Name != "" {
		return v.Name
	}
	return strings.TrimSpace(v.Brand + " " + v.Model)
}

// Values holds the projection inputs that common and scenario blocks may
// set. Nil pointers and empty strings are unset.
type Values struct {
	Years             *int                `yaml:"years,omitempty" json:"years,omitempty"`
	Price             *float64            `yaml:"price,omitempty" json:"price,omitempty"`
	AnnualMiles       *float64            `yaml:"annualMiles,omitempty" json:"annualMiles,omitempty" mapstructure:"annualMiles"`
	FuelEfficiency    *float64            `yaml:"fuelEfficiency,omitempty" json:"fuelEfficiency,omitempty" mapstructure:"fuelEfficiency"`
	FuelPrice         *float64            `yaml:"fuelPrice,omitempty" json:"fuelPrice,omitempty" mapstructure:"fuelPrice"`
	FuelPreset        string              `yaml:"fuelPreset,omitempty" json:"fuelPreset,omitempty" mapstructure:"fuelPreset"`
	FuelUnits         string              `yaml:"fuelUnits,omitempty" json:"fuelUnits,omitempty" mapstructure:"fuelUnits"`
	Insurance         *float64            `yaml:"insurance,omitempty" json:"insurance,omitempty"`
	Maintenance       *float64            `yaml:"maintenance,omitempty" json:"maintenance,omitempty"`
	Inflation         *float64            `yaml:"inflation,omitempty" json:"inflation,omitempty"`
	MaintenancePolicy string              `yaml:"maintenancePolicy,omitempty" json:"maintenancePolicy,omitempty" mapstructure:"maintenancePolicy"`
	Depreciation      *DepreciationConfig `yaml:"depreciation,omitempty" json:"depreciation,omitempty"`
}

// DepreciationConfig selects the depreciation model. Curve is used by the
// curve model and Rate by the geometric model.
type DepreciationConfig struct {
	Model string    `yaml:"model,omitempty" json:"model,omitempty"`
	Curve []float64 `yaml:"curve,omitempty" json:"curve,omitempty"`
	Rate  float64   `yaml:"rate,omitempty" json:"rate,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// CurrencySymbol returns the configured display symbol or the default.
func (conf *Configuration) CurrencySymbol() string {
	if conf.Output.Currency == "" {
		return constants.DefaultCurrencySymbol
	}
	return conf.Output.Currency
}

// Catalog returns the vehicle catalog named by the presets section, or the
// built-in catalog.
func (conf *Configuration) Catalog() (*presets.Catalog, error) {
	if conf.Presets.File != "" {
		return presets.Load(conf.Presets.File)
	}
	return presets.Default()
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Problems that would stop a forecast are reported here as
// warnings too; GetForecast returns them as errors.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if conf.Output.Format != "" {
		if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	catalog, err := conf.Catalog()
	if err != nil {
		return append(warnings, fmt.Sprintf("presets: %v", err))
	}

	active := 0
	seen := make(map[string]bool)
	for _, scenario := range conf.Scenarios {
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("scenario name %q is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		if !scenario.Active {
			continue
		}
		active++

		params, _, err := conf.ScenarioParameters(scenario, catalog)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("scenario %q: %v", scenario.Name, err))
			continue
		}
		for _, warning := range validation.ValidateParameters(params) {
			warnings = append(warnings, fmt.Sprintf("scenario %q: %s", scenario.Name, warning))
		}
		if scenario.Optimizer != nil {
			if err := scenario.Optimizer.Validate(); err != nil {
				warnings = append(warnings, fmt.Sprintf("scenario %q: %v", scenario.Name, err))
			}
		}
	}

	if active == 0 {
		warnings = append(warnings, "no active scenarios; nothing will be projected")
	}

	return warnings
}
