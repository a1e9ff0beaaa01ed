// Package presets provides the static vehicle and fuel price lookup data
// used to fill in projection parameters by vehicle name.
package presets

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hjson/hjson-go/v4"
	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
)

//go:embed catalog.hjson
var builtinCatalog []byte

// ErrNotFound is returned when a brand, model, or fuel preset is unknown.
var ErrNotFound = errors.New("preset not found")

// Vehicle holds the default parameters for one make and model.
type Vehicle struct {
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	Price          float64   `json:"price"`
	FuelEfficiency float64   `json:"fuelEfficiency"`
	Insurance      float64   `json:"insurance"`
	Maintenance    float64   `json:"maintenance"`
	Depreciation   []float64 `json:"depreciation"`
}

// Name is the flat "Brand Model" form of the vehicle.
func (v Vehicle) Name() string {
	return v.Brand + " " + v.Model
}

// Apply returns params with the vehicle's price, efficiency, insurance,
// maintenance, and depreciation curve filled in.
func (v Vehicle) Apply(params projection.Parameters) projection.Parameters {
	params.Price = v.Price
	params.FuelEfficiency = v.FuelEfficiency
	params.BaseInsurance = v.Insurance
	params.BaseMaintenance = v.Maintenance
	params.DepreciationCurve = append([]float64(nil), v.Depreciation...)
	return params
}

// Catalog is a read-only set of vehicle and fuel presets. Lookups are case
// insensitive.
type Catalog struct {
	vehicles   map[string]map[string]Vehicle
	brandNames map[string]string
	fuelPrices map[string]float64
}

type catalogFile struct {
	FuelPrices map[string]float64                 `json:"fuelPrices"`
	Brands     map[string]map[string]vehicleEntry `json:"brands"`
}

type vehicleEntry struct {
	Price        float64   `json:"price"`
	Efficiency   float64   `json:"efficiency"`
	Insurance    float64   `json:"insurance"`
	Maintenance  float64   `json:"maintenance"`
	Depreciation []float64 `json:"depreciation"`
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(builtinCatalog)
})

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return loadDefault()
}

// Load reads an hjson catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates an hjson catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := hjson.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse preset catalog: %w", err)
	}

	catalog := &Catalog{
		vehicles:   make(map[string]map[string]Vehicle),
		brandNames: make(map[string]string),
		fuelPrices: make(map[string]float64),
	}

	for name, price := range file.FuelPrices {
		if price < 0 {
			return nil, fmt.Errorf("fuel preset %s: price cannot be negative", name)
		}
		catalog.fuelPrices[key(name)] = price
	}

	for brand, models := range file.Brands {
		brandKey := key(brand)
		if _, dup := catalog.brandNames[brandKey]; dup {
			return nil, fmt.Errorf("brand %s is listed more than once", brand)
		}
		catalog.brandNames[brandKey] = brand
		catalog.vehicles[brandKey] = make(map[string]Vehicle)
		for model, entry := range models {
			vehicle := Vehicle{
				Brand:          brand,
				Model:          model,
				Price:          entry.Price,
				FuelEfficiency: entry.Efficiency,
				Insurance:      entry.Insurance,
				Maintenance:    entry.Maintenance,
				Depreciation:   entry.Depreciation,
			}
			if err := vehicle.validate(); err != nil {
				return nil, err
			}
			catalog.vehicles[brandKey][key(model)] = vehicle
		}
	}

	return catalog, nil
}

func (v Vehicle) validate() error {
	if v.Price <= 0 {
		return fmt.Errorf("preset %s: price must be positive", v.Name())
	}
	if v.FuelEfficiency <= 0 {
		return fmt.Errorf("preset %s: efficiency must be positive", v.Name())
	}
	if v.Insurance < 0 || v.Maintenance < 0 {
		return fmt.Errorf("preset %s: insurance and maintenance cannot be negative", v.Name())
	}
	if len(v.Depreciation) > constants.MaxHorizonYears {
		return fmt.Errorf("preset %s: depreciation curve has %d entries, at most %d allowed",
			v.Name(), len(v.Depreciation), constants.MaxHorizonYears)
	}
	for i, rate := range v.Depreciation {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("preset %s: year %d depreciation %.2f outside [0,1]", v.Name(), i+1, rate)
		}
	}
	return nil
}

// Brands lists brand names in alphabetical order.
func (c *Catalog) Brands() []string {
	brands := make([]string, 0, len(c.brandNames))
	for _, name := range c.brandNames {
		brands = append(brands, name)
	}
	sort.Strings(brands)
	return brands
}

// Models lists a brand's models in alphabetical order.
func (c *Catalog) Models(brand string) ([]string, error) {
	models, ok := c.vehicles[key(brand)]
	if !ok {
		return nil, fmt.Errorf("brand %q: %w", brand, ErrNotFound)
	}
	names := make([]string, 0, len(models))
	for _, vehicle := range models {
		names = append(names, vehicle.Model)
	}
	sort.Strings(names)
	return names, nil
}

// Vehicles lists every vehicle ordered by brand then model.
func (c *Catalog) Vehicles() []Vehicle {
	var vehicles []Vehicle
	for _, brand := range c.Brands() {
		models, _ := c.Models(brand)
		for _, model := range models {
			vehicles = append(vehicles, c.vehicles[key(brand)][key(model)])
		}
	}
	return vehicles
}

// Lookup finds a vehicle by brand and model.
func (c *Catalog) Lookup(brand, model string) (Vehicle, error) {
	models, ok := c.vehicles[key(brand)]
	if !ok {
		return Vehicle{}, fmt.Errorf("brand %q: %w", brand, ErrNotFound)
	}
	vehicle, ok := models[key(model)]
	if !ok {
		return Vehicle{}, fmt.Errorf("model %q of brand %q: %w", model, brand, ErrNotFound)
	}
	return vehicle, nil
}

// LookupName finds a vehicle by its flat name, either "Brand Model" or a
// model name that only one brand carries.
func (c *Catalog) LookupName(name string) (Vehicle, error) {
	wanted := key(name)
	var modelMatches []Vehicle
	for _, vehicle := range c.Vehicles() {
		if key(vehicle.Name()) == wanted {
			return vehicle, nil
		}
		if key(vehicle.Model) == wanted {
			modelMatches = append(modelMatches, vehicle)
		}
	}
	switch len(modelMatches) {
	case 0:
		return Vehicle{}, fmt.Errorf("vehicle %q: %w", name, ErrNotFound)
	case 1:
		return modelMatches[0], nil
	}
	return Vehicle{}, fmt.Errorf("vehicle %q is ambiguous, qualify it with a brand", name)
}

// FuelPrice returns a named fuel price such as "petrol".
func (c *Catalog) FuelPrice(name string) (float64, error) {
	price, ok := c.fuelPrices[key(name)]
	if !ok {
		return 0, fmt.Errorf("fuel %q: %w", name, ErrNotFound)
	}
	return price, nil
}

// FuelPrices returns a copy of all named fuel prices.
func (c *Catalog) FuelPrices() map[string]float64 {
	prices := make(map[string]float64, len(c.fuelPrices))
	for name, price := range c.fuelPrices {
		prices[name] = price
	}
	return prices
}

func key(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
