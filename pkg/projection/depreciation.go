package projection

import (
	"strings"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/mathutil"
)

// DepreciationModel produces the per-year fraction of current value lost.
type DepreciationModel interface {
	Name() string
	Curve(years int) []float64
}

// CurveModel uses an explicit rate per year. Years beyond the supplied
// rates lose nothing.
type CurveModel struct {
	Rates []float64
}

// Name identifies the model in configuration and output.
func (m CurveModel) Name() string {
	return constants.DepreciationCurve
}

// Curve returns exactly years rates, each clamped to [0,1].
func (m CurveModel) Curve(years int) []float64 {
	curve := make([]float64, years)
	for i := 0; i < years && i < len(m.Rates); i++ {
		curve[i] = clampRate(m.Rates[i])
	}
	return curve
}

// GeometricModel loses the same fraction of current value every year.
type GeometricModel struct {
	Rate float64
}

// Name identifies the model in configuration and output.
func (m GeometricModel) Name() string {
	return constants.DepreciationGeometric
}

// Curve returns the flat rate repeated for every year.
func (m GeometricModel) Curve(years int) []float64 {
	curve := make([]float64, years)
	rate := clampRate(m.Rate)
	for i := range curve {
		curve[i] = rate
	}
	return curve
}

// ModelFor selects the depreciation model by name. The geometric model uses
// rate, or DefaultGeometricRate when rate is not positive; anything else is
// treated as an explicit curve.
func ModelFor(name string, curve []float64, rate float64) DepreciationModel {
	if strings.EqualFold(strings.TrimSpace(name), constants.DepreciationGeometric) {
		rate = mathutil.Finite(rate)
		if rate <= 0 {
			rate = constants.DefaultGeometricRate
		}
		return GeometricModel{Rate: clampRate(rate)}
	}
	return CurveModel{Rates: curve}
}
