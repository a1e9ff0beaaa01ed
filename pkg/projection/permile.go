package projection

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
)

// PerMile is a cost per mile that may be unavailable, which happens when no
// miles are driven. The zero value is unavailable, so it can never be
// mistaken for a genuine zero cost.
type PerMile struct {
	Value     float64
	Available bool
}

// PerMileOf divides cost by miles, or returns an unavailable value when
// miles is not positive.
func PerMileOf(cost, miles float64) PerMile {
	if miles <= 0 {
		return PerMile{}
	}
	return PerMile{Value: cost / miles, Available: true}
}

// Float64 returns the value and whether it is available.
func (m PerMile) Float64() (float64, bool) {
	return m.Value, m.Available
}

// String formats the value to two decimals or returns the placeholder.
func (m PerMile) String() string {
	if !m.Available {
		return constants.UnavailablePlaceholder
	}
	return fmt.Sprintf("%.2f", m.Value)
}

// MarshalJSON encodes an unavailable value as null.
func (m PerMile) MarshalJSON() ([]byte, error) {
	if !m.Available {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes null as unavailable.
func (m *PerMile) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = PerMile{}
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("per-mile value: %w", err)
	}
	*m = PerMile{Value: value, Available: true}
	return nil
}
