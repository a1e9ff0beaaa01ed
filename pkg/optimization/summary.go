// Package optimization holds the result type of the budget optimizer so the
// output and server packages can report it without importing the runner.
package optimization

// Summary is the outcome of fitting one scenario field to a budget.
//
// Value is the largest whole-unit value of Field in [Min, Max] whose total
// cost of ownership stays within Budget. When no value fits, Value is Min and
// Converged is false.
type Summary struct {
	Scenario   string  `json:"scenario"`
	Field      string  `json:"field"` // price, annualMiles
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Original   float64 `json:"original"`
	Value      float64 `json:"value"`
	Budget     float64 `json:"budget"`
	TotalCost  float64 `json:"totalCost"`
	Headroom   float64 `json:"headroom"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`

	Notes []string `json:"notes,omitempty"`

	OriginalDisplay string `json:"originalDisplay,omitempty"`
	ValueDisplay    string `json:"valueDisplay,omitempty"`
}

// WithinBudget reports whether the optimized value keeps the total cost at or
// under the budget.
func (s Summary) WithinBudget() bool {
	return s.TotalCost <= s.Budget
}
