// Package optimizer searches scenario fields for the largest value whose
// total cost of ownership stays within a budget.
package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/vehicle-tco/internal/config"
	"github.com/iwvelando/vehicle-tco/internal/forecast"
	"github.com/iwvelando/vehicle-tco/pkg/format"
	"github.com/iwvelando/vehicle-tco/pkg/mathutil"
	"github.com/iwvelando/vehicle-tco/pkg/optimization"
	"github.com/iwvelando/vehicle-tco/pkg/presets"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
	"go.uber.org/zap"
)

type Runner struct {
	logger  *zap.Logger
	conf    *config.Configuration
	catalog *presets.Catalog
}

type scenarioTarget struct {
	scenarioIndex int
	scenarioName  string
	cfg           config.OptimizerConfig
	params        projection.Parameters
	original      float64
}

type evaluation struct {
	value  float64
	tco    float64
	budget float64
}

func (e evaluation) feasible() bool {
	return e.tco <= e.budget
}

func (e evaluation) headroom() float64 {
	return e.budget - e.tco
}

// Result summarizes optimizer adjustments keyed by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any optimizer adjustments were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches optimizer summaries to the provided forecast results.
func (r Result) Apply(forecasts []forecast.Forecast) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range forecasts {
		summaries, ok := r.Summaries[forecasts[i].Name]
		if !ok {
			continue
		}
		metrics := forecasts[i].Metrics
		metrics.Optimizations = append(metrics.Optimizations, summaries...)
		forecasts[i].Metrics = metrics
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := conf.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}

	return &Runner{logger: logger, conf: conf, catalog: catalog}, nil
}

// Run executes all optimizer directives and mutates the configuration in
// place, so a forecast computed afterwards projects the optimized values.
func (r *Runner) Run() (*Result, error) {
	targets, err := r.collectTargets()
	if err != nil {
		return nil, err
	}

	summaries := make(map[string][]optimization.Summary)
	for _, target := range targets {
		summary := r.optimize(target)
		r.setScenarioValue(target, summary.Value)
		summaries[target.scenarioName] = append(summaries[target.scenarioName], summary)

		r.logger.Info("optimizer adjusted scenario field",
			zap.String("op", "optimizer.Run"),
			zap.String("scenario", target.scenarioName),
			zap.String("field", target.cfg.Field),
			zap.Float64("originalNumeric", summary.Original),
			zap.Float64("optimizedNumeric", summary.Value),
			zap.Float64("budget", summary.Budget),
			zap.Float64("tco", summary.TotalCost),
			zap.Float64("headroom", summary.Headroom),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) collectTargets() ([]scenarioTarget, error) {
	var targets []scenarioTarget

	for i := range r.conf.Scenarios {
		scenario := &r.conf.Scenarios[i]
		if !scenario.Active || scenario.Optimizer == nil {
			continue
		}
		if err := scenario.Optimizer.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		params, _, err := r.conf.ScenarioParameters(*scenario, r.catalog)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		cfg := *scenario.Optimizer
		targets = append(targets, scenarioTarget{
			scenarioIndex: i,
			scenarioName:  scenario.Name,
			cfg:           cfg,
			params:        params,
			original:      fieldValue(params, cfg.Field),
		})
	}

	return targets, nil
}

func (r *Runner) optimize(target scenarioTarget) optimization.Summary {
	cfg := target.cfg
	lower, upper := *cfg.Min, *cfg.Max

	summary := optimization.Summary{
		Scenario:        target.scenarioName,
		Field:           cfg.Field,
		Min:             lower,
		Max:             upper,
		Original:        target.original,
		OriginalDisplay: formatFieldDisplay(cfg.Field, target.original),
		Budget:          cfg.Budget,
	}
	finish := func(eval evaluation, iterations int, converged bool, notes ...string) optimization.Summary {
		summary.Value = eval.value
		summary.ValueDisplay = formatFieldDisplay(cfg.Field, eval.value)
		summary.TotalCost = eval.tco
		summary.Headroom = eval.headroom()
		summary.Iterations = iterations
		summary.Converged = converged
		summary.Notes = notes
		return summary
	}

	lowerEval := evaluate(target, lower)
	if !lowerEval.feasible() {
		note := fmt.Sprintf("unable to keep total cost within %s; the lowest %s of %s already costs %s",
			format.Currency(r.conf.CurrencySymbol(), cfg.Budget),
			cfg.Field,
			formatFieldDisplay(cfg.Field, lower),
			format.Currency(r.conf.CurrencySymbol(), lowerEval.tco),
		)
		return finish(lowerEval, 0, false, note)
	}

	upperEval := evaluate(target, upper)
	if upperEval.feasible() {
		note := fmt.Sprintf("budget allows the upper bound %s", formatFieldDisplay(cfg.Field, upper))
		return finish(upperEval, 0, true, note)
	}

	best := lowerEval
	iterations := 0
	for !mathutil.WithinTolerance(upper, lower, cfg.Tolerance) && iterations < cfg.MaxIterations {
		iterations++
		mid := lower + (upper-lower)/2
		eval := evaluate(target, mid)
		if eval.feasible() {
			lower = mid
			best = eval
		} else {
			upper = mid
		}
	}

	// Round down to whole units so the reported value never exceeds the budget.
	snapped := math.Floor(best.value)
	if snapped >= *cfg.Min {
		if eval := evaluate(target, snapped); eval.feasible() {
			best = eval
		}
	}

	converged := mathutil.WithinTolerance(upper, lower, cfg.Tolerance)
	if !converged {
		return finish(best, iterations, false,
			fmt.Sprintf("stopped after %d iterations before reaching tolerance %.2f", iterations, cfg.Tolerance))
	}
	return finish(best, iterations, true)
}

func evaluate(target scenarioTarget, value float64) evaluation {
	params := withFieldValue(target.params, target.cfg.Field, value)
	return evaluation{
		value:  value,
		tco:    projection.Project(params).Totals.TotalCostOfOwnership,
		budget: target.cfg.Budget,
	}
}

func fieldValue(params projection.Parameters, field string) float64 {
	if field == config.OptimizerFieldAnnualMiles {
		return params.AnnualMiles
	}
	return params.Price
}

func withFieldValue(params projection.Parameters, field string, value float64) projection.Parameters {
	if field == config.OptimizerFieldAnnualMiles {
		params.AnnualMiles = value
	} else {
		params.Price = value
	}
	return params
}

func (r *Runner) setScenarioValue(target scenarioTarget, value float64) {
	scenario := &r.conf.Scenarios[target.scenarioIndex]
	v := value
	if target.cfg.Field == config.OptimizerFieldAnnualMiles {
		scenario.AnnualMiles = &v
	} else {
		scenario.Price = &v
	}
}

func formatFieldDisplay(field string, value float64) string {
	if field == config.OptimizerFieldAnnualMiles {
		return fmt.Sprintf("%.0f miles", value)
	}
	return format.NumericCurrency(value)
}
