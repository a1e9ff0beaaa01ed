package integration

import (
	"math"
	"os"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/vehicle-tco/internal/config"
	"github.com/iwvelando/vehicle-tco/internal/forecast"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
	"github.com/iwvelando/vehicle-tco/pkg/testutil"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}

	const iterations = 200
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := forecast.GetForecast(logger, *conf); err != nil {
			t.Fatalf("GetForecast failed on iteration %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)
	avg := elapsed / iterations

	t.Logf("Average forecast time: %v over %d iterations", avg, iterations)
	if avg > 50*time.Millisecond {
		t.Errorf("forecast too slow: average %v", avg)
	}
}

// TestConcurrentProjections checks that Project is deterministic when called
// from many goroutines with shared input.
func TestConcurrentProjections(t *testing.T) {
	params := testutil.CorollaParameters()
	want := projection.Project(params)

	const workers = 16
	const perWorker = 50
	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				got := projection.Project(params)
				if got.Totals.TotalCostOfOwnership != want.Totals.TotalCostOfOwnership {
					errs <- "total cost differs between concurrent projections"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}

	if len(params.DepreciationCurve) != 5 || params.DepreciationCurve[0] != 0.20 {
		t.Error("Project must not mutate its input")
	}
}

// TestMemoryUsage tests memory usage doesn't grow excessively
func TestMemoryUsage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping memory test in short mode")
	}
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	for i := 0; i < 100; i++ {
		if _, err := forecast.GetForecast(logger, *conf); err != nil {
			t.Fatalf("GetForecast failed: %v", err)
		}
	}

	runtime.GC()
	runtime.ReadMemStats(&after)

	growth := int64(after.HeapAlloc) - int64(before.HeapAlloc)
	t.Logf("Heap growth after 100 forecasts: %d bytes", growth)
	if growth > 10*1024*1024 {
		t.Errorf("heap grew by %d bytes", growth)
	}
}

// TestDataConsistency verifies the invariants every projection must satisfy.
func TestDataConsistency(t *testing.T) {
	results, _ := loadForecast(t, false)

	for _, result := range results {
		p := result.Projection
		price := p.Parameters.Price
		var total float64
		for i, year := range p.Years {
			if year.Year != i+1 {
				t.Errorf("%s: year index %d labelled %d", result.Name, i, year.Year)
			}
			if i == 0 && abs(year.StartValue-price) > 1e-9 {
				t.Errorf("%s: first start value %.2f != price %.2f", result.Name, year.StartValue, price)
			}
			if i > 0 && abs(year.StartValue-p.Years[i-1].EndValue) > 1e-9 {
				t.Errorf("%s: year %d does not chain from the previous end value", result.Name, year.Year)
			}
			if abs(year.EndValue-(year.StartValue-year.DepreciationAmount)) > 1e-9 {
				t.Errorf("%s: year %d end value inconsistent", result.Name, year.Year)
			}
			sum := year.DepreciationAmount + year.FuelCost + year.InsuranceCost + year.MaintenanceCost
			if abs(year.TotalCost-sum) > 1e-9 {
				t.Errorf("%s: year %d total %.2f != components %.2f", result.Name, year.Year, year.TotalCost, sum)
			}
			if year.EndValue < 0 || year.EndValue > year.StartValue {
				t.Errorf("%s: year %d end value out of range", result.Name, year.Year)
			}
			total += year.TotalCost
		}
		if abs(total-p.Totals.TotalCostOfOwnership) > 1e-6 {
			t.Errorf("%s: TCO %.2f != sum of years %.2f", result.Name, p.Totals.TotalCostOfOwnership, total)
		}
		if len(p.Years) > 0 && abs(p.Totals.FinalResidualValue-p.Years[len(p.Years)-1].EndValue) > 1e-9 {
			t.Errorf("%s: residual value does not match the last end value", result.Name)
		}
		if depreciation := price - p.Totals.FinalResidualValue; abs(depreciation-p.Totals.Depreciation) > 1e-6 {
			t.Errorf("%s: depreciation total %.2f != price minus residual %.2f", result.Name, p.Totals.Depreciation, depreciation)
		}
	}
}

// TestConfigurationVariations projects edge-case parameter sets that must
// never fail.
func TestConfigurationVariations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*projection.Parameters)
		years  int
	}{
		{"zero horizon means five years", func(p *projection.Parameters) { p.HorizonYears = 0 }, 5},
		{"horizon above range is clamped", func(p *projection.Parameters) { p.HorizonYears = 9 }, 5},
		{"negative horizon is clamped", func(p *projection.Parameters) { p.HorizonYears = -3 }, 1},
		{"zero efficiency", func(p *projection.Parameters) { p.FuelEfficiency = 0 }, 5},
		{"NaN price", func(p *projection.Parameters) { p.Price = math.NaN() }, 5},
		{"short curve", func(p *projection.Parameters) { p.DepreciationCurve = []float64{0.3} }, 5},
		{"negative inflation", func(p *projection.Parameters) { p.InflationRatePct = -5 }, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testutil.CorollaParameters()
			tt.mutate(&params)
			result := projection.Project(params)
			if len(result.Years) != tt.years {
				t.Errorf("years = %d, want %d", len(result.Years), tt.years)
			}
			for _, year := range result.Years {
				for _, v := range []float64{year.StartValue, year.EndValue, year.FuelCost, year.TotalCost} {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						t.Fatalf("year %d has non-finite value", year.Year)
					}
				}
			}
		})
	}
}

func abs(x float64) float64 {
	return math.Abs(x)
}

func BenchmarkProject(b *testing.B) {
	params := testutil.CorollaParameters()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		projection.Project(params)
	}
}
