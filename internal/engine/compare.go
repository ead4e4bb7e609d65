package engine

import (
	"fmt"

	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PackSettings
}

// ComparisonResult holds the packing result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario    ComparisonScenario
	Result      model.PackingResult
	Placed      int
	FailedCount int
	Utilization float64
	Overlaps    int
	Err         error
}

// CompareStrategies packs the same items into the same region once per
// scenario and returns the results in scenario order. This enables
// side-by-side comparison of algorithms, gaps, flexibility and so on.
func CompareStrategies(scenarios []ComparisonScenario, items []model.Item, region *geometry.Region) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := New(scenario.Settings).Pack(items, region)
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		results = append(results, ComparisonResult{
			Scenario:    scenario,
			Result:      result,
			Placed:      result.Placed(),
			FailedCount: result.Requested - result.Placed(),
			Utilization: result.Utilization,
			Overlaps:    len(CheckOverlaps(result, scenario.Settings.Gap)),
		})
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(baseSettings model.PackSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// Scenario: every other region algorithm
	for _, algo := range model.RegionAlgorithms {
		if algo == baseSettings.Algorithm {
			continue
		}
		alt := baseSettings
		alt.Algorithm = algo
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("%s algorithm", algo),
			Settings: alt,
		})
	}

	// Scenario: half the gap
	if baseSettings.Gap > 0 {
		tight := baseSettings
		tight.Gap = baseSettings.Gap * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Gap %.2fmm (half)", tight.Gap),
			Settings: tight,
		})
	}

	// Scenario: no size flexibility
	if baseSettings.Flexibility > 0 && baseSettings.Algorithm == model.AlgorithmOptimized {
		rigid := baseSettings
		rigid.Flexibility = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Fixed Item Size",
			Settings: rigid,
		})
	}

	// Scenario: height solved from the region area
	if !baseSettings.OptimizeDPI {
		solved := baseSettings
		solved.OptimizeDPI = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Solved Item Height",
			Settings: solved,
		})
	}

	return scenarios
}
