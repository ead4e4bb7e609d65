package engine

import (
	"testing"

	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSquares(secondX float64) model.PackingResult {
	return model.PackingResult{
		Placements: []model.Placement{
			{ItemIndex: 0, X: 5, Y: 5, Width: 10, Height: 10},
			{ItemIndex: 1, X: secondX, Y: 5, Width: 10, Height: 10},
		},
		Requested: 2,
	}
}

func TestCheckOverlaps_TouchingIsFine(t *testing.T) {
	assert.Empty(t, CheckOverlaps(twoSquares(15), 0))
}

func TestCheckOverlaps_GapCounts(t *testing.T) {
	overlaps := CheckOverlaps(twoSquares(15), 2)
	require.Len(t, overlaps, 1)
	assert.Equal(t, 0, overlaps[0].First)
	assert.Equal(t, 1, overlaps[0].Second)
	assert.InDelta(t, 2.0, overlaps[0].Width, 1e-9)
	assert.InDelta(t, 12.0, overlaps[0].Height, 1e-9)

	warnings := FormatOverlapWarnings(overlaps)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Item 1 overlaps item 2 by 2.00 x 12.00", warnings[0])
}

func TestCheckOverlaps_ReportsEachPairOnce(t *testing.T) {
	result := model.PackingResult{
		Placements: []model.Placement{
			{ItemIndex: 2, X: 0, Y: 0, Width: 10, Height: 10},
			{ItemIndex: 0, X: 1, Y: 0, Width: 10, Height: 10},
			{ItemIndex: 1, X: 2, Y: 0, Width: 10, Height: 10},
		},
	}
	overlaps := CheckOverlaps(result, 0)
	require.Len(t, overlaps, 3)
	assert.Equal(t, Overlap{First: 0, Second: 1, Width: 9, Height: 10}, overlaps[0])
	assert.Equal(t, 0, overlaps[1].First)
	assert.Equal(t, 2, overlaps[1].Second)
	assert.Equal(t, 1, overlaps[2].First)
	assert.Equal(t, 2, overlaps[2].Second)
}

func TestCompareStrategies(t *testing.T) {
	region := buildRegion(t, geometry.Rectangle(60, 60))
	base := defaultTestSettings()
	grid := base
	grid.Algorithm = model.AlgorithmGrid

	results := CompareStrategies([]ComparisonScenario{
		{Name: "streamline", Settings: base},
		{Name: "grid", Settings: grid},
	}, pageItems(10, 1), region)

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "streamline", results[0].Scenario.Name)
	assert.Equal(t, results[0].Result.Placed(), results[0].Placed)
	assert.Equal(t, 10-results[0].Placed, results[0].FailedCount)
	assert.Error(t, results[1].Err, "grid needs fixed-size bins")
}

func TestBuildDefaultScenarios(t *testing.T) {
	base := model.DefaultSettings()
	scenarios := BuildDefaultScenarios(base)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"Current Settings",
		"optimized algorithm",
		"adaptive algorithm",
		"Gap 0.25mm (half)",
		"Solved Item Height",
	}, names)
	assert.Equal(t, base, scenarios[0].Settings)
	assert.Equal(t, model.AlgorithmOptimized, scenarios[1].Settings.Algorithm)
	assert.True(t, scenarios[4].Settings.OptimizeDPI)

	base.Algorithm = model.AlgorithmOptimized
	base.OptimizeDPI = true
	scenarios = BuildDefaultScenarios(base)
	assert.Equal(t, "Fixed Item Size", scenarios[len(scenarios)-1].Name)
}
