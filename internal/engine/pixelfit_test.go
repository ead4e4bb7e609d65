package engine

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixelFitSettings() model.PackSettings {
	s := defaultTestSettings()
	s.BinWidth, s.BinHeight, s.BinGap = 100, 100, 10
	s.DPI = 600
	s.Recenter = false
	return s
}

func TestPackPixelGridRegion_ScalesRegionToFitGrid(t *testing.T) {
	outer := geometry.Translate(geometry.Rectangle(100, 50), 60, 45) // (10,20)-(110,70)
	hole := geometry.Translate(geometry.Rectangle(10, 10), 20, 30)

	p := New(pixelFitSettings())
	result, region, err := p.PackPixelGridRegion(binItems(10, 100, 100), outer, []orb.MultiPolygon{hole})
	require.NoError(t, err)
	require.NotNil(t, region)

	pc := RequiredCanvas(10, 100, 100, 10, 2)
	factor := ScaleFactor(100, 50, pc.WidthPx, pc.HeightPx, 600)
	require.NotEqual(t, 1.0, factor)

	rb := region.Bound()
	assert.InDelta(t, 10*factor, rb.Min[0], 1e-9)
	assert.InDelta(t, 70*factor, rb.Max[1], 1e-9)
	assert.InDelta(t, 100*factor, rb.Max[0]-rb.Min[0], 1e-9)
	assert.GreaterOrEqual(t, rb.Max[0]-rb.Min[0], model.PxToMM(pc.WidthPx, 600)-1e-9)
	assert.GreaterOrEqual(t, rb.Max[1]-rb.Min[1], model.PxToMM(pc.HeightPx, 600)-1e-9)

	groups := region.ExclusionGroups()
	require.Len(t, groups, 1)
	hb := groups[0].Bound()
	assert.InDelta(t, 15*factor, hb.Min[0], 1e-9)
	assert.InDelta(t, 35*factor, hb.Max[1], 1e-9)

	assert.Equal(t, model.AlgorithmPixelGrid, result.Algorithm)
	assert.Equal(t, 10, result.Requested)
	require.Len(t, result.Placements, 10)
	assert.Empty(t, CheckOverlaps(result, 0))

	mmPerPx := 25.4 / 600
	first := result.Placements[0]
	assert.InDelta(t, rb.Min[0]+50*mmPerPx, first.X, 1e-9)
	assert.InDelta(t, rb.Max[1]-50*mmPerPx, first.Y, 1e-9)
	assert.InDelta(t, 100*mmPerPx, first.Width, 1e-9)
	for _, pl := range result.Placements {
		minX, minY, maxX, maxY := pl.Corners()
		assert.GreaterOrEqual(t, minX, rb.Min[0]-1e-9)
		assert.GreaterOrEqual(t, minY, rb.Min[1]-1e-9)
		assert.LessOrEqual(t, maxX, rb.Max[0]+1e-9)
		assert.LessOrEqual(t, maxY, rb.Max[1]+1e-9)
	}
	assert.Greater(t, result.Utilization, 0.0)
}

func TestPackPixelGridRegion_Errors(t *testing.T) {
	items := binItems(4, 100, 100)
	outer := geometry.Rectangle(100, 100)

	s := pixelFitSettings()
	s.BinWidth = 0
	_, _, err := New(s).PackPixelGridRegion(items, outer, nil)
	assert.Error(t, err)

	s = pixelFitSettings()
	s.BinGap = -1
	_, _, err = New(s).PackPixelGridRegion(items, outer, nil)
	assert.Error(t, err)

	_, _, err = New(pixelFitSettings()).PackPixelGridRegion(items, nil, nil)
	assert.Error(t, err)
}
