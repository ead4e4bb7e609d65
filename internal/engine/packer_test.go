package engine

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestSettings() model.PackSettings {
	s := model.DefaultSettings()
	// Keep the optimized runs small for testing
	s.MaxAttempts = 200
	return s
}

func pageItems(n int, aspect float64) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.NewPageItem(i, 0, i, aspect*792, 792)
	}
	return items
}

func buildRegion(t *testing.T, outer orb.MultiPolygon, exclusions ...orb.MultiPolygon) *geometry.Region {
	t.Helper()
	r, err := geometry.Build(outer, exclusions)
	require.NoError(t, err)
	return r
}

func squareContour(level int, x0 float64) geometry.Contour {
	return geometry.Contour{
		Level: level,
		Ring:  orb.Ring{{x0, 0}, {x0 + 5, 0}, {x0 + 5, 5}, {x0, 5}, {x0, 0}},
	}
}

func TestPlanAlongContours_KeepsItemOrder(t *testing.T) {
	// Each 5x5 contour has room for two anchors at spacing 9+1.
	items := pageItems(3, 1)
	contours := []geometry.Contour{squareContour(1, 0), squareContour(2, 10)}

	placements := planAlongContours(items, contours, 9, 1, model.OrientationTangent)
	require.Len(t, placements, 3)

	assert.Equal(t, 0, placements[0].ItemIndex)
	assert.InDelta(t, 5.0, placements[0].X, 1e-9)
	assert.InDelta(t, 0.0, placements[0].Y, 1e-9)
	assert.InDelta(t, 0.0, placements[0].Rotation, 1e-9)

	assert.Equal(t, 1, placements[1].ItemIndex)
	assert.InDelta(t, 0.0, placements[1].X, 1e-9)
	assert.InDelta(t, 5.0, placements[1].Y, 1e-9)
	assert.InDelta(t, 180.0, placements[1].Rotation, 1e-9)

	assert.Equal(t, 2, placements[2].ItemIndex, "third item starts the second contour")
	assert.InDelta(t, 15.0, placements[2].X, 1e-9)
	assert.InDelta(t, 0.0, placements[2].Y, 1e-9)

	for _, p := range placements {
		assert.InDelta(t, 9.0, p.Width, 1e-9)
		assert.InDelta(t, 9.0, p.Height, 1e-9)
	}
}

func TestPlanAlongContours_Upright(t *testing.T) {
	items := pageItems(2, 1)
	placements := planAlongContours(items, []geometry.Contour{squareContour(1, 0)}, 9, 1, model.OrientationUpright)
	require.Len(t, placements, 2)
	for _, p := range placements {
		assert.Equal(t, 0.0, p.Rotation)
	}
}

func TestPlanAlongContours_SpacingFollowsNextItem(t *testing.T) {
	// A wide first item leaves room for a single anchor on the first contour.
	items := []model.Item{
		model.NewPageItem(0, 0, 0, 1900, 100),
		model.NewPageItem(1, 0, 1, 100, 100),
	}
	contours := []geometry.Contour{squareContour(1, 0), squareContour(2, 10)}

	placements := planAlongContours(items, contours, 1, 1, model.OrientationTangent)
	require.Len(t, placements, 2)
	// Spacing 20 puts the only anchor at arc length 10, the second corner.
	assert.InDelta(t, 5.0, placements[0].X, 1e-9)
	assert.InDelta(t, 5.0, placements[0].Y, 1e-9)
	assert.Equal(t, 1, placements[1].ItemIndex)
	assert.InDelta(t, 11.0, placements[1].X, 1e-9)
	assert.InDelta(t, 0.0, placements[1].Y, 1e-9)
}

func TestPack_StreamlineShortfallIsNotAnError(t *testing.T) {
	region := buildRegion(t, geometry.Rectangle(20, 20))
	p := New(defaultTestSettings())

	result, err := p.Pack(pageItems(1000, 0.75), region)
	require.NoError(t, err)

	assert.Equal(t, model.AlgorithmStreamline, result.Algorithm)
	assert.Equal(t, 1000, result.Requested)
	assert.Greater(t, result.Placed(), 0)
	assert.False(t, result.Complete())
	assert.Equal(t, 1000-result.Placed(), result.Shortfall())
	assert.NotEmpty(t, result.RunID)

	for i, pl := range result.Placements {
		assert.Equal(t, i, pl.ItemIndex, "streamline never reorders items")
		assert.True(t, region.Contains(orb.Point{pl.X, pl.Y}), "placement %d centre outside region", i)
	}
}

func TestPack_Recenter(t *testing.T) {
	outer := geometry.Translate(geometry.Rectangle(100, 50), 100, 100)
	region := buildRegion(t, outer)
	items := pageItems(20, 0.75)

	s := defaultTestSettings()
	s.Recenter = false
	plain, err := New(s).Pack(items, region)
	require.NoError(t, err)

	s.Recenter = true
	centred, err := New(s).Pack(items, region)
	require.NoError(t, err)

	assert.InDelta(t, -100.0, centred.OffsetX, 1e-9)
	assert.InDelta(t, -100.0, centred.OffsetY, 1e-9)
	require.Equal(t, plain.Placed(), centred.Placed())
	for i := range plain.Placements {
		assert.InDelta(t, plain.Placements[i].X-100, centred.Placements[i].X, 1e-9)
		assert.InDelta(t, plain.Placements[i].Y-100, centred.Placements[i].Y, 1e-9)
	}
}

func TestPack_CanvasFromRegion(t *testing.T) {
	region := buildRegion(t, geometry.Rectangle(100, 50))
	s := defaultTestSettings()
	s.CanvasMargin = 5
	s.CanvasBin = 25

	result, err := New(s).Pack(pageItems(5, 1), region)
	require.NoError(t, err)
	assert.Equal(t, 125.0, result.CanvasWidth)
	assert.Equal(t, 75.0, result.CanvasHeight)

	w, h := CanvasForRegion(region, 5, 0)
	assert.InDelta(t, 110.0, w, 1e-9)
	assert.InDelta(t, 60.0, h, 1e-9)
}

func TestPack_Errors(t *testing.T) {
	region := buildRegion(t, geometry.Rectangle(10, 10))

	_, err := New(defaultTestSettings()).Pack(pageItems(1, 1), nil)
	assert.Error(t, err)

	s := defaultTestSettings()
	s.Algorithm = model.AlgorithmGrid
	_, err = New(s).Pack(pageItems(1, 1), region)
	assert.Error(t, err, "bin algorithms go through PackBins")

	s = defaultTestSettings()
	s.NominalHeight = 0
	_, err = New(s).Pack(pageItems(1, 1), region)
	assert.Error(t, err)
}

func TestPack_OptimizeDPISolvesHeight(t *testing.T) {
	region := buildRegion(t, geometry.Rectangle(100, 100))
	s := defaultTestSettings()
	s.OptimizeDPI = true
	s.Gap = 0

	result, err := New(s).Pack(pageItems(100, 1), region)
	require.NoError(t, err)
	assert.InDelta(t, SolveNominalHeight(pageItems(100, 1), region.Area(), s.NominalHeight, 0, s.MinHeight, s.MaxHeight),
		result.NominalHeight, 1e-9)
}

func TestPacker_NilLoggerIsSafe(t *testing.T) {
	region := buildRegion(t, geometry.Rectangle(20, 20))
	p := &Packer{Settings: defaultTestSettings()}
	_, err := p.Pack(pageItems(3, 1), region)
	assert.NoError(t, err)
}
