package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageItem(t *testing.T) {
	it := NewPageItem(3, 1, 2, 612, 792)

	assert.Equal(t, 3, it.Index)
	assert.Equal(t, ItemPage, it.Kind)
	assert.Equal(t, 1, it.Source.Document)
	assert.Equal(t, 2, it.Source.Page)
	assert.InDelta(t, 612.0/792.0, it.AspectRatio, 1e-12)
	assert.Len(t, it.ID, 8)
}

func TestNewPageItemZeroHeightIsSquare(t *testing.T) {
	it := NewPageItem(0, 0, 0, 100, 0)
	assert.Equal(t, 1.0, it.AspectRatio)
}

func TestNewBinItem(t *testing.T) {
	it := NewBinItem(7, "/tmp/a.png", 1500, 1000)

	assert.Equal(t, ItemBin, it.Kind)
	assert.Equal(t, "/tmp/a.png", it.Source.Path)
	assert.Equal(t, 1500, it.WidthPx)
	assert.Equal(t, 1000, it.HeightPx)
	assert.InDelta(t, 1.5, it.AspectRatio, 1e-12)
}

func TestItemSizeAt(t *testing.T) {
	it := Item{AspectRatio: 0.75}
	w, h := it.SizeAt(4)
	assert.Equal(t, 3.0, w)
	assert.Equal(t, 4.0, h)
}

func TestRecenterIsPure(t *testing.T) {
	original := []Placement{
		{ItemIndex: 0, X: 10, Y: 20, Width: 2, Height: 3},
		{ItemIndex: 1, X: -5, Y: 4, Width: 2, Height: 3},
	}

	moved := Recenter(original, 10, 10)

	require.Len(t, moved, 2)
	assert.Equal(t, 0.0, moved[0].X)
	assert.Equal(t, 10.0, moved[0].Y)
	assert.Equal(t, -15.0, moved[1].X)
	assert.Equal(t, -6.0, moved[1].Y)

	// The input must not change
	assert.Equal(t, 10.0, original[0].X)
	assert.Equal(t, 20.0, original[0].Y)
	assert.Equal(t, -5.0, original[1].X)
}

func TestPackingResultCounts(t *testing.T) {
	r := PackingResult{
		Requested:  5,
		Placements: []Placement{{Width: 2, Height: 2}, {Width: 1, Height: 3}},
		Failed:     []FailedItem{{ItemIndex: 4}},
	}

	assert.Equal(t, 2, r.Placed())
	assert.Equal(t, 3, r.Shortfall())
	assert.False(t, r.Complete())
	assert.Equal(t, 7.0, r.UsedArea())

	r.Requested = 2
	assert.True(t, r.Complete())
}

func TestPlacementCorners(t *testing.T) {
	p := Placement{X: 5, Y: 5, Width: 4, Height: 2}
	minX, minY, maxX, maxY := p.Corners()
	assert.Equal(t, 3.0, minX)
	assert.Equal(t, 4.0, minY)
	assert.Equal(t, 7.0, maxX)
	assert.Equal(t, 6.0, maxY)
}

func TestParseEnums(t *testing.T) {
	o, err := ParseOrientation(" Tangent ")
	require.NoError(t, err)
	assert.Equal(t, OrientationTangent, o)

	_, err = ParseOrientation("diagonal")
	assert.Error(t, err)

	s, err := ParseEnvelopeShape("ELLIPSE")
	require.NoError(t, err)
	assert.Equal(t, EnvelopeEllipse, s)

	_, err = ParseEnvelopeShape("hexagon")
	assert.Error(t, err)

	a, err := ParseAlgorithm("PixelGrid")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmPixelGrid, a)
}

func TestDefaultSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())

	s.NominalHeight = 0
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.MaxHeight = 0.5
	assert.Error(t, s.Validate(), "max height below min height must fail")

	s = DefaultSettings()
	s.Orientation = "sideways"
	assert.Error(t, s.Validate())
}

func TestUnitConversions(t *testing.T) {
	assert.Equal(t, 1200, MMToPx(25.4, 1200))
	assert.Equal(t, 300, MMToPx(25.4, 300))
	assert.InDelta(t, 25.4, PxToMM(300, 300), 1e-12)
	assert.InDelta(t, 72.0, MMToPt(25.4), 1e-12)
	assert.InDelta(t, 25.4, PtToMM(72), 1e-12)
	assert.InDelta(t, 10.0, PtToMM(MMToPt(10)), 1e-12)
}

func TestRoundUpTo(t *testing.T) {
	assert.Equal(t, 15.0, RoundUpTo(12, 5))
	assert.Equal(t, 15.0, RoundUpTo(15, 5))
	assert.Equal(t, 20.0, RoundUpTo(15.01, 5))
	assert.Equal(t, 12.3, RoundUpTo(12.3, 0))
	assert.False(t, math.IsNaN(RoundUpTo(0, 5)))
}
