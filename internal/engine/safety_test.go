package engine

import (
	"testing"

	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestClampCanvas_Unclamped(t *testing.T) {
	sc := ClampCanvas(100, 50, 300)
	assert.False(t, sc.Clamped)
	assert.Equal(t, 300, sc.DPI)
	assert.Equal(t, 300, sc.RequestedDPI)
	assert.False(t, sc.Exceeds)
	assert.Equal(t, 1181, sc.WidthPx)
	assert.Equal(t, 591, sc.HeightPx)
}

func TestClampCanvas_HugeCanvas(t *testing.T) {
	sc := ClampCanvas(5000, 5000, 2_000_000)

	assert.True(t, sc.Clamped)
	assert.Equal(t, 2_000_000, sc.RequestedDPI)
	assert.Equal(t, 1_363_652, sc.DPI)
	assert.GreaterOrEqual(t, sc.DPI, MinSafeDPI)
	assert.LessOrEqual(t, sc.DPI, sc.RequestedDPI)
	assert.LessOrEqual(t, sc.WidthPx, MaxPixelsPerSide)
	assert.LessOrEqual(t, sc.HeightPx, MaxPixelsPerSide)
}

func TestClampCanvas_FloorAtMinimum(t *testing.T) {
	// So large that even 50 dpi overflows; the floor still wins.
	sc := ClampCanvas(200_000_000, 10, 300)
	assert.True(t, sc.Clamped)
	assert.Equal(t, MinSafeDPI, sc.DPI)
	assert.True(t, sc.Exceeds)
	assert.Greater(t, sc.WidthPx, MaxPixelsPerSide)
}

func TestClampCanvas_ExceedsOnlyPastTheFloor(t *testing.T) {
	assert.False(t, ClampCanvas(100, 50, 300).Exceeds)
	assert.False(t, ClampCanvas(5000, 5000, 2_000_000).Exceeds)

	// 100 km drops to 68 dpi, which still fits.
	sc := ClampCanvas(100_000_000, 10, 300)
	assert.True(t, sc.Clamped)
	assert.Equal(t, 68, sc.DPI)
	assert.False(t, sc.Exceeds)
	assert.LessOrEqual(t, sc.WidthPx, MaxPixelsPerSide)
}

func TestDPIForTargetSize(t *testing.T) {
	// One square inch at 8 bpp and 1 MiB is 1024 x 1024 pixels.
	assert.Equal(t, 1024, DPIForTargetSize(25.4, 25.4, 1, 8))
	assert.Equal(t, MinSafeDPI, DPIForTargetSize(10000, 10000, 1, 24))
	assert.Equal(t, MaxTargetDPI, DPIForTargetSize(1, 1, 1000, 8))
	assert.Equal(t, MinSafeDPI, DPIForTargetSize(0, 10, 10, 8))
}

func TestSolveNominalHeight_SingleItemBand(t *testing.T) {
	one := pageItems(1, 1)
	assert.Equal(t, SingleItemMinHeight, SolveNominalHeight(one, 1e6, 3, 0.5, 1, 50))
	assert.Equal(t, 30.0, SolveNominalHeight(one, 1e6, 30, 0.5, 1, 50))
	assert.Equal(t, SingleItemMaxHeight, SolveNominalHeight(one, 1e6, 100, 0.5, 1, 50))
}

func TestSolveNominalHeight_FillsArea(t *testing.T) {
	// 100 unit squares with no gap: h^2 * 100 = 11000 / 1.1
	assert.InDelta(t, 10.0, SolveNominalHeight(pageItems(100, 1), 11000, 3, 0, 1, 50), 1e-9)

	items := []model.Item{
		model.NewPageItem(0, 0, 0, 100, 100),
		model.NewPageItem(1, 0, 1, 200, 100),
	}
	h := SolveNominalHeight(items, 1000, 3, 1, 1, 50)
	charged := (h+1)*(h+1) + (2*h+1)*(h+1)
	assert.InDelta(t, 1000/1.1, charged, 1e-6)
}

func TestSolveNominalHeight_Clamped(t *testing.T) {
	assert.Equal(t, 50.0, SolveNominalHeight(pageItems(10, 1), 1e9, 3, 0.5, 1, 50))
	assert.Equal(t, 1.0, SolveNominalHeight(pageItems(10, 1), 1, 3, 0.5, 1, 50))
	assert.Equal(t, 3.0, SolveNominalHeight(nil, 1000, 3, 0.5, 1, 50))
}

func TestPackingInflation(t *testing.T) {
	assert.Equal(t, 1.1, packingInflation(499))
	assert.Equal(t, 1.2, packingInflation(500))
	assert.Equal(t, 1.2, packingInflation(999))
	assert.Equal(t, 1.3, packingInflation(1000))
}
