package engine

import (
	"math"

	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
)

// Raster limits enforced before any pixel buffer is allocated.
const (
	MaxPixelsPerSide = 1 << 28 // Largest addressable canvas side in pixels
	MinSafeDPI       = 50      // Lowest resolution a clamp may fall back to
	MaxTargetDPI     = 5000    // Highest resolution DPIForTargetSize returns
)

// SafeCanvas is the pixel size a rasterizer may allocate. Clamped is set when
// DPI had to drop below RequestedDPI to respect MaxPixelsPerSide. Exceeds is
// set when a side is still over the limit at MinSafeDPI; such a canvas must
// not be allocated.
type SafeCanvas struct {
	WidthPx      int  `json:"width_px"`
	HeightPx     int  `json:"height_px"`
	DPI          int  `json:"dpi"`
	RequestedDPI int  `json:"requested_dpi"`
	Clamped      bool `json:"clamped"`
	Exceeds      bool `json:"exceeds"`
}

// ClampCanvas converts a physical canvas size in millimetres to pixels at
// dpi, lowering the resolution when either side would exceed
// MaxPixelsPerSide. The returned DPI is never above the requested one.
func ClampCanvas(widthMM, heightMM float64, dpi int) SafeCanvas {
	sc := SafeCanvas{
		WidthPx:      model.MMToPx(widthMM, dpi),
		HeightPx:     model.MMToPx(heightMM, dpi),
		DPI:          dpi,
		RequestedDPI: dpi,
	}
	if sc.WidthPx <= MaxPixelsPerSide && sc.HeightPx <= MaxPixelsPerSide {
		return sc
	}

	maxMM := math.Max(widthMM, heightMM)
	safe := int(MaxPixelsPerSide * model.MMPerInch / maxMM)
	if safe < MinSafeDPI {
		safe = MinSafeDPI
	}
	if safe > dpi {
		safe = dpi
	}
	sc.DPI = safe
	sc.WidthPx = model.MMToPx(widthMM, safe)
	sc.HeightPx = model.MMToPx(heightMM, safe)
	sc.Clamped = true
	sc.Exceeds = sc.WidthPx > MaxPixelsPerSide || sc.HeightPx > MaxPixelsPerSide
	return sc
}

// DPIForTargetSize solves the resolution at which an uncompressed raster of
// the given physical size takes roughly targetMB megabytes at bitsPerPixel.
// The result is limited to MaxTargetDPI and the pixel ceiling, floor
// MinSafeDPI.
func DPIForTargetSize(widthMM, heightMM, targetMB float64, bitsPerPixel int) int {
	if widthMM <= 0 || heightMM <= 0 || bitsPerPixel <= 0 {
		return MinSafeDPI
	}
	bytes := math.Max(1, targetMB) * 1024 * 1024
	pixels := bytes * 8 / float64(bitsPerPixel)
	dpi := math.Sqrt(pixels * model.MMPerInch * model.MMPerInch / (widthMM * heightMM))

	limit := math.Min(MaxTargetDPI, MaxPixelsPerSide*model.MMPerInch/math.Max(widthMM, heightMM))
	dpi = math.Min(dpi, limit)
	if dpi < MinSafeDPI {
		return MinSafeDPI
	}
	return int(dpi)
}

// CanvasForRegion returns the canvas size for a region: its bounds plus
// margin on every side, rounded up to a multiple of bin when bin > 0.
func CanvasForRegion(region *geometry.Region, margin, bin float64) (w, h float64) {
	b := region.Bound()
	w = b.Max[0] - b.Min[0] + 2*margin
	h = b.Max[1] - b.Min[1] + 2*margin
	return model.RoundUpTo(w, bin), model.RoundUpTo(h, bin)
}
