package model

import "math"

const (
	MMPerInch = 25.4
	PtPerInch = 72.0
)

// MMToPx converts millimetres to whole pixels at the given resolution.
func MMToPx(mm float64, dpi int) int {
	return int(math.Round(mm / MMPerInch * float64(dpi)))
}

// PxToMM converts pixels to millimetres at the given resolution.
func PxToMM(px int, dpi int) float64 {
	return float64(px) * MMPerInch / float64(dpi)
}

func MMToPt(mm float64) float64 {
	return mm * PtPerInch / MMPerInch
}

func PtToMM(pt float64) float64 {
	return pt * MMPerInch / PtPerInch
}

// RoundUpTo rounds v up to the next multiple of bin. Values already on a
// multiple (within 1e-9) are kept. A non-positive bin returns v unchanged.
func RoundUpTo(v, bin float64) float64 {
	if bin <= 0 {
		return v
	}
	return math.Ceil(v/bin-1e-9) * bin
}
