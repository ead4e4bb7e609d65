package engine

import (
	"math"

	"github.com/piwi3910/nanofiche/internal/model"
)

// Readable height band for a lone item when heights are solved from the
// region. A product policy, not a derived bound.
const (
	SingleItemMinHeight = 25.0
	SingleItemMaxHeight = 40.0
)

// packingInflation is the area overhead assumed for imperfect packing of n
// items.
func packingInflation(n int) float64 {
	switch {
	case n < 500:
		return 1.1
	case n < 1000:
		return 1.2
	default:
		return 1.3
	}
}

// SolveNominalHeight returns the item height at which the items plus their
// gaps roughly fill area. Each item of aspect a at height h is charged
// (a*h+gap)*(h+gap), so the total is a quadratic in h:
//
//	Σa·h² + gap·(Σa + n)·h + n·gap² = area / inflation
//
// The positive root is clamped to [minHeight, maxHeight]. A single item is
// held to the readable band instead so it is not blown up to region size.
func SolveNominalHeight(items []model.Item, area, nominal, gap, minHeight, maxHeight float64) float64 {
	n := len(items)
	if n == 0 || area <= 0 {
		return nominal
	}
	if n == 1 {
		return math.Min(SingleItemMaxHeight, math.Max(SingleItemMinHeight, nominal))
	}

	var sumAspect float64
	for _, it := range items {
		sumAspect += it.AspectRatio
	}
	fn := float64(n)
	a := sumAspect
	b := gap * (sumAspect + fn)
	c := fn*gap*gap - area/packingInflation(n)
	if a <= 0 {
		return nominal
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return minHeight
	}
	h := (-b + math.Sqrt(disc)) / (2 * a)
	return math.Max(minHeight, math.Min(maxHeight, h))
}
