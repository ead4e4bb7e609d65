package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/tidwall/rtree"
)

// Overlap is a pair of placements whose gap-expanded boxes intersect.
// Width and Height are the size of the shared area.
type Overlap struct {
	First  int // Item index of the earlier placement
	Second int // Item index of the later placement
	Width  float64
	Height float64
}

// overlapTolerance ignores shared edges produced by rounding.
const overlapTolerance = 1e-9

// CheckOverlaps audits a result for placements that crowd each other. Each
// box is grown by gap/2 on every side and rotation is ignored, so the check
// is exact for upright layouts and conservative otherwise. Boxes that only
// touch are not reported.
func CheckOverlaps(result model.PackingResult, gap float64) []Overlap {
	half := gap / 2
	var tree rtree.RTreeG[int]
	boxes := make([][4]float64, len(result.Placements))
	for i, p := range result.Placements {
		minX, minY, maxX, maxY := p.Corners()
		boxes[i] = [4]float64{minX - half, minY - half, maxX + half, maxY + half}
		tree.Insert([2]float64{boxes[i][0], boxes[i][1]}, [2]float64{boxes[i][2], boxes[i][3]}, i)
	}

	var overlaps []Overlap
	for i, b := range boxes {
		tree.Search([2]float64{b[0], b[1]}, [2]float64{b[2], b[3]}, func(min, max [2]float64, j int) bool {
			if j <= i {
				return true
			}
			w := math.Min(b[2], max[0]) - math.Max(b[0], min[0])
			h := math.Min(b[3], max[1]) - math.Max(b[1], min[1])
			if w > overlapTolerance && h > overlapTolerance {
				overlaps = append(overlaps, Overlap{
					First:  result.Placements[i].ItemIndex,
					Second: result.Placements[j].ItemIndex,
					Width:  w,
					Height: h,
				})
			}
			return true
		})
	}
	return deduplicateOverlaps(overlaps)
}

// deduplicateOverlaps keeps one entry per item pair, ordered by item index.
func deduplicateOverlaps(overlaps []Overlap) []Overlap {
	type key struct{ a, b int }
	seen := make(map[key]bool)
	var result []Overlap
	for _, o := range overlaps {
		if o.First > o.Second {
			o.First, o.Second = o.Second, o.First
		}
		k := key{o.First, o.Second}
		if !seen[k] {
			seen[k] = true
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].First != result[j].First {
			return result[i].First < result[j].First
		}
		return result[i].Second < result[j].Second
	})
	return result
}

// FormatOverlapWarnings produces human-readable warning messages from overlap data.
func FormatOverlapWarnings(overlaps []Overlap) []string {
	var warnings []string
	for _, o := range overlaps {
		warnings = append(warnings, fmt.Sprintf(
			"Item %d overlaps item %d by %.2f x %.2f",
			o.First+1, o.Second+1, o.Width, o.Height,
		))
	}
	return warnings
}
