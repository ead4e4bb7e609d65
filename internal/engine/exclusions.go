package engine

import (
	"math"

	"github.com/paulmach/orb/planar"
	"github.com/piwi3910/nanofiche/internal/geometry"
)

// ExclusionLayout describes where keep-out areas sit inside the outer
// boundary.
type ExclusionLayout string

const (
	ExclusionsNone        ExclusionLayout = "none"
	ExclusionsCentral     ExclusionLayout = "central"     // One exclusion near the centre
	ExclusionsOffset      ExclusionLayout = "offset"      // One exclusion away from the centre
	ExclusionsDistributed ExclusionLayout = "distributed" // Several exclusions
)

// ExclusionAnalysis summarizes the exclusions of a region.
type ExclusionAnalysis struct {
	Layout          ExclusionLayout
	Count           int
	ConstraintRatio float64 // Summed exclusion area / outer area
	AvailableRatio  float64 // Region area / outer area
}

// centralTolerance is the largest centre offset, as a fraction of the outer
// width or height, for an exclusion to count as central.
const centralTolerance = 0.1

// AnalyzeExclusions classifies the exclusion layout of region.
func AnalyzeExclusions(region *geometry.Region) ExclusionAnalysis {
	groups := region.ExclusionGroups()
	a := ExclusionAnalysis{
		Layout: ExclusionsNone,
		Count:  len(groups),
	}
	if outer := region.OuterArea(); outer > 0 {
		var excluded float64
		for _, g := range groups {
			excluded += planar.Area(g)
		}
		a.ConstraintRatio = excluded / outer
		a.AvailableRatio = region.Area() / outer
	}

	switch len(groups) {
	case 0:
		return a
	case 1:
		ob := region.Bound()
		oc, ec := ob.Center(), groups[0].Bound().Center()
		w, h := ob.Max[0]-ob.Min[0], ob.Max[1]-ob.Min[1]
		if math.Abs(ec[0]-oc[0]) <= centralTolerance*w && math.Abs(ec[1]-oc[1]) <= centralTolerance*h {
			a.Layout = ExclusionsCentral
		} else {
			a.Layout = ExclusionsOffset
		}
	default:
		a.Layout = ExclusionsDistributed
	}
	return a
}
