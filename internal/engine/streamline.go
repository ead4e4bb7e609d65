package engine

import (
	"github.com/paulmach/orb"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
)

// Streamline places items along inward offset contours of the region in
// input order. Items left over when the contours run out are absent from the
// result; Requested tells the caller how many were asked for.
func (p *Packer) Streamline(items []model.Item, region *geometry.Region, nominal float64) model.PackingResult {
	s := p.Settings
	contours := geometry.OffsetContours(region, s.StreamlineStep, s.MaxContours)
	p.logger().Debug("offset contours", "count", len(contours), "step", s.StreamlineStep)

	placements := planAlongContours(items, contours, nominal, s.Gap, s.Orientation)
	return model.PackingResult{
		Algorithm:     model.AlgorithmStreamline,
		NominalHeight: nominal,
		Placements:    placements,
		Requested:     len(items),
		Utilization:   utilization(placements, region.Area()),
	}
}

// planAlongContours walks the contours in order and hands the Nth unplaced
// item to the Nth anchor. Anchor spacing on each contour is taken from the
// first item still waiting for a place.
func planAlongContours(items []model.Item, contours []geometry.Contour, nominal, gap float64, orientation model.Orientation) []model.Placement {
	placements := make([]model.Placement, 0, len(items))
	next := 0
	for _, c := range contours {
		if next >= len(items) {
			break
		}
		w, _ := items[next].SizeAt(nominal)
		anchors := geometry.ArcLengthAnchors(orb.LineString(c.Ring), w+gap)
		for _, a := range anchors {
			if next >= len(items) {
				break
			}
			it := items[next]
			iw, ih := it.SizeAt(nominal)
			rotation := 0.0
			if orientation == model.OrientationTangent {
				rotation = a.Angle
			}
			placements = append(placements, placementFor(it, a.X, a.Y, iw, ih, rotation))
			next++
		}
	}
	return placements
}
