package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/tidwall/rtree"
)

// CirclePackingEfficiency is the share of a circle assumed usable by
// rectangular bins.
const CirclePackingEfficiency = 0.85

// CircleRadius returns the radius whose area holds n bins of w x h at
// CirclePackingEfficiency.
func CircleRadius(n int, w, h float64) float64 {
	if n <= 0 {
		return 0
	}
	return math.Sqrt(float64(n) * w * h / CirclePackingEfficiency / math.Pi)
}

// spiral yields the centre once and then positions ring by ring around the
// origin until the radius passes limit.
type spiral struct {
	angle, radius float64
	angleStep     float64
	radialStep    float64
	limit         float64
	centreDone    bool
}

func (s *spiral) next() (x, y float64, ok bool) {
	if !s.centreDone {
		s.centreDone = true
		return 0, 0, true
	}
	if s.radius > s.limit {
		return 0, 0, false
	}
	x, y = s.radius*math.Cos(s.angle), s.radius*math.Sin(s.angle)
	s.angle += s.angleStep
	if s.angle >= 2*math.Pi-1e-12 {
		s.angle = 0
		s.radius += s.radialStep
	}
	return x, y, true
}

// CircularPack places bins at the centre first and then along a spiral
// outward from it. A position is taken when the bin's far corner stays
// inside the packing circle and the bin does not overlap one already
// placed. The spiral is shared by all bins, so a position rejected once is
// never revisited. A bin that finds no room before the spiral reaches twice
// the radius is listed in Failed.
//
// Placement centres are in canvas pixels with the origin at the top-left.
func CircularPack(items []model.Item, binW, binH float64) model.PackingResult {
	n := len(items)
	r := CircleRadius(n, binW, binH)
	margin := 0.1 * math.Max(binW, binH)
	side := 2*r + 2*margin
	result := model.PackingResult{
		Algorithm:    model.AlgorithmCircular,
		Radius:       r,
		CanvasWidth:  side,
		CanvasHeight: side,
		Requested:    n,
	}
	if n == 0 || binW <= 0 || binH <= 0 {
		return result
	}

	sp := &spiral{
		radius:     0.8 * math.Max(binW, binH),
		angleStep:  2 * math.Pi / math.Max(8, math.Round(math.Sqrt(float64(n)))),
		radialStep: 0.8 * math.Max(binW, binH),
		limit:      2 * r,
	}
	var tree rtree.RTreeG[int]
	fits := func(x, y float64) bool {
		if math.Hypot(math.Abs(x)+binW/2, math.Abs(y)+binH/2) > r {
			return false
		}
		return !collides(&tree, boxAt(x, y, binW, binH).Pad(-overlapTolerance))
	}

	result.Placements = make([]model.Placement, 0, n)
	for _, it := range items {
		placed := false
		for x, y, ok := sp.next(); ok; x, y, ok = sp.next() {
			if !fits(x, y) {
				continue
			}
			b := boxAt(x, y, binW, binH)
			tree.Insert(b.Min, b.Max, it.Index)
			result.Placements = append(result.Placements, placementFor(it, x+side/2, y+side/2, binW, binH, 0))
			placed = true
			break
		}
		if !placed {
			result.Failed = append(result.Failed, model.FailedItem{
				ItemIndex: it.Index,
				ItemID:    it.ID,
				Reason:    fmt.Sprintf("spiral passed %.0f px without room inside radius %.0f", sp.limit, r),
			})
		}
	}
	result.Utilization = utilization(result.Placements, math.Pi*r*r)
	return result
}

// EllipsePack packs a circle and stretches it horizontally by aspect.
func EllipsePack(items []model.Item, binW, binH, aspect float64) model.PackingResult {
	result := CircularPack(items, binW, binH)
	if aspect <= 0 || aspect == 1 {
		return result
	}
	// Scaling about the canvas centre and moving that centre to the centre of
	// the wider canvas is a plain multiply.
	placements := make([]model.Placement, len(result.Placements))
	for i, p := range result.Placements {
		p.X *= aspect
		placements[i] = p
	}
	result.Placements = placements
	result.CanvasWidth *= aspect
	result.Utilization = utilization(result.Placements, math.Pi*result.Radius*result.Radius*aspect)
	return result
}
