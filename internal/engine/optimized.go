package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/paulmach/orb"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/tidwall/rtree"
)

// sizeScales is the order in which item size variations are tried.
var sizeScales = []float64{1.0, 0.9, 1.1, 0.8, 1.2, 0.7, 1.3}

// maxRandomSamples caps the supplementary random candidates per item size.
const maxRandomSamples = 100

// scalesFor returns the size scales within the flexibility bound.
func scalesFor(flexibility float64) []float64 {
	var out []float64
	for _, s := range sizeScales {
		if math.Abs(s-1) <= flexibility+1e-9 {
			out = append(out, s)
		}
	}
	return out
}

// Optimized places items one at a time at randomly ordered candidate
// centres, rejecting any position whose gap-expanded box touches an earlier
// placement. Items that fit nowhere are listed in Failed.
func (p *Packer) Optimized(items []model.Item, region *geometry.Region, nominal float64) model.PackingResult {
	run := newOptimizedRun(p, region)
	return run.pack(items, nominal, run.flexibility, p.rng())
}

// optimizedRun holds per-region state shared by repeated packs of the same
// region, such as the adaptive size search.
type optimizedRun struct {
	p           *Packer
	region      *geometry.Region
	shape       ShapeInfo
	exclusions  ExclusionAnalysis
	flexibility float64
	attempts    int
	grid        map[[2]float64][]orb.Point
}

func newOptimizedRun(p *Packer, region *geometry.Region) *optimizedRun {
	run := &optimizedRun{
		p:           p,
		region:      region,
		shape:       ClassifyRegion(region),
		exclusions:  AnalyzeExclusions(region),
		flexibility: p.Settings.Flexibility,
		attempts:    p.Settings.MaxAttempts,
		grid:        make(map[[2]float64][]orb.Point),
	}
	if run.exclusions.Layout == ExclusionsCentral {
		run.flexibility *= 1.2
		run.attempts = int(float64(run.attempts) * 1.5)
	} else if _, ok := run.shape.Class.(Complex); ok {
		run.flexibility *= 1.1
	}
	p.logger().Debug("region analysis",
		"shape", run.shape.Class,
		"rectangularity", run.shape.Rectangularity,
		"exclusions", run.exclusions.Layout,
		"flexibility", run.flexibility,
		"attempts", run.attempts)
	return run
}

// gridCandidates scans the region bounds for centres where a w x h box fits.
func (run *optimizedRun) gridCandidates(w, h float64) []orb.Point {
	key := [2]float64{w, h}
	if pts, ok := run.grid[key]; ok {
		return pts
	}
	b := run.region.Bound()
	gap := run.p.Settings.Gap
	mx, my := run.shape.Class.density()
	n := run.shape.Class.samplesPerSide()
	stepX := math.Max(w+gap, (b.Max[0]-b.Min[0])/(n*mx))
	stepY := math.Max(h+gap, (b.Max[1]-b.Min[1])/(n*my))

	var pts []orb.Point
	for y := b.Min[1] + h/2; y <= b.Max[1]-h/2; y += stepY {
		for x := b.Min[0] + w/2; x <= b.Max[0]-w/2; x += stepX {
			if run.region.ContainsRect(boxAt(x, y, w, h)) {
				pts = append(pts, orb.Point{x, y})
			}
		}
	}
	run.grid[key] = pts
	return pts
}

// candidates returns the grid candidates plus random samples inside the
// region for a w x h item.
func (run *optimizedRun) candidates(w, h float64, rng *rand.Rand) []orb.Point {
	grid := run.gridCandidates(w, h)
	out := make([]orb.Point, len(grid), len(grid)+maxRandomSamples*2)
	copy(out, grid)

	samples := len(grid) / 2
	if samples > maxRandomSamples {
		samples = maxRandomSamples
	}
	if _, ok := run.shape.Class.(Complex); ok {
		samples *= 2
	}
	b := run.region.Bound()
	loX, hiX := b.Min[0]+w/2, b.Max[0]-w/2
	loY, hiY := b.Min[1]+h/2, b.Max[1]-h/2
	if hiX < loX || hiY < loY {
		return out
	}
	for i := 0; i < samples; i++ {
		x := loX + rng.Float64()*(hiX-loX)
		y := loY + rng.Float64()*(hiY-loY)
		if run.region.ContainsRect(boxAt(x, y, w, h)) {
			out = append(out, orb.Point{x, y})
		}
	}
	return out
}

// pack runs one greedy pass at the given nominal height.
func (run *optimizedRun) pack(items []model.Item, nominal, flexibility float64, rng *rand.Rand) model.PackingResult {
	s := run.p.Settings
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	if s.PrioritizeFill {
		sort.SliceStable(order, func(a, b int) bool {
			return items[order[a]].AspectRatio > items[order[b]].AspectRatio
		})
	}
	scales := scalesFor(flexibility)
	if len(scales) == 0 {
		scales = []float64{1.0}
	}

	var tree rtree.RTreeG[int]
	half := s.Gap / 2
	result := model.PackingResult{
		Algorithm:     model.AlgorithmOptimized,
		NominalHeight: nominal,
		Requested:     len(items),
		Placements:    make([]model.Placement, 0, len(items)),
	}

	for _, idx := range order {
		it := items[idx]
		placed := false
		for _, scale := range scales {
			w, h := it.SizeAt(nominal * scale)
			cands := run.candidates(w, h, rng)
			rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })
			if len(cands) > run.attempts {
				cands = cands[:run.attempts]
			}
			for _, c := range cands {
				b := boxAt(c[0], c[1], w, h).Pad(half)
				if collides(&tree, b) {
					continue
				}
				tree.Insert(b.Min, b.Max, it.Index)
				result.Placements = append(result.Placements, placementFor(it, c[0], c[1], w, h, 0))
				placed = true
				break
			}
			if placed {
				break
			}
		}
		if !placed {
			result.Failed = append(result.Failed, model.FailedItem{
				ItemIndex: it.Index,
				ItemID:    it.ID,
				Reason:    fmt.Sprintf("no free position at %d size variations", len(scales)),
			})
		}
	}

	sort.Slice(result.Placements, func(a, b int) bool {
		return result.Placements[a].ItemIndex < result.Placements[b].ItemIndex
	})
	result.Utilization = utilization(result.Placements, run.region.Area())
	return result
}

func collides(tree *rtree.RTreeG[int], b orb.Bound) bool {
	hit := false
	tree.Search(b.Min, b.Max, func(_, _ [2]float64, _ int) bool {
		hit = true
		return false
	})
	return hit
}

func boxAt(x, y, w, h float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{x - w/2, y - h/2},
		Max: orb.Point{x + w/2, y + h/2},
	}
}
