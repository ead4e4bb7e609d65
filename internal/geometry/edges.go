package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"
)

// edge is one boundary segment. shape identifies the polygon it belongs to
// so that parity can be tracked per polygon.
type edge struct {
	id      int
	a, b    orb.Point
	shape   int
	exclude bool
}

func (e edge) bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Min(e.a[0], e.b[0]), math.Min(e.a[1], e.b[1])},
		Max: orb.Point{math.Max(e.a[0], e.b[0]), math.Max(e.a[1], e.b[1])},
	}
}

// xAt returns the abscissa of the edge's supporting line at y.
func (e edge) xAt(y float64) float64 {
	dy := e.b[1] - e.a[1]
	if dy == 0 {
		return e.a[0]
	}
	return e.a[0] + (y-e.a[1])*(e.b[0]-e.a[0])/dy
}

// edgeIndex keeps boundary edges in an R-tree for box and nearest queries.
type edgeIndex struct {
	edges []edge
	tree  rtree.RTreeG[int]
}

func (ix *edgeIndex) add(ring orb.Ring, shape int, exclude bool) {
	for i := 0; i+1 < len(ring); i++ {
		e := edge{id: len(ix.edges), a: ring[i], b: ring[i+1], shape: shape, exclude: exclude}
		b := e.bound()
		ix.tree.Insert([2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]}, e.id)
		ix.edges = append(ix.edges, e)
	}
}

func (ix *edgeIndex) search(b orb.Bound, fn func(e edge) bool) {
	ix.tree.Search([2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]},
		func(_, _ [2]float64, id int) bool {
			return fn(ix.edges[id])
		})
}

// crossings returns the edges that cross the horizontal line at y, sorted by
// their abscissa. An edge counts when exactly one endpoint lies above y.
func (ix *edgeIndex) crossings(y float64, within orb.Bound) []crossing {
	var out []crossing
	line := orb.Bound{Min: orb.Point{within.Min[0], y}, Max: orb.Point{within.Max[0], y}}
	ix.search(line, func(e edge) bool {
		if (e.a[1] > y) != (e.b[1] > y) {
			out = append(out, crossing{x: e.xAt(y), e: e})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].x != out[j].x {
			return out[i].x < out[j].x
		}
		return out[i].e.id < out[j].e.id
	})
	return out
}

// nearest returns the distance from p to the closest edge.
func (ix *edgeIndex) nearest(p orb.Point) float64 {
	best := math.Inf(1)
	pt := [2]float64{p[0], p[1]}
	ix.tree.Nearby(
		rtree.BoxDist[float64, int](pt, pt, func(_, _ [2]float64, id int) float64 {
			e := ix.edges[id]
			return planar.DistanceFromSegmentSquared(e.a, e.b, p)
		}),
		func(_, _ [2]float64, _ int, dist float64) bool {
			best = dist
			return false
		},
	)
	return math.Sqrt(best)
}
