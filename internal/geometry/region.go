// Package geometry builds placement regions from boundary polygons and
// derives offset contours, anchors and parametric envelopes from them.
package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Limits applied by Build.
const (
	MaxExclusionRatio = 0.95 // Largest exclusion area relative to the outer area
	MinRegionRatio    = 0.01 // Smallest region area relative to the outer area
)

// Region is the allowed placement area: the outer polygons minus every
// exclusion. Membership and area are exact for polygonal input. A Region is
// immutable once built and safe for concurrent reads.
type Region struct {
	outer      orb.MultiPolygon
	exclusions orb.MultiPolygon
	groups     []orb.MultiPolygon
	bound      orb.Bound
	outerArea  float64
	area       float64
	shapes     int
	edges      *edgeIndex
}

// Build validates the outer boundary and exclusions and returns the region
// outer minus the union of exclusions.
func Build(outer orb.MultiPolygon, exclusions []orb.MultiPolygon) (*Region, error) {
	outer = normalize(outer)
	if len(outer) == 0 {
		return nil, newError(ErrCodeEmptyOuter, -1, 0, 0, "outer boundary has no usable polygon")
	}
	outerArea := planar.Area(outer)
	if outerArea <= 0 {
		return nil, newError(ErrCodeEmptyOuter, -1, outerArea, 0, "outer boundary has zero area")
	}
	bound := outer.Bound()
	tol := 1e-9 * math.Max(1, math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]))
	padded := bound.Pad(tol)

	var excl orb.MultiPolygon
	var groups []orb.MultiPolygon
	for i, ex := range exclusions {
		ex = normalize(ex)
		if len(ex) == 0 {
			continue
		}
		a := planar.Area(ex)
		if a > outerArea*MaxExclusionRatio {
			return nil, newError(ErrCodeRegionTooLarge, i, a/outerArea, MaxExclusionRatio,
				"exclusion %d covers %.1f%% of the outer area (limit %.0f%%)", i, 100*a/outerArea, 100*MaxExclusionRatio)
		}
		for _, poly := range ex {
			for _, ring := range poly {
				for _, p := range ring {
					if !padded.Contains(p) {
						return nil, newError(ErrCodeExclusionOutOfBounds, i, 0, 0,
							"exclusion %d has point (%.3f, %.3f) outside the outer bounds [%.3f, %.3f]-[%.3f, %.3f]",
							i, p[0], p[1], bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1])
					}
				}
			}
		}
		excl = append(excl, ex...)
		groups = append(groups, ex)
	}

	r := &Region{
		outer:      outer,
		exclusions: excl,
		groups:     groups,
		bound:      bound,
		outerArea:  outerArea,
		edges:      &edgeIndex{},
	}
	for _, poly := range outer {
		for _, ring := range poly {
			r.edges.add(ring, r.shapes, false)
		}
		r.shapes++
	}
	for _, poly := range excl {
		for _, ring := range poly {
			r.edges.add(ring, r.shapes, true)
		}
		r.shapes++
	}

	r.area = r.integrateArea()
	if r.area <= outerArea*1e-12 {
		return nil, newError(ErrCodeEmptyRegion, -1, 0, 0, "exclusions cover the whole outer boundary")
	}
	if r.area < outerArea*MinRegionRatio {
		return nil, newError(ErrCodeRegionTooSmall, -1, r.area/outerArea, MinRegionRatio,
			"allowed area %.2f is %.2f%% of the outer area %.2f (minimum %.0f%%)",
			r.area, 100*r.area/outerArea, outerArea, 100*MinRegionRatio)
	}
	return r, nil
}

// Area returns the area of the allowed region.
func (r *Region) Area() float64 { return r.area }

// OuterArea returns the area of the outer boundary alone.
func (r *Region) OuterArea() float64 { return r.outerArea }

// Bound returns the bounding box of the outer boundary.
func (r *Region) Bound() orb.Bound { return r.bound }

// Outer returns the normalized outer boundary.
func (r *Region) Outer() orb.MultiPolygon { return r.outer.Clone() }

// Exclusions returns every exclusion polygon.
func (r *Region) Exclusions() orb.MultiPolygon { return r.exclusions.Clone() }

// ExclusionGroups returns the non-empty exclusions as they were passed to
// Build, one multipolygon per input.
func (r *Region) ExclusionGroups() []orb.MultiPolygon {
	out := make([]orb.MultiPolygon, len(r.groups))
	for i, g := range r.groups {
		out[i] = g.Clone()
	}
	return out
}

// Polygons returns the region as a multipolygon whose point membership
// matches Contains. Each exclusion becomes a hole of every outer polygon
// whose bounds it touches, unless it lies wholly inside another exclusion.
// Holes inside an exclusion come back as extra polygons, with any exclusion
// that sits in them as their own holes.
// Exclusions that only partly overlap stay as separate, overlapping holes.
func (r *Region) Polygons() orb.MultiPolygon {
	var shells orb.MultiPolygon
	for i, ex := range r.exclusions {
		if !r.redundantExclusion(i) {
			shells = append(shells, ex)
		}
	}

	out := make(orb.MultiPolygon, 0, len(r.outer))
	for _, poly := range r.outer {
		p := poly.Clone()
		pb := poly.Bound()
		for i, ex := range shells {
			if ex[0].Bound().Intersects(pb) && !insideShell(ex[0], shells, i) {
				p = append(p, ex[0].Clone())
			}
		}
		out = append(out, p)
	}

	for i, ex := range shells {
		for _, island := range ex[1:] {
			if !coveredBy(island, r.outer) || coveredBy(island, otherThan(shells, i)) {
				continue
			}
			p := orb.Polygon{island.Clone()}
			for j, other := range shells {
				if j != i && ringWithin(other[0], orb.Polygon{island}) {
					p = append(p, other[0].Clone())
				}
			}
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether p lies in the region. Points on an exclusion
// boundary are outside.
func (r *Region) Contains(p orb.Point) bool {
	if !r.bound.Contains(p) || !planar.MultiPolygonContains(r.outer, p) {
		return false
	}
	return !planar.MultiPolygonContains(r.exclusions, p)
}

// ContainsRect reports whether the axis-aligned box lies entirely in the
// region. Touching the boundary is allowed.
func (r *Region) ContainsRect(b orb.Bound) bool {
	if b.Min[0] < r.bound.Min[0] || b.Min[1] < r.bound.Min[1] ||
		b.Max[0] > r.bound.Max[0] || b.Max[1] > r.bound.Max[1] {
		return false
	}
	if !r.Contains(b.Center()) {
		return false
	}
	eps := 1e-9 * math.Max(1, math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]))
	inner := orb.Bound{
		Min: orb.Point{b.Min[0] + eps, b.Min[1] + eps},
		Max: orb.Point{b.Max[0] - eps, b.Max[1] - eps},
	}
	hit := false
	r.edges.search(inner, func(e edge) bool {
		if segmentHitsBound(e.a, e.b, inner) {
			hit = true
			return false
		}
		return true
	})
	return !hit
}

// spans returns the inside intervals of the horizontal line at y, in
// increasing x.
func (r *Region) spans(y float64) [][2]float64 {
	var out [][2]float64
	r.sweep(y, func(a, b crossing) {
		if n := len(out); n > 0 && out[n-1][1] >= a.x {
			out[n-1][1] = b.x
			return
		}
		out = append(out, [2]float64{a.x, b.x})
	})
	return out
}

type crossing struct {
	x float64
	e edge
}

// sweep calls fn for every pair of neighbouring crossings on the line at y
// that bounds an inside interval.
func (r *Region) sweep(y float64, fn func(a, b crossing)) {
	cs := r.edges.crossings(y, r.bound)
	if len(cs) < 2 {
		return
	}
	parity := make([]bool, r.shapes)
	inOuter, inExcl := 0, 0
	for i, c := range cs {
		parity[c.e.shape] = !parity[c.e.shape]
		d := 1
		if !parity[c.e.shape] {
			d = -1
		}
		if c.e.exclude {
			inExcl += d
		} else {
			inOuter += d
		}
		if i+1 < len(cs) && inOuter > 0 && inExcl == 0 {
			fn(c, cs[i+1])
		}
	}
}

// integrateArea computes the region area with horizontal slabs. Inside a
// slab no vertex or edge crossing occurs, so the inside width is linear in y
// and the trapezoid rule is exact.
func (r *Region) integrateArea() float64 {
	ys := r.breakpoints()
	total := 0.0
	for i := 0; i+1 < len(ys); i++ {
		y0, y1 := ys[i], ys[i+1]
		if y1 <= y0 {
			continue
		}
		r.sweep((y0+y1)/2, func(a, b crossing) {
			w0 := b.e.xAt(y0) - a.e.xAt(y0)
			w1 := b.e.xAt(y1) - a.e.xAt(y1)
			total += (w0 + w1) / 2 * (y1 - y0)
		})
	}
	return total
}

func (r *Region) breakpoints() []float64 {
	ys := make([]float64, 0, 2*len(r.edges.edges))
	for i, e := range r.edges.edges {
		ys = append(ys, e.a[1])
		r.edges.search(e.bound(), func(o edge) bool {
			if o.id <= i || o.shape == e.shape {
				return true
			}
			if y, ok := intersectY(e.a, e.b, o.a, o.b); ok {
				ys = append(ys, y)
			}
			return true
		})
	}
	sort.Float64s(ys)
	out := ys[:0]
	for i, y := range ys {
		if i == 0 || y != out[len(out)-1] {
			out = append(out, y)
		}
	}
	return out
}

// normalize drops degenerate rings and polygons and closes every ring.
func normalize(mp orb.MultiPolygon) orb.MultiPolygon {
	var out orb.MultiPolygon
	for _, poly := range mp {
		var p orb.Polygon
		for i, ring := range poly {
			rr := cleanRing(ring)
			if len(rr) < 4 {
				if i == 0 {
					break
				}
				continue
			}
			p = append(p, rr)
		}
		if len(p) > 0 && planar.Area(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func cleanRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(ring)+1)
	for _, p := range ring {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil
	}
	return append(out, out[0])
}

// segmentHitsBound reports whether segment ab intersects the closed box
// (Liang-Barsky clipping).
func segmentHitsBound(a, b orb.Point, bd orb.Bound) bool {
	dx, dy := b[0]-a[0], b[1]-a[1]
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{a[0] - bd.Min[0], bd.Max[0] - a[0], a[1] - bd.Min[1], bd.Max[1] - a[1]}
	t0, t1 := 0.0, 1.0
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return t0 <= t1
}

// intersectY returns the ordinate where segments ab and cd cross.
func intersectY(a, b, c, d orb.Point) (float64, bool) {
	rx, ry := b[0]-a[0], b[1]-a[1]
	sx, sy := d[0]-c[0], d[1]-c[1]
	den := rx*sy - ry*sx
	if den == 0 {
		return 0, false
	}
	qx, qy := c[0]-a[0], c[1]-a[1]
	t := (qx*sy - qy*sx) / den
	u := (qx*ry - qy*rx) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return a[1] + t*ry, true
}

// redundantExclusion reports whether exclusion i lies inside another
// exclusion. Of two identical exclusions the first is kept.
func (r *Region) redundantExclusion(i int) bool {
	ex := r.exclusions[i]
	for j, other := range r.exclusions {
		if j == i || !ringWithin(ex[0], other) {
			continue
		}
		if j > i && ringWithin(other[0], ex) {
			continue
		}
		return true
	}
	return false
}

// insideShell reports whether ring lies within the outer ring of a shell
// other than skip.
func insideShell(ring orb.Ring, shells orb.MultiPolygon, skip int) bool {
	for j, sh := range shells {
		if j != skip && ringWithin(ring, orb.Polygon{sh[0]}) {
			return true
		}
	}
	return false
}

func otherThan(polys orb.MultiPolygon, skip int) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(polys))
	for i, p := range polys {
		if i != skip {
			out = append(out, p)
		}
	}
	return out
}

// coveredBy reports whether ring lies inside the filled area of one of polys.
func coveredBy(ring orb.Ring, polys orb.MultiPolygon) bool {
	for _, p := range polys {
		if ringWithin(ring, p) {
			return true
		}
	}
	return false
}

// ringWithin reports whether the area enclosed by ring lies inside p,
// excluding p's holes. Shared edges and vertices count as inside.
func ringWithin(ring orb.Ring, p orb.Polygon) bool {
	if !p.Bound().Contains(ring.Bound().Min) || !p.Bound().Contains(ring.Bound().Max) {
		return false
	}
	for _, pt := range ring {
		if !planar.PolygonContains(p, pt) {
			return false
		}
	}
	for _, other := range p {
		for i := 0; i+1 < len(ring); i++ {
			for j := 0; j+1 < len(other); j++ {
				if segmentsCross(ring[i], ring[i+1], other[j], other[j+1]) {
					return false
				}
			}
		}
	}
	for _, hole := range p[1:] {
		for _, pt := range hole {
			if ringStrictlyContains(ring, pt) {
				return false
			}
		}
	}
	return true
}

// ringStrictlyContains is RingContains without the boundary.
func ringStrictlyContains(ring orb.Ring, pt orb.Point) bool {
	for i := 0; i+1 < len(ring); i++ {
		if orientation(ring[i], ring[i+1], pt) == 0 && onSegment(ring[i], ring[i+1], pt) {
			return false
		}
	}
	return planar.RingContains(ring, pt)
}

// segmentsCross reports whether ab and cd cross at a single point interior
// to both. Touching and collinear overlap do not count.
func segmentsCross(a, b, c, d orb.Point) bool {
	o1, o2 := orientation(a, b, c), orientation(a, b, d)
	o3, o4 := orientation(c, d, a), orientation(c, d, b)
	return o1*o2 < 0 && o3*o4 < 0
}

func orientation(a, b, c orb.Point) int {
	v := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}
