package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// maxFieldCells caps the distance field resolution along the longer side.
const maxFieldCells = 512

// Contour is the boundary of one component of an eroded region. Ring is
// closed and counter-clockwise. Level is the offset step that produced it,
// starting at 1.
type Contour struct {
	Level int
	Ring  orb.Ring
}

// Length returns the perimeter of the contour.
func (c Contour) Length() float64 {
	return planar.Length(c.Ring)
}

// field samples the signed distance to the region boundary on a regular
// grid: positive inside, negative outside.
type field struct {
	origin orb.Point
	cell   float64
	nx, ny int
	v      []float64
	max    float64
}

func (f *field) at(i, j int) float64 { return f.v[j*f.nx+i] }

func (f *field) node(i, j int) orb.Point {
	return orb.Point{f.origin[0] + float64(i)*f.cell, f.origin[1] + float64(j)*f.cell}
}

func (r *Region) distanceField(resolution float64) *field {
	w := r.bound.Max[0] - r.bound.Min[0]
	h := r.bound.Max[1] - r.bound.Min[1]
	cell := math.Max(resolution, math.Max(w, h)/maxFieldCells)
	const pad = 2
	f := &field{
		origin: orb.Point{r.bound.Min[0] - pad*cell, r.bound.Min[1] - pad*cell},
		cell:   cell,
		nx:     int(math.Ceil(w/cell)) + 2*pad + 1,
		ny:     int(math.Ceil(h/cell)) + 2*pad + 1,
	}
	f.v = make([]float64, f.nx*f.ny)
	for j := 0; j < f.ny; j++ {
		y := f.origin[1] + float64(j)*cell
		spans := r.spans(y)
		s := 0
		for i := 0; i < f.nx; i++ {
			p := f.node(i, j)
			for s < len(spans) && spans[s][1] <= p[0] {
				s++
			}
			d := r.edges.nearest(p)
			if s < len(spans) && spans[s][0] < p[0] {
				f.v[j*f.nx+i] = d
				if d > f.max {
					f.max = d
				}
			} else {
				f.v[j*f.nx+i] = -d
			}
		}
	}
	return f
}

type gridEdge struct {
	i, j     int
	vertical bool
}

// point interpolates the level crossing on a grid edge.
func (f *field) point(k gridEdge, level float64) orb.Point {
	i2, j2 := k.i+1, k.j
	if k.vertical {
		i2, j2 = k.i, k.j+1
	}
	a := f.at(k.i, k.j) - level
	b := f.at(i2, j2) - level
	t := 0.5
	if a != b {
		t = a / (a - b)
	}
	p, q := f.node(k.i, k.j), f.node(i2, j2)
	return orb.Point{p[0] + t*(q[0]-p[0]), p[1] + t*(q[1]-p[1])}
}

// contour runs marching squares on the field at the given level and
// returns closed rings with the inside on the left, so outer loops are
// counter-clockwise and holes clockwise.
func (f *field) contour(level float64) []orb.Ring {
	next := make(map[gridEdge]gridEdge)
	var starts []gridEdge
	link := func(from, to gridEdge) {
		next[from] = to
		starts = append(starts, from)
	}

	for j := 0; j+1 < f.ny; j++ {
		for i := 0; i+1 < f.nx; i++ {
			// corners and edges counter-clockwise from bottom-left
			c := [4]float64{
				f.at(i, j) - level,
				f.at(i+1, j) - level,
				f.at(i+1, j+1) - level,
				f.at(i, j+1) - level,
			}
			keys := [4]gridEdge{{i, j, false}, {i + 1, j, true}, {i, j + 1, false}, {i, j, true}}

			var cross [4]gridEdge
			var leaving [4]bool
			n := 0
			for k := 0; k < 4; k++ {
				a, b := c[k], c[(k+1)%4]
				if (a > 0) != (b > 0) {
					cross[n] = keys[k]
					leaving[n] = a > 0
					n++
				}
			}
			switch n {
			case 2:
				if leaving[0] {
					link(cross[0], cross[1])
				} else {
					link(cross[1], cross[0])
				}
			case 4:
				joined := (c[0]+c[1]+c[2]+c[3])/4 > 0
				for p := 0; p < 4; p++ {
					if !leaving[p] {
						continue
					}
					if joined {
						link(cross[p], cross[(p+1)%4])
					} else {
						link(cross[p], cross[(p+3)%4])
					}
				}
			}
		}
	}

	visited := make(map[gridEdge]bool, len(next))
	var rings []orb.Ring
	for _, s := range starts {
		if visited[s] {
			continue
		}
		var ring orb.Ring
		k := s
		for !visited[k] {
			visited[k] = true
			ring = append(ring, f.point(k, level))
			nk, ok := next[k]
			if !ok {
				break
			}
			k = nk
		}
		if len(ring) < 3 {
			continue
		}
		rings = append(rings, append(ring, ring[0]))
	}
	return rings
}

// erodeAt contours the field at level and groups the loops into polygons.
func (f *field) erodeAt(level float64) orb.MultiPolygon {
	if level >= f.max {
		return nil
	}
	dp := simplify.DouglasPeucker(f.cell / 4)
	var outers orb.MultiPolygon
	var holes []orb.Ring
	for _, ring := range f.contour(level) {
		ring = dp.Ring(ring)
		if len(ring) < 4 {
			continue
		}
		switch ring.Orientation() {
		case orb.CCW:
			outers = append(outers, orb.Polygon{ring})
		case orb.CW:
			holes = append(holes, ring)
		}
	}
	// Bottom-most component first, then left-most, so output is stable.
	sort.SliceStable(outers, func(i, j int) bool {
		bi, bj := outers[i].Bound(), outers[j].Bound()
		if bi.Min[1] != bj.Min[1] {
			return bi.Min[1] < bj.Min[1]
		}
		return bi.Min[0] < bj.Min[0]
	})
	for _, h := range holes {
		best, bestArea := -1, math.Inf(1)
		for i, o := range outers {
			if planar.RingContains(o[0], h[0]) {
				if a := planar.Area(o[0]); a < bestArea {
					best, bestArea = i, a
				}
			}
		}
		if best >= 0 {
			outers[best] = append(outers[best], h)
		}
	}
	return outers
}

// Erode shrinks the region inward by distance. The result may be empty or
// split into several polygons.
func Erode(r *Region, distance float64) orb.MultiPolygon {
	if distance <= 0 {
		return r.Polygons()
	}
	return r.distanceField(distance / 4).erodeAt(distance)
}

// OffsetContours erodes the region by step, 2*step, ... up to maxCount
// times and returns the outer boundary of every surviving component in
// offset order. It stops at the first empty erosion.
func OffsetContours(r *Region, step float64, maxCount int) []Contour {
	if step <= 0 || maxCount < 1 {
		return nil
	}
	f := r.distanceField(step / 4)
	var out []Contour
	for i := 1; i <= maxCount; i++ {
		mp := f.erodeAt(float64(i) * step)
		if len(mp) == 0 {
			break
		}
		for _, poly := range mp {
			out = append(out, Contour{Level: i, Ring: poly[0]})
		}
	}
	return out
}
