package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// BoundaryResult holds the polygons read from a boundary file. Exclusions
// is only filled by formats that can tag shapes, such as GeoJSON.
type BoundaryResult struct {
	Polygons   orb.MultiPolygon
	Exclusions []orb.MultiPolygon
	Errors     []string
	Warnings   []string
}

// OK reports whether the import produced usable polygons without errors.
func (r BoundaryResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Polygons) > 0
}

// Sampling density for curved DXF entities.
const (
	circleSegments = 64
	arcSegments    = 32
	chainTolerance = 0.01
)

// segment is one straight piece of a LINE or sampled ARC waiting to be
// joined into a ring.
type segment struct {
	start orb.Point
	end   orb.Point
}

// ImportDXFBoundary reads a DXF drawing as a boundary. Each closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) becomes one
// counter-clockwise polygon in drawing coordinates, largest first.
func ImportDXFBoundary(path string) BoundaryResult {
	result := BoundaryResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF drawing is empty")
		return result
	}

	var rings []orb.Ring
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			ring := lwPolylineToRing(e)
			if len(ring) >= 3 {
				rings = append(rings, ring)
			} else {
				result.Warnings = append(result.Warnings,
					"LWPOLYLINE needs at least 3 vertices, skipped")
			}

		case *entity.Circle:
			rings = append(rings, circleToRing(e, circleSegments))

		case *entity.Arc:
			pts := arcToPoints(e, arcSegments)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: orb.Point{e.Start[0], e.Start[1]},
				end:   orb.Point{e.End[0], e.End[1]},
			})

		default:
			// Text, hatches and dimensions carry no outline.
		}
	}

	rings = append(rings, chainSegments(segments, chainTolerance)...)
	if len(rings) == 0 {
		result.Errors = append(result.Errors, "DXF drawing has no closed outlines")
		return result
	}

	for _, ring := range rings {
		ring = closeRing(ring)
		b := ring.Bound()
		if b.Max[0]-b.Min[0] < 0.01 || b.Max[1]-b.Min[1] < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]))
			continue
		}
		result.Polygons = append(result.Polygons, orb.Polygon{ring})
	}
	sortLargestFirst(result.Polygons)

	return result
}

// lwPolylineToRing returns the polyline's outline without the closing
// point. Bulged edges are sampled as arcs.
func lwPolylineToRing(lw *entity.LwPolyline) orb.Ring {
	var ring orb.Ring

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := orb.Point{v[0], v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := orb.Point{lw.Vertices[nextIdx][0], lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, arcSegments)
			// The next vertex is added by its own iteration
			ring = append(ring, arcPts[:len(arcPts)-1]...)
		} else {
			ring = append(ring, current)
		}
	}

	return ring
}

// bulgeArcPoints samples the arc from p1 to p2 whose DXF bulge is
// tan(θ/4) of the included angle θ; positive bulges turn counter-clockwise.
// Both endpoints are included.
func bulgeArcPoints(p1, p2 orb.Point, bulge float64, numSegments int) []orb.Point {
	mx := (p1[0] + p2[0]) / 2
	my := (p1[1] + p2[1]) / 2
	dx := p2[0] - p1[0]
	dy := p2[1] - p1[1]
	chordLen := math.Hypot(dx, dy)
	if chordLen < 1e-9 {
		return []orb.Point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	// Centre lies on the chord bisector
	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1[1]-cy, p1[0]-cx)
	endAngle := math.Atan2(p2[1]-cy, p2[0]-cx)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make([]orb.Point, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, orb.Point{cx + radius*math.Cos(angle), cy + radius*math.Sin(angle)})
	}
	return pts
}

// circleToRing approximates a circle as a regular polygon.
func circleToRing(c *entity.Circle, numSegments int) orb.Ring {
	ring := make(orb.Ring, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		ring[i] = orb.Point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return ring
}

// arcToPoints samples an ARC counter-clockwise from its start angle to its
// end angle.
func arcToPoints(a *entity.Arc, numSegments int) []orb.Point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]orb.Point, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = orb.Point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pts
}

// pointsToSegments splits a polyline into its edges.
func pointsToSegments(pts []orb.Point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments joins segments end to end, flipping them as needed, and
// keeps the chains that return to their start within tolerance. Open
// chains are dropped.
func chainSegments(segs []segment, tolerance float64) []orb.Ring {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var rings []orb.Ring

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := orb.Ring{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		// Only closed chains bound an area
		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			rings = append(rings, chain[:len(chain)-1])
		}
	}

	return rings
}

func pointsClose(a, b orb.Point, tolerance float64) bool {
	return math.Hypot(a[0]-b[0], a[1]-b[1]) <= tolerance
}

// closeRing returns a closed counter-clockwise copy of an open ring.
func closeRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	out = append(out, r...)
	if !out.Closed() {
		out = append(out, out[0])
	}
	if out.Orientation() == orb.CW {
		out.Reverse()
	}
	return out
}

// sortLargestFirst orders polygons by area for consistent output.
func sortLargestFirst(mp orb.MultiPolygon) {
	sort.SliceStable(mp, func(i, j int) bool {
		return planar.Area(mp[i]) > planar.Area(mp[j])
	})
}
