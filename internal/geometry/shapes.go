package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// DefaultSegments is the vertex count used for circles and ellipses.
const DefaultSegments = 128

// Rectangle returns a w x h rectangle centred on the origin.
func Rectangle(w, h float64) orb.MultiPolygon {
	b := orb.Bound{Min: orb.Point{-w / 2, -h / 2}, Max: orb.Point{w / 2, h / 2}}
	return orb.MultiPolygon{b.ToPolygon()}
}

// Circle returns a circle of radius r centred on the origin.
func Circle(r float64, segments int) orb.MultiPolygon {
	return Ellipse(r, r, segments)
}

// Ellipse returns an ellipse with semi-axes rx and ry centred on the origin.
func Ellipse(rx, ry float64, segments int) orb.MultiPolygon {
	if segments < 8 {
		segments = DefaultSegments
	}
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{rx * math.Cos(a), ry * math.Sin(a)})
	}
	ring = append(ring, ring[0])
	return orb.MultiPolygon{orb.Polygon{ring}}
}
