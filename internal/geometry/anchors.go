package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Anchor is a candidate item centre along a path. Angle is the direction of
// the path at that point in degrees, counter-clockwise from +x.
type Anchor struct {
	X, Y  float64
	Angle float64
}

// ArcLengthAnchors walks path and emits an anchor every spacing units of arc
// length, the first one at spacing/2.
func ArcLengthAnchors(path orb.LineString, spacing float64) []Anchor {
	if len(path) < 2 || spacing <= 0 {
		return nil
	}

	var anchors []Anchor
	target := spacing / 2
	walked := 0.0
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		dx, dy := b[0]-a[0], b[1]-a[1]
		seg := math.Hypot(dx, dy)
		if seg == 0 {
			continue
		}
		angle := math.Atan2(dy, dx) * 180 / math.Pi
		for target <= walked+seg {
			t := (target - walked) / seg
			anchors = append(anchors, Anchor{X: a[0] + t*dx, Y: a[1] + t*dy, Angle: angle})
			target += spacing
		}
		walked += seg
	}
	return anchors
}
