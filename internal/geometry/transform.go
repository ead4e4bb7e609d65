package geometry

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Position names one of the nine slots used by PositionRelative.
type Position string

const (
	PositionCenter       Position = "center"
	PositionTopLeft      Position = "top-left"
	PositionTopCenter    Position = "top-center"
	PositionTopRight     Position = "top-right"
	PositionMiddleLeft   Position = "middle-left"
	PositionMiddleRight  Position = "middle-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomRight  Position = "bottom-right"
)

// ParsePosition accepts the nine position names case-insensitively.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PositionCenter, PositionTopLeft, PositionTopCenter, PositionTopRight,
		PositionMiddleLeft, PositionMiddleRight,
		PositionBottomLeft, PositionBottomCenter, PositionBottomRight:
		return p, nil
	}
	return "", fmt.Errorf("unknown position %q", s)
}

func mapPoints(mp orb.MultiPolygon, fn func(p orb.Point) orb.Point) orb.MultiPolygon {
	out := mp.Clone()
	for _, poly := range out {
		for _, ring := range poly {
			for i, p := range ring {
				ring[i] = fn(p)
			}
		}
	}
	return out
}

// Scale multiplies every coordinate by factor, about the origin.
func Scale(mp orb.MultiPolygon, factor float64) orb.MultiPolygon {
	return ScaleXY(mp, factor, factor)
}

// ScaleXY scales x and y independently about the origin.
func ScaleXY(mp orb.MultiPolygon, fx, fy float64) orb.MultiPolygon {
	return mapPoints(mp, func(p orb.Point) orb.Point {
		return orb.Point{p[0] * fx, p[1] * fy}
	})
}

// Translate shifts every coordinate by (dx, dy).
func Translate(mp orb.MultiPolygon, dx, dy float64) orb.MultiPolygon {
	return mapPoints(mp, func(p orb.Point) orb.Point {
		return orb.Point{p[0] + dx, p[1] + dy}
	})
}

// PositionRelative moves inner so that its bounding box sits at pos inside
// the bounding box of outer.
func PositionRelative(inner, outer orb.MultiPolygon, pos Position) (orb.MultiPolygon, error) {
	ib, ob := inner.Bound(), outer.Bound()
	iw, ih := ib.Max[0]-ib.Min[0], ib.Max[1]-ib.Min[1]
	oc := ob.Center()

	var tx, ty float64
	switch pos {
	case PositionCenter, PositionTopCenter, PositionBottomCenter:
		tx = oc[0]
	case PositionTopLeft, PositionMiddleLeft, PositionBottomLeft:
		tx = ob.Min[0] + iw/2
	case PositionTopRight, PositionMiddleRight, PositionBottomRight:
		tx = ob.Max[0] - iw/2
	default:
		return nil, fmt.Errorf("unknown position %q", pos)
	}
	switch pos {
	case PositionCenter, PositionMiddleLeft, PositionMiddleRight:
		ty = oc[1]
	case PositionTopLeft, PositionTopCenter, PositionTopRight:
		ty = ob.Max[1] - ih/2
	default:
		ty = ob.Min[1] + ih/2
	}

	ic := ib.Center()
	return Translate(inner, tx-ic[0], ty-ic[1]), nil
}
