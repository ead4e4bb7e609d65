package engine

import "github.com/piwi3910/nanofiche/internal/geometry"

// ShapeClass is the coarse outline category of a region. It decides how
// densely candidate positions are sampled.
type ShapeClass interface {
	String() string
	// density returns the sampling multipliers along x and y.
	density() (x, y float64)
	// samplesPerSide is the base number of grid steps across the bounds.
	samplesPerSide() float64
}

// Rectangular regions fill most of their bounding box.
type Rectangular struct{}

// SquareLike regions have a near-square bounding box and are mostly convex.
type SquareLike struct{}

// Elongated regions are at least twice as long in one direction. Wide is
// set when the long axis is x.
type Elongated struct{ Wide bool }

// Complex covers every other outline.
type Complex struct{}

func (Rectangular) String() string { return "rectangular" }
func (SquareLike) String() string  { return "square_like" }
func (Elongated) String() string   { return "elongated" }
func (Complex) String() string     { return "complex" }

func (Rectangular) density() (float64, float64) { return 1.0, 1.0 }
func (SquareLike) density() (float64, float64)  { return 1.2, 1.2 }
func (Complex) density() (float64, float64)     { return 0.8, 0.8 }

// Elongated shapes sample the short axis more densely.
func (e Elongated) density() (float64, float64) {
	if e.Wide {
		return 1.0, 1.5
	}
	return 1.5, 1.0
}

func (Rectangular) samplesPerSide() float64 { return 20 }
func (SquareLike) samplesPerSide() float64  { return 20 }
func (Elongated) samplesPerSide() float64   { return 20 }
func (Complex) samplesPerSide() float64     { return 25 }

// ShapeInfo is the result of ClassifyRegion.
type ShapeInfo struct {
	Class          ShapeClass
	Rectangularity float64 // Region area / bounding box area
	Aspect         float64 // Bounding box width / height
}

// ClassifyRegion measures how box-like the region is.
func ClassifyRegion(region *geometry.Region) ShapeInfo {
	b := region.Bound()
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	info := ShapeInfo{Class: Complex{}}
	if w <= 0 || h <= 0 {
		return info
	}
	info.Rectangularity = region.Area() / (w * h)
	info.Aspect = w / h

	switch {
	case info.Rectangularity > 0.95:
		info.Class = Rectangular{}
	case info.Aspect > 0.9 && info.Aspect < 1.1 && info.Rectangularity > 0.75:
		info.Class = SquareLike{}
	case info.Aspect > 2:
		info.Class = Elongated{Wide: true}
	case info.Aspect < 0.5:
		info.Class = Elongated{Wide: false}
	}
	return info
}
