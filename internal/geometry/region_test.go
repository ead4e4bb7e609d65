package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(minX, minY, maxX, maxY float64) orb.MultiPolygon {
	b := orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
	return orb.MultiPolygon{b.ToPolygon()}
}

func centredSquare(cx, cy, side float64) orb.MultiPolygon {
	return box(cx-side/2, cy-side/2, cx+side/2, cy+side/2)
}

func TestBuild_NoExclusions(t *testing.T) {
	r, err := Build(box(0, 0, 100, 50), nil)
	require.NoError(t, err)

	assert.InDelta(t, 5000.0, r.Area(), 1e-9)
	assert.InDelta(t, 5000.0, r.OuterArea(), 1e-9)
	assert.Len(t, r.Polygons(), 1)
}

func TestBuild_HalfExclusion(t *testing.T) {
	side := math.Sqrt(5000)
	r, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{centredSquare(50, 50, side)})
	require.NoError(t, err)

	assert.InDelta(t, 5000.0, r.Area(), 1e-6, "region should keep half of the outer area")
	polys := r.Polygons()
	require.Len(t, polys, 1)
	assert.Len(t, polys[0], 2, "exclusion should become a hole")
}

func TestBuild_ExclusionTooLarge(t *testing.T) {
	side := math.Sqrt(9600)
	_, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{centredSquare(50, 50, side)})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeRegionTooLarge), "got %v", err)

	var gerr *GeometryError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 0, gerr.Index)
	assert.InDelta(t, 0.96, gerr.Actual, 1e-9)
	assert.Equal(t, MaxExclusionRatio, gerr.Limit)
}

func TestBuild_ExclusionOutOfBounds(t *testing.T) {
	_, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{
		centredSquare(50, 50, 10),
		box(90, 90, 110, 95),
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeExclusionOutOfBounds), "got %v", err)

	var gerr *GeometryError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 1, gerr.Index)
}

func TestBuild_EmptyOuter(t *testing.T) {
	_, err := Build(nil, nil)
	assert.True(t, IsCode(err, ErrCodeEmptyOuter))

	degenerate := orb.MultiPolygon{{{{0, 0}, {10, 0}, {0, 0}}}}
	_, err = Build(degenerate, nil)
	assert.True(t, IsCode(err, ErrCodeEmptyOuter))
}

func TestBuild_RegionTooSmall(t *testing.T) {
	// Two exclusions, each under the 95% limit, together leave 0.5%.
	_, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{
		box(0, 0, 100, 60),
		box(0, 40, 100, 99.5),
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeRegionTooSmall), "got %v", err)
}

func TestBuild_EmptyRegion(t *testing.T) {
	_, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{
		box(0, 0, 100, 60),
		box(0, 40, 100, 100),
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeEmptyRegion), "got %v", err)
}

func TestBuild_OverlappingExclusions(t *testing.T) {
	// 1600 + 1600 - 600 overlap = 2600 excluded
	r, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{
		box(10, 10, 50, 50),
		box(30, 20, 70, 60),
	})
	require.NoError(t, err)
	assert.InDelta(t, 7400.0, r.Area(), 1e-6)
}

func TestBuild_SlantedExclusion(t *testing.T) {
	// Two crossing triangles; their edges intersect away from any vertex.
	tri1 := orb.MultiPolygon{{{{10, 10}, {90, 10}, {50, 90}, {10, 10}}}}
	tri2 := orb.MultiPolygon{{{{10, 90}, {50, 10}, {90, 90}, {10, 90}}}}
	r, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{tri1, tri2})
	require.NoError(t, err)

	// Each triangle has area 3200 and they overlap in a rhombus of 1600.
	assert.InDelta(t, 10000-(3200+3200-1600), r.Area(), 1e-6)
}

func TestBuild_Idempotent(t *testing.T) {
	outer := Circle(40, 64)
	excl := []orb.MultiPolygon{centredSquare(10, 5, 15), Circle(8, 32)}

	a, err := Build(outer, excl)
	require.NoError(t, err)
	b, err := Build(outer, excl)
	require.NoError(t, err)

	assert.InDelta(t, a.Area(), b.Area(), 1e-9)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	outer := box(0, 0, 10, 10)
	before := outer.Clone()
	_, err := Build(outer, nil)
	require.NoError(t, err)
	assert.True(t, before.Equal(outer))
}

func TestRegion_Contains(t *testing.T) {
	r, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{box(40, 40, 60, 60)})
	require.NoError(t, err)

	assert.True(t, r.Contains(orb.Point{10, 10}))
	assert.False(t, r.Contains(orb.Point{50, 50}), "inside the exclusion")
	assert.False(t, r.Contains(orb.Point{40, 50}), "on the exclusion boundary")
	assert.False(t, r.Contains(orb.Point{150, 50}))
}

func TestRegion_ContainsRect(t *testing.T) {
	r, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{box(40, 40, 60, 60)})
	require.NoError(t, err)

	tests := []struct {
		name string
		b    orb.Bound
		want bool
	}{
		{"corner flush with boundary", bnd(0, 0, 10, 10), true},
		{"left of exclusion", bnd(0, 30, 39, 70), true},
		{"touching exclusion", bnd(30, 30, 40, 40), true},
		{"overlapping exclusion", bnd(35, 35, 45, 45), false},
		{"outside outer", bnd(-1, 0, 5, 5), false},
		{"exclusion inside rect", bnd(35, 0, 65, 70), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ContainsRect(tt.b))
		})
	}
}

func TestRegion_ContainsRectConcave(t *testing.T) {
	// L-shape: the notch at the top right is outside.
	l := orb.MultiPolygon{{{{0, 0}, {100, 0}, {100, 50}, {50, 50}, {50, 100}, {0, 100}, {0, 0}}}}
	r, err := Build(l, nil)
	require.NoError(t, err)

	assert.InDelta(t, 7500.0, r.Area(), 1e-9)
	assert.True(t, r.ContainsRect(bnd(60, 10, 90, 40)))
	assert.False(t, r.ContainsRect(bnd(40, 40, 60, 60)), "straddles the inner corner")
	assert.False(t, r.ContainsRect(bnd(60, 60, 90, 90)), "inside the notch")
}

func bnd(minX, minY, maxX, maxY float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
}

// polygonsMatchContains samples a grid and checks that Polygons and Contains
// agree away from edges.
func polygonsMatchContains(t *testing.T, r *Region) {
	t.Helper()
	polys := r.Polygons()
	b := r.Bound()
	for x := b.Min[0] + 0.25; x < b.Max[0]; x += 1.5 {
		for y := b.Min[1] + 0.25; y < b.Max[1]; y += 1.5 {
			p := orb.Point{x, y}
			assert.Equal(t, r.Contains(p), planar.MultiPolygonContains(polys, p), "at %v", p)
		}
	}
}

func TestRegion_PolygonsDropsNestedExclusion(t *testing.T) {
	r, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{
		box(20, 20, 60, 60),
		box(30, 30, 40, 40),
		box(20, 20, 60, 60),
	})
	require.NoError(t, err)

	polys := r.Polygons()
	require.Len(t, polys, 1)
	assert.Len(t, polys[0], 2, "only the enclosing exclusion should become a hole")
	polygonsMatchContains(t, r)
}

func TestRegion_PolygonsKeepsIslandInsideExclusion(t *testing.T) {
	ring := orb.Polygon{
		box(20, 20, 80, 80)[0],
		box(40, 40, 60, 60)[0],
	}
	r, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{
		{ring},
		box(45, 45, 50, 50),
	})
	require.NoError(t, err)
	require.True(t, r.Contains(orb.Point{55, 55}), "the hole of an exclusion is allowed area")

	polys := r.Polygons()
	require.Len(t, polys, 2)
	assert.Len(t, polys[0], 2, "outer keeps one hole")
	assert.Len(t, polys[1], 2, "island carries the exclusion inside it")
	polygonsMatchContains(t, r)
}

func TestRegion_PolygonsOverlappingExclusions(t *testing.T) {
	r, err := Build(box(0, 0, 100, 100), []orb.MultiPolygon{
		box(20, 20, 50, 50),
		box(40, 40, 70, 70),
	})
	require.NoError(t, err)

	polys := r.Polygons()
	require.Len(t, polys, 1)
	assert.Len(t, polys[0], 3)
	assert.False(t, planar.MultiPolygonContains(polys, orb.Point{45, 45}), "overlap of two holes is outside")
	polygonsMatchContains(t, r)
}
