package importer

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetWithHole = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "sheet"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[100,0],[100,50],[0,50],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"role": "Exclusion"},
      "geometry": {"type": "Polygon", "coordinates": [[[40,20],[60,20],[60,30],[40,30],[40,20]]]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "LineString", "coordinates": [[0,0],[10,10]]}
    }
  ]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ─── GeoJSON Tests ─────────────────────────────────────────

func TestParseGeoJSONBoundary_FeatureCollection(t *testing.T) {
	result := ParseGeoJSONBoundary([]byte(sheetWithHole))

	require.True(t, result.OK(), "errors: %v", result.Errors)
	require.Len(t, result.Polygons, 1)
	assert.InDelta(t, 5000, planar.Area(result.Polygons[0]), 1e-9)

	require.Len(t, result.Exclusions, 1)
	assert.InDelta(t, 200, planar.Area(result.Exclusions[0]), 1e-9)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Feature 3")
	assert.Contains(t, result.Warnings[0], "LineString")
}

func TestParseGeoJSONBoundary_BareGeometry(t *testing.T) {
	data := `{"type": "MultiPolygon", "coordinates": [
		[[[0,0],[10,0],[10,10],[0,10],[0,0]]],
		[[[20,0],[50,0],[50,30],[20,30],[20,0]]]
	]}`
	result := ParseGeoJSONBoundary([]byte(data))

	require.True(t, result.OK(), "errors: %v", result.Errors)
	require.Len(t, result.Polygons, 2)
	// Largest first
	assert.InDelta(t, 900, planar.Area(result.Polygons[0]), 1e-9)
	assert.InDelta(t, 100, planar.Area(result.Polygons[1]), 1e-9)
}

func TestParseGeoJSONBoundary_SingleFeature(t *testing.T) {
	data := `{"type": "Feature", "properties": null,
		"geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]}}`
	result := ParseGeoJSONBoundary([]byte(data))

	require.True(t, result.OK(), "errors: %v", result.Errors)
	assert.Len(t, result.Polygons, 1)
	assert.Empty(t, result.Exclusions)
}

func TestParseGeoJSONBoundary_NoPolygons(t *testing.T) {
	result := ParseGeoJSONBoundary([]byte(`{"type": "Point", "coordinates": [1, 2]}`))

	assert.False(t, result.OK())
	assert.Contains(t, result.Errors, "No polygons found in GeoJSON")
}

func TestParseGeoJSONBoundary_Malformed(t *testing.T) {
	result := ParseGeoJSONBoundary([]byte(`{"type": `))

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Cannot read GeoJSON")
}

// ─── LoadBoundary Tests ────────────────────────────────────

func TestLoadBoundary_GeoJSONFile(t *testing.T) {
	for _, name := range []string{"sheet.geojson", "sheet.JSON"} {
		result := LoadBoundary(writeTemp(t, name, sheetWithHole))
		assert.True(t, result.OK(), "%s: %v", name, result.Errors)
		assert.Len(t, result.Exclusions, 1, name)
	}
}

func TestLoadBoundary_Unsupported(t *testing.T) {
	result := LoadBoundary(writeTemp(t, "sheet.svg", "<svg/>"))

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Unsupported boundary format")
}

func TestLoadBoundary_MissingFiles(t *testing.T) {
	assert.NotEmpty(t, LoadBoundary("/nonexistent/outline.dxf").Errors)
	assert.NotEmpty(t, LoadBoundary("/nonexistent/outline.geojson").Errors)
}

// ─── DXF Helper Tests ──────────────────────────────────────

func TestChainSegments_ClosedSquare(t *testing.T) {
	// Segments out of order and one reversed
	segs := []segment{
		{start: orb.Point{0, 0}, end: orb.Point{10, 0}},
		{start: orb.Point{10, 10}, end: orb.Point{0, 10}},
		{start: orb.Point{10, 10}, end: orb.Point{10, 0}},
		{start: orb.Point{0, 10}, end: orb.Point{0, 0.005}},
	}
	rings := chainSegments(segs, chainTolerance)

	require.Len(t, rings, 1)
	ring := closeRing(rings[0])
	assert.True(t, ring.Closed())
	assert.Equal(t, orb.CCW, ring.Orientation())
	assert.InDelta(t, 100, math.Abs(planar.Area(ring)), 0.1)
}

func TestChainSegments_OpenChainDropped(t *testing.T) {
	segs := []segment{
		{start: orb.Point{0, 0}, end: orb.Point{10, 0}},
		{start: orb.Point{10, 0}, end: orb.Point{10, 10}},
	}
	assert.Empty(t, chainSegments(segs, chainTolerance))
	assert.Nil(t, chainSegments(nil, chainTolerance))
}

func TestCloseRing_MakesCounterClockwise(t *testing.T) {
	cw := orb.Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	ring := closeRing(cw)

	assert.Len(t, ring, 5)
	assert.Equal(t, orb.CCW, ring.Orientation())
	// Input is left alone
	assert.Equal(t, orb.Point{0, 10}, cw[1])
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	pts := bulgeArcPoints(orb.Point{0, 0}, orb.Point{10, 0}, 1, 16)

	require.Len(t, pts, 17)
	for _, p := range pts {
		assert.InDelta(t, 5, math.Hypot(p[0]-5, p[1]), 1e-9)
	}
	assert.InDelta(t, 0, pts[0][0], 1e-9)
	assert.InDelta(t, 10, pts[16][0], 1e-9)
}

func TestBulgeArcPoints_DegenerateChord(t *testing.T) {
	pts := bulgeArcPoints(orb.Point{3, 3}, orb.Point{3, 3}, 0.5, 8)
	assert.Len(t, pts, 2)
}

func TestParseGeoJSONBoundary_NonStringRoleIgnored(t *testing.T) {
	data := `{"type": "Feature", "properties": {"role": 3},
		"geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]}}`
	result := ParseGeoJSONBoundary([]byte(data))

	assert.Len(t, result.Polygons, 1)
	assert.Empty(t, result.Exclusions)
}
