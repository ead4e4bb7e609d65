package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RoleProperty is the feature property that marks a GeoJSON polygon as an
// exclusion rather than part of the outer boundary.
const RoleProperty = "role"

// ImportGeoJSONBoundary reads a GeoJSON file as a boundary.
func ImportGeoJSONBoundary(path string) BoundaryResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return BoundaryResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	return ParseGeoJSONBoundary(data)
}

// ParseGeoJSONBoundary accepts a FeatureCollection, a single Feature or a
// bare geometry. Polygon and MultiPolygon geometries are kept; features
// whose "role" property is "exclusion" (or "exclude") are returned in
// Exclusions, one entry per feature.
func ParseGeoJSONBoundary(data []byte) BoundaryResult {
	result := BoundaryResult{}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read GeoJSON: %v", err))
		return result
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot read GeoJSON: %v", err))
			return result
		}
		for i, f := range fc.Features {
			result.addFeature(f, fmt.Sprintf("Feature %d", i+1))
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot read GeoJSON: %v", err))
			return result
		}
		result.addFeature(f, "Feature 1")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot read GeoJSON: %v", err))
			return result
		}
		result.addGeometry(g.Geometry(), "Geometry", false)
	}

	if len(result.Polygons) == 0 {
		result.Errors = append(result.Errors, "No polygons found in GeoJSON")
	}
	sortLargestFirst(result.Polygons)
	return result
}

func (r *BoundaryResult) addFeature(f *geojson.Feature, label string) {
	// Non-string roles are ignored rather than rejected
	role, _ := f.Properties[RoleProperty].(string)
	role = strings.ToLower(role)
	exclude := role == "exclusion" || role == "exclude"
	r.addGeometry(f.Geometry, label, exclude)
}

func (r *BoundaryResult) addGeometry(g orb.Geometry, label string, exclude bool) {
	var mp orb.MultiPolygon
	switch g := g.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		mp = g
	case orb.Collection:
		for i, c := range g {
			r.addGeometry(c, fmt.Sprintf("%s.%d", label, i+1), exclude)
		}
		return
	case nil:
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: no geometry, skipped", label))
		return
	default:
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s is not an area, skipped", label, g.GeoJSONType()))
		return
	}

	if exclude {
		r.Exclusions = append(r.Exclusions, mp)
		return
	}
	r.Polygons = append(r.Polygons, mp...)
}
