package export

import (
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
)

// placementRing returns the closed outline of a placement with its rotation
// applied about the centre.
func placementRing(p model.Placement) orb.Ring {
	sin, cos := math.Sincos(p.Rotation * math.Pi / 180)
	hw, hh := p.Width/2, p.Height/2
	corners := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}

	ring := make(orb.Ring, 0, 5)
	for _, c := range corners {
		ring = append(ring, orb.Point{
			p.X + c[0]*cos - c[1]*sin,
			p.Y + c[0]*sin + c[1]*cos,
		})
	}
	return append(ring, ring[0])
}

// PlacementsFeatureCollection converts a result into GeoJSON. Every
// placement becomes a polygon feature carrying its item and source. When a
// region is given its outline is added with role "boundary" and each
// exclusion with role "exclusion", shifted by the result offset so that
// both line up with the placements.
func PlacementsFeatureCollection(result model.PackingResult, region *geometry.Region) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if region != nil {
		outer := geometry.Translate(region.Outer(), result.OffsetX, result.OffsetY)
		f := geojson.NewFeature(outer)
		f.Properties["role"] = "boundary"
		fc.Append(f)

		for _, group := range region.ExclusionGroups() {
			f := geojson.NewFeature(geometry.Translate(group, result.OffsetX, result.OffsetY))
			f.Properties["role"] = "exclusion"
			fc.Append(f)
		}
	}

	for _, p := range result.Placements {
		f := geojson.NewFeature(orb.Polygon{placementRing(p)})
		f.ID = p.ItemID
		f.Properties["role"] = "placement"
		f.Properties["item_index"] = p.ItemIndex
		f.Properties["source"] = p.Source.String()
		f.Properties["document"] = p.Source.Document
		f.Properties["page"] = p.Source.Page
		if p.Source.Path != "" {
			f.Properties["path"] = p.Source.Path
		}
		f.Properties["width"] = p.Width
		f.Properties["height"] = p.Height
		f.Properties["rotation"] = p.Rotation
		fc.Append(f)
	}

	fc.ExtraMembers = geojson.Properties{
		"run":         result.RunID,
		"algorithm":   string(result.Algorithm),
		"requested":   result.Requested,
		"utilization": result.Utilization,
	}
	return fc
}

// WritePlacementsGeoJSON writes the result as a GeoJSON FeatureCollection.
func WritePlacementsGeoJSON(path string, result model.PackingResult, region *geometry.Region) error {
	data, err := PlacementsFeatureCollection(result, region).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write GeoJSON: %w", err)
	}
	return nil
}
