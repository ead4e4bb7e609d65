package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LoadBoundary reads a boundary file, choosing the reader from the extension.
func LoadBoundary(path string) BoundaryResult {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dxf":
		return ImportDXFBoundary(path)
	case ".geojson", ".json":
		return ImportGeoJSONBoundary(path)
	default:
		return BoundaryResult{
			Errors: []string{fmt.Sprintf("Unsupported boundary format %q (want .dxf, .geojson or .json)", ext)},
		}
	}
}
