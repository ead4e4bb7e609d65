package importer

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/nanofiche/internal/model"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// imageExtensions lists the tile formats a bin folder may contain.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".tif":  true,
	".bmp":  true,
	".gif":  true,
}

// ValidateImageFolder lists the image tiles in dir and turns each one into a
// fixed-size bin item. Only headers are decoded. Files are taken in
// case-insensitive name order; an image larger than binW x binH is reported
// and skipped, as is anything that cannot be decoded.
func ValidateImageFolder(dir string, binW, binH int) ImportResult {
	result := ImportResult{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read folder: %v", err))
		return result
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	if len(names) == 0 {
		result.Errors = append(result.Errors, "No supported images found")
		return result
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		w, h, err := imageSize(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if w > binW || h > binH {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %dx%d px exceeds bin size %dx%d px", name, w, h, binW, binH))
			continue
		}
		if w != binW || h != binH {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: %dx%d px is smaller than the bin and will be padded", name, w, h))
		}
		result.Items = append(result.Items, model.NewBinItem(len(result.Items), path, w, h))
	}

	return result
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
