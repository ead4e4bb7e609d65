package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/nanofiche/internal/model"
)

// LayoutVersion is written into every layout file.
const LayoutVersion = "1.0.0"

// Layout is a saved packing job: the settings that produced a result and
// the result itself.
type Layout struct {
	Version   string              `json:"version"`
	CreatedAt string              `json:"created_at"`
	Settings  model.PackSettings  `json:"settings"`
	Result    model.PackingResult `json:"result"`
}

// SaveLayout writes a layout job file as indented JSON, creating parent
// directories as needed.
func SaveLayout(path string, settings model.PackSettings, result model.PackingResult) error {
	layout := Layout{
		Version:   LayoutVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
		Result:    result,
	}
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}
	return nil
}

// LoadLayout reads a layout job file. The caller is responsible for
// re-validating the settings before packing with them again.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout file: %w", err)
	}
	var layout Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout file: %w", err)
	}
	if layout.Version == "" {
		return Layout{}, fmt.Errorf("invalid layout file: missing version field")
	}
	if layout.Result.Placements == nil {
		layout.Result.Placements = []model.Placement{}
	}
	return layout, nil
}
