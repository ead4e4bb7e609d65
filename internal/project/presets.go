package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/piwi3910/nanofiche/internal/model"
)

// Preset is a named set of packing settings.
type Preset struct {
	Name        string             `toml:"name"`
	Description string             `toml:"description"`
	Settings    model.PackSettings `toml:"settings"`
	IsBuiltIn   bool               `toml:"-"`
}

type presetFile struct {
	Presets []Preset `toml:"preset"`
}

// DefaultPresetsPath returns ~/.nanofiche/presets.toml.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.toml")
}

// BuiltInPresets returns the presets that ship with the tool.
func BuiltInPresets() []Preset {
	base := model.DefaultSettings()

	dense := base
	dense.Algorithm = model.AlgorithmOptimized
	dense.Gap = 0.25
	dense.Flexibility = 0.15
	dense.PrioritizeFill = true

	fill := base
	fill.Algorithm = model.AlgorithmAdaptive
	fill.TargetFill = 0.9

	readable := base
	readable.Orientation = model.OrientationUpright
	readable.NominalHeight = 5.0
	readable.Gap = 1.0

	return []Preset{
		{Name: "archival", Description: "Streamline contours at the default size", Settings: base, IsBuiltIn: true},
		{Name: "dense", Description: "Optimized packing with a tight gap", Settings: dense, IsBuiltIn: true},
		{Name: "fill", Description: "Adaptive size search towards 90% fill", Settings: fill, IsBuiltIn: true},
		{Name: "readable", Description: "Larger upright pages", Settings: readable, IsBuiltIn: true},
	}
}

// SavePresets writes custom presets to a TOML file.
func SavePresets(path string, presets []Preset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create presets directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(presetFile{Presets: presets}); err != nil {
		return fmt.Errorf("failed to encode presets: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadPresets reads custom presets from a TOML file.
// Returns an empty slice if the file does not exist.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Preset{}, nil
		}
		return nil, err
	}

	var file presetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}
	for i, p := range file.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d has no name", i+1)
		}
	}
	if file.Presets == nil {
		file.Presets = []Preset{}
	}
	return file.Presets, nil
}

// FindPreset looks a preset up by name, case-insensitively. Custom presets
// shadow built-in ones of the same name.
func FindPreset(name string, custom []Preset) (Preset, bool) {
	for _, p := range custom {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	for _, p := range BuiltInPresets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
