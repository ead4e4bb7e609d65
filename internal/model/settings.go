package model

import (
	"fmt"
	"strings"
)

// Algorithm selects the planner that produces placements.
type Algorithm string

const (
	AlgorithmStreamline Algorithm = "streamline" // Contour-following placement in item order
	AlgorithmOptimized  Algorithm = "optimized"  // Randomized candidate packing with collision checks
	AlgorithmAdaptive   Algorithm = "adaptive"   // Size search driving the optimized packer
	AlgorithmGrid       Algorithm = "grid"       // Fixed-size bins on a scored grid
	AlgorithmPixelGrid  Algorithm = "pixelgrid"  // Fixed-size bins with pixel gaps
	AlgorithmCircular   Algorithm = "circular"   // Fixed-size bins on a spiral inside a circle
)

// RegionAlgorithms are the planners that work on an arbitrary region.
var RegionAlgorithms = []Algorithm{AlgorithmStreamline, AlgorithmOptimized, AlgorithmAdaptive}

// ParseAlgorithm accepts algorithm names case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case AlgorithmStreamline, AlgorithmOptimized, AlgorithmAdaptive,
		AlgorithmGrid, AlgorithmPixelGrid, AlgorithmCircular:
		return a, nil
	default:
		return "", fmt.Errorf("unknown algorithm %q", s)
	}
}

// PackSettings holds every engine parameter. Lengths are in region units,
// which are millimetres for boundary files.
type PackSettings struct {
	Algorithm Algorithm `json:"algorithm" toml:"algorithm"`

	// Item sizing
	NominalHeight float64 `json:"nominal_height" toml:"nominal_height"` // Base item height in mm
	Gap           float64 `json:"gap" toml:"gap"`                       // Minimum gap between items in mm
	OptimizeDPI   bool    `json:"optimize_dpi" toml:"optimize_dpi"`     // Solve nominal height from region area
	MinHeight     float64 `json:"min_height" toml:"min_height"`         // Lower clamp for solved heights in mm
	MaxHeight     float64 `json:"max_height" toml:"max_height"`         // Upper clamp for solved heights in mm

	// Streamline placement
	Orientation    Orientation `json:"orientation" toml:"orientation"`         // "tangent" or "upright"
	StreamlineStep float64     `json:"streamline_step" toml:"streamline_step"` // Inward offset per contour in mm
	MaxContours    int         `json:"max_contours" toml:"max_contours"`       // Upper bound on offset contours

	// Optimized / adaptive packing
	MaxAttempts    int     `json:"max_attempts" toml:"max_attempts"`       // Candidates tried per item size
	Flexibility    float64 `json:"flexibility" toml:"flexibility"`         // Allowed size variation (0.1 = 10%)
	PrioritizeFill bool    `json:"prioritize_fill" toml:"prioritize_fill"` // Place largest items first
	TargetFill     float64 `json:"target_fill" toml:"target_fill"`         // Adaptive target utilization
	Seed           int64   `json:"seed" toml:"seed"`                       // Random source seed

	// Output canvas
	DPI          int     `json:"dpi" toml:"dpi"`                     // Raster resolution requested
	CanvasMargin float64 `json:"canvas_margin" toml:"canvas_margin"` // Margin around region bounds in mm
	CanvasBin    float64 `json:"canvas_bin" toml:"canvas_bin"`       // Round canvas up to this multiple in mm, 0 = off
	Recenter     bool    `json:"recenter" toml:"recenter"`           // Move the region centre to the origin

	// Fixed-size bins
	BinWidth  int          `json:"bin_width" toml:"bin_width"`   // px
	BinHeight int          `json:"bin_height" toml:"bin_height"` // px
	BinGap    int          `json:"bin_gap" toml:"bin_gap"`       // px, pixel grid only
	Envelope  EnvelopeSpec `json:"envelope" toml:"envelope"`
}

func DefaultSettings() PackSettings {
	return PackSettings{
		Algorithm:      AlgorithmStreamline,
		NominalHeight:  3.0,
		Gap:            0.5,
		OptimizeDPI:    false,
		MinHeight:      1.0,
		MaxHeight:      50.0,
		Orientation:    OrientationTangent,
		StreamlineStep: 2.0,
		MaxContours:    200,
		MaxAttempts:    1000,
		Flexibility:    0.1,
		PrioritizeFill: true,
		TargetFill:     0.85,
		Seed:           42,
		DPI:            1200,
		CanvasMargin:   5.0,
		CanvasBin:      0, // Disabled by default
		Recenter:       true,
		BinWidth:       2000,
		BinHeight:      2000,
		BinGap:         50,
		Envelope: EnvelopeSpec{
			Shape:       EnvelopeSquare,
			AspectRatio: 1.0,
		},
	}
}

// Validate reports the first setting that would make a planner misbehave.
func (s PackSettings) Validate() error {
	switch {
	case s.NominalHeight <= 0:
		return fmt.Errorf("nominal height must be positive, got %.3f", s.NominalHeight)
	case s.Gap < 0:
		return fmt.Errorf("gap must not be negative, got %.3f", s.Gap)
	case s.StreamlineStep <= 0:
		return fmt.Errorf("streamline step must be positive, got %.3f", s.StreamlineStep)
	case s.MaxContours < 1:
		return fmt.Errorf("max contours must be at least 1, got %d", s.MaxContours)
	case s.MinHeight <= 0 || s.MaxHeight < s.MinHeight:
		return fmt.Errorf("height clamp [%.2f, %.2f] is invalid", s.MinHeight, s.MaxHeight)
	case s.Flexibility < 0:
		return fmt.Errorf("flexibility must not be negative, got %.3f", s.Flexibility)
	case s.MaxAttempts < 1:
		return fmt.Errorf("max attempts must be at least 1, got %d", s.MaxAttempts)
	case s.DPI <= 0:
		return fmt.Errorf("dpi must be positive, got %d", s.DPI)
	}
	if s.Orientation != OrientationTangent && s.Orientation != OrientationUpright {
		return fmt.Errorf("unknown orientation %q", s.Orientation)
	}
	return nil
}
