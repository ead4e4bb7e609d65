package engine

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
)

// Packer runs the placement planners. It keeps no state between calls, so
// one Packer may be reused for any number of runs.
type Packer struct {
	Settings model.PackSettings
	Logger   *log.Logger
}

func New(settings model.PackSettings) *Packer {
	return &Packer{Settings: settings, Logger: log.New(io.Discard)}
}

func (p *Packer) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}

// rng returns a fresh random source seeded from the settings so that every
// run with the same inputs produces the same layout.
func (p *Packer) rng() *rand.Rand {
	return rand.New(rand.NewSource(p.Settings.Seed))
}

// Pack places aspect-ratio items inside region with the configured region
// algorithm. Capacity shortfalls and per-item failures are reported in the
// result, never as errors.
func (p *Packer) Pack(items []model.Item, region *geometry.Region) (model.PackingResult, error) {
	if region == nil {
		return model.PackingResult{}, errors.New("no region to pack into")
	}
	if err := p.Settings.Validate(); err != nil {
		return model.PackingResult{}, fmt.Errorf("invalid settings: %w", err)
	}

	var result model.PackingResult
	switch p.Settings.Algorithm {
	case model.AlgorithmStreamline:
		result = p.Streamline(items, region, p.nominalHeight(items, region))
	case model.AlgorithmOptimized:
		result = p.Optimized(items, region, p.nominalHeight(items, region))
	case model.AlgorithmAdaptive:
		var trials []SizeTrial
		result, trials = p.Adaptive(items, region)
		if best, ok := bestTrial(trials); ok {
			p.logger().Info("adaptive search",
				"trials", len(trials),
				"height", fmt.Sprintf("%.3f", best.Height),
				"score", fmt.Sprintf("%.3f", best.Score))
		}
	default:
		return model.PackingResult{}, fmt.Errorf("algorithm %q packs fixed-size bins, use PackBins", p.Settings.Algorithm)
	}

	result.RunID = model.NewRunID()
	result.CanvasWidth, result.CanvasHeight = CanvasForRegion(region, p.Settings.CanvasMargin, p.Settings.CanvasBin)
	if p.Settings.Recenter {
		c := region.Bound().Center()
		result.Placements = model.Recenter(result.Placements, c[0], c[1])
		result.OffsetX, result.OffsetY = -c[0], -c[1]
	}

	p.logger().Info("packing complete",
		"run", result.RunID,
		"algorithm", result.Algorithm,
		"placed", result.Placed(),
		"requested", result.Requested,
		"failed", len(result.Failed),
		"utilization", fmt.Sprintf("%.1f%%", result.Utilization*100))
	if !result.Complete() {
		p.logger().Warn("not every item was placed", "shortfall", result.Shortfall())
	}
	return result, nil
}

// nominalHeight returns the configured item height, or a height solved from
// the region area when OptimizeDPI is set.
func (p *Packer) nominalHeight(items []model.Item, region *geometry.Region) float64 {
	s := p.Settings
	if !s.OptimizeDPI || len(items) == 0 {
		return s.NominalHeight
	}
	h := SolveNominalHeight(items, region.Area(), s.NominalHeight, s.Gap, s.MinHeight, s.MaxHeight)
	p.logger().Debug("solved nominal height", "items", len(items), "height", h, "area", region.Area())
	return h
}

// utilization returns placed area over the given area.
func utilization(placements []model.Placement, area float64) float64 {
	if area <= 0 {
		return 0
	}
	var used float64
	for _, pl := range placements {
		used += pl.Area()
	}
	return used / area
}

func placementFor(it model.Item, x, y, w, h, rotation float64) model.Placement {
	return model.Placement{
		ItemIndex: it.Index,
		ItemID:    it.ID,
		Source:    it.Source,
		X:         x,
		Y:         y,
		Width:     w,
		Height:    h,
		Rotation:  rotation,
	}
}
