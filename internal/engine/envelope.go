package engine

import (
	"fmt"

	"github.com/piwi3910/nanofiche/internal/model"
)

// PackBins lays out fixed-size bins of Settings.BinWidth x Settings.BinHeight
// pixels for the given envelope. The pixelgrid algorithm ignores the
// envelope shape and grids the bins with Settings.BinGap between them.
func (p *Packer) PackBins(items []model.Item, env model.EnvelopeSpec) (model.PackingResult, error) {
	s := p.Settings
	if s.BinWidth <= 0 || s.BinHeight <= 0 {
		return model.PackingResult{}, fmt.Errorf("bin size %dx%d must be positive", s.BinWidth, s.BinHeight)
	}
	w, h := float64(s.BinWidth), float64(s.BinHeight)
	aspect := env.AspectRatio
	if aspect <= 0 {
		aspect = 1
	}

	var result model.PackingResult
	switch {
	case s.Algorithm == model.AlgorithmPixelGrid:
		if s.BinGap < 0 {
			return model.PackingResult{}, fmt.Errorf("bin gap must not be negative, got %d", s.BinGap)
		}
		result = PixelGridPlan(items, s.BinWidth, s.BinHeight, s.BinGap, aspect)
	case env.Shape == model.EnvelopeSquare:
		result = GridPack(items, w, h, 1)
	case env.Shape == model.EnvelopeRectangle:
		result = GridPack(items, w, h, aspect)
	case env.Shape == model.EnvelopeCircle:
		result = CircularPack(items, w, h)
	case env.Shape == model.EnvelopeEllipse:
		result = EllipsePack(items, w, h, aspect)
	default:
		return model.PackingResult{}, fmt.Errorf("unsupported envelope shape %q", env.Shape)
	}
	result.RunID = model.NewRunID()

	p.logger().Info("bin layout complete",
		"run", result.RunID,
		"algorithm", result.Algorithm,
		"envelope", env.Shape,
		"placed", result.Placed(),
		"requested", result.Requested,
		"canvas", fmt.Sprintf("%.0fx%.0f", result.CanvasWidth, result.CanvasHeight))
	if !result.Complete() {
		p.logger().Warn("not every bin was placed", "shortfall", result.Shortfall())
	}
	return result, nil
}
