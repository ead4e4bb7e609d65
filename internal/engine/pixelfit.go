package engine

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
)

// PackPixelGridRegion scales the region so that an exact pixel grid of
// Settings.BinWidth x Settings.BinHeight cells fits its bounds at
// Settings.DPI, then lays the grid from the top-left corner of the scaled
// region. The outer shape and every exclusion are scaled by the same factor
// about the origin, and the rebuilt region is returned with the result.
// Placements are in region millimetres with y pointing up.
func (p *Packer) PackPixelGridRegion(items []model.Item, outer orb.MultiPolygon, exclusions []orb.MultiPolygon) (model.PackingResult, *geometry.Region, error) {
	s := p.Settings
	if s.BinWidth <= 0 || s.BinHeight <= 0 {
		return model.PackingResult{}, nil, fmt.Errorf("bin size %dx%d must be positive", s.BinWidth, s.BinHeight)
	}
	if s.BinGap < 0 {
		return model.PackingResult{}, nil, fmt.Errorf("bin gap must not be negative, got %d", s.BinGap)
	}
	if s.DPI <= 0 {
		return model.PackingResult{}, nil, fmt.Errorf("dpi must be positive, got %d", s.DPI)
	}
	if len(outer) == 0 {
		return model.PackingResult{}, nil, errors.New("no region to pack into")
	}

	b := outer.Bound()
	curW, curH := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if curW <= 0 || curH <= 0 {
		return model.PackingResult{}, nil, fmt.Errorf("region bounds %.3f x %.3f are degenerate", curW, curH)
	}
	pc := RequiredCanvas(len(items), s.BinWidth, s.BinHeight, s.BinGap, curW/curH)
	factor := ScaleFactor(curW, curH, pc.WidthPx, pc.HeightPx, s.DPI)
	p.logger().Debug("pixel grid fit",
		"rows", pc.Rows, "cols", pc.Cols,
		"canvas_px", fmt.Sprintf("%dx%d", pc.WidthPx, pc.HeightPx),
		"scale", factor)

	scaled := make([]orb.MultiPolygon, len(exclusions))
	for i, ex := range exclusions {
		scaled[i] = geometry.Scale(ex, factor)
	}
	region, err := geometry.Build(geometry.Scale(outer, factor), scaled)
	if err != nil {
		return model.PackingResult{}, nil, fmt.Errorf("scaled region: %w", err)
	}

	plan := PixelGridPlan(items, s.BinWidth, s.BinHeight, s.BinGap, curW/curH)
	rb := region.Bound()
	mmPerPx := model.PxToMM(1, s.DPI)
	result := model.PackingResult{
		Algorithm: model.AlgorithmPixelGrid,
		Rows:      plan.Rows,
		Cols:      plan.Cols,
		Requested: len(items),
	}
	result.Placements = make([]model.Placement, 0, len(plan.Placements))
	var outside int
	for _, pl := range plan.Placements {
		pl.X = rb.Min[0] + pl.X*mmPerPx
		pl.Y = rb.Max[1] - pl.Y*mmPerPx
		pl.Width *= mmPerPx
		pl.Height *= mmPerPx
		minX, minY, maxX, maxY := pl.Corners()
		if !region.ContainsRect(orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}) {
			outside++
		}
		result.Placements = append(result.Placements, pl)
	}
	if outside > 0 {
		p.logger().Warn("grid cells fall outside the allowed region", "cells", outside)
	}
	result.Utilization = utilization(result.Placements, region.Area())
	result.RunID = model.NewRunID()
	result.CanvasWidth, result.CanvasHeight = CanvasForRegion(region, s.CanvasMargin, s.CanvasBin)
	if s.Recenter {
		c := rb.Center()
		result.Placements = model.Recenter(result.Placements, c[0], c[1])
		result.OffsetX, result.OffsetY = -c[0], -c[1]
	}

	p.logger().Info("pixel grid complete",
		"run", result.RunID,
		"placed", result.Placed(),
		"scale", fmt.Sprintf("%.4f", factor),
		"utilization", fmt.Sprintf("%.1f%%", result.Utilization*100))
	return result, region, nil
}
