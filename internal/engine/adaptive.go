package engine

import (
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
)

// Adaptive search bounds.
const (
	AdaptiveMinHeight   = 0.5
	AdaptiveMaxHeight   = 50.0
	AdaptiveIterations  = 10
	AdaptiveFlexibility = 0.15
)

// SizeTrial records one height tested by the adaptive search.
type SizeTrial struct {
	Height      float64 `json:"height"`
	Utilization float64 `json:"utilization"`
	PlacedRatio float64 `json:"placed_ratio"`
	Score       float64 `json:"score"`
}

// bestTrial returns the highest scoring trial, the first on ties.
func bestTrial(trials []SizeTrial) (SizeTrial, bool) {
	if len(trials) == 0 {
		return SizeTrial{}, false
	}
	best := trials[0]
	for _, tr := range trials[1:] {
		if tr.Score > best.Score {
			best = tr
		}
	}
	return best, true
}

func adaptiveScore(r model.PackingResult) (score, placedRatio float64) {
	if r.Requested > 0 {
		placedRatio = float64(r.Placed()) / float64(r.Requested)
	}
	return 0.7*r.Utilization + 0.3*placedRatio, placedRatio
}

// Adaptive bisects the item height, packing the region at each test height,
// and returns the best scoring result together with every trial. The best
// result is the highest score seen, not the last one tried.
func (p *Packer) Adaptive(items []model.Item, region *geometry.Region) (model.PackingResult, []SizeTrial) {
	run := newOptimizedRun(p, region)
	target := p.Settings.TargetFill
	lo, hi := AdaptiveMinHeight, AdaptiveMaxHeight

	var best model.PackingResult
	bestScore := -1.0
	trials := make([]SizeTrial, 0, AdaptiveIterations)
	for i := 0; i < AdaptiveIterations; i++ {
		h := (lo + hi) / 2
		r := run.pack(items, h, AdaptiveFlexibility, p.rng())
		score, ratio := adaptiveScore(r)
		trials = append(trials, SizeTrial{Height: h, Utilization: r.Utilization, PlacedRatio: ratio, Score: score})
		p.logger().Debug("adaptive trial", "iteration", i+1, "height", h, "placed", r.Placed(), "utilization", r.Utilization, "score", score)

		if score > bestScore {
			best, bestScore = r, score
		}

		// Missing items mean the height is too large. Once everything fits,
		// keep growing until the fill reaches the target.
		switch {
		case r.Placed() < len(items):
			hi = h
		case r.Utilization == target:
			hi = h
		default:
			lo = h
		}
	}
	best.Algorithm = model.AlgorithmAdaptive
	return best, trials
}
