package engine

import (
	"math"

	"github.com/piwi3910/nanofiche/internal/model"
)

// GridPlan is a rows x cols layout of equal slots.
type GridPlan struct {
	Rows  int
	Cols  int
	Score float64
}

// Capacity returns the number of slots.
func (g GridPlan) Capacity() int { return g.Rows * g.Cols }

// GridRowRange returns the row counts searched for n items.
func GridRowRange(n int) (lo, hi int) {
	root := math.Sqrt(float64(n))
	lo = int(0.5 * root)
	if lo < 1 {
		lo = 1
	}
	hi = int(2 * root)
	if hi > n {
		hi = n
	}
	return lo, hi
}

// GridScore rates a layout by slot fill minus a penalty for missing the
// target canvas aspect.
func GridScore(n, rows, cols int, binW, binH, targetAspect float64) float64 {
	fill := float64(n) / float64(rows*cols)
	aspect := float64(cols) * binW / (float64(rows) * binH)
	return fill - 0.1*math.Abs(aspect-targetAspect)/targetAspect
}

// PlanGrid picks the best scoring rows x cols for n bins. Ties keep the
// smaller row count.
func PlanGrid(n int, binW, binH, targetAspect float64) GridPlan {
	if n <= 0 {
		return GridPlan{}
	}
	if targetAspect <= 0 {
		targetAspect = 1
	}
	best := GridPlan{Score: math.Inf(-1)}
	lo, hi := GridRowRange(n)
	for rows := lo; rows <= hi; rows++ {
		cols := (n + rows - 1) / rows
		score := GridScore(n, rows, cols, binW, binH, targetAspect)
		if score > best.Score {
			best = GridPlan{Rows: rows, Cols: cols, Score: score}
		}
	}
	if best.Rows == 0 {
		cols := int(math.Ceil(math.Sqrt(float64(n))))
		rows := (n + cols - 1) / cols
		best = GridPlan{Rows: rows, Cols: cols, Score: GridScore(n, rows, cols, binW, binH, targetAspect)}
	}
	return best
}

// GridPack lays items row-major into the best grid for their count. The
// canvas origin is the top-left corner and every slot is binW x binH pixels.
func GridPack(items []model.Item, binW, binH, targetAspect float64) model.PackingResult {
	plan := PlanGrid(len(items), binW, binH, targetAspect)
	result := model.PackingResult{
		Algorithm:    model.AlgorithmGrid,
		Rows:         plan.Rows,
		Cols:         plan.Cols,
		CanvasWidth:  float64(plan.Cols) * binW,
		CanvasHeight: float64(plan.Rows) * binH,
		Requested:    len(items),
	}
	if plan.Capacity() == 0 {
		return result
	}
	result.Placements = make([]model.Placement, 0, len(items))
	for i, it := range items {
		row, col := i/plan.Cols, i%plan.Cols
		x := float64(col)*binW + binW/2
		y := float64(row)*binH + binH/2
		result.Placements = append(result.Placements, placementFor(it, x, y, binW, binH, 0))
	}
	result.Utilization = utilization(result.Placements, result.CanvasArea())
	return result
}
