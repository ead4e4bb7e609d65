package engine

import (
	"math"

	"github.com/piwi3910/nanofiche/internal/model"
)

// PixelCanvas is an exact pixel grid for fixed-size items separated by gaps.
type PixelCanvas struct {
	Rows     int
	Cols     int
	WidthPx  int
	HeightPx int
}

func pixelExtent(count, size, gap int) int {
	if count <= 0 {
		return 0
	}
	return count*(size+gap) - gap
}

// RequiredCanvas finds rows and cols with room for n items whose canvas
// aspect is close to targetAspect. It starts from ceil(sqrt(n)) rows and
// grows one dimension at a time, picking whichever lands nearer the target.
func RequiredCanvas(n, itemW, itemH, gap int, targetAspect float64) PixelCanvas {
	if n <= 0 || itemW <= 0 || itemH <= 0 {
		return PixelCanvas{}
	}
	if targetAspect <= 0 {
		targetAspect = 1
	}
	aspectOf := func(rows, cols int) float64 {
		return float64(pixelExtent(cols, itemW, gap)) / float64(pixelExtent(rows, itemH, gap))
	}

	rows := int(math.Ceil(math.Sqrt(float64(n))))
	cols := int(math.Ceil(float64(rows) * targetAspect * float64(itemH) / float64(itemW)))
	if cols < 1 {
		cols = 1
	}
	for rows*cols < n {
		widen := math.Abs(aspectOf(rows, cols+1) - targetAspect)
		deepen := math.Abs(aspectOf(rows+1, cols) - targetAspect)
		if widen <= deepen {
			cols++
		} else {
			rows++
		}
	}
	return PixelCanvas{
		Rows:     rows,
		Cols:     cols,
		WidthPx:  pixelExtent(cols, itemW, gap),
		HeightPx: pixelExtent(rows, itemH, gap),
	}
}

// ScaleFactor returns how much a region of curW x curH millimetres must be
// scaled so it covers a canvas of reqW x reqH pixels at dpi in both
// directions.
func ScaleFactor(curW, curH float64, reqWPx, reqHPx, dpi int) float64 {
	if curW <= 0 || curH <= 0 || dpi <= 0 {
		return 1
	}
	fx := model.PxToMM(reqWPx, dpi) / curW
	fy := model.PxToMM(reqHPx, dpi) / curH
	return math.Max(fx, fy)
}

// PixelGridPlan sizes the canvas with RequiredCanvas and lays items
// row-major from the top-left corner with gap pixels between them.
func PixelGridPlan(items []model.Item, itemW, itemH, gap int, targetAspect float64) model.PackingResult {
	pc := RequiredCanvas(len(items), itemW, itemH, gap, targetAspect)
	result := model.PackingResult{
		Algorithm:    model.AlgorithmPixelGrid,
		Rows:         pc.Rows,
		Cols:         pc.Cols,
		CanvasWidth:  float64(pc.WidthPx),
		CanvasHeight: float64(pc.HeightPx),
		Requested:    len(items),
	}
	if pc.Cols == 0 {
		return result
	}
	w, h := float64(itemW), float64(itemH)
	result.Placements = make([]model.Placement, 0, len(items))
	for i, it := range items {
		row, col := i/pc.Cols, i%pc.Cols
		x := float64(col*(itemW+gap)) + w/2
		y := float64(row*(itemH+gap)) + h/2
		result.Placements = append(result.Placements, placementFor(it, x, y, w, h, 0))
	}
	result.Utilization = utilization(result.Placements, result.CanvasArea())
	return result
}
