// Package export writes packing results to proof PDFs, placement manifests
// and GeoJSON.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/paulmach/orb"
	"github.com/piwi3910/nanofiche/internal/engine"
	"github.com/piwi3910/nanofiche/internal/geometry"
	"github.com/piwi3910/nanofiche/internal/model"
)

// itemColor represents an RGB color for a placed item.
type itemColor struct {
	R, G, B int
}

// itemColors cycles per source document so pages of one document share a color.
var itemColors = []itemColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 10.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// maxListedFailures caps the failure list on the summary page.
const maxListedFailures = 20

// view maps layout coordinates onto the drawing area of a page.
type view struct {
	bound   orb.Bound
	scale   float64
	offsetX float64
	offsetY float64
	flipY   bool // Region layouts are y-up, bin canvases are y-down
}

func newView(bound orb.Bound, flipY bool) view {
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	w := math.Max(bound.Max[0]-bound.Min[0], 1e-9)
	h := math.Max(bound.Max[1]-bound.Min[1], 1e-9)
	scale := math.Min(drawWidth/w, drawHeight/h)

	return view{
		bound:   bound,
		scale:   scale,
		offsetX: marginLeft + (drawWidth-w*scale)/2,
		offsetY: drawAreaTop,
		flipY:   flipY,
	}
}

func (v view) point(x, y float64) (float64, float64) {
	px := v.offsetX + (x-v.bound.Min[0])*v.scale
	if v.flipY {
		return px, v.offsetY + (v.bound.Max[1]-y)*v.scale
	}
	return px, v.offsetY + (y-v.bound.Min[1])*v.scale
}

func (v view) size() (float64, float64) {
	return (v.bound.Max[0] - v.bound.Min[0]) * v.scale, (v.bound.Max[1] - v.bound.Min[1]) * v.scale
}

// ExportProof generates a proof PDF for a packing result: a layout page with
// the region outline, exclusions and every placement, followed by a summary
// page whose QR code carries the run summary. region may be nil for
// fixed-size bin layouts, in which case the canvas is drawn instead.
func ExportProof(path string, result model.PackingResult, region *geometry.Region, settings model.PackSettings) error {
	if result.Requested == 0 && len(result.Placements) == 0 {
		return fmt.Errorf("no items to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, result, region)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, result, settings); err != nil {
		return err
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render proof: %w", err)
	}
	return pdf.OutputFileAndClose(path)
}

// layoutBound returns the area the layout page has to show, in layout
// coordinates.
func layoutBound(result model.PackingResult, region *geometry.Region) orb.Bound {
	var b orb.Bound
	if region != nil {
		b = region.Bound()
		b.Min[0] += result.OffsetX
		b.Max[0] += result.OffsetX
		b.Min[1] += result.OffsetY
		b.Max[1] += result.OffsetY
	} else {
		b = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{result.CanvasWidth, result.CanvasHeight}}
	}
	for _, p := range result.Placements {
		b = b.Union(placementRing(p).Bound())
	}
	return b
}

// renderLayoutPage draws the region and placements on the current PDF page.
func renderLayoutPage(pdf *fpdf.Fpdf, result model.PackingResult, region *geometry.Region) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Layout %s: %s", result.RunID, result.Algorithm)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Placed: %d of %d | Failed: %d | Utilization: %.1f%%",
		result.Placed(), result.Requested, len(result.Failed), result.Utilization*100)
	if result.NominalHeight > 0 {
		stats += fmt.Sprintf(" | Item height: %.2f mm", result.NominalHeight)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	v := newView(layoutBound(result, region), region != nil)
	canvasW, canvasH := v.size()

	if region != nil {
		drawRegion(pdf, v, region, result.OffsetX, result.OffsetY)
	} else {
		drawCanvas(pdf, v, result)
	}

	for _, p := range result.Placements {
		drawPlacement(pdf, v, p)
	}

	drawDimensionAnnotations(pdf, v, canvasW, canvasH, region != nil)
}

func polygonPoints(v view, ring orb.Ring, dx, dy float64) []fpdf.PointType {
	pts := make([]fpdf.PointType, 0, len(ring))
	for _, p := range ring {
		x, y := v.point(p[0]+dx, p[1]+dy)
		pts = append(pts, fpdf.PointType{X: x, Y: y})
	}
	return pts
}

// drawRegion renders the outer polygons, their holes and the exclusions.
func drawRegion(pdf *fpdf.Fpdf, v view, region *geometry.Region, dx, dy float64) {
	pdf.SetLineWidth(0.4)
	for _, poly := range region.Outer() {
		for i, ring := range poly {
			if i == 0 {
				pdf.SetFillColor(238, 232, 213)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			pdf.SetDrawColor(100, 100, 100)
			pdf.Polygon(polygonPoints(v, ring, dx, dy), "FD")
		}
	}

	pdf.SetLineWidth(0.3)
	for _, poly := range region.Exclusions() {
		pdf.SetFillColor(255, 200, 200)
		pdf.SetDrawColor(200, 0, 0)
		pdf.Polygon(polygonPoints(v, poly[0], dx, dy), "FD")
		// Holes of an exclusion are allowed area again.
		pdf.SetFillColor(238, 232, 213)
		for _, hole := range poly[1:] {
			pdf.Polygon(polygonPoints(v, hole, dx, dy), "FD")
		}
	}
}

// drawCanvas renders the bin canvas and, for circular envelopes, the
// packing circle or ellipse.
func drawCanvas(pdf *fpdf.Fpdf, v view, result model.PackingResult) {
	x, y := v.point(0, 0)
	pdf.SetFillColor(238, 232, 213)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(x, y, result.CanvasWidth*v.scale, result.CanvasHeight*v.scale, "FD")

	if result.Radius <= 0 {
		return
	}
	cx, cy := v.point(result.CanvasWidth/2, result.CanvasHeight/2)
	ry := result.Radius * v.scale
	rx := ry
	if result.CanvasHeight > 0 {
		rx *= result.CanvasWidth / result.CanvasHeight
	}
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.SetDashPattern([]float64{1.5, 1}, 0)
	pdf.Ellipse(cx, cy, rx, ry, 0, "D")
	pdf.SetDashPattern([]float64{}, 0)
}

// drawPlacement draws one item as a rotated rectangle with its source label
// when there is room.
func drawPlacement(pdf *fpdf.Fpdf, v view, p model.Placement) {
	col := itemColors[p.Source.Document%len(itemColors)]
	if p.Source.Document < 0 {
		col = itemColors[0]
	}
	pw := p.Width * v.scale
	ph := p.Height * v.scale
	cx, cy := v.point(p.X, p.Y)

	pdf.TransformBegin()
	if p.Rotation != 0 {
		pdf.TransformRotate(p.Rotation, cx, cy)
	}

	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.1)
	pdf.Rect(cx-pw/2, cy-ph/2, pw, ph, "FD")

	if pw > 12 && ph > 6 {
		pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
		pdf.SetTextColor(0, 0, 0)
		label := p.Source.String()
		if labelW := pdf.GetStringWidth(label); labelW < pw-2 {
			pdf.SetXY(cx-labelW/2, cy-2)
			pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
		}
	}
	pdf.TransformEnd()
}

// drawDimensionAnnotations adds width and height labels outside the drawing.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, v view, canvasW, canvasH float64, regionUnits bool) {
	unit := "px"
	if regionUnits {
		unit = "mm"
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f %s", v.bound.Max[0]-v.bound.Min[0], unit)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(v.offsetX+(canvasW-wLabelW)/2, v.offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f %s", v.bound.Max[1]-v.bound.Min[1], unit)
	pdf.TransformBegin()
	pdf.TransformRotate(90, v.offsetX-3, v.offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(v.offsetX-3-hLabelW/2, v.offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

type summaryLine struct {
	label string
	value string
}

// renderSummaryPage draws counts, settings, failures and the run QR code.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.PackingResult, settings model.PackSettings) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	summary := NewRunSummary(result, settings)
	if err := drawSummaryQR(pdf, summary, pageWidth-marginRight-summaryQRSize, marginTop+18); err != nil {
		return err
	}

	y := marginTop + 18
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	canvas := fmt.Sprintf("%.1f x %.1f", result.CanvasWidth, result.CanvasHeight)
	if result.Radius > 0 {
		canvas += fmt.Sprintf(" (radius %.1f)", result.Radius)
	}
	summaryItems := []summaryLine{
		{"Run", result.RunID},
		{"Algorithm", string(result.Algorithm)},
		{"Items Requested", fmt.Sprintf("%d", result.Requested)},
		{"Items Placed", fmt.Sprintf("%d", result.Placed())},
		{"Shortfall", fmt.Sprintf("%d", result.Shortfall())},
		{"Utilization", fmt.Sprintf("%.1f%%", result.Utilization*100)},
		{"Canvas", canvas},
	}
	if result.Rows > 0 {
		summaryItems = append(summaryItems, summaryLine{"Grid", fmt.Sprintf("%d rows x %d columns", result.Rows, result.Cols)})
	}
	if result.Algorithm != model.AlgorithmGrid && result.Algorithm != model.AlgorithmPixelGrid &&
		result.Algorithm != model.AlgorithmCircular {
		sc := engine.ClampCanvas(result.CanvasWidth, result.CanvasHeight, settings.DPI)
		raster := fmt.Sprintf("%d x %d px at %d dpi", sc.WidthPx, sc.HeightPx, sc.DPI)
		switch {
		case sc.Exceeds:
			raster += " (over the pixel limit)"
		case sc.Clamped:
			raster += fmt.Sprintf(" (clamped from %d dpi)", sc.RequestedDPI)
		}
		summaryItems = append(summaryItems, summaryLine{"Raster", raster})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(45, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if len(result.Failed) > 0 {
		y += 5
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Items", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for i, f := range result.Failed {
			if i == maxListedFailures {
				pdf.SetXY(marginLeft+5, y)
				pdf.CellFormat(200, 5, fmt.Sprintf("... and %d more", len(result.Failed)-i), "", 0, "L", false, 0, "")
				y += 5
				break
			}
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, fmt.Sprintf("- Item %d: %s", f.ItemIndex+1, f.Reason), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Packing Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []summaryLine{
		{"Nominal Height", fmt.Sprintf("%.2f mm", settings.NominalHeight)},
		{"Gap", fmt.Sprintf("%.2f mm", settings.Gap)},
		{"Orientation", string(settings.Orientation)},
		{"Flexibility", fmt.Sprintf("%.0f%%", settings.Flexibility*100)},
		{"Seed", fmt.Sprintf("%d", settings.Seed)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		if y > pageHeight-marginBottom-8 {
			break
		}
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by nanofiche", "", 0, "C", false, 0, "")
	return nil
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 5
	}
}
