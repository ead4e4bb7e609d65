package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/nanofiche/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// RunSummary holds the data encoded into the proof's QR code.
type RunSummary struct {
	RunID         string  `json:"run"`
	Algorithm     string  `json:"algorithm"`
	Requested     int     `json:"requested"`
	Placed        int     `json:"placed"`
	Failed        int     `json:"failed"`
	Utilization   float64 `json:"utilization"`
	NominalHeight float64 `json:"nominal_height_mm,omitempty"`
	CanvasWidth   float64 `json:"canvas_width"`
	CanvasHeight  float64 `json:"canvas_height"`
	DPI           int     `json:"dpi"`
	Seed          int64   `json:"seed"`
}

// summaryQRSize is the QR code edge on the summary page in mm.
const summaryQRSize = 40.0

// NewRunSummary extracts the QR payload from a result and its settings.
func NewRunSummary(result model.PackingResult, settings model.PackSettings) RunSummary {
	return RunSummary{
		RunID:         result.RunID,
		Algorithm:     string(result.Algorithm),
		Requested:     result.Requested,
		Placed:        result.Placed(),
		Failed:        len(result.Failed),
		Utilization:   result.Utilization,
		NominalHeight: result.NominalHeight,
		CanvasWidth:   result.CanvasWidth,
		CanvasHeight:  result.CanvasHeight,
		DPI:           settings.DPI,
		Seed:          settings.Seed,
	}
}

// QRCode renders the summary as a PNG QR code.
func (s RunSummary) QRCode(size int) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run summary: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// drawSummaryQR places the summary QR code with its top-left corner at (x, y).
func drawSummaryQR(pdf *fpdf.Fpdf, s RunSummary, x, y float64) error {
	qrPNG, err := s.QRCode(256)
	if err != nil {
		return err
	}

	imgName := fmt.Sprintf("qr_run_%s", s.RunID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x, y, summaryQRSize, summaryQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(x, y+summaryQRSize+1)
	pdf.CellFormat(summaryQRSize, 3, "Run summary", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}
