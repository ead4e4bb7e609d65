package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/xuri/excelize/v2"
)

// manifestHeader lists the placement manifest columns.
var manifestHeader = []string{
	"Item", "ID", "Source", "Document", "Page", "X", "Y", "Width", "Height", "Rotation",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// manifestRows returns one row per placement in result order.
func manifestRows(result model.PackingResult) [][]string {
	rows := make([][]string, 0, len(result.Placements))
	for _, p := range result.Placements {
		rows = append(rows, []string{
			strconv.Itoa(p.ItemIndex),
			p.ItemID,
			p.Source.String(),
			strconv.Itoa(p.Source.Document),
			strconv.Itoa(p.Source.Page),
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(p.Width),
			formatFloat(p.Height),
			formatFloat(p.Rotation),
		})
	}
	return rows
}

// WriteManifestCSV writes one row per placement, preceded by a header row.
func WriteManifestCSV(path string, result model.PackingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(manifestHeader); err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}
	if err := w.WriteAll(manifestRows(result)); err != nil {
		return fmt.Errorf("failed to write manifest rows: %w", err)
	}
	return f.Close()
}

// WriteManifestXLSX writes the placement manifest to a "Placements" sheet
// and, when any item failed, a "Failed" sheet listing the reasons. Numeric
// columns are stored as numbers.
func WriteManifestXLSX(path string, result model.PackingResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Placements"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(manifestHeader))
	for i, h := range manifestHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, p := range result.Placements {
		row := []interface{}{
			p.ItemIndex, p.ItemID, p.Source.String(), p.Source.Document, p.Source.Page,
			p.X, p.Y, p.Width, p.Height, p.Rotation,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write placement %d: %w", p.ItemIndex, err)
		}
	}

	if len(result.Failed) > 0 {
		const failed = "Failed"
		if _, err := f.NewSheet(failed); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}
		if err := f.SetSheetRow(failed, "A1", &[]interface{}{"Item", "ID", "Reason"}); err != nil {
			return fmt.Errorf("failed to write failure header: %w", err)
		}
		for i, fi := range result.Failed {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(failed, cell, &[]interface{}{fi.ItemIndex, fi.ItemID, fi.Reason}); err != nil {
				return fmt.Errorf("failed to write failure %d: %w", fi.ItemIndex, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}
