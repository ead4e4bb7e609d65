// Package importer reads the inputs of a packing run: item manifests (CSV
// and Excel), boundary files (DXF and GeoJSON) and folders of image tiles.
// Manifest import supports automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/piwi3910/nanofiche/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult collects the items read from a manifest or image folder.
// Problems are reported per row so that one bad line does not abort the
// whole import.
type ImportResult struct {
	Items    []model.Item
	Errors   []string
	Warnings []string
}

// ColumnMapping holds the column index of each manifest field, or -1 when
// the field is absent.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Count    int
	Document int
}

// headerAliases lists the lower-cased header names accepted for each field.
var headerAliases = map[string][]string{
	"label":    {"label", "name", "source", "file", "document name", "title", "description", "item"},
	"width":    {"width", "w", "page width", "width pt", "x"},
	"height":   {"height", "h", "page height", "height pt", "y"},
	"count":    {"count", "pages", "page count", "quantity", "qty", "num", "n"},
	"document": {"document", "doc", "document index", "doc index", "volume"},
}

var delimiterNames = map[rune]string{',': "comma", ';': "semicolon", '\t': "tab", '|': "pipe"}

// readCSV parses every record with the given delimiter, tolerating stray
// quotes and ragged rows.
func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// delimiterScore rates how well delimiter splits data: ten points per
// record whose width matches the first record, plus that width. Splits into
// a single column score zero.
func delimiterScore(data []byte, delimiter rune) int {
	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil || len(records) == 0 {
		return 0
	}
	width := len(records[0])
	if width < 2 {
		return 0
	}
	score := width
	for _, rec := range records {
		if len(rec) == width {
			score += 10
		}
	}
	return score
}

// DetectCSVDelimiter picks comma, semicolon, tab or pipe, whichever splits
// the data into the most consistent multi-column records. Comma wins ties
// and is the fallback.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if score := delimiterScore(data, d); score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// positionalColumns is the layout assumed for manifests without a header:
// label, width, height, count, document.
var positionalColumns = ColumnMapping{Label: 0, Width: 1, Height: 2, Count: 3, Document: 4}

// field returns the mapping slot for a headerAliases key.
func (m *ColumnMapping) field(name string) *int {
	switch name {
	case "label":
		return &m.Label
	case "width":
		return &m.Width
	case "height":
		return &m.Height
	case "count":
		return &m.Count
	case "document":
		return &m.Document
	}
	return nil
}

// DetectColumns maps header cells to manifest fields. The first column
// matching a field wins. When no cell is a known header it returns
// positionalColumns and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{Label: -1, Width: -1, Height: -1, Count: -1, Document: -1}
	found := false
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		for key, aliases := range headerAliases {
			if !slices.Contains(aliases, name) {
				continue
			}
			found = true
			if slot := m.field(key); *slot == -1 {
				*slot = i
			}
		}
	}
	if !found {
		return positionalColumns, false
	}
	return m, true
}

// getCell returns the trimmed cell at idx, or "" when idx is outside row.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// manifestEntry is one parsed manifest row.
type manifestEntry struct {
	label    string
	width    float64
	height   float64
	count    int
	document int
}

// parseRow reads one manifest row. Count defaults to 1 and the document
// index to the entry's position among valid rows. A non-empty message means
// the row was rejected.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, entryCount int) (manifestEntry, string) {
	e := manifestEntry{
		label:    getCell(row, mapping.Label),
		count:    1,
		document: entryCount,
	}
	if e.label == "" {
		e.label = fmt.Sprintf("Document %d", entryCount+1)
	}

	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return e, fmt.Sprintf("%s: Missing width value", rowLabel)
	}
	width, err := strconv.ParseFloat(widthStr, 64)
	if err != nil {
		return e, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr)
	}

	heightStr := getCell(row, mapping.Height)
	if heightStr == "" {
		return e, fmt.Sprintf("%s: Missing height value", rowLabel)
	}
	height, err := strconv.ParseFloat(heightStr, 64)
	if err != nil {
		return e, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr)
	}

	if countStr := getCell(row, mapping.Count); countStr != "" {
		e.count, err = strconv.Atoi(countStr)
		if err != nil {
			return e, fmt.Sprintf("%s: Invalid page count '%s'", rowLabel, countStr)
		}
	}

	if docStr := getCell(row, mapping.Document); docStr != "" {
		e.document, err = strconv.Atoi(docStr)
		if err != nil || e.document < 0 {
			return e, fmt.Sprintf("%s: Invalid document index '%s'", rowLabel, docStr)
		}
	}

	if width <= 0 || height <= 0 || e.count <= 0 {
		return e, fmt.Sprintf("%s: Width, height, and page count must be positive", rowLabel)
	}
	e.width, e.height = width, height
	return e, ""
}

func isEmptyRow(row []string) bool {
	return !slices.ContainsFunc(row, func(c string) bool { return strings.TrimSpace(c) != "" })
}

// ImportItemsCSV reads a CSV page manifest, detecting the delimiter first.
// Widths and heights are page sizes in points; each row expands into
// count pages of the same document.
func ImportItemsCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimiterNames[delimiter]))
	}
	return importCSV(bytes.NewReader(data), delimiter, warnings)
}

// ImportItemsCSVFromReader reads a CSV manifest whose delimiter is already
// known.
func ImportItemsCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	return importCSV(r, delimiter, nil)
}

func importCSV(r io.Reader, delimiter rune, warnings []string) ImportResult {
	records, err := readCSV(r, delimiter)
	switch {
	case err != nil:
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}, Warnings: warnings}
	case len(records) == 0:
		return ImportResult{Errors: []string{"File is empty"}, Warnings: warnings}
	}
	return importFromRows(records, "Line", warnings)
}

// ImportItemsExcel reads a page manifest from the first sheet of an .xlsx
// workbook. Columns are detected the same way as for CSV.
func ImportItemsExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"Excel file has no sheets"}}
	}
	rows, err := f.GetRows(sheets[0])
	switch {
	case err != nil:
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	case len(rows) == 0:
		return ImportResult{Errors: []string{"Sheet is empty"}}
	}
	return importFromRows(rows, "Row", nil)
}

// ImportItems picks the manifest reader from the file extension.
func ImportItems(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportItemsExcel(path)
	default:
		return ImportItemsCSV(path)
	}
}

// headerLayout decides how to read rows from the first one. A recognised
// header must name Width and Height. A first row whose width cell is not a
// number is treated as an unknown header and skipped.
func headerLayout(first []string) (mapping ColumnMapping, skip bool, errMsg string) {
	mapping, known := DetectColumns(first)
	if known {
		var missing []string
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			return mapping, true, "Required columns not found in header: " + strings.Join(missing, ", ")
		}
		return mapping, true, ""
	}
	if len(first) >= 3 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(first[1]), 64); err != nil {
			return mapping, true, ""
		}
	}
	return mapping, false, ""
}

// importFromRows turns manifest rows into page items in manifest order.
// Pages are numbered per document across rows, so two rows of the same
// document continue each other.
func importFromRows(rows [][]string, rowPrefix string, warnings []string) ImportResult {
	result := ImportResult{Warnings: warnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, skip, errMsg := headerLayout(rows[0])
	if errMsg != "" {
		result.Errors = append(result.Errors, errMsg)
		return result
	}
	startRow := 0
	if skip {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	entries := 0
	nextPage := make(map[int]int)
	for i, row := range rows[startRow:] {
		if isEmptyRow(row) {
			continue
		}
		entry, msg := parseRow(row, mapping, fmt.Sprintf("%s %d", rowPrefix, startRow+i+1), entries)
		if msg != "" {
			result.Errors = append(result.Errors, msg)
			continue
		}
		entries++

		for range entry.count {
			item := model.NewPageItem(len(result.Items), entry.document, nextPage[entry.document], entry.width, entry.height)
			item.Source.Label = entry.label
			nextPage[entry.document]++
			result.Items = append(result.Items, item)
		}
	}

	if len(result.Items) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
