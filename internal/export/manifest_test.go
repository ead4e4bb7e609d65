package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteManifestCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placements.csv")
	require.NoError(t, WriteManifestCSV(path, buildTestResult()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, manifestHeader, rows[0])
	assert.Equal(t, []string{"0", "p0", "Report p1", "0", "0", "-30.0000", "-20.0000", "6.0000", "8.0000", "0.0000"}, rows[1])
	assert.Equal(t, "doc 2 p1", rows[3][2])
	assert.Equal(t, "33.5000", rows[3][9])
}

func TestWriteManifestCSV_BadPath(t *testing.T) {
	assert.Error(t, WriteManifestCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), buildTestResult()))
}

func TestWriteManifestXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placements.xlsx")
	require.NoError(t, WriteManifestXLSX(path, buildTestResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Placements", "Failed"}, f.GetSheetList())

	rows, err := f.GetRows("Placements")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, manifestHeader, rows[0])
	assert.Equal(t, "p1", rows[2][1])
	assert.Equal(t, "Report p2", rows[2][2])

	failed, err := f.GetRows("Failed")
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, []string{"3", "p3", "contours exhausted"}, failed[1])
}

func TestWriteManifestXLSX_NoFailuresSheet(t *testing.T) {
	result := buildTestResult()
	result.Failed = nil
	path := filepath.Join(t.TempDir(), "placements.xlsx")
	require.NoError(t, WriteManifestXLSX(path, result))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Placements"}, f.GetSheetList())
}
