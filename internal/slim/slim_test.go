package slim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRunEmptyDirectory(t *testing.T) {
	result, err := Run(t.TempDir(), DefaultThresholdMB, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, 0.0, result.SavedMB)
}

func TestRunSkipsFilesUnderThreshold(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "small.xlsx"))

	result, err := Run(dir, DefaultThresholdMB, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
}

func TestRunProcessesWorkbooksOverThreshold(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "report.xlsx"))

	// Threshold zero makes every workbook a candidate.
	result, err := Run(dir, 0, nil)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, 0, result.Files[0].ImagesRemoved)
	assert.Greater(t, result.Files[0].OriginalMB, 0.0)
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Daily Report"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}
