package dedupe

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeClientWorkbook(t *testing.T, path string, activities []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Daily Report"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "15/03/2024"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "DAILY WORK PRODUCTION"))
	row := 3
	for _, a := range activities {
		cell, err := excelize.CoordinatesToCellName(1, row)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, a))
		row++
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", cell, "DAILY WORK PHOTOS"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestGatherAndWriteReports(t *testing.T) {
	root := t.TempDir()
	writeClientWorkbook(t, filepath.Join(root, "a.xlsx"), []string{"Excavate cut 3", "Haul to dam"})
	writeClientWorkbook(t, filepath.Join(root, "b.xlsx"), []string{"Excavate cut 3"})

	sweep, err := Gather(root, nil)
	require.NoError(t, err)
	assert.Len(t, sweep.Activities, 3)
	assert.Len(t, sweep.DateSources["2024-03-15"], 2)
	assert.Empty(t, sweep.Issues)

	outputDir := filepath.Join(root, "analysis")
	require.NoError(t, WriteReports(sweep, outputDir))

	entries := readCSV(t, filepath.Join(outputDir, "activities_entries.csv"))
	require.NotEmpty(t, entries)
	assert.Equal(t, []string{
		"diary_date", "activity_text", "source_file", "worksheet",
		"unique_to_source", "status", "all_sources_for_date",
	}, entries[0])
	assert.Len(t, entries, 4) // header + three physical entries

	unique := readCSV(t, filepath.Join(outputDir, "activities_unique.csv"))
	require.Len(t, unique, 3) // header + two logical entries

	byText := map[string][]string{}
	for _, row := range unique[1:] {
		byText[row[1]] = row
	}
	shared, ok := byText["Excavate cut 3"]
	require.True(t, ok)
	assert.Equal(t, "present in all 2 copies", shared[4])

	single, ok := byText["Haul to dam"]
	require.True(t, ok)
	assert.Contains(t, single[4], "single instance in a.xlsx::Sheet1")

	// Personnel reports exist even when empty.
	personnel := readCSV(t, filepath.Join(outputDir, "personnel_entries.csv"))
	require.Len(t, personnel, 1)
}

func TestGatherEmptyDirectory(t *testing.T) {
	sweep, err := Gather(t.TempDir(), nil)
	require.NoError(t, err)
	require.Len(t, sweep.Issues, 1)
	assert.Contains(t, sweep.Issues[0], "no Excel files found")
}
