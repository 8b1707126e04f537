package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, set func(f *excelize.File)) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f := excelize.NewFile()
	set(f)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "nested/a.xlsx", "~$a.xlsx", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	files, err := ListFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "b.xlsx"), files[0])
	assert.Equal(t, filepath.Join(dir, "nested", "a.xlsx"), files[1])
}

func TestListFilesMissingDir(t *testing.T) {
	files, err := ListFiles(filepath.Join(t.TempDir(), "nowhere"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWorkbookGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	writeWorkbook(t, path, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Daily Report"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", 9.5))
	})

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	require.Equal(t, []string{"Sheet1"}, wb.SheetNames())

	grid, err := wb.Grid("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, Text, grid.Cell(0, 0).Kind)
	assert.Equal(t, "Daily Report", grid.Cell(0, 0).Text)
	assert.Equal(t, Number, grid.Cell(1, 1).Kind)
	assert.Equal(t, 9.5, grid.Cell(1, 1).Number)
}
