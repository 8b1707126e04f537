package sheet

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook wraps one open spreadsheet file. Each workbook is opened, fully
// scanned, and closed before the sweep moves to the next file.
type Workbook struct {
	file *excelize.File
	path string
}

// Open opens the workbook at path for reading.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Grid materializes the full cell grid of one worksheet. Cells are read
// twice, raw and formatted, so date-styled numeric serials can be told
// apart from plain numbers.
func (w *Workbook) Grid(sheetName string) (*Grid, error) {
	rawRows, err := w.file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading raw rows of %s!%s: %w", w.path, sheetName, err)
	}
	formattedRows, err := w.file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("reading rows of %s!%s: %w", w.path, sheetName, err)
	}

	cells := make([][]Cell, len(rawRows))
	for r, rawRow := range rawRows {
		width := len(rawRow)
		var formattedRow []string
		if r < len(formattedRows) {
			formattedRow = formattedRows[r]
			if len(formattedRow) > width {
				width = len(formattedRow)
			}
		}
		row := make([]Cell, width)
		for c := 0; c < width; c++ {
			raw := ""
			if c < len(rawRow) {
				raw = rawRow[c]
			}
			formatted := ""
			if c < len(formattedRow) {
				formatted = formattedRow[c]
			}
			row[c] = classify(raw, formatted)
		}
		cells[r] = row
	}
	return &Grid{cells: cells}, nil
}

// ListFiles walks dir recursively and returns every .xlsx workbook in
// sorted order, skipping Excel's ~$ lock files. A missing directory yields
// an empty list, not an error.
func ListFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "~$") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".xlsx") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
