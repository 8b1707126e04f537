package extract

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sitediary/sitediary/internal/sheet"
)

// SheetVisit carries everything an extractor needs for one worksheet: the
// positional grid, the normalized row sequence, and the resolved diary
// date. HasDate is false when no date could be resolved; such sheets must
// be skipped by every extractor.
type SheetVisit struct {
	Path    string
	Sheet   string
	Grid    *sheet.Grid
	Rows    []sheet.Row
	Date    time.Time
	HasDate bool
}

// Source is the file::sheet label identifying one copy of a diary day.
func (v SheetVisit) Source() string {
	return v.Path + "::" + v.Sheet
}

// VisitSheets walks every workbook under dir in sorted order and calls fn
// once per non-empty worksheet. Unreadable workbooks are logged and
// skipped; the sweep never aborts on a single bad file. Paths handed to fn
// are relative to root when possible.
func VisitSheets(dir, root string, logger *slog.Logger, fn func(v SheetVisit)) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	files, err := sheet.ListFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		wb, err := sheet.Open(path)
		if err != nil {
			logger.Warn("skipping unreadable workbook", "path", path, "error", err)
			continue
		}
		relative := relativeTo(path, root)
		for _, name := range wb.SheetNames() {
			grid, err := wb.Grid(name)
			if err != nil {
				logger.Warn("skipping unreadable sheet", "path", path, "sheet", name, "error", err)
				continue
			}
			rows := grid.Rows()
			if len(rows) == 0 {
				continue
			}
			date, ok := DiaryDate(rows)
			if !ok {
				logger.Info("no diary date resolved", "path", relative, "sheet", name)
			}
			fn(SheetVisit{
				Path:    relative,
				Sheet:   name,
				Grid:    grid,
				Rows:    rows,
				Date:    date,
				HasDate: ok,
			})
		}
		wb.Close()
	}
	return nil
}

func relativeTo(path, root string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
