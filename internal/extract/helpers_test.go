package extract

import (
	"github.com/sitediary/sitediary/internal/sheet"
)

func textCells(values []string) []sheet.Cell {
	cells := make([]sheet.Cell, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = sheet.Cell{Kind: sheet.Empty}
		} else {
			cells[i] = sheet.Cell{Kind: sheet.Text, Text: v}
		}
	}
	return cells
}

func gridFrom(lines ...[]string) *sheet.Grid {
	cells := make([][]sheet.Cell, len(lines))
	for i, line := range lines {
		cells[i] = textCells(line)
	}
	return sheet.NewGrid(cells)
}

func rowsFrom(lines ...[]string) []sheet.Row {
	return gridFrom(lines...).Rows()
}
