package sheet

import "strings"

// Grid is the full rectangular cell contents of one worksheet. It keeps
// every physical row, including blank ones, so extractors that depend on
// exact row/column positions can index into it directly.
type Grid struct {
	cells [][]Cell
}

// RowCount returns the number of physical rows in the grid.
func (g *Grid) RowCount() int {
	return len(g.cells)
}

// Cell returns the cell at the given zero-based row and column, or an
// empty cell when the position is out of range. Workbook readers trim
// trailing blanks per row, so out-of-range reads are routine.
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.cells) {
		return Cell{Kind: Empty}
	}
	r := g.cells[row]
	if col < 0 || col >= len(r) {
		return Cell{Kind: Empty}
	}
	return r[col]
}

// RowText joins the non-empty cleaned cell texts of one physical row with
// " | ". Marker-row detection for the extension-note range matches against
// this form.
func (g *Grid) RowText(row int) string {
	if row < 0 || row >= len(g.cells) {
		return ""
	}
	var parts []string
	for _, c := range g.cells[row] {
		if text := c.Clean(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " | ")
}

// Row is one non-blank worksheet row in normalized form: the original
// cells, the per-cell trimmed text, the space-joined line, and an
// upper-cased copy of the line for keyword matching. Rows whose joined
// line would be empty are never constructed.
type Row struct {
	Cells  []Cell
	Text   []string
	Joined string
	Upper  string
}

// Rows converts the grid into the normalized row sequence consumed by the
// section extractors. The sequence is fully materialized so extractors can
// make independent passes over it.
func (g *Grid) Rows() []Row {
	var rows []Row
	for _, cells := range g.cells {
		text := make([]string, len(cells))
		any := false
		for i, c := range cells {
			text[i] = strings.TrimSpace(c.Text)
			if text[i] != "" {
				any = true
			}
		}
		if !any {
			continue
		}
		var parts []string
		for _, t := range text {
			if t != "" {
				parts = append(parts, t)
			}
		}
		joined := strings.TrimSpace(strings.Join(parts, " "))
		if joined == "" {
			continue
		}
		rows = append(rows, Row{
			Cells:  cells,
			Text:   text,
			Joined: joined,
			Upper:  strings.ToUpper(joined),
		})
	}
	return rows
}

// NewGrid builds a grid directly from tagged cells. Extractor tests use it
// to describe sheet layouts without workbook fixtures.
func NewGrid(cells [][]Cell) *Grid {
	return &Grid{cells: cells}
}
