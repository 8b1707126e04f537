package extract

import (
	"strings"

	"github.com/sitediary/sitediary/internal/sheet"
)

// PersonnelEntry is one person row extracted from a team column block.
type PersonnelEntry struct {
	Team     string
	Name     string
	Position string
	Hours    float64
}

// minGroupGap is the smallest column distance between two distinct team
// blocks. Labels spilling out of merged cells produce spurious anchors one
// or two columns apart, which collapse into the preceding group.
const minGroupGap = 3

// Personnel extracts the per-person rows of the PERSONNEL section. The row
// after the start sentinel is the group header whose non-empty cells
// anchor one team column block each; each data row then contributes
// (name, position, hours) at fixed offsets from every anchor.
func Personnel(rows []sheet.Row) []PersonnelEntry {
	var people []PersonnelEntry
	start := -1
	for i, row := range rows {
		if strings.Contains(row.Upper, "PERSONNEL") {
			start = i
			break
		}
	}
	if start < 0 {
		return people
	}

	var groups []groupColumn
	groupRowSeen := false
	headerSeen := false
	for _, row := range rows[start+1:] {
		if strings.Contains(row.Upper, "PLANT") {
			break
		}
		if !groupRowSeen {
			groups = groupColumns(row)
			groupRowSeen = true
			continue
		}
		if !headerSeen && isColumnHeader(row) {
			headerSeen = true
			continue
		}
		if rowIsBlank(row) || rowIsTotal(row) {
			continue
		}
		for _, group := range groups {
			name := cellText(row, group.col)
			if !validName(name) {
				continue
			}
			position := cellText(row, group.col+1)
			hours, _ := sheet.ParseNumber(cellAt(row, group.col+2))
			people = append(people, PersonnelEntry{
				Team:     group.label,
				Name:     strings.TrimSpace(name),
				Position: strings.TrimSpace(position),
				Hours:    hours,
			})
		}
	}
	return people
}

type groupColumn struct {
	col   int
	label string
}

// groupColumns finds the team anchors in the group header row, collapsing
// anchors closer than minGroupGap into the one before them.
func groupColumns(row sheet.Row) []groupColumn {
	var collapsed []groupColumn
	for idx, label := range row.Text {
		if label == "" {
			continue
		}
		if len(collapsed) == 0 || idx-collapsed[len(collapsed)-1].col >= minGroupGap {
			collapsed = append(collapsed, groupColumn{col: idx, label: label})
		}
	}
	return collapsed
}

// isColumnHeader reports whether the row is the optional per-column header
// ("Name" / "Position" / ...) that some templates insert under the group
// header row.
func isColumnHeader(row sheet.Row) bool {
	hasName, hasPosition := false, false
	for _, text := range row.Text {
		switch strings.ToLower(text) {
		case "name":
			hasName = true
		case "position":
			hasPosition = true
		}
	}
	return hasName && hasPosition
}

func rowIsBlank(row sheet.Row) bool {
	for _, text := range row.Text {
		if text != "" {
			return false
		}
	}
	return true
}

func rowIsTotal(row sheet.Row) bool {
	for _, text := range row.Text {
		if text != "" && strings.HasPrefix(strings.ToLower(text), "total") {
			return true
		}
	}
	return false
}

// validName rejects cells that cannot be a person: blanks, stray header
// fragments, and purely numeric values such as hour totals bleeding in
// from a misaligned column.
func validName(value string) bool {
	text := strings.TrimSpace(value)
	if text == "" || isDigits(text) {
		return false
	}
	lower := strings.ToLower(text)
	return lower != "name" && lower != "contact"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func cellText(row sheet.Row, col int) string {
	if col < 0 || col >= len(row.Text) {
		return ""
	}
	return row.Text[col]
}

func cellAt(row sheet.Row, col int) sheet.Cell {
	if col < 0 || col >= len(row.Cells) {
		return sheet.Cell{}
	}
	return row.Cells[col]
}
