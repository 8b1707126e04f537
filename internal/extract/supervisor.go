package extract

import (
	"strings"

	"github.com/sitediary/sitediary/internal/sheet"
)

// Supervisor labour tables keep meaningful data in fixed columns even when
// leading cells are blank, so these extractors scan the physical grid by
// position instead of the normalized row sequence.
const (
	colLabel   = 1 // worker or group
	colHours   = 2
	colMachine = 3
	colComment = 10
)

// SupervisorComment is one labour-table row whose free-text comment column
// is non-empty. Hours is nil when the hours cell holds nothing numeric.
type SupervisorComment struct {
	Label        string
	Hours        *float64
	Machine      string
	StartSMU     string
	EndSMU       string
	MachineHours string
	Location     string
	Activity     string
	Material     string
	Comment      string
}

// labourStopMarkers end the labour table: any of these appearing in the
// upper-cased label column means the table is over.
var labourStopMarkers = []string{
	"PLANT NOT",
	"PLANNED WORKS",
	"INCIDENTS",
	"COMMUNICATIONS",
	"DAILY WORK EXTENSION",
	"DAILY WORK PHOTOS",
}

func stopsLabourSection(labelUpper string) bool {
	if labelUpper == "" {
		return false
	}
	for _, marker := range labourStopMarkers {
		if strings.Contains(labelUpper, marker) {
			return true
		}
	}
	return false
}

// SupervisorComments extracts the labour-table rows of a supervisor sheet.
// The table header is the first row whose hours column reads "hours" and
// machine column reads "machine"; everything before it is preamble. Rows
// with an empty comment column are dropped rather than kept with blanks.
func SupervisorComments(grid *sheet.Grid) []SupervisorComment {
	var entries []SupervisorComment
	headerSeen := false
	for r := 0; r < grid.RowCount(); r++ {
		if !headerSeen {
			hours := grid.Cell(r, colHours).Clean()
			machine := grid.Cell(r, colMachine).Clean()
			if strings.EqualFold(hours, "hours") && strings.EqualFold(machine, "machine") {
				headerSeen = true
			}
			continue
		}
		label := grid.Cell(r, colLabel).Clean()
		if stopsLabourSection(strings.ToUpper(label)) {
			break
		}
		comment := grid.Cell(r, colComment).Clean()
		if comment == "" {
			continue
		}
		var hours *float64
		if v, ok := sheet.ParseNumber(grid.Cell(r, colHours)); ok {
			hours = &v
		}
		entries = append(entries, SupervisorComment{
			Label:        label,
			Hours:        hours,
			Machine:      grid.Cell(r, colMachine).Clean(),
			StartSMU:     grid.Cell(r, 4).Clean(),
			EndSMU:       grid.Cell(r, 5).Clean(),
			MachineHours: grid.Cell(r, 6).Clean(),
			Location:     grid.Cell(r, 7).Clean(),
			Activity:     grid.Cell(r, 8).Clean(),
			Material:     grid.Cell(r, 9).Clean(),
			Comment:      comment,
		})
	}
	return entries
}

// ExtensionNotes returns the full pipe-joined text of every non-empty row
// strictly between the "Daily Work Extension" marker row and the "Daily
// Work Photos" marker row. Missing or inverted markers mean no notes.
func ExtensionNotes(grid *sheet.Grid) []string {
	startRow, endRow := -1, -1
	for r := 0; r < grid.RowCount(); r++ {
		text := strings.ToLower(grid.RowText(r))
		if startRow < 0 && strings.Contains(text, "daily work extension") {
			startRow = r + 1
			continue
		}
		if startRow >= 0 && strings.Contains(text, "daily work photos") {
			endRow = r
			break
		}
	}
	if startRow < 0 || endRow < 0 || startRow >= endRow {
		return nil
	}
	var notes []string
	for r := startRow; r < endRow; r++ {
		if text := grid.RowText(r); text != "" {
			notes = append(notes, text)
		}
	}
	return notes
}
