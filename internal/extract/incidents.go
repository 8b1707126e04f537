package extract

import (
	"strings"

	"github.com/sitediary/sitediary/internal/sheet"
)

// IncidentEntry is one labelled row from the incidents table.
type IncidentEntry struct {
	Label    string
	Qty      float64
	Comments string
}

// Incidents extracts the incidents table: start at the INCIDENTS sentinel,
// consume a single QTY/COMMENTS header row if present, and stop at the
// COMMUNICATIONS or PRODUCTION sentinel. Rows with neither a quantity nor
// a comment are register padding and are dropped.
func Incidents(rows []sheet.Row) []IncidentEntry {
	var entries []IncidentEntry
	inSection := false
	headerSkipped := false
	for _, row := range rows {
		if !inSection {
			if strings.Contains(row.Upper, "INCIDENTS") {
				inSection = true
			}
			continue
		}
		if !headerSkipped {
			if strings.Contains(row.Upper, "QTY") || strings.Contains(row.Upper, "COMMENTS") {
				headerSkipped = true
				continue
			}
		}
		if strings.Contains(row.Upper, "COMMUNICATIONS") || strings.Contains(row.Upper, "PRODUCTION") {
			break
		}
		label := cellText(row, 0)
		if label == "" {
			continue
		}
		qty, _ := sheet.ParseNumber(cellAt(row, 1))
		comments := strings.TrimSpace(cellText(row, 2))
		if upper := strings.ToUpper(comments); upper == "NA" || upper == "N/A" {
			comments = ""
		}
		if qty == 0 && comments == "" {
			continue
		}
		entries = append(entries, IncidentEntry{
			Label:    strings.TrimSpace(label),
			Qty:      qty,
			Comments: comments,
		})
	}
	return entries
}
