package extract

import (
	"strings"

	"github.com/sitediary/sitediary/internal/sheet"
)

// DelayEntry is one free-text line from the delays/opportunities section.
type DelayEntry struct {
	Description string
}

// Delays extracts every line between the DELAYS-OPPORTUNITY and HSEQ
// sentinels. Each newline-embedded fragment is its own entry; delays carry
// no quantity or comment.
func Delays(rows []sheet.Row) []DelayEntry {
	var entries []DelayEntry
	inSection := false
	for _, row := range rows {
		if !inSection {
			if strings.Contains(row.Upper, "DELAYS-OPPORTUNITY") {
				inSection = true
			}
			continue
		}
		if strings.Contains(row.Upper, "HSEQ") {
			break
		}
		for _, chunk := range SplitMultiline(row.Joined) {
			entries = append(entries, DelayEntry{Description: chunk})
		}
	}
	return entries
}
