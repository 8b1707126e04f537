package extract

import (
	"strings"

	"github.com/sitediary/sitediary/internal/sheet"
)

// Activities pulls the reported production lines from a client sheet: rows
// between the PRODUCTION and PHOTOS sentinels, excluding repeated header
// rows, with each embedded line break yielding a separate activity.
func Activities(rows []sheet.Row) []string {
	var activities []string
	inSection := false
	for _, row := range rows {
		if !inSection {
			if strings.Contains(row.Upper, "PRODUCTION") {
				inSection = true
			}
			continue
		}
		if strings.Contains(row.Upper, "PHOTOS") {
			break
		}
		if strings.Contains(row.Upper, "COMMUNICATIONS") || strings.Contains(row.Upper, "PRODUCTION") {
			continue
		}
		activities = append(activities, SplitMultiline(row.Joined)...)
	}
	return activities
}

// ActivityCells is the per-cell variant used by the dedupe review sweep.
// Splitting cell by cell keeps fragments attributable when one physical
// row spans several columns, and bare "PHOTOS" leftovers are dropped.
func ActivityCells(rows []sheet.Row) []string {
	var activities []string
	inSection := false
	for _, row := range rows {
		if !inSection {
			if strings.Contains(row.Upper, "PRODUCTION") {
				inSection = true
			}
			continue
		}
		if strings.Contains(row.Upper, "PHOTOS") {
			break
		}
		if strings.Contains(row.Upper, "COMMUNICATIONS") {
			continue
		}
		for _, cell := range row.Text {
			if cell == "" || strings.Contains(strings.ToUpper(cell), "PRODUCTION") {
				continue
			}
			for _, chunk := range SplitMultiline(cell) {
				if !strings.EqualFold(chunk, "PHOTOS") {
					activities = append(activities, chunk)
				}
			}
		}
	}
	return activities
}

// SplitMultiline splits a cell value on embedded line breaks into trimmed
// non-empty fragments. A value with no breaks comes back as itself.
func SplitMultiline(value string) []string {
	var parts []string
	for _, piece := range strings.Split(strings.ReplaceAll(value, "\r", ""), "\n") {
		if chunk := strings.TrimSpace(piece); chunk != "" {
			parts = append(parts, chunk)
		}
	}
	if len(parts) == 0 {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// NormalizeText collapses whitespace and lower-cases a value; this is the
// key under which differently-spaced copies of the same entry collapse.
func NormalizeText(value string) string {
	if value == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
