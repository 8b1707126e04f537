package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sitediary/sitediary/internal/sheet"
)

// diaryDateLayouts is the ranked list of explicit string formats tried for
// the diary date. Order matters: ISO forms first, then day-first numeric
// forms, then named-month variants in both orders.
var diaryDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// numericDateRE is the last-resort scan for DD<sep>MM<sep>YY(YY) anywhere
// in the sheet text. The word boundaries keep it from biting into longer
// digit runs.
var numericDateRE = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)

// DiaryDate resolves the single calendar date a sheet describes.
//
// Priority order, stopping at the first success:
//  1. any date-typed cell, scanned in row then column order;
//  2. any cell text that parses against the explicit layout list;
//  3. a permissive numeric-date regex over all joined lines, where
//     2-digit years mean 2000+YY.
//
// A typed date cell always wins over a string match, regardless of where
// either sits in the sheet. The second return is false when no date can be
// resolved; such sheets are excluded from all extraction.
func DiaryDate(rows []sheet.Row) (time.Time, bool) {
	for _, row := range rows {
		for _, cell := range row.Cells {
			if cell.Kind == sheet.Date {
				return dateOnly(cell.Date), true
			}
		}
	}

	for _, row := range rows {
		for _, text := range row.Text {
			if text == "" {
				continue
			}
			if d, ok := parseDateString(text); ok {
				return d, true
			}
		}
	}

	var blob strings.Builder
	for i, row := range rows {
		if i > 0 {
			blob.WriteByte(' ')
		}
		blob.WriteString(row.Joined)
	}
	if d, ok := scanNumericDate(blob.String()); ok {
		return d, true
	}
	return time.Time{}, false
}

func parseDateString(value string) (time.Time, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return time.Time{}, false
	}
	for _, layout := range diaryDateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// scanNumericDate returns the first plausible day-first numeric date found
// in text.
func scanNumericDate(text string) (time.Time, bool) {
	for _, m := range numericDateRE.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 3 {
			continue
		}
		if year < 100 {
			year += 2000
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || t.Month() != time.Month(month) {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ISODate renders a resolved diary date in the form persisted everywhere.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
