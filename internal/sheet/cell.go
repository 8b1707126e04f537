package sheet

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Kind tags the storage type of a spreadsheet cell. Downstream code never
// branches on the workbook's own cell types again.
type Kind int

const (
	Empty Kind = iota
	Text
	Number
	Date
)

// Cell is one spreadsheet cell converted to a stable form. Text always
// holds the rendered form: "" for empty cells, the trimmed string for text,
// the ISO date part for date and datetime cells, the stringified value
// otherwise.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Date   time.Time
}

// dateLayouts are tried in order when deciding whether a formatted cell
// value is date-shaped. Workbooks from different organizations format the
// same serial wildly differently, so the list is deliberately broad.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2/1/2006",
	"2/1/06",
	"1/2/2006",
	"01/02/2006",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-01-06",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"2-Jan-2006",
	"2-Jan-06",
	"02-Jan-06",
	"2-Jan",
	"02-Jan",
	"2 Jan",
	"Jan-06",
	"Jan 2006",
}

// classify converts the raw and formatted values excelize reports for one
// cell into a tagged Cell. Date cells in xlsx are numeric serials carrying
// a date number format; they are recognized by the raw value being a
// serial while the formatted value renders as a date.
func classify(raw, formatted string) Cell {
	raw = strings.TrimSpace(raw)
	formatted = strings.TrimSpace(formatted)
	if raw == "" && formatted == "" {
		return Cell{Kind: Empty}
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if formatted != raw && looksLikeDate(formatted) {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return Cell{Kind: Date, Text: isoDate(t), Date: t}
			}
		}
		text := formatted
		if text == "" {
			text = raw
		}
		return Cell{Kind: Number, Text: text, Number: serial}
	}

	text := formatted
	if text == "" {
		text = raw
	}
	return Cell{Kind: Text, Text: text}
}

func looksLikeDate(value string) bool {
	if value == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// IsEmpty reports whether the cell renders to no text at all.
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty || c.Text == ""
}

var spaceRE = regexp.MustCompile(`\s+`)

// Clean returns the cell text with non-breaking spaces replaced and all
// internal whitespace runs collapsed to single spaces. Positional
// extractors use this form so embedded line breaks in merged header cells
// do not defeat exact comparisons.
func (c Cell) Clean() string {
	if c.Text == "" {
		return ""
	}
	text := strings.ReplaceAll(c.Text, "\u00a0", " ")
	return strings.TrimSpace(spaceRE.ReplaceAllString(text, " "))
}

// ParseNumber reads a numeric value from the cell, tolerating thousands
// separators in text cells. The second return is false when the cell holds
// nothing number-like.
func ParseNumber(c Cell) (float64, bool) {
	switch c.Kind {
	case Number:
		return c.Number, true
	case Text:
		text := strings.ReplaceAll(strings.TrimSpace(c.Text), ",", "")
		if text == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}
