package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts covers the date renderings seen across the survey workbooks.
// All ambiguous layouts are day-first because the source data is Australian.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2/1/06",
	"02-01-06",
}

// Cell is a single spreadsheet cell with the presentational metadata the
// extractors care about. Value is nil for an empty cell; otherwise it is a
// string, a number, or a time.Time depending on the source adapter.
type Cell struct {
	Value         any
	Hyperlink     string // hyperlink target, e.g. "References!C84"
	FontColor     string // colour index or RGB of a non-default font colour
	Strikethrough bool
}

// Empty reports whether the cell carries no value. Callers must treat an
// empty cell as "skip this field", not as zero.
func (c Cell) Empty() bool {
	if c.Value == nil {
		return true
	}
	s, ok := c.Value.(string)
	return ok && strings.TrimSpace(s) == ""
}

// IsNA reports whether the cell holds the not-available sentinel.
func (c Cell) IsNA() bool {
	s, ok := c.Value.(string)
	return ok && (s == "na" || s == "NA")
}

// Notes returns the presentational audit notes for the cell: a colored font
// or strikethrough each contribute a fixed note string. These are carried
// into a record's original notes verbatim and never interpreted further.
func (c Cell) Notes() []string {
	var notes []string
	if c.FontColor != "" {
		notes = append(notes, fmt.Sprintf("Cell color index %s", c.FontColor))
	}
	if c.Strikethrough {
		notes = append(notes, "Cell text has strikethrough")
	}
	return notes
}

// Text returns the cell value rendered as a string.
func (c Cell) Text() string {
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		return v.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the cell value as a strict integer. Whole floats and digit
// strings qualify; anything else (including "ca. 3" or "3.5") does not.
func (c Cell) Int() (int, bool) {
	switch v := c.Value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), true
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Float returns the cell value as a float64 when it is numeric or parses as
// a number.
func (c Cell) Float() (float64, bool) {
	switch v := c.Value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Date returns the cell value as a calendar date. Strings are tried against
// the known workbook date layouts.
func (c Cell) Date() (time.Time, bool) {
	switch v := c.Value.(type) {
	case time.Time:
		return dateOnly(v), true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dateOnly(t), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// dateOnly truncates a timestamp to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
