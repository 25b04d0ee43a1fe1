package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateRange is the normalized form of a free-text fire-date expression: the
// original text plus earliest/latest calendar bounds when they could be
// derived. Ambiguous text keeps its bounds unset and gains a note instead of
// a guessed value.
type DateRange struct {
	Raw      string
	Earliest *time.Time
	Latest   *time.Time
	Notes    []string
}

// ParseFireDate normalizes a fire-date cell value. The grammar accepts exact
// dates, bare years, year ranges like "1990-1995" or "1990-95", and
// open-ended expressions with a leading "<" or ">". Anything else is
// preserved verbatim with a descriptive note.
func ParseFireDate(value any) DateRange {
	switch v := value.(type) {
	case time.Time:
		d := dateOnly(v)
		return DateRange{Raw: d.Format("2006-01-02"), Earliest: &d, Latest: &d}
	case int:
		return yearRange(v)
	case int64:
		return yearRange(int(v))
	case float64:
		if v == float64(int(v)) {
			return yearRange(int(v))
		}
		return textRange(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		s := strings.TrimSpace(v)
		if year, err := strconv.Atoi(s); err == nil {
			r := yearRange(year)
			r.Raw = s
			return r
		}
		if d, ok := (Cell{Value: s}).Date(); ok {
			return DateRange{Raw: s, Earliest: &d, Latest: &d}
		}
		return textRange(s)
	default:
		return DateRange{}
	}
}

// yearRange expands a bare year into its first and last day. Non-positive
// years mean the date was not recorded.
func yearRange(year int) DateRange {
	r := DateRange{Raw: strconv.Itoa(year)}
	if year <= 0 {
		r.Notes = append(r.Notes, "Fire date is missing or empty")
		return r
	}
	earliest := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	r.Earliest = &earliest
	r.Latest = &latest
	return r
}

// textRange handles the free-text forms: open-ended bounds marked "<"/">"
// and dash-separated year ranges, including the "1990-95" shorthand where
// the second year borrows the century of the first.
func textRange(s string) DateRange {
	r := DateRange{Raw: s, Notes: []string{fmt.Sprintf("Fire date given as: %s", s)}}

	// One note per bound marker.
	for _, c := range s {
		if c == '<' || c == '>' {
			r.Notes = append(r.Notes, "max/min value given")
		}
	}
	stripped := strings.NewReplacer("<", "", ">", "").Replace(s)

	parts := strings.Split(stripped, "-")
	if len(parts) != 2 {
		return r
	}
	first := strings.TrimSpace(parts[0])
	second := strings.TrimSpace(parts[1])

	if len(first) == 4 && isDigits(first) {
		year, _ := strconv.Atoi(first)
		earliest := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		r.Earliest = &earliest
	}
	switch {
	case len(second) == 4 && isDigits(second):
		year, _ := strconv.Atoi(second)
		latest := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		r.Latest = &latest
	case len(second) == 2 && isDigits(second) && len(first) >= 2:
		// "1990-95": rebuild the second year from the first one's century.
		year, err := strconv.Atoi(first[:2] + second)
		if err == nil {
			latest := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
			r.Latest = &latest
		}
	}
	return r
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
