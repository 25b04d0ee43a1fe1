package domain

import (
	"fmt"
	"time"
)

// IntensityVariable declares the best/lower/upper columns for one measured
// fire-behaviour variable. Empty column references mean the slot is not
// recorded on this sheet.
type IntensityVariable struct {
	Name  string `yaml:"name"`
	Best  string `yaml:"best"`
	Lower string `yaml:"lower"`
	Upper string `yaml:"upper"`
}

// FireIntensityColumns declares the columns of a fire intensity / structure
// measurement worksheet.
type FireIntensityColumns struct {
	VisitID   string              `yaml:"visit_id"`
	Date      string              `yaml:"date"`
	Variables []IntensityVariable `yaml:"variables"`
}

// Columns lists every physical column the intensity builder reads.
func (c FireIntensityColumns) Columns() []string {
	cols := []string{c.VisitID, c.Date}
	for _, v := range c.Variables {
		cols = append(cols, v.Best, v.Lower, v.Upper)
	}
	return compactColumns(cols)
}

// BuildFireIntensityRecords builds one record per measured variable present
// on the row. Non-numeric slot values are diverted into the record's
// comments; a variable with no usable slot and no comment contributes
// nothing.
func BuildFireIntensityRecords(row SheetRow, cols FireIntensityColumns) []FireIntensityRecord {
	visitID := row.Cell(cols.VisitID).Text()
	if visitID == "" || IsSentinelLabel(visitID) {
		return nil
	}
	var visitDate *time.Time
	if cols.Date != "" {
		if d, ok := row.Cell(cols.Date).Date(); ok {
			visitDate = &d
		}
	}

	var records []FireIntensityRecord
	for _, variable := range cols.Variables {
		var comms []string
		var raw []string

		slot := func(column string) *float64 {
			if column == "" {
				return nil
			}
			c := row.Cell(column)
			if c.Empty() || c.IsNA() {
				return nil
			}
			raw = append(raw, c.Text())
			if v, ok := c.Float(); ok {
				return &v
			}
			comms = append(comms, fmt.Sprintf("%s written as %s", variable.Name, c.Text()))
			return nil
		}

		best := slot(variable.Best)
		lower := slot(variable.Lower)
		upper := slot(variable.Upper)

		t := BuildTriplet(variable.Name, best, lower, upper)
		comms = append(comms, t.Notes...)
		if t.Empty() && len(comms) == 0 {
			continue
		}

		rec := FireIntensityRecord{
			VisitID:   visitID,
			VisitDate: visitDate,
			Variable:  variable.Name,
			RawValue:  append([]string{variable.Name}, raw...),
			Best:      t.Best,
			Lower:     t.Lower,
			Upper:     t.Upper,
			Units:     t.Units,
			Comments:  comms,
		}
		records = append(records, rec)
	}
	return records
}
