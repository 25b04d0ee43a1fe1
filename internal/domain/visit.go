package domain

import "strings"

// VisitColumns declares the physical columns of a visit worksheet. One
// record is produced per listed visit-date column that holds a real date.
type VisitColumns struct {
	SiteLabel  string   `yaml:"site_label"`
	VisitDates []string `yaml:"visit_dates"`

	// Survey is a fixed literal, not a column: every record from this sheet
	// belongs to the named survey campaign.
	Survey string `yaml:"survey"`

	VisitDescription string `yaml:"visit_description"`
	MainObserver     string `yaml:"mainobserver"`
	ObserverList     string `yaml:"observerlist"`
	ReplicateNr      string `yaml:"replicate_nr"`
}

// Columns lists every physical column the visit builder reads.
func (c VisitColumns) Columns() []string {
	cols := []string{c.SiteLabel, c.VisitDescription, c.MainObserver,
		c.ObserverList, c.ReplicateNr}
	cols = append(cols, c.VisitDates...)
	return compactColumns(cols)
}

// BuildVisitRecords builds visit records for one worksheet row. A cell that
// does not parse as a date contributes no record; the visit key requires a
// real date.
func BuildVisitRecords(row SheetRow, cols VisitColumns) []VisitRecord {
	label := row.Cell(cols.SiteLabel).Text()
	if label == "" || IsSentinelLabel(label) {
		return nil
	}

	var records []VisitRecord
	for _, dateCol := range cols.VisitDates {
		date, ok := row.Cell(dateCol).Date()
		if !ok {
			continue
		}
		rec := VisitRecord{VisitID: label, VisitDate: date, SurveyName: cols.Survey}

		if cols.VisitDescription != "" {
			if c := row.Cell(cols.VisitDescription); !c.Empty() && !c.IsNA() {
				rec.VisitDescription = c.Text()
			}
		}
		if cols.MainObserver != "" {
			if c := row.Cell(cols.MainObserver); !c.Empty() && !c.IsNA() {
				rec.MainObserver = c.Text()
			}
		}
		if cols.ObserverList != "" {
			if c := row.Cell(cols.ObserverList); !c.Empty() && !c.IsNA() {
				rec.ObserverList = splitObservers(c.Text())
			}
		}
		if cols.ReplicateNr != "" {
			if n, ok := row.Cell(cols.ReplicateNr).Int(); ok {
				rec.ReplicateNr = &n
			}
		}
		records = append(records, rec)
	}
	return records
}

// splitObservers turns a comma-joined observer string into an ordered list.
func splitObservers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
