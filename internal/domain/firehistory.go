package domain

// FireEventColumns declares the columns of one fire event on a fire-history
// worksheet. Sheets that track several fires per site row list one
// FireEventColumns per event.
type FireEventColumns struct {
	SiteLabel string `yaml:"site_label"`
	FireDate  string `yaml:"fire_date"`
	FireType  string `yaml:"fire_type"`
}

// FireEventColumnSet lists every physical column a set of fire events reads.
func FireEventColumnSet(events []FireEventColumns) []string {
	var cols []string
	for _, ev := range events {
		cols = append(cols, ev.SiteLabel, ev.FireDate, ev.FireType)
	}
	return compactColumns(cols)
}

// BuildFireHistoryRecords builds one record per fire event present on the
// row. An event contributes a record only when it carries data beyond the
// site label.
func BuildFireHistoryRecords(row SheetRow, events []FireEventColumns) []FireHistoryRecord {
	var records []FireHistoryRecord
	for _, ev := range events {
		label := row.Cell(ev.SiteLabel).Text()
		if label == "" || IsSentinelLabel(label) {
			continue
		}
		rec := FireHistoryRecord{SiteLabel: label}

		if ev.FireType != "" {
			if c := row.Cell(ev.FireType); !c.Empty() {
				rec.FireType = c.Text()
			}
		}
		if ev.FireDate != "" {
			if c := row.Cell(ev.FireDate); !c.Empty() {
				r := ParseFireDate(c.Value)
				rec.FireDate = r.Raw
				rec.EarliestDate = r.Earliest
				rec.LatestDate = r.Latest
				rec.Notes = r.Notes
			}
		}

		if rec.FireDate == "" && rec.FireType == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}
