package domain

import "fmt"

// QuadratColumns declares the physical columns of a quadrat (species in
// plot) worksheet, plus the workbook/worksheet names stamped into each
// record's provenance comments.
type QuadratColumns struct {
	VisitID     string `yaml:"visit_id"`
	Species     string `yaml:"species"`
	SpeciesCode string `yaml:"spcode"`
	SampleNr    string `yaml:"sample_nr"`

	Date             string `yaml:"date"`
	ReplicateNr      string `yaml:"replicate_nr"`
	FixedReplicateNr *int   `yaml:"fixed_replicate_nr"`

	Workbook  string `yaml:"workbook"`
	Worksheet string `yaml:"worksheet"`

	SpeciesNotes  string `yaml:"species_notes"`
	ResproutOrgan string `yaml:"resprout_organ"`
	Seedbank      string `yaml:"seedbank"`
	Notes         string `yaml:"notes"`

	AdultsUnburnt         string `yaml:"adults_unburnt"`
	ResproutsLive         string `yaml:"resprouts_live"`
	ResproutsDied         string `yaml:"resprouts_died"`
	ResproutsKill         string `yaml:"resprouts_kill"`
	ResproutsReproductive string `yaml:"resprouts_reproductive"`
	RecruitsLive          string `yaml:"recruits_live"`
	RecruitsReproductive  string `yaml:"recruits_reproductive"`
	RecruitsDied          string `yaml:"recruits_died"`
}

// Columns lists every physical column the quadrat builder reads.
func (c QuadratColumns) Columns() []string {
	return compactColumns([]string{
		c.VisitID, c.Species, c.SpeciesCode, c.SampleNr, c.Date, c.ReplicateNr,
		c.SpeciesNotes, c.ResproutOrgan, c.Seedbank, c.Notes,
		c.AdultsUnburnt, c.ResproutsLive, c.ResproutsDied, c.ResproutsKill,
		c.ResproutsReproductive, c.RecruitsLive, c.RecruitsReproductive,
		c.RecruitsDied,
	})
}

// BuildQuadratRecords builds the quadrat-sample record for one worksheet
// row. The visit date is taken from the sheet when recorded, otherwise
// inferred from the visit index by (visit_id, replicate_nr); a unique match
// inherits the date with a note, zero or multiple matches leave the date
// unset with a note.
func BuildQuadratRecords(row SheetRow, cols QuadratColumns, visits *VisitIndex) []QuadratSampleRecord {
	species := row.Cell(cols.Species).Text()
	if species == "" {
		return nil
	}
	visitID := row.Cell(cols.VisitID).Text()
	if IsSentinelLabel(visitID) {
		return nil
	}
	rec := QuadratSampleRecord{VisitID: visitID, Species: species}
	if n, ok := row.Cell(cols.SampleNr).Int(); ok {
		rec.SampleNr = &n
	}

	var comms []string
	if cols.Workbook != "" {
		comms = append(comms, fmt.Sprintf("Imported from workbook %s", cols.Workbook))
	}
	if cols.Worksheet != "" {
		comms = append(comms, fmt.Sprintf("Imported from worksheet %s", cols.Worksheet))
	}

	var replicate *int
	switch {
	case cols.ReplicateNr != "":
		if n, ok := row.Cell(cols.ReplicateNr).Int(); ok {
			replicate = &n
		}
	case cols.FixedReplicateNr != nil:
		n := *cols.FixedReplicateNr
		replicate = &n
	}

	if d, ok := row.Cell(cols.Date).Date(); cols.Date != "" && ok {
		rec.VisitDate = &d
	} else if replicate != nil && visits != nil {
		dates := visits.MatchReplicate(visitID, *replicate)
		if len(dates) == 1 {
			d := dates[0]
			rec.VisitDate = &d
			comms = append(comms, fmt.Sprintf("visit date not provided, matched by replicate nr %d", *replicate))
		} else {
			comms = append(comms, fmt.Sprintf("neither visit date nor replicate nr was matched (replicate nr %d), no date", *replicate))
		}
	} else {
		comms = append(comms, "neither visit date nor replicate nr was matched, no date")
	}

	// Species codes must look numeric; anything else is dropped without a
	// note (see DESIGN.md).
	if spcode := row.Cell(cols.SpeciesCode); !spcode.Empty() {
		if _, ok := spcode.Int(); ok {
			rec.SpeciesCode = spcode.Text()
		}
	}

	if cols.SpeciesNotes != "" {
		if c := row.Cell(cols.SpeciesNotes); !c.Empty() && !c.IsNA() {
			rec.SpeciesNotes = c.Text()
		}
	}
	if cols.ResproutOrgan != "" {
		if c := row.Cell(cols.ResproutOrgan); !c.Empty() && !c.IsNA() {
			if v, note, ok := ResproutOrgans.Normalize("resprout organ", c.Text()); ok {
				rec.ResproutOrgan = v
			} else {
				comms = append(comms, note)
			}
		}
	}
	if cols.Seedbank != "" {
		if c := row.Cell(cols.Seedbank); !c.Empty() && !c.IsNA() {
			if v, note, ok := SeedbankTypes.Normalize("seedbank", c.Text()); ok {
				rec.Seedbank = v
			} else {
				comms = append(comms, note)
			}
		}
	}

	counts := []struct {
		name   string
		column string
		field  **int
	}{
		{"adults_unburnt", cols.AdultsUnburnt, &rec.AdultsUnburnt},
		{"resprouts_live", cols.ResproutsLive, &rec.ResproutsLive},
		{"resprouts_died", cols.ResproutsDied, &rec.ResproutsDied},
		{"resprouts_kill", cols.ResproutsKill, &rec.ResproutsKill},
		{"resprouts_reproductive", cols.ResproutsReproductive, &rec.ResproutsReproductive},
		{"recruits_live", cols.RecruitsLive, &rec.RecruitsLive},
		{"recruits_reproductive", cols.RecruitsReproductive, &rec.RecruitsReproductive},
		{"recruits_died", cols.RecruitsDied, &rec.RecruitsDied},
	}
	for _, count := range counts {
		if count.column == "" {
			continue
		}
		c := row.Cell(count.column)
		if c.Empty() || c.IsNA() {
			continue
		}
		if n, ok := c.Int(); ok {
			value := n
			*count.field = &value
		} else {
			comms = append(comms, fmt.Sprintf("%s written as %s", count.name, c.Text()))
		}
	}

	if cols.Notes != "" {
		if c := row.Cell(cols.Notes); !c.Empty() && !c.IsNA() {
			if _, numeric := c.Float(); numeric {
				comms = append(comms, fmt.Sprintf("Comment column included a numeric value of %s", c.Text()))
			} else {
				comms = append(comms, c.Text())
			}
		}
	}

	rec.Comments = comms
	return []QuadratSampleRecord{rec}
}
