package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	digitsRe  = regexp.MustCompile(`\d+`)
	lettersRe = regexp.MustCompile(`[A-Z]+`)
	romanRe   = regexp.MustCompile(`[IVX]+`)
)

// fireResponseNorm reclassifies the raw fire-response codes following the
// rules proposed by D. Keith et al.
var fireResponseNorm = map[string]string{
	"S":   "None",
	"Sr":  "Few",
	"S/R": "Half",
	"Rs":  "Most",
	"R":   "All",
}

// nfrrGroupNorm maps a numeric NFRR vegetation-assemblage group onto the
// reclassified resprouting value.
func nfrrGroupNorm(code string) string {
	switch code {
	case "1", "2", "3", "8":
		return "None"
	case "4", "5", "6", "7", "9", "11":
		return "All"
	default:
		return "Unknown"
	}
}

// romanGroupNorm is nfrrGroupNorm for the roman-numeral group notation.
func romanGroupNorm(code string) string {
	switch code {
	case "I", "II", "III", "VIII":
		return "None"
	case "IV", "V", "VI", "VII", "IX", "XI":
		return "All"
	default:
		return "Unknown"
	}
}

// NFRRCategory describes one NFRR vegetation-assemblage group, addressable
// by its numeric code or its roman-numeral variant.
type NFRRCategory struct {
	Code      int    `yaml:"code"`
	OtherCode string `yaml:"other_code"`
	Category  string `yaml:"category"`
}

// ResproutingColumns declares the columns of the NSWFFRD resprouting sheet:
// the summary fire-response column plus the NFRR and other-reference note
// columns whose tokens expand into per-source records.
type ResproutingColumns struct {
	Species      string `yaml:"species"`
	SpeciesCode  string `yaml:"spcode"`
	FireResponse string `yaml:"fire_response"`
	Comment      string `yaml:"comment"`
	NFRR         string `yaml:"nfrr"`
	OtherRefs    string `yaml:"other_refs"`
	VariableName string `yaml:"variable_name"`
}

// Columns lists every physical column the resprouting builder reads.
func (c ResproutingColumns) Columns() []string {
	return compactColumns([]string{c.Species, c.SpeciesCode, c.FireResponse,
		c.Comment, c.NFRR, c.OtherRefs})
}

// BuildResproutingRecords expands one species row of the resprouting sheet
// into a weight-10 summary observation plus one observation per NFRR or
// other-reference token, each reclassified into the controlled vocabulary
// and tied back to its resolved source.
func BuildResproutingRecords(row SheetRow, cols ResproutingColumns, cats []NFRRCategory, nfrrRefs map[string]string, otherRefs map[int]string, mainSource string) []Observation {
	varCell := row.Cell(cols.FireResponse)
	if varCell.Empty() {
		return nil
	}
	varValue := varCell.Text()

	byCode := make(map[int]NFRRCategory, len(cats))
	byRoman := make(map[string]NFRRCategory, len(cats))
	for _, c := range cats {
		byCode[c.Code] = c
		byRoman[c.OtherCode] = c
	}

	base := Observation{
		RawValue:   []string{cols.VariableName, varValue},
		MainSource: mainSource,
		AdditionalNotes: []string{
			"Values reclassified following rules proposed by D. Keith et al.",
			"Automatic extraction at import",
		},
		Weight:      1,
		WeightNotes: []string{"automatic assignment of weight at import", "default of 1"},
	}
	if norm, ok := fireResponseNorm[varValue]; ok {
		base.NormValue = norm
	} else {
		base.NormValue = "Unknown"
	}
	if c := row.Cell(cols.Comment); !c.Empty() {
		base.OriginalNotes = append(base.OriginalNotes, c.Text())
		base.AdditionalNotes = append(base.AdditionalNotes, "See comments in NSWFFRDv2.1 entry")
	}
	if c := row.Cell(cols.SpeciesCode); !c.Empty() {
		if _, ok := c.Int(); ok {
			base.SpeciesCode = c.Text()
		}
	}
	base.Species = row.Cell(cols.Species).Text()

	summary := cloneObservation(base)
	summary.Weight = 10
	summary.WeightNotes = []string{"automatic assignment of weight at import", "default of 10 for summary value"}
	records := []Observation{summary}

	nfrrCell := row.Cell(cols.NFRR)
	if !nfrrCell.Empty() {
		// FO(1) is a legacy spelling of the FOI reference tag.
		raw := strings.ReplaceAll(nfrrCell.Text(), "FO(1)", "FOI")
		for _, token := range strings.Fields(raw) {
			rec := cloneObservation(base)
			rec.AdditionalNotes = append(rec.AdditionalNotes, "Raw values extracted from notes/comments in NSWFFRDv2.1")
			rec.RawValue = append(rec.RawValue, fmt.Sprintf("Overall value of fireresponse column is %s", varValue))
			if groups := digitsRe.FindAllString(token, -1); len(groups) == 1 {
				if code, err := strconv.Atoi(groups[0]); err == nil {
					if cat, ok := byCode[code]; ok {
						rec.RawValue[0] = fmt.Sprintf("VA Group %s", groups[0])
						rec.RawValue[1] = cat.Category
					}
				}
				rec.NormValue = nfrrGroupNorm(groups[0])
			}
			if tags := lettersRe.FindAllString(token, -1); len(tags) == 1 {
				if citation, ok := nfrrRefs[tags[0]]; ok {
					rec.OriginalSources = append(rec.OriginalSources, citation)
				}
			}
			for _, caveat := range nfrrCell.Notes() {
				switch {
				case strings.Contains(caveat, "color"):
					rec.AdditionalNotes = append(rec.AdditionalNotes, "NFRR record(s) might have been amended in NSWFFRDv2.1")
				case strings.Contains(caveat, "strikethrough"):
					rec.AdditionalNotes = append(rec.AdditionalNotes, "NFRR record(s) might have been discarded in NSWFFRDv2.1")
				}
			}
			records = append(records, rec)
		}
	}

	otherCell := row.Cell(cols.OtherRefs)
	if !otherCell.Empty() {
		for _, token := range strings.Fields(otherCell.Text()) {
			rec := cloneObservation(base)
			rec.AdditionalNotes = append(rec.AdditionalNotes, "Raw values extracted from notes/comments in NSWFFRDv2.1")
			rec.RawValue = append(rec.RawValue, fmt.Sprintf("Overall value of fireresponse column is %s", varValue))
			if groups := romanRe.FindAllString(token, -1); len(groups) == 1 {
				if cat, ok := byRoman[groups[0]]; ok {
					rec.RawValue[0] = fmt.Sprintf("VA Group %s", groups[0])
					rec.RawValue[1] = cat.Category
				}
				rec.NormValue = romanGroupNorm(groups[0])
			}
			if ids := digitsRe.FindAllString(token, -1); len(ids) == 1 {
				if code, err := strconv.Atoi(ids[0]); err == nil {
					if citation, ok := otherRefs[code]; ok {
						rec.OriginalSources = append(rec.OriginalSources, citation)
					}
				}
			}
			records = append(records, rec)
		}
	}

	return records
}

// cloneObservation deep-copies the slices of an observation so expanded
// records do not share note backing arrays.
func cloneObservation(o Observation) Observation {
	c := o
	c.RawValue = append([]string(nil), o.RawValue...)
	c.OriginalSources = append([]string(nil), o.OriginalSources...)
	c.OriginalNotes = append([]string(nil), o.OriginalNotes...)
	c.AdditionalNotes = append([]string(nil), o.AdditionalNotes...)
	c.WeightNotes = append([]string(nil), o.WeightNotes...)
	return c
}
