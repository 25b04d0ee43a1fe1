package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// parenRefRe matches parenthesized reference-code groups inside a trait
	// cell, e.g. "Epicormic (12, 14a)".
	parenRefRe = regexp.MustCompile(`\(([\w\d, ]+)\)`)

	// defaultSplitRe splits a multi-value trait expression into its atomic
	// values after the "/" split.
	defaultSplitRe = regexp.MustCompile(`&|;|,| or | and `)
)

// ReferenceResolver resolves a composite reference-code string into the
// citation strings it points at. An empty result means the codes matched
// nothing.
type ReferenceResolver interface {
	ResolveCodes(codes string) []string
}

// TraitColumns declares one literature-trait column: where the value lives,
// which species columns identify the row, and the controlled vocabulary for
// categorical traits.
type TraitColumns struct {
	Name        string            `yaml:"name"`
	Column      string            `yaml:"column"`
	Type        string            `yaml:"type"` // "categorical" or "numerical"
	Vocabulary  map[string]string `yaml:"vocabulary"`
	Species     string            `yaml:"species"`
	SpeciesCode string            `yaml:"spcode"`
}

// Columns lists every physical column the trait builder reads.
func (c TraitColumns) Columns() []string {
	return compactColumns([]string{c.Column, c.Species, c.SpeciesCode})
}

// ResolvedReference is the outcome of resolving a cell hyperlink against the
// References worksheet: the raw code string and the citations it mapped to.
type ResolvedReference struct {
	Codes   string
	Sources []string
}

// ExtractCategoricalValues normalizes one categorical trait cell into zero
// or more observations. The cell text is split on "/" into independently
// sourced values, inline parenthesized reference codes are resolved, a
// leading "a-" marks morphology inference, a "?" marks uncertainty, and the
// remainder is split on and/or separators; every split appends a breadcrumb
// to the raw value.
func ExtractCategoricalValues(cell Cell, varname string, vocab map[string]string, refs ReferenceResolver, mainSource string) []Observation {
	if cell.Empty() {
		return nil
	}
	baseNotes := cell.Notes()

	if _, ok := cell.Value.(string); !ok {
		// Numeric and date-typed values pass through unchanged.
		rec := Observation{
			RawValue:      []string{varname, cell.Text()},
			OriginalNotes: baseNotes,
			Weight:        1,
		}
		return []Observation{rec}
	}

	var records []Observation
	for _, part := range strings.Split(cell.Text(), "/") {
		w := strings.TrimSpace(part)
		notes := append([]string(nil), baseNotes...)

		var sources []string
		end := len(w)
		if idx := strings.Index(w, "("); idx > 0 {
			for _, m := range parenRefRe.FindAllStringSubmatch(w, -1) {
				if refs != nil {
					sources = append(sources, refs.ResolveCodes(m[1])...)
				}
			}
			end = idx
		}

		start := 0
		method := ""
		if strings.HasPrefix(w, "a-") {
			method = "Inferred from plant morphology"
			start = 2
		}
		if strings.Contains(w, "?") {
			notes = append(notes, "uncertain")
		}

		sw := strings.TrimSpace(strings.ReplaceAll(w[start:end], "?", ""))

		for _, sv := range defaultSplitRe.Split(sw, -1) {
			sv = strings.TrimSpace(sv)
			rec := Observation{
				RawValue:   []string{varname, w},
				MainSource: mainSource,
				Weight:     1,
			}
			recNotes := append([]string(nil), notes...)
			if sw != w {
				rec.RawValue = append(rec.RawValue, "->", sw)
				recNotes = append(recNotes, "original record split into multiple entries, prob. different sources")
			}
			if sv != sw {
				rec.RawValue = append(rec.RawValue, "->", sv)
				recNotes = append(recNotes, "original record split into multiple entries separated by and/or")
			}
			if norm, ok := vocab[sv]; ok {
				rec.NormValue = norm
			}
			if method != "" {
				recNotes = append(recNotes, method)
			}
			if len(sources) > 0 {
				rec.OriginalSources = sources
			}
			rec.OriginalNotes = recNotes
			records = append(records, rec)
		}
	}
	return records
}

// ExtractNumericValues normalizes one numeric trait cell into zero or more
// observations carrying a best/lower/upper triplet. Text values accept the
// range grammar "a-b", open bounds ">x" (lower) and "<x" (upper), inline
// parenthesized reference codes, and "?" uncertainty markers.
func ExtractNumericValues(cell Cell, varname string, refs ReferenceResolver, mainSource string) []Observation {
	if cell.Empty() {
		return nil
	}
	baseNotes := cell.Notes()

	if v, ok := cell.Float(); ok && !isString(cell.Value) {
		rec := Observation{
			RawValue:      []string{varname, cell.Text()},
			Best:          &v,
			MainSource:    mainSource,
			OriginalNotes: baseNotes,
			Weight:        1,
		}
		return []Observation{rec}
	}

	var records []Observation
	for _, part := range strings.Split(cell.Text(), "/") {
		w := strings.TrimSpace(part)
		rec := Observation{
			RawValue:   []string{varname, w},
			MainSource: mainSource,
			Weight:     1,
		}
		notes := append([]string(nil), baseNotes...)
		if strings.Contains(w, "?") {
			notes = append(notes, "uncertain")
			w = strings.ReplaceAll(w, "?", "")
		}

		end := len(w)
		if idx := strings.Index(w, "("); idx > 0 {
			for _, m := range parenRefRe.FindAllStringSubmatch(w, -1) {
				if refs != nil {
					rec.OriginalSources = append(rec.OriginalSources, refs.ResolveCodes(m[1])...)
				}
			}
			end = idx
		}

		sw := strings.TrimSpace(w[:end])
		var best, lower, upper *float64
		switch {
		case parseNumber(sw) != nil:
			best = parseNumber(sw)
		case strings.Index(sw, "-") > 0:
			bounds := strings.SplitN(sw, "-", 2)
			lower = parseNumber(strings.TrimSpace(bounds[0]))
			upper = parseNumber(strings.TrimSpace(bounds[1]))
		case strings.HasPrefix(sw, ">"):
			lower = parseNumber(strings.TrimSpace(sw[1:]))
		case strings.HasPrefix(sw, "<"):
			upper = parseNumber(strings.TrimSpace(sw[1:]))
		}

		t := BuildTriplet(varname, best, lower, upper)
		rec.Best, rec.Lower, rec.Upper = t.Best, t.Lower, t.Upper
		rec.Units = t.Units
		notes = append(notes, t.Notes...)
		if len(notes) > 0 {
			rec.OriginalNotes = notes
		}
		records = append(records, rec)
	}
	return records
}

// BuildTraitRecords extracts the observations for one trait cell of a
// species row and stamps species identity, weights and hyperlink-resolved
// sources. A hyperlink whose codes resolved to nothing is noted, never
// silently dropped.
func BuildTraitRecords(row SheetRow, cols TraitColumns, link *ResolvedReference, refs ReferenceResolver, mainSource string) []Observation {
	cell := row.Cell(cols.Column)
	if cell.Empty() {
		return nil
	}

	var records []Observation
	if cols.Type == "numerical" {
		records = ExtractNumericValues(cell, cols.Name, refs, mainSource)
		for i := range records {
			records[i].WeightNotes = []string{
				"automatic assignment of weight at import",
				"default value of 1",
			}
		}
	} else {
		records = ExtractCategoricalValues(cell, cols.Name, cols.Vocabulary, refs, mainSource)
	}

	species := row.Cell(cols.Species).Text()
	spcode := ""
	if c := row.Cell(cols.SpeciesCode); !c.Empty() {
		if _, ok := c.Int(); ok {
			spcode = c.Text()
		}
	}

	out := records[:0]
	for _, rec := range records {
		rec.Species = species
		rec.SpeciesCode = spcode
		if len(rec.OriginalSources) == 0 && link != nil {
			rec.OriginalSources = link.Sources
			if len(link.Sources) == 0 && link.Codes != "" {
				rec.OriginalNotes = append(rec.OriginalNotes,
					fmt.Sprintf("reference code %s not matched", link.Codes))
			}
		}
		if !rec.HasData() {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// DemoteRedundantSources zeroes the weight of records whose resolved source
// belongs to a dataset flagged as a redundant copy of another imported one.
func DemoteRedundantSources(records []Observation, redundant []string) {
	if len(redundant) == 0 {
		return
	}
	flagged := make(map[string]struct{}, len(redundant))
	for _, r := range redundant {
		flagged[r] = struct{}{}
	}
	for i := range records {
		for _, src := range records[i].OriginalSources {
			if _, ok := flagged[src]; ok {
				records[i].Weight = 0
				records[i].WeightNotes = []string{
					"automatic assignment of weight at import",
					fmt.Sprintf("source %s is redundant with another imported dataset", src),
				}
				break
			}
		}
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// parseNumber parses a plain numeric token, returning nil when the token is
// not a number.
func parseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
