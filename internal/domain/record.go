package domain

import "time"

// SheetRow is one worksheet row with cells addressable by column letter.
// Builders only read the columns named by their column mapping, so a SheetRow
// may hold any subset of the physical row.
type SheetRow map[string]Cell

// Cell returns the cell in the given column, or an empty cell when the
// column was not read.
func (r SheetRow) Cell(column string) Cell {
	return r[column]
}

// Observation is the canonical output unit for literature trait extraction:
// one reported fact with provenance, audit notes and a confidence weight.
type Observation struct {
	Species     string
	SpeciesCode string

	// RawValue is the variable name, the original cell text, and any
	// transformation breadcrumbs appended during splitting.
	RawValue []string

	NormValue string
	Best      *float64
	Lower     *float64
	Upper     *float64
	Units     string

	MainSource      string
	OriginalSources []string
	OriginalNotes   []string
	AdditionalNotes []string

	Weight      int
	WeightNotes []string
}

// HasData reports whether the observation carries anything beyond identity.
// Records without a raw value or a derived field are suppressed, not emitted.
func (o Observation) HasData() bool {
	return len(o.RawValue) > 0 || o.NormValue != "" ||
		o.Best != nil || o.Lower != nil || o.Upper != nil
}

// Row renders the observation as store columns.
func (o Observation) Row() Row {
	var row Row
	if o.Species != "" {
		row = append(row, Field{Column: "species", Value: o.Species})
	}
	if o.SpeciesCode != "" {
		row = append(row, Field{Column: "species_code", Value: o.SpeciesCode})
	}
	if len(o.RawValue) > 0 {
		row = append(row, Field{Column: "raw_value", Value: o.RawValue})
	}
	if o.NormValue != "" {
		row = append(row, Field{Column: "norm_value", Value: o.NormValue})
	}
	if o.Best != nil {
		row = append(row, Field{Column: "best", Value: *o.Best})
	}
	if o.Lower != nil {
		row = append(row, Field{Column: "lower", Value: *o.Lower})
	}
	if o.Upper != nil {
		row = append(row, Field{Column: "upper", Value: *o.Upper})
	}
	if o.Units != "" {
		row = append(row, Field{Column: "units", Value: o.Units})
	}
	if o.MainSource != "" {
		row = append(row, Field{Column: "main_source", Value: o.MainSource})
	}
	if len(o.OriginalSources) > 0 {
		row = append(row, Field{Column: "original_sources", Value: o.OriginalSources})
	}
	if len(o.OriginalNotes) > 0 {
		row = append(row, Field{Column: "original_notes", Value: o.OriginalNotes})
	}
	if len(o.AdditionalNotes) > 0 {
		row = append(row, Field{Column: "additional_notes", Value: o.AdditionalNotes})
	}
	row = append(row, Field{Column: "weight", Value: o.Weight})
	if len(o.WeightNotes) > 0 {
		row = append(row, Field{Column: "weight_notes", Value: o.WeightNotes})
	}
	return row
}

// SiteRecord describes a field site. Geom holds a ready-to-splice geometry
// expression and is set only when coordinates and an SRID were resolved.
type SiteRecord struct {
	SiteLabel           string
	Elevation           *float64
	LocationDescription string
	GPSUncertaintyM     *float64
	GPSGeomDescription  string
	Geom                string
}

// Row renders the site as store columns.
func (s SiteRecord) Row() Row {
	row := Row{{Column: "site_label", Value: s.SiteLabel}}
	if s.Elevation != nil {
		row = append(row, Field{Column: "elevation", Value: *s.Elevation})
	}
	if s.LocationDescription != "" {
		row = append(row, Field{Column: "location_description", Value: s.LocationDescription})
	}
	if s.GPSUncertaintyM != nil {
		row = append(row, Field{Column: "gps_uncertainty_m", Value: *s.GPSUncertaintyM})
	}
	if s.GPSGeomDescription != "" {
		row = append(row, Field{Column: "gps_geom_description", Value: s.GPSGeomDescription})
	}
	if s.Geom != "" {
		row = append(row, Field{Column: "geom", Value: s.Geom, Geom: true})
	}
	return row
}

// VisitRecord describes one visit to a site, keyed by (visit_id, visit_date).
type VisitRecord struct {
	VisitID          string
	VisitDate        time.Time
	ReplicateNr      *int
	SurveyName       string
	ObserverList     []string
	MainObserver     string
	VisitDescription string
}

// Row renders the visit as store columns.
func (v VisitRecord) Row() Row {
	row := Row{
		{Column: "visit_id", Value: v.VisitID},
		{Column: "visit_date", Value: v.VisitDate},
	}
	if v.ReplicateNr != nil {
		row = append(row, Field{Column: "replicate_nr", Value: *v.ReplicateNr})
	}
	if v.SurveyName != "" {
		row = append(row, Field{Column: "survey_name", Value: v.SurveyName})
	}
	if len(v.ObserverList) > 0 {
		row = append(row, Field{Column: "observerlist", Value: v.ObserverList})
	}
	if v.MainObserver != "" {
		row = append(row, Field{Column: "mainobserver", Value: v.MainObserver})
	}
	if v.VisitDescription != "" {
		row = append(row, Field{Column: "visit_description", Value: v.VisitDescription})
	}
	return row
}

// SampleRecord identifies one sample within a visit. VisitDate may be unset
// until the reconciler resolves it against known visits.
type SampleRecord struct {
	VisitID     string
	VisitDate   *time.Time
	ReplicateNr *int
	SampleNr    *int
}

// QuadratSampleRecord records one species observed in one quadrat sample,
// keyed by (visit_id, sample_nr, species).
type QuadratSampleRecord struct {
	VisitID     string
	SampleNr    *int
	Species     string
	SpeciesCode string
	VisitDate   *time.Time

	SpeciesNotes  string
	ResproutOrgan string
	Seedbank      string

	AdultsUnburnt         *int
	ResproutsLive         *int
	ResproutsDied         *int
	ResproutsKill         *int
	ResproutsReproductive *int
	RecruitsLive          *int
	RecruitsReproductive  *int
	RecruitsDied          *int

	Comments []string
}

// Row renders the quadrat sample as store columns.
func (q QuadratSampleRecord) Row() Row {
	row := Row{{Column: "visit_id", Value: q.VisitID}}
	if q.SampleNr != nil {
		row = append(row, Field{Column: "sample_nr", Value: *q.SampleNr})
	}
	row = append(row, Field{Column: "species", Value: q.Species})
	if q.SpeciesCode != "" {
		row = append(row, Field{Column: "species_code", Value: q.SpeciesCode})
	}
	if q.VisitDate != nil {
		row = append(row, Field{Column: "visit_date", Value: *q.VisitDate})
	}
	if q.SpeciesNotes != "" {
		row = append(row, Field{Column: "species_notes", Value: q.SpeciesNotes})
	}
	if q.ResproutOrgan != "" {
		row = append(row, Field{Column: "resprout_organ", Value: q.ResproutOrgan})
	}
	if q.Seedbank != "" {
		row = append(row, Field{Column: "seedbank", Value: q.Seedbank})
	}
	counts := []struct {
		column string
		value  *int
	}{
		{"adults_unburnt", q.AdultsUnburnt},
		{"resprouts_live", q.ResproutsLive},
		{"resprouts_died", q.ResproutsDied},
		{"resprouts_kill", q.ResproutsKill},
		{"resprouts_reproductive", q.ResproutsReproductive},
		{"recruits_live", q.RecruitsLive},
		{"recruits_reproductive", q.RecruitsReproductive},
		{"recruits_died", q.RecruitsDied},
	}
	for _, c := range counts {
		if c.value != nil {
			row = append(row, Field{Column: c.column, Value: *c.value})
		}
	}
	if len(q.Comments) > 0 {
		row = append(row, Field{Column: "comments", Value: q.Comments})
	}
	return row
}

// FireHistoryRecord is one (site, fire event) pair with the original date
// text and the derived earliest/latest bounds.
type FireHistoryRecord struct {
	SiteLabel    string
	FireType     string
	FireDate     string
	EarliestDate *time.Time
	LatestDate   *time.Time
	Notes        []string
}

// Row renders the fire event as store columns.
func (f FireHistoryRecord) Row() Row {
	row := Row{{Column: "site_label", Value: f.SiteLabel}}
	if f.FireType != "" {
		row = append(row, Field{Column: "fire_type", Value: f.FireType})
	}
	if f.FireDate != "" {
		row = append(row, Field{Column: "fire_date", Value: f.FireDate})
	}
	if f.EarliestDate != nil {
		row = append(row, Field{Column: "earliest_date", Value: *f.EarliestDate})
	}
	if f.LatestDate != nil {
		row = append(row, Field{Column: "latest_date", Value: *f.LatestDate})
	}
	if len(f.Notes) > 0 {
		row = append(row, Field{Column: "notes", Value: f.Notes})
	}
	return row
}

// FireIntensityRecord is one measured fire-behaviour variable for one visit,
// carried as a best/lower/upper triplet with fixed units.
type FireIntensityRecord struct {
	VisitID   string
	VisitDate *time.Time
	Variable  string
	RawValue  []string
	Best      *float64
	Lower     *float64
	Upper     *float64
	Units     string
	Comments  []string
}

// Row renders the measurement as store columns.
func (f FireIntensityRecord) Row() Row {
	row := Row{
		{Column: "visit_id", Value: f.VisitID},
		{Column: "measured_var", Value: f.Variable},
	}
	if f.VisitDate != nil {
		row = append(row, Field{Column: "visit_date", Value: *f.VisitDate})
	}
	if len(f.RawValue) > 0 {
		row = append(row, Field{Column: "raw_value", Value: f.RawValue})
	}
	if f.Best != nil {
		row = append(row, Field{Column: "best", Value: *f.Best})
	}
	if f.Lower != nil {
		row = append(row, Field{Column: "lower", Value: *f.Lower})
	}
	if f.Upper != nil {
		row = append(row, Field{Column: "upper", Value: *f.Upper})
	}
	if f.Units != "" {
		row = append(row, Field{Column: "units", Value: f.Units})
	}
	if len(f.Comments) > 0 {
		row = append(row, Field{Column: "comments", Value: f.Comments})
	}
	return row
}
