package domain

import "time"

// SampleColumns declares the physical columns of a field-sample worksheet.
// FixedReplicateNr supplies the replicate as a literal for sheets that hold
// a single replicate.
type SampleColumns struct {
	VisitID          string `yaml:"visit_id"`
	ReplicateNr      string `yaml:"replicate_nr"`
	FixedReplicateNr *int   `yaml:"fixed_replicate_nr"`
	SampleNr         string `yaml:"sample_nr"`
	Date             string `yaml:"date"`
}

// Columns lists every physical column the sample builder reads.
func (c SampleColumns) Columns() []string {
	return compactColumns([]string{c.VisitID, c.ReplicateNr, c.SampleNr, c.Date})
}

// BuildSampleRecords builds the sample record for one worksheet row. The
// visit date is attached only when the sheet records it directly; otherwise
// the reconciler resolves it later.
func BuildSampleRecords(row SheetRow, cols SampleColumns) []SampleRecord {
	visitID := row.Cell(cols.VisitID).Text()
	if visitID == "" || IsSentinelLabel(visitID) {
		return nil
	}
	rec := SampleRecord{VisitID: visitID}

	switch {
	case cols.ReplicateNr != "":
		if n, ok := row.Cell(cols.ReplicateNr).Int(); ok {
			rec.ReplicateNr = &n
		}
	case cols.FixedReplicateNr != nil:
		n := *cols.FixedReplicateNr
		rec.ReplicateNr = &n
	}

	if cols.SampleNr != "" {
		if n, ok := row.Cell(cols.SampleNr).Int(); ok {
			rec.SampleNr = &n
		}
	}
	if cols.Date != "" {
		if d, ok := row.Cell(cols.Date).Date(); ok {
			rec.VisitDate = &d
		}
	}
	return []SampleRecord{rec}
}

// VisitKey is one persisted visit identity row: the natural join target for
// reconciliation and quadrat date inference.
type VisitKey struct {
	VisitID     string
	VisitDate   time.Time
	ReplicateNr *int
}

// VisitIndex indexes persisted visits by their natural join keys for O(1)
// lookups with an explicit unique/none/multiple outcome.
type VisitIndex struct {
	ids         map[string]struct{}
	byDate      map[visitDateKey]int
	byReplicate map[visitReplicateKey][]time.Time
}

type visitDateKey struct {
	visitID string
	date    time.Time
}

type visitReplicateKey struct {
	visitID   string
	replicate int
}

// NewVisitIndex builds an index over a snapshot of persisted visits.
func NewVisitIndex(keys []VisitKey) *VisitIndex {
	ix := &VisitIndex{
		ids:         make(map[string]struct{}),
		byDate:      make(map[visitDateKey]int),
		byReplicate: make(map[visitReplicateKey][]time.Time),
	}
	for _, k := range keys {
		ix.ids[k.VisitID] = struct{}{}
		ix.byDate[visitDateKey{k.VisitID, dateOnly(k.VisitDate)}]++
		if k.ReplicateNr != nil {
			rk := visitReplicateKey{k.VisitID, *k.ReplicateNr}
			ix.byReplicate[rk] = append(ix.byReplicate[rk], dateOnly(k.VisitDate))
		}
	}
	return ix
}

// HasVisit reports whether any persisted visit exists for the id.
func (ix *VisitIndex) HasVisit(visitID string) bool {
	_, ok := ix.ids[visitID]
	return ok
}

// MatchDate counts persisted visits with the exact (visit_id, visit_date).
func (ix *VisitIndex) MatchDate(visitID string, date time.Time) int {
	return ix.byDate[visitDateKey{visitID, dateOnly(date)}]
}

// MatchReplicate returns the persisted dates for (visit_id, replicate_nr).
// Exactly one returned date means the match is unique and the date may be
// inherited.
func (ix *VisitIndex) MatchReplicate(visitID string, replicate int) []time.Time {
	return ix.byReplicate[visitReplicateKey{visitID, replicate}]
}
