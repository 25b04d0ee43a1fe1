// Package reconcile matches candidate visit/sample records against a
// snapshot of already-persisted visits before anything is inserted. A
// candidate either resolves to a full (visit_id, visit_date) identity, is
// unknown to the store (surfaced for operator review), or cannot be
// completed and is reported rather than persisted.
package reconcile

import (
	"fmt"
	"time"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

// Candidate is one deduplicated sample record with its reconciliation
// outcome. Found counts the snapshot rows matching the candidate's key:
// 0 means the visit (or its date/replicate) is unknown, 1 is a unique
// match, more means the key is ambiguous.
type Candidate struct {
	domain.SampleRecord
	Found int
}

// Result partitions the candidates after reconciliation. Only Resolved
// candidates may be inserted; the other groups are surfaced to the operator
// and never silently dropped.
type Result struct {
	Resolved   []domain.SampleRecord
	Unknown    []Candidate // visit_id absent from the snapshot
	Unresolved []Candidate // known visit_id but no unique date resolution
}

// VisitIDs lists the distinct visit ids of a candidate batch, in first-seen
// order; used to scope the snapshot query.
func VisitIDs(records []domain.SampleRecord) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range records {
		if _, ok := seen[r.VisitID]; !ok {
			seen[r.VisitID] = struct{}{}
			ids = append(ids, r.VisitID)
		}
	}
	return ids
}

// Reconcile deduplicates the candidate records and resolves each against
// the snapshot index. A candidate carrying a visit date is matched exactly
// on (visit_id, visit_date); one carrying only a replicate number is
// matched on (visit_id, replicate_nr) and, on a unique match, inherits the
// snapshot's date.
func Reconcile(records []domain.SampleRecord, visits *domain.VisitIndex) Result {
	var result Result
	seen := make(map[string]struct{})

	for _, rec := range records {
		key := recordKey(rec)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if !visits.HasVisit(rec.VisitID) {
			result.Unknown = append(result.Unknown, Candidate{SampleRecord: rec})
			continue
		}

		cand := Candidate{SampleRecord: rec}
		switch {
		case rec.VisitDate != nil:
			cand.Found = visits.MatchDate(rec.VisitID, *rec.VisitDate)
		case rec.ReplicateNr != nil:
			dates := visits.MatchReplicate(rec.VisitID, *rec.ReplicateNr)
			cand.Found = len(dates)
			if len(dates) == 1 {
				d := dates[0]
				cand.VisitDate = &d
			}
		}

		if cand.VisitDate != nil {
			result.Resolved = append(result.Resolved, cand.SampleRecord)
		} else {
			result.Unresolved = append(result.Unresolved, cand)
		}
	}
	return result
}

// recordKey is a full-equality key over every field of a sample record.
func recordKey(r domain.SampleRecord) string {
	date := ""
	if r.VisitDate != nil {
		date = r.VisitDate.Format(time.DateOnly)
	}
	rep, sample := "", ""
	if r.ReplicateNr != nil {
		rep = fmt.Sprint(*r.ReplicateNr)
	}
	if r.SampleNr != nil {
		sample = fmt.Sprint(*r.SampleNr)
	}
	return fmt.Sprintf("%s|%s|%s|%s", r.VisitID, date, rep, sample)
}
