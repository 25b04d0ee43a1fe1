// Package refs resolves the reference codes used by literature trait
// workbooks: numeric footnotes, alphabetic tags and row-number tags, found
// either inline in cell text or behind hyperlinks into a References
// worksheet.
package refs

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

// ReferencesSheet is the worksheet name hyperlinked reference codes must
// point at.
const ReferencesSheet = "References"

var (
	codeSplitRe     = regexp.MustCompile(`[,;\s]+`)
	disambiguatorRe = regexp.MustCompile(`[abc]$`)
	rowDigitsRe     = regexp.MustCompile(`\d+`)
)

// ErrNoHyperlink is returned when hyperlink resolution is attempted on a
// cell without one. That is a caller bug, not a data-quality issue.
var ErrNoHyperlink = errors.New("cell has no hyperlink")

// SheetLookup reads cells of the References worksheet by cell reference
// (e.g. "C84").
type SheetLookup interface {
	CellByRef(ref string) (domain.Cell, error)
}

// Resolver maps reference codes onto canonical citation strings using three
// lookup tables: numeric footnote codes, and two alphabetic tag tables that
// are both consulted because a code may exist in either or both.
type Resolver struct {
	lookup    SheetLookup
	footnotes map[int]string
	tags      map[string]string
	rowTags   map[string]string
}

// NewResolver builds a resolver over the given lookup tables. The sheet
// lookup may be nil when only inline codes are resolved.
func NewResolver(lookup SheetLookup, footnotes map[int]string, tags, rowTags map[string]string) *Resolver {
	return &Resolver{lookup: lookup, footnotes: footnotes, tags: tags, rowTags: rowTags}
}

// ResolveHyperlink follows a cell's hyperlink into the References worksheet
// and resolves the code string found there. It fails when the cell has no
// hyperlink, and yields no resolution (nil, nil) when the link targets a
// different sheet or an empty cell.
func (r *Resolver) ResolveHyperlink(cell domain.Cell) (*domain.ResolvedReference, error) {
	if cell.Hyperlink == "" {
		return nil, ErrNoHyperlink
	}
	sheet, ref, ok := strings.Cut(cell.Hyperlink, "!")
	if !ok || sheet != ReferencesSheet {
		return nil, nil
	}
	// A handful of historic links carry stray backslashes in the cell ref.
	ref = strings.ReplaceAll(ref, `\`, "")

	target, err := r.lookup.CellByRef(ref)
	if err != nil {
		return nil, err
	}
	if target.Empty() {
		// Some links target a row whose code cell is blank; the row number
		// itself is the tag then.
		rowNr := rowDigitsRe.FindString(ref)
		if citation, ok := r.rowTags[rowNr]; ok {
			return &domain.ResolvedReference{Codes: rowNr, Sources: []string{citation}}, nil
		}
		return nil, nil
	}
	codes := target.Text()
	return &domain.ResolvedReference{Codes: codes, Sources: r.ResolveCodes(codes)}, nil
}

// ResolveCodes splits a composite code string and resolves each code,
// returning the citations in input order. Numeric codes consult the
// footnote table; alphabetic codes consult both tag tables, concatenating
// matches. A trailing single-letter a/b/c disambiguator is stripped first.
func (r *Resolver) ResolveCodes(codes string) []string {
	var out []string
	for _, code := range codeSplitRe.Split(strings.TrimSpace(codes), -1) {
		code = disambiguatorRe.ReplaceAllString(strings.TrimSpace(code), "")
		if code == "" {
			continue
		}
		if n, err := strconv.Atoi(code); err == nil {
			if citation, ok := r.footnotes[n]; ok {
				out = append(out, citation)
			}
			continue
		}
		if citation, ok := r.tags[code]; ok {
			out = append(out, citation)
		}
		if citation, ok := r.rowTags[code]; ok {
			out = append(out, citation)
		}
	}
	return out
}
