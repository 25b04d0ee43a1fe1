package refs

import (
	"fmt"
	"strconv"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

// TableSource iterates the rows of a References worksheet.
type TableSource interface {
	RowCount() int
	Row(nr int, cols []string) (domain.SheetRow, error)
}

// Tables holds the three code lookup tables read from a References
// worksheet: numeric footnotes, alphabetic tags, and row-number tags for
// codes that only ever appear as hyperlink targets.
type Tables struct {
	Footnotes map[int]string
	Tags      map[string]string
	RowTags   map[string]string
}

// LoadTables reads the code and citation columns of a References worksheet
// into lookup tables. Numeric codes become footnotes, everything else a tag;
// every row is also addressable by its row number.
func LoadTables(src TableSource, codeCol, citationCol string) (*Tables, error) {
	t := &Tables{
		Footnotes: make(map[int]string),
		Tags:      make(map[string]string),
		RowTags:   make(map[string]string),
	}
	cols := []string{codeCol, citationCol}
	for nr := 2; nr <= src.RowCount(); nr++ {
		row, err := src.Row(nr, cols)
		if err != nil {
			return nil, fmt.Errorf("read references row %d: %w", nr, err)
		}
		citation := row.Cell(citationCol).Text()
		if citation == "" {
			continue
		}
		t.RowTags[strconv.Itoa(nr)] = citation

		code := row.Cell(codeCol).Text()
		if code == "" {
			continue
		}
		if n, err := strconv.Atoi(code); err == nil {
			t.Footnotes[n] = citation
		} else {
			t.Tags[code] = citation
		}
	}
	return t, nil
}

// NewResolverFromTables builds a resolver over loaded tables.
func NewResolverFromTables(lookup SheetLookup, t *Tables) *Resolver {
	return NewResolver(lookup, t.Footnotes, t.Tags, t.RowTags)
}
