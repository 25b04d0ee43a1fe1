package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

type fakeSheet struct {
	cells map[string]domain.Cell
}

func (f *fakeSheet) CellByRef(ref string) (domain.Cell, error) {
	return f.cells[ref], nil
}

func testResolver(lookup SheetLookup) *Resolver {
	return NewResolver(lookup,
		map[int]string{12: "Auld, T.D. (1996) Ecology of the Fabaceae", 14: "Benson, D. (1985) Fire effects"},
		map[string]string{"FOI": "Flora of Australia Online"},
		map[string]string{"84": "Keith, D. (1996) Fire-driven extinction"},
	)
}

func TestResolveCodes(t *testing.T) {
	r := testResolver(nil)

	t.Run("composite codes resolved in order", func(t *testing.T) {
		got := r.ResolveCodes("12, 14; FOI")
		assert.Equal(t, []string{
			"Auld, T.D. (1996) Ecology of the Fabaceae",
			"Benson, D. (1985) Fire effects",
			"Flora of Australia Online",
		}, got)
	})

	t.Run("trailing disambiguator stripped", func(t *testing.T) {
		got := r.ResolveCodes("14a")
		assert.Equal(t, []string{"Benson, D. (1985) Fire effects"}, got)
	})

	t.Run("unknown codes dropped", func(t *testing.T) {
		assert.Empty(t, r.ResolveCodes("99, XYZ"))
	})

	t.Run("blank input", func(t *testing.T) {
		assert.Empty(t, r.ResolveCodes("  "))
	})
}

func TestResolveHyperlink(t *testing.T) {
	sheet := &fakeSheet{cells: map[string]domain.Cell{
		"C12": {Value: "12, 14"},
		"C84": {},
	}}
	r := testResolver(sheet)

	t.Run("link into references sheet resolved", func(t *testing.T) {
		ref, err := r.ResolveHyperlink(domain.Cell{Value: "x", Hyperlink: "References!C12"})
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, "12, 14", ref.Codes)
		assert.Len(t, ref.Sources, 2)
	})

	t.Run("stray backslashes in cell ref cleaned", func(t *testing.T) {
		ref, err := r.ResolveHyperlink(domain.Cell{Value: "x", Hyperlink: `References!\C12`})
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, "12, 14", ref.Codes)
	})

	t.Run("empty target falls back to row tag", func(t *testing.T) {
		ref, err := r.ResolveHyperlink(domain.Cell{Value: "x", Hyperlink: "References!C84"})
		require.NoError(t, err)
		require.NotNil(t, ref)
		assert.Equal(t, "84", ref.Codes)
		assert.Equal(t, []string{"Keith, D. (1996) Fire-driven extinction"}, ref.Sources)
	})

	t.Run("link into another sheet ignored", func(t *testing.T) {
		ref, err := r.ResolveHyperlink(domain.Cell{Value: "x", Hyperlink: "Sites!A1"})
		require.NoError(t, err)
		assert.Nil(t, ref)
	})

	t.Run("no hyperlink is a caller error", func(t *testing.T) {
		_, err := r.ResolveHyperlink(domain.Cell{Value: "x"})
		assert.ErrorIs(t, err, ErrNoHyperlink)
	})
}

type fakeTableSource struct {
	rows []domain.SheetRow
}

func (f *fakeTableSource) RowCount() int { return len(f.rows) + 1 }

func (f *fakeTableSource) Row(nr int, cols []string) (domain.SheetRow, error) {
	return f.rows[nr-2], nil
}

func TestLoadTables(t *testing.T) {
	src := &fakeTableSource{rows: []domain.SheetRow{
		{"A": {Value: 1}, "C": {Value: "Auld (1996)"}},
		{"A": {Value: "FOI"}, "C": {Value: "Flora of Australia Online"}},
		{"A": {Value: "x"}, "C": {Value: ""}},
		{"C": {Value: "Keith (1996)"}},
	}}

	tables, err := LoadTables(src, "A", "C")
	require.NoError(t, err)

	assert.Equal(t, map[int]string{1: "Auld (1996)"}, tables.Footnotes)
	assert.Equal(t, map[string]string{"FOI": "Flora of Australia Online"}, tables.Tags)
	assert.Equal(t, map[string]string{
		"2": "Auld (1996)",
		"3": "Flora of Australia Online",
		"5": "Keith (1996)",
	}, tables.RowTags)
}
