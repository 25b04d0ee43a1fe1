// Package workbook reads survey and trait workbooks through excelize,
// exposing cells with the value, hyperlink target and font metadata the
// extractors need. Data rows start at row 2; row 1 is the header.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fireveg/fireveg-etl/internal/domain"
)

// DataStartRow is the first worksheet row holding data.
const DataStartRow = 2

// Workbook is an open spreadsheet file.
type Workbook struct {
	f    *excelize.File
	path string
}

// Open opens a workbook file.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{f: f, path: path}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheet opens a named worksheet.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("workbook %s has no worksheet %q", w.path, name)
	}
	rows, err := w.f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", name, err)
	}
	return &Sheet{f: w.f, name: name, rowCount: len(rows)}, nil
}

// Sheet is one worksheet of an open workbook.
type Sheet struct {
	f        *excelize.File
	name     string
	rowCount int
}

// Name returns the worksheet name.
func (s *Sheet) Name() string { return s.name }

// RowCount returns the number of used rows, header included.
func (s *Sheet) RowCount() int { return s.rowCount }

// Row reads the named columns of one row.
func (s *Sheet) Row(nr int, cols []string) (domain.SheetRow, error) {
	row := make(domain.SheetRow, len(cols))
	for _, col := range cols {
		if col == "" {
			continue
		}
		cell, err := s.Cell(col, nr)
		if err != nil {
			return nil, err
		}
		row[col] = cell
	}
	return row, nil
}

// Cell reads one cell with its hyperlink and font metadata.
func (s *Sheet) Cell(col string, rowNr int) (domain.Cell, error) {
	ref, err := excelize.JoinCellName(col, rowNr)
	if err != nil {
		return domain.Cell{}, fmt.Errorf("cell reference %s%d: %w", col, rowNr, err)
	}
	return s.CellByRef(ref)
}

// CellByRef reads one cell by its full reference, e.g. "C84". It implements
// the lookup needed for hyperlinked reference resolution.
func (s *Sheet) CellByRef(ref string) (domain.Cell, error) {
	value, err := s.f.GetCellValue(s.name, ref)
	if err != nil {
		return domain.Cell{}, fmt.Errorf("read cell %s!%s: %w", s.name, ref, err)
	}

	cell := domain.Cell{}
	if value != "" {
		cell.Value = value
	}

	if linked, target, err := s.f.GetCellHyperLink(s.name, ref); err == nil && linked {
		cell.Hyperlink = target
	}

	if styleID, err := s.f.GetCellStyle(s.name, ref); err == nil {
		if style, err := s.f.GetStyle(styleID); err == nil && style.Font != nil {
			cell.FontColor = style.Font.Color
			cell.Strikethrough = style.Font.Strike
		}
	}
	return cell, nil
}

// HeaderValue returns the header (row 1) text of a column; trait importers
// use it as the variable name.
func (s *Sheet) HeaderValue(col string) (string, error) {
	cell, err := s.Cell(col, 1)
	if err != nil {
		return "", err
	}
	return cell.Text(), nil
}
