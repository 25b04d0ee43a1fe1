// Command genworkbook writes a small synthetic field-survey workbook for
// local dry-run testing. The generated sheets follow the layout of the
// 2022 post-fire survey workbooks: a combined site/visit sheet, a quadrat
// sheet, and a References sheet with hyperlinked codes.
//
// Usage:
//
//	go run ./cmd/genworkbook -out testdata/survey.xlsx
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "survey.xlsx", "output path for the generated workbook")
	flag.Parse()

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory file

	if err := writeSiteVisitSheet(f); err != nil {
		return fmt.Errorf("site/visit sheet: %w", err)
	}
	if err := writeQuadratSheet(f); err != nil {
		return fmt.Errorf("quadrat sheet: %w", err)
	}
	if err := writeReferencesSheet(f); err != nil {
		return fmt.Errorf("references sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := f.SaveAs(*out); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	log.Printf("wrote workbook: %s", *out)
	return nil
}

func writeSiteVisitSheet(f *excelize.File) error {
	const sheet = "Sites"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Site Number", "Visit date 1", "Visit date 2", "Observer", "Lon", "Lat", "Elevation (m)", "Fire date", "Fire type"},
		{"Site", nil, nil, nil, nil, nil, nil, nil, nil}, // template marker row
		{"CC01", "08/02/2022", "22/03/2022", "J. Smith, A. Nguyen", 151.21, -33.85, 84, "2019-11", "Wildfire"},
		{"CC02", "09/02/2022", nil, "J. Smith", 151.25, -33.88, 120, "1990-95", "Prescribed burn"},
		{"UL01", "15/02/2022", nil, "A. Nguyen", 150.98, -34.02, 310, ">1995", "Wildfire"},
	}
	return writeRows(f, sheet, rows)
}

func writeQuadratSheet(f *excelize.File) error {
	const sheet = "Quadrats"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Site", "Sample", "Species", "Spcode", "Resprout organ", "Seedbank", "Adults unburnt", "Resprouts live", "Recruits live", "Comments"},
		{"CC01", 1, "Acacia terminalis", 712, "basal", "Soil-persistent", 3, 5, 12, nil},
		{"CC01", 1, "Banksia serrata", 1044, "Epicormic", "Canopy", "ca. 4", 2, 0, "burnt crown"},
		{"CC02", 2, "Telopea speciosissima", 2301, "Lignotuber", "soil-persistent", 1, 1, 3, nil},
	}
	return writeRows(f, sheet, rows)
}

func writeReferencesSheet(f *excelize.File) error {
	const sheet = "References"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Code", "Citation"},
		{"1", "Benson & McDougall (1993) Ecology of Sydney plant species"},
		{"2", "Keith (1996) Fire-driven extinction of plant populations"},
		{"FOI", "Flora of Australia, online edition"},
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.JoinCellName("A", i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
