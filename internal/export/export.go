// Package export serializes a batch to spreadsheet artifacts: one row per
// record, one column per field, header = field name. Highlight styling is a
// presentation concern and is never baked into the exported bytes.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"bondcheck/internal/models"
)

// xlsxHeader mirrors the csv tags of SecurityRecord.
var xlsxHeader = []string{
	"ISIN", "SECID", "EMITTER_ID", "ISSUER", "NAME",
	"MATDATE", "PUTDATE", "CALLDATE", "RECORDDATE", "COUPONDATE",
	"FACEUNIT", "COUPONVALUE",
}

// WriteFile writes the records to path, picking the format from the
// extension (.csv or .xlsx).
func WriteFile(path string, records []models.SecurityRecord) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		return WriteCSV(f, records)
	case ".xlsx":
		return WriteXLSX(path, records)
	default:
		return fmt.Errorf("unsupported export format %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

// WriteCSV writes the records as CSV.
func WriteCSV(w io.Writer, records []models.SecurityRecord) error {
	return gocsv.Marshal(&records, w)
}

// WriteXLSX writes the records as a single-sheet workbook.
func WriteXLSX(path string, records []models.SecurityRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range xlsxHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for i, r := range records {
		values := []string{
			r.ISIN, r.SecondaryCode, r.EmitterID, r.Issuer, r.Name,
			r.MaturityDate.String(), r.PutDate.String(), r.CallDate.String(),
			r.NextRecordDate.String(), r.NextCouponDate.String(),
			r.FaceUnit, r.CouponValue,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
