// Package report writes distance reports as Excel workbooks.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const DefaultSheet = "Distances"

// Row is one entity line in the report. Miles is nil when the label is a sentinel.
type Row struct {
	ID      string
	Name    string
	Address string
	Kind    string
	Label   string
	Miles   *float64
}

var headers = []interface{}{"ID", "Name", "Address", "Kind", "Distance", "Miles"}

// WriteDistances saves rows to path as a single-sheet workbook, with a metadata
// line recording the origin and generation time above the header.
func WriteDistances(path, sheetName, origin string, generatedAt time.Time, rows []Row) error {
	if sheetName == "" {
		sheetName = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("write report: new sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("write report: stream writer: %w", err)
	}

	meta := []interface{}{"Origin", origin, "Generated", generatedAt.UTC().Format(time.RFC3339)}
	if err := sw.SetRow("A1", meta); err != nil {
		return fmt.Errorf("write report: metadata: %w", err)
	}
	if err := sw.SetRow("A2", headers); err != nil {
		return fmt.Errorf("write report: header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return fmt.Errorf("write report: cell name: %w", err)
		}

		var miles interface{} = ""
		if r.Miles != nil {
			miles = *r.Miles
		}
		row := []interface{}{r.ID, r.Name, r.Address, r.Kind, r.Label, miles}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write report: row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("write report: flush: %w", err)
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("write report: drop default sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write report: save %s: %w", path, err)
	}
	return nil
}
