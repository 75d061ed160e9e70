// Package report renders run summaries as Excel workbooks.
package report

import (
	"fmt"
	"time"

	"ecommerce-datagen/internal/models"
	"ecommerce-datagen/internal/services"

	"github.com/xuri/excelize/v2"
)

// Sheet names
const (
	SheetSummary      = "Summary"
	SheetTables       = "Tables"
	SheetStages       = "Stages"
	SheetVerification = "Verification"
)

// WriteRunReport writes summary, and verification when not nil, to an XLSX
// file at path.
func WriteRunReport(path string, summary *services.RunSummary, verification *services.VerificationReport) error {
	f, err := BuildRunReport(summary, verification)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// BuildRunReport builds the report workbook in memory.
func BuildRunReport(summary *services.RunSummary, verification *services.VerificationReport) (*excelize.File, error) {
	if summary == nil {
		return nil, fmt.Errorf("run summary is required")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	w := &sheetWriter{f: f, headerStyle: headerStyle}

	w.table(SheetSummary, []string{"Field", "Value"}, [][]interface{}{
		{"Run ID", summary.RunID.String()},
		{"Seed", fmt.Sprintf("%d", summary.Seed)},
		{"Status", string(summary.Status)},
		{"Started", summary.StartedAt.UTC().Format(time.RFC3339)},
		{"Finished", summary.FinishedAt.UTC().Format(time.RFC3339)},
		{"Duration (s)", summary.Duration().Seconds()},
		{"Total rows", summary.TotalRows()},
		{"Error", summary.Error},
	})

	tableRows := make([][]interface{}, 0, len(models.Tables))
	for _, table := range models.Tables {
		tableRows = append(tableRows, []interface{}{table, summary.Rows[table]})
	}
	w.newSheet(SheetTables)
	w.table(SheetTables, []string{"Table", "Rows inserted"}, tableRows)

	stageRows := make([][]interface{}, 0, len(summary.Stages))
	for _, stage := range summary.Stages {
		stageRows = append(stageRows, []interface{}{stage.Stage, stage.Rows, stage.DurationSeconds})
	}
	w.newSheet(SheetStages)
	w.table(SheetStages, []string{"Stage", "Rows", "Duration (s)"}, stageRows)

	if verification != nil {
		var rows [][]interface{}
		for _, rule := range verification.Rules {
			rows = append(rows, []interface{}{rule.Rule, rule.Checked, rule.Violations, "", "", ""})
			for _, v := range rule.Samples {
				rows = append(rows, []interface{}{rule.Rule, "", "", v.Table, v.RowID, v.Detail})
			}
		}
		w.newSheet(SheetVerification)
		w.table(SheetVerification, []string{"Rule", "Checked", "Violations", "Table", "Row ID", "Detail"}, rows)
	}

	if w.err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build report: %w", w.err)
	}
	return f, nil
}

// sheetWriter keeps the first error so cell writes read straight through.
type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (w *sheetWriter) newSheet(name string) {
	if w.err != nil {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

func (w *sheetWriter) table(sheet string, headers []string, rows [][]interface{}) {
	if w.err != nil {
		return
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if w.err = w.f.SetCellValue(sheet, cell, header); w.err != nil {
			return
		}
		w.f.SetCellStyle(sheet, cell, cell, w.headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		w.f.SetColWidth(sheet, colName, colName, 22)
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if w.err = w.f.SetCellValue(sheet, cell, value); w.err != nil {
				return
			}
		}
	}
}
