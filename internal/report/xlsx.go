package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
)

const (
	SheetSummary  = "Summary"
	SheetFindings = "Vulnerabilities"
)

var xlsxFindingColumns = []string{"#", "Name", "Severity", "Confidence", "URL", "Description", "Solution", "Reference"}

// XLSXRenderer writes a Summary sheet and a Vulnerabilities sheet.
type XLSXRenderer struct{}

func (XLSXRenderer) Render(_ context.Context, w io.Writer, data *schema.ScanData, meta Meta) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := writeSummarySheet(f, data, meta); err != nil {
		return fmt.Errorf("xlsx summary: %w", err)
	}

	if _, err := f.NewSheet(SheetFindings); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := writeFindingsSheet(f, data.Findings); err != nil {
		return fmt.Errorf("xlsx findings: %w", err)
	}

	ts := meta.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:          "Security Scan Report - " + data.Scan.TargetURL,
		Creator:        meta.Generator,
		LastModifiedBy: meta.Generator,
		Identifier:     meta.ReportID,
		Created:        ts,
		Modified:       ts,
	}); err != nil {
		return fmt.Errorf("xlsx doc props: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, data *schema.ScanData, meta Meta) error {
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16, Color: "667EEA"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(SheetSummary, "A1", "Security Scan Report"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A1", titleStyle); err != nil {
		return err
	}

	c := data.Counts()
	rows := [][]interface{}{
		{"Target URL", data.Scan.TargetURL},
		{"Scan Type", titleCase.String(data.Scan.ScanType)},
		{"Total Issues", c.Total},
	}
	for _, sev := range schema.SeverityOrder {
		rows = append(rows, []interface{}{sev.Label(), c.Of(sev)})
	}
	rows = append(rows,
		[]interface{}{"Status", titleCase.String(string(data.Scan.Status))},
		[]interface{}{"Report Generated", meta.generatedAtText()},
		[]interface{}{"Report ID", meta.ReportID},
	)

	// data starts on row 3, leaving a gap under the title
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(1, len(rows)+2)
	if err := f.SetCellStyle(SheetSummary, "A3", last, labelStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 20); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "B", "B", 60)
}

func writeFindingsSheet(f *excelize.File, findings []schema.Finding) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"667EEA"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}

	header := make([]interface{}, len(xlsxFindingColumns))
	for i, h := range xlsxFindingColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetFindings, "A1", &header); err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(xlsxFindingColumns), 1)
	if err := f.SetCellStyle(SheetFindings, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, fd := range findings {
		row := []interface{}{
			i + 1,
			fd.Name,
			string(fd.Severity),
			fd.Confidence,
			fd.URL,
			fd.Description,
			fd.Solution,
			fd.Reference,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetFindings, cell, &row); err != nil {
			return err
		}
	}
	if len(findings) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(xlsxFindingColumns), len(findings)+1)
		if err := f.SetCellStyle(SheetFindings, "F2", last, wrapStyle); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 5, "B": 30, "C": 12, "D": 12, "E": 40, "F": 50, "G": 50, "H": 40}
	for _, col := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		if err := f.SetColWidth(SheetFindings, col, col, widths[col]); err != nil {
			return err
		}
	}
	return f.SetPanes(SheetFindings, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
