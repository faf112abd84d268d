package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
)

// UTF-8 BOM for Excel compatibility.
const utf8BOM = "\xEF\xBB\xBF"

var csvColumns = []string{
	"Vulnerability Name",
	"Severity",
	"Confidence",
	"URL",
	"Description",
	"Solution",
	"Reference",
}

// CSVOptions configures the CSV renderer.
type CSVOptions struct {
	// IncludeSummary appends a "# SUMMARY" block with the four counts.
	// Summary rows are padded to the header width.
	IncludeSummary bool

	// ExcelCompatible prefixes the output with a UTF-8 BOM.
	ExcelCompatible bool

	// SanitizeFormulas prefixes cells starting with = + - @ TAB CR with a
	// single quote. Off by default: it alters the stored values.
	SanitizeFormulas bool
}

func DefaultCSVOptions() CSVOptions {
	return CSVOptions{}
}

// CSVRenderer writes one row per finding in stored order.
type CSVRenderer struct {
	Options CSVOptions
}

func (r CSVRenderer) Render(_ context.Context, w io.Writer, data *schema.ScanData, _ Meta) error {
	if r.Options.ExcelCompatible {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range data.Findings {
		row := []string{
			f.Name,
			string(f.Severity),
			f.Confidence,
			f.URL,
			f.Description,
			f.Solution,
			f.Reference,
		}
		if r.Options.SanitizeFormulas {
			for i := range row {
				row[i] = sanitizeForCSV(row[i])
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if r.Options.IncludeSummary {
		c := data.Counts()
		_ = cw.Write([]string{})
		_ = cw.Write(csvRow("# SUMMARY"))
		_ = cw.Write(csvRow("Total Issues", strconv.Itoa(c.Total)))
		for _, sev := range schema.SeverityOrder {
			_ = cw.Write(csvRow(sev.Label(), strconv.Itoa(c.Of(sev))))
		}
	}

	cw.Flush()
	return cw.Error()
}

// csvRow pads fields to the column count so strict readers accept the file.
func csvRow(fields ...string) []string {
	row := make([]string, len(csvColumns))
	copy(row, fields)
	return row
}

// sanitizeForCSV prevents formula execution when the file is opened in a
// spreadsheet.
func sanitizeForCSV(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
