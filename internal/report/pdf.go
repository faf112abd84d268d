package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	gofpdf "github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
)

const utf8Family = "report"

var errNotTrueType = errors.New("not a TrueType font")

// loadUTF8Font checks that path holds a TrueType font fpdf can embed. fpdf
// only prints parse failures and can panic on truncated tables, so the font
// is registered on a scratch document and selected once.
func loadUTF8Font(path string) (err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(raw) < 12 || !(bytes.HasPrefix(raw, []byte{0, 1, 0, 0}) || bytes.HasPrefix(raw, []byte("true"))) {
		return errNotTrueType
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errNotTrueType, r)
		}
	}()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(utf8Family, "", raw)
	pdf.AddPage()
	pdf.SetFont(utf8Family, "", 10)
	return pdf.Error()
}

type rgb [3]int

var (
	brandColor = rgb{102, 126, 234}
	textColor  = rgb{51, 51, 51}
	mutedColor = rgb{102, 102, 102}

	severityColors = map[string]rgb{
		"high":   {220, 53, 69},
		"medium": {204, 150, 0},
		"low":    {23, 162, 184},
		"info":   {108, 117, 125},
	}
)

// PDFRenderer lays the report out with fpdf. Without a font file the core
// Helvetica font is used and text is mapped to cp1252.
type PDFRenderer struct {
	FontPath string
	// Compress deflates page streams. Tests turn it off to search text.
	Compress bool
}

func NewPDFRenderer(fontPath string) *PDFRenderer {
	return &PDFRenderer{FontPath: fontPath, Compress: true}
}

// Unencodable lists the report fields holding characters the core font
// cannot show. They print as dots. Always empty when a font file is set.
func (r *PDFRenderer) Unencodable(data *schema.ScanData) []string {
	if r.FontPath != "" {
		return nil
	}
	var fields []string
	check := func(name, s string) {
		for _, c := range s {
			if _, ok := charmap.Windows1252.EncodeRune(c); !ok && !unicode.IsControl(c) {
				fields = append(fields, name)
				return
			}
		}
	}
	check("target_url", data.Scan.TargetURL)
	for i, f := range data.Findings {
		prefix := fmt.Sprintf("vulnerabilities[%d].", i)
		check(prefix+"name", f.Name)
		check(prefix+"url", f.URL)
		check(prefix+"description", f.Description)
		check(prefix+"solution", f.Solution)
		check(prefix+"reference", f.Reference)
	}
	return fields
}

// pdfDoc carries the document and its font settings through the sections.
type pdfDoc struct {
	*gofpdf.Fpdf
	family string
	tr     func(string) string
}

func (r *PDFRenderer) Render(_ context.Context, w io.Writer, data *schema.ScanData, meta Meta) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetCreationDate(meta.GeneratedAt)
	pdf.SetModificationDate(meta.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	doc := &pdfDoc{Fpdf: pdf, family: "Helvetica", tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if r.FontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", r.FontPath)
		pdf.AddUTF8Font(utf8Family, "B", r.FontPath)
		doc.family = utf8Family
		doc.tr = func(s string) string { return s }
	}

	pdf.SetTitle("Security Scan Report - "+data.Scan.TargetURL, true)
	pdf.SetAuthor(meta.Generator, true)
	pdf.SetCreator(meta.generatorLine(), true)
	pdf.SetSubject("Report ID "+meta.ReportID, true)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		doc.font("", 8, mutedColor)
		pdf.CellFormat(0, 10, doc.tr(fmt.Sprintf("Report ID: %s    Page %d/{nb}", meta.ReportID, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	doc.addTitle(data)
	doc.addSummary(data.Counts())
	doc.addScanInfo(data.Scan, meta)

	pdf.AddPage()
	doc.addFindings(data.Findings)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func (d *pdfDoc) font(style string, size float64, c rgb) {
	d.SetFont(d.family, style, size)
	d.SetTextColor(c[0], c[1], c[2])
}

func (d *pdfDoc) heading(text string) {
	d.font("B", 16, brandColor)
	d.CellFormat(0, 10, d.tr(text), "", 1, "L", false, 0, "")
	d.SetDrawColor(brandColor[0], brandColor[1], brandColor[2])
	x, y := d.GetXY()
	pageW, _ := d.GetPageSize()
	_, _, right, _ := d.GetMargins()
	d.Line(x, y, pageW-right, y)
	d.Ln(4)
}

func (d *pdfDoc) addTitle(data *schema.ScanData) {
	d.font("B", 24, brandColor)
	d.CellFormat(0, 14, d.tr("Security Scan Report"), "", 1, "C", false, 0, "")
	d.font("", 11, mutedColor)
	d.CellFormat(0, 7, d.tr(data.Scan.TargetURL), "", 1, "C", false, 0, "")
	d.Ln(8)
}

// two-column table with a filled header row
func (d *pdfDoc) table(header [2]string, rows [][2]string) {
	const labelW, valueW = 60.0, 120.0

	d.font("B", 10, rgb{255, 255, 255})
	d.SetFillColor(brandColor[0], brandColor[1], brandColor[2])
	d.SetDrawColor(200, 200, 200)
	d.CellFormat(labelW, 8, d.tr(header[0]), "1", 0, "L", true, 0, "")
	d.CellFormat(valueW, 8, d.tr(header[1]), "1", 1, "L", true, 0, "")

	for i, row := range rows {
		if i%2 == 0 {
			d.SetFillColor(248, 249, 250)
		} else {
			d.SetFillColor(255, 255, 255)
		}
		d.font("B", 10, textColor)
		d.CellFormat(labelW, 7, d.tr(row[0]), "1", 0, "L", true, 0, "")
		d.font("", 10, textColor)
		d.CellFormat(valueW, 7, d.tr(truncateRunes(row[1], 90)), "1", 1, "L", true, 0, "")
	}
	d.Ln(8)
}

func (d *pdfDoc) addSummary(c schema.SeverityCounts) {
	d.heading("Executive Summary")
	rows := [][2]string{{"Total Issues", strconv.Itoa(c.Total)}}
	for _, sev := range schema.SeverityOrder {
		rows = append(rows, [2]string{sev.Label(), strconv.Itoa(c.Of(sev))})
	}
	d.table([2]string{"Metric", "Count"}, rows)
}

func (d *pdfDoc) addScanInfo(s schema.Scan, meta Meta) {
	d.heading("Scan Information")
	d.table([2]string{"Field", "Value"}, [][2]string{
		{"Target URL", s.TargetURL},
		{"Scan Type", emptyFallback(titleCase.String(s.ScanType), "N/A")},
		{"Start Time", emptyFallback(s.StartTime, "N/A")},
		{"End Time", emptyFallback(s.EndTime, "N/A")},
		{"Status", emptyFallback(titleCase.String(string(s.Status)), "N/A")},
		{"Report Generated", meta.generatedAtText()},
	})
}

func (d *pdfDoc) addFindings(findings []schema.Finding) {
	d.heading("Vulnerability Details")
	if len(findings) == 0 {
		d.font("", 11, mutedColor)
		d.MultiCell(0, 6, d.tr("No vulnerabilities were recorded for this scan."), "", "L", false)
		return
	}

	for i, f := range findings {
		class := f.Severity.Class()
		color := severityColors[class]

		d.font("B", 12, textColor)
		d.MultiCell(0, 7, d.tr(fmt.Sprintf("%d. %s", i+1, emptyFallback(f.Name, "Unnamed finding"))), "", "L", false)
		d.font("B", 10, color)
		d.CellFormat(0, 6, d.tr("Severity: "+emptyFallback(string(f.Severity), "Informational")), "", 1, "L", false, 0, "")

		d.field("Description", emptyFallback(f.Description, "No description available."))
		d.field("Location", emptyFallback(f.URL, "N/A"))
		d.field("Confidence", emptyFallback(f.Confidence, "N/A"))
		if f.HasSolution() {
			d.field("Solution", strings.TrimSpace(f.Solution))
		}
		if f.HasReference() {
			d.field("Reference", strings.TrimSpace(f.Reference))
		}
		d.Ln(6)
	}
}

func (d *pdfDoc) field(label, value string) {
	d.font("B", 10, brandColor)
	d.CellFormat(0, 6, d.tr(label+":"), "", 1, "L", false, 0, "")
	d.font("", 10, textColor)
	d.MultiCell(0, 5, d.tr(value), "", "L", false)
	d.Ln(1)
}

func truncateRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-3]) + "..."
}
