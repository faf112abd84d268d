package report

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
)

// DOCXRenderer builds a Word document from the godocx default template.
type DOCXRenderer struct{}

const docxCorePart = "docProps/core.xml"

var docxSeverityColors = map[string]string{
	"high":   "DC3545",
	"medium": "CC9600",
	"low":    "17A2B8",
	"info":   "6C757D",
}

func (DOCXRenderer) Render(_ context.Context, w io.Writer, data *schema.ScanData, meta Meta) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("open docx template: %w", err)
	}
	defer doc.Close()

	if err := setDocxCoreProps(doc, data, meta); err != nil {
		return err
	}
	if err := writeDocxBody(doc, data, meta); err != nil {
		return err
	}
	if err := doc.Write(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func writeDocxBody(doc *docx.RootDoc, data *schema.ScanData, meta Meta) error {
	heading := func(text string, level uint) error {
		_, err := doc.AddHeading(text, level)
		return err
	}

	if err := heading("Security Scan Report", 0); err != nil {
		return err
	}

	c := data.Counts()
	if err := heading("Executive Summary", 1); err != nil {
		return err
	}
	rows := [][2]string{{"Total Issues", strconv.Itoa(c.Total)}}
	for _, sev := range schema.SeverityOrder {
		rows = append(rows, [2]string{sev.Label(), strconv.Itoa(c.Of(sev))})
	}
	rows = append(rows, [2]string{"Target URL", data.Scan.TargetURL})
	docxTable(doc, [2]string{"Metric", "Value"}, rows)

	if err := heading("Scan Information", 1); err != nil {
		return err
	}
	docxTable(doc, [2]string{"Field", "Value"}, [][2]string{
		{"Scan Type", emptyFallback(titleCase.String(data.Scan.ScanType), "N/A")},
		{"Start Time", emptyFallback(data.Scan.StartTime, "N/A")},
		{"End Time", emptyFallback(data.Scan.EndTime, "N/A")},
		{"Status", emptyFallback(titleCase.String(string(data.Scan.Status)), "N/A")},
		{"Report Generated", meta.generatedAtText()},
		{"Report ID", meta.ReportID},
	})

	doc.AddPageBreak()
	if err := heading("Vulnerability Details", 1); err != nil {
		return err
	}
	if len(data.Findings) == 0 {
		doc.AddParagraph("No vulnerabilities were recorded for this scan.")
	}
	for i, f := range data.Findings {
		if err := heading(fmt.Sprintf("%d. %s", i+1, emptyFallback(f.Name, "Unnamed finding")), 2); err != nil {
			return err
		}
		p := doc.AddEmptyParagraph()
		p.AddText("Severity: ").Bold(true)
		p.AddText(emptyFallback(string(f.Severity), "Informational")).
			Bold(true).
			Color(docxSeverityColors[f.Severity.Class()])

		docxField(doc, "Description", emptyFallback(f.Description, "No description available."))
		docxField(doc, "Location", emptyFallback(f.URL, "N/A"))
		docxField(doc, "Confidence", emptyFallback(f.Confidence, "N/A"))
		if f.HasSolution() {
			docxField(doc, "Solution", strings.TrimSpace(f.Solution))
		}
		if f.HasReference() {
			docxField(doc, "Reference", strings.TrimSpace(f.Reference))
		}
	}
	return nil
}

func docxTable(doc *docx.RootDoc, header [2]string, rows [][2]string) {
	tbl := doc.AddTable()
	tbl.Style("TableGrid")

	hdr := tbl.AddRow()
	for _, h := range header {
		hdr.AddCell().AddEmptyPara().AddText(h).Bold(true)
	}
	for _, r := range rows {
		row := tbl.AddRow()
		row.AddCell().AddEmptyPara().AddText(r[0]).Bold(true)
		row.AddCell().AddParagraph(r[1])
	}
}

// docxField writes "Label: value", turning newlines in value into line breaks.
func docxField(doc *docx.RootDoc, label, value string) {
	p := doc.AddEmptyParagraph()
	p.AddText(label + ": ").Bold(true)

	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	for i, line := range lines {
		r := p.AddText(line)
		if i < len(lines)-1 {
			r.AddBreak(nil)
		}
	}
}

type docxW3CDTF struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type docxCoreProps struct {
	XMLName    xml.Name   `xml:"cp:coreProperties"`
	CP         string     `xml:"xmlns:cp,attr"`
	DC         string     `xml:"xmlns:dc,attr"`
	DCTerms    string     `xml:"xmlns:dcterms,attr"`
	XSI        string     `xml:"xmlns:xsi,attr"`
	Title      string     `xml:"dc:title"`
	Creator    string     `xml:"dc:creator"`
	Identifier string     `xml:"dc:identifier"`
	Created    docxW3CDTF `xml:"dcterms:created"`
	Modified   docxW3CDTF `xml:"dcterms:modified"`
}

// setDocxCoreProps replaces the template's core properties part; godocx
// carries it through unchanged and has no setter for it.
func setDocxCoreProps(doc *docx.RootDoc, data *schema.ScanData, meta Meta) error {
	ts := meta.GeneratedAt.UTC().Format(time.RFC3339)
	props := docxCoreProps{
		CP:         "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		DC:         "http://purl.org/dc/elements/1.1/",
		DCTerms:    "http://purl.org/dc/terms/",
		XSI:        "http://www.w3.org/2001/XMLSchema-instance",
		Title:      "Security Scan Report - " + data.Scan.TargetURL,
		Creator:    meta.generatorLine(),
		Identifier: meta.ReportID,
		Created:    docxW3CDTF{Type: "dcterms:W3CDTF", Value: ts},
		Modified:   docxW3CDTF{Type: "dcterms:W3CDTF", Value: ts},
	}
	body, err := xml.Marshal(props)
	if err != nil {
		return fmt.Errorf("docx core properties: %w", err)
	}
	doc.FileMap.Store(docxCorePart, append([]byte(xml.Header), body...))
	return nil
}
