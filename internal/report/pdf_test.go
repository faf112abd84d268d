package report

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uncompressed so text is searchable in the raw bytes
func plainPDF() *PDFRenderer { return &PDFRenderer{} }

func pageCount(t *testing.T, raw []byte) int {
	t.Helper()
	n, err := pdfapi.PageCount(bytes.NewReader(raw), nil)
	require.NoError(t, err)
	return n
}

func TestPDFExampleScan(t *testing.T) {
	t.Parallel()

	raw := renderBytes(t, plainPDF(), exampleScan())
	require.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	require.NoError(t, pdfapi.Validate(bytes.NewReader(raw), nil))

	// summary page, then the findings page
	assert.Equal(t, 2, pageCount(t, raw))

	for _, text := range []string{
		"Security Scan Report",
		"Executive Summary",
		"Total Issues",
		"High Risk",
		"Scan Information",
		"1. SQL Injection",
		"2. Reflected XSS",
		"3. Missing Security Header",
		"Severity: High",
	} {
		assert.True(t, bytes.Contains(raw, []byte(text)), "missing %q", text)
	}

	i1 := bytes.Index(raw, []byte("1. SQL Injection"))
	i2 := bytes.Index(raw, []byte("2. Reflected XSS"))
	i3 := bytes.Index(raw, []byte("3. Missing Security Header"))
	assert.True(t, i1 < i2 && i2 < i3)
	assert.Equal(t, 2, bytes.Count(raw, []byte("(Reference:)")))
}

func TestPDFNoFindings(t *testing.T) {
	t.Parallel()

	raw := renderBytes(t, plainPDF(), emptyScan())
	require.NoError(t, pdfapi.Validate(bytes.NewReader(raw), nil))
	assert.True(t, bytes.Contains(raw, []byte("No vulnerabilities were recorded for this scan.")))
}

func TestPDFDeterministic(t *testing.T) {
	t.Parallel()

	r := NewPDFRenderer("")
	a := renderBytes(t, r, exampleScan())
	b := renderBytes(t, r, exampleScan())
	assert.Equal(t, a, b)
	require.NoError(t, pdfapi.Validate(bytes.NewReader(a), nil))
}

func TestPDFMissingFontFails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	data := exampleScan()
	err := NewPDFRenderer("/nonexistent/font.ttf").Render(context.Background(), &buf, data, fixedMeta(data))
	assert.Error(t, err)
}

func TestChromePDF(t *testing.T) {
	path, err := FindChrome(exec.LookPath)
	if err != nil {
		t.Skip("chrome not installed")
	}

	raw := renderBytes(t, NewChromePDFRenderer(path), exampleScan())
	require.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	require.NoError(t, pdfapi.Validate(bytes.NewReader(raw), nil))
}

func TestPDFUnencodable(t *testing.T) {
	t.Parallel()

	assert.Empty(t, plainPDF().Unencodable(exampleScan()), "cp1252 covers the example scan")

	data := exampleScan()
	data.Scan.TargetURL = "http://例え.jp"
	data.Findings[1].Description = "Café → payload"
	data.Findings[2].Solution = "naïve but fine"
	assert.Equal(t, []string{"target_url", "vulnerabilities[1].description"}, plainPDF().Unencodable(data))

	assert.Empty(t, NewPDFRenderer("/fonts/any.ttf").Unencodable(data))
}

func TestPDFWithUTF8Font(t *testing.T) {
	t.Parallel()

	data := exampleScan()
	data.Findings[0].Name = "SQL-инъекция"
	r := &PDFRenderer{FontPath: systemTTF(t)}
	raw := renderBytes(t, r, data)
	require.NoError(t, pdfapi.Validate(bytes.NewReader(raw), nil))
	assert.Empty(t, r.Unencodable(data))
}
