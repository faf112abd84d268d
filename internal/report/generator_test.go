package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
	"github.com/yorozuya-cybersecurity/zap-report/internal/store"
)

type failingRenderer struct{ err error }

func (r failingRenderer) Render(_ context.Context, w io.Writer, _ *schema.ScanData, _ Meta) error {
	// partial output must never reach the destination
	_, _ = w.Write([]byte("partial"))
	return r.err
}

// countingLoader records how many times Load was called.
type countingLoader struct {
	mapLoader
	calls int
}

func (c *countingLoader) Load(ctx context.Context, id int64) (*schema.ScanData, error) {
	c.calls++
	return c.mapLoader.Load(ctx, id)
}

func newTestGenerator(caps Capabilities, opts ...Option) (*Generator, *countingLoader) {
	loader := &countingLoader{mapLoader: mapLoader{42: exampleScan(), 7: emptyScan()}}
	opts = append([]Option{WithClock(FixedClock(fixedTime)), WithVersion("1.0")}, opts...)
	return NewGenerator(loader, caps, opts...), loader
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestGenerateAllExampleScan(t *testing.T) {
	t.Parallel()

	g, loader := newTestGenerator(NewCapabilities(AllFormats...))
	dir := t.TempDir()
	results := g.GenerateAll(context.Background(), 42, filepath.Join(dir, "security_report"))

	assert.Equal(t, 1, loader.calls, "scan must be loaded once")
	assert.False(t, results.Failed())
	require.Len(t, results, len(AllFormats))
	for i, r := range results {
		assert.Equal(t, AllFormats[i], r.Format)
		assert.Equal(t, StatusSucceeded, r.Status, "%s: %v", r.Format, r.Err)
		assert.NoError(t, r.Err)
		info, err := os.Stat(r.Path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.ElementsMatch(t, []string{
		"security_report.html", "security_report.json", "security_report.csv",
		"security_report.pdf", "security_report.docx", "security_report.xlsx",
	}, dirEntries(t, dir))
	assert.Equal(t, 6, results.Count(StatusSucceeded))
}

func TestGenerateAllScanNotFound(t *testing.T) {
	t.Parallel()

	g, _ := newTestGenerator(NewCapabilities(AllFormats...).Without(FormatDOCX))
	dir := filepath.Join(t.TempDir(), "out")
	results := g.GenerateAll(context.Background(), 999, filepath.Join(dir, "r"))

	assert.True(t, results.Failed())
	for _, r := range results {
		if r.Format == FormatDOCX {
			assert.Equal(t, StatusUnavailable, r.Status)
			continue
		}
		assert.Equal(t, StatusFailed, r.Status, r.Format)
		assert.ErrorIs(t, r.Err, store.ErrScanNotFound)
	}
	assert.Empty(t, dirEntries(t, dir), "no file may be created for a missing scan")
}

func TestGenerateAllCapabilityGating(t *testing.T) {
	t.Parallel()

	g, _ := newTestGenerator(NewCapabilities(AllFormats...).Without(FormatPDF))
	dir := t.TempDir()
	results := g.GenerateAll(context.Background(), 42, filepath.Join(dir, "r"))

	assert.False(t, results.Failed())
	pdf, ok := results.Get(FormatPDF)
	require.True(t, ok)
	assert.Equal(t, StatusUnavailable, pdf.Status)
	assert.True(t, IsUnavailable(pdf.Err))
	assert.Equal(t, 5, results.Count(StatusSucceeded))
	assert.NotContains(t, dirEntries(t, dir), "r.pdf")
}

func TestGenerateAllIsolatesFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("encoder exploded")
	g, _ := newTestGenerator(NewCapabilities(AllFormats...), WithRenderer(FormatJSON, failingRenderer{err: boom}))
	dir := t.TempDir()
	results := g.GenerateAll(context.Background(), 42, filepath.Join(dir, "r"))

	assert.True(t, results.Failed())
	js, _ := results.Get(FormatJSON)
	assert.Equal(t, StatusFailed, js.Status)
	assert.ErrorIs(t, js.Err, boom)
	assert.Equal(t, 5, results.Count(StatusSucceeded))
	assert.NotContains(t, dirEntries(t, dir), "r.json")
}

func TestGenerateSingleFormat(t *testing.T) {
	t.Parallel()

	g, _ := newTestGenerator(NewCapabilities(CoreFormats...))
	dir := t.TempDir()

	path := filepath.Join(dir, "single.html")
	require.NoError(t, g.Generate(context.Background(), FormatHTML, 42, path))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "SQL Injection")

	err = g.Generate(context.Background(), FormatPDF, 42, filepath.Join(dir, "single.pdf"))
	assert.ErrorIs(t, err, ErrFormatUnavailable)

	err = g.Generate(context.Background(), Format("txt"), 42, filepath.Join(dir, "single.txt"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	err = g.Generate(context.Background(), FormatCSV, 999, filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, store.ErrScanNotFound)

	assert.Equal(t, []string{"single.html"}, dirEntries(t, dir))
}

func TestGenerateFailedRenderLeavesExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "r.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	g, _ := newTestGenerator(NewCapabilities(AllFormats...), WithRenderer(FormatJSON, failingRenderer{err: errors.New("x")}))
	require.Error(t, g.Generate(context.Background(), FormatJSON, 42, path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(body))
}

func TestGenerateAllIdempotent(t *testing.T) {
	t.Parallel()

	caps := NewCapabilities(AllFormats...)
	g, _ := newTestGenerator(caps)
	dirA, dirB := t.TempDir(), t.TempDir()
	ra := g.GenerateAll(context.Background(), 42, filepath.Join(dirA, "r"))
	rb := g.GenerateAll(context.Background(), 42, filepath.Join(dirB, "r"))
	require.False(t, ra.Failed())
	require.False(t, rb.Failed())

	for _, f := range []Format{FormatHTML, FormatJSON, FormatCSV, FormatPDF} {
		a, err := os.ReadFile(filepath.Join(dirA, "r."+f.Extension()))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, "r."+f.Extension()))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(a, b), "%s output differs between runs", f)
	}

	// docx at paragraph level, xlsx at cell level
	assert.Equal(t,
		renderDocxParagraphs(t, mustRead(t, filepath.Join(dirA, "r.docx"))),
		renderDocxParagraphs(t, mustRead(t, filepath.Join(dirB, "r.docx"))))

	a := openXLSX(t, mustRead(t, filepath.Join(dirA, "r.xlsx")))
	b := openXLSX(t, mustRead(t, filepath.Join(dirB, "r.xlsx")))
	for _, sheet := range []string{SheetSummary, SheetFindings} {
		assert.Equal(t, sheetRows(t, a, sheet), sheetRows(t, b, sheet))
	}
}

func TestGeneratorLogsOutcome(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	g, _ := newTestGenerator(NewCapabilities(FormatCSV), WithLogger(log))
	results := g.GenerateAll(context.Background(), 42, filepath.Join(t.TempDir(), "r"))
	require.False(t, results.Failed())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "report written", entry.Message)
	assert.Equal(t, int64(42), entry.Data["scan_id"])
	assert.Equal(t, FormatCSV, entry.Data["format"])
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func warnings(hook *test.Hook) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e)
		}
	}
	return out
}

func TestGeneratorWarnsOnUnfinishedScan(t *testing.T) {
	t.Parallel()

	running := exampleScan()
	running.Scan.Status = schema.StatusRunning
	log, hook := test.NewNullLogger()
	g := NewGenerator(mapLoader{42: running}, NewCapabilities(FormatJSON),
		WithClock(FixedClock(fixedTime)), WithLogger(log))

	results := g.GenerateAll(context.Background(), 42, filepath.Join(t.TempDir(), "r"))
	require.False(t, results.Failed())

	warns := warnings(hook)
	require.Len(t, warns, 1)
	assert.Equal(t, schema.StatusRunning, warns[0].Data["status"])

	// finished scans do not warn
	hook.Reset()
	g, _ = newTestGenerator(NewCapabilities(FormatJSON), WithLogger(log))
	require.NoError(t, g.Generate(context.Background(), FormatJSON, 42, filepath.Join(t.TempDir(), "r.json")))
	assert.Empty(t, warnings(hook))
}

func TestGeneratorWarnsOnUnencodablePDFText(t *testing.T) {
	t.Parallel()

	data := exampleScan()
	data.Findings[0].Name = "SQL注入 Инъекция"
	log, hook := test.NewNullLogger()
	g := NewGenerator(mapLoader{42: data}, NewCapabilities(FormatPDF, FormatHTML),
		WithClock(FixedClock(fixedTime)), WithLogger(log))

	results := g.GenerateAll(context.Background(), 42, filepath.Join(t.TempDir(), "r"))
	require.False(t, results.Failed())

	warns := warnings(hook)
	require.Len(t, warns, 1)
	assert.Equal(t, FormatPDF, warns[0].Data["format"])
	assert.Equal(t, []string{"vulnerabilities[0].name"}, warns[0].Data["fields"])
}
