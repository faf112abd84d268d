package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
	"github.com/yorozuya-cybersecurity/zap-report/pkg/utils"
)

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	data := exampleScan()
	data.Findings[1].Description = "line one\nline \"two\", with comma"
	raw := renderBytes(t, JSONRenderer{}, data)
	require.True(t, utils.ValidJSON(raw))

	var doc Document
	require.NoError(t, utils.UnmarshalJSON(raw, &doc))

	assert.Equal(t, data.Scan, doc.Scan)
	require.Len(t, doc.Vulnerabilities, len(data.Findings))
	for i, want := range data.Findings {
		got := doc.Vulnerabilities[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Severity, got.Severity)
		assert.Equal(t, want.Confidence, got.Confidence)
		assert.Equal(t, want.URL, got.URL)
		assert.Equal(t, want.Description, got.Description)
		assert.Equal(t, want.Solution, got.Solution)
		assert.Equal(t, want.Reference, got.Reference)
	}

	assert.True(t, fixedTime.Equal(doc.Report.GeneratedAt))
	assert.Equal(t, ReportID(data.Scan), doc.Report.ReportID)
}

func TestJSONFieldNames(t *testing.T) {
	t.Parallel()

	raw := string(renderBytes(t, JSONRenderer{}, exampleScan()))

	for _, key := range []string{
		"scan_id", "target_url", "scan_type", "start_time", "end_time",
		"total_alerts", "high_risk", "medium_risk", "low_risk", "status",
		"vulnerabilities", "report", "generated_at", "report_id",
	} {
		assert.Contains(t, raw, `"`+key+`":`, key)
	}
	assert.NotContains(t, raw, `"ScanID"`)

	// two-space indent, counts in total/high/medium/low order
	assert.True(t, strings.HasPrefix(raw, "{\n  \"scan_id\": 42,"))
	iTotal := strings.Index(raw, `"total_alerts"`)
	iHigh := strings.Index(raw, `"high_risk"`)
	iMed := strings.Index(raw, `"medium_risk"`)
	iLow := strings.Index(raw, `"low_risk"`)
	assert.True(t, iTotal < iHigh && iHigh < iMed && iMed < iLow)

	// the generation stamp is the only timestamp
	assert.Equal(t, 1, strings.Count(raw, "2025-01-15T10:20:00Z"))
}

func TestJSONNoFindingsIsEmptyArray(t *testing.T) {
	t.Parallel()

	data := emptyScan()
	data.Findings = nil
	raw := string(renderBytes(t, JSONRenderer{}, data))
	assert.Contains(t, raw, `"vulnerabilities": []`)

	var doc Document
	require.NoError(t, utils.UnmarshalJSON([]byte(raw), &doc))
	assert.Empty(t, doc.Vulnerabilities)
	assert.Equal(t, schema.StatusCompleted, doc.Status)
}

func TestJSONDeterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, renderBytes(t, JSONRenderer{}, exampleScan()), renderBytes(t, JSONRenderer{}, exampleScan()))
}

func TestJSONInvalidUTF8(t *testing.T) {
	t.Parallel()

	data := exampleScan()
	data.Findings[0].Description = "evidence: \xff\xfe raw"
	raw := renderBytes(t, JSONRenderer{}, data)
	require.True(t, utils.ValidJSON(raw))

	var doc Document
	require.NoError(t, utils.UnmarshalJSON(raw, &doc))
	assert.Equal(t, "evidence: \uFFFD\uFFFD raw", doc.Vulnerabilities[0].Description)
}
