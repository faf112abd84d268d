package report

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
	"github.com/yorozuya-cybersecurity/zap-report/internal/store"
)

var fixedTime = time.Date(2025, 1, 15, 10, 20, 0, 0, time.UTC)

func fixedMeta(data *schema.ScanData) Meta {
	return NewMeta(data, FixedClock(fixedTime), "1.0")
}

// exampleScan is the documented scan 42: three findings, one per tier, the
// last one without a reference.
func exampleScan() *schema.ScanData {
	return &schema.ScanData{
		Scan: schema.Scan{
			ID:          42,
			TargetURL:   "http://testphp.vulnweb.com",
			ScanType:    "quick",
			StartTime:   "2025-01-15 10:03:07",
			EndTime:     "2025-01-15 10:12:41",
			TotalAlerts: 3,
			HighRisk:    1,
			MediumRisk:  1,
			LowRisk:     1,
			Status:      schema.StatusCompleted,
		},
		Findings: []schema.Finding{
			{
				ID: 1, ScanID: 42,
				Name:        "SQL Injection",
				Severity:    schema.SeverityHigh,
				Confidence:  "Medium",
				URL:         "http://testphp.vulnweb.com/artists.php?artist=1",
				Description: "SQL injection may be possible.",
				Solution:    "Use parameterized queries.",
				Reference:   "https://owasp.org/www-community/attacks/SQL_Injection",
			},
			{
				ID: 2, ScanID: 42,
				Name:        "Reflected XSS",
				Severity:    schema.SeverityMedium,
				Confidence:  "Medium",
				URL:         "http://testphp.vulnweb.com/search.php?test=query",
				Description: "User input is echoed without encoding.",
				Solution:    "Encode output.",
				Reference:   "https://owasp.org/www-community/attacks/xss/",
			},
			{
				ID: 3, ScanID: 42,
				Name:        "Missing Security Header",
				Severity:    schema.SeverityLow,
				Confidence:  "High",
				URL:         "http://testphp.vulnweb.com/",
				Description: "X-Content-Type-Options header missing.",
				Solution:    "Set X-Content-Type-Options: nosniff.",
			},
		},
	}
}

func emptyScan() *schema.ScanData {
	return &schema.ScanData{
		Scan: schema.Scan{
			ID:        7,
			TargetURL: "https://example.org",
			ScanType:  "full",
			Status:    schema.StatusCompleted,
		},
		Findings: []schema.Finding{},
	}
}

// mapLoader serves scans from memory and reports unknown ids the way the
// store does.
type mapLoader map[int64]*schema.ScanData

func (m mapLoader) Load(_ context.Context, id int64) (*schema.ScanData, error) {
	d, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("scan %d: %w", id, store.ErrScanNotFound)
	}
	return d, nil
}

func renderBytes(t *testing.T, r Renderer, data *schema.ScanData) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(context.Background(), &buf, data, fixedMeta(data)); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.Bytes()
}
