package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
	"github.com/yorozuya-cybersecurity/zap-report/pkg/utils"
)

// Document is the JSON shape: the scan fields at the top level, the findings
// under "vulnerabilities" and the generation stamp under "report".
type Document struct {
	schema.Scan     `json:",inline"`
	Vulnerabilities []schema.Finding `json:"vulnerabilities"`
	Report          DocumentInfo     `json:"report"`
}

type DocumentInfo struct {
	GeneratedAt time.Time `json:"generated_at"`
	ReportID    string    `json:"report_id"`
	Generator   string    `json:"generator"`
}

// JSONRenderer writes the full aggregate with a two-space indent.
type JSONRenderer struct{}

func (JSONRenderer) Render(_ context.Context, w io.Writer, data *schema.ScanData, meta Meta) error {
	findings := data.Findings
	if findings == nil {
		findings = []schema.Finding{}
	}
	doc := Document{
		Scan:            data.Scan,
		Vulnerabilities: findings,
		Report: DocumentInfo{
			GeneratedAt: meta.GeneratedAt,
			ReportID:    meta.ReportID,
			Generator:   meta.generatorLine(),
		},
	}

	enc := utils.NewJSONEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
