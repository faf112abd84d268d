package report

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
)

//go:embed templates/report.html.tmpl
var reportHTMLTemplate string

var htmlTemplate = template.Must(
	template.New("report").Funcs(sprig.HermeticHtmlFuncMap()).Parse(reportHTMLTemplate),
)

// HTMLRenderer writes a self-contained HTML document with inline CSS.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(_ context.Context, w io.Writer, data *schema.ScanData, meta Meta) error {
	if err := htmlTemplate.Execute(w, buildViewModel(data, meta)); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}

// ---------- View Model & helpers ----------

type viewModel struct {
	Target      string
	ScanType    string
	StartTime   string
	EndTime     string
	Status      string
	GeneratedAt string
	ReportID    string
	Generator   string
	Stats       []statCard
	Findings    []findingCard
}

type statCard struct {
	Label string
	Value int
	Class string
}

type findingCard struct {
	Name        string
	Severity    string
	Class       string
	Confidence  string
	URL         string
	Description string
	Solution    string
	Reference   string
}

var titleCase = cases.Title(language.English)

func buildViewModel(data *schema.ScanData, meta Meta) viewModel {
	s := data.Scan
	counts := data.Counts()

	stats := []statCard{{Label: "Total Issues", Value: counts.Total, Class: "total"}}
	for _, sev := range schema.SeverityOrder {
		stats = append(stats, statCard{Label: sev.Label(), Value: counts.Of(sev), Class: sev.Class()})
	}

	rows := make([]findingCard, 0, len(data.Findings))
	for _, f := range data.Findings {
		card := findingCard{
			Name:        emptyFallback(f.Name, "Unnamed finding"),
			Severity:    emptyFallback(string(f.Severity), "Informational"),
			Class:       f.Severity.Class(),
			Confidence:  emptyFallback(f.Confidence, "N/A"),
			URL:         emptyFallback(f.URL, "N/A"),
			Description: emptyFallback(f.Description, "No description available."),
		}
		if f.HasSolution() {
			card.Solution = strings.TrimSpace(f.Solution)
		}
		if f.HasReference() {
			card.Reference = strings.TrimSpace(f.Reference)
		}
		rows = append(rows, card)
	}

	return viewModel{
		Target:      s.TargetURL,
		ScanType:    titleCase.String(s.ScanType),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Status:      titleCase.String(string(s.Status)),
		GeneratedAt: meta.generatedAtText(),
		ReportID:    meta.ReportID,
		Generator:   meta.generatorLine(),
		Stats:       stats,
		Findings:    rows,
	}
}

func emptyFallback(s, fb string) string {
	if strings.TrimSpace(s) == "" {
		return fb
	}
	return s
}
