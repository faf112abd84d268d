package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/yorozuya-cybersecurity/zap-report/internal/report"
)

var (
	colorGreen  = color.New(color.FgGreen).SprintFunc()
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorYellow = color.New(color.FgYellow).SprintFunc()
	colorBold   = color.New(color.Bold).SprintFunc()
)

func statusLabel(s report.Status) string {
	switch s {
	case report.StatusSucceeded:
		return colorGreen("✓ " + string(s))
	case report.StatusFailed:
		return colorRed("✗ " + string(s))
	default:
		return colorYellow("- " + string(s))
	}
}

// printSummary writes one line per format, in generation order.
func printSummary(w io.Writer, results report.Results, caps report.Capabilities) {
	reasons := map[report.Format]string{}
	for _, u := range caps.Unavailable() {
		reasons[u.Format] = u.Reason
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, colorBold("REPORT GENERATION SUMMARY"))
	fmt.Fprintln(w, strings.Repeat("=", 60))
	for _, r := range results {
		detail := r.Path
		switch r.Status {
		case report.StatusFailed:
			detail = r.Err.Error()
		case report.StatusUnavailable:
			detail = reasons[r.Format]
		}
		fmt.Fprintf(w, "%-6s %-24s %s\n", strings.ToUpper(r.Format.String()), statusLabel(r.Status), detail)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "%d succeeded, %d failed, %d unavailable\n",
		results.Count(report.StatusSucceeded),
		results.Count(report.StatusFailed),
		results.Count(report.StatusUnavailable))
}
