package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	reportpkg "github.com/yorozuya-cybersecurity/zap-report/internal/report"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats and whether they can be produced",
		RunE: func(cmd *cobra.Command, _ []string) error {
			caps := reportpkg.DetectCapabilities(capabilityOptions(cfg))
			out := cmd.OutOrStdout()

			for _, f := range caps.Available() {
				note := ""
				if f == reportpkg.FormatPDF {
					note = " (engine: " + caps.PDFEngine() + ")"
				}
				fmt.Fprintf(out, "%s %-5s available%s\n", colorGreen("✓"), strings.ToUpper(f.String()), note)
			}
			for _, u := range caps.Unavailable() {
				fmt.Fprintf(out, "%s %-5s unavailable: %s\n", colorYellow("-"), strings.ToUpper(u.Format.String()), u.Reason)
			}
			return nil
		},
	}
}
