package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorozuya-cybersecurity/zap-report/internal/config"
	reportpkg "github.com/yorozuya-cybersecurity/zap-report/internal/report"
	"github.com/yorozuya-cybersecurity/zap-report/internal/store"
	"github.com/yorozuya-cybersecurity/zap-report/pkg/utils"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Generate reports for a stored scan",
		Example: "zapreport report --scan-id 42 --format all\nzapreport report --scan-id 42 --format pdf --out acme_q3",
		RunE:    runReport,
	}

	cmd.Flags().Int64("scan-id", 0, "Scan identifier in the scan store")
	cmd.Flags().String("format", "all", "Output format: html, pdf, json, csv, docx, xlsx or all")
	cmd.Flags().String("out", "security_report", "Base file name, without extension")

	_ = viper.BindPFlag("report.scan_id", cmd.Flags().Lookup("scan-id"))
	_ = viper.BindPFlag("report.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("report.out", cmd.Flags().Lookup("out"))
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	scanID := viper.GetInt64("report.scan_id")
	if scanID <= 0 {
		return errors.New("please provide --scan-id with a positive scan identifier")
	}

	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	base := viper.GetString("report.out")
	format := strings.ToLower(strings.TrimSpace(viper.GetString("report.format")))

	if format == "" || format == "all" {
		fmt.Fprintf(out, "Generating all reports for scan %d\n", scanID)
		results := gen.GenerateAll(cmd.Context(), scanID, utils.OutputBase(cfg.Output.Dir, base))
		printSummary(out, results, gen.Capabilities())
		if results.Failed() {
			return fmt.Errorf("%d of %d formats failed", results.Count(reportpkg.StatusFailed), len(results))
		}
		return nil
	}

	f, err := reportpkg.ParseFormat(format)
	if err != nil {
		return err
	}
	path := utils.OutputPath(cfg.Output.Dir, base, f.Extension())
	if err := gen.Generate(cmd.Context(), f, scanID, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s report: %s\n", colorGreen("✓"), strings.ToUpper(f.String()), path)
	return nil
}

// newGenerator wires the store reader and the detected capability set.
func newGenerator(c *config.Config) (*reportpkg.Generator, error) {
	reader, err := store.NewReader(c.DB.Driver, c.DB.DSN)
	if err != nil {
		return nil, err
	}
	caps := reportpkg.DetectCapabilities(capabilityOptions(c))
	return reportpkg.NewGenerator(reader, caps,
		reportpkg.WithLogger(appLog),
		reportpkg.WithVersion(Version),
		reportpkg.WithCSVOptions(reportpkg.CSVOptions{
			IncludeSummary:   c.CSV.IncludeSummary,
			ExcelCompatible:  c.CSV.ExcelCompatible,
			SanitizeFormulas: c.CSV.SanitizeFormulas,
		}),
	), nil
}

func capabilityOptions(c *config.Config) reportpkg.CapabilityOptions {
	return reportpkg.CapabilityOptions{
		PDF:       c.Formats.PDF,
		DOCX:      c.Formats.DOCX,
		XLSX:      c.Formats.XLSX,
		PDFEngine: c.PDF.Engine,
		PDFFont:   c.PDF.Font,
	}
}
