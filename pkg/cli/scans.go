package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorozuya-cybersecurity/zap-report/internal/store"
)

func newScansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "List recent scans in the scan store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader, err := store.NewReader(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			scans, err := reader.List(cmd.Context(), viper.GetInt("scans.limit"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(scans) == 0 {
				fmt.Fprintln(out, "No scans found.")
				return nil
			}
			fmt.Fprintf(out, "%-6s %-10s %-8s %5s %4s %4s %4s  %s\n", "ID", "STATUS", "TYPE", "TOTAL", "HIGH", "MED", "LOW", "TARGET")
			for _, s := range scans {
				fmt.Fprintf(out, "%-6d %-10s %-8s %5d %4d %4d %4d  %s\n",
					s.ID, s.Status, s.ScanType, s.TotalAlerts, s.HighRisk, s.MediumRisk, s.LowRisk, s.TargetURL)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of scans to list")
	_ = viper.BindPFlag("scans.limit", cmd.Flags().Lookup("limit"))
	return cmd
}
