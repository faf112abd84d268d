package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorozuya-cybersecurity/zap-report/internal/store"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the scan store tables (local development)",
		Long:  "Creates the scans and vulnerabilities tables if they are missing. With --seed, inserts example scan 42.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed := viper.GetBool("migrate.seed")
			if err := store.Migrate(cmd.Context(), cfg.DB.Driver, cfg.DB.DSN, seed); err != nil {
				return err
			}
			appLog.WithField("driver", cfg.DB.Driver).Info("scan store migrated")
			fmt.Fprintf(cmd.OutOrStdout(), "%s scan store ready (%s)\n", colorGreen("✓"), cfg.DB.DSN)
			if seed {
				fmt.Fprintf(cmd.OutOrStdout(), "  example scan id: %d\n", store.ExampleScanID)
			}
			return nil
		},
	}

	cmd.Flags().Bool("seed", false, "Insert the example scan")
	_ = viper.BindPFlag("migrate.seed", cmd.Flags().Lookup("seed"))
	return cmd
}
