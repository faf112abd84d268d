package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorozuya-cybersecurity/zap-report/internal/config"
	"github.com/yorozuya-cybersecurity/zap-report/internal/logger"
)

var (
	Version = "1.0.0"
	rootCmd *cobra.Command
)

// loaded by PersistentPreRunE before any subcommand runs
var (
	cfg    *config.Config
	appLog *logrus.Logger
)

func init() {
	rootCmd = newRootCmd()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "zapreport",
		Short:             "Render OWASP ZAP scan results into reports",
		Long:              "zapreport reads a completed scan from the scan store and renders it as HTML, PDF, JSON, CSV, DOCX or XLSX.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.String("config", "", "Config file (YAML)")
	pf.String("db-driver", "sqlite", "Scan store driver: sqlite, mysql, postgres")
	pf.String("db", "security_scans.db", "Scan store DSN (a file path for sqlite)")
	pf.StringP("output", "o", "./reports", "Output directory")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	_ = viper.BindPFlag("config", pf.Lookup("config"))
	_ = viper.BindPFlag("db.driver", pf.Lookup("db-driver"))
	_ = viper.BindPFlag("db.dsn", pf.Lookup("db"))
	_ = viper.BindPFlag("output.dir", pf.Lookup("output"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))

	config.SetDefaults(viper.GetViper())

	// Environment variable support (ZAPREPORT_DB_DSN, etc.)
	viper.SetEnvPrefix("ZAPREPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Subcommands
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newFormatsCmd())
	cmd.AddCommand(newScansCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func setup(_ *cobra.Command, _ []string) error {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	l, err := logger.New(c.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg, appLog = c, l
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
