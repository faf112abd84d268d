// Package config decodes viper settings into the typed configuration used by
// the report commands.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
	Formats FormatsConfig `mapstructure:"formats"`
	PDF     PDFConfig     `mapstructure:"pdf"`
	CSV     CSVConfig     `mapstructure:"csv"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig selects level, format (text|json) and output (stdout|stderr|file).
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// FormatsConfig toggles the optional encoders.
type FormatsConfig struct {
	PDF  bool `mapstructure:"pdf"`
	DOCX bool `mapstructure:"docx"`
	XLSX bool `mapstructure:"xlsx"`
}

type PDFConfig struct {
	Engine string `mapstructure:"engine"` // fpdf | chrome
	Font   string `mapstructure:"font"`   // optional TTF for UTF-8 text
}

type CSVConfig struct {
	IncludeSummary   bool `mapstructure:"include_summary"`
	ExcelCompatible  bool `mapstructure:"excel_compatible"`
	SanitizeFormulas bool `mapstructure:"sanitize_formulas"`
}

// SetDefaults registers every key so env overrides and Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "security_scans.db")
	v.SetDefault("output.dir", "./reports")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file_path", "logs/zapreport.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)

	v.SetDefault("formats.pdf", true)
	v.SetDefault("formats.docx", true)
	v.SetDefault("formats.xlsx", true)

	v.SetDefault("pdf.engine", "fpdf")
	v.SetDefault("pdf.font", "")

	v.SetDefault("csv.include_summary", false)
	v.SetDefault("csv.excel_compatible", false)
	v.SetDefault("csv.sanitize_formulas", false)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.PDF.Engine) {
	case "fpdf", "chrome":
	default:
		return fmt.Errorf("%w: pdf.engine must be fpdf or chrome, got %q", ErrInvalidConfig, c.PDF.Engine)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	switch strings.ToLower(c.Log.Output) {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			return fmt.Errorf("%w: log.file_path is required when log.output is file", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: log.output must be stdout, stderr or file, got %q", ErrInvalidConfig, c.Log.Output)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return fmt.Errorf("%w: db.dsn is empty", ErrInvalidConfig)
	}
	return nil
}
