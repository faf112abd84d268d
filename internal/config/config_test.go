package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "security_scans.db", cfg.DB.DSN)
	assert.Equal(t, "./reports", cfg.Output.Dir)
	assert.Equal(t, "fpdf", cfg.PDF.Engine)
	assert.True(t, cfg.Formats.PDF)
	assert.True(t, cfg.Formats.DOCX)
	assert.True(t, cfg.Formats.XLSX)
	assert.False(t, cfg.CSV.IncludeSummary)
	assert.False(t, cfg.CSV.SanitizeFormulas)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zapreport.yaml")
	body := []byte(`db:
  driver: postgres
  dsn: "postgres://zap@localhost/scans?sslmode=disable"
formats:
  docx: false
pdf:
  engine: chrome
log:
  format: json
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.False(t, cfg.Formats.DOCX)
	assert.True(t, cfg.Formats.XLSX)
	assert.Equal(t, "chrome", cfg.PDF.Engine)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad engine", "pdf.engine", "wkhtmltopdf"},
		{"bad log format", "log.format", "xml"},
		{"bad log output", "log.output", "syslog"},
		{"file output without path", "log.file_path", ""},
		{"empty dsn", "db.dsn", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			if tt.key == "log.file_path" {
				v.Set("log.output", "file")
			}
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
