package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ScanRecord mirrors the scans table written by the scanning driver.
type ScanRecord struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	TargetURL   string  `gorm:"column:target_url;size:2048;not null"`
	ScanType    string  `gorm:"column:scan_type;size:32"`
	StartTime   string  `gorm:"column:start_time;size:64"`
	EndTime     *string `gorm:"column:end_time;size:64"`
	TotalAlerts int     `gorm:"column:total_alerts"`
	HighRisk    int     `gorm:"column:high_risk"`
	MediumRisk  int     `gorm:"column:medium_risk"`
	LowRisk     int     `gorm:"column:low_risk"`
	Status      string  `gorm:"column:status;size:32"`

	Vulnerabilities []VulnerabilityRecord `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE"`
}

func (ScanRecord) TableName() string { return "scans" }

// VulnerabilityRecord mirrors the vulnerabilities table.
type VulnerabilityRecord struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	ScanID      int64   `gorm:"column:scan_id;index;not null"`
	Name        string  `gorm:"column:name;size:512;not null"`
	Severity    string  `gorm:"column:severity;size:32"`
	Confidence  string  `gorm:"column:confidence;size:32"`
	URL         string  `gorm:"column:url;size:2048"`
	Description string  `gorm:"column:description;type:text"`
	Solution    *string `gorm:"column:solution;type:text"`
	Reference   *string `gorm:"column:reference;type:text"`
}

func (VulnerabilityRecord) TableName() string { return "vulnerabilities" }

// OpenGorm opens the store through gorm for schema and fixture work.
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	d, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	var dialector gorm.Dialector
	switch d {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		// share the lib/pq driver used by Reader
		dialector = postgres.New(postgres.Config{DriverName: DriverPostgres, DSN: dsn})
	}
	return gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

// Migrate creates the scans and vulnerabilities tables if they are missing,
// optionally inserting the example scan. Tables that already exist are left
// as the scanning driver created them.
func Migrate(ctx context.Context, driver, dsn string, seed bool) error {
	db, err := OpenGorm(driver, dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.WithContext(ctx).AutoMigrate(&ScanRecord{}, &VulnerabilityRecord{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if seed {
		if err := Seed(ctx, db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// ExampleScanID is the identifier of the scan inserted by Seed.
const ExampleScanID int64 = 42

// ExampleScan returns the documented example: three findings, one per tier.
func ExampleScan() ScanRecord {
	end := "2025-01-15 10:12:41"
	sqliSolution := "Do not trust client side input. Use parameterized queries for all database access."
	sqliRef := "https://owasp.org/www-community/attacks/SQL_Injection"
	xssSolution := "Validate all input and encode output according to the context it is rendered in."
	xssRef := "https://owasp.org/www-community/attacks/xss/"
	headerSolution := "Ensure the web server sets the X-Content-Type-Options header to 'nosniff'."

	return ScanRecord{
		ID:          ExampleScanID,
		TargetURL:   "http://testphp.vulnweb.com",
		ScanType:    "quick",
		StartTime:   "2025-01-15 10:03:07",
		EndTime:     &end,
		TotalAlerts: 3,
		HighRisk:    1,
		MediumRisk:  1,
		LowRisk:     1,
		Status:      "completed",
		Vulnerabilities: []VulnerabilityRecord{
			{
				Name:        "SQL Injection",
				Severity:    "High",
				Confidence:  "Medium",
				URL:         "http://testphp.vulnweb.com/artists.php?artist=1",
				Description: "SQL injection may be possible.",
				Solution:    &sqliSolution,
				Reference:   &sqliRef,
			},
			{
				Name:        "Reflected XSS",
				Severity:    "Medium",
				Confidence:  "Medium",
				URL:         "http://testphp.vulnweb.com/search.php?test=query",
				Description: "Cross-site Scripting (XSS) is an attack technique that echoes attacker-supplied code into a user's browser instance.",
				Solution:    &xssSolution,
				Reference:   &xssRef,
			},
			{
				Name:        "Missing Security Header",
				Severity:    "Low",
				Confidence:  "High",
				URL:         "http://testphp.vulnweb.com/",
				Description: "The Anti-MIME-Sniffing header X-Content-Type-Options was not set to 'nosniff'.",
				Solution:    &headerSolution,
			},
		},
	}
}

// Seed inserts the example scan unless a scan with its id already exists.
func Seed(ctx context.Context, db *gorm.DB) error {
	var existing ScanRecord
	err := db.WithContext(ctx).First(&existing, ExampleScanID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	rec := ExampleScan()
	return db.WithContext(ctx).Create(&rec).Error
}
