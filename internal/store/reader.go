package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
)

const selectScan = `
SELECT id, target_url, scan_type, start_time, end_time,
       total_alerts, high_risk, medium_risk, low_risk, status
FROM scans
WHERE id = ?`

const selectFindings = `
SELECT id, scan_id, name, severity, confidence, url,
       description, solution, reference
FROM vulnerabilities
WHERE scan_id = ?
ORDER BY id`

const selectRecent = `
SELECT id, target_url, scan_type, start_time, end_time,
       total_alerts, high_risk, medium_risk, low_risk, status
FROM scans
ORDER BY id DESC
LIMIT ?`

// Reader loads scan aggregates from the scan store. It holds no open
// connection: every call opens the store and closes it before returning.
type Reader struct {
	driver string
	dsn    string
}

// NewReader validates the driver name and returns a Reader for dsn.
func NewReader(driver, dsn string) (*Reader, error) {
	d, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	return &Reader{driver: d, dsn: dsn}, nil
}

// Driver returns the normalized driver name.
func (r *Reader) Driver() string { return r.driver }

// Load returns the scan with its findings in stored order, or
// ErrScanNotFound. On any error the returned aggregate is nil.
func (r *Reader) Load(ctx context.Context, scanID int64) (*schema.ScanData, error) {
	db, err := Connect(ctx, r.driver, r.dsn)
	if err != nil {
		return nil, fmt.Errorf("open scan store: %w", err)
	}
	defer db.Close()

	// both reads see the same snapshot
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback()

	scan, err := scanRow(tx.QueryRowContext(ctx, rebind(r.driver, selectScan), scanID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan %d: %w", scanID, ErrScanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query scan %d: %w", scanID, err)
	}

	rows, err := tx.QueryContext(ctx, rebind(r.driver, selectFindings), scanID)
	if err != nil {
		return nil, fmt.Errorf("query findings for scan %d: %w", scanID, err)
	}
	defer rows.Close()

	findings := make([]schema.Finding, 0)
	for rows.Next() {
		var (
			f                                schema.Finding
			severity, confidence, url        sql.NullString
			description, solution, reference sql.NullString
		)
		if err := rows.Scan(
			&f.ID, &f.ScanID, &f.Name, &severity, &confidence, &url,
			&description, &solution, &reference,
		); err != nil {
			return nil, fmt.Errorf("scan finding row: %w", err)
		}
		f.Severity = schema.Severity(severity.String)
		f.Confidence = confidence.String
		f.URL = url.String
		f.Description = description.String
		f.Solution = solution.String
		f.Reference = reference.String
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}

	return &schema.ScanData{Scan: scan, Findings: findings}, nil
}

// List returns up to limit scans, newest first.
func (r *Reader) List(ctx context.Context, limit int) ([]schema.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	db, err := Connect(ctx, r.driver, r.dsn)
	if err != nil {
		return nil, fmt.Errorf("open scan store: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, rebind(r.driver, selectRecent), limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var out []schema.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (schema.Scan, error) {
	var (
		s                            schema.Scan
		scanType, start, end, status sql.NullString
		total, high, medium, low     sql.NullInt64
	)
	if err := row.Scan(
		&s.ID, &s.TargetURL, &scanType, &start, &end,
		&total, &high, &medium, &low, &status,
	); err != nil {
		return schema.Scan{}, err
	}
	s.ScanType = scanType.String
	s.StartTime = start.String
	s.EndTime = end.String
	s.TotalAlerts = int(total.Int64)
	s.HighRisk = int(high.Int64)
	s.MediumRisk = int(medium.Int64)
	s.LowRisk = int(low.Int64)
	s.Status = schema.Status(status.String)
	return s, nil
}
