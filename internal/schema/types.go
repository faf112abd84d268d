package schema

import "strings"

// Severity is the risk tier ZAP assigns to an alert ("High", "Medium", ...).
type Severity string

const (
	SeverityHigh          Severity = "High"
	SeverityMedium        Severity = "Medium"
	SeverityLow           Severity = "Low"
	SeverityInformational Severity = "Informational"
)

// SeverityOrder is the fixed presentation order for aggregate counts.
var SeverityOrder = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// Class returns the lowercase key used for styling ("high", "medium", "low", "info").
func (s Severity) Class() string {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "high":
		return "high"
	case "medium":
		return "medium"
	case "low":
		return "low"
	default:
		return "info"
	}
}

// Label is the display name used in stat blocks ("High Risk").
func (s Severity) Label() string {
	return string(s) + " Risk"
}

// Status of a scan as written by the scanning driver.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the driver will no longer touch the scan row.
func (s Status) IsTerminal() bool {
	switch Status(strings.ToLower(string(s))) {
	case StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// SeverityCounts are the aggregate counts stored on the scan row.
type SeverityCounts struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Of returns the stored count for one tier of SeverityOrder.
func (c SeverityCounts) Of(s Severity) int {
	switch s {
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	}
	return 0
}

// Scan is one execution of the ZAP scan against a target URL
type Scan struct {
	ID          int64  `json:"scan_id"`
	TargetURL   string `json:"target_url"`
	ScanType    string `json:"scan_type"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TotalAlerts int    `json:"total_alerts"`
	HighRisk    int    `json:"high_risk"`
	MediumRisk  int    `json:"medium_risk"`
	LowRisk     int    `json:"low_risk"`
	Status      Status `json:"status"`
}

// Finding is one alert reported for a scan
type Finding struct {
	ID          int64    `json:"id"`
	ScanID      int64    `json:"-"`
	Name        string   `json:"name"`
	Severity    Severity `json:"severity"`
	Confidence  string   `json:"confidence"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Solution    string   `json:"solution"`
	Reference   string   `json:"reference"`
}

// HasSolution reports whether remediation guidance should be rendered.
// Absent and blank values are treated the same.
func (f Finding) HasSolution() bool { return strings.TrimSpace(f.Solution) != "" }

// HasReference reports whether a reference should be rendered.
func (f Finding) HasReference() bool { return strings.TrimSpace(f.Reference) != "" }

// ScanData is a scan merged with its findings in stored order.
type ScanData struct {
	Scan     Scan
	Findings []Finding
}

// Counts returns the aggregate counts exactly as stored on the scan row.
func (d *ScanData) Counts() SeverityCounts {
	return SeverityCounts{
		Total:  d.Scan.TotalAlerts,
		High:   d.Scan.HighRisk,
		Medium: d.Scan.MediumRisk,
		Low:    d.Scan.LowRisk,
	}
}
