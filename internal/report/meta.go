package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
)

const (
	GeneratorName = "Web Security Scanner"
	// timestamps shown inside documents
	displayTime = "2006-01-02 15:04:05"
)

// Clock supplies the generation timestamp.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Meta is shared by every document produced in one invocation. GeneratedAt is
// the only value that differs between two runs over the same scan.
type Meta struct {
	ReportID    string
	GeneratedAt time.Time
	Generator   string
	Version     string
}

// NewMeta stamps a report for data. The report id is derived from the scan
// id and target, so it is stable across runs.
func NewMeta(data *schema.ScanData, clock Clock, version string) Meta {
	if clock == nil {
		clock = SystemClock{}
	}
	return Meta{
		ReportID:    ReportID(data.Scan),
		GeneratedAt: clock.Now().UTC().Truncate(time.Second),
		Generator:   GeneratorName,
		Version:     version,
	}
}

// ReportID returns the UUIDv5 of "<target>#<scan id>" in the URL namespace.
func ReportID(s schema.Scan) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", s.TargetURL, s.ID))).String()
}

func (m Meta) generatedAtText() string {
	return m.GeneratedAt.Format(displayTime)
}

func (m Meta) generatorLine() string {
	if m.Version == "" {
		return m.Generator
	}
	return m.Generator + " v" + m.Version
}
