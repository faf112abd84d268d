package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/yorozuya-cybersecurity/zap-report/internal/logger"
	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
	"github.com/yorozuya-cybersecurity/zap-report/pkg/utils"
)

// ScanLoader fetches one scan aggregate. store.Reader implements it.
type ScanLoader interface {
	Load(ctx context.Context, scanID int64) (*schema.ScanData, error)
}

// Renderer encodes a populated aggregate into one format. Implementations
// never fetch data, never mutate it and write only to w.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, data *schema.ScanData, meta Meta) error
}

// Status of one format within GenerateAll.
type Status string

const (
	StatusSucceeded   Status = "succeeded"
	StatusFailed      Status = "failed"
	StatusUnavailable Status = "unavailable"
)

type Result struct {
	Format Format
	Path   string
	Status Status
	Err    error
}

// Results are ordered like AllFormats.
type Results []Result

// Failed reports whether any format failed. Unavailable formats do not count.
func (rs Results) Failed() bool {
	for _, r := range rs {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Get returns the result for f.
func (rs Results) Get(f Format) (Result, bool) {
	for _, r := range rs {
		if r.Format == f {
			return r, true
		}
	}
	return Result{}, false
}

// Count returns how many results have status s.
func (rs Results) Count(s Status) int {
	n := 0
	for _, r := range rs {
		if r.Status == s {
			n++
		}
	}
	return n
}

// Generator loads a scan and writes it out in one or more formats.
type Generator struct {
	loader    ScanLoader
	caps      Capabilities
	renderers map[Format]Renderer
	clock     Clock
	log       logrus.FieldLogger
	version   string
}

type Option func(*Generator)

func WithClock(c Clock) Option {
	return func(g *Generator) { g.clock = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Generator) { g.log = l }
}

func WithVersion(v string) Option {
	return func(g *Generator) { g.version = v }
}

// WithRenderer replaces the renderer for one format.
func WithRenderer(f Format, r Renderer) Option {
	return func(g *Generator) { g.renderers[f] = r }
}

func WithCSVOptions(o CSVOptions) Option {
	return func(g *Generator) { g.renderers[FormatCSV] = CSVRenderer{Options: o} }
}

// NewGenerator wires the default renderer for every format. The pdf
// renderer follows the engine chosen in caps.
func NewGenerator(loader ScanLoader, caps Capabilities, opts ...Option) *Generator {
	g := &Generator{
		loader: loader,
		caps:   caps,
		clock:  SystemClock{},
		renderers: map[Format]Renderer{
			FormatHTML: HTMLRenderer{},
			FormatJSON: JSONRenderer{},
			FormatCSV:  CSVRenderer{Options: DefaultCSVOptions()},
			FormatDOCX: DOCXRenderer{},
			FormatXLSX: XLSXRenderer{},
		},
	}
	if caps.PDFEngine() == EngineChrome {
		g.renderers[FormatPDF] = NewChromePDFRenderer(caps.chromePath)
	} else {
		g.renderers[FormatPDF] = NewPDFRenderer(caps.fontPath)
	}
	for _, o := range opts {
		o(g)
	}
	if g.log == nil {
		g.log = logger.Discard()
	}
	return g
}

func (g *Generator) Capabilities() Capabilities { return g.caps }

// Generate writes a single format to path.
func (g *Generator) Generate(ctx context.Context, format Format, scanID int64, path string) error {
	if !format.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if !g.caps.Has(format) {
		return fmt.Errorf("%s: %w", format, ErrFormatUnavailable)
	}

	data, err := g.load(ctx, scanID)
	if err != nil {
		g.log.WithFields(logrus.Fields{"scan_id": scanID, "format": format}).WithError(err).Error("load scan failed")
		return err
	}
	return g.write(ctx, format, data, NewMeta(data, g.clock, g.version), path)
}

// GenerateAll loads the scan once and writes every available format to
// <baseName>.<ext>. A failing format never stops the ones after it.
func (g *Generator) GenerateAll(ctx context.Context, scanID int64, baseName string) Results {
	results := make(Results, 0, len(AllFormats))

	data, loadErr := g.load(ctx, scanID)
	if loadErr != nil {
		g.log.WithField("scan_id", scanID).WithError(loadErr).Error("load scan failed")
	}
	var meta Meta
	if loadErr == nil {
		meta = NewMeta(data, g.clock, g.version)
	}

	for _, f := range AllFormats {
		path := baseName + "." + f.Extension()
		res := Result{Format: f, Path: path}

		switch {
		case !g.caps.Has(f):
			res.Status = StatusUnavailable
			res.Err = ErrFormatUnavailable
		case loadErr != nil:
			res.Status = StatusFailed
			res.Err = loadErr
		default:
			if err := g.write(ctx, f, data, meta, path); err != nil {
				res.Status = StatusFailed
				res.Err = err
			} else {
				res.Status = StatusSucceeded
			}
		}
		results = append(results, res)
	}
	return results
}

func (g *Generator) load(ctx context.Context, scanID int64) (*schema.ScanData, error) {
	data, err := g.loader.Load(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("scan %d: loader returned no data", scanID)
	}
	if !data.Scan.Status.IsTerminal() {
		g.log.WithFields(logrus.Fields{"scan_id": scanID, "status": data.Scan.Status}).
			Warn("scan has not finished; the report may be incomplete")
	}
	return data, nil
}

func (g *Generator) write(ctx context.Context, f Format, data *schema.ScanData, meta Meta, path string) error {
	fields := logrus.Fields{"scan_id": data.Scan.ID, "format": f, "path": path}

	r, ok := g.renderers[f]
	if !ok || r == nil {
		return fmt.Errorf("%s: %w", f, ErrFormatUnavailable)
	}

	if lr, ok := r.(lossyRenderer); ok {
		if lost := lr.Unencodable(data); len(lost) > 0 {
			g.log.WithFields(fields).WithField("fields", lost).
				Warn("characters outside cp1252 will not render; set pdf.font to a UTF-8 TrueType font")
		}
	}

	var buf bytes.Buffer
	if err := r.Render(ctx, &buf, data, meta); err != nil {
		g.log.WithFields(fields).WithError(err).Error("render failed")
		return fmt.Errorf("render %s: %w", f, err)
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		g.log.WithFields(fields).WithError(err).Error("write failed")
		return fmt.Errorf("write %s: %w", f, err)
	}
	g.log.WithFields(fields).WithField("bytes", buf.Len()).Info("report written")
	return nil
}

// lossyRenderer is implemented by renderers that silently replace text
// their font cannot encode.
type lossyRenderer interface {
	Unencodable(data *schema.ScanData) []string
}

// IsUnavailable reports whether err means the format was skipped.
func IsUnavailable(err error) bool { return errors.Is(err, ErrFormatUnavailable) }
