package report

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var (
	ErrChromeNotFound = errors.New("chrome/chromium executable not found")
	ErrFontNotFound   = errors.New("pdf font file not found")
	ErrFontInvalid    = errors.New("pdf font file unusable")
)

// PDF engines.
const (
	EngineFPDF   = "fpdf"
	EngineChrome = "chrome"
)

// CapabilityOptions are the inputs to DetectCapabilities.
type CapabilityOptions struct {
	PDF  bool
	DOCX bool
	XLSX bool

	PDFEngine string // fpdf (default) or chrome
	PDFFont   string // optional TTF used by the fpdf engine for UTF-8 text

	// LookPath resolves executables; exec.LookPath when nil.
	LookPath func(string) (string, error)
}

// Unavailable explains why a format was left out of a capability set.
type Unavailable struct {
	Format Format
	Reason string
}

// Capabilities is the set of formats this process can produce, computed once
// at start-up and handed to the Generator.
type Capabilities struct {
	formats map[Format]bool
	reasons map[Format]string

	pdfEngine  string
	chromePath string
	fontPath   string
}

// NewCapabilities returns a set holding exactly formats, with the pdf format
// (if present) served by the fpdf engine.
func NewCapabilities(formats ...Format) Capabilities {
	c := Capabilities{
		formats:   make(map[Format]bool, len(formats)),
		reasons:   make(map[Format]string),
		pdfEngine: EngineFPDF,
	}
	for _, f := range formats {
		if f.Valid() {
			c.formats[f] = true
		}
	}
	for _, f := range AllFormats {
		if !c.formats[f] {
			c.reasons[f] = "not enabled"
		}
	}
	return c
}

// DetectCapabilities enables the core formats plus every optional encoder
// that is switched on and passes its availability check.
func DetectCapabilities(opts CapabilityOptions) Capabilities {
	c := NewCapabilities()
	for _, f := range AllFormats {
		if !f.Optional() {
			c.enable(f)
		}
	}
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	switch {
	case !opts.PDF:
		c.reasons[FormatPDF] = "disabled in configuration"
	case strings.EqualFold(opts.PDFEngine, EngineChrome):
		path, err := FindChrome(lookPath)
		if err != nil {
			c.reasons[FormatPDF] = err.Error()
			break
		}
		c.enable(FormatPDF)
		c.pdfEngine = EngineChrome
		c.chromePath = path
	default:
		if opts.PDFFont != "" {
			if err := loadUTF8Font(opts.PDFFont); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					c.reasons[FormatPDF] = fmt.Sprintf("%v: %s", ErrFontNotFound, opts.PDFFont)
				} else {
					c.reasons[FormatPDF] = fmt.Sprintf("%v: %s: %v", ErrFontInvalid, opts.PDFFont, err)
				}
				break
			}
			c.fontPath = opts.PDFFont
		}
		c.enable(FormatPDF)
	}

	if opts.DOCX {
		c.enable(FormatDOCX)
	} else {
		c.reasons[FormatDOCX] = "disabled in configuration"
	}
	if opts.XLSX {
		c.enable(FormatXLSX)
	} else {
		c.reasons[FormatXLSX] = "disabled in configuration"
	}
	return c
}

func (c *Capabilities) enable(f Format) {
	c.formats[f] = true
	delete(c.reasons, f)
}

func (c Capabilities) Has(f Format) bool { return c.formats[f] }

// Available lists the formats in the set, in AllFormats order.
func (c Capabilities) Available() []Format {
	var out []Format
	for _, f := range AllFormats {
		if c.formats[f] {
			out = append(out, f)
		}
	}
	return out
}

// Unavailable lists the formats missing from the set, in AllFormats order.
func (c Capabilities) Unavailable() []Unavailable {
	var out []Unavailable
	for _, f := range AllFormats {
		if c.formats[f] {
			continue
		}
		reason := c.reasons[f]
		if reason == "" {
			reason = "not enabled"
		}
		out = append(out, Unavailable{Format: f, Reason: reason})
	}
	return out
}

// Without returns a copy of c with formats removed.
func (c Capabilities) Without(formats ...Format) Capabilities {
	out := c.clone()
	for _, f := range formats {
		delete(out.formats, f)
		out.reasons[f] = "excluded"
	}
	return out
}

// PDFEngine names the engine serving the pdf format.
func (c Capabilities) PDFEngine() string { return c.pdfEngine }

func (c Capabilities) clone() Capabilities {
	out := c
	out.formats = make(map[Format]bool, len(c.formats))
	for k, v := range c.formats {
		out.formats[k] = v
	}
	out.reasons = make(map[Format]string, len(c.reasons))
	for k, v := range c.reasons {
		out.reasons[k] = v
	}
	return out
}

// FindChrome looks for a Chrome or Chromium executable using the same
// candidate names as chromedp's default allocator.
func FindChrome(lookPath func(string) (string, error)) (string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"headless-shell",
			"chromium",
			"google-chrome",
		}
	case "windows":
		candidates = []string{
			"chrome",
			"chrome.exe",
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		}
	default:
		candidates = []string{
			"headless_shell",
			"headless-shell",
			"chromium",
			"chromium-browser",
			"google-chrome",
			"google-chrome-stable",
			"google-chrome-beta",
			"google-chrome-unstable",
			"/usr/bin/google-chrome",
			"/usr/local/bin/chrome",
			"/snap/bin/chromium",
			"chrome",
		}
	}
	for _, name := range candidates {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrChromeNotFound
}
