package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormatUnavailable means the encoder for a format is not in the
	// capability set. It is not a failure of the format itself.
	ErrFormatUnavailable = errors.New("format unavailable")
	ErrUnknownFormat     = errors.New("unknown format")
)

// Format names one output encoding.
type Format string

const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatXLSX Format = "xlsx"
)

// AllFormats is the order in which GenerateAll runs the renderers: the core
// text formats first, then the optional encoders.
var AllFormats = []Format{FormatHTML, FormatJSON, FormatCSV, FormatPDF, FormatDOCX, FormatXLSX}

// CoreFormats need no optional encoder and are always available.
var CoreFormats = []Format{FormatHTML, FormatJSON, FormatCSV}

// ParseFormat accepts a format name case-insensitively. "excel", "word" and
// "xls" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	case "xlsx", "xls", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) Valid() bool {
	for _, k := range AllFormats {
		if k == f {
			return true
		}
	}
	return false
}

// Extension is the file extension without the dot.
func (f Format) Extension() string { return string(f) }

// Optional reports whether the format depends on an optional encoder.
func (f Format) Optional() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatXLSX:
		return true
	}
	return false
}

func (f Format) String() string { return string(f) }
