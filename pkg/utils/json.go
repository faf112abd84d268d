package utils

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// UnmarshalJSON decodes data into v.
func UnmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ValidJSON reports whether data is a single well-formed JSON value.
func ValidJSON(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

// Encoder writes one JSON value per Encode call, newline terminated.
type Encoder struct {
	w      io.Writer
	indent string
}

func NewJSONEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// SetIndent enables multi-line output. The prefix is accepted for
// encoding/json compatibility and ignored.
func (e *Encoder) SetIndent(prefix, indent string) {
	e.indent = indent
}

func (e *Encoder) Encode(v any) error {
	// invalid UTF-8 in stored text becomes U+FFFD instead of failing the document
	opts := []json.Options{jsontext.AllowInvalidUTF8(true)}
	if e.indent != "" {
		opts = append(opts, jsontext.WithIndent(e.indent))
	}
	if err := json.MarshalWrite(e.w, v, opts...); err != nil {
		return err
	}
	_, err := e.w.Write([]byte{'\n'})
	return err
}
