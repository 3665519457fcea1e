// Package output provides output formatters for resolution reports.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/plotkit/qtcompat/internal/diag"
)

// Formatter formats resolution reports for output.
type Formatter interface {
	// Format writes one report to the writer.
	Format(w io.Writer, r *diag.Report) error

	// FormatList writes a report collection to the writer, oldest first.
	FormatList(w io.Writer, reports []diag.Report) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ParseFormat maps a format name to a FormatType. Matching is
// case-insensitive.
func ParseFormat(s string) (FormatType, error) {
	switch strings.ToLower(s) {
	case "plain", "":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q, must be one of: plain, json, yaml", s)
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Verbose bool // Include the resolver trace in plain output
}
