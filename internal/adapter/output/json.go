package output

import (
	"encoding/json"
	"io"

	"github.com/plotkit/qtcompat/internal/diag"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes one report as an indented JSON object.
func (f *JSONFormatter) Format(w io.Writer, r *diag.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// FormatList writes reports as a JSON array.
func (f *JSONFormatter) FormatList(w io.Writer, reports []diag.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}
