package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/plotkit/qtcompat/internal/diag"
)

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes one report as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, r *diag.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(r)
}

// FormatList writes reports as a YAML sequence.
func (f *YAMLFormatter) FormatList(w io.Writer, reports []diag.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(reports)
}
