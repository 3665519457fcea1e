package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/plotkit/qtcompat/internal/diag"
)

// PlainFormatter formats reports as human-readable plain text.
type PlainFormatter struct {
	opts FormatterOptions
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	return &PlainFormatter{opts: opts}
}

// Format writes one report as plain text.
func (f *PlainFormatter) Format(w io.Writer, r *diag.Report) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Report:   %s (generated %s)\n", r.ID, humanize.Time(r.GeneratedAt))
	if r.Hostname != "" {
		fmt.Fprintf(&sb, "Host:     %s (%s/%s)\n", r.Hostname, r.OS, r.Arch)
	} else {
		fmt.Fprintf(&sb, "Host:     %s/%s\n", r.OS, r.Arch)
	}
	if r.Backend != "" {
		fmt.Fprintf(&sb, "Backend:  %s\n", r.Backend)
	}
	if r.OverrideSet {
		fmt.Fprintf(&sb, "QT_API:   %s\n", r.Override)
	} else {
		sb.WriteString("QT_API:   (unset)\n")
	}
	if r.MacWantsLayer != "" {
		fmt.Fprintf(&sb, "QT_MAC_WANTS_LAYER: %s\n", r.MacWantsLayer)
	}
	if r.ConfigPath != "" {
		if r.ConfigModified.IsZero() {
			fmt.Fprintf(&sb, "Config:   %s (missing)\n", r.ConfigPath)
		} else {
			fmt.Fprintf(&sb, "Config:   %s (modified %s)\n", r.ConfigPath, humanize.Time(r.ConfigModified))
		}
	}

	sb.WriteString("\nCandidates:\n")
	for _, c := range r.Candidates {
		fmt.Fprintf(&sb, "  %-9s %s\n", c.Binding, candidateState(c))
	}

	if f.opts.Verbose && len(r.Steps) > 0 {
		sb.WriteString("\nTrace:\n")
		for _, s := range r.Steps {
			line := s.Stage
			if s.Candidate != "" {
				line += " " + s.Candidate
			}
			if s.Detail != "" {
				line += ": " + s.Detail
			}
			if s.Error != "" {
				line += ": " + s.Error
			}
			fmt.Fprintf(&sb, "  %s\n", line)
		}
	}

	sb.WriteString("\nOutcome:  " + outcomeLine(r) + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatList writes one summary line per report.
func (f *PlainFormatter) FormatList(w io.Writer, reports []diag.Report) error {
	for _, r := range reports {
		line := fmt.Sprintf("%s  %-15s %s", r.ID, humanize.Time(r.GeneratedAt), outcomeLine(&r))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// candidateState renders one candidate's status column.
func candidateState(c diag.CandidateStatus) string {
	if !c.Registered {
		return "not registered"
	}
	parts := []string{"registered"}
	if c.Preloaded {
		parts = append(parts, "preloaded")
	}
	if c.Selected {
		parts = append(parts, "selected")
	}
	if c.Error != "" {
		parts = append(parts, "failed: "+c.Error)
	}
	return strings.Join(parts, ", ")
}

// outcomeLine renders the end state in one line.
func outcomeLine(r *diag.Report) string {
	o := r.Outcome
	if !o.Resolved {
		return "failed: " + o.Error
	}
	return fmt.Sprintf("resolved %s (%s %s), version %s, Qt %s",
		o.Binding, o.Generation, o.Family, o.Version, o.Toolkit)
}
