package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/codewarden/warden/pkg/schema"
	"github.com/codewarden/warden/pkg/violation"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	fileColor    = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.Faint)
)

func severityColor(s schema.Severity) *color.Color {
	switch s {
	case schema.SeverityError:
		return errorColor
	case schema.SeverityWarning:
		return warningColor
	default:
		return infoColor
	}
}

// writeHuman renders violations grouped by file, with a closing summary.
func writeHuman(w io.Writer, rep *violation.Report, opts Options) error {
	kept, truncated := selected(rep, opts)

	// Color state is process-global in fatih/color, so serialize through
	// Sprint on explicit Color instances instead of toggling NoColor.
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		return c.Sprint(s)
	}

	if len(kept) == 0 {
		if _, err := fmt.Fprintln(w, "No violations found."); err != nil {
			return err
		}
		return writeHumanSummary(w, rep, paint)
	}

	lastFile := ""
	for _, v := range kept {
		if v.File != lastFile {
			if lastFile != "" {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w, paint(fileColor, v.File)); err != nil {
				return err
			}
			lastFile = v.File
		}

		position := fmt.Sprintf("%d:%d", v.Line, v.Column)
		line := fmt.Sprintf("  %-8s %-7s %s  %s",
			position,
			paint(severityColor(v.Severity), v.Severity.String()),
			paint(dimColor, v.RuleID),
			v.Message)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if opts.ShowContext && v.Context != "" {
			if _, err := fmt.Fprintf(w, "           %s\n", paint(dimColor, v.Context)); err != nil {
				return err
			}
		}
		if opts.ShowSuggestions && v.SuggestedFix != "" {
			if _, err := fmt.Fprintf(w, "           fix: %s\n", v.SuggestedFix); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if truncated > 0 {
		if _, err := fmt.Fprintf(w, "... and %d more violations\n\n", truncated); err != nil {
			return err
		}
	}
	return writeHumanSummary(w, rep, paint)
}

func writeHumanSummary(w io.Writer, rep *violation.Report, paint func(*color.Color, string) string) error {
	counts := rep.Summary.BySeverity
	verdict := paint(color.New(color.FgGreen, color.Bold), "PASS")
	if rep.HasErrors() {
		verdict = paint(errorColor, "FAIL")
	}
	_, err := fmt.Fprintf(w, "%s: %d violations (%d errors, %d warnings, %d info) in %d files (%dms)\n",
		verdict,
		counts.Total(),
		counts.Error,
		counts.Warning,
		counts.Info,
		rep.Summary.TotalFiles,
		rep.Summary.ExecutionTimeMs)
	return err
}
