package report

import (
	"fmt"
	"io"

	"github.com/codewarden/warden/pkg/violation"
)

// writeAgent emits a compact, deterministic listing for coding agents:
// one `file:line:col severity rule message` line per violation, then a
// machine-checkable verdict line. No colors, no alignment, stable field
// order.
func writeAgent(w io.Writer, rep *violation.Report, opts Options) error {
	kept, truncated := selected(rep, opts)

	for _, v := range kept {
		if _, err := fmt.Fprintf(w, "%s:%d:%d %s %s %s\n",
			v.File, v.Line, v.Column, v.Severity, v.RuleID, v.Message); err != nil {
			return err
		}
		if opts.ShowSuggestions && v.SuggestedFix != "" {
			if _, err := fmt.Fprintf(w, "  fix: %s\n", v.SuggestedFix); err != nil {
				return err
			}
		}
	}
	if truncated > 0 {
		if _, err := fmt.Fprintf(w, "truncated: %d\n", truncated); err != nil {
			return err
		}
	}

	verdict := "pass"
	if rep.HasErrors() {
		verdict = "fail"
	}
	counts := rep.Summary.BySeverity
	_, err := fmt.Fprintf(w, "verdict: %s errors=%d warnings=%d info=%d files=%d\n",
		verdict, counts.Error, counts.Warning, counts.Info, rep.Summary.TotalFiles)
	return err
}
