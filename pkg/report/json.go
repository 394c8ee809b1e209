package report

import (
	"encoding/json"
	"io"

	"github.com/codewarden/warden/pkg/violation"
)

// writeJSON emits the report as indented JSON. Severity filtering and
// truncation apply to the violation list; the summary keeps full counts.
func writeJSON(w io.Writer, rep *violation.Report, opts Options) error {
	kept, truncated := selected(rep, opts)

	payload := struct {
		Violations  []violation.Violation `json:"violations"`
		Truncated   int                   `json:"truncated,omitempty"`
		Summary     violation.Summary     `json:"summary"`
		Fingerprint string                `json:"config_fingerprint,omitempty"`
	}{
		Violations:  kept,
		Truncated:   truncated,
		Summary:     rep.Summary,
		Fingerprint: rep.Fingerprint,
	}
	if payload.Violations == nil {
		payload.Violations = []violation.Violation{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
