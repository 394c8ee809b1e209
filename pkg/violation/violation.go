// Package violation holds the domain types shared between the engine,
// the analyzer, and the report serializers: individual violations and
// the aggregated report with its summary.
package violation

import (
	"sort"
	"time"

	"github.com/codewarden/warden/pkg/schema"
)

// Violation is one code-quality finding. Each entry is self-describing so
// any serializer can render it without extra lookups.
type Violation struct {
	RuleID       string          `json:"rule_id"`
	Severity     schema.Severity `json:"severity"`
	File         string          `json:"file_path"`
	Line         int             `json:"line_number,omitempty"`
	Column       int             `json:"column_number,omitempty"`
	Message      string          `json:"message"`
	Context      string          `json:"context,omitempty"`
	SuggestedFix string          `json:"suggested_fix,omitempty"`
	DetectedAt   time.Time       `json:"detected_at"`
}

// New creates a violation with the detection timestamp set.
func New(ruleID string, severity schema.Severity, file, message string) Violation {
	return Violation{
		RuleID:     ruleID,
		Severity:   severity,
		File:       file,
		Message:    message,
		DetectedAt: time.Now().UTC(),
	}
}

// IsBlocking reports whether this violation fails the gate.
func (v *Violation) IsBlocking() bool {
	return v.Severity.IsBlocking()
}

// Counts tallies violations by severity.
type Counts struct {
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
}

// Total returns the number of violations across all severities.
func (c *Counts) Total() int {
	return c.Error + c.Warning + c.Info
}

// HasBlocking reports whether any error-severity violations were counted.
func (c *Counts) HasBlocking() bool {
	return c.Error > 0
}

// Add counts one violation of the given severity.
func (c *Counts) Add(severity schema.Severity) {
	switch severity {
	case schema.SeverityError:
		c.Error++
	case schema.SeverityWarning:
		c.Warning++
	case schema.SeverityInfo:
		c.Info++
	}
}

// Summary carries run-level statistics for a report.
type Summary struct {
	TotalFiles      int       `json:"total_files"`
	BySeverity      Counts    `json:"violations_by_severity"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	ValidatedAt     time.Time `json:"validated_at"`
}

// Report aggregates all violations found in one run.
type Report struct {
	Violations  []Violation `json:"violations"`
	Summary     Summary     `json:"summary"`
	Fingerprint string      `json:"config_fingerprint,omitempty"`
}

// NewReport creates an empty report stamped with the current time.
func NewReport() *Report {
	return &Report{
		Summary: Summary{ValidatedAt: time.Now().UTC()},
	}
}

// Add appends a violation and updates the severity counts.
func (r *Report) Add(v Violation) {
	r.Summary.BySeverity.Add(v.Severity)
	r.Violations = append(r.Violations, v)
}

// Merge folds another report's violations and file count into this one.
func (r *Report) Merge(other *Report) {
	for _, v := range other.Violations {
		r.Add(v)
	}
	r.Summary.TotalFiles += other.Summary.TotalFiles
}

// HasViolations reports whether any violations were recorded.
func (r *Report) HasViolations() bool {
	return len(r.Violations) > 0
}

// HasErrors reports whether any blocking violations were recorded.
func (r *Report) HasErrors() bool {
	return r.Summary.BySeverity.HasBlocking()
}

// Sort orders violations by file path, then line, then severity
// (most severe first) for stable display output.
func (r *Report) Sort() {
	sort.SliceStable(r.Violations, func(i, j int) bool {
		a, b := &r.Violations[i], &r.Violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Severity > b.Severity
	})
}
