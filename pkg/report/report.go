// Package report renders analysis reports in the formats consumed by
// humans, CI systems, and coding agents.
package report

import (
	"io"
	"strings"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/schema"
	"github.com/codewarden/warden/pkg/violation"
)

// Format names an output serializer.
type Format string

const (
	FormatHuman  Format = "human"
	FormatJSON   Format = "json"
	FormatJUnit  Format = "junit"
	FormatSARIF  Format = "sarif"
	FormatGitHub Format = "github"
	FormatAgent  Format = "agent"
)

// Formats lists every supported format name in display order.
func Formats() []Format {
	return []Format{FormatHuman, FormatJSON, FormatJUnit, FormatSARIF, FormatGitHub, FormatAgent}
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatHuman:
		return FormatHuman, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatJUnit:
		return FormatJUnit, nil
	case FormatSARIF:
		return FormatSARIF, nil
	case FormatGitHub:
		return FormatGitHub, nil
	case FormatAgent:
		return FormatAgent, nil
	default:
		return "", errUtils.Build(errUtils.ErrUnknownFormat).
			WithContext("format", name).
			WithHint("supported formats: human, json, junit, sarif, github, agent").
			Err()
	}
}

// Options adjust what a serializer includes.
type Options struct {
	// MinSeverity drops violations below this level.
	MinSeverity schema.Severity
	// MaxViolations truncates output after this many entries. Zero is
	// unlimited. The summary still reflects the full counts.
	MaxViolations int
	// ShowContext includes the offending source line where the format
	// supports it.
	ShowContext bool
	// ShowSuggestions includes suggested fixes where present.
	ShowSuggestions bool
	// Color enables ANSI colors in the human format.
	Color bool
}

// Write renders the report in the given format.
func Write(w io.Writer, format Format, rep *violation.Report, opts Options) error {
	switch format {
	case FormatHuman:
		return writeHuman(w, rep, opts)
	case FormatJSON:
		return writeJSON(w, rep, opts)
	case FormatJUnit:
		return writeJUnit(w, rep, opts)
	case FormatSARIF:
		return writeSARIF(w, rep, opts)
	case FormatGitHub:
		return writeGitHub(w, rep, opts)
	case FormatAgent:
		return writeAgent(w, rep, opts)
	default:
		return errUtils.Build(errUtils.ErrUnknownFormat).
			WithContext("format", string(format)).
			Err()
	}
}

// selected applies severity filtering and truncation. It returns the
// violations to render and how many were cut off.
func selected(rep *violation.Report, opts Options) (kept []violation.Violation, truncated int) {
	for _, v := range rep.Violations {
		if v.Severity < opts.MinSeverity {
			continue
		}
		kept = append(kept, v)
	}
	if opts.MaxViolations > 0 && len(kept) > opts.MaxViolations {
		truncated = len(kept) - opts.MaxViolations
		kept = kept[:opts.MaxViolations]
	}
	return kept, truncated
}
