package config

import "github.com/codewarden/warden/pkg/schema"

func boolPtr(b bool) *bool { return &b }

func severityPtr(s schema.Severity) *schema.Severity { return &s }

// Default returns the built-in configuration used when no warden.yaml is
// found: development-marker detection, incomplete-implementation checks,
// and sensible path exclusions for Go repositories.
func Default() *schema.Config {
	return &schema.Config{
		Version: "1.0",
		Paths: schema.PathsConfig{
			Patterns: []string{
				"vendor/**",
				"**/node_modules/**",
				"**/.git/**",
				"**/testdata/**",
				"*_gen.go",
				"*.pb.go",
			},
			IgnoreFile: DefaultIgnoreFileName,
		},
		Categories: map[string]schema.RuleCategory{
			"placeholders": {
				Severity: schema.SeverityError,
				Enabled:  true,
				Rules: []schema.RuleDefinition{
					{
						ID:      "todo_comments",
						Type:    schema.RuleTypeText,
						Pattern: `\b(TODO|FIXME|HACK|XXX|BUG|REFACTOR)\b`,
						Message: "Development marker detected: {match}",
					},
					{
						ID:      "temporary_markers",
						Type:    schema.RuleTypeText,
						Pattern: `\b(for now|temporary|placeholder|stub|dummy)\b`,
						Message: "Implementation marker found: {match}",
						ExcludeIf: &schema.ExclusionPolicy{
							InTests:      true,
							FilePatterns: []string{"**/testdata/**"},
						},
					},
					{
						ID:      "panic_calls",
						Type:    schema.RuleTypeStructural,
						Pattern: "call:panic|unimplemented",
						Message: "Unfinished call to {name} found",
						ExcludeIf: &schema.ExclusionPolicy{
							InTests: true,
						},
					},
				},
			},
			"incomplete_implementations": {
				Severity: schema.SeverityError,
				Enabled:  true,
				Rules: []schema.RuleDefinition{
					{
						ID:      "return_nil_only",
						Type:    schema.RuleTypeStructural,
						Pattern: "return_nil_only",
						Message: "Function returns nil error with no implementation",
						ExcludeIf: &schema.ExclusionPolicy{
							InTests: true,
						},
					},
					{
						ID:      "empty_function_body",
						Type:    schema.RuleTypeStructural,
						Pattern: "empty_function_body",
						Message: "Function {name} has an empty body",
						ExcludeIf: &schema.ExclusionPolicy{
							InTests: true,
						},
					},
				},
			},
			"code_quality": {
				Severity: schema.SeverityWarning,
				Enabled:  true,
				Rules: []schema.RuleDefinition{
					{
						ID:      "high_complexity",
						Type:    schema.RuleTypeStructural,
						Pattern: "cyclomatic_complexity_gt:15",
						Message: "Function has cyclomatic complexity {value}",
					},
					{
						ID:       "missing_docs",
						Type:     schema.RuleTypeStructural,
						Pattern:  "public_without_docs",
						Message:  "Exported {name} has no doc comment",
						Severity: severityPtr(schema.SeverityInfo),
						Enabled:  boolPtr(false),
					},
				},
			},
		},
	}
}
