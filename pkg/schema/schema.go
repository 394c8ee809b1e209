// Package schema defines the configuration data model: rule definitions,
// categories, exclusion policies, and path filtering settings. Values here
// are plain data; validation and compilation live in pkg/config and
// pkg/engine respectively.
package schema

// Config is the root of a warden rule configuration.
type Config struct {
	Version    string                  `yaml:"version" json:"version" mapstructure:"version"`
	Paths      PathsConfig             `yaml:"paths" json:"paths" mapstructure:"paths"`
	Categories map[string]RuleCategory `yaml:"patterns" json:"patterns" mapstructure:"patterns"`
}

// PathsConfig controls which files are analysis candidates.
type PathsConfig struct {
	// Patterns are gitignore-style globs, ordered, last match wins.
	Patterns []string `yaml:"patterns" json:"patterns" mapstructure:"patterns"`
	// IgnoreFile names the per-directory ignore file (e.g. ".wardenignore").
	// Empty disables ignore-file discovery.
	IgnoreFile string `yaml:"ignore_file,omitempty" json:"ignore_file,omitempty" mapstructure:"ignore_file"`
}

// RuleCategory groups rules under a default severity and an enable switch.
type RuleCategory struct {
	Severity Severity         `yaml:"severity" json:"severity" mapstructure:"severity"`
	Enabled  bool             `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Rules    []RuleDefinition `yaml:"rules" json:"rules" mapstructure:"rules"`
}

// RuleType selects the matcher family a rule compiles into.
type RuleType string

const (
	// RuleTypeText compiles the pattern as a regular expression over file content.
	RuleTypeText RuleType = "text"
	// RuleTypeStructural compiles the pattern as a syntax-tree matcher descriptor.
	RuleTypeStructural RuleType = "structural"
)

// RuleDefinition is one declarative detector. Definitions are immutable
// once loaded; the engine derives compiled matchers from them.
type RuleDefinition struct {
	ID            string           `yaml:"id" json:"id" mapstructure:"id"`
	Type          RuleType         `yaml:"type" json:"type" mapstructure:"type"`
	Pattern       string           `yaml:"pattern" json:"pattern" mapstructure:"pattern"`
	Message       string           `yaml:"message" json:"message" mapstructure:"message"`
	Severity      *Severity        `yaml:"severity,omitempty" json:"severity,omitempty" mapstructure:"severity"`
	Enabled       *bool            `yaml:"enabled,omitempty" json:"enabled,omitempty" mapstructure:"enabled"`
	CaseSensitive bool             `yaml:"case_sensitive,omitempty" json:"case_sensitive,omitempty" mapstructure:"case_sensitive"`
	ExcludeIf     *ExclusionPolicy `yaml:"exclude_if,omitempty" json:"exclude_if,omitempty" mapstructure:"exclude_if"`
}

// IsEnabled reports whether the rule is enabled. Rules default to enabled
// when the flag is omitted.
func (r *RuleDefinition) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// EffectiveSeverity resolves the rule's severity: the rule override when
// present, the category default otherwise.
func (r *RuleDefinition) EffectiveSeverity(category *RuleCategory) Severity {
	if r.Severity != nil {
		return *r.Severity
	}
	return category.Severity
}

// ExclusionPolicy describes conditions under which a raw match is dropped
// before it becomes a violation.
type ExclusionPolicy struct {
	// Attribute is a comment directive (e.g. "warden:allow"); a match is
	// excluded when the directive appears on the match line or, for
	// structural matches, in the enclosing declaration's doc comment.
	Attribute string `yaml:"attribute,omitempty" json:"attribute,omitempty" mapstructure:"attribute"`
	// InTests excludes matches found in test files.
	InTests bool `yaml:"in_tests,omitempty" json:"in_tests,omitempty" mapstructure:"in_tests"`
	// FilePatterns excludes matches in files matching any of these globs.
	FilePatterns []string `yaml:"file_patterns,omitempty" json:"file_patterns,omitempty" mapstructure:"file_patterns"`
}
